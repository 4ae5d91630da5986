package convert

import "fmt"

// Format names a representation a request can convert from or to.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatRichText Format = "richtext"
)

// Route is a from/to pair. Only the four values below are valid.
type Route struct {
	From Format
	To   Format
}

var (
	RouteHTMLToMarkdown     = Route{FormatHTML, FormatMarkdown}
	RouteHTMLToRichText     = Route{FormatHTML, FormatRichText}
	RouteMarkdownToMarkdown = Route{FormatMarkdown, FormatMarkdown}
	RouteMarkdownToRichText = Route{FormatMarkdown, FormatRichText}
)

// Routes returns every valid route.
func Routes() []Route {
	return []Route{
		RouteHTMLToMarkdown,
		RouteHTMLToRichText,
		RouteMarkdownToMarkdown,
		RouteMarkdownToRichText,
	}
}

func (r Route) String() string {
	return fmt.Sprintf("%s->%s", r.From, r.To)
}

// MarshalText encodes the route as "from->to".
func (r Route) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

type handler func(p *Pipeline, req Request) (*Result, error)

// routes is the dispatch table. Anything not listed is rejected by Convert.
var routes = map[Route]handler{
	RouteHTMLToMarkdown: func(p *Pipeline, req Request) (*Result, error) {
		md, err := p.ToMarkdown(*req.HTML)
		if err != nil {
			return nil, err
		}
		return &Result{Route: RouteHTMLToMarkdown, Markdown: md}, nil
	},
	RouteHTMLToRichText: func(p *Pipeline, req Request) (*Result, error) {
		doc, err := p.HTMLToDocument(*req.HTML)
		if err != nil {
			return nil, err
		}
		return &Result{Route: RouteHTMLToRichText, Document: doc}, nil
	},
	RouteMarkdownToMarkdown: func(p *Pipeline, req Request) (*Result, error) {
		return &Result{Route: RouteMarkdownToMarkdown, Markdown: p.MarkdownToMarkdown(*req.Markdown)}, nil
	},
	RouteMarkdownToRichText: func(p *Pipeline, req Request) (*Result, error) {
		return &Result{Route: RouteMarkdownToRichText, Document: p.ToDocument(*req.Markdown)}, nil
	},
}
