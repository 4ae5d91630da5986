// Package convert routes conversion requests between HTML, Markdown and
// rich-text documents.
package convert

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jmylchreest/richconv/internal/logger"
	"github.com/jmylchreest/richconv/pkg/htmlmd"
	"github.com/jmylchreest/richconv/pkg/markdown"
	"github.com/jmylchreest/richconv/pkg/richtext"
)

// Pipeline runs conversions. It holds no mutable state and is safe for
// concurrent use.
type Pipeline struct {
	converter htmlmd.Converter
	parser    *markdown.Parser
	validate  *validator.Validate
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConverter sets the HTML-to-Markdown converter.
func WithConverter(c htmlmd.Converter) Option {
	return func(p *Pipeline) {
		p.converter = c
	}
}

// WithParser sets the Markdown parser.
func WithParser(mp *markdown.Parser) Option {
	return func(p *Pipeline) {
		p.parser = mp
	}
}

// New creates a Pipeline. Without options it uses the native converter with
// the default config and a default parser.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{validate: newValidator()}
	for _, opt := range opts {
		opt(p)
	}
	if p.converter == nil {
		p.converter = htmlmd.New(nil)
	}
	if p.parser == nil {
		p.parser = markdown.New()
	}
	return p
}

// Converter returns the HTML-to-Markdown converter in use.
func (p *Pipeline) Converter() htmlmd.Converter {
	return p.converter
}

// Result is the outcome of a conversion. Exactly one of Markdown or Document
// is set, depending on Route.To.
type Result struct {
	Route    Route          `json:"route" yaml:"route"`
	Markdown string         `json:"markdown,omitempty" yaml:"markdown,omitempty"`
	Document *richtext.Node `json:"document,omitempty" yaml:"document,omitempty"`
}

// ToMarkdown converts html to Markdown.
func (p *Pipeline) ToMarkdown(html string) (string, error) {
	md, err := p.converter.ToMarkdown(html)
	if err != nil {
		return "", &ParseError{Stage: "html", Err: err}
	}
	return md, nil
}

// ToDocument parses Markdown into a document. It never fails.
func (p *Pipeline) ToDocument(md string) *richtext.Node {
	return p.parser.Parse(md)
}

// HTMLToDocument converts html to Markdown and parses the result.
func (p *Pipeline) HTMLToDocument(html string) (*richtext.Node, error) {
	md, err := p.ToMarkdown(html)
	if err != nil {
		return nil, err
	}
	return p.ToDocument(md), nil
}

// MarkdownToMarkdown returns md unchanged.
func (p *Pipeline) MarkdownToMarkdown(md string) string {
	return md
}

// Convert validates req and runs the requested route.
func (p *Pipeline) Convert(req Request) (*Result, error) {
	if err := validateRequest(p.validate, req); err != nil {
		logger.Debug("request rejected", "error", err)
		return nil, err
	}

	route := req.Route()
	h, ok := routes[route]
	if !ok {
		return nil, fieldError("to")
	}

	start := time.Now()
	result, err := h(p, req)
	if err != nil {
		logger.Debug("conversion failed", "route", route.String(), "engine", p.converter.Name(), "error", err)
		return nil, err
	}
	logger.Debug("conversion complete",
		"route", route.String(),
		"engine", p.converter.Name(),
		"duration", time.Since(start))
	return result, nil
}

// BatchResult is one outcome of ConvertMany.
type BatchResult struct {
	// Index is the position of the request in the input slice.
	Index  int
	Result *Result
	Error  error
}

// ConvertMany converts reqs concurrently, running at most concurrency
// conversions at a time. Results arrive in completion order. Requests not yet
// started when ctx is done report ctx.Err().
func (p *Pipeline) ConvertMany(ctx context.Context, reqs []Request, concurrency int) <-chan *BatchResult {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make(chan *BatchResult, len(reqs))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req Request) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- &BatchResult{Index: i, Error: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results <- &BatchResult{Index: i, Error: err}
				return
			}
			result, err := p.Convert(req)
			results <- &BatchResult{Index: i, Result: result, Error: err}
		}(i, req)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
