package convert

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Request is a single conversion request. The payload fields are pointers so
// an absent field can be told apart from an empty document.
type Request struct {
	From     string  `json:"from" yaml:"from" validate:"required,oneof=html markdown"`
	To       string  `json:"to" yaml:"to" validate:"required,oneof=markdown richtext"`
	HTML     *string `json:"html,omitempty" yaml:"html,omitempty" validate:"required_if=From html"`
	Markdown *string `json:"markdown,omitempty" yaml:"markdown,omitempty" validate:"required_if=From markdown"`
}

// Route returns the requested route. It is only meaningful after the request
// has been validated.
func (r Request) Route() Route {
	return Route{From: Format(r.From), To: Format(r.To)}
}

// NewHTMLRequest builds a request converting html to the given format.
func NewHTMLRequest(html string, to Format) Request {
	return Request{From: string(FormatHTML), To: string(to), HTML: &html}
}

// NewMarkdownRequest builds a request converting markdown to the given format.
func NewMarkdownRequest(md string, to Format) Request {
	return Request{From: string(FormatMarkdown), To: string(to), Markdown: &md}
}

var (
	allowedFrom = []string{string(FormatHTML), string(FormatMarkdown)}
	allowedTo   = []string{string(FormatMarkdown), string(FormatRichText)}
)

// reportOrder is the order failures are reported in when several fields are
// wrong at once.
var reportOrder = []string{"from", "html", "markdown", "to"}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest checks req and returns the first failure as a
// *ValidationError.
func validateRequest(v *validator.Validate, req Request) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate request: %w", err)
	}

	failed := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		failed[fe.Field()] = true
	}
	for _, field := range reportOrder {
		if failed[field] {
			return fieldError(field)
		}
	}
	return fieldError(fieldErrs[0].Field())
}

func fieldError(field string) *ValidationError {
	switch field {
	case "from":
		return &ValidationError{
			Field:   field,
			Message: `Please specify "from" value as "html" or "markdown"`,
			Allowed: allowedFrom,
		}
	case "to":
		return &ValidationError{
			Field:   field,
			Message: `Please specify "to" value as "markdown" or "richtext"`,
			Allowed: allowedTo,
		}
	default:
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("Please specify a value for %q in your body", field),
		}
	}
}
