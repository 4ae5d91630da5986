package htmlmd

import "fmt"

// Converter turns HTML into Markdown.
type Converter interface {
	// ToMarkdown converts html. Malformed markup is repaired by the HTML5
	// parser; an error means the input could not be read at all.
	ToMarkdown(html string) (string, error)

	// Name returns the engine name for logging.
	Name() string
}

// NewConverter returns the converter selected by cfg.Engine.
// A nil cfg uses DefaultConfig().
func NewConverter(cfg *Config) (Converter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Engine {
	case EngineLibrary:
		return NewLibrary(cfg), nil
	case EngineNative:
		return New(cfg), nil
	}
	return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
}
