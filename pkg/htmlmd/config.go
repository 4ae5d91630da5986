// Package htmlmd converts HTML to Markdown.
//
// Two engines implement Converter. The native Transducer walks the parsed
// HTML tree and applies a RuleTable per element. The library engine hands the
// document to html-to-markdown. Both flatten links before conversion and run
// the same normalization afterwards, so their output feeds the Markdown parser
// the same way.
package htmlmd

import "fmt"

// Engine selects a Converter implementation.
type Engine string

const (
	EngineNative  Engine = "native"
	EngineLibrary Engine = "library"
)

// Config controls Markdown emission.
type Config struct {
	// Engine selects the converter. Default: native.
	Engine Engine `json:"engine" yaml:"engine" mapstructure:"engine"`

	// StrongDelimiter wraps <strong> and <b>. Default: "**".
	StrongDelimiter string `json:"strong_delimiter" yaml:"strong_delimiter" mapstructure:"strong_delimiter"`

	// EmDelimiter wraps <em> and <i>. Default: "_".
	EmDelimiter string `json:"em_delimiter" yaml:"em_delimiter" mapstructure:"em_delimiter"`

	// BulletMarker starts unordered list items. Default: "-".
	BulletMarker string `json:"bullet_marker" yaml:"bullet_marker" mapstructure:"bullet_marker"`

	// NormalizeUnicode converts text to NFC. Default: true.
	NormalizeUnicode bool `json:"normalize_unicode" yaml:"normalize_unicode" mapstructure:"normalize_unicode"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Engine:           EngineNative,
		StrongDelimiter:  "**",
		EmDelimiter:      "_",
		BulletMarker:     "-",
		NormalizeUnicode: true,
	}
}

// Merge returns a copy of c with the non-empty fields of other applied.
// NormalizeUnicode is taken from other as is.
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}
	merged := *c
	if other.Engine != "" {
		merged.Engine = other.Engine
	}
	if other.StrongDelimiter != "" {
		merged.StrongDelimiter = other.StrongDelimiter
	}
	if other.EmDelimiter != "" {
		merged.EmDelimiter = other.EmDelimiter
	}
	if other.BulletMarker != "" {
		merged.BulletMarker = other.BulletMarker
	}
	merged.NormalizeUnicode = other.NormalizeUnicode
	return &merged
}

// Validate checks delimiter and marker choices against what the Markdown
// parser understands.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineNative, EngineLibrary:
	default:
		return fmt.Errorf("unknown engine %q (want %q or %q)", c.Engine, EngineNative, EngineLibrary)
	}
	switch c.StrongDelimiter {
	case "**", "__":
	default:
		return fmt.Errorf("strong delimiter must be ** or __, got %q", c.StrongDelimiter)
	}
	switch c.EmDelimiter {
	case "*", "_":
	default:
		return fmt.Errorf("emphasis delimiter must be * or _, got %q", c.EmDelimiter)
	}
	switch c.BulletMarker {
	case "-", "*", "+":
	default:
		return fmt.Errorf("bullet marker must be -, * or +, got %q", c.BulletMarker)
	}
	return nil
}
