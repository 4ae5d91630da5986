package richtext

import "strings"

// MarkType names a formatting attribute of a text node.
type MarkType string

const (
	MarkBold      MarkType = "bold"
	MarkItalic    MarkType = "italic"
	MarkUnderline MarkType = "underline"
	MarkCode      MarkType = "code"
)

// markOrder is the canonical serialization order. Code comes last so that it
// is always the innermost delimiter when re-serialized.
var markOrder = [...]MarkType{MarkBold, MarkItalic, MarkUnderline, MarkCode}

// Mark is a single mark attached to a text node.
type Mark struct {
	Type MarkType `json:"type" yaml:"type"`
}

// IsValid reports whether m is a known mark type.
func (m MarkType) IsValid() bool {
	return m.bit() != 0
}

func (m MarkType) bit() MarkSet {
	for i, t := range markOrder {
		if t == m {
			return 1 << i
		}
	}
	return 0
}

// MarkSet is a set of mark types. The zero value is the empty set.
type MarkSet uint8

// NewMarkSet returns the set holding marks. Unknown mark types are ignored.
func NewMarkSet(marks ...MarkType) MarkSet {
	var s MarkSet
	for _, m := range marks {
		s = s.With(m)
	}
	return s
}

// With returns s plus m.
func (s MarkSet) With(m MarkType) MarkSet { return s | m.bit() }

// Without returns s minus m.
func (s MarkSet) Without(m MarkType) MarkSet { return s &^ m.bit() }

// Has reports whether m is in s.
func (s MarkSet) Has(m MarkType) bool { return m.bit() != 0 && s&m.bit() != 0 }

// Empty reports whether s holds no marks.
func (s MarkSet) Empty() bool { return s == 0 }

// Types returns the members of s in canonical order.
func (s MarkSet) Types() []MarkType {
	var out []MarkType
	for _, t := range markOrder {
		if s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Marks returns the members of s as Mark values in canonical order.
// The result is non-nil.
func (s MarkSet) Marks() []Mark {
	out := make([]Mark, 0, len(markOrder))
	for _, t := range s.Types() {
		out = append(out, Mark{Type: t})
	}
	return out
}

// String returns the mark names joined by "+", or "none".
func (s MarkSet) String() string {
	types := s.Types()
	if len(types) == 0 {
		return "none"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, "+")
}
