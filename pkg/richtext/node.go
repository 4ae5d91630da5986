// Package richtext defines the structured rich-text document tree produced by
// the conversion pipeline.
//
// A document is a tree of *Node values. The root has NodeType TypeDocument and
// holds block nodes; paragraphs and headings hold text nodes; list items and
// blockquotes hold further blocks. Marks (bold, italic, code, underline) only
// ever attach to text nodes.
//
// The JSON shape follows the common content-management convention:
//
//	{"nodeType": "paragraph", "data": {}, "content": [
//	    {"nodeType": "text", "value": "Hello", "marks": [{"type": "bold"}], "data": {}}
//	]}
package richtext

import (
	"encoding/json"
	"fmt"
	"slices"
)

// NodeType identifies the kind of a node.
type NodeType string

const (
	TypeDocument       NodeType = "document"
	TypeParagraph      NodeType = "paragraph"
	TypeHeading1       NodeType = "heading-1"
	TypeHeading2       NodeType = "heading-2"
	TypeHeading3       NodeType = "heading-3"
	TypeHeading4       NodeType = "heading-4"
	TypeHeading5       NodeType = "heading-5"
	TypeHeading6       NodeType = "heading-6"
	TypeUnorderedList  NodeType = "unordered-list"
	TypeOrderedList    NodeType = "ordered-list"
	TypeListItem       NodeType = "list-item"
	TypeBlockquote     NodeType = "blockquote"
	TypeHorizontalRule NodeType = "horizontal-rule"
	TypeText           NodeType = "text"
)

var headingTypes = [...]NodeType{
	TypeHeading1, TypeHeading2, TypeHeading3,
	TypeHeading4, TypeHeading5, TypeHeading6,
}

// HeadingType returns the node type for a heading of the given level.
// Levels outside 1..6 are clamped.
func HeadingType(level int) NodeType {
	level = min(max(level, 1), 6)
	return headingTypes[level-1]
}

// HeadingLevel returns the level of a heading type, or 0 if t is not a heading.
func HeadingLevel(t NodeType) int {
	for i, h := range headingTypes {
		if h == t {
			return i + 1
		}
	}
	return 0
}

// IsBlock reports whether t is a block node type (anything but document and text).
func (t NodeType) IsBlock() bool {
	switch t {
	case TypeParagraph, TypeUnorderedList, TypeOrderedList, TypeListItem,
		TypeBlockquote, TypeHorizontalRule:
		return true
	}
	return HeadingLevel(t) > 0
}

// holdsInline reports whether children of t must be text nodes.
func (t NodeType) holdsInline() bool {
	return t == TypeParagraph || HeadingLevel(t) > 0
}

// Data holds node attributes. It is serialized as an object, never null.
type Data map[string]any

// Node is a single node in a rich-text tree.
type Node struct {
	NodeType NodeType
	Data     Data
	Content  []*Node // block and document nodes only
	Value    string  // text nodes only
	Marks    []Mark  // text nodes only, canonical order, no duplicates
}

// NewDocument returns a document root holding blocks.
func NewDocument(blocks ...*Node) *Node {
	return &Node{NodeType: TypeDocument, Data: Data{}, Content: nonNil(blocks)}
}

// NewBlock returns a block node of type t holding children.
func NewBlock(t NodeType, children ...*Node) *Node {
	return &Node{NodeType: t, Data: Data{}, Content: nonNil(children)}
}

// NewParagraph is shorthand for NewBlock(TypeParagraph, children...).
func NewParagraph(children ...*Node) *Node {
	return NewBlock(TypeParagraph, children...)
}

// NewHeading returns a heading block of the given level.
func NewHeading(level int, children ...*Node) *Node {
	return NewBlock(HeadingType(level), children...)
}

// NewText returns a text node. Duplicate marks are dropped and the rest sorted
// into canonical order.
func NewText(value string, marks ...MarkType) *Node {
	return &Node{NodeType: TypeText, Data: Data{}, Value: value, Marks: NewMarkSet(marks...).Marks()}
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.NodeType == TypeText
}

// MarkSet returns the marks of n as a set.
func (n *Node) MarkSet() MarkSet {
	var s MarkSet
	for _, m := range n.Marks {
		s = s.With(m.Type)
	}
	return s
}

// HasMark reports whether n carries a mark of type m.
func (n *Node) HasMark(m MarkType) bool {
	return n.MarkSet().Has(m)
}

// Walk calls fn for n and every descendant in document order. Returning false
// from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Content {
		c.Walk(fn)
	}
}

// PlainText returns the concatenated text values below n.
func (n *Node) PlainText() string {
	var out []byte
	n.Walk(func(c *Node) bool {
		if c.IsText() {
			out = append(out, c.Value...)
		}
		return true
	})
	return string(out)
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		NodeType: n.NodeType,
		Data:     Data{},
		Value:    n.Value,
		Marks:    slices.Clone(n.Marks),
	}
	for k, v := range n.Data {
		c.Data[k] = v
	}
	if n.Content != nil {
		c.Content = make([]*Node, len(n.Content))
		for i, child := range n.Content {
			c.Content[i] = child.Clone()
		}
	}
	return c
}

// String returns a compact debug form, e.g. paragraph[text("a" bold)].
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.IsText() {
		if len(n.Marks) == 0 {
			return fmt.Sprintf("text(%q)", n.Value)
		}
		return fmt.Sprintf("text(%q %s)", n.Value, n.MarkSet())
	}
	s := string(n.NodeType) + "["
	for i, c := range n.Content {
		if i > 0 {
			s += " "
		}
		s += c.String()
	}
	return s + "]"
}

// wireNode is the serialized shape of a node.
type wireNode struct {
	NodeType NodeType `json:"nodeType" yaml:"nodeType"`
	Value    *string  `json:"value,omitempty" yaml:"value,omitempty"`
	Marks    []Mark   `json:"marks,omitempty" yaml:"marks,omitempty"`
	Data     Data     `json:"data" yaml:"data"`
	Content  []*Node  `json:"content,omitempty" yaml:"content,omitempty"`
}

func (n *Node) wire() wireNode {
	w := wireNode{NodeType: n.NodeType, Data: n.Data}
	if w.Data == nil {
		w.Data = Data{}
	}
	if n.IsText() {
		v := n.Value
		w.Value = &v
		w.Marks = n.Marks
		if w.Marks == nil {
			w.Marks = []Mark{}
		}
		return w
	}
	w.Content = nonNil(n.Content)
	return w
}

// MarshalJSON emits "value" and "marks" for text nodes and "content" for
// everything else, always with a "data" object.
func (n *Node) MarshalJSON() ([]byte, error) {
	w := n.wire()
	if n.IsText() {
		return json.Marshal(struct {
			NodeType NodeType `json:"nodeType"`
			Value    string   `json:"value"`
			Marks    []Mark   `json:"marks"`
			Data     Data     `json:"data"`
		}{w.NodeType, *w.Value, w.Marks, w.Data})
	}
	return json.Marshal(struct {
		NodeType NodeType `json:"nodeType"`
		Data     Data     `json:"data"`
		Content  []*Node  `json:"content"`
	}{w.NodeType, w.Data, w.Content})
}

// UnmarshalJSON reads the shape written by MarshalJSON.
func (n *Node) UnmarshalJSON(b []byte) error {
	var w wireNode
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*n = Node{NodeType: w.NodeType, Data: w.Data, Content: w.Content, Marks: w.Marks}
	if n.Data == nil {
		n.Data = Data{}
	}
	if w.Value != nil {
		n.Value = *w.Value
	}
	if n.IsText() {
		n.Content = nil
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (n *Node) MarshalYAML() (any, error) {
	return n.wire(), nil
}

func nonNil(nodes []*Node) []*Node {
	if nodes == nil {
		return []*Node{}
	}
	return nodes
}
