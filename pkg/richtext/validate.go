package richtext

import (
	"errors"
	"fmt"
)

// ErrInvalidDocument is wrapped by every error returned from Validate.
var ErrInvalidDocument = errors.New("invalid rich-text document")

// Validate checks the structural invariants of a document tree:
//
//   - the root is a document and its children are blocks
//   - paragraphs and headings hold only text nodes
//   - lists hold only list items; list items and blockquotes hold only blocks
//   - horizontal rules and text nodes are leaves
//   - marks are known, unique by type and only present on text nodes
//   - no node appears twice in the tree
func Validate(doc *Node) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if doc.NodeType != TypeDocument {
		return fmt.Errorf("%w: root is %q, want %q", ErrInvalidDocument, doc.NodeType, TypeDocument)
	}
	v := &validator{seen: make(map[*Node]bool)}
	return v.node(doc, "document")
}

type validator struct {
	seen map[*Node]bool
}

func (v *validator) node(n *Node, path string) error {
	if n == nil {
		return fmt.Errorf("%w: nil node at %s", ErrInvalidDocument, path)
	}
	if v.seen[n] {
		return fmt.Errorf("%w: node at %s has more than one parent", ErrInvalidDocument, path)
	}
	v.seen[n] = true

	if n.IsText() {
		if len(n.Content) > 0 {
			return fmt.Errorf("%w: text node at %s has children", ErrInvalidDocument, path)
		}
		var set MarkSet
		for _, m := range n.Marks {
			if !m.Type.IsValid() {
				return fmt.Errorf("%w: unknown mark %q at %s", ErrInvalidDocument, m.Type, path)
			}
			if set.Has(m.Type) {
				return fmt.Errorf("%w: duplicate mark %q at %s", ErrInvalidDocument, m.Type, path)
			}
			set = set.With(m.Type)
		}
		return nil
	}

	if len(n.Marks) > 0 {
		return fmt.Errorf("%w: marks on %s node at %s", ErrInvalidDocument, n.NodeType, path)
	}

	for i, c := range n.Content {
		childPath := fmt.Sprintf("%s/%d", path, i)
		if c == nil {
			return fmt.Errorf("%w: nil node at %s", ErrInvalidDocument, childPath)
		}
		if err := v.allowed(n.NodeType, c.NodeType, childPath); err != nil {
			return err
		}
		if err := v.node(c, childPath); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) allowed(parent, child NodeType, path string) error {
	ok := false
	switch {
	case parent == TypeDocument, parent == TypeListItem, parent == TypeBlockquote:
		ok = child.IsBlock() && child != TypeListItem
	case parent == TypeUnorderedList, parent == TypeOrderedList:
		ok = child == TypeListItem
	case parent.holdsInline():
		ok = child == TypeText
	case parent == TypeHorizontalRule:
		ok = false
	default:
		return fmt.Errorf("%w: unknown node type %q at %s", ErrInvalidDocument, parent, path)
	}
	if !ok {
		return fmt.Errorf("%w: %s cannot contain %s (at %s)", ErrInvalidDocument, parent, child, path)
	}
	return nil
}
