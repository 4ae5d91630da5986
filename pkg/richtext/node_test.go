package richtext

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestNewTextCanonicalMarks(t *testing.T) {
	n := NewText("x", MarkCode, MarkBold, MarkBold, MarkItalic)
	got := n.MarkSet().String()
	if got != "bold+italic+code" {
		t.Errorf("expected bold+italic+code, got %s", got)
	}
	if len(n.Marks) != 3 {
		t.Errorf("expected 3 marks, got %d", len(n.Marks))
	}
	if n.Marks[0].Type != MarkBold || n.Marks[2].Type != MarkCode {
		t.Errorf("marks not in canonical order: %v", n.Marks)
	}
}

func TestHeadingType(t *testing.T) {
	tests := []struct {
		level int
		want  NodeType
	}{
		{1, TypeHeading1},
		{6, TypeHeading6},
		{0, TypeHeading1},
		{9, TypeHeading6},
	}
	for _, tt := range tests {
		if got := HeadingType(tt.level); got != tt.want {
			t.Errorf("HeadingType(%d) = %s, want %s", tt.level, got, tt.want)
		}
	}
	if HeadingLevel(TypeParagraph) != 0 {
		t.Error("paragraph should have heading level 0")
	}
	if HeadingLevel(TypeHeading3) != 3 {
		t.Error("heading-3 should have level 3")
	}
}

func TestMarshalJSON(t *testing.T) {
	doc := NewDocument(NewParagraph(
		NewText("Hello "),
		NewText("world", MarkItalic),
	))

	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"nodeType":"document","data":{},"content":[` +
		`{"nodeType":"paragraph","data":{},"content":[` +
		`{"nodeType":"text","value":"Hello ","marks":[],"data":{}},` +
		`{"nodeType":"text","value":"world","marks":[{"type":"italic"}],"data":{}}]}]}`
	if string(b) != want {
		t.Errorf("Marshal()\n got: %s\nwant: %s", b, want)
	}
}

func TestMarshalJSONZeroValues(t *testing.T) {
	b, err := json.Marshal(&Node{NodeType: TypeHorizontalRule})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(b) != `{"nodeType":"horizontal-rule","data":{},"content":[]}` {
		t.Errorf("unexpected JSON: %s", b)
	}
}

func TestUnmarshalJSON(t *testing.T) {
	in := `{"nodeType":"document","content":[{"nodeType":"paragraph","content":[` +
		`{"nodeType":"text","value":"hi","marks":[{"type":"bold"}]}]}]}`

	var doc Node
	if err := json.Unmarshal([]byte(in), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if err := Validate(&doc); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got := doc.String(); got != `document[paragraph[text("hi" bold)]]` {
		t.Errorf("unexpected tree: %s", got)
	}
	if doc.Data == nil {
		t.Error("expected data to default to an empty object")
	}
}

func TestMarshalYAML(t *testing.T) {
	doc := NewDocument(NewParagraph(NewText("hi", MarkBold)))
	b, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	out := string(b)
	for _, want := range []string{"nodeType: document", "nodeType: text", "value: hi", "type: bold"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected YAML to contain %q, got:\n%s", want, out)
		}
	}
}

func TestWalkAndPlainText(t *testing.T) {
	doc := NewDocument(
		NewHeading(1, NewText("Title")),
		NewBlock(TypeUnorderedList,
			NewBlock(TypeListItem, NewParagraph(NewText("a"), NewText("b", MarkBold))),
		),
	)
	if got := doc.PlainText(); got != "Titleab" {
		t.Errorf("PlainText() = %q, want %q", got, "Titleab")
	}

	count := 0
	doc.Walk(func(n *Node) bool {
		count++
		return n.NodeType != TypeUnorderedList
	})
	// document, heading, text, list (children skipped)
	if count != 4 {
		t.Errorf("expected 4 visited nodes, got %d", count)
	}
}

func TestClone(t *testing.T) {
	list := NewBlock(TypeOrderedList, NewBlock(TypeListItem, NewParagraph(NewText("a", MarkBold))))
	list.Data["start"] = 2
	doc := NewDocument(list)

	c := doc.Clone()
	c.Content[0].Data["start"] = 5
	c.Content[0].Content[0].Content[0].Content[0].Value = "changed"

	if list.Data["start"] != 2 {
		t.Error("clone shares data with original")
	}
	if doc.PlainText() != "a" {
		t.Error("clone shares text nodes with original")
	}
	if err := Validate(c); err != nil {
		t.Errorf("Validate(clone) error = %v", err)
	}
}

func TestMarkSet(t *testing.T) {
	s := NewMarkSet(MarkItalic, "bogus")
	if !s.Has(MarkItalic) || s.Has(MarkBold) {
		t.Errorf("unexpected set %s", s)
	}
	if s.Has("bogus") {
		t.Error("unknown mark should never be a member")
	}
	s = s.With(MarkBold).Without(MarkItalic)
	if s.String() != "bold" {
		t.Errorf("expected bold, got %s", s)
	}
	if !MarkSet(0).Empty() || MarkSet(0).String() != "none" {
		t.Error("zero set should be empty and print as none")
	}
	if MarkSet(0).Marks() == nil {
		t.Error("Marks() must not return nil")
	}
}
