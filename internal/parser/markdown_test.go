package parser

import (
	"strings"
	"testing"

	"github.com/dgallion1/docmark/internal/dom"
)

func TestMarkdownParser_RendersBlocks(t *testing.T) {
	input := `# Title

Intro text with **bold** words.

## Section A

- one
- two

| a | b |
|---|---|
| 1 | 2 |
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "Title" {
		t.Errorf("expected title %q, got %q", "Title", doc.Title)
	}
	for sel, want := range map[string]string{
		"h1":         "Title",
		"h2":         "Section A",
		"p strong":   "bold",
		"ul li":      "one",
		"table td":   "1",
		"head title": "Title",
	} {
		n, err := dom.QueryFirst(doc.Root, sel)
		if err != nil {
			t.Fatalf("query %q: %v", sel, err)
		}
		if n == nil {
			t.Errorf("expected an element for %q", sel)
			continue
		}
		if got := dom.TextContent(n); got != want {
			t.Errorf("%s: expected %q, got %q", sel, want, got)
		}
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph.`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("expected fallback title %q, got %q", "notes", doc.Title)
	}
	body := dom.Body(doc.Root)
	if got := strings.TrimSpace(dom.TextContent(body)); !strings.Contains(got, "Another paragraph.") {
		t.Errorf("expected body text to contain second paragraph, got %q", got)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if dom.Body(doc.Root) == nil {
		t.Fatal("expected a body element")
	}
}
