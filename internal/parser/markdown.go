package parser

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// MarkdownParser renders Markdown to HTML with goldmark. Raw HTML in the
// source is omitted.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := markdown.Convert(src, &out); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	doc, err := html.Parse(&out)
	if err != nil {
		return nil, fmt.Errorf("parse rendered markdown: %w", err)
	}

	title := documentTitle(doc)
	if title == "" {
		title = baseTitle(filename)
	}
	setTitle(doc, title)
	return &Document{Root: doc, Title: title}, nil
}
