package parser

import (
	"fmt"
	"io"

	"golang.org/x/net/html"
)

// HTMLParser handles HTML files. The tree is kept as parsed.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	title := documentTitle(doc)
	if title == "" {
		title = baseTitle(filename)
	}
	return &Document{Root: doc, Title: title}, nil
}
