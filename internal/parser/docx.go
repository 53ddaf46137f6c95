package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fumiama/go-docx"
	"golang.org/x/net/html"
)

// DOCXParser handles .docx files. Heading styles become <h1>..<h6>, every
// other non-empty paragraph a <p>.
type DOCXParser struct{}

// block is one paragraph of a word-processing document; level 0 is body text.
type block struct {
	level int
	text  string
}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*Document, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docmark-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []block
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if text := docxParagraphText(para); text != "" {
			blocks = append(blocks, block{level: docxHeadingLevel(para), text: text})
		}
	}

	root, title := buildBlocks(blocks, baseTitle(filename))
	return &Document{Root: root, Title: title}, nil
}

// buildBlocks lays blocks out as headings and paragraphs. The first top-level
// heading titles the document.
func buildBlocks(blocks []block, fallback string) (*html.Node, string) {
	title := fallback
	for _, b := range blocks {
		if b.level == 1 {
			title = b.text
			break
		}
	}
	doc, body := newDocument(title)
	for _, b := range blocks {
		tag := "p"
		if b.level > 0 {
			tag = "h" + strconv.Itoa(b.level)
		}
		appendBlock(body, tag, b.text)
	}
	return doc, title
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	return headingStyleLevel(para.Properties.Style.Val)
}

// headingStyleLevel maps "Heading2" or "heading 2" to 2, anything else to 0.
func headingStyleLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if !strings.HasPrefix(s, "heading") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "heading"))
	if err != nil || n < 1 || n > 6 {
		return 0
	}
	return n
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
