package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/docmark/internal/dom"
	"golang.org/x/net/html"
)

// newDocument returns an empty document titled title, and its body.
func newDocument(title string) (doc, body *html.Node) {
	doc = &html.Node{Type: html.DocumentNode}
	root := dom.NewElement("html")
	head := dom.NewElement("head")
	body = dom.NewElement("body")
	doc.AppendChild(root)
	root.AppendChild(head)
	root.AppendChild(body)
	setTitle(doc, title)
	return doc, body
}

// appendBlock appends <tag>text</tag> to parent and returns the element.
func appendBlock(parent *html.Node, tag, text string) *html.Node {
	el := dom.NewElement(tag)
	if text != "" {
		el.AppendChild(dom.NewText(text))
	}
	parent.AppendChild(el)
	return el
}

// appendLines appends a paragraph with <br> between lines.
func appendLines(parent *html.Node, lines []string) *html.Node {
	p := dom.NewElement("p")
	for i, line := range lines {
		if i > 0 {
			p.AppendChild(dom.NewElement("br"))
		}
		p.AppendChild(dom.NewText(line))
	}
	parent.AppendChild(p)
	return p
}

// documentTitle returns the <title> text, else the first <h1>, else "".
func documentTitle(doc *html.Node) string {
	d := goquery.NewDocumentFromNode(doc)
	if t := strings.TrimSpace(d.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(d.Find("h1").First().Text())
}

// setTitle replaces the document's <title>.
func setTitle(doc *html.Node, title string) {
	if title == "" {
		return
	}
	head := dom.Head(doc)
	if head == nil {
		return
	}
	d := goquery.NewDocumentFromNode(head)
	d.Find("title").Remove()
	appendBlock(head, "title", title)
}
