package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// QueryFirst returns the first descendant of root matching the CSS selector,
// or nil when nothing matches.
func QueryFirst(root *html.Node, selector string) (*html.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("compile selector %q: %w", selector, err)
	}
	return cascadia.Query(root, sel), nil
}

// Body returns the body element of the document, or root itself when the
// tree has none.
func Body(root *html.Node) *html.Node {
	if IsElement(root) && root.Data == "body" {
		return root
	}
	if b, _ := QueryFirst(root, "body"); b != nil {
		return b
	}
	return root
}

// Head returns the head element of the document, or nil.
func Head(root *html.Node) *html.Node {
	h, _ := QueryFirst(root, "head")
	return h
}
