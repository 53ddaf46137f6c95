package navigate

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docmark/internal/dom"
	"golang.org/x/net/html"
)

var ignoredTags = map[string]bool{
	"script": true, "style": true, "nav": true, "header": true, "footer": true,
	"aside": true, "button": true, "input": true, "textarea": true, "select": true,
}

var mainContentSelectors = []string{"article", "main", ".main-content", "#content"}

// MainContent picks the element most likely to hold the page's content,
// falling back to the body.
func MainContent(root *html.Node) *html.Node {
	for _, sel := range mainContentSelectors {
		if n, err := dom.QueryFirst(root, sel); err == nil && n != nil {
			return n
		}
	}
	return dom.Body(root)
}

// IsContentNode reports whether element n is worth navigating into: not a
// structural or interactive tag, not hidden, not navigation chrome by class
// name, and dense in text.
func IsContentNode(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	if ignoredTags[strings.ToLower(n.Data)] {
		return false
	}
	if dom.Hidden(n) {
		return false
	}
	if isChrome(n) {
		return false
	}
	return IsInformationDense(n)
}

func isChrome(n *html.Node) bool {
	class := strings.ToLower(dom.ClassName(n))
	return strings.Contains(class, "nav") || strings.Contains(class, "menu") || strings.Contains(class, "sidebar")
}

// IsInformationDense reports whether more than half of n's inner markup is text.
func IsInformationDense(n *html.Node) bool {
	if !dom.IsElement(n) {
		return false
	}
	markup := utf8.RuneCountInString(dom.InnerHTML(n))
	if markup == 0 {
		return false
	}
	text := utf8.RuneCountInString(dom.TextContent(n))
	return float64(text)/float64(markup) > 0.5
}

// IsVisibleTextNode reports whether the cursor may stop in text node n.
// Density is not considered; an ancestor being excluded by tag, visibility or
// class is enough to skip it.
func IsVisibleTextNode(n *html.Node) bool {
	if !dom.IsText(n) || strings.TrimSpace(n.Data) == "" {
		return false
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if ignoredTags[p.Data] || dom.Hidden(p) || isChrome(p) {
			return false
		}
	}
	return true
}

// NextVisibleTextNode returns the closest visible text node after n.
func NextVisibleTextNode(n *html.Node) *html.Node {
	next := dom.NextTextNode(n)
	for next != nil && !IsVisibleTextNode(next) {
		next = dom.NextTextNode(next)
	}
	return next
}

// PrevVisibleTextNode returns the closest visible text node before n.
func PrevVisibleTextNode(n *html.Node) *html.Node {
	prev := dom.PrevTextNode(n)
	for prev != nil && !IsVisibleTextNode(prev) {
		prev = dom.PrevTextNode(prev)
	}
	return prev
}

// VisibleTextNodesIn lists the visible text nodes under n in document order.
func VisibleTextNodesIn(n *html.Node) []*html.Node {
	var out []*html.Node
	for _, t := range dom.TextNodes(n) {
		if IsVisibleTextNode(t) {
			out = append(out, t)
		}
	}
	return out
}

// NextContentNode steps forward from n, descending only into content
// elements, and returns the next non-blank text node or the first child of
// the next non-blank content element.
func NextContentNode(n *html.Node) *html.Node {
	cur := n
	for cur != nil {
		switch {
		case cur.FirstChild != nil && IsContentNode(cur):
			cur = cur.FirstChild
		case cur.NextSibling != nil:
			cur = cur.NextSibling
		default:
			for cur.Parent != nil && cur.Parent.NextSibling == nil {
				cur = cur.Parent
			}
			if cur.Parent == nil {
				return nil
			}
			cur = cur.Parent.NextSibling
		}
		if dom.IsText(cur) && strings.TrimSpace(cur.Data) != "" {
			return cur
		}
		if dom.IsElement(cur) && IsContentNode(cur) && strings.TrimSpace(dom.TextContent(cur)) != "" {
			return cur.FirstChild
		}
	}
	return nil
}
