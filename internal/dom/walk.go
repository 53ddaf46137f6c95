package dom

import "golang.org/x/net/html"

// Next returns the node following n in document order.
func Next(n *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	return nextSkippingChildren(n)
}

// Prev returns the node preceding n in document order.
func Prev(n *html.Node) *html.Node {
	if n.PrevSibling == nil {
		return n.Parent
	}
	c := n.PrevSibling
	for c.LastChild != nil {
		c = c.LastChild
	}
	return c
}

func nextSkippingChildren(n *html.Node) *html.Node {
	for c := n; c != nil; c = c.Parent {
		if c.NextSibling != nil {
			return c.NextSibling
		}
	}
	return nil
}

// NextTextNode returns the first text node after n and outside its subtree.
func NextTextNode(n *html.Node) *html.Node {
	for c := nextSkippingChildren(n); c != nil; c = Next(c) {
		if c.Type == html.TextNode {
			return c
		}
	}
	return nil
}

// PrevTextNode returns the closest text node before n in document order.
func PrevTextNode(n *html.Node) *html.Node {
	for c := Prev(n); c != nil; c = Prev(c) {
		if c.Type == html.TextNode {
			return c
		}
	}
	return nil
}

// TextNodes lists the text nodes under root in document order, root included.
func TextNodes(root *html.Node) []*html.Node {
	var out []*html.Node
	Walk(root, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Walk visits root and its descendants in document order. Returning false
// from fn skips the children of the visited node.
func Walk(root *html.Node, fn func(*html.Node) bool) {
	if !fn(root) {
		return
	}
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		Walk(c, fn)
		c = next
	}
}
