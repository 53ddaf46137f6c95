package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags the user agent never renders.
var unrenderedTags = map[string]bool{
	"head": true, "title": true, "meta": true, "link": true, "base": true,
	"script": true, "style": true, "template": true, "noscript": true,
}

var blockTags = map[string]bool{
	"html": true, "body": true, "address": true, "article": true, "aside": true,
	"blockquote": true, "details": true, "dialog": true, "dd": true, "div": true,
	"dl": true, "dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hgroup": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "caption": true, "thead": true, "tbody": true, "tfoot": true,
	"tr": true, "td": true, "th": true, "ul": true, "summary": true,
}

// InlineStyle parses the style attribute of n into lower-cased declarations.
func InlineStyle(n *html.Node) map[string]string {
	decls := map[string]string{}
	if n.Type != html.ElementNode {
		return decls
	}
	for _, decl := range strings.Split(Attr(n, "style"), ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.ToLower(strings.TrimSpace(val))
		val = strings.TrimSpace(strings.TrimSuffix(val, "!important"))
		if prop != "" {
			decls[prop] = val
		}
	}
	return decls
}

// Display returns the computed display value of element n.
func Display(n *html.Node) string {
	if v, ok := InlineStyle(n)["display"]; ok && v != "" {
		return v
	}
	if unrenderedTags[n.Data] || HasAttr(n, "hidden") {
		return "none"
	}
	if blockTags[n.Data] {
		return "block"
	}
	return "inline"
}

// Visibility returns the computed visibility of n, inherited from its ancestors.
func Visibility(n *html.Node) string {
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		if v, ok := InlineStyle(c)["visibility"]; ok && v != "" && v != "inherit" {
			return v
		}
	}
	return "visible"
}

// Hidden reports whether element n computes to display:none or an invisible
// visibility. It does not look at ancestors' display.
func Hidden(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if Display(n) == "none" {
		return true
	}
	v := Visibility(n)
	return v == "hidden" || v == "collapse"
}

// Rendered reports whether n generates boxes: no element from n up to the
// root has display:none, and visibility is not hidden.
func Rendered(n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c.Type == html.ElementNode && Display(c) == "none" {
			return false
		}
	}
	v := Visibility(n)
	return v != "hidden" && v != "collapse"
}

// IsBlock reports whether element n starts a new line box.
func IsBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch Display(n) {
	case "block", "flex", "grid", "list-item", "table", "table-row", "table-cell":
		return true
	}
	return false
}

// PreservesWhitespace reports whether text under n is laid out verbatim.
func PreservesWhitespace(n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c.Type != html.ElementNode {
			continue
		}
		if ws, ok := InlineStyle(c)["white-space"]; ok {
			return strings.HasPrefix(ws, "pre") || ws == "break-spaces"
		}
		if c.Data == "pre" || c.Data == "textarea" {
			return true
		}
	}
	return false
}

// ClassName returns the class attribute of n.
func ClassName(n *html.Node) string {
	return Attr(n, "class")
}
