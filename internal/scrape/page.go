package scrape

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// Element wraps a parsed HTML node with traversal helpers. Retailer markup
// shifts often, so adapters probe a page with ordered matcher fallbacks
// instead of a single selector.
type Element struct {
	node *html.Node
}

// Matcher reports whether a node is of interest.
type Matcher func(*html.Node) bool

// ParseHTML parses a fetched page body into its root element.
func ParseHTML(body []byte) (*Element, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return &Element{node: root}, nil
}

// ByTag matches elements with the given tag name.
func ByTag(tag string) Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

// ByClass matches elements carrying the given class.
func ByClass(class string) Matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, cls := range strings.Fields(attrValue(n, "class")) {
			if cls == class {
				return true
			}
		}
		return false
	}
}

// ByAttr matches elements that carry the given attribute, regardless of value.
func ByAttr(key string) Matcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, a := range n.Attr {
			if a.Key == key {
				return true
			}
		}
		return false
	}
}

// ByTagAttrContains matches tag elements whose attribute value contains substr.
func ByTagAttrContains(tag, key, substr string) Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag &&
			strings.Contains(attrValue(n, key), substr)
	}
}

// Any matches a node satisfying at least one of the matchers.
func Any(matchers ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range matchers {
			if m(n) {
				return true
			}
		}
		return false
	}
}

// All matches a node satisfying every matcher.
func All(matchers ...Matcher) Matcher {
	return func(n *html.Node) bool {
		for _, m := range matchers {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

// FindAll returns every descendant matching m, in document order. Matched
// elements are not descended into, so nested product cards do not double up.
func (e *Element) FindAll(m Matcher) []*Element {
	var out []*Element
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n != e.node && m(n) {
			out = append(out, &Element{node: n})
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return out
}

// FindFirst returns the first descendant matching m, or nil.
func (e *Element) FindFirst(m Matcher) *Element {
	var found *Element
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n != e.node && m(n) {
			found = &Element{node: n}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(e.node)
	return found
}

// First returns the first descendant matching any of the ordered fallbacks.
func (e *Element) First(fallbacks ...Matcher) *Element {
	for _, m := range fallbacks {
		if el := e.FindFirst(m); el != nil {
			return el
		}
	}
	return nil
}

// Text returns the element's visible text, whitespace-collapsed.
func (e *Element) Text() string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return strings.Join(strings.Fields(b.String()), " ")
}

// Attr returns the value of the named attribute, or "".
func (e *Element) Attr(key string) string {
	return attrValue(e.node, key)
}

// Tag returns the element's tag name, or "" for non-element nodes.
func (e *Element) Tag() string {
	if e.node.Type != html.ElementNode {
		return ""
	}
	return e.node.Data
}

// HasAttr reports whether the attribute is present, even with an empty value.
func (e *Element) HasAttr(key string) bool {
	for _, a := range e.node.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
