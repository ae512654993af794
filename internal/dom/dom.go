// Package dom holds small helpers for building and copying x/net/html trees.
package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr is a name/value pair for Element.
type Attr struct {
	Key, Val string
}

// A is shorthand for building an Attr.
func A(key, val string) Attr {
	return Attr{Key: key, Val: val}
}

// Element creates a detached element node with the given attributes and children.
func Element(tag string, attrs []Attr, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for _, a := range attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
	return n
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Clone deep-copies n. The copy is detached and has every id attribute
// removed so it can be inserted without duplicating document ids.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	c := goquery.NewDocumentFromNode(n).Selection.Clone().Get(0)
	StripIDs(c)
	return c
}

// StripIDs removes id attributes from n and all its descendants.
func StripIDs(n *html.Node) {
	if n.Type == html.ElementNode {
		attrs := n.Attr[:0]
		for _, a := range n.Attr {
			if a.Key != "id" {
				attrs = append(attrs, a)
			}
		}
		n.Attr = attrs
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		StripIDs(c)
	}
}

// Collapse trims s and folds internal whitespace runs into single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// AddClass appends cls to n's class attribute unless already present.
func AddClass(n *html.Node, cls string) {
	for i, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, f := range strings.Fields(a.Val) {
			if f == cls {
				return
			}
		}
		n.Attr[i].Val = strings.TrimSpace(a.Val + " " + cls)
		return
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: cls})
}

// SetAttr sets or replaces an attribute on n.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// FirstElement returns the first element descendant of n in document order.
func FirstElement(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
		if e := FirstElement(c); e != nil {
			return e
		}
	}
	return nil
}
