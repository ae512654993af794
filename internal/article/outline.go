package article

import (
	"html"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Outline is the heading tree of a document that carries no companion
// markup of its own, such as a PDF or DOCX file.
type Outline struct {
	Title    string
	Preamble string         // Text before the first heading
	Sections []*OutlineNode // Top-level sections
}

// OutlineNode is a recursive section in an outline.
type OutlineNode struct {
	Title    string // Section heading (empty for leaf text)
	Text     string // Paragraphs separated by blank lines
	Page     int    // Source page (0 if N/A)
	Children []*OutlineNode
}

// FromOutline renders o as a host page whose headings are indexable
// sections with ids Sec1, Sec2, ... in document order.
func FromOutline(o *Outline) (*goquery.Document, error) {
	var b strings.Builder
	if o.Title != "" {
		b.WriteString("<h1>" + html.EscapeString(o.Title) + "</h1>\n")
	}
	writeParagraphs(&b, o.Preamble)

	n := 0
	for _, sec := range o.Sections {
		writeNode(&b, sec, 2, &n)
	}
	return wrap(o.Title, b.String())
}

func writeNode(b *strings.Builder, node *OutlineNode, level int, n *int) {
	b.WriteString("<section>\n")
	if node.Title != "" {
		*n++
		id := "Sec" + strconv.Itoa(*n)
		tag := "h" + strconv.Itoa(min(level, 6))
		b.WriteString("<" + tag + ` class="c-article-section__title js-section-title js-c-reading-companion-sections-item" id="` + id + `"`)
		if node.Page > 0 {
			b.WriteString(` data-page="` + strconv.Itoa(node.Page) + `"`)
		}
		b.WriteString(">" + html.EscapeString(node.Title) + "</" + tag + ">\n")
	}
	writeParagraphs(b, node.Text)
	for _, child := range node.Children {
		writeNode(b, child, level+1, n)
	}
	b.WriteString("</section>\n")
}

func writeParagraphs(b *strings.Builder, text string) {
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			b.WriteString("<p>" + html.EscapeString(para) + "</p>\n")
		}
	}
}

// outlineBuilder assembles an outline from a flat run of headings and
// paragraphs, nesting each heading under the nearest shallower one.
type outlineBuilder struct {
	root  OutlineNode
	stack []outlineEntry
	text  strings.Builder
}

type outlineEntry struct {
	node  *OutlineNode
	level int
}

func newOutlineBuilder() *outlineBuilder {
	ob := &outlineBuilder{}
	ob.stack = []outlineEntry{{node: &ob.root, level: 0}}
	return ob
}

func (ob *outlineBuilder) heading(level int, title string) {
	ob.flush()
	node := &OutlineNode{Title: title}
	for len(ob.stack) > 1 && ob.stack[len(ob.stack)-1].level >= level {
		ob.stack = ob.stack[:len(ob.stack)-1]
	}
	parent := ob.stack[len(ob.stack)-1].node
	parent.Children = append(parent.Children, node)
	ob.stack = append(ob.stack, outlineEntry{node: node, level: level})
}

func (ob *outlineBuilder) paragraph(text string) {
	if ob.text.Len() > 0 {
		ob.text.WriteString("\n\n")
	}
	ob.text.WriteString(text)
}

func (ob *outlineBuilder) flush() {
	t := strings.TrimSpace(ob.text.String())
	if t != "" {
		top := ob.stack[len(ob.stack)-1].node
		if top.Text != "" {
			top.Text += "\n\n" + t
		} else {
			top.Text = t
		}
	}
	ob.text.Reset()
}

func (ob *outlineBuilder) outline(title string) *Outline {
	ob.flush()
	return &Outline{Title: title, Preamble: ob.root.Text, Sections: ob.root.Children}
}
