package article

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/dom"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/net/html"
)

var shell = template.Must(template.New("article").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<main class="c-article-body">
<div data-component="article-container">
<article class="c-article-content">{{.Content}}</article>
<aside class="c-reading-companion">
<div class="c-reading-companion__sticky" data-component="reading-companion-sticky">
<div class="c-reading-companion__panel c-reading-companion__sections c-reading-companion__panel--active" id="tabpanel-sections"></div>
<div class="c-reading-companion__panel c-reading-companion__figures" id="tabpanel-figures"></div>
<div class="c-reading-companion__panel c-reading-companion__references" id="tabpanel-references"></div>
</div>
</aside>
</div>
</main>
</body>
</html>`))

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// FromMarkdown renders Markdown into a host page: h2/h3 headings become
// indexable sections, standalone images become figures and footnotes
// become references.
func FromMarkdown(src []byte, title string) (*goquery.Document, error) {
	var body bytes.Buffer
	if err := md.Convert(src, &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	doc, err := wrap(title, body.String())
	if err != nil {
		return nil, err
	}
	content := doc.Find("article.c-article-content")

	decorateSections(content)
	decorateFigures(content)
	decorateFootnotes(content)
	return doc, nil
}

// wrap places body in a host page with an article container and an empty
// companion mount. An empty title falls back to the first h1.
func wrap(title, body string) (*goquery.Document, error) {
	var page bytes.Buffer
	err := shell.Execute(&page, struct {
		Title   string
		Content template.HTML
	}{Title: title, Content: template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("render article shell: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&page)
	if err != nil {
		return nil, fmt.Errorf("parse article page: %w", err)
	}
	if title == "" {
		doc.Find("title").SetText(Title(doc, ""))
	}
	return doc, nil
}

func decorateSections(content *goquery.Selection) {
	content.Find("h2[id], h3[id]").Each(func(_ int, h *goquery.Selection) {
		h.AddClass("c-article-section__title js-section-title js-c-reading-companion-sections-item")
	})
}

func decorateFigures(content *goquery.Selection) {
	n := 0
	content.Find("p").Each(func(_ int, p *goquery.Selection) {
		img := p.Children()
		if img.Length() != 1 || !img.Is("img") || strings.TrimSpace(p.Text()) != "" {
			return
		}
		n++
		id := "Fig" + strconv.Itoa(n)
		src := img.AttrOr("src", "")
		alt := img.AttrOr("alt", "")

		caption := dom.Element("figcaption", nil,
			dom.Element("b", []dom.Attr{
				dom.A("id", id),
				dom.A("class", "c-article-section__figure-caption"),
			}, dom.Text("Fig. "+strconv.Itoa(n))))
		if alt != "" {
			caption.AppendChild(dom.Text(" " + alt))
		}

		block := dom.Element("div", []dom.Attr{
			dom.A("class", "c-article-section__figure js-c-reading-companion-figures-item"),
		}, dom.Element("figure", nil,
			caption,
			dom.Element("div", []dom.Attr{dom.A("class", "c-article-section__figure-item")},
				dom.Element("picture", nil, dom.Element("img", []dom.Attr{
					dom.A("src", src),
					dom.A("alt", alt),
				}))),
			dom.Element("a", []dom.Attr{
				dom.A("class", "c-article__pill-button"),
				dom.A("href", src),
			}, dom.Text("Full size image")),
		))
		p.ReplaceWithNodes(block)
	})
}

func decorateFootnotes(content *goquery.Selection) {
	notes := content.Find(".footnotes li[id]")
	if notes.Length() == 0 {
		return
	}

	renamed := map[string]string{}
	notes.Each(func(i int, li *goquery.Selection) {
		old := li.AttrOr("id", "")
		id := "ref-CR" + strconv.Itoa(i+1)
		renamed[old] = id

		li.Find(".footnote-backref").Remove()

		var links []*html.Node
		li.Find(`a[href^="http"]`).Each(func(_ int, a *goquery.Selection) {
			links = append(links, dom.Element("li", nil, dom.Clone(a.Get(0))))
		})

		text := dom.Collapse(li.Text())
		li.Empty()
		li.RemoveAttr("id")
		li.AddClass("c-article-references__item js-c-reading-companion-references-item")
		li.AppendNodes(
			dom.Element("span", []dom.Attr{dom.A("class", "c-article-references__counter")}, dom.Text(strconv.Itoa(i+1)+".")),
			dom.Element("p", []dom.Attr{
				dom.A("class", "c-article-references__text"),
				dom.A("id", id),
			}, dom.Text(text)),
		)
		if len(links) > 0 {
			li.AppendNodes(dom.Element("ul", []dom.Attr{dom.A("class", "c-article-references__links")}, links...))
		}
	})

	content.Find("a.footnote-ref").Each(func(i int, a *goquery.Selection) {
		target := strings.TrimPrefix(a.AttrOr("href", ""), "#")
		if id, ok := renamed[target]; ok {
			a.SetAttr("href", "#"+id)
		}
		if _, ok := a.Attr("id"); !ok {
			a.SetAttr("id", "ref-link-"+strconv.Itoa(i+1))
		}
	})
}
