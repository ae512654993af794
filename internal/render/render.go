// Package render turns scanned items into companion panel markup.
// Every function returns a detached tree; nothing here reads or writes the
// host document.
package render

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dgallion1/readcomp/internal/dom"
	"github.com/dgallion1/readcomp/internal/model"
	"golang.org/x/net/html"
)

// Class names shared with the panel builder and the synchronizer.
const (
	SectionItemClass   = "c-reading-companion__section-item"
	FigureItemClass    = "c-reading-companion__figure-item"
	ReferenceItemClass = "c-reading-companion__reference-item"
	FigureTitleClass   = "c-reading-companion__figure-title"
	FigureLinksClass   = "c-reading-companion__figure-links"
	FullLinkClass      = "c-reading-companion__figure-full-link"
	ReferenceLinks     = "c-reading-companion__reference-links"
	CitationClass      = "c-reading-companion__reference-citation"
)

// TrackLabel builds the data-track-label value for a visible label: every
// rune that is not a letter, digit or space is dropped.
func TrackLabel(label string) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			return r
		}
		return -1
	}, label)
	return "link:" + clean
}

// ItemID returns the generated element id of an item inside the companion.
func ItemID(c model.Category, id string) string {
	switch c {
	case model.Sections:
		return "rc-sec-" + id
	case model.References:
		return "rc-ref-" + strings.TrimPrefix(id, "ref-")
	default:
		return "rc-" + id
	}
}

// Item dispatches to the renderer for the item's category.
func Item(it model.Item, access bool) *html.Node {
	switch it.Category {
	case model.Figures:
		return Figure(it, access)
	case model.References:
		return Reference(it)
	default:
		return Section(it)
	}
}

// Section renders a sections list entry linking to the heading anchor.
func Section(it model.Item) *html.Node {
	link := dom.Element("a", []dom.Attr{
		dom.A("href", "#"+it.ID),
		dom.A("data-track", "click"),
		dom.A("data-track-action", "section anchor"),
		dom.A("data-track-label", TrackLabel(it.Label)),
	}, dom.Text(it.Label))

	return dom.Element("li", []dom.Attr{
		dom.A("id", ItemID(model.Sections, it.ID)),
		dom.A("class", SectionItemClass),
		dom.A("data-level", levelAttr(it.Level)),
	}, link)
}

// Figure renders a figure card: caption, media and a links block. The full
// size link is included only when access is granted and a URL is known.
func Figure(it model.Item, access bool) *html.Node {
	f := it.Figure
	if f == nil {
		f = &model.Figure{}
	}

	figure := dom.Element("figure", nil, figureCaption(it, f))
	if media := figureMedia(it, f); media != nil {
		figure.AppendChild(dom.Element("div", []dom.Attr{dom.A("class", "c-reading-companion__figure-item")}, media))
	}

	links := dom.Element("ul", []dom.Attr{dom.A("class", FigureLinksClass)},
		dom.Element("li", nil, dom.Element("a", []dom.Attr{
			dom.A("href", "#"+it.ID),
			dom.A("data-track", "click"),
			dom.A("data-track-action", "figure anchor"),
			dom.A("data-track-label", TrackLabel(it.Label)),
		}, dom.Text("View in article"))),
	)
	if access && f.FullSizeURL != "" {
		links.AppendChild(dom.Element("li", nil, dom.Element("a", []dom.Attr{
			dom.A("class", FullLinkClass),
			dom.A("href", f.FullSizeURL),
			dom.A("data-track", "click"),
			dom.A("data-track-action", "view figure"),
			dom.A("data-track-label", "image"),
		}, dom.Text("Full size image"))))
	}

	return dom.Element("li", []dom.Attr{
		dom.A("id", ItemID(model.Figures, it.ID)),
		dom.A("class", FigureItemClass),
	}, figure, links)
}

func figureCaption(it model.Item, f *model.Figure) *html.Node {
	titleAttrs := []dom.Attr{
		dom.A("class", FigureTitleClass),
		dom.A("id", "rc-heading-"+it.ID),
	}
	if f.Caption == nil || f.Supplementary {
		return dom.Element("figcaption", nil, dom.Element("b", titleAttrs, dom.Text(it.Label)))
	}

	caption := dom.Clone(f.Caption)
	title := dom.FirstElement(caption)
	if title == nil {
		title = dom.Element("b", nil, dom.Text(it.Label))
		for c := caption.FirstChild; c != nil; {
			next := c.NextSibling
			caption.RemoveChild(c)
			c = next
		}
		caption.AppendChild(title)
	}
	for _, a := range titleAttrs {
		if a.Key == "class" {
			dom.AddClass(title, a.Val)
			continue
		}
		dom.SetAttr(title, a.Key, a.Val)
	}
	return caption
}

func figureMedia(it model.Item, f *model.Figure) *html.Node {
	if f.Media != nil {
		return dom.Clone(f.Media)
	}
	if f.ImageURL == "" {
		return nil
	}
	return dom.Element("picture", nil, dom.Element("img", []dom.Attr{
		dom.A("src", f.ImageURL),
		dom.A("alt", it.Label),
		dom.A("loading", "lazy"),
	}))
}

// Reference renders a citation card with its cloned external links.
func Reference(it model.Item) *html.Node {
	r := it.Reference
	if r == nil {
		r = &model.Reference{Text: it.Label}
	}

	citation := strings.TrimSpace(r.Number + " " + r.Text)
	li := dom.Element("li", []dom.Attr{
		dom.A("id", ItemID(model.References, it.ID)),
		dom.A("class", ReferenceItemClass),
	}, dom.Element("p", []dom.Attr{dom.A("class", CitationClass)}, dom.Text(citation)))

	if len(r.Links) > 0 {
		links := dom.Element("ul", []dom.Attr{dom.A("class", ReferenceLinks)})
		for _, l := range r.Links {
			links.AppendChild(dom.Clone(l))
		}
		li.AppendChild(links)
	}
	return li
}

func levelAttr(level int) string {
	if level <= 0 {
		return "2"
	}
	return strconv.Itoa(level)
}
