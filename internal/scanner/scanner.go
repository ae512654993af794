// Package scanner reads companion content out of host document markup.
// It is the only package that queries the host document; everything
// downstream works on the returned model.
package scanner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/dgallion1/readcomp/internal/dom"
	"github.com/dgallion1/readcomp/internal/model"
)

// Options controls scanning.
type Options struct {
	// Access allows full size image links to be picked up.
	Access bool
	// SupplementaryImageBase is prefixed to data-supp-info-image file names.
	SupplementaryImageBase string
}

var (
	articleMatcher   = cascadia.MustCompile(`[data-component="article-container"]`)
	mountMatcher     = cascadia.MustCompile(".c-reading-companion")
	sectionMatcher   = cascadia.MustCompile(".js-c-reading-companion-sections-item")
	figureMatcher    = cascadia.MustCompile(".js-c-reading-companion-figures-item")
	referenceMatcher = cascadia.MustCompile(".js-c-reading-companion-references-item")
	anchorMatcher    = cascadia.MustCompile("section[id], .c-article-section[id]")
	citeMatcher      = cascadia.MustCompile(`a[href^="#"][id]`)
	headingMatcher   = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")
	pillMatcher      = cascadia.MustCompile("a.c-article__pill-button")
)

// Scan builds the companion model from the current state of doc.
func Scan(doc *goquery.Document, opts Options) model.Model {
	root := doc.Selection
	if article := doc.FindMatcher(articleMatcher); article.Length() > 0 {
		root = article.First()
	}

	cites := citations(root)
	var m model.Model

	seen := map[string]bool{}
	indexable(root, sectionMatcher).Each(func(_ int, s *goquery.Selection) {
		it, ok := scanSection(s)
		if !ok || seen[it.ID] {
			return
		}
		seen[it.ID] = true
		it.Citations = cites[it.ID]
		m.Sections = append(m.Sections, it)
	})

	seen = map[string]bool{}
	indexable(root, figureMatcher).Each(func(_ int, s *goquery.Selection) {
		it, ok := scanFigure(s, opts)
		if !ok || seen[it.ID] {
			return
		}
		seen[it.ID] = true
		it.Citations = cites[it.ID]
		m.Figures = append(m.Figures, it)
	})

	seen = map[string]bool{}
	indexable(root, referenceMatcher).Each(func(_ int, s *goquery.Selection) {
		it, ok := scanReference(s)
		if !ok || seen[it.ID] {
			return
		}
		seen[it.ID] = true
		it.Citations = cites[it.ID]
		m.References = append(m.References, it)
	})

	return m
}

// indexable returns matches of m under root, excluding anything inside the
// companion mount so previously rendered panels are never rescanned.
func indexable(root *goquery.Selection, m goquery.Matcher) *goquery.Selection {
	return root.FindMatcher(m).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.ClosestMatcher(mountMatcher).Length() == 0
	})
}

func scanSection(s *goquery.Selection) (model.Item, bool) {
	id := s.AttrOr("id", "")
	if id == "" {
		// Some headings sit inside a wrapper that carries the anchor.
		id = s.ClosestMatcher(anchorMatcher).AttrOr("id", "")
	}
	if id == "" {
		return model.Item{}, false
	}
	return model.Item{
		ID:       id,
		Label:    dom.Collapse(s.Text()),
		Category: model.Sections,
		Level:    headingLevel(goquery.NodeName(s)),
	}, true
}

func scanFigure(s *goquery.Selection, opts Options) (model.Item, bool) {
	caption := s.Find("figcaption").First()
	if caption.Length() == 0 {
		return scanSupplementary(s, opts)
	}

	title := caption.Find("[id]").First()
	if title.Length() == 0 {
		title = caption
	}
	id := title.AttrOr("id", "")
	if id == "" {
		id = s.AttrOr("id", "")
	}
	if id == "" {
		return model.Item{}, false
	}

	fig := &model.Figure{Caption: dom.Clone(caption.Get(0))}

	media := s.Find("picture").First()
	if media.Length() == 0 {
		media = s.Find("img").First()
	}
	if media.Length() > 0 {
		fig.Media = dom.Clone(media.Get(0))
	}

	if opts.Access {
		fig.FullSizeURL = fullSizeLink(s)
	}

	label := dom.Collapse(title.Text())
	if label == "" {
		label = dom.Collapse(caption.Text())
	}
	return model.Item{ID: id, Label: label, Category: model.Figures, Figure: fig}, true
}

// scanSupplementary handles extended data items, which carry their id on the
// item itself and their title in a heading link instead of a caption.
func scanSupplementary(s *goquery.Selection, opts Options) (model.Item, bool) {
	id := s.AttrOr("id", "")
	if id == "" {
		return model.Item{}, false
	}

	heading := s.FindMatcher(headingMatcher).First()
	link := heading.Find("a").First()
	if link.Length() == 0 {
		link = s.Find("a").First()
	}

	label := dom.Collapse(link.Text())
	if label == "" {
		label = dom.Collapse(heading.Text())
	}
	if label == "" {
		label = id
	}

	fig := &model.Figure{Supplementary: true}
	if image := link.AttrOr("data-supp-info-image", ""); image != "" {
		fig.ImageURL = joinImage(opts.SupplementaryImageBase, image)
	}
	if opts.Access {
		fig.FullSizeURL = link.AttrOr("href", "")
	}
	return model.Item{ID: id, Label: label, Category: model.Figures, Figure: fig}, true
}

func scanReference(s *goquery.Selection) (model.Item, bool) {
	id := s.AttrOr("id", "")
	if id == "" {
		id = s.Find("[id]").First().AttrOr("id", "")
	}
	if id == "" {
		return model.Item{}, false
	}

	ref := &model.Reference{
		Number: dom.Collapse(s.Find(".c-article-references__counter").First().Text()),
	}
	if text := s.Find(".c-article-references__text").First(); text.Length() > 0 {
		ref.Text = dom.Collapse(text.Text())
	} else {
		rest := s.Clone()
		rest.Find("ul, .c-article-references__counter").Remove()
		ref.Text = dom.Collapse(rest.Text())
	}

	s.Find(".c-article-references__links > li").Each(func(_ int, li *goquery.Selection) {
		ref.Links = append(ref.Links, dom.Clone(li.Get(0)))
	})

	return model.Item{ID: id, Label: ref.Text, Category: model.References, Reference: ref}, true
}

func fullSizeLink(s *goquery.Selection) string {
	if pill := s.FindMatcher(pillMatcher).First(); pill.Length() > 0 {
		return pill.AttrOr("href", "")
	}
	var href string
	s.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.EqualFold(dom.Collapse(a.Text()), "Full size image") {
			href = a.AttrOr("href", "")
			return false
		}
		return true
	})
	return href
}

// citations maps target ids to the ids of in-text anchors pointing at them.
func citations(root *goquery.Selection) map[string][]string {
	out := map[string][]string{}
	indexable(root, citeMatcher).Each(func(_ int, a *goquery.Selection) {
		target := strings.TrimPrefix(a.AttrOr("href", ""), "#")
		id := a.AttrOr("id", "")
		if target == "" || target == id {
			return
		}
		out[target] = append(out[target], id)
	})
	return out
}

func joinImage(base, name string) string {
	if base == "" || strings.HasPrefix(name, "//") || strings.Contains(name, "://") {
		return name
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(name, "/")
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}
