package model

import (
	"fmt"

	"golang.org/x/net/html"
)

// Category identifies one of the companion's tabs.
type Category int

const (
	Sections Category = iota
	Figures
	References
)

// Order is the fixed display order of categories.
var Order = []Category{Sections, Figures, References}

func (c Category) String() string {
	switch c {
	case Sections:
		return "sections"
	case Figures:
		return "figures"
	case References:
		return "references"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Title is the human-readable tab label.
func (c Category) Title() string {
	switch c {
	case Sections:
		return "Sections"
	case Figures:
		return "Figures"
	case References:
		return "References"
	}
	return ""
}

// ParseCategory maps a tab target ("sections", "figures", "references") to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Order {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Item is one navigable entry derived from the host document.
type Item struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"-"`

	Level     int        `json:"level,omitempty"` // Heading level (sections only)
	Figure    *Figure    `json:"figure,omitempty"`
	Reference *Reference `json:"reference,omitempty"`

	// Citations are ids of in-text anchors that link to this item.
	Citations []string `json:"citations,omitempty"`
}

// Figure holds the figure payload. Caption and Media are detached clones of
// the source markup and are never attached to the document directly.
type Figure struct {
	Caption       *html.Node `json:"-"`
	Media         *html.Node `json:"-"`
	FullSizeURL   string     `json:"full_size_url,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	Supplementary bool       `json:"supplementary,omitempty"`
}

// Reference holds the citation payload. Links are detached clones of the
// source link list entries.
type Reference struct {
	Number string       `json:"number,omitempty"`
	Text   string       `json:"text"`
	Links  []*html.Node `json:"-"`
}

// Model is the scanned companion content, one list per category.
type Model struct {
	Sections   []Item `json:"sections"`
	Figures    []Item `json:"figures"`
	References []Item `json:"references"`
}

// Items returns the items of a category.
func (m Model) Items(c Category) []Item {
	switch c {
	case Sections:
		return m.Sections
	case Figures:
		return m.Figures
	case References:
		return m.References
	}
	return nil
}

// Present lists the non-empty categories in display order.
func (m Model) Present() []Category {
	var out []Category
	for _, c := range Order {
		if len(m.Items(c)) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Empty reports whether every category is empty.
func (m Model) Empty() bool {
	return len(m.Present()) == 0
}

// Tabbed reports whether the companion needs a tab strip. A document with
// only sections is shown under a plain heading.
func (m Model) Tabbed() bool {
	return len(m.Figures) > 0 || len(m.References) > 0
}

// Find looks up an item by category and id.
func (m Model) Find(c Category, id string) (Item, bool) {
	for _, it := range m.Items(c) {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
