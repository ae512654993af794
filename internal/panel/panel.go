// Package panel builds the companion's tab strip and panels inside the
// host mount point and keeps an index of what it rendered.
package panel

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/dom"
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/render"
	"golang.org/x/net/html"
)

// ErrNoMount is returned when the document has no companion mount point.
var ErrNoMount = errors.New("companion mount not found")

const (
	MountSelector  = ".c-reading-companion"
	stickySelector = `[data-component="reading-companion-sticky"]`

	TabsClass        = "c-reading-companion__tabs"
	TabClass         = "c-reading-companion__tab"
	TabActiveClass   = "c-reading-companion__tab--active"
	PanelClass       = "c-reading-companion__panel"
	PanelActiveClass = "c-reading-companion__panel--active"
	HeadingClass     = "c-reading-companion__heading"
	ScrollPaneClass  = "c-reading-companion__scroll-pane"
)

// TabID returns the id of a category's tab button (or heading).
func TabID(c model.Category) string { return "tab-" + c.String() }

// PanelID returns the id of a category's panel.
func PanelID(c model.Category) string { return "tabpanel-" + c.String() }

// ListClass returns the class of a category's item list.
func ListClass(c model.Category) string { return "c-reading-companion__" + c.String() + "-list" }

// Tab is one rendered tab with its panel.
type Tab struct {
	Category model.Category
	Button   *goquery.Selection
	Panel    *goquery.Selection
}

// Index is the lookup table over what Build rendered. It is rebuilt on
// every Build and never re-queries the document.
type Index struct {
	Strip   *goquery.Selection // nil in heading-only mode
	Heading *goquery.Selection // nil in tabbed mode

	tabs   []Tab
	panels map[model.Category]*goquery.Selection
	items  map[model.Category]map[string]*goquery.Selection
}

// Tabs returns the tabs in display order.
func (ix *Index) Tabs() []Tab {
	return ix.tabs
}

// Tab returns the tab of c.
func (ix *Index) Tab(c model.Category) (Tab, bool) {
	for _, t := range ix.tabs {
		if t.Category == c {
			return t, true
		}
	}
	return Tab{}, false
}

// Panel returns the panel of c.
func (ix *Index) Panel(c model.Category) *goquery.Selection {
	return ix.panels[c]
}

// Item returns the rendered element for the item id in category c.
func (ix *Index) Item(c model.Category, id string) (*goquery.Selection, bool) {
	s, ok := ix.items[c][id]
	return s, ok
}

// Len returns the number of rendered items in c.
func (ix *Index) Len(c model.Category) int {
	return len(ix.items[c])
}

// Select marks c's tab and panel active and every other tab and panel
// inactive. It reports false when c has no tab.
func (ix *Index) Select(c model.Category) bool {
	if _, ok := ix.Tab(c); !ok {
		return false
	}
	for _, t := range ix.tabs {
		active := t.Category == c
		t.Button.SetAttr("aria-selected", fmt.Sprint(active))
		if active {
			t.Button.AddClass(TabActiveClass)
			t.Button.SetAttr("tabindex", "0")
		} else {
			t.Button.RemoveClass(TabActiveClass)
			t.Button.SetAttr("tabindex", "-1")
		}
	}
	for pc, p := range ix.panels {
		if pc == c {
			p.AddClass(PanelActiveClass)
		} else {
			p.RemoveClass(PanelActiveClass)
		}
	}
	return true
}

// Build renders m into the mount point found in doc, replacing whatever a
// previous Build left there. state selects the default tab; it is ignored
// in heading-only mode.
func Build(doc *goquery.Document, m model.Model, state model.TabState, access bool) (*Index, error) {
	mount := doc.Find(MountSelector).First()
	if mount.Length() == 0 {
		return nil, fmt.Errorf("build companion: %w", ErrNoMount)
	}
	sticky := mount.Find(stickySelector).First()
	if sticky.Length() == 0 {
		sticky = mount
	}

	sticky.ChildrenFiltered("." + TabsClass + ", ." + HeadingClass).Remove()

	ix := &Index{
		panels: make(map[model.Category]*goquery.Selection),
		items:  make(map[model.Category]map[string]*goquery.Selection),
	}

	for _, c := range model.Order {
		p := sticky.Find("#" + PanelID(c)).First()
		if p.Length() == 0 {
			sticky.AppendNodes(dom.Element("div", []dom.Attr{
				dom.A("class", PanelClass+" c-reading-companion__"+c.String()),
				dom.A("id", PanelID(c)),
			}))
			p = sticky.Children().Last()
		}
		p.Empty()
		p.RemoveAttr("role").RemoveAttr("aria-labelledby").RemoveClass(PanelActiveClass)
		ix.panels[c] = p
	}

	if m.Tabbed() {
		ix.Strip = buildStrip(sticky, state.Order)
		for _, c := range state.Order {
			ix.tabs = append(ix.tabs, Tab{
				Category: c,
				Button:   ix.Strip.Find("#" + TabID(c)),
				Panel:    ix.panels[c],
			})
		}
	} else {
		sticky.PrependNodes(dom.Element("h2", []dom.Attr{
			dom.A("class", HeadingClass),
			dom.A("id", TabID(model.Sections)),
		}, dom.Text(model.Sections.Title())))
		ix.Heading = sticky.ChildrenFiltered("." + HeadingClass)
	}

	for _, c := range model.Order {
		items := m.Items(c)
		if len(items) == 0 || (!m.Tabbed() && c != model.Sections) {
			continue
		}
		ix.items[c] = fillPanel(ix.panels[c], c, items, access)
	}

	if m.Tabbed() {
		ix.Select(state.Active)
	} else {
		ix.panels[model.Sections].AddClass(PanelActiveClass)
	}
	return ix, nil
}

func buildStrip(sticky *goquery.Selection, order []model.Category) *goquery.Selection {
	strip := dom.Element("ul", []dom.Attr{
		dom.A("class", TabsClass),
		dom.A("role", "tablist"),
		dom.A("aria-label", "Reading companion"),
	})
	for _, c := range order {
		strip.AppendChild(dom.Element("li", []dom.Attr{
			dom.A("class", "c-reading-companion__tabs-item"),
			dom.A("role", "presentation"),
		}, dom.Element("button", []dom.Attr{
			dom.A("class", TabClass),
			dom.A("id", TabID(c)),
			dom.A("type", "button"),
			dom.A("role", "tab"),
			dom.A("data-tab-target", c.String()),
			dom.A("aria-controls", PanelID(c)),
			dom.A("aria-selected", "false"),
			dom.A("data-track", "click"),
			dom.A("data-track-action", c.String()+" tab"),
			dom.A("data-track-label", "tab"),
		}, dom.Text(c.Title()))))
	}
	sticky.PrependNodes(strip)
	return sticky.ChildrenFiltered("." + TabsClass)
}

func fillPanel(p *goquery.Selection, c model.Category, items []model.Item, access bool) map[string]*goquery.Selection {
	p.SetAttr("role", "tabpanel")
	p.SetAttr("aria-labelledby", TabID(c))

	list := dom.Element("ul", []dom.Attr{
		dom.A("class", ListClass(c)),
		dom.A("aria-labelledby", TabID(c)),
	})
	rendered := make([]*html.Node, 0, len(items))
	for _, it := range items {
		n := render.Item(it, access)
		list.AppendChild(n)
		rendered = append(rendered, n)
	}
	p.AppendNodes(dom.Element("div", []dom.Attr{dom.A("class", ScrollPaneClass)}, list))

	out := make(map[string]*goquery.Selection, len(items))
	for i, it := range items {
		out[it.ID] = p.FindNodes(rendered[i])
	}
	return out
}
