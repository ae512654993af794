// Package navsync keeps the companion in step with navigation events
// emitted by the host's position tracker.
package navsync

import (
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/dom"
	"github.com/dgallion1/readcomp/internal/emitter"
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/page"
	"github.com/dgallion1/readcomp/internal/panel"
	"github.com/dgallion1/readcomp/internal/tabs"
	"golang.org/x/net/html"
)

// Navigation event names.
const (
	EventSection   = "nav.section"
	EventFigure    = "nav.figure"
	EventReference = "nav.reference"
)

const (
	SectionActiveClass = "c-reading-companion__section-item--active"
	HighlightClass     = "c-reading-companion--highlighted"
	ReturnClass        = "c-reading-companion__return"
)

// Events maps each navigation event to the category it targets.
var Events = map[string]model.Category{
	EventSection:   model.Sections,
	EventFigure:    model.Figures,
	EventReference: model.References,
}

// Host is the part of the page the synchronizer drives.
type Host interface {
	Focus(n *html.Node)
	ScrollIntoView(n *html.Node, block page.Block)
	Once(n *html.Node, typ string, fn page.Handler) *page.Listener
	Off(l *page.Listener)
}

// Synchronizer applies navigation events to the rendered companion.
type Synchronizer struct {
	model model.Model
	ix    *panel.Index
	tabs  *tabs.Controller
	host  Host
	log   *slog.Logger

	nav       emitter.Subscriber
	subs      []*emitter.Subscription
	listeners map[*html.Node]*page.Listener
}

// New creates a synchronizer. Call Subscribe to start receiving events.
func New(m model.Model, ix *panel.Index, ctrl *tabs.Controller, host Host, log *slog.Logger) *Synchronizer {
	return &Synchronizer{
		model:     m,
		ix:        ix,
		tabs:      ctrl,
		host:      host,
		log:       log,
		listeners: make(map[*html.Node]*page.Listener),
	}
}

// Subscribe registers for the three navigation events on nav.
func (s *Synchronizer) Subscribe(nav emitter.Subscriber) {
	s.nav = nav
	for _, name := range []string{EventSection, EventFigure, EventReference} {
		cat := Events[name]
		s.subs = append(s.subs, nav.On(name, func(args ...string) {
			s.Handle(cat, emitter.Arg(args, 0), emitter.Arg(args, 1))
		}))
	}
}

// Close detaches every subscription and pending focus-loss listener. It is
// safe to call more than once.
func (s *Synchronizer) Close() {
	if s.nav != nil {
		for _, sub := range s.subs {
			s.nav.Off(sub)
		}
	}
	s.subs = nil
	for n, l := range s.listeners {
		s.host.Off(l)
		delete(s.listeners, n)
	}
}

// Handle processes one navigation event for cat. previous may be empty.
// Ids with no rendered item are ignored.
func (s *Synchronizer) Handle(cat model.Category, id, previous string) bool {
	item, ok := s.ix.Item(cat, id)
	if !ok {
		s.log.Debug("ignoring navigation to unknown item", "category", cat.String(), "id", id)
		return false
	}

	if previous != "" {
		if prev, ok := s.ix.Item(cat, previous); ok {
			s.unhighlight(cat, prev)
		}
	}

	item.AddClass(activeClass(cat))
	item.SetAttr("tabindex", "-1")
	node := item.Get(0)
	s.host.Off(s.listeners[node])
	s.listeners[node] = s.host.Once(node, page.Blur, func(page.Event) {
		delete(s.listeners, node)
		s.insertReturn(cat, id, item)
	})

	if s.tabs != nil && s.tabs.Active() != cat {
		s.tabs.Activate(cat)
	}

	s.host.ScrollIntoView(node, page.BlockStart)
	if cat != model.Sections {
		s.host.Focus(node)
	}
	return true
}

func (s *Synchronizer) unhighlight(cat model.Category, sel *goquery.Selection) {
	sel.RemoveClass(activeClass(cat))
	sel.RemoveAttr("tabindex")
}

// insertReturn adds a link from the companion item back to where the item
// is cited in the text. Only one such link exists at a time.
func (s *Synchronizer) insertReturn(cat model.Category, id string, item *goquery.Selection) {
	it, ok := s.model.Find(cat, id)
	if !ok || len(it.Citations) == 0 {
		return
	}
	for _, c := range model.Order {
		if p := s.ix.Panel(c); p != nil {
			p.Find("." + ReturnClass).Remove()
		}
	}
	item.AppendNodes(dom.Element("a", []dom.Attr{
		dom.A("class", ReturnClass),
		dom.A("href", "#"+it.Citations[0]),
		dom.A("data-track", "click"),
		dom.A("data-track-action", "return to text"),
		dom.A("data-track-label", "link:Return to text"),
	}, dom.Text("Return to text")))
}

func activeClass(cat model.Category) string {
	if cat == model.Sections {
		return SectionActiveClass
	}
	return HighlightClass
}
