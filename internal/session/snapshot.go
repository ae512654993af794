package session

import (
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/navsync"
	"golang.org/x/net/html"
)

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID          string         `json:"session_id"`
	Title       string         `json:"title"`
	Tabbed      bool           `json:"tabbed"`
	ActiveTab   string         `json:"active_tab"`
	Tabs        []string       `json:"tabs"`
	Counts      map[string]int `json:"counts"`
	Highlighted []string       `json:"highlighted"`
	Focused     string         `json:"focused,omitempty"`
	Scroll      *ScrollTarget  `json:"scroll,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ScrollTarget is the most recent scroll-into-view request.
type ScrollTarget struct {
	Target string `json:"target"`
	Block  string `json:"block"`
}

func (s *Session) snapshot() Snapshot {
	m := s.comp.Model()
	state := s.comp.Tabs().State()

	snap := Snapshot{
		ID:          s.ID,
		Title:       s.Title,
		Tabbed:      m.Tabbed(),
		ActiveTab:   state.Active.String(),
		Tabs:        []string{},
		Counts:      make(map[string]int, len(model.Order)),
		Highlighted: []string{},
		Focused:     nodeID(s.page.Focused()),
		UpdatedAt:   time.Now(),
	}
	if m.Tabbed() {
		for _, c := range state.Order {
			snap.Tabs = append(snap.Tabs, c.String())
		}
	}
	for _, c := range model.Order {
		snap.Counts[c.String()] = len(m.Items(c))
	}

	s.page.Document().Find("." + navsync.SectionActiveClass + ", ." + navsync.HighlightClass).
		Each(func(_ int, sel *goquery.Selection) {
			if id, ok := sel.Attr("id"); ok {
				snap.Highlighted = append(snap.Highlighted, id)
			}
		})

	if last, ok := s.page.LastScroll(); ok {
		snap.Scroll = &ScrollTarget{Target: nodeID(last.Node), Block: string(last.Block)}
	}
	return snap
}

func nodeID(n *html.Node) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == "id" {
			return a.Val
		}
	}
	return ""
}
