// Package tabs implements the companion's tab selection state machine.
package tabs

import (
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/page"
	"github.com/dgallion1/readcomp/internal/panel"
	"golang.org/x/net/html"
)

// Key names understood by the controller.
const (
	ArrowLeft  = "ArrowLeft"
	ArrowUp    = "ArrowUp"
	ArrowRight = "ArrowRight"
	ArrowDown  = "ArrowDown"
)

// KeyFromCode maps legacy keyCode values to key names.
func KeyFromCode(code int) string {
	switch code {
	case 37:
		return ArrowLeft
	case 38:
		return ArrowUp
	case 39:
		return ArrowRight
	case 40:
		return ArrowDown
	}
	return ""
}

// Focuser moves keyboard focus.
type Focuser interface {
	Focus(n *html.Node)
}

// Controller owns the active tab.
type Controller struct {
	state model.TabState
	ix    *panel.Index
	host  Focuser
}

// New creates a controller over the tabs in ix, starting from state.
func New(state model.TabState, ix *panel.Index, host Focuser) *Controller {
	return &Controller{state: state, ix: ix, host: host}
}

// Active returns the active category.
func (c *Controller) Active() model.Category {
	return c.state.Active
}

// State returns a copy of the current tab state.
func (c *Controller) State() model.TabState {
	st := c.state
	st.Order = append([]model.Category(nil), c.state.Order...)
	return st
}

// Activate makes cat the active tab: aria-selected, tab and panel classes
// and keyboard focus are updated together. It reports false when cat has
// no tab.
func (c *Controller) Activate(cat model.Category) bool {
	if !c.state.Contains(cat) {
		return false
	}
	tab, ok := c.ix.Tab(cat)
	if !ok || !c.ix.Select(cat) {
		return false
	}
	c.state.Active = cat
	if c.host != nil {
		c.host.Focus(tab.Button.Get(0))
	}
	return true
}

// Click activates the clicked tab.
func (c *Controller) Click(cat model.Category) bool {
	return c.Activate(cat)
}

// Key moves the selection for arrow keys, wrapping at either end. Other
// keys are ignored.
func (c *Controller) Key(key string) bool {
	switch key {
	case ArrowLeft, ArrowUp:
		return c.Activate(c.state.Prev())
	case ArrowRight, ArrowDown:
		return c.Activate(c.state.Next())
	}
	return false
}

// Bind registers click listeners on each tab button and a keydown listener
// on the tab strip. It returns nil in heading-only mode.
func (c *Controller) Bind(p *page.Page) []*page.Listener {
	if c.ix.Strip == nil {
		return nil
	}
	var ls []*page.Listener
	for _, t := range c.ix.Tabs() {
		cat := t.Category
		ls = append(ls, p.On(t.Button.Get(0), page.Click, func(page.Event) {
			c.Click(cat)
		}))
	}
	ls = append(ls, p.On(c.ix.Strip.Get(0), page.KeyDown, func(ev page.Event) {
		c.Key(ev.Key)
	}))
	return ls
}
