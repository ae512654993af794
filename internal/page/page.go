// Package page models the host page around a parsed document: event
// listeners, keyboard focus and scroll requests.
//
// A Page is not safe for concurrent use. Callers drive it from a single
// goroutine, the page's UI thread.
package page

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Event types dispatched by the page.
const (
	Click   = "click"
	KeyDown = "keydown"
	Focus   = "focus"
	Blur    = "blur"
)

// Block is the vertical alignment of a scroll request.
type Block string

const BlockStart Block = "start"

// Event is a DOM-style event.
type Event struct {
	Type   string
	Key    string
	Target *html.Node
}

// Handler handles an event.
type Handler func(ev Event)

// Listener is a registered handler. Remove it with Page.Off.
type Listener struct {
	node *html.Node
	typ  string
	fn   Handler
	once bool
}

// Scroll records one scroll-into-view request.
type Scroll struct {
	Node  *html.Node
	Block Block
}

// Page is an in-memory host page.
type Page struct {
	doc       *goquery.Document
	focused   *html.Node
	listeners map[*html.Node][]*Listener
	scroll    *Scroll
}

// New wraps doc.
func New(doc *goquery.Document) *Page {
	return &Page{
		doc:       doc,
		listeners: make(map[*html.Node][]*Listener),
	}
}

// Document returns the underlying document.
func (p *Page) Document() *goquery.Document {
	return p.doc
}

// On registers fn for events of type typ reaching n.
func (p *Page) On(n *html.Node, typ string, fn Handler) *Listener {
	return p.add(&Listener{node: n, typ: typ, fn: fn})
}

// Once registers fn to run at most once.
func (p *Page) Once(n *html.Node, typ string, fn Handler) *Listener {
	return p.add(&Listener{node: n, typ: typ, fn: fn, once: true})
}

func (p *Page) add(l *Listener) *Listener {
	p.listeners[l.node] = append(p.listeners[l.node], l)
	return l
}

// Off removes l. Removing a listener twice is a no-op.
func (p *Page) Off(l *Listener) {
	if l == nil {
		return
	}
	ls := p.listeners[l.node]
	for i, x := range ls {
		if x == l {
			p.listeners[l.node] = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	if len(p.listeners[l.node]) == 0 {
		delete(p.listeners, l.node)
	}
}

// Listeners counts the listeners of type typ registered on n.
func (p *Page) Listeners(n *html.Node, typ string) int {
	count := 0
	for _, l := range p.listeners[n] {
		if l.typ == typ {
			count++
		}
	}
	return count
}

// Dispatch delivers ev to target and, except for focus and blur, to each
// ancestor in turn.
func (p *Page) Dispatch(target *html.Node, ev Event) {
	ev.Target = target
	bubbles := ev.Type != Focus && ev.Type != Blur
	for n := target; n != nil; n = n.Parent {
		p.fire(n, ev)
		if !bubbles {
			return
		}
	}
}

func (p *Page) fire(n *html.Node, ev Event) {
	ls := append([]*Listener(nil), p.listeners[n]...)
	for _, l := range ls {
		if l.typ != ev.Type {
			continue
		}
		if l.once {
			p.Off(l)
		}
		l.fn(ev)
	}
}

// Click dispatches a click on n.
func (p *Page) Click(n *html.Node) {
	p.Dispatch(n, Event{Type: Click})
}

// KeyDown dispatches a keydown with key on n.
func (p *Page) KeyDown(n *html.Node, key string) {
	p.Dispatch(n, Event{Type: KeyDown, Key: key})
}

// Focus moves keyboard focus to n, firing blur on the previously focused
// node and focus on n.
func (p *Page) Focus(n *html.Node) {
	if n == p.focused {
		return
	}
	prev := p.focused
	p.focused = n
	if prev != nil {
		p.Dispatch(prev, Event{Type: Blur})
	}
	if n != nil {
		p.Dispatch(n, Event{Type: Focus})
	}
}

// Blur clears focus.
func (p *Page) Blur() {
	p.Focus(nil)
}

// Focused returns the node holding focus, or nil.
func (p *Page) Focused() *html.Node {
	return p.focused
}

// ScrollIntoView records a request to scroll n into the viewport.
func (p *Page) ScrollIntoView(n *html.Node, block Block) {
	p.scroll = &Scroll{Node: n, Block: block}
}

// LastScroll returns the most recent scroll request.
func (p *Page) LastScroll() (Scroll, bool) {
	if p.scroll == nil {
		return Scroll{}, false
	}
	return *p.scroll, true
}

// Render writes the whole document as HTML.
func (p *Page) Render(w io.Writer) error {
	return html.Render(w, p.doc.Get(0))
}
