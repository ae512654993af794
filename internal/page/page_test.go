package page

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func newPage(t *testing.T, src string) *Page {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return New(doc)
}

func TestDispatch_Bubbles(t *testing.T) {
	p := newPage(t, `<ul id="tabs"><li><button id="b">x</button></li></ul>`)
	tabs := p.Document().Find("#tabs").Get(0)
	button := p.Document().Find("#b").Get(0)

	var got []string
	p.On(tabs, KeyDown, func(ev Event) {
		got = append(got, ev.Key)
		if ev.Target != button {
			t.Error("expected target to be the button")
		}
	})
	p.KeyDown(button, "ArrowLeft")

	if len(got) != 1 || got[0] != "ArrowLeft" {
		t.Errorf("expected bubbled keydown, got %v", got)
	}
}

func TestOnce_RunsOnce(t *testing.T) {
	p := newPage(t, `<li id="rc-Fig2"></li>`)
	n := p.Document().Find("#rc-Fig2").Get(0)

	calls := 0
	p.Once(n, Blur, func(Event) { calls++ })
	if p.Listeners(n, Blur) != 1 {
		t.Fatalf("expected 1 blur listener, got %d", p.Listeners(n, Blur))
	}

	p.Focus(n)
	p.Blur()
	p.Focus(n)
	p.Blur()

	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
	if p.Listeners(n, Blur) != 0 {
		t.Errorf("expected listener removed, got %d", p.Listeners(n, Blur))
	}
}

func TestFocus_BlurDoesNotBubble(t *testing.T) {
	p := newPage(t, `<div id="outer"><a id="a">a</a><a id="b">b</a></div>`)
	outer := p.Document().Find("#outer").Get(0)
	a := p.Document().Find("#a").Get(0)
	b := p.Document().Find("#b").Get(0)

	outerBlur := 0
	p.On(outer, Blur, func(Event) { outerBlur++ })

	p.Focus(a)
	p.Focus(b)

	if p.Focused() != b {
		t.Error("expected focus on b")
	}
	if outerBlur != 0 {
		t.Errorf("expected blur not to bubble, got %d", outerBlur)
	}
}

func TestOff_Idempotent(t *testing.T) {
	p := newPage(t, `<button id="b"></button>`)
	b := p.Document().Find("#b").Get(0)
	calls := 0
	l := p.On(b, Click, func(Event) { calls++ })
	p.Off(l)
	p.Off(l)
	p.Off(nil)
	p.Click(b)
	if calls != 0 {
		t.Errorf("expected no calls, got %d", calls)
	}
}

func TestScrollIntoView(t *testing.T) {
	p := newPage(t, `<li id="w"></li><li id="x"></li>`)
	if _, ok := p.LastScroll(); ok {
		t.Error("expected no scrolls")
	}
	p.ScrollIntoView(p.Document().Find("#w").Get(0), BlockStart)
	n := p.Document().Find("#x").Get(0)
	p.ScrollIntoView(n, BlockStart)

	s, ok := p.LastScroll()
	if !ok || s.Node != n || s.Block != BlockStart {
		t.Errorf("unexpected scroll %+v", s)
	}
}
