package navsync

import (
	"io"
	"log/slog"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/emitter"
	"github.com/dgallion1/readcomp/internal/fixture"
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/page"
	"github.com/dgallion1/readcomp/internal/panel"
	"github.com/dgallion1/readcomp/internal/scanner"
	"github.com/dgallion1/readcomp/internal/tabs"
)

type harness struct {
	doc  *goquery.Document
	page *page.Page
	nav  *emitter.Emitter
	sync *Synchronizer
}

func setup(t *testing.T, p fixture.Parts) *harness {
	t.Helper()
	doc, err := fixture.Document(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := scanner.Scan(doc, scanner.Options{})
	state, _ := model.InitialTabState(m)
	ix, err := panel.Build(doc, m, state, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pg := page.New(doc)
	ctrl := tabs.New(state, ix, pg)
	ctrl.Bind(pg)

	nav := emitter.New()
	s := New(m, ix, ctrl, pg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Subscribe(nav)
	return &harness{doc: doc, page: pg, nav: nav, sync: s}
}

func TestSection_MovesHighlight(t *testing.T) {
	h := setup(t, fixture.Parts{Figures: true, References: true})

	h.nav.Emit(EventSection, "Abs1", "")
	abs := h.doc.Find("#rc-sec-Abs1")
	if !abs.HasClass(SectionActiveClass) {
		t.Fatal("expected Abs1 highlighted")
	}

	h.nav.Emit(EventSection, "Sec1", "Abs1")
	if abs.HasClass(SectionActiveClass) {
		t.Error("expected Abs1 highlight removed")
	}
	if !h.doc.Find("#rc-sec-Sec1").HasClass(SectionActiveClass) {
		t.Error("expected Sec1 highlighted")
	}
	if n := h.doc.Find("." + SectionActiveClass).Length(); n != 1 {
		t.Errorf("expected exactly 1 highlighted section, got %d", n)
	}
}

func TestFigure_SwitchesTabAndFocuses(t *testing.T) {
	h := setup(t, fixture.Parts{Figures: true, References: true})
	fig := h.doc.Find("#rc-Fig2")

	h.nav.Emit(EventFigure, "Fig2", "")

	tab := h.doc.Find("#tab-figures")
	if tab.AttrOr("aria-selected", "") != "true" || !tab.HasClass(panel.TabActiveClass) {
		t.Error("expected figures tab active")
	}
	if fig.AttrOr("tabindex", "") != "-1" {
		t.Errorf("expected tabindex -1, got %q", fig.AttrOr("tabindex", ""))
	}
	if !fig.HasClass(HighlightClass) {
		t.Error("expected figure highlighted")
	}
	if h.page.Listeners(fig.Get(0), page.Blur) != 1 {
		t.Error("expected a focus-loss listener on the figure")
	}
	s, ok := h.page.LastScroll()
	if !ok || s.Node != fig.Get(0) || s.Block != page.BlockStart {
		t.Errorf("expected scroll to figure aligned to start, got %+v", s)
	}
	if h.page.Focused() != fig.Get(0) {
		t.Error("expected focus on figure")
	}
}

func TestReference_SwitchesTab(t *testing.T) {
	h := setup(t, fixture.Parts{Figures: true, References: true})

	h.nav.Emit(EventReference, "ref-CR1", "")

	if h.doc.Find("#tab-references").AttrOr("aria-selected", "") != "true" {
		t.Error("expected references tab selected")
	}
	if !h.doc.Find("#rc-ref-CR1").HasClass(HighlightClass) {
		t.Error("expected reference highlighted")
	}
}

func TestFocusLoss_InsertsReturnLink(t *testing.T) {
	h := setup(t, fixture.Parts{Figures: true, References: true})
	fig := h.doc.Find("#rc-Fig2")

	h.nav.Emit(EventFigure, "Fig2", "")
	h.page.Blur()

	ret := fig.Find("." + ReturnClass)
	if ret.Length() != 1 {
		t.Fatalf("expected return link, got %d", ret.Length())
	}
	if href := ret.AttrOr("href", ""); href != "#fig-link2" {
		t.Errorf("expected href %q, got %q", "#fig-link2", href)
	}

	// A second focus loss after navigating elsewhere leaves one link.
	h.nav.Emit(EventReference, "ref-CR1", "")
	h.page.Blur()
	if n := h.doc.Find("." + ReturnClass).Length(); n != 1 {
		t.Errorf("expected a single return link, got %d", n)
	}
}

func TestUnknownID_Ignored(t *testing.T) {
	h := setup(t, fixture.Parts{Figures: true, References: true})

	h.nav.Emit(EventFigure, "Fig99", "Fig2")

	if h.doc.Find("#tab-sections").AttrOr("aria-selected", "") != "true" {
		t.Error("expected sections tab to stay selected")
	}
	if _, ok := h.page.LastScroll(); ok {
		t.Error("expected no scroll for unknown id")
	}
}

func TestClose_Unsubscribes(t *testing.T) {
	h := setup(t, fixture.Parts{Figures: true, References: true})
	h.nav.Emit(EventFigure, "Fig2", "")
	fig := h.doc.Find("#rc-Fig2").Get(0)

	h.sync.Close()
	h.sync.Close()

	for name := range Events {
		if n := h.nav.Count(name); n != 0 {
			t.Errorf("expected no %s handlers, got %d", name, n)
		}
	}
	if h.page.Listeners(fig, page.Blur) != 0 {
		t.Error("expected pending focus-loss listener removed")
	}
	h.nav.Emit(EventSection, "Sec1", "")
	if h.doc.Find("#rc-sec-Sec1").HasClass(SectionActiveClass) {
		t.Error("expected no handling after Close")
	}
}

func TestHeadingOnly_SectionsStillSync(t *testing.T) {
	h := setup(t, fixture.Parts{})
	h.nav.Emit(EventSection, "Sec1", "")
	if !h.doc.Find("#rc-sec-Sec1").HasClass(SectionActiveClass) {
		t.Error("expected Sec1 highlighted without tabs")
	}
}
