package tabs

import (
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/fixture"
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/page"
	"github.com/dgallion1/readcomp/internal/panel"
	"github.com/dgallion1/readcomp/internal/scanner"
)

type harness struct {
	doc  *goquery.Document
	page *page.Page
	ix   *panel.Index
	ctrl *Controller
}

func setup(t *testing.T) *harness {
	t.Helper()
	doc, err := fixture.Document(fixture.Parts{Figures: true, References: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := scanner.Scan(doc, scanner.Options{})
	state, ok := model.InitialTabState(m)
	if !ok {
		t.Fatal("expected tab state")
	}
	ix, err := panel.Build(doc, m, state, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := page.New(doc)
	ctrl := New(state, ix, p)
	ctrl.Bind(p)
	return &harness{doc: doc, page: p, ix: ix, ctrl: ctrl}
}

func (h *harness) selected(t *testing.T, target string) bool {
	t.Helper()
	return h.doc.Find(`[data-tab-target="`+target+`"]`).AttrOr("aria-selected", "") == "true"
}

func (h *harness) keydown(code int) {
	h.page.KeyDown(h.ix.Strip.Get(0), KeyFromCode(code))
}

func TestKey_LeftFromFirstWrapsToLast(t *testing.T) {
	h := setup(t)
	h.keydown(37)

	last := h.doc.Find("." + panel.TabsClass + " > li:last-child button")
	if last.AttrOr("aria-selected", "") != "true" {
		t.Error("expected last tab selected")
	}
	if !last.HasClass(panel.TabActiveClass) {
		t.Error("expected last tab active class")
	}
	if h.page.Focused() != last.Get(0) {
		t.Error("expected focus on last tab")
	}

	h.keydown(37)
	if !h.selected(t, "figures") {
		t.Error("expected figures tab selected after second left arrow")
	}
}

func TestKey_RightFromLastWrapsToFirst(t *testing.T) {
	h := setup(t)
	h.ctrl.Activate(model.References)

	h.keydown(39)
	first := h.doc.Find("." + panel.TabsClass + " > li:first-child button")
	if first.AttrOr("aria-selected", "") != "true" || !first.HasClass(panel.TabActiveClass) {
		t.Error("expected first tab selected and active")
	}

	h.keydown(39)
	if !h.selected(t, "figures") {
		t.Error("expected figures tab selected after second right arrow")
	}
}

func TestKey_UpAndDown(t *testing.T) {
	h := setup(t)
	h.keydown(40)
	if h.ctrl.Active() != model.Figures {
		t.Errorf("expected figures after down arrow, got %q", h.ctrl.Active())
	}
	h.keydown(38)
	if h.ctrl.Active() != model.Sections {
		t.Errorf("expected sections after up arrow, got %q", h.ctrl.Active())
	}
}

func TestKey_OtherKeysIgnored(t *testing.T) {
	h := setup(t)
	h.page.KeyDown(h.ix.Strip.Get(0), "Enter")
	if h.ctrl.Active() != model.Sections {
		t.Errorf("expected sections to stay active, got %q", h.ctrl.Active())
	}
	if KeyFromCode(13) != "" {
		t.Error("expected no key name for Enter code")
	}
}

func TestClick_Activates(t *testing.T) {
	h := setup(t)
	refs := h.doc.Find(`[data-tab-target="references"]`)
	h.page.Click(refs.Get(0))

	if refs.AttrOr("aria-selected", "") != "true" {
		t.Error("expected references tab selected")
	}
	if !h.ix.Panel(model.References).HasClass(panel.PanelActiveClass) {
		t.Error("expected references panel active")
	}
	if h.ix.Panel(model.Sections).HasClass(panel.PanelActiveClass) {
		t.Error("expected sections panel inactive")
	}

	// Clicking the active tab again keeps it active.
	h.page.Click(refs.Get(0))
	if !h.selected(t, "references") {
		t.Error("expected references tab still selected")
	}
}

func TestActivate_UnknownCategory(t *testing.T) {
	doc, err := fixture.Document(fixture.Parts{Figures: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := scanner.Scan(doc, scanner.Options{})
	state, _ := model.InitialTabState(m)
	ix, err := panel.Build(doc, m, state, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctrl := New(state, ix, nil)
	if ctrl.Activate(model.References) {
		t.Error("expected activation of a missing category to fail")
	}
	if ctrl.Active() != model.Sections {
		t.Errorf("expected sections to stay active, got %q", ctrl.Active())
	}
}

func TestBind_HeadingOnly(t *testing.T) {
	doc, err := fixture.Document(fixture.Parts{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := scanner.Scan(doc, scanner.Options{})
	state, _ := model.InitialTabState(m)
	ix, err := panel.Build(doc, m, state, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ls := New(state, ix, nil).Bind(page.New(doc)); ls != nil {
		t.Errorf("expected no listeners, got %d", len(ls))
	}
}
