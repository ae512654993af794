package scanner

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/fixture"
	"github.com/dgallion1/readcomp/internal/model"
)

func mustDoc(t *testing.T, p fixture.Parts) *goquery.Document {
	t.Helper()
	doc, err := fixture.Document(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return doc
}

func ids(items []model.Item) []string {
	var out []string
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestScan_SectionsOnly(t *testing.T) {
	m := Scan(mustDoc(t, fixture.Parts{}), Options{})

	if got := strings.Join(ids(m.Sections), ","); got != "Abs1,Sec1" {
		t.Errorf("expected sections %q, got %q", "Abs1,Sec1", got)
	}
	if m.Sections[0].Label != "Abstract" {
		t.Errorf("expected label %q, got %q", "Abstract", m.Sections[0].Label)
	}
	if m.Sections[0].Level != 2 {
		t.Errorf("expected level 2, got %d", m.Sections[0].Level)
	}
	if len(m.Figures) != 0 || len(m.References) != 0 {
		t.Errorf("expected no figures or references, got %d and %d", len(m.Figures), len(m.References))
	}
}

func TestScan_SectionIDFallsBackToWrapper(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div data-component="article-container">
		<section id="Sec9"><h2 class="js-c-reading-companion-sections-item">Results</h2></section>
		<h2 class="js-c-reading-companion-sections-item">Orphan</h2>
	</div>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := Scan(doc, Options{})
	if len(m.Sections) != 1 {
		t.Fatalf("expected 1 section, got %d", len(m.Sections))
	}
	if m.Sections[0].ID != "Sec9" {
		t.Errorf("expected id %q, got %q", "Sec9", m.Sections[0].ID)
	}
}

func TestScan_DuplicateIDsDropped(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<body>
		<h2 class="js-c-reading-companion-sections-item" id="A">First</h2>
		<h2 class="js-c-reading-companion-sections-item" id="A">Second</h2>
	</body>`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := Scan(doc, Options{})
	if len(m.Sections) != 1 || m.Sections[0].Label != "First" {
		t.Errorf("expected only the first duplicate, got %+v", m.Sections)
	}
}

func TestScan_KeepsUnsanitizedLabel(t *testing.T) {
	doc := mustDoc(t, fixture.Parts{})
	doc.Find(".c-article-section__title").First().SetText("%Ab_s!tract")

	m := Scan(doc, Options{})
	if m.Sections[0].Label != "%Ab_s!tract" {
		t.Errorf("expected label unchanged, got %q", m.Sections[0].Label)
	}
}

func TestScan_InlineFigure(t *testing.T) {
	m := Scan(mustDoc(t, fixture.Parts{Figures: true}), Options{Access: true})

	if len(m.Figures) != 1 {
		t.Fatalf("expected 1 figure, got %d", len(m.Figures))
	}
	fig := m.Figures[0]
	if fig.ID != "Fig2" || fig.Label != "Fig 2" {
		t.Errorf("expected Fig2/%q, got %s/%q", "Fig 2", fig.ID, fig.Label)
	}
	if fig.Figure.Caption == nil || fig.Figure.Media == nil {
		t.Fatal("expected caption and media clones")
	}
	if fig.Figure.Caption.Parent != nil {
		t.Error("expected caption clone to be detached")
	}
	if fig.Figure.FullSizeURL != "/articles/s41586-020-2068-4/figures/1" {
		t.Errorf("unexpected full size url %q", fig.Figure.FullSizeURL)
	}
	if len(fig.Citations) != 1 || fig.Citations[0] != "fig-link2" {
		t.Errorf("expected citation fig-link2, got %v", fig.Citations)
	}
}

func TestScan_FullSizeRequiresAccess(t *testing.T) {
	m := Scan(mustDoc(t, fixture.Parts{Figures: true, Supplementary: true}), Options{})
	for _, f := range m.Figures {
		if f.Figure.FullSizeURL != "" {
			t.Errorf("expected no full size url without access for %s", f.ID)
		}
	}
}

func TestScan_SupplementaryFigure(t *testing.T) {
	m := Scan(mustDoc(t, fixture.Parts{Figures: true, Supplementary: true}), Options{
		Access:                 true,
		SupplementaryImageBase: "//media.example.org/esm/",
	})

	if got := strings.Join(ids(m.Figures), ","); got != "Fig4,Fig2" {
		t.Fatalf("expected figures in document order %q, got %q", "Fig4,Fig2", got)
	}
	supp := m.Figures[0]
	if !supp.Figure.Supplementary {
		t.Error("expected supplementary flag")
	}
	if supp.Label != "Extended Data Fig. 1" {
		t.Errorf("expected label %q, got %q", "Extended Data Fig. 1", supp.Label)
	}
	if supp.Figure.ImageURL != "//media.example.org/esm/41586_2020_2087_Fig4_ESM.jpg" {
		t.Errorf("unexpected image url %q", supp.Figure.ImageURL)
	}
	if supp.Figure.FullSizeURL != "/articles/s41586-020-2087-1/figures/4" {
		t.Errorf("unexpected full size url %q", supp.Figure.FullSizeURL)
	}
}

func TestScan_References(t *testing.T) {
	m := Scan(mustDoc(t, fixture.Parts{References: true}), Options{})

	if len(m.References) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(m.References))
	}
	ref := m.References[0]
	if ref.ID != "ref-CR1" {
		t.Errorf("expected id %q, got %q", "ref-CR1", ref.ID)
	}
	if ref.Reference.Number != "1." || ref.Reference.Text != "Link" {
		t.Errorf("expected 1./Link, got %q/%q", ref.Reference.Number, ref.Reference.Text)
	}
	if len(ref.Reference.Links) != 3 {
		t.Errorf("expected 3 links, got %d", len(ref.Reference.Links))
	}
	if len(ref.Citations) != 1 || ref.Citations[0] != "ref-link-section-d1" {
		t.Errorf("expected citation ref-link-section-d1, got %v", ref.Citations)
	}
}

func TestScan_IgnoresCompanionMount(t *testing.T) {
	doc := mustDoc(t, fixture.Parts{})
	doc.Find("#tabpanel-sections").AppendHtml(`<h2 class="js-c-reading-companion-sections-item" id="Ghost">Ghost</h2>`)

	m := Scan(doc, Options{})
	for _, s := range m.Sections {
		if s.ID == "Ghost" {
			t.Error("expected headings inside the companion mount to be ignored")
		}
	}
}

func TestScan_Deterministic(t *testing.T) {
	doc := mustDoc(t, fixture.Parts{Figures: true, References: true, Supplementary: true})
	a := Scan(doc, Options{Access: true})
	b := Scan(doc, Options{Access: true})

	for _, c := range model.Order {
		ga, gb := ids(a.Items(c)), ids(b.Items(c))
		if strings.Join(ga, ",") != strings.Join(gb, ",") {
			t.Errorf("%s: expected identical scans, got %v and %v", c, ga, gb)
		}
	}
}
