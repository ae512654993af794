// Package fixture provides host article markup used by tests across packages.
package fixture

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parts selects which optional blocks are included in an article.
type Parts struct {
	Figures       bool
	References    bool
	Supplementary bool
}

const method = `<section>
	<h2 class="js-section-title">Method</h2>
	<p>Method <a href="#Fig2" id="fig-link2">2</a> and <a href="#ref-CR1" id="ref-link-section-d1">1</a></p>
</section>`

const sections = `<section>
	<div class="c-article-section" id="Abs1-section">
		<h2 class="c-article-section__title u-h2 js-section-title js-c-reading-companion-sections-item" id="Abs1">Abstract</h2>
	</div>
</section>
<section>
	<div class="c-article-section" id="Sec1-section">
		<h2 class="c-article-section__title u-h2 js-section-title js-c-reading-companion-sections-item" id="Sec1">Background</h2>
	</div>
</section>`

// Figure is an inline figure block with a full size link.
const Figure = `<section>
	<div class="c-article-section__figure js-c-reading-companion-figures-item">
		<figure>
			<figcaption>
				<b id="Fig2" class="c-article-section__figure-caption">Fig 2</b>
			</figcaption>
			<div>
				<div class="c-article-section__figure-item">
					<a class="c-article-section__figure-link" href="/fig2">
						<picture>
							<source type="image/webp" srcset="//media.springernature.com/41586_2020_2068_Fig2_HTML.png">
							<img src="//media.springernature.com/41586_2020_2068_Fig2_HTML.png" alt="figure2">
						</picture>
					</a>
				</div>
			</div>
			<a class="c-article__pill-button" href="/articles/s41586-020-2068-4/figures/1">Full size image</a>
		</figure>
	</div>
</section>`

// References is a reference list with one citation.
const References = `<section>
	<div class="c-article-section__references">
		<ol class="c-article-references">
			<li class="c-article-references__item js-c-reading-companion-references-item">
				<span class="c-article-references__counter">1.</span>
				<a href="#ref-CR1" class="c-article-references__text" id="ref-CR1">Link</a>
				<ul class="c-article-references__links u-hide-print">
					<li><a href="http://link">ADS</a></li>
					<li><a href="http://link">PubMed</a></li>
					<li><a href="http://link">Google Scholar</a></li>
				</ul>
			</li>
		</ol>
	</div>
</section>`

// Supplementary is an extended data item without a caption.
const Supplementary = `<div class="c-article-supplementary__item js-c-reading-companion-figures-item" id="Fig4">
	<h3 class="c-article-supplementary__title u-h3">
		<a href="/articles/s41586-020-2087-1/figures/4" data-supp-info-image="41586_2020_2087_Fig4_ESM.jpg">Extended Data Fig. 1</a>
	</h3>
</div>`

// Mount is the empty companion mount point.
const Mount = `<div class="c-reading-companion">
	<div class="c-reading-companion__sticky" data-component="reading-companion-sticky">
		<div class="c-reading-companion__panel c-reading-companion__sections c-reading-companion__panel--active" id="tabpanel-sections">
		</div>
		<div class="c-reading-companion__panel c-reading-companion__figures" id="tabpanel-figures">
		</div>
		<div class="c-reading-companion__panel c-reading-companion__references" id="tabpanel-references">
		</div>
	</div>
</div>`

// Article returns a full host page. Optional blocks follow the method
// section in the order supplementary, references, figure.
func Article(p Parts) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><title>Article</title></head><body><div data-component="article-container">`)
	b.WriteString(method)
	if p.Supplementary {
		b.WriteString(Supplementary)
	}
	if p.References {
		b.WriteString(References)
	}
	if p.Figures {
		b.WriteString(Figure)
	}
	b.WriteString(sections)
	b.WriteString(Mount)
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// Document parses Article(p).
func Document(p Parts) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(Article(p)))
}
