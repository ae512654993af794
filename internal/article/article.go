// Package article loads host articles: HTML pages carrying the companion
// markup contract as-is, Markdown rendered and decorated into that
// contract, and PDF or DOCX documents converted to section outlines.
package article

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnsupported is returned for formats other than HTML, Markdown, PDF and
// DOCX.
var ErrUnsupported = errors.New("unsupported article format")

// Format is an article source format.
type Format string

const (
	HTML     Format = "html"
	Markdown Format = "markdown"
	PDF      Format = "pdf"
	DOCX     Format = "docx"
)

// FormatForFile picks the format from a file extension.
func FormatForFile(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".html", ".htm":
		return HTML, nil
	case ".md", ".markdown":
		return Markdown, nil
	case ".pdf":
		return PDF, nil
	case ".docx":
		return DOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}

// ParseFormat accepts a format name or a media type.
func ParseFormat(s string) (Format, error) {
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		s = mt
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "html", "htm", "text/html", "application/xhtml+xml":
		return HTML, nil
	case "md", "markdown", "text/markdown", "text/x-markdown":
		return Markdown, nil
	case "pdf", "application/pdf":
		return PDF, nil
	case "docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return DOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, s)
	}
}

// Load parses an article in the given format.
func Load(r io.Reader, f Format, title string) (*goquery.Document, error) {
	switch f {
	case HTML:
		doc, err := goquery.NewDocumentFromReader(r)
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		return doc, nil
	case Markdown:
		src, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read markdown: %w", err)
		}
		return FromMarkdown(src, title)
	case PDF:
		o, err := PDFOutline(r, title)
		if err != nil {
			return nil, err
		}
		return FromOutline(o)
	case DOCX:
		o, err := DOCXOutline(r, title)
		if err != nil {
			return nil, err
		}
		return FromOutline(o)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, f)
	}
}

// Title returns the article title: the page <title>, else the first h1,
// else fallback.
func Title(doc *goquery.Document, fallback string) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return fallback
}

// TitleFromFilename strips the directory and known extensions.
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	for _, ext := range []string{".html", ".htm", ".markdown", ".md", ".pdf", ".docx"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
