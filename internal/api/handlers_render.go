package api

import (
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/article"
	"github.com/dgallion1/readcomp/internal/companion"
	"github.com/dgallion1/readcomp/internal/model"
)

// renderResponse is the JSON form of a one-shot render.
type renderResponse struct {
	Title string      `json:"title"`
	HTML  string      `json:"html"`
	Model model.Model `json:"model"`
}

// readArticle parses the request body as an article. The format comes from
// the format query parameter, else the Content-Type header.
func (s *Server) readArticle(w http.ResponseWriter, r *http.Request) (*goquery.Document, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	q := r.URL.Query()
	kind := q.Get("format")
	if kind == "" {
		kind = r.Header.Get("Content-Type")
	}
	format, err := article.ParseFormat(kind)
	if err != nil {
		return nil, "", err
	}

	doc, err := article.Load(r.Body, format, q.Get("title"))
	if err != nil {
		return nil, "", err
	}
	return doc, article.Title(doc, "untitled"), nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	doc, title, err := s.readArticle(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	pg, comp, err := companion.Build(doc, s.sessions.Options(), s.log)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer comp.Close()

	var out strings.Builder
	if err := pg.Render(&out); err != nil {
		s.fail(w, r, err)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, renderResponse{Title: title, HTML: out.String(), Model: comp.Model()})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(out.String()))
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
