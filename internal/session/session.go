// Package session hosts interactive reading companions. Each session owns
// one page and runs every mutation of it on a single goroutine.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/companion"
	"github.com/dgallion1/readcomp/internal/emitter"
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/navsync"
	"github.com/dgallion1/readcomp/internal/page"
	"github.com/dgallion1/readcomp/internal/tabs"
	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session closed")
	ErrLimit    = errors.New("session limit reached")
	ErrBadEvent = errors.New("invalid event")
)

// Session is one live companion over one document.
type Session struct {
	ID        string
	Title     string
	CreatedAt time.Time

	ops  chan func()
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	updatedAt time.Time
	watchers  map[chan Snapshot]struct{}

	// Owned by the loop goroutine.
	page *page.Page
	nav  *emitter.Emitter
	comp *companion.Companion
	log  *slog.Logger
}

// New starts a session over doc and builds its companion.
func New(ctx context.Context, doc *goquery.Document, title string, cfg companion.Config, log *slog.Logger) (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: now,
		ops:       make(chan func()),
		done:      make(chan struct{}),
		updatedAt: now,
		watchers:  make(map[chan Snapshot]struct{}),
		page:      page.New(doc),
		nav:       emitter.New(),
	}
	s.log = log.With("session_id", s.ID)
	go s.loop()

	var buildErr error
	err := s.do(ctx, func() {
		ready := emitter.New()
		s.comp, buildErr = companion.Init(cfg, ready, s.nav, s.page, s.log)
		if buildErr == nil {
			ready.Emit(companion.ReadyEvent)
			buildErr = s.comp.Err()
		}
	})
	if err == nil {
		err = buildErr
	}
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) loop() {
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.done:
			return
		}
	}
}

// do runs fn on the session goroutine and waits for it to finish.
func (s *Session) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}
	select {
	case s.ops <- op:
	case <-s.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

// Dispatch applies ev and returns the resulting snapshot.
func (s *Session) Dispatch(ctx context.Context, ev Event) (Snapshot, error) {
	if err := ev.Validate(); err != nil {
		return Snapshot{}, err
	}

	var (
		snap    Snapshot
		evalErr error
	)
	err := s.do(ctx, func() {
		evalErr = s.apply(ev)
		snap = s.snapshot()
	})
	if err != nil {
		return Snapshot{}, err
	}
	if evalErr != nil {
		return Snapshot{}, evalErr
	}

	s.touch()
	s.notify(snap)
	return snap, nil
}

func (s *Session) apply(ev Event) error {
	switch ev.Type {
	case navsync.EventSection, navsync.EventFigure, navsync.EventReference:
		s.nav.Emit(ev.Type, ev.ID, ev.Previous)
	case EventClick:
		cat, _ := model.ParseCategory(ev.Tab)
		tab, ok := s.comp.Index().Tab(cat)
		if !ok {
			return fmt.Errorf("%w: no %s tab", ErrBadEvent, cat)
		}
		s.page.Click(tab.Button.Get(0))
	case EventKeyDown:
		key := ev.Key
		if key == "" {
			key = tabs.KeyFromCode(ev.KeyCode)
		}
		if tab, ok := s.comp.Index().Tab(s.comp.Tabs().Active()); ok {
			s.page.KeyDown(tab.Button.Get(0), key)
		}
	case EventBlur:
		s.page.Blur()
	}
	s.log.Debug("event applied", "type", ev.Type, "id", ev.ID, "tab", ev.Tab, "key", ev.Key)
	return nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	if err := s.do(ctx, func() { snap = s.snapshot() }); err != nil {
		return Snapshot{}, err
	}
	s.touch()
	return snap, nil
}

// Model returns the scanned model.
func (s *Session) Model(ctx context.Context) (model.Model, error) {
	var m model.Model
	if err := s.do(ctx, func() { m = s.comp.Model() }); err != nil {
		return model.Model{}, err
	}
	s.touch()
	return m, nil
}

// HTML renders the current page markup.
func (s *Session) HTML(ctx context.Context) ([]byte, error) {
	var (
		buf       bytes.Buffer
		renderErr error
	)
	if err := s.do(ctx, func() { renderErr = s.page.Render(&buf) }); err != nil {
		return nil, err
	}
	if renderErr != nil {
		return nil, fmt.Errorf("render session %s: %w", s.ID, renderErr)
	}
	s.touch()
	return buf.Bytes(), nil
}

// Watch returns a channel receiving a snapshot after every dispatched
// event. Slow receivers miss snapshots rather than blocking the session.
// The channel is closed by cancel or when the session closes.
func (s *Session) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	default:
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.watchers[ch]; ok {
			delete(s.watchers, ch)
			close(ch)
		}
	}
}

func (s *Session) notify(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.watchers {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
}

// Watched reports whether any Watch channel is open.
func (s *Session) Watched() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers) > 0
}

// UpdatedAt returns the time of the last event or read.
func (s *Session) UpdatedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close tears down the companion and stops the session goroutine.
func (s *Session) Close() {
	s.once.Do(func() {
		_ = s.do(context.Background(), func() {
			if s.comp != nil {
				s.comp.Close()
			}
		})

		s.mu.Lock()
		close(s.done)
		for ch := range s.watchers {
			delete(s.watchers, ch)
			close(ch)
		}
		s.mu.Unlock()
		s.log.Debug("session closed")
	})
}
