package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/companion"
	"github.com/dgallion1/readcomp/internal/config"
)

// Manager creates sessions and evicts idle ones in the background.
type Manager struct {
	store    *Store
	opts     companion.Config
	log      *slog.Logger
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewManager(cfg config.Config, log *slog.Logger) *Manager {
	interval := 5 * time.Minute
	if half := cfg.SessionTTL / 2; half > 0 && half < interval {
		interval = half
	}
	return &Manager{
		store: NewStore(cfg.SessionTTL, cfg.MaxSessions),
		opts: companion.Config{
			Access:                 cfg.Access,
			SupplementaryImageBase: cfg.SupplementaryImageBase,
		},
		log:      log,
		interval: interval,
	}
}

// Start launches the eviction loop.
func (m *Manager) Start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-loopCtx.Done():
				return
			case <-ticker.C:
				if n := m.store.Cleanup(); n > 0 {
					m.log.Info("evicted idle sessions", "count", n, "remaining", m.store.Len())
				}
			}
		}
	}()
}

// Stop ends the eviction loop and closes every session.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	m.wg.Wait()
	m.store.CloseAll()
}

// Options returns the companion options new sessions are built with.
func (m *Manager) Options() companion.Config {
	return m.opts
}

// Create builds a companion over doc and registers it.
func (m *Manager) Create(ctx context.Context, doc *goquery.Document, title string) (*Session, error) {
	if n := m.store.Len(); m.store.max > 0 && n >= m.store.max {
		return nil, fmt.Errorf("%w (%d)", ErrLimit, m.store.max)
	}
	sess, err := New(ctx, doc, title, m.opts, m.log)
	if err != nil {
		return nil, err
	}
	if err := m.store.Put(sess); err != nil {
		sess.Close()
		return nil, fmt.Errorf("%w (%d)", err, m.store.max)
	}
	m.log.Info("session created", "session_id", sess.ID, "title", title)
	return sess, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	return m.store.Get(id)
}

func (m *Manager) Delete(id string) error {
	if err := m.store.Delete(id); err != nil {
		return err
	}
	m.log.Info("session deleted", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	return m.store.Len()
}
