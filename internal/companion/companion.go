// Package companion wires the scanner, panel builder, tab controller and
// navigation synchronizer into one reading companion instance.
package companion

import (
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/readcomp/internal/emitter"
	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/navsync"
	"github.com/dgallion1/readcomp/internal/page"
	"github.com/dgallion1/readcomp/internal/panel"
	"github.com/dgallion1/readcomp/internal/scanner"
	"github.com/dgallion1/readcomp/internal/tabs"
)

// ReadyEvent is the scheduler event the companion waits for before building.
const ReadyEvent = "ready"

// Config holds the companion options.
type Config struct {
	// Access grants full size image links.
	Access bool
	// SupplementaryImageBase prefixes extended data image file names.
	SupplementaryImageBase string
}

// Companion is one initialized reading companion. All of its subscriptions
// and listeners are released together by Close.
type Companion struct {
	cfg  Config
	page *page.Page
	nav  emitter.Subscriber
	log  *slog.Logger

	scheduler emitter.Subscriber
	ready     *emitter.Subscription
	built     bool
	err       error

	model     model.Model
	index     *panel.Index
	tabs      *tabs.Controller
	sync      *navsync.Synchronizer
	listeners []*page.Listener
	closed    bool
}

// Init creates a companion for the document held by p. The panels are
// built when scheduler fires ReadyEvent; with emitter.Immediate that
// happens before Init returns and any build error is returned.
func Init(cfg Config, scheduler, nav emitter.Subscriber, p *page.Page, log *slog.Logger) (*Companion, error) {
	c := &Companion{
		cfg:       cfg,
		page:      p,
		nav:       nav,
		log:       log,
		scheduler: scheduler,
	}

	sub := scheduler.On(ReadyEvent, func(...string) {
		c.onReady()
	})
	if c.built {
		scheduler.Off(sub)
		return c, c.err
	}
	c.ready = sub
	return c, nil
}

// Build initializes a companion over doc immediately, for one-shot
// rendering where no navigation events follow. The caller closes the
// returned companion.
func Build(doc *goquery.Document, cfg Config, log *slog.Logger) (*page.Page, *Companion, error) {
	p := page.New(doc)
	c, err := Init(cfg, emitter.Immediate{}, emitter.New(), p, log)
	if err != nil {
		c.Close()
		return nil, nil, err
	}
	return p, c, nil
}

func (c *Companion) onReady() {
	if c.built || c.closed {
		return
	}
	c.built = true
	if c.ready != nil {
		c.scheduler.Off(c.ready)
		c.ready = nil
	}
	if err := c.build(); err != nil {
		c.err = err
		c.log.Error("reading companion build failed", "error", err)
	}
}

func (c *Companion) build() error {
	c.model = scanner.Scan(c.page.Document(), scanner.Options{
		Access:                 c.cfg.Access,
		SupplementaryImageBase: c.cfg.SupplementaryImageBase,
	})
	state, _ := model.InitialTabState(c.model)

	ix, err := panel.Build(c.page.Document(), c.model, state, c.cfg.Access)
	if err != nil {
		return fmt.Errorf("init companion: %w", err)
	}
	c.index = ix
	c.tabs = tabs.New(state, ix, c.page)
	c.listeners = c.tabs.Bind(c.page)

	c.sync = navsync.New(c.model, ix, c.tabs, c.page, c.log)
	c.sync.Subscribe(c.nav)

	c.log.Debug("reading companion built",
		"sections", len(c.model.Sections),
		"figures", len(c.model.Figures),
		"references", len(c.model.References),
		"tabbed", c.model.Tabbed(),
	)
	return nil
}

// Built reports whether the panels have been built.
func (c *Companion) Built() bool {
	return c.built && c.err == nil
}

// Err returns the build error, if any.
func (c *Companion) Err() error {
	return c.err
}

// Model returns the scanned model.
func (c *Companion) Model() model.Model {
	return c.model
}

// Index returns the rendered panel index, or nil before the build.
func (c *Companion) Index() *panel.Index {
	return c.index
}

// Tabs returns the tab controller, or nil before the build.
func (c *Companion) Tabs() *tabs.Controller {
	return c.tabs
}

// Close releases the ready subscription, the navigation subscriptions and
// the tab listeners. Calling it again is a no-op.
func (c *Companion) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.ready != nil {
		c.scheduler.Off(c.ready)
		c.ready = nil
	}
	if c.sync != nil {
		c.sync.Close()
	}
	for _, l := range c.listeners {
		c.page.Off(l)
	}
	c.listeners = nil
}
