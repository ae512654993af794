package session

import (
	"fmt"

	"github.com/dgallion1/readcomp/internal/model"
	"github.com/dgallion1/readcomp/internal/navsync"
	"github.com/dgallion1/readcomp/internal/page"
)

// Event types accepted by Dispatch besides the navigation events.
const (
	EventClick   = page.Click
	EventKeyDown = page.KeyDown
	EventBlur    = page.Blur
)

// Event is one interaction applied to a session.
type Event struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Previous string `json:"previous,omitempty"`
	Tab      string `json:"tab,omitempty"`
	Key      string `json:"key,omitempty"`
	KeyCode  int    `json:"key_code,omitempty"`
}

// Validate checks that the event carries the fields its type needs.
func (e Event) Validate() error {
	switch e.Type {
	case navsync.EventSection, navsync.EventFigure, navsync.EventReference:
		if e.ID == "" {
			return fmt.Errorf("%w: %s requires id", ErrBadEvent, e.Type)
		}
	case EventClick:
		if _, err := model.ParseCategory(e.Tab); err != nil {
			return fmt.Errorf("%w: %v", ErrBadEvent, err)
		}
	case EventKeyDown:
		if e.Key == "" && e.KeyCode == 0 {
			return fmt.Errorf("%w: keydown requires key or key_code", ErrBadEvent)
		}
	case EventBlur:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrBadEvent, e.Type)
	}
	return nil
}
