package model

import "slices"

// TabState records which category is active and the display order of the
// categories that have tabs.
type TabState struct {
	Active Category
	Order  []Category
}

// InitialTabState derives the default tab state: sections when present,
// otherwise the first non-empty category. ok is false when the model has
// no items at all.
func InitialTabState(m Model) (state TabState, ok bool) {
	present := m.Present()
	if len(present) == 0 {
		return TabState{}, false
	}
	state = TabState{Active: present[0], Order: present}
	if slices.Contains(present, Sections) {
		state.Active = Sections
	}
	return state, true
}

// Contains reports whether c has a tab.
func (s TabState) Contains(c Category) bool {
	return slices.Contains(s.Order, c)
}

// Next returns the category after the active one, wrapping to the first.
func (s TabState) Next() Category {
	return s.offset(1)
}

// Prev returns the category before the active one, wrapping to the last.
func (s TabState) Prev() Category {
	return s.offset(-1)
}

func (s TabState) offset(delta int) Category {
	n := len(s.Order)
	if n == 0 {
		return s.Active
	}
	i := slices.Index(s.Order, s.Active)
	if i < 0 {
		return s.Order[0]
	}
	return s.Order[((i+delta)%n+n)%n]
}
