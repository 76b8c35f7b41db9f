// Package stack maintains the top-to-bottom stacking order of mapped
// windows and the focus state machine, holding window identifiers
// only.
package stack

import (
	"slices"

	"github.com/BurntSushi/xgb/xproto"
)

// None marks the absence of a focused window.
const None xproto.Window = 0

// historyLimit bounds the focus fallback history.
const historyLimit = 32

// Manager tracks stacking order and focus. The order slice is
// top-to-bottom and covers exactly the set of mapped clients.
type Manager struct {
	order   []xproto.Window
	focused xproto.Window
	history []xproto.Window // most recent last
}

// New creates a Manager in the no-focus state.
func New() *Manager {
	return &Manager{focused: None}
}

// Add pushes a newly mapped window to the top of the stacking order
// and focuses it, pushing the previously focused window onto the
// history. Adding a window already in the order only refocuses it.
func (m *Manager) Add(win xproto.Window) {
	if !slices.Contains(m.order, win) {
		m.order = append([]xproto.Window{win}, m.order...)
	}
	m.Focus(win)
}

// Remove drops a window from the stacking order. If it was focused,
// focus falls back to the most recent still-stacked history entry,
// skipping stale ones, or to no focus when the history is exhausted.
// Removing an unknown window changes nothing.
func (m *Manager) Remove(win xproto.Window) {
	m.order = slices.DeleteFunc(m.order, func(w xproto.Window) bool { return w == win })
	m.history = slices.DeleteFunc(m.history, func(w xproto.Window) bool { return w == win })

	if m.focused != win {
		return
	}
	m.focused = None
	for len(m.history) > 0 {
		last := m.history[len(m.history)-1]
		m.history = m.history[:len(m.history)-1]
		if slices.Contains(m.order, last) {
			m.focused = last
			m.Raise(last)
			return
		}
	}
}

// Focus makes win the focused window and moves it to the top of the
// stacking order. The previous focus is pushed onto the history.
// Focusing an unstacked window is a no-op.
func (m *Manager) Focus(win xproto.Window) {
	if !slices.Contains(m.order, win) {
		return
	}
	if m.focused == win {
		m.Raise(win)
		return
	}
	if m.focused != None {
		m.pushHistory(m.focused)
	}
	m.focused = win
	m.Raise(win)
}

// Unfocus clears the focus, remembering the previous holder in the
// history for later fallback.
func (m *Manager) Unfocus() {
	if m.focused == None {
		return
	}
	m.pushHistory(m.focused)
	m.focused = None
}

// Raise moves a window to the top of the stacking order without
// changing focus.
func (m *Manager) Raise(win xproto.Window) {
	i := slices.Index(m.order, win)
	if i <= 0 {
		return
	}
	m.order = slices.Delete(m.order, i, i+1)
	m.order = append([]xproto.Window{win}, m.order...)
}

// Lower moves a window to the bottom of the stacking order.
func (m *Manager) Lower(win xproto.Window) {
	i := slices.Index(m.order, win)
	if i < 0 || i == len(m.order)-1 {
		return
	}
	m.order = slices.Delete(m.order, i, i+1)
	m.order = append(m.order, win)
}

// Focused returns the focused window, or None.
func (m *Manager) Focused() xproto.Window { return m.focused }

// Order returns the stacking order top-to-bottom. The slice is a copy.
func (m *Manager) Order() []xproto.Window {
	return slices.Clone(m.order)
}

// Contains reports whether win is in the stacking order.
func (m *Manager) Contains(win xproto.Window) bool {
	return slices.Contains(m.order, win)
}

func (m *Manager) pushHistory(win xproto.Window) {
	// Keep at most one history entry per window.
	m.history = slices.DeleteFunc(m.history, func(w xproto.Window) bool { return w == win })
	m.history = append(m.history, win)
	if len(m.history) > historyLimit {
		m.history = m.history[len(m.history)-historyLimit:]
	}
}
