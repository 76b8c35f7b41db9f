// Package hints keeps window-manager-owned ICCCM/EWMH properties in
// sync with the internal model: the active window, the ordered client
// list, and per-client state flags.
package hints

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/client"
	"github.com/crestwm/crest/internal/x11"
)

// EWMH state atoms written per client.
const (
	StateHidden           = "_NET_WM_STATE_HIDDEN"
	StateDemandsAttention = "_NET_WM_STATE_DEMANDS_ATTENTION"
	StateFullscreen       = "_NET_WM_STATE_FULLSCREEN"
)

// Writer issues the property-change requests the compliance layer
// needs. Implemented by the display connection adapter.
type Writer interface {
	SetActiveWindow(xproto.Window) error
	SetClientList([]xproto.Window) error
	SetWMState(xproto.Window, []string) error
}

// Manager mirrors model changes into server-side properties. Write
// failures never block the event loop: a BadWindow write is retried
// exactly once, then dropped with a log entry.
type Manager struct {
	w      Writer
	logger *slog.Logger
}

// NewManager creates a compliance manager writing through w.
func NewManager(w Writer, logger *slog.Logger) *Manager {
	return &Manager{w: w, logger: logger}
}

// ActiveWindow publishes the focused window (zero for none).
func (m *Manager) ActiveWindow(win xproto.Window) {
	m.write("active window", win, func() error {
		return m.w.SetActiveWindow(win)
	})
}

// ClientList publishes the ordered set of managed clients.
func (m *Manager) ClientList(wins []xproto.Window) {
	m.write("client list", 0, func() error {
		return m.w.SetClientList(wins)
	})
}

// ClientState publishes a client's state flags.
func (m *Manager) ClientState(c *client.Client) {
	states := StatesFor(c)
	m.write("client state", c.ID, func() error {
		return m.w.SetWMState(c.ID, states)
	})
}

// StatesFor maps a client record to its EWMH state atoms.
func StatesFor(c *client.Client) []string {
	states := make([]string, 0, 3)
	if c.State == client.Iconic {
		states = append(states, StateHidden)
	}
	if c.Hints.Urgent {
		states = append(states, StateDemandsAttention)
	}
	if c.Fullscreen {
		states = append(states, StateFullscreen)
	}
	return states
}

func (m *Manager) write(what string, win xproto.Window, attempt func() error) {
	err := attempt()
	if err == nil {
		return
	}
	if !x11.IsBadWindow(err) {
		m.logger.Error("property write failed", "what", what, "window", win, "error", err)
		return
	}
	m.logger.Warn("property write hit vanished window, retrying once",
		"what", what, "window", win)
	if err := attempt(); err != nil {
		m.logger.Warn("property write dropped", "what", what, "window", win, "error", err)
	}
}
