package client

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/layout"
)

// UnknownClientError reports an operation on a window id that is not
// in the registry.
type UnknownClientError struct {
	Window xproto.Window
}

func (e UnknownClientError) Error() string {
	return fmt.Sprintf("unknown client window %d", e.Window)
}

// Workspace is an ordered sequence of client ids plus its layout
// policy. Insertion order is meaningful: it selects the tiling master
// and the tab cycling order.
type Workspace struct {
	ID     int
	Order  []xproto.Window
	Layout layout.Kind
	Params layout.Params
}

// Monitor is a physical display region with one active workspace.
type Monitor struct {
	ID              int
	Name            string
	Geom            layout.Rect
	ActiveWorkspace int
}

// Registry owns all Client records, keyed by window id.
type Registry struct {
	clients    map[xproto.Window]*Client
	workspaces map[int]*Workspace
	monitors   []Monitor
	logger     *slog.Logger
}

// NewRegistry creates a registry with the given workspaces and
// monitors. Each monitor's active workspace must name one of the
// provided workspace ids; the first workspace is used otherwise.
func NewRegistry(workspaceCount int, defaultLayout layout.Kind, params layout.Params, monitors []Monitor, logger *slog.Logger) *Registry {
	if workspaceCount < 1 {
		workspaceCount = 1
	}
	ws := make(map[int]*Workspace, workspaceCount)
	for i := 0; i < workspaceCount; i++ {
		ws[i] = &Workspace{ID: i, Layout: defaultLayout, Params: params}
	}
	for i := range monitors {
		if _, ok := ws[monitors[i].ActiveWorkspace]; !ok {
			monitors[i].ActiveWorkspace = 0
		}
	}
	return &Registry{
		clients:    make(map[xproto.Window]*Client),
		workspaces: ws,
		monitors:   monitors,
		logger:     logger,
	}
}

// Register creates a Client in Mapped state on the active workspace of
// the target monitor. Registering an already-known window is a no-op.
func (r *Registry) Register(win xproto.Window, hints Hints, monitorID int) *Client {
	if c, ok := r.clients[win]; ok {
		r.logger.Debug("register ignored, window already managed", "window", win)
		return c
	}
	mon := r.monitorByID(monitorID)
	ws := r.workspaces[mon.ActiveWorkspace]

	c := &Client{
		ID:        win,
		State:     Mapped,
		Workspace: ws.ID,
		Hints:     hints,
	}
	r.clients[win] = c
	ws.Order = append(ws.Order, win)
	return c
}

// Unregister removes a client and returns its former workspace id for
// cascade updates. Unknown windows are a no-op, reported by ok=false.
func (r *Registry) Unregister(win xproto.Window) (workspaceID int, ok bool) {
	c, found := r.clients[win]
	if !found {
		return 0, false
	}
	c.State = Destroyed
	delete(r.clients, win)
	r.removeFromWorkspace(c.Workspace, win)
	return c.Workspace, true
}

// Get returns the client record for win, or nil if unmanaged.
func (r *Registry) Get(win xproto.Window) *Client {
	return r.clients[win]
}

// UpdateGeometry records a client's explicitly-set geometry.
func (r *Registry) UpdateGeometry(win xproto.Window, geom layout.Rect) error {
	c, ok := r.clients[win]
	if !ok {
		return UnknownClientError{Window: win}
	}
	c.Geom = geom
	c.HasGeom = true
	return nil
}

// SetFloating toggles a client in or out of the floating set.
func (r *Registry) SetFloating(win xproto.Window, floating bool) error {
	c, ok := r.clients[win]
	if !ok {
		return UnknownClientError{Window: win}
	}
	c.Floating = floating
	return nil
}

// MoveToWorkspace reassigns a client to another workspace, appending
// it to the end of the target sequence.
func (r *Registry) MoveToWorkspace(win xproto.Window, workspaceID int) error {
	c, ok := r.clients[win]
	if !ok {
		return UnknownClientError{Window: win}
	}
	target, ok := r.workspaces[workspaceID]
	if !ok {
		return fmt.Errorf("unknown workspace %d", workspaceID)
	}
	if c.Workspace == workspaceID {
		return nil
	}
	r.removeFromWorkspace(c.Workspace, win)
	target.Order = append(target.Order, win)
	c.Workspace = workspaceID
	return nil
}

// ClientsIn yields the workspace's clients in sequence order. The view
// is lazy and restartable; callers must not mutate the registry while
// ranging over it.
func (r *Registry) ClientsIn(workspaceID int) iter.Seq[*Client] {
	return func(yield func(*Client) bool) {
		ws, ok := r.workspaces[workspaceID]
		if !ok {
			return
		}
		for _, win := range ws.Order {
			c, ok := r.clients[win]
			if !ok {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Mapped yields every client currently in Mapped state, in no
// particular order.
func (r *Registry) Mapped() iter.Seq[*Client] {
	return func(yield func(*Client) bool) {
		for _, c := range r.clients {
			if c.State != Mapped {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Len returns the number of managed clients.
func (r *Registry) Len() int { return len(r.clients) }

// Workspace returns the workspace record, or nil if the id is unknown.
func (r *Registry) Workspace(id int) *Workspace {
	return r.workspaces[id]
}

// WorkspaceCount returns the number of configured workspaces.
func (r *Registry) WorkspaceCount() int { return len(r.workspaces) }

// Monitors returns the configured monitors.
func (r *Registry) Monitors() []Monitor { return r.monitors }

// MonitorFor returns the monitor whose active workspace is the
// client's workspace, or nil when the workspace is not displayed.
func (r *Registry) MonitorFor(c *Client) *Monitor {
	for i := range r.monitors {
		if r.monitors[i].ActiveWorkspace == c.Workspace {
			return &r.monitors[i]
		}
	}
	return nil
}

// SwitchWorkspace points a monitor at another workspace and returns
// the previously active workspace id.
func (r *Registry) SwitchWorkspace(monitorID, workspaceID int) (previous int, err error) {
	if _, ok := r.workspaces[workspaceID]; !ok {
		return 0, fmt.Errorf("unknown workspace %d", workspaceID)
	}
	mon := r.monitorByID(monitorID)
	previous = mon.ActiveWorkspace
	mon.ActiveWorkspace = workspaceID
	return previous, nil
}

// SwapInWorkspace exchanges a client with its neighbor in the
// workspace sequence. delta is -1 (toward master) or +1.
func (r *Registry) SwapInWorkspace(win xproto.Window, delta int) error {
	c, ok := r.clients[win]
	if !ok {
		return UnknownClientError{Window: win}
	}
	ws := r.workspaces[c.Workspace]
	i := slices.Index(ws.Order, win)
	j := i + delta
	if i < 0 || j < 0 || j >= len(ws.Order) {
		return nil
	}
	ws.Order[i], ws.Order[j] = ws.Order[j], ws.Order[i]
	return nil
}

func (r *Registry) monitorByID(id int) *Monitor {
	for i := range r.monitors {
		if r.monitors[i].ID == id {
			return &r.monitors[i]
		}
	}
	return &r.monitors[0]
}

func (r *Registry) removeFromWorkspace(workspaceID int, win xproto.Window) {
	ws, ok := r.workspaces[workspaceID]
	if !ok {
		return
	}
	ws.Order = slices.DeleteFunc(ws.Order, func(w xproto.Window) bool {
		return w == win
	})
}
