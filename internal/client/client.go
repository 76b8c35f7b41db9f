// Package client owns the set of managed window records. Workspaces
// and monitors reference clients by window id only; no other package
// holds Client data directly.
package client

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/layout"
)

// State is a client's lifecycle state.
type State int

const (
	Unmanaged State = iota
	Mapped
	Withdrawn
	Iconic
	Destroyed
)

func (s State) String() string {
	switch s {
	case Unmanaged:
		return "unmanaged"
	case Mapped:
		return "mapped"
	case Withdrawn:
		return "withdrawn"
	case Iconic:
		return "iconic"
	case Destroyed:
		return "destroyed"
	}
	return "unknown"
}

// Protocols records which ICCCM protocol capabilities a client
// advertises via WM_PROTOCOLS.
type Protocols struct {
	DeleteWindow bool // accepts a polite WM_DELETE_WINDOW close request
	TakeFocus    bool // participates in WM_TAKE_FOCUS focus handoff
}

// Hints is the read-only slice of a client's ICCCM/EWMH hints,
// populated once on arrival and refreshed on PropertyNotify.
type Hints struct {
	Name      string
	Class     string
	Instance  string
	Urgent    bool
	Protocols Protocols
}

// Client is one managed window. Records are created on the first map
// request for an unmanaged window and removed on destroy.
type Client struct {
	ID         xproto.Window
	Geom       layout.Rect
	HasGeom    bool
	State      State
	Floating   bool
	Fullscreen bool
	Workspace  int
	Hints      Hints

	// Hidden tracks whether the manager itself has the window
	// unmapped (hidden workspace, background tab, iconified).
	Hidden bool

	// ignoreUnmaps counts unmaps we issued ourselves (workspace hide,
	// iconify) so the matching UnmapNotify does not withdraw the client.
	ignoreUnmaps int
}

// ExpectUnmap records that the manager is about to unmap this window
// itself.
func (c *Client) ExpectUnmap() { c.ignoreUnmaps++ }

// ConsumeExpectedUnmap reports whether an incoming UnmapNotify was
// self-induced and should be ignored.
func (c *Client) ConsumeExpectedUnmap() bool {
	if c.ignoreUnmaps > 0 {
		c.ignoreUnmaps--
		return true
	}
	return false
}

// LayoutInput projects the client onto the geometry-relevant state the
// layout engine consumes.
func (c *Client) LayoutInput() layout.Input {
	return layout.Input{
		ID:       c.ID,
		Floating: c.Floating,
		Geom:     c.Geom,
		HasGeom:  c.HasGeom,
	}
}
