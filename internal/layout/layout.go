// Package layout computes target window geometries for a workspace.
// All functions are pure: identical inputs always produce identical
// output rects, and nothing here talks to the X server.
package layout

import (
	"github.com/BurntSushi/xgb/xproto"
)

// Rect represents a window position and size in root coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Kind selects the layout policy for a workspace.
type Kind string

const (
	Tiling   Kind = "tiling"
	Floating Kind = "floating"
	Tabbed   Kind = "tabbed"
)

// Valid reports whether k names a known layout kind.
func (k Kind) Valid() bool {
	switch k {
	case Tiling, Floating, Tabbed:
		return true
	}
	return false
}

// Params holds the tunable layout parameters of a workspace.
type Params struct {
	MasterRatio float64 // width share of the master column, clamped to [0.1, 0.9]
	GapPx       int     // outer margin and inter-window gap in pixels
}

// Input is the geometry-relevant slice of a client's state. Order of
// the input sequence is meaningful: the first non-floating entry is
// the tiling master, and tab cycling follows sequence order.
type Input struct {
	ID       xproto.Window
	Floating bool
	Geom     Rect // last explicitly-set geometry
	HasGeom  bool // false until a geometry has ever been set
}

const (
	minMasterRatio = 0.1
	maxMasterRatio = 0.9
)

// ClampRatio forces a master ratio into the supported range.
func ClampRatio(r float64) float64 {
	if r < minMasterRatio {
		return minMasterRatio
	}
	if r > maxMasterRatio {
		return maxMasterRatio
	}
	return r
}

// Compute maps each client id to its target rect under the given
// layout kind. active names the most-recently-focused client and is
// only consulted by the tabbed layout. Floating clients are assigned
// floating geometry regardless of kind; a zero or one client input is
// a valid, trivial computation, never an error.
func Compute(kind Kind, clients []Input, monitor Rect, params Params, active xproto.Window) map[xproto.Window]Rect {
	out := make(map[xproto.Window]Rect, len(clients))

	var managed []Input
	for _, c := range clients {
		if c.Floating || kind == Floating {
			out[c.ID] = floatingRect(c, monitor)
			continue
		}
		managed = append(managed, c)
	}
	if kind == Floating {
		return out
	}

	switch kind {
	case Tabbed:
		computeTabbed(managed, monitor, active, out)
	default:
		computeTiling(managed, monitor, params, out)
	}
	return out
}

// floatingRect keeps the client's own geometry, or assigns the
// centered half-monitor default for a client that never had one.
func floatingRect(c Input, monitor Rect) Rect {
	if c.HasGeom {
		return c.Geom
	}
	return Rect{
		X:      monitor.X + monitor.Width/4,
		Y:      monitor.Y + monitor.Height/4,
		Width:  monitor.Width / 2,
		Height: monitor.Height / 2,
	}
}

// computeTiling implements the master/stack split: the first client
// fills a left column of width monitor.Width*MasterRatio, the rest
// evenly partition the remaining vertical space on the right.
func computeTiling(clients []Input, monitor Rect, params Params, out map[xproto.Window]Rect) {
	n := len(clients)
	if n == 0 {
		return
	}

	gap := params.GapPx
	if gap < 0 {
		gap = 0
	}

	if n == 1 {
		out[clients[0].ID] = Rect{
			X:      monitor.X + gap,
			Y:      monitor.Y + gap,
			Width:  monitor.Width - 2*gap,
			Height: monitor.Height - 2*gap,
		}
		return
	}

	ratio := ClampRatio(params.MasterRatio)
	masterWidth := int(float64(monitor.Width) * ratio)

	out[clients[0].ID] = Rect{
		X:      monitor.X + gap,
		Y:      monitor.Y + gap,
		Width:  masterWidth - gap,
		Height: monitor.Height - 2*gap,
	}

	stack := clients[1:]
	stackX := monitor.X + masterWidth + gap
	stackWidth := monitor.Width - masterWidth - 2*gap
	cellHeight := (monitor.Height - (len(stack)+1)*gap) / len(stack)

	for i, c := range stack {
		out[c.ID] = Rect{
			X:      stackX,
			Y:      monitor.Y + gap + i*(cellHeight+gap),
			Width:  stackWidth,
			Height: cellHeight,
		}
	}
}

// computeTabbed gives the active client the full monitor rect and
// hides everything else behind a zero-area rect. When the active
// client is not part of the sequence (or none is set), the first
// client in sequence order is shown.
func computeTabbed(clients []Input, monitor Rect, active xproto.Window, out map[xproto.Window]Rect) {
	if len(clients) == 0 {
		return
	}

	shown := clients[0].ID
	for _, c := range clients {
		if c.ID == active {
			shown = active
			break
		}
	}

	for _, c := range clients {
		if c.ID == shown {
			out[c.ID] = monitor
		} else {
			out[c.ID] = Rect{X: monitor.X, Y: monitor.Y}
		}
	}
}
