package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/layout"
)

// Event is one decoded protocol event. The set of implementations is
// closed; the dispatcher switches over all of them.
type Event interface {
	event()
}

// MapRequest asks the manager to map a window.
type MapRequest struct {
	Window xproto.Window
}

// UnmapNotify reports that a window was unmapped, by the client or by
// the manager itself.
type UnmapNotify struct {
	Window xproto.Window
}

// DestroyNotify reports that a window ceased to exist.
type DestroyNotify struct {
	Window xproto.Window
}

// ConfigureRequest asks for a geometry change. Only the fields named
// in Mask carry meaning.
type ConfigureRequest struct {
	Window xproto.Window
	Geom   layout.Rect
	Mask   uint16
}

// PropertyNotify reports a property change on a client window.
type PropertyNotify struct {
	Window xproto.Window
	Atom   xproto.Atom
}

// ClientMessage carries an EWMH request from a client or pager.
type ClientMessage struct {
	Window xproto.Window
	Type   xproto.Atom
	Data   [5]uint32
}

// KeyPress reports a grabbed key combination.
type KeyPress struct {
	Detail xproto.Keycode
	State  uint16
}

// ButtonPress reports a pointer click, carrying the clicked client
// window.
type ButtonPress struct {
	Window xproto.Window
}

// Shutdown asks the event loop to terminate cleanly. It is injected
// locally, never read off the wire.
type Shutdown struct{}

func (MapRequest) event()       {}
func (UnmapNotify) event()      {}
func (DestroyNotify) event()    {}
func (ConfigureRequest) event() {}
func (PropertyNotify) event()   {}
func (ClientMessage) event()    {}
func (KeyPress) event()         {}
func (ButtonPress) event()      {}
func (Shutdown) event()         {}

// convertEvent decodes a wire event into its typed form, or nil for
// event kinds the manager does not react to.
func convertEvent(raw xgb.Event) Event {
	switch ev := raw.(type) {
	case xproto.MapRequestEvent:
		return MapRequest{Window: ev.Window}
	case xproto.UnmapNotifyEvent:
		return UnmapNotify{Window: ev.Window}
	case xproto.DestroyNotifyEvent:
		return DestroyNotify{Window: ev.Window}
	case xproto.ConfigureRequestEvent:
		return ConfigureRequest{
			Window: ev.Window,
			Geom: layout.Rect{
				X:      int(ev.X),
				Y:      int(ev.Y),
				Width:  int(ev.Width),
				Height: int(ev.Height),
			},
			Mask: ev.ValueMask,
		}
	case xproto.PropertyNotifyEvent:
		return PropertyNotify{Window: ev.Window, Atom: ev.Atom}
	case xproto.ClientMessageEvent:
		if ev.Format != 32 {
			return nil
		}
		var data [5]uint32
		copy(data[:], ev.Data.Data32)
		return ClientMessage{Window: ev.Window, Type: ev.Type, Data: data}
	case xproto.KeyPressEvent:
		return KeyPress{Detail: ev.Detail, State: ev.State}
	case xproto.ButtonPressEvent:
		// Clicks land on the root; Child is the managed window under
		// the pointer.
		win := ev.Child
		if win == xproto.WindowNone {
			win = ev.Event
		}
		return ButtonPress{Window: win}
	}
	return nil
}
