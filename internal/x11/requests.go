package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/crestwm/crest/internal/layout"
)

// ConfigureWindow moves and resizes a window to the given rect.
func (c *Conn) ConfigureWindow(win xproto.Window, r layout.Rect) error {
	w, h := r.Width, r.Height
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	err := xproto.ConfigureWindowChecked(
		c.xu.Conn(),
		win,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(r.X), uint32(r.Y), uint32(w), uint32(h)},
	).Check()
	return requestError(err)
}

// MapWindow maps a window.
func (c *Conn) MapWindow(win xproto.Window) error {
	return requestError(xproto.MapWindowChecked(c.xu.Conn(), win).Check())
}

// UnmapWindow unmaps a window.
func (c *Conn) UnmapWindow(win xproto.Window) error {
	return requestError(xproto.UnmapWindowChecked(c.xu.Conn(), win).Check())
}

// RaiseWindow restacks a window to the top.
func (c *Conn) RaiseWindow(win xproto.Window) error {
	err := xproto.ConfigureWindowChecked(
		c.xu.Conn(),
		win,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
	return requestError(err)
}

// LowerWindow restacks a window to the bottom.
func (c *Conn) LowerWindow(win xproto.Window) error {
	err := xproto.ConfigureWindowChecked(
		c.xu.Conn(),
		win,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeBelow},
	).Check()
	return requestError(err)
}

// SetInputFocus gives keyboard focus to win, or reverts to the root
// when win is zero.
func (c *Conn) SetInputFocus(win xproto.Window) error {
	target := win
	if target == 0 {
		target = c.root
	}
	err := xproto.SetInputFocusChecked(
		c.xu.Conn(),
		xproto.InputFocusPointerRoot,
		target,
		xproto.TimeCurrentTime,
	).Check()
	return requestError(err)
}

// SelectClientEvents subscribes to the property and structure events
// of a newly managed client window.
func (c *Conn) SelectClientEvents(win xproto.Window) error {
	err := xproto.ChangeWindowAttributesChecked(
		c.xu.Conn(),
		win,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify},
	).Check()
	return requestError(err)
}

// CloseWindow closes a client. When polite is set the WM_DELETE_WINDOW
// protocol is used so the client can prompt or clean up; otherwise the
// connection is killed outright.
func (c *Conn) CloseWindow(win xproto.Window, polite bool) error {
	if !polite {
		return requestError(xproto.KillClientChecked(c.xu.Conn(), uint32(win)).Check())
	}

	protocols, err := xprop.Atm(c.xu, "WM_PROTOCOLS")
	if err != nil {
		return ProtocolError{Err: err}
	}
	deleteWindow, err := xprop.Atm(c.xu, "WM_DELETE_WINDOW")
	if err != nil {
		return ProtocolError{Err: err}
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(deleteWindow),
			uint32(xproto.TimeCurrentTime),
			0, 0, 0,
		}),
	}
	sendErr := xproto.SendEventChecked(
		c.xu.Conn(),
		false,
		win,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
	return requestError(sendErr)
}

// SetActiveWindow publishes _NET_ACTIVE_WINDOW.
func (c *Conn) SetActiveWindow(win xproto.Window) error {
	return requestError(ewmh.ActiveWindowSet(c.xu, win))
}

// SetClientList publishes the ordered _NET_CLIENT_LIST.
func (c *Conn) SetClientList(wins []xproto.Window) error {
	return requestError(ewmh.ClientListSet(c.xu, wins))
}

// SetWMState publishes a client's _NET_WM_STATE atoms.
func (c *Conn) SetWMState(win xproto.Window, states []string) error {
	return requestError(ewmh.WmStateSet(c.xu, win, states))
}

// WMState reads back a client's _NET_WM_STATE atoms.
func (c *Conn) WMState(win xproto.Window) ([]string, error) {
	states, err := ewmh.WmStateGet(c.xu, win)
	if err != nil {
		return nil, requestError(err)
	}
	return states, nil
}
