package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/crestwm/crest/internal/client"
	"github.com/crestwm/crest/internal/layout"
)

// ReadHints collects a client's ICCCM/EWMH hints. Individual hint
// reads fail independently; a window with no readable hints at all
// still yields a usable zero value.
func (c *Conn) ReadHints(win xproto.Window) (client.Hints, error) {
	var h client.Hints

	if name, err := ewmh.WmNameGet(c.xu, win); err == nil && name != "" {
		h.Name = name
	} else if name, err := icccm.WmNameGet(c.xu, win); err == nil {
		h.Name = name
	}

	if class, err := icccm.WmClassGet(c.xu, win); err == nil {
		h.Class = class.Class
		h.Instance = class.Instance
	}

	if wmHints, err := icccm.WmHintsGet(c.xu, win); err == nil {
		h.Urgent = wmHints.Flags&icccm.HintUrgency != 0
	}

	if protocols, err := icccm.WmProtocolsGet(c.xu, win); err == nil {
		for _, p := range protocols {
			switch p {
			case "WM_DELETE_WINDOW":
				h.Protocols.DeleteWindow = true
			case "WM_TAKE_FOCUS":
				h.Protocols.TakeFocus = true
			}
		}
	}

	return h, nil
}

// WindowGeometry returns a window's current geometry in root
// coordinates, used to seed floating clients with the geometry they
// mapped with.
func (c *Conn) WindowGeometry(win xproto.Window) (layout.Rect, error) {
	geom, err := xwindow.New(c.xu, win).Geometry()
	if err != nil {
		return layout.Rect{}, requestError(err)
	}
	return layout.Rect{
		X:      geom.X(),
		Y:      geom.Y(),
		Width:  geom.Width(),
		Height: geom.Height(),
	}, nil
}

// ShouldManage filters out windows a manager must leave alone: docks,
// desktops, notifications and similar override surfaces.
func (c *Conn) ShouldManage(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.xu, win)
	if err != nil {
		return true
	}
	return manageableType(types)
}

// manageableType reports whether a _NET_WM_WINDOW_TYPE list describes
// a window to bring under management. Only explicit surface types opt
// out; absent or unrecognized types are managed.
func manageableType(types []string) bool {
	for _, t := range types {
		switch t {
		case "_NET_WM_WINDOW_TYPE_DESKTOP",
			"_NET_WM_WINDOW_TYPE_DOCK",
			"_NET_WM_WINDOW_TYPE_SPLASH",
			"_NET_WM_WINDOW_TYPE_NOTIFICATION":
			return false
		}
	}
	return true
}

// IsDialog reports whether the window asks to be a floating dialog.
func (c *Conn) IsDialog(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.xu, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DIALOG" {
			return true
		}
	}
	return false
}
