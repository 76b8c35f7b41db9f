package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/client"
	"github.com/crestwm/crest/internal/hints"
	"github.com/crestwm/crest/internal/layout"
	"github.com/crestwm/crest/internal/x11"
)

// EWMH client message constants: the action word of a _NET_WM_STATE
// request.
const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
	netWMStateToggle = 2
)

func (wm *WM) handleMapRequest(e x11.MapRequest) error {
	if c := wm.reg.Get(e.Window); c != nil {
		switch c.State {
		case client.Withdrawn, client.Iconic:
			return wm.remap(c)
		default:
			wm.logger.Debug("map request for already-managed window", "window", e.Window)
			return nil
		}
	}
	return wm.manage(e.Window)
}

// manage brings a new window under management: hints are read once on
// arrival, the client joins the active workspace, takes the top of
// the stacking order and the focus.
func (wm *WM) manage(win xproto.Window) error {
	if !wm.disp.ShouldManage(win) {
		// Docks and friends get mapped but never managed.
		return wm.disp.MapWindow(win)
	}

	h, err := wm.disp.ReadHints(win)
	if err != nil {
		wm.logger.Warn("hint read failed, managing with defaults", "window", win, "error", err)
	}

	mon := wm.activeMonitor()
	c := wm.reg.Register(win, h, mon.ID)

	if wm.disp.IsDialog(win) {
		c.Floating = true
		// Dialogs keep the geometry they asked to map with.
		if g, err := wm.disp.WindowGeometry(win); err == nil {
			c.Geom = g
			c.HasGeom = true
		}
	}

	if err := wm.disp.SelectClientEvents(win); err != nil {
		wm.logger.Debug("event selection failed", "window", win, "error", err)
	}

	wm.stack.Add(win)
	wm.retile(c.Workspace)

	wm.comp.ClientState(c)
	wm.syncModel()

	if err := wm.disp.MapWindow(win); err != nil {
		return err
	}
	wm.restack()
	wm.setInputFocus(win)
	wm.logger.Info("managing window",
		"window", win, "class", c.Hints.Class, "workspace", c.Workspace)
	return nil
}

// remap returns a withdrawn or iconified client to Mapped state.
func (wm *WM) remap(c *client.Client) error {
	c.State = client.Mapped
	c.Hidden = false
	wm.stack.Add(c.ID)
	wm.retile(c.Workspace)
	wm.comp.ClientState(c)
	wm.syncModel()

	if err := wm.disp.MapWindow(c.ID); err != nil {
		return err
	}
	wm.restack()
	wm.setInputFocus(c.ID)
	return nil
}

func (wm *WM) handleUnmapNotify(e x11.UnmapNotify) error {
	c := wm.reg.Get(e.Window)
	if c == nil {
		wm.logger.Debug("unmap for unmanaged window", "window", e.Window)
		return nil
	}
	if c.ConsumeExpectedUnmap() {
		return nil
	}

	// The client unmapped itself: withdrawn, but the record persists
	// until DestroyNotify.
	c.State = client.Withdrawn
	wm.stack.Remove(c.ID)
	wm.ensureFocusVisible()
	wm.retile(c.Workspace)
	wm.comp.ClientState(c)
	wm.syncModel()
	wm.setInputFocus(wm.stack.Focused())
	return nil
}

func (wm *WM) handleDestroyNotify(e x11.DestroyNotify) error {
	workspaceID, ok := wm.reg.Unregister(e.Window)
	if !ok {
		wm.logger.Debug("destroy for unmanaged window", "window", e.Window)
		return nil
	}

	wm.stack.Remove(e.Window)
	wm.ensureFocusVisible()
	wm.retile(workspaceID)
	wm.syncModel()
	wm.logger.Info("window destroyed", "window", e.Window, "workspace", workspaceID)
	wm.setInputFocus(wm.stack.Focused())
	return nil
}

func (wm *WM) handleConfigureRequest(e x11.ConfigureRequest) error {
	c := wm.reg.Get(e.Window)
	if c == nil {
		// Unmanaged windows get what they asked for.
		current, err := wm.disp.WindowGeometry(e.Window)
		if err != nil {
			return err
		}
		return wm.disp.ConfigureWindow(e.Window, mergeConfigure(current, e))
	}

	if c.Floating || wm.reg.Workspace(c.Workspace).Layout == layout.Floating {
		base := c.Geom
		if !c.HasGeom {
			if g, err := wm.disp.WindowGeometry(e.Window); err == nil {
				base = g
			}
		}
		merged := mergeConfigure(base, e)
		if err := wm.reg.UpdateGeometry(c.ID, merged); err != nil {
			return err
		}
		return wm.disp.ConfigureWindow(c.ID, merged)
	}

	// Tiled clients do not pick their own geometry: re-assert the
	// layout's decision instead of honoring the request.
	wm.retile(c.Workspace)
	return nil
}

// mergeConfigure applies only the requested fields of a configure
// request over the current geometry.
func mergeConfigure(current layout.Rect, e x11.ConfigureRequest) layout.Rect {
	merged := current
	if e.Mask&xproto.ConfigWindowX != 0 {
		merged.X = e.Geom.X
	}
	if e.Mask&xproto.ConfigWindowY != 0 {
		merged.Y = e.Geom.Y
	}
	if e.Mask&xproto.ConfigWindowWidth != 0 {
		merged.Width = e.Geom.Width
	}
	if e.Mask&xproto.ConfigWindowHeight != 0 {
		merged.Height = e.Geom.Height
	}
	return merged
}

func (wm *WM) handlePropertyNotify(e x11.PropertyNotify) error {
	c := wm.reg.Get(e.Window)
	if c == nil {
		return nil
	}

	switch e.Atom {
	case xproto.AtomWmHints, xproto.AtomWmName, xproto.AtomWmClass,
		wm.disp.Atom("_NET_WM_NAME"), wm.disp.Atom("WM_PROTOCOLS"):
	default:
		return nil
	}

	h, err := wm.disp.ReadHints(c.ID)
	if err != nil {
		return err
	}
	wasUrgent := c.Hints.Urgent
	c.Hints = h

	// Urgency surfaces through the compliance layer only; it never
	// steals focus.
	if h.Urgent != wasUrgent {
		wm.comp.ClientState(c)
		wm.logger.Info("urgency changed", "window", c.ID, "urgent", h.Urgent)
	}
	return nil
}

func (wm *WM) handleClientMessage(e x11.ClientMessage) error {
	switch e.Type {
	case wm.disp.Atom("_NET_ACTIVE_WINDOW"):
		return wm.focusClient(e.Window)

	case wm.disp.Atom("_NET_WM_STATE"):
		return wm.handleStateMessage(e)

	case wm.disp.Atom("_NET_CLOSE_WINDOW"):
		c := wm.reg.Get(e.Window)
		if c == nil {
			return client.UnknownClientError{Window: e.Window}
		}
		return wm.disp.CloseWindow(c.ID, c.Hints.Protocols.DeleteWindow)
	}

	wm.logger.Debug("unhandled client message", "window", e.Window, "type", e.Type)
	return nil
}

// handleStateMessage interprets a _NET_WM_STATE action request. Only
// the fullscreen state is accepted from clients.
func (wm *WM) handleStateMessage(e x11.ClientMessage) error {
	c := wm.reg.Get(e.Window)
	if c == nil {
		return client.UnknownClientError{Window: e.Window}
	}

	fullscreen := uint32(wm.disp.Atom(hints.StateFullscreen))
	if e.Data[1] != fullscreen && e.Data[2] != fullscreen {
		return nil
	}

	switch e.Data[0] {
	case netWMStateRemove:
		c.Fullscreen = false
	case netWMStateAdd:
		c.Fullscreen = true
	case netWMStateToggle:
		c.Fullscreen = !c.Fullscreen
	default:
		return nil
	}

	wm.retile(c.Workspace)
	wm.comp.ClientState(c)
	if c.Fullscreen {
		wm.stack.Raise(c.ID)
		wm.restack()
	}
	return nil
}

func (wm *WM) handleKeyPress(e x11.KeyPress) error {
	if wm.resolver == nil {
		return nil
	}
	command, ok := wm.resolver.Resolve(e.State, e.Detail)
	if !ok {
		wm.logger.Debug("key press without binding", "state", e.State, "keycode", e.Detail)
		return nil
	}
	return wm.runCommand(command)
}

func (wm *WM) handleButtonPress(e x11.ButtonPress) error {
	// Click-to-focus; clicks on unmanaged windows are no-ops.
	return wm.focusClient(e.Window)
}
