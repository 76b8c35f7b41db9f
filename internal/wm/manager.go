// Package wm is the event loop and dispatcher: it pulls one typed
// event at a time from the display adapter and runs the fixed
// pipeline registry -> layout -> stacking/focus -> compliance ->
// outgoing requests. There is exactly one execution context and no
// reentrancy; every component call receives state owned here.
package wm

import (
	"errors"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/client"
	"github.com/crestwm/crest/internal/config"
	"github.com/crestwm/crest/internal/hints"
	"github.com/crestwm/crest/internal/layout"
	"github.com/crestwm/crest/internal/stack"
	"github.com/crestwm/crest/internal/x11"
)

// Display is everything the core needs from the display connection
// adapter. Implemented by x11.Conn; tests substitute a fake.
type Display interface {
	NextEvent() (x11.Event, error)
	Sync()

	ConfigureWindow(xproto.Window, layout.Rect) error
	MapWindow(xproto.Window) error
	UnmapWindow(xproto.Window) error
	RaiseWindow(xproto.Window) error
	LowerWindow(xproto.Window) error
	SetInputFocus(xproto.Window) error
	SelectClientEvents(xproto.Window) error
	CloseWindow(win xproto.Window, polite bool) error

	ReadHints(xproto.Window) (client.Hints, error)
	WindowGeometry(xproto.Window) (layout.Rect, error)
	ShouldManage(xproto.Window) bool
	IsDialog(xproto.Window) bool
	Atom(name string) xproto.Atom
	PointerMonitor(monitors []client.Monitor) int

	hints.Writer
}

// Resolver maps a grabbed key press to a command name.
type Resolver interface {
	Resolve(state uint16, code xproto.Keycode) (command string, ok bool)
}

// WM holds the whole window manager state: registry, stacking, focus
// and compliance, all mutated from the single event loop.
type WM struct {
	disp     Display
	reg      *client.Registry
	stack    *stack.Manager
	comp     *hints.Manager
	cfg      *config.Config
	resolver Resolver
	logger   *slog.Logger

	commands map[string]func()
	quit     bool
}

// New assembles a window manager over the given display and monitors.
func New(disp Display, cfg *config.Config, monitors []client.Monitor, resolver Resolver, logger *slog.Logger) *WM {
	wm := &WM{
		disp:     disp,
		reg:      client.NewRegistry(cfg.Workspaces, cfg.DefaultLayout, cfg.Params(), monitors, logger),
		stack:    stack.New(),
		comp:     hints.NewManager(disp, logger),
		cfg:      cfg,
		resolver: resolver,
		logger:   logger,
	}
	wm.registerCommands()
	return wm
}

// Registry exposes the client registry for startup adoption glue.
func (wm *WM) Registry() *client.Registry { return wm.reg }

// Dispatch processes one event synchronously. Startup glue uses it to
// adopt windows mapped before the loop starts.
func (wm *WM) Dispatch(ev x11.Event) { wm.dispatch(ev) }

// Run processes events until shutdown or connection loss. Only
// ErrConnectionLost propagates out; every other error is logged and
// the loop continues with the next event.
func (wm *WM) Run() error {
	for {
		ev, err := wm.disp.NextEvent()
		if err != nil {
			wm.logger.Error("event intake failed", "error", err)
			return err
		}
		if _, ok := ev.(x11.Shutdown); ok {
			wm.logger.Info("shutdown requested, flushing outgoing requests")
			wm.disp.Sync()
			return nil
		}
		wm.dispatch(ev)
		if wm.quit {
			wm.disp.Sync()
			return nil
		}
	}
}

// dispatch routes one event through the pipeline. Errors are handled
// at this boundary: recoverable ones are logged no-ops, and a panic in
// a handler must not take down the loop.
func (wm *WM) dispatch(ev x11.Event) {
	defer func() {
		if r := recover(); r != nil {
			wm.logger.Error("event handler panic recovered", "event", ev, "panic", r)
		}
	}()

	var err error
	switch e := ev.(type) {
	case x11.MapRequest:
		err = wm.handleMapRequest(e)
	case x11.UnmapNotify:
		err = wm.handleUnmapNotify(e)
	case x11.DestroyNotify:
		err = wm.handleDestroyNotify(e)
	case x11.ConfigureRequest:
		err = wm.handleConfigureRequest(e)
	case x11.PropertyNotify:
		err = wm.handlePropertyNotify(e)
	case x11.ClientMessage:
		err = wm.handleClientMessage(e)
	case x11.KeyPress:
		err = wm.handleKeyPress(e)
	case x11.ButtonPress:
		err = wm.handleButtonPress(e)
	}
	if err == nil {
		return
	}

	var unknown client.UnknownClientError
	switch {
	case errors.As(err, &unknown):
		wm.logger.Debug("event referenced unknown client", "window", unknown.Window)
	case x11.IsBadWindow(err):
		wm.logger.Debug("request target vanished", "error", err)
	default:
		wm.logger.Error("event handling failed", "event", ev, "error", err)
	}
}

// activeMonitor returns the monitor new clients land on: the one
// under the pointer, falling back to the first.
func (wm *WM) activeMonitor() *client.Monitor {
	monitors := wm.reg.Monitors()
	id := wm.disp.PointerMonitor(monitors)
	for i := range monitors {
		if monitors[i].ID == id {
			return &monitors[i]
		}
	}
	return &monitors[0]
}

// activeIn returns the top-most stacked client of a workspace, which
// is its most recently focused one. Used as the shown tab and as the
// focus target after a workspace switch.
func (wm *WM) activeIn(workspaceID int) xproto.Window {
	for _, win := range wm.stack.Order() {
		if c := wm.reg.Get(win); c != nil && c.Workspace == workspaceID {
			return win
		}
	}
	return stack.None
}

// retile recomputes and applies the layout of one workspace. Nothing
// happens when no monitor currently displays it.
func (wm *WM) retile(workspaceID int) {
	ws := wm.reg.Workspace(workspaceID)
	if ws == nil {
		return
	}
	var mon *client.Monitor
	for i, m := range wm.reg.Monitors() {
		if m.ActiveWorkspace == workspaceID {
			mon = &wm.reg.Monitors()[i]
			break
		}
	}
	if mon == nil {
		return
	}

	var inputs []layout.Input
	for c := range wm.reg.ClientsIn(workspaceID) {
		if c.State == client.Mapped {
			inputs = append(inputs, c.LayoutInput())
		}
	}

	rects := layout.Compute(ws.Layout, inputs, mon.Geom, ws.Params, wm.activeIn(workspaceID))

	for c := range wm.reg.ClientsIn(workspaceID) {
		if c.State != client.Mapped {
			continue
		}
		r, ok := rects[c.ID]
		if !ok {
			continue
		}
		if c.Fullscreen {
			r = mon.Geom
		}
		if r.Width <= 0 || r.Height <= 0 {
			wm.hide(c)
			continue
		}
		wm.show(c)
		if err := wm.disp.ConfigureWindow(c.ID, r); err != nil {
			if x11.IsBadWindow(err) {
				wm.logger.Debug("configure hit vanished window", "window", c.ID)
			} else {
				wm.logger.Error("configure failed", "window", c.ID, "error", err)
			}
			continue
		}
		// A floating client keeps the first geometry it was ever
		// given, so record the assignment.
		if !c.HasGeom && (ws.Layout == layout.Floating || c.Floating) {
			c.Geom = r
			c.HasGeom = true
		}
	}
}

// restack replays the model stacking order onto the server, bottom
// first so the top of the model ends up on top of the screen.
func (wm *WM) restack() {
	order := wm.stack.Order()
	for i := len(order) - 1; i >= 0; i-- {
		if err := wm.disp.RaiseWindow(order[i]); err != nil && !x11.IsBadWindow(err) {
			wm.logger.Error("restack failed", "window", order[i], "error", err)
		}
	}
}

// syncModel publishes the stacking order and focus to the compliance
// layer after a model mutation.
func (wm *WM) syncModel() {
	wm.comp.ClientList(wm.stack.Order())
	wm.comp.ActiveWindow(wm.stack.Focused())
}

// setInputFocus forwards keyboard focus to the display, logging
// non-BadWindow failures.
func (wm *WM) setInputFocus(win xproto.Window) {
	if err := wm.disp.SetInputFocus(win); err != nil && !x11.IsBadWindow(err) {
		wm.logger.Error("set input focus failed", "window", win, "error", err)
	}
}

// ensureFocusVisible moves focus off clients no monitor currently
// displays. Removal fallback walks the global focus history, which
// can surface a client the manager itself has hidden.
func (wm *WM) ensureFocusVisible() {
	if win := wm.stack.Focused(); win != stack.None {
		if c := wm.reg.Get(win); c != nil && wm.reg.MonitorFor(c) != nil {
			return
		}
	}
	mon := wm.activeMonitor()
	if next := wm.activeIn(mon.ActiveWorkspace); next != stack.None {
		wm.stack.Focus(next)
	} else {
		wm.stack.Unfocus()
	}
}

// hide unmaps a window the manager wants off screen, marking the
// resulting UnmapNotify as self-induced.
func (wm *WM) hide(c *client.Client) {
	if c.Hidden {
		return
	}
	c.ExpectUnmap()
	if err := wm.disp.UnmapWindow(c.ID); err != nil && !x11.IsBadWindow(err) {
		wm.logger.Error("unmap failed", "window", c.ID, "error", err)
	}
	c.Hidden = true
}

// show remaps a window previously hidden by the manager.
func (wm *WM) show(c *client.Client) {
	if !c.Hidden {
		return
	}
	if err := wm.disp.MapWindow(c.ID); err != nil && !x11.IsBadWindow(err) {
		wm.logger.Error("map failed", "window", c.ID, "error", err)
	}
	c.Hidden = false
}

// focusClient moves focus and raises the target. Activating a client
// on an undisplayed workspace switches the active monitor to it
// first, the way pagers expect _NET_ACTIVE_WINDOW to behave.
func (wm *WM) focusClient(win xproto.Window) error {
	c := wm.reg.Get(win)
	if c == nil || c.State != client.Mapped {
		return client.UnknownClientError{Window: win}
	}
	if wm.reg.MonitorFor(c) == nil {
		wm.switchWorkspace(c.Workspace)
	}
	wm.stack.Focus(win)
	// Retile so layouts that follow the focus (tabbed) bring the
	// newly active client forward before it receives input.
	wm.retile(c.Workspace)
	wm.restack()
	wm.setInputFocus(win)
	wm.syncModel()
	return nil
}

// switchWorkspace points the active monitor at another workspace,
// hiding the old client set and showing the new one.
func (wm *WM) switchWorkspace(workspaceID int) {
	mon := wm.activeMonitor()
	prev, err := wm.reg.SwitchWorkspace(mon.ID, workspaceID)
	if err != nil {
		wm.logger.Warn("workspace switch refused", "workspace", workspaceID, "error", err)
		return
	}
	if prev == workspaceID {
		return
	}

	for c := range wm.reg.ClientsIn(prev) {
		if c.State == client.Mapped {
			wm.hide(c)
		}
	}
	for c := range wm.reg.ClientsIn(workspaceID) {
		if c.State == client.Mapped {
			wm.show(c)
		}
	}
	wm.retile(workspaceID)

	if next := wm.activeIn(workspaceID); next != stack.None {
		wm.stack.Focus(next)
		wm.setInputFocus(next)
	} else {
		wm.stack.Unfocus()
		wm.setInputFocus(stack.None)
	}
	wm.restack()
	wm.syncModel()
	wm.logger.Info("switched workspace", "monitor", mon.Name, "workspace", workspaceID)
}
