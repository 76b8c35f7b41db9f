package wm

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/client"
	"github.com/crestwm/crest/internal/layout"
	"github.com/crestwm/crest/internal/stack"
)

// registerCommands builds the named command table the keybinding
// dispatcher invokes. Workspace commands are generated per configured
// workspace.
func (wm *WM) registerCommands() {
	wm.commands = map[string]func(){
		"focus-next":        func() { wm.cycleFocus(1) },
		"focus-prev":        func() { wm.cycleFocus(-1) },
		"swap-next":         func() { wm.swapFocused(1) },
		"swap-prev":         func() { wm.swapFocused(-1) },
		"toggle-floating":   wm.toggleFloating,
		"toggle-fullscreen": wm.toggleFullscreen,
		"iconify":           wm.iconifyFocused,
		"close":             wm.closeFocused,
		"layout-tiling":     func() { wm.setLayout(layout.Tiling) },
		"layout-floating":   func() { wm.setLayout(layout.Floating) },
		"layout-tabbed":     func() { wm.setLayout(layout.Tabbed) },
		"quit":              func() { wm.quit = true },
	}
	for i := 0; i < wm.reg.WorkspaceCount(); i++ {
		ws := i
		wm.commands[fmt.Sprintf("workspace-%d", i+1)] = func() {
			wm.switchWorkspace(ws)
		}
		wm.commands[fmt.Sprintf("move-to-workspace-%d", i+1)] = func() {
			wm.moveFocusedToWorkspace(ws)
		}
	}
}

// runCommand invokes a registered command by name. Unknown names are
// logged no-ops so a config typo cannot break the loop.
func (wm *WM) runCommand(name string) error {
	cmd, ok := wm.commands[name]
	if !ok {
		wm.logger.Warn("unknown command", "command", name)
		return nil
	}
	wm.logger.Debug("running command", "command", name)
	cmd()
	return nil
}

// focusedClient returns the focused client record, or nil when no
// window has focus.
func (wm *WM) focusedClient() *client.Client {
	win := wm.stack.Focused()
	if win == stack.None {
		return nil
	}
	return wm.reg.Get(win)
}

// cycleFocus moves focus by delta through the active workspace's
// sequence order, wrapping around.
func (wm *WM) cycleFocus(delta int) {
	mon := wm.activeMonitor()
	var order []xproto.Window
	for c := range wm.reg.ClientsIn(mon.ActiveWorkspace) {
		if c.State == client.Mapped {
			order = append(order, c.ID)
		}
	}
	if len(order) == 0 {
		return
	}

	current := wm.stack.Focused()
	idx := -1
	for i, win := range order {
		if win == current {
			idx = i
			break
		}
	}
	next := order[((idx+delta)%len(order)+len(order))%len(order)]
	if err := wm.focusClient(next); err != nil {
		wm.logger.Debug("focus cycle target gone", "window", next)
	}
}

// swapFocused exchanges the focused client with its workspace
// neighbor; swapping toward the front promotes it to tiling master.
func (wm *WM) swapFocused(delta int) {
	c := wm.focusedClient()
	if c == nil {
		return
	}
	if err := wm.reg.SwapInWorkspace(c.ID, delta); err != nil {
		wm.logger.Debug("swap refused", "window", c.ID, "error", err)
		return
	}
	wm.retile(c.Workspace)
}

func (wm *WM) toggleFloating() {
	c := wm.focusedClient()
	if c == nil {
		return
	}
	if err := wm.reg.SetFloating(c.ID, !c.Floating); err != nil {
		return
	}
	wm.retile(c.Workspace)
}

func (wm *WM) toggleFullscreen() {
	c := wm.focusedClient()
	if c == nil {
		return
	}
	c.Fullscreen = !c.Fullscreen
	wm.retile(c.Workspace)
	wm.comp.ClientState(c)
	if c.Fullscreen {
		wm.stack.Raise(c.ID)
		wm.restack()
	}
}

// iconifyFocused parks the focused client in Iconic state: off the
// stacking order, off screen, advertised as hidden.
func (wm *WM) iconifyFocused() {
	c := wm.focusedClient()
	if c == nil {
		return
	}
	c.State = client.Iconic
	wm.hide(c)
	wm.stack.Remove(c.ID)
	wm.ensureFocusVisible()
	wm.retile(c.Workspace)
	wm.comp.ClientState(c)
	wm.syncModel()
	wm.setInputFocus(wm.stack.Focused())
}

// closeFocused asks the focused client to close, politely when it
// supports WM_DELETE_WINDOW.
func (wm *WM) closeFocused() {
	c := wm.focusedClient()
	if c == nil {
		return
	}
	if err := wm.disp.CloseWindow(c.ID, c.Hints.Protocols.DeleteWindow); err != nil {
		wm.logger.Debug("close request failed", "window", c.ID, "error", err)
	}
}

// setLayout switches the active workspace's layout variant.
func (wm *WM) setLayout(kind layout.Kind) {
	mon := wm.activeMonitor()
	ws := wm.reg.Workspace(mon.ActiveWorkspace)
	if ws == nil || ws.Layout == kind {
		return
	}
	ws.Layout = kind
	wm.retile(ws.ID)
	wm.logger.Info("layout changed", "workspace", ws.ID, "layout", kind)
}

// moveFocusedToWorkspace sends the focused client to another
// workspace. When the target is not displayed anywhere the client is
// hidden and focus falls to the next client on the current workspace.
func (wm *WM) moveFocusedToWorkspace(workspaceID int) {
	c := wm.focusedClient()
	if c == nil {
		return
	}
	from := c.Workspace
	if from == workspaceID {
		return
	}
	if err := wm.reg.MoveToWorkspace(c.ID, workspaceID); err != nil {
		wm.logger.Warn("move to workspace refused", "window", c.ID, "error", err)
		return
	}

	if wm.reg.MonitorFor(c) == nil {
		wm.hide(c)
		if next := wm.activeIn(from); next != stack.None {
			wm.stack.Focus(next)
			wm.setInputFocus(next)
		} else {
			wm.stack.Unfocus()
			wm.setInputFocus(stack.None)
		}
	} else {
		wm.show(c)
		wm.retile(workspaceID)
	}

	wm.retile(from)
	wm.restack()
	wm.syncModel()
}
