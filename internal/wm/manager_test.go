package wm

import (
	"io"
	"log/slog"
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/crestwm/crest/internal/client"
	"github.com/crestwm/crest/internal/config"
	"github.com/crestwm/crest/internal/hints"
	"github.com/crestwm/crest/internal/layout"
	"github.com/crestwm/crest/internal/stack"
	"github.com/crestwm/crest/internal/x11"
)

type closeCall struct {
	win    xproto.Window
	polite bool
}

// fakeDisplay implements Display entirely in memory, recording every
// outgoing request so tests can assert on what would hit the server.
type fakeDisplay struct {
	events []x11.Event

	hintsByWin map[xproto.Window]client.Hints
	geomByWin  map[xproto.Window]layout.Rect
	dialogs    map[xproto.Window]bool
	unmanaged  map[xproto.Window]bool

	atoms    map[string]xproto.Atom
	nextAtom xproto.Atom

	configured  map[xproto.Window]layout.Rect
	mapCalls    map[xproto.Window]int
	unmapCalls  map[xproto.Window]int
	focusCalls  []xproto.Window
	closeCalls  []closeCall
	activeSet   []xproto.Window
	clientLists [][]xproto.Window
	states      map[xproto.Window][]string
	syncs       int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		hintsByWin: make(map[xproto.Window]client.Hints),
		geomByWin:  make(map[xproto.Window]layout.Rect),
		dialogs:    make(map[xproto.Window]bool),
		unmanaged:  make(map[xproto.Window]bool),
		atoms:      make(map[string]xproto.Atom),
		nextAtom:   0x100,
		configured: make(map[xproto.Window]layout.Rect),
		mapCalls:   make(map[xproto.Window]int),
		unmapCalls: make(map[xproto.Window]int),
		states:     make(map[xproto.Window][]string),
	}
}

func (d *fakeDisplay) NextEvent() (x11.Event, error) {
	if len(d.events) == 0 {
		return x11.Shutdown{}, nil
	}
	ev := d.events[0]
	d.events = d.events[1:]
	return ev, nil
}

func (d *fakeDisplay) Sync() { d.syncs++ }

func (d *fakeDisplay) ConfigureWindow(win xproto.Window, r layout.Rect) error {
	d.configured[win] = r
	return nil
}

func (d *fakeDisplay) MapWindow(win xproto.Window) error {
	d.mapCalls[win]++
	return nil
}

func (d *fakeDisplay) UnmapWindow(win xproto.Window) error {
	d.unmapCalls[win]++
	return nil
}

func (d *fakeDisplay) RaiseWindow(xproto.Window) error { return nil }
func (d *fakeDisplay) LowerWindow(xproto.Window) error { return nil }

func (d *fakeDisplay) SetInputFocus(win xproto.Window) error {
	d.focusCalls = append(d.focusCalls, win)
	return nil
}

func (d *fakeDisplay) SelectClientEvents(xproto.Window) error { return nil }

func (d *fakeDisplay) CloseWindow(win xproto.Window, polite bool) error {
	d.closeCalls = append(d.closeCalls, closeCall{win: win, polite: polite})
	return nil
}

func (d *fakeDisplay) ReadHints(win xproto.Window) (client.Hints, error) {
	return d.hintsByWin[win], nil
}

func (d *fakeDisplay) WindowGeometry(win xproto.Window) (layout.Rect, error) {
	return d.geomByWin[win], nil
}

func (d *fakeDisplay) ShouldManage(win xproto.Window) bool { return !d.unmanaged[win] }
func (d *fakeDisplay) IsDialog(win xproto.Window) bool     { return d.dialogs[win] }

func (d *fakeDisplay) Atom(name string) xproto.Atom {
	if a, ok := d.atoms[name]; ok {
		return a
	}
	d.nextAtom++
	d.atoms[name] = d.nextAtom
	return d.nextAtom
}

func (d *fakeDisplay) PointerMonitor([]client.Monitor) int { return 0 }

func (d *fakeDisplay) SetActiveWindow(win xproto.Window) error {
	d.activeSet = append(d.activeSet, win)
	return nil
}

func (d *fakeDisplay) SetClientList(wins []xproto.Window) error {
	d.clientLists = append(d.clientLists, append([]xproto.Window(nil), wins...))
	return nil
}

func (d *fakeDisplay) SetWMState(win xproto.Window, states []string) error {
	d.states[win] = append([]string(nil), states...)
	return nil
}

func (d *fakeDisplay) lastFocus() xproto.Window {
	if len(d.focusCalls) == 0 {
		return stack.None
	}
	return d.focusCalls[len(d.focusCalls)-1]
}

type fakeResolver struct {
	bindings map[xproto.Keycode]string
}

func (r *fakeResolver) Resolve(_ uint16, code xproto.Keycode) (string, bool) {
	cmd, ok := r.bindings[code]
	return cmd, ok
}

func newTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Workspaces = 5
	return cfg
}

func newTestWM(t *testing.T) (*WM, *fakeDisplay) {
	t.Helper()
	disp := newFakeDisplay()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	monitors := []client.Monitor{{
		ID:   0,
		Name: "fake-0",
		Geom: layout.Rect{X: 0, Y: 0, Width: 1920, Height: 1080},
	}}
	cfg := newTestConfig()
	return New(disp, cfg, monitors, nil, logger), disp
}

func mapWindow(t *testing.T, wm *WM, win xproto.Window) *client.Client {
	t.Helper()
	wm.dispatch(x11.MapRequest{Window: win})
	c := wm.reg.Get(win)
	if c == nil {
		t.Fatalf("window %d not managed after map request", win)
	}
	return c
}

func TestManageOnMapRequest(t *testing.T) {
	wm, disp := newTestWM(t)
	disp.hintsByWin[10] = client.Hints{Name: "editor", Class: "Editor"}

	c := mapWindow(t, wm, 10)

	if c.State != client.Mapped {
		t.Fatalf("state = %v, want mapped", c.State)
	}
	if c.Hints.Class != "Editor" {
		t.Fatalf("class = %q, want Editor", c.Hints.Class)
	}
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focused = %d, want 10", got)
	}
	if disp.mapCalls[10] == 0 {
		t.Fatal("window was never mapped")
	}
	if got := disp.lastFocus(); got != 10 {
		t.Fatalf("input focus = %d, want 10", got)
	}
	if n := len(disp.clientLists); n == 0 || len(disp.clientLists[n-1]) != 1 {
		t.Fatalf("client list not published: %v", disp.clientLists)
	}
	if got := disp.activeSet[len(disp.activeSet)-1]; got != 10 {
		t.Fatalf("active window = %d, want 10", got)
	}
}

func TestMapRequestForManagedWindowIsNoOp(t *testing.T) {
	wm, _ := newTestWM(t)
	mapWindow(t, wm, 10)
	wm.dispatch(x11.MapRequest{Window: 10})

	if wm.reg.Len() != 1 {
		t.Fatalf("registry has %d clients, want 1", wm.reg.Len())
	}
}

func TestUnmanagedWindowIsMappedButNotTracked(t *testing.T) {
	wm, disp := newTestWM(t)
	disp.unmanaged[20] = true

	wm.dispatch(x11.MapRequest{Window: 20})

	if wm.reg.Get(20) != nil {
		t.Fatal("dock-like window should not be in the registry")
	}
	if disp.mapCalls[20] == 0 {
		t.Fatal("unmanaged window must still be mapped")
	}
}

func TestDialogFloatsWithRequestedGeometry(t *testing.T) {
	wm, disp := newTestWM(t)
	disp.dialogs[11] = true
	disp.geomByWin[11] = layout.Rect{X: 100, Y: 120, Width: 400, Height: 300}

	c := mapWindow(t, wm, 11)

	if !c.Floating {
		t.Fatal("dialog should float")
	}
	if !c.HasGeom || c.Geom != disp.geomByWin[11] {
		t.Fatalf("geom = %+v, want %+v", c.Geom, disp.geomByWin[11])
	}
}

func TestUnknownWindowEventsAreNoOps(t *testing.T) {
	wm, disp := newTestWM(t)
	mapWindow(t, wm, 10)
	before := len(disp.focusCalls)

	wm.dispatch(x11.UnmapNotify{Window: 99})
	wm.dispatch(x11.DestroyNotify{Window: 99})
	wm.dispatch(x11.ClientMessage{Window: 99, Type: disp.Atom("_NET_ACTIVE_WINDOW")})

	if wm.reg.Len() != 1 {
		t.Fatalf("registry has %d clients, want 1", wm.reg.Len())
	}
	if wm.stack.Focused() != 10 {
		t.Fatalf("focus moved to %d", wm.stack.Focused())
	}
	if len(disp.focusCalls) != before {
		t.Fatal("events for unknown windows must not issue focus requests")
	}
}

func TestClientUnmapWithdrawsAndFocusFallsBack(t *testing.T) {
	wm, disp := newTestWM(t)
	mapWindow(t, wm, 10)
	mapWindow(t, wm, 11)

	wm.dispatch(x11.UnmapNotify{Window: 11})

	c := wm.reg.Get(11)
	if c.State != client.Withdrawn {
		t.Fatalf("state = %v, want withdrawn", c.State)
	}
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focused = %d, want fallback to 10", got)
	}
	if got := disp.lastFocus(); got != 10 {
		t.Fatalf("input focus = %d, want 10", got)
	}
}

func TestSelfInducedUnmapIsIgnored(t *testing.T) {
	wm, disp := newTestWM(t)
	c := mapWindow(t, wm, 10)

	wm.runCommand("workspace-2")
	if !c.Hidden || disp.unmapCalls[10] == 0 {
		t.Fatal("workspace switch should have hidden the client")
	}

	wm.dispatch(x11.UnmapNotify{Window: 10})
	if c.State != client.Mapped {
		t.Fatalf("state = %v after expected unmap, want mapped", c.State)
	}

	wm.runCommand("workspace-1")
	if c.Hidden {
		t.Fatal("client should be shown again on its workspace")
	}
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focused = %d after switch back, want 10", got)
	}
}

func TestDestroyRemovesClient(t *testing.T) {
	wm, disp := newTestWM(t)
	mapWindow(t, wm, 10)
	mapWindow(t, wm, 11)

	wm.dispatch(x11.DestroyNotify{Window: 11})

	if wm.reg.Get(11) != nil {
		t.Fatal("destroyed client still registered")
	}
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focused = %d, want 10", got)
	}
	last := disp.clientLists[len(disp.clientLists)-1]
	if len(last) != 1 || last[0] != 10 {
		t.Fatalf("client list = %v, want [10]", last)
	}
}

func TestDestroyFallbackSkipsHiddenWorkspace(t *testing.T) {
	wm, disp := newTestWM(t)
	a := mapWindow(t, wm, 10)
	wm.runCommand("workspace-2")
	mapWindow(t, wm, 20)

	wm.dispatch(x11.DestroyNotify{Window: 20})

	if got := wm.stack.Focused(); got != stack.None {
		t.Fatalf("focused = %d, want none (10 is on a hidden workspace)", got)
	}
	if !a.Hidden {
		t.Fatal("hidden-workspace client must stay hidden")
	}
	if got := disp.lastFocus(); got != stack.None {
		t.Fatalf("input focus = %d, want root fallback", got)
	}
}

func TestUnmapFallbackSkipsHiddenWorkspace(t *testing.T) {
	wm, _ := newTestWM(t)
	a := mapWindow(t, wm, 10)
	wm.runCommand("workspace-2")
	mapWindow(t, wm, 20)

	wm.dispatch(x11.UnmapNotify{Window: 20})

	if got := wm.stack.Focused(); got != stack.None {
		t.Fatalf("focused = %d, want none", got)
	}
	if !a.Hidden {
		t.Fatal("hidden-workspace client must stay hidden")
	}
}

func TestIconifyFallbackSkipsHiddenWorkspace(t *testing.T) {
	wm, _ := newTestWM(t)
	a := mapWindow(t, wm, 10)
	wm.runCommand("workspace-2")
	mapWindow(t, wm, 20)

	wm.runCommand("iconify")

	if got := wm.stack.Focused(); got != stack.None {
		t.Fatalf("focused = %d, want none", got)
	}
	if !a.Hidden {
		t.Fatal("hidden-workspace client must stay hidden")
	}
}

func TestUrgencyRoundTrip(t *testing.T) {
	wm, disp := newTestWM(t)
	mapWindow(t, wm, 10)
	mapWindow(t, wm, 11)

	disp.hintsByWin[10] = client.Hints{Urgent: true}
	wm.dispatch(x11.PropertyNotify{Window: 10, Atom: xproto.AtomWmHints})

	if !containsState(disp.states[10], hints.StateDemandsAttention) {
		t.Fatalf("states = %v, want demands-attention", disp.states[10])
	}
	if got := wm.stack.Focused(); got != 11 {
		t.Fatalf("urgency stole focus: focused = %d", got)
	}

	disp.hintsByWin[10] = client.Hints{}
	wm.dispatch(x11.PropertyNotify{Window: 10, Atom: xproto.AtomWmHints})
	if containsState(disp.states[10], hints.StateDemandsAttention) {
		t.Fatalf("states = %v after clearing urgency", disp.states[10])
	}
}

func TestConfigureRequestTiledReasserts(t *testing.T) {
	wm, disp := newTestWM(t)
	mapWindow(t, wm, 10)
	mapWindow(t, wm, 11)

	disp.configured[10] = layout.Rect{}
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	wm.dispatch(x11.ConfigureRequest{
		Window: 10,
		Geom:   layout.Rect{X: 5, Y: 5, Width: 50, Height: 50},
		Mask:   mask,
	})

	want := layout.Rect{X: 0, Y: 0, Width: 1152, Height: 1080}
	if got := disp.configured[10]; got != want {
		t.Fatalf("tiled client configured to %+v, want reasserted %+v", got, want)
	}
}

func TestConfigureRequestFloatingHonored(t *testing.T) {
	wm, disp := newTestWM(t)
	disp.dialogs[12] = true
	disp.geomByWin[12] = layout.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	c := mapWindow(t, wm, 12)

	wm.dispatch(x11.ConfigureRequest{
		Window: 12,
		Geom:   layout.Rect{X: 640, Y: 100, Width: 999, Height: 999},
		Mask:   uint16(xproto.ConfigWindowX),
	})

	want := layout.Rect{X: 640, Y: 100, Width: 400, Height: 300}
	if c.Geom != want {
		t.Fatalf("geom = %+v, want %+v", c.Geom, want)
	}
	if got := disp.configured[12]; got != want {
		t.Fatalf("configured = %+v, want %+v", got, want)
	}
}

func TestFullscreenStateMessage(t *testing.T) {
	wm, disp := newTestWM(t)
	c := mapWindow(t, wm, 10)
	fullscreen := uint32(disp.Atom(hints.StateFullscreen))

	wm.dispatch(x11.ClientMessage{
		Window: 10,
		Type:   disp.Atom("_NET_WM_STATE"),
		Data:   [5]uint32{netWMStateAdd, fullscreen},
	})

	if !c.Fullscreen {
		t.Fatal("client not fullscreen after add request")
	}
	want := layout.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	if got := disp.configured[10]; got != want {
		t.Fatalf("fullscreen geometry = %+v, want monitor %+v", got, want)
	}
	if !containsState(disp.states[10], hints.StateFullscreen) {
		t.Fatalf("states = %v, want fullscreen", disp.states[10])
	}

	wm.dispatch(x11.ClientMessage{
		Window: 10,
		Type:   disp.Atom("_NET_WM_STATE"),
		Data:   [5]uint32{netWMStateToggle, fullscreen},
	})
	if c.Fullscreen {
		t.Fatal("toggle did not leave fullscreen")
	}
}

func TestActivateMessageSwitchesWorkspace(t *testing.T) {
	wm, _ := newTestWM(t)
	c := mapWindow(t, wm, 10)
	wm.runCommand("move-to-workspace-3")
	if !c.Hidden {
		t.Fatal("client on undisplayed workspace should be hidden")
	}

	wm.dispatch(x11.ClientMessage{Window: 10, Type: wm.disp.Atom("_NET_ACTIVE_WINDOW")})

	if c.Hidden {
		t.Fatal("activation should show the client")
	}
	if got := wm.reg.Monitors()[0].ActiveWorkspace; got != 2 {
		t.Fatalf("active workspace = %d, want 2", got)
	}
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focused = %d, want 10", got)
	}
}

func TestActivatingHiddenTabBringsItForward(t *testing.T) {
	wm, disp := newTestWM(t)
	wm.runCommand("layout-tabbed")
	c10 := mapWindow(t, wm, 10)
	mapWindow(t, wm, 20)
	if !c10.Hidden {
		t.Fatal("background tab should start hidden")
	}

	wm.dispatch(x11.ClientMessage{Window: 10, Type: wm.disp.Atom("_NET_ACTIVE_WINDOW")})

	if c10.Hidden {
		t.Fatal("activated tab stayed hidden")
	}
	want := layout.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	if got := disp.configured[10]; got != want {
		t.Fatalf("activated tab configured to %+v, want %+v", got, want)
	}
	if c20 := wm.reg.Get(20); !c20.Hidden {
		t.Fatal("previously shown tab should hide")
	}
	if got := disp.lastFocus(); got != 10 {
		t.Fatalf("input focus = %d, want 10", got)
	}
}

func TestFocusCycleCommands(t *testing.T) {
	wm, _ := newTestWM(t)
	mapWindow(t, wm, 10)
	mapWindow(t, wm, 11)
	mapWindow(t, wm, 12)

	wm.runCommand("focus-next")
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focus-next from 12: focused = %d, want wrap to 10", got)
	}
	wm.runCommand("focus-prev")
	if got := wm.stack.Focused(); got != 12 {
		t.Fatalf("focus-prev: focused = %d, want 12", got)
	}
}

func TestSwapCommandChangesMaster(t *testing.T) {
	wm, disp := newTestWM(t)
	mapWindow(t, wm, 10)
	mapWindow(t, wm, 11)
	wm.dispatch(x11.ButtonPress{Window: 11})

	wm.runCommand("swap-prev")

	want := layout.Rect{X: 0, Y: 0, Width: 1152, Height: 1080}
	if got := disp.configured[11]; got != want {
		t.Fatalf("swapped client configured to %+v, want master %+v", got, want)
	}
}

func TestIconifyAndRemap(t *testing.T) {
	wm, disp := newTestWM(t)
	c := mapWindow(t, wm, 10)

	wm.runCommand("iconify")

	if c.State != client.Iconic {
		t.Fatalf("state = %v, want iconic", c.State)
	}
	if !containsState(disp.states[10], hints.StateHidden) {
		t.Fatalf("states = %v, want hidden", disp.states[10])
	}
	if got := wm.stack.Focused(); got != stack.None {
		t.Fatalf("focused = %d, want none", got)
	}

	// The unmap we issued ourselves echoes back and must not
	// withdraw the record.
	wm.dispatch(x11.UnmapNotify{Window: 10})
	if c.State != client.Iconic {
		t.Fatalf("state = %v after echo, want iconic", c.State)
	}

	wm.dispatch(x11.MapRequest{Window: 10})
	if c.State != client.Mapped {
		t.Fatalf("state = %v after remap, want mapped", c.State)
	}
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focused = %d after remap, want 10", got)
	}
}

func TestTabbedLayoutHidesBackgroundTabs(t *testing.T) {
	wm, disp := newTestWM(t)
	mapWindow(t, wm, 10)
	c11 := mapWindow(t, wm, 11)
	c10 := wm.reg.Get(10)

	wm.runCommand("layout-tabbed")

	want := layout.Rect{X: 0, Y: 0, Width: 1920, Height: 1080}
	if got := disp.configured[11]; got != want {
		t.Fatalf("active tab configured to %+v, want %+v", got, want)
	}
	if !c10.Hidden {
		t.Fatal("background tab should be hidden")
	}
	if c10.State != client.Mapped || c11.State != client.Mapped {
		t.Fatal("tab visibility must not change lifecycle state")
	}

	// Cycling focus brings the other tab forward.
	wm.runCommand("focus-next")
	if c10.Hidden {
		t.Fatal("focused tab should be shown")
	}
	if !c11.Hidden {
		t.Fatal("previous tab should be hidden")
	}
}

func TestMoveToWorkspaceCommand(t *testing.T) {
	wm, disp := newTestWM(t)
	mapWindow(t, wm, 10)
	c11 := mapWindow(t, wm, 11)

	wm.runCommand("move-to-workspace-2")

	if c11.Workspace != 1 {
		t.Fatalf("workspace = %d, want 1", c11.Workspace)
	}
	if !c11.Hidden {
		t.Fatal("moved client should be hidden on the undisplayed workspace")
	}
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focused = %d, want fallback to 10", got)
	}
	if disp.unmapCalls[11] == 0 {
		t.Fatal("moved client was never unmapped")
	}
}

func TestCloseCommandIsPoliteWhenSupported(t *testing.T) {
	wm, disp := newTestWM(t)
	disp.hintsByWin[10] = client.Hints{Protocols: client.Protocols{DeleteWindow: true}}
	mapWindow(t, wm, 10)
	mapWindow(t, wm, 11)

	wm.runCommand("close")
	wm.dispatch(x11.ButtonPress{Window: 10})
	wm.runCommand("close")

	want := []closeCall{{win: 11, polite: false}, {win: 10, polite: true}}
	if len(disp.closeCalls) != 2 || disp.closeCalls[0] != want[0] || disp.closeCalls[1] != want[1] {
		t.Fatalf("close calls = %v, want %v", disp.closeCalls, want)
	}
}

func TestUnknownCommandIsNoOp(t *testing.T) {
	wm, _ := newTestWM(t)
	mapWindow(t, wm, 10)

	if err := wm.runCommand("warp-to-mars"); err != nil {
		t.Fatalf("unknown command returned error %v", err)
	}
	if wm.stack.Focused() != 10 {
		t.Fatal("unknown command mutated state")
	}
}

func TestKeyPressRunsBoundCommand(t *testing.T) {
	disp := newFakeDisplay()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	monitors := []client.Monitor{{ID: 0, Name: "fake-0", Geom: layout.Rect{Width: 1920, Height: 1080}}}
	resolver := &fakeResolver{bindings: map[xproto.Keycode]string{44: "focus-next"}}
	wm := New(disp, newTestConfig(), monitors, resolver, logger)

	wm.dispatch(x11.MapRequest{Window: 10})
	wm.dispatch(x11.MapRequest{Window: 11})
	wm.dispatch(x11.KeyPress{Detail: 44})

	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("focused = %d after bound key, want 10", got)
	}

	wm.dispatch(x11.KeyPress{Detail: 45})
	if got := wm.stack.Focused(); got != 10 {
		t.Fatalf("unbound key changed focus to %d", got)
	}
}

func TestRunStopsOnShutdownEvent(t *testing.T) {
	wm, disp := newTestWM(t)
	disp.events = []x11.Event{x11.MapRequest{Window: 10}}

	if err := wm.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if disp.syncs == 0 {
		t.Fatal("shutdown must flush outgoing requests")
	}
	if wm.reg.Get(10) == nil {
		t.Fatal("queued event was not processed before shutdown")
	}
}

func TestQuitCommandStopsRun(t *testing.T) {
	disp := newFakeDisplay()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	monitors := []client.Monitor{{ID: 0, Name: "fake-0", Geom: layout.Rect{Width: 1920, Height: 1080}}}
	resolver := &fakeResolver{bindings: map[xproto.Keycode]string{24: "quit"}}
	wm := New(disp, newTestConfig(), monitors, resolver, logger)
	disp.events = []x11.Event{
		x11.MapRequest{Window: 10},
		x11.KeyPress{Detail: 24},
		x11.MapRequest{Window: 11},
	}

	if err := wm.Run(); err != nil {
		t.Fatalf("Run() = %v, want nil", err)
	}
	if wm.reg.Get(11) != nil {
		t.Fatal("events after quit must not be processed")
	}
}

func TestMergeConfigure(t *testing.T) {
	current := layout.Rect{X: 10, Y: 20, Width: 300, Height: 400}
	tests := []struct {
		name string
		req  x11.ConfigureRequest
		want layout.Rect
	}{
		{
			name: "no fields requested",
			req:  x11.ConfigureRequest{Geom: layout.Rect{X: 1, Y: 2, Width: 3, Height: 4}},
			want: current,
		},
		{
			name: "position only",
			req: x11.ConfigureRequest{
				Geom: layout.Rect{X: 50, Y: 60, Width: 3, Height: 4},
				Mask: uint16(xproto.ConfigWindowX | xproto.ConfigWindowY),
			},
			want: layout.Rect{X: 50, Y: 60, Width: 300, Height: 400},
		},
		{
			name: "size only",
			req: x11.ConfigureRequest{
				Geom: layout.Rect{X: 1, Y: 2, Width: 640, Height: 480},
				Mask: uint16(xproto.ConfigWindowWidth | xproto.ConfigWindowHeight),
			},
			want: layout.Rect{X: 10, Y: 20, Width: 640, Height: 480},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mergeConfigure(current, tt.req); got != tt.want {
				t.Fatalf("mergeConfigure() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func containsState(states []string, want string) bool {
	for _, s := range states {
		if s == want {
			return true
		}
	}
	return false
}
