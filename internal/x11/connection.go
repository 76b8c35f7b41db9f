// Package x11 is the display connection adapter: it owns the single
// X server connection, converts wire messages into typed Events, and
// issues all outgoing requests in order.
package x11

import (
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Conn manages the X11 connection and core X resources. It is the
// only component that touches the wire.
type Conn struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger

	events       chan Event
	shutdown     chan struct{}
	shutdownOnce sync.Once
	readErr      error
}

// NewConn establishes a connection to the X server and initializes
// the keybinding machinery.
func NewConn(logger *slog.Logger) (*Conn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}
	keybind.Initialize(xu)

	return &Conn{
		xu:       xu,
		root:     xu.RootWin(),
		logger:   logger,
		events:   make(chan Event, 64),
		shutdown: make(chan struct{}),
	}, nil
}

// XUtil exposes the underlying handle for keybinding setup. Request
// traffic goes through Conn methods only.
func (c *Conn) XUtil() *xgbutil.XUtil { return c.xu }

// Root returns the root window of the managed screen.
func (c *Conn) Root() xproto.Window { return c.root }

// Manage claims substructure redirection on the root window. Fails
// with ErrAnotherWM if a window manager is already running.
func (c *Conn) Manage() error {
	err := xproto.ChangeWindowAttributesChecked(
		c.xu.Conn(),
		c.root,
		xproto.CwEventMask,
		[]uint32{
			xproto.EventMaskSubstructureRedirect |
				xproto.EventMaskSubstructureNotify |
				xproto.EventMaskButtonPress |
				xproto.EventMaskKeyPress,
		},
	).Check()
	if err != nil {
		if _, ok := err.(xproto.AccessError); ok {
			return ErrAnotherWM
		}
		return requestError(err)
	}

	go c.readLoop()
	return nil
}

// readLoop pulls raw events off the wire and feeds the typed event
// channel. It exits when the transport closes.
func (c *Conn) readLoop() {
	for {
		raw, xerr := c.xu.Conn().WaitForEvent()
		if raw == nil && xerr == nil {
			c.readErr = ErrConnectionLost
			close(c.events)
			return
		}
		if xerr != nil {
			// Asynchronous errors from unchecked requests: the target
			// usually vanished between decision and request.
			c.logger.Debug("async protocol error", "error", xerr.Error())
			continue
		}
		if ev := convertEvent(raw); ev != nil {
			c.events <- ev
		}
	}
}

// NextEvent blocks until a protocol event arrives, a shutdown is
// posted, or the connection is lost (ErrConnectionLost).
func (c *Conn) NextEvent() (Event, error) {
	select {
	case <-c.shutdown:
		return Shutdown{}, nil
	case ev, ok := <-c.events:
		if !ok {
			return nil, c.readErr
		}
		return ev, nil
	}
}

// PostShutdown injects a Shutdown event. Safe to call from a signal
// handler goroutine; posting more than once is harmless.
func (c *Conn) PostShutdown() {
	c.shutdownOnce.Do(func() { close(c.shutdown) })
}

// Sync round-trips the connection, forcing all previously issued
// requests onto the wire before returning.
func (c *Conn) Sync() {
	xproto.GetInputFocus(c.xu.Conn()).Reply()
}

// AdoptableWindows returns the viewable, non-override-redirect
// children of the root window present before the manager started.
func (c *Conn) AdoptableWindows() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.xu.Conn(), c.root).Reply()
	if err != nil {
		return nil, requestError(err)
	}
	var wins []xproto.Window
	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(c.xu.Conn(), win).Reply()
		if err != nil {
			continue
		}
		if attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		wins = append(wins, win)
	}
	return wins, nil
}

// Close disconnects from the X server.
func (c *Conn) Close() {
	c.xu.Conn().Close()
}
