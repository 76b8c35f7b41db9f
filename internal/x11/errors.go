package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// ErrConnectionLost reports an unrecoverable transport failure. The
// event loop terminates on it; everything else is survivable.
var ErrConnectionLost = errors.New("x11: connection to display lost")

// ErrAnotherWM reports that another window manager already holds
// substructure redirection on the root window.
var ErrAnotherWM = errors.New("x11: another window manager is running")

// BadWindowError reports a request against a window that no longer
// exists. Routine during teardown races; callers treat it as a no-op.
type BadWindowError struct {
	Window xproto.Window
}

func (e BadWindowError) Error() string {
	return fmt.Sprintf("x11: bad window %d", e.Window)
}

// ProtocolError wraps any other error reply from the server.
type ProtocolError struct {
	Err error
}

func (e ProtocolError) Error() string { return "x11: protocol error: " + e.Err.Error() }
func (e ProtocolError) Unwrap() error { return e.Err }

// requestError classifies a checked-request error reply. BadWindow
// replies get their own type so callers can recognize vanished
// targets.
func requestError(err error) error {
	if err == nil {
		return nil
	}
	if we, ok := err.(xproto.WindowError); ok {
		return BadWindowError{Window: xproto.Window(we.BadValue)}
	}
	return ProtocolError{Err: err}
}

// IsBadWindow reports whether err is a BadWindowError anywhere in its
// chain.
func IsBadWindow(err error) bool {
	var bad BadWindowError
	return errors.As(err, &bad)
}
