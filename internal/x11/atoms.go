package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Atom interns (or returns the cached id of) a named atom. A failed
// intern returns zero, which matches no event atom.
func (c *Conn) Atom(name string) xproto.Atom {
	atom, err := xprop.Atm(c.xu, name)
	if err != nil {
		c.logger.Debug("atom intern failed", "name", name, "error", err)
		return 0
	}
	return atom
}
