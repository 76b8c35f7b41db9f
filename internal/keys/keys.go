// Package keys turns configured key-combo strings into X key grabs
// and resolves incoming key presses to command names. What the
// commands do is the event loop's business.
package keys

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

type binding struct {
	combo   string
	mods    uint16
	codes   []xproto.Keycode
	command string
}

// Bindings maps grabbed key combinations to command names.
type Bindings struct {
	xu         *xgbutil.XUtil
	root       xproto.Window
	bindings   []binding
	ignoreMask uint16
	logger     *slog.Logger
}

// New parses the combo -> command mapping and grabs each combination
// on the root window. Combos use keybind syntax ("Mod4-j",
// "Mod4-Shift-q"). Unparseable combos are logged and skipped, never
// fatal.
func New(xu *xgbutil.XUtil, root xproto.Window, combos map[string]string, logger *slog.Logger) *Bindings {
	b := &Bindings{
		xu:         xu,
		root:       root,
		ignoreMask: ignoreMask(xu),
		logger:     logger,
	}

	for combo, command := range combos {
		mods, codes, err := keybind.ParseString(xu, combo)
		if err != nil {
			logger.Warn("skipping unparseable keybinding", "combo", combo, "error", err)
			continue
		}
		if err := b.grab(mods, codes); err != nil {
			logger.Warn("failed to grab keybinding", "combo", combo, "error", err)
			continue
		}
		b.bindings = append(b.bindings, binding{
			combo:   combo,
			mods:    mods,
			codes:   codes,
			command: command,
		})
	}
	return b
}

// Resolve maps a key press to its command name.
func (b *Bindings) Resolve(state uint16, code xproto.Keycode) (command string, ok bool) {
	clean := state &^ b.ignoreMask
	for _, bind := range b.bindings {
		if bind.mods == clean && slices.Contains(bind.codes, code) {
			return bind.command, true
		}
	}
	return "", false
}

// grab registers the combination for every ignored-modifier variant
// so CapsLock and NumLock do not mask bindings.
func (b *Bindings) grab(mods uint16, codes []xproto.Keycode) error {
	variants := []uint16{0, xproto.ModMaskLock}
	if num := modMaskForKeysym(b.xu, "Num_Lock"); num != 0 {
		variants = append(variants, num, num|xproto.ModMaskLock)
	}
	for _, code := range codes {
		for _, extra := range variants {
			err := xproto.GrabKeyChecked(
				b.xu.Conn(),
				true,
				b.root,
				mods|extra,
				code,
				xproto.GrabModeAsync,
				xproto.GrabModeAsync,
			).Check()
			if err != nil {
				return fmt.Errorf("grab key %d mods %#x: %w", code, mods|extra, err)
			}
		}
	}
	return nil
}

func ignoreMask(xu *xgbutil.XUtil) uint16 {
	mask := uint16(xproto.ModMaskLock)
	if num := modMaskForKeysym(xu, "Num_Lock"); num != 0 {
		mask |= num
	}
	return mask
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
