// Package inputmethod models the platform input-method service and derives
// the user's typing languages from the enabled keyboard subtypes.
package inputmethod

import (
	"errors"
	"fmt"

	"github.com/minios-linux/cbres/locale"
)

// ModeKeyboard is the subtype mode of keyboard layouts. Other modes
// (voice, handwriting) say nothing about the languages a user types in.
const ModeKeyboard = "keyboard"

// ErrUnavailable is returned when the input-method service cannot be reached.
var ErrUnavailable = errors.New("input method service unavailable")

// Info identifies an enabled input method.
type Info struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

// Subtype is a variant of an input method, tagged with a mode and a locale.
type Subtype struct {
	Mode   string `yaml:"mode"`
	Locale string `yaml:"locale"`
}

// Manager enumerates enabled input methods and their subtypes.
type Manager interface {
	EnabledInputMethods() ([]Info, error)
	// EnabledSubtypes lists the subtypes of im. With allowImplicit, subtypes
	// the platform selected implicitly are included.
	EnabledSubtypes(im Info, allowImplicit bool) ([]Subtype, error)
}

// Languages scans every enabled input method for keyboard subtypes and
// returns their language codes in order of first appearance. Any error
// from the manager aborts the scan.
func Languages(m Manager) ([]string, error) {
	if m == nil {
		return nil, ErrUnavailable
	}
	methods, err := m.EnabledInputMethods()
	if err != nil {
		return nil, fmt.Errorf("listing input methods: %w", err)
	}

	var set locale.Set
	for _, im := range methods {
		subtypes, err := m.EnabledSubtypes(im, true)
		if err != nil {
			return nil, fmt.Errorf("listing subtypes of %s: %w", im.ID, err)
		}
		for _, st := range subtypes {
			if st.Mode != ModeKeyboard {
				continue
			}
			set.Add(locale.Code(st.Locale))
		}
	}
	return set.Codes(), nil
}
