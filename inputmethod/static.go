package inputmethod

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Method is an input method together with its enabled subtypes.
type Method struct {
	Info     `yaml:",inline"`
	Subtypes []Subtype `yaml:"subtypes,omitempty"`
}

// Static is an in-memory Manager. It is safe for concurrent use, and the
// method list can be replaced at runtime with Set.
type Static struct {
	mu      sync.RWMutex
	methods []Method
}

// NewStatic returns a Static manager listing methods.
func NewStatic(methods ...Method) *Static {
	s := &Static{}
	s.Set(methods...)
	return s
}

// Set replaces the enabled input methods.
func (s *Static) Set(methods ...Method) {
	cp := make([]Method, len(methods))
	copy(cp, methods)

	s.mu.Lock()
	s.methods = cp
	s.mu.Unlock()
}

// EnabledInputMethods implements Manager.
func (s *Static) EnabledInputMethods() ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Info, 0, len(s.methods))
	for _, m := range s.methods {
		out = append(out, m.Info)
	}
	return out, nil
}

// EnabledSubtypes implements Manager. Static has no implicit subtypes, so
// allowImplicit has no effect.
func (s *Static) EnabledSubtypes(im Info, allowImplicit bool) ([]Subtype, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, m := range s.methods {
		if m.ID == im.ID {
			out := make([]Subtype, len(m.Subtypes))
			copy(out, m.Subtypes)
			return out, nil
		}
	}
	return nil, fmt.Errorf("input method %q is not enabled", im.ID)
}

// ---------------------------------------------------------------------------
// YAML file
// ---------------------------------------------------------------------------

// file is the on-disk schema of an input-method list.
type file struct {
	InputMethods []Method `yaml:"input_methods"`
}

// LoadFile reads an input-method list from a YAML file.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	for i, m := range f.InputMethods {
		if m.ID == "" {
			return nil, fmt.Errorf("%s: input method #%d has no id", path, i+1)
		}
	}
	return NewStatic(f.InputMethods...), nil
}

// FileManager re-reads a YAML input-method list on every enumeration, so
// edits to the file show up without a restart. A missing or broken file
// surfaces as ErrUnavailable.
type FileManager struct {
	Path string
}

// EnabledInputMethods implements Manager.
func (fm FileManager) EnabledInputMethods() ([]Info, error) {
	s, err := LoadFile(fm.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s.EnabledInputMethods()
}

// EnabledSubtypes implements Manager.
func (fm FileManager) EnabledSubtypes(im Info, allowImplicit bool) ([]Subtype, error) {
	s, err := LoadFile(fm.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return s.EnabledSubtypes(im, allowImplicit)
}
