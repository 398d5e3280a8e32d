// Package locale derives language codes from locale identifiers and
// supplies the platform's default locale.
package locale

import "strings"

// Code reduces a locale identifier (en_US, pt_BR, fr) to its language
// part: everything before the first underscore, lowercased.
func Code(id string) string {
	if i := strings.IndexByte(id, '_'); i >= 0 {
		id = id[:i]
	}
	return strings.ToLower(id)
}

// Set is an ordered collection of unique language codes.
// The zero value is ready to use.
type Set struct {
	codes []string
	seen  map[string]struct{}
}

// NewSet returns a Set holding codes in order, duplicates dropped.
func NewSet(codes ...string) *Set {
	s := &Set{}
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

// Add appends code unless already present and reports whether it did.
func (s *Set) Add(code string) bool {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, ok := s.seen[code]; ok {
		return false
	}
	s.seen[code] = struct{}{}
	s.codes = append(s.codes, code)
	return true
}

// Contains reports whether code is in the set.
func (s *Set) Contains(code string) bool {
	_, ok := s.seen[code]
	return ok
}

// Len returns the number of codes.
func (s *Set) Len() int { return len(s.codes) }

// Codes returns the codes in order of first appearance.
func (s *Set) Codes() []string {
	out := make([]string, len(s.codes))
	copy(out, s.codes)
	return out
}

// Join joins the codes with sep.
func (s *Set) Join(sep string) string {
	return strings.Join(s.codes, sep)
}
