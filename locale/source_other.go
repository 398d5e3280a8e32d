//go:build !android

package locale

// System is the host default locale taken from the environment.
type System struct{}

// Default implements Source.
func (System) Default() string { return Env{}.Default() }
