package locale

import (
	"os"
	"strings"
)

// Source supplies the current default locale identifier (e.g. "fr_FR").
// Implementations are queried on every call and may change over time.
type Source interface {
	Default() string
}

// Fixed is a Source that always returns the same identifier.
type Fixed string

// Default implements Source.
func (f Fixed) Default() string { return string(f) }

// Func adapts a function to Source.
type Func func() string

// Default implements Source.
func (f Func) Default() string { return f() }

// Env reads the default locale from LANGUAGE, LC_ALL, LC_MESSAGES and LANG,
// in that order, matching GNU gettext. Fallback is used when none is set;
// an empty Fallback means "en".
type Env struct {
	Fallback string
}

// Default implements Source.
func (e Env) Default() string {
	if lang := FromEnv(); lang != "" {
		return lang
	}
	if e.Fallback != "" {
		return e.Fallback
	}
	return "en"
}

// FromEnv returns the first usable locale from the environment, or "".
func FromEnv() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		// LANGUAGE can be a colon-separated list; take the first
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// Strip encoding and modifier ("ru_RU.UTF-8@euro" -> "ru_RU")
		if idx := strings.IndexAny(val, ".@"); idx >= 0 {
			val = val[:idx]
		}
		// "C" and "POSIX" mean no translation
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return ""
}
