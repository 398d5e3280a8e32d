// Package propfile implements reading of Java .properties files with the
// semantics of java.util.Properties.load(InputStream).
//
// Format: one logical line per entry. A natural line ending in an odd number
// of backslashes continues on the next natural line; leading whitespace of
// the continuation is dropped. Lines whose first non-blank character is '#'
// or '!' are comments. The key ends at the first unescaped '=', ':' or
// whitespace; one separator and the whitespace around it are skipped.
//
// Escapes: \t \n \r \f, \uXXXX, and a backslash before any other character
// yields that character. Byte input is ISO-8859-1 as in Java; characters
// outside Latin-1 must use \u escapes.
//
// Later duplicates of a key replace the value but keep the first position.
package propfile

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/charmap"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// File represents a parsed .properties file.
type File struct {
	// keys stores entry keys in document order.
	keys []string
	// values maps key → unescaped value.
	values map[string]string
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a .properties file from disk.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	defer fh.Close()

	f, err := Load(fh)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Load decodes r as ISO-8859-1 and parses it.
func Load(r io.Reader) (*File, error) {
	data, err := io.ReadAll(charmap.ISO8859_1.NewDecoder().Reader(r))
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse parses already-decoded .properties text.
func Parse(text string) (*File, error) {
	f := &File{values: make(map[string]string)}

	for _, logical := range logicalLines(text) {
		k, v, err := splitKeyValue(logical)
		if err != nil {
			return nil, err
		}
		if _, exists := f.values[k]; !exists {
			f.keys = append(f.keys, k)
		}
		f.values[k] = v
	}

	return f, nil
}

// logicalLines joins continuation lines and drops comments and blanks.
// Returned lines have leading whitespace removed.
func logicalLines(text string) []string {
	// Java accepts \n, \r and \r\n as terminators.
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var (
		out     []string
		pending strings.Builder
		joining bool
	)
	for _, line := range strings.Split(text, "\n") {
		raw := strings.TrimLeft(line, " \t\f")
		if !joining {
			if raw == "" || raw[0] == '#' || raw[0] == '!' {
				continue
			}
		}
		if trailingBackslashes(raw)%2 == 1 {
			pending.WriteString(raw[:len(raw)-1])
			joining = true
			continue
		}
		pending.WriteString(raw)
		out = append(out, pending.String())
		pending.Reset()
		joining = false
	}
	// A continuation on the last line is terminated by EOF.
	if joining {
		out = append(out, pending.String())
	}
	return out
}

func trailingBackslashes(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '\\'; i-- {
		n++
	}
	return n
}

// splitKeyValue splits a logical line into its unescaped key and value.
func splitKeyValue(s string) (key, value string, err error) {
	end := len(s)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\\' {
			i++
			continue
		}
		if ch == '=' || ch == ':' || ch == ' ' || ch == '\t' || ch == '\f' {
			end = i
			break
		}
	}

	rest := strings.TrimLeft(s[end:], " \t\f")
	if rest != "" && (rest[0] == '=' || rest[0] == ':') {
		rest = strings.TrimLeft(rest[1:], " \t\f")
	}

	if key, err = unescape(s[:end]); err != nil {
		return "", "", err
	}
	if value, err = unescape(rest); err != nil {
		return "", "", fmt.Errorf("value of %q: %w", key, err)
	}
	return key, value, nil
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '\\' || i == len(s)-1 {
			b.WriteByte(ch)
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			r, err := hexUnit(s, i+1)
			if err != nil {
				return "", err
			}
			i += 4
			// A high surrogate followed by an escaped low surrogate is one
			// code point; an unpaired surrogate becomes U+FFFD.
			if utf16.IsSurrogate(r) && strings.HasPrefix(s[i+1:], `\u`) {
				if lo, err := hexUnit(s, i+3); err == nil {
					if pair := utf16.DecodeRune(r, lo); pair != '\uFFFD' {
						r = pair
						i += 6
					}
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String(), nil
}

// hexUnit decodes the four hex digits of a \u escape starting at s[i].
func hexUnit(s string, i int) (rune, error) {
	if len(s)-i < 4 {
		return 0, fmt.Errorf("malformed \\uxxxx encoding in %q", s)
	}
	code, err := strconv.ParseUint(s[i:i+4], 16, 16)
	if err != nil {
		return 0, fmt.Errorf("malformed \\uxxxx encoding in %q", s)
	}
	return rune(code), nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Keys returns all keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, len(f.keys))
	copy(keys, f.keys)
	return keys
}

// Len returns the number of distinct keys.
func (f *File) Len() int {
	return len(f.keys)
}

// Get returns the value for key and whether it was found.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// GetDefault returns the value for key, or def when the key is absent.
func (f *File) GetDefault(key, def string) string {
	if v, ok := f.values[key]; ok {
		return v
	}
	return def
}

// Values returns a copy of the key → value map.
func (f *File) Values() map[string]string {
	m := make(map[string]string, len(f.values))
	for k, v := range f.values {
		m[k] = v
	}
	return m
}
