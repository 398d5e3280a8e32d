package locale

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "en_US", want: "en"},
		{in: "EN_us", want: "en"},
		{in: "pt_BR_variant", want: "pt"},
		{in: "fr", want: "fr"},
		{in: "DE", want: "de"},
		{in: "zh-Hant", want: "zh-hant"},
		{in: "_US", want: ""},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		if got := Code(tc.in); got != tc.want {
			t.Fatalf("Code(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCodeProperty(t *testing.T) {
	ids := []string{"en_US", "sr_Latn_RS", "ja_JP", "x_y", "Ab_Cd", "ru", "FIL", "a__b"}
	for _, id := range ids {
		got := Code(id)
		want := strings.ToLower(id)
		if before, _, found := strings.Cut(id, "_"); found {
			want = strings.ToLower(before)
		}
		if got != want {
			t.Errorf("Code(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestSet(t *testing.T) {
	var s Set
	for _, c := range []string{"en", "ru", "en", "de", "ru"} {
		s.Add(c)
	}
	if diff := cmp.Diff([]string{"en", "ru", "de"}, s.Codes()); diff != "" {
		t.Fatalf("Codes() mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if !s.Contains("de") || s.Contains("fr") {
		t.Fatalf("Contains mismatch: de=%v fr=%v", s.Contains("de"), s.Contains("fr"))
	}
	if got := s.Join(","); got != "en,ru,de" {
		t.Fatalf("Join = %q, want en,ru,de", got)
	}
	if s.Add("en") {
		t.Fatal("Add(existing) = true, want false")
	}
	if !s.Add("fr") {
		t.Fatal("Add(new) = false, want true")
	}
}

func TestSetZeroValue(t *testing.T) {
	var s Set
	if s.Contains("en") {
		t.Fatal("zero Set contains en")
	}
	if got := s.Join(","); got != "" {
		t.Fatalf("zero Set Join = %q", got)
	}
	if got := NewSet("a", "b", "a").Codes(); len(got) != 2 {
		t.Fatalf("NewSet codes = %v", got)
	}
}

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestEnvPriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := (Env{}).Default(); got != "ru_RU" {
			t.Fatalf("Default() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := (Env{}).Default(); got != "fr_FR" {
			t.Fatalf("Default() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("modifier is stripped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANG", "de_DE@euro")

		if got := (Env{}).Default(); got != "de_DE" {
			t.Fatalf("Default() = %q, want %q", got, "de_DE")
		}
	})

	t.Run("falls back", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := (Env{}).Default(); got != "en" {
			t.Fatalf("Default() = %q, want %q", got, "en")
		}
		if got := (Env{Fallback: "es_ES"}).Default(); got != "es_ES" {
			t.Fatalf("Default() = %q, want %q", got, "es_ES")
		}
	})
}

func TestFixedAndFunc(t *testing.T) {
	if got := Fixed("ja_JP").Default(); got != "ja_JP" {
		t.Fatalf("Fixed.Default() = %q", got)
	}
	cur := "en_GB"
	src := Func(func() string { return cur })
	if got := src.Default(); got != "en_GB" {
		t.Fatalf("Func.Default() = %q", got)
	}
	cur = "it_IT"
	if got := src.Default(); got != "it_IT" {
		t.Fatalf("Func.Default() after change = %q", got)
	}
}
