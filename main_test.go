package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minios-linux/cbres/filterdb"
)

// runCLI executes the root command against a project dir and returns stdout.
func runCLI(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--root", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func newProject(t *testing.T, yaml string) string {
	t.Helper()
	for _, k := range []string{"CBRES_RESOURCES_DIR", "CBRES_DATABASE", "CBRES_LOCALE", "CBRES_INPUT_METHODS", "CBRES_LOG_LEVEL"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	dir := t.TempDir()
	if yaml != "" {
		if err := os.WriteFile(filepath.Join(dir, ".cbres.yaml"), []byte(yaml), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeInputMethods(t *testing.T, dir string) {
	t.Helper()
	ime := "input_methods:\n" +
		"  - id: latin\n" +
		"    subtypes:\n" +
		"      - { mode: keyboard, locale: es_ES }\n" +
		"      - { mode: voice, locale: ko_KR }\n" +
		"      - { mode: keyboard, locale: en_US }\n"
	if err := os.WriteFile(filepath.Join(dir, "ime.yaml"), []byte(ime), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScriptCommand(t *testing.T) {
	dir := newProject(t, "locale: fr_FR\nlog_level: error\n")

	out, err := runCLI(t, dir, "script", "select-filters")
	if err != nil {
		t.Fatalf("script select-filters: %v", err)
	}
	if !strings.Contains(out, "l.lang = 'fr'") {
		t.Fatalf("select-filters output lacks fr: %s", out)
	}

	out, err = runCLI(t, dir, "script", "create")
	if err != nil {
		t.Fatalf("script create: %v", err)
	}
	if !strings.Contains(out, "CREATE TABLE filters") {
		t.Fatalf("create output = %s", out)
	}

	if _, err := runCLI(t, dir, "script", "bogus"); err == nil {
		t.Fatal("expected error for unknown script kind")
	}
}

func TestEnableDefaultFiltersFromInputMethods(t *testing.T) {
	dir := newProject(t, "locale: de_DE\ninput_methods: ime.yaml\nlog_level: error\n")
	writeInputMethods(t, dir)

	out, err := runCLI(t, dir, "script", "enable-default-filters")
	if err != nil {
		t.Fatalf("script enable-default-filters: %v", err)
	}
	if !strings.Contains(out, "'es,en,de'") {
		t.Fatalf("enable-default-filters output = %s", out)
	}

	out, err = runCLI(t, dir, "languages")
	if err != nil {
		t.Fatalf("languages: %v", err)
	}
	if got := strings.Fields(out); strings.Join(got, ",") != "es,en,de" {
		t.Fatalf("languages = %v, want [es en de]", got)
	}
}

func TestUpdateScriptCommand(t *testing.T) {
	dir := newProject(t, "log_level: error\n")

	out, err := runCLI(t, dir, "update-script", "1", "2")
	if err != nil {
		t.Fatalf("update-script 1 2: %v", err)
	}
	if !strings.Contains(out, "ALTER TABLE filters") {
		t.Fatalf("update-script output = %s", out)
	}

	out, err = runCLI(t, dir, "update-script", "5", "6")
	if err != nil {
		t.Fatalf("update-script 5 6 should not fail: %v", err)
	}
	if out != "" {
		t.Fatalf("update-script 5 6 printed %q, want nothing", out)
	}

	if _, err := runCLI(t, dir, "update-script", "one", "2"); err == nil {
		t.Fatal("expected error for non-numeric version")
	}
}

func TestURLCommand(t *testing.T) {
	dir := newProject(t, "log_level: error\n")

	out, err := runCLI(t, dir, "url", "check")
	if err != nil {
		t.Fatalf("url check: %v", err)
	}
	if !strings.HasPrefix(out, "https://") {
		t.Fatalf("url check = %q", out)
	}

	// A custom bundle without application.properties has no URLs.
	res := filepath.Join(dir, "res")
	if err := os.MkdirAll(res, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(res, "create_tables.sql"), []byte("CREATE TABLE x (id);"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CBRES_RESOURCES_DIR", res)
	if _, err := runCLI(t, dir, "url", "filter"); err == nil {
		t.Fatal("expected error when properties are missing")
	}
	out, err = runCLI(t, dir, "script", "create")
	if err != nil {
		t.Fatalf("script create from custom bundle: %v", err)
	}
	if strings.TrimSpace(out) != "CREATE TABLE x (id);" {
		t.Fatalf("script create = %q", out)
	}
}

func TestDBCommands(t *testing.T) {
	dir := newProject(t, "locale: ru_RU\ndatabase: data/filters.db\nlog_level: error\n")
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0755); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, dir, "db", "init"); err != nil {
		t.Fatalf("db init: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "filters.db")); err != nil {
		t.Fatalf("database not created: %v", err)
	}

	out, err := runCLI(t, dir, "db", "filters")
	if err != nil {
		t.Fatalf("db filters: %v", err)
	}
	if !strings.Contains(out, "[x]   1  Русский фильтр") {
		t.Fatalf("db filters output lacks enabled Russian filter:\n%s", out)
	}
	if !strings.Contains(out, "[ ]  16  French filter") {
		t.Fatalf("db filters output lacks disabled French filter:\n%s", out)
	}
}

func TestFormatFilter(t *testing.T) {
	got := formatFilter(filterdb.Filter{ID: 2, Name: "English filter", Enabled: true})
	if got != "[x]   2  English filter" {
		t.Fatalf("formatFilter = %q", got)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, t.TempDir(), "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cbres version dev") {
		t.Fatalf("version output = %q", out)
	}
}
