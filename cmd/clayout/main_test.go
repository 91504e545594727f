package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"clayout/internal/driver"
	"clayout/internal/project"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), project.ManifestName)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestMergeSettings(t *testing.T) {
	off := false
	m := &project.Manifest{Config: project.Config{
		Inputs: project.InputsConfig{Paths: []string{"/p/a.so"}, Lists: []string{"/p/list.txt"}},
		Output: project.OutputConfig{Stem: "/p/out/foo"},
		Types:  project.TypesConfig{Names: []string{"ns::Foo"}, CanonicalOnly: true},
		Cache:  project.CacheConfig{Dir: "/p/cache"},
	}}

	got, err := mergeSettings(m, genFlags{inputs: []string{"b.so"}, names: []string{"Bar"}, cacheDir: "/tmp/c"})
	if err != nil {
		t.Fatalf("mergeSettings: %v", err)
	}
	want := genSettings{
		inputs:    []string{"/p/a.so", "b.so"},
		lists:     []string{"/p/list.txt"},
		names:     []string{"ns::Foo", "Bar"},
		stem:      "/p/out/foo",
		canonical: true,
		cacheDir:  "/tmp/c",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	got, err = mergeSettings(m, genFlags{stem: "x", noCache: true})
	if err != nil {
		t.Fatalf("mergeSettings: %v", err)
	}
	if got.stem != "x" || got.cacheDir != "" {
		t.Fatalf("flags must override: %+v", got)
	}

	m.Config.Cache.Enabled = &off
	got, err = mergeSettings(m, genFlags{})
	if err != nil {
		t.Fatalf("mergeSettings: %v", err)
	}
	if got.cacheDir != "" {
		t.Fatalf("manifest disables the cache, got dir %q", got.cacheDir)
	}

	if _, err := mergeSettings(nil, genFlags{inputs: []string{"a.so"}}); !errors.Is(err, errNoStem) {
		t.Fatalf("expected errNoStem, got %v", err)
	}
}

func TestReadToggle(t *testing.T) {
	tests := []struct {
		in      string
		want    toggle
		wantErr bool
	}{
		{"", toggleAuto, false},
		{" AUTO ", toggleAuto, false},
		{"on", toggleOn, false},
		{"Off", toggleOff, false},
		{"sometimes", toggleAuto, true},
	}
	for _, tt := range tests {
		got, err := readToggle("--ui", tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("readToggle(%q) = %d, %v", tt.in, got, err)
		}
	}
	if _, err := readToggle("--color", "always"); err == nil || !strings.Contains(err.Error(), "--color") {
		t.Fatalf("error must name the flag, got %v", err)
	}

	yes := func() bool { return true }
	if !toggleAuto.enabled(yes) || !toggleOn.enabled(nil) || toggleOff.enabled(yes) {
		t.Fatalf("enabled resolved wrongly")
	}
	if useProgressUI(toggleAuto, true) {
		t.Fatalf("quiet runs never use the progress display in auto mode")
	}
	if !useProgressUI(toggleOn, true) {
		t.Fatalf("--ui=on forces the progress display")
	}
}

func TestWriteTypes(t *testing.T) {
	rows := []driver.TypeRow{
		{Name: "ns::Foo", Kind: "struct", Input: "libfoo.so", Offset: 0x2d},
		{Name: "int", Kind: "base", Input: "libfoo.so", Offset: 0x80},
	}
	var buf bytes.Buffer
	if err := writeTypesText(&buf, rows); err != nil {
		t.Fatalf("writeTypesText: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "KIND") {
		t.Fatalf("unexpected table:\n%s", buf.String())
	}
	if fields := strings.Fields(lines[1]); !reflect.DeepEqual(fields, []string{"struct", "ns::Foo", "libfoo.so", "0x2d"}) {
		t.Fatalf("row fields %v", fields)
	}

	buf.Reset()
	if err := writeTypesJSON(&buf, nil); err != nil {
		t.Fatalf("writeTypesJSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("empty listing must be [], got %q", buf.String())
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--format", "json", "--hash")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload["tool"] != "clayout" || payload["git_commit"] == "" {
		t.Fatalf("unexpected payload %v", payload)
	}

	if _, err := execute(t, "version", "--format", "yaml"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestGenRequiresStem(t *testing.T) {
	cfg := writeManifest(t, "[types]\nnames = [\"Foo\"]\n")
	_, err := execute(t, "--config", cfg, "gen", "-i", "lib.so", "--ui", "off")
	if !errors.Is(err, errNoStem) {
		t.Fatalf("expected errNoStem, got %v", err)
	}
}

func TestGenRejectsUnknownManifestKeys(t *testing.T) {
	cfg := writeManifest(t, "[output]\nstem = \"out\"\nfoo = 1\n")
	if _, err := execute(t, "--config", cfg, "gen", "--ui", "off", "Foo"); err == nil {
		t.Fatalf("expected manifest error")
	}
}

func TestGenFailsOnUnreadableInput(t *testing.T) {
	dir := t.TempDir()
	cfg := writeManifest(t, "")
	_, err := execute(t, "--config", cfg, "--quiet", "gen", "--ui", "off", "--no-cache",
		"-i", filepath.Join(dir, "absent.so"), "-o", filepath.Join(dir, "out"), "Foo")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected a missing-file error, got %v", err)
	}
}

func TestCleanCommand(t *testing.T) {
	cfg := writeManifest(t, "")
	dir := filepath.Join(t.TempDir(), "cache")

	out, err := execute(t, "--config", cfg, "clean", "--cache-dir", dir)
	if err != nil || !strings.Contains(out, "no index cache") {
		t.Fatalf("clean on a missing cache: %q, %v", out, err)
	}

	if err := os.MkdirAll(filepath.Join(dir, "ab"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	out, err = execute(t, "--config", cfg, "clean", "--cache-dir", dir)
	if err != nil || !strings.Contains(out, "removed") {
		t.Fatalf("clean: %q, %v", out, err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("cache dir still present: %v", err)
	}
}
