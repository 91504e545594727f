package version

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func withMetadata(t *testing.T, v, commit, date string) {
	t.Helper()
	ov, oc, od := Version, GitCommit, BuildDate
	Version, GitCommit, BuildDate = v, commit, date
	t.Cleanup(func() { Version, GitCommit, BuildDate = ov, oc, od })
}

func TestCurrent(t *testing.T) {
	withMetadata(t, " 1.2.3 ", "", "2024-01-15")

	tests := []struct {
		fields Fields
		want   Info
	}{
		{Fields{}, Info{Tool: "clayout", Version: "1.2.3"}},
		{Fields{Hash: true}, Info{Tool: "clayout", Version: "1.2.3", GitCommit: "unknown"}},
		{Fields{Hash: true, Date: true}, Info{Tool: "clayout", Version: "1.2.3", GitCommit: "unknown", BuildDate: "2024-01-15"}},
	}
	for _, tt := range tests {
		if got := Current(tt.fields); got != tt.want {
			t.Fatalf("Current(%+v) = %+v, want %+v", tt.fields, got, tt.want)
		}
	}
}

func TestEmptyVersion(t *testing.T) {
	withMetadata(t, "", "", "")
	if got := Short(); got != "dev" {
		t.Fatalf("Short() = %q, want dev", got)
	}
}

func TestPrettyAndJSON(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
	withMetadata(t, "0.4.1-rc.1", "abc123", "")

	var buf bytes.Buffer
	if err := Current(Fields{Hash: true}).Pretty(&buf); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	want := "clayout 0.4.1-rc.1\ncommit: abc123\n"
	if buf.String() != want {
		t.Fatalf("Pretty = %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := Current(Fields{}).JSON(&buf); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["version"] != "0.4.1-rc.1" || got["tool"] != "clayout" {
		t.Fatalf("unexpected payload %v", got)
	}
	if _, ok := got["git_commit"]; ok || strings.Contains(buf.String(), "build_date") {
		t.Fatalf("optional fields must be omitted: %s", buf.String())
	}
}
