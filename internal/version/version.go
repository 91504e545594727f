// Package version carries build metadata set with -ldflags, e.g.
//
//	-X clayout/internal/version.Version=1.0.0
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the tool.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

const Tool = "clayout"

// Info is a snapshot of the build metadata.
type Info struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
}

// Fields selects optional metadata.
type Fields struct {
	Hash bool
	Date bool
}

// Current returns the metadata with the requested optional fields; missing
// values read "unknown".
func Current(f Fields) Info {
	info := Info{Tool: Tool, Version: orDefault(Version, "dev")}
	if f.Hash {
		info.GitCommit = orDefault(GitCommit, "unknown")
	}
	if f.Date {
		info.BuildDate = orDefault(BuildDate, "unknown")
	}
	return info
}

// Short is the one-word version used by --version.
func Short() string { return orDefault(Version, "dev") }

// Pretty writes a human-readable description. The version is coloured
// component by component when colour is enabled.
func (i Info) Pretty(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", i.Tool, colorize(i.Version)); err != nil {
		return err
	}
	if i.GitCommit != "" {
		if _, err := fmt.Fprintf(w, "commit: %s\n", i.GitCommit); err != nil {
			return err
		}
	}
	if i.BuildDate != "" {
		if _, err := fmt.Fprintf(w, "built:  %s\n", i.BuildDate); err != nil {
			return err
		}
	}
	return nil
}

// JSON writes the metadata as an indented JSON object.
func (i Info) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(i)
}

var partColors = []*color.Color{
	color.New(color.FgYellow, color.Bold),
	color.New(color.FgGreen, color.Bold),
	color.New(color.FgBlue, color.Bold),
}

// colorize paints major, minor and patch; a pre-release suffix stays plain.
func colorize(v string) string {
	core, suffix, found := strings.Cut(v, "-")
	parts := strings.SplitN(core, ".", len(partColors))
	for i, p := range parts {
		parts[i] = partColors[i].Sprint(p)
	}
	out := strings.Join(parts, ".")
	if found {
		out += "-" + suffix
	}
	return out
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
