package driver

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ReadPathList reads one input path per line. Blank lines are skipped and
// surrounding whitespace is trimmed.
func ReadPathList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("input list: %w", err)
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("input list %s: %w", path, err)
	}
	return out, nil
}

// CollectInputs returns paths followed by the contents of every list, in
// order. Repeated paths are kept once, at their first position.
func CollectInputs(paths, lists []string) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]struct{}, len(paths))
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, p := range paths {
		add(p)
	}
	for _, l := range lists {
		listed, err := ReadPathList(l)
		if err != nil {
			return nil, err
		}
		for _, p := range listed {
			add(p)
		}
	}
	return out, nil
}
