package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"clayout/internal/debuginfo"
	"clayout/internal/diag"
	"clayout/internal/dwarfsrc"
	"clayout/internal/registry"
	"clayout/internal/testkit"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnEvent(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) statuses(stage Stage) []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Status
	for _, e := range r.events {
		if e.Stage == stage {
			out = append(out, e.Status)
		}
	}
	return out
}

func mustDests(t *testing.T, raw ...string) []registry.Destination {
	t.Helper()
	d, err := registry.ParseDestinations(raw)
	if err != nil {
		t.Fatalf("ParseDestinations(%v): %v", raw, err)
	}
	return d
}

func hasCode(bag *diag.Bag, code diag.Code) bool {
	for _, d := range bag.Items() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func fooSource() *testkit.Source {
	src := testkit.NewSource("libfoo.so")
	long := src.Base("long int", 8)
	char := src.Base("char", 1)
	src.Struct(testkit.Name("ns", "Foo"), 16,
		testkit.Member("l", 0, long),
		testkit.Member("c", 8, char),
	)
	return src
}

func TestGenerateUnresolvedDestination(t *testing.T) {
	out := testkit.NewOutput(t)
	bag := diag.NewBag(10)
	res, err := Generate(context.Background(), []debuginfo.Source{fooSource()}, mustDests(t, "ns::Missing"), out.Sink,
		GenerateOptions{Reporter: diag.BagReporter{Bag: bag}})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out.Close(t)

	if len(res.Roots) != 0 {
		t.Fatalf("expected no roots, got %d", len(res.Roots))
	}
	if len(res.Missing) != 1 || res.Missing[0].Raw != "ns::Missing" {
		t.Fatalf("missing = %v", res.Missing)
	}
	if !hasCode(bag, diag.DrvDestinationNotFound) {
		t.Fatalf("expected %s, got %v", diag.DrvDestinationNotFound, bag.Items())
	}
	if res.Registered != 3 {
		t.Fatalf("registered %d, want 3", res.Registered)
	}

	h, c := out.Header.String(), out.Prog.String()
	if !strings.Contains(h, "#pragma once") || !strings.Contains(h, "#include <linux/types.h>") {
		t.Fatalf("header boilerplate missing:\n%s", h)
	}
	if !strings.Contains(c, `#include "out.h"`) || !strings.HasSuffix(c, "  return 0;\n}\n") {
		t.Fatalf("program boilerplate missing:\n%s", c)
	}
	if n := len(testkit.ParseAsserts(c)); n != 0 {
		t.Fatalf("expected no checks, got %d", n)
	}
}

func TestGenerateRoots(t *testing.T) {
	out := testkit.NewOutput(t)
	rec := &recorder{}
	res, err := Generate(context.Background(), []debuginfo.Source{fooSource()}, mustDests(t, "Foo", "ns::Foo"), out.Sink,
		GenerateOptions{Progress: rec})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out.Close(t)

	// the second destination picks the same type and adds nothing
	if len(res.Roots) != 1 || len(res.Missing) != 0 {
		t.Fatalf("roots=%v missing=%v", res.Roots, res.Missing)
	}
	info := res.Roots[0].Info
	if info == nil || info.Name != "struct Foo" || info.PackedSize != 9 || info.Size != 16 {
		t.Fatalf("unexpected layout %+v", info)
	}
	testkit.CheckFields(t, out, "struct Foo", 9,
		testkit.Field{Name: "l", Off: 0, Len: 8},
		testkit.Field{Name: "c", Off: 8, Len: 1},
	)
	got := rec.statuses(StageLayout)
	if len(got) == 0 || got[len(got)-1] != StatusDone {
		t.Fatalf("layout events %v", got)
	}
}

func TestGenerateMarksEveryOccurrence(t *testing.T) {
	a, b := fooSource(), fooSource()
	sources := []debuginfo.Source{a, b}
	for _, tc := range []struct {
		canonical bool
		roots     int
	}{
		{canonical: false, roots: 2},
		{canonical: true, roots: 1},
	} {
		out := testkit.NewOutput(t)
		res, err := Generate(context.Background(), sources, mustDests(t, "ns::Foo"), out.Sink,
			GenerateOptions{CanonicalOnly: tc.canonical})
		if err != nil {
			t.Fatalf("Generate(canonical=%v): %v", tc.canonical, err)
		}
		out.Close(t)
		if len(res.Roots) != tc.roots {
			t.Fatalf("canonical=%v: %d roots, want %d", tc.canonical, len(res.Roots), tc.roots)
		}
		if res.Shadowed != 3 {
			t.Fatalf("shadowed %d, want 3", res.Shadowed)
		}
	}
}

func TestGenerateDistinctDefinitionsOfOneName(t *testing.T) {
	src := testkit.NewSource("a.out")
	i32 := src.Base("int", 4)
	src.Struct(testkit.Name("Foo"), 4, testkit.Member("x", 0, i32))
	src.Struct(testkit.Name("Foo"), 8,
		testkit.Member("x", 0, i32),
		testkit.Member("y", 4, i32),
	)
	out := testkit.NewOutput(t)
	res, err := Generate(context.Background(), []debuginfo.Source{src}, mustDests(t, "Foo"), out.Sink, GenerateOptions{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	out.Close(t)

	if len(res.Roots) != 2 {
		t.Fatalf("got %d roots, want 2", len(res.Roots))
	}
	for i, size := range []uint64{4, 8} {
		info := res.Roots[i].Info
		if info == nil || info.Size != size {
			t.Fatalf("root %d: %+v, want size %d", i, info, size)
		}
	}
}

// The opaque handle idiom: "struct Foo; typedef struct Foo Foo;" ahead of the
// definition.
func TestGenerateTypedefOfForwardDeclaration(t *testing.T) {
	for _, canonical := range []bool{false, true} {
		src := testkit.NewSource("a.out")
		i32 := src.Base("int", 4)
		decl := src.Decl(debuginfo.KindStruct, testkit.Name("Foo"))
		src.Typedef(testkit.Name("Foo"), decl)
		src.Struct(testkit.Name("Foo"), 4, testkit.Member("x", 0, i32))

		out := testkit.NewOutput(t)
		bag := diag.NewBag(10)
		res, err := Generate(context.Background(), []debuginfo.Source{src}, mustDests(t, "Foo"), out.Sink,
			GenerateOptions{CanonicalOnly: canonical, Reporter: diag.BagReporter{Bag: bag}})
		if err != nil {
			t.Fatalf("Generate(canonical=%v): %v", canonical, err)
		}
		out.Close(t)

		if res.Shadowed != 0 || len(res.Roots) != 2 {
			t.Fatalf("canonical=%v: shadowed=%d roots=%d", canonical, res.Shadowed, len(res.Roots))
		}
		for _, r := range res.Roots {
			if r.Info == nil || r.Info.Name != "struct Foo" {
				t.Fatalf("canonical=%v: root %s has layout %+v", canonical, r.Root.Name, r.Info)
			}
		}
		testkit.CheckFields(t, out, "struct Foo", 4,
			testkit.Field{Name: "x", Off: 0, Len: 4},
		)
		if hasCode(bag, diag.LayUnresolvedDecl) {
			t.Fatalf("canonical=%v: declaration left unresolved: %v", canonical, bag.Items())
		}
	}
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := testkit.NewOutput(t)
	_, err := Generate(ctx, []debuginfo.Source{fooSource()}, mustDests(t, "ns::Foo"), out.Sink, GenerateOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTypeRows(t *testing.T) {
	sources := []debuginfo.Source{fooSource()}
	rows := typeRows(sources, nil)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	rows = typeRows(sources, []string{"Foo"})
	if len(rows) != 1 {
		t.Fatalf("got %d rows for Foo, want 1", len(rows))
	}
	want := []TypeRow{{Name: "ns::Foo", Kind: "struct", Input: "libfoo.so", Offset: rows[0].Offset}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("got %+v, want %+v", rows, want)
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestCollectInputs(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "inputs.txt")
	writeFile(t, list, "  b.so \n\n\tc.so\na.so\n   \n")

	got, err := CollectInputs([]string{"a.so", "x.so"}, []string{list})
	if err != nil {
		t.Fatalf("CollectInputs: %v", err)
	}
	want := []string{"a.so", "x.so", "b.so", "c.so"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	if _, err := CollectInputs(nil, []string{filepath.Join(dir, "nope.txt")}); err == nil {
		t.Fatalf("expected error for missing list")
	}
}

func TestRunFatalErrors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.bin")
	writeFile(t, junk, "not a binary")
	stem := filepath.Join(dir, "out", "gen")

	tests := []struct {
		name string
		req  Request
		want error
	}{
		{name: "no stem", req: Request{Inputs: []string{junk}, Destinations: []string{"Foo"}}},
		{name: "malformed destination", req: Request{Inputs: []string{junk}, Destinations: []string{":"}, Stem: stem}, want: debuginfo.ErrMalformedName},
		{name: "no inputs", req: Request{Destinations: []string{"Foo"}, Stem: stem}, want: ErrNoInputs},
		{name: "not a binary", req: Request{Inputs: []string{junk}, Destinations: []string{"Foo"}, Stem: stem}, want: dwarfsrc.ErrUnknownFormat},
		{name: "missing input", req: Request{Inputs: []string{filepath.Join(dir, "absent")}, Destinations: []string{"Foo"}, Stem: stem}, want: os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Run(context.Background(), &tt.req)
			if err == nil {
				t.Fatalf("expected error, got result %+v", res)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
	if _, err := os.Stat(stem + ".h"); !os.IsNotExist(err) {
		t.Fatalf("no output must be written on input failure, stat: %v", err)
	}
}

func TestLoadInputsReportsErrors(t *testing.T) {
	dir := t.TempDir()
	junk := filepath.Join(dir, "junk.bin")
	writeFile(t, junk, "xx")
	rec := &recorder{}
	_, err := LoadInputs(context.Background(), []string{junk}, LoadOptions{Progress: rec, Jobs: 4})
	if err == nil {
		t.Fatalf("expected error")
	}
	got := rec.statuses(StageLoad)
	want := []Status{StatusQueued, StatusWorking, StatusError}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("events %v, want %v", got, want)
	}
}
