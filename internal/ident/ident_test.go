package ident

import (
	"testing"

	"clayout/internal/debuginfo"
)

func TestPart(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"Foo", "Foo"},
		{"vector<int>", "vector"},
		{"unsigned int", "unsigned"},
		{"(anonymous namespace)", ""},
		{"Größe", "Größe"},
	}
	for _, tc := range cases {
		if got := Part(tc.input); got != tc.want {
			t.Fatalf("Part(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
	if Valid("a b") || !Valid("a_b9") || Valid("") {
		t.Fatalf("Valid mismatch")
	}
}

func TestAllocPrefersShortestSuffix(t *testing.T) {
	a := NewAllocator(NewCounter())
	name := debuginfo.TypeName{Scopes: []string{"ns1", "ns2"}, Name: "Foo"}

	got := []string{a.Alloc(name), a.Alloc(name), a.Alloc(name), a.Alloc(name), a.Alloc(name)}
	want := []string{"Foo", "ns2_Foo", "ns1_ns2_Foo", "ns1_ns2_Foo_1", "ns1_ns2_Foo_2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("alloc #%d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAllocSkipsUnusableScopes(t *testing.T) {
	a := NewAllocator(nil)
	name := debuginfo.TypeName{Scopes: []string{"", "std"}, Name: "map<int, int>"}
	if got := a.Alloc(name); got != "map" {
		t.Fatalf("first = %q", got)
	}
	if got := a.Alloc(name); got != "std_map" {
		t.Fatalf("second = %q", got)
	}
	if got := a.Alloc(name); got != "std_map_1" {
		t.Fatalf("third = %q", got)
	}
}

func TestAllocNeverRepeats(t *testing.T) {
	a := NewAllocator(NewCounter())
	seen := make(map[string]bool)
	names := []debuginfo.TypeName{
		{Name: "AnonType0"},
		{Name: "AnonType2"},
		{Name: "A"},
		{Scopes: []string{"x"}, Name: "A"},
		{Name: "x_A"},
		{Name: "A_1"},
		{Name: ""},
		{Scopes: []string{"ns"}, Name: ""},
		{Name: "<lambda()>"},
	}
	for round := 0; round < 4; round++ {
		for _, n := range names {
			id := a.Alloc(n)
			if seen[id] {
				t.Fatalf("identifier %q returned twice", id)
			}
			if !Valid(id) {
				t.Fatalf("identifier %q is not a C identifier", id)
			}
			if !a.Used(id) {
				t.Fatalf("identifier %q not recorded", id)
			}
			seen[id] = true
		}
	}
}

func TestAnonymousUsesCounter(t *testing.T) {
	c := NewCounter()
	a := NewAllocator(c)
	first := a.Alloc(debuginfo.TypeName{})
	second := a.Alloc(debuginfo.TypeName{Scopes: []string{"ns"}})
	if first != "AnonType0" || second != "AnonType1" {
		t.Fatalf("got %q, %q", first, second)
	}
	if got := c.Name("__padding"); got != "__padding2" {
		t.Fatalf("counter shared with placeholders, got %q", got)
	}
}
