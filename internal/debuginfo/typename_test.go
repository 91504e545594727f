package debuginfo

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseTypeName(t *testing.T) {
	cases := []struct {
		input string
		want  []string
	}{
		{"Foo", []string{"Foo"}},
		{"ns1::ns2::TypeName", []string{"ns1", "ns2", "TypeName"}},
		{"::std::vector", []string{"std", "vector"}},
		{"ns.Type", []string{"ns", "Type"}},
		{
			"::std::_Rb_tree_key_compare<std::less<niagara::TabletEventListener *> >",
			[]string{"std", "_Rb_tree_key_compare<std::less<niagara::TabletEventListener *> >"},
		},
	}
	for _, tc := range cases {
		got, err := ParseTypeName(tc.input)
		if err != nil {
			t.Fatalf("ParseTypeName(%q) error: %v", tc.input, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ParseTypeName(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseTypeNameRejectsLoneColon(t *testing.T) {
	for _, input := range []string{"ns:Type", "Type:", ""} {
		_, err := ParseTypeName(input)
		if !errors.Is(err, ErrMalformedName) {
			t.Fatalf("ParseTypeName(%q) error = %v, want ErrMalformedName", input, err)
		}
	}
}

func TestTypeNameEndsWith(t *testing.T) {
	name := TypeName{Scopes: []string{"outer", "", "inner"}, Name: "Leaf"}
	cases := []struct {
		suffix []string
		want   bool
	}{
		{[]string{"Leaf"}, true},
		{[]string{"inner", "Leaf"}, true},
		{[]string{"outer", "inner", "Leaf"}, false},
		{[]string{"Other"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := name.EndsWith(tc.suffix); got != tc.want {
			t.Fatalf("EndsWith(%q) = %v, want %v", tc.suffix, got, tc.want)
		}
	}
	if got := name.String(); got != "outer::<anon>::inner::Leaf" {
		t.Fatalf("String() = %q", got)
	}
	anon := TypeName{Scopes: []string{"ns"}}
	if !anon.Anonymous() || anon.EndsWith([]string{""}) {
		t.Fatalf("anonymous leaf must never match")
	}
}

func TestNodeBits(t *testing.T) {
	n := &Node{ByteSize: Known(4)}
	if bits, ok := n.Bits(); !ok || bits != 32 {
		t.Fatalf("Bits() = %d, %v; want 32, true", bits, ok)
	}
	n.BitSize = Known(3)
	if bits, _ := n.Bits(); bits != 3 {
		t.Fatalf("explicit bit size must win, got %d", bits)
	}
	if _, ok := (&Node{}).Bits(); ok {
		t.Fatalf("unknown size reported as known")
	}
}
