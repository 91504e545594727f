package diag

import (
	"bytes"
	"testing"
)

func TestCodeID(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{LaySizeExceedsHint, "LAY4002"},
		{DrvDestinationNotFound, "DRV5001"},
		{UnknownCode, "E0000"},
	}
	for _, tc := range cases {
		if got := tc.code.ID(); got != tc.want {
			t.Fatalf("%d.ID() = %q, want %q", tc.code, got, tc.want)
		}
	}
	if Code(4999).Title() != "Unknown error" {
		t.Fatalf("unexpected title for unregistered code")
	}
}

func TestSeverityString(t *testing.T) {
	for sev, want := range map[Severity]string{
		SevInfo:     "INFO",
		SevWarning:  "WARNING",
		SevError:    "ERROR",
		Severity(9): "Severity(9)",
	} {
		if got := sev.String(); got != want {
			t.Fatalf("Severity(%d).String() = %q, want %q", uint8(sev), got, want)
		}
	}
}

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	Warnf(r, LayUnknownSize, Location{Input: 1, Offset: 0x10}, "b")
	Infof(r, DrvInfo, Location{Input: 0, Offset: 0x20}, "a")
	Warnf(r, LayUnknownSize, Location{Input: 0, Offset: 0x30}, "dropped")

	if bag.Len() != 2 || bag.Dropped() != 1 {
		t.Fatalf("len=%d dropped=%d", bag.Len(), bag.Dropped())
	}
	bag.Sort()
	if bag.Items()[0].Message != "a" {
		t.Fatalf("sort by input failed: %+v", bag.Items())
	}
	if !bag.HasWarnings() || bag.HasErrors() {
		t.Fatalf("severity flags mismatch")
	}
	if bag.Count(SevInfo) != 1 {
		t.Fatalf("Count(SevInfo) = %d", bag.Count(SevInfo))
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	loc := Location{Input: 0, Offset: 4, Name: "S"}
	for range 3 {
		Warnf(r, LayEmptyStruct, loc, "structure %s has no fields", "S")
	}
	Warnf(r, LayEmptyStruct, Location{Input: 0, Offset: 8}, "structure %s has no fields", "S")
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestRenderPlain(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevWarning, LaySizeExceedsHint, Location{Input: 0, Path: "a.out", Offset: 0x2d, Name: "ns::Foo"}, "too\nbig").
		WithNote(Location{Input: 0, Path: "a.out", Offset: 0x40}, "member here"))
	bag.Add(New(SevInfo, DrvInfo, NoLocation, "hidden"))

	var buf bytes.Buffer
	if err := Render(&buf, bag, RenderOpts{MinSeverity: SevWarning}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "WARNING LAY4002 a.out@0x2d (ns::Foo): too big\n" +
		"  note: a.out@0x40: member here\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestLocationString(t *testing.T) {
	if got := NoLocation.String(); got != "<run>" {
		t.Fatalf("NoLocation = %q", got)
	}
	if got := (Location{Input: 2, Offset: 0x1f}).String(); got != "input#2@0x1f" {
		t.Fatalf("got %q", got)
	}
}
