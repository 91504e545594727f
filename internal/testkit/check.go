package testkit

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"clayout/internal/emit"
)

// Output captures a sink writing to memory.
type Output struct {
	Sink   *emit.Sink
	Header bytes.Buffer
	Prog   bytes.Buffer
}

// NewOutput opens a sink over in-memory buffers.
func NewOutput(t testing.TB) *Output {
	t.Helper()
	o := &Output{}
	s, err := emit.New(&o.Header, &o.Prog, "out.h")
	if err != nil {
		t.Fatalf("emit.New: %v", err)
	}
	o.Sink = s
	return o
}

// Close finalizes the sink and fails the test on error.
func (o *Output) Close(t testing.TB) {
	t.Helper()
	if err := o.Sink.Close(); err != nil {
		t.Fatalf("sink close: %v", err)
	}
}

var assertLine = regexp.MustCompile(`^\s*` + emit.AssertMacro + `\((.*), (\d+)\);$`)

// ParseAsserts extracts every check of the program in order.
func ParseAsserts(prog string) []emit.EqAssert {
	var out []emit.EqAssert
	for _, line := range strings.Split(prog, "\n") {
		m := assertLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseUint(m[2], 10, 64)
		if err != nil {
			continue
		}
		out = append(out, emit.EqAssert{Expr: m[1], Want: v})
	}
	return out
}

// AssertValue returns the expected value of the check on expr.
func AssertValue(prog, expr string) (uint64, bool) {
	for _, a := range ParseAsserts(prog) {
		if a.Expr == expr {
			return a.Want, true
		}
	}
	return 0, false
}

// CheckAssert fails unless the program checks expr == want.
func CheckAssert(t testing.TB, prog, expr string, want uint64) {
	t.Helper()
	got, ok := AssertValue(prog, expr)
	if !ok {
		t.Fatalf("no check for %s in program:\n%s", expr, prog)
	}
	if got != want {
		t.Fatalf("check %s expects %d, want %d", expr, got, want)
	}
}

// Field is the expected placement of one emitted field.
type Field struct {
	Name string
	Off  uint64
	Len  uint64
}

// CheckFields verifies offset and size checks of every field of tydef, in
// declaration order, plus the sizeof check of the whole type.
func CheckFields(t testing.TB, o *Output, tydef string, size uint64, fields ...Field) {
	t.Helper()
	prog := o.Prog.String()
	block := Block(o.Header.String(), tydef)
	if block == "" {
		t.Fatalf("no definition of %s in header:\n%s", tydef, o.Header.String())
	}
	names := FieldNames(block)
	if len(names) != len(fields) {
		t.Fatalf("%s has fields %v, want %d fields", tydef, names, len(fields))
	}
	for i, f := range fields {
		if f.Name != "" && !strings.HasPrefix(names[i], f.Name) {
			t.Fatalf("%s field %d is %q, want prefix %q", tydef, i, names[i], f.Name)
		}
		CheckAssert(t, prog, fmt.Sprintf("(long int)(&(((%s*)0)->%s))", tydef, names[i]), f.Off)
		CheckAssert(t, prog, fmt.Sprintf("sizeof(((%s*)0)->%s)", tydef, names[i]), f.Len)
	}
	CheckAssert(t, prog, fmt.Sprintf("sizeof(%s)", tydef), size)
}

// Block returns the header definition that opens with "<tydef> {".
func Block(header, tydef string) string {
	start := strings.Index(header, "\n"+tydef+" {\n")
	if start < 0 {
		return ""
	}
	rest := header[start+1:]
	end := strings.Index(rest, "} __attribute__((__packed__));")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

var fieldLine = regexp.MustCompile(`^  .*?([A-Za-z_][A-Za-z0-9_]*)(\[\d+\])?;$`)

// FieldNames lists field names of a definition block in order.
func FieldNames(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if m := fieldLine.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}
