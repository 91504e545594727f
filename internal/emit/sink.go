// Package emit writes the generated header and its self-checking program.
package emit

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AssertMacro is the name of the check macro defined by the program prologue.
const AssertMacro = "CLAYOUT_ASSERT_EQ"

const banner = "// Generated by clayout. DO NOT EDIT."

const assertEqDef = `#define ` + AssertMacro + `(a, e) do {    \
    long long actual_ = (long long)(a);    \
    long long expect_ = (long long)(e);    \
    if (actual_ != expect_) {    \
        fprintf(stderr, "ASSERT FAILED! actual: %s, which is %lld; expect: %s, which is %lld\n", #a, actual_, #e, expect_);    \
        abort();    \
    }    \
} while (0)`

// EqAssert is one verification obligation: Expr must evaluate to Want.
type EqAssert struct {
	Expr string
	Want uint64
}

// Sink owns the header and program streams.
type Sink struct {
	h       *bufio.Writer
	c       *bufio.Writer
	closers []io.Closer
	types   int
	asserts int
	closed  bool
}

// Create opens <stem>.h and <stem>.c and writes their prologues.
func Create(stem string) (*Sink, error) {
	if stem == "" {
		return nil, errors.New("empty output path")
	}
	hPath := stem + ".h"
	cPath := stem + ".c"
	if dir := filepath.Dir(stem); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	hf, err := os.Create(hPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", hPath, err)
	}
	cf, err := os.Create(cPath)
	if err != nil {
		_ = hf.Close()
		return nil, fmt.Errorf("failed to create %s: %w", cPath, err)
	}
	s, err := New(hf, cf, filepath.Base(hPath))
	if err != nil {
		_ = hf.Close()
		_ = cf.Close()
		return nil, err
	}
	s.closers = []io.Closer{hf, cf}
	return s, nil
}

// New wraps two writers; headerName is the #include target of the program.
func New(h, c io.Writer, headerName string) (*Sink, error) {
	s := &Sink{h: bufio.NewWriter(h), c: bufio.NewWriter(c)}
	if err := s.prologue(headerName); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sink) prologue(headerName string) error {
	var err error
	hw := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(s.h, format, args...)
		}
	}
	cw := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(s.c, format, args...)
		}
	}
	hw("%s\n", banner)
	hw("#pragma once\n")
	hw("#include <linux/types.h>\n\n")

	cw("%s\n", banner)
	cw("#include <stdio.h>\n")
	cw("#include <stdlib.h>\n")
	cw("#include %q\n\n", headerName)
	cw("%s\n\n", assertEqDef)
	cw("int main() {\n")
	return err
}

// EmitType appends one definition block followed by blank lines.
func (s *Sink) EmitType(lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(s.h, l); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(s.h, "\n\n"); err != nil {
		return err
	}
	s.types++
	return nil
}

// EmitAssert appends a single check followed by a blank line.
func (s *Sink) EmitAssert(expr string, want uint64) error {
	return s.EmitAsserts([]EqAssert{{Expr: expr, Want: want}})
}

// EmitAsserts appends a batch of checks followed by one blank line.
func (s *Sink) EmitAsserts(asserts []EqAssert) error {
	for _, a := range asserts {
		if _, err := fmt.Fprintf(s.c, "  %s(%s, %d);\n", AssertMacro, a.Expr, a.Want); err != nil {
			return err
		}
		s.asserts++
	}
	_, err := io.WriteString(s.c, "\n")
	return err
}

// Stats returns how many definitions and checks were written.
func (s *Sink) Stats() (types, asserts int) { return s.types, s.asserts }

// Close writes the program epilogue, flushes both streams and closes files
// opened by Create. It is safe to call more than once.
func (s *Sink) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_, err := io.WriteString(s.c, "  return 0;\n}\n")
	keep(err)
	keep(s.h.Flush())
	keep(s.c.Flush())
	for _, c := range s.closers {
		keep(c.Close())
	}
	return firstErr
}
