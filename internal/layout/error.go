package layout

import (
	"fmt"
)

// EmitErrorKind tells which output write failed.
type EmitErrorKind uint8

const (
	EmitErrType EmitErrorKind = iota + 1
	EmitErrAssert
)

// EmitError is the only error the engine returns: writing generated output
// failed while processing Index. Processing must stop.
type EmitError struct {
	Kind  EmitErrorKind
	Index TypeIndex
	Err   error
}

func (e *EmitError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case EmitErrType:
		return fmt.Sprintf("writing definition of type %s: %v", e.Index, e.Err)
	case EmitErrAssert:
		return fmt.Sprintf("writing checks of type %s: %v", e.Index, e.Err)
	default:
		return fmt.Sprintf("emit error kind=%d type %s: %v", e.Kind, e.Index, e.Err)
	}
}

func (e *EmitError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func emitErr(kind EmitErrorKind, idx TypeIndex, err error) error {
	if err == nil {
		return nil
	}
	return &EmitError{Kind: kind, Index: idx, Err: err}
}
