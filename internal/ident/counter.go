// Package ident hands out C identifiers for generated types and fields.
package ident

import (
	"fmt"
	"sync/atomic"
)

// Counter is the run-scoped source of unique numeric suffixes.
// It is created at run start and discarded with the run.
type Counter struct {
	n atomic.Uint64
}

// NewCounter returns a counter starting at zero.
func NewCounter() *Counter { return &Counter{} }

// Next returns the current value and advances the counter.
func (c *Counter) Next() uint64 {
	return c.n.Add(1) - 1
}

// Name appends the next counter value to prefix, e.g. "__padding7".
func (c *Counter) Name(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, c.Next())
}
