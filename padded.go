// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

import (
	"fmt"

	"golang.org/x/sys/cpu"
)

// CachePadded pads a value so that it does not share a cache line with
// neighbouring fields.
//
// Two independently written atomics on one cache line make every write by
// one core invalidate the line for the other. SegQueue wraps its head and
// tail positions so producers and consumers do not contend on the same line.
type CachePadded[T any] struct {
	_     cpu.CacheLinePad
	Value T
	_     cpu.CacheLinePad
}

// NewCachePadded returns v wrapped in cache line padding.
func NewCachePadded[T any](v T) CachePadded[T] {
	return CachePadded[T]{Value: v}
}

// Get returns a copy of the wrapped value.
func (c *CachePadded[T]) Get() T {
	return c.Value
}

// Set replaces the wrapped value.
func (c *CachePadded[T]) Set(v T) {
	c.Value = v
}

// Ptr returns a pointer to the wrapped value.
func (c *CachePadded[T]) Ptr() *T {
	return &c.Value
}

// String formats the wrapped value with fmt.Sprint.
func (c *CachePadded[T]) String() string {
	return fmt.Sprint(c.Value)
}
