// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

// Options configures queue creation.
type Options struct {
	// Block recycling
	noRecycle bool
	spares    int // free list capacity (rounds up to next power of 2)
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Default: block recycling enabled
//	q := segq.Build[Event](segq.New())
//
//	// Bursty producers: keep more retired blocks for reuse
//	q := segq.Build[Event](segq.New().Spares(256))
//
//	// Let the garbage collector reclaim retired blocks
//	q := segq.Build[*Request](segq.New().NoRecycle())
//
//	// Close pooled connections still queued at shutdown
//	q := segq.BuildWithRelease(segq.New(), func(c net.Conn) { c.Close() })
//	defer q.Dispose(nil)
type Builder struct {
	opts Options
}

// New creates a queue builder with default options.
func New() *Builder {
	return &Builder{}
}

// Spares sets how many retired blocks are cached for reuse by later pushes.
// Capacity rounds up to the next power of 2; the default is 16.
//
// Panics if n < 1.
func (b *Builder) Spares(n int) *Builder {
	if n < 1 {
		panic("segq: spares must be >= 1")
	}
	b.opts.spares = n
	b.opts.noRecycle = false
	return b
}

// NoRecycle disables block caching. Retired blocks are left to the garbage
// collector instead of being reset and reused by later pushes.
//
// Trade-off: lower steady-state memory for queues that grow once and then
// stay short, at the cost of one allocation per 31 pushes.
func (b *Builder) NoRecycle() *Builder {
	b.opts.noRecycle = true
	return b
}

// Build creates an empty SegQueue with the configured options.
func Build[T any](b *Builder) *SegQueue[T] {
	q := &SegQueue[T]{}
	q.r.noRecycle = b.opts.noRecycle
	q.r.spares = b.opts.spares
	return q
}

// BuildWithRelease creates an empty SegQueue whose Dispose(nil) passes every
// remaining element to release.
//
// Panics if release is nil.
func BuildWithRelease[T any](b *Builder, release func(T)) *SegQueue[T] {
	if release == nil {
		panic("segq: BuildWithRelease requires a release function")
	}
	q := Build[T](b)
	q.release = release
	return q
}
