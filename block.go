// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// Slot state bits. A zero state means the slot is empty.
const (
	stateWrite   = 1 << iota // value has been published
	stateRead                // value has been taken by a consumer
	stateDestroy             // block retirement was deferred to this slot's reader
)

// slot holds at most one element.
//
// The value field is only read after stateWrite has been observed with
// acquire ordering, and only written by the producer that claimed the slot.
type slot[T any] struct {
	value T
	state atomix.Uint64
}

// publish stores v and releases it to consumers.
func (s *slot[T]) publish(v T) {
	s.value = v
	s.mark(stateWrite)
}

// waitWrite blocks, spinning then yielding, until the producer that claimed
// this slot has published its value.
func (s *slot[T]) waitWrite() {
	b := Backoff{}
	for s.state.LoadAcquire()&stateWrite == 0 {
		b.Snooze()
	}
}

// take moves the value out of the slot, clearing the cell so the referent
// can be collected.
func (s *slot[T]) take() T {
	v := s.value
	var zero T
	s.value = zero
	return v
}

// mark atomically sets bits and returns the previous state.
func (s *slot[T]) mark(bits uint64) uint64 {
	return s.state.OrAcqRel(bits)
}

// block is a fixed run of blockCap slots and the unit of allocation and
// retirement.
//
// A block must start in the all-zero state: nil next and every slot state
// zero. new(block[T]) provides it and reset restores it before a block is
// cached for reuse.
type block[T any] struct {
	next  atomic.Pointer[block[T]]
	slots [blockCap]slot[T]
}

// waitNext spins, then yields, until the producer that rolled the tail over
// has linked the successor block.
func (b *block[T]) waitNext() *block[T] {
	bo := Backoff{}
	for {
		if next := b.next.Load(); next != nil {
			return next
		}
		bo.Snooze()
	}
}

// destroy retires b once every slot from start onwards has been read.
//
// The consumer of the last data slot calls destroy(0). For each earlier slot
// still unread, destroy sets stateDestroy; if the slot's reader has not set
// stateRead yet, that reader inherits the retirement and calls
// destroy(offset+1) after it finishes. Exactly one goroutine completes the
// scan, so the block is retired exactly once.
func (b *block[T]) destroy(start int, r *reclaimer[T]) {
	for i := start; i < blockCap-1; i++ {
		s := &b.slots[i]
		if s.state.LoadAcquire()&stateRead == 0 && s.mark(stateDestroy)&stateRead == 0 {
			return
		}
	}
	r.put(b)
}

// reset returns a retired block to the all-zero state.
// The caller must hold the only reference to b.
func (b *block[T]) reset() {
	var zero T
	b.next.Store(nil)
	for i := range b.slots {
		b.slots[i].value = zero
		b.slots[i].state.StoreRelaxed(0)
	}
}

// Stats counts block lifecycle events of a SegQueue.
type Stats struct {
	// BlocksAllocated is the number of blocks obtained from the Go allocator.
	BlocksAllocated int64
	// BlocksReused is the number of blocks taken from the free list.
	BlocksReused int64
	// BlocksRetired is the number of blocks handed back after every slot
	// was consumed or released, including spare blocks a push allocated
	// but did not need.
	BlocksRetired int64
}

// Live returns the number of blocks currently linked into the queue or
// held as spares by in-flight pushes.
func (s Stats) Live() int64 {
	return s.BlocksAllocated + s.BlocksReused - s.BlocksRetired
}

// defaultSpares is the free list capacity used unless configured otherwise.
const defaultSpares = 16

// reclaimer hands out zeroed blocks and takes back retired ones.
//
// Retired blocks are reset and cached in a free list, created on the first
// retirement, so steady-state pushes reuse them instead of allocating.
type reclaimer[T any] struct {
	free      atomic.Pointer[freeList[T]]
	spares    int
	noRecycle bool
	allocated atomix.Int64
	reused    atomix.Int64
	retired   atomix.Int64
}

func (r *reclaimer[T]) get() *block[T] {
	if f := r.free.Load(); f != nil {
		if b := f.get(); b != nil {
			r.reused.AddAcqRel(1)
			return b
		}
	}
	r.allocated.AddAcqRel(1)
	return new(block[T])
}

// put retires b, which is either fully consumed or was never linked into
// the chain. No goroutine may reference b afterwards.
func (r *reclaimer[T]) put(b *block[T]) {
	r.retired.AddAcqRel(1)
	if r.noRecycle {
		return
	}
	b.reset()
	r.freeList().put(b)
}

// freeList returns the free list, installing it on first use.
func (r *reclaimer[T]) freeList() *freeList[T] {
	if f := r.free.Load(); f != nil {
		return f
	}
	n := r.spares
	if n <= 0 {
		n = defaultSpares
	}
	r.free.CompareAndSwap(nil, newFreeList[T](n))
	return r.free.Load()
}

func (r *reclaimer[T]) stats() Stats {
	return Stats{
		BlocksAllocated: r.allocated.LoadAcquire(),
		BlocksReused:    r.reused.LoadAcquire(),
		BlocksRetired:   r.retired.LoadAcquire(),
	}
}
