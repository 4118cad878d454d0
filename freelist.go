// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
	"golang.org/x/sys/cpu"
)

// freeList is a bounded lock-free cache of retired blocks.
//
// It is a CAS-based ring with per-cell sequence numbers: a cell whose
// sequence equals the tail position is free for a put, and a cell whose
// sequence equals the head position + 1 holds a block for a get. The
// sequence check makes the ring ABA-safe across wraparounds.
//
// Retiring goroutines put blocks, pushing goroutines get them. When the ring
// is full, put reports false and the block is left to the garbage collector.
type freeList[T any] struct {
	_     cpu.CacheLinePad
	tail  atomix.Uint64 // put index
	_     cpu.CacheLinePad
	head  atomix.Uint64 // get index
	_     cpu.CacheLinePad
	cells []freeCell[T]
	mask  uint64
}

type freeCell[T any] struct {
	seq atomix.Uint64
	blk *block[T]
}

// newFreeList creates a free list holding up to capacity blocks.
// Capacity rounds up to the next power of 2.
func newFreeList[T any](capacity int) *freeList[T] {
	n := uint64(roundToPow2(capacity))
	f := &freeList[T]{
		cells: make([]freeCell[T], n),
		mask:  n - 1,
	}
	for i := uint64(0); i < n; i++ {
		f.cells[i].seq.StoreRelaxed(i)
	}
	return f
}

// put caches b. Returns false if the list is full.
func (f *freeList[T]) put(b *block[T]) bool {
	sw := spin.Wait{}
	for {
		tail := f.tail.LoadAcquire()
		cell := &f.cells[tail&f.mask]
		seq := cell.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if f.tail.CompareAndSwapAcqRel(tail, tail+1) {
				cell.blk = b
				cell.seq.StoreRelease(tail + 1)
				return true
			}
		} else if diff < 0 {
			return false
		}
		sw.Once()
	}
}

// get takes a cached block. Returns nil if the list is empty.
func (f *freeList[T]) get() *block[T] {
	sw := spin.Wait{}
	for {
		head := f.head.LoadAcquire()
		cell := &f.cells[head&f.mask]
		seq := cell.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if f.head.CompareAndSwapAcqRel(head, head+1) {
				b := cell.blk
				cell.blk = nil
				cell.seq.StoreRelease(head + f.mask + 1)
				return b
			}
		} else if diff < 0 {
			return nil
		}
		sw.Once()
	}
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
