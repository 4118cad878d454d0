// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// position is a cursor into the block chain: a packed index and the block
// containing the slot the index addresses.
type position[T any] struct {
	index atomix.Uint64
	block atomic.Pointer[block[T]]
}

func (p *position[T]) load() (index, *block[T]) {
	return index(p.index.LoadAcquire()), p.block.Load()
}

// SegQueue is an unbounded lock-free multi-producer multi-consumer FIFO queue.
//
// Elements live in a linked chain of fixed-size blocks. Producers claim
// slots by CAS on the tail index and link a new block when the current one
// fills; consumers claim slots by CAS on the head index and retire a block
// once every slot in it has been read. No operation takes a lock.
//
// Push never fails. Pop never blocks, but may spin briefly when it claims a
// slot whose producer has not finished publishing the value. A producer that
// stops between claiming a slot and publishing (for example, a goroutine
// that panics inside Push) stalls the consumer of that slot.
//
// The zero value is an empty queue ready to use. A SegQueue must not be
// copied after first use.
//
// Memory: one block of 31 slots per 31 elements, allocated lazily. Retired
// blocks are cached for reuse unless disabled with Builder.NoRecycle.
type SegQueue[T any] struct {
	head    CachePadded[position[T]]
	tail    CachePadded[position[T]]
	sealed  atomix.Bool
	release func(T)
	r       reclaimer[T]
}

// NewSegQueue creates an empty queue with block recycling enabled.
// No memory beyond the queue header is allocated until the first Push.
func NewSegQueue[T any]() *SegQueue[T] {
	return &SegQueue[T]{}
}

// Push appends v to the tail of the queue. It always succeeds.
//
// Panics if the queue has been sealed by Drain or Dispose.
func (q *SegQueue[T]) Push(v T) {
	q.checkSealed()

	tail := q.tail.Ptr()
	b := Backoff{}
	idx, blk := tail.load()
	var spare *block[T]

	for {
		if idx.rolling() {
			// Another producer is linking the next block.
			b.Snooze()
			idx, blk = tail.load()
			continue
		}

		// Allocate the successor before claiming the last slot so the
		// window in which the tail sits on the phantom slot stays short.
		if idx.lastSlot() && spare == nil {
			spare = q.r.get()
		}

		if blk == nil {
			first := q.r.get()
			if tail.block.CompareAndSwap(nil, first) {
				q.head.Ptr().block.Store(first)
				blk = first
			} else {
				if spare != nil {
					q.r.put(spare)
				}
				spare = first
				idx, blk = tail.load()
				continue
			}
		}

		next := idx.advance(1)
		if tail.index.CompareAndSwapAcqRel(uint64(idx), uint64(next)) {
			if idx.lastSlot() {
				tail.block.Store(spare)
				tail.index.StoreRelease(uint64(next.advance(1)))
				blk.next.Store(spare)
				spare = nil
			}

			blk.slots[idx.offset()].publish(v)

			if spare != nil {
				q.r.put(spare)
			}
			return
		}

		b.Spin()
		idx, blk = tail.load()
	}
}

// Pop removes and returns the element at the head of the queue.
// Returns (zero-value, false) if the queue is empty.
//
// Panics if the queue has been sealed by Drain or Dispose.
func (q *SegQueue[T]) Pop() (T, bool) {
	q.checkSealed()

	head := q.head.Ptr()
	b := Backoff{}
	idx, blk := head.load()

	for {
		if idx.rolling() {
			// Another consumer is moving the head into the next block.
			b.Snooze()
			idx, blk = head.load()
			continue
		}

		next := idx.advance(1)

		if !next.hasNext() {
			// Full fence: the tail must be read after the head, or a
			// concurrent push can be missed.
			atomix.BarrierAcqRel()
			tail := index(q.tail.Ptr().index.LoadAcquire())
			if idx.sameSlot(tail) {
				var zero T
				return zero, false
			}
			// Tail is in a later block, so this block's successor is
			// linked or about to be; later consumers can skip this check.
			if !idx.sameLap(tail) {
				next = next.withNext()
			}
		}

		if blk == nil {
			// The first block is still being installed.
			b.Snooze()
			idx, blk = head.load()
			continue
		}

		if head.index.CompareAndSwapAcqRel(uint64(idx), uint64(next)) {
			if idx.lastSlot() {
				succ := blk.waitNext()
				succIdx := next.stripped().advance(1)
				if succ.next.Load() != nil {
					succIdx = succIdx.withNext()
				}
				head.block.Store(succ)
				head.index.StoreRelease(uint64(succIdx))
			}

			off := idx.offset()
			s := &blk.slots[off]
			s.waitWrite()
			v := s.take()

			if idx.lastSlot() {
				blk.destroy(0, &q.r)
			} else if s.mark(stateRead)&stateDestroy != 0 {
				blk.destroy(int(off)+1, &q.r)
			}
			return v, true
		}

		b.Spin()
		idx, blk = head.load()
	}
}

// Enqueue adds a copy of *elem to the queue. It always returns nil.
// Enqueue lets SegQueue serve as a Producer alongside other queues.
func (q *SegQueue[T]) Enqueue(elem *T) error {
	q.Push(*elem)
	return nil
}

// Dequeue removes and returns an element from the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *SegQueue[T]) Dequeue() (T, error) {
	v, ok := q.Pop()
	if !ok {
		return v, ErrWouldBlock
	}
	return v, nil
}

// IsEmpty reports whether the queue was empty at the moment of the call.
//
// The result is a snapshot and may be stale by the time it is used when
// other goroutines push or pop concurrently.
func (q *SegQueue[T]) IsEmpty() bool {
	head := index(q.head.Ptr().index.LoadAcquire())
	atomix.BarrierAcqRel()
	tail := index(q.tail.Ptr().index.LoadAcquire())
	return head.sameSlot(tail)
}

// Len returns the number of elements in the queue.
//
// Len takes a consistent snapshot of head and tail but is not linearizable
// with concurrent Push and Pop. Callers needing exact counts under
// concurrency should track them in application logic.
func (q *SegQueue[T]) Len() int {
	head, tail := &q.head.Ptr().index, &q.tail.Ptr().index
	for {
		t := tail.LoadAcquire()
		atomix.BarrierAcqRel()
		h := head.LoadAcquire()
		atomix.BarrierAcqRel()

		// Retry if the tail moved while the head was read.
		if tail.LoadAcquire() == t {
			return distance(index(h), index(t))
		}
	}
}

// Stats returns block lifecycle counters.
func (q *SegQueue[T]) Stats() Stats {
	return q.r.stats()
}

func (q *SegQueue[T]) checkSealed() {
	if q.sealed.LoadAcquire() {
		panic("segq: use of sealed queue")
	}
}
