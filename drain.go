// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

import "iter"

// Drain seals the queue and returns an iterator over the remaining elements
// in FIFO order. Each element is removed as it is yielded.
//
// Drain requires exclusive access: all goroutines pushing or popping must
// have returned before it is called. Once sealed, Push, Enqueue, Pop and
// Dequeue panic. Stopping the iteration early leaves the rest of the
// elements in the queue, where a later Drain or Dispose picks them up.
//
// Example:
//
//	prodWg.Wait()
//	consWg.Wait()
//	for v := range q.Drain() {
//	    handle(v)
//	}
func (q *SegQueue[T]) Drain() iter.Seq[T] {
	q.sealed.StoreRelease(true)
	return func(yield func(T) bool) {
		for {
			v, ok := q.popExclusive()
			if !ok {
				q.retireHead()
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Dispose seals the queue, passes every remaining element to release in FIFO
// order and retires every remaining block. It returns the number of elements
// released.
//
// If release is nil, the hook installed with BuildWithRelease is used; if
// neither is set the elements are dropped. Dispose requires the same
// exclusive access as Drain and may be called more than once.
func (q *SegQueue[T]) Dispose(release func(T)) int {
	if release == nil {
		release = q.release
	}
	q.sealed.StoreRelease(true)

	n := 0
	for {
		v, ok := q.popExclusive()
		if !ok {
			break
		}
		if release != nil {
			release(v)
		}
		n++
	}

	q.retireHead()
	return n
}

// retireHead retires the block left under head and tail once the queue is
// empty.
func (q *SegQueue[T]) retireHead() {
	head := q.head.Ptr()
	if blk := head.block.Load(); blk != nil {
		head.block.Store(nil)
		q.tail.Ptr().block.Store(nil)
		q.r.put(blk)
	}
}

// popExclusive removes the head element without contention handling.
// The caller must have exclusive access to the queue.
func (q *SegQueue[T]) popExclusive() (T, bool) {
	head := q.head.Ptr()
	idx := index(head.index.LoadRelaxed())
	tail := index(q.tail.Ptr().index.LoadRelaxed())
	if idx.sameSlot(tail) {
		var zero T
		return zero, false
	}

	blk := head.block.Load()
	v := blk.slots[idx.offset()].take()

	if idx.lastSlot() {
		// Skip the phantom slot and step into the successor.
		head.block.Store(blk.next.Load())
		head.index.StoreRelaxed(uint64(idx.advance(2)))
		q.r.put(blk)
	} else {
		head.index.StoreRelaxed(uint64(idx.advance(1)))
	}
	return v, true
}
