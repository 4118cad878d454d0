// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package segq provides an unbounded lock-free FIFO queue.
//
// [SegQueue] is a multi-producer multi-consumer queue built from a linked
// chain of fixed-size blocks. Producers and consumers claim slots by CAS on
// packed head and tail indices; blocks are linked as the tail grows and
// retired as the head drains them. No operation takes a lock.
//
// # Quick Start
//
//	q := segq.NewSegQueue[Event]()
//
//	q.Push(ev)            // never fails, never blocks
//	ev, ok := q.Pop()     // ok is false when the queue is empty
//
// The zero value is also ready to use:
//
//	type Conn struct {
//	    outbox segq.SegQueue[[]byte]
//	}
//
// # Queue Interface
//
// SegQueue implements [Queue], which mirrors the non-blocking
// Enqueue/Dequeue convention of the bounded lfq queues. Enqueue always
// succeeds; Dequeue returns [ErrWouldBlock] when the queue is empty:
//
//	var q segq.Queue[Job] = segq.NewSegQueue[Job]()
//
//	backoff := iox.Backoff{}
//	for {
//	    job, err := q.Dequeue()
//	    if segq.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    backoff.Reset()
//	    job.Run()
//	}
//
// The queue itself never parks a goroutine. Consumers that need to sleep
// while the queue is empty layer that on top, with [code.hybscloud.com/iox]
// Backoff, a channel, or a condition variable.
//
// # Block Layout
//
// Each block holds 31 slots. Indices count 32 positions per block (a lap);
// the 32nd position is never used for data and marks a block rollover in
// progress. The low bit of each index is a flag telling consumers that the
// current block already has a successor, which lets them skip the emptiness
// check against the tail.
//
// # Block Retirement
//
// A block is retired once every one of its slots has been read. The consumer
// of the last slot scans the block; any slot whose reader has not finished is
// flagged, and that reader continues the scan when it completes. Exactly one
// goroutine finishes the scan, so retirement happens exactly once and never
// while a reader is still inside the block.
//
// Retired blocks are reset and cached in a small per-queue lock-free free
// list for reuse by later pushes. [Builder.Spares] sizes the free list and
// [Builder.NoRecycle] leaves retired blocks to the garbage collector instead.
// [SegQueue.Stats] reports allocation, reuse and retirement counts.
//
// # Length
//
// [SegQueue.Len] and [SegQueue.IsEmpty] return snapshots. They are exact when
// no goroutine is pushing or popping, and best-effort otherwise.
//
// # Teardown
//
// [SegQueue.Drain] returns an iterator that consumes the remaining elements
// in order. [SegQueue.Dispose] passes each remaining element to a release
// function, for example to close connections or return buffers to a pool:
//
//	prodWg.Wait()
//	consWg.Wait()
//	n := q.Dispose(func(c net.Conn) { c.Close() })
//
// Both require exclusive access and seal the queue: any later Push, Pop,
// Enqueue or Dequeue panics.
//
// # Race Detection
//
// Go's race detector cannot observe happens-before relationships
// established through atomix memory orderings on separate variables. Slot
// values are published by a release store on the slot state and read after
// an acquire load of it, which the detector reports as a race. Concurrent
// tests are skipped when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, [code.hybscloud.com/spin] for CPU pause instructions,
// and [golang.org/x/sys/cpu] for cache line padding.
package segq
