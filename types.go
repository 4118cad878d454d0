// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

// Queue is the combined producer-consumer interface for an unbounded FIFO
// queue.
//
// Enqueue never reports backpressure; Dequeue returns ErrWouldBlock when the
// queue is empty.
//
// Example:
//
//	var q segq.Queue[int] = segq.NewSegQueue[int]()
//
//	val := 42
//	q.Enqueue(&val)
//
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Sizer
}

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs on the
// call. The queue stores a copy of the pointed-to value, so the original can
// be modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the queue (non-blocking).
	// Unbounded queues always return nil.
	Enqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value and the slot it occupied is cleared to
// allow garbage collection of referenced objects.
type Consumer[T any] interface {
	// Dequeue removes and returns an element from the queue (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)
}

// Sizer reports queue occupancy.
//
// Both methods return snapshots that are not linearizable with concurrent
// producers and consumers. Use them for monitoring and heuristics, not for
// control flow that must be exact.
type Sizer interface {
	// Len returns the number of queued elements.
	Len() int
	// IsEmpty reports whether no element is queued.
	IsEmpty() bool
}

// Disposer releases the elements still queued at teardown.
//
// Dispose requires exclusive access: every goroutine using the queue must
// have returned. See SegQueue.Dispose.
type Disposer[T any] interface {
	Dispose(release func(T)) int
}

var (
	_ Queue[int]    = (*SegQueue[int])(nil)
	_ Disposer[int] = (*SegQueue[int])(nil)
)
