// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/segq"
)

// =============================================================================
// Basic Operations
// =============================================================================

// TestSegQueueBasic pushes 1..5, checks the length, then drains in FIFO order.
func TestSegQueueBasic(t *testing.T) {
	q := segq.NewSegQueue[int]()

	if !q.IsEmpty() {
		t.Fatalf("IsEmpty on new queue: got false, want true")
	}
	if n := q.Len(); n != 0 {
		t.Fatalf("Len on new queue: got %d, want 0", n)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop on new queue: got ok, want empty")
	}

	for i := 1; i <= 5; i++ {
		q.Push(i)
	}
	if n := q.Len(); n != 5 {
		t.Fatalf("Len after 5 pushes: got %d, want 5", n)
	}
	if q.IsEmpty() {
		t.Fatalf("IsEmpty after pushes: got true, want false")
	}

	for want := 1; want <= 5; want++ {
		v, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop(%d): queue empty", want)
		}
		if v != want {
			t.Fatalf("Pop: got %d, want %d", v, want)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop after drain: got ok, want empty")
	}
	if n := q.Len(); n != 0 {
		t.Fatalf("Len after drain: got %d, want 0", n)
	}
	if !q.IsEmpty() {
		t.Fatalf("IsEmpty after drain: got false, want true")
	}
}

// TestSegQueueZeroValue verifies the zero value is a usable empty queue.
func TestSegQueueZeroValue(t *testing.T) {
	var q segq.SegQueue[string]

	if _, ok := q.Pop(); ok {
		t.Fatalf("Pop on zero value: got ok, want empty")
	}
	if st := q.Stats(); st.BlocksAllocated != 0 {
		t.Fatalf("zero value allocated %d blocks before first push", st.BlocksAllocated)
	}

	q.Push("a")
	q.Push("b")
	if v, _ := q.Pop(); v != "a" {
		t.Fatalf("Pop: got %q, want %q", v, "a")
	}
	if v, _ := q.Pop(); v != "b" {
		t.Fatalf("Pop: got %q, want %q", v, "b")
	}
}

// TestSegQueueEnqueueDequeue checks the Queue interface conventions.
func TestSegQueueEnqueueDequeue(t *testing.T) {
	var q segq.Queue[int] = segq.NewSegQueue[int]()

	if _, err := q.Dequeue(); !errors.Is(err, segq.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}

	for i := range 100 {
		v := i + 100
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
		// The queue holds a copy.
		v = -1
	}

	for i := range 100 {
		v, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if v != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, v, i+100)
		}
	}

	_, err := q.Dequeue()
	if !segq.IsWouldBlock(err) || !segq.IsSemantic(err) || !segq.IsNonFailure(err) {
		t.Fatalf("Dequeue on drained: got %v, want semantic ErrWouldBlock", err)
	}
}

// =============================================================================
// Block Boundaries
// =============================================================================

// TestSegQueueBlockBoundary pushes counts around the 31-slot block size and
// verifies order, length and retirement across rollovers.
func TestSegQueueBlockBoundary(t *testing.T) {
	const blockCap = 31

	tests := []struct {
		name  string
		count int
	}{
		{"one", 1},
		{"block-1", blockCap - 1},
		{"block", blockCap},
		{"block+1", blockCap + 1},
		{"2block", 2 * blockCap},
		{"2block+1", 2*blockCap + 1},
		{"many", 10*blockCap + 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := segq.NewSegQueue[int]()
			for i := range tt.count {
				q.Push(i)
				if n := q.Len(); n != i+1 {
					t.Fatalf("Len after push %d: got %d, want %d", i, n, i+1)
				}
			}

			wantBlocks := int64((tt.count + blockCap) / blockCap)
			if st := q.Stats(); st.Live() != wantBlocks {
				t.Fatalf("live blocks: got %d, want %d (%+v)", st.Live(), wantBlocks, st)
			}

			for i := range tt.count {
				v, ok := q.Pop()
				if !ok {
					t.Fatalf("Pop(%d): queue empty", i)
				}
				if v != i {
					t.Fatalf("Pop(%d): got %d", i, v)
				}
				if n := q.Len(); n != tt.count-i-1 {
					t.Fatalf("Len after pop %d: got %d, want %d", i, n, tt.count-i-1)
				}
			}
			if !q.IsEmpty() {
				t.Fatalf("IsEmpty after drain: got false")
			}

			// Only the block under head may remain.
			if st := q.Stats(); st.Live() != 1 {
				t.Fatalf("live blocks after drain: got %d, want 1 (%+v)", st.Live(), st)
			}
		})
	}
}

// TestSegQueueInterleaved alternates pushes and pops so head and tail cross
// many block boundaries while the queue stays short.
func TestSegQueueInterleaved(t *testing.T) {
	q := segq.NewSegQueue[int]()
	next, want := 0, 0

	for round := range 200 {
		for range round%5 + 1 {
			q.Push(next)
			next++
		}
		for range round%3 + 1 {
			v, ok := q.Pop()
			if !ok {
				break
			}
			if v != want {
				t.Fatalf("round %d: got %d, want %d", round, v, want)
			}
			want++
		}
		if n := q.Len(); n != next-want {
			t.Fatalf("round %d: Len got %d, want %d", round, n, next-want)
		}
	}

	for !q.IsEmpty() {
		v, _ := q.Pop()
		if v != want {
			t.Fatalf("tail drain: got %d, want %d", v, want)
		}
		want++
	}
	if want != next {
		t.Fatalf("popped %d values, pushed %d", want, next)
	}
}

// TestSegQueueIsEmptyMatchesPop checks IsEmpty agrees with Pop on a quiescent
// queue.
func TestSegQueueIsEmptyMatchesPop(t *testing.T) {
	q := segq.NewSegQueue[int]()
	for n := range 70 {
		for i := range n {
			q.Push(i)
		}
		for {
			empty := q.IsEmpty()
			_, ok := q.Pop()
			if empty == ok {
				t.Fatalf("n=%d: IsEmpty=%v but Pop ok=%v", n, empty, ok)
			}
			if !ok {
				break
			}
		}
	}
}

// TestSegQueueLarge pushes 1000 items and drains them in order.
func TestSegQueueLarge(t *testing.T) {
	const count = 1000
	q := segq.NewSegQueue[int]()
	for i := range count {
		q.Push(i)
	}
	if n := q.Len(); n != count {
		t.Fatalf("Len: got %d, want %d", n, count)
	}
	for i := range count {
		v, ok := q.Pop()
		if !ok {
			t.Fatalf("queue empty at %d", i)
		}
		if v != i {
			t.Fatalf("Pop: got %d, want %d", v, i)
		}
	}
	if !q.IsEmpty() {
		t.Fatalf("IsEmpty after drain: got false")
	}
}
