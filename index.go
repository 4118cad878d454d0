// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

// Index layout (one machine word per position):
//
//	bit 0      hasNext flag: the block addressed by this index already has
//	           a successor linked, so consumers may skip the emptiness check
//	bits 1..63 slot counter = lap*lapSize + offset
//
// offset is the slot position inside a block. Offsets 0..blockCap-1 hold
// data; offset blockCap is a phantom slot whose index value means "the block
// is being rolled over" and is never claimed.
const (
	lapSize  = 32
	blockCap = lapSize - 1
	shift    = 1
	hasNext  = 1

	// one is the increment that moves an index by one slot.
	one = 1 << shift
)

// index is a packed position index. All shift and modulo arithmetic on
// position indices lives in this file.
type index uint64

// offset returns the slot position within the current block.
func (i index) offset() uint64 {
	return (uint64(i) >> shift) % lapSize
}

// lap returns the number of whole laps the counter has completed.
func (i index) lap() uint64 {
	return (uint64(i) >> shift) / lapSize
}

// counter returns the slot counter with the flag bits removed.
func (i index) counter() uint64 {
	return uint64(i) >> shift
}

func (i index) hasNext() bool {
	return i&hasNext != 0
}

func (i index) withNext() index {
	return i | hasNext
}

// stripped clears the flag bits.
func (i index) stripped() index {
	return i &^ (one - 1)
}

// advance moves the counter forward by n slots, keeping the flag bits.
func (i index) advance(n uint64) index {
	return i + index(n<<shift)
}

// sameSlot reports whether both indices address the same slot counter.
func (i index) sameSlot(o index) bool {
	return i.counter() == o.counter()
}

// sameLap reports whether both indices fall in the same lap.
func (i index) sameLap(o index) bool {
	return i.lap() == o.lap()
}

// lastSlot reports whether the index addresses the last data slot of a block.
func (i index) lastSlot() bool {
	return i.offset()+1 == blockCap
}

// rolling reports whether the index sits on the phantom slot, meaning
// another goroutine is linking or entering the next block.
func (i index) rolling() bool {
	return i.offset() == blockCap
}

// distance returns the number of data slots between head and tail,
// discounting the phantom slot of every block crossed.
func distance(head, tail index) int {
	tail = tail.stripped()
	head = head.stripped()

	// An index parked on the phantom slot counts as the start of the next block.
	if tail.rolling() {
		tail = tail.advance(1)
	}
	if head.rolling() {
		head = head.advance(1)
	}

	// Rebase both onto head's lap so tail's lap count equals blocks crossed.
	base := head.lap() * lapSize
	t := tail.counter() - base
	h := head.counter() - base

	return int(t - h - t/lapSize)
}
