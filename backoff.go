// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

import (
	"runtime"

	"code.hybscloud.com/spin"
)

const (
	spinLimit  = 6
	yieldLimit = 10
)

// Backoff performs exponential backoff inside lock-free retry loops.
//
// The zero value is ready to use. A Backoff is owned by a single retry loop
// and must not be shared between goroutines.
//
// Use Spin when a CAS failed because another goroutine made progress, and
// Snooze when waiting for another goroutine to finish a step it has already
// committed to (for example, publishing a value into a claimed slot).
//
// Example:
//
//	var b segq.Backoff
//	for !ready.LoadAcquire() {
//	    b.Snooze()
//	}
type Backoff struct {
	step uint32
}

// Reset returns the backoff to its initial state.
func (b *Backoff) Reset() {
	b.step = 0
}

// Spin issues 2^min(step, 6) CPU pause hints and advances the step counter
// up to the spin limit. It never yields the processor.
func (b *Backoff) Spin() {
	spin.Pause(1 << min(b.step, spinLimit))
	if b.step <= spinLimit {
		b.step++
	}
}

// Snooze spins like Spin until the spin limit is exceeded, then yields the
// processor to other goroutines. The step counter advances up to the yield
// limit.
func (b *Backoff) Snooze() {
	if b.step <= spinLimit {
		spin.Pause(1 << b.step)
	} else {
		runtime.Gosched()
	}
	if b.step <= yieldLimit {
		b.step++
	}
}

// IsCompleted reports whether the backoff has reached the yield limit.
// Callers blocking on an external condition may use this as the point to
// switch to a parking primitive.
func (b *Backoff) IsCompleted() bool {
	return b.step > yieldLimit
}
