// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package segq

import (
	"testing"
	"time"

	"code.hybscloud.com/spin"
)

func TestBackoffSpinCapsAtSpinLimit(t *testing.T) {
	var b Backoff
	for range 20 {
		b.Spin()
	}
	if b.step != spinLimit+1 {
		t.Fatalf("step after Spin: got %d, want %d", b.step, spinLimit+1)
	}
	if b.IsCompleted() {
		t.Fatalf("Spin alone must not complete the backoff")
	}
}

func TestBackoffSnoozeCompletes(t *testing.T) {
	var b Backoff
	for i := range yieldLimit + 1 {
		if b.IsCompleted() {
			t.Fatalf("completed early after %d snoozes", i)
		}
		b.Snooze()
	}
	if !b.IsCompleted() {
		t.Fatalf("not completed after %d snoozes (step=%d)", yieldLimit+1, b.step)
	}

	// Further snoozes keep yielding without overflowing the counter.
	for range 100 {
		b.Snooze()
	}
	if b.step != yieldLimit+1 {
		t.Fatalf("step after many snoozes: got %d, want %d", b.step, yieldLimit+1)
	}

	b.Reset()
	if b.step != 0 || b.IsCompleted() {
		t.Fatalf("Reset: step=%d completed=%v", b.step, b.IsCompleted())
	}
}

// A saturated Spin issues 2^spinLimit pause hints, so it must cost about the
// same as a direct spin.Pause of that many cycles.
func TestBackoffSpinMatchesPauseBudget(t *testing.T) {
	const rounds = 2000
	best := func(f func()) time.Duration {
		d := time.Duration(1<<63 - 1)
		for range 5 {
			start := time.Now()
			for range rounds {
				f()
			}
			d = min(d, time.Since(start))
		}
		return d
	}

	b := Backoff{step: spinLimit + 1}
	spun := best(b.Spin)
	paused := best(func() { spin.Pause(1 << spinLimit) })
	if spun > 8*paused+time.Millisecond {
		t.Fatalf("saturated Spin: %v per %d calls, spin.Pause(%d): %v", spun, rounds, 1<<spinLimit, paused)
	}
}

func BenchmarkBackoffSpin(b *testing.B) {
	bo := Backoff{step: spinLimit + 1}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bo.Spin()
	}
}
