package runtime

import "time"

// nativeAccuracy is the assumed worst-case overshoot of the OS sleep. The
// spin tail never runs longer than this.
const nativeAccuracy = 15 * time.Millisecond

// AccurateSleep sleeps for the given duration with high accuracy.
func AccurateSleep(duration time.Duration) {
	AccurateSleepUntil(time.Now().Add(duration))
}

// AccurateSleepUntil sleeps until the target instant: an OS sleep for all
// but the last ~15 ms, then a spin loop until the deadline. It returns
// immediately when the target has already passed.
func AccurateSleepUntil(target time.Time) {
	if remaining := time.Until(target); remaining > nativeAccuracy {
		time.Sleep(remaining - nativeAccuracy)
	}

	for time.Now().Before(target) {
	}
}
