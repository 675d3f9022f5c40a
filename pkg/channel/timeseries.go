package channel

import (
	"time"

	"firestige.xyz/nodo/pkg/core"
)

// FindCriteria selects how a time-series search resolves.
type FindCriteria int

const (
	// FindEarliest finds the first sample which matches the criteria.
	FindEarliest FindCriteria = iota

	// FindLatest finds the last sample which does not match the criteria.
	FindLatest
)

// TimeSeries is a read-only view over the synced messages of a receiver,
// projecting one of the two stamps next to the payload.
//
// The view is finite (it covers the current front stage), restartable, and
// assumes samples are ordered by monotonically increasing timestamp. The
// ordering is a producer invariant, not enforced here; FindByTime and
// Interpolate are undefined when it does not hold.
type TimeSeries[T any] struct {
	rx   *Rx[core.Message[T]]
	kind core.TimestampKind
}

// AcqTimeSeries views a receiver by acquisition time.
func AcqTimeSeries[T any](rx *Rx[core.Message[T]]) TimeSeries[T] {
	return TimeSeries[T]{rx: rx, kind: core.TimestampAcq}
}

// PubTimeSeries views a receiver by publish time.
func PubTimeSeries[T any](rx *Rx[core.Message[T]]) TimeSeries[T] {
	return TimeSeries[T]{rx: rx, kind: core.TimestampPub}
}

// Len is the number of samples in the series.
func (s TimeSeries[T]) Len() int { return s.rx.Len() }

// At returns the idx-th sample.
func (s TimeSeries[T]) At(idx int) (time.Duration, T) {
	msg := s.rx.At(idx)
	return msg.Stamp.At(s.kind), msg.Value
}

// LatestTime is the timestamp of the newest sample.
func (s TimeSeries[T]) LatestTime() (time.Duration, bool) {
	n := s.Len()
	if n == 0 {
		return 0, false
	}
	t, _ := s.At(n - 1)
	return t, true
}

// FindIndexBy locates a sample index by a predicate under the given
// criteria. It returns -1 when no sample qualifies.
func (s TimeSeries[T]) FindIndexBy(criteria FindCriteria, f func(time.Duration, T) bool) int {
	n := s.Len()
	switch criteria {
	case FindEarliest:
		for i := 0; i < n; i++ {
			if t, v := s.At(i); f(t, v) {
				return i
			}
		}
		return -1
	default:
		idx := -1
		for i := 0; i < n; i++ {
			if t, v := s.At(i); f(t, v) {
				break
			}
			idx = i
		}
		return idx
	}
}

// FindIndexByTime locates a sample index relative to the given time: with
// FindEarliest the first sample at or after t, with FindLatest the last
// sample strictly before t.
func (s TimeSeries[T]) FindIndexByTime(criteria FindCriteria, t time.Duration) int {
	return s.FindIndexBy(criteria, func(st time.Duration, _ T) bool { return st >= t })
}

// FindByTime resolves FindIndexByTime into a sample.
func (s TimeSeries[T]) FindByTime(criteria FindCriteria, t time.Duration) (time.Duration, T, bool) {
	idx := s.FindIndexByTime(criteria, t)
	if idx < 0 {
		var zero T
		return 0, zero, false
	}
	st, v := s.At(idx)
	return st, v, true
}

// Interpolate blends the two samples bracketing the target time with the
// given interpolation function. f receives the blend factor in [0, 1] and
// the two payloads. Timestamps are assumed to be monotonically increasing.
func (s TimeSeries[T]) Interpolate(t time.Duration, f func(p float64, a, b T) T) (T, bool) {
	var zero T

	// find i s.t. sample[i].time < t <= sample[i+1].time
	idx := s.FindIndexByTime(FindLatest, t)
	if idx < 0 || idx+1 >= s.Len() {
		return zero, false
	}

	ta, va := s.At(idx)
	tb, vb := s.At(idx + 1)

	p := float64(t-ta) / float64(tb-ta)
	return f(p, va, vb), true
}
