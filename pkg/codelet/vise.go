package codelet

import (
	"firestige.xyz/nodo/pkg/clock"
	"firestige.xyz/nodo/pkg/core"
	"firestige.xyz/nodo/pkg/metrics"
)

// Vise clamps an instance for the runtime: it times every transition,
// aggregates per-transition statistics and exposes identity and status to
// the inspector.
type Vise struct {
	instance *Instance
	stats    Statistics
}

// NewVise wraps an instance. Wrapping marks the instance as scheduled.
func NewVise(instance *Instance) *Vise {
	instance.MarkScheduled()
	return &Vise{instance: instance}
}

// Name of the wrapped instance.
func (v *Vise) Name() string { return v.instance.Name() }

// TypeName of the wrapped codelet.
func (v *Vise) TypeName() string { return v.instance.TypeName() }

// Status renders the last reported status: its label and simplified form.
// ok is false while no hook has reported a status yet.
func (v *Vise) Status() (label string, simplified core.DefaultStatus, ok bool) {
	status := v.instance.LastStatus()
	if status == nil {
		return "", core.Skipped, false
	}
	return status.Label(), status.Simplified(), true
}

// Setup forwards executor identity and clocks to the instance.
func (v *Vise) Setup(id ID, clocks *clock.TaskClocks) {
	v.instance.Setup(id, clocks)
}

// Statistics of the wrapped instance.
func (v *Vise) Statistics() *Statistics { return &v.stats }

// Cycle applies one lifecycle transition and records its timing. Failed
// transitions count neither as executed nor as skipped.
func (v *Vise) Cycle(transition Transition) (core.DefaultStatus, error) {
	stats := v.stats.At(transition)
	stats.Begin()

	status, err := v.instance.Cycle(transition)
	if err != nil {
		metrics.TransitionFailures.WithLabelValues(v.Name(), transition.String()).Inc()
		return status, err
	}

	skipped := status == core.Skipped
	stats.End(skipped)
	metrics.ObserveTransition(v.Name(), transition.String(), skipped)

	return status, nil
}
