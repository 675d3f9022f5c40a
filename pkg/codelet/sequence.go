package codelet

import "time"

// Sequence is an ordered list of instances which are driven together by the
// same transition each tick.
type Sequence struct {
	Name string

	// Period is an optional hint for display; the schedule period governs
	// execution.
	Period time.Duration

	Instances []*Instance
}

// NewSequence creates a named sequence over the given instances.
func NewSequence(name string, instances ...*Instance) *Sequence {
	return &Sequence{Name: name, Instances: instances}
}

// With appends instances (builder style).
func (s *Sequence) With(instances ...*Instance) *Sequence {
	s.Instances = append(s.Instances, instances...)
	return s
}
