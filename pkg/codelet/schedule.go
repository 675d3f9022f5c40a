package codelet

import "time"

// ScheduleBuilder assembles the sequences, period and limits of a schedule
// before it is handed to an executor.
type ScheduleBuilder struct {
	Name         string
	WorkerID     int
	Sequences    []*Sequence
	MaxStepCount int // 0 = unlimited
	Period       time.Duration
}

func NewScheduleBuilder() *ScheduleBuilder {
	return &ScheduleBuilder{}
}

func (b *ScheduleBuilder) WithName(name string) *ScheduleBuilder {
	b.Name = name
	return b
}

func (b *ScheduleBuilder) WithWorkerID(id int) *ScheduleBuilder {
	b.WorkerID = id
	return b
}

func (b *ScheduleBuilder) WithPeriod(period time.Duration) *ScheduleBuilder {
	b.Period = period
	return b
}

// WithMaxStepCount caps the number of Step transitions the schedule selects
// before it reroutes to Stop.
func (b *ScheduleBuilder) WithMaxStepCount(n int) *ScheduleBuilder {
	b.MaxStepCount = n
	return b
}

// With adds each instance as its own unnamed sequence.
func (b *ScheduleBuilder) With(instances ...*Instance) *ScheduleBuilder {
	for _, in := range instances {
		b.Sequences = append(b.Sequences, &Sequence{Instances: []*Instance{in}})
	}
	return b
}

// WithSequence adds a prebuilt sequence.
func (b *ScheduleBuilder) WithSequence(seqs ...*Sequence) *ScheduleBuilder {
	b.Sequences = append(b.Sequences, seqs...)
	return b
}
