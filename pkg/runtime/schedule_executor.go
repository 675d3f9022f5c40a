package runtime

import (
	"fmt"
	"time"

	"go.uber.org/multierr"

	"firestige.xyz/nodo/pkg/clock"
	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
	"firestige.xyz/nodo/pkg/inspector"
	"firestige.xyz/nodo/pkg/log"
)

// sequenceExec drives the members of one sequence through the same
// transition. A member failure does not stop its siblings: the whole
// sequence stays observable and the failures are collected into one error.
type sequenceExec struct {
	name  string
	items []*StateMachine
	vises []*codelet.Vise
}

func newSequenceExec(seq *codelet.Sequence) *sequenceExec {
	e := &sequenceExec{name: seq.Name}
	for _, in := range seq.Instances {
		vise := codelet.NewVise(in)
		e.vises = append(e.vises, vise)
		e.items = append(e.items, NewStateMachine(vise))
	}
	return e
}

func (e *sequenceExec) setup(workerID int, counter *int, clocks clock.Clocks) {
	for _, vise := range e.vises {
		vise.Setup(codelet.ID{Worker: workerID, Index: *counter}, clock.NewTaskClocks(clocks))
		*counter++
	}
}

func (e *sequenceExec) Cycle(transition codelet.Transition) (core.DefaultStatus, error) {
	var failures error
	anyRunning := false

	for i, sm := range e.items {
		status, err := sm.Transition(transition)
		if err != nil {
			failures = multierr.Append(failures,
				fmt.Errorf("%q: %w", e.vises[i].Name(), err))
			continue
		}
		if status == core.Running {
			anyRunning = true
		}
	}

	if failures != nil {
		return core.Skipped, failures
	}
	if anyRunning {
		return core.Running, nil
	}
	return core.Skipped, nil
}

func (e *sequenceExec) report() *inspector.Report {
	report := inspector.NewReport()
	for _, vise := range e.vises {
		entry := inspector.CodeletReport{
			Sequence:   e.name,
			Name:       vise.Name(),
			TypeName:   vise.TypeName(),
			Statistics: *vise.Statistics(),
		}
		if label, simplified, ok := vise.Status(); ok {
			entry.Status = &inspector.RenderedStatus{Label: label, Status: simplified}
		}
		report.Push(entry)
	}
	return report
}

// sequenceGroupExec executes a group of sequences one after another. The
// group runs as long as any member runs.
type sequenceGroupExec struct {
	items []*sequenceExec
}

func newSequenceGroupExec(seqs []*codelet.Sequence) *sequenceGroupExec {
	g := &sequenceGroupExec{}
	for _, seq := range seqs {
		g.items = append(g.items, newSequenceExec(seq))
	}
	return g
}

func (g *sequenceGroupExec) setup(workerID int, clocks clock.Clocks) {
	counter := 0
	for _, item := range g.items {
		item.setup(workerID, &counter, clocks)
	}
}

func (g *sequenceGroupExec) Cycle(transition codelet.Transition) (core.DefaultStatus, error) {
	var failures error
	anyRunning := false

	// a failing sequence does not starve the ones after it: the forced Stop
	// after an error must still reach every healthy member
	for _, item := range g.items {
		status, err := item.Cycle(transition)
		if err != nil {
			failures = multierr.Append(failures, err)
			continue
		}
		if status == core.Running {
			anyRunning = true
		}
	}

	if failures != nil {
		return core.Skipped, failures
	}
	if anyRunning {
		return core.Running, nil
	}
	return core.Skipped, nil
}

func (g *sequenceGroupExec) report() *inspector.Report {
	report := inspector.NewReport()
	for _, item := range g.items {
		report.Extend(item.report())
	}
	return report
}

// ScheduleExecutor owns the next-transition decision of one schedule. Spin
// executes one transition and advances; an execution failure reroutes the
// schedule to Stop.
//
// Legality of transitions per member is enforced by the per-member state
// machines. The schedule itself only tracks its coarse state so the forced
// Stop after a member failure still reaches the healthy members.
type ScheduleExecutor struct {
	name           string
	workerID       int
	state          State
	group          *sequenceGroupExec
	hasNext        bool
	next           codelet.Transition
	maxStepCount   int
	numSteps       int
	period         time.Duration
	lastInstant    time.Time
	hasLastInstant bool
}

// NewScheduleExecutor turns a built schedule into an executor.
func NewScheduleExecutor(builder *codelet.ScheduleBuilder) *ScheduleExecutor {
	group := newSequenceGroupExec(builder.Sequences)
	return &ScheduleExecutor{
		name:         builder.Name,
		workerID:     builder.WorkerID,
		state:        Inactive,
		group:        group,
		hasNext:      true,
		next:         codelet.Start,
		maxStepCount: builder.MaxStepCount,
		period:       builder.Period,
	}
}

func (s *ScheduleExecutor) Name() string { return s.name }

func (s *ScheduleExecutor) WorkerID() int { return s.workerID }

// Period between spins; zero means free-running.
func (s *ScheduleExecutor) Period() time.Duration { return s.period }

// LastInstant is the begin time of the most recent spin.
func (s *ScheduleExecutor) LastInstant() (time.Time, bool) {
	return s.lastInstant, s.hasLastInstant
}

// IsTerminated reports whether no further transition is pending.
func (s *ScheduleExecutor) IsTerminated() bool { return !s.hasNext }

// NumSteps is the number of Step transitions selected so far.
func (s *ScheduleExecutor) NumSteps() int { return s.numSteps }

func (s *ScheduleExecutor) setup(workerID int, clocks clock.Clocks) {
	s.workerID = workerID
	s.group.setup(workerID, clocks)
}

// Spin executes the pending transition and decides the next one.
func (s *ScheduleExecutor) Spin() {
	s.lastInstant = time.Now()
	s.hasLastInstant = true

	if !s.hasNext {
		return
	}

	if s.maxStepCount > 0 && s.numSteps >= s.maxStepCount {
		s.next = codelet.Stop
	}

	transition := s.next
	if transition == codelet.Step {
		s.numSteps++
	}

	next, ok := s.state.Next(transition)
	if !ok {
		log.GetLogger().Errorf("schedule %q: %v", s.name,
			&InvalidTransitionError{State: s.state, Transition: transition})
		if transition == codelet.Stop {
			s.hasNext = false
		} else {
			s.next = codelet.Stop
		}
		return
	}
	s.state = next

	if _, err := s.group.Cycle(transition); err != nil {
		logger := log.GetLogger()
		logger.Errorf("schedule %q error: %v", s.name, err)
		logger.Infof("stopping schedule %q", s.name)

		if transition == codelet.Stop {
			s.hasNext = false
		} else {
			s.next = codelet.Stop
		}
		return
	}

	switch transition {
	case codelet.Start, codelet.Step, codelet.Resume:
		s.next = codelet.Step
	case codelet.Pause, codelet.Stop:
		s.hasNext = false
	}
}

// Finalize runs a final Stop if the schedule state still admits one.
func (s *ScheduleExecutor) Finalize() {
	if next, ok := s.state.Next(codelet.Stop); ok {
		if _, err := s.group.Cycle(codelet.Stop); err != nil {
			log.GetLogger().Errorf("schedule %q failed to stop: %v", s.name, err)
		}
		s.state = next
		s.hasNext = false
	}
}

// Report snapshots identity, status and statistics of every instance.
func (s *ScheduleExecutor) Report() *inspector.Report {
	return s.group.report()
}
