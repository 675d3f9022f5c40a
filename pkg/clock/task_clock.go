package clock

import "time"

// TaskClock wraps a clock for a single codelet instance. It tracks the time
// at which the current step started and the delta since the previous step.
type TaskClock struct {
	clock Clock
	last  time.Duration
	dt    time.Duration
}

func NewTaskClock(c Clock) *TaskClock {
	return &TaskClock{clock: c, last: c.Now()}
}

// Start resets the step time to now. Called when the codelet starts.
func (t *TaskClock) Start() {
	t.last = t.clock.Now()
	t.dt = 0
}

// Step advances the step time and records the delta since the previous step.
func (t *TaskClock) Step() {
	now := t.clock.Now()
	t.dt = now - t.last
	t.last = now
}

// StepTime is the time at which the current step started. It stays constant
// throughout a start/step/stop hook. Use RealTime for a continuously
// updating time.
func (t *TaskClock) StepTime() time.Duration { return t.last }

// RealTime is the current time of the underlying clock. It changes during
// hooks; use StepTime for a timestep which remains constant.
func (t *TaskClock) RealTime() time.Duration { return t.clock.Now() }

// DT is the time elapsed between the previous step and the current one.
func (t *TaskClock) DT() time.Duration { return t.dt }

// TaskClocks bundles the per-task wrappers over the application and system
// clocks. One TaskClocks is handed to each instance at setup.
type TaskClocks struct {
	App *TaskClock
	Sys *TaskClock
}

func NewTaskClocks(clocks Clocks) *TaskClocks {
	return &TaskClocks{
		App: NewTaskClock(clocks.App),
		Sys: NewTaskClock(clocks.Sys),
	}
}

// OnCodeletStart pins both step times to now.
func (t *TaskClocks) OnCodeletStart() {
	t.App.Start()
	t.Sys.Start()
}

// OnCodeletStep advances both step times.
func (t *TaskClocks) OnCodeletStep() {
	t.App.Step()
	t.Sys.Step()
}

// OnCodeletStop advances both step times so stop hooks observe a current
// step time.
func (t *TaskClocks) OnCodeletStop() {
	t.App.Step()
	t.Sys.Step()
}
