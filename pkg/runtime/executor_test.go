package runtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
	"firestige.xyz/nodo/pkg/runtime"
)

type spinner struct {
	codelet.Default
	steps int
}

func (s *spinner) Step(*codelet.Context) (core.Status, error) {
	s.steps++
	return core.Running, nil
}

func freeRunningSchedule(name string, c codelet.Codelet) *runtime.ScheduleExecutor {
	return runtime.NewScheduleExecutor(
		codelet.NewScheduleBuilder().
			WithName(name).
			WithPeriod(time.Millisecond).
			With(codelet.New(name+"-codelet", c)),
	)
}

func TestExecutorStopAndJoin(t *testing.T) {
	exec := runtime.NewExecutor()
	s1 := &spinner{}
	s2 := &spinner{}
	exec.Push(freeRunningSchedule("one", s1))
	exec.Push(freeRunningSchedule("two", s2))

	assert.False(t, exec.IsFinished())

	time.Sleep(20 * time.Millisecond)
	exec.RequestStop()
	exec.Join()

	assert.True(t, exec.IsFinished())
	assert.Greater(t, s1.steps, 0)
	assert.Greater(t, s2.steps, 0)

	// after join the final reports of both workers are aggregated
	report := exec.Report()
	require.Equal(t, 2, report.Len())
	_, ok := report.Find("one-codelet")
	assert.True(t, ok)
	_, ok = report.Find("two-codelet")
	assert.True(t, ok)
}

func TestExecutorLiveReportIsBestEffort(t *testing.T) {
	exec := runtime.NewExecutor()
	exec.Push(freeRunningSchedule("live", &spinner{}))

	// the first call only requests a report; a later call drains it
	deadline := time.Now().Add(time.Second)
	found := false
	for time.Now().Before(deadline) {
		report := exec.Report()
		if _, ok := report.Find("live-codelet"); ok {
			found = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, found, "no live report before deadline")

	exec.RequestStop()
	exec.Join()
}

func TestMaxStepCapBoundsSuccessfulSteps(t *testing.T) {
	const cap = 25

	exec := runtime.NewExecutor()
	s := &spinner{}
	exec.Push(runtime.NewScheduleExecutor(
		codelet.NewScheduleBuilder().
			WithName("bounded").
			WithPeriod(100 * time.Microsecond).
			WithMaxStepCount(cap).
			With(codelet.New("bounded-codelet", s)),
	))
	exec.Join()

	assert.Equal(t, cap, s.steps)
}
