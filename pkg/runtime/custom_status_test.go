package runtime_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/nodo/codelets"
	"firestige.xyz/nodo/pkg/channel"
	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
	"firestige.xyz/nodo/pkg/runtime"
)

// pingerStatus carries the number of pings sent so far.
type pingerStatus int

func (pingerStatus) Label() string { return "ping" }

func (pingerStatus) Simplified() core.DefaultStatus { return core.Running }

type pinger struct {
	codelet.Default
	Ping *channel.Tx[ping]

	numSent int
}

func newPinger() *pinger {
	return &pinger{Ping: channel.NewTx[ping](1)}
}

func (p *pinger) TxBundle() channel.TxBundle { return channel.TxStruct(p) }

func (p *pinger) Step(*codelet.Context) (core.Status, error) {
	if err := p.Ping.Push(ping{}); err != nil {
		return nil, err
	}
	p.numSent++
	return pingerStatus(p.numSent), nil
}

func TestCustomStatusInReport(t *testing.T) {
	const steps = 100

	rt := runtime.NewRuntime()

	term := codelets.NewTerminator(steps-1, rt.Control())
	p := newPinger()
	drain := codelets.NewSink(func(ping) error { return nil })
	require.NoError(t, channel.Connect(p.Ping, drain.In))

	rt.AddSchedule(runtime.NewScheduleExecutor(
		codelet.NewScheduleBuilder().
			WithName("pinger").
			WithPeriod(time.Millisecond).
			WithMaxStepCount(steps).
			With(
				codelet.New("terminator", term),
				codelet.New("pinger", p),
				codelet.New("drain", drain),
			),
	))
	rt.Spin()

	report := rt.Executor().Report()
	entry, ok := report.Find("pinger")
	require.True(t, ok)

	require.NotNil(t, entry.Status)
	assert.Equal(t, "ping", entry.Status.Label)
	assert.Equal(t, core.Running, entry.Status.Status)

	step := entry.Statistics.At(codelet.Step)
	assert.Equal(t, uint64(steps), step.Duration.Count)
	assert.Equal(t, uint64(0), step.SkippedCount)
}
