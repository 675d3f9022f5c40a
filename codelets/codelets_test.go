package codelets_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/nodo/codelets"
	"firestige.xyz/nodo/pkg/channel"
	"firestige.xyz/nodo/pkg/clock"
	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
	"firestige.xyz/nodo/pkg/runtime"
)

func drive(t *testing.T, c codelet.Codelet, transitions ...codelet.Transition) {
	t.Helper()
	in := codelet.New(t.Name(), c)
	in.Setup(codelet.ID{}, clock.NewTaskClocks(clock.NewClocks()))
	in.MarkScheduled()
	for _, tr := range transitions {
		_, err := in.Cycle(tr)
		require.NoError(t, err, "transition %s", tr)
	}
}

func TestSourceFeedsSink(t *testing.T) {
	n := 0
	source := codelets.NewSource(func() int { n++; return n })

	var got []int
	sink := codelets.NewSink(func(v int) error {
		got = append(got, v)
		return nil
	})
	require.NoError(t, channel.Connect(source.Out, sink.In))

	drive(t, sink, codelet.Start)
	drive(t, source, codelet.Start, codelet.Step, codelet.Step)
	drive(t, sink, codelet.Step)

	assert.Equal(t, []int{1, 2}, got)
}

func TestSinkSkipsWithoutInput(t *testing.T) {
	sink := codelets.NewSink(func(int) error { return nil })
	feed := channel.NewTx[int](1)
	require.NoError(t, channel.Connect(feed, sink.In))

	in := codelet.New("sink", sink)
	in.Setup(codelet.ID{}, clock.NewTaskClocks(clock.NewClocks()))
	in.MarkScheduled()

	status, err := in.Cycle(codelet.Step)
	require.NoError(t, err)
	assert.Equal(t, core.Skipped, status)
}

func TestSinkPropagatesCallbackError(t *testing.T) {
	boom := errors.New("boom")
	sink := codelets.NewSink(func(int) error { return boom })
	feed := channel.NewTx[int](1)
	require.NoError(t, channel.Connect(feed, sink.In))

	in := codelet.New("sink", sink)
	in.Setup(codelet.ID{}, clock.NewTaskClocks(clock.NewClocks()))
	in.MarkScheduled()

	require.NoError(t, feed.Push(1))
	feed.Flush()

	_, err := in.Cycle(codelet.Step)
	assert.ErrorIs(t, err, boom)
}

func TestPipeOneToOne(t *testing.T) {
	pipe := codelets.NewPipe(codelets.PipeOneToOne, func(v int) int { return v * 2 })
	feed := channel.NewTx[int](1)
	out := channel.NewRx[int](channel.Reject(1), channel.Drop)
	require.NoError(t, channel.Connect(feed, pipe.In))
	require.NoError(t, channel.Connect(pipe.Out, out))

	in := codelet.New("pipe", pipe)
	in.Setup(codelet.ID{}, clock.NewTaskClocks(clock.NewClocks()))
	in.MarkScheduled()

	_, err := in.Cycle(codelet.Start)
	require.NoError(t, err)

	// without input the pipe skips
	status, err := in.Cycle(codelet.Step)
	require.NoError(t, err)
	assert.Equal(t, core.Skipped, status)

	require.NoError(t, feed.Push(21))
	feed.Flush()

	status, err = in.Cycle(codelet.Step)
	require.NoError(t, err)
	assert.Equal(t, core.Running, status)

	out.Sync()
	v, err := out.Pop()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestPipeDynamicDrainsAll(t *testing.T) {
	pipe := codelets.NewPipe(codelets.PipeDynamic, func(v int) int { return v + 1 })
	feed := channel.NewTx[int](4)
	out := channel.NewRxAutoSize[int]()
	require.NoError(t, channel.Connect(feed, pipe.In))
	require.NoError(t, channel.Connect(pipe.Out, out))

	in := codelet.New("pipe", pipe)
	in.Setup(codelet.ID{}, clock.NewTaskClocks(clock.NewClocks()))
	in.MarkScheduled()

	_, err := in.Cycle(codelet.Start)
	require.NoError(t, err)

	require.NoError(t, feed.PushMany(1, 2, 3))
	feed.Flush()

	_, err = in.Cycle(codelet.Step)
	require.NoError(t, err)

	out.Sync()
	assert.Equal(t, []int{2, 3, 4}, out.PopAll())
}

func TestTerminatorCountdown(t *testing.T) {
	control := make(chan runtime.Control, 1)
	term := codelets.NewTerminator(2, control)

	in := codelet.New("terminator", term)
	in.Setup(codelet.ID{}, clock.NewTaskClocks(clock.NewClocks()))
	in.MarkScheduled()

	for i := 0; i < 2; i++ {
		_, err := in.Cycle(codelet.Step)
		require.NoError(t, err)
		select {
		case <-control:
			t.Fatal("terminator fired early")
		default:
		}
	}

	_, err := in.Cycle(codelet.Step)
	require.NoError(t, err)
	select {
	case ctrl := <-control:
		assert.Equal(t, runtime.RequestStop, ctrl)
	default:
		t.Fatal("terminator did not fire")
	}
}
