package codelet

import (
	"fmt"
	"reflect"
	"runtime"

	"firestige.xyz/nodo/pkg/channel"
	"firestige.xyz/nodo/pkg/clock"
	"firestige.xyz/nodo/pkg/core"
	"firestige.xyz/nodo/pkg/log"
)

// ID identifies an instance within an executor: the worker driving it and a
// per-worker counter.
type ID struct {
	Worker int
	Index  int
}

func (id ID) String() string {
	return fmt.Sprintf("%d/%d", id.Worker, id.Index)
}

// Instance is a named codelet bound to its bundles. Create it with New,
// connect its endpoints, put it in a Sequence and hand it to an executor.
//
// Around every start/step/stop the instance synchronizes the receive bundle
// before the hook and flushes the transmit bundle after it, keeps the task
// clocks ticking, and converts EnforceEmpty violations and flush errors into
// transition failures.
type Instance struct {
	name     string
	typeName string
	codelet  Codelet
	rx       channel.RxBundle
	tx       channel.TxBundle

	id         ID
	clocks     *clock.TaskClocks
	scheduled  bool
	lastStatus core.Status

	syncResults  []channel.SyncResult
	flushResults []channel.FlushResult
}

// New creates a named instance of the given codelet.
//
// An instance which is dropped without ever being scheduled logs a warning
// when it is collected.
func New(name string, c Codelet) *Instance {
	rx := c.RxBundle()
	tx := c.TxBundle()
	in := &Instance{
		name:         name,
		typeName:     typeName(c),
		codelet:      c,
		rx:           rx,
		tx:           tx,
		syncResults:  make([]channel.SyncResult, rx.Len()),
		flushResults: make([]channel.FlushResult, tx.Len()),
	}
	runtime.SetFinalizer(in, func(in *Instance) {
		if !in.scheduled {
			log.GetLogger().Warnf(
				"codelet instance %q was created and destroyed without ever being scheduled", in.name)
		}
	})
	return in
}

func typeName(c Codelet) string {
	t := reflect.TypeOf(c)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Name of the instance.
func (in *Instance) Name() string { return in.name }

// TypeName of the wrapped codelet.
func (in *Instance) TypeName() string { return in.typeName }

// ID of the instance within its executor. Zero until scheduled.
func (in *Instance) ID() ID { return in.id }

// LastStatus is the status reported by the most recent hook, or nil.
func (in *Instance) LastStatus() core.Status { return in.lastStatus }

// Setup binds the instance to its executor identity and clocks. Called once
// by the executor before the first transition.
func (in *Instance) Setup(id ID, clocks *clock.TaskClocks) {
	in.id = id
	in.clocks = clocks
}

// MarkScheduled records that a runtime took ownership of the instance.
func (in *Instance) MarkScheduled() { in.scheduled = true }

// Cycle applies one lifecycle transition.
func (in *Instance) Cycle(transition Transition) (core.DefaultStatus, error) {
	var status core.Status
	var err error

	switch transition {
	case Start:
		status, err = in.start()
	case Step:
		status, err = in.step()
	case Stop:
		status, err = in.stop()
	case Pause:
		status, err = in.codelet.Pause(in.context())
	case Resume:
		status, err = in.codelet.Resume(in.context())
	default:
		return core.Skipped, fmt.Errorf("%q: unknown transition %d", in.name, int(transition))
	}

	if err != nil {
		return core.Skipped, err
	}
	if status != nil {
		in.lastStatus = status
	}
	if core.IsSkipped(status) {
		return core.Skipped, nil
	}
	return core.Running, nil
}

func (in *Instance) context() *Context {
	return &Context{Name: in.name, Clocks: in.clocks}
}

func (in *Instance) start() (core.Status, error) {
	logger := log.GetLogger()
	logger.Tracef("%q start begin", in.name)

	if cc := in.rx.CheckConnection(); !cc.IsFullyConnected() {
		logger.Warnf("codelet %q (type=%s) has unconnected RX endpoints: %s",
			in.name, in.typeName, channel.DescribeUnconnected(cc, in.rx.Name))
	}
	if cc := in.tx.CheckConnection(); !cc.IsFullyConnected() {
		logger.Warnf("codelet %q (type=%s) has unconnected TX endpoints: %s",
			in.name, in.typeName, channel.DescribeUnconnected(cc, in.tx.Name))
	}

	if err := in.sync(); err != nil {
		return nil, err
	}

	in.clocks.OnCodeletStart()

	status, err := in.codelet.Start(in.context())
	if err != nil {
		return nil, err
	}

	if err := in.flush(); err != nil {
		return nil, err
	}

	logger.Tracef("%q start end", in.name)
	return status, nil
}

func (in *Instance) step() (core.Status, error) {
	if err := in.sync(); err != nil {
		return nil, err
	}

	in.clocks.OnCodeletStep()

	status, err := in.codelet.Step(in.context())
	if err != nil {
		return nil, err
	}

	if err := in.flush(); err != nil {
		return nil, err
	}

	return status, nil
}

func (in *Instance) stop() (core.Status, error) {
	logger := log.GetLogger()
	logger.Tracef("%q stop begin", in.name)

	if err := in.sync(); err != nil {
		return nil, err
	}

	in.clocks.OnCodeletStop()

	status, err := in.codelet.Stop(in.context())
	if err != nil {
		return nil, err
	}

	if err := in.flush(); err != nil {
		return nil, err
	}

	logger.Tracef("%q stop end", in.name)
	return status, nil
}

func (in *Instance) sync() error {
	// the endpoint count of some bundles changes dynamically
	if n := in.rx.Len(); n != len(in.syncResults) {
		in.syncResults = make([]channel.SyncResult, n)
	}

	in.rx.SyncAll(in.syncResults)

	for i, result := range in.syncResults {
		if result.EnforceEmptyViolation {
			return fmt.Errorf("%q: sync error on %q (EnforceEmpty violated)", in.name, in.rx.Name(i))
		}
	}
	return nil
}

func (in *Instance) flush() error {
	if n := in.tx.Len(); n != len(in.flushResults) {
		in.flushResults = make([]channel.FlushResult, n)
	}

	in.tx.FlushAll(in.flushResults)

	for i, result := range in.flushResults {
		if result.ErrorIndicator.IsErr() {
			return fmt.Errorf("%q: flush error on %q: %s", in.name, in.tx.Name(i), result.ErrorIndicator)
		}
	}
	return nil
}
