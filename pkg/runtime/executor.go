package runtime

import (
	"fmt"
	goruntime "runtime"

	"go.uber.org/atomic"

	"firestige.xyz/nodo/pkg/clock"
	"firestige.xyz/nodo/pkg/inspector"
	"firestige.xyz/nodo/pkg/log"
	"firestige.xyz/nodo/pkg/metrics"
)

// workerRequest is a one-shot control message for a worker.
type workerRequest int

const (
	// requestStop asks the worker to leave its loop and run the final Stop.
	requestStop workerRequest = iota

	// requestReport asks the worker for a current inspector sub-report.
	requestReport
)

// Worker owns exactly one schedule and drives it on its own OS thread. The
// control surface is a pair of size-one mailboxes; requests are one-shot and
// losing a report reply is acceptable.
type Worker struct {
	name     string
	requests chan workerRequest
	replies  chan *inspector.Report
	done     chan struct{}
	finished *atomic.Bool

	// lastReport caches the newest drained reply; only the executor reads
	// and writes it.
	lastReport *inspector.Report
}

func newWorker(schedule *ScheduleExecutor) *Worker {
	name := schedule.Name()
	if name == "" {
		name = fmt.Sprintf("worker-%d", schedule.WorkerID())
	}

	w := &Worker{
		name:     name,
		requests: make(chan workerRequest, 1),
		replies:  make(chan *inspector.Report, 1),
		done:     make(chan struct{}),
		finished: atomic.NewBool(false),
	}

	go w.run(schedule)

	return w
}

func (w *Worker) run(schedule *ScheduleExecutor) {
	// one schedule, one OS thread
	goruntime.LockOSThread()
	defer goruntime.UnlockOSThread()

	metrics.WorkersRunning.Inc()

	defer func() {
		if r := recover(); r != nil {
			log.GetLogger().Errorf("worker %q panicked: %v", w.name, r)
		}
		metrics.WorkersRunning.Dec()
		w.finished.Store(true)
		close(w.done)
	}()

	for {
		// wait until the next period
		if period := schedule.Period(); period > 0 {
			if last, ok := schedule.LastInstant(); ok {
				AccurateSleepUntil(last.Add(period))
			}
		}

		// handle at most one pending request
		stop := false
		select {
		case req, ok := <-w.requests:
			if !ok {
				panic("worker control mailbox closed")
			}
			switch req {
			case requestStop:
				stop = true
			case requestReport:
				w.publish(schedule.Report())
			}
		default:
		}
		if stop {
			break
		}

		metrics.WorkerSpinsTotal.WithLabelValues(w.name).Inc()
		schedule.Spin()
		if schedule.IsTerminated() {
			break
		}
	}

	schedule.Finalize()

	// one final report after the final Stop, best-effort
	w.publish(schedule.Report())
}

// publish places a report in the reply mailbox, replacing a stale one.
func (w *Worker) publish(report *inspector.Report) {
	for {
		select {
		case w.replies <- report:
			return
		default:
		}
		select {
		case <-w.replies:
		default:
		}
	}
}

// IsFinished reports whether the worker thread has exited.
func (w *Worker) IsFinished() bool { return w.finished.Load() }

// report returns the newest sub-report of this worker. While the worker is
// live this is best-effort: it requests a fresh report and returns whatever
// has been drained so far, which may lag one frame.
func (w *Worker) report() *inspector.Report {
	if !w.IsFinished() {
		select {
		case w.requests <- requestReport:
		default:
		}
	}
	for {
		select {
		case r := <-w.replies:
			w.lastReport = r
		default:
			return w.lastReport
		}
	}
}

// Executor owns a fleet of workers, one per schedule, and the shared clocks
// handed to every instance.
type Executor struct {
	clocks       clock.Clocks
	workers      []*Worker
	nextWorkerID int
}

func NewExecutor() *Executor {
	return &Executor{clocks: clock.NewClocks()}
}

// Clocks is the shared clock pair of this executor.
func (e *Executor) Clocks() clock.Clocks { return e.clocks }

// Push assigns the schedule a worker, binds instance identities and clocks,
// and spawns the worker thread.
func (e *Executor) Push(schedule *ScheduleExecutor) {
	workerID := e.nextWorkerID
	e.nextWorkerID++

	schedule.setup(workerID, e.clocks)
	e.workers = append(e.workers, newWorker(schedule))
}

// IsFinished reports whether every worker has exited.
func (e *Executor) IsFinished() bool {
	for _, w := range e.workers {
		if !w.IsFinished() {
			return false
		}
	}
	return true
}

// RequestStop asks every worker to stop, best-effort. A pending report
// request may be displaced; losing it is acceptable.
func (e *Executor) RequestStop() {
	for _, w := range e.workers {
		for sent := false; !sent && !w.IsFinished(); {
			select {
			case w.requests <- requestStop:
				sent = true
			default:
				select {
				case <-w.requests:
				default:
				}
			}
		}
	}
}

// Join waits for every worker thread to exit.
func (e *Executor) Join() {
	for _, w := range e.workers {
		<-w.done
	}
}

// Report aggregates the latest sub-reports across all workers.
func (e *Executor) Report() *inspector.Report {
	result := inspector.NewReport()
	for _, w := range e.workers {
		result.Extend(w.report())
	}
	return result
}
