package runtime

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"firestige.xyz/nodo/pkg/inspector"
	"firestige.xyz/nodo/pkg/log"
)

// Runtime is the public handle of the dataflow engine: it owns the codelet
// executor, the control mailbox aggregating external stop requests, and the
// optional inspector publisher.
type Runtime struct {
	control   chan Control
	executor  *Executor
	publisher ReportPublisher
}

// ReportPublisher pushes inspector reports to live subscribers.
type ReportPublisher interface {
	Publish(report *inspector.Report) error
}

func NewRuntime() *Runtime {
	return &Runtime{
		control:  make(chan Control, 16),
		executor: NewExecutor(),
	}
}

// Executor grants access to the codelet executor.
func (rt *Runtime) Executor() *Executor { return rt.executor }

// AddSchedule spawns a worker for the schedule.
func (rt *Runtime) AddSchedule(schedule *ScheduleExecutor) {
	rt.executor.Push(schedule)
}

// Control is the mailbox external collaborators use to request a stop, for
// example a terminator codelet or a signal handler.
func (rt *Runtime) Control() chan<- Control { return rt.control }

// SetReportPublisher installs a live inspector publisher. Reports are
// published on every spin poll; a failed publish is logged and dropped.
func (rt *Runtime) SetReportPublisher(p ReportPublisher) { rt.publisher = p }

// EnableTerminateOnCtrlC requests a stop when SIGINT or SIGTERM arrives.
func (rt *Runtime) EnableTerminateOnCtrlC() {
	log.GetLogger().Info("press ctrl-c to stop")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		rt.control <- RequestStop
	}()
}

// Spin blocks until all workers finished or a stop was requested, then joins
// them and prints the final statistics.
func (rt *Runtime) Spin() {
	logger := log.GetLogger()
	timeout := time.NewTimer(500 * time.Millisecond)
	defer timeout.Stop()

	for {
		stop := false
		select {
		case ctrl, ok := <-rt.control:
			if !ok {
				panic("runtime control mailbox closed")
			}
			if ctrl == RequestStop {
				logger.Info("stop requested")
				rt.executor.RequestStop()
				rt.executor.Join()
				logger.Info("all workers stopped")
				stop = true
			}
		case <-timeout.C:
			timeout.Reset(500 * time.Millisecond)
			if rt.executor.IsFinished() {
				rt.executor.Join()
				logger.Info("all workers finished")
				stop = true
			}
		}

		if stop {
			break
		}

		rt.publishReport()
	}

	report := rt.executor.Report()
	rt.publishReport()
	inspector.PrettyPrint(os.Stdout, report)
}

func (rt *Runtime) publishReport() {
	if rt.publisher == nil {
		return
	}
	if err := rt.publisher.Publish(rt.executor.Report()); err != nil {
		log.GetLogger().WithError(err).Debug("inspector publish failed")
	}
}
