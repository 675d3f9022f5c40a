// Package codelet defines the contract user processing units implement and
// the runtime-facing wrappers around them: the configured instance, the
// statistics-collecting vise, sequences and the schedule builder.
package codelet

import (
	"firestige.xyz/nodo/pkg/channel"
	"firestige.xyz/nodo/pkg/clock"
	"firestige.xyz/nodo/pkg/core"
)

// Codelet is a unit of work driven through the start → step* → stop
// lifecycle by a worker. Implementations keep their configuration and their
// endpoints as struct fields and expose the endpoints through the bundle
// accessors.
//
// Embed Default to inherit no-op hooks and empty bundles:
//
//	type Heartbeat struct {
//		codelet.Default
//		Out *channel.Tx[string]
//	}
//
//	func (h *Heartbeat) TxBundle() channel.TxBundle { return channel.TxStruct(h) }
//
//	func (h *Heartbeat) Step(cx *codelet.Context) (core.Status, error) {
//		return core.Running, h.Out.Push("beat")
//	}
type Codelet interface {
	// RxBundle exposes the receiving endpoints of this codelet.
	RxBundle() channel.RxBundle

	// TxBundle exposes the transmitting endpoints of this codelet.
	TxBundle() channel.TxBundle

	// Start is guaranteed to be called first. It may be called again after
	// Stop was called.
	Start(cx *Context) (core.Status, error)

	// Step is executed periodically after the codelet is started and while
	// it is not paused.
	Step(cx *Context) (core.Status, error)

	// Stop is guaranteed to be called at the end if Start was called.
	Stop(cx *Context) (core.Status, error)

	// Pause may be called to suspend stepping.
	Pause(cx *Context) (core.Status, error)

	// Resume is called to resume stepping. Note that Stop may also be called
	// while the codelet is paused.
	Resume(cx *Context) (core.Status, error)
}

// Context is the argument passed to every lifecycle hook.
type Context struct {
	// Name of the instance being driven.
	Name string

	// Clocks are the per-task clock wrappers of this instance.
	Clocks *clock.TaskClocks
}

// Clock is the application task clock, providing step time and dt.
func (cx *Context) Clock() *clock.TaskClock { return cx.Clocks.App }

// Default provides skipped no-op hooks and empty bundles. Embed it so a
// codelet only implements the hooks and bundles it needs.
type Default struct{}

func (Default) RxBundle() channel.RxBundle { return channel.NilRx{} }

func (Default) TxBundle() channel.TxBundle { return channel.NilTx{} }

// The default hooks report no status: the transition counts as skipped and
// the last rendered status of the instance stays untouched.

func (Default) Start(*Context) (core.Status, error) { return nil, nil }

func (Default) Step(*Context) (core.Status, error) { return nil, nil }

func (Default) Stop(*Context) (core.Status, error) { return nil, nil }

func (Default) Pause(*Context) (core.Status, error) { return nil, nil }

func (Default) Resume(*Context) (core.Status, error) { return nil, nil }
