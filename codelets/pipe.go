package codelets

import (
	"firestige.xyz/nodo/pkg/channel"
	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
)

// PipeMode selects the channel policies of a Pipe.
type PipeMode int

const (
	// PipeOneToOne handles exactly one message per tick over fixed
	// single-slot channels.
	PipeOneToOne PipeMode = iota

	// PipeDynamic drains all pending messages per tick over auto-sizing
	// channels.
	PipeDynamic
)

// Pipe applies a callback to every message passing through.
type Pipe[T, S any] struct {
	codelet.Default
	In  *channel.Rx[T]
	Out *channel.Tx[S]

	mode     PipeMode
	callback func(T) S
}

func NewPipe[T, S any](mode PipeMode, callback func(T) S) *Pipe[T, S] {
	p := &Pipe[T, S]{mode: mode, callback: callback}
	switch mode {
	case PipeOneToOne:
		p.In = channel.NewRx[T](channel.Reject(1), channel.EnforceEmpty)
		p.Out = channel.NewTx[S](1)
	default:
		p.In = channel.NewRxAutoSize[T]()
		p.Out = channel.NewTxAutoSize[S]()
	}
	return p
}

func (p *Pipe[T, S]) RxBundle() channel.RxBundle { return channel.RxOne[T]{Rx: p.In} }

func (p *Pipe[T, S]) TxBundle() channel.TxBundle { return channel.TxOne[S]{Tx: p.Out} }

// Start drains messages which arrived before the pipe started so the
// EnforceEmpty retention of the one-to-one mode holds on the first step.
func (p *Pipe[T, S]) Start(*codelet.Context) (core.Status, error) {
	for {
		if _, ok := p.In.TryPop(); !ok {
			return core.Running, nil
		}
	}
}

func (p *Pipe[T, S]) Step(*codelet.Context) (core.Status, error) {
	if p.mode == PipeOneToOne {
		msg, ok := p.In.TryPop()
		if !ok {
			return core.Skipped, nil
		}
		if err := p.Out.Push(p.callback(msg)); err != nil {
			return nil, err
		}
		return core.Running, nil
	}

	if p.In.IsEmpty() {
		return core.Skipped, nil
	}
	for {
		msg, ok := p.In.TryPop()
		if !ok {
			break
		}
		if err := p.Out.Push(p.callback(msg)); err != nil {
			return nil, err
		}
	}
	return core.Running, nil
}
