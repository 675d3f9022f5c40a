// Package codelets provides a small library of ready-made codelets: callback
// sources and sinks, transforms, and a step-counting terminator.
package codelets

import (
	"firestige.xyz/nodo/pkg/channel"
	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
)

// Source calls a callback each tick and publishes what it returns.
type Source[T any] struct {
	codelet.Default
	Out *channel.Tx[T]

	callback func() T
}

// NewSource creates a source with an outbox of capacity one.
func NewSource[T any](callback func() T) *Source[T] {
	return &Source[T]{Out: channel.NewTx[T](1), callback: callback}
}

func (s *Source[T]) TxBundle() channel.TxBundle {
	return channel.TxOne[T]{Tx: s.Out}
}

func (s *Source[T]) Step(*codelet.Context) (core.Status, error) {
	if err := s.Out.Push(s.callback()); err != nil {
		return nil, err
	}
	return core.Running, nil
}
