package codelets

import (
	"firestige.xyz/nodo/pkg/channel"
	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
)

// Sink calls a callback for every received message.
type Sink[T any] struct {
	codelet.Default
	In *channel.Rx[T]

	callback func(T) error
}

// NewSink creates a sink with an auto-sizing inbox.
func NewSink[T any](callback func(T) error) *Sink[T] {
	return &Sink[T]{In: channel.NewRxAutoSize[T](), callback: callback}
}

func (s *Sink[T]) RxBundle() channel.RxBundle {
	return channel.RxOne[T]{Rx: s.In}
}

func (s *Sink[T]) Step(*codelet.Context) (core.Status, error) {
	if s.In.IsEmpty() {
		return core.Skipped, nil
	}
	for {
		msg, ok := s.In.TryPop()
		if !ok {
			break
		}
		if err := s.callback(msg); err != nil {
			return nil, err
		}
	}
	return core.Running, nil
}
