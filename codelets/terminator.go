package codelets

import (
	"firestige.xyz/nodo/pkg/codelet"
	"firestige.xyz/nodo/pkg/core"
	"firestige.xyz/nodo/pkg/runtime"
)

// Terminator requests a runtime stop after a certain number of steps.
type Terminator struct {
	codelet.Default

	countdown int
	control   chan<- runtime.Control
}

func NewTerminator(countdown int, control chan<- runtime.Control) *Terminator {
	return &Terminator{countdown: countdown, control: control}
}

func (t *Terminator) Step(*codelet.Context) (core.Status, error) {
	if t.countdown == 0 {
		t.control <- runtime.RequestStop
		return core.Running, nil
	}
	t.countdown--
	return core.Running, nil
}
