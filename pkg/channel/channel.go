package channel

import (
	"errors"
	"sync"
)

var (
	// ErrQueueFull is returned by Push when the outbox is at capacity under
	// the Reject policy.
	ErrQueueFull = errors.New("channel: queue full")

	// ErrQueueEmpty is returned by Pop when the front stage holds no items.
	ErrQueueEmpty = errors.New("channel: queue empty")

	// ErrReceiverAlreadyConnected is returned when connecting a receiver
	// which already has an upstream transmitter.
	ErrReceiverAlreadyConnected = errors.New("channel: receiver already connected to a transmitter")

	// ErrMaxConnectionCountExceeded is returned when a transmitter already
	// serves MaxReceiverCount receivers.
	ErrMaxConnectionCountExceeded = errors.New("channel: transmitter exceeded maximum connection count")

	// ErrPolicyMismatch is returned when connecting a Resize transmitter to
	// a Reject receiver. Such a link would drop messages silently; change
	// the TX policy to Reject or the RX policy to Resize or Forget.
	ErrPolicyMismatch = errors.New("channel: cannot connect a Resize transmitter to a Reject receiver")
)

// sharedStage is the one piece of state shared between a producer and a
// consumer: the consumer's back stage, guarded by a reader-writer lock. The
// producer write-locks it during flush, the consumer during sync. The lock is
// never held across user code.
type sharedStage[T any] struct {
	mu    sync.RWMutex
	stage *backStage[T]
}

// Tx is the transmitting side of a double-buffered SP-MC channel.
//
// Messages in the outbox are sent to all connected receivers when the
// transmitter is flushed. The first connection receives the messages by move;
// every further connection receives copies. Messages with large payloads
// should carry pointers or other shared memory to keep copies cheap.
type Tx[T any] struct {
	outbox      *backStage[T]
	connections []*sharedStage[T]
	seq         uint64
}

// NewTx creates a transmitter with a fixed outbox capacity.
func NewTx[T any](capacity int) *Tx[T] {
	return &Tx[T]{outbox: newBackStage[T](Reject(capacity), Drop)}
}

// NewTxAutoSize creates a transmitter which resizes its outbox so that
// pushing always succeeds. This can lead to congestion and unbounded queues;
// usually a fixed capacity or forgetting old messages is better.
func NewTxAutoSize[T any]() *Tx[T] {
	return &Tx[T]{outbox: newBackStage[T](Resize(), Drop)}
}

// Push puts a message in the outbox.
func (tx *Tx[T]) Push(value T) error {
	if !tx.outbox.push(value) {
		return ErrQueueFull
	}
	return nil
}

// PushMany puts multiple messages in the outbox.
func (tx *Tx[T]) PushMany(values ...T) error {
	for _, v := range values {
		if err := tx.Push(v); err != nil {
			return err
		}
	}
	return nil
}

// NextSeq issues the next message sequence number of this transmitter.
func (tx *Tx[T]) NextSeq() uint64 {
	seq := tx.seq
	tx.seq++
	return seq
}

// Connect attaches a receiver to this transmitter.
//
// A receiver can be connected to at most one transmitter, and a transmitter
// serves at most MaxReceiverCount receivers. Connecting a Resize transmitter
// to a Reject receiver is refused as it would lead to failed message passing.
// Connections must be established before the graph is started.
func (tx *Tx[T]) Connect(rx *Rx[T]) error {
	if rx.connected {
		return ErrReceiverAlreadyConnected
	}
	if len(tx.connections) >= MaxReceiverCount {
		return ErrMaxConnectionCountExceeded
	}
	if tx.outbox.overflow.IsResize() && rx.back.stage.overflow.IsReject() {
		return ErrPolicyMismatch
	}

	tx.connections = append(tx.connections, rx.back)
	rx.connected = true
	return nil
}

// Flush publishes the outbox to every connected receiver's back stage.
//
// Receivers 1..N-1 receive copies; receiver 0 receives the original values.
// On the first push failure into a receiver its error bit is set and the
// remaining messages for that receiver are abandoned for this flush.
func (tx *Tx[T]) Flush() FlushResult {
	var result FlushResult
	result.Available = tx.outbox.len()

	// copies for connections 2..N
	for i := 1; i < len(tx.connections); i++ {
		conn := tx.connections[i]
		conn.mu.Lock()
		for _, v := range tx.outbox.items {
			if !conn.stage.push(v) {
				result.ErrorIndicator.Mark(i)
				break
			}
			result.Cloned++
			result.Published++
		}
		conn.mu.Unlock()
	}

	// move for connection 1
	if len(tx.connections) > 0 {
		conn := tx.connections[0]
		conn.mu.Lock()
		for _, v := range tx.outbox.items {
			if !conn.stage.push(v) {
				result.ErrorIndicator.Mark(0)
				break
			}
			result.Published++
		}
		conn.mu.Unlock()
	}

	// the outbox is cleared even without connections
	tx.outbox.clear()

	return result
}

// IsConnected reports whether at least one receiver is attached.
func (tx *Tx[T]) IsConnected() bool { return len(tx.connections) > 0 }

// Rx is the receiving side of a double-buffered SP-MC channel.
//
// The transmitter appends to the shared back stage during flush; Sync moves
// those items into the front stage where they become visible to Pop and
// indexed access. Remaining front items are handled according to the
// retention policy, so queue overflow can only happen while the transmitter
// pushes.
type Rx[T any] struct {
	back      *sharedStage[T]
	front     *frontStage[T]
	connected bool
}

// NewRx creates a receiver with the given policies. The Keep retention
// policy combined with Reject overflow is illegal and panics.
func NewRx[T any](overflow OverflowPolicy, retention RetentionPolicy) *Rx[T] {
	stage := newBackStage[T](overflow, retention)
	return &Rx[T]{
		back:  &sharedStage[T]{stage: stage},
		front: newFrontStage[T](stage.capacity),
	}
}

// NewRxLatest creates a receiver which retains the most recent message.
func NewRxLatest[T any]() *Rx[T] {
	return NewRx[T](Forget(1), Keep)
}

// NewRxAutoSize creates a receiver which resizes itself so that receiving
// always succeeds. This can lead to congestion and unbounded queues; usually
// a fixed capacity or forgetting old messages is better.
func NewRxAutoSize[T any]() *Rx[T] {
	return NewRx[T](Resize(), Drop)
}

// Sync prepares receiving: it moves back stage items into the front stage.
func (rx *Rx[T]) Sync() SyncResult {
	rx.back.mu.Lock()
	defer rx.back.mu.Unlock()
	return rx.back.stage.sync(rx.front)
}

// IsConnected reports whether an upstream transmitter is attached.
func (rx *Rx[T]) IsConnected() bool { return rx.connected }

// Len is the number of messages currently visible. More messages may be
// waiting in the back stage until the next sync.
func (rx *Rx[T]) Len() int { return rx.front.len() }

// IsEmpty reports whether the front stage holds no messages.
func (rx *Rx[T]) IsEmpty() bool { return rx.front.len() == 0 }

// Pop removes the next message from the front stage.
func (rx *Rx[T]) Pop() (T, error) {
	if v, ok := rx.front.pop(); ok {
		return v, nil
	}
	var zero T
	return zero, ErrQueueEmpty
}

// TryPop removes the next message from the front stage if there is one.
func (rx *Rx[T]) TryPop() (T, bool) { return rx.front.pop() }

// PopAll removes and returns all front stage messages in FIFO order.
func (rx *Rx[T]) PopAll() []T {
	return rx.front.drain(0, rx.front.len())
}

// Drain removes and returns front stage messages [from, to).
func (rx *Rx[T]) Drain(from, to int) []T { return rx.front.drain(from, to) }

// At accesses the idx-th front stage message without removing it.
func (rx *Rx[T]) At(idx int) T { return rx.front.at(idx) }

// Latest accesses the newest front stage message without removing it.
func (rx *Rx[T]) Latest() (T, bool) {
	n := rx.front.len()
	if n == 0 {
		var zero T
		return zero, false
	}
	return rx.front.at(n - 1), true
}

// IsFull reports whether the front stage holds the maximum number of
// messages. A receiver with the Resize policy is never full.
func (rx *Rx[T]) IsFull() bool {
	rx.back.mu.RLock()
	overflow := rx.back.stage.overflow
	rx.back.mu.RUnlock()
	if overflow.IsResize() {
		return false
	}
	return rx.front.len() == overflow.Capacity()
}

// Clear removes all front stage messages.
func (rx *Rx[T]) Clear() { rx.front.clear() }

// Connect wires a transmitter to a receiver of the same payload type.
func Connect[T any](tx *Tx[T], rx *Rx[T]) error {
	return tx.Connect(rx)
}
