package channel

import (
	"fmt"
	"strings"
)

// MaxReceiverCount is the maximum number of receivers which can be connected
// to a single transmitter. This is a technical limitation as some error codes
// use 64-bit bitmasks.
const MaxReceiverCount = 64

// SyncResult carries statistics about a channel sync operation.
type SyncResult struct {
	// Received is the number of messages which were moved into the front
	// stage by this sync.
	Received int

	// Forgotten is the number of messages evicted from the front stage to
	// make room for incoming messages (Keep retention only).
	Forgotten int

	// Dropped is the number of messages cleared from the front stage before
	// the swap (Drop and EnforceEmpty retention).
	Dropped int

	// EnforceEmptyViolation is set when the EnforceEmpty retention policy is
	// in use but the front stage was not empty at sync.
	EnforceEmptyViolation bool
}

// FlushResult combines statistics and potential errors of a channel flush.
type FlushResult struct {
	// Available is the number of unique messages which were available for
	// publishing.
	Available int

	// Cloned is the number of messages which were cloned. With more than one
	// connection, messages published to the additional receivers are clones.
	Cloned int

	// Published is the total number of messages successfully transmitted
	// over all connections.
	Published int

	// ErrorIndicator holds one error bit per connection. Flush can fail to
	// transmit to a receiver, for example when the receiving queue is full
	// under the Reject policy.
	ErrorIndicator ErrorBitmask
}

// ErrorBitmask stores a per-connection error flag. Bit i corresponds to the
// i-th connection of the transmitter.
type ErrorBitmask uint64

// Mark sets the error bit for connection i.
func (b *ErrorBitmask) Mark(i int) {
	*b |= 1 << i
}

// Get reports whether the error bit for connection i is set.
func (b ErrorBitmask) Get(i int) bool {
	return b&(1<<i) != 0
}

// IsErr reports whether any error bit is set.
func (b ErrorBitmask) IsErr() bool {
	return b != 0
}

func (b ErrorBitmask) String() string {
	return fmt.Sprintf("ErrorBitmask(%b)", uint64(b))
}

// ConnectionCheck is a collection of boolean flags indicating which endpoints
// of a bundle are connected.
type ConnectionCheck struct {
	count int
	marks uint64
}

func NewConnectionCheck(count int) ConnectionCheck {
	if count > MaxReceiverCount {
		panic(fmt.Sprintf("too many connections: count=%d", count))
	}
	return ConnectionCheck{count: count}
}

// Mark records the connection status of the endpoint with the given index.
func (c *ConnectionCheck) Mark(index int, connected bool) {
	if index >= c.count {
		panic(fmt.Sprintf("invalid endpoint index: count=%d, index=%d", c.count, index))
	}
	if connected {
		c.marks |= 1 << index
	} else {
		c.marks &^= 1 << index
	}
}

// IsConnected reports whether the endpoint with the given index is connected.
func (c ConnectionCheck) IsConnected(index int) bool {
	if index >= c.count {
		panic(fmt.Sprintf("invalid endpoint index: count=%d, index=%d", c.count, index))
	}
	return c.marks&(1<<index) != 0
}

// IsFullyConnected reports whether every endpoint is connected.
func (c ConnectionCheck) IsFullyConnected() bool {
	for i := 0; i < c.count; i++ {
		if !c.IsConnected(i) {
			return false
		}
	}
	return true
}

// ListUnconnected returns the indices of all unconnected endpoints.
func (c ConnectionCheck) ListUnconnected() []int {
	var out []int
	for i := 0; i < c.count; i++ {
		if !c.IsConnected(i) {
			out = append(out, i)
		}
	}
	return out
}

// DescribeUnconnected renders the unconnected endpoints of a bundle for log
// messages, e.g. "[0] in, [2] selection".
func DescribeUnconnected(c ConnectionCheck, name func(int) string) string {
	var parts []string
	for _, i := range c.ListUnconnected() {
		parts = append(parts, fmt.Sprintf("[%d] %s", i, name(i)))
	}
	return strings.Join(parts, ", ")
}
