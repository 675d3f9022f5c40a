package channel

import (
	"fmt"
	"reflect"
	"strings"
)

// RxEndpoint is the policy-agnostic surface of a receiving endpoint.
type RxEndpoint interface {
	// Sync prepares receiving of messages.
	Sync() SyncResult

	// IsConnected reports whether the endpoint is connected.
	IsConnected() bool
}

// TxEndpoint is the policy-agnostic surface of a transmitting endpoint.
type TxEndpoint interface {
	// Flush finalizes sending of messages.
	Flush() FlushResult

	// IsConnected reports whether the endpoint is connected.
	IsConnected() bool
}

// RxBundle is an ordered collection of receiving endpoints treated as one
// unit. Synchronizing the bundle synchronizes all endpoints it contains.
type RxBundle interface {
	// Len is the number of endpoints.
	Len() int

	// Name is the name of the i-th endpoint.
	Name(index int) string

	// SyncAll synchronizes all endpoints, one result slot per endpoint.
	SyncAll(results []SyncResult)

	// CheckConnection reports the connection status of all endpoints.
	CheckConnection() ConnectionCheck
}

// TxBundle is an ordered collection of transmitting endpoints treated as one
// unit. Flushing the bundle flushes all endpoints it contains.
type TxBundle interface {
	Len() int
	Name(index int) string

	// FlushAll flushes all endpoints, one result slot per endpoint.
	FlushAll(results []FlushResult)

	CheckConnection() ConnectionCheck
}

// NilRx is the empty receive bundle.
type NilRx struct{}

func (NilRx) Len() int                        { return 0 }
func (NilRx) Name(int) string                 { panic("empty bundle") }
func (NilRx) SyncAll([]SyncResult)            {}
func (NilRx) CheckConnection() ConnectionCheck { return ConnectionCheck{} }

// NilTx is the empty transmit bundle.
type NilTx struct{}

func (NilTx) Len() int                        { return 0 }
func (NilTx) Name(int) string                 { panic("empty bundle") }
func (NilTx) FlushAll([]FlushResult)          {}
func (NilTx) CheckConnection() ConnectionCheck { return ConnectionCheck{} }

// RxOne wraps a single receiver as a bundle named "in".
type RxOne[T any] struct{ Rx *Rx[T] }

func (b RxOne[T]) Len() int { return 1 }

func (b RxOne[T]) Name(index int) string {
	if index != 0 {
		panic(fmt.Sprintf("invalid endpoint index %d", index))
	}
	return "in"
}

func (b RxOne[T]) SyncAll(results []SyncResult) { results[0] = b.Rx.Sync() }

func (b RxOne[T]) CheckConnection() ConnectionCheck {
	cc := NewConnectionCheck(1)
	cc.Mark(0, b.Rx.IsConnected())
	return cc
}

// TxOne wraps a single transmitter as a bundle named "out".
type TxOne[T any] struct{ Tx *Tx[T] }

func (b TxOne[T]) Len() int { return 1 }

func (b TxOne[T]) Name(index int) string {
	if index != 0 {
		panic(fmt.Sprintf("invalid endpoint index %d", index))
	}
	return "out"
}

func (b TxOne[T]) FlushAll(results []FlushResult) { results[0] = b.Tx.Flush() }

func (b TxOne[T]) CheckConnection() ConnectionCheck {
	cc := NewConnectionCheck(1)
	cc.Mark(0, b.Tx.IsConnected())
	return cc
}

// RxList is a dynamically sized bundle with positional endpoint names.
type RxList []RxEndpoint

func (l RxList) Len() int { return len(l) }

func (l RxList) Name(index int) string { return fmt.Sprintf("%d", index) }

func (l RxList) SyncAll(results []SyncResult) {
	for i, rx := range l {
		results[i] = rx.Sync()
	}
}

func (l RxList) CheckConnection() ConnectionCheck {
	cc := NewConnectionCheck(len(l))
	for i, rx := range l {
		cc.Mark(i, rx.IsConnected())
	}
	return cc
}

// TxList is a dynamically sized bundle with positional endpoint names.
type TxList []TxEndpoint

func (l TxList) Len() int { return len(l) }

func (l TxList) Name(index int) string { return fmt.Sprintf("%d", index) }

func (l TxList) FlushAll(results []FlushResult) {
	for i, tx := range l {
		results[i] = tx.Flush()
	}
}

func (l TxList) CheckConnection() ConnectionCheck {
	cc := NewConnectionCheck(len(l))
	for i, tx := range l {
		cc.Mark(i, tx.IsConnected())
	}
	return cc
}

var (
	rxEndpointType = reflect.TypeOf((*RxEndpoint)(nil)).Elem()
	txEndpointType = reflect.TypeOf((*TxEndpoint)(nil)).Elem()
)

// RxStruct builds a named bundle from the exported struct fields of v which
// implement RxEndpoint. The endpoint name is the lower-cased field name, or
// the `bundle` tag when present. v must be a pointer to a struct.
func RxStruct(v any) RxBundle {
	names, values := bundleFields(v, rxEndpointType)
	bundle := make(namedRxBundle, len(values))
	for i, value := range values {
		bundle[i] = namedRx{name: names[i], rx: value.(RxEndpoint)}
	}
	return bundle
}

// TxStruct builds a named bundle from the exported struct fields of v which
// implement TxEndpoint. See RxStruct.
func TxStruct(v any) TxBundle {
	names, values := bundleFields(v, txEndpointType)
	bundle := make(namedTxBundle, len(values))
	for i, value := range values {
		bundle[i] = namedTx{name: names[i], tx: value.(TxEndpoint)}
	}
	return bundle
}

func bundleFields(v any, endpoint reflect.Type) ([]string, []any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("bundle target must be a pointer to a struct, got %T", v))
	}
	rv = rv.Elem()
	rt := rv.Type()

	var names []string
	var values []any
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() || !field.Type.Implements(endpoint) {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			if rv.Field(i).IsNil() {
				continue
			}
		}
		name := field.Tag.Get("bundle")
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		names = append(names, name)
		values = append(values, rv.Field(i).Interface())
	}
	return names, values
}

type namedRx struct {
	name string
	rx   RxEndpoint
}

type namedRxBundle []namedRx

func (b namedRxBundle) Len() int { return len(b) }

func (b namedRxBundle) Name(index int) string { return b[index].name }

func (b namedRxBundle) SyncAll(results []SyncResult) {
	for i, e := range b {
		results[i] = e.rx.Sync()
	}
}

func (b namedRxBundle) CheckConnection() ConnectionCheck {
	cc := NewConnectionCheck(len(b))
	for i, e := range b {
		cc.Mark(i, e.rx.IsConnected())
	}
	return cc
}

type namedTx struct {
	name string
	tx   TxEndpoint
}

type namedTxBundle []namedTx

func (b namedTxBundle) Len() int { return len(b) }

func (b namedTxBundle) Name(index int) string { return b[index].name }

func (b namedTxBundle) FlushAll(results []FlushResult) {
	for i, e := range b {
		results[i] = e.tx.Flush()
	}
}

func (b namedTxBundle) CheckConnection() ConnectionCheck {
	cc := NewConnectionCheck(len(b))
	for i, e := range b {
		cc.Mark(i, e.tx.IsConnected())
	}
	return cc
}
