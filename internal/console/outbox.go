package console

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// OpKind names the mutation an Operation tracks.
type OpKind string

const (
	OpSendMessage OpKind = "send-message"
	OpMoveTask    OpKind = "move-task"
)

// OpState is the lifecycle of an optimistic mutation.
type OpState string

const (
	OpPending   OpState = "pending"
	OpConfirmed OpState = "confirmed"
	OpFailed    OpState = "failed"
)

// Operation is a local mutation awaiting server confirmation. ID is the
// correlation id that links the placeholder record to its outcome.
type Operation struct {
	ID        string
	Kind      OpKind
	CreatedAt time.Time

	mu       sync.Mutex
	recordID string
	state    OpState
	err      error
	done     chan struct{}
}

func newOperation(kind OpKind, recordID string) *Operation {
	return &Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: time.Now(),
		recordID:  recordID,
		state:     OpPending,
		done:      make(chan struct{}),
	}
}

// Done is closed once the operation is confirmed or failed.
func (o *Operation) Done() <-chan struct{} {
	return o.done
}

// Wait blocks until the operation settles or ctx ends, returning the
// operation error or the context error.
func (o *Operation) Wait(ctx context.Context) error {
	select {
	case <-o.done:
		return o.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err is the failure reason once the operation failed.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// State returns the current lifecycle state.
func (o *Operation) State() OpState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// RecordKey returns the record the operation concerns. For a sent message
// this follows the placeholder to its server id once confirmed.
func (o *Operation) RecordKey() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.recordID
}

func (o *Operation) settle(state OpState, err error) {
	o.mu.Lock()
	if o.state != OpPending {
		o.mu.Unlock()
		return
	}
	o.state = state
	o.err = err
	o.mu.Unlock()
	close(o.done)
}

func (o *Operation) rekey(recordID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.recordID = recordID
}

// Outbox tracks operations until they are confirmed, or until a failed one
// is dismissed.
type Outbox struct {
	mu  sync.Mutex
	ops map[string]*Operation
}

// NewOutbox returns an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{ops: make(map[string]*Operation)}
}

func (b *Outbox) track(op *Operation) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ops[op.ID] = op
}

func (b *Outbox) confirm(op *Operation) {
	op.settle(OpConfirmed, nil)
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.ops, op.ID)
}

func (b *Outbox) fail(op *Operation, err error) {
	op.settle(OpFailed, err)
}

// Get returns the tracked operation with id.
func (b *Outbox) Get(id string) (*Operation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	op, ok := b.ops[id]
	return op, ok
}

// Pending lists operations still waiting on the server, oldest first.
func (b *Outbox) Pending() []*Operation {
	return b.filter(OpPending)
}

// Failed lists operations the server rejected, oldest first.
func (b *Outbox) Failed() []*Operation {
	return b.filter(OpFailed)
}

// Dismiss forgets a settled operation. Pending operations stay.
func (b *Outbox) Dismiss(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	op, ok := b.ops[id]
	if !ok || op.State() == OpPending {
		return false
	}
	delete(b.ops, id)
	return true
}

func (b *Outbox) filter(state OpState) []*Operation {
	b.mu.Lock()
	out := make([]*Operation, 0, len(b.ops))
	for _, op := range b.ops {
		if op.State() == state {
			out = append(out, op)
		}
	}
	b.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
