package notify

import (
	"sync"

	"github.com/strideworks/erp-core/pkg/approval"
)

// queueLimit bounds the per-user backlog kept while no sink is attached.
// Older events are dropped first.
const queueLimit = 10

// sinkBuffer must be able to absorb a full backlog on register.
const sinkBuffer = 16

// Bus fans approval-decision events out to per-user sinks. Events arriving
// while a user has no sink are kept in a bounded queue and replayed in
// arrival order on the next Register. Ordering is preserved per user; the
// bus is process-local.
type Bus struct {
	mu     sync.Mutex
	sinks  map[int64][]*Sink
	queues map[int64][]approval.DecisionEvent
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		sinks:  make(map[int64][]*Sink),
		queues: make(map[int64][]approval.DecisionEvent),
	}
}

// Sink is one attached consumer, usually an open SSE connection.
type Sink struct {
	bus    *Bus
	userID int64
	ch     chan approval.DecisionEvent
	closed bool
}

// Events is the sink's delivery channel. It is closed when the sink detaches.
func (s *Sink) Events() <-chan approval.DecisionEvent {
	return s.ch
}

// Close detaches the sink. Events arriving afterwards queue for the user's
// next sink instead of being lost.
func (s *Sink) Close() {
	s.bus.detach(s)
}

// Register attaches a sink for the user, replaying any queued events in
// arrival order before live delivery begins.
func (b *Bus) Register(userID int64) *Sink {
	b.mu.Lock()
	defer b.mu.Unlock()

	sink := &Sink{bus: b, userID: userID, ch: make(chan approval.DecisionEvent, sinkBuffer)}
	for _, event := range b.queues[userID] {
		sink.ch <- event
	}
	delete(b.queues, userID)
	b.sinks[userID] = append(b.sinks[userID], sink)
	return sink
}

// Notify delivers an event to every attached sink for the user, or queues it
// when none is attached. A sink too slow to keep up is detached and the event
// re-queued so it is not lost.
func (b *Bus) Notify(userID int64, event approval.DecisionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sinks := b.sinks[userID]
	if len(sinks) == 0 {
		b.enqueue(userID, event)
		return
	}

	alive := sinks[:0]
	delivered := false
	for _, sink := range sinks {
		select {
		case sink.ch <- event:
			alive = append(alive, sink)
			delivered = true
		default:
			sink.closed = true
			close(sink.ch)
		}
	}
	if len(alive) == 0 {
		delete(b.sinks, userID)
	} else {
		b.sinks[userID] = alive
	}
	if !delivered {
		b.enqueue(userID, event)
	}
}

func (b *Bus) enqueue(userID int64, event approval.DecisionEvent) {
	queue := append(b.queues[userID], event)
	if len(queue) > queueLimit {
		queue = queue[len(queue)-queueLimit:]
	}
	b.queues[userID] = queue
}

func (b *Bus) detach(s *Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.ch)

	sinks := b.sinks[s.userID]
	for i, candidate := range sinks {
		if candidate == s {
			b.sinks[s.userID] = append(sinks[:i], sinks[i+1:]...)
			break
		}
	}
	if len(b.sinks[s.userID]) == 0 {
		delete(b.sinks, s.userID)
	}
}
