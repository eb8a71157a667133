package notify

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strideworks/erp-core/pkg/approval"
)

func event(id int64) approval.DecisionEvent {
	return approval.DecisionEvent{
		RequestID: id,
		Status:    approval.StatusApproved,
		Summary:   fmt.Sprintf("request %d", id),
	}
}

func TestBus_LiveDelivery(t *testing.T) {
	bus := NewBus()
	sink := bus.Register(7)
	defer sink.Close()

	bus.Notify(7, event(1))
	bus.Notify(8, event(2)) // different user

	got := <-sink.Events()
	assert.EqualValues(t, 1, got.RequestID)
	select {
	case e := <-sink.Events():
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestBus_QueueReplayInOrder(t *testing.T) {
	bus := NewBus()

	for i := int64(1); i <= 3; i++ {
		bus.Notify(7, event(i))
	}

	sink := bus.Register(7)
	defer sink.Close()
	for i := int64(1); i <= 3; i++ {
		got := <-sink.Events()
		assert.EqualValues(t, i, got.RequestID)
	}
}

func TestBus_QueueBounded(t *testing.T) {
	bus := NewBus()

	for i := int64(1); i <= 15; i++ {
		bus.Notify(7, event(i))
	}

	sink := bus.Register(7)
	defer sink.Close()

	// Only the last 10 survive; the oldest 5 were dropped.
	for i := int64(6); i <= 15; i++ {
		got := <-sink.Events()
		assert.EqualValues(t, i, got.RequestID)
	}
	select {
	case e := <-sink.Events():
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestBus_QueueDrainedOnRegister(t *testing.T) {
	bus := NewBus()
	bus.Notify(7, event(1))

	first := bus.Register(7)
	<-first.Events()
	first.Close()

	// A later sink does not see the already-replayed event.
	second := bus.Register(7)
	defer second.Close()
	select {
	case e := <-second.Events():
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestBus_SlowSinkDetachedAndEventRequeued(t *testing.T) {
	bus := NewBus()
	sink := bus.Register(7)

	// Fill the sink's buffer without reading.
	for i := int64(1); i <= sinkBuffer; i++ {
		bus.Notify(7, event(i))
	}
	// The next event cannot be delivered; the sink is detached and the event
	// queued for the user's next connection.
	bus.Notify(7, event(99))

	// The channel was closed by the bus.
	drained := 0
	for range sink.Events() {
		drained++
	}
	assert.Equal(t, sinkBuffer, drained)

	fresh := bus.Register(7)
	defer fresh.Close()
	got := <-fresh.Events()
	assert.EqualValues(t, 99, got.RequestID)
}

func TestBus_CloseAfterBusDetachIsSafe(t *testing.T) {
	bus := NewBus()
	sink := bus.Register(7)
	for i := int64(0); i <= sinkBuffer; i++ {
		bus.Notify(7, event(i))
	}
	// The bus already detached the sink; an explicit Close must not panic.
	sink.Close()
}

func TestBus_MultipleSinksSameUser(t *testing.T) {
	bus := NewBus()
	a := bus.Register(7)
	b := bus.Register(7)
	defer a.Close()
	defer b.Close()

	bus.Notify(7, event(5))

	gotA := <-a.Events()
	gotB := <-b.Events()
	assert.EqualValues(t, 5, gotA.RequestID)
	assert.EqualValues(t, 5, gotB.RequestID)
}

func TestBus_EventsAfterCloseQueue(t *testing.T) {
	bus := NewBus()
	sink := bus.Register(7)
	sink.Close()

	bus.Notify(7, event(3))

	fresh := bus.Register(7)
	defer fresh.Close()
	got := <-fresh.Events()
	require.EqualValues(t, 3, got.RequestID)
}
