// Package outbox buffers roster events and delivers them to Kafka.
package outbox

import (
	"context"
	"sync"

	"example.com/mergington/internal/events"
)

// Outbox is a bounded FIFO of roster events waiting for delivery. When full, the
// oldest pending event is dropped to make room.
type Outbox struct {
	mu       sync.Mutex
	pending  []events.RosterEvent
	capacity int
}

// New constructs an Outbox holding at most capacity events.
func New(capacity int) *Outbox {
	if capacity <= 0 {
		capacity = 1
	}
	return &Outbox{capacity: capacity}
}

// Record implements domain.EventRecorder.
func (o *Outbox) Record(_ context.Context, evt events.RosterEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(o.pending) >= o.capacity {
		o.pending = o.pending[1:]
		droppedCounter.Inc()
	}
	o.pending = append(o.pending, evt)
	pendingGauge.Set(float64(len(o.pending)))
}

// Drain removes and returns up to max events from the front of the queue.
func (o *Outbox) Drain(max int) []events.RosterEvent {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := min(max, len(o.pending))
	if n <= 0 {
		return nil
	}
	out := make([]events.RosterEvent, n)
	copy(out, o.pending[:n])
	o.pending = o.pending[n:]
	pendingGauge.Set(float64(len(o.pending)))
	return out
}

// Requeue puts undelivered events back at the front, ahead of anything recorded since
// they were drained. Overflow drops the oldest events.
func (o *Outbox) Requeue(evts []events.RosterEvent) {
	if len(evts) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	merged := make([]events.RosterEvent, 0, len(evts)+len(o.pending))
	merged = append(merged, evts...)
	merged = append(merged, o.pending...)
	if overflow := len(merged) - o.capacity; overflow > 0 {
		merged = merged[overflow:]
		droppedCounter.Add(float64(overflow))
	}
	o.pending = merged
	pendingGauge.Set(float64(len(o.pending)))
}

// Len reports the number of pending events.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}
