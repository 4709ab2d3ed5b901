package outbox

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/mergington/internal/events"
)

func evt(i int) events.RosterEvent {
	return events.RosterEvent{
		EventID:   fmt.Sprintf("evt-%d", i),
		EventType: events.TypeParticipantSignedUp,
		Activity:  "Chess Club",
		Email:     fmt.Sprintf("s%d@mergington.edu", i),
	}
}

func ids(evts []events.RosterEvent) []string {
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.EventID)
	}
	return out
}

func TestOutboxDrainIsFIFO(t *testing.T) {
	o := New(10)
	for i := 0; i < 5; i++ {
		o.Record(context.Background(), evt(i))
	}

	require.Equal(t, []string{"evt-0", "evt-1", "evt-2"}, ids(o.Drain(3)))
	require.Equal(t, []string{"evt-3", "evt-4"}, ids(o.Drain(3)))
	require.Nil(t, o.Drain(3))
	require.Zero(t, o.Len())
}

func TestOutboxDropsOldestWhenFull(t *testing.T) {
	o := New(3)
	for i := 0; i < 5; i++ {
		o.Record(context.Background(), evt(i))
	}

	require.Equal(t, 3, o.Len())
	require.Equal(t, []string{"evt-2", "evt-3", "evt-4"}, ids(o.Drain(10)))
}

func TestOutboxRequeueGoesToFront(t *testing.T) {
	o := New(10)
	o.Record(context.Background(), evt(0))
	o.Record(context.Background(), evt(1))

	batch := o.Drain(2)
	o.Record(context.Background(), evt(2))
	o.Requeue(batch)

	require.Equal(t, []string{"evt-0", "evt-1", "evt-2"}, ids(o.Drain(10)))
}

func TestOutboxRequeueOverflowDropsOldest(t *testing.T) {
	o := New(2)
	o.Record(context.Background(), evt(0))
	o.Record(context.Background(), evt(1))
	batch := o.Drain(2)
	o.Record(context.Background(), evt(2))

	o.Requeue(batch)

	require.Equal(t, []string{"evt-1", "evt-2"}, ids(o.Drain(10)))
}
