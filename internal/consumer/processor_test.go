package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"example.com/mergington/internal/events"
)

func rosterMessage(t *testing.T, offset int64, evt events.RosterEvent) kafka.Message {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafka.Message{
		Topic:     "activity_roster_events",
		Partition: 0,
		Offset:    offset,
		Time:      time.Now().UTC(),
		Key:       []byte(evt.Activity),
		Value:     payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.EventType)},
			{Key: "event_id", Value: []byte(evt.EventID)},
		},
	}
}

func TestProcessorCommitsOnSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evt := events.RosterEvent{
		EventID:          "evt-1",
		EventType:        events.TypeParticipantSignedUp,
		Activity:         "Chess Club",
		Email:            "x@mergington.edu",
		ParticipantCount: 3,
		MaxParticipants:  12,
	}
	reader := &stubReader{messages: []kafka.Message{rosterMessage(t, 10, evt)}, after: contextCanceled}
	handler := &stubHandler{}

	processor := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 1, reader.commitCalls)
	require.Equal(t, events.TypeParticipantSignedUp, handler.last.EventType)
	require.Equal(t, evt, handler.last.Event)
	require.EqualValues(t, 10, handler.last.Offset)
}

func TestProcessorSkipsCommitOnHandlerError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evt := events.RosterEvent{EventID: "evt-2", EventType: events.TypeParticipantUnregistered, Activity: "Art Studio"}
	reader := &stubReader{messages: []kafka.Message{rosterMessage(t, 20, evt)}, after: contextCanceled}
	handler := &stubHandler{err: errors.New("boom")}

	processor := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t)))

	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Equal(t, 1, handler.calls)
	require.Equal(t, 0, reader.commitCalls)
}

func TestProcessorCommitsMalformedMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	malformed := []kafka.Message{
		{Topic: "bad-topic", Value: []byte(`{"activity":"Chess Club"}`)},
		{Topic: "bad-topic", Value: []byte(`not json`), Headers: []kafka.Header{{Key: "event_type", Value: []byte(events.TypeParticipantSignedUp)}}},
		{Topic: "bad-topic", Value: []byte(`{"event_type":"participant.unregistered","activity":"Chess Club"}`), Headers: []kafka.Header{{Key: "event_type", Value: []byte(events.TypeParticipantSignedUp)}}},
		{Topic: "bad-topic", Value: []byte(`{}`), Headers: []kafka.Header{{Key: "event_type", Value: []byte(events.TypeParticipantSignedUp)}}},
	}
	reader := &stubReader{messages: malformed, after: contextCanceled}
	handler := &stubHandler{}

	before := testutil.ToFloat64(decodeErrorCounter.WithLabelValues("bad-topic"))

	err := NewProcessor(reader, handler, WithLogger(zaptest.NewLogger(t))).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	require.Zero(t, handler.calls)
	require.Equal(t, len(malformed), reader.commitCalls)
	require.Equal(t, before+float64(len(malformed)), testutil.ToFloat64(decodeErrorCounter.WithLabelValues("bad-topic")))
}

func TestProcessorRetriesAfterFetchError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evt := events.RosterEvent{EventID: "evt-3", EventType: events.TypeParticipantSignedUp, Activity: "Gym Class", ParticipantCount: 1}
	reader := &stubReader{
		messages:  []kafka.Message{rosterMessage(t, 30, evt)},
		fetchErrs: []error{errors.New("leader not available")},
		after:     contextCanceled,
	}
	handler := &stubHandler{}

	err := NewProcessor(reader, handler, WithFetchBackoff(time.Millisecond)).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, handler.calls)
}

func TestProcessorStopsDuringFetchBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &stubReader{fetchErrs: []error{errors.New("broker unreachable")}}
	processor := NewProcessor(reader, &stubHandler{}, WithFetchBackoff(time.Hour))

	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	err := processor.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, time.Since(start), 5*time.Second)
	require.Zero(t, reader.commitCalls)
}

func TestEnrollmentHandlerTracksCounts(t *testing.T) {
	h := NewEnrollmentHandler(zaptest.NewLogger(t))

	err := h.Handle(context.Background(), Message{
		EventType: events.TypeParticipantSignedUp,
		Event:     events.RosterEvent{Activity: "Chess Club", ParticipantCount: 3, MaxParticipants: 12},
	})
	require.NoError(t, err)
	err = h.Handle(context.Background(), Message{
		EventType: events.TypeParticipantUnregistered,
		Event:     events.RosterEvent{Activity: "Chess Club", ParticipantCount: 2, MaxParticipants: 12},
	})
	require.NoError(t, err)

	n, ok := h.Count("Chess Club")
	require.True(t, ok)
	require.Equal(t, 2, n)
	require.Equal(t, float64(2), testutil.ToFloat64(enrollmentGauge.WithLabelValues("Chess Club")))

	_, ok = h.Count("Art Studio")
	require.False(t, ok)
}

func TestEnrollmentHandlerRejectsUnknownEvents(t *testing.T) {
	h := NewEnrollmentHandler(nil)

	err := h.Handle(context.Background(), Message{EventType: "activity.created", Event: events.RosterEvent{Activity: "Chess Club"}})
	require.ErrorContains(t, err, "unsupported event type")

	err = h.Handle(context.Background(), Message{EventType: events.TypeParticipantSignedUp, Event: events.RosterEvent{Activity: "Chess Club", ParticipantCount: -1}})
	require.ErrorContains(t, err, "negative participant count")
}

type stubReader struct {
	messages    []kafka.Message
	fetchErrs   []error
	index       int
	commitCalls int
	after       func() error
}

func (r *stubReader) FetchMessage(context.Context) (kafka.Message, error) {
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		return kafka.Message{}, err
	}
	if r.index >= len(r.messages) {
		if r.after != nil {
			return kafka.Message{}, r.after()
		}
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[r.index]
	r.index++
	return msg, nil
}

func (r *stubReader) CommitMessages(_ context.Context, _ ...kafka.Message) error {
	r.commitCalls++
	return nil
}

func (r *stubReader) Close() error { return nil }

func contextCanceled() error { return context.Canceled }

type stubHandler struct {
	calls int
	err   error
	last  Message
}

func (h *stubHandler) Handle(_ context.Context, msg Message) error {
	h.calls++
	h.last = msg
	return h.err
}
