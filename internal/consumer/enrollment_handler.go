package consumer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"example.com/mergington/internal/events"
)

// EnrollmentHandler tracks the latest participant count per activity.
type EnrollmentHandler struct {
	mu     sync.Mutex
	counts map[string]int
	logger *zap.Logger
}

// NewEnrollmentHandler constructs an EnrollmentHandler.
func NewEnrollmentHandler(logger *zap.Logger) *EnrollmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentHandler{counts: make(map[string]int), logger: logger}
}

// Handle implements Handler.
func (h *EnrollmentHandler) Handle(_ context.Context, msg Message) error {
	switch msg.EventType {
	case events.TypeParticipantSignedUp, events.TypeParticipantUnregistered:
	default:
		return fmt.Errorf("unsupported event type %q", msg.EventType)
	}
	if msg.Event.ParticipantCount < 0 {
		return fmt.Errorf("negative participant count %d", msg.Event.ParticipantCount)
	}

	h.mu.Lock()
	h.counts[msg.Event.Activity] = msg.Event.ParticipantCount
	h.mu.Unlock()

	enrollmentGauge.WithLabelValues(msg.Event.Activity).Set(float64(msg.Event.ParticipantCount))
	h.logger.Info("roster changed",
		zap.String("event_type", msg.EventType),
		zap.String("activity", msg.Event.Activity),
		zap.String("email", msg.Event.Email),
		zap.Int("participants", msg.Event.ParticipantCount),
		zap.Int("max_participants", msg.Event.MaxParticipants),
	)
	return nil
}

// Count returns the last known participant count for an activity.
func (h *EnrollmentHandler) Count(activity string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.counts[activity]
	return n, ok
}
