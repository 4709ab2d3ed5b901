// Package domain defines the signup rules for school activities.
package domain

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"example.com/mergington/internal/events"
	"example.com/mergington/internal/observability"
)

var (
	// ErrActivityNotFound is returned when no activity carries the requested name.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp is returned when signing up an email already on the roster.
	ErrAlreadySignedUp = errors.New("participant already signed up")
	// ErrNotSignedUp is returned when unregistering an email that is not on the roster.
	ErrNotSignedUp = errors.New("participant not signed up")
	// ErrActivityFull is returned by signup when capacity enforcement is on and the roster is full.
	ErrActivityFull = errors.New("activity is full")
)

// ActivityRepository captures storage operations for activity rosters.
type ActivityRepository interface {
	List(ctx context.Context) ([]Activity, error)
	// Update runs fn against the named activity while holding the store's exclusive lock
	// and returns a copy of the result. fn returning nil commits the change; returning an
	// error leaves the stored activity untouched. Implementations must not fail after fn
	// has returned nil.
	Update(ctx context.Context, name string, fn func(*Activity) error) (Activity, error)
}

// EventRecorder receives roster events after a transition has been applied.
type EventRecorder interface {
	Record(ctx context.Context, evt events.RosterEvent)
}

// NoopRecorder discards events.
type NoopRecorder struct{}

// Record performs no action.
func (NoopRecorder) Record(context.Context, events.RosterEvent) {}

// Option configures optional behaviour for the Service.
type Option func(*Service)

// WithCapacityEnforcement makes signup reject activities whose roster is already full.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *Service) {
		s.enforceCapacity = enabled
	}
}

// WithRecorder sets the destination for roster events.
func WithRecorder(recorder EventRecorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// Service orchestrates signup and unregister transitions.
type Service struct {
	repo            ActivityRepository
	recorder        EventRecorder
	enforceCapacity bool
	now             func() time.Time
}

// NewService constructs a Service.
func NewService(repo ActivityRepository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		recorder: NoopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivities returns every activity with its current roster.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	return s.repo.List(ctx)
}

// Signup moves email from not-registered to registered for the named activity.
func (s *Service) Signup(ctx context.Context, name, email string) (*Activity, error) {
	updated, err := s.repo.Update(ctx, name, func(a *Activity) error {
		if a.HasParticipant(email) {
			return ErrAlreadySignedUp
		}
		if s.enforceCapacity && a.SpotsLeft() <= 0 {
			return ErrActivityFull
		}
		a.Participants = append(a.Participants, email)
		s.publish(ctx, events.TypeParticipantSignedUp, *a, email)
		return nil
	})
	s.observe(observability.TransitionSignup, name, err)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Unregister moves email from registered back to not-registered for the named activity.
func (s *Service) Unregister(ctx context.Context, name, email string) (*Activity, error) {
	updated, err := s.repo.Update(ctx, name, func(a *Activity) error {
		idx := slices.Index(a.Participants, email)
		if idx < 0 {
			return ErrNotSignedUp
		}
		a.Participants = slices.Delete(a.Participants, idx, idx+1)
		s.publish(ctx, events.TypeParticipantUnregistered, *a, email)
		return nil
	})
	s.observe(observability.TransitionUnregister, name, err)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// observe records the transition outcome. Unknown names collapse into one label so
// arbitrary path segments cannot grow the metric's cardinality.
func (s *Service) observe(transition, name string, err error) {
	outcome := observability.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, ErrActivityNotFound):
		name = observability.UnknownActivity
		outcome = "not_found"
	case errors.Is(err, ErrAlreadySignedUp):
		outcome = "already_signed_up"
	case errors.Is(err, ErrNotSignedUp):
		outcome = "not_signed_up"
	case errors.Is(err, ErrActivityFull):
		outcome = "full"
	default:
		outcome = observability.OutcomeError
	}
	observability.RecordTransition(transition, name, outcome)
}

// publish updates the enrollment gauge and records the roster event. It is the last step
// of an Update closure, so it runs under the store lock and events for one activity
// leave in the same order as the transitions that produced them.
func (s *Service) publish(ctx context.Context, eventType string, a Activity, email string) {
	observability.RecordEnrollment(a.Name, len(a.Participants))
	s.recorder.Record(ctx, s.event(eventType, a, email))
}

func (s *Service) event(eventType string, a Activity, email string) events.RosterEvent {
	return events.RosterEvent{
		EventID:          uuid.NewString(),
		EventType:        eventType,
		Activity:         a.Name,
		Email:            email,
		ParticipantCount: len(a.Participants),
		MaxParticipants:  a.MaxParticipants,
		OccurredAt:       s.now(),
	}
}
