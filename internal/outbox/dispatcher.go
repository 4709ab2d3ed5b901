package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"example.com/mergington/internal/events"
)

// flushTimeout bounds the final delivery attempt made while shutting down.
const flushTimeout = 5 * time.Second

// messageWriter is satisfied by *kafka.Writer.
type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
}

// Dispatcher drains the outbox and publishes roster events to Kafka.
type Dispatcher struct {
	outbox           *Outbox
	writer           messageWriter
	pollInterval     time.Duration
	batchSize        int
	logger           *zap.Logger
	shutdownComplete chan struct{}
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(outbox *Outbox, writer messageWriter, pollInterval time.Duration, batchSize int, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		outbox:           outbox,
		writer:           writer,
		pollInterval:     pollInterval,
		batchSize:        batchSize,
		logger:           logger.Named("outbox"),
		shutdownComplete: make(chan struct{}),
	}
}

// Start launches the polling loop. It should be called in a goroutine; it returns after
// ctx is cancelled and one last flush has been attempted.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.shutdownComplete)
	}()

	for {
		if err := d.flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Warn("delivery failed, events re-queued", zap.Error(err), zap.Int("pending", d.outbox.Len()))
		}

		select {
		case <-ctx.Done():
			d.finalFlush()
			return
		case <-ticker.C:
		}
	}
}

// Wait waits until dispatcher stops.
func (d *Dispatcher) Wait() {
	<-d.shutdownComplete
}

func (d *Dispatcher) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := d.flush(ctx); err != nil {
		d.logger.Error("final flush failed", zap.Error(err), zap.Int("pending", d.outbox.Len()))
	}
}

// flush delivers full batches until the outbox is drained or a delivery fails.
func (d *Dispatcher) flush(ctx context.Context) error {
	for {
		n, err := d.processBatch(ctx)
		if err != nil || n < d.batchSize {
			return err
		}
	}
}

func (d *Dispatcher) processBatch(ctx context.Context) (int, error) {
	batch := d.outbox.Drain(d.batchSize)
	if len(batch) == 0 {
		return 0, nil
	}

	start := time.Now()
	defer func() { batchDuration.Observe(time.Since(start).Seconds()) }()

	msgs, err := encode(batch)
	if err != nil {
		// Encoding is deterministic; retrying would fail forever.
		failedCounter.Add(float64(len(batch)))
		return len(batch), err
	}

	if err := d.writer.WriteMessages(ctx, msgs...); err != nil {
		failedCounter.Add(float64(len(batch)))
		d.outbox.Requeue(batch)
		return len(batch), fmt.Errorf("write %d roster events: %w", len(batch), err)
	}

	deliveredCounter.Add(float64(len(batch)))
	return len(batch), nil
}

func encode(batch []events.RosterEvent) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, 0, len(batch))
	for _, evt := range batch {
		payload, err := json.Marshal(evt)
		if err != nil {
			return nil, fmt.Errorf("encode event %s: %w", evt.EventID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(evt.Activity),
			Value: payload,
			Time:  evt.OccurredAt,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(evt.EventType)},
				{Key: "event_id", Value: []byte(evt.EventID)},
			},
		})
	}
	return msgs, nil
}
