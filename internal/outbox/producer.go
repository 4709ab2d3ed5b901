package outbox

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// NewRosterWriter returns the writer the Dispatcher publishes through. All roster
// events share one topic; keying by activity name keeps each roster's events on one
// partition and therefore in order.
func NewRosterWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}
