package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.False(t, cfg.EnforceCapacity)
	require.Empty(t, cfg.KafkaBrokers)
	require.False(t, cfg.PublishingEnabled())
	require.Equal(t, "activity_roster_events", cfg.RosterTopic)
	require.Equal(t, 2*time.Second, cfg.OutboxPollInterval)
	require.Equal(t, 25, cfg.OutboxBatchSize)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9000")
	t.Setenv("ENFORCE_CAPACITY", "true")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092, ,kafka-2:9092 ")
	t.Setenv("OUTBOX_POLL_INTERVAL", "500ms")
	t.Setenv("CATALOG_PATH", "/etc/mergington/activities.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.HTTPAddress)
	require.True(t, cfg.EnforceCapacity)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.PublishingEnabled())
	require.Equal(t, 500*time.Millisecond, cfg.OutboxPollInterval)
	require.Equal(t, "/etc/mergington/activities.yaml", cfg.CatalogPath)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "0")

	_, err := Load()
	require.ErrorContains(t, err, "OUTBOX_BATCH_SIZE")
}

func TestLoadRejectsUnparseableDuration(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}
