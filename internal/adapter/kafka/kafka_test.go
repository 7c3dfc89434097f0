package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/farm-advisory-service/internal/config"
	"github.com/couchcryptid/farm-advisory-service/internal/domain"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if r.err != nil {
		return r.err
	}
	r.msgs = append(r.msgs, msgs...)
	return nil
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func testWriter(rw *recordingWriter) *Writer {
	return &Writer{writer: rw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testEvent(kind domain.HazardKind) domain.AlertEvent {
	return domain.AlertEvent{
		ID:          "evt-1",
		RequestID:   "req-1",
		Kind:        kind,
		Description: "Storm Alert",
		Location:    "Mekelle, Ethiopia",
		Lat:         13.49,
		Lon:         39.47,
		DetectedAt:  time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSerializeToMessage(t *testing.T) {
	event := testEvent(domain.HazardStorm)

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("req-1"), msg.Key)
	assert.Contains(t, string(msg.Value), `"kind":"storm"`)
	assert.Contains(t, string(msg.Value), `"location":"Mekelle, Ethiopia"`)
	assert.Len(t, msg.Headers, 2)
	assert.Equal(t, "alert_kind", msg.Headers[0].Key)
	assert.Equal(t, []byte("storm"), msg.Headers[0].Value)
	assert.Equal(t, "detected_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2024-06-01T09:00:00Z"), msg.Headers[1].Value)
}

func TestWriter_PublishAlerts(t *testing.T) {
	rw := &recordingWriter{}
	w := testWriter(rw)

	err := w.PublishAlerts(context.Background(), []domain.AlertEvent{
		testEvent(domain.HazardFlood),
		testEvent(domain.HazardFrost),
	})
	require.NoError(t, err)

	require.Len(t, rw.msgs, 2)
	assert.Equal(t, []byte("flood"), rw.msgs[0].Headers[0].Value)
	assert.Equal(t, []byte("frost"), rw.msgs[1].Headers[0].Value)
}

func TestWriter_PublishAlerts_Empty(t *testing.T) {
	rw := &recordingWriter{}

	require.NoError(t, testWriter(rw).PublishAlerts(context.Background(), nil))
	assert.Empty(t, rw.msgs)
}

func TestWriter_PublishAlerts_Error(t *testing.T) {
	rw := &recordingWriter{err: errors.New("leader not available")}

	err := testWriter(rw).PublishAlerts(context.Background(), []domain.AlertEvent{testEvent(domain.HazardStorm)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish 1 alert events")
}

func TestWriter_Close(t *testing.T) {
	rw := &recordingWriter{}
	require.NoError(t, testWriter(rw).Close())
	assert.True(t, rw.closed)
}

func TestNewWriter(t *testing.T) {
	cfg := &config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaAlertTopic: "hazard-alerts"}

	w := NewWriter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))

	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "hazard-alerts", kw.Topic)
	assert.Equal(t, kafkago.RequireAll, kw.RequiredAcks)
}
