package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

type recordingWriter struct {
	msgs     []kafka.Message
	err      error
	deadline bool
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w *recordingWriter) *Producer {
	return &Producer{writer: w, topic: "orders.created", timeout: time.Second, logger: logger.Discard()}
}

func TestPublish_WritesKeyedJSON(t *testing.T) {
	w := &recordingWriter{}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), "ORDER-ABC123", map[string]interface{}{"type": "order.created", "total_price": 1500})
	require.NoError(t, err)

	require.Len(t, w.msgs, 1)
	assert.True(t, w.deadline)
	assert.Equal(t, "ORDER-ABC123", string(w.msgs[0].Key))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &body))
	assert.Equal(t, "order.created", body["type"])
	assert.Equal(t, float64(1500), body["total_price"])
}

func TestPublish_ReportsWriteFailure(t *testing.T) {
	p := newTestProducer(&recordingWriter{err: errors.New("leader not available")})

	err := p.Publish(context.Background(), "k", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orders.created")
}

func TestPublish_RejectsUnencodableValue(t *testing.T) {
	w := &recordingWriter{}
	p := newTestProducer(w)

	assert.Error(t, p.Publish(context.Background(), "k", make(chan int)))
	assert.Empty(t, w.msgs)
}

func TestClose(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, newTestProducer(w).Close())
	assert.True(t, w.closed)
}
