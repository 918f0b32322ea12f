package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

type keyed struct {
	ID string `json:"id"`
}

func (k keyed) PartitionKey() string { return k.ID }

func TestKafkaPublisher_UsesPartitionKey(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), keyed{ID: "cust-1"}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, "cust-1", string(w.msgs[0].Key))
	var decoded keyed
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "cust-1", decoded.ID)
}

func TestKafkaPublisher_WithoutKeyer(t *testing.T) {
	w := &fakeWriter{}
	p := NewKafkaPublisher(w, zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), map[string]string{"a": "b"}))
	assert.Nil(t, w.msgs[0].Key)
}

func TestKafkaPublisher_PropagatesWriterError(t *testing.T) {
	p := NewKafkaPublisher(&fakeWriter{err: errors.New("kafka is down")}, zap.NewNop())

	err := p.PublishWithKey(context.Background(), "k", "v")
	assert.EqualError(t, err, "kafka is down")
}

type fakeReader struct {
	mu   sync.Mutex
	msgs []kafka.Message
	errs int
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.errs > 0 {
		r.errs--
		r.mu.Unlock()
		return kafka.Message{}, errors.New("broker hiccup")
	}
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

type recordingHandler struct {
	mu   sync.Mutex
	keys []string
	done chan struct{}
	want int
}

func (h *recordingHandler) HandleMessage(ctx context.Context, key string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = append(h.keys, key)
	if len(h.keys) == h.want {
		close(h.done)
	}
}

func TestConsumerAdapter_DeliversMessagesAndSurvivesReadErrors(t *testing.T) {
	// Arrange
	reader := &fakeReader{
		errs: 1,
		msgs: []kafka.Message{{Key: []byte("a1")}, {Key: []byte("a2")}},
	}
	handler := &recordingHandler{done: make(chan struct{}), want: 2}
	adapter := NewConsumerAdapter(reader, "appointment-events", handler, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	// Act
	stopped := adapter.Start(ctx)

	// Assert
	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("el handler no recibió los mensajes")
	}
	cancel()
	<-stopped

	handler.mu.Lock()
	defer handler.mu.Unlock()
	assert.Equal(t, []string{"a1", "a2"}, handler.keys)
}
