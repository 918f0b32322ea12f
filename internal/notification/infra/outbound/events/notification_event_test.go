package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedKafka "github.com/davicafu/hexasalon/internal/shared/infra/events"
	sharedEvents "github.com/davicafu/hexasalon/shared/events"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestKafkaNotificationPublisher_PublishCreated(t *testing.T) {
	// Arrange
	w := &captureWriter{}
	p := NewKafkaNotificationPublisher(sharedKafka.NewKafkaPublisher(w, zap.NewNop()))
	appointmentID := "A"
	n := &domain.Notification{
		ID:            uuid.New(),
		DedupKey:      "appointment:A:confirmed:recipient:cust-1",
		Title:         "Cita confirmada",
		Message:       "m",
		Type:          domain.TypeAppointment,
		RecipientID:   "cust-1",
		RecipientType: domain.RecipientCustomer,
		AppointmentID: &appointmentID,
		CreatedAt:     time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	// Act
	require.NoError(t, p.PublishCreated(context.Background(), n))

	// Assert
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "cust-1", string(w.msgs[0].Key))

	var envelope sharedEvents.IntegrationEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &envelope))
	assert.Equal(t, domain.NotificationCreated, envelope.Type)

	var data sharedEvents.NotificationCreated
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Equal(t, n.ID.String(), data.ID)
	assert.Equal(t, n.DedupKey, data.DedupKey)
	assert.Equal(t, "CUSTOMER", data.RecipientType)
	require.NotNil(t, data.AppointmentID)
	assert.Equal(t, "A", *data.AppointmentID)
}

func TestKafkaNotificationPublisher_PropagatesError(t *testing.T) {
	w := &captureWriter{err: errors.New("kafka is down")}
	p := NewKafkaNotificationPublisher(sharedKafka.NewKafkaPublisher(w, zap.NewNop()))

	err := p.PublishCreated(context.Background(), &domain.Notification{ID: uuid.New(), RecipientID: "U"})

	assert.Error(t, err)
}
