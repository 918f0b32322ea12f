package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	notificationApp "github.com/davicafu/hexasalon/internal/notification/application"
	"github.com/davicafu/hexasalon/internal/notification/domain"
	infraBus "github.com/davicafu/hexasalon/internal/shared/infra/platform/bus"
	infraQueue "github.com/davicafu/hexasalon/internal/shared/infra/platform/queue"
	"github.com/davicafu/hexasalon/tests/mocks"
)

func newBindings(repo *mocks.InMemoryNotificationRepo) *notificationApp.LifecycleBindings {
	log := zap.NewNop()
	return notificationApp.NewLifecycleBindings(
		notificationApp.NewDraftBuilder(time.UTC, log),
		notificationApp.NewWriter(repo, log),
		infraQueue.NewSyncQueue(context.Background(), log),
		log,
	)
}

func TestStartProducers_RefusesBeforeRegister(t *testing.T) {
	// Arrange
	bindings := newBindings(mocks.NewInMemoryNotificationRepo())
	started := false

	// Act
	err := startProducers(bindings, func() { started = true })

	// Assert
	assert.ErrorIs(t, err, errBindingsNotRegistered)
	assert.False(t, started)
}

func TestStartProducers_FirstEventIsHandled(t *testing.T) {
	// Arrange
	repo := mocks.NewInMemoryNotificationRepo()
	dispatcher := infraBus.NewInMemoryDispatcher()
	bindings := newBindings(repo)
	bindings.Register(dispatcher)

	// Act: el productor publica en cuanto arranca
	err := startProducers(bindings, func() {
		dispatcher.Publish(context.Background(), domain.AppointmentCreated, domain.AppointmentEvent{
			Appointment: domain.AppointmentSnapshot{
				ID:           "A",
				Status:       domain.StatusPending,
				Customer:     domain.Party{ID: "cust-1"},
				Professional: domain.Party{ID: "pro-1"},
			},
		})
	})

	// Assert
	require.NoError(t, err)
	rows := repo.All()
	require.Len(t, rows, 1)
	assert.Equal(t, "appointment:A:created:recipient:pro-1", rows[0].DedupKey)
}
