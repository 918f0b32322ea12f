package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedQuery "github.com/davicafu/hexasalon/shared/platform/query"
	"github.com/davicafu/hexasalon/tests/mocks"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seedRow(repo *mocks.InMemoryNotificationRepo, recipientID string, minute int, read bool) *domain.Notification {
	n := &domain.Notification{
		ID:            uuid.New(),
		DedupKey:      uuid.NewString(),
		Title:         "t",
		Message:       "m",
		Type:          domain.TypeAppointment,
		RecipientID:   recipientID,
		RecipientType: domain.RecipientCustomer,
		CreatedAt:     baseTime.Add(time.Duration(minute) * time.Minute),
	}
	if read {
		at := baseTime
		n.ReadAt = &at
	}
	repo.Put(n)
	return n
}

func newTestService(repo domain.NotificationRepository) *NotificationService {
	s := NewNotificationService(repo, zap.NewNop())
	s.now = func() time.Time { return baseTime.Add(time.Hour) }
	s.getDelay = time.Millisecond
	return s
}

func TestList_DefaultsAndNewestFirst(t *testing.T) {
	// Arrange
	repo := mocks.NewInMemoryNotificationRepo()
	older := seedRow(repo, "U", 1, false)
	newer := seedRow(repo, "U", 2, false)
	seedRow(repo, "OTHER", 3, false)
	s := newTestService(repo)

	// Act
	page, err := s.List(context.Background(), "U", domain.ListQuery{})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, sharedQuery.DefaultLimit, page.Limit)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, newer.ID, page.Items[0].ID)
	assert.Equal(t, older.ID, page.Items[1].ID)
}

func TestList_FiltersByReadStatusAndCapsLimit(t *testing.T) {
	repo := mocks.NewInMemoryNotificationRepo()
	seedRow(repo, "U", 1, true)
	unread := seedRow(repo, "U", 2, false)
	s := newTestService(repo)

	page, err := s.List(context.Background(), "U", domain.ListQuery{
		PageRequest: sharedQuery.PageRequest{Limit: 500},
		ReadStatus:  domain.ReadStatusUnread,
	})

	require.NoError(t, err)
	assert.Equal(t, sharedQuery.MaxLimit, page.Limit)
	require.Len(t, page.Items, 1)
	assert.Equal(t, unread.ID, page.Items[0].ID)
}

func TestList_InvalidStatus(t *testing.T) {
	s := newTestService(mocks.NewInMemoryNotificationRepo())

	_, err := s.List(context.Background(), "U", domain.ListQuery{ReadStatus: "SOMETIMES"})

	assert.ErrorIs(t, err, domain.ErrInvalidNotification)
}

func TestGet_OtherRecipientIsNotFound(t *testing.T) {
	// Arrange
	repo := mocks.NewInMemoryNotificationRepo()
	n := seedRow(repo, "OTHER", 1, false)
	s := newTestService(repo)

	// Act
	_, errOther := s.Get(context.Background(), "U", n.ID)
	got, errOwner := s.Get(context.Background(), "OTHER", n.ID)
	_, errMissing := s.Get(context.Background(), "U", uuid.New())

	// Assert
	assert.ErrorIs(t, errOther, domain.ErrNotificationNotFound)
	assert.ErrorIs(t, errMissing, domain.ErrNotificationNotFound)
	require.NoError(t, errOwner)
	assert.Equal(t, n.ID, got.ID)
}

func TestGet_RetriesUntilRowIsVisible(t *testing.T) {
	// Arrange: las dos primeras lecturas todavía no ven la fila
	repo := mocks.NewInMemoryNotificationRepo()
	n := seedRow(repo, "U", 1, false)
	repo.MissOnGet = 2
	s := newTestService(repo)

	// Act
	got, err := s.Get(context.Background(), "U", n.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, 0, repo.MissOnGet)
}

func TestGet_GivesUpAfterAttempts(t *testing.T) {
	repo := mocks.NewInMemoryNotificationRepo()
	n := seedRow(repo, "U", 1, false)
	repo.MissOnGet = 3
	s := newTestService(repo)

	_, err := s.Get(context.Background(), "U", n.ID)

	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
}

func TestDelete_ScopedToRecipient(t *testing.T) {
	repo := mocks.NewInMemoryNotificationRepo()
	n := seedRow(repo, "OTHER", 1, false)
	s := newTestService(repo)

	assert.ErrorIs(t, s.Delete(context.Background(), "U", n.ID), domain.ErrNotificationNotFound)
	assert.NoError(t, s.Delete(context.Background(), "OTHER", n.ID))
	assert.Empty(t, repo.All())
}

func TestMarkManyAsRead_ScenarioC(t *testing.T) {
	// Arrange: n2 es de otro destinatario, n3 ya estaba leída
	repo := mocks.NewInMemoryNotificationRepo()
	n1 := seedRow(repo, "U", 1, false)
	n2 := seedRow(repo, "OTHER", 2, false)
	n3 := seedRow(repo, "U", 3, true)
	s := newTestService(repo)

	// Act
	updated, err := s.MarkManyAsRead(context.Background(), "U", []uuid.UUID{n1.ID, n2.ID, n3.ID})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	got1, _ := repo.GetByID(context.Background(), n1.ID)
	got2, _ := repo.GetByID(context.Background(), n2.ID)
	got3, _ := repo.GetByID(context.Background(), n3.ID)
	require.NotNil(t, got1.ReadAt)
	assert.Equal(t, baseTime.Add(time.Hour), *got1.ReadAt)
	assert.Nil(t, got2.ReadAt)
	assert.Equal(t, baseTime, *got3.ReadAt, "una fila ya leída conserva su readAt")
}

func TestMarkManyAsRead_Validation(t *testing.T) {
	s := newTestService(mocks.NewInMemoryNotificationRepo())

	_, err := s.MarkManyAsRead(context.Background(), "U", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidNotification)

	tooMany := make([]uuid.UUID, domain.MaxBulkReadIDs+1)
	for i := range tooMany {
		tooMany[i] = uuid.New()
	}
	_, err = s.MarkManyAsRead(context.Background(), "U", tooMany)
	assert.ErrorIs(t, err, domain.ErrTooManyIDs)

	_, err = s.MarkManyAsRead(context.Background(), "", []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, domain.ErrInvalidNotification)
}

func TestMarkManyAsRead_DuplicatesCollapsed(t *testing.T) {
	repo := mocks.NewInMemoryNotificationRepo()
	n := seedRow(repo, "U", 1, false)
	s := newTestService(repo)

	ids := make([]uuid.UUID, domain.MaxBulkReadIDs+5)
	for i := range ids {
		ids[i] = n.ID
	}
	updated, err := s.MarkManyAsRead(context.Background(), "U", ids)

	require.NoError(t, err)
	assert.Equal(t, 1, updated)
}
