package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedQuery "github.com/davicafu/hexasalon/shared/platform/query"
)

// ErrStoreDown es el error que inyecta InMemoryNotificationRepo para las claves marcadas.
var ErrStoreDown = errors.New("store unavailable")

// InMemoryNotificationRepo simula NotificationRepository con el mismo contrato que los
// adapters reales: la unicidad de DedupKey se comprueba dentro del lock.
type InMemoryNotificationRepo struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*domain.Notification
	byKey   map[string]uuid.UUID
	Creates int

	// FailCreate hace fallar Create para esas claves con ErrStoreDown.
	FailCreate map[string]bool
	// FailCreateTimes hace fallar Create las primeras N veces para esa clave.
	FailCreateTimes map[string]int
	// MissOnGet hace que los primeros N GetByID devuelvan not found (réplica atrasada).
	MissOnGet int
	// FailFind hace fallar FindByKey para esas claves con ErrStoreDown.
	FailFind map[string]bool
	// HideOnFind simula la carrera lookup/insert: FindByKey no ve la fila pero Create sí choca.
	HideOnFind bool
}

var _ domain.NotificationRepository = (*InMemoryNotificationRepo)(nil)

func NewInMemoryNotificationRepo() *InMemoryNotificationRepo {
	return &InMemoryNotificationRepo{
		rows:            make(map[uuid.UUID]*domain.Notification),
		byKey:           make(map[string]uuid.UUID),
		FailCreate:      make(map[string]bool),
		FailCreateTimes: make(map[string]int),
		FailFind:        make(map[string]bool),
	}
}

func (r *InMemoryNotificationRepo) FindByKey(ctx context.Context, dedupKey string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailFind[dedupKey] {
		return nil, ErrStoreDown
	}
	id, ok := r.byKey[dedupKey]
	if !ok || r.HideOnFind {
		return nil, domain.ErrNotificationNotFound
	}
	return clone(r.rows[id]), nil
}

func (r *InMemoryNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate[n.DedupKey] {
		return ErrStoreDown
	}
	if r.FailCreateTimes[n.DedupKey] > 0 {
		r.FailCreateTimes[n.DedupKey]--
		return ErrStoreDown
	}
	if _, ok := r.byKey[n.DedupKey]; ok {
		return domain.ErrNotificationAlreadyExists
	}
	r.rows[n.ID] = clone(n)
	r.byKey[n.DedupKey] = n.ID
	r.Creates++
	return nil
}

func (r *InMemoryNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.MissOnGet > 0 {
		r.MissOnGet--
		return nil, domain.ErrNotificationNotFound
	}
	n, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrNotificationNotFound
	}
	return clone(n), nil
}

func (r *InMemoryNotificationRepo) DeleteByID(ctx context.Context, id uuid.UUID, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok || n.RecipientID != recipientID {
		return domain.ErrNotificationNotFound
	}
	delete(r.byKey, n.DedupKey)
	delete(r.rows, id)
	return nil
}

func (r *InMemoryNotificationRepo) MarkManyAsRead(ctx context.Context, ids []uuid.UUID, recipientID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	updated := 0
	for _, id := range ids {
		n, ok := r.rows[id]
		if !ok || n.RecipientID != recipientID {
			continue
		}
		if n.MarkRead(at) {
			updated++
		}
	}
	return updated, nil
}

func (r *InMemoryNotificationRepo) FindAll(ctx context.Context, recipientID string, q domain.ListQuery) (*domain.NotificationPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	page := q.PageRequest.Normalize()
	var list []*domain.Notification
	for _, n := range r.rows {
		if n.RecipientID != recipientID {
			continue
		}
		switch q.ReadStatus {
		case domain.ReadStatusRead:
			if !n.IsRead() {
				continue
			}
		case domain.ReadStatusUnread:
			if n.IsRead() {
				continue
			}
		}
		list = append(list, clone(n))
	}

	// Más recientes primero
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	total := len(list)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return sharedQuery.NewPage(list[start:end], total, page), nil
}

// All devuelve una copia de todas las filas (orden indefinido).
func (r *InMemoryNotificationRepo) All() []*domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Notification, 0, len(r.rows))
	for _, n := range r.rows {
		out = append(out, clone(n))
	}
	return out
}

// Put inserta una fila tal cual, sin pasar por el contrato de Create.
func (r *InMemoryNotificationRepo) Put(n *domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[n.ID] = clone(n)
	r.byKey[n.DedupKey] = n.ID
}

func clone(n *domain.Notification) *domain.Notification {
	c := *n
	if n.ReadAt != nil {
		t := *n.ReadAt
		c.ReadAt = &t
	}
	if n.AppointmentID != nil {
		id := *n.AppointmentID
		c.AppointmentID = &id
	}
	return &c
}

// MockPublisher es un mock de NotificationPublisher con testify.
type MockPublisher struct {
	mock.Mock
}

var _ domain.NotificationPublisher = (*MockPublisher)(nil)

func (m *MockPublisher) PublishCreated(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

// StaticCustomerDirectory devuelve siempre los mismos clientes.
type StaticCustomerDirectory struct {
	Customers []domain.Party
	Err       error
}

var _ domain.CustomerDirectory = (*StaticCustomerDirectory)(nil)

func (d *StaticCustomerDirectory) ListBirthdays(ctx context.Context, day time.Time) ([]domain.Party, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Customers, nil
}
