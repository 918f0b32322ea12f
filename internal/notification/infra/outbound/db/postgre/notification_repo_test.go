package postgres

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/davicafu/hexasalon/internal/notification/domain"
)

func TestMarkManyQuery_OnePlaceholderPerID(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	query, args := markManyQuery(ids, "U", at)

	assert.Contains(t, query, "id IN ($3, $4, $5)")
	assert.Contains(t, query, "read_at IS NULL")
	assert.Len(t, args, 5)
	assert.Equal(t, at.UTC(), args[0])
	assert.Equal(t, "U", args[1])
	assert.Equal(t, ids[2], args[4])
}

func TestReadStatusWhere(t *testing.T) {
	assert.Equal(t, "WHERE recipient_id=$1", readStatusWhere(domain.ReadStatusAll))
	assert.Equal(t, "WHERE recipient_id=$1 AND read_at IS NOT NULL", readStatusWhere(domain.ReadStatusRead))
	assert.Equal(t, "WHERE recipient_id=$1 AND read_at IS NULL", readStatusWhere(domain.ReadStatusUnread))
}
