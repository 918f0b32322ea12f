package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver de PostgreSQL

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedQuery "github.com/davicafu/hexasalon/shared/platform/query"
)

const uniqueViolation = "23505"

// NotificationRepoPostgres implementa NotificationRepository para PostgreSQL.
type NotificationRepoPostgres struct {
	db *sql.DB
}

var _ domain.NotificationRepository = (*NotificationRepoPostgres)(nil)

func NewNotificationRepoPostgres(db *sql.DB) *NotificationRepoPostgres {
	return &NotificationRepoPostgres{db: db}
}

const selectColumns = `id, dedup_key, title, message, type, recipient_id, recipient_type, read_at, appointment_id, created_at`

// ------------------ Escritura ------------------

func (r *NotificationRepoPostgres) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (`+selectColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		n.ID, n.DedupKey, n.Title, n.Message, string(n.Type),
		n.RecipientID, string(n.RecipientType), n.ReadAt, n.AppointmentID, n.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrNotificationAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *NotificationRepoPostgres) DeleteByID(ctx context.Context, id uuid.UUID, recipientID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id=$1 AND recipient_id=$2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepoPostgres) MarkManyAsRead(ctx context.Context, ids []uuid.UUID, recipientID string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args := markManyQuery(ids, recipientID, at)
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// markManyQuery genera un placeholder por id ($3, $4, ...).
func markManyQuery(ids []uuid.UUID, recipientID string, at time.Time) (string, []interface{}) {
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, at.UTC(), recipientID)
	placeholders := make([]string, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+3))
		args = append(args, id)
	}
	query := fmt.Sprintf(`UPDATE notifications SET read_at=$1
		WHERE recipient_id=$2 AND read_at IS NULL AND id IN (%s)`, strings.Join(placeholders, ", "))
	return query, args
}

// ------------------ Lectura ------------------

func (r *NotificationRepoPostgres) FindByKey(ctx context.Context, dedupKey string) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM notifications WHERE dedup_key=$1`, dedupKey)
	return scanNotification(row)
}

func (r *NotificationRepoPostgres) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM notifications WHERE id=$1`, id)
	return scanNotification(row)
}

func (r *NotificationRepoPostgres) FindAll(ctx context.Context, recipientID string, q domain.ListQuery) (*domain.NotificationPage, error) {
	page := q.PageRequest.Normalize()
	where := readStatusWhere(q.ReadStatus)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications `+where, recipientID).Scan(&total); err != nil {
		return nil, fmt.Errorf("db count error: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM notifications %s
		ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, selectColumns, where)
	rows, err := r.db.QueryContext(ctx, query, recipientID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("db query error: %w", err)
	}
	defer rows.Close()

	var items []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sharedQuery.NewPage(items, total, page), nil
}

func readStatusWhere(status domain.ReadStatus) string {
	where := "WHERE recipient_id=$1"
	switch status {
	case domain.ReadStatusRead:
		where += " AND read_at IS NOT NULL"
	case domain.ReadStatusUnread:
		where += " AND read_at IS NULL"
	}
	return where
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var (
		n                  domain.Notification
		typ, recipientType string
		readAt             sql.NullTime
		appointmentID      sql.NullString
	)
	err := s.Scan(&n.ID, &n.DedupKey, &n.Title, &n.Message, &typ,
		&n.RecipientID, &recipientType, &readAt, &appointmentID, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("db scan error: %w", err)
	}

	n.Type = domain.NotificationType(typ)
	n.RecipientType = domain.RecipientType(recipientType)
	n.CreatedAt = n.CreatedAt.UTC()
	if readAt.Valid {
		t := readAt.Time.UTC()
		n.ReadAt = &t
	}
	if appointmentID.Valid {
		id := appointmentID.String
		n.AppointmentID = &id
	}
	return &n, nil
}

// ------------------ Inicialización de DB ------------------

// InitPostgres crea la tabla notifications si no existe.
func InitPostgres(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		dedup_key TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		type TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		recipient_type TEXT NOT NULL,
		read_at TIMESTAMPTZ,
		appointment_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_notifications_dedup_key ON notifications (dedup_key)`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_notifications_recipient
		ON notifications (recipient_id, created_at DESC)`)
	return err
}
