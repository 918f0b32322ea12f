package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	// _ "github.com/mattn/go-sqlite3" // better performance but requires gcc
	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedQuery "github.com/davicafu/hexasalon/shared/platform/query"
)

// Ancho fijo para que ORDER BY sobre el texto respete el orden temporal.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type NotificationRepoSQLite struct {
	db *sql.DB
}

var _ domain.NotificationRepository = (*NotificationRepoSQLite)(nil)

func NewNotificationRepoSQLite(db *sql.DB) *NotificationRepoSQLite {
	return &NotificationRepoSQLite{db: db}
}

const selectColumns = `id, dedup_key, title, message, type, recipient_id, recipient_type, read_at, appointment_id, created_at`

// ------------------ Métodos ------------------

func (r *NotificationRepoSQLite) FindByKey(ctx context.Context, dedupKey string) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM notifications WHERE dedup_key = ?`, dedupKey)
	return scanNotification(row)
}

// Create inserta la fila; el índice único sobre dedup_key decide las carreras.
func (r *NotificationRepoSQLite) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (`+selectColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		n.ID.String(), n.DedupKey, n.Title, n.Message, string(n.Type),
		n.RecipientID, string(n.RecipientType), formatTimePtr(n.ReadAt), nullString(n.AppointmentID),
		formatTime(n.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrNotificationAlreadyExists
		}
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *NotificationRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM notifications WHERE id = ?`, id.String())
	return scanNotification(row)
}

func (r *NotificationRepoSQLite) DeleteByID(ctx context.Context, id uuid.UUID, recipientID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ? AND recipient_id = ?`, id.String(), recipientID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkManyAsRead actualiza en una sola sentencia; las filas ya leídas no se tocan.
func (r *NotificationRepoSQLite) MarkManyAsRead(ctx context.Context, ids []uuid.UUID, recipientID string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, formatTime(at), recipientID)
	for _, id := range ids {
		args = append(args, id.String())
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE notifications SET read_at = ?
		 WHERE recipient_id = ? AND read_at IS NULL AND id IN (%s)`, placeholders),
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

func (r *NotificationRepoSQLite) FindAll(ctx context.Context, recipientID string, q domain.ListQuery) (*domain.NotificationPage, error) {
	page := q.PageRequest.Normalize()

	conditions := []string{"recipient_id = ?"}
	args := []interface{}{recipientID}
	switch q.ReadStatus {
	case domain.ReadStatusRead:
		conditions = append(conditions, "read_at IS NOT NULL")
	case domain.ReadStatusUnread:
		conditions = append(conditions, "read_at IS NULL")
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM notifications %s
		ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, selectColumns, where)
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Limit, page.Offset())...)
	if err != nil {
		return nil, err
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

// ------------------ Helpers ------------------

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var (
		n                                       domain.Notification
		idStr, typ, recipientType, createdAtStr string
		readAt, appointmentID                   sql.NullString
	)
	if err := s.Scan(&idStr, &n.DedupKey, &n.Title, &n.Message, &typ,
		&n.RecipientID, &recipientType, &readAt, &appointmentID, &createdAtStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}

	parsedID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	n.ID = parsedID
	n.Type = domain.NotificationType(typ)
	n.RecipientType = domain.RecipientType(recipientType)

	if n.CreatedAt, err = time.Parse(timeLayout, createdAtStr); err != nil {
		return nil, fmt.Errorf("invalid created_at in DB: %w", err)
	}
	if readAt.Valid {
		t, err := time.Parse(timeLayout, readAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid read_at in DB: %w", err)
		}
		n.ReadAt = &t
	}
	if appointmentID.Valid {
		id := appointmentID.String
		n.AppointmentID = &id
	}
	return &n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ------------------ Inicialización de DB ------------------

// InitSQLite crea las tablas notifications y customers si no existen.
func InitSQLite(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS notifications (
            id TEXT PRIMARY KEY,
            dedup_key TEXT NOT NULL UNIQUE,
            title TEXT NOT NULL,
            message TEXT NOT NULL,
            type TEXT NOT NULL,
            recipient_id TEXT NOT NULL,
            recipient_type TEXT NOT NULL,
            read_at TEXT,
            appointment_id TEXT,
            created_at TEXT NOT NULL
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_notifications_recipient
        ON notifications (recipient_id, created_at DESC)`)
	if err != nil {
		return err
	}

	// Tabla de clientes (sólo lectura para el scheduler de cumpleaños)
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS customers (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            birth_date TEXT NOT NULL
        )
    `)
	return err
}
