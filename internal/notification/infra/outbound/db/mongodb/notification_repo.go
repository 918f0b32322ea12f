package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/davicafu/hexasalon/internal/notification/domain"
	sharedQuery "github.com/davicafu/hexasalon/shared/platform/query"
)

// NotificationRepoMongoDB implementa NotificationRepository para MongoDB.
type NotificationRepoMongoDB struct {
	coll *mongo.Collection
}

var _ domain.NotificationRepository = (*NotificationRepoMongoDB)(nil)

// NewNotificationRepoMongoDB verifica la conexión y asegura los índices.
func NewNotificationRepoMongoDB(ctx context.Context, client *mongo.Client, dbName string) (*NotificationRepoMongoDB, error) {
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("could not ping mongoDB: %w", err)
	}

	coll := client.Database(dbName).Collection("notifications")
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dedupKey", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_dedup_key"),
		},
		{
			Keys:    bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("idx_recipient_created"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("could not create indexes: %w", err)
	}

	return &NotificationRepoMongoDB{coll: coll}, nil
}

// --- Structs de BSON para el mapeo ---
// Se definen localmente para no "contaminar" el dominio con tags de BSON.

type mongoNotification struct {
	ID            string     `bson:"_id"`
	DedupKey      string     `bson:"dedupKey"`
	Title         string     `bson:"title"`
	Message       string     `bson:"message"`
	Type          string     `bson:"type"`
	RecipientID   string     `bson:"recipientId"`
	RecipientType string     `bson:"recipientType"`
	ReadAt        *time.Time `bson:"readAt"`
	AppointmentID *string    `bson:"appointmentId"`
	CreatedAt     time.Time  `bson:"createdAt"`
}

func toMongoNotification(n *domain.Notification) mongoNotification {
	return mongoNotification{
		ID:            n.ID.String(),
		DedupKey:      n.DedupKey,
		Title:         n.Title,
		Message:       n.Message,
		Type:          string(n.Type),
		RecipientID:   n.RecipientID,
		RecipientType: string(n.RecipientType),
		ReadAt:        n.ReadAt,
		AppointmentID: n.AppointmentID,
		CreatedAt:     n.CreatedAt.UTC(),
	}
}

func fromMongoNotification(m *mongoNotification) (*domain.Notification, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid UUID in DB: %w", err)
	}
	n := &domain.Notification{
		ID:            id,
		DedupKey:      m.DedupKey,
		Title:         m.Title,
		Message:       m.Message,
		Type:          domain.NotificationType(m.Type),
		RecipientID:   m.RecipientID,
		RecipientType: domain.RecipientType(m.RecipientType),
		AppointmentID: m.AppointmentID,
		CreatedAt:     m.CreatedAt.UTC(),
	}
	if m.ReadAt != nil {
		t := m.ReadAt.UTC()
		n.ReadAt = &t
	}
	return n, nil
}

// --- Escritura ---

func (r *NotificationRepoMongoDB) Create(ctx context.Context, n *domain.Notification) error {
	if _, err := r.coll.InsertOne(ctx, toMongoNotification(n)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrNotificationAlreadyExists
		}
		return err
	}
	return nil
}

func (r *NotificationRepoMongoDB) DeleteByID(ctx context.Context, id uuid.UUID, recipientID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String(), "recipientId": recipientID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepoMongoDB) MarkManyAsRead(ctx context.Context, ids []uuid.UUID, recipientID string, at time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.coll.UpdateMany(ctx, markManyFilter(ids, recipientID), bson.M{"$set": bson.M{"readAt": at.UTC()}})
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}

// markManyFilter: readAt nulo también cubre documentos donde el campo no existe.
func markManyFilter(ids []uuid.UUID, recipientID string) bson.M {
	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		strIDs = append(strIDs, id.String())
	}
	return bson.M{
		"_id":         bson.M{"$in": strIDs},
		"recipientId": recipientID,
		"readAt":      nil,
	}
}

// --- Lectura ---

func (r *NotificationRepoMongoDB) FindByKey(ctx context.Context, dedupKey string) (*domain.Notification, error) {
	return r.findOne(ctx, bson.M{"dedupKey": dedupKey})
}

func (r *NotificationRepoMongoDB) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *NotificationRepoMongoDB) findOne(ctx context.Context, filter bson.M) (*domain.Notification, error) {
	var m mongoNotification
	if err := r.coll.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return fromMongoNotification(&m)
}

func (r *NotificationRepoMongoDB) FindAll(ctx context.Context, recipientID string, q domain.ListQuery) (*domain.NotificationPage, error) {
	page := q.PageRequest.Normalize()
	filter := listFilter(recipientID, q.ReadStatus)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(page.Offset())).
		SetLimit(int64(page.Limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*domain.Notification
	for cursor.Next(ctx) {
		var m mongoNotification
		if err := cursor.Decode(&m); err != nil {
			return nil, err
		}
		n, err := fromMongoNotification(&m)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return sharedQuery.NewPage(items, int(total), page), nil
}

func listFilter(recipientID string, status domain.ReadStatus) bson.M {
	filter := bson.M{"recipientId": recipientID}
	switch status {
	case domain.ReadStatusRead:
		filter["readAt"] = bson.M{"$ne": nil}
	case domain.ReadStatusUnread:
		filter["readAt"] = nil
	}
	return filter
}
