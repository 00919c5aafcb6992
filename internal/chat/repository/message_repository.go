package repository

import (
	"context"

	"craft_marketplace_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageRepository definition chat message storage
type MessageRepository interface {
	Insert(ctx context.Context, msg *domain.ChatMessage) error
	// FindPage returns one page of a room's messages, newest first
	FindPage(ctx context.Context, roomID string, page, size int) (*domain.MessagePage, error)
	// CountBySender counts the messages a user has sent in a room
	CountBySender(ctx context.Context, roomID, senderID string) (int64, error)
	// MarkAllRead records the reader on every message of the room
	MarkAllRead(ctx context.Context, roomID, readerID string) error
}

type chatMessageRepository struct {
	coll *mongo.Collection
}

// NewMongoMessageRepository create new mongo message repository
func NewMongoMessageRepository(db *mongo.Database) MessageRepository {
	return &chatMessageRepository{
		coll: db.Collection("chat_messages"),
	}
}

// Insert insert one message
func (r *chatMessageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	_, err := r.coll.InsertOne(ctx, msg)
	return err
}

// FindPage newest-first page of room messages
func (r *chatMessageRepository) FindPage(ctx context.Context, roomID string, page, size int) (*domain.MessagePage, error) {
	filter := bson.M{"room_id": roomID}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(page * size)).
		SetLimit(int64(size))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var msgs []domain.ChatMessage
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []domain.ChatMessage{}
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}

	return &domain.MessagePage{
		Content:       msgs,
		TotalElements: total,
		TotalPages:    totalPages,
		Size:          size,
		Number:        page,
		First:         page == 0,
		Last:          page >= totalPages-1,
	}, nil
}

// CountBySender count messages one user sent in a room
func (r *chatMessageRepository) CountBySender(ctx context.Context, roomID, senderID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"room_id":   roomID,
		"sender_id": senderID,
	})
}

// MarkAllRead add the reader to read_by on the room's messages
func (r *chatMessageRepository) MarkAllRead(ctx context.Context, roomID, readerID string) error {
	filter := bson.M{
		"room_id": roomID,
		"read_by": bson.M{"$ne": readerID},
	}
	update := bson.M{
		"$addToSet": bson.M{"read_by": readerID},
	}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}
