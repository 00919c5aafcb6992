package repository

import (
	"context"
	"fmt"

	"craft_marketplace_service/internal/chat/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RoomRepository definition chat room storage
type RoomRepository interface {
	// GetOrCreate returns the existing designer/village room or inserts a
	// new one; starting a chat twice must land in the same room
	GetOrCreate(ctx context.Context, designer, village domain.Participant) (*domain.ChatRoom, error)
	FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error)
	// FindForUser pages the user's rooms, most recent activity first
	FindForUser(ctx context.Context, userID string, page, size int) ([]domain.ChatRoom, int64, error)
	// UpdatePreview sets the denormalized last-message fields and bumps the
	// other party's unread counter
	UpdatePreview(ctx context.Context, roomID string, msg *domain.ChatMessage, incUnreadFor string) error
	// ResetUnread zeroes the viewer's unread counter
	ResetUnread(ctx context.Context, roomID, userID string) error
}

type chatRoomRepository struct {
	coll *mongo.Collection
}

// NewMongoRoomRepository create new mongo room repository
func NewMongoRoomRepository(db *mongo.Database) RoomRepository {
	return &chatRoomRepository{
		coll: db.Collection("chat_rooms"),
	}
}

// GetOrCreate idempotent room creation for a designer/village pair
func (r *chatRoomRepository) GetOrCreate(ctx context.Context, designer, village domain.Participant) (*domain.ChatRoom, error) {
	filter := bson.M{
		"designer.user_id": designer.UserID,
		"village.user_id":  village.UserID,
	}

	var room domain.ChatRoom
	err := r.coll.FindOne(ctx, filter).Decode(&room)
	if err == nil {
		return &room, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	now := domain.NowString()
	room = domain.ChatRoom{
		RoomID:   uuid.New().String(),
		Designer: designer,
		Village:  village,
		UnreadCounts: map[string]int{
			designer.UserID: 0,
			village.UserID:  0,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByID find room by id
func (r *chatRoomRepository) FindByID(ctx context.Context, roomID string) (*domain.ChatRoom, error) {
	var room domain.ChatRoom
	err := r.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&room)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// FindForUser page the rooms a user participates in
func (r *chatRoomRepository) FindForUser(ctx context.Context, userID string, page, size int) ([]domain.ChatRoom, int64, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"designer.user_id": userID},
			{"village.user_id": userID},
		},
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "last_message_at", Value: -1}, {Key: "updated_at", Value: -1}}).
		SetSkip(int64(page * size)).
		SetLimit(int64(size))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	var rooms []domain.ChatRoom
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// UpdatePreview denormalize the last message into the room document
func (r *chatRoomRepository) UpdatePreview(ctx context.Context, roomID string, msg *domain.ChatMessage, incUnreadFor string) error {
	content := msg.Content
	if content == "" && msg.FileName != "" {
		content = msg.FileName
	}

	update := bson.M{
		"$set": bson.M{
			"last_message_content":     content,
			"last_message_type":        msg.MessageType,
			"last_message_at":          msg.CreatedAt,
			"last_message_sender_name": msg.SenderName,
			"updated_at":               domain.NowString(),
		},
	}
	if incUnreadFor != "" {
		update["$inc"] = bson.M{fmt.Sprintf("unread_counts.%s", incUnreadFor): 1}
	}

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	return err
}

// ResetUnread zero the viewer's unread counter
func (r *chatRoomRepository) ResetUnread(ctx context.Context, roomID, userID string) error {
	update := bson.M{
		"$set": bson.M{fmt.Sprintf("unread_counts.%s", userID): 0},
	}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	return err
}
