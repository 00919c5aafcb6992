package repository

import (
	"context"

	"craft_marketplace_service/internal/connection/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectionRepository definition connection request storage
type ConnectionRepository interface {
	Create(ctx context.Context, conn *domain.Connection) error
	FindByID(ctx context.Context, connectionID string) (*domain.Connection, error)
	// FindByRoom returns the most recent non-rejected connection for a
	// room, nil when the parties never connected
	FindByRoom(ctx context.Context, roomID string) (*domain.Connection, error)
	FindPendingReceived(ctx context.Context, userID string) ([]domain.Connection, error)
	FindPendingSent(ctx context.Context, userID string) ([]domain.Connection, error)
	FindAccepted(ctx context.Context, userID string) ([]domain.Connection, error)
	// UpdateStatus flips a PENDING connection to a terminal status; a
	// connection that already left PENDING is never touched
	UpdateStatus(ctx context.Context, connectionID string, status domain.ConnectionStatus, updatedAt string) (bool, error)
}

type connectionRepository struct {
	coll *mongo.Collection
}

// NewMongoConnectionRepository create new mongo connection repository
func NewMongoConnectionRepository(db *mongo.Database) ConnectionRepository {
	return &connectionRepository{
		coll: db.Collection("connections"),
	}
}

// Create insert one connection request
func (r *connectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	_, err := r.coll.InsertOne(ctx, conn)
	return err
}

// FindByID find connection by id
func (r *connectionRepository) FindByID(ctx context.Context, connectionID string) (*domain.Connection, error) {
	var conn domain.Connection
	err := r.coll.FindOne(ctx, bson.M{"_id": connectionID}).Decode(&conn)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// FindByRoom most recent pending or accepted connection of a room
func (r *connectionRepository) FindByRoom(ctx context.Context, roomID string) (*domain.Connection, error) {
	filter := bson.M{
		"room_id": roomID,
		"status":  bson.M{"$in": []domain.ConnectionStatus{domain.StatusPending, domain.StatusAccepted}},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var conn domain.Connection
	err := r.coll.FindOne(ctx, filter, opts).Decode(&conn)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// FindPendingReceived pending requests waiting on the user's decision
func (r *connectionRepository) FindPendingReceived(ctx context.Context, userID string) ([]domain.Connection, error) {
	return r.findAll(ctx, bson.M{
		"receiver.user_id": userID,
		"status":           domain.StatusPending,
	})
}

// FindPendingSent pending requests the user sent
func (r *connectionRepository) FindPendingSent(ctx context.Context, userID string) ([]domain.Connection, error) {
	return r.findAll(ctx, bson.M{
		"requester.user_id": userID,
		"status":            domain.StatusPending,
	})
}

// FindAccepted the user's established connections
func (r *connectionRepository) FindAccepted(ctx context.Context, userID string) ([]domain.Connection, error) {
	return r.findAll(ctx, bson.M{
		"$or": []bson.M{
			{"requester.user_id": userID},
			{"receiver.user_id": userID},
		},
		"status": domain.StatusAccepted,
	})
}

func (r *connectionRepository) findAll(ctx context.Context, filter bson.M) ([]domain.Connection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var conns []domain.Connection
	if err := cur.All(ctx, &conns); err != nil {
		return nil, err
	}
	if conns == nil {
		conns = []domain.Connection{}
	}
	return conns, nil
}

// UpdateStatus guarded transition out of PENDING; returns false when the
// connection was already terminal
func (r *connectionRepository) UpdateStatus(ctx context.Context, connectionID string, status domain.ConnectionStatus, updatedAt string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": connectionID, "status": domain.StatusPending},
		bson.M{"$set": bson.M{"status": status, "updated_at": updatedAt}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
