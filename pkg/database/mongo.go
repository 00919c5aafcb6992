package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// NewMongoDB connect to mongo and select dbName, retrying per the
// connection settings. Each attempt must also answer a primary ping
// before the connection counts as up.
func NewMongoDB(ctx context.Context, c Connection, dbName string) (*MongoDB, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		db, err := dialMongo(ctx, c.ConnectStr, dbName)
		if err == nil {
			return db, nil
		}
		lastErr = err

		if attempt >= c.RetryCount {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.RetryInterval):
		}
	}
	return nil, fmt.Errorf("mongo connect gave up after %d retries: %w", c.RetryCount, lastErr)
}

func dialMongo(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		client.Disconnect(ctx)
		return nil, err
	}
	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

// Close disconnect the underlying client
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
