package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"craft_marketplace_service/internal/chat/domain"
	"craft_marketplace_service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PubSub definition room topic pub/sub
type PubSub interface {
	Publish(topic string, payload interface{}) error
	Subscribe(ctx context.Context, topic string, handler func(evt domain.WSEvent)) error
}

// RedisPubSub fan out room events over redis channels
type RedisPubSub struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisPubSub create RedisPubSub
func NewRedisPubSub(client *redis.Client) *RedisPubSub {
	return &RedisPubSub{
		client: client,
		ctx:    context.Background(),
	}
}

// Publish marshal the payload and publish it on the topic channel
func (r *RedisPubSub) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return r.client.Publish(r.ctx, topic, data).Err()
}

// Subscribe listen on a topic and call handler for every event until ctx
// is canceled
func (r *RedisPubSub) Subscribe(ctx context.Context, topic string, handler func(evt domain.WSEvent)) error {
	sub := r.client.Subscribe(r.ctx, topic)
	go func() {
		ch := sub.Channel()

		for {
			select {
			case m, ok := <-ch:
				if !ok {
					return
				}

				handler(domain.WSEvent{
					Topic:   topic,
					Payload: json.RawMessage(m.Payload),
				})
			case <-ctx.Done():
				logger.Log.Info(fmt.Sprintf("%s , sub close", topic))
				if err := sub.Close(); err != nil {
					logger.Log.Error("close subscription err :", zap.Error(err))
				}
				return
			}
		}
	}()
	return nil
}
