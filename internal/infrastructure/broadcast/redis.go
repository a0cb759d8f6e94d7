package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
	"github.com/johnquangdev/monitor-agent/pkg/config"
)

// Event types published on the fan-out channel
const (
	EventNewTranscript = "new_transcript"
	EventSegmentFailed = "segment_failed"
)

// Event is the message delivered to real-time subscribers
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// Publisher is the part of the Redis client the broadcaster needs
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Broadcaster publishes finished records and dropped segments to a Redis channel
type Broadcaster struct {
	client  Publisher
	channel string
	logger  *zap.Logger
}

// NewBroadcaster creates a broadcaster on channel
func NewBroadcaster(client Publisher, channel string, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{client: client, channel: channel, logger: logger}
}

func (b *Broadcaster) Name() string { return "broadcast" }

// Deliver publishes a new_transcript event
func (b *Broadcaster) Deliver(ctx context.Context, record entities.TranscriptRecord) error {
	return b.publish(ctx, Event{Type: EventNewTranscript, Data: record})
}

// NotifyFailure publishes a segment_failed event
func (b *Broadcaster) NotifyFailure(ctx context.Context, failure entities.SegmentFailure) error {
	return b.publish(ctx, Event{Type: EventSegmentFailed, Data: failure})
}

func (b *Broadcaster) publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}

	receivers, err := b.client.Publish(ctx, b.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("publish %s event: %w", event.Type, err)
	}

	if b.logger != nil {
		b.logger.Debug("Event published",
			zap.String("type", event.Type),
			zap.String("channel", b.channel),
			zap.Int64("receivers", receivers),
		)
	}
	return nil
}

// Subscriber streams raw events from the Redis channel
type Subscriber struct {
	client  *redis.Client
	channel string
}

// NewSubscriber creates a subscriber on channel
func NewSubscriber(client *redis.Client, channel string) *Subscriber {
	return &Subscriber{client: client, channel: channel}
}

// Subscribe returns a stream of event payloads and a function that ends the subscription
func (s *Subscriber) Subscribe(ctx context.Context) (<-chan []byte, func() error, error) {
	pubsub := s.client.Subscribe(ctx, s.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe %s: %w", s.channel, err)
	}

	out := make(chan []byte, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, pubsub.Close, nil
}
