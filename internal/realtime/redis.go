package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodcourt-be/internal/logger"
	"foodcourt-be/internal/notify"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	relayChannel       = "orders:events"
	directoryTTL       = 12 * time.Hour
	directoryKeyFormat = "ws:user:%s"
)

// relayMessage travels between instances. An empty ConnID means broadcast.
type relayMessage struct {
	ConnID string          `json:"connId,omitempty"`
	Frame  json.RawMessage `json:"frame"`
}

// RedisRelay publishes events through Redis pub/sub so that every instance
// delivers them to its own sockets.
type RedisRelay struct {
	client redis.UniversalClient
	hub    *Hub
}

func NewRedisRelay(client redis.UniversalClient, hub *Hub) *RedisRelay {
	return &RedisRelay{client: client, hub: hub}
}

var _ notify.Transport = (*RedisRelay)(nil)

func (r *RedisRelay) Broadcast(ctx context.Context, event string, payload any) error {
	return r.publish(ctx, "", event, payload)
}

func (r *RedisRelay) SendToConnection(ctx context.Context, connID, event string, payload any) error {
	return r.publish(ctx, connID, event, payload)
}

func (r *RedisRelay) publish(ctx context.Context, connID, event string, payload any) error {
	frame, err := encode(event, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(relayMessage{ConnID: connID, Frame: frame})
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, relayChannel, data).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

// Subscribe blocks, feeding relayed events to the local hub until ctx ends.
// ready, when non-nil, is closed once the subscription is active.
func (r *RedisRelay) Subscribe(ctx context.Context, ready chan<- struct{}) error {
	pubsub := r.client.Subscribe(ctx, relayChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe failed: %w", err)
	}
	if ready != nil {
		close(ready)
	}

	log := logger.L().With(zap.String("layer", "realtime"), zap.String("channel", relayChannel))
	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var m relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				log.Warn("discarding malformed relay message", zap.Error(err))
				continue
			}
			r.hub.stats.Relayed.Inc()
			if m.ConnID == "" {
				r.hub.deliverAll(ctx, m.Frame)
				continue
			}
			// the connection lives on exactly one instance
			if err := r.hub.deliverTo(m.ConnID, m.Frame); err != nil && !errors.Is(err, ErrConnectionGone) {
				log.Warn("relay delivery failed", zap.String("conn_id", m.ConnID), zap.Error(err))
			}

		case <-ctx.Done():
			return nil
		}
	}
}

// RedisDirectory shares the user to connection mapping across instances.
type RedisDirectory struct {
	client redis.UniversalClient
}

func NewRedisDirectory(client redis.UniversalClient) *RedisDirectory {
	return &RedisDirectory{client: client}
}

var _ notify.Directory = (*RedisDirectory)(nil)

// deletes the key only if it still points at the disconnecting socket
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (d *RedisDirectory) Register(ctx context.Context, userID, connID string) error {
	if err := d.client.Set(ctx, directoryKey(userID), connID, directoryTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (d *RedisDirectory) Unregister(ctx context.Context, userID, connID string) error {
	if err := compareAndDelete.Run(ctx, d.client, []string{directoryKey(userID)}, connID).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (d *RedisDirectory) Lookup(ctx context.Context, userID string) (string, bool, error) {
	id, err := d.client.Get(ctx, directoryKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get failed: %w", err)
	}
	return id, true, nil
}

func directoryKey(userID string) string {
	return fmt.Sprintf(directoryKeyFormat, userID)
}
