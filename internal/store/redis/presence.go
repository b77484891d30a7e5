package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/collabboard/internal/domain"
)

// Presence mirrors room membership into one Redis hash per board, keyed by
// connection id. Add and Refresh renew the hash TTL; the broker calls Refresh
// on a ticker shorter than the TTL, so only rooms left behind by a stopped
// process expire.
type Presence struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, addr, password string, db int, ttl time.Duration) (*Presence, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &Presence{client: client, ttl: ttl}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client, ttl time.Duration) *Presence {
	return &Presence{client: client, ttl: ttl}
}

func (p *Presence) Close() error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("redis.Presence.Close: %w", err)
	}
	return nil
}

func (p *Presence) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Presence) Add(ctx context.Context, boardID, connID uuid.UUID, id domain.Identity) error {
	payload, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("redis.Presence.Add: marshal: %w", err)
	}

	key := PresenceKey(boardID)
	pipe := p.client.TxPipeline()
	pipe.HSet(ctx, key, connID.String(), payload)
	if p.ttl > 0 {
		pipe.Expire(ctx, key, p.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis.Presence.Add: %w", err)
	}
	return nil
}

// Refresh writes every occupant back into the board's hash and renews its
// TTL. An empty occupant set is a no-op.
func (p *Presence) Refresh(ctx context.Context, boardID uuid.UUID, occupants map[uuid.UUID]domain.Identity) error {
	if len(occupants) == 0 {
		return nil
	}

	fields := make([]any, 0, len(occupants)*2)
	for connID, id := range occupants {
		payload, err := json.Marshal(id)
		if err != nil {
			return fmt.Errorf("redis.Presence.Refresh: marshal: %w", err)
		}
		fields = append(fields, connID.String(), payload)
	}

	key := PresenceKey(boardID)
	pipe := p.client.TxPipeline()
	pipe.HSet(ctx, key, fields...)
	if p.ttl > 0 {
		pipe.Expire(ctx, key, p.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis.Presence.Refresh: %w", err)
	}
	return nil
}

func (p *Presence) Remove(ctx context.Context, boardID, connID uuid.UUID) error {
	if err := p.client.HDel(ctx, PresenceKey(boardID), connID.String()).Err(); err != nil {
		return fmt.Errorf("redis.Presence.Remove: %w", err)
	}
	return nil
}

// List returns one identity per connection in the room. The same user may
// appear more than once; callers dedupe.
func (p *Presence) List(ctx context.Context, boardID uuid.UUID) ([]domain.Identity, error) {
	vals, err := p.client.HVals(ctx, PresenceKey(boardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis.Presence.List: %w", err)
	}
	return decodeIdentities(vals), nil
}

// decodeIdentities skips entries that do not decode.
func decodeIdentities(vals []string) []domain.Identity {
	out := make([]domain.Identity, 0, len(vals))
	for _, v := range vals {
		var id domain.Identity
		if err := json.Unmarshal([]byte(v), &id); err != nil || id.IsZero() {
			log.Warn().Err(err).Msg("redis: skipping malformed presence entry")
			continue
		}
		out = append(out, id)
	}
	return out
}

// PresenceKey returns the Redis hash key holding a board's presence.
func PresenceKey(boardID uuid.UUID) string {
	return "presence:board:" + boardID.String()
}
