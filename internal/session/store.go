// Package session keeps conversational continuity in an external store. The
// store is a black box to the adapters: tool outputs never depend on it.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Turn is one exchange in a conversation.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Store persists bounded conversation history per session id.
type Store struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int64
}

// NewStore wraps a Redis client as a session history store.
func NewStore(client *redis.Client, ttl time.Duration, maxTurns int64) *Store {
	if maxTurns <= 0 {
		maxTurns = 20
	}
	return &Store{client: client, ttl: ttl, maxTurns: maxTurns}
}

// Append records a turn and trims history to the configured bound.
func (s *Store) Append(ctx context.Context, sessionID string, turn Turn) error {
	raw, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	key := keyPrefix + sessionID
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, raw)
	pipe.LTrim(ctx, key, -s.maxTurns, -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

// History returns the recorded turns for a session, oldest first.
func (s *Store) History(ctx context.Context, sessionID string) ([]Turn, error) {
	raw, err := s.client.LRange(ctx, keyPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}
