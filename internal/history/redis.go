// internal/history/redis.go
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one stored conversation turn.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store keeps a short rolling AI conversation history per user in Redis.
// History is advisory: losing it only degrades answer continuity, so the
// keys carry a TTL and the list is trimmed to a fixed length.
type Store struct {
	rdb   *redis.Client
	limit int64
	ttl   time.Duration
}

func New(addr, password string, db, limit int, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Store{rdb: rdb, limit: int64(limit), ttl: ttl}, nil
}

func key(userID int64) string {
	return fmt.Sprintf("chat:history:%d", userID)
}

// Append records one turn and trims the history to the configured limit.
func (s *Store) Append(ctx context.Context, userID int64, role, content string) error {
	data, err := json.Marshal(Entry{Role: role, Content: content})
	if err != nil {
		return err
	}

	k := key(userID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, k, data)
	pipe.LTrim(ctx, k, -s.limit, -1)
	pipe.Expire(ctx, k, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append chat history for %d: %w", userID, err)
	}
	return nil
}

// Recent returns the stored turns, oldest first.
func (s *Store) Recent(ctx context.Context, userID int64) ([]Entry, error) {
	raw, err := s.rdb.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read chat history for %d: %w", userID, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue // skip corrupt entries rather than fail the chat
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Clear drops the history, used when the user exits AI chat.
func (s *Store) Clear(ctx context.Context, userID int64) error {
	return s.rdb.Del(ctx, key(userID)).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
