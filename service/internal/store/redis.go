// internal/store/redis.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JDasic01/AgentTournament/engine/agent"
)

// RedisStore keeps one JSON document per team and serializes updates with
// WATCH/MULTI, retrying when another writer gets in first.
type RedisStore struct {
	client     redis.UniversalClient
	prefix     string
	ttl        time.Duration
	maxRetries int
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithPrefix sets the key prefix (default "agentd").
func WithPrefix(p string) RedisOption { return func(s *RedisStore) { s.prefix = p } }

// WithTTL expires a team's state after d without writes. 0 disables expiry.
func WithTTL(d time.Duration) RedisOption { return func(s *RedisStore) { s.ttl = d } }

// WithMaxRetries bounds optimistic retries per update (default 50).
func WithMaxRetries(n int) RedisOption { return func(s *RedisStore) { s.maxRetries = n } }

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: "agentd", maxRetries: 50}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(team string) string { return s.prefix + ":team:" + team }

func (s *RedisStore) actionsKey(team string) string { return s.prefix + ":actions:" + team }

// Load returns the team's state, or an empty state if none is stored.
func (s *RedisStore) Load(ctx context.Context, team string) (*agent.TeamState, error) {
	data, err := s.client.Get(ctx, s.key(team)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &agent.TeamState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", team, err)
	}
	return decodeState(data)
}

// Update reads, modifies and writes the team's state inside a watched
// transaction. fn may run more than once if other writers interfere.
func (s *RedisStore) Update(ctx context.Context, team string, fn func(*agent.TeamState) error) error {
	key := s.key(team)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		st, err := decodeState(data)
		if err != nil {
			return err
		}
		if err := fn(st); err != nil {
			return err
		}
		out, err := encodeState(st)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < s.maxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("redis update %s: %w", team, err)
	}
	return fmt.Errorf("redis update %s: %w", team, ErrConflict)
}

// Delete removes a team's state and action log.
func (s *RedisStore) Delete(ctx context.Context, team string) error {
	if err := s.client.Del(ctx, s.key(team), s.actionsKey(team)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", team, err)
	}
	return nil
}

// ActionRecord is one entry of a team's decision log.
type ActionRecord struct {
	Agent     string
	Action    string
	Role      string
	Target    string
	Timestamp int64 // unix milliseconds
}

// PublishAction appends a decision to the team's Redis stream, capped at
// roughly 10k entries.
func (s *RedisStore) PublishAction(ctx context.Context, team string, rec ActionRecord) error {
	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.actionsKey(team),
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"agent":  rec.Agent,
			"action": rec.Action,
			"role":   rec.Role,
			"target": rec.Target,
			"ts":     rec.Timestamp,
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("redis xadd %s: %w", team, err)
	}
	return nil
}

// Actions reads back up to count entries of a team's decision log, oldest
// first.
func (s *RedisStore) Actions(ctx context.Context, team string, count int64) ([]ActionRecord, error) {
	msgs, err := s.client.XRangeN(ctx, s.actionsKey(team), "-", "+", count).Result()
	if err != nil {
		return nil, fmt.Errorf("redis xrange %s: %w", team, err)
	}
	out := make([]ActionRecord, 0, len(msgs))
	for _, m := range msgs {
		rec := ActionRecord{}
		rec.Agent, _ = m.Values["agent"].(string)
		rec.Action, _ = m.Values["action"].(string)
		rec.Role, _ = m.Values["role"].(string)
		rec.Target, _ = m.Values["target"].(string)
		if ts, ok := m.Values["ts"].(string); ok {
			rec.Timestamp, _ = strconv.ParseInt(ts, 10, 64)
		}
		out = append(out, rec)
	}
	return out, nil
}
