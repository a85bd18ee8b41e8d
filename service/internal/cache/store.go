// internal/cache/store.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/CodeIngame/OceanOfCode/service/internal/models"
)

// Store journals matches into Redis with a TTL. A match lives in the hash
// match:<id>; its turns are JSON entries of the list match:<id>:turns.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// Open connects to addr and checks the server answers.
func Open(ctx context.Context, addr string, ttl time.Duration) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &Store{rdb: rdb, ttl: ttl}, nil
}

func matchKey(id uuid.UUID) string { return "match:" + id.String() }
func turnsKey(id uuid.UUID) string { return "match:" + id.String() + ":turns" }

func (s *Store) Close() error {
	return s.rdb.Close()
}

// SaveMatch writes the match hash.
func (s *Store) SaveMatch(ctx context.Context, m models.Match) error {
	key := matchKey(m.ID)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"my_id", m.MyID,
			"width", m.Width,
			"height", m.Height,
			"map", strings.Join(m.Map, "\n"),
			"start", m.Start,
			"started_at", m.StartedAt.UTC().Format(time.RFC3339Nano),
		)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving match %s: %w", m.ID, err)
	}
	return nil
}

// RecordTurn appends a turn to the match journal.
func (s *Store) RecordTurn(ctx context.Context, t models.TurnRecord) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding turn: %w", err)
	}
	key := turnsKey(t.MatchID)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, data)
		if s.ttl > 0 {
			p.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("recording turn %d of %s: %w", t.Turn, t.MatchID, err)
	}
	return nil
}

// Turns reads back the journal of a match in append order.
func (s *Store) Turns(ctx context.Context, id uuid.UUID) ([]models.TurnRecord, error) {
	raw, err := s.rdb.LRange(ctx, turnsKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading turns of %s: %w", id, err)
	}
	out := make([]models.TurnRecord, 0, len(raw))
	for _, r := range raw {
		var t models.TurnRecord
		if err := json.Unmarshal([]byte(r), &t); err != nil {
			return nil, fmt.Errorf("decoding turn of %s: %w", id, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Start returns the recorded start line of a match, empty when unknown.
func (s *Store) Start(ctx context.Context, id uuid.UUID) (string, error) {
	v, err := s.rdb.HGet(ctx, matchKey(id), "start").Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading match %s: %w", id, err)
	}
	return v, nil
}
