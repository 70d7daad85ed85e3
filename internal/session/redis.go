package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"

	"calc-editor/internal/editor"
)

const (
	defaultPrefix = "calc:session:"
	// noExpiryScore parks sessions without TTL far in the future of the index.
	noExpiryScore = 4102444800 // 2100-01-01
)

// RedisStore keeps snapshots as JSON strings plus a ZSET index scored by
// expiry time, so List can prune sessions whose keys already expired.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL expires sessions ttl after their last use. Saves and Touch both
// restart the clock, so a session kept busy with rejected key presses stays
// alive. Zero keeps them forever.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStore connects to the Redis server at addr.
func NewRedisStore(addr, password string, db int, opts ...RedisOption) *RedisStore {
	client := backend.NewClient(&backend.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewRedisStoreFromClient(client, opts...)
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisStore) Save(ctx context.Context, id string, snap editor.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiryScore
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(id), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// Touch restarts the TTL of id and moves its index entry along with it.
// It returns ErrNotFound when the key is already gone.
func (s *RedisStore) Touch(ctx context.Context, id string) error {
	if s.ttl == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	expire := pipe.Expire(ctx, s.key(id), s.ttl)
	pipe.ZAddXX(ctx, s.indexKey(), backend.Z{Score: float64(time.Now().Add(s.ttl).Unix()), Member: id})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("touch session %s: %w", id, err)
	}
	if !expire.Val() {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (editor.Snapshot, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return editor.Snapshot{}, ErrNotFound
		}
		return editor.Snapshot{}, fmt.Errorf("load session %s: %w", id, err)
	}

	var snap editor.Snapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		return editor.Snapshot{}, fmt.Errorf("unmarshal session %s: %w", id, err)
	}
	return snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(id))
	pipe.ZRem(ctx, s.indexKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// prune drops index entries whose sessions have expired.
func (s *RedisStore) prune(ctx context.Context) error {
	now := fmt.Sprintf("%d", time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", now).Err(); err != nil {
		return fmt.Errorf("prune session index: %w", err)
	}
	return nil
}

// List prunes expired entries from the index before reading it.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	if err := s.prune(ctx); err != nil {
		return nil, err
	}

	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return ids, nil
}

// Count prunes the index and returns its cardinality. It never transfers
// the ids, so it is cheap enough for every metrics scrape.
func (s *RedisStore) Count(ctx context.Context) (int, error) {
	if err := s.prune(ctx); err != nil {
		return 0, err
	}

	n, err := s.client.ZCard(ctx, s.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count sessions: %w", err)
	}
	return int(n), nil
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
