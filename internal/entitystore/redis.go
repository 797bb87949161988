package entitystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PGPoolConfig tunes the optional Postgres journal pool.
type PGPoolConfig struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

// RedisStore is a Redis-first Store with an optional append-only Postgres
// journal of every write/delete for audit and replay.
type RedisStore struct {
	redis  *redis.Client
	pg     *pgxpool.Pool
	logger *zap.Logger
}

// NewRedis creates a RedisStore. pgURL may be empty to disable the journal.
func NewRedis(redisAddr string, redisDB int, pgURL string, pgPoolConfig PGPoolConfig, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
		DB:   redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	var pgPool *pgxpool.Pool
	if pgURL != "" {
		cfg, err := pgxpool.ParseConfig(pgURL)
		if err != nil {
			return nil, fmt.Errorf("invalid pg config: %w", err)
		}
		if pgPoolConfig.MaxConns > 0 {
			cfg.MaxConns = pgPoolConfig.MaxConns
		}
		if pgPoolConfig.MinConns > 0 {
			cfg.MinConns = pgPoolConfig.MinConns
		}
		if pgPoolConfig.MaxConnLifetime > 0 {
			cfg.MaxConnLifetime = pgPoolConfig.MaxConnLifetime
		}
		if pgPoolConfig.MaxConnIdleTime > 0 {
			cfg.MaxConnIdleTime = pgPoolConfig.MaxConnIdleTime
		}
		if pgPoolConfig.HealthCheckPeriod > 0 {
			cfg.HealthCheckPeriod = pgPoolConfig.HealthCheckPeriod
		}
		pgPool, err = pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
	}

	return &RedisStore{redis: rdb, pg: pgPool, logger: logger}, nil
}

// NewWithClient wraps an existing Redis client (used by tests).
func NewWithClient(rdb *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{redis: rdb, logger: logger}
}

func entityKey(typ, key string) string { return "ent:" + typ + ":" + key }
func typeIndexKey(typ string) string   { return "entidx:" + typ }

// Write persists the entity. CreatedAt is preserved across rewrites of the
// same key; UpdatedAt always advances to now.
func (s *RedisStore) Write(ctx context.Context, e Entity) (Entity, error) {
	if e.Type == "" || e.Key == "" {
		return Entity{}, fmt.Errorf("entity type and key are required")
	}

	now := time.Now().UnixMilli()
	e.CreatedAt = now
	e.UpdatedAt = now

	prev, err := s.Get(ctx, e.Type, e.Key)
	if err != nil {
		return Entity{}, err
	}
	if prev != nil {
		e.CreatedAt = prev.CreatedAt
	}

	data, err := json.Marshal(e)
	if err != nil {
		return Entity{}, fmt.Errorf("marshal entity: %w", err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, entityKey(e.Type, e.Key), data, 0)
	pipe.SAdd(ctx, typeIndexKey(e.Type), e.Key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Entity{}, fmt.Errorf("redis write failed: %w", err)
	}

	s.journal(ctx, "write", e)
	return e, nil
}

// Get returns the entity, or (nil, nil) when the key is absent.
func (s *RedisStore) Get(ctx context.Context, typ, key string) (*Entity, error) {
	data, err := s.redis.Get(ctx, entityKey(typ, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var e Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal entity: %w", err)
	}
	return &e, nil
}

// Delete removes the entity and its index membership.
func (s *RedisStore) Delete(ctx context.Context, typ, key string) error {
	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, entityKey(typ, key))
	pipe.SRem(ctx, typeIndexKey(typ), key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	s.journal(ctx, "delete", Entity{Type: typ, Key: key})
	return nil
}

// Query loads all entities of the type, filters and sorts in memory, then
// slices out the requested page. Total counts matches before pagination.
func (s *RedisStore) Query(ctx context.Context, q Query) (*Result, error) {
	offset, err := decodeCursor(q.Cursor)
	if err != nil {
		return nil, err
	}

	keys, err := s.redis.SMembers(ctx, typeIndexKey(q.Type)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis index read failed: %w", err)
	}

	var ents []Entity
	var docs []map[string]any
	for _, key := range keys {
		e, err := s.Get(ctx, q.Type, key)
		if err != nil {
			return nil, err
		}
		if e == nil {
			// Key removed between index read and fetch.
			continue
		}

		var doc map[string]any
		if err := json.Unmarshal(e.Data, &doc); err != nil {
			s.logger.Warn("store.entity_decode_failed",
				zap.String("type", q.Type),
				zap.String("key", key),
				zap.Error(err))
			continue
		}
		if !matches(doc, q.Predicates) {
			continue
		}
		ents = append(ents, *e)
		docs = append(docs, doc)
	}

	if q.SortField != "" {
		sortEntities(ents, docs, q.SortField, q.Ascending)
	}

	total := len(ents)
	if offset > total {
		offset = total
	}
	end := total
	if q.Limit > 0 && offset+q.Limit < total {
		end = offset + q.Limit
	}

	res := &Result{
		Entities: ents[offset:end],
		Total:    total,
	}
	if end < total {
		res.NextCursor = encodeCursor(end)
	}
	return res, nil
}

// HealthCheck pings redis and, when configured, postgres.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	if s.redis == nil {
		return fmt.Errorf("redis not initialized")
	}
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	if s.pg != nil {
		if err := s.pg.Ping(ctx); err != nil {
			return fmt.Errorf("postgres ping failed: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connections.
func (s *RedisStore) Close() error {
	if s.pg != nil {
		s.pg.Close()
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// journal appends the mutation to the Postgres audit table. Best effort:
// journal failures are logged, never surfaced to the caller.
func (s *RedisStore) journal(ctx context.Context, op string, e Entity) {
	if s.pg == nil {
		return
	}
	_, err := s.pg.Exec(ctx, `
		INSERT INTO rfq.entity_event (op, entity_type, entity_key, data, signature, recorded_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, op, e.Type, e.Key, []byte(e.Data), e.Signature)
	if err != nil {
		s.logger.Warn("store.pg.journal_failed",
			zap.String("op", op),
			zap.String("type", e.Type),
			zap.String("key", e.Key),
			zap.Error(err))
	}
}
