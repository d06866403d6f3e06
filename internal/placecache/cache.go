// Package placecache is a Redis read-through cache of stored place and
// course records. It holds the inputs to availability, never a status.
package placecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"placehours/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "placehours:"

// Source loads records on a cache miss. *database.DB satisfies it.
type Source interface {
	GetPlace(ctx context.Context, id int64) (*model.Place, error)
	GetCourse(ctx context.Context, id int64) (*model.Course, error)
}

// Store serves records from Redis, falling back to the source.
// A nil Redis client or non-positive TTL disables caching.
type Store struct {
	src    Source
	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func New(src Source, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *Store {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Store{src: src, redis: rdb, ttl: ttl, logger: logger}
}

func placeKey(id int64) string { return fmt.Sprintf("%splace:%d", keyPrefix, id) }
func courseKey(id int64) string { return fmt.Sprintf("%scourse:%d", keyPrefix, id) }

// GetPlace returns the place record, from cache when possible.
func (s *Store) GetPlace(ctx context.Context, id int64) (*model.Place, error) {
	key := placeKey(id)
	var p model.Place
	if s.readCache(ctx, key, &p) {
		return &p, nil
	}

	loaded, err := s.src.GetPlace(ctx, id)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, loaded)
	return loaded, nil
}

// GetCourse returns the course with its places, from cache when possible.
func (s *Store) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	key := courseKey(id)
	var c model.Course
	if s.readCache(ctx, key, &c) {
		return &c, nil
	}

	loaded, err := s.src.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	s.writeCache(ctx, key, loaded)
	return loaded, nil
}

// InvalidatePlace drops the place and every cached course, since courses
// embed their places.
func (s *Store) InvalidatePlace(ctx context.Context, id int64) error {
	if s.redis == nil {
		return nil
	}
	if err := s.redis.Del(ctx, placeKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate place %d: %w", id, err)
	}
	return s.deleteMatching(ctx, keyPrefix+"course:*")
}

// InvalidateCourse drops one cached course.
func (s *Store) InvalidateCourse(ctx context.Context, id int64) error {
	if s.redis == nil {
		return nil
	}
	if err := s.redis.Del(ctx, courseKey(id)).Err(); err != nil {
		return fmt.Errorf("invalidate course %d: %w", id, err)
	}
	return nil
}

// InvalidateAll drops every cached record, e.g. after a catalog sync.
func (s *Store) InvalidateAll(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	return s.deleteMatching(ctx, keyPrefix+"*")
}

func (s *Store) deleteMatching(ctx context.Context, pattern string) error {
	iter := s.redis.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", pattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete %s: %w", pattern, err)
	}
	return nil
}

func (s *Store) readCache(ctx context.Context, key string, out any) bool {
	if s.redis == nil || s.ttl <= 0 {
		return false
	}
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (s *Store) writeCache(ctx context.Context, key string, val any) {
	if s.redis == nil || s.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}
