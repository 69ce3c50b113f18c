package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nevenhsu/survey-web-sub001/internal/config"
	"github.com/nevenhsu/survey-web-sub001/internal/model"
)

// SurveyCache keeps published survey definitions in Redis.
type SurveyCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSurveyCache creates a SurveyCache. A zero ttl keeps entries until replaced.
func NewSurveyCache(rdb *redis.Client, ttl time.Duration) *SurveyCache {
	return &SurveyCache{rdb: rdb, ttl: ttl}
}

// Get returns ErrCacheMiss when the survey is not cached.
func (c *SurveyCache) Get(ctx context.Context, id string) (*model.Survey, error) {
	data, err := c.rdb.Get(ctx, config.CacheKey.SurveyDefinitionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("get survey cache: %w", err)
	}

	var s model.Survey
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode cached survey %q: %w", id, err)
	}
	return &s, nil
}

func (c *SurveyCache) Set(ctx context.Context, s *model.Survey) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode survey %q: %w", s.ID, err)
	}
	return c.rdb.Set(ctx, config.CacheKey.SurveyDefinitionKey(s.ID), data, c.ttl).Err()
}

func (c *SurveyCache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, config.CacheKey.SurveyDefinitionKey(id)).Err()
}
