package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AngelCh415/perfdash/internal/models"
)

const (
	redisCustomerPrefix = "perfdash:customer:"
	redisCustomerIndex  = "perfdash:customers"
)

// RedisStore keeps each customer as a JSON string and indexes ids in a
// sorted set scored by creation time.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: utcNow}
}

func customerKey(id string) string { return redisCustomerPrefix + id }

func (s *RedisStore) List(ctx context.Context, includeArchived bool) ([]models.Customer, error) {
	ids, err := s.rdb.ZRevRange(ctx, redisCustomerIndex, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list customer ids: %w", err)
	}
	out := []models.Customer{}
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = customerKey(id)
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var c models.Customer
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			return nil, fmt.Errorf("decode customer: %w", err)
		}
		if c.Archived && !includeArchived {
			continue
		}
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (models.Customer, error) {
	raw, err := s.rdb.Get(ctx, customerKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Customer{}, models.ErrNotFound
	}
	if err != nil {
		return models.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	var c models.Customer
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Customer{}, fmt.Errorf("decode customer: %w", err)
	}
	return c, nil
}

func (s *RedisStore) Save(ctx context.Context, c models.Customer) (models.Customer, error) {
	c.ID = strings.TrimSpace(c.ID)
	var prev *models.Customer
	if c.ID != "" {
		old, err := s.Get(ctx, c.ID)
		switch {
		case err == nil:
			prev = &old
		case !errors.Is(err, models.ErrNotFound):
			return models.Customer{}, err
		}
	}
	c, err := prepare(c, prev, s.now())
	if err != nil {
		return models.Customer{}, err
	}
	if err := s.write(ctx, c); err != nil {
		return models.Customer{}, err
	}
	return c, nil
}

func (s *RedisStore) write(ctx context.Context, c models.Customer) error {
	doc, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode customer: %w", err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, customerKey(c.ID), doc, 0)
		p.ZAdd(ctx, redisCustomerIndex, redis.Z{Score: float64(c.CreatedAt.UnixMilli()), Member: c.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save customer: %w", err)
	}
	return nil
}

func (s *RedisStore) Archive(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Archived = true
	c.UpdatedAt = s.now()
	return s.write(ctx, c)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		del = p.Del(ctx, customerKey(id))
		p.ZRem(ctx, redisCustomerIndex, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if del.Val() == 0 {
		return models.ErrNotFound
	}
	return nil
}
