package cache

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domain "github.com/giftnest/storefront/internal/entity"
	"github.com/giftnest/storefront/internal/usecase"
)

// RedisCartStore keeps the session cart in a redis hash, product id ->
// quantity. The cart has no identity beyond the session and expires with it.
type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

var _ usecase.CartStore = (*RedisCartStore)(nil)

func cartKey(sessionID string) string { return "cart:" + sessionID }

func (s *RedisCartStore) Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	raw, err := s.rdb.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	lines := make([]domain.CartLine, 0, len(raw))
	for productID, qty := range raw {
		n, err := strconv.Atoi(qty)
		if err != nil || n <= 0 {
			continue
		}
		lines = append(lines, domain.CartLine{ProductID: productID, Quantity: n})
	}
	// hash iteration order is random; keep output stable
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (s *RedisCartStore) Upsert(ctx context.Context, sessionID, productID string, quantity int, mode domain.UpsertMode) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	key := cartKey(sessionID)

	var err error
	switch mode {
	case domain.UpsertAdd:
		err = s.rdb.HIncrBy(ctx, key, productID, int64(quantity)).Err()
	case domain.UpsertReplace:
		err = s.rdb.HSet(ctx, key, productID, quantity).Err()
	default:
		return fmt.Errorf("unknown upsert mode %d", mode)
	}
	if err != nil {
		return err
	}
	return s.rdb.Expire(ctx, key, s.ttl).Err()
}

func (s *RedisCartStore) Remove(ctx context.Context, sessionID, productID string) error {
	return s.rdb.HDel(ctx, cartKey(sessionID), productID).Err()
}

func (s *RedisCartStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, cartKey(sessionID)).Err()
}
