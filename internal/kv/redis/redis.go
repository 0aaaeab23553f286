package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	goredis "github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg *Config) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

const maxTxRetries = 3

// Store keeps every key as a field of one Redis hash so the whole snapshot
// can be measured and cleared together.
type Store struct {
	Client     *goredis.Client
	hashKey    string
	quotaBytes int64
}

func NewStore(client *goredis.Client, namespace string, quotaBytes int64) *Store {
	if namespace == "" {
		namespace = "storefront"
	}
	return &Store{
		Client:     client,
		hashKey:    namespace + ":kv",
		quotaBytes: quotaBytes,
	}
}

var _ kv.Store = (*Store)(nil)

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.Client.HGet(ctx, s.hashKey, key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if s.quotaBytes <= 0 {
		return mapError(s.Client.HSet(ctx, s.hashKey, key, value).Err())
	}

	txf := func(tx *goredis.Tx) error {
		all, err := tx.HGetAll(ctx, s.hashKey).Result()
		if err != nil {
			return err
		}
		var used int64
		for k, v := range all {
			if k == key {
				continue
			}
			used += int64(len(k) + len(v))
		}
		if used+int64(len(key)+len(value)) > s.quotaBytes {
			return kv.ErrQuotaExceeded
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.HSet(ctx, s.hashKey, key, value)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.Client.Watch(ctx, txf, s.hashKey)
		if errors.Is(err, goredis.TxFailedErr) {
			continue
		}
		return mapError(err)
	}
	return fmt.Errorf("redis set %q: too much contention", key)
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.Client.HDel(ctx, s.hashKey, key).Err()
}

func (s *Store) ClearAll(ctx context.Context) error {
	return s.Client.Del(ctx, s.hashKey).Err()
}

// mapError turns a maxmemory rejection into the quota sentinel.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kv.ErrQuotaExceeded) {
		return err
	}
	if strings.HasPrefix(err.Error(), "OOM") {
		return fmt.Errorf("%w: %v", kv.ErrQuotaExceeded, err)
	}
	return err
}
