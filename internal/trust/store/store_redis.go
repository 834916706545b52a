package store

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	id "ipguard/pkg/domain"
)

// Redis keeps every record as a field of one hash: principal ID -> address.
type Redis struct {
	client *redis.Client
	key    string

	closeOnce sync.Once
	closeErr  error
}

// NewRedis wraps client. The store owns client and closes it on Shutdown.
func NewRedis(client *redis.Client, key string) *Redis {
	if key == "" {
		key = "ipguard:trusted"
	}
	return &Redis{client: client, key: key}
}

func (s *Redis) SetTrustedAddress(ctx context.Context, principal id.PrincipalID, address string) error {
	err := s.client.HSet(ctx, s.key, principal.String(), address).Err()
	return storeErr(backendRedis, "set", err)
}

func (s *Redis) GetTrustedAddress(ctx context.Context, principal id.PrincipalID) (string, bool, error) {
	address, err := s.client.HGet(ctx, s.key, principal.String()).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, storeErr(backendRedis, "get", err)
	}
	return address, true, nil
}

func (s *Redis) RemoveTrustedAddress(ctx context.Context, principal id.PrincipalID) (bool, error) {
	n, err := s.client.HDel(ctx, s.key, principal.String()).Result()
	if err != nil {
		return false, storeErr(backendRedis, "remove", err)
	}
	return n > 0, nil
}

func (s *Redis) Ping(ctx context.Context) error {
	return storeErr(backendRedis, "ping", s.client.Ping(ctx).Err())
}

func (s *Redis) Shutdown() error {
	s.closeOnce.Do(func() {
		if s.client == nil {
			return
		}
		if err := s.client.Close(); err != nil {
			s.closeErr = storeErr(backendRedis, "shutdown", err)
		}
	})
	return s.closeErr
}
