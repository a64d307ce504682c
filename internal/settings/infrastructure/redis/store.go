// Package redis keeps module settings in Redis for hosts that share
// configuration between panel nodes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kolabsys/phlesk/internal/settings/domain"
)

// KeyPrefix namespaces every key written by the store.
const KeyPrefix = "phlesk"

// Store implements domain.Store. Keys are namespaced:
// phlesk:module:{module}:setting:{name}
type Store struct {
	client redis.UniversalClient
}

// NewStore creates a Redis-backed settings store.
func NewStore(client redis.UniversalClient) *Store {
	return &Store{client: client}
}

// Key returns the Redis key for a module setting.
func Key(module, name string) string {
	return strings.Join([]string{KeyPrefix, "module", module, "setting", name}, ":")
}

// Get implements domain.Store.
func (s *Store) Get(ctx context.Context, module, name string) (string, bool, error) {
	val, err := s.client.Get(ctx, Key(module, name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s/%s: %w", module, name, err)
	}
	return val, true, nil
}

// Set implements domain.Store. Settings do not expire.
func (s *Store) Set(ctx context.Context, module, name, value string) error {
	if err := s.client.Set(ctx, Key(module, name), value, 0).Err(); err != nil {
		return fmt.Errorf("set setting %s/%s: %w", module, name, err)
	}
	return nil
}

var _ domain.Store = (*Store)(nil)
