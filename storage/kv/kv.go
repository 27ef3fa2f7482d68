// Package kv stores blobs in Redis
package kv

import (
	"context"
	"errors"

	"github.com/kylycht/fxpad/storage"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client redis.Cmdable
	prefix string // key namespace, e.g. "fxpad:"
}

func New(client redis.Cmdable, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// ReadText implements storage.BlobStore.
func (s *Store) ReadText(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	return v, err
}

// WriteText implements storage.BlobStore. SET replaces the value atomically.
func (s *Store) WriteText(ctx context.Context, key, text string) error {
	return s.client.Set(ctx, s.key(key), text, 0).Err()
}

// Delete implements storage.BlobStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Exists implements storage.BlobStore.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	return n > 0, err
}
