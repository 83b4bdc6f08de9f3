// Package redis is a kv.Store backed by Redis through rueidis.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/flowr-app/flowr/internal/kv"
)

var _ kv.Store = (*Store)(nil)

// Config holds connection parameters.
type Config struct {
	Addrs    []string
	Password string
	Prefix   string
}

// Store keeps pairs as plain Redis strings.
type Store struct {
	client rueidis.Client
	prefix string
}

func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Password:     cfg.Password,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client, prefix: cfg.Prefix}, nil
}

// NewStoreForTest wraps an existing client, typically a mock.
func NewStoreForTest(c rueidis.Client, prefix string) *Store {
	return &Store{client: c, prefix: prefix}
}

func (s *Store) Close() {
	s.client.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	cmd := s.client.B().Get().Key(s.prefix + key).Build()
	v, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", kv.ErrNotFound
		}
		return "", &kv.Error{Op: kv.OpGet, Key: key, Err: err}
	}
	return v, nil
}

func (s *Store) Put(ctx context.Context, key, value string) error {
	cmd := s.client.B().Set().Key(s.prefix + key).Value(value).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &kv.Error{Op: kv.OpPut, Key: key, Err: err}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	cmd := s.client.B().Del().Key(s.prefix + key).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &kv.Error{Op: kv.OpDelete, Key: key, Err: err}
	}
	return nil
}
