package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlotStore mirrors panel slot text into redis so other processes can read it.
type SlotStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewSlotStore returns redis-backed store. ttl <= 0 keeps keys without expiry.
func NewSlotStore(client redis.Cmdable, prefix string, ttl time.Duration) *SlotStore {
	if prefix == "" {
		prefix = "panel:slot"
	}
	return &SlotStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *SlotStore) key(slot string) string {
	return fmt.Sprintf("%s:%s", s.prefix, slot)
}

// SetSlot implements display.Display.
func (s *SlotStore) SetSlot(ctx context.Context, slot, text string) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.key(slot), text, ttl).Err()
}

// Get returns the mirrored text of slot; ok is false when the key is absent.
func (s *SlotStore) Get(ctx context.Context, slot string) (text string, ok bool, err error) {
	text, err = s.client.Get(ctx, s.key(slot)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}
