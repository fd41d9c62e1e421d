package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/haofuwu/service-market/internal/core/domain"
	"github.com/haofuwu/service-market/internal/core/ports"
)

// loadSnapshot decodes the JSON blob under key into dst. It reports false
// when the key is absent.
func loadSnapshot(ctx context.Context, kv ports.KVStore, key string, dst any) (bool, error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", domain.ErrStorage, key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("%w: decode %s: %w", domain.ErrStorage, key, err)
	}
	return true, nil
}

// saveSnapshot encodes v and writes it under key.
func saveSnapshot(ctx context.Context, kv ports.KVStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", domain.ErrStorage, key, err)
	}
	if err := kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("%w: write %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}

func removeKey(ctx context.Context, kv ports.KVStore, key string) error {
	if err := kv.Remove(ctx, key); err != nil {
		return fmt.Errorf("%w: remove %s: %w", domain.ErrStorage, key, err)
	}
	return nil
}
