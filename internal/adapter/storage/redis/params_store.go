package redis

import (
	"context"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"
)

const minTransferValueKey = "params:min_transfer_value"

// ParamsStore implements ports.NetworkParams using Redis. The minimum
// transferable value is an operational parameter: it can be retuned at
// runtime and every read observes the current value. When the key is
// absent the configured default applies.
type ParamsStore struct {
	client          *goredis.Client
	defaultMinValue uint64
}

// NewParamsStore creates a Redis-backed network params store.
func NewParamsStore(client *goredis.Client, defaultMinValue uint64) *ParamsStore {
	return &ParamsStore{
		client:          client,
		defaultMinValue: defaultMinValue,
	}
}

// MinTransferValue returns the current minimum transferable value.
func (s *ParamsStore) MinTransferValue(ctx context.Context) (uint64, error) {
	val, err := s.client.Get(ctx, minTransferValueKey).Result()
	if err != nil {
		if err == goredis.Nil {
			return s.defaultMinValue, nil
		}
		return 0, fmt.Errorf("redis params get: %w", err)
	}

	parsed, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse min transfer value %q: %w", val, err)
	}
	return parsed, nil
}

// SetMinTransferValue overrides the minimum transferable value. The key
// has no TTL: the override holds until the next call.
func (s *ParamsStore) SetMinTransferValue(ctx context.Context, value uint64) error {
	err := s.client.Set(ctx, minTransferValueKey, strconv.FormatUint(value, 10), 0).Err()
	if err != nil {
		return fmt.Errorf("redis params set: %w", err)
	}
	return nil
}
