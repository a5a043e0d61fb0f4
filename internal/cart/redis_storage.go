package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RedisStorage keeps the same JSON document as FileStorage under one Redis
// key per user. Carts have no TTL: they must survive until the user clears
// them or checks out.
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{client: client}
}

func cartKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

func (r *RedisStorage) Load(ctx context.Context, userID uuid.UUID) (State, error) {
	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("storage: redis get failed: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		log.Warn().Err(err).Stringer("user_id", userID).Msg("storage: corrupt cart entry, treating as empty")
		return State{}, nil
	}

	return state, nil
}

func (r *RedisStorage) Save(ctx context.Context, userID uuid.UUID, state State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal cart state: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("storage: redis set failed: %w", err)
	}

	return nil
}
