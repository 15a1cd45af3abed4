package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"docflow/internal/model"
	"docflow/internal/repository"
)

const (
	userKeyPrefix = "docflow:user:"
	userIndexKey  = "docflow:users"
)

// userRecord is the stored form; model.User hides the hash from JSON.
type userRecord struct {
	Username     string   `json:"username"`
	PasswordHash string   `json:"passwordHash"`
	Roles        []string `json:"roles"`
}

// UserRedis stores each user as a JSON string under docflow:user:<username> and
// keeps the set of usernames in docflow:users.
type UserRedis struct {
	client redis.UniversalClient
}

func NewUserRedis(client redis.UniversalClient) *UserRedis {
	return &UserRedis{client: client}
}

var _ repository.UserRepository = (*UserRedis)(nil)

func userKey(username string) string { return userKeyPrefix + username }

func encodeUser(u *model.User) ([]byte, error) {
	data, err := json.Marshal(userRecord{Username: u.Username, PasswordHash: u.PasswordHash, Roles: u.Roles})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user: %w", err)
	}
	return data, nil
}

func decodeUser(data string) (*model.User, error) {
	var rec userRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &model.User{Username: rec.Username, PasswordHash: rec.PasswordHash, Roles: rec.Roles}, nil
}

// Create uses SETNX so concurrent signups of one username cannot both succeed.
func (r *UserRedis) Create(ctx context.Context, u *model.User) error {
	data, err := encodeUser(u)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, userKey(u.Username), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set user in Redis: %w", err)
	}
	if !ok {
		return repository.ErrDuplicate
	}
	if err := r.client.SAdd(ctx, userIndexKey, u.Username).Err(); err != nil {
		return fmt.Errorf("failed to index user: %w", err)
	}
	return nil
}

func (r *UserRedis) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	data, err := r.client.Get(ctx, userKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return decodeUser(data)
}

func (r *UserRedis) List(ctx context.Context) ([]model.User, error) {
	names, err := r.client.SMembers(ctx, userIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]model.User, 0, len(names))
	if len(names) == 0 {
		return out, nil
	}
	sort.Strings(names)

	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = userKey(n)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // removed between SMEMBERS and MGET
		}
		u, err := decodeUser(s)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

func (r *UserRedis) Update(ctx context.Context, u *model.User) error {
	data, err := encodeUser(u)
	if err != nil {
		return err
	}
	ok, err := r.client.SetXX(ctx, userKey(u.Username), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if !ok {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRedis) Delete(ctx context.Context, username string) error {
	n, err := r.client.Del(ctx, userKey(username)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return r.client.SRem(ctx, userIndexKey, username).Err()
}
