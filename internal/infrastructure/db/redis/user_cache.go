package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandwichproject/admin-api/internal/core/domain"
)

const defaultUserCacheTTL = 5 * time.Minute

// setIfVersion writes the entry only while the version key still holds the
// version the caller observed before reading the repository.
// KEYS[1] version key, KEYS[2] entry key; ARGV: version, payload, ttl in ms.
var setIfVersion = redis.NewScript(`
local current = redis.call('GET', KEYS[1]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// UserCache keeps the current-user record in Redis for a short while so that
// every authenticated request does not hit MongoDB.
// Key format: user:<id> for the entry, user:<id>:version for its version.
type UserCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewUserCache creates a UserCache. A non-positive ttl falls back to five minutes.
func NewUserCache(client *redis.Client, ttl time.Duration) *UserCache {
	if ttl <= 0 {
		ttl = defaultUserCacheTTL
	}
	return &UserCache{client: client, ttl: ttl}
}

type cachedUser struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Get returns the cached user, if any. Entries that no longer parse are
// treated as a miss.
func (c *UserCache) Get(ctx context.Context, id int64) (*domain.User, bool, error) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("user cache get: %w", err)
	}

	user, err := decodeUser(raw)
	if err != nil {
		return nil, false, nil
	}
	return user, true, nil
}

// Version returns the current version of the user's entry. A user that was
// never invalidated is at version 0.
func (c *UserCache) Version(ctx context.Context, id int64) (int64, error) {
	v, err := c.client.Get(ctx, c.versionKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("user cache version: %w", err)
	}
	return v, nil
}

// Set stores user without its password hash, provided the entry is still at
// version. It reports whether the entry was written.
func (c *UserCache) Set(ctx context.Context, user *domain.User, version int64) (bool, error) {
	raw, err := encodeUser(user)
	if err != nil {
		return false, fmt.Errorf("user cache encode: %w", err)
	}
	keys := []string{c.versionKey(user.ID), c.key(user.ID)}
	stored, err := setIfVersion.Run(ctx, c.client, keys, strconv.FormatInt(version, 10), raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("user cache set: %w", err)
	}
	return stored == 1, nil
}

// Invalidate bumps the version and drops the entry in one transaction.
func (c *UserCache) Invalidate(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.versionKey(id))
		pipe.Del(ctx, c.key(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("user cache invalidate: %w", err)
	}
	return nil
}

func (c *UserCache) key(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func (c *UserCache) versionKey(id int64) string {
	return fmt.Sprintf("user:%d:version", id)
}

func encodeUser(u *domain.User) ([]byte, error) {
	return json.Marshal(cachedUser{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		Permissions: domain.PermissionStrings(u.Permissions),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	})
}

func decodeUser(raw []byte) (*domain.User, error) {
	var cu cachedUser
	if err := json.Unmarshal(raw, &cu); err != nil {
		return nil, err
	}
	role, err := domain.ParseRole(cu.Role)
	if err != nil {
		return nil, err
	}
	perms, err := domain.ParsePermissions(cu.Permissions)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:          cu.ID,
		Email:       cu.Email,
		Name:        cu.Name,
		Role:        role,
		Permissions: perms,
		CreatedAt:   cu.CreatedAt,
		UpdatedAt:   cu.UpdatedAt,
	}, nil
}
