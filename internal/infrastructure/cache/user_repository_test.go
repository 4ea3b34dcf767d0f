package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/internal/infrastructure/memory"
)

// fakeRedis implements the commands the cache uses on a map.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	fail     bool
	failIncr bool
	gets     int
}

func newFakeRedis() *fakeRedis { return &fakeRedis{data: map[string]string{}} }

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.gets++
	if f.fail {
		return redis.NewStringResult("", errors.New("connection refused"))
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.fail {
		return redis.NewStatusResult("", errors.New("connection refused"))
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if f.fail {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.fail || f.failIncr {
		return redis.NewIntResult(0, errors.New("connection refused"))
	}
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

// interleavingRepo runs onList after the wrapped store has answered ListAll,
// before the caller gets the result back.
type interleavingRepo struct {
	repository.UserRepository
	onList func()
}

func (r *interleavingRepo) ListAll(ctx context.Context) ([]*entity.User, error) {
	users, err := r.UserRepository.ListAll(ctx)
	if r.onList != nil {
		hook := r.onList
		r.onList = nil
		hook()
	}
	return users, err
}

func newUser() *entity.User {
	return &entity.User{Email: "a@b.com", PasswordHash: "h", FirstName: "A", LastName: "B"}
}

func TestNewUserRepositoryDisabled(t *testing.T) {
	inner := memory.NewUserRepository()
	assert.Same(t, inner, NewUserRepository(inner, nil, time.Minute, nil))
	assert.Same(t, inner, NewUserRepository(inner, newFakeRedis(), 0, nil))
}

func TestListAllIsCachedUntilWrite(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	r := NewUserRepository(memory.NewUserRepository(), rdb, time.Minute, nil)

	require.NoError(t, r.Create(ctx, newUser()))
	assert.Equal(t, "1", rdb.data[UserListGenKey])

	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, rdb.data, UserListKey+":1")

	cached, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, list[0].ID, cached[0].ID)
	assert.Empty(t, cached[0].PasswordHash)

	u, err := r.FindByID(ctx, list[0].ID)
	require.NoError(t, err)
	require.NoError(t, r.SoftDelete(ctx, u))
	assert.Equal(t, "2", rdb.data[UserListGenKey])

	list, err = r.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListAllFallsThroughOnRedisFailure(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	r := NewUserRepository(memory.NewUserRepository(), rdb, time.Minute, nil)
	require.NoError(t, r.Create(ctx, newUser()))

	rdb.fail = true
	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, rdb.gets)
}

func TestListAllDoesNotCacheListingOverlappingADelete(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	inner := &interleavingRepo{UserRepository: memory.NewUserRepository()}
	r := NewUserRepository(inner, rdb, time.Minute, nil)

	u := newUser()
	require.NoError(t, r.Create(ctx, u))

	// the delete commits after the store was read but before the fill
	inner.onList = func() { require.NoError(t, r.SoftDelete(ctx, u)) }
	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = r.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvalidateDropsListingWhenGenerationBumpFails(t *testing.T) {
	ctx := context.Background()
	rdb := newFakeRedis()
	r := NewUserRepository(memory.NewUserRepository(), rdb, time.Minute, nil)

	u := newUser()
	require.NoError(t, r.Create(ctx, u))
	list, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	rdb.failIncr = true
	require.NoError(t, r.SoftDelete(ctx, u))
	assert.NotContains(t, rdb.data, UserListKey+":1")

	list, err = r.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
