package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/pkg/helpers"
)

// UserListKey prefixes the cached results of ListAll. Listings are stored
// under UserListKey:<generation>; UserListGenKey holds the current generation.
const (
	UserListKey    = "users:list"
	UserListGenKey = UserListKey + ":gen"
)

// UserRepository caches the user listing in redis on top of another
// repository. Every write bumps the listing generation, so a listing read
// before the write can only ever be stored under a generation nobody reads
// again. Redis failures fall through to the wrapped repository.
type UserRepository struct {
	next   repository.UserRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *logrus.Logger
}

// NewUserRepository wraps next. A nil rdb or non-positive ttl returns next unchanged.
func NewUserRepository(next repository.UserRepository, rdb redis.Cmdable, ttl time.Duration, logger *logrus.Logger) repository.UserRepository {
	if rdb == nil || ttl <= 0 {
		return next
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string, includeDeleted bool) (*entity.User, error) {
	return r.next.FindByEmail(ctx, email, includeDeleted)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.next.FindByID(ctx, id)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if err := r.next.Create(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	if err := r.next.Save(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, u *entity.User) error {
	if err := r.next.SoftDelete(ctx, u); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		r.logger.WithError(err).Warn("read user list generation failed")
		return r.next.ListAll(ctx)
	}
	key := listKey(gen)

	var cached []*entity.User
	hit, err := helpers.RedisGetJSON(ctx, r.rdb, key, &cached)
	if err != nil {
		r.logger.WithError(err).Warn("read cached user list failed")
	}
	if hit {
		return cached, nil
	}

	users, err := r.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisSetJSON(ctx, r.rdb, key, users, r.ttl); err != nil {
		r.logger.WithError(err).Warn("cache user list failed")
	}
	return users, nil
}

// generation returns the current listing generation, "0" before the first write.
func (r *UserRepository) generation(ctx context.Context) (string, error) {
	gen, err := r.rdb.Get(ctx, UserListGenKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// invalidate moves readers to a fresh generation. If the bump fails the
// current listing is deleted as well.
func (r *UserRepository) invalidate(ctx context.Context) {
	err := r.rdb.Incr(ctx, UserListGenKey).Err()
	if err == nil {
		return
	}
	r.logger.WithError(err).Warn("bump user list generation failed")
	if gen, gerr := r.generation(ctx); gerr == nil {
		if derr := helpers.RedisDel(ctx, r.rdb, listKey(gen)); derr != nil {
			r.logger.WithError(derr).Warn("invalidate cached user list failed")
		}
	}
}

func listKey(gen string) string {
	return UserListKey + ":" + gen
}

var _ repository.UserRepository = (*UserRepository)(nil)
