package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	"github.com/oksasatya/user-account-service/internal/domain/repository"
)

// UserRepository keeps user records in process memory. Records are copied in
// and out so callers never share state with the store.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]*entity.User
	byEmail map[string]string
	order   []string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]*entity.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string, includeDeleted bool) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u := r.users[id]
	if u.IsDeleted() && !includeDeleted {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok || u.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// the email index spans deleted rows, like the unique index in postgres
	if _, taken := r.byEmail[u.Email]; taken {
		return repository.ErrDuplicateEmail
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.DeletedAt = nil
	r.users[u.ID] = clone(u)
	r.byEmail[u.Email] = u.ID
	r.order = append(r.order, u.ID)
	return nil
}

// Save overwrites the mutable fields of a non-deleted record.
func (r *UserRepository) Save(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok || cur.IsDeleted() {
		return repository.ErrNotFound
	}
	cur.PasswordHash = u.PasswordHash
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	cur.Activated = u.Activated
	cur.UpdatedAt = r.now().UTC()
	u.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.users[u.ID]
	if !ok || cur.IsDeleted() {
		return repository.ErrNotFound
	}
	now := r.now().UTC()
	cur.DeletedAt = &now
	cur.UpdatedAt = now
	u.DeletedAt = &now
	return nil
}

// ListAll returns non-deleted users in creation order, without password hashes.
func (r *UserRepository) ListAll(ctx context.Context) ([]*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.order))
	for _, id := range r.order {
		u := r.users[id]
		if u.IsDeleted() {
			continue
		}
		out = append(out, u.WithoutPassword())
	}
	return out, nil
}

func clone(u *entity.User) *entity.User {
	cp := *u
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		cp.DeletedAt = &t
	}
	return &cp
}

var _ repository.UserRepository = (*UserRepository)(nil)
