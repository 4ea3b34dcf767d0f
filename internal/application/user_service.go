package application

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
	repo "github.com/oksasatya/user-account-service/internal/domain/repository"
	"github.com/oksasatya/user-account-service/internal/metrics"
	"github.com/oksasatya/user-account-service/pkg/helpers"
	"github.com/oksasatya/user-account-service/pkg/validation"
)

// PasswordHasher hashes credentials one way.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// TokenIssuer signs and verifies authentication tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (*helpers.AuthToken, error)
}

// EventPublisher receives lifecycle events after successful writes.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, ev entity.UserEvent) error
}

// UserIndexer mirrors user profiles into a search backend.
type UserIndexer interface {
	IndexUser(ctx context.Context, u *entity.User) error
	RemoveUser(ctx context.Context, id string) error
	SearchUsers(ctx context.Context, q string, size int) ([]*entity.User, error)
}

// Settings carries the configuration values the service reads.
type Settings struct {
	AllowUserRegistration bool
}

// sideEffectTimeout bounds event publication and indexing after a write.
const sideEffectTimeout = 3 * time.Second

type Service struct {
	Repo     repo.UserRepository
	Hasher   PasswordHasher
	Tokens   TokenIssuer
	Settings Settings
	Logger   *logrus.Logger
	Events   EventPublisher
	Index    UserIndexer
}

type Option func(*Service)

// WithEvents publishes lifecycle events through p.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.Events = p }
}

// WithIndexer mirrors profiles into idx and enables SearchUsers.
func WithIndexer(idx UserIndexer) Option {
	return func(s *Service) { s.Index = idx }
}

func NewService(repo repo.UserRepository, hasher PasswordHasher, tokens TokenIssuer, settings Settings, logger *logrus.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	s := &Service{
		Repo:     repo,
		Hasher:   hasher,
		Tokens:   tokens,
		Settings: settings,
		Logger:   logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateUserInput lists the mutable fields. Nil fields are left untouched.
type UpdateUserInput struct {
	Password  *string
	FirstName *string
	LastName  *string
}

// CreateUser validates and stores a new, non-activated user.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (u *entity.User, err error) {
	defer func() { metrics.ObserveOperation("create_user", outcome(err)) }()

	if !s.Settings.AllowUserRegistration {
		return nil, ErrRegistrationDisabled
	}
	if !validation.RequireNonEmpty(in.FirstName, in.LastName, in.Email, in.Password) {
		return nil, ErrValidationFailure
	}
	if !validation.IsValidEmail(in.Email) {
		return nil, ErrInvalidEmail
	}

	// Soft-deleted records keep their email reserved.
	existing, err := s.Repo.FindByEmail(ctx, in.Email, true)
	switch {
	case err == nil && existing != nil:
		return nil, ErrEmailExists
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		s.Logger.WithError(err).WithField("email", in.Email).Error("lookup by email failed")
		return nil, ErrDatabaseError
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		s.Logger.WithError(err).Error("hash password failed")
		return nil, ErrHashingFailure
	}

	record := &entity.User{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Activated:    false,
	}
	if err := s.Repo.Create(ctx, record); err != nil {
		s.Logger.WithError(err).WithField("email", in.Email).Error("create user failed")
		return nil, ErrDatabaseError
	}

	created, err := s.Repo.FindByID(ctx, record.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", record.ID).Error("reload created user failed")
		return nil, ErrDatabaseError
	}

	s.afterWrite(ctx, entity.UserCreated, created)
	return created.WithoutPassword(), nil
}

// Authenticate checks the credentials of a non-deleted user and returns a
// signed token. A wrong password is reported as ErrValidationFailure.
func (s *Service) Authenticate(ctx context.Context, email, password string) (token string, err error) {
	defer func() { metrics.ObserveOperation("authenticate", outcome(err)) }()

	if !validation.RequireNonEmpty(email, password) {
		return "", ErrValidationFailure
	}

	u, err := s.Repo.FindByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrInvalidUser
		}
		s.Logger.WithError(err).WithField("email", email).Error("lookup by email failed")
		return "", ErrDatabaseError
	}

	if !s.Hasher.Verify(password, u.PasswordHash) {
		return "", ErrValidationFailure
	}

	token, err = s.Tokens.Issue(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		return "", ErrUnknown
	}
	return token, nil
}

// DeleteUser soft-deletes an existing user.
func (s *Service) DeleteUser(ctx context.Context, userID string) (err error) {
	defer func() { metrics.ObserveOperation("delete_user", outcome(err)) }()

	u, err := s.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("soft delete failed")
		return ErrDatabaseError
	}

	s.afterWrite(ctx, entity.UserDeleted, u)
	return nil
}

// UpdateUser applies the supplied fields to an existing user.
func (s *Service) UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (out *entity.User, err error) {
	defer func() { metrics.ObserveOperation("update_user", outcome(err)) }()

	u, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, f := range []*string{in.Password, in.FirstName, in.LastName} {
		if f != nil && *f == "" {
			return nil, ErrValidationFailure
		}
	}

	if in.Password != nil {
		hash, err := s.Hasher.Hash(*in.Password)
		if err != nil {
			s.Logger.WithError(err).WithField("user_id", userID).Error("hash password failed")
			return nil, ErrHashingFailure
		}
		u.PasswordHash = hash
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}

	if err := s.Repo.Save(ctx, u); err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("save user failed")
		return nil, ErrDatabaseError
	}

	updated, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", userID).Error("reload updated user failed")
		return nil, ErrDatabaseError
	}

	s.afterWrite(ctx, entity.UserUpdated, updated)
	return updated.WithoutPassword(), nil
}

// ListUsers returns every non-deleted user without password hashes.
func (s *Service) ListUsers(ctx context.Context) (out []*entity.User, err error) {
	defer func() { metrics.ObserveOperation("list_users", outcome(err)) }()

	users, err := s.Repo.ListAll(ctx)
	if err != nil {
		s.Logger.WithError(err).Error("list users failed")
		return nil, ErrDatabaseError
	}
	out = make([]*entity.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.WithoutPassword())
	}
	return out, nil
}

// DecodeToken verifies a token and returns its content.
func (s *Service) DecodeToken(token string) (*helpers.AuthToken, error) {
	decoded, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return decoded, nil
}

// SearchUsers queries the search mirror. Without an indexer it returns no results.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]*entity.User, error) {
	if s.Index == nil {
		return []*entity.User{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	users, err := s.Index.SearchUsers(ctx, q, size)
	if err != nil {
		s.Logger.WithError(err).WithField("query", q).Error("search users failed")
		return nil, ErrUnknown
	}
	return users, nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(KindOf(err))
}

func (s *Service) findUser(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, ErrInvalidUser
	}
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidUser
		}
		s.Logger.WithError(err).WithField("user_id", userID).Error("lookup by id failed")
		return nil, ErrDatabaseError
	}
	return u, nil
}

// afterWrite publishes the event and updates the search mirror. Failures are
// logged and never change the outcome of the operation.
func (s *Service) afterWrite(ctx context.Context, t entity.UserEventType, u *entity.User) {
	if s.Events == nil && s.Index == nil {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()

	if s.Events != nil {
		if err := s.Events.PublishUserEvent(c, entity.NewUserEvent(t, u)); err != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "event": t}).Warn("publish user event failed")
		}
	}
	if s.Index != nil {
		var err error
		if t == entity.UserDeleted {
			err = s.Index.RemoveUser(c, u.ID)
		} else {
			err = s.Index.IndexUser(c, u.WithoutPassword())
		}
		if err != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "event": t}).Warn("index user failed")
		}
	}
}
