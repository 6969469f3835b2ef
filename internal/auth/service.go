package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/littlemija/littlemija-backend/internal/users"
	pkgAuth "github.com/littlemija/littlemija-backend/pkg/auth"
	"github.com/littlemija/littlemija-backend/pkg/config"
	"github.com/littlemija/littlemija-backend/pkg/db"
	"github.com/littlemija/littlemija-backend/pkg/db/models"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/logger"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	SeedDefaults(ctx context.Context) (*SeedResult, error)
}

type userRepository interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type passwordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	NeedsRehash(encoded string) bool
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo  userRepository
	Hasher    passwordHasher
	JWTConfig config.JWTConfig
	Seed      config.SeedConfig
	Logger    *logger.Logger
	Now       func() time.Time
}

type service struct {
	users  userRepository
	hasher passwordHasher
	jwtCfg config.JWTConfig
	seed   config.SeedConfig
	logg   *logger.Logger
	now    func() time.Time
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		users:  params.UserRepo,
		hasher: params.Hasher,
		jwtCfg: params.JWTConfig,
		seed:   params.Seed,
		logg:   params.Logger,
		now:    params.Now,
	}, nil
}

// Signup creates a customer account and logs it in.
func (s *service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	email := users.NormalizeEmail(req.Email)
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password is required")
	}

	user, err := s.createUser(ctx, req.Name, email, req.Password, enums.RoleCustomer)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// SeedDefaults creates the master, second and customer accounts that do not exist yet.
func (s *service) SeedDefaults(ctx context.Context) (*SeedResult, error) {
	defaults := []struct {
		name     string
		email    string
		password string
		role     enums.Role
	}{
		{"Shop Admin", s.seed.MasterEmail, s.seed.MasterPassword, enums.RoleMaster},
		{"Warehouse", s.seed.SecondEmail, s.seed.SecondPassword, enums.RoleSecond},
		{"Sample Customer", s.seed.CustomerEmail, s.seed.CustomerPassword, enums.RoleCustomer},
	}

	result := &SeedResult{Created: []string{}, Skipped: []string{}}
	for _, d := range defaults {
		email := users.NormalizeEmail(d.email)
		if email == "" || d.password == "" {
			continue
		}
		_, err := s.users.FindByEmail(ctx, email)
		if err == nil {
			result.Skipped = append(result.Skipped, email)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lookup seed user")
		}
		if _, err := s.createUser(ctx, d.name, email, d.password, d.role); err != nil {
			if pkgerrors.Is(err, pkgerrors.CodeConflict) {
				result.Skipped = append(result.Skipped, email)
				continue
			}
			return nil, err
		}
		result.Created = append(result.Created, email)
	}

	if len(result.Created) > 0 {
		s.logg.Info(ctx, fmt.Sprintf("seeded default accounts: %s", strings.Join(result.Created, ", ")))
	}
	return result, nil
}

func (s *service) createUser(ctx context.Context, name, email, password string, role enums.Role) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	})
	if db.IsUniqueViolation(err, "ux_users_email") {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert user")
	}
	return user, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := users.NormalizeEmail(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		if hash, err := s.hasher.Hash(password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				s.logg.Warn(ctx, "password rehash failed: "+err.Error())
			}
		}
	}
	return user, nil
}

func (s *service) issue(ctx context.Context, user *models.User) (*AuthResponse, error) {
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &AuthResponse{
		AccessToken: token,
		ExpiresAt:   now.Add(s.jwtCfg.TTL()),
		User:        users.FromModel(user),
	}, nil
}
