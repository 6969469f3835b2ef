package auth

import (
	"context"
	"testing"
	"time"

	"github.com/littlemija/littlemija-backend/internal/users"
	pkgAuth "github.com/littlemija/littlemija-backend/pkg/auth"
	"github.com/littlemija/littlemija-backend/pkg/config"
	"github.com/littlemija/littlemija-backend/pkg/db/dbtest"
	"github.com/littlemija/littlemija-backend/pkg/enums"
	pkgerrors "github.com/littlemija/littlemija-backend/pkg/errors"
	"github.com/littlemija/littlemija-backend/pkg/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "littlemija", ExpirationMinutes: 30}
}

func fastPasswords() config.PasswordConfig {
	return config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
}

func buildTestService(t *testing.T) Service {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		UserRepo:  users.NewRepository(conn),
		Hasher:    security.NewHasher(fastPasswords()),
		JWTConfig: testJWTConfig(),
		Seed: config.SeedConfig{
			MasterEmail:      "admin@shop.com",
			MasterPassword:   "admin123",
			SecondEmail:      "warehouse@shop.com",
			SecondPassword:   "warehouse123",
			CustomerEmail:    "customer@shop.com",
			CustomerPassword: "customer123",
		},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestSignupCreatesCustomer(t *testing.T) {
	t.Parallel()
	svc := buildTestService(t)

	resp, err := svc.Signup(context.Background(), SignupRequest{
		Name:     "Ana Cruz",
		Email:    "  Ana@Example.COM",
		Password: "s3cret!",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if resp.User.Email != "ana@example.com" || resp.User.Role != enums.RoleCustomer {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
	if resp.User.LastLoginAt == nil || resp.ExpiresAt.Sub(*resp.User.LastLoginAt) != 30*time.Minute {
		t.Fatalf("unexpected expiry %s", resp.ExpiresAt)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != resp.User.ID || claims.Role != enums.RoleCustomer {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc := buildTestService(t)
	ctx := context.Background()

	req := SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret!"}
	if _, err := svc.Signup(ctx, req); err != nil {
		t.Fatalf("first signup: %v", err)
	}
	req.Email = "ANA@example.com"
	_, err := svc.Signup(ctx, req)
	if !pkgerrors.Is(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	t.Parallel()
	svc := buildTestService(t)
	ctx := context.Background()

	if _, err := svc.Signup(ctx, SignupRequest{Name: "Ana", Email: "ana@example.com", Password: "s3cret!"}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: "Ana@Example.com", Password: "s3cret!"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.User.LastLoginAt == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}

	for name, req := range map[string]LoginRequest{
		"wrong password": {Email: "ana@example.com", Password: "nope"},
		"unknown email":  {Email: "ghost@example.com", Password: "s3cret!"},
		"blank email":    {Email: " ", Password: "s3cret!"},
	} {
		if _, err := svc.Login(ctx, req); !pkgerrors.Is(err, pkgerrors.CodeUnauthorized) {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	t.Parallel()
	svc := buildTestService(t)
	ctx := context.Background()

	first, err := svc.SeedDefaults(ctx)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if len(first.Created) != 3 || len(first.Skipped) != 0 {
		t.Fatalf("unexpected first seed: %+v", first)
	}

	second, err := svc.SeedDefaults(ctx)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if len(second.Created) != 0 || len(second.Skipped) != 3 {
		t.Fatalf("unexpected second seed: %+v", second)
	}

	roles := map[string]enums.Role{
		"admin@shop.com":     enums.RoleMaster,
		"warehouse@shop.com": enums.RoleSecond,
		"customer@shop.com":  enums.RoleCustomer,
	}
	passwords := map[string]string{
		"admin@shop.com":     "admin123",
		"warehouse@shop.com": "warehouse123",
		"customer@shop.com":  "customer123",
	}
	for email, role := range roles {
		resp, err := svc.Login(ctx, LoginRequest{Email: email, Password: passwords[email]})
		if err != nil {
			t.Fatalf("login %s: %v", email, err)
		}
		if resp.User.Role != role {
			t.Fatalf("%s: expected role %s, got %s", email, role, resp.User.Role)
		}
	}
}

func TestNewServiceRequiresDeps(t *testing.T) {
	t.Parallel()
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without user repository")
	}
	if _, err := NewService(ServiceParams{UserRepo: users.NewRepository(nil)}); err == nil {
		t.Fatal("expected error without hasher")
	}
}
