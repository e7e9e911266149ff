package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/merlotworks/wineclub-backend/pkg/auth"
	"github.com/merlotworks/wineclub-backend/pkg/config"
	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/security"
)

type stubAdminRepo struct {
	admins    map[string]*models.AdminUser
	lastLogin map[uuid.UUID]time.Time
}

func (s *stubAdminRepo) FindByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	admin, ok := s.admins[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *admin
	return &copied, nil
}

func (s *stubAdminRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.lastLogin == nil {
		s.lastLogin = map[uuid.UUID]time.Time{}
	}
	s.lastLogin[id] = at
	return nil
}

var testJWTConfig = config.JWTConfig{
	Secret:            "test-secret",
	Issuer:            "wineclub",
	ExpirationMinutes: 30,
}

func newLoginFixture(t *testing.T, password string, active bool) (*stubAdminRepo, *models.AdminUser) {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := &models.AdminUser{
		ID:           uuid.New(),
		Email:        "ops@example.com",
		PasswordHash: hash,
		DisplayName:  "Ops",
		IsActive:     active,
	}
	return &stubAdminRepo{admins: map[string]*models.AdminUser{admin.Email: admin}}, admin
}

func expectUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected unauthorized error, got nil")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	if typed.Message() != invalidCredentialsMessage {
		t.Fatalf("expected uniform credentials message, got %q", typed.Message())
	}
}

func TestLoginSuccess(t *testing.T) {
	repo, admin := newLoginFixture(t, "correct horse", true)
	svc, err := NewService(repo, testJWTConfig)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	resp, err := svc.Login(context.Background(), LoginRequest{Email: " Ops@Example.com ", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.AdminID != admin.ID {
		t.Fatalf("expected admin id %s in claims, got %s", admin.ID, claims.AdminID)
	}
	if resp.Admin.Email != admin.Email {
		t.Fatalf("expected email %s, got %s", admin.Email, resp.Admin.Email)
	}
	if _, ok := repo.lastLogin[admin.ID]; !ok {
		t.Fatal("expected last login recorded")
	}
}

func TestLoginFailures(t *testing.T) {
	repo, _ := newLoginFixture(t, "correct horse", true)
	svc, err := NewService(repo, testJWTConfig)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	t.Run("unknownEmail", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "x"})
		expectUnauthorized(t, err)
	})

	t.Run("wrongPassword", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{Email: "ops@example.com", Password: "wrong"})
		expectUnauthorized(t, err)
	})

	t.Run("emptyCredentials", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{})
		expectUnauthorized(t, err)
	})
}

func TestLoginInactiveAccount(t *testing.T) {
	repo, _ := newLoginFixture(t, "correct horse", false)
	svc, err := NewService(repo, testJWTConfig)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "ops@example.com", Password: "correct horse"})
	expectUnauthorized(t, err)
}
