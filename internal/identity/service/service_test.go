package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bondexsafety/backoffice/internal/clock"
	"github.com/bondexsafety/backoffice/internal/identity/domain"
	"github.com/bondexsafety/backoffice/internal/identity/repository"
	"github.com/bondexsafety/backoffice/internal/identity/token"
	"github.com/bondexsafety/backoffice/pkg/db"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	fake := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:     dbConn,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  fake,
		Repo:   repository.Provide(),
		Tokens: token.NewManager("test-secret", time.Hour),
	})
	return svc, fake, dbConn
}

func createAdmin(t *testing.T, svc domain.Service) *domain.User {
	t.Helper()

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Name:     "Admin",
		Email:    "admin@bondex.co.ke",
		Password: "correct horse",
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func TestLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	createAdmin(t, svc)

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "Admin@Bondex.co.ke",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("expected a token")
	}
	if resp.User.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	createAdmin(t, svc)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "admin@bondex.co.ke",
		Password: "wrong",
	})
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "nobody@bondex.co.ke",
		Password: "whatever",
	})
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	svc, fake, _ := newTestService(t)
	createAdmin(t, svc)

	for i := 0; i < 5; i++ {
		if _, err := svc.Login(context.Background(), domain.LoginRequest{
			Email:    "admin@bondex.co.ke",
			Password: "wrong",
		}); err != domain.ErrInvalidCredentials {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i+1, err)
		}
	}

	// The right password is refused while the lock holds.
	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "admin@bondex.co.ke",
		Password: "correct horse",
	}); err != domain.ErrAccountLocked {
		t.Fatalf("expected ErrAccountLocked, got %v", err)
	}

	fake.Advance(16 * time.Minute)

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "admin@bondex.co.ke",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("login after lockout expiry failed: %v", err)
	}
	if resp.User.LoginAttempts != 0 || resp.User.LockUntil != nil {
		t.Fatalf("expected lock state cleared, got attempts=%d", resp.User.LoginAttempts)
	}
}

func TestLoginSuccessResetsAttempts(t *testing.T) {
	svc, _, _ := newTestService(t)
	createAdmin(t, svc)

	for i := 0; i < 3; i++ {
		svc.Login(context.Background(), domain.LoginRequest{
			Email:    "admin@bondex.co.ke",
			Password: "wrong",
		})
	}

	resp, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "admin@bondex.co.ke",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.User.LoginAttempts != 0 {
		t.Fatalf("expected attempts reset, got %d", resp.User.LoginAttempts)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, _, dbConn := newTestService(t)
	user := createAdmin(t, svc)

	if err := dbConn.Model(user).Update("status", domain.StatusSuspended).Error; err != nil {
		t.Fatalf("failed to suspend user: %v", err)
	}

	_, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "admin@bondex.co.ke",
		Password: "correct horse",
	})
	if err != domain.ErrAccountInactive {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	createAdmin(t, svc)

	_, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Name:     "Other",
		Email:    "ADMIN@bondex.co.ke",
		Password: "anything",
	})
	if err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestCreateUserDefaultsToCustomer(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), domain.CreateUserRequest{
		Name:     "Jane Wanjiku",
		Email:    "jane@example.com",
		Password: "something",
		Role:     domain.Role("superuser"),
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user.Role != domain.RoleCustomer {
		t.Fatalf("expected customer role, got %s", user.Role)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	user := createAdmin(t, svc)

	err := svc.ChangePassword(context.Background(), user.ID, domain.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "new password",
	})
	if err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, domain.ChangePasswordRequest{
		CurrentPassword: "correct horse",
		NewPassword:     "new password",
	}); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, err := svc.Login(context.Background(), domain.LoginRequest{
		Email:    "admin@bondex.co.ke",
		Password: "new password",
	}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}
