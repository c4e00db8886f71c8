package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/smallbiznis/facturo/internal/auth/domain"
	"github.com/smallbiznis/facturo/internal/auth/repository"
	"github.com/smallbiznis/facturo/internal/config"
	"github.com/smallbiznis/facturo/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) authdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return New(zap.NewNop(), config.Config{SessionTTLHours: 72}, repo, sessionRepo, node)
}

func TestSignUpAndLogin(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("unexpected email %s", user.Email)
	}
	if user.DisplayName != "alice" {
		t.Fatalf("expected display name derived from email, got %s", user.DisplayName)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "Alice@Example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("expected raw session token")
	}
	if result.User.ID != user.ID {
		t.Fatal("expected login to resolve the same user")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	}); err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}

	_, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "bob@example.com",
		Password: "strong-password",
	}); err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}

	_, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "bob@example.com",
		Password: "another-password",
	})
	if err != authdomain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSignUpShortPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "carol@example.com",
		Password: "short",
	})
	if err != authdomain.ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestAuthenticateLifecycle(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
	}); err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	session, err := svc.Authenticate(context.Background(), result.RawToken)
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if session.UserID != result.User.ID {
		t.Fatal("expected session bound to user")
	}

	if err := svc.Logout(context.Background(), result.RawToken); err != nil {
		t.Fatalf("failed to logout: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), result.RawToken); err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "erin@example.com",
		Password: "initial-password",
	})
	if err != nil {
		t.Fatalf("failed to sign up: %v", err)
	}

	result, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "erin@example.com",
		Password: "initial-password",
	})
	if err != nil {
		t.Fatalf("failed to login: %v", err)
	}

	if err := svc.ChangePassword(context.Background(), user.ID, "rotated-password"); err != nil {
		t.Fatalf("failed to change password: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), result.RawToken); err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}

	if _, err := svc.Login(context.Background(), authdomain.LoginRequest{
		Email:    "erin@example.com",
		Password: "rotated-password",
	}); err != nil {
		t.Fatalf("failed to login with new password: %v", err)
	}
}
