package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/chargegrid/chargegrid/internal/adapter/storage/memory"
	"github.com/chargegrid/chargegrid/internal/domain"
	"github.com/chargegrid/chargegrid/internal/mocks"
)

func newService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	log := zap.NewNop()
	tokens := NewJWTService("test-secret", 15*time.Minute, mocks.NewMockCache(), log)
	return NewService(store.Users(), tokens, log), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	user := &domain.User{Email: "alice@example.com", Password: "s3cret", FirstName: "Alice"}
	if err := svc.Register(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Password == "s3cret" {
		t.Fatal("password must be hashed on save")
	}
	if user.Role != domain.UserRoleCustomer {
		t.Fatalf("default role should be customer, got %s", user.Role)
	}

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := &domain.User{Email: "alice@example.com", Password: "other"}
		if err := svc.Register(ctx, dup); !errors.Is(err, domain.ErrEmailTaken) {
			t.Fatalf("expected ErrEmailTaken, got %v", err)
		}
	})

	t.Run("login with correct password", func(t *testing.T) {
		token, err := svc.Login(ctx, "alice@example.com", "s3cret")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		got, err := svc.ValidateToken(ctx, token)
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if got.ID != user.ID {
			t.Fatalf("token should identify the user, got %s", got.ID)
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		if _, err := svc.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown email rejected identically", func(t *testing.T) {
		if _, err := svc.Login(ctx, "nobody@example.com", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestValidateToken(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.ValidateToken(ctx, "not-a-token"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	t.Run("revoked token rejected", func(t *testing.T) {
		user := &domain.User{Email: "bob@example.com", Password: "pw"}
		if err := svc.Register(ctx, user); err != nil {
			t.Fatalf("register: %v", err)
		}
		token, err := svc.Login(ctx, "bob@example.com", "pw")
		if err != nil {
			t.Fatalf("login: %v", err)
		}
		if err := svc.Logout(ctx, token); err != nil {
			t.Fatalf("logout: %v", err)
		}
		if _, err := svc.ValidateToken(ctx, token); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("revoked token must be rejected, got %v", err)
		}
	})
}
