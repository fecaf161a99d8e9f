package services

import (
	"context"
	"errors"
	"testing"

	"github.com/akinalp/kovan/models"
	"github.com/akinalp/kovan/pkg"
)

func newAuthService(t *testing.T) (AuthService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	return NewAuthService(env.users, "test-secret", 15), env
}

func TestRegisterLoginValidateRoundTrip(t *testing.T) {
	t.Parallel()
	auth, _ := newAuthService(t)
	ctx := context.Background()

	reg, err := auth.Register(ctx, &models.RegisterRequest{Username: "worker", Password: "hunter22"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.AccessToken == "" || reg.User == nil {
		t.Fatalf("expected a token and a user, got %+v", reg)
	}

	login, err := auth.Login(ctx, &models.LoginRequest{Username: "worker", Password: "hunter22"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := auth.ValidateAccessToken(login.AccessToken)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != reg.User.ID || claims.Username != "worker" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	t.Parallel()
	auth, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, &models.RegisterRequest{Username: "worker", Password: "hunter22"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := auth.Register(ctx, &models.RegisterRequest{Username: "worker", Password: "other-pass"})
	if !errors.Is(err, pkg.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLoginDoesNotLeakWhichPartFailed(t *testing.T) {
	t.Parallel()
	auth, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, &models.RegisterRequest{Username: "worker", Password: "hunter22"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Yanlış şifre ve olmayan kullanıcı aynı hatayla dönmeli.
	_, wrongPass := auth.Login(ctx, &models.LoginRequest{Username: "worker", Password: "nope"})
	_, noUser := auth.Login(ctx, &models.LoginRequest{Username: "nobody", Password: "nope"})

	if !errors.Is(wrongPass, pkg.ErrUnauthorized) || !errors.Is(noUser, pkg.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for both, got %v and %v", wrongPass, noUser)
	}
	if wrongPass.Error() != noUser.Error() {
		t.Errorf("login failures should be indistinguishable: %q vs %q", wrongPass, noUser)
	}
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	t.Parallel()
	auth, _ := newAuthService(t)

	if _, err := auth.ValidateAccessToken("not-a-jwt"); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestValidateAccessTokenRejectsWrongKey(t *testing.T) {
	t.Parallel()
	auth, env := newAuthService(t)
	other := NewAuthService(env.users, "different-secret", 15)
	ctx := context.Background()

	reg, err := other.Register(ctx, &models.RegisterRequest{Username: "worker", Password: "hunter22"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := auth.ValidateAccessToken(reg.AccessToken); !errors.Is(err, pkg.ErrUnauthorized) {
		t.Errorf("token signed with another key must be rejected, got %v", err)
	}
}
