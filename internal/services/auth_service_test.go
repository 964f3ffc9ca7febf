package services

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestLoginIssuesVerifiableToken(t *testing.T) {
	store := newFakeTokenStore()
	svc := NewAuthService("test-secret", "admin123", "", 7, store)

	token, expiresIn, err := svc.Login("admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}
	if expiresIn != "7d" {
		t.Fatalf("expiresIn = %q, want 7d", expiresIn)
	}

	userID, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "admin" {
		t.Fatalf("userId = %q, want admin", userID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := NewAuthService("test-secret", "admin123", "", 7, newFakeTokenStore())

	if _, _, err := svc.Login(""); !errors.Is(err, ErrPasswordRequired) {
		t.Fatalf("empty password: got %v", err)
	}
	if _, _, err := svc.Login("wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong password: got %v", err)
	}
}

func TestLoginWithBcryptHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	svc := NewAuthService("test-secret", "", string(hash), 7, newFakeTokenStore())

	if _, _, err := svc.Login("s3cret"); err != nil {
		t.Fatalf("Login with hashed password: %v", err)
	}
	if _, _, err := svc.Login("nope"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong password against hash: got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	svc := NewAuthService("test-secret", "admin123", "", 7, newFakeTokenStore())

	token, _, err := svc.Login("admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := svc.Logout(token); err != nil {
		t.Fatalf("Logout: %v", err)
	}

	if _, err := svc.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token must not verify, got %v", err)
	}

	// Logout is idempotent, garbage included.
	if err := svc.Logout("not-a-token"); err != nil {
		t.Fatalf("Logout of garbage: %v", err)
	}
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	issuer := NewAuthService("secret-a", "admin123", "", 7, newFakeTokenStore())
	verifier := NewAuthService("secret-b", "admin123", "", 7, newFakeTokenStore())

	token, _, err := issuer.Login("admin123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token signed with another secret must fail, got %v", err)
	}
	if _, err := verifier.Verify("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage must fail, got %v", err)
	}
}
