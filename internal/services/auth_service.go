package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrInvalidToken     = errors.New("invalid or expired token")
)

// TokenStore tracks issued token ids so tokens stay revocable before their
// JWT expiry. Backed by Redis in production, an in-memory map in tests.
type TokenStore interface {
	SaveToken(tokenID string, ttl time.Duration) error
	TokenExists(tokenID string) (bool, error)
	RevokeToken(tokenID string) error
}

type AuthService interface {
	Login(password string) (token string, expiresIn string, err error)
	Verify(token string) (userID string, err error)
	Logout(token string) error
}

type authService struct {
	secret       []byte
	password     string
	passwordHash string
	tokenTTL     time.Duration
	tokens       TokenStore
}

func NewAuthService(secret, password, passwordHash string, ttlDays int, tokens TokenStore) AuthService {
	return &authService{
		secret:       []byte(secret),
		password:     password,
		passwordHash: passwordHash,
		tokenTTL:     time.Duration(ttlDays) * 24 * time.Hour,
		tokens:       tokens,
	}
}

type authClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (s *authService) Login(password string) (string, string, error) {
	if password == "" {
		return "", "", ErrPasswordRequired
	}
	if !s.checkPassword(password) {
		return "", "", ErrInvalidPassword
	}

	now := time.Now()
	claims := authClaims{
		UserID: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.tokens.SaveToken(claims.ID, s.tokenTTL); err != nil {
		return "", "", fmt.Errorf("failed to store token: %w", err)
	}

	expiresIn := fmt.Sprintf("%dd", int(s.tokenTTL.Hours()/24))
	return token, expiresIn, nil
}

func (s *authService) Verify(token string) (string, error) {
	claims, err := s.parse(token)
	if err != nil {
		return "", ErrInvalidToken
	}

	live, err := s.tokens.TokenExists(claims.ID)
	if err != nil {
		return "", fmt.Errorf("failed to check token: %w", err)
	}
	if !live {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// Logout revokes the token's id. An already-invalid token is not an error:
// logout is idempotent.
func (s *authService) Logout(token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return nil
	}
	return s.tokens.RevokeToken(claims.ID)
}

func (s *authService) checkPassword(password string) bool {
	if s.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(s.password), []byte(password)) == 1
}

func (s *authService) parse(token string) (*authClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &authClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*authClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
