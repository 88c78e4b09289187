package server

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	internalauth "itrack/internal/auth"
	"itrack/internal/store"
)

var (
	defaultSessionTTL     = 24 * time.Hour
	errInvalidCredentials = errors.New("invalid credentials")
)

// AuthService owns login, session issuance and token resolution backed by
// the store.
type AuthService struct {
	store      *store.Store
	sessionTTL time.Duration
}

type loginResult struct {
	User      *store.UserRecord
	Token     string
	ExpiresAt time.Time
}

func NewAuthService(st *store.Store) *AuthService {
	return &AuthService{store: st, sessionTTL: defaultSessionTTL}
}

func (a *AuthService) Login(ctx context.Context, loginID, password string, now time.Time) (*loginResult, error) {
	normalized, err := internalauth.NormalizeLoginID(loginID)
	if err != nil {
		return nil, badRequest(err)
	}
	if strings.TrimSpace(password) == "" {
		return nil, badRequest(errors.New("password is required"))
	}

	user, err := a.store.GetUserByLoginID(ctx, normalized)
	if err != nil {
		return nil, storeFailure(err)
	}
	if user == nil || !internalauth.VerifyPassword(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}

	token, err := generateSessionToken()
	if err != nil {
		return nil, storeFailure(err)
	}
	expiresAt := now.Add(a.sessionTTL)
	if err := a.store.CreateSession(ctx, user.ID, hashSessionToken(token), expiresAt, now); err != nil {
		return nil, storeFailure(err)
	}

	return &loginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func (a *AuthService) Authenticate(ctx context.Context, token string, now time.Time) (*store.UserRecord, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil
	}
	return a.store.GetUserBySessionTokenHash(ctx, hashSessionToken(token), now)
}

func (a *AuthService) Revoke(ctx context.Context, token string, now time.Time) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return a.store.RevokeSessionByTokenHash(ctx, hashSessionToken(token), now)
}

func hashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
