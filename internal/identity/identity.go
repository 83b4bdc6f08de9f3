// Package identity answers "who is using this device" for ownership checks.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/flowr-app/flowr/internal/kv"
)

// SessionKey is the kv slot holding the signed session token.
const SessionKey = "session_token"

const issuer = "flowr"

// DefaultTTL is used when a session is created without an explicit lifetime.
const DefaultTTL = 30 * 24 * time.Hour

var (
	ErrEmptyUserID   = errors.New("user id is required")
	ErrMissingSecret = errors.New("session secret is required")
)

// Provider reports the signed-in user, if any.
type Provider interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// Static is a Provider that always returns the same user. An empty UserID
// means signed out.
type Static struct {
	UserID string
}

func (s Static) CurrentUserID(context.Context) (string, bool) {
	return s.UserID, s.UserID != ""
}

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
}

// Session is a Provider backed by an HS256 token in a kv.Store.
type Session struct {
	kv     kv.Store
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time
}

func NewSession(store kv.Store, secret string, ttl time.Duration, log *zap.Logger) (*Session, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{kv: store, secret: []byte(secret), ttl: ttl, log: log, now: time.Now}, nil
}

// SignIn issues a token for userID and stores it, replacing any previous session.
func (s *Session) SignIn(ctx context.Context, userID string) (time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return time.Time{}, ErrEmptyUserID
	}

	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return time.Time{}, fmt.Errorf("sign session: %w", err)
	}
	if err := s.kv.Put(ctx, SessionKey, token); err != nil {
		return time.Time{}, fmt.Errorf("save session: %w", err)
	}
	return expires, nil
}

// SignOut forgets the stored session.
func (s *Session) SignOut(ctx context.Context) error {
	if err := s.kv.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// CurrentUserID validates the stored token. Any failure reads as signed out.
func (s *Session) CurrentUserID(ctx context.Context) (string, bool) {
	claims, err := s.Claims(ctx)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.log.Debug("session rejected", zap.Error(err))
		}
		return "", false
	}
	return claims.Subject, claims.Subject != ""
}

// Claims returns the verified claims of the stored token.
func (s *Session) Claims(ctx context.Context) (*Claims, error) {
	raw, err := s.kv.Get(ctx, SessionKey)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}
