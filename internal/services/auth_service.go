package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"embruns/internal/logger"
	"embruns/internal/models"
	"embruns/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var ErrInvalidSession = errors.New("invalid session")

// AuthService issues and validates role-scoped sessions. The token handed to
// clients is an HS256 JWT whose jti names a server-held session record; the
// signature keeps forged ids away from storage and the record keeps
// revocation and expiry on the server.
type AuthService struct {
	secretKey []byte
	ttl       time.Duration
	sessions  store.SessionRepository
	logger    zerolog.Logger
	now       func() time.Time
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewAuthService(secret string, ttl time.Duration, sessions store.SessionRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{
		secretKey: []byte(secret),
		ttl:       ttl,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
}

// SessionInfo carries request metadata recorded with a new session.
type SessionInfo struct {
	IPAddress string
	UserAgent string
}

func (s *AuthService) IssueSession(ctx context.Context, role models.SessionRole, info SessionInfo) (string, *models.Session, error) {
	if !role.Valid() {
		return "", nil, fmt.Errorf("unknown session role %q", role)
	}

	now := s.now()
	session := &models.Session{
		ID:        uuid.NewString(),
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		IPAddress: info.IPAddress,
		UserAgent: truncate(info.UserAgent, 255),
	}

	claims := &Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error signing session token")
		return "", nil, err
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info().
		Str("role", string(role)).
		Str("token", logger.TokenHint(tokenString)).
		Time("expires_at", session.ExpiresAt).
		Msg("Session issued")

	return tokenString, session, nil
}

// ValidateSession returns ErrInvalidSession for any token that is malformed,
// expired, signed for another role, or no longer held server-side.
func (s *AuthService) ValidateSession(ctx context.Context, tokenString string, role models.SessionRole) (*models.Session, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, ErrInvalidSession
	}
	if claims.Role != string(role) {
		s.logger.Warn().
			Str("expected_role", string(role)).
			Str("token_role", claims.Role).
			Msg("Session token presented to the wrong role")
		return nil, ErrInvalidSession
	}

	session, err := s.sessions.Get(ctx, role, claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidSession
	}
	if err != nil {
		return nil, err
	}

	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, role, session.ID); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to purge expired session")
		}
		return nil, ErrInvalidSession
	}

	return session, nil
}

func (s *AuthService) RevokeSession(ctx context.Context, tokenString string, role models.SessionRole) error {
	claims, err := s.parse(tokenString)
	if err != nil || claims.Role != string(role) {
		return ErrInvalidSession
	}
	return s.sessions.Delete(ctx, role, claims.ID)
}

func (s *AuthService) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.ID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
