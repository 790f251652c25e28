package services

import (
	"context"
	"errors"
	"fmt"

	"embruns/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const (
	MsgAccessGranted     = "access granted"
	MsgFreeAccess        = "open access granted"
	MsgInvalidAccessCode = "invalid access code"
	MsgAdminLoggedIn     = "admin login successful"
	MsgIncorrectPassword = "incorrect password"
)

// AccessService checks the visitor access code and the admin password, and
// opens sessions on success. Wrong credentials are not errors: they produce
// an unsuccessful AuthResponse carrying the message shown to the user.
type AccessService struct {
	accessCodeHash    []byte
	adminPasswordHash []byte
	site              *SiteService
	auth              *AuthService
	logger            zerolog.Logger
}

func NewAccessService(accessCodeHash, adminPasswordHash []byte, site *SiteService, auth *AuthService, logger zerolog.Logger) *AccessService {
	return &AccessService{
		accessCodeHash:    accessCodeHash,
		adminPasswordHash: adminPasswordHash,
		site:              site,
		auth:              auth,
		logger:            logger,
	}
}

// HashSecret bcrypt-hashes a configured code or password.
func HashSecret(secret string, cost int) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash secret: %w", err)
	}
	return hash, nil
}

func (s *AccessService) VerifyAccessCode(ctx context.Context, code string, info SessionInfo) (*models.AuthResponse, error) {
	settings, err := s.site.Settings(ctx)
	if err != nil {
		return nil, err
	}

	message := MsgAccessGranted
	if !settings.IsLocked {
		message = MsgFreeAccess
	} else if bcrypt.CompareHashAndPassword(s.accessCodeHash, []byte(code)) != nil {
		s.logger.Warn().Str("ip", info.IPAddress).Msg("Invalid access code attempt")
		return &models.AuthResponse{Success: false, Message: MsgInvalidAccessCode}, nil
	}

	token, _, err := s.auth.IssueSession(ctx, models.RoleVisitor, info)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Success: true, Message: message, SessionID: token}, nil
}

func (s *AccessService) AdminLogin(ctx context.Context, password string, info SessionInfo) (*models.AuthResponse, error) {
	if bcrypt.CompareHashAndPassword(s.adminPasswordHash, []byte(password)) != nil {
		s.logger.Warn().Str("ip", info.IPAddress).Msg("Failed admin login attempt")
		return &models.AuthResponse{Success: false, Message: MsgIncorrectPassword}, nil
	}

	token, _, err := s.auth.IssueSession(ctx, models.RoleAdmin, info)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("ip", info.IPAddress).Msg("Admin logged in")
	return &models.AuthResponse{Success: true, Message: MsgAdminLoggedIn, SessionID: token}, nil
}

// CheckSession answers the boolean check endpoints. Storage failures are
// returned so the handler can answer 500 instead of a misleading false.
func (s *AccessService) CheckSession(ctx context.Context, token string, role models.SessionRole) (bool, error) {
	_, err := s.auth.ValidateSession(ctx, token, role)
	if errors.Is(err, ErrInvalidSession) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
