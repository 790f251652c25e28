package services

import (
	"context"
	"testing"
	"time"

	"embruns/internal/models"
	"embruns/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(t *testing.T) (*AuthService, *store.MemorySessionRepository) {
	t.Helper()
	repo := store.NewMemorySessionRepository()
	return NewAuthService("test-secret", time.Hour, repo, zerolog.Nop()), repo
}

func TestIssueAndValidateSession(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	token, session, err := auth.IssueSession(ctx, models.RoleAdmin, SessionInfo{IPAddress: "10.0.0.1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleAdmin, session.Role)

	got, err := auth.ValidateSession(ctx, token, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)
	assert.Equal(t, "10.0.0.1", got.IPAddress)
}

func TestValidateSessionRejectsOtherRole(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	visitorToken, _, err := auth.IssueSession(ctx, models.RoleVisitor, SessionInfo{})
	require.NoError(t, err)
	adminToken, _, err := auth.IssueSession(ctx, models.RoleAdmin, SessionInfo{})
	require.NoError(t, err)

	_, err = auth.ValidateSession(ctx, visitorToken, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = auth.ValidateSession(ctx, adminToken, models.RoleVisitor)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateSessionRejectsGarbage(t *testing.T) {
	auth, _ := newTestAuth(t)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := auth.ValidateSession(context.Background(), token, models.RoleVisitor)
		assert.ErrorIs(t, err, ErrInvalidSession, "token %q", token)
	}
}

func TestValidateSessionRejectsForeignSignature(t *testing.T) {
	auth, repo := newTestAuth(t)
	other := NewAuthService("another-secret", time.Hour, repo, zerolog.Nop())

	token, _, err := other.IssueSession(context.Background(), models.RoleAdmin, SessionInfo{})
	require.NoError(t, err)

	_, err = auth.ValidateSession(context.Background(), token, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestExpiredSessionIsPurged(t *testing.T) {
	auth, repo := newTestAuth(t)
	ctx := context.Background()

	start := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	auth.now = func() time.Time { return start }

	token, session, err := auth.IssueSession(ctx, models.RoleVisitor, SessionInfo{})
	require.NoError(t, err)

	auth.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = auth.ValidateSession(ctx, token, models.RoleVisitor)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = repo.Get(ctx, models.RoleVisitor, session.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStoreExpiryWinsOverTokenExpiry(t *testing.T) {
	auth, repo := newTestAuth(t)
	ctx := context.Background()

	token, session, err := auth.IssueSession(ctx, models.RoleAdmin, SessionInfo{})
	require.NoError(t, err)

	// shorten the server-held record only
	session.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, repo.Create(ctx, session))

	_, err = auth.ValidateSession(ctx, token, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRevokeSession(t *testing.T) {
	auth, _ := newTestAuth(t)
	ctx := context.Background()

	token, _, err := auth.IssueSession(ctx, models.RoleAdmin, SessionInfo{})
	require.NoError(t, err)

	require.NoError(t, auth.RevokeSession(ctx, token, models.RoleAdmin))

	_, err = auth.ValidateSession(ctx, token, models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidSession)

	assert.ErrorIs(t, auth.RevokeSession(ctx, token, models.RoleVisitor), ErrInvalidSession)
}

func TestIssueSessionUnknownRole(t *testing.T) {
	auth, _ := newTestAuth(t)
	_, _, err := auth.IssueSession(context.Background(), models.SessionRole("chef"), SessionInfo{})
	assert.Error(t, err)
}
