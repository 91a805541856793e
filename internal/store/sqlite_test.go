package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/avereyes/promptdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTestSession(token string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		Token:      token,
		LoggedIn:   true,
		State:      domain.StateIdle,
		CreatedAt:  now,
		LastSeenAt: now,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, newTestSession("tok-1")))

	got, err := repo.GetSession(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok-1", got.Token)
	assert.True(t, got.LoggedIn)
	assert.Equal(t, domain.StateIdle, got.State)
}

func TestGetSessionMissing(t *testing.T) {
	repo := newTestStore(t)

	got, err := repo.GetSession(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateSession(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sess := newTestSession("tok-2")
	require.NoError(t, repo.CreateSession(ctx, sess))

	sess.SelectedApp = "Excel"
	sess.OriginalTask = "summarize a report"
	sess.State = domain.StateAwaitingAnswer
	sess.Clarifications = 2
	require.NoError(t, repo.UpdateSession(ctx, sess))

	got, err := repo.GetSession(ctx, "tok-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Excel", got.SelectedApp)
	assert.Equal(t, "summarize a report", got.OriginalTask)
	assert.Equal(t, domain.StateAwaitingAnswer, got.State)
	assert.Equal(t, 2, got.Clarifications)
}

func TestUpdateSessionMissing(t *testing.T) {
	repo := newTestStore(t)

	err := repo.UpdateSession(context.Background(), newTestSession("ghost"))
	assert.Error(t, err)
}

func TestDeleteSessionRemovesTurns(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, newTestSession("tok-3")))
	require.NoError(t, repo.AppendTurn(ctx, "tok-3", domain.Turn{Role: domain.RoleUser, Content: "hello"}))

	require.NoError(t, repo.DeleteSession(ctx, "tok-3"))

	got, err := repo.GetSession(ctx, "tok-3")
	require.NoError(t, err)
	assert.Nil(t, got)

	turns, err := repo.GetTurns(ctx, "tok-3")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestTurnsKeepAppendOrder(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, newTestSession("tok-4")))
	want := []domain.Turn{
		{Role: domain.RoleSystem, Content: "system seed"},
		{Role: domain.RoleUser, Content: "App: Word\nGoal: a memo"},
		{Role: domain.RoleAssistant, Content: "Who is the audience?"},
	}
	for _, turn := range want {
		require.NoError(t, repo.AppendTurn(ctx, "tok-4", turn))
	}

	got, err := repo.GetTurns(ctx, "tok-4")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestReplaceTurns(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, newTestSession("tok-5")))
	require.NoError(t, repo.AppendTurn(ctx, "tok-5", domain.Turn{Role: domain.RoleUser, Content: "old"}))

	want := []domain.Turn{
		{Role: domain.RoleSystem, Content: "fresh seed"},
		{Role: domain.RoleUser, Content: "fresh goal"},
	}
	require.NoError(t, repo.ReplaceTurns(ctx, "tok-5", want))

	got, err := repo.GetTurns(ctx, "tok-5")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDeleteExpiredSessions(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	stale := newTestSession("stale")
	stale.LastSeenAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.CreateSession(ctx, stale))
	require.NoError(t, repo.AppendTurn(ctx, "stale", domain.Turn{Role: domain.RoleUser, Content: "x"}))

	require.NoError(t, repo.CreateSession(ctx, newTestSession("fresh")))

	deleted, err := repo.DeleteExpiredSessions(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	gone, err := repo.GetSession(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, gone)

	turns, err := repo.GetTurns(ctx, "stale")
	require.NoError(t, err)
	assert.Empty(t, turns)

	kept, err := repo.GetSession(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestTouchSession(t *testing.T) {
	repo := newTestStore(t)
	ctx := context.Background()

	sess := newTestSession("tok-6")
	sess.LastSeenAt = time.Now().Add(-30 * time.Minute)
	require.NoError(t, repo.CreateSession(ctx, sess))

	seen := time.Now()
	require.NoError(t, repo.TouchSession(ctx, "tok-6", seen))

	got, err := repo.GetSession(ctx, "tok-6")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.WithinDuration(t, seen, got.LastSeenAt, time.Second)
}

func TestIsBusy(t *testing.T) {
	assert.True(t, IsBusy(errors.New("database is locked (5) (SQLITE_BUSY)")))
	assert.False(t, IsBusy(errors.New("no such table")))
	assert.False(t, IsBusy(nil))
}
