// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/avereyes/promptdesk/internal/domain"
)

// Repository defines the interface for persisting session and
// conversation state.
type Repository interface {
	// CreateSession persists a new session record.
	CreateSession(ctx context.Context, session *domain.Session) error

	// GetSession retrieves a session by its token. Returns (nil, nil)
	// when no such session exists.
	GetSession(ctx context.Context, token string) (*domain.Session, error)

	// UpdateSession updates the mutable builder fields of a session
	// (selected app, original task, conversation state, clarification
	// count).
	UpdateSession(ctx context.Context, session *domain.Session) error

	// TouchSession updates the last_seen_at timestamp for a session.
	TouchSession(ctx context.Context, token string, seen time.Time) error

	// DeleteSession removes a session and its conversation turns.
	DeleteSession(ctx context.Context, token string) error

	// AppendTurn appends one conversation turn to a session's
	// transcript. Turns are append-only; ordering is preserved.
	AppendTurn(ctx context.Context, token string, turn domain.Turn) error

	// ReplaceTurns atomically replaces a session's transcript. Used
	// when a new builder conversation is seeded over an old one.
	ReplaceTurns(ctx context.Context, token string, turns []domain.Turn) error

	// GetTurns returns a session's transcript in append order.
	GetTurns(ctx context.Context, token string) ([]domain.Turn, error)

	// DeleteExpiredSessions removes sessions idle longer than ttl and
	// returns how many were deleted.
	DeleteExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
