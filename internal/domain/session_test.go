package domain

import (
	"testing"
	"time"
)

func TestSessionExpired(t *testing.T) {
	fresh := Session{LastSeenAt: time.Now()}
	if fresh.Expired(time.Hour) {
		t.Error("freshly seen session must not be expired")
	}

	stale := Session{LastSeenAt: time.Now().Add(-2 * time.Hour)}
	if !stale.Expired(time.Hour) {
		t.Error("session idle past the TTL must be expired")
	}
}
