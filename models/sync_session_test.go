package models

import (
	"testing"
	"time"
)

func TestCheckUsable(t *testing.T) {
	now := time.Now().UTC()
	fresh := func() SyncSession {
		return SyncSession{
			CredentialId: "cred-1",
			Status:       SessionStatusActive,
			StartedAt:    now.Add(-time.Hour),
		}
	}

	s := fresh()
	if err := s.CheckUsable("cred-1", now); err != nil {
		t.Fatalf("fresh active session should be usable: %v", err)
	}

	s = fresh()
	if err := s.CheckUsable("cred-2", now); !IsCode(err, CodeInvalidSession) {
		t.Fatalf("wrong credential should be INVALID_SESSION, got %v", err)
	}

	s = fresh()
	s.Status = SessionStatusCompleted
	if err := s.CheckUsable("cred-1", now); !IsCode(err, CodeInvalidSession) {
		t.Fatalf("completed session should be INVALID_SESSION, got %v", err)
	}

	s = fresh()
	s.Status = SessionStatusExpired
	if err := s.CheckUsable("cred-1", now); !IsCode(err, CodeInvalidSession) {
		t.Fatalf("expired session should be INVALID_SESSION, got %v", err)
	}

	s = fresh()
	s.StartedAt = now.Add(-MaxSessionAge - time.Minute)
	if err := s.CheckUsable("cred-1", now); !IsCode(err, CodeInvalidSession) {
		t.Fatalf("over-age session should be INVALID_SESSION, got %v", err)
	}

	// Exactly at the ceiling is still usable (strict inequality).
	s = fresh()
	s.StartedAt = now.Add(-MaxSessionAge)
	if err := s.CheckUsable("cred-1", now); err != nil {
		t.Fatalf("session at exactly MaxSessionAge should be usable: %v", err)
	}
}
