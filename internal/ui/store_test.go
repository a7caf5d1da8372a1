package ui

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestStoreCreateAndGet(t *testing.T) {
	st := NewStore(time.Minute)

	s := st.Create()
	if _, err := uuid.Parse(s.ID); err != nil {
		t.Fatalf("expected UUID session id, got %q: %v", s.ID, err)
	}

	got, ok := st.Get(s.ID)
	if !ok || got != s {
		t.Fatal("expected to find the created session")
	}

	if _, ok := st.Get("missing"); ok {
		t.Fatal("did not expect to find an unknown session")
	}
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore(time.Minute)
	st.now = func() time.Time { return now }

	idle := st.Create()
	active := st.Create()

	now = now.Add(45 * time.Second)
	if _, ok := st.Get(active.ID); !ok {
		t.Fatal("expected active session to be live")
	}

	now = now.Add(30 * time.Second)
	if _, ok := st.Get(idle.ID); ok {
		t.Fatal("expected idle session to have expired")
	}
	if _, ok := st.Get(active.ID); !ok {
		t.Fatal("expected recently used session to be live")
	}
}

func TestStoreSweepsOnCreate(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewStore(time.Minute)
	st.now = func() time.Time { return now }

	st.Create()
	st.Create()

	now = now.Add(2 * time.Minute)
	st.Create()

	if n := st.Len(); n != 1 {
		t.Fatalf("expected 1 session after sweep, got %d", n)
	}
}
