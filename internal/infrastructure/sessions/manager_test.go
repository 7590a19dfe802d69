package sessions

import (
	"errors"
	"testing"
	"time"

	"github.com/catalystqa/e2eagent/internal/domain"
)

func TestGetReturnsSnapshotCopy(t *testing.T) {
	m := NewManager(time.Hour, nil)
	m.Create(domain.SessionRecord{
		ID:        "sess-1",
		Workflows: []string{"login_flow"},
		Status:    domain.StatusCreated,
	})

	first, err := m.Get("sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	first.Workflows[0] = "mutated"
	first.Status = domain.StatusFailed

	second, err := m.Get("sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if second.Workflows[0] != "login_flow" || second.Status != domain.StatusCreated {
		t.Errorf("stored record mutated through snapshot: %+v", second)
	}
}

func TestGetUnknownSession(t *testing.T) {
	m := NewManager(time.Hour, nil)
	if _, err := m.Get("missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Get() error = %v, want ErrSessionNotFound", err)
	}
}

func TestExpiryEvictsAndSlides(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(10*time.Minute, func() time.Time { return current })

	m.Create(domain.SessionRecord{ID: "sess-1", Status: domain.StatusCreated})

	// A read inside the TTL slides expiry forward.
	current = current.Add(8 * time.Minute)
	if _, err := m.Get("sess-1"); err != nil {
		t.Fatalf("Get() inside TTL error = %v", err)
	}

	// Another 8 minutes is still within the slid window.
	current = current.Add(8 * time.Minute)
	if _, err := m.Get("sess-1"); err != nil {
		t.Fatalf("Get() after slide error = %v", err)
	}

	current = current.Add(11 * time.Minute)
	if _, err := m.Get("sess-1"); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("Get() past TTL error = %v, want ErrSessionExpired", err)
	}
	// The expired record is gone entirely.
	if _, err := m.Get("sess-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("Get() after eviction error = %v, want ErrSessionNotFound", err)
	}
}

func TestUpdateMutatesUnderLock(t *testing.T) {
	m := NewManager(time.Hour, nil)
	m.Create(domain.SessionRecord{ID: "sess-1", Status: domain.StatusCreated})

	err := m.Update("sess-1", func(r *domain.SessionRecord) {
		r.Status = domain.StatusExecuting
		r.Progress = 25
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	record, err := m.Get("sess-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if record.Status != domain.StatusExecuting || record.Progress != 25 {
		t.Errorf("record = %+v, want mutation applied", record)
	}
}

func TestCleanupExpired(t *testing.T) {
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(time.Minute, func() time.Time { return current })

	m.Create(domain.SessionRecord{ID: "old"})
	current = current.Add(2 * time.Minute)
	m.Create(domain.SessionRecord{ID: "fresh"})

	if removed := m.CleanupExpired(); removed != 1 {
		t.Errorf("CleanupExpired() = %d, want 1", removed)
	}
	active := m.ListActive()
	if len(active) != 1 || active[0].ID != "fresh" {
		t.Errorf("ListActive() = %+v, want only the fresh session", active)
	}
}
