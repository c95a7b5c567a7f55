package calendar

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
)

func TestSaveAttemptAndHasAttempt(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAttemptRepository(db, logger)

	record := calendar.AttemptRecord{
		ID:        "01HVX0000000000000000000A1",
		Identity:  "203.0.113.7",
		Date:      "2026-12-05",
		Day:       5,
		Timestamp: time.Date(2026, 12, 5, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.SaveAttempt(record); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}

	has, err := repo.HasAttempt("203.0.113.7", "2026-12-05", 5)
	if err != nil || !has {
		t.Errorf("HasAttempt = %v, %v; want true, nil", has, err)
	}

	// Unknown triples report false without an error.
	has, err = repo.HasAttempt("203.0.113.7", "2026-12-05", 6)
	if err != nil || has {
		t.Errorf("HasAttempt(other day) = %v, %v; want false, nil", has, err)
	}
	has, err = repo.HasAttempt("198.51.100.9", "2026-12-05", 5)
	if err != nil || has {
		t.Errorf("HasAttempt(other identity) = %v, %v; want false, nil", has, err)
	}
	has, err = repo.HasAttempt("203.0.113.7", "2026-12-06", 5)
	if err != nil || has {
		t.Errorf("HasAttempt(other date) = %v, %v; want false, nil", has, err)
	}
}

func TestListAttemptsOrdered(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAttemptRepository(db, logger)

	base := time.Date(2026, 12, 5, 10, 0, 0, 0, time.UTC)
	records := []calendar.AttemptRecord{
		{ID: "01A", Identity: "203.0.113.7", Date: "2026-12-05", Day: 5, Timestamp: base},
		{ID: "01B", Identity: "198.51.100.9", Date: "2026-12-05", Day: 5, Timestamp: base.Add(time.Minute)},
		{ID: "01C", Identity: "203.0.113.7", Date: "2026-12-06", Day: 6, Timestamp: base.Add(24 * time.Hour)},
	}
	for _, record := range records {
		if err := repo.SaveAttempt(record); err != nil {
			t.Fatalf("SaveAttempt(%s) failed: %v", record.ID, err)
		}
	}

	got, err := repo.ListAttempts("2026-12-05")
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for the date, got %d", len(got))
	}
	if got[0].ID != "01A" || got[1].ID != "01B" {
		t.Errorf("records out of created_at order: %s, %s", got[0].ID, got[1].ID)
	}
	if !got[0].Timestamp.Equal(base) {
		t.Errorf("timestamp round trip mismatch: %v", got[0].Timestamp)
	}
}

func TestSaveAttemptDuplicateIDRejected(t *testing.T) {
	db, logger := newTestDB(t)
	repo := NewSQLAttemptRepository(db, logger)

	record := calendar.AttemptRecord{
		ID:        "01A",
		Identity:  "203.0.113.7",
		Date:      "2026-12-05",
		Day:       5,
		Timestamp: time.Now().UTC(),
	}
	if err := repo.SaveAttempt(record); err != nil {
		t.Fatalf("SaveAttempt failed: %v", err)
	}
	if err := repo.SaveAttempt(record); err == nil {
		t.Error("duplicate attempt id should violate the primary key")
	}
}
