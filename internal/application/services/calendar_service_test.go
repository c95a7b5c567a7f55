package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/ipinfo"
)

// fakeStateRepo is an in-memory StateRepository.
type fakeStateRepo struct {
	prizes  map[int]calendar.Prize
	opened  map[int]bool
	loadErr error
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{
		prizes: make(map[int]calendar.Prize),
		opened: make(map[int]bool),
	}
}

func (r *fakeStateRepo) LoadPrizes() (map[int]calendar.Prize, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	out := make(map[int]calendar.Prize, len(r.prizes))
	for k, v := range r.prizes {
		out[k] = v
	}
	return out, nil
}

func (r *fakeStateRepo) SavePrize(prize calendar.Prize) error {
	r.prizes[prize.Day] = prize
	return nil
}

func (r *fakeStateRepo) UpdateRevealState(day int, state calendar.RevealState) error {
	prize, ok := r.prizes[day]
	if !ok {
		return errors.New("no prize for day")
	}
	prize.Reveal = state
	r.prizes[day] = prize
	return nil
}

func (r *fakeStateRepo) LoadOpenedDays() (map[int]bool, error) {
	out := make(map[int]bool, len(r.opened))
	for k, v := range r.opened {
		out[k] = v
	}
	return out, nil
}

func (r *fakeStateRepo) MarkOpened(day int) error {
	r.opened[day] = true
	return nil
}

type calendarFixture struct {
	svc       *CalendarService
	stateRepo *fakeStateRepo
	docStore  *fakeDocumentStore
	echo      *httptest.Server
}

func newCalendarFixture(t *testing.T, unlockAll bool) *calendarFixture {
	t.Helper()
	logger := newTestLogger(t)

	echo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ip":"203.0.113.7"}`))
	}))
	t.Cleanup(echo.Close)

	resolver := ipinfo.NewResolver(echo.URL, echo.URL, 2*time.Second, logger)
	identitySvc := NewIdentityService(resolver, 2*time.Second, logger)

	docStore := newFakeDocumentStore()
	ledger, _ := newTestLedger(t, docStore, &fakeAttemptRepo{})

	drawSvc := NewDrawService(calendar.DefaultTiers(), 0.98, 0.005, 24, logger)
	stateRepo := newFakeStateRepo()

	svc := NewCalendarService(identitySvc, ledger, drawSvc, stateRepo, nil, nil, 24, unlockAll, logger)
	svc.SetClock(func() time.Time {
		return time.Date(2026, 12, 10, 12, 0, 0, 0, time.UTC)
	})

	return &calendarFixture{svc: svc, stateRepo: stateRepo, docStore: docStore, echo: echo}
}

func TestOpenDayHappyPath(t *testing.T) {
	f := newCalendarFixture(t, false)

	result, err := f.svc.OpenDay(context.Background(), 5, "seed")
	if err != nil {
		t.Fatalf("OpenDay failed: %v", err)
	}

	if result.Prize.Day != 5 {
		t.Errorf("prize day = %d, want 5", result.Prize.Day)
	}
	if result.Prize.Reveal != calendar.RevealConfirmed {
		t.Errorf("reveal state = %s, want confirmed", result.Prize.Reveal)
	}
	if result.Message != calendar.MessageForDay(5) {
		t.Errorf("unexpected message %q", result.Message)
	}
	if result.Replayed {
		t.Error("first open must not report replayed")
	}

	if !f.stateRepo.opened[5] {
		t.Error("day not marked opened")
	}
	if _, ok := f.stateRepo.prizes[5]; !ok {
		t.Error("prize not persisted")
	}
}

func TestOpenDayValidation(t *testing.T) {
	f := newCalendarFixture(t, false)

	if _, err := f.svc.OpenDay(context.Background(), 0, "seed"); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("day 0: got %v, want ErrInvalidDay", err)
	}
	if _, err := f.svc.OpenDay(context.Background(), 25, "seed"); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("day 25: got %v, want ErrInvalidDay", err)
	}

	// The clock sits on December 10th, so the 11th is still locked.
	if _, err := f.svc.OpenDay(context.Background(), 11, "seed"); !errors.Is(err, ErrDayLocked) {
		t.Errorf("future day: got %v, want ErrDayLocked", err)
	}
}

func TestOpenDayLockedOutsideDecember(t *testing.T) {
	f := newCalendarFixture(t, false)
	f.svc.SetClock(func() time.Time {
		return time.Date(2026, 11, 30, 12, 0, 0, 0, time.UTC)
	})

	if _, err := f.svc.OpenDay(context.Background(), 1, "seed"); !errors.Is(err, ErrDayLocked) {
		t.Errorf("November open: got %v, want ErrDayLocked", err)
	}
}

func TestOpenDayUnlockAllOverride(t *testing.T) {
	f := newCalendarFixture(t, true)
	f.svc.SetClock(func() time.Time {
		return time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	})

	if _, err := f.svc.OpenDay(context.Background(), 24, "seed"); err != nil {
		t.Errorf("unlock-all open failed: %v", err)
	}
}

func TestOpenDaySecondAttemptRejected(t *testing.T) {
	f := newCalendarFixture(t, false)

	if _, err := f.svc.OpenDay(context.Background(), 5, "seed"); err != nil {
		t.Fatalf("first open failed: %v", err)
	}

	// Wipe local open state to force the flow back through the ledger.
	f.stateRepo.opened = make(map[int]bool)
	f.stateRepo.prizes = make(map[int]calendar.Prize)

	if _, err := f.svc.OpenDay(context.Background(), 5, "seed"); !errors.Is(err, ErrAlreadyAttempted) {
		t.Errorf("second open: got %v, want ErrAlreadyAttempted", err)
	}
}

func TestOpenDayReplaysStoredResult(t *testing.T) {
	f := newCalendarFixture(t, false)

	first, err := f.svc.OpenDay(context.Background(), 5, "seed")
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}

	replay, err := f.svc.OpenDay(context.Background(), 5, "seed")
	if err != nil {
		t.Fatalf("replay open failed: %v", err)
	}
	if !replay.Replayed {
		t.Error("second open of an opened day must report replayed")
	}
	if replay.Prize.Outcome != first.Prize.Outcome || replay.Prize.Code != first.Prize.Code {
		t.Error("replay must return the stored result, not a new draw")
	}
}

func TestOpenDayRevokedOnRecordFailure(t *testing.T) {
	f := newCalendarFixture(t, false)
	f.docStore.writeErr = calendar.ErrRemoteTimeout

	_, err := f.svc.OpenDay(context.Background(), 5, "seed")
	if err == nil {
		t.Fatal("expected open to fail when the attempt cannot be recorded")
	}

	var recordErr *calendar.RecordError
	if !errors.As(err, &recordErr) {
		t.Fatalf("expected RecordError, got %T", err)
	}

	// The day stays unopened and the stored prize is marked revoked, so the
	// replay path ignores it.
	if f.stateRepo.opened[5] {
		t.Error("day must not be marked opened after a revoked reveal")
	}
	if prize, ok := f.stateRepo.prizes[5]; !ok || prize.Reveal != calendar.RevealRevoked {
		t.Errorf("expected a revoked prize row, got %+v", prize)
	}

	// Once the store recovers the day can be retried.
	f.docStore.writeErr = nil
	result, err := f.svc.OpenDay(context.Background(), 5, "seed")
	if err != nil {
		t.Fatalf("retry after revoke failed: %v", err)
	}
	if result.Replayed || result.Prize.Reveal != calendar.RevealConfirmed {
		t.Errorf("retry should draw fresh and confirm, got %+v", result)
	}
}

func TestGetState(t *testing.T) {
	f := newCalendarFixture(t, false)

	if _, err := f.svc.OpenDay(context.Background(), 3, "seed"); err != nil {
		t.Fatalf("open failed: %v", err)
	}

	state, err := f.svc.GetState()
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if state.Date != "2026-12-10" {
		t.Errorf("state date = %q", state.Date)
	}
	if len(state.Days) != 24 {
		t.Fatalf("expected 24 days, got %d", len(state.Days))
	}

	for _, day := range state.Days {
		switch {
		case day.Day == 3:
			if !day.Opened || day.Prize == nil || day.Message == "" {
				t.Errorf("opened day 3 state incomplete: %+v", day)
			}
		case day.Day <= 10:
			if !day.Unlocked || day.Opened {
				t.Errorf("day %d should be unlocked and unopened", day.Day)
			}
		default:
			if day.Unlocked {
				t.Errorf("day %d should still be locked on the 10th", day.Day)
			}
		}
	}
}

func TestGetDay(t *testing.T) {
	f := newCalendarFixture(t, false)

	if _, err := f.svc.GetDay(0); !errors.Is(err, ErrInvalidDay) {
		t.Errorf("day 0: got %v, want ErrInvalidDay", err)
	}

	day, err := f.svc.GetDay(8)
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if !day.Unlocked || day.Opened || day.Prize != nil {
		t.Errorf("unopened day 8 state: %+v", day)
	}
	if day.Message != calendar.MessageForDay(8) {
		t.Errorf("unlocked day should carry its message, got %q", day.Message)
	}

	locked, err := f.svc.GetDay(20)
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if locked.Unlocked || locked.Message != "" {
		t.Errorf("locked day must not leak its message: %+v", locked)
	}

	if _, err := f.svc.OpenDay(context.Background(), 8, "seed"); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	opened, err := f.svc.GetDay(8)
	if err != nil {
		t.Fatalf("GetDay failed: %v", err)
	}
	if !opened.Opened || opened.Prize == nil {
		t.Errorf("opened day state incomplete: %+v", opened)
	}
}

func TestListWinCodes(t *testing.T) {
	f := newCalendarFixture(t, false)

	f.stateRepo.prizes[2] = calendar.Prize{Day: 2, Outcome: calendar.OutcomeLose, Reveal: calendar.RevealConfirmed}
	f.stateRepo.prizes[5] = calendar.Prize{Day: 5, Outcome: calendar.OutcomeWin, TierType: "MYSTERY_GOLD", Code: "WIN-5-MYSTERY_GOLD-123456789012-0001", Reveal: calendar.RevealConfirmed}
	f.stateRepo.prizes[7] = calendar.Prize{Day: 7, Outcome: calendar.OutcomeWin, TierType: "MYSTERY_BRONZE", Code: "WIN-7-MYSTERY_BRONZE-123456789012-0002", Reveal: calendar.RevealRevoked}

	wins, err := f.svc.ListWinCodes()
	if err != nil {
		t.Fatalf("ListWinCodes failed: %v", err)
	}
	if len(wins) != 1 || wins[0].Day != 5 {
		t.Errorf("expected only the confirmed day-5 win, got %+v", wins)
	}
}

func TestVerifyCodeProvenance(t *testing.T) {
	f := newCalendarFixture(t, false)

	issued := "WIN-5-MYSTERY_GOLD-123456789012-0001"
	f.stateRepo.prizes[5] = calendar.Prize{Day: 5, Outcome: calendar.OutcomeWin, TierType: "MYSTERY_GOLD", Code: issued, Reveal: calendar.RevealConfirmed}

	result := f.svc.VerifyCode(issued)
	if !result.Valid || !result.Provenanced {
		t.Errorf("issued code should verify with provenance, got %+v", result)
	}

	// Well-formed but never issued: valid, no provenance.
	result = f.svc.VerifyCode("WIN-5-MYSTERY_GOLD-123456789012-9999")
	if !result.Valid || result.Provenanced {
		t.Errorf("foreign code should verify without provenance, got %+v", result)
	}

	// Prize load failure degrades to a pure format check.
	f.stateRepo.loadErr = errors.New("db closed")
	result = f.svc.VerifyCode(issued)
	if !result.Valid || result.Provenanced {
		t.Errorf("format-only verification expected when prizes unavailable, got %+v", result)
	}
}

func TestIdentityResolutionFallback(t *testing.T) {
	logger := newTestLogger(t)

	// Both echo endpoints unreachable: the fingerprint fallback serves.
	resolver := ipinfo.NewResolver("http://127.0.0.1:1", "http://127.0.0.1:1", 200*time.Millisecond, logger)
	svc := NewIdentityService(resolver, time.Second, logger)

	identity := svc.Resolve(context.Background(), "device-seed")
	if identity.Source != SourceFingerprint {
		t.Fatalf("expected fingerprint source, got %s", identity.Source)
	}
	if identity.Value != ipinfo.FallbackIdentity("device-seed") {
		t.Errorf("fallback identity mismatch: %q", identity.Value)
	}

	// Same seed resolves to the same cached identity.
	again := svc.Resolve(context.Background(), "device-seed")
	if again.Value != identity.Value || again.SessionID != identity.SessionID {
		t.Error("repeated resolution should hit the cache")
	}

	svc.Invalidate("device-seed")
	fresh := svc.Resolve(context.Background(), "device-seed")
	if fresh.SessionID == identity.SessionID {
		t.Error("invalidation should force a new session")
	}
}
