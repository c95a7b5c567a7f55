package services

import (
	"context"
	"errors"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/email"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
)

// Calendar orchestration errors, matched by the HTTP layer for status codes.
var (
	ErrInvalidDay       = errors.New("day out of calendar range")
	ErrDayLocked        = errors.New("day is not unlocked yet")
	ErrAlreadyAttempted = errors.New("already attempted today")
)

// CalendarService orchestrates the open-day flow: identity resolution,
// ledger check, draw, write-through recording, and the reveal state
// transitions broadcast to the organizer feed.
type CalendarService struct {
	identity    *IdentityService
	ledger      *LedgerService
	draw        *DrawService
	stateRepo   calendar.StateRepository
	broadcaster *messaging.DrawBroadcaster
	emailSvc    email.Service
	logger      *logging.ChanneledLogger
	days        int
	unlockAll   bool
	clock       func() time.Time
}

// NewCalendarService creates a new calendar application service. emailSvc may
// be nil when organizer notifications are not configured.
func NewCalendarService(
	identity *IdentityService,
	ledger *LedgerService,
	draw *DrawService,
	stateRepo calendar.StateRepository,
	broadcaster *messaging.DrawBroadcaster,
	emailSvc email.Service,
	days int,
	unlockAll bool,
	logger *logging.ChanneledLogger,
) *CalendarService {
	return &CalendarService{
		identity:    identity,
		ledger:      ledger,
		draw:        draw,
		stateRepo:   stateRepo,
		broadcaster: broadcaster,
		emailSvc:    emailSvc,
		logger:      logger,
		days:        days,
		unlockAll:   unlockAll,
		clock:       time.Now,
	}
}

// SetClock overrides the time source. Test hook.
func (s *CalendarService) SetClock(clock func() time.Time) {
	s.clock = clock
}

// OpenDayResult is the full outcome of opening a calendar day.
type OpenDayResult struct {
	Prize    calendar.Prize `json:"prize"`
	Message  string         `json:"message"`
	Identity Identity       `json:"-"`
	Replayed bool           `json:"replayed"`
}

// OpenDay opens a calendar day for the caller. Re-opening an already opened
// day replays the stored result without drawing again.
func (s *CalendarService) OpenDay(ctx context.Context, day int, fingerprintSeed string) (*OpenDayResult, error) {
	now := s.clock()

	if day < 1 || day > s.days {
		return nil, ErrInvalidDay
	}

	opened, err := s.stateRepo.LoadOpenedDays()
	if err != nil {
		return nil, err
	}
	if opened[day] {
		prizes, err := s.stateRepo.LoadPrizes()
		if err != nil {
			return nil, err
		}
		if prize, ok := prizes[day]; ok && prize.Reveal != calendar.RevealRevoked {
			s.logger.Draw().Debug("Replaying stored result for opened day", "day", day)
			return &OpenDayResult{
				Prize:    prize,
				Message:  calendar.MessageForDay(day),
				Replayed: true,
			}, nil
		}
	}

	if !s.isUnlocked(day, now) {
		return nil, ErrDayLocked
	}

	identity := s.identity.Resolve(ctx, fingerprintSeed)

	if s.ledger.HasAttemptedToday(ctx, identity.Value, day, now) {
		s.logger.Ledger().Info("Open rejected, attempt exists", "identity", identity.Value, "day", day)
		return nil, ErrAlreadyAttempted
	}

	prize := s.draw.Draw(day, now)
	if err := s.stateRepo.SavePrize(prize); err != nil {
		s.logger.Draw().Error("Failed to persist tentative prize", "error", err.Error(), "day", day)
	}
	s.broadcast("reveal_tentative", prize, identity.Value, now)

	if err := s.ledger.RecordAttempt(ctx, identity.Value, day, now); err != nil {
		// The reveal cannot stand without a recorded attempt. The revoked
		// row is ignored by the replay path, so the day can be retried.
		if updateErr := s.stateRepo.UpdateRevealState(day, calendar.RevealRevoked); updateErr != nil {
			s.logger.Draw().Error("Failed to mark prize revoked", "error", updateErr.Error(), "day", day)
		}
		s.broadcast("reveal_revoked", prize, identity.Value, now)
		return nil, err
	}

	prize.Reveal = calendar.RevealConfirmed
	if err := s.stateRepo.SavePrize(prize); err != nil {
		s.logger.Draw().Error("Failed to persist prize after confirmed reveal", "error", err.Error(), "day", day)
	}
	if err := s.stateRepo.MarkOpened(day); err != nil {
		s.logger.Draw().Error("Failed to mark day opened", "error", err.Error(), "day", day)
	}
	s.broadcast("reveal_confirmed", prize, identity.Value, now)

	if prize.IsWin() && s.emailSvc != nil {
		go s.notifyOrganizer(prize, identity.Value)
	}

	return &OpenDayResult{
		Prize:    prize,
		Message:  calendar.MessageForDay(day),
		Identity: identity,
	}, nil
}

// GetState returns the full calendar state for rendering: per-day opened and
// unlocked flags plus retained results.
func (s *CalendarService) GetState() (*CalendarState, error) {
	now := s.clock()

	opened, err := s.stateRepo.LoadOpenedDays()
	if err != nil {
		return nil, err
	}
	prizes, err := s.stateRepo.LoadPrizes()
	if err != nil {
		return nil, err
	}

	state := &CalendarState{
		Date: calendar.DateKey(now),
		Days: make([]DayState, 0, s.days),
	}
	for day := 1; day <= s.days; day++ {
		dayState := DayState{
			Day:      day,
			Unlocked: s.isUnlocked(day, now),
			Opened:   opened[day],
		}
		if prize, ok := prizes[day]; ok && dayState.Opened {
			p := prize
			dayState.Prize = &p
			dayState.Message = calendar.MessageForDay(day)
		}
		state.Days = append(state.Days, dayState)
	}
	return state, nil
}

// GetDay returns the state of a single calendar day, including its message
// once the day is unlocked.
func (s *CalendarService) GetDay(day int) (*DayState, error) {
	now := s.clock()

	if day < 1 || day > s.days {
		return nil, ErrInvalidDay
	}

	opened, err := s.stateRepo.LoadOpenedDays()
	if err != nil {
		return nil, err
	}

	dayState := &DayState{
		Day:      day,
		Unlocked: s.isUnlocked(day, now),
		Opened:   opened[day],
	}
	if dayState.Unlocked {
		dayState.Message = calendar.MessageForDay(day)
	}
	if dayState.Opened {
		prizes, err := s.stateRepo.LoadPrizes()
		if err != nil {
			return nil, err
		}
		if prize, ok := prizes[day]; ok {
			p := prize
			dayState.Prize = &p
		}
	}
	return dayState, nil
}

// CalendarState is the full per-device calendar view.
type CalendarState struct {
	Date string     `json:"date"`
	Days []DayState `json:"days"`
}

// DayState is one day's slice of the calendar state.
type DayState struct {
	Day      int             `json:"day"`
	Unlocked bool            `json:"unlocked"`
	Opened   bool            `json:"opened"`
	Prize    *calendar.Prize `json:"prize,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// ListWinCodes returns the win codes retained locally, in day order.
func (s *CalendarService) ListWinCodes() ([]calendar.Prize, error) {
	prizes, err := s.stateRepo.LoadPrizes()
	if err != nil {
		return nil, err
	}

	wins := make([]calendar.Prize, 0, len(prizes))
	for day := 1; day <= s.days; day++ {
		if prize, ok := prizes[day]; ok && prize.IsWin() && prize.Reveal == calendar.RevealConfirmed {
			wins = append(wins, prize)
		}
	}
	return wins, nil
}

// VerifyCode verifies a win code's structure and local provenance.
func (s *CalendarService) VerifyCode(code string) calendar.VerificationResult {
	prizes, err := s.stateRepo.LoadPrizes()
	if err != nil {
		s.logger.Draw().Warn("Prize load failed during verification, format check only", "error", err.Error())
		prizes = nil
	}
	return s.draw.Verify(code, prizes)
}

// isUnlocked reports whether a day can be opened at the given time. Days
// unlock on their December date; the unlockAll override frees every day for
// out-of-season testing.
func (s *CalendarService) isUnlocked(day int, now time.Time) bool {
	if s.unlockAll {
		return true
	}
	return now.Month() == time.December && now.Day() >= day
}

func (s *CalendarService) broadcast(eventType string, prize calendar.Prize, identity string, now time.Time) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.Broadcast(calendar.DrawEvent{
		Type:      eventType,
		Day:       prize.Day,
		Outcome:   prize.Outcome,
		TierType:  prize.TierType,
		Identity:  identity,
		Timestamp: now.UTC(),
	})
}

func (s *CalendarService) notifyOrganizer(prize calendar.Prize, identity string) {
	if err := s.emailSvc.SendWinNotification(prize, identity); err != nil {
		s.logger.System().Error("Organizer win notification failed", "error", err.Error(), "day", prize.Day)
	}
}
