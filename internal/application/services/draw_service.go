package services

import (
	"math/rand"
	"sync"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
)

// DrawService performs the weighted prize draws and win code handling.
// The final calendar day carries a near-certain win probability; every
// other day uses the long-odds default.
type DrawService struct {
	tiers          []calendar.Tier
	winProbFinal   float64
	winProbDefault float64
	finalDay       int
	logger         *logging.ChanneledLogger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewDrawService creates a new draw application service.
func NewDrawService(tiers []calendar.Tier, winProbFinal, winProbDefault float64, finalDay int, logger *logging.ChanneledLogger) *DrawService {
	return &DrawService{
		tiers:          tiers,
		winProbFinal:   winProbFinal,
		winProbDefault: winProbDefault,
		finalDay:       finalDay,
		logger:         logger,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WinProbability returns the win probability in effect for a day.
func (s *DrawService) WinProbability(day int) float64 {
	if day == s.finalDay {
		return s.winProbFinal
	}
	return s.winProbDefault
}

// Draw performs one prize draw for the given day. A winning draw carries a
// freshly generated win code; a losing draw carries only the day's message.
func (s *DrawService) Draw(day int, now time.Time) calendar.Prize {
	start := time.Now()
	winProb := s.WinProbability(day)

	s.mu.Lock()
	outcome, tier := calendar.DrawOutcome(s.tiers, winProb, s.rnd)
	var code string
	if outcome == calendar.OutcomeWin {
		code = calendar.GenerateWinCode(day, tier.Type, now, s.rnd)
	}
	s.mu.Unlock()

	prize := calendar.Prize{
		Day:     day,
		Outcome: outcome,
		Reveal:  calendar.RevealTentative,
		DrawnAt: now.UTC(),
	}
	if outcome == calendar.OutcomeWin {
		prize.TierType = tier.Type
		prize.TierName = tier.Name
		prize.Description = tier.Description
		prize.Code = code
	}

	s.logger.Draw().Info("Draw completed", "day", day, "outcome", outcome, "tierType", prize.TierType, "winProb", winProb, "duration", time.Since(start))
	return prize
}

// Verify checks a win code's structure and, when local prizes are supplied,
// whether the code was actually issued by this instance.
func (s *DrawService) Verify(code string, prizes map[int]calendar.Prize) calendar.VerificationResult {
	result := calendar.VerifyCode(code, s.tiers)
	if !result.Valid {
		s.logger.Draw().Debug("Code verification failed", "error", result.Error)
		return result
	}

	if prize, ok := prizes[result.Day]; ok && prize.IsWin() && prize.Code == code {
		result.Provenanced = true
	}

	s.logger.Draw().Info("Code verified", "day", result.Day, "tierType", result.TierType, "provenanced", result.Provenanced)
	return result
}

// Tiers exposes the configured tier table.
func (s *DrawService) Tiers() []calendar.Tier {
	return s.tiers
}
