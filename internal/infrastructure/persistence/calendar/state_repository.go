// Package calendar provides the concrete SQL-based implementations of
// the calendar domain repositories (State, Attempt).
package calendar

import (
	"database/sql"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/advent-go/pkg/config"
)

// SQLStateRepository is the SQL-based implementation of the StateRepository.
type SQLStateRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLStateRepository creates a new instance of the repository.
func NewSQLStateRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLStateRepository {
	return &SQLStateRepository{
		db:     db,
		logger: logger,
	}
}

// LoadPrizes retrieves all stored day results keyed by day number.
func (r *SQLStateRepository) LoadPrizes() (map[int]calendar.Prize, error) {
	const query = `
		SELECT day, outcome, tier_type, tier_name, description, code, reveal_state, drawn_at
		FROM calendar_results`

	start := time.Now()
	r.logger.Database().Debug("Loading calendar results")

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to load calendar results", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	prizes := make(map[int]calendar.Prize)
	for rows.Next() {
		prize, err := r.scanPrize(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan calendar result row", "error", err.Error())
			return nil, err
		}
		prizes[prize.Day] = prize
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Database().Info("Calendar results loaded", "count", len(prizes), "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		const query = `SELECT day, outcome, tier_type, tier_name, description, code, reveal_state, drawn_at FROM calendar_results`
		r.logger.LogSlowQuery(query, duration)
	}
	return prizes, nil
}

// SavePrize stores the result of an opened day. The day is the primary key,
// so re-saving a day replaces its row.
func (r *SQLStateRepository) SavePrize(prize calendar.Prize) error {
	const query = `
		INSERT OR REPLACE INTO calendar_results
			(day, outcome, tier_type, tier_name, description, code, reveal_state, drawn_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing calendar result insert", "day", prize.Day, "outcome", prize.Outcome)

	_, err := r.db.Exec(
		query,
		prize.Day,
		string(prize.Outcome),
		prize.TierType,
		prize.TierName,
		prize.Description,
		prize.Code,
		string(prize.Reveal),
		prize.DrawnAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		r.logger.Database().Error("Calendar result insert failed", "error", err.Error(), "day", prize.Day)
		return err
	}

	r.logger.Database().Info("Calendar result insert completed", "day", prize.Day, "outcome", prize.Outcome, "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		const query = `INSERT OR REPLACE INTO calendar_results (day, outcome, tier_type, tier_name, description, code, reveal_state, drawn_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// UpdateRevealState transitions the reveal state of an opened day.
func (r *SQLStateRepository) UpdateRevealState(day int, state calendar.RevealState) error {
	const query = `
		UPDATE calendar_results
		SET reveal_state = ?
		WHERE day = ?`

	start := time.Now()
	r.logger.Database().Debug("Executing reveal state update", "day", day, "state", state)

	_, err := r.db.Exec(query, string(state), day)
	if err != nil {
		r.logger.Database().Error("Reveal state update failed", "error", err.Error(), "day", day, "state", state)
		return err
	}

	r.logger.Database().Info("Reveal state update completed", "day", day, "state", state, "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		const query = `UPDATE calendar_results SET reveal_state = ? WHERE day = ?`
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// LoadOpenedDays retrieves the set of days already opened on this device.
func (r *SQLStateRepository) LoadOpenedDays() (map[int]bool, error) {
	const query = `
		SELECT day FROM opened_days`

	start := time.Now()
	r.logger.Database().Debug("Loading opened days")

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Database().Error("Failed to load opened days", "error", err.Error())
		return nil, err
	}
	defer rows.Close()

	opened := make(map[int]bool)
	for rows.Next() {
		var day int
		if err := rows.Scan(&day); err != nil {
			return nil, err
		}
		opened[day] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Database().Info("Opened days loaded", "count", len(opened), "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		const query = `SELECT day FROM opened_days`
		r.logger.LogSlowQuery(query, duration)
	}
	return opened, nil
}

// MarkOpened records that a day was opened. Idempotent.
func (r *SQLStateRepository) MarkOpened(day int) error {
	const query = `
		INSERT OR IGNORE INTO opened_days (day, opened_at)
		VALUES (?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing opened day insert", "day", day)

	_, err := r.db.Exec(query, day, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		r.logger.Database().Error("Opened day insert failed", "error", err.Error(), "day", day)
		return err
	}

	r.logger.Database().Info("Opened day insert completed", "day", day, "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		const query = `INSERT OR IGNORE INTO opened_days (day, opened_at) VALUES (?, ?)`
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// scanPrize is a helper function to scan a result row into a Prize struct.
func (r *SQLStateRepository) scanPrize(rows *sql.Rows) (calendar.Prize, error) {
	var prize calendar.Prize
	var outcome, revealState string
	var tierType, tierName, description, code sql.NullString
	var drawnAtStr string

	err := rows.Scan(
		&prize.Day,
		&outcome,
		&tierType,
		&tierName,
		&description,
		&code,
		&revealState,
		&drawnAtStr,
	)
	if err != nil {
		return calendar.Prize{}, err
	}

	prize.Outcome = calendar.Outcome(outcome)
	prize.Reveal = calendar.RevealState(revealState)
	if tierType.Valid {
		prize.TierType = tierType.String
	}
	if tierName.Valid {
		prize.TierName = tierName.String
	}
	if description.Valid {
		prize.Description = description.String
	}
	if code.Valid {
		prize.Code = code.String
	}

	// Parse timestamp
	prize.DrawnAt, err = time.Parse(time.RFC3339, drawnAtStr)
	if err != nil {
		// Try alternative timestamp format if RFC3339 fails
		prize.DrawnAt, err = time.Parse("2006-01-02 15:04:05", drawnAtStr)
		if err != nil {
			return calendar.Prize{}, err
		}
	}

	return prize, nil
}
