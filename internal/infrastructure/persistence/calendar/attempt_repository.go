package calendar

import (
	"database/sql"
	"time"

	"github.com/AtRiskMedia/advent-go/internal/domain/calendar"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/advent-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/advent-go/pkg/config"
)

// SQLAttemptRepository is the SQL-based implementation of the AttemptRepository.
// It backs the ledger's durable fallback tier: the per-(identity, date, day)
// flags and the full per-date attempt list.
type SQLAttemptRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewSQLAttemptRepository creates a new instance of the repository.
func NewSQLAttemptRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLAttemptRepository {
	return &SQLAttemptRepository{
		db:     db,
		logger: logger,
	}
}

// HasAttempt checks whether an attempt flag exists for the given triple.
func (r *SQLAttemptRepository) HasAttempt(identity, date string, day int) (bool, error) {
	const query = `
		SELECT 1 FROM attempt_flags
		WHERE identity = ? AND date = ? AND day = ?
		LIMIT 1`

	start := time.Now()
	r.logger.Database().Debug("Checking attempt flag", "identity", identity, "date", date, "day", day)

	var exists int
	err := r.db.QueryRow(query, identity, date, day).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			r.logger.Database().Debug("Attempt flag not found", "identity", identity, "date", date, "day", day, "duration", time.Since(start))
			return false, nil
		}
		r.logger.Database().Error("Failed to check attempt flag", "error", err.Error(), "identity", identity, "date", date, "day", day)
		return false, err
	}

	r.logger.Database().Info("Attempt flag found", "identity", identity, "date", date, "day", day, "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		const query = `SELECT 1 FROM attempt_flags WHERE identity = ? AND date = ? AND day = ? LIMIT 1`
		r.logger.LogSlowQuery(query, duration)
	}
	return true, nil
}

// ListAttempts retrieves all attempt records for the given calendar date.
func (r *SQLAttemptRepository) ListAttempts(date string) ([]calendar.AttemptRecord, error) {
	const query = `
		SELECT id, identity, date, day, created_at
		FROM attempts
		WHERE date = ?
		ORDER BY created_at`

	start := time.Now()
	r.logger.Database().Debug("Loading attempts for date", "date", date)

	rows, err := r.db.Query(query, date)
	if err != nil {
		r.logger.Database().Error("Failed to load attempts", "error", err.Error(), "date", date)
		return nil, err
	}
	defer rows.Close()

	var records []calendar.AttemptRecord
	for rows.Next() {
		record, err := r.scanAttempt(rows)
		if err != nil {
			r.logger.Database().Error("Failed to scan attempt row", "error", err.Error(), "date", date)
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	r.logger.Database().Info("Attempts loaded", "date", date, "count", len(records), "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		const query = `SELECT id, identity, date, day, created_at FROM attempts WHERE date = ? ORDER BY created_at`
		r.logger.LogSlowQuery(query, duration)
	}
	return records, nil
}

// SaveAttempt stores an attempt record and its dedup flag in one transaction.
func (r *SQLAttemptRepository) SaveAttempt(record calendar.AttemptRecord) error {
	const insertAttempt = `
		INSERT INTO attempts (id, identity, date, day, created_at)
		VALUES (?, ?, ?, ?, ?)`
	const insertFlag = `
		INSERT OR IGNORE INTO attempt_flags (identity, date, day, created_at)
		VALUES (?, ?, ?, ?)`

	start := time.Now()
	r.logger.Database().Debug("Executing attempt insert", "id", record.ID, "identity", record.Identity, "date", record.Date, "day", record.Day)

	tx, err := r.db.Begin()
	if err != nil {
		r.logger.Database().Error("Failed to begin attempt transaction", "error", err.Error(), "id", record.ID)
		return err
	}

	createdAt := record.Timestamp.UTC().Format(time.RFC3339)
	if _, err := tx.Exec(insertAttempt, record.ID, record.Identity, record.Date, record.Day, createdAt); err != nil {
		tx.Rollback()
		r.logger.Database().Error("Attempt insert failed", "error", err.Error(), "id", record.ID)
		return err
	}
	if _, err := tx.Exec(insertFlag, record.Identity, record.Date, record.Day, createdAt); err != nil {
		tx.Rollback()
		r.logger.Database().Error("Attempt flag insert failed", "error", err.Error(), "id", record.ID)
		return err
	}
	if err := tx.Commit(); err != nil {
		r.logger.Database().Error("Attempt transaction commit failed", "error", err.Error(), "id", record.ID)
		return err
	}

	r.logger.Database().Info("Attempt insert completed", "id", record.ID, "identity", record.Identity, "day", record.Day, "duration", time.Since(start))
	duration := time.Since(start)
	if duration > config.SlowQueryThreshold {
		const query = `INSERT INTO attempts (id, identity, date, day, created_at) VALUES (?, ?, ?, ?, ?)`
		r.logger.LogSlowQuery(query, duration)
	}
	return nil
}

// scanAttempt is a helper function to scan a result row into an AttemptRecord.
func (r *SQLAttemptRepository) scanAttempt(rows *sql.Rows) (calendar.AttemptRecord, error) {
	var record calendar.AttemptRecord
	var createdAtStr string

	err := rows.Scan(
		&record.ID,
		&record.Identity,
		&record.Date,
		&record.Day,
		&createdAtStr,
	)
	if err != nil {
		return calendar.AttemptRecord{}, err
	}

	// Parse timestamp
	record.Timestamp, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		// Try alternative timestamp format if RFC3339 fails
		record.Timestamp, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
		if err != nil {
			return calendar.AttemptRecord{}, err
		}
	}

	return record, nil
}
