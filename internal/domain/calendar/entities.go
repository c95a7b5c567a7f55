// Package calendar defines the core entities of the advent calendar:
// attempts, prizes, tiers, and the interfaces that abstract the remote
// attempt store and local persistence away from the application services.
package calendar

import "time"

// Outcome is the result of a single draw.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
)

// RevealState tracks the optimistic reveal flow for an opened day.
// A day is revealed tentatively as soon as the draw completes, then
// confirmed once the attempt is recorded, or revoked if recording fails.
type RevealState string

const (
	RevealTentative RevealState = "tentative"
	RevealConfirmed RevealState = "confirmed"
	RevealRevoked   RevealState = "revoked"
)

// AttemptRecord is one user's draw action for one calendar day.
// Created exactly once per (identity, date, day) triple and never mutated.
type AttemptRecord struct {
	ID        string    `json:"id"`
	Identity  string    `json:"identity"`
	Date      string    `json:"date"` // local calendar date, YYYY-MM-DD
	Day       int       `json:"day"`
	Timestamp time.Time `json:"timestamp"`
}

// Matches reports whether this record covers the given (identity, day) pair.
func (r AttemptRecord) Matches(identity string, day int) bool {
	return r.Identity == identity && r.Day == day
}

// Tier is a named prize category with a relative draw weight.
type Tier struct {
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// Prize is the immutable result of one opened day.
// A win always carries a code; a lose carries neither code nor tier.
type Prize struct {
	Day         int         `json:"day"`
	Outcome     Outcome     `json:"outcome"`
	TierType    string      `json:"tierType,omitempty"`
	TierName    string      `json:"tierName,omitempty"`
	Description string      `json:"description,omitempty"`
	Code        string      `json:"code,omitempty"`
	Reveal      RevealState `json:"revealState"`
	DrawnAt     time.Time   `json:"drawnAt"`
}

// IsWin reports whether the prize is a winning draw.
func (p Prize) IsWin() bool {
	return p.Outcome == OutcomeWin
}

// VerificationResult is the structured outcome of verifying a win code.
// Valid means the code is well-formed; Provenanced additionally means the
// code matches a prize retained locally for that day. A well-formed but
// never-issued code still verifies as Valid (documented weak guarantee).
type VerificationResult struct {
	Valid       bool   `json:"valid"`
	Day         int    `json:"day,omitempty"`
	TierType    string `json:"tierType,omitempty"`
	Provenanced bool   `json:"provenanced"`
	Error       string `json:"error,omitempty"`
}

// StoreStatus is the diagnostic result of a connectivity probe against the
// remote attempt store. Non-authoritative for business logic.
type StoreStatus struct {
	Configured   bool   `json:"configured"`
	TokenPresent bool   `json:"tokenPresent"`
	IDPresent    bool   `json:"idPresent"`
	Reachable    bool   `json:"reachable"`
	AuthOK       bool   `json:"authOk"`
	DocumentID   string `json:"documentId,omitempty"`
	Error        string `json:"error,omitempty"`
}

// DrawEvent is broadcast to the organizer event feed on every reveal
// transition.
type DrawEvent struct {
	Type      string    `json:"type"` // reveal_tentative, reveal_confirmed, reveal_revoked
	Day       int       `json:"day"`
	Outcome   Outcome   `json:"outcome"`
	TierType  string    `json:"tierType,omitempty"`
	Identity  string    `json:"identity"`
	Timestamp time.Time `json:"timestamp"`
}

// DateKey formats a time as the local calendar date used to key attempt
// documents and local attempt lists.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// DocumentFilename returns the remote store filename holding all attempts
// for the given calendar date.
func DocumentFilename(date string) string {
	return "attempts_" + date + ".json"
}
