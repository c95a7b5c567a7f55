package calendar

import "context"

// Document is the full remote document: filename -> raw file content.
type Document struct {
	ID    string
	Files map[string]string
}

// DocumentStore abstracts a remote key-document blob store with read/patch
// semantics (a GitHub Gist in production, but any store with the same shape
// satisfies the contract). Reads are unauthenticated; writes require the
// configured credential. No optimistic concurrency is performed: concurrent
// writers can lose updates inside the read-modify-write window.
type DocumentStore interface {
	ReadDocument(ctx context.Context) (*Document, error)
	WriteFile(ctx context.Context, filename, content string) error
	CreateDocument(ctx context.Context, description string, files map[string]string) (string, error)
	VerifyConnectivity(ctx context.Context) StoreStatus

	// AdoptDocument repoints the store at a freshly created document id for
	// the rest of the process lifetime.
	AdoptDocument(id string)

	// Configured reports whether the store can answer reads (document id
	// present). Writable additionally requires the write credential.
	Configured() bool
	Writable() bool
}

// StateRepository persists the per-device calendar state: which days were
// opened and what prize each opened day produced. Owned exclusively by this
// instance; never merged from remote.
type StateRepository interface {
	LoadPrizes() (map[int]Prize, error)
	SavePrize(prize Prize) error
	UpdateRevealState(day int, state RevealState) error
	LoadOpenedDays() (map[int]bool, error)
	MarkOpened(day int) error
}

// AttemptRepository persists the durable local attempt records: the
// per-(identity, date, day) flags and the full per-date attempt list that
// serve as the ledger's last fallback tier when the remote store and the
// in-memory cache cannot answer.
type AttemptRepository interface {
	HasAttempt(identity, date string, day int) (bool, error)
	ListAttempts(date string) ([]AttemptRecord, error)
	SaveAttempt(record AttemptRecord) error
}
