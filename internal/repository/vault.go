package repository

import (
	"context"
	"errors"
	"time"

	"linkvault/internal/model"
)

// ErrConditionFailed is returned by RegisterAccess when the guarded update
// matched no row: either the entry is gone or a concurrent access consumed
// the last available slot between the caller's read and this write.
var ErrConditionFailed = errors.New("access condition no longer holds")

// AccessUpdate describes the counter advance a permitted access applies.
// The repository re-checks the admission conditions inside the update itself,
// so two concurrent accesses to a one-time or capped entry can never both
// succeed.
type AccessUpdate struct {
	Operation    model.Operation
	MarkConsumed bool
	Now          time.Time
}

// VaultRepository defines data access for vault entries using SQL queries only.
// No business logic here — strictly persistence operations.
type VaultRepository interface {
	// Create inserts a new vault entry record.
	Create(ctx context.Context, entry *model.VaultEntry) (*model.VaultEntry, error)

	// FindByID returns a vault entry by its public id.
	FindByID(ctx context.Context, id string) (*model.VaultEntry, error)

	// RegisterAccess atomically increments the counter named by upd and
	// optionally marks consumption, but only while the entry still admits the
	// access (not expired, not consumed, counter below its cap). Returns the
	// updated entry, or ErrConditionFailed if no row satisfied the guard.
	RegisterAccess(ctx context.Context, id string, upd AccessUpdate) (*model.VaultEntry, error)

	// Delete removes a vault entry by id. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error

	// FindExpiredBefore returns all entries whose expiry has passed the given instant.
	FindExpiredBefore(ctx context.Context, now time.Time) ([]model.VaultEntry, error)

	// ListByOwner returns the owner's entries, newest first.
	ListByOwner(ctx context.Context, ownerID string) ([]model.VaultEntry, error)
}
