// Package store abstracts the document store holding canonical addresses,
// so matching and merge logic never touch a concrete database. Two
// implementations ship: MongoStore for production and MemoryStore for
// tests and local development.
package store

import (
	"context"
	"errors"

	"github.com/address-registry/app/models"
)

// ErrNotFound is returned when the referenced address does not exist. It
// is a normal control-flow outcome, not an exceptional condition.
var ErrNotFound = errors.New("store: address not found")

// Store is the persistence contract for canonical addresses.
//
// AddAlias and AddDescription must be atomic at the field level so
// concurrent request-path writers cannot lose each other's appends.
// Delete of a missing id is a no-op: the optimizer may race a concurrent
// pass that already removed the record.
type Store interface {
	// GetByID fetches one address; ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.CanonicalAddress, error)

	// FindByFormatted is an exact-match query on formatted_address;
	// ErrNotFound when no record matches.
	FindByFormatted(ctx context.Context, formatted string) (*models.CanonicalAddress, error)

	// FindByAlias is an array-contains query on aliases.raw_text;
	// ErrNotFound when no record carries the alias.
	FindByAlias(ctx context.Context, rawText string) (*models.CanonicalAddress, error)

	// All scans the whole collection. The optimizer treats the returned
	// slice as its pass snapshot.
	All(ctx context.Context) ([]models.CanonicalAddress, error)

	// Insert persists a brand-new address record.
	Insert(ctx context.Context, addr *models.CanonicalAddress) error

	// AddAlias appends an alias unless an entry with the same raw text is
	// already present (idempotent). Bumps updated_at. ErrNotFound when the
	// id does not exist.
	AddAlias(ctx context.Context, id string, alias models.Alias) error

	// AddDescription atomically appends a description and bumps
	// updated_at. ErrNotFound when the id does not exist.
	AddDescription(ctx context.Context, id string, d models.Description) error

	// ReplaceMerged overwrites the surviving record of a merge with its
	// merged fields.
	ReplaceMerged(ctx context.Context, addr *models.CanonicalAddress) error

	// Delete removes a record; deleting a missing id is a no-op.
	Delete(ctx context.Context, id string) error

	// AppendMergeLog writes one append-only audit entry.
	AppendMergeLog(ctx context.Context, entry models.MergeLogEntry) error

	// Count returns the number of canonical addresses.
	Count(ctx context.Context) (int64, error)
}
