/*
store.go - Persistence interface for asset aggregates

PURPOSE:
  Defines the interface between the engine and the database. Stores move
  whole aggregates in and out via Snapshot; the invariants are re-checked
  on load by FromSnapshot, so a store cannot hand out a corrupt asset.

IMPLEMENTATIONS:
  - store/memory.go: in-memory, for tests and dev
  - store/sqlite (top-level): production SQLite

DELETE GUARD:
  Delete exists for assets registered by mistake. An asset with any
  depreciation record or a disposal outcome is financial history and can
  never be deleted; it is disposed instead.
*/
package asset

import (
	"context"
	"errors"
)

// =============================================================================
// STORE ERRORS
// =============================================================================

var (
	// ErrNotFound is returned when no asset exists for the given id.
	ErrNotFound = errors.New("asset not found")

	// ErrCodeTaken is returned when creating an asset whose code is
	// already registered.
	ErrCodeTaken = errors.New("asset code already registered")

	// ErrHasHistory is returned by Delete for assets carrying depreciation
	// records or a disposal outcome.
	ErrHasHistory = errors.New("asset has financial history and cannot be deleted")
)

// =============================================================================
// REPOSITORY
// =============================================================================

// ListFilter narrows List results. Nil fields match everything.
type ListFilter struct {
	Status   *Status
	Category *Category
	Currency *string
}

// Repository persists asset aggregates. Save writes the whole aggregate;
// callers serialize operations per asset id.
type Repository interface {
	// Create persists a new asset. Fails with ErrCodeTaken if another
	// asset already uses the same code.
	Create(ctx context.Context, a *FixedAsset) error

	// Save overwrites the stored state of an existing asset.
	Save(ctx context.Context, a *FixedAsset) error

	// Get loads one asset. Returns ErrNotFound if absent.
	Get(ctx context.Context, id ID) (*FixedAsset, error)

	// GetByCode loads one asset by its code. Returns ErrNotFound if absent.
	GetByCode(ctx context.Context, code string) (*FixedAsset, error)

	// List returns assets matching the filter, ordered by code.
	List(ctx context.Context, filter ListFilter) ([]*FixedAsset, error)

	// Delete removes an asset registered by mistake. Fails with
	// ErrHasHistory when depreciation records or a disposal exist.
	Delete(ctx context.Context, id ID) error
}
