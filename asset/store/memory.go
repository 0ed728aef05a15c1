// Package store provides Repository implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/asset-engine/asset"
)

// =============================================================================
// MEMORY REPOSITORY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	assets map[asset.ID]asset.Snapshot
	codes  map[string]asset.ID
}

func NewMemory() *Memory {
	return &Memory{
		assets: make(map[asset.ID]asset.Snapshot),
		codes:  make(map[string]asset.ID),
	}
}

// Create stores a new aggregate, enforcing code uniqueness.
func (m *Memory) Create(_ context.Context, a *asset.FixedAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := a.Snapshot()
	if existing, ok := m.codes[snap.Code]; ok && existing != snap.ID {
		return asset.ErrCodeTaken
	}
	m.assets[snap.ID] = snap
	m.codes[snap.Code] = snap.ID
	return nil
}

// Save overwrites the stored state of an existing asset.
func (m *Memory) Save(_ context.Context, a *asset.FixedAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := a.Snapshot()
	if _, ok := m.assets[snap.ID]; !ok {
		return asset.ErrNotFound
	}
	m.assets[snap.ID] = snap
	return nil
}

func (m *Memory) Get(_ context.Context, id asset.ID) (*asset.FixedAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.assets[id]
	if !ok {
		return nil, asset.ErrNotFound
	}
	return asset.FromSnapshot(snap)
}

func (m *Memory) GetByCode(_ context.Context, code string) (*asset.FixedAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.codes[code]
	if !ok {
		return nil, asset.ErrNotFound
	}
	snap, ok := m.assets[id]
	if !ok {
		return nil, asset.ErrNotFound
	}
	return asset.FromSnapshot(snap)
}

func (m *Memory) List(_ context.Context, filter asset.ListFilter) ([]*asset.FixedAsset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*asset.FixedAsset
	for _, snap := range m.assets {
		if !matches(snap, filter) {
			continue
		}
		a, err := asset.FromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Code() < result[j].Code()
	})
	return result, nil
}

// Delete removes an asset only if it carries no financial history.
func (m *Memory) Delete(_ context.Context, id asset.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.assets[id]
	if !ok {
		return asset.ErrNotFound
	}
	if len(snap.Records) > 0 || snap.Disposal != nil {
		return asset.ErrHasHistory
	}
	delete(m.assets, id)
	delete(m.codes, snap.Code)
	return nil
}

func matches(snap asset.Snapshot, f asset.ListFilter) bool {
	if f.Status != nil && snap.Status != *f.Status {
		return false
	}
	if f.Category != nil && snap.Category != *f.Category {
		return false
	}
	if f.Currency != nil && snap.Currency != *f.Currency {
		return false
	}
	return true
}
