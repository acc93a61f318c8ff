package store

import (
	"context"
	"sync"
	"time"

	"github.com/address-registry/app/models"
)

// MemoryStore is a mutex-guarded in-memory Store for tests and local
// development. Records are copied on the way in and out so callers can
// never alias internal state.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]*models.CanonicalAddress
	mergeLog []models.MergeLogEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]*models.CanonicalAddress)}
}

func copyAddress(a *models.CanonicalAddress) *models.CanonicalAddress {
	cp := *a
	cp.Aliases = append([]models.Alias(nil), a.Aliases...)
	cp.Descriptions = append([]models.Description(nil), a.Descriptions...)
	return &cp
}

// GetByID implements Store.
func (ms *MemoryStore) GetByID(ctx context.Context, id string) (*models.CanonicalAddress, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	a, ok := ms.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyAddress(a), nil
}

// FindByFormatted implements Store.
func (ms *MemoryStore) FindByFormatted(ctx context.Context, formatted string) (*models.CanonicalAddress, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for _, a := range ms.byID {
		if a.FormattedAddress == formatted {
			return copyAddress(a), nil
		}
	}
	return nil, ErrNotFound
}

// FindByAlias implements Store.
func (ms *MemoryStore) FindByAlias(ctx context.Context, rawText string) (*models.CanonicalAddress, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	for _, a := range ms.byID {
		if a.HasAlias(rawText) {
			return copyAddress(a), nil
		}
	}
	return nil, ErrNotFound
}

// All implements Store.
func (ms *MemoryStore) All(ctx context.Context) ([]models.CanonicalAddress, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]models.CanonicalAddress, 0, len(ms.byID))
	for _, a := range ms.byID {
		out = append(out, *copyAddress(a))
	}
	return out, nil
}

// Insert implements Store.
func (ms *MemoryStore) Insert(ctx context.Context, addr *models.CanonicalAddress) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.byID[addr.ID] = copyAddress(addr)
	return nil
}

// AddAlias implements Store.
func (ms *MemoryStore) AddAlias(ctx context.Context, id string, alias models.Alias) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	a, ok := ms.byID[id]
	if !ok {
		return ErrNotFound
	}
	if a.HasAlias(alias.RawText) {
		return nil
	}
	a.Aliases = append(a.Aliases, alias)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// AddDescription implements Store.
func (ms *MemoryStore) AddDescription(ctx context.Context, id string, d models.Description) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	a, ok := ms.byID[id]
	if !ok {
		return ErrNotFound
	}
	a.Descriptions = append(a.Descriptions, d)
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// ReplaceMerged implements Store.
func (ms *MemoryStore) ReplaceMerged(ctx context.Context, addr *models.CanonicalAddress) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if _, ok := ms.byID[addr.ID]; !ok {
		return ErrNotFound
	}
	ms.byID[addr.ID] = copyAddress(addr)
	return nil
}

// Delete implements Store.
func (ms *MemoryStore) Delete(ctx context.Context, id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	delete(ms.byID, id)
	return nil
}

// AppendMergeLog implements Store.
func (ms *MemoryStore) AppendMergeLog(ctx context.Context, entry models.MergeLogEntry) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.mergeLog = append(ms.mergeLog, entry)
	return nil
}

// Count implements Store.
func (ms *MemoryStore) Count(ctx context.Context) (int64, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return int64(len(ms.byID)), nil
}

// MergeLog returns a copy of the audit log, oldest first.
func (ms *MemoryStore) MergeLog() []models.MergeLogEntry {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return append([]models.MergeLogEntry(nil), ms.mergeLog...)
}
