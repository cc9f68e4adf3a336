package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryLedger is a mutex-guarded in-process Ledger for dev and tests.
type MemoryLedger struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// Insert stores rec, filling in id and timestamps when missing.
func (m *MemoryLedger) Insert(_ context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	if rec.Status == "" {
		rec.Status = StatusPresent
	}
	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()
	return rec, nil
}

func (m *MemoryLedger) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (m *MemoryLedger) SetCheckOut(_ context.Context, id, checkOut string, at time.Time) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if m.records[i].ID == id {
			m.records[i].CheckOut = &checkOut
			m.records[i].UpdatedAt = at
			return m.records[i], nil
		}
	}
	return Record{}, ErrNotFound
}

func (m *MemoryLedger) List(_ context.Context, f Filter) ([]Record, error) {
	m.mu.RLock()
	res := make([]Record, 0, len(m.records))
	for _, r := range m.records {
		if f.match(r) {
			res = append(res, r)
		}
	}
	m.mu.RUnlock()

	// Insertion order breaks createdAt ties: later inserts count as newer.
	if f.Oldest {
		sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	} else {
		for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
			res[i], res[j] = res[j], res[i]
		}
		sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	}
	return res, nil
}
