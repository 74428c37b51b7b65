package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/petcare-portal/internal/domains/cart/ports"
)

var _ ports.CheckoutJournal = (*CheckoutJournal)(nil)

// CheckoutJournal provides an in-memory journal for development and tests.
type CheckoutJournal struct {
	mu      sync.RWMutex
	records map[string]ports.CheckoutRecord
	now     func() time.Time
}

func NewCheckoutJournal() *CheckoutJournal {
	return &CheckoutJournal{
		records: map[string]ports.CheckoutRecord{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (j *CheckoutJournal) WithClock(now func() time.Time) {
	if now != nil {
		j.now = now
	}
}

func (j *CheckoutJournal) Find(_ context.Context, key string) (*ports.CheckoutRecord, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	record, ok := j.records[key]
	if !ok {
		return nil, nil
	}
	copy := record
	copy.ProductIDs = append([]string(nil), record.ProductIDs...)
	return &copy, nil
}

func (j *CheckoutJournal) Record(_ context.Context, record ports.CheckoutRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.records[record.Key]; ok {
		return nil
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = j.now()
	}
	record.ProductIDs = append([]string(nil), record.ProductIDs...)
	j.records[record.Key] = record
	return nil
}
