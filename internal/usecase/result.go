package usecase

import (
	"maps"
	"slices"
	"sync"

	"EnterpriseRiskNews/internal/domain"
)

// Stats summarises what happened to terms and items during a run.
type Stats struct {
	Terms         int
	FeedFailures  int
	ItemsSeen     int
	Emitted       int
	Drops         map[domain.FailureKind]int
	Rejections    map[domain.RejectReason]int
	BudgetReached bool
	Canceled      bool
}

// Dropped returns the total number of items removed by any stage.
func (s Stats) Dropped() int {
	total := 0
	for _, n := range s.Drops {
		total += n
	}
	return total
}

// ResultBuilder accumulates emitted records. It only ever appends; callers
// get copies.
type ResultBuilder struct {
	mu      sync.Mutex
	records []domain.OutputRecord
	stats   Stats
}

// NewResultBuilder returns an empty builder.
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{stats: Stats{
		Drops:      map[domain.FailureKind]int{},
		Rejections: map[domain.RejectReason]int{},
	}}
}

// Append adds a record to the result set.
func (b *ResultBuilder) Append(record domain.OutputRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	record.Keywords = slices.Clone(record.Keywords)
	b.records = append(b.records, record)
	b.stats.Emitted++
}

// Len reports how many records were appended.
func (b *ResultBuilder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// Records returns a copy of the appended records in append order.
func (b *ResultBuilder) Records() []domain.OutputRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.OutputRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Stats returns a snapshot of the counters.
func (b *ResultBuilder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.Drops = maps.Clone(b.stats.Drops)
	s.Rejections = maps.Clone(b.stats.Rejections)
	return s
}

func (b *ResultBuilder) update(fn func(*Stats)) {
	b.mu.Lock()
	fn(&b.stats)
	b.mu.Unlock()
}
