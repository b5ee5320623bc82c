package usecase

import "sync/atomic"

// budget caps the number of records of a run. A limit <= 0 means unlimited.
type budget struct {
	limit int64
	used  atomic.Int64
}

func newBudget(limit int) *budget {
	return &budget{limit: int64(limit)}
}

// acquire reserves a slot for one record.
func (b *budget) acquire() bool {
	if b.limit <= 0 {
		b.used.Add(1)
		return true
	}
	for {
		n := b.used.Load()
		if n >= b.limit {
			return false
		}
		if b.used.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (b *budget) exhausted() bool {
	return b.limit > 0 && b.used.Load() >= b.limit
}
