package providers

import (
	"sync"
	"time"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
)

// Registry owns one StatusRecord per provider and is the single source of
// truth for "is provider X usable now". All mutation goes through
// RecordOutcome; reads hand out copies only.
type Registry struct {
	mu       sync.RWMutex
	records  map[string]StatusRecord
	order    []string
	seq      uint64
	notifier *Notifier
	log      *logger.Logger
	now      func() time.Time
}

// NewRegistry creates a Registry publishing to the given notifier. The
// notifier may be nil when no observers are wanted.
func NewRegistry(notifier *Notifier, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Discard()
	}
	return &Registry{
		records:  make(map[string]StatusRecord),
		notifier: notifier,
		log:      log.WithComponent("provider_status"),
		now:      time.Now,
	}
}

// RecordOutcome classifies the outcome, replaces the provider's record and
// publishes the full snapshot set. Recording the same outcome twice yields
// the same terminal status; only timestamps differ.
func (r *Registry) RecordOutcome(providerID, providerName string, outcome Outcome) StatusRecord {
	status, suggestions := Classify(providerName, outcome)

	r.mu.Lock()
	checkedAt := r.now()
	if prev, ok := r.records[providerID]; ok {
		// LastCheckedAt is monotonically non-decreasing per provider
		if checkedAt.Before(prev.LastCheckedAt) {
			checkedAt = prev.LastCheckedAt
		}
	} else {
		r.order = append(r.order, providerID)
	}

	record := StatusRecord{
		ProviderID:    providerID,
		ProviderName:  providerName,
		Status:        status,
		ErrorMessage:  outcome.ErrorMessage,
		ErrorCode:     outcome.HTTPStatus,
		LastCheckedAt: checkedAt,
		LastLatencyMs: outcome.LatencyMs,
		Suggestions:   suggestions,
	}
	if status == StatusConnected {
		record.ErrorMessage = ""
		record.ErrorCode = 0
	}
	r.records[providerID] = record

	// The sequence number is taken while the snapshot is built, so a
	// snapshot that loses the race between unlock and publish is detectably
	// stale and the notifier drops it instead of delivering it out of order.
	r.seq++
	seq := r.seq
	snapshot := r.snapshotLocked()
	r.mu.Unlock()

	r.log.Debug("%s: %s", providerName, status)
	if r.notifier != nil {
		r.notifier.publishOrdered(seq, snapshot)
	}
	return record.clone()
}

// Get returns the record for a provider, or false for unknown ids
func (r *Registry) Get(providerID string) (StatusRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[providerID]
	if !ok {
		return StatusRecord{}, false
	}
	return record.clone(), true
}

// All returns a snapshot of every record, in first-seen provider order
func (r *Registry) All() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// AllConnected returns the records with StatusConnected
func (r *Registry) AllConnected() Snapshot {
	return r.filter(func(rec StatusRecord) bool { return rec.Status == StatusConnected })
}

// AllInError returns the records in an error status
func (r *Registry) AllInError() Snapshot {
	return r.filter(func(rec StatusRecord) bool { return rec.Status.IsError() })
}

// Health reports the connected and total provider counts. No smoothing or
// decay: the ratio reflects only the latest recorded outcomes.
func (r *Registry) Health() (connected, total int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.Status == StatusConnected {
			connected++
		}
	}
	return connected, len(r.records)
}

func (r *Registry) filter(keep func(StatusRecord) bool) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out Snapshot
	for _, id := range r.order {
		if rec := r.records[id]; keep(rec) {
			out = append(out, rec.clone())
		}
	}
	return out
}

func (r *Registry) snapshotLocked() Snapshot {
	out := make(Snapshot, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.records[id].clone())
	}
	return out
}
