package providers

import (
	"sync"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/logger"
)

// Subscriber receives status snapshots. A subscriber that panics is isolated:
// the panic is logged and delivery continues to the remaining subscribers.
type Subscriber func(Snapshot)

// Subscription identifies a registered subscriber for later removal
type Subscription struct {
	id uint64
}

type subscriberEntry struct {
	id uint64
	fn Subscriber
}

// Notifier fans status snapshots out to any number of subscribers. Delivery
// is synchronous and in subscription order; a newly-registered subscriber
// immediately receives the most recent snapshot so it never starts blank.
type Notifier struct {
	mu      sync.Mutex
	subs    []subscriberEntry
	nextID  uint64
	last    Snapshot
	hasLast bool
	lastSeq uint64
	log     *logger.Logger
}

// NewNotifier creates a Notifier. A nil logger is replaced with a discard logger.
func NewNotifier(log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.Discard()
	}
	return &Notifier{log: log.WithComponent("status_notifier")}
}

// Subscribe registers a subscriber and replays the latest snapshot to it, if
// one exists. Subscribers must not call back into the Notifier from within
// their callback.
func (n *Notifier) Subscribe(fn Subscriber) Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	sub := Subscription{id: n.nextID}
	n.subs = append(n.subs, subscriberEntry{id: sub.id, fn: fn})
	n.log.Debug("subscriber %d registered (%d total)", sub.id, len(n.subs))

	if n.hasLast {
		n.deliver(subscriberEntry{id: sub.id, fn: fn}, n.last)
	}
	return sub
}

// Unsubscribe removes a subscriber. Unknown handles are a no-op.
func (n *Notifier) Unsubscribe(sub Subscription) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, entry := range n.subs {
		if entry.id == sub.id {
			n.subs = append(n.subs[:i], n.subs[i+1:]...)
			n.log.Debug("subscriber %d removed (%d remaining)", sub.id, len(n.subs))
			return
		}
	}
}

// Publish delivers the snapshot to every current subscriber in subscription
// order. Holding the lock for the whole fan-out keeps deliveries serialized.
func (n *Notifier) Publish(snapshot Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.publishLocked(n.lastSeq+1, snapshot)
}

// publishOrdered delivers a snapshot stamped with a sequence number taken
// where the snapshot was produced. A snapshot that lost the race to a newer
// one is dropped, so subscribers never observe state moving backwards and the
// replayed snapshot is always the newest produced.
func (n *Notifier) publishOrdered(seq uint64, snapshot Snapshot) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.publishLocked(seq, snapshot)
}

func (n *Notifier) publishLocked(seq uint64, snapshot Snapshot) {
	if seq <= n.lastSeq {
		n.log.Debug("snapshot %d superseded by %d, dropped", seq, n.lastSeq)
		return
	}
	n.lastSeq = seq
	n.last = snapshot
	n.hasLast = true

	for _, entry := range n.subs {
		n.deliver(entry, snapshot)
	}
}

// SubscriberCount returns the number of registered subscribers
func (n *Notifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

func (n *Notifier) deliver(entry subscriberEntry, snapshot Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("subscriber %d panicked: %v", entry.id, r)
		}
	}()
	entry.fn(snapshot)
}
