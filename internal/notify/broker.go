package notify

import "sync"

const subscriberBuffer = 16

// Broker is an in-process Notifier fanning events out to per-job subscribers.
// Delivery is at-most-once: a subscriber that cannot keep up loses events
// rather than stalling the worker.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan JobEvent]struct{}
	closed bool
}

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[chan JobEvent]struct{})}
}

// Publish delivers an event to every subscriber of its job without blocking.
func (b *Broker) Publish(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for ch := range b.subs[event.JobID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers interest in one job's events. The returned cancel func
// must be called to release the subscription.
func (b *Broker) Subscribe(jobID string) (<-chan JobEvent, func()) {
	ch := make(chan JobEvent, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[chan JobEvent]struct{})
	}
	b.subs[jobID][ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if set, ok := b.subs[jobID]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(b.subs, jobID)
				}
			}
			if !b.closed {
				close(ch)
			}
		})
	}
	return ch, cancel
}

// Close shuts the broker down and closes all subscriber channels.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, set := range b.subs {
		for ch := range set {
			close(ch)
		}
	}
	b.subs = nil
}
