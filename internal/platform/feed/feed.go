// Package feed implements the change-notification contract shared by the
// entity services: subscribers get a bare "something changed, re-pull"
// callback, no payload and no diff.
package feed

import "sync"

// Feed is a synchronous subscriber registry. Subscribe, unsubscribe, and
// Notify are safe for concurrent use; callbacks run outside the registry
// lock so a subscriber may re-pull service state or unsubscribe itself.
type Feed struct {
	mu          sync.Mutex
	nextID      int
	subscribers []subscriber
}

type subscriber struct {
	id int
	fn func()
}

// Subscribe registers fn and returns its unsubscribe function. Callbacks
// carry no payload; each one independently re-pulls fresh state.
func (f *Feed) Subscribe(fn func()) func() {
	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subscribers = append(f.subscribers, subscriber{id: id, fn: fn})
	f.mu.Unlock()
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, s := range f.subscribers {
			if s.id == id {
				f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Notify invokes every subscriber synchronously, in subscription order.
// The list is snapshotted first, so a callback registered mid-round is not
// invoked until the next one.
func (f *Feed) Notify() {
	f.mu.Lock()
	subs := make([]subscriber, len(f.subscribers))
	copy(subs, f.subscribers)
	f.mu.Unlock()
	for _, s := range subs {
		s.fn()
	}
}
