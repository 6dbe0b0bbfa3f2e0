package retained

import (
	"sync"
	"time"
)

// Clock is a periodic frame tick source, typically firing at the display
// refresh rate.
type Clock interface {
	// Subscribe registers fn to be called with the frame timestamp on every
	// tick. The subscription starts paused.
	Subscribe(fn func(now time.Time)) Subscription
}

// Subscription is a handle to a Clock registration.
type Subscription interface {
	// SetPaused suspends or resumes delivery without releasing the
	// registration.
	SetPaused(paused bool)

	// Paused reports whether delivery is suspended.
	Paused() bool

	// Release removes the registration. It is safe to call more than once.
	Release()
}

// DisplayLink is a Clock stepped explicitly with frame timestamps, either by
// a Loop or directly by tests feeding synthetic times.
type DisplayLink struct {
	mu          sync.Mutex
	subscribers map[*displayLinkSubscription]struct{}
	timestamp   time.Time
}

// NewDisplayLink returns a DisplayLink with no subscribers.
func NewDisplayLink() *DisplayLink {
	return &DisplayLink{
		subscribers: make(map[*displayLinkSubscription]struct{}),
	}
}

var _ Clock = (*DisplayLink)(nil)

// Subscribe implements Clock.
func (d *DisplayLink) Subscribe(fn func(now time.Time)) Subscription {
	s := &displayLinkSubscription{link: d, fn: fn, paused: true}
	d.mu.Lock()
	d.subscribers[s] = struct{}{}
	d.mu.Unlock()
	return s
}

// Timestamp returns the time passed to the most recent Step.
func (d *DisplayLink) Timestamp() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timestamp
}

// Active returns the number of unpaused subscriptions.
func (d *DisplayLink) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for s := range d.subscribers {
		if !s.paused {
			n++
		}
	}
	return n
}

// Len returns the number of registered subscriptions, paused or not.
func (d *DisplayLink) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subscribers)
}

// Step delivers a tick at now to every unpaused subscriber. Callbacks run
// outside the lock and may pause, resume or release subscriptions.
func (d *DisplayLink) Step(now time.Time) {
	d.mu.Lock()
	d.timestamp = now
	if len(d.subscribers) == 0 {
		d.mu.Unlock()
		return
	}
	subs := acquireSubscriberSlice(len(d.subscribers))
	subs = subs[:0]
	for s := range d.subscribers {
		if !s.paused {
			subs = append(subs, s)
		}
	}
	d.mu.Unlock()

	for _, s := range subs {
		if s.deliverable() {
			s.fn(now)
		}
	}
	releaseSubscriberSlice(subs)
}

type displayLinkSubscription struct {
	link     *DisplayLink
	fn       func(now time.Time)
	paused   bool // guarded by link.mu
	released bool // guarded by link.mu
}

func (s *displayLinkSubscription) SetPaused(paused bool) {
	s.link.mu.Lock()
	s.paused = paused
	s.link.mu.Unlock()
}

func (s *displayLinkSubscription) Paused() bool {
	s.link.mu.Lock()
	defer s.link.mu.Unlock()
	return s.paused
}

func (s *displayLinkSubscription) Release() {
	s.link.mu.Lock()
	s.released = true
	s.paused = true
	delete(s.link.subscribers, s)
	s.link.mu.Unlock()
}

// deliverable reports whether a tick collected for s may still be delivered;
// an earlier callback in the same step may have paused or released it.
func (s *displayLinkSubscription) deliverable() bool {
	s.link.mu.Lock()
	defer s.link.mu.Unlock()
	return !s.paused && !s.released
}
