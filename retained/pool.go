package retained

import "sync"

// ============================================================================
// Callback Slice Pooling
// ============================================================================
//
// Clock steps and offset notifications copy their callback sets under a lock
// and invoke them outside it. Both happen every frame while a pull or a
// refresh animation is running, so the snapshots are pooled.
//
// Usage:
//   subs := acquireSubscriberSlice(len(d.subscribers))
//   ... fill and use subs ...
//   releaseSubscriberSlice(subs)

// subscriberSlicePool pools clock subscriber snapshots.
var subscriberSlicePool = sync.Pool{
	New: func() interface{} {
		return make([]*displayLinkSubscription, 0, 8)
	},
}

// acquireSubscriberSlice gets a subscriber slice from the pool with at least
// the given length. Caller must call releaseSubscriberSlice when done.
func acquireSubscriberSlice(n int) []*displayLinkSubscription {
	slice := subscriberSlicePool.Get().([]*displayLinkSubscription)
	if cap(slice) < n {
		subscriberSlicePool.Put(slice[:0])
		return make([]*displayLinkSubscription, n, n*2)
	}
	return slice[:n]
}

// releaseSubscriberSlice returns a subscriber slice to the pool.
// The slice should not be used after calling this.
func releaseSubscriberSlice(slice []*displayLinkSubscription) {
	if slice == nil {
		return
	}
	slice = slice[:cap(slice)]
	for i := range slice {
		slice[i] = nil
	}
	if cap(slice) <= 64 {
		subscriberSlicePool.Put(slice[:0])
	}
}

// offsetHandlerPool pools offset observer snapshots.
var offsetHandlerPool = sync.Pool{
	New: func() interface{} {
		return make([]OffsetHandler, 0, 4)
	},
}

// acquireOffsetHandlers gets a handler slice for a notification pass.
func acquireOffsetHandlers(n int) []OffsetHandler {
	slice := offsetHandlerPool.Get().([]OffsetHandler)
	if cap(slice) < n {
		offsetHandlerPool.Put(slice[:0])
		return make([]OffsetHandler, n, n*2)
	}
	return slice[:n]
}

// releaseOffsetHandlers returns a handler slice to the pool after clearing it.
func releaseOffsetHandlers(slice []OffsetHandler) {
	if slice == nil {
		return
	}
	slice = slice[:cap(slice)]
	for i := range slice {
		slice[i] = nil
	}
	if cap(slice) <= 64 {
		offsetHandlerPool.Put(slice[:0])
	}
}
