package retained

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// LoopConfig configures the frame loop behavior.
type LoopConfig struct {
	// TargetFPS is the desired frames per second (default: 60).
	TargetFPS int

	// Logger receives loop diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultLoopConfig returns sensible defaults.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TargetFPS: 60,
	}
}

// Loop is the single execution context that drives controls: queued work,
// the display link and animations all run on the goroutine calling Step
// (or Run). Post and After may be called from any goroutine.
type Loop struct {
	config     LoopConfig
	clock      *DisplayLink
	animations *AnimationRegistry
	log        *slog.Logger

	mu      sync.Mutex
	queue   []func()
	timers  []timer
	nextSeq uint64
	wake    chan struct{} // wakes an idle Run

	// Timing
	targetFrameTime time.Duration
	startTime       time.Time
	lastFrameTime   time.Time

	// State
	running atomic.Bool
	paused  atomic.Bool

	// Stats
	frameCount    atomic.Uint64
	droppedFrames atomic.Uint64
	idleCount     atomic.Uint64
}

type timer struct {
	due time.Time
	seq uint64
	fn  func()
}

// NewLoop creates a frame loop with the specified configuration.
func NewLoop(config LoopConfig) *Loop {
	if config.TargetFPS < 1 {
		config.TargetFPS = 60
	}
	log := config.Logger
	if log == nil {
		log = slog.Default()
	}
	l := &Loop{
		config:          config,
		clock:           NewDisplayLink(),
		animations:      NewAnimationRegistry(),
		log:             log,
		wake:            make(chan struct{}, 1),
		targetFrameTime: time.Second / time.Duration(config.TargetFPS),
	}
	l.animations.OnActiveChange(func(active bool) {
		if active {
			l.signal()
		}
	})
	return l
}

// Animations returns the animation registry for this loop.
func (l *Loop) Animations() *AnimationRegistry {
	return l.animations
}

// Clock returns the display link stepped by this loop.
func (l *Loop) Clock() *DisplayLink {
	return l.clock
}

// Post queues fn to run at the start of the next frame.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.signal()
}

// After queues fn to run on the first frame at least d from now. Under Run
// now is the wall clock; a loop stepped by hand measures from the most
// recent frame timestamp (or the wall clock, before the first frame).
func (l *Loop) After(d time.Duration, fn func()) {
	base := l.clock.Timestamp()
	if base.IsZero() || l.running.Load() {
		base = time.Now()
	}
	l.mu.Lock()
	l.nextSeq++
	l.timers = append(l.timers, timer{due: base.Add(d), seq: l.nextSeq, fn: fn})
	l.mu.Unlock()
	l.signal()
}

// signal wakes an idle Run. Wakes coalesce.
func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued callbacks and timers.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue) + len(l.timers)
}

// Step runs one frame at now: queued callbacks and due timers first, then
// display link subscribers, then animations. It returns true while any
// animation or clock subscriber still needs frames.
func (l *Loop) Step(now time.Time) bool {
	if l.startTime.IsZero() {
		l.startTime = now
		l.lastFrameTime = now
	}
	if l.paused.Load() {
		return l.animations.HasActive() || l.clock.Active() > 0
	}
	if l.running.Load() && now.Sub(l.lastFrameTime) > 2*l.targetFrameTime {
		l.droppedFrames.Add(1)
	}
	l.lastFrameTime = now
	l.frameCount.Add(1)

	for _, fn := range l.takeDue(now) {
		fn()
	}
	l.clock.Step(now)
	hasActive := l.animations.Tick(now)

	return hasActive || l.clock.Active() > 0
}

// takeDue removes and returns queued callbacks and timers due at now, in
// scheduling order.
func (l *Loop) takeDue(now time.Time) []func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	due := l.queue
	l.queue = nil

	if len(l.timers) == 0 {
		return due
	}
	sort.Slice(l.timers, func(i, j int) bool {
		if l.timers[i].due.Equal(l.timers[j].due) {
			return l.timers[i].seq < l.timers[j].seq
		}
		return l.timers[i].due.Before(l.timers[j].due)
	})
	n := 0
	for n < len(l.timers) && !l.timers[n].due.After(now) {
		due = append(due, l.timers[n].fn)
		n++
	}
	l.timers = append(l.timers[:0], l.timers[n:]...)
	return due
}

// Run steps the loop at the target frame rate until ctx is cancelled.
// Everything touching controls must then happen via Post or After.
//
// Frames only run while there is something to do. With no animation, clock
// subscriber or queued callback, Run sleeps until the next After timer is
// due, new work is posted or an animation starts.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	defer l.running.Store(false)

	l.log.Debug("loop started", "fps", l.config.TargetFPS)
	ticker := time.NewTicker(l.targetFrameTime)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return l.stopped(ctx)
		case now := <-ticker.C:
			if l.Step(now) {
				continue
			}
			due, queued := l.nextWork()
			if queued {
				continue
			}
			ticker.Stop()
			if err := l.idle(ctx, due); err != nil {
				return l.stopped(ctx)
			}
			// Skip the frame-drop check for the first frame after waking.
			l.lastFrameTime = time.Now()
			ticker.Reset(l.targetFrameTime)
		}
	}
}

func (l *Loop) stopped(ctx context.Context) error {
	stats := l.Stats()
	l.log.Debug("loop stopped", "frames", stats.FrameCount, "dropped", stats.DroppedFrames, "idle", stats.IdleCount)
	return ctx.Err()
}

// nextWork reports when the earliest timer is due (zero if none) and
// whether callbacks are queued for the next frame.
func (l *Loop) nextWork() (due time.Time, queued bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, t := range l.timers {
		if due.IsZero() || t.due.Before(due) {
			due = t.due
		}
	}
	return due, len(l.queue) > 0
}

// idle blocks until due (if set), a wake signal or ctx is done.
func (l *Loop) idle(ctx context.Context, due time.Time) error {
	var timeout <-chan time.Time
	if !due.IsZero() {
		t := time.NewTimer(time.Until(due))
		defer t.Stop()
		timeout = t.C
	}
	l.idleCount.Add(1)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.wake:
	case <-timeout:
	}
	return nil
}

// Pause pauses the loop; Step keeps reporting activity but runs nothing.
func (l *Loop) Pause() {
	l.paused.Store(true)
}

// Resume resumes a paused loop.
func (l *Loop) Resume() {
	l.paused.Store(false)
	l.signal()
}

// IsPaused returns whether the loop is paused.
func (l *Loop) IsPaused() bool {
	return l.paused.Load()
}

// IsRunning returns whether Run is active.
func (l *Loop) IsRunning() bool {
	return l.running.Load()
}

// Stats returns loop statistics.
func (l *Loop) Stats() LoopStats {
	return LoopStats{
		FrameCount:    l.frameCount.Load(),
		DroppedFrames: l.droppedFrames.Load(),
		IdleCount:     l.idleCount.Load(),
		TargetFPS:     l.config.TargetFPS,
	}
}

// LoopStats contains performance metrics.
type LoopStats struct {
	FrameCount    uint64
	DroppedFrames uint64
	IdleCount     uint64 // times Run went to sleep with nothing to do
	TargetFPS     int
}
