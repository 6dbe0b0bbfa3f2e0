package retained

import (
	"sync"
	"sync/atomic"
	"time"
)

// AnimationID uniquely identifies an animation.
type AnimationID uint64

var nextAnimationID atomic.Uint64

func newAnimationID() AnimationID {
	return AnimationID(nextAnimationID.Add(1))
}

// EasingFunc defines how animation progress maps to value progress.
// Input t is 0-1 (time progress), output is value progress. Output may leave
// 0-1 for overshooting curves such as springs.
type EasingFunc func(t float64) float64

// Common easing functions
var (
	// EaseLinear - constant speed
	EaseLinear EasingFunc = func(t float64) float64 { return t }

	// EaseOutQuad - constant deceleration to zero (momentum scrolling)
	EaseOutQuad EasingFunc = func(t float64) float64 { return t * (2 - t) }

	// EaseOutCubic - smooth deceleration (good for UI)
	EaseOutCubic EasingFunc = func(t float64) float64 {
		t--
		return t*t*t + 1
	}
)

// Animation is a running, cancellable interpolation.
type Animation struct {
	id         AnimationID
	startTime  time.Time // Set by the first Tick that sees the animation
	duration   time.Duration
	update     func(progress float64) // Called each frame with eased progress
	onComplete func()                 // Called when animation finishes, never after Cancel
	easing     EasingFunc
	cancelled  atomic.Bool
	finished   atomic.Bool
}

// Cancel stops the animation. Its completion callback will not run.
func (a *Animation) Cancel() {
	a.cancelled.Store(true)
}

// IsCancelled returns whether the animation was cancelled.
func (a *Animation) IsCancelled() bool {
	return a.cancelled.Load()
}

// IsFinished returns whether the animation ran to completion.
func (a *Animation) IsFinished() bool {
	return a.finished.Load()
}

// AnimationRegistry manages active animations. It is ticked once per frame
// by the Loop.
type AnimationRegistry struct {
	mu         sync.RWMutex
	animations map[AnimationID]*Animation

	// Callback when animations start or all finish; the Loop uses it to wake.
	onActiveChange func(hasActive bool)
}

// NewAnimationRegistry creates a new animation registry.
func NewAnimationRegistry() *AnimationRegistry {
	return &AnimationRegistry{
		animations: make(map[AnimationID]*Animation),
	}
}

// OnActiveChange sets the callback for when animations become active/inactive.
func (r *AnimationRegistry) OnActiveChange(fn func(hasActive bool)) {
	r.mu.Lock()
	r.onActiveChange = fn
	r.mu.Unlock()
}

// Add registers a new animation.
func (r *AnimationRegistry) Add(anim *Animation) {
	r.mu.Lock()
	wasEmpty := len(r.animations) == 0
	r.animations[anim.id] = anim
	callback := r.onActiveChange
	r.mu.Unlock()

	if wasEmpty && callback != nil {
		callback(true)
	}
}

// HasActive returns true if there are any running animations.
func (r *AnimationRegistry) HasActive() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.animations) > 0
}

// Count returns the number of active animations.
func (r *AnimationRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.animations)
}

// Tick updates all animations and removes completed ones.
// Returns true if any animations are still active.
//
// Update and completion callbacks run outside the registry lock, so they
// may add or cancel animations.
func (r *AnimationRegistry) Tick(now time.Time) bool {
	r.mu.Lock()
	active := make([]*Animation, 0, len(r.animations))
	removed := 0
	for id, anim := range r.animations {
		if anim.cancelled.Load() {
			delete(r.animations, id)
			removed++
			continue
		}
		active = append(active, anim)
	}
	r.mu.Unlock()

	var toComplete []*Animation
	for _, anim := range active {
		if anim.cancelled.Load() {
			continue
		}
		if anim.startTime.IsZero() {
			anim.startTime = now
		}
		elapsed := now.Sub(anim.startTime)

		if elapsed >= anim.duration {
			if anim.update != nil {
				anim.update(anim.easing(1.0))
			}
			toComplete = append(toComplete, anim)
			continue
		}

		t := float64(elapsed) / float64(anim.duration)
		if t > 1 {
			t = 1
		}
		if anim.update != nil {
			anim.update(anim.easing(t))
		}
	}

	r.mu.Lock()
	for _, anim := range toComplete {
		if _, ok := r.animations[anim.id]; ok {
			delete(r.animations, anim.id)
			removed++
		}
	}
	hasActive := len(r.animations) > 0
	callback := r.onActiveChange
	r.mu.Unlock()

	for _, anim := range toComplete {
		// An update callback may have cancelled its own animation.
		if anim.cancelled.Load() {
			continue
		}
		anim.finished.Store(true)
		if anim.onComplete != nil {
			anim.onComplete()
		}
	}

	if removed > 0 && !hasActive && callback != nil {
		callback(false)
	}

	return hasActive
}

// ============================================================================
// Animation Builder API
// ============================================================================

// AnimationBuilder provides a fluent API for creating animations.
type AnimationBuilder struct {
	registry   *AnimationRegistry
	duration   time.Duration
	easing     EasingFunc
	onComplete func()
}

// Animate starts building an animation registered with r.
func (r *AnimationRegistry) Animate() *AnimationBuilder {
	return &AnimationBuilder{
		registry: r,
		duration: 300 * time.Millisecond, // Default duration
		easing:   EaseOutCubic,           // Default easing (smooth UI feel)
	}
}

// Duration sets how long the animation runs.
func (b *AnimationBuilder) Duration(d time.Duration) *AnimationBuilder {
	b.duration = d
	return b
}

// Easing sets the easing function.
func (b *AnimationBuilder) Easing(fn EasingFunc) *AnimationBuilder {
	b.easing = fn
	return b
}

// OnComplete sets a callback for when the animation finishes.
func (b *AnimationBuilder) OnComplete(fn func()) *AnimationBuilder {
	b.onComplete = fn
	return b
}

// FromTo animates a float32 value between two values, passing each
// interpolated value to set.
func (b *AnimationBuilder) FromTo(from, to float32, set func(float32)) *Animation {
	return b.Custom(func(progress float64) {
		set(lerp(from, to, float32(progress)))
	})
}

// Insets animates a content inset between two values.
func (b *AnimationBuilder) Insets(from, to Insets, set func(Insets)) *Animation {
	return b.Custom(func(progress float64) {
		set(lerpInsets(from, to, float32(progress)))
	})
}

// Custom creates an animation with a custom update function.
// The update function receives eased progress.
func (b *AnimationBuilder) Custom(update func(progress float64)) *Animation {
	easing := b.easing
	if easing == nil {
		easing = EaseLinear
	}
	anim := &Animation{
		id:         newAnimationID(),
		duration:   b.duration,
		easing:     easing,
		onComplete: b.onComplete,
		update:     update,
	}

	b.registry.Add(anim)
	return anim
}
