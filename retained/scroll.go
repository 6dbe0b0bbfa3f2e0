package retained

import (
	"sync"
	"time"
)

// OffsetHandler is called after a scroll container's content offset is
// written. old and new may be equal; every write notifies.
type OffsetHandler func(old, new Point)

// ScrollHost is the capability a container must provide for a RefreshControl
// to operate inside it.
type ScrollHost interface {
	// ContentOffset returns the current scroll offset.
	ContentOffset() Point

	// SetContentOffset moves the content, optionally animating the move.
	SetContentOffset(p Point, animated bool)

	// ContentInset returns the padding around the content.
	ContentInset() Insets

	// SetContentInset replaces the padding around the content.
	SetContentInset(in Insets)

	// IsDragging reports whether the user is dragging the content.
	IsDragging() bool

	// IsDecelerating reports whether the content is still moving after the
	// user lifted their finger.
	IsDecelerating() bool

	// Bounds returns the container's frame.
	Bounds() Rect

	// OnOffsetChanged registers fn for offset notifications and returns a
	// function removing the registration.
	OnOffsetChanged(fn OffsetHandler) (cancel func())
}

// ============================================================================
// Scroll Animation Configuration
// ============================================================================

// ScrollToConfig configures a programmatic scroll animation.
type ScrollToConfig struct {
	Duration time.Duration // Animation duration (default: 250ms)
	Easing   EasingFunc    // Easing function (default: EaseOutCubic)
}

// DefaultScrollToConfig returns sensible defaults for scroll animations.
func DefaultScrollToConfig() ScrollToConfig {
	return ScrollToConfig{
		Duration: 250 * time.Millisecond,
		Easing:   EaseOutCubic,
	}
}

// ScrollViewConfig configures a ScrollView.
type ScrollViewConfig struct {
	// Bounds is the frame of the scroll view.
	Bounds Rect

	// ContentHeight is the height of the scrollable content.
	ContentHeight float32

	// Inset is the initial content inset.
	Inset Insets

	// ScrollTo configures animated SetContentOffset calls.
	ScrollTo ScrollToConfig

	// BounceDuration is how long the content takes to settle after a drag
	// ends (default: 400ms).
	BounceDuration time.Duration

	// MomentumTime projects release velocity into travel distance: a
	// release at v points/second travels v*MomentumTime (default: 0.3s).
	MomentumTime float32
}

// DefaultScrollViewConfig returns a phone-sized scroll view configuration.
func DefaultScrollViewConfig() ScrollViewConfig {
	return ScrollViewConfig{
		Bounds:         Rect{Width: 375, Height: 600},
		ScrollTo:       DefaultScrollToConfig(),
		BounceDuration: 400 * time.Millisecond,
		MomentumTime:   0.3,
	}
}

// ScrollView is an in-memory vertical scroll container implementing
// ScrollHost. Gestures are fed through BeginDragging, DragBy and
// EndDragging; movement after release runs on the animation registry.
type ScrollView struct {
	animations *AnimationRegistry

	mu            sync.Mutex
	config        ScrollViewConfig
	offset        Point
	inset         Insets
	contentHeight float32
	dragging      bool
	decelerating  bool
	scrollAnim    *Animation
	handlers      []offsetObserver
	nextHandler   uint64
}

type offsetObserver struct {
	id uint64
	fn OffsetHandler
}

var _ ScrollHost = (*ScrollView)(nil)

// NewScrollView creates a scroll view at rest whose animations run on the
// given registry.
func NewScrollView(animations *AnimationRegistry, config ScrollViewConfig) *ScrollView {
	if config.ScrollTo.Duration == 0 {
		config.ScrollTo.Duration = 250 * time.Millisecond
	}
	if config.ScrollTo.Easing == nil {
		config.ScrollTo.Easing = EaseOutCubic
	}
	if config.BounceDuration == 0 {
		config.BounceDuration = 400 * time.Millisecond
	}
	if config.MomentumTime == 0 {
		config.MomentumTime = 0.3
	}
	return &ScrollView{
		animations:    animations,
		config:        config,
		inset:         config.Inset,
		offset:        Point{Y: -config.Inset.Top},
		contentHeight: config.ContentHeight,
	}
}

// ContentOffset implements ScrollHost.
func (s *ScrollView) ContentOffset() Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// ContentInset implements ScrollHost.
func (s *ScrollView) ContentInset() Insets {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inset
}

// IsDragging implements ScrollHost.
func (s *ScrollView) IsDragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragging
}

// IsDecelerating implements ScrollHost.
func (s *ScrollView) IsDecelerating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decelerating
}

// IsAnimating reports whether a programmatic or deceleration animation is
// moving the content.
func (s *ScrollView) IsAnimating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrollAnim != nil
}

// Bounds implements ScrollHost.
func (s *ScrollView) Bounds() Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Bounds
}

// SetContentHeight changes the height of the scrollable content.
func (s *ScrollView) SetContentHeight(h float32) {
	s.mu.Lock()
	s.contentHeight = h
	s.mu.Unlock()
}

// OnOffsetChanged implements ScrollHost.
func (s *ScrollView) OnOffsetChanged(fn OffsetHandler) (cancel func()) {
	s.mu.Lock()
	s.nextHandler++
	id := s.nextHandler
	s.handlers = append(s.handlers, offsetObserver{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, h := range s.handlers {
			if h.id == id {
				s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
				return
			}
		}
	}
}

// Observers returns the number of registered offset handlers.
func (s *ScrollView) Observers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handlers)
}

// SetContentOffset implements ScrollHost. It cancels any running scroll or
// deceleration animation.
func (s *ScrollView) SetContentOffset(p Point, animated bool) {
	s.mu.Lock()
	s.stopScrollAnimLocked()
	from := s.offset
	s.mu.Unlock()

	if !animated {
		s.setOffset(p)
		return
	}

	var anim *Animation
	anim = s.animations.Animate().
		Duration(s.config.ScrollTo.Duration).
		Easing(s.config.ScrollTo.Easing).
		OnComplete(func() { s.clearScrollAnim(anim, false) }).
		Custom(func(progress float64) {
			t := float32(progress)
			s.setOffset(Point{X: lerp(from.X, p.X, t), Y: lerp(from.Y, p.Y, t)})
		})
	s.mu.Lock()
	s.scrollAnim = anim
	s.mu.Unlock()
}

// SetContentInset implements ScrollHost. Changing the inset re-applies the
// content offset, notifying observers: when the user is not dragging and the
// content sat at the old rest position, or above the new one, it snaps to
// the new rest position.
func (s *ScrollView) SetContentInset(in Insets) {
	s.mu.Lock()
	old := s.inset
	s.inset = in
	p := s.offset
	if !s.dragging && (p.Y <= -old.Top+restEpsilon || p.Y < -in.Top) {
		p.Y = -in.Top
	}
	s.mu.Unlock()

	s.setOffset(p)
}

// restEpsilon absorbs float error when comparing against a rest position.
const restEpsilon = 0.5

// BeginDragging starts a user drag, stopping any movement in progress.
func (s *ScrollView) BeginDragging() {
	s.mu.Lock()
	s.stopScrollAnimLocked()
	s.dragging = true
	s.mu.Unlock()
}

// DragBy moves the content as a finger moving down by dy points would.
// It is a no-op outside a drag.
func (s *ScrollView) DragBy(dy float32) {
	s.mu.Lock()
	if !s.dragging {
		s.mu.Unlock()
		return
	}
	p := s.offset
	p.Y -= dy
	s.mu.Unlock()

	s.setOffset(p)
}

// EndDragging ends a drag with the given release velocity of the offset in
// points per second. Overscrolled content bounces back to the nearest edge;
// otherwise a non-zero velocity projects a momentum scroll that decelerates
// at a constant rate. The view reports
// IsDecelerating until that movement ends.
func (s *ScrollView) EndDragging(velocity float32) {
	s.mu.Lock()
	if !s.dragging {
		s.mu.Unlock()
		return
	}
	s.dragging = false
	from := s.offset
	minY, maxY := s.restRangeLocked()

	var target float32
	switch {
	case from.Y < minY:
		target = minY
	case from.Y > maxY:
		target = maxY
	case velocity != 0:
		target = clamp32(from.Y+velocity*s.config.MomentumTime, minY, maxY)
	default:
		s.mu.Unlock()
		return
	}
	if target == from.Y {
		s.mu.Unlock()
		return
	}
	s.decelerating = true
	duration := s.config.BounceDuration
	easing := EaseOutCubic
	if from.Y >= minY && from.Y <= maxY {
		easing = EaseOutQuad
	}
	s.mu.Unlock()

	var anim *Animation
	anim = s.animations.Animate().
		Duration(duration).
		Easing(easing).
		OnComplete(func() { s.clearScrollAnim(anim, true) }).
		FromTo(from.Y, target, func(y float32) {
			s.setOffset(Point{X: from.X, Y: y})
		})
	s.mu.Lock()
	s.scrollAnim = anim
	s.mu.Unlock()
}

// restRangeLocked returns the smallest and largest offsets at rest.
func (s *ScrollView) restRangeLocked() (minY, maxY float32) {
	minY = -s.inset.Top
	maxY = s.contentHeight + s.inset.Bottom - s.config.Bounds.Height
	if maxY < minY {
		maxY = minY
	}
	return minY, maxY
}

func (s *ScrollView) stopScrollAnimLocked() {
	if s.scrollAnim != nil {
		s.scrollAnim.Cancel()
		s.scrollAnim = nil
	}
	s.decelerating = false
}

func (s *ScrollView) clearScrollAnim(anim *Animation, decelerating bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scrollAnim == anim {
		s.scrollAnim = nil
	}
	if decelerating && s.scrollAnim == nil {
		s.decelerating = false
	}
}

// setOffset writes the offset and notifies observers outside the lock.
func (s *ScrollView) setOffset(p Point) {
	s.mu.Lock()
	old := s.offset
	s.offset = p
	handlers := acquireOffsetHandlers(len(s.handlers))
	for i, h := range s.handlers {
		handlers[i] = h.fn
	}
	s.mu.Unlock()

	for _, fn := range handlers {
		fn(old, p)
	}
	releaseOffsetHandlers(handlers)
}

func clamp32(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
