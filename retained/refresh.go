package retained

import (
	"log/slog"
	"time"

	"github.com/agiangrant/gifrefresh/animated"
)

// RefreshState is the phase of a RefreshControl's pull-to-refresh cycle.
type RefreshState uint8

const (
	// RefreshIdle means the control is hidden above the content.
	RefreshIdle RefreshState = iota
	// RefreshPulling means the user has revealed part of the control and the
	// displayed frame follows the pull distance.
	RefreshPulling
	// RefreshRefreshing means a refresh is committed: the inset reserves room
	// for the control and the image plays on the clock.
	RefreshRefreshing
	// RefreshRestoring means the inset is springing back after EndRefreshing.
	RefreshRestoring
)

func (s RefreshState) String() string {
	switch s {
	case RefreshIdle:
		return "idle"
	case RefreshPulling:
		return "pulling"
	case RefreshRefreshing:
		return "refreshing"
	case RefreshRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}

// RefreshConfig configures a RefreshControl.
type RefreshConfig struct {
	// AnimateOnScroll scrubs through the frames while the user pulls
	// (default: true).
	AnimateOnScroll bool

	// AnimationDuration is the length of the inset spring-back after
	// EndRefreshing (default: 330ms).
	AnimationDuration time.Duration

	// AnimationDamping is the spring's damping ratio (default: 0.4).
	AnimationDamping float64

	// AnimationVelocity is the spring's initial velocity in units of the
	// total distance per second (default: 0.8).
	AnimationVelocity float64

	// DisplayHeight is the visible display height. The control never
	// expands beyond a fifth of it (default: 600).
	DisplayHeight float32

	// Logger receives state transitions at debug level. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// DefaultRefreshConfig returns the standard pull-to-refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		AnimateOnScroll:   true,
		AnimationDuration: 330 * time.Millisecond,
		AnimationDamping:  0.4,
		AnimationVelocity: 0.8,
		DisplayHeight:     600,
	}
}

// RefreshControl is a pull-to-refresh control that plays an animated image.
// Before a refresh commits, the displayed frame follows the pull distance.
// Once the user releases past the full reveal, the control reserves room at
// the top of its ScrollHost, plays the image on the loop's clock and sends
// ControlEventValueChanged; the application calls EndRefreshing when its
// work is done.
//
// Without a host the control is dormant: every operation is a no-op.
// RefreshControl is not safe for concurrent use; drive it from the Loop
// goroutine (use Loop.Post from others).
type RefreshControl struct {
	animations *AnimationRegistry
	view       *AnimatedImageView
	config     RefreshConfig
	log        *slog.Logger
	targets    controlTargets

	host        ScrollHost
	unsubscribe func()
	frame       Rect

	refreshing           bool
	savedInset           *Insets // host inset before the control expanded it
	changingInset        bool    // set while the control writes the host inset
	forbidsOffsetChanges bool    // a refresh has begun and not ended
	forbidsInsetChanges  bool    // the pull has passed the full reveal
	restore              *Animation
	closed               bool
}

// NewRefreshControl creates a dormant control whose playback and spring
// animations run on loop.
func NewRefreshControl(loop *Loop, config RefreshConfig) *RefreshControl {
	if config.AnimationDuration <= 0 {
		config.AnimationDuration = 330 * time.Millisecond
	}
	if config.DisplayHeight <= 0 {
		config.DisplayHeight = 600
	}
	log := config.Logger
	if log == nil {
		log = slog.Default()
	}
	return &RefreshControl{
		animations: loop.Animations(),
		view:       NewAnimatedImageView(loop.Clock()),
		config:     config,
		log:        log.With("component", "refresh"),
	}
}

// ============================================================================
// Host Attachment
// ============================================================================

// Attach installs the control in host, detaching it from any previous host
// first. A nil host leaves the control dormant.
func (c *RefreshControl) Attach(host ScrollHost) {
	c.Detach()
	if host == nil || c.closed {
		return
	}
	c.host = host
	c.unsubscribe = host.OnOffsetChanged(c.offsetChanged)
	c.log.Debug("attached", "offset", host.ContentOffset(), "inset", host.ContentInset())
}

// Detach removes the control from its host and releases its clock
// subscription. A refresh or spring-back in progress is abandoned: the host
// gets its original inset back and the control returns to idle.
func (c *RefreshControl) Detach() {
	host := c.host
	if host == nil {
		return
	}
	c.unsubscribe()
	c.unsubscribe = nil
	c.host = nil

	if c.restore != nil {
		c.restore.Cancel()
		c.restore = nil
	}
	if c.savedInset != nil {
		host.SetContentInset(*c.savedInset)
		c.savedInset = nil
	}
	c.refreshing = false
	c.forbidsOffsetChanges = false
	c.forbidsInsetChanges = false
	c.frame = Rect{}
	c.view.Release()
	c.view.SetIndex(0)
	c.log.Debug("detached")
}

// Host returns the attached host, or nil.
func (c *RefreshControl) Host() ScrollHost {
	return c.host
}

// Close detaches the control and releases its clock subscription. The
// control cannot be attached again.
func (c *RefreshControl) Close() {
	c.Detach()
	c.view.Close()
	c.closed = true
}

// ============================================================================
// Configuration
// ============================================================================

// SetAnimatedImage replaces the image. Playback restarts from the first
// frame.
func (c *RefreshControl) SetAnimatedImage(img animated.AnimatedImage) {
	c.view.SetAnimatedImage(img)
}

// AnimatedImage returns the image, or nil.
func (c *RefreshControl) AnimatedImage() animated.AnimatedImage {
	return c.view.AnimatedImage()
}

// SetContentMode sets how frames are laid out in the control.
func (c *RefreshControl) SetContentMode(m ContentMode) {
	c.view.SetContentMode(m)
}

// ContentMode returns how frames are laid out in the control.
func (c *RefreshControl) ContentMode() ContentMode {
	return c.view.ContentMode()
}

// ImageView returns the view presenting the frames.
func (c *RefreshControl) ImageView() *AnimatedImageView {
	return c.view
}

// Config returns the control's configuration.
func (c *RefreshControl) Config() RefreshConfig {
	return c.config
}

// AddTarget registers handler for event and returns a function removing it.
func (c *RefreshControl) AddTarget(event ControlEvent, handler ControlHandler) (remove func()) {
	return c.targets.add(event, handler)
}

// ============================================================================
// State
// ============================================================================

// ExpandedHeight is the height the control occupies once fully revealed:
// the image height, capped at a fifth of the display height.
func (c *RefreshControl) ExpandedHeight() float32 {
	maxHeight := c.config.DisplayHeight / 5
	img := c.view.AnimatedImage()
	if img == nil {
		return maxHeight
	}
	return min(maxHeight, img.Size().Height)
}

// Frame returns the region of the host the control covers. Its origin
// follows the top of the revealed area and its height grows as the user
// pulls further.
func (c *RefreshControl) Frame() Rect {
	return c.frame
}

// IsRefreshing reports whether a refresh has begun and not ended.
func (c *RefreshControl) IsRefreshing() bool {
	return c.refreshing
}

// State returns the current phase of the refresh cycle.
func (c *RefreshControl) State() RefreshState {
	switch {
	case c.restore != nil:
		return RefreshRestoring
	case c.refreshing:
		return RefreshRefreshing
	case c.host != nil && c.frame.Height > 0:
		return RefreshPulling
	default:
		return RefreshIdle
	}
}

// ============================================================================
// Refresh Cycle
// ============================================================================

// BeginRefreshing expands the host's top inset by ExpandedHeight, scrolls
// the control fully into view and starts playback. It does nothing while
// refreshing or without a host.
//
// Called during a spring-back, it cancels the spring-back and expands from
// the inset saved before the previous refresh.
func (c *RefreshControl) BeginRefreshing() {
	host := c.host
	if host == nil {
		c.log.Debug("begin refreshing ignored", "reason", "no host")
		return
	}
	if c.refreshing {
		return
	}
	c.refreshing = true
	c.forbidsOffsetChanges = true

	if c.restore != nil {
		c.restore.Cancel()
		c.restore = nil
	}
	if c.savedInset == nil {
		saved := host.ContentInset()
		c.savedInset = &saved
	}
	offset := host.ContentOffset()

	inset := *c.savedInset
	inset.Top += c.ExpandedHeight()
	c.setHostInset(host, inset)

	host.SetContentOffset(offset, false)
	host.SetContentOffset(Point{X: 0, Y: -inset.Top}, true)
	c.view.Start()

	c.log.Debug("refresh began", "state", c.State(), "offset", offset, "inset", inset)
}

// EndRefreshing springs the host's inset back to its value before the
// refresh. Playback stops and rewinds once the spring settles. It does
// nothing unless refreshing.
func (c *RefreshControl) EndRefreshing() {
	host := c.host
	if host == nil {
		c.log.Debug("end refreshing ignored", "reason", "no host")
		return
	}
	if !c.refreshing {
		return
	}
	c.forbidsOffsetChanges = false
	c.refreshing = false

	if c.restore != nil {
		c.restore.Cancel()
	}
	from := host.ContentInset()
	to := from
	if c.savedInset != nil {
		to = *c.savedInset
	}
	easing := SpringEasing(c.config.AnimationDamping, c.config.AnimationVelocity, c.config.AnimationDuration.Seconds())

	var anim *Animation
	anim = c.animations.Animate().
		Duration(c.config.AnimationDuration).
		Easing(easing).
		OnComplete(func() { c.finishRestore(anim) }).
		Insets(from, to, host.SetContentInset)
	c.restore = anim

	c.log.Debug("refresh ended", "state", c.State(), "from", from, "to", to)
}

// finishRestore completes the spring-back started by EndRefreshing.
func (c *RefreshControl) finishRestore(anim *Animation) {
	if c.restore != anim {
		return
	}
	c.restore = nil
	c.savedInset = nil
	c.view.Stop()
	c.view.SetIndex(0)
	c.log.Debug("restore finished", "state", c.State())
}

// setHostInset writes the host inset, ignoring the offset notifications the
// write causes.
func (c *RefreshControl) setHostInset(host ScrollHost, inset Insets) {
	c.changingInset = true
	defer func() { c.changingInset = false }()
	host.SetContentInset(inset)
}

// offsetChanged is the host's offset handler.
func (c *RefreshControl) offsetChanged(_, _ Point) {
	if c.changingInset {
		return
	}
	c.adaptShift()
}

// adaptShift tracks the revealed region, scrubs the image with the pull and
// commits the refresh when the user releases past the full reveal.
func (c *RefreshControl) adaptShift() {
	host := c.host
	if host == nil {
		return
	}
	offset := host.ContentOffset()
	topInset := host.ContentInset().Top
	if c.savedInset != nil {
		topInset = c.savedInset.Top
	}
	originY := offset.Y + topInset
	height := -originY
	c.frame = Rect{X: 0, Y: originY, Width: host.Bounds().Width, Height: height}

	expanded := c.ExpandedHeight()
	if originY <= -expanded {
		c.forbidsInsetChanges = true
	} else if !c.refreshing {
		c.forbidsInsetChanges = false
	}

	if c.config.AnimateOnScroll && !c.refreshing && c.restore == nil && originY < 0 {
		c.view.SetIndex(scrubIndex(c.frameCount(), abs32(height), expanded))
	}

	if !host.IsDragging() && host.IsDecelerating() && !c.forbidsOffsetChanges && c.forbidsInsetChanges {
		c.log.Debug("pull committed", "offset", offset, "expanded", expanded)
		c.view.Start()
		c.targets.send(ControlEventValueChanged)
		c.BeginRefreshing()
	}
}

func (c *RefreshControl) frameCount() int {
	img := c.view.AnimatedImage()
	if img == nil {
		return 1
	}
	return img.FrameCount()
}

// scrubIndex maps a pull distance to a frame: no pull shows the first frame
// and a full reveal shows the last.
func scrubIndex(frameCount int, pulled, expanded float32) int {
	if frameCount <= 1 {
		return 0
	}
	percentage := float32(1)
	if expanded > 0 {
		percentage = min(1, pulled/expanded)
	}
	return int(float32(frameCount-1) * percentage)
}
