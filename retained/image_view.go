package retained

import (
	"image"
	"math"
	"time"

	"golang.org/x/image/draw"

	"github.com/agiangrant/gifrefresh/animated"
)

// ContentMode controls how a frame is laid out within a view's bounds.
type ContentMode uint8

const (
	// ContentModeScaleToFill stretches the frame to the bounds.
	ContentModeScaleToFill ContentMode = iota
	// ContentModeScaleAspectFit scales the frame to fit entirely inside the
	// bounds, keeping its aspect ratio.
	ContentModeScaleAspectFit
	// ContentModeScaleAspectFill scales the frame to cover the bounds,
	// keeping its aspect ratio. Overflow is clipped.
	ContentModeScaleAspectFill
	// ContentModeCenter centers the frame at its natural size.
	ContentModeCenter
	// ContentModeTop pins the frame's top edge, horizontally centered.
	ContentModeTop
	// ContentModeBottom pins the frame's bottom edge, horizontally centered.
	ContentModeBottom
)

var contentModeNames = [...]string{
	ContentModeScaleToFill:     "scale-to-fill",
	ContentModeScaleAspectFit:  "aspect-fit",
	ContentModeScaleAspectFill: "aspect-fill",
	ContentModeCenter:          "center",
	ContentModeTop:             "top",
	ContentModeBottom:          "bottom",
}

func (m ContentMode) String() string {
	if int(m) < len(contentModeNames) {
		return contentModeNames[m]
	}
	return "unknown"
}

// ParseContentMode returns the mode with the given String name.
func ParseContentMode(s string) (ContentMode, bool) {
	for i, name := range contentModeNames {
		if name == s {
			return ContentMode(i), true
		}
	}
	return ContentModeScaleToFill, false
}

// emptyFrame is displayed when there is no animated image.
var emptyFrame image.Image = image.NewRGBA(image.Rectangle{})

// AnimatedImageView shows one frame of an animated image at a time. The
// frame is either set directly with SetIndex or advanced by clock ticks
// between Start and Stop.
//
// AnimatedImageView is not safe for concurrent use; it belongs to the
// goroutine stepping its clock.
type AnimatedImageView struct {
	clock        Clock
	subscription Subscription // created on first Start
	closed       bool

	source      animated.AnimatedImage
	image       image.Image
	index       int
	playing     bool
	lastAdvance time.Time
	contentMode ContentMode
}

// NewAnimatedImageView creates a view with no image, driven by clock once
// started.
func NewAnimatedImageView(clock Clock) *AnimatedImageView {
	return &AnimatedImageView{
		clock: clock,
		image: emptyFrame,
	}
}

// SetAnimatedImage replaces the image and shows its first frame. A nil
// source shows an empty frame.
func (v *AnimatedImageView) SetAnimatedImage(src animated.AnimatedImage) {
	v.source = src
	v.index = 0
	v.image = v.frameAt(0)
}

// AnimatedImage returns the current image, or nil.
func (v *AnimatedImageView) AnimatedImage() animated.AnimatedImage {
	return v.source
}

// Index returns the displayed frame index.
func (v *AnimatedImageView) Index() int {
	return v.index
}

// SetIndex shows frame i, clamped to the image's frame range. The displayed
// frame only changes when the index does.
func (v *AnimatedImageView) SetIndex(i int) {
	n := v.frameCount()
	switch {
	case n == 0 || i < 0:
		i = 0
	case i >= n:
		i = n - 1
	}
	if i == v.index {
		return
	}
	v.index = i
	v.image = v.frameAt(i)
}

// Image returns the displayed frame.
func (v *AnimatedImageView) Image() image.Image {
	return v.image
}

// IsAnimating reports whether clock-driven playback is on.
func (v *AnimatedImageView) IsAnimating() bool {
	return v.playing
}

// Start turns clock-driven playback on. It is a no-op while playing or
// after Close.
func (v *AnimatedImageView) Start() {
	if v.playing || v.closed {
		return
	}
	if v.subscription == nil {
		v.subscription = v.clock.Subscribe(v.Tick)
	}
	v.subscription.SetPaused(false)
	v.playing = true
}

// Stop turns clock-driven playback off, keeping the clock subscription for
// a later Start. It is a no-op while stopped.
func (v *AnimatedImageView) Stop() {
	if !v.playing {
		return
	}
	v.subscription.SetPaused(true)
	v.playing = false
}

// Tick advances to the next frame, wrapping at the end, once the current
// frame has been shown for its duration. It does nothing while stopped.
func (v *AnimatedImageView) Tick(now time.Time) {
	if !v.playing {
		return
	}
	n := v.frameCount()
	if n == 0 {
		return
	}
	d, err := v.source.FrameDuration(v.index)
	if err != nil {
		return
	}
	if now.Sub(v.lastAdvance) >= d {
		v.SetIndex((v.index + 1) % n)
		v.lastAdvance = now
	}
}

// Release stops playback and gives the clock subscription back. A later
// Start subscribes again.
func (v *AnimatedImageView) Release() {
	v.Stop()
	if v.subscription != nil {
		v.subscription.Release()
		v.subscription = nil
	}
}

// Close releases the view for good; Start is a no-op afterwards. It is safe
// to call more than once.
func (v *AnimatedImageView) Close() {
	v.Release()
	v.closed = true
}

// ContentMode returns the layout mode.
func (v *AnimatedImageView) ContentMode() ContentMode {
	return v.contentMode
}

// SetContentMode sets the layout mode.
func (v *AnimatedImageView) SetContentMode(m ContentMode) {
	v.contentMode = m
}

func (v *AnimatedImageView) frameCount() int {
	if v.source == nil {
		return 0
	}
	return v.source.FrameCount()
}

func (v *AnimatedImageView) frameAt(i int) image.Image {
	if v.frameCount() == 0 {
		return emptyFrame
	}
	img, err := v.source.Frame(i)
	if err != nil || img == nil {
		return emptyFrame
	}
	return img
}

// ============================================================================
// Layout and Rendering
// ============================================================================

// DrawRect returns where the displayed frame lands inside bounds for the
// current content mode. It may extend past bounds for aspect-fill and the
// natural-size modes.
func (v *AnimatedImageView) DrawRect(bounds Rect) Rect {
	size := v.image.Bounds().Size()
	return contentRect(v.contentMode, bounds, float32(size.X), float32(size.Y))
}

// contentRect positions an imageW x imageH frame inside bounds.
func contentRect(mode ContentMode, bounds Rect, imageW, imageH float32) Rect {
	if imageW <= 0 || imageH <= 0 || bounds.Width <= 0 || bounds.Height <= 0 {
		return bounds
	}
	containerAspect := bounds.Width / bounds.Height
	imageAspect := imageW / imageH

	var w, h float32
	switch mode {
	case ContentModeScaleAspectFit:
		if imageAspect > containerAspect {
			w, h = bounds.Width, bounds.Width/imageAspect
		} else {
			w, h = bounds.Height*imageAspect, bounds.Height
		}
	case ContentModeScaleAspectFill:
		if imageAspect > containerAspect {
			w, h = bounds.Height*imageAspect, bounds.Height
		} else {
			w, h = bounds.Width, bounds.Width/imageAspect
		}
	case ContentModeCenter, ContentModeTop, ContentModeBottom:
		w, h = imageW, imageH
	default:
		return bounds
	}

	r := Rect{
		X:      bounds.X + (bounds.Width-w)/2,
		Y:      bounds.Y + (bounds.Height-h)/2,
		Width:  w,
		Height: h,
	}
	switch mode {
	case ContentModeTop:
		r.Y = bounds.Y
	case ContentModeBottom:
		r.Y = bounds.Y + bounds.Height - h
	}
	return r
}

// Render draws the displayed frame into dst, laid out inside bounds and
// clipped to them. Empty bounds draw nothing.
func (v *AnimatedImageView) Render(dst draw.Image, bounds Rect) {
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}
	src := v.image
	if src.Bounds().Empty() {
		return
	}
	r := toRectangle(v.DrawRect(bounds))
	clip := toRectangle(bounds).Intersect(dst.Bounds())
	if r.Empty() || clip.Empty() {
		return
	}

	if r.Size() != src.Bounds().Size() {
		scaled := image.NewRGBA(image.Rectangle{Max: r.Size()})
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), src, src.Bounds(), draw.Src, nil)
		src = scaled
	}
	visible := r.Intersect(clip)
	draw.Draw(dst, visible, src, src.Bounds().Min.Add(visible.Min.Sub(r.Min)), draw.Over)
}

func toRectangle(r Rect) image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(r.X))),
		int(math.Floor(float64(r.Y))),
		int(math.Ceil(float64(r.X+r.Width))),
		int(math.Ceil(float64(r.Y+r.Height))),
	)
}
