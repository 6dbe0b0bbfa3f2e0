// Package animated provides frame sequences decoded from animated image
// payloads.
//
// A [Frames] value is immutable once built and may be shared by any number
// of players.
package animated

import (
	"image"
	"time"
)

// Size is the natural size of an animated image in points.
type Size struct {
	Width, Height float32
}

// FallbackSize is reported by a sequence with no frames. It keeps layout
// code that derives heights from the image away from zero.
var FallbackSize = Size{Width: 0, Height: 100}

// AnimatedImage is a randomly indexable sequence of frames.
type AnimatedImage interface {
	// Size returns the natural size of the image.
	Size() Size

	// FrameCount returns the number of frames.
	FrameCount() int

	// FrameDuration returns how long the frame at index is displayed.
	FrameDuration(index int) (time.Duration, error)

	// Frame returns the pixel image of the frame at index.
	Frame(index int) (image.Image, error)
}

// Frame is a single image of a sequence and its display duration.
type Frame struct {
	Image    image.Image
	Duration time.Duration
}

// Frames is the standard AnimatedImage implementation.
type Frames struct {
	frames []Frame
	size   Size
}

var _ AnimatedImage = (*Frames)(nil)

// New returns a sequence holding the provided frames. Frames without a
// usable image are replaced by an empty placeholder of zero duration.
func New(frames ...Frame) *Frames {
	f := &Frames{
		frames: make([]Frame, len(frames)),
		size:   FallbackSize,
	}
	sized := false
	for i, fr := range frames {
		if fr.Image == nil || fr.Image.Bounds().Empty() {
			f.frames[i] = placeholder()
			continue
		}
		if fr.Duration < 0 {
			fr.Duration = 0
		}
		f.frames[i] = fr
		if !sized {
			b := fr.Image.Bounds()
			f.size = Size{Width: float32(b.Dx()), Height: float32(b.Dy())}
			sized = true
		}
	}
	return f
}

// placeholder returns the frame substituted for an undecodable one.
func placeholder() Frame {
	return Frame{Image: image.NewRGBA(image.Rectangle{})}
}

// Size implements AnimatedImage.
func (f *Frames) Size() Size {
	return f.size
}

// FrameCount implements AnimatedImage.
func (f *Frames) FrameCount() int {
	return len(f.frames)
}

// FrameDuration implements AnimatedImage.
func (f *Frames) FrameDuration(index int) (time.Duration, error) {
	if index < 0 || index >= len(f.frames) {
		return 0, &IndexError{Index: index, Count: len(f.frames)}
	}
	return f.frames[index].Duration, nil
}

// Frame implements AnimatedImage.
func (f *Frames) Frame(index int) (image.Image, error) {
	if index < 0 || index >= len(f.frames) {
		return nil, &IndexError{Index: index, Count: len(f.frames)}
	}
	return f.frames[index].Image, nil
}

// TotalDuration returns the sum of all frame durations.
func (f *Frames) TotalDuration() time.Duration {
	var d time.Duration
	for _, fr := range f.frames {
		d += fr.Duration
	}
	return d
}
