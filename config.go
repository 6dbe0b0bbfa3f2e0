// Package gifrefresh provides a pull-to-refresh control that plays an
// animated GIF: the frame follows the pull distance until the user commits
// to a refresh, then the animation plays on the frame clock until the
// application ends the refresh.
//
// The types here are re-exports of the retained and animated packages for
// consumer convenience.
package gifrefresh

import (
	"github.com/agiangrant/gifrefresh/animated"
	"github.com/agiangrant/gifrefresh/retained"
)

// RefreshControl is a re-export of retained.RefreshControl.
type RefreshControl = retained.RefreshControl

// RefreshConfig configures a RefreshControl.
// This is a re-export of retained.RefreshConfig for consumer convenience.
type RefreshConfig = retained.RefreshConfig

// RefreshState is the phase of a refresh cycle.
type RefreshState = retained.RefreshState

const (
	RefreshIdle       = retained.RefreshIdle
	RefreshPulling    = retained.RefreshPulling
	RefreshRefreshing = retained.RefreshRefreshing
	RefreshRestoring  = retained.RefreshRestoring
)

// ScrollHost is the capability a container must provide to host a
// RefreshControl.
type ScrollHost = retained.ScrollHost

// ScrollView is an in-memory ScrollHost.
type ScrollView = retained.ScrollView

// ScrollViewConfig configures a ScrollView.
type ScrollViewConfig = retained.ScrollViewConfig

// Loop drives controls, clocks and animations.
type Loop = retained.Loop

// LoopConfig configures a Loop.
type LoopConfig = retained.LoopConfig

// Geometry re-exports.
type (
	Point  = retained.Point
	Insets = retained.Insets
	Rect   = retained.Rect
)

// ContentMode controls how frames are laid out in the control.
type ContentMode = retained.ContentMode

const (
	ContentModeScaleToFill     = retained.ContentModeScaleToFill
	ContentModeScaleAspectFit  = retained.ContentModeScaleAspectFit
	ContentModeScaleAspectFill = retained.ContentModeScaleAspectFill
	ContentModeCenter          = retained.ContentModeCenter
	ContentModeTop             = retained.ContentModeTop
	ContentModeBottom          = retained.ContentModeBottom
)

// ControlEvent identifies an event sent by a control.
type ControlEvent = retained.ControlEvent

// ControlEventValueChanged is sent when a pull commits to a refresh.
const ControlEventValueChanged = retained.ControlEventValueChanged

// AnimatedImage is a re-export of animated.AnimatedImage.
type AnimatedImage = animated.AnimatedImage

// DefaultRefreshConfig returns the standard pull-to-refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return retained.DefaultRefreshConfig()
}

// DefaultLoopConfig returns sensible loop defaults.
func DefaultLoopConfig() LoopConfig {
	return retained.DefaultLoopConfig()
}

// DefaultScrollViewConfig returns a phone-sized scroll view configuration.
func DefaultScrollViewConfig() ScrollViewConfig {
	return retained.DefaultScrollViewConfig()
}

// NewLoop creates a frame loop.
func NewLoop(config LoopConfig) *Loop {
	return retained.NewLoop(config)
}

// NewScrollView creates a scroll view animated by loop.
func NewScrollView(loop *Loop, config ScrollViewConfig) *ScrollView {
	return retained.NewScrollView(loop.Animations(), config)
}

// New creates a RefreshControl on loop showing img, which may be nil.
func New(loop *Loop, img AnimatedImage, config RefreshConfig) *RefreshControl {
	c := retained.NewRefreshControl(loop, config)
	if img != nil {
		c.SetAnimatedImage(img)
	}
	return c
}

// LoadGIF decodes the animated image at path.
func LoadGIF(path string) (AnimatedImage, error) {
	frames, err := animated.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return frames, nil
}
