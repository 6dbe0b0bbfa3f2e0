package retained

import (
	"image"
	"image/color"
	"image/draw"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/agiangrant/gifrefresh/animated"
)

var testEpoch = time.Unix(1_700_000_000, 0)

const frameInterval = 16 * time.Millisecond

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testFrames returns n solid frames of 10x100 pixels, each shown for d.
func testFrames(n int, d time.Duration) *animated.Frames {
	frames := make([]animated.Frame, n)
	for i := range frames {
		img := image.NewRGBA(image.Rect(0, 0, 10, 100))
		draw.Draw(img, img.Bounds(), image.NewUniform(color.Gray{Y: uint8(i * 40)}), image.Point{}, draw.Src)
		frames[i] = animated.Frame{Image: img, Duration: d}
	}
	return animated.New(frames...)
}

// settle ticks reg every frame interval from now until no animation is
// active, returning the last tick time.
func settle(t *testing.T, reg *AnimationRegistry, now time.Time) time.Time {
	t.Helper()
	for i := 0; i < 500; i++ {
		now = now.Add(frameInterval)
		if !reg.Tick(now) {
			return now
		}
	}
	t.Fatal("animations did not settle")
	return now
}
