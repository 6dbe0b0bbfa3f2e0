package animated

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/agiangrant/gifrefresh/internal/testutil"
)

func TestDecodeFrameCount(t *testing.T) {
	tests := []struct {
		name   string
		delays []int
	}{
		{name: "single", delays: []int{5}},
		{name: "three", delays: []int{5, 10, 20}},
		{name: "five", delays: []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames, err := Decode(testutil.GIF(t, 8, 6, tt.delays...))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			n := len(tt.delays)
			if frames.FrameCount() != n {
				t.Fatalf("FrameCount() = %d, want %d", frames.FrameCount(), n)
			}
			for i := 0; i < n; i++ {
				if _, err := frames.Frame(i); err != nil {
					t.Errorf("Frame(%d) error = %v", i, err)
				}
				if _, err := frames.FrameDuration(i); err != nil {
					t.Errorf("FrameDuration(%d) error = %v", i, err)
				}
			}
			for _, idx := range []int{-1, n, n + 3} {
				_, err := frames.Frame(idx)
				var ie *IndexError
				if !errors.As(err, &ie) {
					t.Errorf("Frame(%d) error = %v, want *IndexError", idx, err)
					continue
				}
				if ie.Index != idx || ie.Count != n {
					t.Errorf("IndexError = %+v, want index %d count %d", ie, idx, n)
				}
				if _, err := frames.FrameDuration(idx); !errors.As(err, &ie) {
					t.Errorf("FrameDuration(%d) error = %v, want *IndexError", idx, err)
				}
			}
		})
	}
}

func TestDecodeSize(t *testing.T) {
	frames, err := Decode(testutil.GIF(t, 40, 30, 10, 10))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(Size{Width: 40, Height: 30}, frames.Size()); diff != "" {
		t.Errorf("Size() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeDurations(t *testing.T) {
	frames, err := Decode(testutil.GIF(t, 4, 4, 0, 1, 2, 25))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	var got []time.Duration
	for i := 0; i < frames.FrameCount(); i++ {
		d, err := frames.FrameDuration(i)
		if err != nil {
			t.Fatalf("FrameDuration(%d) error = %v", i, err)
		}
		got = append(got, d)
	}
	want := []time.Duration{
		100 * time.Millisecond, // zero delay falls back to the clamped delay
		10 * time.Millisecond,
		20 * time.Millisecond,
		250 * time.Millisecond,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("durations mismatch (-want +got):\n%s", diff)
	}
	if got, want := frames.TotalDuration(), 380*time.Millisecond; got != want {
		t.Errorf("TotalDuration() = %v, want %v", got, want)
	}
}

func TestResolveDelay(t *testing.T) {
	tests := []struct {
		name      string
		unclamped time.Duration
		clamped   time.Duration
		want      time.Duration
	}{
		{name: "positive unclamped wins", unclamped: 40 * time.Millisecond, clamped: 100 * time.Millisecond, want: 40 * time.Millisecond},
		{name: "tiny unclamped still wins", unclamped: time.Millisecond, clamped: 100 * time.Millisecond, want: time.Millisecond},
		{name: "zero falls back", unclamped: 0, clamped: 100 * time.Millisecond, want: 100 * time.Millisecond},
		{name: "negative falls back", unclamped: -5 * time.Millisecond, clamped: 70 * time.Millisecond, want: 70 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDelay(tt.unclamped, tt.clamped); got != tt.want {
				t.Errorf("ResolveDelay(%v, %v) = %v, want %v", tt.unclamped, tt.clamped, got, tt.want)
			}
		})
	}
}

func TestClampDelay(t *testing.T) {
	for _, tt := range []struct {
		in, want time.Duration
	}{
		{0, 100 * time.Millisecond},
		{10 * time.Millisecond, 100 * time.Millisecond},
		{20 * time.Millisecond, 20 * time.Millisecond},
	} {
		if got := ClampDelay(tt.in); got != tt.want {
			t.Errorf("ClampDelay(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDecodeUnreadable(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not an image"), []byte("GIF89a")} {
		frames, err := Decode(data)
		if frames != nil {
			t.Errorf("Decode(%q) returned frames, want nil", data)
		}
		if !errors.Is(err, ErrUnreadable) {
			t.Errorf("Decode(%q) error = %v, want ErrUnreadable", data, err)
		}
		var de *DecodeError
		if !errors.As(err, &de) {
			t.Errorf("Decode(%q) error = %T, want *DecodeError", data, err)
		}
	}
}

func TestDecodeLimits(t *testing.T) {
	data := testutil.GIF(t, 10, 10, 5, 5, 5, 5)

	if _, err := Decode(data, Options{MaxBytes: 8}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("MaxBytes: error = %v, want ErrTooLarge", err)
	}
	if _, err := DecodeReader(bytes.NewReader(data), Options{MaxBytes: 8}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("DecodeReader MaxBytes: error = %v, want ErrTooLarge", err)
	}
	if _, err := Decode(data, Options{MaxPixels: 50}); !errors.Is(err, ErrTooLarge) {
		t.Errorf("MaxPixels: error = %v, want ErrTooLarge", err)
	}
	frames, err := Decode(data, Options{MaxFrames: 2})
	if err != nil {
		t.Fatalf("MaxFrames: error = %v", err)
	}
	if frames.FrameCount() != 2 {
		t.Errorf("MaxFrames: FrameCount() = %d, want 2", frames.FrameCount())
	}
}

func TestDecodeStill(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 12, 7))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	frames, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if frames.FrameCount() != 1 {
		t.Errorf("FrameCount() = %d, want 1", frames.FrameCount())
	}
	if got, want := frames.Size(), (Size{Width: 12, Height: 7}); got != want {
		t.Errorf("Size() = %v, want %v", got, want)
	}
}

func TestDecodeComposites(t *testing.T) {
	frames, err := Decode(testutil.GIF(t, 3, 3, 5, 5))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	img, err := frames.Frame(1)
	if err != nil {
		t.Fatalf("Frame(1) error = %v", err)
	}
	r, g, b, a := img.At(1, 1).RGBA()
	wr, wg, wb, wa := testutil.Palette[1].RGBA()
	if r != wr || g != wg || b != wb || a != wa {
		t.Errorf("Frame(1).At(1,1) = %v, want %v", img.At(1, 1), testutil.Palette[1])
	}
}

func TestNewPlaceholders(t *testing.T) {
	good := image.NewRGBA(image.Rect(0, 0, 20, 10))
	frames := New(
		Frame{Image: nil, Duration: time.Second},
		Frame{Image: good, Duration: 30 * time.Millisecond},
		Frame{Image: image.NewRGBA(image.Rectangle{}), Duration: time.Second},
	)
	if frames.FrameCount() != 3 {
		t.Fatalf("FrameCount() = %d, want 3", frames.FrameCount())
	}
	for _, i := range []int{0, 2} {
		d, _ := frames.FrameDuration(i)
		if d != 0 {
			t.Errorf("placeholder FrameDuration(%d) = %v, want 0", i, d)
		}
		img, _ := frames.Frame(i)
		if img == nil || !img.Bounds().Empty() {
			t.Errorf("placeholder Frame(%d) = %v, want empty image", i, img)
		}
	}
	if got, want := frames.Size(), (Size{Width: 20, Height: 10}); got != want {
		t.Errorf("Size() = %v, want %v", got, want)
	}
}

func TestNewEmpty(t *testing.T) {
	frames := New()
	if frames.FrameCount() != 0 {
		t.Errorf("FrameCount() = %d, want 0", frames.FrameCount())
	}
	if frames.Size() != FallbackSize {
		t.Errorf("Size() = %v, want %v", frames.Size(), FallbackSize)
	}
	if _, err := frames.Frame(0); err == nil {
		t.Error("Frame(0) on empty sequence: expected error")
	}
}

func TestDecodeCorruptFrame(t *testing.T) {
	data := testutil.CorruptFrame(t, testutil.GIF(t, 8, 8, 10, 10, 10), 1)

	frames, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if frames.FrameCount() != 3 {
		t.Fatalf("FrameCount() = %d, want 3", frames.FrameCount())
	}

	var durations []time.Duration
	var empty []bool
	for i := 0; i < frames.FrameCount(); i++ {
		d, _ := frames.FrameDuration(i)
		img, _ := frames.Frame(i)
		durations = append(durations, d)
		empty = append(empty, img.Bounds().Empty())
	}
	if diff := cmp.Diff([]time.Duration{100 * time.Millisecond, 0, 100 * time.Millisecond}, durations); diff != "" {
		t.Errorf("durations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{false, true, false}, empty); diff != "" {
		t.Errorf("placeholder frames mismatch (-want +got):\n%s", diff)
	}
	if got, want := frames.Size(), (Size{Width: 8, Height: 8}); got != want {
		t.Errorf("Size() = %v, want %v", got, want)
	}

	img, _ := frames.Frame(2)
	r, g, b, a := img.At(4, 4).RGBA()
	wr, wg, wb, wa := testutil.Palette[2].RGBA()
	if r != wr || g != wg || b != wb || a != wa {
		t.Errorf("Frame(2).At(4,4) = %v, want %v", img.At(4, 4), testutil.Palette[2])
	}
}

func TestDecodeTruncatedGIF(t *testing.T) {
	data := testutil.GIF(t, 8, 8, 10, 10, 10)
	frames, err := Decode(data[:len(data)-8])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if frames.FrameCount() != 3 {
		t.Fatalf("FrameCount() = %d, want 3", frames.FrameCount())
	}
	if d, _ := frames.FrameDuration(0); d != 100*time.Millisecond {
		t.Errorf("FrameDuration(0) = %v, want 100ms", d)
	}
}
