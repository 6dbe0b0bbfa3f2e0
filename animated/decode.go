package animated

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	_ "image/jpeg" // stills
	_ "image/png"  // stills
	"io"
	"os"
	"time"

	"golang.org/x/image/draw"
)

// Options limits what a decode is allowed to consume. Zero values mean
// no limit.
type Options struct {
	// MaxBytes is the largest payload accepted.
	MaxBytes int64
	// MaxFrames truncates longer animations.
	MaxFrames int
	// MaxPixels is the largest canvas accepted (width*height).
	MaxPixels int
}

func firstOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}

// Decode decodes an animated GIF payload into a frame sequence. Payloads
// that are not GIFs but are understood by image.Decode become a single
// still frame.
func Decode(data []byte, opts ...Options) (*Frames, error) {
	o := firstOptions(opts)
	if o.MaxBytes > 0 && int64(len(data)) > o.MaxBytes {
		return nil, &DecodeError{Kind: ErrTooLarge, Err: fmt.Errorf("bytes=%d limit=%d", len(data), o.MaxBytes)}
	}
	return decodeBytes(data, o)
}

// DecodeReader is like Decode but reads the payload from r.
func DecodeReader(r io.Reader, opts ...Options) (*Frames, error) {
	o := firstOptions(opts)
	data, err := readAllLimit(r, o.MaxBytes)
	if err != nil {
		return nil, err
	}
	return decodeBytes(data, o)
}

// DecodeFile is like Decode but reads the payload from the named file.
func DecodeFile(path string, opts ...Options) (*Frames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	frames, err := DecodeReader(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return frames, nil
}

func decodeBytes(data []byte, opts Options) (*Frames, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		if bytes.HasPrefix(data, gifSignature) {
			frames, salvageErr := salvageGIF(data, opts)
			if salvageErr != nil {
				return nil, &DecodeError{Kind: ErrUnreadable, Err: err}
			}
			return frames, nil
		}
		img, _, imgErr := image.Decode(bytes.NewReader(data))
		if imgErr != nil {
			return nil, &DecodeError{Kind: ErrUnreadable, Err: err}
		}
		return still(img, opts)
	}
	return decodeGIF(g, opts)
}

func decodeGIF(g *gif.GIF, opts Options) (*Frames, error) {
	width, height := g.Config.Width, g.Config.Height
	if (width <= 0 || height <= 0) && len(g.Image) > 0 && g.Image[0] != nil {
		b := g.Image[0].Bounds()
		width, height = b.Max.X, b.Max.Y
	}
	if exceedsPixels(width, height, opts.MaxPixels) {
		return nil, &DecodeError{Kind: ErrTooLarge, Err: fmt.Errorf("pixels=%d limit=%d", width*height, opts.MaxPixels)}
	}

	limit := len(g.Image)
	if opts.MaxFrames > 0 && opts.MaxFrames < limit {
		limit = opts.MaxFrames
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	prev := image.NewRGBA(canvas.Bounds())
	bg := backgroundColor(g)

	frames := make([]Frame, 0, limit)
	for i := 0; i < limit; i++ {
		src := g.Image[i]
		if src == nil || src.Bounds().Empty() {
			frames = append(frames, placeholder())
			continue
		}
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			copy(prev.Pix, canvas.Pix)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)
		snapshot := image.NewRGBA(canvas.Bounds())
		copy(snapshot.Pix, canvas.Pix)

		var unclamped time.Duration
		if i < len(g.Delay) {
			unclamped = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		frames = append(frames, Frame{
			Image:    snapshot,
			Duration: ResolveDelay(unclamped, ClampDelay(unclamped)),
		})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, src.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, prev.Pix)
		}
	}
	return New(frames...), nil
}

func still(img image.Image, opts Options) (*Frames, error) {
	b := img.Bounds()
	if exceedsPixels(b.Dx(), b.Dy(), opts.MaxPixels) {
		return nil, &DecodeError{Kind: ErrTooLarge, Err: fmt.Errorf("pixels=%d limit=%d", b.Dx()*b.Dy(), opts.MaxPixels)}
	}
	return New(Frame{Image: img}), nil
}

const (
	minDelay     = 10 * time.Millisecond
	clampedDelay = 100 * time.Millisecond
)

// ClampDelay applies the delay clamp used by browsers and platform image
// decoders: delays of 10ms or less are shown for 100ms.
func ClampDelay(d time.Duration) time.Duration {
	if d <= minDelay {
		return clampedDelay
	}
	return d
}

// ResolveDelay returns the frame duration for a frame given its unclamped
// and clamped delays. Encoders commonly store zero to mean "default", so a
// non-positive unclamped delay falls back to the clamped one.
func ResolveDelay(unclamped, clamped time.Duration) time.Duration {
	if unclamped > 0 {
		return unclamped
	}
	return clamped
}

func backgroundColor(g *gif.GIF) color.Color {
	pal, ok := g.Config.ColorModel.(color.Palette)
	if !ok || len(pal) == 0 {
		return color.Transparent
	}
	idx := int(g.BackgroundIndex)
	if idx >= len(pal) {
		return color.Transparent
	}
	return pal[idx]
}

func readAllLimit(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	lr := &io.LimitedReader{R: r, N: maxBytes + 1}
	data, err := io.ReadAll(lr)
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, &DecodeError{Kind: ErrTooLarge, Err: fmt.Errorf("limit=%d", maxBytes)}
	}
	return data, nil
}

func exceedsPixels(width, height, maxPixels int) bool {
	if maxPixels <= 0 {
		return false
	}
	return int64(width)*int64(height) > int64(maxPixels)
}
