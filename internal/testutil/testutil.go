// Package testutil builds GIF fixtures for tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"testing"
)

// Palette is the palette used by fixture frames. Frame i is filled with
// Palette[i%len(Palette)].
var Palette = color.Palette{
	color.RGBA{R: 0xff, A: 0xff},
	color.RGBA{G: 0xff, A: 0xff},
	color.RGBA{B: 0xff, A: 0xff},
	color.RGBA{R: 0xff, G: 0xff, A: 0xff},
	color.RGBA{A: 0xff},
}

// GIF returns an encoded animated GIF of the given size with one frame per
// delay. Delays are in hundredths of a second, as stored in the format.
func GIF(t testing.TB, width, height int, delays ...int) []byte {
	t.Helper()
	g := &gif.GIF{
		Config: image.Config{
			Width:      width,
			Height:     height,
			ColorModel: Palette,
		},
	}
	for i, d := range delays {
		frame := image.NewPaletted(image.Rect(0, 0, width, height), Palette)
		idx := uint8(i % len(Palette))
		for p := range frame.Pix {
			frame.Pix[p] = idx
		}
		g.Image = append(g.Image, frame)
		g.Delay = append(g.Delay, d)
		g.Disposal = append(g.Disposal, gif.DisposalNone)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		t.Fatalf("failed to encode fixture gif: %v", err)
	}
	return buf.Bytes()
}

// CorruptFrame returns a copy of a GIF payload whose frame at index has its
// first LZW data sub-block overwritten with 0xFF, so that frame alone fails
// to decode.
func CorruptFrame(t testing.TB, data []byte, index int) []byte {
	t.Helper()
	out := append([]byte(nil), data...)
	pos := 13
	if out[10]&0x80 != 0 {
		pos += 3 << (out[10]&0x07 + 1)
	}
	skip := func(p int) int {
		for out[p] != 0 {
			p += int(out[p]) + 1
		}
		return p + 1
	}
	frame := 0
	for pos < len(out) {
		switch out[pos] {
		case 0x21:
			pos = skip(pos + 2)
		case 0x2C:
			if out[pos+9]&0x80 != 0 {
				pos += 3 << (out[pos+9]&0x07 + 1)
			}
			pos += 11
			if frame == index {
				n := int(out[pos])
				for i := pos + 1; i <= pos+n; i++ {
					out[i] = 0xFF
				}
				return out
			}
			pos = skip(pos)
			frame++
		default:
			t.Fatalf("frame %d not found in fixture gif", index)
		}
	}
	t.Fatalf("frame %d not found in fixture gif", index)
	return nil
}
