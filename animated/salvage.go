package animated

import (
	"bytes"
	"errors"
	"image/gif"
	"io"
)

var gifSignature = []byte("GIF8")

const (
	gifExtension      = 0x21
	gifImageSeparator = 0x2C
	gifTrailer        = 0x3B
	gifGraphicControl = 0xF9
)

var errNoGIFFrames = errors.New("no frames")

// gifStream is a GIF split at block boundaries.
type gifStream struct {
	header     []byte // signature, logical screen descriptor and global color table
	background byte
	frames     []gifFrameBlock
}

type gifFrameBlock struct {
	control []byte // graphic control extension, nil if absent
	image   []byte // image descriptor through the data terminator
}

// salvageGIF decodes a stream image/gif rejects as a whole by decoding every
// frame as a GIF of its own. Frames that still fail become placeholders.
func salvageGIF(data []byte, opts Options) (*Frames, error) {
	stream, err := splitGIF(data)
	if err != nil {
		return nil, err
	}
	if len(stream.frames) == 0 {
		return nil, errNoGIFFrames
	}
	config, err := gif.DecodeConfig(bytes.NewReader(stream.header))
	if err != nil {
		return nil, err
	}

	blocks := stream.frames
	if opts.MaxFrames > 0 && opts.MaxFrames < len(blocks) {
		blocks = blocks[:opts.MaxFrames]
	}
	g := &gif.GIF{Config: config, BackgroundIndex: stream.background}
	sub := make([]byte, 0, len(data))
	for _, block := range blocks {
		sub = append(sub[:0], stream.header...)
		sub = append(sub, block.control...)
		sub = append(sub, block.image...)
		sub = append(sub, gifTrailer)

		one, err := gif.DecodeAll(bytes.NewReader(sub))
		if err != nil || len(one.Image) == 0 {
			g.Image = append(g.Image, nil)
			g.Delay = append(g.Delay, 0)
			g.Disposal = append(g.Disposal, gif.DisposalNone)
			continue
		}
		g.Image = append(g.Image, one.Image[0])
		g.Delay = append(g.Delay, one.Delay[0])
		g.Disposal = append(g.Disposal, one.Disposal[0])
	}
	return decodeGIF(g, opts)
}

// splitGIF walks the block structure of a GIF stream. A stream cut short
// inside a frame keeps that frame's partial block; anything after the last
// well-formed block is ignored.
func splitGIF(data []byte) (gifStream, error) {
	var s gifStream
	if len(data) < 13 || !bytes.HasPrefix(data, gifSignature) {
		return s, io.ErrUnexpectedEOF
	}
	pos := 13
	if flags := data[10]; flags&0x80 != 0 {
		pos += 3 << (flags&0x07 + 1)
	}
	if pos > len(data) {
		return s, io.ErrUnexpectedEOF
	}
	s.header = data[:pos]
	s.background = data[11]

	var control []byte
	for pos < len(data) {
		switch data[pos] {
		case gifExtension:
			if pos+2 > len(data) {
				return s, nil
			}
			end, ok := skipSubBlocks(data, pos+2)
			if !ok {
				return s, nil
			}
			if data[pos+1] == gifGraphicControl {
				control = data[pos:end]
			}
			pos = end
		case gifImageSeparator:
			start := pos
			if pos+10 > len(data) {
				s.frames = append(s.frames, gifFrameBlock{control: control, image: data[start:]})
				return s, nil
			}
			if flags := data[pos+9]; flags&0x80 != 0 {
				pos += 3 << (flags&0x07 + 1)
			}
			pos += 11 // descriptor and LZW minimum code size
			end, ok := skipSubBlocks(data, pos)
			if !ok {
				s.frames = append(s.frames, gifFrameBlock{control: control, image: data[start:]})
				return s, nil
			}
			s.frames = append(s.frames, gifFrameBlock{control: control, image: data[start:end]})
			control = nil
			pos = end
		default:
			return s, nil
		}
	}
	return s, nil
}

// skipSubBlocks returns the position after the sub-block chain starting at
// pos, or false if the chain runs past the end of data.
func skipSubBlocks(data []byte, pos int) (int, bool) {
	for pos < len(data) {
		n := int(data[pos])
		pos++
		if n == 0 {
			return pos, true
		}
		pos += n
	}
	return pos, false
}
