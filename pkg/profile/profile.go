// Package profile extracts one-dimensional intensity sequences (scanlines)
// from a rectangular region of a gray-scale buffer.
package profile

import (
	"fmt"
	"iter"
	"strings"

	"pixeledge/pkg/pixel"
)

// Direction selects the scan axis and traversal order.
type Direction int

const (
	// LeftToRight walks each row of the region from its left column.
	LeftToRight Direction = iota
	// TopToBottom walks each column of the region from its top row.
	TopToBottom
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "left-to-right"
	case TopToBottom:
		return "top-to-bottom"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection accepts the names produced by String as well as the short
// forms "horizontal"/"h" and "vertical"/"v".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left-to-right", "left_to_right", "horizontal", "h", "":
		return LeftToRight, nil
	case "top-to-bottom", "top_to_bottom", "vertical", "v":
		return TopToBottom, nil
	default:
		return 0, fmt.Errorf("%w: unknown direction %q", pixel.ErrInvalidParameter, s)
	}
}

// Profile describes the scanlines of a region. It holds no samples of its
// own; every scanline is read from the buffer on demand.
type Profile struct {
	buf           *pixel.Buffer
	x, y          uint32
	width, height uint32
	dir           Direction
}

// New validates the region against a gray-scale buffer and returns its
// scanline profile.
func New(buf *pixel.Buffer, x, y, width, height uint32, dir Direction) (*Profile, error) {
	if err := pixel.ValidateROI(pixel.ROI{Buffer: buf, X: x, Y: y, Width: width, Height: height}); err != nil {
		return nil, err
	}
	if err := pixel.VerifyGrayScale(buf); err != nil {
		return nil, err
	}
	if dir != LeftToRight && dir != TopToBottom {
		return nil, fmt.Errorf("%w: unknown direction %d", pixel.ErrInvalidParameter, int(dir))
	}

	return &Profile{buf: buf, x: x, y: y, width: width, height: height, dir: dir}, nil
}

// Direction returns the scan direction.
func (p *Profile) Direction() Direction { return p.dir }

// Len returns the number of scanlines.
func (p *Profile) Len() int {
	if p.dir == LeftToRight {
		return int(p.height)
	}
	return int(p.width)
}

// Length returns the number of samples in every scanline.
func (p *Profile) Length() int {
	if p.dir == LeftToRight {
		return int(p.width)
	}
	return int(p.height)
}

// Index returns the buffer row (LeftToRight) or column (TopToBottom) of
// scanline i.
func (p *Profile) Index(i int) uint32 {
	if p.dir == LeftToRight {
		return p.y + uint32(i)
	}
	return p.x + uint32(i)
}

// Origin returns the buffer coordinate of the first sample of every
// scanline along the scan axis.
func (p *Profile) Origin() uint32 {
	if p.dir == LeftToRight {
		return p.x
	}
	return p.y
}

// Line returns the samples of scanline i. Horizontal scanlines alias the
// buffer row and must not be modified; vertical scanlines are gathered into
// dst, which is reused when it has enough capacity.
func (p *Profile) Line(i int, dst []byte) []byte {
	if p.dir == LeftToRight {
		row := p.buf.Row(p.y + uint32(i))
		return row[p.x : p.x+p.width]
	}

	n := int(p.height)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	data := p.buf.Data()
	stride := int(p.buf.RowSize())
	offset := int(p.y)*stride + int(p.x) + i
	for k := range dst {
		dst[k] = data[offset]
		offset += stride
	}
	return dst
}

// All yields every scanline in order. The yielded slice is only valid until
// the next iteration.
func (p *Profile) All() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		var scratch []byte
		for i := 0; i < p.Len(); i++ {
			line := p.Line(i, scratch)
			if p.dir == TopToBottom {
				scratch = line
			}
			if !yield(i, line) {
				return
			}
		}
	}
}

// Projection returns the sum of intensities of every scanline of the region,
// one value per row (LeftToRight) or per column (TopToBottom).
func Projection(buf *pixel.Buffer, x, y, width, height uint32, dir Direction) ([]uint32, error) {
	p, err := New(buf, x, y, width, height, dir)
	if err != nil {
		return nil, err
	}

	result := make([]uint32, p.Len())
	for i, line := range p.All() {
		var sum uint32
		for _, v := range line {
			sum += uint32(v)
		}
		result[i] = sum
	}
	return result, nil
}
