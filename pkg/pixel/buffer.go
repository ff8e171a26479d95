// Package pixel provides the row-strided byte buffer that every image
// operation in pixeledge reads from and writes to, together with the
// precondition checks those operations run before touching any pixel.
package pixel

// Supported channel counts.
const (
	GrayScale uint8 = 1
	RGB       uint8 = 3
)

// Buffer holds width x height pixels with colorCount interleaved channels.
// Rows are rowSize bytes apart; rowSize may exceed width*colorCount when
// rows are padded.
type Buffer struct {
	width      uint32
	height     uint32
	colorCount uint8
	rowSize    uint32
	data       []byte
}

// New allocates a buffer without row padding. A zero width or height
// produces an empty buffer.
func New(width, height uint32, colorCount uint8) *Buffer {
	return NewWithAlignment(width, height, colorCount, 1)
}

// NewWithAlignment allocates a buffer whose row size is rounded up to a
// multiple of alignment bytes.
func NewWithAlignment(width, height uint32, colorCount uint8, alignment uint32) *Buffer {
	if colorCount == 0 {
		colorCount = GrayScale
	}
	if alignment == 0 {
		alignment = 1
	}

	b := &Buffer{colorCount: colorCount}
	if width == 0 || height == 0 {
		return b
	}

	rowSize := width * uint32(colorCount)
	if rem := rowSize % alignment; rem != 0 {
		rowSize += alignment - rem
	}

	b.width = width
	b.height = height
	b.rowSize = rowSize
	b.data = make([]byte, int(rowSize)*int(height))
	return b
}

// Width returns the width in pixels.
func (b *Buffer) Width() uint32 { return b.width }

// Height returns the height in pixels.
func (b *Buffer) Height() uint32 { return b.height }

// ColorCount returns the number of interleaved channels per pixel.
func (b *Buffer) ColorCount() uint8 { return b.colorCount }

// RowSize returns the number of bytes between the starts of two rows.
func (b *Buffer) RowSize() uint32 { return b.rowSize }

// Data returns the underlying storage. Writes through the slice modify the
// buffer.
func (b *Buffer) Data() []byte { return b.data }

// Empty reports whether the buffer holds no pixels.
func (b *Buffer) Empty() bool {
	return b == nil || b.width == 0 || b.height == 0 || len(b.data) == 0
}

// Row returns row y including padding bytes.
func (b *Buffer) Row(y uint32) []byte {
	start := int(y) * int(b.rowSize)
	return b.data[start : start+int(b.rowSize)]
}

// Pixel returns the channels of the pixel at (x, y).
func (b *Buffer) Pixel(x, y uint32) []byte {
	offset := int(y)*int(b.rowSize) + int(x)*int(b.colorCount)
	return b.data[offset : offset+int(b.colorCount)]
}

// At returns the first channel of the pixel at (x, y).
func (b *Buffer) At(x, y uint32) uint8 {
	return b.data[int(y)*int(b.rowSize)+int(x)*int(b.colorCount)]
}

// Set writes value into every channel of the pixel at (x, y).
func (b *Buffer) Set(x, y uint32, value uint8) {
	px := b.Pixel(x, y)
	for i := range px {
		px[i] = value
	}
}

// Fill sets every channel of every pixel to value. Padding bytes are left
// untouched.
func (b *Buffer) Fill(value uint8) {
	if b.Empty() {
		return
	}
	lineLength := int(b.width) * int(b.colorCount)
	for row := uint32(0); row < b.height; row++ {
		line := b.Row(row)[:lineLength]
		for i := range line {
			line[i] = value
		}
	}
}

// FillROI sets every channel of the pixels inside the region to value.
func (b *Buffer) FillROI(x, y, width, height uint32, value uint8) error {
	if err := ValidateROI(ROI{Buffer: b, X: x, Y: y, Width: width, Height: height}); err != nil {
		return err
	}

	lineLength := int(width) * int(b.colorCount)
	for row := y; row < y+height; row++ {
		start := int(row)*int(b.rowSize) + int(x)*int(b.colorCount)
		line := b.data[start : start+lineLength]
		for i := range line {
			line[i] = value
		}
	}
	return nil
}

// SameSize reports whether both buffers have identical dimensions.
func (b *Buffer) SameSize(other *Buffer) bool {
	return b.width == other.width && b.height == other.height
}

// Clone returns a deep copy of the buffer, padding included.
func (b *Buffer) Clone() *Buffer {
	clone := &Buffer{
		width:      b.width,
		height:     b.height,
		colorCount: b.colorCount,
		rowSize:    b.rowSize,
	}
	if b.data != nil {
		clone.data = make([]byte, len(b.data))
		copy(clone.data, b.data)
	}
	return clone
}
