package pixel

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter is returned by every operation whose preconditions on
// its buffers or regions do not hold.
var ErrInvalidParameter = errors.New("invalid parameter")

// ROI couples a buffer with a rectangular region to be validated against it.
type ROI struct {
	Buffer        *Buffer
	X, Y          uint32
	Width, Height uint32
}

// IsCorrectColorCount reports whether the buffer is gray-scale or RGB.
func IsCorrectColorCount(b *Buffer) bool {
	return b.colorCount == GrayScale || b.colorCount == RGB
}

// Validate checks that at least one buffer is given, that none is empty or
// has an unsupported channel count, and that all share one size.
func Validate(buffers ...*Buffer) error {
	if len(buffers) == 0 {
		return fmt.Errorf("%w: no image supplied", ErrInvalidParameter)
	}

	for i, b := range buffers {
		if err := validateOne(b, i); err != nil {
			return err
		}
		if i > 0 && !b.SameSize(buffers[0]) {
			return fmt.Errorf("%w: image %d is %dx%d, expected %dx%d", ErrInvalidParameter,
				i, b.width, b.height, buffers[0].width, buffers[0].height)
		}
	}
	return nil
}

// ValidateROI checks every region against its own buffer. Regions may come
// from buffers of different sizes.
func ValidateROI(regions ...ROI) error {
	if len(regions) == 0 {
		return fmt.Errorf("%w: no image supplied", ErrInvalidParameter)
	}

	for i, r := range regions {
		if err := validateOne(r.Buffer, i); err != nil {
			return err
		}
		if r.Width == 0 || r.Height == 0 {
			return fmt.Errorf("%w: region %d has zero size", ErrInvalidParameter, i)
		}
		// uint64 keeps x+width from wrapping around.
		if uint64(r.X)+uint64(r.Width) > uint64(r.Buffer.width) ||
			uint64(r.Y)+uint64(r.Height) > uint64(r.Buffer.height) {
			return fmt.Errorf("%w: region %d (%d,%d %dx%d) exceeds image %dx%d", ErrInvalidParameter,
				i, r.X, r.Y, r.Width, r.Height, r.Buffer.width, r.Buffer.height)
		}
	}
	return nil
}

// ValidateROI2 validates two regions of identical extent.
func ValidateROI2(b1 *Buffer, x1, y1 uint32, b2 *Buffer, x2, y2 uint32, width, height uint32) error {
	return ValidateROI(
		ROI{Buffer: b1, X: x1, Y: y1, Width: width, Height: height},
		ROI{Buffer: b2, X: x2, Y: y2, Width: width, Height: height},
	)
}

// ValidateROI3 validates three regions of identical extent.
func ValidateROI3(b1 *Buffer, x1, y1 uint32, b2 *Buffer, x2, y2 uint32, b3 *Buffer, x3, y3 uint32, width, height uint32) error {
	return ValidateROI(
		ROI{Buffer: b1, X: x1, Y: y1, Width: width, Height: height},
		ROI{Buffer: b2, X: x2, Y: y2, Width: width, Height: height},
		ROI{Buffer: b3, X: x3, Y: y3, Width: width, Height: height},
	)
}

// VerifyGrayScale fails unless every buffer has exactly one channel.
func VerifyGrayScale(buffers ...*Buffer) error {
	return verifyColorCount(GrayScale, "gray-scale", buffers)
}

// VerifyColored fails unless every buffer has exactly three channels.
func VerifyColored(buffers ...*Buffer) error {
	return verifyColorCount(RGB, "colored", buffers)
}

func verifyColorCount(want uint8, kind string, buffers []*Buffer) error {
	for i, b := range buffers {
		if b == nil || b.colorCount != want {
			return fmt.Errorf("%w: %s image %d must have %d color channels", ErrInvalidParameter, kind, i, want)
		}
	}
	return nil
}

func validateOne(b *Buffer, i int) error {
	if b.Empty() {
		return fmt.Errorf("%w: image %d is empty", ErrInvalidParameter, i)
	}
	if !IsCorrectColorCount(b) {
		return fmt.Errorf("%w: image %d has %d color channels", ErrInvalidParameter, i, b.colorCount)
	}
	return nil
}
