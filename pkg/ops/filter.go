package ops

import (
	"fmt"
	"slices"

	"pixeledge/pkg/pixel"
)

// MedianFilter replaces every pixel of a gray-scale buffer by the median of
// the (2*radius+1)^2 window around it. The window is clipped at the image
// border; an even number of samples yields the mean of the two middle ones.
// Step edges keep their position while isolated noise is removed.
func MedianFilter(in *pixel.Buffer, radius int) (*pixel.Buffer, error) {
	if err := pixel.Validate(in); err != nil {
		return nil, err
	}
	if err := pixel.VerifyGrayScale(in); err != nil {
		return nil, err
	}
	if radius < 0 {
		return nil, fmt.Errorf("%w: negative filter radius %d", pixel.ErrInvalidParameter, radius)
	}
	if radius == 0 {
		return in.Clone(), nil
	}

	width, height := int(in.Width()), int(in.Height())
	out := pixel.New(in.Width(), in.Height(), pixel.GrayScale)
	window := make([]uint8, 0, (2*radius+1)*(2*radius+1))

	for y := 0; y < height; y++ {
		y0, y1 := max(y-radius, 0), min(y+radius, height-1)
		dst := out.Row(uint32(y))
		for x := 0; x < width; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, width-1)

			window = window[:0]
			for wy := y0; wy <= y1; wy++ {
				window = append(window, in.Row(uint32(wy))[x0:x1+1]...)
			}
			dst[x] = median(window)
		}
	}
	return out, nil
}

// median sorts values in place.
func median(values []uint8) uint8 {
	slices.Sort(values)
	n := len(values)
	if n%2 == 0 {
		return uint8((uint16(values[n/2-1]) + uint16(values[n/2])) / 2)
	}
	return values[n/2]
}
