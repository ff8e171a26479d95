// Package ops holds the per-pixel operations the edge pipeline needs around
// detection: color conversion, histograms and thresholding.
package ops

import (
	"pixeledge/pkg/pixel"
)

// ConvertToGrayScale returns a gray-scale copy of in. RGB pixels become the
// integer average of their three channels; gray-scale input is copied.
func ConvertToGrayScale(in *pixel.Buffer) (*pixel.Buffer, error) {
	if err := pixel.Validate(in); err != nil {
		return nil, err
	}

	out := pixel.New(in.Width(), in.Height(), pixel.GrayScale)
	for y := uint32(0); y < in.Height(); y++ {
		src := in.Row(y)
		dst := out.Row(y)
		if in.ColorCount() == pixel.GrayScale {
			copy(dst, src[:in.Width()])
			continue
		}
		for x := range dst {
			px := src[x*3 : x*3+3]
			dst[x] = uint8((uint32(px[0]) + uint32(px[1]) + uint32(px[2])) / 3)
		}
	}
	return out, nil
}

// ConvertToRGB returns an RGB copy of in, replicating gray intensities into
// all three channels.
func ConvertToRGB(in *pixel.Buffer) (*pixel.Buffer, error) {
	if err := pixel.Validate(in); err != nil {
		return nil, err
	}

	out := pixel.New(in.Width(), in.Height(), pixel.RGB)
	for y := uint32(0); y < in.Height(); y++ {
		src := in.Row(y)
		dst := out.Row(y)
		if in.ColorCount() == pixel.RGB {
			copy(dst, src[:len(dst)])
			continue
		}
		for x := uint32(0); x < in.Width(); x++ {
			v := src[x]
			dst[x*3], dst[x*3+1], dst[x*3+2] = v, v, v
		}
	}
	return out, nil
}

// Histogram counts the intensities of a gray-scale buffer.
func Histogram(buf *pixel.Buffer) ([]uint32, error) {
	if err := pixel.Validate(buf); err != nil {
		return nil, err
	}
	return HistogramROI(buf, 0, 0, buf.Width(), buf.Height())
}

// HistogramROI counts the intensities inside a region of a gray-scale
// buffer. The result always has 256 bins.
func HistogramROI(buf *pixel.Buffer, x, y, width, height uint32) ([]uint32, error) {
	if err := pixel.ValidateROI(pixel.ROI{Buffer: buf, X: x, Y: y, Width: width, Height: height}); err != nil {
		return nil, err
	}
	if err := pixel.VerifyGrayScale(buf); err != nil {
		return nil, err
	}

	histogram := make([]uint32, 256)
	for row := y; row < y+height; row++ {
		for _, v := range buf.Row(row)[x : x+width] {
			histogram[v]++
		}
	}
	return histogram, nil
}

// OtsuThreshold returns the intensity that best separates the histogram into
// two classes by maximising the between-class variance. Pixels at or above
// the returned value belong to the bright class.
func OtsuThreshold(histogram []uint32) (uint8, error) {
	if len(histogram) != 256 {
		return 0, errHistogramSize(len(histogram))
	}

	var total, weightedSum float64
	for i, count := range histogram {
		total += float64(count)
		weightedSum += float64(i) * float64(count)
	}
	if total == 0 {
		return 0, errEmptyHistogram
	}

	var (
		best        uint8
		bestVar     = -1.0
		background  float64
		backWeights float64
	)
	for t := 1; t < 256; t++ {
		background += float64(histogram[t-1])
		backWeights += float64(t-1) * float64(histogram[t-1])
		foreground := total - background
		if background == 0 || foreground == 0 {
			continue
		}

		meanBack := backWeights / background
		meanFore := (weightedSum - backWeights) / foreground
		diff := meanBack - meanFore
		between := background * foreground * diff * diff
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best, nil
}

// Threshold maps every intensity below threshold to 0 and the rest to 255.
func Threshold(in *pixel.Buffer, threshold uint8) (*pixel.Buffer, error) {
	if err := pixel.Validate(in); err != nil {
		return nil, err
	}
	if err := pixel.VerifyGrayScale(in); err != nil {
		return nil, err
	}

	out := pixel.New(in.Width(), in.Height(), pixel.GrayScale)
	for y := uint32(0); y < in.Height(); y++ {
		src := in.Row(y)
		dst := out.Row(y)
		for x := range dst {
			if src[x] >= threshold {
				dst[x] = 255
			}
		}
	}
	return out, nil
}
