package edge

import (
	"fmt"
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/stat"

	"pixeledge/pkg/pixel"
	"pixeledge/pkg/profile"
)

// Line is a least-squares fit of edge positions against scanline index:
// position = Intercept + Slope*scanline. For left-to-right scans the position
// is x and the scanline is y; for top-to-bottom scans it is the reverse.
type Line struct {
	Slope     float64
	Intercept float64
	// Mean is the average edge position.
	Mean float64
	// Residual is the standard deviation of positions around the line.
	Residual float64
	Count    int
}

// At evaluates the line at the given scanline coordinate.
func (l Line) At(scanline float64) float64 {
	return l.Intercept + l.Slope*scanline
}

// Angle returns atan(Slope) in radians. It is zero for an edge perpendicular
// to the scan direction.
func (l Line) Angle() float64 {
	return math.Atan(l.Slope)
}

// FitLine fits a line through points found by a scan in direction dir. At
// least two points on distinct scanlines are required.
func FitLine[T constraints.Float](points []Point[T], dir profile.Direction) (Line, error) {
	if len(points) < 2 {
		return Line{}, fmt.Errorf("%w: line fit needs at least 2 points, got %d", pixel.ErrInvalidParameter, len(points))
	}

	scanlines := make([]float64, len(points))
	positions := make([]float64, len(points))
	for i, p := range points {
		if dir == profile.LeftToRight {
			scanlines[i], positions[i] = float64(p.Y), float64(p.X)
		} else {
			scanlines[i], positions[i] = float64(p.X), float64(p.Y)
		}
	}

	if stat.Variance(scanlines, nil) == 0 {
		return Line{}, fmt.Errorf("%w: line fit needs points on distinct scanlines", pixel.ErrInvalidParameter)
	}

	intercept, slope := stat.LinearRegression(scanlines, positions, nil, false)

	residuals := make([]float64, len(points))
	for i := range points {
		residuals[i] = positions[i] - (intercept + slope*scanlines[i])
	}

	return Line{
		Slope:     slope,
		Intercept: intercept,
		Mean:      stat.Mean(positions, nil),
		Residual:  stat.PopStdDev(residuals, nil),
		Count:     len(points),
	}, nil
}
