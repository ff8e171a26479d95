package edge

import "golang.org/x/exp/constraints"

// Point is a position in buffer coordinates. The coordinate along the scan
// axis is sub-pixel; the other one is the integer scanline index.
type Point[T constraints.Float] struct {
	X, Y T
}
