package edge

import (
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/constraints"

	"pixeledge/pkg/pixel"
	"pixeledge/pkg/profile"
)

// rectangleImage returns a black gray-scale buffer with one filled rectangle.
func rectangleImage(t *testing.T, width, height, x, y, w, h uint32, value uint8) *pixel.Buffer {
	t.Helper()
	b := pixel.New(width, height, pixel.GrayScale)
	require.NoError(t, b.FillROI(x, y, w, h, value))
	return b
}

func requireAllNear[T constraints.Float](t *testing.T, points []Point[T], axis func(Point[T]) T, want float64) {
	t.Helper()
	for _, p := range points {
		require.LessOrEqual(t, math.Abs(float64(axis(p))-want), 1.0, "point %+v", p)
	}
}

func xOf[T constraints.Float](p Point[T]) T { return p.X }
func yOf[T constraints.Float](p Point[T]) T { return p.Y }

func TestFindLeftToRight(t *testing.T) {
	b := rectangleImage(t, 100, 50, 10, 5, 20, 10, 200)

	var d Detector[float64]
	require.NoError(t, d.Find(b, NewParameter(LeftToRight)))

	positive, negative := d.PositiveEdge(), d.NegativeEdge()
	require.Len(t, positive, 10)
	require.Len(t, negative, 10)

	for i, p := range positive {
		require.Equal(t, 10.0, p.X)
		require.Equal(t, float64(5+i), p.Y)
	}
	for i, p := range negative {
		require.Equal(t, 30.0, p.X)
		require.Equal(t, float64(5+i), p.Y)
	}
}

func TestFindTopToBottom(t *testing.T) {
	b := rectangleImage(t, 100, 50, 10, 5, 20, 10, 200)

	var d Detector[float64]
	require.NoError(t, d.Find(b, NewParameter(TopToBottom)))

	positive, negative := d.PositiveEdge(), d.NegativeEdge()
	require.Len(t, positive, 20)
	require.Len(t, negative, 20)

	for i, p := range positive {
		require.Equal(t, 5.0, p.Y)
		require.Equal(t, float64(10+i), p.X)
	}
	for _, p := range negative {
		require.Equal(t, 15.0, p.Y)
	}
}

func TestFindUniformImage(t *testing.T) {
	for _, value := range []uint8{0, 200} {
		b := pixel.New(40, 30, pixel.GrayScale)
		b.Fill(value)

		for _, dir := range []profile.Direction{LeftToRight, TopToBottom} {
			var d Detector[float32]
			require.NoError(t, d.Find(b, NewParameter(dir)))
			require.Empty(t, d.PositiveEdge())
			require.Empty(t, d.NegativeEdge())
		}
	}
}

func TestFindRejectsInvalidInput(t *testing.T) {
	var d Detector[float64]

	require.ErrorIs(t, d.Find(nil, NewParameter(LeftToRight)), pixel.ErrInvalidParameter)
	require.ErrorIs(t, d.Find(pixel.New(0, 0, pixel.GrayScale), NewParameter(LeftToRight)), pixel.ErrInvalidParameter)
	require.ErrorIs(t, d.Find(pixel.New(10, 10, pixel.RGB), NewParameter(LeftToRight)), pixel.ErrInvalidParameter)
	require.ErrorIs(t, d.Find(pixel.New(10, 10, 2), NewParameter(TopToBottom)), pixel.ErrInvalidParameter)

	gray := pixel.New(10, 10, pixel.GrayScale)
	require.ErrorIs(t, d.FindROI(gray, 5, 5, 6, 1, NewParameter(LeftToRight)), pixel.ErrInvalidParameter)
	require.ErrorIs(t, d.Find(gray, Parameter{Policy: Policy(9)}), pixel.ErrInvalidParameter)
}

func TestFailedCallKeepsPreviousResult(t *testing.T) {
	b := rectangleImage(t, 100, 50, 10, 5, 20, 10, 200)

	var d Detector[float64]
	require.NoError(t, d.Find(b, NewParameter(LeftToRight)))
	require.Error(t, d.Find(pixel.New(5, 5, pixel.RGB), NewParameter(LeftToRight)))
	require.Len(t, d.PositiveEdge(), 10)
}

func TestFindROI(t *testing.T) {
	b := rectangleImage(t, 100, 50, 10, 5, 20, 10, 200)

	var d Detector[float64]
	require.NoError(t, d.FindROI(b, 0, 0, 20, 8, NewParameter(LeftToRight)))

	// Rows 5..7 cross the left boundary; the right boundary is outside the region.
	require.Len(t, d.PositiveEdge(), 3)
	require.Empty(t, d.NegativeEdge())
	requireAllNear(t, d.PositiveEdge(), xOf[float64], 10)
	require.Equal(t, 7.0, d.PositiveEdge()[2].Y)
}

func TestBoundaryAtImageRim(t *testing.T) {
	// Rectangle touches the left rim: only the right boundary is localisable.
	b := rectangleImage(t, 20, 10, 1, 2, 5, 3, 150)

	var d Detector[float64]
	require.NoError(t, d.Find(b, NewParameter(LeftToRight)))
	require.Empty(t, d.PositiveEdge())
	require.Len(t, d.NegativeEdge(), 3)
	requireAllNear(t, d.NegativeEdge(), xOf[float64], 6)

	// Rectangle ends one column before the right rim.
	b = rectangleImage(t, 20, 10, 5, 2, 14, 3, 150)
	require.NoError(t, d.Find(b, NewParameter(LeftToRight)))
	require.Len(t, d.PositiveEdge(), 3)
	require.Empty(t, d.NegativeEdge())

	// Rectangle starting at row 0 has no top edge.
	b = rectangleImage(t, 20, 10, 5, 0, 5, 4, 150)
	require.NoError(t, d.Find(b, NewParameter(TopToBottom)))
	require.Empty(t, d.PositiveEdge())
	require.Len(t, d.NegativeEdge(), 5)
	requireAllNear(t, d.NegativeEdge(), yOf[float64], 4)
}

func TestThreshold(t *testing.T) {
	b := rectangleImage(t, 30, 10, 10, 2, 10, 4, 40)

	var d Detector[float64]
	require.NoError(t, d.Find(b, NewParameter(LeftToRight)))
	require.Empty(t, d.PositiveEdge(), "intensity 40 is below the default threshold")

	require.NoError(t, d.Find(b, Parameter{Direction: LeftToRight, Threshold: 40}))
	require.Len(t, d.PositiveEdge(), 4)
	require.Len(t, d.NegativeEdge(), 4)
}

func TestPolicyOnMultipleCrossings(t *testing.T) {
	// Two rectangles on the same rows: 0..0 [5,9) 0..0 [14,18) 0..0
	b := pixel.New(25, 4, pixel.GrayScale)
	require.NoError(t, b.FillROI(5, 1, 4, 2, 255))
	require.NoError(t, b.FillROI(14, 1, 4, 2, 255))

	var d Detector[float64]
	require.NoError(t, d.Find(b, NewParameter(LeftToRight)))
	require.Equal(t, []Point[float64]{{X: 5, Y: 1}, {X: 5, Y: 2}}, d.PositiveEdge())
	require.Equal(t, []Point[float64]{{X: 9, Y: 1}, {X: 9, Y: 2}}, d.NegativeEdge())

	require.NoError(t, d.Find(b, Parameter{Direction: LeftToRight, Policy: AllEdges}))
	require.Equal(t, []Point[float64]{{X: 5, Y: 1}, {X: 14, Y: 1}, {X: 5, Y: 2}, {X: 14, Y: 2}}, d.PositiveEdge())
	require.Equal(t, []Point[float64]{{X: 9, Y: 1}, {X: 18, Y: 1}, {X: 9, Y: 2}, {X: 18, Y: 2}}, d.NegativeEdge())
}

func TestFirstEdgeAtRimIsNotReplaced(t *testing.T) {
	// 0 [1,4) 0..0 [10,15) 0..0: the first rise sits on the rim
	b := pixel.New(30, 1, pixel.GrayScale)
	require.NoError(t, b.FillROI(1, 0, 3, 1, 200))
	require.NoError(t, b.FillROI(10, 0, 5, 1, 200))

	var d Detector[float64]
	require.NoError(t, d.Find(b, NewParameter(LeftToRight)))
	require.Empty(t, d.PositiveEdge())
	require.Equal(t, []Point[float64]{{X: 4, Y: 0}}, d.NegativeEdge())

	require.NoError(t, d.Find(b, Parameter{Direction: LeftToRight, Policy: AllEdges}))
	require.Equal(t, []Point[float64]{{X: 10, Y: 0}}, d.PositiveEdge())
	require.Equal(t, []Point[float64]{{X: 4, Y: 0}, {X: 15, Y: 0}}, d.NegativeEdge())

	// A falling edge on the far rim is dropped while the rise is kept
	b = pixel.New(30, 1, pixel.GrayScale)
	require.NoError(t, b.FillROI(5, 0, 24, 1, 200))
	require.NoError(t, d.Find(b, NewParameter(LeftToRight)))
	require.Equal(t, []Point[float64]{{X: 5, Y: 0}}, d.PositiveEdge())
	require.Empty(t, d.NegativeEdge())
}

func TestScanLineFirstEdgeClaimsRimTransition(t *testing.T) {
	line := []byte{0, 0, 0, 200, 200, 0, 0, 200, 0, 0}
	rising, falling := scanLine(line, 64, FirstEdge)
	require.Equal(t, []int{3}, rising)
	require.Equal(t, []int{5}, falling)

	// Foreground from the first sample claims the rising slot
	line = []byte{200, 200, 200, 0, 0, 200, 200, 0, 0}
	rising, falling = scanLine(line, 64, FirstEdge)
	require.Empty(t, rising)
	require.Equal(t, []int{3}, falling)
}

func TestIdempotentAndWorkerIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	b := pixel.NewWithAlignment(97, 61, pixel.GrayScale, 16)
	for i := 0; i < 20; i++ {
		x, y := uint32(rng.Intn(90)), uint32(rng.Intn(55))
		require.NoError(t, b.FillROI(x, y, uint32(1+rng.Intn(7)), uint32(1+rng.Intn(6)), uint8(rng.Intn(256))))
	}

	for _, dir := range []profile.Direction{LeftToRight, TopToBottom} {
		param := Parameter{Direction: dir, Policy: AllEdges}

		serial := Detector[float64]{Workers: 1}
		require.NoError(t, serial.Find(b, param))

		parallel := Detector[float64]{Workers: 8}
		require.NoError(t, parallel.Find(b, param))
		require.Equal(t, serial.PositiveEdge(), parallel.PositiveEdge())
		require.Equal(t, serial.NegativeEdge(), parallel.NegativeEdge())

		first := slices.Clone(parallel.PositiveEdge())
		require.NoError(t, parallel.Find(b, param))
		require.Equal(t, first, parallel.PositiveEdge())
	}
}

func TestPrecisionsAgree(t *testing.T) {
	b := rectangleImage(t, 64, 48, 7, 9, 30, 20, 180)

	for _, dir := range []profile.Direction{LeftToRight, TopToBottom} {
		var d32 Detector[float32]
		var d64 Detector[float64]
		require.NoError(t, d32.Find(b, NewParameter(dir)))
		require.NoError(t, d64.Find(b, NewParameter(dir)))

		require.Len(t, d32.PositiveEdge(), len(d64.PositiveEdge()))
		for i, p := range d64.PositiveEdge() {
			require.InDelta(t, p.X, float64(d32.PositiveEdge()[i].X), 1e-4)
			require.InDelta(t, p.Y, float64(d32.PositiveEdge()[i].Y), 1e-4)
		}
	}
}

// TestRandomRectangles mirrors the property that every rectangle boundary
// strictly inside the image is found on each of its scanlines within one
// pixel, and boundaries on the rim are never reported.
func TestRandomRectangles(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const width, height = 64, 48

	for run := 0; run < 200; run++ {
		w := uint32(1 + rng.Intn(width))
		h := uint32(1 + rng.Intn(height))
		x := uint32(rng.Intn(width - int(w) + 1))
		y := uint32(rng.Intn(height - int(h) + 1))
		value := uint8(64 + rng.Intn(192))
		b := rectangleImage(t, width, height, x, y, w, h, value)

		var d Detector[float64]
		require.NoError(t, d.Find(b, NewParameter(LeftToRight)))
		checkBoundaries(t, d.PositiveEdge(), xOf[float64], x, h, width)
		checkBoundaries(t, d.NegativeEdge(), xOf[float64], x+w, h, width)

		require.NoError(t, d.Find(b, NewParameter(TopToBottom)))
		checkBoundaries(t, d.PositiveEdge(), yOf[float64], y, w, height)
		checkBoundaries(t, d.NegativeEdge(), yOf[float64], y+h, w, height)
	}
}

func checkBoundaries(t *testing.T, points []Point[float64], axis func(Point[float64]) float64, boundary, count, size uint32) {
	t.Helper()
	if boundary > 1 && boundary+1 < size {
		require.Len(t, points, int(count))
		requireAllNear(t, points, axis, float64(boundary))
	} else {
		require.Empty(t, points)
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("ALL")
	require.NoError(t, err)
	require.Equal(t, AllEdges, p)
	require.Equal(t, "first", FirstEdge.String())

	_, err = ParsePolicy("last")
	require.ErrorIs(t, err, pixel.ErrInvalidParameter)
}
