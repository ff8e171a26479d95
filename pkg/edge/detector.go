// Package edge locates intensity step edges with sub-pixel coordinates.
//
// Every scanline of a region is walked in the scan direction by a two-state
// machine (below/above the detection threshold). A rising transition is a
// positive edge, a falling one a negative edge. The reported position is the
// boundary shared by the two pixels forming the transition, which lies
// within one pixel of the true step location.
//
// Usage:
//
//	var d edge.Detector[float64]
//	if err := d.Find(buf, edge.NewParameter(edge.LeftToRight)); err != nil {
//	    return err
//	}
//	for _, p := range d.PositiveEdge() {
//	    ...
//	}
package edge

import (
	"runtime"
	"sync"

	"golang.org/x/exp/constraints"

	"pixeledge/pkg/pixel"
	"pixeledge/pkg/profile"
)

// Detector finds positive and negative edges in gray-scale buffers and keeps
// the points of its most recent successful call.
//
// A Detector is not safe for concurrent use; the scan itself is spread over
// Workers goroutines.
type Detector[T constraints.Float] struct {
	// Workers bounds the number of goroutines scanning in parallel.
	// Zero or less uses GOMAXPROCS.
	Workers int

	positive []Point[T]
	negative []Point[T]
}

// Find scans the whole buffer.
func (d *Detector[T]) Find(buf *pixel.Buffer, param Parameter) error {
	if err := pixel.Validate(buf); err != nil {
		return err
	}
	return d.FindROI(buf, 0, 0, buf.Width(), buf.Height(), param)
}

// FindROI scans the region (x, y, width, height) of buf. On error the
// results of the previous call are kept.
func (d *Detector[T]) FindROI(buf *pixel.Buffer, x, y, width, height uint32, param Parameter) error {
	if err := param.validate(); err != nil {
		return err
	}
	prof, err := profile.New(buf, x, y, width, height, param.Direction)
	if err != nil {
		return err
	}

	lines := scanProfile(prof, param.threshold(), param.Policy, d.workers())
	d.positive, d.negative = assemble[T](prof, lines)
	return nil
}

// PositiveEdge returns the background-to-foreground transitions ordered by
// scanline index.
func (d *Detector[T]) PositiveEdge() []Point[T] { return d.positive }

// NegativeEdge returns the foreground-to-background transitions ordered by
// scanline index.
func (d *Detector[T]) NegativeEdge() []Point[T] { return d.negative }

func (d *Detector[T]) workers() int {
	if d.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return d.Workers
}

// lineEdges holds the transition indices found on one scanline.
type lineEdges struct {
	rising  []int
	falling []int
}

// scanProfile scans every scanline of prof. Scanlines are split into
// contiguous chunks, one goroutine per chunk; each goroutine writes only the
// slots of its own chunk.
func scanProfile(prof *profile.Profile, threshold uint8, policy Policy, workers int) []lineEdges {
	n := prof.Len()
	result := make([]lineEdges, n)

	scanRange := func(start, end int) {
		var scratch []byte
		for i := start; i < end; i++ {
			line := prof.Line(i, scratch)
			if prof.Direction() == profile.TopToBottom {
				scratch = line
			}
			result[i].rising, result[i].falling = scanLine(line, threshold, policy)
		}
	}

	workers = min(workers, n)
	if workers <= 1 {
		scanRange(0, n)
		return result
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func() {
			defer wg.Done()
			scanRange(start, end)
		}()
	}
	wg.Wait()

	return result
}

type scanState int

const (
	belowThreshold scanState = iota
	aboveThreshold
)

// scanLine returns the sample indices i at which the state changes between
// samples i-1 and i. A transition is kept only when a further sample exists
// on each side of the pair, i.e. 2 <= i < len(line)-1.
//
// Under FirstEdge the first transition of each kind claims its slot even when
// it is dropped by the margin rule, so a later transition never stands in for
// it.
func scanLine(line []byte, threshold uint8, policy Policy) (rising, falling []int) {
	var risingSeen, fallingSeen bool
	state := belowThreshold
	for i, v := range line {
		next := belowThreshold
		if v >= threshold {
			next = aboveThreshold
		}
		if next == state {
			continue
		}
		state = next

		if policy == FirstEdge {
			if next == aboveThreshold {
				if risingSeen {
					continue
				}
				risingSeen = true
			} else {
				if fallingSeen {
					continue
				}
				fallingSeen = true
			}
		}

		if i >= 2 && i+1 < len(line) {
			if next == aboveThreshold {
				rising = append(rising, i)
			} else {
				falling = append(falling, i)
			}
		}

		if risingSeen && fallingSeen {
			break
		}
	}
	return rising, falling
}

// assemble maps per-scanline transition indices to buffer coordinates,
// keeping scanline order.
func assemble[T constraints.Float](prof *profile.Profile, lines []lineEdges) (positive, negative []Point[T]) {
	origin := prof.Origin()
	horizontal := prof.Direction() == profile.LeftToRight

	toPoint := func(scanline int, i int) Point[T] {
		along := T(origin) + T(i)
		across := T(prof.Index(scanline))
		if horizontal {
			return Point[T]{X: along, Y: across}
		}
		return Point[T]{X: across, Y: along}
	}

	positive = make([]Point[T], 0)
	negative = make([]Point[T], 0)
	for s, line := range lines {
		for _, i := range line.rising {
			positive = append(positive, toPoint(s, i))
		}
		for _, i := range line.falling {
			negative = append(negative, toPoint(s, i))
		}
	}
	return positive, negative
}
