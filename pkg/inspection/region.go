package inspection

import (
	"pixeledge/internal/models"
	"pixeledge/pkg/edge"
	"pixeledge/pkg/ops"
	"pixeledge/pkg/pixel"
	"pixeledge/pkg/profile"
)

// Options controls the detection inside a single region.
type Options struct {
	Threshold     uint8
	AutoThreshold bool
	Policy        edge.Policy
	// Workers is passed to the edge detector
	Workers int
}

// InspectRegion detects the edges of a resolved region of a gray-scale
// buffer and fits a line through each polarity.
func InspectRegion(gray *pixel.Buffer, region models.Region, opts Options) (models.RegionReport, error) {
	dir, err := profile.ParseDirection(region.Direction)
	if err != nil {
		return models.RegionReport{}, err
	}

	threshold := opts.Threshold
	if opts.AutoThreshold {
		histogram, err := ops.HistogramROI(gray, region.X, region.Y, region.Width, region.Height)
		if err != nil {
			return models.RegionReport{}, err
		}
		otsu, err := ops.OtsuThreshold(histogram)
		if err != nil {
			return models.RegionReport{}, err
		}
		// A uniform region has no separating level
		if otsu > 0 {
			threshold = otsu
		}
	}
	if threshold == 0 {
		threshold = edge.DefaultThreshold
	}

	detector := edge.Detector[float64]{Workers: opts.Workers}
	param := edge.Parameter{Direction: dir, Threshold: threshold, Policy: opts.Policy}
	if err := detector.FindROI(gray, region.X, region.Y, region.Width, region.Height, param); err != nil {
		return models.RegionReport{}, err
	}

	region.Direction = dir.String()
	return models.RegionReport{
		Region:    region,
		Threshold: threshold,
		Positive:  edgeSet(detector.PositiveEdge(), dir),
		Negative:  edgeSet(detector.NegativeEdge(), dir),
	}, nil
}

func edgeSet(points []edge.Point[float64], dir profile.Direction) models.EdgeSet {
	set := models.EdgeSet{
		Count:  len(points),
		Points: make([]models.Point, len(points)),
	}
	for i, p := range points {
		set.Points[i] = models.Point{X: p.X, Y: p.Y}
	}

	// Points sharing one scanline cannot be fitted; the set is still reported
	if line, err := edge.FitLine(points, dir); err == nil {
		set.Line = &models.LineFit{
			Slope:     line.Slope,
			Intercept: line.Intercept,
			Mean:      line.Mean,
			Residual:  line.Residual,
		}
	}
	return set
}
