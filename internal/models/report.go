package models

import "time"

// Point is an edge position in image coordinates.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// LineFit summarises a straight line fitted through edge points.
// Position = Intercept + Slope*scanline.
type LineFit struct {
	Slope     float64 `yaml:"slope" json:"slope"`
	Intercept float64 `yaml:"intercept" json:"intercept"`
	Mean      float64 `yaml:"mean" json:"mean"`
	Residual  float64 `yaml:"residual" json:"residual"`
}

// EdgeSet holds the edges of one polarity found in a region.
type EdgeSet struct {
	Count  int      `yaml:"count" json:"count"`
	Points []Point  `yaml:"points" json:"points"`
	Line   *LineFit `yaml:"line,omitempty" json:"line,omitempty"`
}

// RegionReport is the outcome of inspecting one region.
type RegionReport struct {
	Region    Region  `yaml:"region" json:"region"`
	Threshold uint8   `yaml:"threshold" json:"threshold"`
	Positive  EdgeSet `yaml:"positive" json:"positive"`
	Negative  EdgeSet `yaml:"negative" json:"negative"`
}

// Report is the outcome of inspecting one image.
type Report struct {
	Input    string         `yaml:"input" json:"input"`
	Width    uint32         `yaml:"width" json:"width"`
	Height   uint32         `yaml:"height" json:"height"`
	Regions  []RegionReport `yaml:"regions" json:"regions"`
	Duration time.Duration  `yaml:"duration" json:"duration"`
}

// TotalEdges returns the number of edge points over all regions.
func (r *Report) TotalEdges() int {
	total := 0
	for _, rr := range r.Regions {
		total += rr.Positive.Count + rr.Negative.Count
	}
	return total
}
