package main

import (
	"fmt"
	"strconv"
	"strings"

	"pixeledge/internal/models"
	"pixeledge/pkg/config"
)

// options holds the command line values that override the configuration.
// Negative numbers and empty strings mean "not given".
type options struct {
	roi         string
	direction   string
	threshold   int
	policy      string
	overlayPath string
	reportPath  string
	smooth      int
	workers     int
	serve       string
	quiet       bool
}

// apply overrides cfg with the values given on the command line.
func (o options) apply(cfg *config.Config) error {
	if o.threshold == 0 {
		cfg.Detection.AutoThreshold = true
	} else if o.threshold > 0 {
		if o.threshold > 255 {
			return fmt.Errorf("threshold must be at most 255, got %d", o.threshold)
		}
		cfg.Detection.Threshold = uint8(o.threshold)
		cfg.Detection.AutoThreshold = false
	}
	if o.policy != "" {
		cfg.Detection.Policy = o.policy
	}
	if o.smooth >= 0 {
		cfg.Detection.Smooth = o.smooth
	}
	if o.workers >= 0 {
		cfg.Detection.Workers = o.workers
	}
	if o.overlayPath != "" {
		cfg.Output.OverlayPath = o.overlayPath
	}
	if o.reportPath != "" {
		cfg.Output.ReportPath = o.reportPath
	}
	if o.quiet {
		cfg.Output.Verbose = false
	}
	if o.serve != "" {
		cfg.Server.Addr = o.serve
	}
	if o.roi != "" {
		region, err := parseROI(o.roi, o.direction)
		if err != nil {
			return fmt.Errorf("invalid -roi: %w", err)
		}
		cfg.Regions = []models.Region{region}
	}
	return nil
}

// parseROI reads "x,y,width,height".
func parseROI(s, direction string) (models.Region, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.Region{}, fmt.Errorf("expected x,y,width,height, got %q", s)
	}
	var values [4]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return models.Region{}, fmt.Errorf("component %d of %q: %w", i, s, err)
		}
		values[i] = uint32(n)
	}
	return models.Region{
		Name:      "roi",
		X:         values[0],
		Y:         values[1],
		Width:     values[2],
		Height:    values[3],
		Direction: direction,
	}, nil
}
