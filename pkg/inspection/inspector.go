// Package inspection runs edge detection over the configured regions of an
// image and collects the results into a report.
//
// The pipeline consists of several steps:
// 1. Loading the input image
// 2. Converting it to gray-scale
// 3. Resolving and validating the regions
// 4. Detecting edges in every region in parallel
// 5. Fitting a line through the edges of each polarity
// 6. Saving the overlay image and the YAML report
package inspection

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"pixeledge/internal/models"
	"pixeledge/pkg/edge"
	"pixeledge/pkg/imageio"
	"pixeledge/pkg/ops"
	"pixeledge/pkg/pixel"
	"pixeledge/pkg/profile"
	"pixeledge/pkg/visualization"
)

// Params holds the inspection parameters.
type Params struct {
	// InputPath is the image to inspect. Process loads it; Inspect ignores it.
	InputPath string

	// Regions lists the areas to scan. When empty the whole image is
	// scanned left to right and top to bottom.
	Regions []models.Region

	// Threshold is the detection level; zero selects edge.DefaultThreshold
	Threshold uint8

	// AutoThreshold derives the level of each region from its histogram
	AutoThreshold bool

	Policy edge.Policy

	// Smooth is the median filter radius applied before detection
	Smooth int

	// Workers bounds the number of regions processed at the same time.
	// Zero uses all available cores.
	Workers int

	// OverlayPath, when set, receives the image with the edges drawn on it
	OverlayPath string

	// ReportPath, when set, receives the YAML report
	ReportPath string

	// Verbose enables progress logging
	Verbose bool
}

// Inspector runs the inspection pipeline and keeps the last report.
type Inspector struct {
	params *Params

	// image is the gray-scale image of the last run
	image *pixel.Buffer

	report models.Report
}

// NewInspector creates an inspector with the provided parameters.
func NewInspector(params *Params) *Inspector {
	return &Inspector{params: params}
}

// Process loads the input image and inspects it.
func (in *Inspector) Process(ctx context.Context) error {
	in.logf("Step 1: Loading input image %s...", in.params.InputPath)
	buf, err := imageio.Load(in.params.InputPath)
	if err != nil {
		return fmt.Errorf("failed to load input: %w", err)
	}
	return in.inspect(ctx, in.params.InputPath, buf)
}

// Inspect runs the pipeline on an image that is already in memory.
func (in *Inspector) Inspect(ctx context.Context, buf *pixel.Buffer) error {
	return in.inspect(ctx, "", buf)
}

// Report returns the report of the last successful run.
func (in *Inspector) Report() models.Report {
	return in.report
}

// Image returns the gray-scale image of the last successful run.
func (in *Inspector) Image() *pixel.Buffer {
	return in.image
}

func (in *Inspector) inspect(ctx context.Context, name string, buf *pixel.Buffer) error {
	start := time.Now()

	in.logf("Step 2: Converting to gray-scale...")
	gray, err := ops.ConvertToGrayScale(buf)
	if err != nil {
		return fmt.Errorf("failed to convert input: %w", err)
	}
	if in.params.Smooth > 0 {
		in.logf("  Applying median filter (radius %d)...", in.params.Smooth)
		if gray, err = ops.MedianFilter(gray, in.params.Smooth); err != nil {
			return err
		}
	}

	in.logf("Step 3: Resolving regions...")
	regions := Regions(in.params.Regions, gray.Width(), gray.Height())

	in.logf("Step 4: Detecting edges in %d regions...", len(regions))
	results, err := in.detectAll(ctx, gray, regions)
	if err != nil {
		return err
	}

	report := models.Report{
		Input:    name,
		Width:    gray.Width(),
		Height:   gray.Height(),
		Regions:  results,
		Duration: time.Since(start),
	}

	if err := in.writeOutputs(gray, &report); err != nil {
		return err
	}

	in.image = gray
	in.report = report
	in.logf("Found %d edge points in %.3f seconds", report.TotalEdges(), report.Duration.Seconds())
	return nil
}

// detectAll processes the regions concurrently. Results keep the order of
// regions.
func (in *Inspector) detectAll(ctx context.Context, gray *pixel.Buffer, regions []models.Region) ([]models.RegionReport, error) {
	workers := in.params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Scanline parallelism is only used when there is a single region
	scanWorkers := 1
	if len(regions) == 1 {
		scanWorkers = workers
	}

	results := make([]models.RegionReport, len(regions))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, region := range regions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			opts := Options{
				Threshold:     in.params.Threshold,
				AutoThreshold: in.params.AutoThreshold,
				Policy:        in.params.Policy,
				Workers:       scanWorkers,
			}
			rr, err := InspectRegion(gray, region, opts)
			if err != nil {
				return fmt.Errorf("region %q: %w", region.Name, err)
			}
			in.logf("  %s: %d positive, %d negative (threshold %d)",
				region.Name, rr.Positive.Count, rr.Negative.Count, rr.Threshold)
			results[i] = rr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeOutputs saves the overlay and the report. Both are first written to
// temporary files next to their targets and renamed once both succeeded, so
// a failed run leaves the previous outputs in place.
func (in *Inspector) writeOutputs(gray *pixel.Buffer, report *models.Report) error {
	var staged []stagedFile
	defer func() {
		for _, f := range staged {
			os.Remove(f.tmp)
		}
	}()

	if in.params.OverlayPath != "" {
		in.logf("Step 5: Saving overlay to %s...", in.params.OverlayPath)
		f, err := stage(in.params.OverlayPath, func(path string) error {
			viewer, err := visualization.Overlay(gray, report)
			if err != nil {
				return fmt.Errorf("failed to draw overlay: %w", err)
			}
			if err := viewer.Save(path); err != nil {
				return fmt.Errorf("failed to save overlay: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		staged = append(staged, f)
	}

	if in.params.ReportPath != "" {
		in.logf("Step 6: Writing report to %s...", in.params.ReportPath)
		f, err := stage(in.params.ReportPath, func(path string) error {
			return SaveReport(report, path)
		})
		if err != nil {
			return err
		}
		staged = append(staged, f)
	}

	for len(staged) > 0 {
		f := staged[0]
		if err := os.Rename(f.tmp, f.target); err != nil {
			return fmt.Errorf("error moving %s into place: %w", f.target, err)
		}
		staged = staged[1:]
	}
	return nil
}

// stagedFile is an output written to tmp that still has to be renamed to
// target.
type stagedFile struct {
	tmp    string
	target string
}

// stage runs write on a temporary file in the directory of target. The
// temporary name keeps the extension of target so that encoders picked by
// extension still apply.
func stage(target string, write func(path string) error) (stagedFile, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return stagedFile{}, fmt.Errorf("error creating output directory: %w", err)
	}

	ext := filepath.Ext(target)
	base := strings.TrimSuffix(filepath.Base(target), ext)
	f, err := os.CreateTemp(dir, "."+base+"-*"+ext)
	if err != nil {
		return stagedFile{}, fmt.Errorf("error creating temporary file: %w", err)
	}
	tmp := f.Name()
	f.Close()

	if err := write(tmp); err != nil {
		os.Remove(tmp)
		return stagedFile{}, err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return stagedFile{}, err
	}
	return stagedFile{tmp: tmp, target: target}, nil
}

func (in *Inspector) logf(format string, args ...any) {
	if in.params.Verbose {
		log.Printf(format, args...)
	}
}

// Regions resolves the configured regions against the image size and names
// the unnamed ones. An empty list yields two full-image regions, one per
// scan direction.
func Regions(configured []models.Region, width, height uint32) []models.Region {
	if len(configured) == 0 {
		return []models.Region{
			{Name: "full-horizontal", Width: width, Height: height, Direction: profile.LeftToRight.String()},
			{Name: "full-vertical", Width: width, Height: height, Direction: profile.TopToBottom.String()},
		}
	}

	out := make([]models.Region, len(configured))
	for i, r := range configured {
		r = r.Resolve(width, height)
		if r.Name == "" {
			r.Name = fmt.Sprintf("region-%d", i)
		}
		out[i] = r
	}
	return out
}

// SaveReport writes report as YAML, creating the parent directory.
func SaveReport(report *models.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating report directory: %w", err)
	}
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("error marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	return nil
}

// LoadReport reads a report written by SaveReport.
func LoadReport(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading report: %w", err)
	}
	report := &models.Report{}
	if err := yaml.Unmarshal(data, report); err != nil {
		return nil, fmt.Errorf("error parsing report: %w", err)
	}
	return report, nil
}
