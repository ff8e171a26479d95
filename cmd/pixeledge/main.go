package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"pixeledge/internal/models"
	"pixeledge/pkg/config"
	"pixeledge/pkg/edge"
	"pixeledge/pkg/inspection"
	"pixeledge/pkg/server"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "", "YAML configuration file")
	envPath := flag.String("env", ".env", "Optional file with PIXELEDGE_* variables")
	initConfig := flag.String("init-config", "", "Write a default configuration file to this path and exit")
	inputPath := flag.String("input", "", "Image to inspect (bmp, png, jpeg, gif, tiff)")

	var opts options
	flag.StringVar(&opts.roi, "roi", "", "Region to inspect as x,y,width,height (default: configured regions or whole image)")
	flag.StringVar(&opts.direction, "direction", "horizontal", "Scan direction for -roi: horizontal or vertical")
	flag.IntVar(&opts.threshold, "threshold", -1, "Detection threshold 1-255, 0 for automatic (default: from config)")
	flag.StringVar(&opts.policy, "policy", "", "Edges per scanline: first or all (default: from config)")
	flag.StringVar(&opts.overlayPath, "overlay", "", "Save an image with the detected edges drawn on it")
	flag.StringVar(&opts.reportPath, "report", "", "Save the YAML inspection report")
	flag.IntVar(&opts.smooth, "smooth", -1, "Median filter radius applied before detection, 0 disables (default: from config)")
	flag.IntVar(&opts.workers, "workers", -1, "Number of regions processed in parallel (default: from config)")
	flag.StringVar(&opts.serve, "serve", "", "Start the HTTP API on this address instead of inspecting a file")
	flag.BoolVar(&opts.quiet, "quiet", false, "Disable progress output")
	flag.Parse()

	if *initConfig != "" {
		if err := config.CreateDefaultConfigFile(*initConfig); err != nil {
			log.Fatalf("Failed to create config file: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *initConfig)
		return
	}

	if err := config.LoadEnvFile(*envPath); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}

	// Command line flags take precedence over file and environment
	if err := opts.apply(cfg); err != nil {
		log.Fatalf("Invalid flags: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if opts.serve != "" {
		log.Fatal(server.NewServer(cfg).ListenAndServe())
	}

	// Validate inputs
	if *inputPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	edgePolicy, _ := edge.ParsePolicy(cfg.Detection.Policy)
	params := &inspection.Params{
		InputPath:     *inputPath,
		Regions:       cfg.Regions,
		Threshold:     cfg.Detection.Threshold,
		AutoThreshold: cfg.Detection.AutoThreshold,
		Policy:        edgePolicy,
		Smooth:        cfg.Detection.Smooth,
		Workers:       cfg.Detection.Workers,
		OverlayPath:   cfg.Output.OverlayPath,
		ReportPath:    cfg.Output.ReportPath,
		Verbose:       cfg.Output.Verbose,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	inspector := inspection.NewInspector(params)
	if err := inspector.Process(ctx); err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	report := inspector.Report()
	fmt.Printf("\nInspected %s (%dx%d) in %.3f seconds\n",
		*inputPath, report.Width, report.Height, report.Duration.Seconds())
	for _, rr := range report.Regions {
		r := rr.Region
		fmt.Printf("- %s [%d,%d %dx%d %s, threshold %d]: %d positive, %d negative\n",
			r.Name, r.X, r.Y, r.Width, r.Height, r.Direction, rr.Threshold,
			rr.Positive.Count, rr.Negative.Count)
		printLine("  positive", rr.Positive.Line)
		printLine("  negative", rr.Negative.Line)
	}
	if params.OverlayPath != "" {
		fmt.Printf("Overlay saved to: %s\n", params.OverlayPath)
	}
	if params.ReportPath != "" {
		fmt.Printf("Report saved to: %s\n", params.ReportPath)
	}
}

func printLine(label string, line *models.LineFit) {
	if line == nil {
		return
	}
	fmt.Printf("%s line: mean %.2f, slope %.4f, residual %.3f\n",
		label, line.Mean, line.Slope, line.Residual)
}
