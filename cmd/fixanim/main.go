package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Schizogonia/mixamo-ue-fix/internal/batch"
	"github.com/Schizogonia/mixamo-ue-fix/internal/config"
	"github.com/Schizogonia/mixamo-ue-fix/internal/retarget"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	outputDir := flag.String("output", "", "Output directory (default: next to each input)")
	modeFlag := flag.String("mode", "", "Skeleton mode: mixamo or ue5_skm (default: mixamo)")
	fps := flag.Float64("fps", 0, "Sample rate for the frame grid (default: 30)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	previewFlag := flag.Bool("preview", false, "Write a stick-figure preview next to each output")
	verbose := flag.Bool("v", false, "Print the full log stream for successful files too")

	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: fixanim [flags] input.glb [input2.glb ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		OutputDir:  *outputDir,
		Mode:       *modeFlag,
		SampleRate: *fps,
		Preview:    *previewFlag,
		Workers:    *workers,
	})

	mode, err := retarget.ParseMode(cfg.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: output directory: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Animation Root-Motion Fixer (mode: %s)\n", mode)
	fmt.Printf("Files: %d, Workers: %d\n", len(files), cfg.Workers)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		OutputDir:  cfg.OutputDir,
		Mode:       mode,
		SampleRate: cfg.SampleRate,
		Preview:    cfg.Preview,
		Workers:    cfg.Workers,
	}, files)

	success, failed := 0, 0
	for _, r := range results {
		if r.Success {
			success++
			// Filtered stream on success: warnings plus the outcome.
			if *verbose {
				fmt.Print(r.Log)
			} else {
				for _, w := range r.Warnings {
					fmt.Printf("[Warning] %s: %s\n", r.Input, w)
				}
			}
			fmt.Printf("OK   %s -> %s\n", r.Input, r.Output)
		} else {
			failed++
			// Full stream on failure.
			fmt.Print(r.Log)
			fmt.Printf("FAIL %s: %s\n", r.Input, r.Error)
		}
	}

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Converted: %d/%d in %.1fs\n", success, len(files), elapsed.Seconds())

	if cfg.OutputDir != "" {
		manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
		if err := batch.WriteManifest(manifestPath, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Printf("Manifest: %s\n", manifestPath)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
