// Package batch drives one conversion per input file and aggregates the
// per-file outcomes. Conversions share nothing: each builds and owns its own
// scene graph, so a fatal error in one file can never corrupt another.
package batch

import (
	"bytes"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/Schizogonia/mixamo-ue-fix/internal/engine"
	"github.com/Schizogonia/mixamo-ue-fix/internal/preview"
	"github.com/Schizogonia/mixamo-ue-fix/internal/report"
	"github.com/Schizogonia/mixamo-ue-fix/internal/retarget"
)

// Config holds the shared, read-only settings for a batch run.
type Config struct {
	OutputDir  string
	Mode       retarget.Mode
	SampleRate float64
	Preview    bool
	Workers    int
}

// Result holds the outcome of converting one file.
type Result struct {
	Input    string
	Output   string
	Success  bool
	Error    string
	Warnings []string
	Log      string
}

// Run converts all files using a worker pool. Results are indexed like the
// input slice.
func Run(cfg Config, files []string) []Result {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	results := make([]Result, len(files))
	fileChan := make(chan int, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range fileChan {
				results[idx] = Convert(cfg, files[idx])
			}
		}()
	}

	for i := range files {
		fileChan <- i
	}
	close(fileChan)
	wg.Wait()

	return results
}

// Convert runs the full pipeline for one file: import, mode-specific fix-up,
// hierarchy finalization (mixamo only), export. Any error, including a
// panic, is confined to this file's Result.
func Convert(cfg Config, path string) (res Result) {
	var buf bytes.Buffer
	log := report.New(&buf)

	res.Input = path
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic: %v\n%s", r, debug.Stack())
			res.Success = false
			res.Error = fmt.Sprintf("panic: %v", r)
		}
		res.Warnings = log.Warnings()
		res.Log = buf.String()
	}()

	fail := func(err error) Result {
		log.Errorf("%v", err)
		res.Error = err.Error()
		return res
	}

	log.Infof("processing mode: %s", cfg.Mode)

	f, err := engine.Import(path, engine.Options{SampleRate: cfg.SampleRate}, log)
	if err != nil {
		return fail(err)
	}

	if err := cfg.Mode.Strategy().Apply(f.Graph, log); err != nil {
		return fail(err)
	}

	var selection []int
	if cfg.Mode == retarget.ModeMixamo {
		selection = retarget.Finalize(f.Graph, log)
	}

	out := OutputPath(cfg.OutputDir, path)
	if err := engine.Export(f, selection, out, log); err != nil {
		return fail(err)
	}

	if cfg.Preview {
		pv := strings.TrimSuffix(out, filepath.Ext(out)) + "_preview.webp"
		if err := preview.Save(f.Graph, f.Graph.SceneStart, 256, pv); err != nil {
			log.Warnf("preview render failed: %v", err)
		} else {
			log.Infof("preview written to %s", pv)
		}
	}

	res.Output = out
	res.Success = true
	log.Infof("all steps completed")
	return res
}

// OutputPath computes {outputDir}/{inputBaseName}_Fixed{ext}. An empty
// output directory places the result next to the input.
func OutputPath(outputDir, input string) string {
	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	return filepath.Join(dir, strings.TrimSuffix(base, ext)+"_Fixed"+ext)
}
