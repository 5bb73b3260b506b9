package batch

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"bvhgav/internal/bvh"
	"bvhgav/internal/gav"
	"bvhgav/internal/keyframe"
	"bvhgav/internal/skeleton"
)

// Config holds the settings of a batch run.
type Config struct {
	OutputExt    string
	Workers      int
	JointWorkers int
	Encode       gav.EncodeOptions

	// Progress receives a line every two seconds while files are converted. Nil disables it.
	Progress io.Writer
}

// Result holds the outcome of converting one file.
type Result struct {
	Source  string
	Output  string
	Joints  int
	Frames  int
	Success bool
	Error   string
}

// Run converts all sources using a worker pool. Results are in source order.
func Run(cfg Config, sources []string) []Result {
	total := len(sources)
	results := make([]Result, total)
	if total == 0 {
		return results
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	var reporter sync.WaitGroup
	if cfg.Progress != nil {
		reporter.Add(1)
		go func() {
			defer reporter.Done()
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f files/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = ConvertFile(cfg, sources[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range sources {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)
	reporter.Wait()

	return results
}

// ConvertFile converts one BVH file to a tensor file next to it.
func ConvertFile(cfg Config, source string) Result {
	output := gav.OutputPath(source, cfg.OutputExt)
	result := Result{Source: source, Output: output}

	doc, err := bvh.Load(source)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	tensor, err := EncodeDocument(doc, cfg)
	if err != nil {
		result.Error = fmt.Sprintf("%s: %v", source, err)
		return result
	}
	if err := gav.Save(output, tensor); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Joints = tensor.Joints()
	result.Frames = tensor.Frames()
	result.Success = true
	return result
}

// EncodeDocument runs the hierarchy, keyframe and tensor stages on a parsed file.
func EncodeDocument(doc *bvh.Document, cfg Config) (*gav.Tensor, error) {
	h, err := skeleton.Build(doc.Joints)
	if err != nil {
		return nil, err
	}
	kf, err := keyframe.Build(doc, h, keyframe.Options{Workers: cfg.JointWorkers})
	if err != nil {
		return nil, err
	}
	return gav.Encode(kf, cfg.Encode)
}

// Summary counts successful and failed results.
func Summary(results []Result) (converted, failed int) {
	for _, r := range results {
		if r.Success {
			converted++
		} else {
			failed++
		}
	}
	return converted, failed
}
