// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/occurrence-etl/pkg/types"
)

// Result pairs one pipeline's summary with its error.
type Result struct {
	Summary types.RunSummary
	Err     error
}

// BatchResult holds the outcome of running several pipelines.
type BatchResult struct {
	Results []Result
}

// Succeeded returns the number of runs that reached done.
func (r BatchResult) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the number of runs that ended in failed.
func (r BatchResult) Failed() int {
	return len(r.Results) - r.Succeeded()
}

// RunAll runs independent pipelines with at most jobs in flight. One
// failure does not stop the others. Pipelines writing the same destination
// are rejected up front since the loader replaces files without locking.
// The returned error joins every run failure.
func RunAll(ctx context.Context, pipelines []*Pipeline, jobs int) (BatchResult, error) {
	if err := checkDestinations(pipelines); err != nil {
		return BatchResult{}, err
	}
	if jobs <= 0 {
		jobs = 1
	}

	results := make([]Result, len(pipelines))
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, p := range pipelines {
		g.Go(func() error {
			summary, err := p.Run(ctx)
			results[i] = Result{Summary: summary, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return BatchResult{Results: results}, errors.Join(errs...)
}

func checkDestinations(pipelines []*Pipeline) error {
	seen := make(map[string]string, len(pipelines))
	for _, p := range pipelines {
		dest := filepath.Clean(p.dataset.OutputPath)
		if other, ok := seen[dest]; ok {
			return fmt.Errorf("datasets %s and %s both write %s", other, p.dataset.Name, dest)
		}
		seen[dest] = p.dataset.Name
	}
	return nil
}

// Console serialises progress output from concurrent pipelines, prefixing
// each write with the dataset name.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole wraps w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// For returns a writer that prefixes output with "[name] ".
func (c *Console) For(name string) io.Writer {
	return &prefixWriter{c: c, prefix: []byte("[" + name + "] ")}
}

type prefixWriter struct {
	c      *Console
	prefix []byte
}

// Write assumes each call carries whole lines, which holds for the
// pipeline's progress output.
func (w *prefixWriter) Write(p []byte) (int, error) {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	buf := make([]byte, 0, len(w.prefix)+len(p))
	buf = append(buf, w.prefix...)
	buf = append(buf, p...)
	if _, err := w.c.w.Write(buf); err != nil {
		return 0, err
	}
	return len(p), nil
}
