package driver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"qasmgen/internal/circuit"
	"qasmgen/internal/circuitfile"
	"qasmgen/internal/observ"
	"qasmgen/internal/qasm"
	"qasmgen/internal/trace"
)

// ExportRequest describes a batch of circuit files to export.
type ExportRequest struct {
	Files    []string
	OutDir   string // empty: write next to each input
	Jobs     int    // <= 0: GOMAXPROCS
	FailFast bool   // stop the batch at the first failing file
	DryRun   bool   // export but do not write
	Progress ProgressSink
	Timer    *observ.Timer
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Input   string
	Output  string
	Program string // empty on failure
	Gates   int
	Err     error
	Elapsed time.Duration
}

// ExportResult collects per-file outcomes in input order.
type ExportResult struct {
	Files []FileResult
}

// Failed returns the number of files that did not export.
func (r ExportResult) Failed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err != nil {
			n++
		}
	}
	return n
}

// Err joins the per-file errors, or returns nil when every file exported.
func (r ExportResult) Err() error {
	var errs []error
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errors.Join(errs...)
}

// LoadAndExport reads one circuit file and renders it.
func LoadAndExport(path string) (string, *circuit.Circuit, error) {
	c, err := circuitfile.Load(path)
	if err != nil {
		return "", nil, err
	}
	program, err := qasm.Export(c)
	if err != nil {
		return "", c, fmt.Errorf("%s: %w", path, err)
	}
	return program, c, nil
}

// ExportFiles loads, exports and writes every file of req in parallel.
// Per-file failures are recorded in the result; the returned error is set for
// request problems, cancellation, and the first failure when FailFast is set.
func ExportFiles(ctx context.Context, req *ExportRequest) (ExportResult, error) {
	if req == nil {
		return ExportResult{}, fmt.Errorf("missing export request")
	}
	if err := checkCollisions(req.Files, req.OutDir); err != nil {
		return ExportResult{}, err
	}
	result := ExportResult{Files: make([]FileResult, len(req.Files))}
	if len(req.Files) == 0 {
		return result, nil
	}

	tracer := trace.FromContext(ctx)
	batch := trace.Begin(tracer, trace.ScopeBatch, "export", trace.CurrentSpan(ctx))
	batch.WithExtra("files", strconv.Itoa(len(req.Files)))

	emit := func(evt Event) {
		if req.Progress != nil {
			req.Progress.OnEvent(evt)
		}
	}
	for _, f := range req.Files {
		emit(Event{File: f, Status: StatusQueued})
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(req.Files)))

	for i, path := range req.Files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				result.Files[i] = FileResult{Input: path, Err: gctx.Err()}
				emit(Event{File: path, Status: StatusError, Err: gctx.Err()})
				return gctx.Err()
			default:
			}
			res := exportOne(gctx, req, path, batch.ID(), emit)
			result.Files[i] = res
			if res.Err != nil {
				trace.Error(tracer, trace.ScopeFile, path, res.Err, batch.ID())
				if req.FailFast {
					return res.Err
				}
			}
			return nil
		})
	}
	waitErr := g.Wait()

	failed := result.Failed()
	batch.WithExtra("failed", strconv.Itoa(failed)).End("")
	emit(Event{Status: StatusDone})
	if waitErr != nil {
		return result, waitErr
	}
	return result, ctx.Err()
}

func exportOne(ctx context.Context, req *ExportRequest, path string, parent uint64, emit func(Event)) FileResult {
	started := time.Now()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeFile, path, parent)
	res := FileResult{Input: path, Output: OutputPath(path, req.OutDir)}

	fail := func(stage Stage, err error) FileResult {
		res.Err = err
		res.Elapsed = time.Since(started)
		span.End("error")
		emit(Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: res.Elapsed})
		return res
	}

	emit(Event{File: path, Stage: StageLoad, Status: StatusWorking})
	var c *circuit.Circuit
	err := req.Timer.Measure(string(StageLoad), func() error {
		var err error
		c, err = circuitfile.Load(path)
		return err
	})
	if err != nil {
		return fail(StageLoad, err)
	}
	res.Gates = c.Len()

	emit(Event{File: path, Stage: StageExport, Status: StatusWorking})
	err = req.Timer.Measure(string(StageExport), func() error {
		var err error
		res.Program, err = qasm.Export(c)
		return err
	})
	if err != nil {
		return fail(StageExport, fmt.Errorf("%s: %w", path, err))
	}

	if !req.DryRun {
		emit(Event{File: path, Stage: StageWrite, Status: StatusWorking})
		err = req.Timer.Measure(string(StageWrite), func() error {
			return writeAtomic(res.Output, []byte(res.Program))
		})
		if err != nil {
			res.Program = ""
			return fail(StageWrite, err)
		}
	}

	res.Elapsed = time.Since(started)
	span.WithExtra("gates", strconv.Itoa(res.Gates)).End("ok")
	emit(Event{File: path, Stage: StageWrite, Status: StatusDone, Elapsed: res.Elapsed})
	return res
}
