package driver

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"clayout/internal/dwarfsrc"
	"clayout/internal/observ"
	"clayout/internal/trace"
)

// LoadOptions configures LoadInputs.
type LoadOptions struct {
	Cache    *dwarfsrc.IndexCache // nil disables the index cache
	Jobs     int                  // <= 0 means GOMAXPROCS
	Progress ProgressSink
	Timer    *observ.Timer
}

// Loaded is one opened input.
type Loaded struct {
	File *dwarfsrc.File
	Info dwarfsrc.LoadInfo
}

// LoadInputs opens and indexes every path in parallel. Results keep input
// order. On failure every file opened so far is closed.
func LoadInputs(ctx context.Context, paths []string, opts LoadOptions) ([]Loaded, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx)

	for _, p := range paths {
		notify(opts.Progress, Event{Input: p, Stage: StageLoad, Status: StatusQueued})
	}

	// slots are per goroutine, no locking
	results := make([]Loaded, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			notify(opts.Progress, Event{Input: path, Stage: StageLoad, Status: StatusWorking})
			span := trace.Begin(tracer, trace.ScopeInput, "load", parent).WithExtra("path", path)
			start := time.Now()

			f, info, err := dwarfsrc.Load(path, opts.Cache)
			elapsed := time.Since(start)
			if err != nil {
				span.End("error")
				notify(opts.Progress, Event{Input: path, Stage: StageLoad, Status: StatusError, Err: err, Elapsed: elapsed})
				return fmt.Errorf("load %s: %w", path, err)
			}
			results[i] = Loaded{File: f, Info: info}

			status, note := StatusDone, fmt.Sprintf("%d types", len(f.Types()))
			if info.Cached {
				status, note = StatusCached, note+" (cached)"
			}
			span.End(note)
			if opts.Timer != nil {
				opts.Timer.Add("load "+path, start, elapsed, note)
			}
			notify(opts.Progress, Event{Input: path, Stage: StageLoad, Status: status, Elapsed: elapsed})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		closeLoaded(results)
		return nil, err
	}
	return results, nil
}

func closeLoaded(ls []Loaded) {
	for _, l := range ls {
		if l.File != nil {
			_ = l.File.Close()
		}
	}
}
