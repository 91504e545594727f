// Package driver runs clayout end to end: it loads the inputs, selects the
// destination roots and writes the generated header and program.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clayout/internal/debuginfo"
	"clayout/internal/diag"
	"clayout/internal/dwarfsrc"
	"clayout/internal/emit"
	"clayout/internal/observ"
	"clayout/internal/registry"
	"clayout/internal/trace"
)

// ErrNoInputs is returned when a request names no input binaries.
var ErrNoInputs = errors.New("no input binaries")

// Request describes one generation run.
type Request struct {
	Inputs         []string // binary paths
	Lists          []string // files listing binary paths, one per line
	Destinations   []string // destination type names
	Stem           string   // output path without extension
	CanonicalOnly  bool
	Jobs           int
	CacheDir       string // empty disables the index cache
	MaxDiagnostics int
	Progress       ProgressSink
}

// Result summarizes a successful run.
type Result struct {
	Inputs      []string
	Cached      int // inputs whose index came from the cache
	HeaderPath  string
	ProgramPath string
	Generate    GenerateResult
	Types       int // definitions written
	Asserts     int // checks written
	Bag         *diag.Bag
	Timer       *observ.Timer
}

// Run executes req. Recoverable problems end up in Result.Bag; the returned
// error is fatal (unreadable input, malformed destination, output failure).
func Run(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if req.Stem == "" {
		return nil, errors.New("no output path given")
	}
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeDriver, "run", trace.CurrentSpan(ctx))
	ctx = trace.WithSpan(ctx, span)
	defer span.End("")

	res := &Result{
		Bag:   diag.NewBag(req.MaxDiagnostics),
		Timer: observ.NewTimer(),
	}
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: res.Bag})

	// malformed names fail before any input is touched
	dests, err := registry.ParseDestinations(req.Destinations)
	if err != nil {
		return nil, err
	}

	phase := res.Timer.Begin("inputs")
	inputs, err := CollectInputs(req.Inputs, req.Lists)
	res.Timer.End(phase, fmt.Sprintf("%d paths", len(inputs)))
	if err != nil {
		return nil, err
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	res.Inputs = inputs

	var cache *dwarfsrc.IndexCache
	if req.CacheDir != "" {
		if cache, err = dwarfsrc.OpenIndexCache(req.CacheDir); err != nil {
			diag.Warnf(reporter, diag.DrvCacheUnavailable, diag.NoLocation, "index cache disabled: %v", err)
			cache = nil
		}
	}

	phase = res.Timer.Begin("load")
	loaded, err := LoadInputs(ctx, inputs, LoadOptions{
		Cache:    cache,
		Jobs:     req.Jobs,
		Progress: req.Progress,
		Timer:    res.Timer,
	})
	res.Timer.End(phase, fmt.Sprintf("%d inputs", len(inputs)))
	if err != nil {
		return nil, err
	}
	defer closeLoaded(loaded)

	sources := make([]debuginfo.Source, len(loaded))
	for i, l := range loaded {
		sources[i] = l.File
		loc := diag.Location{Input: i, Path: l.File.Path()}
		if l.Info.Cached {
			res.Cached++
		}
		if l.Info.CacheErr != nil {
			diag.Warnf(reporter, diag.DrvCacheUnavailable, loc, "index cache: %v", l.Info.CacheErr)
		}
		if len(l.File.Types()) == 0 {
			diag.Warnf(reporter, diag.DrvNoTypes, loc, "no type information")
		}
	}

	phase = res.Timer.Begin("generate")
	out, err := emit.Create(req.Stem)
	if err != nil {
		res.Timer.End(phase, "error")
		return nil, err
	}
	res.HeaderPath, res.ProgramPath = req.Stem+".h", req.Stem+".c"

	gen, genErr := Generate(ctx, sources, dests, out, GenerateOptions{
		CanonicalOnly: req.CanonicalOnly,
		Reporter:      reporter,
		Progress:      req.Progress,
	})
	res.Generate = gen
	res.Types, res.Asserts = out.Stats()
	res.Timer.End(phase, fmt.Sprintf("%d roots", len(gen.Roots)))

	start := time.Now()
	notify(req.Progress, Event{Stage: StageWrite, Status: StatusWorking})
	closeErr := out.Close()
	res.Timer.Add("write", start, time.Since(start), "")
	if err := errors.Join(genErr, closeErr); err != nil {
		notify(req.Progress, Event{Stage: StageWrite, Status: StatusError, Err: err})
		return nil, err
	}
	notify(req.Progress, Event{Stage: StageWrite, Status: StatusDone, Elapsed: time.Since(start)})

	res.Bag.Sort()
	return res, nil
}
