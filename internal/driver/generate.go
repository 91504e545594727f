package driver

import (
	"context"
	"fmt"

	"clayout/internal/debuginfo"
	"clayout/internal/diag"
	"clayout/internal/layout"
	"clayout/internal/registry"
	"clayout/internal/trace"
)

// GenerateOptions configures Generate.
type GenerateOptions struct {
	CanonicalOnly bool // only the registered definition of each matching name
	Reporter      diag.Reporter
	Progress      ProgressSink
}

// RootResult is the outcome of one root.
type RootResult struct {
	Root registry.Root
	Info *layout.TypeInfo // nil when the type has no layout
}

// GenerateResult summarizes a Generate call.
type GenerateResult struct {
	Registered int
	Shadowed   int
	Roots      []RootResult
	Missing    []registry.Destination
	Stats      layout.Stats
}

// Generate resolves dests against sources and writes every selected root,
// in destination order, to sink. Destinations without a match are reported
// and skipped. The returned error is a sink failure or cancellation.
func Generate(ctx context.Context, sources []debuginfo.Source, dests []registry.Destination, sink layout.Sink, opts GenerateOptions) (GenerateResult, error) {
	var res GenerateResult
	reporter := opts.Reporter
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	tracer := trace.FromContext(ctx)

	notify(opts.Progress, Event{Stage: StageRegistry, Status: StatusWorking})
	reg := registry.Build(sources, registry.Hints{Names: namesHint(sources)})
	res.Registered, res.Shadowed = reg.Len(), reg.Shadowed()
	notify(opts.Progress, Event{Stage: StageRegistry, Status: StatusDone})

	roots, missing := reg.Roots(dests, opts.CanonicalOnly)
	res.Missing = missing
	for _, d := range missing {
		diag.Warnf(reporter, diag.DrvDestinationNotFound, diag.NoLocation,
			"no type named %s in any input", d)
	}

	engine := layout.NewEngine(sources, reg, sink, layout.Options{
		Reporter: reporter,
		Tracer:   tracer,
	})
	res.Roots = make([]RootResult, 0, len(roots))
	for i, r := range roots {
		notify(opts.Progress, Event{Stage: StageLayout, Status: StatusWorking, Done: i, Total: len(roots)})
		info, err := engine.Root(ctx, r.Index)
		if err != nil {
			res.Stats = engine.Stats()
			notify(opts.Progress, Event{Stage: StageLayout, Status: StatusError, Err: err, Done: i, Total: len(roots)})
			return res, fmt.Errorf("%s: %w", r.Name, err)
		}
		if info == nil {
			loc := diag.Location{
				Input:  r.Index.Input,
				Path:   sources[r.Index.Input].Path(),
				Offset: uint64(r.Index.Offset),
				Name:   r.Name.String(),
			}
			diag.Infof(reporter, diag.DrvInfo, loc, "%s has no layout", r.Name)
		}
		res.Roots = append(res.Roots, RootResult{Root: r, Info: info})
	}
	res.Stats = engine.Stats()
	notify(opts.Progress, Event{Stage: StageLayout, Status: StatusDone, Done: len(roots), Total: len(roots)})
	return res, nil
}

func namesHint(sources []debuginfo.Source) uint {
	var n uint
	for _, s := range sources {
		n += uint(len(s.Types()))
	}
	return n
}
