// Package pipeline drives the middle-end passes over a module in the
// dependency order spec.md §2 describes: uninit, then constprop, then
// inlining, then renormalize, then GC-check movement, then GC info.
package pipeline

import (
	"fmt"
	"io"
	"os"

	"vela/internal/constprop"
	"vela/internal/diagnostics"
	"vela/internal/gcinfo"
	"vela/internal/inline"
	"vela/internal/ir"
	"vela/internal/renormalize"
	"vela/internal/uninit"
)

// Counters holds the process-level diagnostic output §6 defines: how
// many CheckGC instances were moved/removed, and how many RenormArrs
// were hoisted, across the whole module.
type Counters struct {
	MovedChecks   int
	RemovedChecks int
	Renormalizes  int
	Inlined       int
}

// Options configures a Pipeline run.
type Options struct {
	// Sink receives the human-readable counter lines ("moved checkgc: N",
	// etc). Defaults to os.Stdout if nil.
	Sink io.Writer
}

// Result is everything a caller needs after a run: the diagnostics (if
// non-empty, the module was rejected and left unmodified beyond whatever
// the uninit pass itself does not undo — see Run), the counters, and a
// GC-info table per function.
type Result struct {
	Diagnostics []diagnostics.Diagnostic
	Counters    Counters
	GCInfo      map[*ir.Function]*gcinfo.Info
}

// Pipeline runs the middle-end over a single module.
type Pipeline struct {
	Options Options
}

// New returns a Pipeline with the given options, defaulting Sink to
// os.Stdout.
func New(opts Options) *Pipeline {
	if opts.Sink == nil {
		opts.Sink = os.Stdout
	}
	return &Pipeline{Options: opts}
}

// Run executes every stage over mod. If the uninit pass reports any
// diagnostic, the module is rejected: Run returns those diagnostics and
// no further stage runs (mod is left with the in-place effects of
// whatever uninit itself performed, which is read-only).
func (p *Pipeline) Run(mod *ir.Module) Result {
	sink := &diagnostics.Sink{}
	for _, fn := range mod.Functions {
		uninit.Analyze(fn, sink)
	}
	if !sink.Empty() {
		return Result{Diagnostics: sink.Diagnostics()}
	}

	constprop.PropagateModule(mod)

	var counters Counters
	counters.Inlined = inline.Inline(mod)

	for _, fn := range mod.Functions {
		counters.Renormalizes += renormalize.Optimize(fn)
	}

	gcInfo := make(map[*ir.Function]*gcinfo.Info, len(mod.Functions))
	for _, fn := range mod.Functions {
		moved, removed := gcinfo.MoveChecks(fn)
		counters.MovedChecks += moved
		counters.RemovedChecks += removed
		gcInfo[fn] = gcinfo.Compute(fn)
	}

	p.report(counters)

	return Result{Counters: counters, GCInfo: gcInfo}
}

func (p *Pipeline) report(c Counters) {
	fmt.Fprintf(p.Options.Sink, "moved checkgc: %d\n", c.MovedChecks)
	fmt.Fprintf(p.Options.Sink, "removed checkgc: %d\n", c.RemovedChecks)
	fmt.Fprintf(p.Options.Sink, "renormalizes: %d\n", c.Renormalizes)
}
