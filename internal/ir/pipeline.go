package ir

// Pass is one optimization or analysis step in the pipeline, grounded on
// the teacher's OptimizationPass interface (internal/ir/optimizations.go),
// adapted to run over one *Function at a time instead of a whole program
// and to report whether it changed anything so Pipeline can re-run
// earlier passes that might now find new opportunities.
type Pass interface {
	Name() string
	Description() string
	Apply(fn *Function) bool
}

// Options mirrors the CLI's --disable-* flags (§6): each corresponds to
// one pass or analysis the pipeline can skip. Disabling SSA transitively
// disables every SSA-requiring pass, matching the CLI's documented
// redundant-but-harmless handling of the other flags in that case.
type Options struct {
	DisableSSA          bool
	DisableSCCP         bool
	DisableLICM         bool
	DisableDCE          bool
	DisableBlockCleanup bool
	// DisableIdomTree and DisableDF gate the CLI's printer of those
	// analyses directly (§6); the passes above always recompute
	// dominators/frontiers internally on demand, so those two flags have
	// no effect on this struct's pipeline behavior.
}

// Pipeline runs PromoteToSSA, then the optimization passes Options leaves
// enabled, to a per-function fixpoint (no pass makes further progress),
// grounded on the teacher's OptimizationPipeline
// (internal/ir/optimizations.go) generalized to per-function scope and
// to recompute dominator-tree state automatically via Function.Dominators.
type Pipeline struct {
	Options Options
	// Warnings accumulates unsupported-operation notices (§7) such as
	// SCCP leaving a constant division by zero unfolded; warnings never
	// abort the pipeline.
	Warnings []string
}

// NewPipeline builds a pipeline from opts.
func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{Options: opts}
}

// Run lowers fn's CFG into SSA (unless disabled) and iterates the
// optimization passes to a fixpoint, returning the number of rounds in
// which some pass changed fn (0 means the starting IR already satisfied every enabled pass).
func (p *Pipeline) Run(fn *Function) int {
	if !p.Options.DisableSSA {
		PromoteToSSA(fn)
	}

	rounds := 0
	for {
		changed := false
		if !p.Options.DisableSSA && !p.Options.DisableSCCP {
			if SCCP(fn, p.warn) {
				changed = true
			}
		}
		if !p.Options.DisableSSA && !p.Options.DisableLICM {
			if LICM(fn) {
				changed = true
			}
		}
		if !p.Options.DisableSSA && !p.Options.DisableDCE {
			if DCE(fn) {
				changed = true
			}
		}
		if !p.Options.DisableBlockCleanup {
			if BlockCleanup(fn) {
				changed = true
			}
		}
		if !changed {
			break
		}
		rounds++
	}
	return rounds
}

func (p *Pipeline) warn(msg string) {
	p.Warnings = append(p.Warnings, msg)
}
