// Package pipeline provides the Pipeline/PipelineContext/Processor trio
// that the five compiler stages are wired through.
package pipeline

import (
	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/config"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/ir"
	"github.com/harmony-labs/highrust/internal/token"
)

// PipelineContext threads state between stages. Each Processor reads the
// fields it needs and writes the ones it produces; nothing is shared
// mutable state beyond this single context value.
type PipelineContext struct {
	FilePath   string
	SourceCode string

	// Config, when set, carries a loaded highrustc.yaml's overrides (default
	// parameter type, indent width, extra borrow-helper names) through to
	// the analyzer and emitter stages. Nil means "use every stage's
	// built-in defaults."
	Config *config.Options

	TokenStream []token.Token
	AstRoot     *ast.Module

	// Analysis holds the *analyzer.AnalysisResult produced by the inference
	// stage. It is typed as interface{} here (rather than importing
	// internal/analyzer directly) because the analyzer's own Processor
	// imports this package; consumers type-assert it back to
	// *analyzer.AnalysisResult.
	Analysis interface{}
	IR       *ir.Module // set by the lowering stage

	Output string // set by the emission stage

	Errors []*diagnostics.DiagnosticError
}

// Processor is one stage of the pipeline: it consumes and returns a
// PipelineContext, appending to ctx.Errors on failure rather than halting
// the run — later stages no-op once their required input is missing, which
// lets callers collect diagnostics from every stage that managed to run.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline runs a fixed, ordered sequence of Processors.
type Pipeline struct {
	processors []Processor
}

// New builds a Pipeline that runs processors in order.
func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run drives every stage in order, always continuing even after a stage
// reports errors, so that e.g. a caller interested only in parse errors
// does not need the inference stage to succeed.
func (p *Pipeline) Run(initial *PipelineContext) *PipelineContext {
	ctx := initial
	for _, proc := range p.processors {
		ctx = proc.Process(ctx)
	}
	return ctx
}
