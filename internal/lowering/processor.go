package lowering

import (
	"github.com/harmony-labs/highrust/internal/analyzer"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/pipeline"
	"github.com/harmony-labs/highrust/internal/token"
)

// LoweringProcessor is the fourth pipeline stage: it consumes ctx.AstRoot
// and ctx.Analysis and produces ctx.IR.
type LoweringProcessor struct{}

func (lp *LoweringProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrL002, token.Span{}, "lowering: AST root is nil"))
		return ctx
	}
	result, ok := ctx.Analysis.(*analyzer.AnalysisResult)
	if !ok || result == nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrL002, token.Span{}, "lowering: analysis result is missing"))
		return ctx
	}

	lowered, errs := Lower(ctx.AstRoot, result)
	ctx.IR = lowered

	for _, err := range errs {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}

	return ctx
}
