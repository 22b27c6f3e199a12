package analyzer

import (
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/pipeline"
	"github.com/harmony-labs/highrust/internal/token"
)

// AnalyzerProcessor is the third pipeline stage: it consumes ctx.AstRoot and
// produces ctx.Analysis (a *AnalysisResult, stored as interface{} to avoid a
// pipeline -> analyzer import cycle).
type AnalyzerProcessor struct{}

func (ap *AnalyzerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.AstRoot == nil {
		err := diagnostics.NewError(diagnostics.ErrA000, token.Span{}, "analyzer: AST root is nil")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	var opts Options
	if ctx.Config != nil {
		opts.ExtraBorrowHelpers = ctx.Config.ExtraBorrowHelpers
	}
	result, errs := AnalyzeWithOptions(ctx.AstRoot, opts)
	ctx.Analysis = result

	for _, err := range errs {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}

	return ctx
}
