package emitter

import (
	"github.com/harmony-labs/highrust/internal/analyzer"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/pipeline"
	"github.com/harmony-labs/highrust/internal/token"
)

// EmitterProcessor is the fifth and final pipeline stage: it consumes
// ctx.IR and ctx.Analysis and produces ctx.Output.
type EmitterProcessor struct{}

func (ep *EmitterProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	module := ctx.IR
	if module == nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrE002, token.Span{}, "emission: IR module is missing"))
		return ctx
	}
	result, ok := ctx.Analysis.(*analyzer.AnalysisResult)
	if !ok || result == nil {
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(diagnostics.ErrE002, token.Span{}, "emission: analysis result is missing"))
		return ctx
	}

	var opts Options
	if ctx.Config != nil {
		opts.DefaultParamType = ctx.Config.DefaultParamType
		opts.IndentWidth = ctx.Config.IndentWidth
	}
	output, errs := EmitWithOptions(module, result, opts)
	ctx.Output = output

	for _, err := range errs {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}

	return ctx
}
