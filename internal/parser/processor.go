package parser

import (
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/pipeline"
	"github.com/harmony-labs/highrust/internal/token"
)

// ParserProcessor is the second pipeline stage: it consumes ctx.TokenStream
// and produces ctx.AstRoot.
type ParserProcessor struct{}

func (pp *ParserProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.TokenStream == nil {
		err := diagnostics.NewError(diagnostics.ErrP000, token.Span{}, "parser: token stream is nil")
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}

	prs := New(ctx.TokenStream, ctx.SourceCode)
	ctx.AstRoot = prs.ParseModule()

	for _, err := range prs.Errors() {
		if err.File == "" {
			err.File = ctx.FilePath
		}
		ctx.Errors = append(ctx.Errors, err)
	}

	return ctx
}
