// Package transpiler wires the five pipeline stages together behind the
// two entry points external callers use: TranspileSource and
// TranspileFile. It owns the single place that maps a stage's
// diagnostics.DiagnosticError into the unified Error taxonomy.
package transpiler

import (
	"fmt"
	"os"

	"github.com/harmony-labs/highrust/internal/analyzer"
	"github.com/harmony-labs/highrust/internal/config"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/emitter"
	"github.com/harmony-labs/highrust/internal/lexer"
	"github.com/harmony-labs/highrust/internal/lowering"
	"github.com/harmony-labs/highrust/internal/parser"
	"github.com/harmony-labs/highrust/internal/pipeline"
	"github.com/harmony-labs/highrust/internal/token"
)

// Stage identifies which pipeline stage produced an Error.
type Stage int

const (
	StageParse Stage = iota
	StageLowering
	StageInference
	StageEmission
	StageIO
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parse"
	case StageLowering:
		return "lowering"
	case StageInference:
		return "ownership"
	case StageEmission:
		return "codegen"
	case StageIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the unified error type returned by TranspileSource and
// TranspileFile: every failure from any stage, or from file I/O, is
// normalized into one of these.
type Error struct {
	Stage   Stage
	Code    string
	Message string
	Span    *token.Span
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func fromDiagnostic(d *diagnostics.DiagnosticError) *Error {
	stage := stageForCode(d.Code)
	span := d.Span
	return &Error{
		Stage:   stage,
		Code:    d.Code,
		Message: d.Error(),
		Span:    &span,
		Err:     d,
	}
}

// stageForCode maps a diagnostic's code prefix to its external Stage. The
// inference stage's own taxonomy (Ax codes) is reported as StageInference,
// which renders as the ownership error kind.
func stageForCode(code string) Stage {
	if len(code) == 0 {
		return StageParse
	}
	switch code[0] {
	case 'P':
		return StageParse
	case 'L':
		return StageLowering
	case 'A':
		return StageInference
	case 'E':
		return StageEmission
	default:
		return StageParse
	}
}

// firstFatal returns the first diagnostic that should fail the pipeline.
// UseAfterMove (A001) never does: a required copy is always recorded at the
// offending use, so emission stays semantically faithful and the diagnostic
// is informational only.
func firstFatal(errs []*diagnostics.DiagnosticError) *diagnostics.DiagnosticError {
	for _, e := range errs {
		if e.Code == diagnostics.ErrA001 {
			continue
		}
		return e
	}
	return nil
}

func ioError(message string, err error) *Error {
	return &Error{Stage: StageIO, Code: "IO000", Message: message, Err: err}
}

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.AnalyzerProcessor{},
		&lowering.LoweringProcessor{},
		&emitter.EmitterProcessor{},
	)
}

// TranspileSource runs source text through the full pipeline and returns
// the emitted target text, or the first stage error encountered.
func TranspileSource(source string) (string, error) {
	return TranspileSourceWithConfig(source, nil)
}

// TranspileSourceWithConfig is TranspileSource with a loaded highrustc.yaml's
// overrides (default parameter type, indent width, extra borrow-helper
// names) threaded through to the analyzer and emitter stages. A nil cfg
// behaves exactly like TranspileSource.
func TranspileSourceWithConfig(source string, cfg *config.Options) (string, error) {
	ctx := &pipeline.PipelineContext{SourceCode: source, Config: cfg}
	ctx = newPipeline().Run(ctx)

	if d := firstFatal(ctx.Errors); d != nil {
		return "", fromDiagnostic(d)
	}
	return ctx.Output, nil
}

// TranspileFile reads inputPath, transpiles it, and writes the result to
// outputPath. The output file is not created or truncated if any pipeline
// stage reports an error.
func TranspileFile(inputPath, outputPath string) error {
	return TranspileFileWithConfig(inputPath, outputPath, nil)
}

// TranspileFileWithConfig is TranspileFile with a loaded highrustc.yaml's
// overrides threaded through to the analyzer and emitter stages. A nil cfg
// behaves exactly like TranspileFile.
func TranspileFileWithConfig(inputPath, outputPath string, cfg *config.Options) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return ioError(fmt.Sprintf("reading %s", inputPath), err)
	}

	ctx := &pipeline.PipelineContext{SourceCode: string(data), FilePath: inputPath, Config: cfg}
	ctx = newPipeline().Run(ctx)

	if d := firstFatal(ctx.Errors); d != nil {
		return fromDiagnostic(d)
	}

	if err := os.WriteFile(outputPath, []byte(ctx.Output), 0644); err != nil {
		return ioError(fmt.Sprintf("writing %s", outputPath), err)
	}
	return nil
}
