package parser_test

import (
	"strings"
	"testing"

	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/lexer"
	"github.com/harmony-labs/highrust/internal/parser"
	"github.com/harmony-labs/highrust/internal/pipeline"
)

func parseWithErrors(input string) []*diagnostics.DiagnosticError {
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	return ctx.Errors
}

func expectError(t *testing.T, input string, code string) *diagnostics.DiagnosticError {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

// ---------------------------------------------------------------------------
// P000 — missing token stream
// ---------------------------------------------------------------------------

func TestP000_NilTokenStream(t *testing.T) {
	ctx := &pipeline.PipelineContext{}
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) != 1 || ctx.Errors[0].Code != diagnostics.ErrP000 {
		t.Fatalf("expected a single %s error, got %v", diagnostics.ErrP000, ctx.Errors)
	}
}

// ---------------------------------------------------------------------------
// P001 — unexpected token
// ---------------------------------------------------------------------------

func TestP001_UnexpectedTopLevelToken(t *testing.T) {
	expectError(t, "42", diagnostics.ErrP001)
}

func TestP001_MissingClosingParen(t *testing.T) {
	expectError(t, "fn f(x: i32 { }", diagnostics.ErrP001)
}

func TestP001_UnexpectedTokenInExpression(t *testing.T) {
	expectError(t, "fn f() { let x = ; }", diagnostics.ErrP001)
}

func TestP001_UnexpectedTokenInPattern(t *testing.T) {
	expectError(t, "fn f() { for ) in xs { } }", diagnostics.ErrP001)
}

// ---------------------------------------------------------------------------
// P003 — invalid numeric literal
// ---------------------------------------------------------------------------

func TestP003_IntegerOverflow(t *testing.T) {
	expectError(t, "fn f() { let x = 999999999999999999999999; }", diagnostics.ErrP003)
}

// ---------------------------------------------------------------------------
// Valid programs recover without errors
// ---------------------------------------------------------------------------

func TestNoErrors_ValidProgram(t *testing.T) {
	errs := parseWithErrors(`fn main() {
    let x = 1;
    let y = 2;
    println("${x} + ${y}");
}`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}
