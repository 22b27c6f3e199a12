package lowering_test

import (
	"testing"

	"github.com/harmony-labs/highrust/internal/analyzer"
	"github.com/harmony-labs/highrust/internal/ir"
	"github.com/harmony-labs/highrust/internal/lexer"
	"github.com/harmony-labs/highrust/internal/lowering"
	"github.com/harmony-labs/highrust/internal/parser"
	"github.com/harmony-labs/highrust/internal/pipeline"
)

// lower runs the full front half of the pipeline (lex, parse, infer) and
// then lowering, failing the test on any upstream diagnostic.
func lower(t *testing.T, input string) (*ir.Module, *analyzer.AnalysisResult) {
	t.Helper()
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("parsing failed: %v", ctx.Errors)
	}
	result, _ := analyzer.Analyze(ctx.AstRoot)
	mod, errs := lowering.Lower(ctx.AstRoot, result)
	if len(errs) > 0 {
		t.Fatalf("lowering failed: %v", errs)
	}
	return mod, result
}

func TestLower_LetCarriesMutableFlag(t *testing.T) {
	mod, _ := lower(t, `fn f() {
    let x = 1;
    let x = 2;
}`)
	fn := mod.Items[0].(*ir.Function)
	secondLet := fn.Body.Statements[1].(*ir.Let)
	if !secondLet.Mutable {
		t.Errorf("expected the re-bound let to carry the mutable flag")
	}
}

func TestLower_MoveThenCopy(t *testing.T) {
	// The third statement's needs_copy flag should be set, and only the
	// third, not the second (the move itself).
	mod, _ := lower(t, `fn f() {
    let s = "hello".to_string();
    let t = s;
    let u = s;
}`)
	fn := mod.Items[0].(*ir.Function)
	if len(fn.Body.Statements) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(fn.Body.Statements))
	}
	firstLet := fn.Body.Statements[0].(*ir.Let)
	secondLet := fn.Body.Statements[1].(*ir.Let)
	thirdLet := fn.Body.Statements[2].(*ir.Let)
	if firstLet.NeedsCopy {
		t.Errorf("did not expect the first let to need a copy")
	}
	if secondLet.NeedsCopy {
		t.Errorf("did not expect the move itself (second let) to need a copy")
	}
	if !thirdLet.NeedsCopy {
		t.Errorf("expected the third let (second use of s) to need a copy")
	}
}

func TestLower_DestructuringLetIsAnError(t *testing.T) {
	ctx := &pipeline.PipelineContext{SourceCode: `fn f() {
    let (a, b) = pair;
}`}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("parsing failed: %v", ctx.Errors)
	}
	result, _ := analyzer.Analyze(ctx.AstRoot)
	_, errs := lowering.Lower(ctx.AstRoot, result)
	if len(errs) == 0 {
		t.Fatalf("expected a lowering error for a destructuring let")
	}
}

func TestLower_TaggedUnionIsAnError(t *testing.T) {
	ctx := &pipeline.PipelineContext{SourceCode: `union Shape {
		Circle(i32),
		Square(i32),
	}`}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("parsing failed: %v", ctx.Errors)
	}
	result, _ := analyzer.Analyze(ctx.AstRoot)
	_, errs := lowering.Lower(ctx.AstRoot, result)
	if len(errs) == 0 {
		t.Fatalf("expected a lowering error for a tagged union definition")
	}
}

func TestLower_NilModuleYieldsEmptyModule(t *testing.T) {
	mod, errs := lowering.Lower(nil, analyzer.NewAnalysisResult())
	if mod == nil {
		t.Fatalf("expected an empty module for a nil input, not nil")
	}
	if len(errs) != 0 {
		t.Fatalf("did not expect errors lowering a nil module, got %v", errs)
	}
}

func TestLower_FunctionCarriesLifetimes(t *testing.T) {
	mod, _ := lower(t, `fn get_ref(x: &i32) -> &i32 { return x; }`)
	fn := mod.Items[0].(*ir.Function)
	if len(fn.Lifetimes) != 1 || fn.Lifetimes[0] != "'a" {
		t.Fatalf("expected the lowered function to carry the injected lifetime, got %v", fn.Lifetimes)
	}
}

func TestLower_DataRecordBecomesStruct(t *testing.T) {
	mod, _ := lower(t, `data Point { x: i32, y: i32 }`)
	data := mod.Items[0].(*ir.Data)
	if data.Kind != ir.DataStruct || len(data.Fields) != 2 {
		t.Fatalf("unexpected lowered data: %+v", data)
	}
}

func TestLower_DataSumBecomesEnum(t *testing.T) {
	mod, _ := lower(t, `enum Shape { Circle { r: i32 }, Square }`)
	data := mod.Items[0].(*ir.Data)
	if data.Kind != ir.DataEnum || len(data.Variants) != 2 {
		t.Fatalf("unexpected lowered data: %+v", data)
	}
}

func TestLower_EmptyModule(t *testing.T) {
	mod, _ := lower(t, ``)
	if len(mod.Items) != 0 {
		t.Fatalf("expected no items for an empty module, got %d", len(mod.Items))
	}
}
