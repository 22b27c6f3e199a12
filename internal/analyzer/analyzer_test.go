package analyzer_test

import (
	"testing"

	"github.com/harmony-labs/highrust/internal/analyzer"
	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/lexer"
	"github.com/harmony-labs/highrust/internal/parser"
	"github.com/harmony-labs/highrust/internal/pipeline"
)

// analyze parses input and runs inference over it, failing the test on any
// parse error. It returns the AnalysisResult together with whatever
// inference diagnostics were raised, since several of the tests below
// assert on those diagnostics directly.
func analyze(t *testing.T, input string) (*ast.Module, *analyzer.AnalysisResult, []string) {
	t.Helper()
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("parsing failed: %v", ctx.Errors)
	}
	result, errs := analyzer.Analyze(ctx.AstRoot)
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return ctx.AstRoot, result, msgs
}

func TestMutability_MutatingMethodCall(t *testing.T) {
	_, result, _ := analyze(t, `fn test_mutable_borrow(v) {
    v.push(1);
    v.push(2);
}`)
	if !result.Mutable["v"] {
		t.Errorf("expected v to be marked mutable via its mutating method calls")
	}
	if !result.ExclusiveBorrowed["v"] {
		t.Errorf("expected v to be exclusively borrowed at its mutating call sites")
	}
}

func TestMutability_Rebinding(t *testing.T) {
	// Re-binding the same name in the same scope marks it mutable even
	// though the two `x`s are distinct bindings in the surface semantics
	// (a documented divergence).
	_, result, _ := analyze(t, `fn f() {
    let x = 1;
    let x = 2;
}`)
	if !result.Mutable["x"] {
		t.Errorf("expected re-bound x to be marked mutable")
	}
}

func TestMutability_PropagatesFromBranch(t *testing.T) {
	// A mutation observed only inside an if-branch propagates to the
	// parent scope.
	_, result, _ := analyze(t, `fn f(v) {
    if true {
        v.push(1);
    }
}`)
	if !result.Mutable["v"] {
		t.Errorf("expected branch-local mutation to propagate to parent scope")
	}
}

func TestMutability_PropagatesFromLoop(t *testing.T) {
	_, result, _ := analyze(t, `fn f(v) {
    while true {
        v.push(1);
    }
}`)
	if !result.Mutable["v"] {
		t.Errorf("expected loop-local mutation to propagate to parent scope")
	}
}

func TestSharedBorrow_ReadOnlyCallArgument(t *testing.T) {
	_, result, _ := analyze(t, `fn test_immutable_borrow(s) {
    println("{}", s);
    let len = s.len();
}`)
	if !result.SharedBorrowed["s"] {
		t.Errorf("expected s to be classified as shared-borrowed")
	}
	if result.ExclusiveBorrowed["s"] {
		t.Errorf("did not expect s to be exclusively borrowed")
	}
}

func TestSharedBorrow_HelperForms(t *testing.T) {
	_, result, _ := analyze(t, `fn f(v) {
    let r = ref(v);
    let b = borrow(v);
}`)
	if !result.SharedBorrowed["v"] {
		t.Errorf("expected v shared-borrowed via ref()/borrow() helpers")
	}
	if len(result.BorrowGraph["v"]) != 2 {
		t.Errorf("expected two borrowers of v recorded in the borrow graph, got %v", result.BorrowGraph["v"])
	}
}

func TestExclusiveBorrow_HelperForms(t *testing.T) {
	_, result, _ := analyze(t, `fn f(v) {
    let r = ref_mut(v);
}`)
	if !result.ExclusiveBorrowed["v"] {
		t.Errorf("expected v exclusively borrowed via ref_mut()")
	}
	if !result.Mutable["v"] {
		t.Errorf("exclusive borrow should imply mutability")
	}
}

func TestExclusiveBorrow_ImpliesMutable(t *testing.T) {
	// A name in exclusive-borrowed always also appears in mutable.
	_, result, _ := analyze(t, `fn f(v) {
    v.clear();
}`)
	if !result.ExclusiveBorrowed["v"] || !result.Mutable["v"] {
		t.Fatalf("expected both exclusive-borrowed and mutable for v, got excl=%v mut=%v",
			result.ExclusiveBorrowed["v"], result.Mutable["v"])
	}
}

func TestMoveAndRequiredCopy(t *testing.T) {
	_, result, msgs := analyze(t, `fn f() {
    let s = "hello".to_string();
    let t = s;
    let u = s;
}`)
	if !result.Moved["s"] {
		t.Errorf("expected s to be recorded as moved")
	}
	if !result.NeedsCopy["s"] {
		t.Errorf("expected s's second use to require a copy")
	}
	if len(msgs) == 0 {
		t.Errorf("expected a use-after-move diagnostic (informational only)")
	}
}

func TestMove_NoCopyWithoutSecondUse(t *testing.T) {
	_, result, _ := analyze(t, `fn f() {
    let s = "hello".to_string();
    let t = s;
}`)
	if !result.Moved["s"] {
		t.Errorf("expected s to be recorded as moved")
	}
	if result.NeedsCopy["s"] {
		t.Errorf("did not expect a required copy without a second use")
	}
}

func TestLifetimeInference_InjectsDefault(t *testing.T) {
	_, result, _ := analyze(t, `fn get_ref(x: &i32) -> &i32 { return x; }`)
	lifetimes := result.FunctionLifetimes["get_ref"]
	if len(lifetimes) != 1 || lifetimes[0] != "'a" {
		t.Fatalf("expected a single injected 'a lifetime, got %v", lifetimes)
	}
}

func TestLifetimeInference_PreservesExplicit(t *testing.T) {
	_, result, _ := analyze(t, `fn pick<'x, 'y>(a: &'x i32, b: &'y i32) -> &'x i32 { return a; }`)
	lifetimes := result.FunctionLifetimes["pick"]
	if len(lifetimes) != 2 || lifetimes[0] != "'x" || lifetimes[1] != "'y" {
		t.Fatalf("expected explicit lifetimes preserved in first-seen order, got %v", lifetimes)
	}
}

func TestLifetimeInference_NoInjectionWithoutReferenceParam(t *testing.T) {
	_, result, _ := analyze(t, `fn literal_ref() -> &i32 { return x; }`)
	if lifetimes, ok := result.FunctionLifetimes["literal_ref"]; ok {
		t.Errorf("did not expect a lifetime to be injected without a reference parameter, got %v", lifetimes)
	}
}

func TestStringCoercion_LetWithStringLiteral(t *testing.T) {
	_, result, _ := analyze(t, `fn f() { let s: String = "hi"; }`)
	found := false
	for span := range result.StringConvertedExprs {
		_ = span
		found = true
	}
	if !found {
		t.Errorf("expected the string-literal RHS span to be recorded for conversion")
	}
}

func TestStringCoercion_LetWithStringVariable(t *testing.T) {
	_, result, _ := analyze(t, `fn f(a) { let s: String = a; }`)
	if !result.StringConvertedVars["a"] {
		t.Errorf("expected a to be recorded as needing string conversion on read")
	}
}

func TestPropagateOutsideFallible_IsReportedError(t *testing.T) {
	_, _, msgs := analyze(t, `fn f() { let v = g()?; }`)
	if len(msgs) == 0 {
		t.Fatalf("expected PropagateOutsideFallible to be reported")
	}
}

func TestPropagateInsideFallible_NoError(t *testing.T) {
	_, _, msgs := analyze(t, `fn wrapper() -> Result<i32, String> {
    let v = get_val()?;
    return v;
}`)
	if len(msgs) != 0 {
		t.Fatalf("did not expect any diagnostics, got %v", msgs)
	}
}

// Shadowing: a mutating call on a nested Let's binding marks the name it
// shares with the outer binding mutable.
func TestShadowing_NestedMutationMarksSharedNameMutable(t *testing.T) {
	_, result, _ := analyze(t, `fn f() {
    let x = 1;
    if true {
        let x = 2;
        x.push(3);
    }
}`)
	// The nested x is a distinct binding (a fresh scope), so marking it
	// mutable records the shared name "x" mutable — the same name-keyed
	// approximation as re-binding — but the outer x's value (an int) never
	// observes a mutating-method call itself.
	if !result.Mutable["x"] {
		t.Errorf("expected the shadowed x to be marked mutable")
	}
}

func TestConflictingBorrows_ExclusiveOverlapsShared(t *testing.T) {
	_, _, msgs := analyze(t, `fn f(v) {
    let a = ref(v);
    let b = ref_mut(v);
}`)
	if len(msgs) == 0 {
		t.Fatalf("expected a ConflictingBorrows diagnostic")
	}
}

// A borrow stored in a named binding ends when that binding's scope is
// left, so an exclusive borrow taken afterwards in the parent does not
// conflict.
func TestBorrowReleasedAtScopeExit(t *testing.T) {
	_, _, msgs := analyze(t, `fn f(v) {
    if true {
        let a = ref(v);
    }
    let b = ref_mut(v);
}`)
	if len(msgs) != 0 {
		t.Fatalf("did not expect diagnostics once the inner borrow was released, got %v", msgs)
	}
}

// A transient call-site borrow ends at the statement boundary, so two
// consecutive statements may borrow the same binding freely.
func TestBorrowEndsAtStatementBoundary(t *testing.T) {
	_, _, msgs := analyze(t, `fn f(v) {
    use_it(v);
    let b = ref_mut(v);
}`)
	if len(msgs) != 0 {
		t.Fatalf("did not expect diagnostics across a statement boundary, got %v", msgs)
	}
}

func TestAnalyze_EmptyModule(t *testing.T) {
	_, result, msgs := analyze(t, ``)
	if len(msgs) != 0 {
		t.Fatalf("did not expect diagnostics for an empty module, got %v", msgs)
	}
	if len(result.Mutable) != 0 {
		t.Errorf("expected no mutable bindings for an empty module")
	}
}

func TestAnalyze_ParameterOnlyFunction(t *testing.T) {
	mod, _, msgs := analyze(t, `fn f(a: i32, b: i32) { }`)
	if len(msgs) != 0 {
		t.Fatalf("did not expect diagnostics, got %v", msgs)
	}
	fn := mod.Items[0].(*ast.FunctionDef)
	if len(fn.Body.Statements) != 0 {
		t.Fatalf("expected an empty body")
	}
}

// Options.ExtraBorrowHelpers, configurable via highrustc.yaml.
func TestAnalyzeWithOptions_ExtraBorrowHelperIsRecognised(t *testing.T) {
	ctx := &pipeline.PipelineContext{SourceCode: `fn f(v) {
    let a = view(v);
}`}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("parsing failed: %v", ctx.Errors)
	}

	result, errs := analyzer.AnalyzeWithOptions(ctx.AstRoot, analyzer.Options{ExtraBorrowHelpers: []string{"view"}})
	if len(errs) != 0 {
		t.Fatalf("did not expect diagnostics, got %v", errs)
	}
	if !result.SharedBorrowed["v"] {
		t.Errorf("expected v to be classified as shared-borrowed through the configured helper \"view\"")
	}
	if len(result.BorrowGraph["v"]) != 1 || result.BorrowGraph["v"][0] != "a" {
		t.Errorf("expected v -> a in the borrow graph, got %v", result.BorrowGraph["v"])
	}
}

// An unconfigured name falls through to the generic bare-variable-argument
// borrow rule rather than being recognised as a named borrow helper: v is
// still classified as shared-borrowed (the call-argument default applies
// to any callee), but the let-bound name is not recorded against it in the
// borrow graph the way a recognised helper's result is.
func TestAnalyzeWithOptions_UnconfiguredNameIsNotABorrowHelper(t *testing.T) {
	_, result, _ := analyze(t, `fn f(v) {
    let a = view(v);
}`)
	if !result.SharedBorrowed["v"] {
		t.Errorf("expected v to still be shared-borrowed via the default call-argument rule")
	}
	if len(result.BorrowGraph["v"]) != 0 {
		t.Errorf("did not expect a borrow-graph edge for v: \"view\" is not a recognised helper without Options.ExtraBorrowHelpers, got %v", result.BorrowGraph["v"])
	}
}
