// Package analyzer implements the ownership/mutability/borrow/lifetime
// inference pass: a single depth-first walk per function that produces an
// AnalysisResult consumed by both the lowering and emission stages. It never
// mutates the AST it walks.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/token"
)

// ownershipState is the per-binding state machine described by the
// inference rules: Owned, BorrowedShared, BorrowedExclusive, Moved.
type ownershipState int

const (
	stateOwned ownershipState = iota
	stateBorrowedShared
	stateBorrowedExclusive
	stateMoved
)

// borrowInfo is one active borrow of a binding: who took it, whether it is
// exclusive, where, and at what scope depth the borrower lives. Borrows not
// stored in a named binding end at the statement boundary; named ones end
// when the borrower's scope is left.
type borrowInfo struct {
	borrower   string
	exclusive  bool
	span       token.Span
	depth      int
	persistent bool
}

// variableInfo tracks one binding's live analysis state within its
// declaring scope.
type variableInfo struct {
	name      string
	state     ownershipState
	declSpan  token.Span
	moveSpan  token.Span
	typ       ast.Type
	declDepth int
	borrows   []borrowInfo
}

// recomputeBorrowState rederives the borrow component of state from the
// surviving active borrows. A Moved binding stays Moved.
func (vi *variableInfo) recomputeBorrowState() {
	if vi.state == stateMoved {
		return
	}
	st := stateOwned
	for _, b := range vi.borrows {
		if b.exclusive {
			st = stateBorrowedExclusive
			break
		}
		st = stateBorrowedShared
	}
	vi.state = st
}

// ownershipContext is one lexical scope: bindings declared directly in it,
// plus a parent pointer forming a tree (never a cycle) rooted at the
// function body.
type ownershipContext struct {
	vars   map[string]*variableInfo
	parent *ownershipContext
	depth  int
}

func newScope(parent *ownershipContext) *ownershipContext {
	depth := 0
	if parent != nil {
		depth = parent.depth + 1
	}
	return &ownershipContext{vars: make(map[string]*variableInfo), parent: parent, depth: depth}
}

func (s *ownershipContext) lookup(name string) (*variableInfo, bool) {
	for c := s; c != nil; c = c.parent {
		if vi, ok := c.vars[name]; ok {
			return vi, true
		}
	}
	return nil, false
}

func (s *ownershipContext) define(name string, span token.Span, typ ast.Type) *variableInfo {
	vi := &variableInfo{name: name, state: stateOwned, declSpan: span, typ: typ, declDepth: s.depth}
	s.vars[name] = vi
	return vi
}

// AnalysisResult is the frozen output of inference: flat, module-wide
// sets keyed by binding name — a name that is mutable anywhere is mutable
// everywhere it is visible, which is also why re-binding the same name
// marks it mutable.
type AnalysisResult struct {
	Mutable              map[string]bool
	SharedBorrowed       map[string]bool
	ExclusiveBorrowed    map[string]bool
	Moved                map[string]bool
	NeedsCopy            map[string]bool
	StringConvertedVars  map[string]bool
	StringConvertedExprs map[token.Span]bool
	BorrowGraph          map[string][]string

	// FunctionLifetimes maps a function name to its ordered lifetime
	// parameter names. Keyed per function since a module may declare
	// several functions with independent lifetime parameters.
	FunctionLifetimes map[string][]string
}

// NewAnalysisResult returns an AnalysisResult with every set initialized
// empty (never nil), so callers can range over them unconditionally.
func NewAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		Mutable:              make(map[string]bool),
		SharedBorrowed:       make(map[string]bool),
		ExclusiveBorrowed:    make(map[string]bool),
		Moved:                make(map[string]bool),
		NeedsCopy:            make(map[string]bool),
		StringConvertedVars:  make(map[string]bool),
		StringConvertedExprs: make(map[token.Span]bool),
		BorrowGraph:          make(map[string][]string),
		FunctionLifetimes:    make(map[string][]string),
	}
}

// Analyzer runs the inference pass over a Module, accumulating diagnostics
// rather than halting on the first one: this is best-effort static
// analysis, not a full borrow checker.
type Analyzer struct {
	result             *AnalysisResult
	errors             []*diagnostics.DiagnosticError
	currentFn          *ast.FunctionDef
	extraBorrowHelpers map[string]bool
}

// Options configures analyzer behavior beyond the built-in closed lists,
// carrying the overrides a project's highrustc.yaml may set.
type Options struct {
	// ExtraBorrowHelpers names additional call-target functions recognised
	// as shared-borrow helpers (as `ref`/`borrow` already are), on top of
	// the built-in list.
	ExtraBorrowHelpers []string
}

// Analyze walks every FunctionDef in module with default Options and returns
// the accumulated AnalysisResult together with any diagnostics raised along
// the way.
func Analyze(module *ast.Module) (*AnalysisResult, []*diagnostics.DiagnosticError) {
	return AnalyzeWithOptions(module, Options{})
}

// AnalyzeWithOptions is Analyze with configurable borrow-helper recognition.
func AnalyzeWithOptions(module *ast.Module, opts Options) (*AnalysisResult, []*diagnostics.DiagnosticError) {
	a := &Analyzer{result: NewAnalysisResult()}
	if len(opts.ExtraBorrowHelpers) > 0 {
		a.extraBorrowHelpers = make(map[string]bool, len(opts.ExtraBorrowHelpers))
		for _, name := range opts.ExtraBorrowHelpers {
			a.extraBorrowHelpers[name] = true
		}
	}
	if module != nil {
		for _, item := range module.Items {
			if fn, ok := item.(*ast.FunctionDef); ok && !fn.EmbeddedTarget {
				a.analyzeFunction(fn)
			}
		}
	}
	return a.result, a.errors
}

func (a *Analyzer) analyzeFunction(fn *ast.FunctionDef) {
	prevFn := a.currentFn
	a.currentFn = fn
	defer func() { a.currentFn = prevFn }()

	scope := newScope(nil)
	for _, p := range fn.Params {
		scope.define(p.Name, p.Sp, p.Type)
	}
	if fn.Body != nil {
		a.walkBlock(fn.Body, scope)
	}
	a.computeLifetimes(fn)
}

// walkBlock visits statements in source order, dropping every borrow not
// held by a named binding once its statement is done. Borrows that were
// stored in a named binding stay active until that binding's scope is left
// (released by walkChildBlock / the match-arm and comprehension walks).
func (a *Analyzer) walkBlock(block *ast.Block, scope *ownershipContext) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		a.walkStatement(stmt, scope)
		a.endStatementBorrows(scope)
	}
}

func (a *Analyzer) endStatementBorrows(scope *ownershipContext) {
	for c := scope; c != nil; c = c.parent {
		for _, vi := range c.vars {
			kept := vi.borrows[:0]
			for _, b := range vi.borrows {
				if b.persistent {
					kept = append(kept, b)
				}
			}
			vi.borrows = kept
			vi.recomputeBorrowState()
		}
	}
}

// releaseBorrows ends every borrow whose borrower was declared at depth or
// deeper, walking the surviving scope chain upward from scope. Called when a
// child scope of the given depth is left.
func (a *Analyzer) releaseBorrows(scope *ownershipContext, depth int) {
	for c := scope; c != nil; c = c.parent {
		for _, vi := range c.vars {
			kept := vi.borrows[:0]
			for _, b := range vi.borrows {
				if b.depth < depth {
					kept = append(kept, b)
				}
			}
			vi.borrows = kept
			vi.recomputeBorrowState()
		}
	}
}

// walkChildBlock walks block in a fresh child scope of parent and releases
// any borrow held by a binding declared inside it.
func (a *Analyzer) walkChildBlock(block *ast.Block, parent *ownershipContext) {
	child := newScope(parent)
	a.walkBlock(block, child)
	a.releaseBorrows(parent, child.depth)
}

func (a *Analyzer) walkStatement(stmt ast.Statement, scope *ownershipContext) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		a.walkLet(s, scope)
	case *ast.ExprStatement:
		a.walkExpr(s.Expr, scope)
	case *ast.ReturnStatement:
		if s.Value != nil {
			a.walkExpr(s.Value, scope)
		}
	case *ast.IfStatement:
		a.walkExpr(s.Cond, scope)
		a.walkChildBlock(s.Then, scope)
		if s.Else != nil {
			a.walkChildBlock(s.Else, scope)
		}
	case *ast.WhileStatement:
		a.walkExpr(s.Cond, scope)
		a.walkChildBlock(s.Body, scope)
	case *ast.ForStatement:
		a.walkExpr(s.Iterable, scope)
		body := newScope(scope)
		a.bindPattern(s.Pattern, body)
		a.walkBlock(s.Body, body)
		a.releaseBorrows(scope, body.depth)
	case *ast.MatchStatement:
		a.walkExpr(s.Scrutinee, scope)
		a.walkMatchArms(s.Arms, scope)
	case *ast.TryStatement:
		a.walkChildBlock(s.Block, scope)
		if s.Handler != nil {
			a.walkChildBlock(s.Handler, scope)
		}
	case *ast.EmbeddedBlock:
		// Raw target-language text; never analyzed.
	}
}

func (a *Analyzer) walkMatchArms(arms []ast.MatchArm, scope *ownershipContext) {
	for _, arm := range arms {
		armScope := newScope(scope)
		a.bindPattern(arm.Pattern, armScope)
		if arm.Guard != nil {
			a.walkExpr(arm.Guard, armScope)
		}
		a.walkExpr(arm.Body, armScope)
		a.releaseBorrows(scope, armScope.depth)
	}
}

// walkLet handles re-binding mutability, move/copy tracking of a
// bare-variable RHS, borrow-helper bindings, and string coercion, then
// defines the pattern's bound names as fresh Owned bindings in scope.
func (a *Analyzer) walkLet(s *ast.LetStatement, scope *ownershipContext) {
	names := collectPatternNames(s.Pattern)

	for _, name := range names {
		if _, exists := scope.vars[name]; exists {
			a.result.Mutable[name] = true // re-declaration in the same scope
		}
	}

	handledAsBorrow := false
	switch v := s.Value.(type) {
	case *ast.Variable:
		a.moveUse(v.Name, v.Sp, scope)
	case *ast.Call:
		if callee, ok := v.Callee.(*ast.Variable); ok {
			if _, excl, isHelper := a.borrowHelperKind(callee.Name); isHelper && len(v.Args) == 1 {
				if argVar, ok := v.Args[0].(*ast.Variable); ok {
					for _, name := range names {
						a.classifyBorrow(argVar.Name, v.Sp, excl, name, true, scope)
						a.result.BorrowGraph[argVar.Name] = append(a.result.BorrowGraph[argVar.Name], name)
					}
					handledAsBorrow = true
				}
			}
		}
		if !handledAsBorrow {
			a.walkExpr(v, scope)
		}
	default:
		if s.Value != nil {
			a.walkExpr(s.Value, scope)
		}
	}

	if s.Type != nil && isStringType(s.Type) {
		a.applyStringCoercion(s.Value)
	}

	for _, name := range names {
		scope.define(name, s.Sp, s.Type)
	}
}

// moveUse records a bare-variable Let RHS: the first such use transitions
// Owned -> Moved; a later use of an already-Moved binding requires a copy,
// recorded against this use's span.
func (a *Analyzer) moveUse(name string, span token.Span, scope *ownershipContext) {
	vi, found := scope.lookup(name)
	if !found {
		return
	}
	if vi.state == stateMoved {
		a.result.NeedsCopy[name] = true
		a.errors = append(a.errors, diagnostics.NewError(diagnostics.ErrA001, span,
			fmt.Sprintf("use of moved value %q (moved at %s)", name, vi.moveSpan)))
		return
	}
	a.result.Moved[name] = true
	vi.state = stateMoved
	vi.moveSpan = span
}

// checkMovedUse handles uses that are not themselves a move (a read
// inside a call argument, a return expression, and so on): it never
// transitions a binding's state, it only flags a use of an already-moved
// value.
func (a *Analyzer) checkMovedUse(name string, span token.Span, scope *ownershipContext) {
	vi, found := scope.lookup(name)
	if !found || vi.state != stateMoved {
		return
	}
	a.result.NeedsCopy[name] = true
	a.errors = append(a.errors, diagnostics.NewError(diagnostics.ErrA001, span,
		fmt.Sprintf("use of moved value %q (moved at %s)", name, vi.moveSpan)))
}

// classifyBorrow records a shared or exclusive borrow of name, flagging a
// conflict when an incompatible borrow is already active; an exclusive
// borrow also implies mutability. borrower names the binding holding the
// borrow ("" for transient call-site borrows); persistent marks a borrow
// that outlives its statement.
func (a *Analyzer) classifyBorrow(name string, span token.Span, exclusive bool, borrower string, persistent bool, scope *ownershipContext) {
	vi, found := scope.lookup(name)
	if !found {
		a.errors = append(a.errors, diagnostics.NewError(diagnostics.ErrA004, span,
			fmt.Sprintf("variable %q not found", name)))
		return
	}

	conflict := vi.state == stateBorrowedExclusive || (vi.state == stateBorrowedShared && exclusive)
	if conflict {
		a.errors = append(a.errors, diagnostics.NewError(diagnostics.ErrA002, span,
			fmt.Sprintf("conflicting borrow of %q", name)))
	}

	vi.borrows = append(vi.borrows, borrowInfo{
		borrower:   borrower,
		exclusive:  exclusive,
		span:       span,
		depth:      scope.depth,
		persistent: persistent,
	})

	if exclusive {
		vi.state = stateBorrowedExclusive
		a.result.ExclusiveBorrowed[name] = true
		a.result.Mutable[name] = true
	} else if vi.state != stateBorrowedExclusive {
		vi.state = stateBorrowedShared
		a.result.SharedBorrowed[name] = true
	}
}

// walkExpr visits an expression in source (depth-first, left-to-right)
// order, applying whichever inference rule its shape triggers.
func (a *Analyzer) walkExpr(expr ast.Expression, scope *ownershipContext) {
	switch e := expr.(type) {
	case nil:
	case *ast.Literal:
	case *ast.Variable:
		a.checkMovedUse(e.Name, e.Sp, scope)
	case *ast.Wildcard:
	case *ast.Call:
		a.walkCall(e, scope)
	case *ast.FieldAccess:
		a.walkExpr(e.Base, scope)
	case *ast.BlockExpr:
		a.walkChildBlock(e.Block, scope)
	case *ast.AwaitExpr:
		a.walkExpr(e.Inner, scope)
	case *ast.Comprehension:
		a.walkExpr(e.Iterable, scope)
		inner := newScope(scope)
		a.bindPattern(e.Pattern, inner)
		a.walkExpr(e.Body, inner)
		a.releaseBorrows(scope, inner.depth)
	case *ast.MatchExpr:
		a.walkExpr(e.Scrutinee, scope)
		a.walkMatchArms(e.Arms, scope)
	case *ast.Propagate:
		a.checkPropagate(e.Sp)
		a.walkExpr(e.Inner, scope)
	case *ast.TryExpr:
		a.walkChildBlock(e.Block, scope)
		if e.Handler != nil {
			a.walkChildBlock(e.Handler, scope)
		}
	}
}

// walkCall classifies the receiver of a method-style call (exclusively
// when the method name has mutating intent), recognizes the
// ref/borrow/ref_mut/borrow_mut helper forms, and treats any other
// bare-variable argument as a shared borrow (a non-consuming use).
func (a *Analyzer) walkCall(e *ast.Call, scope *ownershipContext) {
	if fa, ok := e.Callee.(*ast.FieldAccess); ok {
		if base, ok := fa.Base.(*ast.Variable); ok {
			a.classifyBorrow(base.Name, e.Sp, isMutatingMethod(fa.Field), "", false, scope)
		} else {
			a.walkExpr(fa.Base, scope)
		}
		for _, arg := range e.Args {
			a.walkExpr(arg, scope)
		}
		return
	}

	if callee, ok := e.Callee.(*ast.Variable); ok {
		if _, excl, isHelper := a.borrowHelperKind(callee.Name); isHelper && len(e.Args) == 1 {
			if argVar, ok := e.Args[0].(*ast.Variable); ok {
				a.classifyBorrow(argVar.Name, e.Sp, excl, "", false, scope)
				return
			}
		}
	}

	a.walkExpr(e.Callee, scope)
	for _, arg := range e.Args {
		if v, ok := arg.(*ast.Variable); ok {
			a.classifyBorrow(v.Name, e.Sp, false, "", false, scope)
			continue
		}
		a.walkExpr(arg, scope)
	}
}

// checkPropagate rejects the propagate operator outside a function whose
// declared return type is Result or Option.
func (a *Analyzer) checkPropagate(span token.Span) {
	if a.currentFn == nil || !isFallibleReturn(a.currentFn.ReturnType) {
		a.errors = append(a.errors, diagnostics.NewError(diagnostics.ErrA003, span,
			"propagate operator used outside a function returning Result or Option"))
	}
}

func isFallibleReturn(t ast.Type) bool {
	switch t.(type) {
	case *ast.ResultType, *ast.OptionType:
		return true
	default:
		return false
	}
}

// applyStringCoercion records the string conversions a Let with a
// declared string type requires of its RHS.
func (a *Analyzer) applyStringCoercion(value ast.Expression) {
	switch v := value.(type) {
	case *ast.Literal:
		if v.Kind == ast.LitString {
			a.result.StringConvertedExprs[v.Sp] = true
		}
	case *ast.Variable:
		a.result.StringConvertedVars[v.Name] = true
		a.result.StringConvertedExprs[v.Sp] = true
	case *ast.Call:
		if callee, ok := v.Callee.(*ast.Variable); ok && callee.Name == "__add__" {
			a.result.StringConvertedExprs[v.Sp] = true
			for _, arg := range v.Args {
				if lit, ok := arg.(*ast.Literal); ok && lit.Kind == ast.LitString {
					a.result.StringConvertedExprs[lit.Sp] = true
				}
			}
		}
	}
}

// bindPattern defines every name a pattern binds as a fresh Owned binding in
// scope (for-loop variables, match-arm bindings, comprehension variables).
func (a *Analyzer) bindPattern(pattern ast.Pattern, scope *ownershipContext) {
	for _, name := range collectPatternNames(pattern) {
		scope.define(name, pattern.Span(), nil)
	}
}

func collectPatternNames(pattern ast.Pattern) []string {
	switch p := pattern.(type) {
	case *ast.VariablePattern:
		return []string{p.Name}
	case *ast.TuplePattern:
		var names []string
		for _, el := range p.Elems {
			names = append(names, collectPatternNames(el)...)
		}
		return names
	case *ast.TuplePairPattern:
		return append(collectPatternNames(p.First), collectPatternNames(p.Second)...)
	case *ast.RecordPattern:
		var names []string
		for _, f := range p.Fields {
			names = append(names, collectPatternNames(f.Pattern)...)
		}
		return names
	case *ast.VariantPattern:
		if p.Inner != nil {
			return collectPatternNames(p.Inner)
		}
		return nil
	default:
		return nil
	}
}

// computeLifetimes collects the signature's explicit lifetimes in
// first-seen order, or injects a default 'a when a reference-returning
// signature with reference parameters carries none.
func (a *Analyzer) computeLifetimes(fn *ast.FunctionDef) {
	var explicit []string
	seen := make(map[string]bool)
	collect := func(t ast.Type) {
		if ref, ok := t.(*ast.ReferenceType); ok && ref.Lifetime != "" && !seen[ref.Lifetime] {
			seen[ref.Lifetime] = true
			explicit = append(explicit, ref.Lifetime)
		}
	}
	for _, p := range fn.Params {
		collect(p.Type)
	}
	collect(fn.ReturnType)

	if len(explicit) > 0 {
		a.result.FunctionLifetimes[fn.Name] = explicit
		return
	}

	retRef, retIsRef := fn.ReturnType.(*ast.ReferenceType)
	if !retIsRef || retRef.Lifetime != "" {
		return
	}
	for _, p := range fn.Params {
		if _, ok := p.Type.(*ast.ReferenceType); ok {
			a.result.FunctionLifetimes[fn.Name] = []string{"'a"}
			return
		}
	}
}

// --- recognized mutating-method and borrow-helper names ---

var exactMutatingMethods = map[string]bool{
	"push": true, "pop": true, "insert": true, "remove": true, "clear": true,
	"resize": true, "extend": true, "set": true, "push_str": true, "push_back": true,
	"append": true, "insert_str": true, "truncate": true, "retain": true, "sort": true,
	"reverse": true, "shuffle": true, "fill": true,
}

var mutatingPrefixes = []string{"push", "pop", "insert", "remove", "clear", "set", "add", "delete", "update"}

func isMutatingMethod(field string) bool {
	if exactMutatingMethods[field] {
		return true
	}
	for _, prefix := range mutatingPrefixes {
		if strings.HasPrefix(field, prefix) {
			return true
		}
	}
	return false
}

// borrowHelperKind reports whether name is a recognised borrow-helper
// function and, if so, whether it takes exclusively. Names configured via
// Options.ExtraBorrowHelpers are recognised as shared-borrow helpers
// alongside the built-in `ref`/`borrow` pair.
func (a *Analyzer) borrowHelperKind(name string) (string, bool, bool) {
	switch name {
	case "ref", "borrow":
		return name, false, true
	case "ref_mut", "borrow_mut":
		return name, true, true
	}
	if a.extraBorrowHelpers[name] {
		return name, false, true
	}
	return name, false, false
}

func isStringType(t ast.Type) bool {
	nt, ok := t.(*ast.NamedType)
	return ok && (nt.Name == "String" || nt.Name == "str")
}
