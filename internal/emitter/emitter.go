// Package emitter renders an ir.Module plus its analyzer.AnalysisResult as
// target text. It is a single recursive descent over the IR with an
// indentation counter as its only piece of shared state beyond the
// analysis result — no dynamic dispatch or visitor indirection is needed.
package emitter

import (
	"strconv"
	"strings"

	"github.com/harmony-labs/highrust/internal/analyzer"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/ir"
	"github.com/harmony-labs/highrust/internal/token"
)

// Emitter walks an IR module once, writing target text into an internal
// buffer. Indentation defaults to 4 spaces per level; opening braces share
// their construct's line, closing braces stand alone.
type Emitter struct {
	analysis *analyzer.AnalysisResult
	errors   []*diagnostics.DiagnosticError
	sb       strings.Builder
	indent   int

	// fnLifetime is the current function's inferred default lifetime, if
	// one was injected; typeString substitutes it onto any reference type
	// in the signature that lacks an explicit lifetime of its own. Empty
	// outside function emission.
	fnLifetime string

	// defaultParamType substitutes for any parameter that omits a type
	// annotation.
	defaultParamType string

	// indentWidthSpaces is the number of spaces written per indentation
	// level.
	indentWidthSpaces int
}

// Options configures emitter output beyond the fixed formatting rules,
// carrying the overrides a project's highrustc.yaml may set.
type Options struct {
	// DefaultParamType substitutes for an untyped parameter. Defaults to
	// "i32" when empty.
	DefaultParamType string

	// IndentWidth is the number of spaces per indentation level. Defaults
	// to 4 when zero or negative.
	IndentWidth int
}

// Emit renders module into target text using default Options.
func Emit(module *ir.Module, analysis *analyzer.AnalysisResult) (string, []*diagnostics.DiagnosticError) {
	return EmitWithOptions(module, analysis, Options{})
}

// EmitWithOptions is Emit with configurable default parameter type and
// indentation width.
func EmitWithOptions(module *ir.Module, analysis *analyzer.AnalysisResult, opts Options) (string, []*diagnostics.DiagnosticError) {
	paramType := opts.DefaultParamType
	if paramType == "" {
		paramType = "i32"
	}
	width := opts.IndentWidth
	if width <= 0 {
		width = 4
	}
	e := &Emitter{analysis: analysis, defaultParamType: paramType, indentWidthSpaces: width}
	if module != nil {
		for i, item := range module.Items {
			if i > 0 {
				e.sb.WriteString("\n\n")
			}
			e.emitItem(item)
		}
	}
	return e.sb.String(), e.errors
}

func (e *Emitter) errorf(code string, message string) {
	e.errors = append(e.errors, diagnostics.NewError(code, token.Span{}, message))
}

func (e *Emitter) writeIndent() {
	e.sb.WriteString(strings.Repeat(" ", e.indentWidthSpaces*e.indent))
}

func (e *Emitter) emitItem(item ir.Item) {
	switch it := item.(type) {
	case *ir.Import:
		// HRS import paths use `/` separators; the target's module paths
		// use `::`.
		e.sb.WriteString("use ")
		e.sb.WriteString(strings.ReplaceAll(it.Path, "/", "::"))
		e.sb.WriteString(";")
	case *ir.Export:
		e.sb.WriteString("pub use ")
		e.sb.WriteString(it.Name)
		e.sb.WriteString(";")
	case *ir.Embedded:
		e.sb.WriteString(it.Code)
	case *ir.Data:
		e.emitData(it)
	case *ir.Function:
		e.emitFunction(it)
	default:
		e.errorf(diagnostics.ErrE001, "unsupported item kind at emission")
	}
}

func (e *Emitter) emitFunction(fn *ir.Function) {
	// Only the injected default lifetime is substituted onto unannotated
	// references; explicit source lifetimes stay exactly where they were
	// written.
	if len(fn.Lifetimes) == 1 && fn.Lifetimes[0] == "'a" {
		e.fnLifetime = fn.Lifetimes[0]
	} else {
		e.fnLifetime = ""
	}
	defer func() { e.fnLifetime = "" }()

	if fn.Async {
		e.sb.WriteString("async ")
	}
	e.sb.WriteString("fn ")
	e.sb.WriteString(fn.Name)
	if len(fn.Lifetimes) > 0 {
		e.sb.WriteString("<")
		for i, lt := range fn.Lifetimes {
			if i > 0 {
				e.sb.WriteString(", ")
			}
			e.sb.WriteString(lt)
		}
		e.sb.WriteString(">")
	}
	e.sb.WriteString("(")
	for i, p := range fn.Params {
		if i > 0 {
			e.sb.WriteString(", ")
		}
		if e.analysis.Mutable[p.Name] {
			e.sb.WriteString("mut ")
		}
		e.sb.WriteString(p.Name)
		e.sb.WriteString(": ")
		if p.Type != nil {
			e.sb.WriteString(e.typeString(p.Type))
		} else {
			e.sb.WriteString(e.defaultParamType)
		}
	}
	e.sb.WriteString(")")
	if fn.ReturnType != nil {
		e.sb.WriteString(" -> ")
		e.sb.WriteString(e.typeString(fn.ReturnType))
	}
	e.sb.WriteString(" ")
	e.emitBlock(fn.Body)
}

func (e *Emitter) emitBlock(block *ir.Block) {
	if block == nil {
		e.sb.WriteString("{}")
		return
	}
	e.sb.WriteString("{\n")
	e.indent++
	for _, stmt := range block.Statements {
		e.writeIndent()
		e.emitStmt(stmt)
		e.sb.WriteString("\n")
	}
	e.indent--
	e.writeIndent()
	e.sb.WriteString("}")
}

func (e *Emitter) emitStmt(stmt ir.Statement) {
	switch s := stmt.(type) {
	case *ir.Let:
		e.emitLet(s)
	case *ir.ExprStmt:
		e.emitExpr(s.Expr)
		e.sb.WriteString(";")
	case *ir.Return:
		e.sb.WriteString("return")
		if s.Value != nil {
			e.sb.WriteString(" ")
			e.emitExpr(s.Value)
		}
		e.sb.WriteString(";")
	case *ir.If:
		e.emitIf(s)
	case *ir.While:
		e.sb.WriteString("while ")
		e.emitExpr(s.Cond)
		e.sb.WriteString(" ")
		e.emitBlock(s.Body)
	case *ir.For:
		e.sb.WriteString("for ")
		e.sb.WriteString(s.PatternName)
		e.sb.WriteString(" in ")
		e.emitExpr(s.Iterable)
		e.sb.WriteString(" ")
		e.emitBlock(s.Body)
	case *ir.Match:
		e.emitMatch(s.Scrutinee, s.Arms)
	case *ir.Try:
		e.emitTry(s.Block, s.Handler)
	case *ir.EmbeddedStmt:
		e.sb.WriteString(s.Code)
	default:
		e.errorf(diagnostics.ErrE002, "unsupported statement kind at emission")
	}
}

func (e *Emitter) emitIf(s *ir.If) {
	e.sb.WriteString("if ")
	e.emitExpr(s.Cond)
	e.sb.WriteString(" ")
	e.emitBlock(s.Then)
	if s.Else != nil {
		e.sb.WriteString(" else ")
		e.emitBlock(s.Else)
	}
}

// emitLet renders a let binding, inserting `.clone()` on a bare-variable
// RHS that needs a copy and `.to_string()` on a string literal bound with
// a declared string type.
func (e *Emitter) emitLet(s *ir.Let) {
	e.sb.WriteString("let ")
	if s.Mutable {
		e.sb.WriteString("mut ")
	}
	e.sb.WriteString(s.Name)
	if s.Type != nil {
		e.sb.WriteString(": ")
		e.sb.WriteString(e.typeString(s.Type))
	}
	e.sb.WriteString(" = ")

	if s.NeedsCopy {
		if vr, ok := s.Value.(*ir.VarRead); ok {
			e.sb.WriteString(vr.Name)
			e.sb.WriteString(".clone()")
			e.sb.WriteString(";")
			return
		}
	}

	if s.Type != nil && isStringIrType(s.Type) {
		if lit, ok := s.Value.(*ir.Literal); ok && lit.Kind == ir.LitString {
			e.emitLiteral(lit)
			e.sb.WriteString(".to_string()")
			e.sb.WriteString(";")
			return
		}
	}

	e.emitExpr(s.Value)
	e.sb.WriteString(";")
}

func (e *Emitter) emitExpr(expr ir.Expression) {
	switch ex := expr.(type) {
	case nil:
		return
	case *ir.Literal:
		e.emitLiteral(ex)
	case *ir.VarRead:
		e.emitVarRead(ex)
	case *ir.Wildcard:
		e.sb.WriteString("_")
	case *ir.Call:
		e.emitCall(ex)
	case *ir.FieldAccess:
		e.emitMethodReceiver(ex.Base)
		e.sb.WriteString(".")
		e.sb.WriteString(ex.Field)
	case *ir.BlockExpr:
		e.emitBlock(ex.Block)
	case *ir.Await:
		e.emitExpr(ex.Inner)
		e.sb.WriteString(".await")
	case *ir.Comprehension:
		e.sb.WriteString("(")
		e.emitExpr(ex.Iterable)
		e.sb.WriteString(").into_iter().map(|")
		e.sb.WriteString(ex.PatternName)
		e.sb.WriteString("| ")
		e.emitExpr(ex.Body)
		e.sb.WriteString(").collect::<Vec<_>>()")
	case *ir.MatchExpr:
		e.emitMatch(ex.Scrutinee, ex.Arms)
	case *ir.Propagate:
		e.emitExpr(ex.Inner)
		e.sb.WriteString("?")
	case *ir.TryExpr:
		e.emitTry(ex.Block, ex.Handler)
	default:
		e.errorf(diagnostics.ErrE002, "unsupported expression kind at emission")
	}
}

func (e *Emitter) emitLiteral(lit *ir.Literal) {
	switch lit.Kind {
	case ir.LitInt:
		e.sb.WriteString(strconv.FormatInt(lit.Int, 10))
	case ir.LitFloat:
		s := strconv.FormatFloat(lit.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		e.sb.WriteString(s)
	case ir.LitBool:
		if lit.Bool {
			e.sb.WriteString("true")
		} else {
			e.sb.WriteString("false")
		}
	case ir.LitString:
		e.sb.WriteString(quoteRustString(lit.Str))
	case ir.LitNull:
		e.sb.WriteString("None")
	}
}

// emitMethodReceiver emits the base of a field access or method call
// (`<base>.<field>`) without the borrow decoration emitVarRead would
// otherwise add: Rust's dot syntax auto-refs/auto-derefs its receiver, so
// `v.push(1)` and `s.len()` are the idiomatic renderings rather than
// `(&mut v).push(1)` or `(&s).len()`.
func (e *Emitter) emitMethodReceiver(expr ir.Expression) {
	if vr, ok := expr.(*ir.VarRead); ok {
		e.sb.WriteString(vr.Name)
		return
	}
	e.emitExpr(expr)
}

// emitVarRead renders a variable read with the borrow or string-conversion
// decoration the analysis decided for it.
func (e *Emitter) emitVarRead(vr *ir.VarRead) {
	name := vr.Name
	switch {
	case e.analysis.ExclusiveBorrowed[name]:
		e.sb.WriteString("&mut ")
		e.sb.WriteString(name)
	case e.analysis.SharedBorrowed[name] || len(e.analysis.BorrowGraph[name]) > 0:
		e.sb.WriteString("&")
		e.sb.WriteString(name)
	default:
		e.sb.WriteString(name)
		// Keyed by this read's span, not the binding name: a name-wide
		// check would retroactively convert reads that precede the Let
		// whose declared string type registered the conversion.
		if e.analysis.StringConvertedExprs[vr.Sp] {
			e.sb.WriteString(".to_string()")
		}
	}
}

var binaryOpSymbols = map[string]string{
	"__or__": "||", "__and__": "&&", "__eq__": "==", "__neq__": "!=",
	"__lt__": "<", "__gt__": ">", "__le__": "<=", "__ge__": ">=",
	"__add__": "+", "__sub__": "-", "__mul__": "*", "__div__": "/", "__mod__": "%",
}

// emitCall handles the two special call forms (println! rewriting and
// infix binary operators) and the default call form.
func (e *Emitter) emitCall(c *ir.Call) {
	if callee, ok := c.Callee.(*ir.VarRead); ok {
		if callee.Name == "println" {
			e.emitPrintln(c.Args)
			return
		}
		if sym, ok := binaryOpSymbols[callee.Name]; ok && len(c.Args) == 2 {
			e.emitInfixOperand(c.Args[0], callee.Name == "__add__")
			e.sb.WriteString(" ")
			e.sb.WriteString(sym)
			e.sb.WriteString(" ")
			e.emitInfixOperand(c.Args[1], callee.Name == "__add__")
			return
		}
	}

	e.emitExpr(c.Callee)
	e.sb.WriteString("(")
	for i, arg := range c.Args {
		if i > 0 {
			e.sb.WriteString(", ")
		}
		e.emitExpr(arg)
	}
	e.sb.WriteString(")")
}

// emitInfixOperand emits one side of a binary-operator call, appending
// `.to_string()` to a bare string literal operand when it is a side of `+`.
func (e *Emitter) emitInfixOperand(operand ir.Expression, isAdd bool) {
	e.emitExpr(operand)
	if isAdd {
		if lit, ok := operand.(*ir.Literal); ok && lit.Kind == ir.LitString {
			e.sb.WriteString(".to_string()")
		}
	}
}

// emitPrintln rewrites a `println(...)` call into a `println!` macro
// invocation, extracting `${expr}` interpolations from a sole
// string-literal argument.
func (e *Emitter) emitPrintln(args []ir.Expression) {
	e.sb.WriteString("println!(")
	if len(args) == 1 {
		if lit, ok := args[0].(*ir.Literal); ok && lit.Kind == ir.LitString {
			format, exprs := extractInterpolations(lit.Str)
			e.sb.WriteString(quoteRustString(format))
			for _, expr := range exprs {
				e.sb.WriteString(", ")
				e.sb.WriteString(expr)
			}
			e.sb.WriteString(")")
			return
		}
	}
	for i, arg := range args {
		if i > 0 {
			e.sb.WriteString(", ")
		}
		e.emitExpr(arg)
	}
	e.sb.WriteString(")")
}

// extractInterpolations replaces every `${expr}` in s with `{}` and returns
// the rewritten format string alongside the extracted expression texts, in
// order. Nested `}` is not supported: the first `}` always closes.
func extractInterpolations(s string) (string, []string) {
	var out strings.Builder
	var exprs []string
	i := 0
	for i < len(s) {
		if i+1 < len(s) && s[i] == '$' && s[i+1] == '{' {
			if close := strings.IndexByte(s[i+2:], '}'); close >= 0 {
				exprs = append(exprs, s[i+2:i+2+close])
				out.WriteString("{}")
				i = i + 2 + close + 1
				continue
			}
		}
		out.WriteByte(s[i])
		i++
	}
	return out.String(), exprs
}

func quoteRustString(s string) string {
	return strconv.Quote(s)
}

func (e *Emitter) emitMatch(scrutinee ir.Expression, arms []ir.MatchArm) {
	e.sb.WriteString("match ")
	e.emitExpr(scrutinee)
	e.sb.WriteString(" {\n")
	e.indent++
	for _, arm := range arms {
		e.writeIndent()
		e.emitPattern(arm.Pattern)
		if arm.Guard != nil {
			e.sb.WriteString(" if ")
			e.emitExpr(arm.Guard)
		}
		e.sb.WriteString(" => ")
		e.emitExpr(arm.Body)
		e.sb.WriteString(",\n")
	}
	e.indent--
	e.writeIndent()
	e.sb.WriteString("}")
}

// emitTry renders a try/catch block as an immediately invoked closure
// matched on its Result, since the target language has no native try
// statement.
func (e *Emitter) emitTry(block *ir.Block, handler *ir.Block) {
	e.sb.WriteString("match (|| ")
	e.emitBlock(block)
	e.sb.WriteString(")() {\n")
	e.indent++
	e.writeIndent()
	e.sb.WriteString("Ok(_) => {},\n")
	e.writeIndent()
	e.sb.WriteString("Err(_) => ")
	if handler != nil {
		e.emitBlock(handler)
	} else {
		e.sb.WriteString("{}")
	}
	e.sb.WriteString(",\n")
	e.indent--
	e.writeIndent()
	e.sb.WriteString("}")
}

func (e *Emitter) emitPattern(p ir.Pattern) {
	switch pp := p.(type) {
	case nil:
		e.sb.WriteString("_")
	case *ir.WildcardPattern:
		e.sb.WriteString("_")
	case *ir.VariablePattern:
		e.sb.WriteString(pp.Name)
	case *ir.TuplePattern:
		e.sb.WriteString("(")
		for i, el := range pp.Elems {
			if i > 0 {
				e.sb.WriteString(", ")
			}
			e.emitPattern(el)
		}
		e.sb.WriteString(")")
	case *ir.RecordPattern:
		e.sb.WriteString(pp.TypeName)
		e.sb.WriteString(" { ")
		for i, f := range pp.Fields {
			if i > 0 {
				e.sb.WriteString(", ")
			}
			e.sb.WriteString(f.Name)
			if vp, ok := f.Pattern.(*ir.VariablePattern); !ok || vp.Name != f.Name {
				e.sb.WriteString(": ")
				e.emitPattern(f.Pattern)
			}
		}
		e.sb.WriteString(" }")
	case *ir.VariantPattern:
		e.sb.WriteString(pp.TypeName)
		e.sb.WriteString("::")
		e.sb.WriteString(pp.Tag)
		if pp.Inner != nil {
			e.sb.WriteString("(")
			e.emitPattern(pp.Inner)
			e.sb.WriteString(")")
		}
	case *ir.LiteralPattern:
		e.emitLiteral(pp.Literal)
	default:
		e.errorf(diagnostics.ErrE002, "unsupported pattern kind at emission")
	}
}

func (e *Emitter) emitData(d *ir.Data) {
	switch d.Kind {
	case ir.DataStruct:
		e.sb.WriteString("struct ")
		e.sb.WriteString(d.Name)
		e.writeGenerics(d.Generics)
		e.sb.WriteString(" {\n")
		e.indent++
		for _, f := range d.Fields {
			e.writeIndent()
			e.sb.WriteString("pub ")
			e.sb.WriteString(f.Name)
			e.sb.WriteString(": ")
			e.sb.WriteString(e.typeString(f.Type))
			e.sb.WriteString(",\n")
		}
		e.indent--
		e.sb.WriteString("}")
	case ir.DataEnum:
		e.sb.WriteString("enum ")
		e.sb.WriteString(d.Name)
		e.writeGenerics(d.Generics)
		e.sb.WriteString(" {\n")
		e.indent++
		for _, v := range d.Variants {
			e.writeIndent()
			e.sb.WriteString(v.Name)
			if len(v.Fields) > 0 {
				e.sb.WriteString("(")
				for i, f := range v.Fields {
					if i > 0 {
						e.sb.WriteString(", ")
					}
					e.sb.WriteString(e.typeString(f.Type))
				}
				e.sb.WriteString(")")
			}
			e.sb.WriteString(",\n")
		}
		e.indent--
		e.sb.WriteString("}")
	default:
		e.errorf(diagnostics.ErrE001, "unsupported data kind at emission")
	}
}

func (e *Emitter) writeGenerics(generics []string) {
	if len(generics) == 0 {
		return
	}
	e.sb.WriteString("<")
	for i, g := range generics {
		if i > 0 {
			e.sb.WriteString(", ")
		}
		e.sb.WriteString(g)
	}
	e.sb.WriteString(">")
}

func (e *Emitter) typeString(t ir.Type) string {
	switch ty := t.(type) {
	case nil:
		return "()"
	case *ir.NamedType:
		if len(ty.Args) == 0 {
			return ty.Name
		}
		var parts []string
		for _, a := range ty.Args {
			parts = append(parts, e.typeString(a))
		}
		return ty.Name + "<" + strings.Join(parts, ", ") + ">"
	case *ir.OptionType:
		return "Option<" + e.typeString(ty.Elem) + ">"
	case *ir.ResultType:
		return "Result<" + e.typeString(ty.Ok) + ", " + e.typeString(ty.Err) + ">"
	case *ir.TupleType:
		var parts []string
		for _, el := range ty.Elems {
			parts = append(parts, e.typeString(el))
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case *ir.ArrayType:
		return "[" + e.typeString(ty.Elem) + "]"
	case *ir.ReferenceType:
		s := "&"
		lifetime := ty.Lifetime
		if lifetime == "" {
			lifetime = e.fnLifetime
		}
		if lifetime != "" {
			s += lifetime + " "
		}
		if ty.Mutable {
			s += "mut "
		}
		return s + e.typeString(ty.Elem)
	default:
		return "()"
	}
}

func isStringIrType(t ir.Type) bool {
	nt, ok := t.(*ir.NamedType)
	return ok && (nt.Name == "String" || nt.Name == "str")
}
