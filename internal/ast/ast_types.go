package ast

import "github.com/harmony-labs/highrust/internal/token"

// --- Patterns ---

// WildcardPattern matches anything and binds nothing (`_`).
type WildcardPattern struct {
	Sp token.Span
}

func (n *WildcardPattern) Span() token.Span { return n.Sp }
func (n *WildcardPattern) patternNode()     {}

// VariablePattern binds the matched value to Name.
type VariablePattern struct {
	Name string
	Sp   token.Span
}

func (n *VariablePattern) Span() token.Span { return n.Sp }
func (n *VariablePattern) patternNode()     {}

// TuplePattern destructures a tuple of arbitrary arity.
type TuplePattern struct {
	Elems []Pattern
	Sp    token.Span
}

func (n *TuplePattern) Span() token.Span { return n.Sp }
func (n *TuplePattern) patternNode()     {}

// TuplePairPattern destructures exactly a 2-tuple. The parser produces it
// for every two-element tuple pattern `(a, b)`; lowering turns it into a
// two-element ir.TuplePattern.
type TuplePairPattern struct {
	First  Pattern
	Second Pattern
	Sp     token.Span
}

func (n *TuplePairPattern) Span() token.Span { return n.Sp }
func (n *TuplePairPattern) patternNode()     {}

// FieldPattern is one (name, sub-pattern) pair inside a RecordPattern.
type FieldPattern struct {
	Name    string
	Pattern Pattern
}

// RecordPattern destructures a named record type by field.
type RecordPattern struct {
	TypeName string
	Fields   []FieldPattern
	Sp       token.Span
}

func (n *RecordPattern) Span() token.Span { return n.Sp }
func (n *RecordPattern) patternNode()     {}

// VariantPattern matches a tagged-sum variant, optionally destructuring its
// payload.
type VariantPattern struct {
	TypeName string
	Tag      string
	Inner    Pattern // nil for a payload-less variant
	Sp       token.Span
}

func (n *VariantPattern) Span() token.Span { return n.Sp }
func (n *VariantPattern) patternNode()     {}

// LiteralPattern matches an exact literal value.
type LiteralPattern struct {
	Literal *Literal
	Sp      token.Span
}

func (n *LiteralPattern) Span() token.Span { return n.Sp }
func (n *LiteralPattern) patternNode()     {}

// --- Types ---

// NamedType is a named type with optional type arguments, e.g. `Foo`,
// `Vec<T>`.
type NamedType struct {
	Name string
	Args []Type
	Sp   token.Span
}

func (n *NamedType) Span() token.Span { return n.Sp }
func (n *NamedType) typeNode()        {}

// OptionType is `Option<T>`.
type OptionType struct {
	Elem Type
	Sp   token.Span
}

func (n *OptionType) Span() token.Span { return n.Sp }
func (n *OptionType) typeNode()        {}

// ResultType is `Result<T, E>`.
type ResultType struct {
	Ok  Type
	Err Type
	Sp  token.Span
}

func (n *ResultType) Span() token.Span { return n.Sp }
func (n *ResultType) typeNode()        {}

// TupleType is a fixed-arity tuple of element types.
type TupleType struct {
	Elems []Type
	Sp    token.Span
}

func (n *TupleType) Span() token.Span { return n.Sp }
func (n *TupleType) typeNode()        {}

// ArrayType is a homogeneous sequence type.
type ArrayType struct {
	Elem Type
	Sp   token.Span
}

func (n *ArrayType) Span() token.Span { return n.Sp }
func (n *ArrayType) typeNode()        {}

// ReferenceType is `&T` or `&'a T`, with an optional explicit lifetime name
// (empty string means the lifetime, if any, must be inferred).
type ReferenceType struct {
	Elem     Type
	Lifetime string
	Mutable  bool
	Sp       token.Span
}

func (n *ReferenceType) Span() token.Span { return n.Sp }
func (n *ReferenceType) typeNode()        {}
