// Package ast defines the abstract syntax produced by the parser. Nodes are
// plain struct/interface sum types visited with type switches rather than
// double-dispatch visitors: the inference, lowering, and emission passes
// each do a single exhaustive switch over the concrete node kind.
package ast

import "github.com/harmony-labs/highrust/internal/token"

// Node is the base interface satisfied by every AST node.
type Node interface {
	Span() token.Span
}

// Item is a top-level module member. Only *FunctionDef and *DataDef
// participate in inference; the rest are passed through unanalyzed.
type Item interface {
	Node
	itemNode()
}

// Statement is a node that appears inside a Block.
type Statement interface {
	Node
	statementNode()
}

// Expression is a node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Pattern is a node appearing on the binding side of Let/For/Match.
type Pattern interface {
	Node
	patternNode()
}

// Type is a type annotation as written (or left absent) in HRS source.
type Type interface {
	Node
	typeNode()
}

// Module is the root of a parsed source file: an ordered sequence of items.
type Module struct {
	Items []Item
	Sp    token.Span
}

func (m *Module) Span() token.Span { return m.Sp }

// --- Items ---

// ImportStatement is a top-level import; passed through lowering untouched.
type ImportStatement struct {
	Path string
	Sp   token.Span
}

func (n *ImportStatement) Span() token.Span { return n.Sp }
func (n *ImportStatement) itemNode()        {}

// ExportStatement is a top-level export; passed through lowering untouched.
type ExportStatement struct {
	Name string
	Sp   token.Span
}

func (n *ExportStatement) Span() token.Span { return n.Sp }
func (n *ExportStatement) itemNode()        {}

// EmbeddedBlock is a literal target-language block (`rust { ... }`) that is
// never parsed as HRS syntax; its text is emitted verbatim.
type EmbeddedBlock struct {
	Code string
	Sp   token.Span
}

func (n *EmbeddedBlock) Span() token.Span  { return n.Sp }
func (n *EmbeddedBlock) itemNode()         {}
func (n *EmbeddedBlock) statementNode()    {}

// DataKind distinguishes the three shapes a DataDef can take.
type DataKind int

const (
	// DataRecord is a record of named, typed fields.
	DataRecord DataKind = iota
	// DataSum is a tagged sum: a set of named variants, each with its own
	// field list.
	DataSum
	// DataTaggedUnion is a tagged union of (tag, payload-type) pairs.
	DataTaggedUnion
)

// Field is a named, typed member of a record or sum variant.
type Field struct {
	Name string
	Type Type
	Sp   token.Span
}

// Variant is one arm of a DataSum.
type Variant struct {
	Name   string
	Fields []Field
	Sp     token.Span
}

// UnionArm is one (tag, payload-type) pair of a DataTaggedUnion.
type UnionArm struct {
	Tag     string
	Payload Type
	Sp      token.Span
}

// DataDef declares a named, optionally generic data type.
type DataDef struct {
	Name     string
	Generics []string
	Kind     DataKind
	Fields   []Field    // populated when Kind == DataRecord
	Variants []Variant  // populated when Kind == DataSum
	Union    []UnionArm // populated when Kind == DataTaggedUnion
	Sp       token.Span
}

func (n *DataDef) Span() token.Span { return n.Sp }
func (n *DataDef) itemNode()        {}

// Param is a function parameter: a name with an optional declared type.
type Param struct {
	Name string
	Type Type // nil if unannotated
	Sp   token.Span
}

// FunctionDef declares a function: name, ordered parameters, optional
// return type, and a body block.
type FunctionDef struct {
	Name           string
	Params         []Param
	ReturnType     Type // nil if unannotated
	Body           *Block
	Async          bool
	EmbeddedTarget bool // true for `rust fn` — body is raw target text
	Sp             token.Span
}

func (n *FunctionDef) Span() token.Span { return n.Sp }
func (n *FunctionDef) itemNode()        {}

// Block is an ordered sequence of statements.
type Block struct {
	Statements []Statement
	Sp         token.Span
}

func (n *Block) Span() token.Span { return n.Sp }

// --- Statements ---

// LetStatement binds pattern to the value of an expression, with an
// optional declared type.
type LetStatement struct {
	Pattern Pattern
	Value   Expression
	Type    Type // nil if unannotated
	Sp      token.Span
}

func (n *LetStatement) Span() token.Span { return n.Sp }
func (n *LetStatement) statementNode()   {}

// ExprStatement is an expression evaluated for its side effect.
type ExprStatement struct {
	Expr Expression
	Sp   token.Span
}

func (n *ExprStatement) Span() token.Span { return n.Sp }
func (n *ExprStatement) statementNode()   {}

// ReturnStatement returns from the enclosing function, optionally with a
// value.
type ReturnStatement struct {
	Value Expression // nil for a bare `return;`
	Sp    token.Span
}

func (n *ReturnStatement) Span() token.Span { return n.Sp }
func (n *ReturnStatement) statementNode()   {}

// IfStatement is a conditional with an optional else branch.
type IfStatement struct {
	Cond Expression
	Then *Block
	Else *Block // nil if no else branch
	Sp   token.Span
}

func (n *IfStatement) Span() token.Span { return n.Sp }
func (n *IfStatement) statementNode()   {}

// WhileStatement loops while Cond is true.
type WhileStatement struct {
	Cond Expression
	Body *Block
	Sp   token.Span
}

func (n *WhileStatement) Span() token.Span { return n.Sp }
func (n *WhileStatement) statementNode()   {}

// ForStatement iterates Iterable, binding each element to Pattern.
type ForStatement struct {
	Pattern  Pattern
	Iterable Expression
	Body     *Block
	Sp       token.Span
}

func (n *ForStatement) Span() token.Span { return n.Sp }
func (n *ForStatement) statementNode()   {}

// MatchArm is one arm of a match: a pattern, optional guard, and a body
// expression.
type MatchArm struct {
	Pattern Pattern
	Guard   Expression // nil if unguarded
	Body    Expression
	Sp      token.Span
}

// MatchStatement dispatches on Scrutinee's shape.
type MatchStatement struct {
	Scrutinee Expression
	Arms      []MatchArm
	Sp        token.Span
}

func (n *MatchStatement) Span() token.Span { return n.Sp }
func (n *MatchStatement) statementNode()   {}

// TryStatement runs Block, optionally routing a failure into Handler.
type TryStatement struct {
	Block   *Block
	Handler *Block // nil if there is no catch clause
	Sp      token.Span
}

func (n *TryStatement) Span() token.Span { return n.Sp }
func (n *TryStatement) statementNode()   {}
