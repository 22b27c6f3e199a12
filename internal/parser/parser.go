// Package parser turns a token stream into an ast.Module via recursive
// descent with Pratt-style expression parsing, split one file per
// syntactic concern around a shared Parser struct threading current/peek
// token state.
package parser

import (
	"fmt"
	"strconv"

	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/token"
)

// Parser consumes a pre-scanned token.Token slice and builds an ast.Module.
// It also keeps the original source text so that embedded target-language
// blocks (`rust { ... }`) can be recovered verbatim by byte span rather than
// reconstructed from tokens.
type Parser struct {
	tokens []token.Token
	source string
	pos    int

	errors []*diagnostics.DiagnosticError
}

// New creates a Parser over a complete token stream (as produced by
// lexer.LexerProcessor, ending in token.EOF) and the source text it was
// scanned from.
func New(tokens []token.Token, source string) *Parser {
	if len(tokens) == 0 {
		tokens = []token.Token{{Type: token.EOF}}
	}
	return &Parser{tokens: tokens, source: source}
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(t token.Type) bool {
	return p.cur().Type == t
}

func (p *Parser) atEOF() bool {
	return p.cur().Type == token.EOF
}

// expect consumes the current token if it matches t, else records a parse
// error anchored at the offending token and returns the zero Token.
func (p *Parser) expect(t token.Type) token.Token {
	if p.at(t) {
		return p.advance()
	}
	p.errorf(diagnostics.ErrP001, p.cur().Span, "unexpected token %s, expected %s", p.cur(), t)
	return token.Token{}
}

func (p *Parser) errorf(code string, span token.Span, format string, args ...interface{}) {
	p.errors = append(p.errors, diagnostics.NewError(code, span, fmt.Sprintf(format, args...)))
}

// Errors returns every parse error recorded so far.
func (p *Parser) Errors() []*diagnostics.DiagnosticError {
	return p.errors
}

// ParseModule parses a complete source file.
func (p *Parser) ParseModule() *ast.Module {
	start := p.cur().Span
	var items []ast.Item
	for !p.atEOF() {
		item := p.parseItem()
		if item != nil {
			items = append(items, item)
		} else {
			// Avoid an infinite loop on unparseable input: skip the token
			// that stalled us.
			p.advance()
		}
	}
	end := start
	if len(items) > 0 {
		end = items[len(items)-1].Span()
	}
	return &ast.Module{Items: items, Sp: token.Span{Start: start.Start, End: end.End}}
}

func parseIntLiteral(lexeme string, sp token.Span) (*ast.Literal, error) {
	v, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return nil, err
	}
	return &ast.Literal{Kind: ast.LitInt, Int: v, Sp: sp}, nil
}

func parseFloatLiteral(lexeme string, sp token.Span) (*ast.Literal, error) {
	v, err := strconv.ParseFloat(lexeme, 64)
	if err != nil {
		return nil, err
	}
	return &ast.Literal{Kind: ast.LitFloat, Float: v, Sp: sp}, nil
}

// parseBraceDelimitedRaw expects the current token to be LBRACE. It consumes
// tokens (tracking nested brace depth, not their syntactic shape) up to and
// including the matching RBRACE, then returns the exact source text that lay
// between the two braces. This is how `rust { ... }` embedded blocks and
// `rust fn` bodies recover raw target-language text even though the whole
// file was tokenized uniformly by the HRS lexer.
func (p *Parser) parseBraceDelimitedRaw() (string, token.Span) {
	open := p.expect(token.LBRACE)
	depth := 1
	innerStart := p.cur().Span.Start
	innerEnd := innerStart
	for depth > 0 && !p.atEOF() {
		switch p.cur().Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			depth--
			if depth == 0 {
				innerEnd = p.cur().Span.Start
				p.advance() // consume the matching closing brace
				raw := p.source[innerStart:innerEnd]
				return raw, token.Span{Start: open.Span.Start, End: innerEnd}
			}
		}
		p.advance()
	}
	innerEnd = p.cur().Span.Start
	return p.source[innerStart:innerEnd], token.Span{Start: open.Span.Start, End: innerEnd}
}
