package parser

import (
	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/token"
)

// parseType parses a type annotation: named types with optional generic
// arguments (and the built-in Option<T>/Result<T,E> sugar), tuple types,
// array types, and reference types.
func (p *Parser) parseType() ast.Type {
	start := p.cur().Span

	if p.at(token.AMP) {
		p.advance()
		lifetime := ""
		if p.at(token.LIFETIME) {
			lifetime = p.advance().Lexeme
		}
		mutable := false
		if p.at(token.MUT) {
			mutable = true
			p.advance()
		}
		elem := p.parseType()
		return &ast.ReferenceType{Elem: elem, Lifetime: lifetime, Mutable: mutable, Sp: token.Span{Start: start.Start, End: elem.Span().End}}
	}

	if p.at(token.LBRACKET) {
		p.advance()
		elem := p.parseType()
		end := p.expect(token.RBRACKET).Span
		return &ast.ArrayType{Elem: elem, Sp: token.Span{Start: start.Start, End: end.End}}
	}

	if p.at(token.LPAREN) {
		p.advance()
		var elems []ast.Type
		for !p.at(token.RPAREN) && !p.atEOF() {
			elems = append(elems, p.parseType())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		end := p.expect(token.RPAREN).Span
		return &ast.TupleType{Elems: elems, Sp: token.Span{Start: start.Start, End: end.End}}
	}

	name := p.expect(token.IDENT)
	var args []ast.Type
	end := name.Span
	if p.at(token.LT) {
		p.advance()
		for !p.at(token.GT) && !p.atEOF() {
			args = append(args, p.parseType())
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		end = p.expect(token.GT).Span
	}
	sp := token.Span{Start: start.Start, End: end.End}

	switch name.Lexeme {
	case "Option":
		if len(args) == 1 {
			return &ast.OptionType{Elem: args[0], Sp: sp}
		}
	case "Result":
		if len(args) == 2 {
			return &ast.ResultType{Ok: args[0], Err: args[1], Sp: sp}
		}
	}
	return &ast.NamedType{Name: name.Lexeme, Args: args, Sp: sp}
}
