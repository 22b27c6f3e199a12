package parser

import (
	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/token"
)

// parsePattern parses the binding-side pattern grammar shared by let, for,
// and match arms: wildcard, variable, literal, tuple, and the two
// destructuring shapes (record-by-field, variant-by-tag).
func (p *Parser) parsePattern() ast.Pattern {
	tok := p.cur()
	switch tok.Type {
	case token.IDENT:
		if tok.Lexeme == "_" {
			p.advance()
			return &ast.WildcardPattern{Sp: tok.Span}
		}
		return p.parseIdentPattern()
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL:
		p.advance()
		lit := literalFromToken(tok)
		return &ast.LiteralPattern{Literal: lit, Sp: tok.Span}
	case token.LPAREN:
		return p.parseTuplePattern()
	default:
		p.errorf(diagnostics.ErrP001, tok.Span, "unexpected token %s in pattern", tok)
		p.advance()
		return &ast.WildcardPattern{Sp: tok.Span}
	}
}

func literalFromToken(tok token.Token) *ast.Literal {
	switch tok.Type {
	case token.INT:
		lit, err := parseIntLiteral(tok.Lexeme, tok.Span)
		if err != nil {
			return &ast.Literal{Kind: ast.LitInt, Sp: tok.Span}
		}
		return lit
	case token.FLOAT:
		lit, err := parseFloatLiteral(tok.Lexeme, tok.Span)
		if err != nil {
			return &ast.Literal{Kind: ast.LitFloat, Sp: tok.Span}
		}
		return lit
	case token.STRING:
		return &ast.Literal{Kind: ast.LitString, Str: tok.Lexeme, Sp: tok.Span}
	case token.TRUE:
		return &ast.Literal{Kind: ast.LitBool, Bool: true, Sp: tok.Span}
	case token.FALSE:
		return &ast.Literal{Kind: ast.LitBool, Bool: false, Sp: tok.Span}
	default:
		return &ast.Literal{Kind: ast.LitNull, Sp: tok.Span}
	}
}

// parseIdentPattern disambiguates a leading identifier into a plain variable
// binding, a record destructure (`Name { field, ... }`), or a variant
// destructure (`Name.Tag` or `Name.Tag(inner)`).
func (p *Parser) parseIdentPattern() ast.Pattern {
	start := p.cur().Span
	name := p.advance().Lexeme

	if p.at(token.LBRACE) {
		p.advance()
		var fields []ast.FieldPattern
		for !p.at(token.RBRACE) && !p.atEOF() {
			fname := p.expect(token.IDENT)
			var sub ast.Pattern = &ast.VariablePattern{Name: fname.Lexeme, Sp: fname.Span}
			if p.at(token.COLON) {
				p.advance()
				sub = p.parsePattern()
			}
			fields = append(fields, ast.FieldPattern{Name: fname.Lexeme, Pattern: sub})
			if p.at(token.COMMA) {
				p.advance()
			}
		}
		end := p.expect(token.RBRACE).Span
		return &ast.RecordPattern{TypeName: name, Fields: fields, Sp: token.Span{Start: start.Start, End: end.End}}
	}

	// `Name.Tag` / `Name.Tag(inner)` variant destructure; HRS has no `::`
	// token so variant access reuses `.` like field access.
	if p.at(token.DOT) && isUpper(name) {
		p.advance()
		tag := p.expect(token.IDENT).Lexeme
		var inner ast.Pattern
		end := p.tokens[p.pos-1].Span
		if p.at(token.LPAREN) {
			p.advance()
			inner = p.parsePattern()
			end = p.expect(token.RPAREN).Span
		}
		return &ast.VariantPattern{TypeName: name, Tag: tag, Inner: inner, Sp: token.Span{Start: start.Start, End: end.End}}
	}

	return &ast.VariablePattern{Name: name, Sp: start}
}

func isUpper(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c >= 'A' && c <= 'Z'
}

// parseTuplePattern parses `(p1, p2, ...)`, collapsing the common 2-element
// case to TuplePairPattern.
func (p *Parser) parseTuplePattern() ast.Pattern {
	start := p.expect(token.LPAREN).Span
	var elems []ast.Pattern
	for !p.at(token.RPAREN) && !p.atEOF() {
		elems = append(elems, p.parsePattern())
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	end := p.expect(token.RPAREN).Span
	sp := token.Span{Start: start.Start, End: end.End}
	if len(elems) == 2 {
		return &ast.TuplePairPattern{First: elems[0], Second: elems[1], Sp: sp}
	}
	return &ast.TuplePattern{Elems: elems, Sp: sp}
}
