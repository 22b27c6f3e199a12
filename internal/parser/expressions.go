package parser

import (
	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/token"
)

// Precedence levels, lowest to highest, following the table fixed in the
// language's binary-operator design: logical or, logical and, equality,
// relational, additive, multiplicative, then the postfix tiers (call, field
// access, propagate).
const (
	LOWEST int = iota
	OR_PREC
	AND_PREC
	EQUALITY
	RELATIONAL
	ADDITIVE
	MULTIPLICATIVE
	POSTFIX
)

var precedences = map[token.Type]int{
	token.OR:       OR_PREC,
	token.AND:      AND_PREC,
	token.EQ:       EQUALITY,
	token.NOT_EQ:   EQUALITY,
	token.LT:       RELATIONAL,
	token.GT:       RELATIONAL,
	token.LE:       RELATIONAL,
	token.GE:       RELATIONAL,
	token.PLUS:     ADDITIVE,
	token.MINUS:    ADDITIVE,
	token.ASTERISK: MULTIPLICATIVE,
	token.SLASH:    MULTIPLICATIVE,
	token.PERCENT:  MULTIPLICATIVE,
	token.LPAREN:   POSTFIX,
	token.DOT:      POSTFIX,
	token.QUESTION: POSTFIX,
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.cur().Type]; ok {
		return prec
	}
	return LOWEST
}

// parseExpression is the Pratt-style entry point: a prefix production
// followed by zero or more infix/postfix productions bound tighter than
// minPrec.
func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	for !p.at(token.SEMICOLON) && minPrec < p.peekPrecedence() {
		switch p.cur().Type {
		case token.LPAREN:
			left = p.parseCall(left)
		case token.DOT:
			left = p.parseFieldAccess(left)
		case token.QUESTION:
			q := p.advance()
			left = &ast.Propagate{Inner: left, Sp: token.Span{Start: left.Span().Start, End: q.Span.End}}
		default:
			left = p.parseInfix(left)
		}
	}
	return left
}

func (p *Parser) parsePrefix() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		lit, err := parseIntLiteral(tok.Lexeme, tok.Span)
		if err != nil {
			p.errorf(diagnostics.ErrP003, tok.Span, "invalid integer literal %q", tok.Lexeme)
			return &ast.Literal{Kind: ast.LitInt, Sp: tok.Span}
		}
		return lit
	case token.FLOAT:
		p.advance()
		lit, err := parseFloatLiteral(tok.Lexeme, tok.Span)
		if err != nil {
			p.errorf(diagnostics.ErrP003, tok.Span, "invalid float literal %q", tok.Lexeme)
			return &ast.Literal{Kind: ast.LitFloat, Sp: tok.Span}
		}
		return lit
	case token.STRING:
		p.advance()
		return &ast.Literal{Kind: ast.LitString, Str: tok.Lexeme, Sp: tok.Span}
	case token.TRUE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Bool: true, Sp: tok.Span}
	case token.FALSE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Bool: false, Sp: tok.Span}
	case token.NULL:
		p.advance()
		return &ast.Literal{Kind: ast.LitNull, Sp: tok.Span}
	case token.IDENT:
		p.advance()
		if tok.Lexeme == "_" {
			return &ast.Wildcard{Sp: tok.Span}
		}
		return &ast.Variable{Name: tok.Lexeme, Sp: tok.Span}
	case token.AWAIT:
		p.advance()
		inner := p.parseExpression(POSTFIX)
		return &ast.AwaitExpr{Inner: inner, Sp: token.Span{Start: tok.Span.Start, End: inner.Span().End}}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression(LOWEST)
		p.expect(token.RPAREN)
		return inner
	case token.LBRACE:
		block := p.parseBlock()
		return &ast.BlockExpr{Block: block, Sp: block.Sp}
	case token.MATCH:
		p.advance()
		scrutinee := p.parseExpression(LOWEST)
		arms := p.parseMatchArms()
		return &ast.MatchExpr{Scrutinee: scrutinee, Arms: arms, Sp: token.Span{Start: tok.Span.Start, End: p.tokens[p.pos-1].Span.End}}
	case token.TRY:
		p.advance()
		block := p.parseBlock()
		var handler *ast.Block
		end := block.Sp
		if p.at(token.CATCH) {
			p.advance()
			handler = p.parseBlock()
			end = handler.Sp
		}
		return &ast.TryExpr{Block: block, Handler: handler, Sp: token.Span{Start: tok.Span.Start, End: end.End}}
	case token.LBRACKET:
		return p.parseComprehension()
	default:
		p.errorf(diagnostics.ErrP001, tok.Span, "unexpected token %s in expression", tok)
		p.advance()
		return &ast.Wildcard{Sp: tok.Span}
	}
}

// parseComprehension parses `[ body for pattern in iterable ]`.
func (p *Parser) parseComprehension() ast.Expression {
	start := p.expect(token.LBRACKET).Span
	body := p.parseExpression(LOWEST)
	p.expect(token.FOR)
	pat := p.parsePattern()
	p.expect(token.IN)
	iterable := p.parseExpression(LOWEST)
	end := p.expect(token.RBRACKET).Span
	return &ast.Comprehension{Pattern: pat, Iterable: iterable, Body: body, Sp: token.Span{Start: start.Start, End: end.End}}
}

func (p *Parser) parseInfix(left ast.Expression) ast.Expression {
	opTok := p.advance()
	prec := precedences[opTok.Type]
	right := p.parseExpression(prec)
	callee := &ast.Variable{Name: binaryOpName(opTok.Type), Sp: opTok.Span}
	return &ast.Call{
		Callee: callee,
		Args:   []ast.Expression{left, right},
		Sp:     token.Span{Start: left.Span().Start, End: right.Span().End},
	}
}

// binaryOpName maps an operator token to the synthetic callee name the
// emitter recognizes as a binary operator application, keeping
// ast.Call as the sole "apply something to arguments" node rather than
// adding a separate BinaryExpr node.
func binaryOpName(t token.Type) string {
	switch t {
	case token.OR:
		return "__or__"
	case token.AND:
		return "__and__"
	case token.EQ:
		return "__eq__"
	case token.NOT_EQ:
		return "__neq__"
	case token.LT:
		return "__lt__"
	case token.GT:
		return "__gt__"
	case token.LE:
		return "__le__"
	case token.GE:
		return "__ge__"
	case token.PLUS:
		return "__add__"
	case token.MINUS:
		return "__sub__"
	case token.ASTERISK:
		return "__mul__"
	case token.SLASH:
		return "__div__"
	case token.PERCENT:
		return "__mod__"
	default:
		return "__unknown__"
	}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	p.expect(token.LPAREN)
	var args []ast.Expression
	for !p.at(token.RPAREN) && !p.atEOF() {
		args = append(args, p.parseExpression(LOWEST))
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	end := p.expect(token.RPAREN).Span
	return &ast.Call{Callee: callee, Args: args, Sp: token.Span{Start: callee.Span().Start, End: end.End}}
}

func (p *Parser) parseFieldAccess(base ast.Expression) ast.Expression {
	p.expect(token.DOT)
	name := p.expect(token.IDENT)
	return &ast.FieldAccess{Base: base, Field: name.Lexeme, Sp: token.Span{Start: base.Span().Start, End: name.Span.End}}
}
