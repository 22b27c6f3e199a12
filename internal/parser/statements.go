package parser

import (
	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/token"
)

// parseBlock parses `{ statement* }`.
func (p *Parser) parseBlock() *ast.Block {
	start := p.expect(token.LBRACE).Span
	var stmts []ast.Statement
	for !p.at(token.RBRACE) && !p.atEOF() {
		stmts = append(stmts, p.parseStatement())
	}
	end := p.expect(token.RBRACE).Span
	return &ast.Block{Statements: stmts, Sp: token.Span{Start: start.Start, End: end.End}}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.LET:
		return p.parseLetStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.MATCH:
		return p.parseMatchStatement()
	case token.TRY:
		return p.parseTryStatement()
	case token.RUST:
		start := p.cur().Span
		p.advance()
		raw, sp := p.parseBraceDelimitedRaw()
		return &ast.EmbeddedBlock{Code: raw, Sp: token.Span{Start: start.Start, End: sp.End}}
	default:
		return p.parseExprStatement()
	}
}

// parseLetStatement parses `let pattern (: Type)? = expr;`.
func (p *Parser) parseLetStatement() ast.Statement {
	start := p.cur().Span
	p.advance() // let
	pat := p.parsePattern()
	var typ ast.Type
	if p.at(token.COLON) {
		p.advance()
		typ = p.parseType()
	}
	p.expect(token.ASSIGN)
	value := p.parseExpression(LOWEST)
	end := p.cur().Span
	if p.at(token.SEMICOLON) {
		end = p.advance().Span
	}
	return &ast.LetStatement{Pattern: pat, Value: value, Type: typ, Sp: token.Span{Start: start.Start, End: end.End}}
}

// parseReturnStatement parses `return expr?;`.
func (p *Parser) parseReturnStatement() ast.Statement {
	start := p.cur().Span
	p.advance() // return
	var value ast.Expression
	if !p.at(token.SEMICOLON) && !p.at(token.RBRACE) {
		value = p.parseExpression(LOWEST)
	}
	end := p.cur().Span
	if p.at(token.SEMICOLON) {
		end = p.advance().Span
	}
	return &ast.ReturnStatement{Value: value, Sp: token.Span{Start: start.Start, End: end.End}}
}

// parseIfStatement parses `if cond { } (else { })?`.
func (p *Parser) parseIfStatement() ast.Statement {
	start := p.cur().Span
	p.advance() // if
	cond := p.parseExpression(LOWEST)
	then := p.parseBlock()
	var els *ast.Block
	end := then.Sp
	if p.at(token.ELSE) {
		p.advance()
		if p.at(token.IF) {
			nested := p.parseIfStatement()
			els = &ast.Block{Statements: []ast.Statement{nested}, Sp: nested.Span()}
		} else {
			els = p.parseBlock()
		}
		end = els.Sp
	}
	return &ast.IfStatement{Cond: cond, Then: then, Else: els, Sp: token.Span{Start: start.Start, End: end.End}}
}

// parseWhileStatement parses `while cond { }`.
func (p *Parser) parseWhileStatement() ast.Statement {
	start := p.cur().Span
	p.advance() // while
	cond := p.parseExpression(LOWEST)
	body := p.parseBlock()
	return &ast.WhileStatement{Cond: cond, Body: body, Sp: token.Span{Start: start.Start, End: body.Sp.End}}
}

// parseForStatement parses `for pattern in iterable { }`.
func (p *Parser) parseForStatement() ast.Statement {
	start := p.cur().Span
	p.advance() // for
	pat := p.parsePattern()
	p.expect(token.IN)
	iterable := p.parseExpression(LOWEST)
	body := p.parseBlock()
	return &ast.ForStatement{Pattern: pat, Iterable: iterable, Body: body, Sp: token.Span{Start: start.Start, End: body.Sp.End}}
}

// parseMatchArms parses the shared `{ pattern (if guard)? => expr, ... }`
// body used by both match-statements and match-expressions.
func (p *Parser) parseMatchArms() []ast.MatchArm {
	p.expect(token.LBRACE)
	var arms []ast.MatchArm
	for !p.at(token.RBRACE) && !p.atEOF() {
		astart := p.cur().Span
		pat := p.parsePattern()
		var guard ast.Expression
		if p.at(token.IF) {
			p.advance()
			guard = p.parseExpression(LOWEST)
		}
		p.expect(token.FATARROW)
		body := p.parseExpression(LOWEST)
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Sp: token.Span{Start: astart.Start, End: p.tokens[p.pos-1].Span.End}})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return arms
}

// parseMatchStatement parses `match scrutinee { arms }` in statement position.
func (p *Parser) parseMatchStatement() ast.Statement {
	start := p.cur().Span
	p.advance() // match
	scrutinee := p.parseExpression(LOWEST)
	arms := p.parseMatchArms()
	return &ast.MatchStatement{Scrutinee: scrutinee, Arms: arms, Sp: token.Span{Start: start.Start, End: p.tokens[p.pos-1].Span.End}}
}

// parseTryStatement parses `try { } (catch { })?`.
func (p *Parser) parseTryStatement() ast.Statement {
	start := p.cur().Span
	p.advance() // try
	block := p.parseBlock()
	var handler *ast.Block
	end := block.Sp
	if p.at(token.CATCH) {
		p.advance()
		handler = p.parseBlock()
		end = handler.Sp
	}
	return &ast.TryStatement{Block: block, Handler: handler, Sp: token.Span{Start: start.Start, End: end.End}}
}

// parseExprStatement parses a bare expression used as a statement, consuming
// a trailing `;` if present (its absence marks a block's trailing value).
func (p *Parser) parseExprStatement() ast.Statement {
	start := p.cur().Span
	expr := p.parseExpression(LOWEST)
	end := expr.Span()
	if p.at(token.SEMICOLON) {
		end = p.advance().Span
	}
	return &ast.ExprStatement{Expr: expr, Sp: token.Span{Start: start.Start, End: end.End}}
}
