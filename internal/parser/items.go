package parser

import (
	"github.com/harmony-labs/highrust/internal/ast"
	"github.com/harmony-labs/highrust/internal/diagnostics"
	"github.com/harmony-labs/highrust/internal/token"
)

// parseItem parses one top-level module member. Returns nil on unrecoverable
// input; the caller skips a token and resumes.
func (p *Parser) parseItem() ast.Item {
	switch p.cur().Type {
	case token.IMPORT:
		return p.parseImport()
	case token.EXPORT:
		return p.parseExport()
	case token.DATA, token.RECORD:
		return p.parseDataRecord()
	case token.ENUM:
		return p.parseDataSum()
	case token.UNION:
		return p.parseDataUnion()
	case token.RUST:
		return p.parseEmbeddedItem()
	case token.ASYNC, token.FN:
		return p.parseFunction()
	default:
		p.errorf(diagnostics.ErrP001, p.cur().Span, "unexpected token %s at top level", p.cur())
		return nil
	}
}

// parseImport parses `import "path";`.
func (p *Parser) parseImport() ast.Item {
	start := p.cur().Span
	p.advance() // import
	pathTok := p.expect(token.STRING)
	end := pathTok.Span
	if p.at(token.SEMICOLON) {
		end = p.advance().Span
	}
	return &ast.ImportStatement{Path: pathTok.Lexeme, Sp: token.Span{Start: start.Start, End: end.End}}
}

// parseExport parses `export name;`.
func (p *Parser) parseExport() ast.Item {
	start := p.cur().Span
	p.advance() // export
	nameTok := p.expect(token.IDENT)
	end := nameTok.Span
	if p.at(token.SEMICOLON) {
		end = p.advance().Span
	}
	return &ast.ExportStatement{Name: nameTok.Lexeme, Sp: token.Span{Start: start.Start, End: end.End}}
}

// parseEmbeddedItem parses either `rust { <raw text> }` (a verbatim block) or
// `rust fn name(params) -> RetType { <raw body> }` (a function whose body is
// emitted verbatim rather than lowered).
func (p *Parser) parseEmbeddedItem() ast.Item {
	start := p.cur().Span
	p.advance() // rust
	if p.at(token.LBRACE) {
		raw, sp := p.parseBraceDelimitedRaw()
		return &ast.EmbeddedBlock{Code: raw, Sp: token.Span{Start: start.Start, End: sp.End}}
	}
	fn := p.parseFunctionSignature(start)
	fn.EmbeddedTarget = true
	raw, sp := p.parseBraceDelimitedRaw()
	fn.Body = &ast.Block{Sp: sp}
	fn.Sp = token.Span{Start: start.Start, End: sp.End}
	// Stash the raw body text as a single embedded statement so the
	// lowering/emission stages can treat EmbeddedTarget bodies uniformly
	// with EmbeddedBlock items.
	fn.Body.Statements = []ast.Statement{&ast.EmbeddedBlock{Code: raw, Sp: sp}}
	return fn
}

// parseFunctionSignature parses the `fn name(params) (-> RetType)?` header
// shared by ordinary and embedded-target functions, without consuming the
// body.
func (p *Parser) parseFunctionSignature(start token.Span) *ast.FunctionDef {
	async := false
	if p.at(token.ASYNC) {
		async = true
		p.advance()
	}
	p.expect(token.FN)
	nameTok := p.expect(token.IDENT)
	// An explicit `<'x, 'y>` lifetime-parameter list is accepted but not
	// retained: the signature's lifetimes are re-collected from its
	// parameter and return types during inference, in first-seen order.
	if p.at(token.LT) {
		p.advance()
		for !p.at(token.GT) && !p.atEOF() {
			p.advance()
		}
		p.expect(token.GT)
	}
	p.expect(token.LPAREN)
	var params []ast.Param
	for !p.at(token.RPAREN) && !p.atEOF() {
		pstart := p.cur().Span
		pname := p.expect(token.IDENT)
		var ptype ast.Type
		if p.at(token.COLON) {
			p.advance()
			ptype = p.parseType()
		}
		params = append(params, ast.Param{Name: pname.Lexeme, Type: ptype, Sp: token.Span{Start: pstart.Start, End: p.cur().Span.Start}})
		if p.at(token.COMMA) {
			p.advance()
		} else {
			break
		}
	}
	p.expect(token.RPAREN)
	var ret ast.Type
	if p.at(token.ARROW) {
		p.advance()
		ret = p.parseType()
	}
	return &ast.FunctionDef{
		Name:       nameTok.Lexeme,
		Params:     params,
		ReturnType: ret,
		Async:      async,
		Sp:         start,
	}
}

// parseFunction parses a plain `(async)? fn name(params) (-> RetType)? { body }`.
func (p *Parser) parseFunction() ast.Item {
	start := p.cur().Span
	fn := p.parseFunctionSignature(start)
	body := p.parseBlock()
	fn.Body = body
	fn.Sp = token.Span{Start: start.Start, End: body.Sp.End}
	return fn
}

func (p *Parser) parseGenerics() []string {
	if !p.at(token.LT) {
		return nil
	}
	p.advance()
	var names []string
	for !p.at(token.GT) && !p.atEOF() {
		names = append(names, p.expect(token.IDENT).Lexeme)
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.GT)
	return names
}

func (p *Parser) parseFieldList() []ast.Field {
	p.expect(token.LBRACE)
	var fields []ast.Field
	for !p.at(token.RBRACE) && !p.atEOF() {
		fstart := p.cur().Span
		name := p.expect(token.IDENT)
		p.expect(token.COLON)
		typ := p.parseType()
		fields = append(fields, ast.Field{Name: name.Lexeme, Type: typ, Sp: token.Span{Start: fstart.Start, End: p.cur().Span.Start}})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return fields
}

// parseDataRecord parses `data Name<Generics> { field: Type, ... }`.
func (p *Parser) parseDataRecord() ast.Item {
	start := p.cur().Span
	p.advance() // data | record
	name := p.expect(token.IDENT)
	generics := p.parseGenerics()
	fields := p.parseFieldList()
	return &ast.DataDef{
		Name:     name.Lexeme,
		Generics: generics,
		Kind:     ast.DataRecord,
		Fields:   fields,
		Sp:       token.Span{Start: start.Start, End: p.tokens[p.pos-1].Span.End},
	}
}

// parseDataSum parses `enum Name<Generics> { Variant1 { fields }, Variant2, ... }`.
func (p *Parser) parseDataSum() ast.Item {
	start := p.cur().Span
	p.advance() // enum
	name := p.expect(token.IDENT)
	generics := p.parseGenerics()
	p.expect(token.LBRACE)
	var variants []ast.Variant
	for !p.at(token.RBRACE) && !p.atEOF() {
		vstart := p.cur().Span
		vname := p.expect(token.IDENT)
		var fields []ast.Field
		if p.at(token.LBRACE) {
			fields = p.parseFieldList()
		}
		variants = append(variants, ast.Variant{Name: vname.Lexeme, Fields: fields, Sp: token.Span{Start: vstart.Start, End: p.tokens[p.pos-1].Span.End}})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return &ast.DataDef{
		Name:     name.Lexeme,
		Generics: generics,
		Kind:     ast.DataSum,
		Variants: variants,
		Sp:       token.Span{Start: start.Start, End: p.tokens[p.pos-1].Span.End},
	}
}

// parseDataUnion parses `union Name { Tag1(Type1), Tag2(Type2), ... }`.
func (p *Parser) parseDataUnion() ast.Item {
	start := p.cur().Span
	p.advance() // union
	name := p.expect(token.IDENT)
	generics := p.parseGenerics()
	p.expect(token.LBRACE)
	var arms []ast.UnionArm
	for !p.at(token.RBRACE) && !p.atEOF() {
		astart := p.cur().Span
		tag := p.expect(token.IDENT)
		p.expect(token.LPAREN)
		payload := p.parseType()
		p.expect(token.RPAREN)
		arms = append(arms, ast.UnionArm{Tag: tag.Lexeme, Payload: payload, Sp: token.Span{Start: astart.Start, End: p.tokens[p.pos-1].Span.End}})
		if p.at(token.COMMA) {
			p.advance()
		}
	}
	p.expect(token.RBRACE)
	return &ast.DataDef{
		Name:     name.Lexeme,
		Generics: generics,
		Kind:     ast.DataTaggedUnion,
		Union:    arms,
		Sp:       token.Span{Start: start.Start, End: p.tokens[p.pos-1].Span.End},
	}
}
