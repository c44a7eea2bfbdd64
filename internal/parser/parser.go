// Package parser builds an ast.Program from P4 source text.
//
// Like internal/lexer, this is an explicitly best-effort subset parser
// for cmd/p4sema's end-to-end path, not a conformant P4 grammar
// implementation — it covers the declaration and statement forms the
// semantic pipeline's passes (inject, scopehier, namebind, decltype,
// potype, typeselect) actually consume, and fails with a diagnostic on
// anything else rather than guessing.
//
// Grounded on cue/parser's recursive-descent, one-token-of-lookahead
// shape (a parser struct holding the current token plus helpers like
// expect/accept), adapted here to tokenize the whole file upfront into
// a slice (cue/parser instead re-scans from a single Scanner): P4's
// "type name;" vs "name = expr;" vs "Type(args) name;" ambiguity needs
// backtracking lookahead that is far simpler to express as an index
// save/restore over a slice than as a rune-scanner checkpoint.
package parser

import (
	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/diag"
	"github.com/dfrunza/ashp4c-go/internal/lexer"
	"github.com/dfrunza/ashp4c-go/token"
)

type tokItem struct {
	pos token.Position
	tok lexer.Token
	lit string
}

// Parser recursive-descends over a pre-scanned token slice.
type Parser struct {
	toks  []tokItem
	idx   int
	diags diag.List
}

// Parse scans and parses src as filename, returning the resulting
// Program (valid as far as parsing got) and any diagnostics.
func Parse(filename string, src []byte) (*ast.Program, diag.List) {
	l := lexer.New(filename, src)
	var toks []tokItem
	for {
		pos, tok, lit := l.Scan()
		toks = append(toks, tokItem{pos, tok, lit})
		if tok == lexer.EOF {
			break
		}
	}
	p := &Parser{toks: toks}
	prog := p.parseProgram()
	return prog, p.diags
}

func (p *Parser) cur() tokItem { return p.toks[p.idx] }

func (p *Parser) advance() tokItem {
	t := p.cur()
	if p.idx < len(p.toks)-1 {
		p.idx++
	}
	return t
}

func (p *Parser) at(tok lexer.Token) bool { return p.cur().tok == tok }

func (p *Parser) accept(tok lexer.Token) bool {
	if p.at(tok) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(tok lexer.Token) tokItem {
	if !p.at(tok) {
		p.errorf(p.cur().pos, "expected %s, found %s", tok, p.cur().tok)
		return p.cur()
	}
	return p.advance()
}

func (p *Parser) errorf(pos token.Position, format string, args ...interface{}) {
	p.diags.Add(diag.Newf(pos, diag.SyntaxError, format, args...))
}

// skipToSemiOrBrace discards tokens up to and including the next ';'
// (or a matching '}' close) so a single malformed declaration doesn't
// cascade into spurious diagnostics for the rest of the file.
func (p *Parser) skipToSemiOrBrace() {
	depth := 0
	for {
		switch p.cur().tok {
		case lexer.EOF:
			return
		case lexer.LBRACE:
			depth++
		case lexer.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		case lexer.SEMI:
			if depth == 0 {
				p.advance()
				return
			}
		}
		p.advance()
	}
}

func clampIdx(i, n int) int {
	if i >= n {
		return n - 1
	}
	return i
}

func (p *Parser) parseProgram() *ast.Program {
	var decls []ast.Decl
	for !p.at(lexer.EOF) {
		before := p.idx
		d := p.parseTopDecl()
		if d != nil {
			decls = append(decls, d)
		}
		if p.idx == before {
			p.errorf(p.cur().pos, "unexpected %s", p.cur().tok)
			p.advance()
		}
	}
	prog := &ast.Program{Decls: decls}
	return prog
}

func (p *Parser) parseName() *ast.Name {
	t := p.expect(lexer.IDENT)
	n := &ast.Name{Value: t.lit}
	n.SetPos(t.pos)
	return n
}

func (p *Parser) parseIdent() *ast.Ident {
	t := p.expect(lexer.IDENT)
	n := &ast.Ident{Value: t.lit}
	n.SetPos(t.pos)
	return n
}

func (p *Parser) parseTopDecl() ast.Decl {
	switch p.cur().tok {
	case lexer.KW_CONST:
		return p.parseVariableDecl(true)
	case lexer.KW_STRUCT:
		return p.parseRecordDecl(ast.RecordStruct)
	case lexer.KW_HEADER:
		return p.parseRecordDecl(ast.RecordHeader)
	case lexer.KW_HEADER_UNION:
		return p.parseRecordDecl(ast.RecordHeaderUnion)
	case lexer.KW_TYPEDEF:
		return p.parseTypedef()
	case lexer.KW_ENUM:
		return p.parseEnumDecl()
	case lexer.KW_ERROR:
		return p.parseErrorDecl()
	case lexer.KW_MATCH_KIND:
		return p.parseMatchKindDecl()
	case lexer.KW_ACTION:
		return p.parseActionDecl()
	case lexer.KW_CONTROL:
		return p.parseControlDecl()
	case lexer.KW_PARSER:
		return p.parseParserDecl()
	case lexer.KW_PACKAGE:
		return p.parsePackageTypeDecl()
	case lexer.KW_EXTERN:
		return p.parseExternTypeDecl()
	case lexer.KW_TABLE:
		return p.parseTableDecl()
	case lexer.SEMI:
		p.advance()
		return nil
	default:
		return p.parseTypeLedDecl()
	}
}

// parseRecordDecl parses struct/header/header_union, sharing one body
// shape across the three.
func (p *Parser) parseRecordDecl(kind ast.RecordKind) ast.Decl {
	pos := p.advance().pos // consume the keyword
	name := p.parseName()
	p.expect(lexer.LBRACE)
	var fields []*ast.StructField
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		fpos := p.cur().pos
		ty := p.parseTypeRef()
		fname := p.parseName()
		p.expect(lexer.SEMI)
		f := &ast.StructField{Type: ty, Name: fname}
		f.SetPos(fpos)
		fields = append(fields, f)
	}
	p.expect(lexer.RBRACE)
	d := &ast.RecordTypeDecl{Kind: kind, Name: name, Fields: fields}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseTypedef() ast.Decl {
	pos := p.advance().pos
	ref := p.parseTypeRef()
	name := p.parseName()
	p.expect(lexer.SEMI)
	d := &ast.TypedefDecl{Ref: ref, Name: name}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseEnumDecl() ast.Decl {
	pos := p.advance().pos
	var sizeType ast.TypeRef
	if p.at(lexer.KW_BIT) {
		sizeType = p.parseTypeRef()
	}
	name := p.parseName()
	p.expect(lexer.LBRACE)
	var idents []*ast.SpecifiedIdentifier
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		ipos := p.cur().pos
		n := p.parseName()
		var init ast.Expr
		if p.accept(lexer.ASSIGN) {
			init = p.parseExpr()
		}
		si := &ast.SpecifiedIdentifier{Name: n, Init: init}
		si.SetPos(ipos)
		idents = append(idents, si)
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RBRACE)
	d := &ast.EnumDecl{Name: name, SizeType: sizeType, Identifiers: idents}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseNameList() []*ast.Name {
	var names []*ast.Name
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		names = append(names, p.parseName())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	return names
}

func (p *Parser) parseErrorDecl() ast.Decl {
	pos := p.advance().pos
	p.expect(lexer.LBRACE)
	names := p.parseNameList()
	p.expect(lexer.RBRACE)
	d := &ast.ErrorDecl{Identifiers: names}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseMatchKindDecl() ast.Decl {
	pos := p.advance().pos
	p.expect(lexer.LBRACE)
	names := p.parseNameList()
	p.expect(lexer.RBRACE)
	d := &ast.MatchKindDecl{Identifiers: names}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseParams() []*ast.Parameter {
	p.expect(lexer.LPAREN)
	var params []*ast.Parameter
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		params = append(params, p.parseParam())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return params
}

func (p *Parser) parseParam() *ast.Parameter {
	pos := p.cur().pos
	dir := ast.DirNone
	switch p.cur().tok {
	case lexer.KW_IN:
		dir = ast.DirIn
		p.advance()
	case lexer.KW_OUT:
		dir = ast.DirOut
		p.advance()
	case lexer.KW_INOUT:
		dir = ast.DirInOut
		p.advance()
	}
	ty := p.parseTypeRef()
	name := p.parseName()
	var init ast.Expr
	if p.accept(lexer.ASSIGN) {
		init = p.parseExpr()
	}
	param := &ast.Parameter{Direction: dir, Type: ty, Name: name, Init: init}
	param.SetPos(pos)
	return param
}

func (p *Parser) parseMethodProtos() []*ast.FunctionPrototype {
	p.expect(lexer.LBRACE)
	var protos []*ast.FunctionPrototype
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		protos = append(protos, p.parseFunctionPrototype())
	}
	p.expect(lexer.RBRACE)
	return protos
}

func (p *Parser) parseFunctionPrototype() *ast.FunctionPrototype {
	pos := p.cur().pos
	var ret ast.TypeRef
	if !(p.at(lexer.IDENT) && p.isCtorProtoLookahead()) {
		ret = p.parseTypeRef()
	}
	name := p.parseName()
	params := p.parseParams()
	p.expect(lexer.SEMI)
	proto := &ast.FunctionPrototype{ReturnType: ret, Name: name, Params: params}
	proto.SetPos(pos)
	return proto
}

// isCtorProtoLookahead reports whether the current IDENT is a bare
// constructor prototype name (IDENT directly followed by '(' with no
// return type) rather than a return-type-led prototype.
func (p *Parser) isCtorProtoLookahead() bool {
	return p.toks[clampIdx(p.idx+1, len(p.toks))].tok == lexer.LPAREN
}

func (p *Parser) parseActionDecl() ast.Decl {
	pos := p.advance().pos
	name := p.parseName()
	params := p.parseParams()
	body := p.parseBlock()
	d := &ast.ActionDecl{Name: name, Params: params, Body: body}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseParserDecl() ast.Decl {
	pos := p.advance().pos
	name := p.parseName()
	params := p.parseParams()
	proto := &ast.ParserTypeDecl{Name: name, Params: params}
	proto.SetPos(pos)
	if p.accept(lexer.SEMI) {
		// a bare parser type declaration, no body.
		return proto
	}
	var ctorParams []*ast.Parameter
	if p.at(lexer.LPAREN) {
		ctorParams = p.parseParams()
	}
	p.expect(lexer.LBRACE)
	var locals []ast.Decl
	var states []*ast.ParserState
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.at(lexer.KW_STATE) {
			states = append(states, p.parseParserState())
			continue
		}
		before := p.idx
		d := p.parseTypeLedDecl()
		if d != nil {
			locals = append(locals, d)
		}
		if p.idx == before {
			p.errorf(p.cur().pos, "unexpected %s in parser body", p.cur().tok)
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	d := &ast.ParserDecl{Proto: proto, CtorParams: ctorParams, Locals: locals, States: states}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseParserState() *ast.ParserState {
	pos := p.advance().pos // consume "state"
	name := p.parseName()
	p.expect(lexer.LBRACE)
	var stmts []ast.Stmt
	var transition *ast.TransitionStmt
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.at(lexer.KW_TRANSITION) {
			transition = p.parseTransitionStmt()
			continue
		}
		stmts = append(stmts, p.parseStmt())
	}
	p.expect(lexer.RBRACE)
	s := &ast.ParserState{Name: name, Statements: stmts, Transition: transition}
	s.SetPos(pos)
	return s
}

func (p *Parser) parseTransitionStmt() *ast.TransitionStmt {
	pos := p.advance().pos // consume "transition"
	var target ast.Expr
	if p.at(lexer.KW_SELECT) {
		target = p.parseSelectExpr()
	} else {
		target = p.parseIdent()
	}
	p.expect(lexer.SEMI)
	t := &ast.TransitionStmt{Target: target}
	t.SetPos(pos)
	return t
}

func (p *Parser) parseSelectExpr() ast.Expr {
	pos := p.advance().pos // consume "select"
	p.expect(lexer.LPAREN)
	var exprs []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		exprs = append(exprs, p.parseExpr())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	var cases []*ast.SelectCase
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		cpos := p.cur().pos
		keyset := p.parseKeysetExpr()
		p.expect(lexer.COLON)
		state := p.parseIdent()
		p.expect(lexer.SEMI)
		c := &ast.SelectCase{Keyset: keyset, State: state}
		c.SetPos(cpos)
		cases = append(cases, c)
	}
	p.expect(lexer.RBRACE)
	e := &ast.SelectExpr{Exprs: exprs, Cases: cases}
	e.SetPos(pos)
	return e
}

func (p *Parser) parseKeysetExpr() ast.Expr {
	pos := p.cur().pos
	switch p.cur().tok {
	case lexer.KW_DEFAULT:
		p.advance()
		d := &ast.DefaultExpr{}
		d.SetPos(pos)
		return d
	case lexer.IDENT:
		if p.cur().lit == "_" {
			p.advance()
			d := &ast.Dontcare{}
			d.SetPos(pos)
			return d
		}
	case lexer.LPAREN:
		p.advance()
		var exprs []ast.Expr
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			exprs = append(exprs, p.parseExpr())
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN)
		tk := &ast.TupleKeysetExpr{Exprs: exprs}
		tk.SetPos(pos)
		return tk
	}
	return p.parseExpr()
}

func (p *Parser) parseControlDecl() ast.Decl {
	pos := p.advance().pos
	name := p.parseName()
	params := p.parseParams()
	proto := &ast.ControlTypeDecl{Name: name, Params: params}
	proto.SetPos(pos)
	if p.accept(lexer.SEMI) {
		return proto
	}
	var ctorParams []*ast.Parameter
	if p.at(lexer.LPAREN) {
		ctorParams = p.parseParams()
	}
	p.expect(lexer.LBRACE)
	var locals []ast.Decl
	var apply *ast.BlockStmt
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		if p.at(lexer.KW_APPLY) {
			p.advance()
			apply = p.parseBlock()
			continue
		}
		before := p.idx
		var d ast.Decl
		switch {
		case p.at(lexer.KW_ACTION):
			d = p.parseActionDecl()
		case p.at(lexer.KW_TABLE):
			d = p.parseTableDecl()
		default:
			d = p.parseTypeLedDecl()
		}
		if d != nil {
			locals = append(locals, d)
		}
		if p.idx == before {
			p.errorf(p.cur().pos, "unexpected %s in control body", p.cur().tok)
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	d := &ast.ControlDecl{Proto: proto, CtorParams: ctorParams, Locals: locals, Apply: apply}
	d.SetPos(pos)
	return d
}

func (p *Parser) parsePackageTypeDecl() ast.Decl {
	pos := p.advance().pos
	name := p.parseName()
	params := p.parseParams()
	p.expect(lexer.SEMI)
	d := &ast.PackageTypeDecl{Name: name, Params: params}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseExternTypeDecl() ast.Decl {
	pos := p.advance().pos
	name := p.parseName()
	protos := p.parseMethodProtos()
	d := &ast.ExternTypeDecl{Name: name, MethodProtos: protos}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseTableDecl() ast.Decl {
	pos := p.advance().pos
	name := p.parseName()
	p.expect(lexer.LBRACE)
	var props []ast.TableProperty
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		props = append(props, p.parseTableProperty())
	}
	p.expect(lexer.RBRACE)
	d := &ast.TableDecl{Name: name, Properties: props}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseTableProperty() ast.TableProperty {
	pos := p.cur().pos
	isConst := p.accept(lexer.KW_CONST)
	switch {
	case p.cur().tok == lexer.IDENT && p.cur().lit == "key":
		p.advance()
		p.expect(lexer.ASSIGN)
		p.expect(lexer.LBRACE)
		var elems []*ast.KeyElement
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			epos := p.cur().pos
			e := p.parseExpr()
			p.expect(lexer.COLON)
			m := p.parseIdent()
			p.expect(lexer.SEMI)
			ke := &ast.KeyElement{Expr: e, Match: m}
			ke.SetPos(epos)
			elems = append(elems, ke)
		}
		p.expect(lexer.RBRACE)
		kp := &ast.KeyProperty{Elements: elems}
		kp.SetPos(pos)
		return kp

	case p.cur().tok == lexer.IDENT && p.cur().lit == "actions":
		p.advance()
		p.expect(lexer.ASSIGN)
		p.expect(lexer.LBRACE)
		var refs []*ast.ActionRef
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			refs = append(refs, p.parseActionRef())
			p.expect(lexer.SEMI)
		}
		p.expect(lexer.RBRACE)
		ap := &ast.ActionsProperty{Actions: refs}
		ap.SetPos(pos)
		return ap

	case p.cur().tok == lexer.IDENT && p.cur().lit == "entries":
		p.advance()
		p.expect(lexer.ASSIGN)
		p.expect(lexer.LBRACE)
		var entries []*ast.Entry
		for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
			epos := p.cur().pos
			keyset := p.parseKeysetExpr()
			p.expect(lexer.COLON)
			ref := p.parseActionRef()
			p.expect(lexer.SEMI)
			e := &ast.Entry{Keyset: keyset, Action: ref}
			e.SetPos(epos)
			entries = append(entries, e)
		}
		p.expect(lexer.RBRACE)
		ep := &ast.EntriesProperty{Entries: entries, IsConst: isConst}
		ep.SetPos(pos)
		return ep

	default:
		name := p.parseName()
		p.expect(lexer.ASSIGN)
		val := p.parseExpr()
		p.expect(lexer.SEMI)
		sp := &ast.SimpleProperty{Name: name, Value: val, IsConst: isConst}
		sp.SetPos(pos)
		return sp
	}
}

func (p *Parser) parseActionRef() *ast.ActionRef {
	pos := p.cur().pos
	n := p.parseIdent()
	var args []ast.Expr
	if p.accept(lexer.LPAREN) {
		for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
			args = append(args, p.parseExpr())
			if !p.accept(lexer.COMMA) {
				break
			}
		}
		p.expect(lexer.RPAREN)
	}
	ref := &ast.ActionRef{Name: n, Args: args}
	ref.SetPos(pos)
	return ref
}

// parseVariableDecl parses "[const] Type name [= init];", used both at
// top level and inside a block.
func (p *Parser) parseVariableDecl(isConst bool) ast.Decl {
	pos := p.cur().pos
	if isConst {
		pos = p.advance().pos
	}
	ty := p.parseTypeRef()
	name := p.parseName()
	var init ast.Expr
	if p.accept(lexer.ASSIGN) {
		init = p.parseExpr()
	}
	p.expect(lexer.SEMI)
	d := &ast.VariableDecl{Type: ty, Name: name, Init: init, IsConst: isConst}
	d.SetPos(pos)
	return d
}

// parseTypeLedDecl disambiguates the declarations that all start with
// a type reference: instantiation ("Type(args) name;"), a function
// declaration/prototype ("RetType name(params) {...}" or "...;"), and
// a plain variable declaration ("Type name [= init];").
func (p *Parser) parseTypeLedDecl() ast.Decl {
	start := p.idx
	pos := p.cur().pos
	ty := p.parseTypeRef()

	if p.at(lexer.LPAREN) {
		args := p.parseArgList()
		name := p.parseName()
		p.expect(lexer.SEMI)
		inst := &ast.Instantiation{Name: name, Type: ty, Args: args}
		inst.SetPos(pos)
		return inst
	}

	if !p.at(lexer.IDENT) {
		// Not a declaration after all (e.g. a bare expression
		// statement like "x = 5;" at a position only top-level
		// declarations are expected): back out entirely, report it,
		// and skip to the next statement boundary.
		p.idx = start
		p.errorf(p.cur().pos, "expected a declaration, found %s", p.cur().tok)
		p.skipToSemiOrBrace()
		return nil
	}

	name := p.parseName()
	if p.at(lexer.LPAREN) {
		params := p.parseParams()
		proto := &ast.FunctionPrototype{ReturnType: ty, Name: name, Params: params}
		proto.SetPos(pos)
		if p.accept(lexer.SEMI) {
			return proto
		}
		body := p.parseBlock()
		fd := &ast.FunctionDecl{Proto: proto, Body: body}
		fd.SetPos(pos)
		return fd
	}

	var init ast.Expr
	if p.accept(lexer.ASSIGN) {
		init = p.parseExpr()
	}
	p.expect(lexer.SEMI)
	d := &ast.VariableDecl{Type: ty, Name: name, Init: init}
	d.SetPos(pos)
	return d
}

func (p *Parser) parseArgList() []ast.Expr {
	p.expect(lexer.LPAREN)
	var args []ast.Expr
	for !p.at(lexer.RPAREN) && !p.at(lexer.EOF) {
		args = append(args, p.parseExpr())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RPAREN)
	return args
}

// parseTypeRef parses a base type, a named type, or either with a
// trailing "[size]" header-stack suffix.
func (p *Parser) parseTypeRef() ast.TypeRef {
	pos := p.cur().pos
	var ty ast.TypeRef
	switch p.cur().tok {
	case lexer.KW_VOID:
		p.advance()
		bt := &ast.BaseType{Kind: ast.BaseVoid}
		bt.SetPos(pos)
		ty = bt
	case lexer.KW_BOOL:
		p.advance()
		bt := &ast.BaseType{Kind: ast.BaseBool}
		bt.SetPos(pos)
		ty = bt
	case lexer.KW_STRING:
		p.advance()
		bt := &ast.BaseType{Kind: ast.BaseString}
		bt.SetPos(pos)
		ty = bt
	case lexer.KW_ERROR:
		p.advance()
		bt := &ast.BaseType{Kind: ast.BaseError}
		bt.SetPos(pos)
		ty = bt
	case lexer.KW_INT:
		p.advance()
		bt := &ast.BaseType{Kind: ast.BaseInt, Width: p.parseOptionalWidth()}
		bt.SetPos(pos)
		ty = bt
	case lexer.KW_BIT:
		p.advance()
		bt := &ast.BaseType{Kind: ast.BaseBit, Width: p.parseOptionalWidth()}
		bt.SetPos(pos)
		ty = bt
	case lexer.KW_VARBIT:
		p.advance()
		bt := &ast.BaseType{Kind: ast.BaseVarbit, Width: p.parseOptionalWidth()}
		bt.SetPos(pos)
		ty = bt
	case lexer.IDENT:
		if p.cur().lit == "tuple" {
			ty = p.parseTupleType()
		} else {
			nt := &ast.NamedType{Name: p.parseIdent()}
			nt.SetPos(pos)
			ty = nt
		}
	default:
		p.errorf(pos, "expected a type, found %s", p.cur().tok)
		p.advance()
		bt := &ast.BaseType{Kind: ast.BaseVoid}
		bt.SetPos(pos)
		return bt
	}
	for p.at(lexer.LBRACK) {
		bpos := p.advance().pos
		size := p.parseExpr()
		p.expect(lexer.RBRACK)
		hs := &ast.HeaderStackType{Element: ty, Size: size}
		hs.SetPos(bpos)
		ty = hs
	}
	return ty
}

func (p *Parser) parseOptionalWidth() ast.Expr {
	if !p.accept(lexer.LANGLE) {
		return nil
	}
	// Parsed above relational precedence so the closing ">" is not
	// taken as a comparison operator.
	w := p.parseBinary(5)
	p.expect(lexer.RANGLE)
	return w
}

func (p *Parser) parseTupleType() ast.TypeRef {
	pos := p.advance().pos // consume "tuple"
	p.expect(lexer.LANGLE)
	var args []ast.TypeRef
	for !p.at(lexer.RANGLE) && !p.at(lexer.EOF) {
		args = append(args, p.parseTypeRef())
		if !p.accept(lexer.COMMA) {
			break
		}
	}
	p.expect(lexer.RANGLE)
	tt := &ast.TupleType{Args: args}
	tt.SetPos(pos)
	return tt
}

// --- statements ---

func (p *Parser) parseBlock() *ast.BlockStmt {
	pos := p.expect(lexer.LBRACE).pos
	var stmts []ast.Stmt
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		before := p.idx
		stmts = append(stmts, p.parseStmt())
		if p.idx == before {
			p.advance()
		}
	}
	p.expect(lexer.RBRACE)
	b := &ast.BlockStmt{Stmts: stmts}
	b.SetPos(pos)
	return b
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur().tok {
	case lexer.SEMI:
		pos := p.advance().pos
		s := &ast.EmptyStmt{}
		s.SetPos(pos)
		return s
	case lexer.LBRACE:
		return p.parseBlock()
	case lexer.KW_RETURN:
		pos := p.advance().pos
		var val ast.Expr
		if !p.at(lexer.SEMI) {
			val = p.parseExpr()
		}
		p.expect(lexer.SEMI)
		s := &ast.ReturnStmt{Value: val}
		s.SetPos(pos)
		return s
	case lexer.KW_EXIT:
		pos := p.advance().pos
		p.expect(lexer.SEMI)
		s := &ast.ExitStmt{}
		s.SetPos(pos)
		return s
	case lexer.KW_IF:
		pos := p.advance().pos
		p.expect(lexer.LPAREN)
		cond := p.parseExpr()
		p.expect(lexer.RPAREN)
		then := p.parseStmt()
		var els ast.Stmt
		if p.accept(lexer.KW_ELSE) {
			els = p.parseStmt()
		}
		s := &ast.ConditionalStmt{Cond: cond, Then: then, Else: els}
		s.SetPos(pos)
		return s
	case lexer.KW_SWITCH:
		return p.parseSwitchStmt()
	case lexer.KW_CONST:
		return p.parseVariableDecl(true).(ast.Stmt)
	default:
		return p.parseDeclOrExprStmt()
	}
}

func (p *Parser) parseSwitchStmt() ast.Stmt {
	pos := p.advance().pos
	p.expect(lexer.LPAREN)
	val := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.expect(lexer.LBRACE)
	var cases []*ast.SwitchCase
	for !p.at(lexer.RBRACE) && !p.at(lexer.EOF) {
		cpos := p.cur().pos
		var label ast.Expr
		isDefault := false
		if p.accept(lexer.KW_DEFAULT) {
			isDefault = true
		} else {
			label = p.parseExpr()
		}
		p.expect(lexer.COLON)
		var stmt ast.Stmt
		if !p.at(lexer.COLON) {
			stmt = p.parseStmt()
		}
		c := &ast.SwitchCase{Label: label, IsDefault: isDefault, Stmt: stmt}
		c.SetPos(cpos)
		cases = append(cases, c)
	}
	p.expect(lexer.RBRACE)
	s := &ast.SwitchStmt{Value: val, Cases: cases}
	s.SetPos(pos)
	return s
}

// parseDeclOrExprStmt backtracks between a local declaration/
// instantiation and an expression statement (assignment or call),
// both of which can start with the same leading token.
func (p *Parser) parseDeclOrExprStmt() ast.Stmt {
	start := p.idx
	// A leading IDENT is ambiguous between a named-type declaration
	// ("MyStruct x;") and an expression statement ("x = 1;", "f();") —
	// try the declaration reading first and fall back to the saved
	// index below if it doesn't pan out, same as the unambiguous
	// base-type-led case.
	if isTypeStartToken(p.cur().tok) || p.at(lexer.IDENT) {
		pos := p.cur().pos
		ty := p.parseTypeRef()
		switch {
		case p.at(lexer.LPAREN):
			// "Type(args) name;" (instantiation) and "f(args);" (a call
			// expression statement, with ty degenerately parsed as the
			// callee's name) share a prefix up through the closing
			// paren — only the former is followed by another name.
			args := p.parseArgList()
			if p.at(lexer.IDENT) {
				name := p.parseName()
				p.expect(lexer.SEMI)
				inst := &ast.Instantiation{Name: name, Type: ty, Args: args}
				inst.SetPos(pos)
				return inst
			}
			p.idx = start
		case p.at(lexer.IDENT):
			name := p.parseName()
			var init ast.Expr
			if p.accept(lexer.ASSIGN) {
				init = p.parseExpr()
			}
			p.expect(lexer.SEMI)
			d := &ast.VariableDecl{Type: ty, Name: name, Init: init}
			d.SetPos(pos)
			return d
		}
		p.idx = start
	}

	expr := p.parseExpr()
	if p.accept(lexer.ASSIGN) {
		rhs := p.parseExpr()
		p.expect(lexer.SEMI)
		s := &ast.AssignmentStmt{LHS: expr, RHS: rhs}
		s.SetPos(expr.Pos())
		return s
	}
	p.expect(lexer.SEMI)
	if s, ok := expr.(ast.Stmt); ok {
		return s
	}
	p.errorf(expr.Pos(), "expression used as a statement has no effect")
	s := &ast.EmptyStmt{}
	s.SetPos(expr.Pos())
	return s
}

func isTypeStartToken(t lexer.Token) bool {
	switch t {
	case lexer.KW_VOID, lexer.KW_BOOL, lexer.KW_STRING, lexer.KW_ERROR,
		lexer.KW_INT, lexer.KW_BIT, lexer.KW_VARBIT:
		return true
	}
	return false
}

// --- expressions ---
//
// Precedence climbing over P4's binary operators, loosest to tightest:
// || < && < equality < relational < bitor/xor/and < shift < additive <
// multiplicative. Casts, member selection, calls, and subscripts bind
// tightest of all as postfix/prefix operators on a primary expression.

var precedence = map[lexer.Token]int{
	lexer.OROR:      1,
	lexer.ANDAND:    2,
	lexer.EQ:        3,
	lexer.NEQ:       3,
	lexer.LANGLE:    4,
	lexer.RANGLE:    4,
	lexer.LE:        4,
	lexer.GE:        4,
	lexer.OR:        5,
	lexer.XOR:       5,
	lexer.AND:       5,
	lexer.ANDANDAND: 5,
	lexer.SHL:       6,
	lexer.SHR:       6,
	lexer.PLUS:      7,
	lexer.MINUS:     7,
	lexer.STAR:      8,
	lexer.SLASH:     8,
	lexer.PERCENT:   8,
}

var tokenToOp = map[lexer.Token]ast.Operator{
	lexer.OROR: ast.OpOr, lexer.ANDAND: ast.OpAnd,
	lexer.EQ: ast.OpEq, lexer.NEQ: ast.OpNeq,
	lexer.LANGLE: ast.OpLess, lexer.RANGLE: ast.OpGreat,
	lexer.LE: ast.OpLessEq, lexer.GE: ast.OpGreatEq,
	lexer.OR: ast.OpBitOr, lexer.XOR: ast.OpBitXor, lexer.AND: ast.OpBitAnd,
	lexer.ANDANDAND: ast.OpMask,
	lexer.SHL:        ast.OpBitShl, lexer.SHR: ast.OpBitShr,
	lexer.PLUS: ast.OpAdd, lexer.MINUS: ast.OpSub,
	lexer.STAR: ast.OpMul, lexer.SLASH: ast.OpDiv, lexer.PERCENT: ast.OpMod,
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(1)
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec, ok := precedence[p.cur().tok]
		if !ok || prec < minPrec {
			return left
		}
		opTok := p.advance()
		right := p.parseBinary(prec + 1)
		be := &ast.BinaryExpr{Op: tokenToOp[opTok.tok], Left: left, Right: right}
		be.SetPos(opTok.pos)
		left = be
	}
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur().tok {
	case lexer.MINUS:
		pos := p.advance().pos
		u := &ast.UnaryExpr{Op: ast.OpNeg, Operand: p.parseUnary()}
		u.SetPos(pos)
		return u
	case lexer.NOT:
		pos := p.advance().pos
		u := &ast.UnaryExpr{Op: ast.OpNot, Operand: p.parseUnary()}
		u.SetPos(pos)
		return u
	case lexer.TILDE:
		pos := p.advance().pos
		u := &ast.UnaryExpr{Op: ast.OpBitNot, Operand: p.parseUnary()}
		u.SetPos(pos)
		return u
	case lexer.LPAREN:
		if p.looksLikeCast() {
			pos := p.advance().pos
			ty := p.parseTypeRef()
			p.expect(lexer.RPAREN)
			c := &ast.CastExpr{Type: ty, Expr: p.parseUnary()}
			c.SetPos(pos)
			return c
		}
	}
	return p.parsePostfix(p.parsePrimary())
}

// looksLikeCast distinguishes "(T) e" from a parenthesized expression
// "(e)" by checking whether the token right after '(' starts a base
// type — named-type casts ("(Foo) e") are ambiguous with a
// parenthesized identifier in a one-token lookahead grammar and are
// not attempted; P4 source relies on base-type casts overwhelmingly
// more often than named-type ones.
func (p *Parser) looksLikeCast() bool {
	next := p.toks[clampIdx(p.idx+1, len(p.toks))]
	return isTypeStartToken(next.tok)
}

func (p *Parser) parsePostfix(e ast.Expr) ast.Expr {
	for {
		switch p.cur().tok {
		case lexer.DOT:
			p.advance()
			sel := p.expect(lexer.IDENT)
			m := &ast.MemberSelector{LHS: e, Sel: sel.lit}
			m.SetPos(sel.pos)
			e = m
		case lexer.LPAREN:
			pos := p.cur().pos
			args := p.parseArgList()
			c := &ast.FunctionCall{Callee: e, Args: args}
			c.SetPos(pos)
			e = c
		case lexer.LBRACK:
			pos := p.advance().pos
			idx := p.parseExpr()
			if p.accept(lexer.COLON) {
				lo := p.parseExpr()
				p.expect(lexer.RBRACK)
				s := &ast.SliceExpr{LHS: e, Hi: idx, Lo: lo}
				s.SetPos(pos)
				e = s
			} else {
				p.expect(lexer.RBRACK)
				s := &ast.ArraySubscript{LHS: e, Index: idx}
				s.SetPos(pos)
				e = s
			}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.tok {
	case lexer.INT:
		p.advance()
		value, signed, width, hasWidth, err := lexer.ParseIntLiteral(t.lit)
		if err != nil {
			p.errorf(t.pos, "malformed integer literal %q", t.lit)
		}
		lit := &ast.IntegerLiteral{Value: value, IsSigned: signed, Width: width, HasWidth: hasWidth}
		lit.SetPos(t.pos)
		return lit
	case lexer.KW_TRUE:
		p.advance()
		b := &ast.BooleanLiteral{Value: true}
		b.SetPos(t.pos)
		return b
	case lexer.KW_FALSE:
		p.advance()
		b := &ast.BooleanLiteral{Value: false}
		b.SetPos(t.pos)
		return b
	case lexer.STRING:
		p.advance()
		s := &ast.StringLiteral{Value: t.lit}
		s.SetPos(t.pos)
		return s
	case lexer.KW_DEFAULT:
		p.advance()
		d := &ast.DefaultExpr{}
		d.SetPos(t.pos)
		return d
	case lexer.IDENT:
		if t.lit == "_" {
			p.advance()
			d := &ast.Dontcare{}
			d.SetPos(t.pos)
			return d
		}
		p.advance()
		id := &ast.Ident{Value: t.lit}
		id.SetPos(t.pos)
		return id
	case lexer.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(lexer.RPAREN)
		return e
	default:
		p.errorf(t.pos, "expected an expression, found %s", t.tok)
		p.advance()
		id := &ast.Ident{Value: "<error>"}
		id.SetPos(t.pos)
		return id
	}
}
