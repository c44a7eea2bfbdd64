// Package scopehier implements the scope hierarchy builder: a single
// top-down traversal that allocates a fresh scope.Scope at every
// scope-opening declaration, links it to its enclosing scope, and
// records scope.Scope for every node a later pass needs to resolve a
// name against — all into one external map, never onto the AST nodes
// themselves.
//
// Grounded directly on original_source/scope_hierarchy.cpp: the
// dispatch structure below (one method per declaration/statement kind,
// Scope::create + push before recursing, restore afterward) mirrors
// its visit_* function set one-for-one, including two traversal
// idioms the C version keeps distinct:
//
//   - A parserDeclaration/controlDeclaration/functionDeclaration body
//     reuses the scope already opened by its prototype — visited with
//     no further Scope::create.
//   - A blockStatement reached in ordinary statement position (a
//     standalone nested block, or a conditional's arm) opens a new
//     child scope; the very same blockStatement reached directly as a
//     function/action/apply body, or as a switch case's arm, does not.
package scopehier

import (
	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/scope"
)

// Map associates every AST node the pipeline needs a scope for with
// the scope.Scope it was processed in.
type Map map[ast.Node]*scope.Scope

// Builder runs the single top-down traversal that produces a Map.
type Builder struct {
	m       Map
	current *scope.Scope
}

// NewBuilder returns a Builder rooted at root — in the pipeline, a
// fresh scope that the name binder seeds with built-in names only
// after this builder has run.
func NewBuilder(root *scope.Scope) *Builder {
	return &Builder{m: make(Map), current: root}
}

// Build runs the traversal over prog and returns the resulting Map.
// prog's own scope (a child of the builder's root) ends up at
// Map[prog].
func (b *Builder) Build(prog *ast.Program) Map {
	b.withChildScope(func() {
		b.record(prog)
		for _, d := range prog.Decls {
			b.visitDecl(d)
		}
	})
	return b.m
}

func (b *Builder) record(n ast.Node) {
	if n != nil {
		b.m[n] = b.current
	}
}

// withChildScope pushes a fresh child of the current scope, runs fn
// with it current, then restores the prior scope.
func (b *Builder) withChildScope(fn func()) {
	prev := b.current
	b.current = b.current.NewChild()
	fn()
	b.current = prev
}

func (b *Builder) visitDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.RecordTypeDecl:
		b.withChildScope(func() {
			b.record(n)
			for _, f := range n.Fields {
				b.visitTypeRef(f.Type)
				b.record(f)
			}
		})
	case *ast.EnumDecl:
		if n.SizeType != nil {
			b.visitTypeRef(n.SizeType)
		}
		b.withChildScope(func() {
			b.record(n)
			for _, id := range n.Identifiers {
				if id.Init != nil {
					b.visitExpr(id.Init)
				}
				b.record(id)
			}
		})
	case *ast.ErrorDecl:
		b.withChildScope(func() { b.record(n) })
	case *ast.MatchKindDecl:
		b.withChildScope(func() { b.record(n) })
	case *ast.TypedefDecl:
		b.visitTypeRef(n.Ref)
		b.record(n)
	case *ast.FunctionPrototype:
		b.visitFunctionPrototype(n)
	case *ast.ParserTypeDecl:
		b.visitParserTypeDecl(n)
	case *ast.ParserDecl:
		b.visitParserDecl(n)
	case *ast.ControlTypeDecl:
		b.visitControlTypeDecl(n)
	case *ast.ControlDecl:
		b.visitControlDecl(n)
	case *ast.PackageTypeDecl:
		b.withChildScope(func() {
			b.record(n)
			for _, p := range n.Params {
				b.visitParam(p)
			}
		})
	case *ast.ExternTypeDecl:
		b.withChildScope(func() {
			b.record(n)
			for _, m := range n.MethodProtos {
				b.visitFunctionPrototype(m)
			}
		})
	case *ast.Instantiation:
		b.visitTypeRef(n.Type)
		for _, a := range n.Args {
			b.visitExpr(a)
		}
		b.record(n)
	case *ast.ActionDecl:
		b.withChildScope(func() {
			b.record(n)
			for _, p := range n.Params {
				b.visitParam(p)
			}
			if n.Body != nil {
				b.visitBlockContents(n.Body)
			}
		})
	case *ast.TableDecl:
		b.withChildScope(func() {
			b.record(n)
			for _, p := range n.Properties {
				b.visitTableProperty(p)
			}
			for _, m := range n.MethodProtos {
				b.visitFunctionPrototype(m)
			}
		})
	case *ast.VariableDecl:
		b.visitTypeRef(n.Type)
		if n.Init != nil {
			b.visitExpr(n.Init)
		}
		b.record(n)
	case *ast.FunctionDecl:
		b.visitFunctionDecl(n)
	}
}

func (b *Builder) visitParam(p *ast.Parameter) {
	b.visitTypeRef(p.Type)
	if p.Init != nil {
		b.visitExpr(p.Init)
	}
	b.record(p)
}

func (b *Builder) visitFunctionPrototype(n *ast.FunctionPrototype) {
	if n.ReturnType != nil {
		b.visitTypeRef(n.ReturnType)
	}
	b.withChildScope(func() {
		b.record(n)
		for _, p := range n.Params {
			b.visitParam(p)
		}
	})
}

func (b *Builder) visitParserTypeDecl(n *ast.ParserTypeDecl) {
	b.withChildScope(func() {
		b.record(n)
		for _, p := range n.Params {
			b.visitParam(p)
		}
		for _, m := range n.MethodProtos {
			b.visitFunctionPrototype(m)
		}
	})
}

func (b *Builder) visitParserDecl(n *ast.ParserDecl) {
	if n.Proto != nil {
		b.visitParserTypeDecl(n.Proto)
	}
	prev := b.current
	if n.Proto != nil {
		b.current = b.m[n.Proto]
	}
	b.record(n)
	for _, p := range n.CtorParams {
		b.visitParam(p)
	}
	for _, l := range n.Locals {
		b.visitDecl(l)
	}
	for _, s := range n.States {
		b.visitParserState(s)
	}
	b.current = prev
}

func (b *Builder) visitParserState(n *ast.ParserState) {
	b.withChildScope(func() {
		b.record(n)
		for _, s := range n.Statements {
			b.visitStmt(s)
		}
		if n.Transition != nil {
			b.visitTransitionStmt(n.Transition)
		}
	})
}

func (b *Builder) visitControlTypeDecl(n *ast.ControlTypeDecl) {
	b.withChildScope(func() {
		b.record(n)
		for _, p := range n.Params {
			b.visitParam(p)
		}
		for _, m := range n.MethodProtos {
			b.visitFunctionPrototype(m)
		}
	})
}

func (b *Builder) visitControlDecl(n *ast.ControlDecl) {
	if n.Proto != nil {
		b.visitControlTypeDecl(n.Proto)
	}
	prev := b.current
	if n.Proto != nil {
		b.current = b.m[n.Proto]
	}
	b.record(n)
	for _, p := range n.CtorParams {
		b.visitParam(p)
	}
	for _, l := range n.Locals {
		b.visitDecl(l)
	}
	if n.Apply != nil {
		b.visitBlockContents(n.Apply)
	}
	b.current = prev
}

func (b *Builder) visitFunctionDecl(n *ast.FunctionDecl) {
	if n.Proto != nil {
		b.visitFunctionPrototype(n.Proto)
	}
	prev := b.current
	if n.Proto != nil {
		b.current = b.m[n.Proto]
	}
	b.record(n)
	if n.Body != nil {
		b.visitBlockContents(n.Body)
	}
	b.current = prev
}

// visitBlockContents walks a block's statements in the current scope
// without opening a new one — the direct-body case.
func (b *Builder) visitBlockContents(blk *ast.BlockStmt) {
	b.record(blk)
	for _, s := range blk.Stmts {
		b.visitStmt(s)
	}
}

// visitStmt is the generic statement-position dispatch: a BlockStmt
// reached here opens its own child scope, unlike visitBlockContents.
func (b *Builder) visitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BlockStmt:
		b.withChildScope(func() {
			b.visitBlockContents(n)
		})
	case *ast.AssignmentStmt:
		b.visitExpr(n.LHS)
		b.visitExpr(n.RHS)
		b.record(n)
	case *ast.ReturnStmt:
		if n.Value != nil {
			b.visitExpr(n.Value)
		}
		b.record(n)
	case *ast.ExitStmt:
		b.record(n)
	case *ast.EmptyStmt:
		b.record(n)
	case *ast.ConditionalStmt:
		b.visitExpr(n.Cond)
		b.visitStmt(n.Then)
		if n.Else != nil {
			b.visitStmt(n.Else)
		}
		b.record(n)
	case *ast.DirectApplication:
		b.record(n.Name)
		for _, a := range n.Args {
			b.visitExpr(a)
		}
		b.record(n)
	case *ast.SwitchStmt:
		b.visitExpr(n.Value)
		for _, c := range n.Cases {
			b.visitSwitchCase(c)
		}
		b.record(n)
	case *ast.FunctionCall:
		b.visitExpr(n)
	case *ast.VariableDecl:
		b.visitDecl(n)
	}
}

func (b *Builder) visitSwitchCase(c *ast.SwitchCase) {
	if c.Label != nil {
		b.visitExpr(c.Label)
	}
	if blk, ok := c.Stmt.(*ast.BlockStmt); ok {
		b.visitBlockContents(blk)
	} else if c.Stmt != nil {
		b.visitStmt(c.Stmt)
	}
	b.record(c)
}

func (b *Builder) visitTransitionStmt(n *ast.TransitionStmt) {
	b.visitExpr(n.Target)
	b.record(n)
}

func (b *Builder) visitTableProperty(p ast.TableProperty) {
	switch n := p.(type) {
	case *ast.KeyProperty:
		for _, e := range n.Elements {
			b.visitExpr(e.Expr)
			b.record(e.Match)
			b.record(e)
		}
		b.record(n)
	case *ast.ActionsProperty:
		for _, a := range n.Actions {
			b.visitActionRef(a)
		}
		b.record(n)
	case *ast.EntriesProperty:
		for _, e := range n.Entries {
			b.visitExpr(e.Keyset)
			if e.Action != nil {
				b.visitActionRef(e.Action)
			}
			b.record(e)
		}
		b.record(n)
	case *ast.SimpleProperty:
		if n.Value != nil {
			b.visitExpr(n.Value)
		}
		b.record(n)
	}
}

func (b *Builder) visitActionRef(a *ast.ActionRef) {
	b.record(a.Name)
	for _, arg := range a.Args {
		b.visitExpr(arg)
	}
	b.record(a)
}

func (b *Builder) visitTypeRef(t ast.TypeRef) {
	switch n := t.(type) {
	case *ast.BaseType:
		if n.Width != nil {
			b.visitExpr(n.Width)
		}
	case *ast.NamedType:
		b.record(n.Name)
	case *ast.TupleType:
		for _, a := range n.Args {
			b.visitTypeRef(a)
		}
	case *ast.HeaderStackType:
		b.visitTypeRef(n.Element)
		b.visitExpr(n.Size)
	}
	b.record(t)
}

func (b *Builder) visitExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Ident:
		b.record(n)
	case *ast.BinaryExpr:
		b.visitExpr(n.Left)
		b.visitExpr(n.Right)
		b.record(n)
	case *ast.UnaryExpr:
		b.visitExpr(n.Operand)
		b.record(n)
	case *ast.FunctionCall:
		b.visitExpr(n.Callee)
		for _, a := range n.Args {
			b.visitExpr(a)
		}
		b.record(n)
	case *ast.MemberSelector:
		b.visitExpr(n.LHS)
		b.record(n)
	case *ast.CastExpr:
		b.visitTypeRef(n.Type)
		b.visitExpr(n.Expr)
		b.record(n)
	case *ast.ArraySubscript:
		b.visitExpr(n.LHS)
		b.visitExpr(n.Index)
		b.record(n)
	case *ast.SliceExpr:
		b.visitExpr(n.LHS)
		b.visitExpr(n.Hi)
		if n.Lo != nil {
			b.visitExpr(n.Lo)
		}
		b.record(n)
	case *ast.SelectExpr:
		for _, ex := range n.Exprs {
			b.visitExpr(ex)
		}
		for _, c := range n.Cases {
			b.visitExpr(c.Keyset)
			b.record(c.State)
			b.record(c)
		}
		b.record(n)
	case *ast.TupleKeysetExpr:
		for _, ex := range n.Exprs {
			b.visitExpr(ex)
		}
		b.record(n)
	default:
		// IntegerLiteral, BooleanLiteral, StringLiteral, Dontcare,
		// DefaultExpr carry no sub-expressions and need no lookup.
		b.record(n)
	}
}
