// Package ast defines the P4 syntax tree the semantic pipeline consumes.
//
// The shape follows cue/ast in spirit — a Node interface with a Pos(),
// concrete struct types per node kind grouped by what they're used for
// (Decl, Stmt, Expr, Type) — but the variant set itself is lifted
// directly from the original source's frontend.h `enum AstEnum` /
// tagged `struct Ast` union, translated from a single C tagged union
// into one Go struct type per variant.
//
// A node's identity for the purposes of scope, declaration, and type
// maps keyed by node is simply the node's pointer value: every such
// map is declared as map[ast.Node]V and Go pointer/interface equality
// gives a stable identity across the lifetime of an analysis run, with
// no separate id allocator needed.
package ast

import "github.com/dfrunza/ashp4c-go/token"

// Node is implemented by every AST struct in this package.
type Node interface {
	Pos() token.Position
	astNode()
}

// Decl is a top-level or local declaration.
type Decl interface {
	Node
	declNode()
}

// Stmt is a statement inside a block, parser state, or action body.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression or type reference used in expression position.
type Expr interface {
	Node
	exprNode()
}

// TypeRef is any node usable in type position (base types, names used
// as types, tuple types, header stacks).
type TypeRef interface {
	Node
	typeRefNode()
}

// base is embedded by every concrete node to supply Pos() and the
// marker methods it's eligible for.
type base struct {
	Position token.Position
}

func (b base) Pos() token.Position { return b.Position }
func (b base) astNode()            {}

// SetPos sets a node's source position after construction. Needed by
// internal/parser: base's own field name can't appear as a key in a
// composite literal written outside this package, since the
// promotion only exposes Position through selector expressions, not
// through literal keys.
func (b *base) SetPos(pos token.Position) { b.Position = pos }

// Program is the AST root (frontend.h: AST_p4program).
type Program struct {
	base
	Decls []Decl
}

// Name is a bare identifier appearing as a declared name (not a
// reference); frontend.h: AST_name.
type Name struct {
	base
	Value string
}

// Direction is a parameter's declared direction.
type Direction int

const (
	DirNone Direction = iota
	DirIn
	DirOut
	DirInOut
)

// Parameter is one entry of a parameter list (frontend.h: AST_parameter).
type Parameter struct {
	base
	Direction Direction
	Name      *Name
	Type      TypeRef
	Init      Expr // optional default value
}

func (p *Parameter) declNode() {}

// clone returns a deep copy of p, used by the built-in method injection
// pass so a synthesized "apply" prototype never aliases the parameter
// list of the declaration it was copied from: Name, Type, and Init are
// each copied down to their own leaves, not just the Parameter struct
// itself, so later passes annotating the clone's sub-trees (e.g. the
// declared-types pass installing a width-specific Type on a BaseType
// node) never reach back into the original declaration's AST.
func (p *Parameter) clone() *Parameter {
	cp := *p
	if p.Name != nil {
		n := *p.Name
		cp.Name = &n
	}
	cp.Type = cloneTypeRef(p.Type)
	cp.Init = cloneExpr(p.Init)
	return &cp
}

// CloneParams deep-copies a parameter list.
func CloneParams(params []*Parameter) []*Parameter {
	out := make([]*Parameter, len(params))
	for i, p := range params {
		out[i] = p.clone()
	}
	return out
}

// cloneTypeRef returns a deep copy of a type-reference sub-tree, used
// by Parameter.clone so a cloned parameter's declared type never
// shares a node with the original's.
func cloneTypeRef(t TypeRef) TypeRef {
	switch n := t.(type) {
	case nil:
		return nil
	case *BaseType:
		cp := *n
		cp.Width = cloneExpr(n.Width)
		return &cp
	case *NamedType:
		cp := *n
		if n.Name != nil {
			nm := *n.Name
			cp.Name = &nm
		}
		return &cp
	case *TupleType:
		cp := *n
		cp.Args = make([]TypeRef, len(n.Args))
		for i, a := range n.Args {
			cp.Args[i] = cloneTypeRef(a)
		}
		return &cp
	case *HeaderStackType:
		cp := *n
		cp.Element = cloneTypeRef(n.Element)
		cp.Size = cloneExpr(n.Size)
		return &cp
	default:
		return t
	}
}

// cloneExpr returns a deep copy of an expression sub-tree, used by
// cloneTypeRef (width/size expressions) and Parameter.clone (a
// parameter's default-value expression).
func cloneExpr(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *Ident:
		cp := *n
		return &cp
	case *BinaryExpr:
		cp := *n
		cp.Left = cloneExpr(n.Left)
		cp.Right = cloneExpr(n.Right)
		return &cp
	case *UnaryExpr:
		cp := *n
		cp.Operand = cloneExpr(n.Operand)
		return &cp
	case *FunctionCall:
		cp := *n
		cp.Callee = cloneExpr(n.Callee)
		cp.Args = make([]Expr, len(n.Args))
		for i, a := range n.Args {
			cp.Args[i] = cloneExpr(a)
		}
		return &cp
	case *MemberSelector:
		cp := *n
		cp.LHS = cloneExpr(n.LHS)
		return &cp
	case *CastExpr:
		cp := *n
		cp.Type = cloneTypeRef(n.Type)
		cp.Expr = cloneExpr(n.Expr)
		return &cp
	case *ArraySubscript:
		cp := *n
		cp.LHS = cloneExpr(n.LHS)
		cp.Index = cloneExpr(n.Index)
		return &cp
	case *SliceExpr:
		cp := *n
		cp.LHS = cloneExpr(n.LHS)
		cp.Hi = cloneExpr(n.Hi)
		cp.Lo = cloneExpr(n.Lo)
		return &cp
	case *IntegerLiteral:
		cp := *n
		return &cp
	case *BooleanLiteral:
		cp := *n
		return &cp
	case *StringLiteral:
		cp := *n
		return &cp
	default:
		return e
	}
}
