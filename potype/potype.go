// Package potype implements the potential-types pass: every expression
// node is assigned a TypeSet, built bottom-up from literal seeds, name
// lookups, and the propagation rules for member selection, function
// calls, binary expressions, casts, and array subscripts.
//
// There is no dedicated potential-types source file in the original —
// the closest surviving original file (0select_type.c) only ever reads
// an already-built potential_type map via typeset_get; it never
// constructs one. This pass is grounded directly on the seeding and
// propagation rules of the potential-types pass instead, using
// 0select_type.c's Type_TypeSet/typeset_get usage only to confirm the
// set's shape (a small member list plus an ambiguity/arity check at
// each consuming site).
package potype

import (
	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/decltype"
	"github.com/dfrunza/ashp4c-go/scope"
	"github.com/dfrunza/ashp4c-go/scopehier"
	"github.com/dfrunza/ashp4c-go/types"
)

// Set is a TypeSet: a small sparse set of candidate Types (compared by
// pointer identity) plus a width-polymorphic integer flag. An empty Set
// (Members == nil and Polymorphic == false) is the type-error sentinel.
type Set struct {
	Members     []*types.Type
	Polymorphic bool // true if an integer literal's width is still open
}

// singleton returns a Set containing exactly ty.
func singleton(ty *types.Type) Set {
	if ty == nil {
		return Set{}
	}
	return Set{Members: []*types.Type{ty}}
}

// Contains reports whether ty is a member of s, or s is the
// width-polymorphic integer family and ty is any BIT/INT former. Both
// sides are resolved through any TYPEDEF/TYPE-ALIAS forwarding pointer
// first, since a declared type reached through a typedef or named-type
// reference is a wrapper around the shape that actually matters here.
//
// A member and ty of the same BIT/INT/VARBIT former also match when
// either carries the width-polymorphic Size == -1 marker, regardless
// of the other's concrete width — this is what lets a "bit<8>" operand
// satisfy the built-in bitwise operators' generic, unsized "bit"
// parameter slot, the same way an untyped integer literal does via the
// Polymorphic flag below. Two operands that are both width-specific
// still have to agree exactly (no relaxation when both Sizes are >= 0).
func (s Set) Contains(ty *types.Type) bool {
	ty = ResolveAlias(ty)
	if ty == nil {
		return false
	}
	for _, m := range s.Members {
		m = ResolveAlias(m)
		if m == ty {
			return true
		}
		if m != nil && widthFamily(m.Former) && m.Former == ty.Former && (m.Size == -1 || ty.Size == -1) {
			return true
		}
	}
	if s.Polymorphic && (ty.Former == types.Int || ty.Former == types.Bit) {
		return true
	}
	return false
}

// widthFamily reports whether f is one of the width-bearing primitive
// formers the built-in operator tables overload generically over any
// operand width.
func widthFamily(f types.Former) bool {
	return f == types.Int || f == types.Bit || f == types.Varbit
}

// Empty reports whether s is the type-error sentinel.
func (s Set) Empty() bool {
	return len(s.Members) == 0 && !s.Polymorphic
}

// Map associates every expression node with its potential TypeSet.
type Map map[ast.Node]Set

// Builder runs the pass against the already-built scope hierarchy and
// declared types.
type Builder struct {
	root   *scope.Scope
	scopes scopehier.Map
	tm     decltype.TypeMap
	sets   Map
}

func NewBuilder(root *scope.Scope, scopes scopehier.Map, tm decltype.TypeMap) *Builder {
	return &Builder{root: root, scopes: scopes, tm: tm, sets: make(Map)}
}

// Run walks prog bottom-up, building one Set per expression node, and
// returns the resulting Map.
func Run(prog *ast.Program, scopes scopehier.Map, tm decltype.TypeMap, root *scope.Scope) Map {
	b := NewBuilder(root, scopes, tm)
	ast.Walk(prog, nil, b.after)
	return b.sets
}

func (b *Builder) scopeFor(n ast.Node) *scope.Scope {
	if s, ok := b.scopes[n]; ok {
		return s
	}
	return b.root
}

func (b *Builder) setOf(n ast.Node) Set {
	if n == nil {
		return Set{}
	}
	return b.sets[n]
}

// builtin fetches the builtin primitive Types the seeding rules
// reference by name.
func (b *Builder) builtin(name string) *types.Type {
	if d, ok := b.root.Lookup(name, scope.Type); ok {
		return d.Type
	}
	return nil
}

func (b *Builder) after(node ast.Node) {
	switch n := node.(type) {
	case *ast.IntegerLiteral:
		b.sets[n] = Set{Members: []*types.Type{b.builtin("int")}, Polymorphic: true}

	case *ast.BooleanLiteral:
		b.sets[n] = singleton(b.builtin("bool"))

	case *ast.StringLiteral:
		b.sets[n] = singleton(b.builtin("string"))

	case *ast.Ident:
		b.sets[n] = b.nameSet(n)

	case *ast.MemberSelector:
		b.sets[n] = b.memberSet(n)

	case *ast.FunctionCall:
		b.sets[n] = b.callSet(n)

	case *ast.BinaryExpr:
		b.sets[n] = b.binarySet(n)

	case *ast.CastExpr:
		b.sets[n] = singleton(b.tm[n.Type])

	case *ast.ArraySubscript:
		b.sets[n] = b.subscriptSet(n)
	}
}

// nameSet implements the `name` expression rule: look the identifier up
// in VAR then TYPE namespace; the set is the singleton type of the
// resolved declaration, or every candidate's type if the chain is
// ambiguous (left for the type-selection pass to narrow with context).
func (b *Builder) nameSet(n *ast.Ident) Set {
	s := b.scopeFor(n)
	decl, ok := s.Lookup(n.Value, scope.Var)
	if !ok {
		decl, ok = s.Lookup(n.Value, scope.Type)
	}
	if !ok {
		return Set{}
	}
	var members []*types.Type
	for d := decl; d != nil; d = d.Next {
		if d.Type != nil {
			members = append(members, d.Type)
		}
	}
	return Set{Members: members}
}

// ResolveAlias follows a TYPEDEF-turned-TYPE forwarding pointer to the
// underlying type whose Former actually describes its shape. Needed
// because a NAMEREF-based type reference (e.g. a header name used as a
// variable's declared type, or a stack's element type) resolves to a
// TypeAlias wrapper rather than being replaced by the referent itself —
// see decltype's resolution sweep.
func ResolveAlias(ty *types.Type) *types.Type {
	for ty != nil && ty.Former == types.TypeAlias {
		ty = ty.Ref
	}
	return ty
}

// memberSet implements memberSelector(lhs, m): filter lhs's set to
// types whose FIELD list contains a field named m, result is the types
// of those fields.
func (b *Builder) memberSet(n *ast.MemberSelector) Set {
	lhs := b.setOf(n.LHS)
	var members []*types.Type
	for _, raw := range lhs.Members {
		cand := ResolveAlias(raw)
		if cand == nil || cand.Fields == nil {
			continue
		}
		for _, f := range cand.Fields.Members {
			if f.Name == n.Sel {
				members = append(members, f.FieldType)
			}
		}
	}
	return Set{Members: members}
}

// callSet implements functionCall(callee, args): filter callee's set to
// FUNCTIONs whose params-product matches the args pointwise, result is
// the return types of the surviving candidates.
func (b *Builder) callSet(n *ast.FunctionCall) Set {
	callee := b.setOf(n.Callee)
	argSets := make([]Set, len(n.Args))
	for i, a := range n.Args {
		argSets[i] = b.setOf(a)
	}
	var members []*types.Type
	for _, raw := range callee.Members {
		cand := ResolveAlias(raw)
		if cand == nil || cand.Former != types.Function {
			continue
		}
		if cand.Params == nil || len(cand.Params.Members) != len(argSets) {
			continue
		}
		if !paramsMatch(cand.Params.Members, argSets) {
			continue
		}
		members = append(members, cand.Return)
	}
	return Set{Members: members}
}

func paramsMatch(params []*types.Type, args []Set) bool {
	for i, p := range params {
		if !args[i].Contains(p) {
			return false
		}
	}
	return true
}

// binarySet implements binaryExpression(op, l, r): look op up in the
// root TYPE namespace (populated by the declared-types pass with the
// built-in operator overloads) and treat it as a function call whose
// args are the left and right operands.
func (b *Builder) binarySet(n *ast.BinaryExpr) Set {
	opDecl, ok := b.root.Lookup(string(n.Op), scope.Type)
	if !ok {
		return Set{}
	}
	left := b.setOf(n.Left)
	right := b.setOf(n.Right)
	var members []*types.Type
	for d := opDecl; d != nil; d = d.Next {
		ty := d.Type
		if ty == nil || ty.Former != types.Function || ty.Params == nil || len(ty.Params.Members) != 2 {
			continue
		}
		if !left.Contains(ty.Params.Members[0]) || !right.Contains(ty.Params.Members[1]) {
			continue
		}
		ret, ok := narrowOperatorReturn(ty.Return, left, right)
		if !ok {
			continue
		}
		members = append(members, ret)
	}
	return Set{Members: members}
}

// narrowOperatorReturn resolves a width-polymorphic operator return
// type (Size == -1, e.g. the generic "bit" the bitwise overloads are
// declared to return) down to the concrete operand width actually
// involved, so "bit<8> & bit<8>" selects bit<8> rather than the
// unsized family, and "bit<8> & bit<16>" is rejected outright instead
// of arbitrarily picking one side's width. Non-width-bearing returns
// (bool, from the relational/logical overloads) pass through as-is.
func narrowOperatorReturn(generic *types.Type, left, right Set) (*types.Type, bool) {
	if generic == nil || !widthFamily(generic.Former) {
		return generic, true
	}
	lw, lOK := concreteWidth(left, generic.Former)
	rw, rOK := concreteWidth(right, generic.Former)
	switch {
	case lOK && rOK:
		if lw.Size != rw.Size {
			return nil, false
		}
		return lw, true
	case lOK:
		return lw, true
	case rOK:
		return rw, true
	default:
		return generic, true
	}
}

// concreteWidth returns the one member of s that is a width-specific
// (Size != -1) Type of the given former, if s unambiguously names one;
// a width-polymorphic integer literal's Set never does, since its
// width is exactly what's still open.
func concreteWidth(s Set, former types.Former) (*types.Type, bool) {
	if s.Polymorphic {
		return nil, false
	}
	for _, m := range s.Members {
		if r := ResolveAlias(m); r != nil && r.Former == former && r.Size != -1 {
			return r, true
		}
	}
	return nil, false
}

// subscriptSet implements arraySubscript(lhs, idx): a STACK yields its
// element type; a BIT yields a bit of the slice's width (unknown here
// without constant evaluation of the range, so left width-polymorphic);
// anything else is a type error (empty set).
func (b *Builder) subscriptSet(n *ast.ArraySubscript) Set {
	lhs := b.setOf(n.LHS)
	var members []*types.Type
	polymorphic := false
	for _, raw := range lhs.Members {
		cand := ResolveAlias(raw)
		if cand == nil {
			continue
		}
		switch cand.Former {
		case types.Stack:
			members = append(members, cand.Element)
		case types.Bit:
			members = append(members, cand)
			polymorphic = true
		}
	}
	return Set{Members: members, Polymorphic: polymorphic}
}
