// Package typeselect implements the type-selection pass: a top-down
// walk that threads an expected type through context and, for every
// expression, narrows its potential TypeSet down to the single member
// compatible with that context.
//
// Grounded on 0select_type.c (the only original file that actually
// performs this narrowing — despite its filename and its neighboring
// potential_type hashmap, it is the type-selection pass, not the
// potential-types builder: see [[potype]]'s package doc). Its
// visit_expression(ast, result_type)/visit_binary_expr/visit_var_decl/
// visit_const shape — an explicit expected-type parameter threaded by
// ordinary recursive calls, checked against the node's TypeSet via
// typeset_contains_type, then recorded via type_select — is carried
// over directly; this package recurses over the AST by hand (the same
// way scopehier does) rather than through ast.Walk, because ast.Walk's
// callbacks take no extra argument and cannot carry an expected type
// down to exactly the children that should receive it.
package typeselect

import (
	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/decltype"
	"github.com/dfrunza/ashp4c-go/diag"
	"github.com/dfrunza/ashp4c-go/namebind"
	"github.com/dfrunza/ashp4c-go/potype"
	"github.com/dfrunza/ashp4c-go/scope"
	"github.com/dfrunza/ashp4c-go/scopehier"
	"github.com/dfrunza/ashp4c-go/types"
)

// Map associates every expression node with the single Type the pass
// selected for it.
type Map map[ast.Node]*types.Type

// Resolver runs the pass against the potential-types map potype
// produced, recording its own selected_type Map and any diagnostics.
type Resolver struct {
	root   *scope.Scope
	scopes scopehier.Map
	decls  namebind.DeclMap
	tm     decltype.TypeMap
	pm     potype.Map
	sel    Map
	diags  diag.List

	// currentReturnType is the enclosing function/action's declared
	// return type, consulted by return statements; reset around each
	// function-like body so it never leaks across declarations.
	currentReturnType *types.Type
}

func NewResolver(root *scope.Scope, scopes scopehier.Map, decls namebind.DeclMap, tm decltype.TypeMap, pm potype.Map) *Resolver {
	return &Resolver{root: root, scopes: scopes, decls: decls, tm: tm, pm: pm, sel: make(Map)}
}

// Run walks prog top-down, selecting a Type for every expression node
// reached in a context that supplies or requires one, and returns the
// resulting Map plus any diagnostics.
func Run(prog *ast.Program, scopes scopehier.Map, decls namebind.DeclMap, tm decltype.TypeMap, pm potype.Map, root *scope.Scope) (Map, diag.List) {
	r := NewResolver(root, scopes, decls, tm, pm)
	for _, d := range prog.Decls {
		r.visitDecl(d)
	}
	return r.sel, r.diags
}

func (r *Resolver) boolType() *types.Type {
	if d, ok := r.root.Lookup("bool", scope.Type); ok {
		return d.Type
	}
	return nil
}

// choose fetches e's potential TypeSet and narrows it to a single
// member, either the one compatible with expected (nil means no
// context supplied one, in which case the set must already be a
// singleton), recording the outcome in sel. It raises TypeMismatch or
// AmbiguousType and returns nil on failure, mirroring
// typeset_contains_type's error sites in the original.
func (r *Resolver) choose(e ast.Expr, expected *types.Type) *types.Type {
	set := r.pm[e]
	if expected != nil {
		if set.Polymorphic && isIntegerFormer(expected) {
			r.sel[e] = expected
			return expected
		}
		var match *types.Type
		count := 0
		for _, m := range set.Members {
			if compatible(m, expected) {
				match = m
				count++
			}
		}
		if count == 0 {
			r.diags.Add(diag.Newf(e.Pos(), diag.TypeMismatch, "expression type mismatch"))
			return nil
		}
		if count > 1 {
			r.diags.Add(diag.Newf(e.Pos(), diag.AmbiguousType, "ambiguous type"))
			return nil
		}
		r.sel[e] = match
		return match
	}
	if len(set.Members) != 1 {
		r.diags.Add(diag.Newf(e.Pos(), diag.AmbiguousType, "ambiguous type"))
		return nil
	}
	r.sel[e] = set.Members[0]
	return set.Members[0]
}

// compatible reports whether m is an acceptable selection given
// expected: identical after alias resolution, either side is the ANY
// builtin (spec.md's "ANY accepts everything"), or both are the same
// width-bearing former with one of them still width-polymorphic
// (Size == -1) — e.g. a "bit<8>" value satisfying a plain, unsized
// "bit" declaration. Two width-specific instances of the same former
// must still match exactly: that's the disjoint-width case (spec.md
// scenario 6, `bit<8> a; bit<16> b; a = b + 1;`) that has to fail.
func compatible(m, expected *types.Type) bool {
	rm, re := potype.ResolveAlias(m), potype.ResolveAlias(expected)
	if rm == nil || re == nil {
		return false
	}
	if rm == re || rm.Former == types.Any || re.Former == types.Any {
		return true
	}
	return widthFamily(rm.Former) && rm.Former == re.Former && (rm.Size == -1 || re.Size == -1)
}

func isIntegerFormer(ty *types.Type) bool {
	ty = potype.ResolveAlias(ty)
	return ty != nil && (ty.Former == types.Int || ty.Former == types.Bit)
}

func widthFamily(f types.Former) bool {
	return f == types.Int || f == types.Bit || f == types.Varbit
}

// visitExpr selects a Type for e under expected, then recurses into
// the substructure whose own expected type that selection determines.
func (r *Resolver) visitExpr(e ast.Expr, expected *types.Type) {
	if e == nil {
		return
	}
	chosen := r.choose(e, expected)
	switch n := e.(type) {
	case *ast.BinaryExpr:
		opTy := r.matchingOperator(n, chosen)
		var lt, rt *types.Type
		if opTy != nil && opTy.Params != nil && len(opTy.Params.Members) == 2 {
			lt, rt = opTy.Params.Members[0], opTy.Params.Members[1]
		}
		r.visitExpr(n.Left, lt)
		r.visitExpr(n.Right, rt)

	case *ast.UnaryExpr:
		r.visitExpr(n.Operand, chosen)

	case *ast.FunctionCall:
		r.visitExpr(n.Callee, nil)
		calleeTy := potype.ResolveAlias(r.sel[n.Callee])
		for i, a := range n.Args {
			var argExpected *types.Type
			if calleeTy != nil && calleeTy.Params != nil && i < len(calleeTy.Params.Members) {
				argExpected = calleeTy.Params.Members[i]
			}
			r.visitExpr(a, argExpected)
		}

	case *ast.MemberSelector:
		r.visitExpr(n.LHS, nil)

	case *ast.CastExpr:
		r.visitExpr(n.Expr, nil)

	case *ast.ArraySubscript:
		r.visitExpr(n.LHS, nil)
		r.visitExpr(n.Index, nil)

	case *ast.SliceExpr:
		r.visitExpr(n.LHS, nil)
		r.visitExpr(n.Hi, nil)
		r.visitExpr(n.Lo, nil)
	}
}

// matchingOperator recovers the FUNCTION overload potype's
// binaryExpression rule matched (potype's own Set only keeps return
// types, so this replays the same lookup to get back the Params the
// operands should be checked against). The overload table's own
// Return is always the generic, width-polymorphic primitive (e.g.
// unsized "bit"), while chosenReturn may be the width-specific Type
// potype.narrowOperatorReturn propagated from a concrete operand — so
// the two are compared by Former, not by pointer identity, for the
// width-bearing formers the bitwise/arithmetic tables return.
func (r *Resolver) matchingOperator(n *ast.BinaryExpr, chosenReturn *types.Type) *types.Type {
	if chosenReturn == nil {
		return nil
	}
	d, ok := r.root.Lookup(string(n.Op), scope.Type)
	if !ok {
		return nil
	}
	for ; d != nil; d = d.Next {
		if d.Type != nil && d.Type.Former == types.Function && returnMatches(d.Type.Return, chosenReturn) {
			return d.Type
		}
	}
	return nil
}

func returnMatches(candidate, chosen *types.Type) bool {
	if candidate == chosen {
		return true
	}
	if candidate == nil || chosen == nil {
		return false
	}
	return widthFamily(candidate.Former) && candidate.Former == chosen.Former
}

func (r *Resolver) visitDecl(d ast.Decl) {
	switch n := d.(type) {
	case *ast.VariableDecl:
		declTy := r.tm[n]
		if n.Init != nil {
			r.visitExpr(n.Init, declTy)
		}
	case *ast.ActionDecl:
		r.withReturnType(r.tm[n].Return, func() { r.visitBlock(n.Body) })
	case *ast.FunctionDecl:
		var ret *types.Type
		if protoTy := r.tm[n.Proto]; protoTy != nil {
			ret = protoTy.Return
		}
		r.withReturnType(ret, func() { r.visitBlock(n.Body) })
	case *ast.ParserDecl:
		for _, l := range n.Locals {
			r.visitDecl(l)
		}
		for _, st := range n.States {
			r.visitParserState(st)
		}
	case *ast.ControlDecl:
		for _, l := range n.Locals {
			r.visitDecl(l)
		}
		r.withReturnType(nil, func() { r.visitBlock(n.Apply) })
	case *ast.Instantiation:
		for _, a := range n.Args {
			r.visitExpr(a, nil)
		}
	case *ast.TableDecl:
		for _, p := range n.Properties {
			r.visitTableProperty(p)
		}
	}
}

// visitTableProperty type-checks one table property's expressions:
// key match expressions and their match_kind tags, action references
// and their arguments, entries' keysets and actions, and a simple
// property's value (default_action, size) — none of these carry an
// expected type from context, so each must already resolve to a
// singleton TypeSet member, same as any other context-free expression.
func (r *Resolver) visitTableProperty(p ast.TableProperty) {
	switch n := p.(type) {
	case *ast.KeyProperty:
		for _, k := range n.Elements {
			r.visitExpr(k.Expr, nil)
			if k.Match != nil {
				r.visitExpr(k.Match, nil)
			}
		}
	case *ast.ActionsProperty:
		for _, a := range n.Actions {
			r.visitActionRef(a)
		}
	case *ast.EntriesProperty:
		for _, e := range n.Entries {
			r.visitExpr(e.Keyset, nil)
			if e.Action != nil {
				r.visitActionRef(e.Action)
			}
		}
	case *ast.SimpleProperty:
		r.visitExpr(n.Value, nil)
	}
}

func (r *Resolver) visitActionRef(a *ast.ActionRef) {
	r.visitExpr(a.Name, nil)
	for _, arg := range a.Args {
		r.visitExpr(arg, nil)
	}
}

// withReturnType runs fn with currentReturnType set to ret, restoring
// the previous value afterward — function/action/apply bodies never
// nest, but this keeps the field correct even if a future statement
// kind introduces one.
func (r *Resolver) withReturnType(ret *types.Type, fn func()) {
	prev := r.currentReturnType
	r.currentReturnType = ret
	fn()
	r.currentReturnType = prev
}

func (r *Resolver) visitParserState(s *ast.ParserState) {
	for _, st := range s.Statements {
		r.visitStmt(st)
	}
	if s.Transition != nil {
		r.visitExpr(s.Transition.Target, nil)
	}
}

func (r *Resolver) visitBlock(b *ast.BlockStmt) {
	if b == nil {
		return
	}
	for _, st := range b.Stmts {
		r.visitStmt(st)
	}
}

// visitStmt dispatches the contexts spec.md names that set
// expected_type outside of declarations: return statements against the
// enclosing function's return type, if scrutinees against bool, switch
// case labels against the switch value's own selected type (the switch
// value itself has no expected type), and assignment RHS against the
// LHS's own selected type.
func (r *Resolver) visitStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VariableDecl:
		r.visitDecl(n)
	case *ast.BlockStmt:
		r.visitBlock(n)
	case *ast.AssignmentStmt:
		r.visitExpr(n.LHS, nil)
		r.visitExpr(n.RHS, r.sel[n.LHS])
	case *ast.ReturnStmt:
		if n.Value != nil {
			r.visitExpr(n.Value, r.currentReturnType)
		}
	case *ast.ConditionalStmt:
		r.visitExpr(n.Cond, r.boolType())
		r.visitStmt(n.Then)
		if n.Else != nil {
			r.visitStmt(n.Else)
		}
	case *ast.SwitchStmt:
		r.visitExpr(n.Value, nil)
		for _, c := range n.Cases {
			if c.Label != nil {
				r.visitExpr(c.Label, r.sel[n.Value])
			}
			if c.Stmt != nil {
				r.visitStmt(c.Stmt)
			}
		}
	case *ast.DirectApplication:
		for _, a := range n.Args {
			r.visitExpr(a, nil)
		}
	}
}
