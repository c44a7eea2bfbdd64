package sema_test

import (
	"context"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/sema"
)

func TestRunProducesAllFourMapsAndTheTypeArena(t *testing.T) {
	lit := &ast.IntegerLiteral{Value: 5}
	v := &ast.VariableDecl{
		Name: &ast.Name{Value: "x"},
		Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 8, HasWidth: true}},
		Init: lit,
	}
	prog := &ast.Program{Decls: []ast.Decl{v}}

	res, diags := sema.Run(context.Background(), prog, sema.Config{})

	qt.Assert(t, qt.HasLen(diags, 0))
	qt.Assert(t, qt.Not(qt.IsNil(res)))
	qt.Check(t, qt.Not(qt.HasLen(res.Types, 0)))
	qt.Check(t, qt.Not(qt.HasLen(res.ScopeMap, 0)))
	qt.Check(t, qt.Not(qt.HasLen(res.DeclMap, 0)))
	qt.Check(t, qt.Not(qt.HasLen(res.TypeMap, 0)))

	bitDecl, ok := res.TypeMap[v], true
	_ = ok
	qt.Check(t, qt.Not(qt.IsNil(bitDecl)))
	qt.Check(t, qt.Equals(res.SelectedType[lit], bitDecl))
}

func TestRunStopsAtDeclaredTypesDiagnostics(t *testing.T) {
	// A variable declared with an unresolved type name produces a
	// declared-types diagnostic, which must short-circuit the pipeline
	// before potype/typeselect ever run.
	v := &ast.VariableDecl{
		Name: &ast.Name{Value: "x"},
		Type: &ast.NamedType{Name: &ast.Ident{Value: "DoesNotExist"}},
	}
	prog := &ast.Program{Decls: []ast.Decl{v}}

	res, diags := sema.Run(context.Background(), prog, sema.Config{})

	qt.Assert(t, qt.IsNil(res))
	qt.Check(t, qt.Not(qt.HasLen(diags, 0)))
}

func TestHeaderUnionRejectedBeforeP4_16(t *testing.T) {
	hu := &ast.RecordTypeDecl{Kind: ast.RecordHeaderUnion, Name: &ast.Name{Value: "U"}}
	prog := &ast.Program{Decls: []ast.Decl{hu}}

	res, diags := sema.Run(context.Background(), prog, sema.Config{LanguageVersion: "14.0.0"})

	qt.Assert(t, qt.IsNil(res))
	qt.Assert(t, qt.HasLen(diags, 1))
}

func TestHeaderUnionAllowedAtP4_16(t *testing.T) {
	hu := &ast.RecordTypeDecl{Kind: ast.RecordHeaderUnion, Name: &ast.Name{Value: "U"}}
	prog := &ast.Program{Decls: []ast.Decl{hu}}

	_, diags := sema.Run(context.Background(), prog, sema.Config{LanguageVersion: "16.0.0"})

	qt.Assert(t, qt.HasLen(diags, 0))
}

func TestRunMintsADistinctRunIDPerCall(t *testing.T) {
	prog := &ast.Program{Decls: nil}

	res1, _ := sema.Run(context.Background(), prog, sema.Config{})
	res2, _ := sema.Run(context.Background(), prog, sema.Config{})

	qt.Assert(t, qt.Not(qt.Equals(res1.RunID, res2.RunID)))
}
