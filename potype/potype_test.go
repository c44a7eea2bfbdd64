package potype_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/decltype"
	"github.com/dfrunza/ashp4c-go/namebind"
	"github.com/dfrunza/ashp4c-go/potype"
	"github.com/dfrunza/ashp4c-go/scope"
	"github.com/dfrunza/ashp4c-go/scopehier"
	"github.com/dfrunza/ashp4c-go/types"
)

func build(prog *ast.Program) (potype.Map, *scope.Scope) {
	root := scope.New()
	scopes := scopehier.NewBuilder(root).Build(prog)
	arena := types.NewArena()
	decls := namebind.Run(prog, scopes, arena, root)
	tm, _ := decltype.Run(prog, scopes, decls, arena, root)
	sets := potype.Run(prog, scopes, tm, root)
	return sets, root
}

func TestIntegerLiteralIsWidthPolymorphic(t *testing.T) {
	lit := &ast.IntegerLiteral{Value: 7}
	v := &ast.VariableDecl{Name: &ast.Name{Value: "x"}, Type: &ast.BaseType{Kind: ast.BaseInt}, Init: lit}
	prog := &ast.Program{Decls: []ast.Decl{v}}

	sets, root := build(prog)

	s := sets[lit]
	qt.Assert(t, qt.Equals(s.Polymorphic, true))
	intDecl, _ := root.Lookup("int", scope.Type)
	qt.Assert(t, qt.Equals(s.Contains(intDecl.Type), true))
	bitDecl, _ := root.Lookup("bit", scope.Type)
	qt.Assert(t, qt.Equals(s.Contains(bitDecl.Type), true))
}

func TestBooleanAndStringLiteralsAreSingletons(t *testing.T) {
	b := &ast.BooleanLiteral{Value: true}
	s := &ast.StringLiteral{Value: "hi"}
	prog := &ast.Program{Decls: []ast.Decl{
		&ast.VariableDecl{Name: &ast.Name{Value: "a"}, Type: &ast.BaseType{Kind: ast.BaseBool}, Init: b},
		&ast.VariableDecl{Name: &ast.Name{Value: "c"}, Type: &ast.BaseType{Kind: ast.BaseString}, Init: s},
	}}

	sets, root := build(prog)

	boolDecl, _ := root.Lookup("bool", scope.Type)
	qt.Assert(t, qt.DeepEquals(sets[b].Members, []*types.Type{boolDecl.Type}))

	stringDecl, _ := root.Lookup("string", scope.Type)
	qt.Assert(t, qt.DeepEquals(sets[s].Members, []*types.Type{stringDecl.Type}))
}

func TestBinaryExpressionFiltersOperatorOverloadsByOperandSets(t *testing.T) {
	left := &ast.IntegerLiteral{Value: 1}
	right := &ast.IntegerLiteral{Value: 2}
	bin := &ast.BinaryExpr{Op: ast.OpAdd, Left: left, Right: right}
	v := &ast.VariableDecl{Name: &ast.Name{Value: "x"}, Type: &ast.BaseType{Kind: ast.BaseInt}, Init: bin}
	prog := &ast.Program{Decls: []ast.Decl{v}}

	sets, root := build(prog)

	intDecl, _ := root.Lookup("int", scope.Type)
	s := sets[bin]
	qt.Assert(t, qt.HasLen(s.Members, 1))
	qt.Assert(t, qt.Equals(s.Members[0], intDecl.Type))
}

func TestBitwiseExpressionNarrowsReturnToTheConcreteOperandWidth(t *testing.T) {
	b := &ast.Ident{Value: "b"}
	lit := &ast.IntegerLiteral{Value: 1}
	bin := &ast.BinaryExpr{Op: ast.OpBitAnd, Left: b, Right: lit}
	bDecl := &ast.VariableDecl{Name: &ast.Name{Value: "b"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 16}}}
	use := &ast.VariableDecl{Name: &ast.Name{Value: "y"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 16}}, Init: bin}
	prog := &ast.Program{Decls: []ast.Decl{bDecl, use}}

	sets, _ := build(prog)

	binSet := sets[bin]
	qt.Assert(t, qt.HasLen(binSet.Members, 1))
	qt.Assert(t, qt.Equals(binSet.Members[0].Former, types.Bit))
	qt.Assert(t, qt.Equals(binSet.Members[0].Size, 16))
}

func TestBitwiseExpressionOfDisjointConcreteWidthsHasNoMatchingOverload(t *testing.T) {
	left := &ast.Ident{Value: "a"}
	right := &ast.Ident{Value: "b"}
	bin := &ast.BinaryExpr{Op: ast.OpBitAnd, Left: left, Right: right}
	aDecl := &ast.VariableDecl{Name: &ast.Name{Value: "a"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 8}}}
	bDecl := &ast.VariableDecl{Name: &ast.Name{Value: "b"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 16}}}
	prog := &ast.Program{Decls: []ast.Decl{aDecl, bDecl, &ast.VariableDecl{Name: &ast.Name{Value: "y"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 8}}, Init: bin}}}

	sets, _ := build(prog)

	qt.Assert(t, qt.Equals(sets[bin].Empty(), true))
}

func TestMemberSelectorFiltersToFieldsNamedSel(t *testing.T) {
	hdr := &ast.RecordTypeDecl{
		Kind: ast.RecordHeader,
		Name: &ast.Name{Value: "Ethernet"},
		Fields: []*ast.StructField{
			{Name: &ast.Name{Value: "dstAddr"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 48, HasWidth: true}}},
		},
	}
	eth := &ast.Ident{Value: "eth"}
	sel := &ast.MemberSelector{LHS: eth, Sel: "dstAddr"}
	v := &ast.VariableDecl{Name: &ast.Name{Value: "eth"}, Type: &ast.NamedType{Name: &ast.Ident{Value: "Ethernet"}}}
	use := &ast.VariableDecl{Name: &ast.Name{Value: "y"}, Type: &ast.BaseType{Kind: ast.BaseBit}, Init: sel}
	prog := &ast.Program{Decls: []ast.Decl{hdr, v, use}}

	sets, _ := build(prog)

	ethSet := sets[eth]
	qt.Assert(t, qt.HasLen(ethSet.Members, 1))

	selSet := sets[sel]
	qt.Assert(t, qt.HasLen(selSet.Members, 1))
	qt.Assert(t, qt.Equals(selSet.Members[0].Former, types.Bit))
}

func TestArraySubscriptOfStackYieldsElementType(t *testing.T) {
	hdr := &ast.RecordTypeDecl{Kind: ast.RecordHeader, Name: &ast.Name{Value: "H"}}
	stack := &ast.HeaderStackType{Element: &ast.NamedType{Name: &ast.Ident{Value: "H"}}, Size: &ast.IntegerLiteral{Value: 2}}
	v := &ast.VariableDecl{Name: &ast.Name{Value: "stk"}, Type: stack}
	stkRef := &ast.Ident{Value: "stk"}
	idx := &ast.IntegerLiteral{Value: 0}
	sub := &ast.ArraySubscript{LHS: stkRef, Index: idx}
	use := &ast.VariableDecl{Name: &ast.Name{Value: "elem"}, Type: &ast.NamedType{Name: &ast.Ident{Value: "H"}}, Init: sub}
	prog := &ast.Program{Decls: []ast.Decl{hdr, v, use}}

	sets, _ := build(prog)

	subSet := sets[sub]
	qt.Assert(t, qt.HasLen(subSet.Members, 1))
	elem := subSet.Members[0]
	qt.Assert(t, qt.Equals(elem.Former, types.TypeAlias))
	qt.Assert(t, qt.Equals(elem.Ref.Former, types.Header))
}

func TestEmptySetIsTypeErrorSentinel(t *testing.T) {
	var s potype.Set
	qt.Assert(t, qt.Equals(s.Empty(), true))
	s.Members = append(s.Members, &types.Type{})
	qt.Assert(t, qt.Equals(s.Empty(), false))
}
