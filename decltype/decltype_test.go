package decltype_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/decltype"
	"github.com/dfrunza/ashp4c-go/diag"
	"github.com/dfrunza/ashp4c-go/namebind"
	"github.com/dfrunza/ashp4c-go/scope"
	"github.com/dfrunza/ashp4c-go/scopehier"
	"github.com/dfrunza/ashp4c-go/types"
)

func build(prog *ast.Program) (decltype.TypeMap, namebind.DeclMap, *scope.Scope) {
	root := scope.New()
	scopes := scopehier.NewBuilder(root).Build(prog)
	arena := types.NewArena()
	decls := namebind.Run(prog, scopes, arena, root)
	tm, _ := decltype.Run(prog, scopes, decls, arena, root)
	return tm, decls, root
}

func TestBinaryOperatorsAreBoundInRootTypeNamespace(t *testing.T) {
	_, _, root := build(&ast.Program{})

	addDecl, ok := root.Lookup("+", scope.Type)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Equals(addDecl.Type.Former, types.Function))
	qt.Assert(t, qt.HasLen(addDecl.Type.Params.Members, 2))

	eqDecl, ok := root.Lookup("==", scope.Type)
	qt.Assert(t, qt.Equals(ok, true))
	intDecl, _ := root.Lookup("int", scope.Type)
	qt.Assert(t, qt.Equals(eqDecl.Type.Params.Members[0], intDecl.Type))
	boolDecl, _ := root.Lookup("bool", scope.Type)
	qt.Assert(t, qt.Equals(eqDecl.Type.Return, boolDecl.Type))
}

func TestVariableDeclarationOfNamedTypeResolvesToTheDeclaredRecordType(t *testing.T) {
	hdr := &ast.RecordTypeDecl{
		Kind: ast.RecordHeader,
		Name: &ast.Name{Value: "Ethernet"},
		Fields: []*ast.StructField{
			{Name: &ast.Name{Value: "dstAddr"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 48, HasWidth: true}}},
		},
	}
	v := &ast.VariableDecl{
		Name: &ast.Name{Value: "eth"},
		Type: &ast.NamedType{Name: &ast.Ident{Value: "Ethernet"}},
	}
	prog := &ast.Program{Decls: []ast.Decl{hdr, v}}

	tm, decls, _ := build(prog)

	hdrTy := tm[hdr]
	qt.Assert(t, qt.Equals(hdrTy.Former, types.Header))
	qt.Assert(t, qt.HasLen(hdrTy.Fields.Members, 1))

	varDecl := decls[v]
	qt.Assert(t, qt.Equals(varDecl.Type.Former, types.TypeAlias))
	qt.Assert(t, qt.Equals(varDecl.Type.Ref, hdrTy))
}

func TestUnresolvedNamedTypeProducesDiagnostic(t *testing.T) {
	v := &ast.VariableDecl{
		Name: &ast.Name{Value: "x"},
		Type: &ast.NamedType{Name: &ast.Ident{Value: "Nope"}},
	}
	prog := &ast.Program{Decls: []ast.Decl{v}}

	root := scope.New()
	scopes := scopehier.NewBuilder(root).Build(prog)
	arena := types.NewArena()
	decls := namebind.Run(prog, scopes, arena, root)
	_, diags := decltype.Run(prog, scopes, decls, arena, root)

	qt.Assert(t, qt.HasLen(diags, 1))
}

func TestTypedefAliasChainCollapsesToUnderlyingType(t *testing.T) {
	base := &ast.TypedefDecl{Name: &ast.Name{Value: "Base"}, Ref: &ast.BaseType{Kind: ast.BaseBit}}
	alias := &ast.TypedefDecl{Name: &ast.Name{Value: "Alias"}, Ref: &ast.NamedType{Name: &ast.Ident{Value: "Base"}}}
	prog := &ast.Program{Decls: []ast.Decl{base, alias}}

	tm, _, _ := build(prog)

	aliasTy := tm[alias]
	qt.Assert(t, qt.Equals(aliasTy.Former, types.TypeAlias))
	qt.Assert(t, qt.Not(qt.Equals(aliasTy.Ref.Former, types.TypeAlias)))
	qt.Assert(t, qt.Equals(aliasTy.Ref.Former, types.Bit))
}

func TestExternConstructorPrototypeReturnsTheExternType(t *testing.T) {
	ctor := &ast.FunctionPrototype{Name: &ast.Name{Value: "Counter"}}
	method := &ast.FunctionPrototype{
		Name:       &ast.Name{Value: "count"},
		ReturnType: &ast.BaseType{Kind: ast.BaseVoid},
	}
	ext := &ast.ExternTypeDecl{
		Name:         &ast.Name{Value: "Counter"},
		MethodProtos: []*ast.FunctionPrototype{ctor, method},
	}
	prog := &ast.Program{Decls: []ast.Decl{ext}}

	tm, _, _ := build(prog)

	externTy := tm[ext]
	qt.Assert(t, qt.Equals(externTy.Former, types.Extern))
	qt.Assert(t, qt.HasLen(externTy.Methods.Members, 2))
	qt.Assert(t, qt.HasLen(externTy.Ctors.Members, 1))
	qt.Assert(t, qt.Equals(externTy.Ctors.Members[0], tm[ctor]))
	qt.Assert(t, qt.Equals(tm[ctor].Return, externTy))
}

func TestEnumFieldsPointBackAtTheEnumType(t *testing.T) {
	enum := &ast.EnumDecl{
		Name: &ast.Name{Value: "Color"},
		Identifiers: []*ast.SpecifiedIdentifier{
			{Name: &ast.Name{Value: "Red"}},
			{Name: &ast.Name{Value: "Blue"}},
		},
	}
	prog := &ast.Program{Decls: []ast.Decl{enum}}

	tm, decls, _ := build(prog)

	enumTy := tm[enum]
	qt.Assert(t, qt.Equals(enumTy.Former, types.Enum))
	qt.Assert(t, qt.HasLen(enumTy.Fields.Members, 2))
	qt.Assert(t, qt.Equals(enumTy.Fields.Members[0].FieldType, enumTy))

	redDecl := decls[enum.Identifiers[0]]
	qt.Assert(t, qt.Equals(redDecl.Type, enumTy.Fields.Members[0]))
}

func TestBaseTypeWidthProducesDistinctTypesPerFamily(t *testing.T) {
	a := &ast.VariableDecl{Name: &ast.Name{Value: "a"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 8}}}
	b := &ast.VariableDecl{Name: &ast.Name{Value: "b"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 16}}}
	c := &ast.VariableDecl{Name: &ast.Name{Value: "c"}, Type: &ast.BaseType{Kind: ast.BaseBit, Width: &ast.IntegerLiteral{Value: 8}}}
	prog := &ast.Program{Decls: []ast.Decl{a, b, c}}

	tm, decls, root := build(prog)

	aTy, bTy, cTy := decls[a].Type, decls[b].Type, decls[c].Type
	qt.Assert(t, qt.Equals(aTy.Former, types.Bit))
	qt.Assert(t, qt.Equals(aTy.Size, 8))
	qt.Assert(t, qt.Equals(bTy.Size, 16))
	qt.Assert(t, qt.Not(qt.Equals(aTy, bTy)))
	// Same width, same former: the two occurrences share one Type.
	qt.Assert(t, qt.Equals(aTy, cTy))

	bitDecl, _ := root.Lookup("bit", scope.Type)
	qt.Assert(t, qt.Not(qt.Equals(aTy, bitDecl.Type)))
	qt.Assert(t, qt.Equals(tm[a.Type.(*ast.BaseType)], aTy))
}

func TestUnparameterizedBaseTypeSharesTheCanonicalWidthPolymorphicType(t *testing.T) {
	v := &ast.VariableDecl{Name: &ast.Name{Value: "x"}, Type: &ast.BaseType{Kind: ast.BaseBit}}
	prog := &ast.Program{Decls: []ast.Decl{v}}

	_, decls, root := build(prog)

	bitDecl, _ := root.Lookup("bit", scope.Type)
	qt.Assert(t, qt.Equals(decls[v].Type, bitDecl.Type))
	qt.Assert(t, qt.Equals(bitDecl.Type.Size, -1))
}

func TestInstantiatingAZeroConstructorExternIsATypeMismatch(t *testing.T) {
	ext := &ast.ExternTypeDecl{
		Name: &ast.Name{Value: "NoCtor"},
		MethodProtos: []*ast.FunctionPrototype{
			{Name: &ast.Name{Value: "doThing"}, ReturnType: &ast.BaseType{Kind: ast.BaseVoid}},
		},
	}
	inst := &ast.Instantiation{
		Name: &ast.Name{Value: "n"},
		Type: &ast.NamedType{Name: &ast.Ident{Value: "NoCtor"}},
	}
	prog := &ast.Program{Decls: []ast.Decl{ext, inst}}

	root := scope.New()
	scopes := scopehier.NewBuilder(root).Build(prog)
	arena := types.NewArena()
	decls := namebind.Run(prog, scopes, arena, root)
	_, diags := decltype.Run(prog, scopes, decls, arena, root)

	qt.Assert(t, qt.HasLen(diags, 1))
}

func TestInstantiatingAnExternWithAConstructorSucceeds(t *testing.T) {
	ctor := &ast.FunctionPrototype{Name: &ast.Name{Value: "Counter"}}
	ext := &ast.ExternTypeDecl{
		Name:         &ast.Name{Value: "Counter"},
		MethodProtos: []*ast.FunctionPrototype{ctor},
	}
	inst := &ast.Instantiation{
		Name: &ast.Name{Value: "n"},
		Type: &ast.NamedType{Name: &ast.Ident{Value: "Counter"}},
	}
	prog := &ast.Program{Decls: []ast.Decl{ext, inst}}

	_, diags := func() (decltype.TypeMap, diag.List) {
		root := scope.New()
		scopes := scopehier.NewBuilder(root).Build(prog)
		arena := types.NewArena()
		decls := namebind.Run(prog, scopes, arena, root)
		return decltype.Run(prog, scopes, decls, arena, root)
	}()

	qt.Assert(t, qt.HasLen(diags, 0))
}

func TestHeaderStackTypeCarriesElementAndConstantSize(t *testing.T) {
	hs := &ast.HeaderStackType{
		Element: &ast.BaseType{Kind: ast.BaseBit},
		Size:    &ast.IntegerLiteral{Value: 4},
	}
	v := &ast.VariableDecl{Name: &ast.Name{Value: "stack"}, Type: hs}
	prog := &ast.Program{Decls: []ast.Decl{v}}

	tm, _, root := build(prog)

	stackTy := tm[hs]
	qt.Assert(t, qt.Equals(stackTy.Former, types.Stack))
	qt.Assert(t, qt.Equals(stackTy.Size, 4))
	bitDecl, _ := root.Lookup("bit", scope.Type)
	qt.Assert(t, qt.Equals(stackTy.Element, bitDecl.Type))
}
