package ast_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/dfrunza/ashp4c-go/ast"
)

func TestWalkVisitsEveryDecl(t *testing.T) {
	prog := &ast.Program{
		Decls: []ast.Decl{
			&ast.RecordTypeDecl{
				Kind: ast.RecordStruct,
				Name: &ast.Name{Value: "S"},
				Fields: []*ast.StructField{
					{Name: &ast.Name{Value: "x"}, Type: &ast.BaseType{Kind: ast.BaseBit}},
				},
			},
			&ast.VariableDecl{
				Name: &ast.Name{Value: "s"},
				Type: &ast.NamedType{Name: &ast.Ident{Value: "S"}},
			},
		},
	}

	var seen []string
	ast.Walk(prog, func(n ast.Node) bool {
		switch x := n.(type) {
		case *ast.Name:
			seen = append(seen, x.Value)
		case *ast.Ident:
			seen = append(seen, x.Value)
		}
		return true
	}, nil)

	qt.Assert(t, qt.DeepEquals(seen, []string{"S", "x", "S", "s"}))
}

func TestCloneParamsDoesNotAlias(t *testing.T) {
	orig := []*ast.Parameter{
		{Name: &ast.Name{Value: "a"}, Type: &ast.BaseType{Kind: ast.BaseBool}},
	}
	clone := ast.CloneParams(orig)

	qt.Assert(t, qt.HasLen(clone, 1))
	clone[0].Name.Value = "renamed"
	qt.Assert(t, qt.Equals(orig[0].Name.Value, "a"))
}
