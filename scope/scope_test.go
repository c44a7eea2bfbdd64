package scope_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/scope"
)

func TestLookupWalksParentChain(t *testing.T) {
	root := scope.New()
	decl := root.Bind("bit", scope.Type, nil)

	child := root.NewChild()
	grandchild := child.NewChild()

	got, ok := grandchild.Lookup("bit", scope.Type)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Equals(got, decl))
}

func TestShadowingInChildScopeDoesNotMutateParent(t *testing.T) {
	root := scope.New()
	root.Bind("x", scope.Var, &ast.Name{Value: "x"})

	child := root.NewChild()
	child.Bind("x", scope.Var, &ast.Name{Value: "x-inner"})

	parentDecl, _ := root.Lookup("x", scope.Var)
	childDecl, _ := child.Lookup("x", scope.Var)

	qt.Assert(t, qt.Not(qt.Equals(parentDecl, childDecl)))
	qt.Assert(t, qt.Equals(parentDecl.Ambiguous(), false))
}

func TestRebindInSameScopeChainsAndSignalsAmbiguity(t *testing.T) {
	s := scope.New()
	s.Bind("Foo", scope.Type, &ast.Name{Value: "Foo"})
	second := s.Bind("Foo", scope.Type, &ast.Name{Value: "Foo"})

	got, ok := s.Lookup("Foo", scope.Type)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Equals(got, second))
	qt.Assert(t, qt.Equals(got.Ambiguous(), true))
	qt.Assert(t, qt.Equals(got.Next.Ambiguous(), false))
}

func TestNamespacesAreIndependent(t *testing.T) {
	s := scope.New()
	s.Bind("T", scope.Type, &ast.Name{Value: "T"})
	s.Bind("T", scope.Var, &ast.Name{Value: "T"})

	typeDecl, ok := s.Lookup("T", scope.Type)
	qt.Assert(t, qt.Equals(ok, true))
	varDecl, ok := s.Lookup("T", scope.Var)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Not(qt.Equals(typeDecl, varDecl)))
}

func TestLookupMissReturnsFalse(t *testing.T) {
	s := scope.New()
	_, ok := s.Lookup("nope", scope.Var)
	qt.Assert(t, qt.Equals(ok, false))
}

func TestLookupTypeSurfacesAmbiguityAsError(t *testing.T) {
	s := scope.New()
	s.Bind("Foo", scope.Type, &ast.Name{Value: "Foo"})
	s.Bind("Foo", scope.Type, &ast.Name{Value: "Foo"})

	_, found, err := s.LookupType("Foo")
	qt.Assert(t, qt.Equals(found, true))
	qt.Assert(t, qt.ErrorMatches(err, `ambiguous type reference "Foo"`))
}

func TestRootWalksToOutermostAncestor(t *testing.T) {
	root := scope.New()
	mid := root.NewChild()
	leaf := mid.NewChild()

	qt.Assert(t, qt.Equals(leaf.Root(), root))
}
