// Package namebind implements the name binder: it seeds the root scope
// with the built-in primitive type names, accept/reject, and one Type
// arena entry per primitive, then walks the program recording one
// scope.NameDeclaration per name-introducing node into an external
// DeclMap.
//
// Grounded directly on passes/name_binding.cpp's define_builtin_names
// and its visit_* dispatch (NameSpace choice per declaration kind,
// including its two legacy quirks kept on purpose: function/action/
// table names bind into the TYPE namespace rather than VAR, and so do
// plain variable declarations — both namespace choices come straight
// from the original pass, not a transcription slip). Unlike the
// original, this pass never recomputes scope_map: the scope hierarchy
// builder already produced a complete node-to-scope map, including
// every reference (*ast.Ident) — this pass only needs it to know which
// scope.Scope a declaring node's name belongs in, reusing the generic
// ast.Walk traversal instead of hand-rolling a second one.
package namebind

import (
	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/scope"
	"github.com/dfrunza/ashp4c-go/scopehier"
	"github.com/dfrunza/ashp4c-go/types"
)

// DeclMap associates every name-introducing AST node with the
// NameDeclaration its binding produced.
type DeclMap map[ast.Node]*scope.NameDeclaration

type builtinNameSpec struct {
	name string
	ns   scope.NameSpace
}

// builtinDeclNames is define_builtin_names's builtin_names table.
var builtinDeclNames = []builtinNameSpec{
	{"void", scope.Type},
	{"bool", scope.Type},
	{"int", scope.Type},
	{"bit", scope.Type},
	{"varbit", scope.Type},
	{"string", scope.Type},
	{"error", scope.Type},
	{"match_kind", scope.Type},
	{"_", scope.Type},
	{"accept", scope.Var},
	{"reject", scope.Var},
}

type builtinTypeSpec struct {
	name   string
	former types.Former
}

// builtinPrimitives is define_builtin_names's builtin_types table.
var builtinPrimitives = []builtinTypeSpec{
	{"void", types.Void},
	{"bool", types.Bool},
	{"int", types.Int},
	{"bit", types.Bit},
	{"varbit", types.Varbit},
	{"string", types.String},
	{"error", types.ErrorT},
	{"match_kind", types.MatchKind},
	{"_", types.Any},
}

// Binder runs the pass and accumulates its DeclMap.
type Binder struct {
	root   *scope.Scope
	scopes scopehier.Map
	arena  *types.Arena
	decls  DeclMap
}

// NewBinder returns a Binder that will bind names against root (the
// scope hierarchy builder's root scope) and consult scopes for every
// node's enclosing scope.
func NewBinder(root *scope.Scope, scopes scopehier.Map, arena *types.Arena) *Binder {
	return &Binder{root: root, scopes: scopes, arena: arena, decls: make(DeclMap)}
}

// DefineBuiltins seeds the root scope with the primitive type names,
// accept/reject, and one arena Type per primitive, including the two
// enum-like types (error, match_kind) whose Fields product accumulates
// members every time an ErrorDecl/MatchKindDecl is bound.
func (b *Binder) DefineBuiltins() {
	for _, n := range builtinDeclNames {
		b.root.Bind(n.name, n.ns, nil)
	}
	for _, t := range builtinPrimitives {
		decl, _ := b.root.Lookup(t.name, scope.Type)
		ty := b.arena.New(t.former)
		ty.Name = t.name
		if t.former == types.Int || t.former == types.Bit || t.former == types.Varbit {
			ty.Size = -1
		}
		decl.Type = ty
	}
	errDecl, _ := b.root.Lookup("error", scope.Type)
	errDecl.Type.Fields = b.arena.NewProduct(nil)

	matchKindDecl, _ := b.root.Lookup("match_kind", scope.Type)
	matchKindDecl.Type.Fields = b.arena.NewProduct(nil)
}

// Run seeds the builtins and binds every name-introducing node of
// prog, returning the resulting DeclMap.
func Run(prog *ast.Program, scopes scopehier.Map, arena *types.Arena, root *scope.Scope) DeclMap {
	b := NewBinder(root, scopes, arena)
	b.DefineBuiltins()
	ast.Walk(prog, b.visit, nil)
	return b.decls
}

// scopeOf is the scope a node that does NOT open its own child scope
// is bound in: its own recorded scope.
func (b *Binder) scopeOf(n ast.Node) *scope.Scope {
	if s, ok := b.scopes[n]; ok {
		return s
	}
	return b.root
}

// parentOf is the scope a node that DOES open its own child scope
// is bound in: the scope active just before that child scope was
// pushed by the scope hierarchy builder.
func (b *Binder) parentOf(n ast.Node) *scope.Scope {
	s, ok := b.scopes[n]
	if !ok || s.Parent == nil {
		return b.root
	}
	return s.Parent
}

// visit is ast.Walk's before callback: it always returns true so Walk
// keeps recursing into the node's children (needed to reach nested
// BaseType references and further declarations), and binds whichever
// name the node at hand introduces.
func (b *Binder) visit(node ast.Node) bool {
	switch n := node.(type) {
	case *ast.RecordTypeDecl:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.StructField:
		decl := b.scopeOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.EnumDecl:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.SpecifiedIdentifier:
		decl := b.scopeOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.ErrorDecl:
		b.bindEnumLikeFields("error", n, n.Identifiers)
	case *ast.MatchKindDecl:
		b.bindEnumLikeFields("match_kind", n, n.Identifiers)
	case *ast.TypedefDecl:
		decl := b.scopeOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.Parameter:
		b.bindParam(n)
	case *ast.FunctionPrototype:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.ParserTypeDecl:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.ParserState:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Var, n)
		b.decls[n] = decl
	case *ast.ControlTypeDecl:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.PackageTypeDecl:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.ExternTypeDecl:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.Instantiation:
		decl := b.scopeOf(n).Bind(n.Name.Value, scope.Var, n)
		b.decls[n] = decl
	case *ast.ActionDecl:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.TableDecl:
		decl := b.parentOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.VariableDecl:
		decl := b.scopeOf(n).Bind(n.Name.Value, scope.Type, n)
		b.decls[n] = decl
	case *ast.BaseType:
		if name := builtinNameForBaseType(n.Kind); name != "" {
			if decl, ok := b.root.Lookup(name, scope.Type); ok {
				b.decls[n] = decl
			}
		}
	}
	return true
}

func (b *Binder) bindParam(p *ast.Parameter) {
	decl := b.scopeOf(p).Bind(p.Name.Value, scope.Var, p)
	b.decls[p] = decl
}

// bindEnumLikeFields builds the error/match_kind field lists in a single
// pass, appending as it goes: decl_map[n] points at the single built-in type's own
// declaration (not a fresh one — every ErrorDecl/MatchKindDecl in the
// program contributes to the same Type), while each occurrence's
// identifiers are bound, in NameSpace::TYPE, within n's own scope and
// appended as FIELD members of that type's Fields product.
func (b *Binder) bindEnumLikeFields(builtinName string, n ast.Node, idents []*ast.Name) {
	decl, ok := b.root.Lookup(builtinName, scope.Type)
	if !ok {
		return
	}
	b.decls[n] = decl
	s := b.scopeOf(n)
	for _, name := range idents {
		fieldDecl := s.Bind(name.Value, scope.Type, name)
		b.decls[name] = fieldDecl
		field := b.arena.New(types.Field)
		field.Name = name.Value
		field.FieldType = decl.Type
		decl.Type.Fields.Members = append(decl.Type.Fields.Members, field)
	}
}

func builtinNameForBaseType(k ast.BaseTypeKind) string {
	switch k {
	case ast.BaseVoid:
		return "void"
	case ast.BaseBool:
		return "bool"
	case ast.BaseInt:
		return "int"
	case ast.BaseBit:
		return "bit"
	case ast.BaseVarbit:
		return "varbit"
	case ast.BaseString:
		return "string"
	case ast.BaseError:
		return "error"
	default:
		return ""
	}
}
