// Package decltype implements the declared-types pass: for every
// declaration node it constructs the Type value the declaration
// introduces and writes it into the node's NameDeclaration.Type (via
// the DeclMap the name binder produced); for every type-reference node
// it constructs a transient NAMEREF (here: Nameref) or compound Type
// whose resolution completes in a three-step sweep run once at the end
// of the pass.
//
// Grounded on passes/declared_type.cpp's define_builtin_types (the
// built-in operator-overload FUNCTION tables keyed by operator lexeme)
// and its visit_* dispatch (one Type former per declaration/type-ref
// kind) and do_pass's three-step resolution sweep at the end. Unlike
// the original, this pass needs no auxiliary type_env side-map to
// thread a child's Type up to its parent: ast.Walk's post-order
// "after" callback already gives every parent node its children's
// Types as ordinary Go return values recorded in an external TypeMap,
// since a Go function can simply return what a C visit_* had to stash
// in a side table to get back to its caller.
package decltype

import (
	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/diag"
	"github.com/dfrunza/ashp4c-go/namebind"
	"github.com/dfrunza/ashp4c-go/scope"
	"github.com/dfrunza/ashp4c-go/scopehier"
	"github.com/dfrunza/ashp4c-go/types"
)

// TypeMap associates every declaration and type-reference node with the
// Type the pass constructed for it.
type TypeMap map[ast.Node]*types.Type

var arithmeticOps = []string{"+", "-", "*", "/"}
var logicalOps = []string{"&&", "||"}
var relationalOps = []string{"==", "!=", "<", ">", "<=", ">="}
var bitwiseOps = []string{"&", "|", "^", "<<", ">>"}

// ctorContext tracks the enclosing extern type declaration so a nested
// functionPrototype with no return type can be recognized as that
// extern's constructor (frontend.h's ctor_ty/ctor_strname parameters,
// here threaded via a stack pushed/popped around ExternTypeDecl instead
// of passed down the call chain, since ast.Walk's callbacks take no
// extra arguments).
type ctorContext struct {
	name string
	ty   *types.Type
}

// Builder runs the pass and accumulates its TypeMap and diagnostics.
type Builder struct {
	root   *scope.Scope
	scopes scopehier.Map
	decls  namebind.DeclMap
	arena  *types.Arena
	types  TypeMap
	diags  diag.List

	ctorStack []ctorContext

	// widths caches the width-parameterized Type allocated for each
	// distinct (Former, bit width) pair a BaseType node names, so e.g.
	// every "bit<8>" occurrence in the program shares one Type and
	// "bit<16>" gets a second, disjoint one — see widthedType.
	widths map[widthKey]*types.Type

	// instantiations collects every Instantiation seen during the walk,
	// checked for a zero-constructor extern once resolveTypeAliases has
	// settled its Type onto the real referent (before that, n.Type is
	// still a transient NAMEREF, not yet the EXTERN it names).
	instantiations []*ast.Instantiation
}

// widthKey identifies one operand-width family: a primitive Former
// together with the concrete bit width a BaseType occurrence declared
// for it. An unparameterized occurrence is not cached here; it shares
// the builtin primitive Type.
type widthKey struct {
	former types.Former
	size   int
}

func NewBuilder(root *scope.Scope, scopes scopehier.Map, decls namebind.DeclMap, arena *types.Arena) *Builder {
	return &Builder{root: root, scopes: scopes, decls: decls, arena: arena, types: make(TypeMap), widths: make(map[widthKey]*types.Type)}
}

// Run defines the built-in operator overloads, walks prog constructing
// a Type per declaration and type-reference node, then resolves every
// transient NAMEREF/TYPEDEF/TYPE in the arena. It returns the TypeMap
// and any diagnostics the pass raised (name resolution, alias cycles,
// table properties and extern instantiations).
func Run(prog *ast.Program, scopes scopehier.Map, decls namebind.DeclMap, arena *types.Arena, root *scope.Scope) (TypeMap, diag.List) {
	b := NewBuilder(root, scopes, decls, arena)
	b.DefineBuiltinOperators()
	ast.Walk(prog, b.before, b.after)
	b.resolveNamerefs()
	b.resolveTypedefs()
	b.resolveTypeAliases()
	b.checkInstantiations()
	return b.types, b.diags
}

// DefineBuiltinOperators installs the arithmetic/logical/relational/
// bitwise operator overloads as FUNCTION types bound by lexeme into the
// root scope's TYPE namespace, and gives accept/reject a STATE type
// (define_builtin_types's accept/reject and four operator tables).
func (b *Builder) DefineBuiltinOperators() {
	b.defineBinaryOps(arithmeticOps, "int", "int", "int")
	b.defineBinaryOps(logicalOps, "bool", "bool", "bool")
	b.defineBinaryOps(relationalOps, "int", "int", "bool")
	b.defineBinaryOps(bitwiseOps, "bit", "bit", "bit")

	if d, ok := b.root.Lookup("accept", scope.Var); ok {
		d.Type = b.arena.New(types.State)
	}
	if d, ok := b.root.Lookup("reject", scope.Var); ok {
		d.Type = b.arena.New(types.State)
	}
}

func (b *Builder) defineBinaryOps(ops []string, lhs, rhs, ret string) {
	lhsDecl, _ := b.root.Lookup(lhs, scope.Type)
	rhsDecl, _ := b.root.Lookup(rhs, scope.Type)
	retDecl, _ := b.root.Lookup(ret, scope.Type)
	for _, op := range ops {
		ty := b.arena.New(types.Function)
		ty.Name = op
		ty.Params = b.arena.NewProduct([]*types.Type{lhsDecl.Type, rhsDecl.Type})
		ty.Return = retDecl.Type
		decl := b.root.Bind(op, scope.Type, nil)
		decl.Type = ty
	}
}

// before is ast.Walk's pre-order callback. Its only job is to allocate
// an extern's Type before descending into its method prototypes, so a
// constructor prototype nested inside can point its return type back
// at the (still being built) extern type, the same forward-reference
// the original produces by appending the extern's Type before visiting
// its methods.
func (b *Builder) before(node ast.Node) bool {
	if ext, ok := node.(*ast.ExternTypeDecl); ok {
		ty := b.arena.New(types.Extern)
		ty.Name = ext.Name.Value
		ty.AST = ext
		b.types[ext] = ty
		b.ctorStack = append(b.ctorStack, ctorContext{name: ext.Name.Value, ty: ty})
	}
	return true
}

// after is ast.Walk's post-order callback: every case constructs the
// Type for node from its already-visited children's Types.
func (b *Builder) after(node ast.Node) {
	switch n := node.(type) {
	case *ast.BaseType:
		b.types[n] = b.declType(n)

	case *ast.NamedType:
		ty := b.arena.New(types.Nameref)
		ty.AST = n
		ty.RefName = n.Name.Value
		ty.RefScope = b.scopeFor(n)
		b.types[n] = ty

	case *ast.TupleType:
		members := make([]*types.Type, len(n.Args))
		for i, a := range n.Args {
			members[i] = b.typeOf(a)
		}
		b.types[n] = b.arena.NewProduct(members)

	case *ast.HeaderStackType:
		ty := b.arena.New(types.Stack)
		ty.AST = n
		ty.Element = b.typeOf(n.Element)
		if lit, ok := n.Size.(*ast.IntegerLiteral); ok {
			ty.Size = int(lit.Value)
		} else {
			ty.Size = -1
		}
		b.types[n] = ty

	case *ast.StructField:
		ty := b.arena.New(types.Field)
		ty.Name = n.Name.Value
		ty.AST = n
		ty.FieldType = b.typeOf(n.Type)
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.RecordTypeDecl:
		ty := b.arena.New(recordFormer(n.Kind))
		ty.Name = n.Name.Value
		ty.AST = n
		members := make([]*types.Type, len(n.Fields))
		for i, f := range n.Fields {
			members[i] = b.typeOf(f)
		}
		ty.Fields = b.arena.NewProduct(members)
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.EnumDecl:
		ty := b.arena.New(types.Enum)
		ty.Name = n.Name.Value
		ty.AST = n
		members := make([]*types.Type, len(n.Identifiers))
		for i, id := range n.Identifiers {
			f := b.arena.New(types.Field)
			f.Name = id.Name.Value
			f.AST = id
			f.FieldType = ty
			members[i] = f
			b.types[id] = f
			b.setDeclType(id, f)
		}
		ty.Fields = b.arena.NewProduct(members)
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.TypedefDecl:
		ty := b.arena.New(types.Typedef)
		ty.Name = n.Name.Value
		ty.AST = n
		ty.Ref = b.typeOf(n.Ref)
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.Parameter:
		ty := b.typeOf(n.Type)
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.FunctionPrototype:
		ty := b.arena.New(types.Function)
		ty.Name = n.Name.Value
		ty.AST = n
		ty.Params = b.arena.NewProduct(b.paramTypes(n.Params))
		if n.ReturnType != nil {
			ty.Return = b.typeOf(n.ReturnType)
		} else if ctx, ok := b.currentCtor(); ok && ctx.name == n.Name.Value {
			ty.Return = ctx.ty
		}
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.ParserTypeDecl:
		ty := b.arena.New(types.Parser)
		ty.Name = n.Name.Value
		ty.AST = n
		ty.Params = b.arena.NewProduct(b.paramTypes(n.Params))
		ty.Methods = b.arena.NewProduct(b.protoTypes(n.MethodProtos))
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.ParserDecl:
		protoTy := b.typeOf(n.Proto)
		if len(n.CtorParams) > 0 {
			protoTy.CtorParams = b.arena.NewProduct(b.paramTypes(n.CtorParams))
		}

	case *ast.ParserState:
		ty := b.arena.New(types.State)
		ty.Name = n.Name.Value
		ty.AST = n
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.ControlTypeDecl:
		ty := b.arena.New(types.Control)
		ty.Name = n.Name.Value
		ty.AST = n
		ty.Params = b.arena.NewProduct(b.paramTypes(n.Params))
		ty.Methods = b.arena.NewProduct(b.protoTypes(n.MethodProtos))
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.ControlDecl:
		protoTy := b.typeOf(n.Proto)
		if len(n.CtorParams) > 0 {
			protoTy.CtorParams = b.arena.NewProduct(b.paramTypes(n.CtorParams))
		}

	case *ast.PackageTypeDecl:
		ty := b.arena.New(types.Package)
		ty.Name = n.Name.Value
		ty.AST = n
		ty.Params = b.arena.NewProduct(b.paramTypes(n.Params))
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.ExternTypeDecl:
		ty := b.types[n] // allocated by before()
		b.ctorStack = b.ctorStack[:len(b.ctorStack)-1]
		methods := b.protoTypes(n.MethodProtos)
		ty.Methods = b.arena.NewProduct(methods)
		var ctors []*types.Type
		for _, m := range methods {
			if m.Name == n.Name.Value {
				ctors = append(ctors, m)
			}
		}
		ty.Ctors = b.arena.NewProduct(ctors)
		b.setDeclType(n, ty)

	case *ast.Instantiation:
		ty := b.typeOf(n.Type)
		b.types[n] = ty
		b.setDeclType(n, ty)
		b.instantiations = append(b.instantiations, n)

	case *ast.ActionDecl:
		ty := b.arena.New(types.Function)
		ty.Name = n.Name.Value
		ty.AST = n
		ty.Params = b.arena.NewProduct(b.paramTypes(n.Params))
		if voidDecl, ok := b.root.Lookup("void", scope.Type); ok {
			ty.Return = voidDecl.Type
		}
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.TableDecl:
		ty := b.arena.New(types.Table)
		ty.Name = n.Name.Value
		ty.AST = n
		ty.Methods = b.arena.NewProduct(b.protoTypes(n.MethodProtos))
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.VariableDecl:
		ty := b.typeOf(n.Type)
		b.types[n] = ty
		b.setDeclType(n, ty)

	case *ast.SimpleProperty:
		if n.Name.Value != "default_action" && n.Name.Value != "size" {
			b.diags.Add(diag.Newf(n.Pos(), diag.TypeMismatch,
				"unsupported table property %q", n.Name.Value))
		}

	case *ast.EntriesProperty:
		if !n.IsConst {
			b.diags.Add(diag.Newf(n.Pos(), diag.TypeMismatch,
				"entries table property must be declared const"))
		}
	}
}

func recordFormer(k ast.RecordKind) types.Former {
	switch k {
	case ast.RecordHeader:
		return types.Header
	case ast.RecordHeaderUnion:
		return types.HeaderUnion
	default:
		return types.Struct
	}
}

func (b *Builder) paramTypes(params []*ast.Parameter) []*types.Type {
	out := make([]*types.Type, len(params))
	for i, p := range params {
		out[i] = b.typeOf(p)
	}
	return out
}

func (b *Builder) protoTypes(protos []*ast.FunctionPrototype) []*types.Type {
	out := make([]*types.Type, len(protos))
	for i, p := range protos {
		out[i] = b.typeOf(p)
	}
	return out
}

// declType returns the Type a BaseType node refers to. The name binder
// points every BaseType at the single builtin declaration for its
// kind, which is enough for formers with no width; for BIT/INT/VARBIT
// a declared width changes the type itself, so this installs (or
// reuses, via widths) one Type per distinct (kind, width) family
// instead of handing back the shared builtin declaration's Type for
// every occurrence regardless of its Width expression.
func (b *Builder) declType(n ast.Node) *types.Type {
	d, ok := b.decls[n]
	if !ok {
		return nil
	}
	bt, ok := n.(*ast.BaseType)
	if !ok || d.Type == nil {
		return d.Type
	}
	switch d.Type.Former {
	case types.Int, types.Bit, types.Varbit:
	default:
		return d.Type
	}
	lit, ok := bt.Width.(*ast.IntegerLiteral)
	if !ok {
		// Unparameterized occurrence: width-polymorphic, shares the
		// builtin declaration's own (Size == -1) Type.
		return d.Type
	}
	return b.widthedType(d.Type.Former, int(lit.Value))
}

// widthedType returns the single Type this Builder has allocated for
// (former, size), allocating it the first time that exact width family
// is seen so that e.g. every "bit<8>" in the program compares equal by
// pointer identity while remaining distinct from "bit<16>".
func (b *Builder) widthedType(former types.Former, size int) *types.Type {
	key := widthKey{former, size}
	if ty, ok := b.widths[key]; ok {
		return ty
	}
	ty := b.arena.New(former)
	ty.Size = size
	b.widths[key] = ty
	return ty
}

func (b *Builder) typeOf(n ast.Node) *types.Type {
	if n == nil {
		return nil
	}
	return b.types[n]
}

func (b *Builder) setDeclType(n ast.Node, ty *types.Type) {
	if d, ok := b.decls[n]; ok {
		d.Type = ty
	}
}

func (b *Builder) scopeFor(n ast.Node) *scope.Scope {
	if s, ok := b.scopes[n]; ok {
		return s
	}
	return b.root
}

func (b *Builder) currentCtor() (ctorContext, bool) {
	if len(b.ctorStack) == 0 {
		return ctorContext{}, false
	}
	return b.ctorStack[len(b.ctorStack)-1], true
}

// resolveNamerefs is the resolution sweep's first step: every Nameref
// is looked up in its recorded scope's TYPE namespace and rewritten in
// place into a TypeAlias forwarding pointer, or a diagnostic is raised.
func (b *Builder) resolveNamerefs() {
	for _, ty := range b.arena.All() {
		if ty.Former != types.Nameref {
			continue
		}
		referent, found, err := ty.RefScope.LookupType(ty.RefName)
		if !found {
			b.diags.Add(diag.Newf(ty.AST.Pos(), diag.UnresolvedName,
				"unresolved type reference %q", ty.RefName))
			continue
		}
		if err != nil {
			b.diags.Add(diag.Newf(ty.AST.Pos(), diag.AmbiguousName,
				"ambiguous type reference %q", ty.RefName))
			continue
		}
		ty.Former = types.TypeAlias
		ty.Ref = referent
	}
}

// resolveTypedefs is the sweep's second step: every TYPEDEF follows its
// Ref chain (through TYPEDEFs and the TypeAlias forwarding pointers the
// first step left) to the first type that is neither, and is rewritten
// into a TypeAlias forwarding pointer; a chain that loops back on itself
// is a fatal alias cycle.
func (b *Builder) resolveTypedefs() {
	for _, ty := range b.arena.All() {
		if ty.Former != types.Typedef {
			continue
		}
		seen := map[*types.Type]bool{ty: true}
		ref := ty.Ref
		cyclic := false
		for ref != nil && (ref.Former == types.Typedef || ref.Former == types.TypeAlias) {
			if seen[ref] {
				cyclic = true
				break
			}
			seen[ref] = true
			ref = ref.Ref
		}
		if cyclic {
			b.diags.Add(diag.Newf(ty.AST.Pos(), diag.AliasCycle,
				"type aliasing cycle involving %q", ty.Name))
			ref = nil
		}
		ty.Former = types.TypeAlias
		ty.Ref = ref
	}
}

// checkInstantiations runs after the resolution sweep settles every
// Instantiation's Type onto its real referent, and rejects instantiating
// an extern type that declares no constructor prototype (frontend.h's
// ctors array would be empty) as a type mismatch rather than silently
// admitting it.
func (b *Builder) checkInstantiations() {
	for _, n := range b.instantiations {
		ty := b.types[n]
		for ty != nil && ty.Former == types.TypeAlias {
			ty = ty.Ref
		}
		if ty == nil || ty.Former != types.Extern {
			continue
		}
		if ty.Ctors == nil || len(ty.Ctors.Members) == 0 {
			b.diags.Add(diag.Newf(n.Pos(), diag.TypeMismatch,
				"cannot instantiate extern %q: it declares no constructor", ty.Name))
		}
	}
}

// resolveTypeAliases is the sweep's third and final step: every
// TypeAlias forwarding pointer is collapsed so it points directly at
// the first non-alias type, satisfying the post-condition that no
// TypeAlias ever points at another TypeAlias.
func (b *Builder) resolveTypeAliases() {
	for _, ty := range b.arena.All() {
		if ty.Former != types.TypeAlias {
			continue
		}
		ref := ty.Ref
		for ref != nil && ref.Former == types.TypeAlias {
			ref = ref.Ref
		}
		ty.Ref = ref
	}
}
