// Package scope implements the lexical environment: a parented chain
// of Scope values, each with three independent namespaces, populated
// by the scope-hierarchy and name-binding passes (the declared-types
// pass then adds the built-in operator overloads to the root scope)
// and consulted read-only by every pass after that.
//
// Grounded on frontend.h's `struct Scope` / `struct NameDeclaration` /
// `enum NameSpace`, and on the push/pop frame-stack idiom of
// cue-lang-cue's internal/core/compile.compiler (a *compiler holds a
// stack of *frame and pushes/pops one per scope-opening construct; here
// callers hold a *Scope directly and Parent plays the role of the
// compiler's frame stack, since scopes — unlike compile frames — must
// outlive the traversal that created them).
package scope

import (
	"fmt"

	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/types"
)

// NameSpace is one of the three disjoint namespaces a Scope maintains.
type NameSpace int

const (
	Var NameSpace = iota
	Type
	Keyword
)

func (n NameSpace) String() string {
	switch n {
	case Var:
		return "var"
	case Type:
		return "type"
	case Keyword:
		return "keyword"
	default:
		return "?"
	}
}

// NameDeclaration records one binding of a name within a single
// namespace of a single Scope. Next chains to a prior binding of the
// same name in the same namespace and scope; a non-nil Next is the
// ambiguity signal every later pass consults before trusting a lookup.
type NameDeclaration struct {
	StrName   string
	Namespace NameSpace

	// AST is the declaration site for an ordinary binding. TokenClass
	// is set instead of AST for the parser-populated keyword namespace,
	// which has no declaration node of its own (frontend.h allows
	// either an ast pointer or a bare token class per entry).
	AST        ast.Node
	TokenClass string

	// Type is empty until the declared-types pass populates it.
	Type *types.Type

	Next *NameDeclaration
}

// Ambiguous reports whether strname resolved to more than one
// declaration in the namespace/scope it was bound in.
func (d *NameDeclaration) Ambiguous() bool {
	return d != nil && d.Next != nil
}

// Scope is a lexical environment: three independent namespace maps
// plus a parent link. The zero value is not usable; construct with New
// or NewChild.
type Scope struct {
	Parent *Scope

	vars     map[string]*NameDeclaration
	types    map[string]*NameDeclaration
	keywords map[string]*NameDeclaration
}

// New returns a fresh root scope with no parent.
func New() *Scope {
	return &Scope{
		vars:     make(map[string]*NameDeclaration),
		types:    make(map[string]*NameDeclaration),
		keywords: make(map[string]*NameDeclaration),
	}
}

// NewChild returns a fresh scope whose parent is s.
func (s *Scope) NewChild() *Scope {
	child := New()
	child.Parent = s
	return child
}

func (s *Scope) table(ns NameSpace) map[string]*NameDeclaration {
	switch ns {
	case Var:
		return s.vars
	case Type:
		return s.types
	case Keyword:
		return s.keywords
	default:
		panic(fmt.Sprintf("scope: invalid namespace %d", ns))
	}
}

// Bind adds a new NameDeclaration for strname in namespace ns, owned by
// s. If strname is already bound in (s, ns), the new declaration is
// prepended to the existing chain — the chain's Next pointer is the
// ambiguity signal, never an error returned here; binding a duplicate
// name is not itself a fault (frontend.h's scope_bind never rejects
// it, it is the later passes that decide whether the chain length
// matters).
func (s *Scope) Bind(strname string, ns NameSpace, node ast.Node) *NameDeclaration {
	t := s.table(ns)
	decl := &NameDeclaration{
		StrName:   strname,
		Namespace: ns,
		AST:       node,
		Next:      t[strname],
	}
	t[strname] = decl
	return decl
}

// BindKeyword adds a keyword-namespace entry with no declaration node.
// Nothing in the pipeline calls it: the name binder seeds accept,
// reject and the primitive type names into the Var and Type namespaces.
func (s *Scope) BindKeyword(strname, tokenClass string) *NameDeclaration {
	decl := &NameDeclaration{
		StrName:    strname,
		Namespace:  Keyword,
		TokenClass: tokenClass,
		Next:       s.keywords[strname],
	}
	s.keywords[strname] = decl
	return decl
}

// Lookup searches ns in s, then each ancestor in turn, stopping at the
// first scope where strname is bound. It returns the head of that
// scope's chain (the most recent binding; callers inspect
// Ambiguous() / Next to see shadowed or conflicting bindings in the
// same scope) and whether anything was found.
func (s *Scope) Lookup(strname string, ns NameSpace) (*NameDeclaration, bool) {
	for cur := s; cur != nil; cur = cur.Parent {
		if decl, ok := cur.table(ns)[strname]; ok {
			return decl, true
		}
	}
	return nil, false
}

// LookupType implements types.Scoper, letting the declared-types
// resolution sweep look a name up without importing this package
// directly (which would create an import cycle, since NameDeclaration
// already holds a *types.Type).
func (s *Scope) LookupType(strname string) (*types.Type, bool, error) {
	decl, ok := s.Lookup(strname, Type)
	if !ok {
		return nil, false, nil
	}
	if decl.Ambiguous() {
		return nil, true, fmt.Errorf("ambiguous type reference %q", strname)
	}
	return decl.Type, true, nil
}

// Root walks up to the outermost ancestor of s.
func (s *Scope) Root() *Scope {
	cur := s
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}
