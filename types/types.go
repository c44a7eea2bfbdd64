// Package types implements the Type arena: an arena-allocated, tagged
// Type value with 27 formers, referenced everywhere else in the
// pipeline by plain Go pointer (the arena's only job is to outlive the
// pipeline — Go's garbage collector already guarantees that for
// anything reachable from the arena's own slice, so no explicit free
// or refcounting is needed).
//
// The shape of Type mirrors frontend.h's tagged `struct Type` union
// directly, translated into one optional payload field per Former
// instead of a C union, favoring the richer declared_type variant that
// actually populates Function/Extern/Struct/etc. with real Product
// payloads over the older decl_type.c/type_decl.c/pass_type_decl.c
// line.
package types

import "github.com/dfrunza/ashp4c-go/ast"

// Former tags which payload a Type carries.
type Former int

const (
	Void Former = iota
	Bool
	Int
	Bit
	Varbit
	String
	ErrorT
	MatchKind
	Any

	Enum
	Typedef
	Function
	Extern
	Package
	Parser
	Control
	Table
	Struct
	Header
	HeaderUnion
	Stack
	State
	Field
	Nameref // transient: unresolved type reference
	TypeAlias // transient: resolved alias forwarding pointer ("TYPE" in spec)
	Product
	Tuple
)

func (f Former) String() string {
	switch f {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Bit:
		return "bit"
	case Varbit:
		return "varbit"
	case String:
		return "string"
	case ErrorT:
		return "error"
	case MatchKind:
		return "match_kind"
	case Any:
		return "any"
	case Enum:
		return "enum"
	case Typedef:
		return "typedef"
	case Function:
		return "function"
	case Extern:
		return "extern"
	case Package:
		return "package"
	case Parser:
		return "parser"
	case Control:
		return "control"
	case Table:
		return "table"
	case Struct:
		return "struct"
	case Header:
		return "header"
	case HeaderUnion:
		return "header_union"
	case Stack:
		return "stack"
	case State:
		return "state"
	case Field:
		return "field"
	case Nameref:
		return "<nameref>"
	case TypeAlias:
		return "<type>"
	case Product:
		return "product"
	case Tuple:
		return "tuple"
	default:
		return "<unknown>"
	}
}

// Type is the tagged arena value. Only the fields relevant to Former
// are populated; the others are zero. This is the idiomatic Go
// translation of a C tagged union: one struct, one discriminant, and a
// set of optional fields instead of an explicit union block.
type Type struct {
	Former Former
	Name   string   // declared name, "" for anonymous/built-in formers
	AST    ast.Node // declaration site, nil for built-ins and synthesized types

	// BIT / VARBIT / INT width-bearing primitives: Size is the bit
	// width, or -1 if unsized/width-polymorphic.
	Size int

	// ENUM / STRUCT / HEADER / UNION
	Fields *Type // Product of Field

	// TYPEDEF, and transiently NAMEREF/TYPE before the resolution sweep.
	Ref *Type

	// FUNCTION
	Params *Type // Product of parameter types
	Return *Type

	// EXTERN
	Methods *Type // Product of FUNCTION
	Ctors   *Type // Product of FUNCTION, subset of Methods whose name == extern name

	// PACKAGE / PARSER / CONTROL additionally reuse Methods and Params;
	// CtorParams holds constructor-style params distinct from apply params.
	CtorParams *Type // Product

	// TABLE reuses Methods (synthesized apply only).

	// STACK
	Element *Type
	// Size (above) doubles as the stack length for STACK.

	// FIELD
	FieldType *Type

	// NAMEREF (transient)
	RefName  string
	RefScope Scoper

	// PRODUCT
	Members []*Type

	// TUPLE (2-tuple, used by type constraints)
	Left, Right *Type
}

// Scoper is satisfied by scope.Scope; declared here (rather than
// importing the scope package, which would create an import cycle
// since scope.NameDeclaration holds a *Type) as the minimal interface
// the resolution sweep needs to look a name up.
type Scoper interface {
	LookupType(name string) (*Type, bool, error)
}

// Arena owns every Type value created during a compilation, in
// creation order, so the pipeline can hand back a Type array
// enumerating every declared type.
type Arena struct {
	all []*Type
}

// NewArena returns an empty arena pre-seeded with nothing; callers
// populate built-in primitives via New.
func NewArena() *Arena {
	return &Arena{}
}

// New allocates and interns a Type with the given Former, recording it
// in creation order.
func (a *Arena) New(f Former) *Type {
	t := &Type{Former: f}
	a.all = append(a.all, t)
	return t
}

// All returns every Type the arena has allocated, in creation order.
func (a *Arena) All() []*Type {
	return a.all
}

// NewProduct allocates a PRODUCT of exactly len(members) slots: every
// PRODUCT with a nonzero member count has a populated Members slice of
// exactly that length.
func (a *Arena) NewProduct(members []*Type) *Type {
	t := a.New(Product)
	t.Members = members
	return t
}
