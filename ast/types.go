package ast

// Type reference nodes (frontend.h: typeRef, namedType, tupleType,
// headerStackType, baseType*, integerTypeSize).

// BaseTypeKind distinguishes the primitive base types.
type BaseTypeKind int

const (
	BaseVoid BaseTypeKind = iota
	BaseBool
	BaseInt
	BaseBit
	BaseVarbit
	BaseString
	BaseError
)

// BaseType is one of the built-in primitive type keywords. Bit and
// Varbit carry an optional width expression (frontend.h:
// baseTypeBit/baseTypeVarbit/integerTypeSize); Int carries an optional
// signed width the same way.
type BaseType struct {
	base
	Kind  BaseTypeKind
	Width Expr // nil means unparameterized (plain "int", "bit" is invalid P4 but tolerated upstream)
}

func (t *BaseType) typeRefNode() {}

// NamedType is a type used by name — resolved to a NAMEREF by the
// declared-types pass (frontend.h: namedType wrapping AST_name).
type NamedType struct {
	base
	Name *Ident
}

func (t *NamedType) typeRefNode() {}

// TupleType is "tuple<T1, T2, ...>" (frontend.h: tupleType).
type TupleType struct {
	base
	Args []TypeRef
}

func (t *TupleType) typeRefNode() {}

// HeaderStackType is "T[n]" (frontend.h: headerStackType).
type HeaderStackType struct {
	base
	Element TypeRef
	Size    Expr
}

func (t *HeaderStackType) typeRefNode() {}
