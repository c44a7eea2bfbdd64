package ast

// StructField is one member of a struct/header/header-union field list
// (frontend.h: structField).
type StructField struct {
	base
	Type TypeRef
	Name *Name
}

func (f *StructField) declNode() {}

// RecordKind distinguishes the three record-shaped declarations, which
// share a field list shape but differ in their Type former.
type RecordKind int

const (
	RecordStruct RecordKind = iota
	RecordHeader
	RecordHeaderUnion
)

// RecordTypeDecl covers structTypeDeclaration, headerTypeDeclaration,
// and headerUnionDeclaration, which are syntactically and semantically
// identical apart from the Type former they produce.
type RecordTypeDecl struct {
	base
	Kind   RecordKind
	Name   *Name
	Fields []*StructField
}

func (d *RecordTypeDecl) declNode() {}

// SpecifiedIdentifier is one "NAME" or "NAME = expr" entry of an enum
// body (frontend.h: specifiedIdentifier).
type SpecifiedIdentifier struct {
	base
	Name *Name
	Init Expr // optional
}

// EnumDecl is "enum [bit<W>] Name { A, B = 2, ... }" (frontend.h: enumDeclaration).
type EnumDecl struct {
	base
	Name       *Name
	SizeType   TypeRef // optional underlying type, e.g. bit<8>; nil for a plain enum
	Identifiers []*SpecifiedIdentifier
}

func (d *EnumDecl) declNode() {}

// ErrorDecl is "error { Foo, Bar }". Every occurrence in a program
// contributes fields to the single built-in `error` type.
type ErrorDecl struct {
	base
	Identifiers []*Name
}

func (d *ErrorDecl) declNode() {}

// MatchKindDecl is "match_kind { exact, ternary, ... }", contributing
// fields to the single built-in `match_kind` type the same way
// ErrorDecl does.
type MatchKindDecl struct {
	base
	Identifiers []*Name
}

func (d *MatchKindDecl) declNode() {}

// TypedefDecl is "typedef T Name" (frontend.h: typedefDeclaration).
type TypedefDecl struct {
	base
	Ref  TypeRef
	Name *Name
}

func (d *TypedefDecl) declNode() {}

// FunctionPrototype is a bare signature: a method inside an extern,
// parser, control, or a free function prototype (frontend.h:
// functionPrototype). ReturnType is nil for a constructor prototype
// (name equals the enclosing extern's name).
type FunctionPrototype struct {
	base
	ReturnType TypeRef
	Name       *Name
	Params     []*Parameter

	// Synthetic marks prototypes injected by the built-in method
	// injection pass rather than written by the user.
	Synthetic bool
}

func (d *FunctionPrototype) declNode() {}

// ParserTypeDecl is "parser Name(params) { ... }"'s header, i.e. the
// type half of a parser declaration (frontend.h: parserTypeDeclaration).
type ParserTypeDecl struct {
	base
	Name   *Name
	Params []*Parameter

	// MethodProtos receives the synthesized "apply" prototype.
	MethodProtos []*FunctionPrototype
}

func (d *ParserTypeDecl) declNode() {}

// ParserState is one "state name { ... }" block (frontend.h: parserState).
type ParserState struct {
	base
	Name       *Name
	Statements []Stmt
	Transition *TransitionStmt // nil only for a malformed/incomplete state
}

func (s *ParserState) declNode() {}

// ParserDecl is the full "parser Name(params)(ctor params) { locals; states }"
// (frontend.h: parserDeclaration). Proto's scope is reused for ctor
// params, locals, and states.
type ParserDecl struct {
	base
	Proto       *ParserTypeDecl
	CtorParams  []*Parameter
	Locals      []Decl
	States      []*ParserState
}

func (d *ParserDecl) declNode() {}

// ControlTypeDecl is "control Name(params) { ... }"'s header (frontend.h:
// controlTypeDeclaration).
type ControlTypeDecl struct {
	base
	Name   *Name
	Params []*Parameter

	MethodProtos []*FunctionPrototype
}

func (d *ControlTypeDecl) declNode() {}

// ControlDecl is the full control declaration (frontend.h: controlDeclaration).
type ControlDecl struct {
	base
	Proto      *ControlTypeDecl
	CtorParams []*Parameter
	Locals     []Decl
	Apply      *BlockStmt
}

func (d *ControlDecl) declNode() {}

// PackageTypeDecl is "package Name(params);" (frontend.h: packageTypeDeclaration).
type PackageTypeDecl struct {
	base
	Name   *Name
	Params []*Parameter
}

func (d *PackageTypeDecl) declNode() {}

// ExternTypeDecl is "extern Name { ... }" (frontend.h: externTypeDeclaration).
type ExternTypeDecl struct {
	base
	Name         *Name
	MethodProtos []*FunctionPrototype
}

func (d *ExternTypeDecl) declNode() {}

// Instantiation is "Type(args) name;" at the top level or as a local
// declaration (frontend.h: instantiation).
type Instantiation struct {
	base
	Name *Name
	Type TypeRef
	Args []Expr
}

func (d *Instantiation) declNode() {}

// ActionDecl is "action name(params) { stmt }" (frontend.h: actionDeclaration).
type ActionDecl struct {
	base
	Name   *Name
	Params []*Parameter
	Body   *BlockStmt
}

func (d *ActionDecl) declNode() {}

// TableDecl is "table name { properties }" (frontend.h: tableDeclaration).
// Its "apply" method is synthesized by the built-in method injection
// pass; TableDecl otherwise has no parameters to clone for it.
type TableDecl struct {
	base
	Name       *Name
	Properties []TableProperty

	MethodProtos []*FunctionPrototype
}

func (d *TableDecl) declNode() {}

// VariableDecl is "T name = init;" or "T name;" as a local or top-level
// declaration (frontend.h: variableDeclaration). IsConst distinguishes
// "const" from a plain variable declaration.
type VariableDecl struct {
	base
	Type    TypeRef
	Name    *Name
	Init    Expr // optional
	IsConst bool
}

func (d *VariableDecl) declNode() {}
func (d *VariableDecl) stmtNode() {}

// FunctionDecl pairs a FunctionPrototype with a body, for free
// functions (frontend.h: functionDeclaration).
type FunctionDecl struct {
	base
	Proto *FunctionPrototype
	Body  *BlockStmt
}

func (d *FunctionDecl) declNode() {}
