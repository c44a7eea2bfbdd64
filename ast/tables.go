package ast

// TableProperty is any entry of a table declaration's body. entries and
// simpleProperty table properties are represented as first-class nodes
// so the declared-types/potential-types passes can reject the
// properties they don't support with a dedicated diagnostic instead of
// silently ignoring them or hitting an internal assertion, the way the
// original source's guarded `assert(0)` would.
type TableProperty interface {
	Node
	tablePropertyNode()
}

// KeyElement is one "expr : matchKind;" entry of a table's key list.
type KeyElement struct {
	base
	Expr  Expr
	Match *Ident // match_kind identifier, e.g. exact, ternary, lpm
}

// KeyProperty is "key = { elements }".
type KeyProperty struct {
	base
	Elements []*KeyElement
}

func (p *KeyProperty) tablePropertyNode() {}

// ActionRef is one "name(args);" or "name;" entry of an actions list.
type ActionRef struct {
	base
	Name *Ident
	Args []Expr
}

// ActionsProperty is "actions = { refs }".
type ActionsProperty struct {
	base
	Actions []*ActionRef
}

func (p *ActionsProperty) tablePropertyNode() {}

// Entry is one "keyset : actionRef;" row of an entries list.
type Entry struct {
	base
	Keyset Expr
	Action *ActionRef
}

// EntriesProperty is "const entries = { entry; ... }". Requires a
// "const" qualifier the parser records via IsConst, matching the
// grammar's requirement that entries be immutable unless the table is
// mutable at runtime (a distinction this front-end does not model
// further).
type EntriesProperty struct {
	base
	Entries []*Entry
	IsConst bool
}

func (p *EntriesProperty) tablePropertyNode() {}

// SimpleProperty is "name = expr;" (e.g. default_action, size),
// optionally "const". The original source's catch-all for any table
// property it does not special-case; here it is a first-class node so
// the declared-types pass can validate the well-known property names
// (default_action, size) and reject anything else explicitly.
type SimpleProperty struct {
	base
	Name    *Name
	Value   Expr
	IsConst bool
}

func (p *SimpleProperty) tablePropertyNode() {}
