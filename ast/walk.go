package ast

// Walk traverses the AST in depth-first pre-order. node must not be
// nil. If before returns true, Walk recurses into node's children,
// then calls after. Both callbacks may be nil (before defaults to
// always-true, after is a no-op).
//
// The inject, namebind, decltype and potype passes are each a single
// Walk over the program; scopehier and typeselect recurse over the AST
// by hand instead.
func Walk(node Node, before func(Node) bool, after func(Node)) {
	if node == nil {
		return
	}
	if before != nil && !before(node) {
		return
	}
	walkChildren(node, before, after)
	if after != nil {
		after(node)
	}
}

func walkList[N Node](list []N, before func(Node) bool, after func(Node)) {
	for _, n := range list {
		Walk(n, before, after)
	}
}

func walkChildren(node Node, before func(Node) bool, after func(Node)) {
	switch n := node.(type) {
	case *Program:
		walkList(n.Decls, before, after)

	case *Parameter:
		Walk(n.Name, before, after)
		Walk(n.Type, before, after)
		if n.Init != nil {
			Walk(n.Init, before, after)
		}

	case *BaseType:
		if n.Width != nil {
			Walk(n.Width, before, after)
		}
	case *NamedType:
		Walk(n.Name, before, after)
	case *TupleType:
		walkList(n.Args, before, after)
	case *HeaderStackType:
		Walk(n.Element, before, after)
		Walk(n.Size, before, after)

	case *StructField:
		Walk(n.Type, before, after)
		Walk(n.Name, before, after)
	case *RecordTypeDecl:
		Walk(n.Name, before, after)
		for _, f := range n.Fields {
			Walk(f, before, after)
		}
	case *SpecifiedIdentifier:
		Walk(n.Name, before, after)
		if n.Init != nil {
			Walk(n.Init, before, after)
		}
	case *EnumDecl:
		Walk(n.Name, before, after)
		if n.SizeType != nil {
			Walk(n.SizeType, before, after)
		}
		for _, id := range n.Identifiers {
			Walk(id, before, after)
		}
	case *ErrorDecl:
		walkList(n.Identifiers, before, after)
	case *MatchKindDecl:
		walkList(n.Identifiers, before, after)
	case *TypedefDecl:
		Walk(n.Ref, before, after)
		Walk(n.Name, before, after)
	case *FunctionPrototype:
		if n.ReturnType != nil {
			Walk(n.ReturnType, before, after)
		}
		Walk(n.Name, before, after)
		walkList(n.Params, before, after)
	case *ParserTypeDecl:
		Walk(n.Name, before, after)
		walkList(n.Params, before, after)
		for _, m := range n.MethodProtos {
			Walk(m, before, after)
		}
	case *ParserState:
		Walk(n.Name, before, after)
		walkList(n.Statements, before, after)
		if n.Transition != nil {
			Walk(n.Transition, before, after)
		}
	case *ParserDecl:
		Walk(n.Proto, before, after)
		walkList(n.CtorParams, before, after)
		walkList(n.Locals, before, after)
		for _, s := range n.States {
			Walk(s, before, after)
		}
	case *ControlTypeDecl:
		Walk(n.Name, before, after)
		walkList(n.Params, before, after)
		for _, m := range n.MethodProtos {
			Walk(m, before, after)
		}
	case *ControlDecl:
		Walk(n.Proto, before, after)
		walkList(n.CtorParams, before, after)
		walkList(n.Locals, before, after)
		if n.Apply != nil {
			Walk(n.Apply, before, after)
		}
	case *PackageTypeDecl:
		Walk(n.Name, before, after)
		walkList(n.Params, before, after)
	case *ExternTypeDecl:
		Walk(n.Name, before, after)
		for _, m := range n.MethodProtos {
			Walk(m, before, after)
		}
	case *Instantiation:
		Walk(n.Type, before, after)
		Walk(n.Name, before, after)
		walkList(n.Args, before, after)
	case *ActionDecl:
		Walk(n.Name, before, after)
		walkList(n.Params, before, after)
		if n.Body != nil {
			Walk(n.Body, before, after)
		}
	case *TableDecl:
		Walk(n.Name, before, after)
		walkList(n.Properties, before, after)
		for _, m := range n.MethodProtos {
			Walk(m, before, after)
		}
	case *VariableDecl:
		Walk(n.Type, before, after)
		Walk(n.Name, before, after)
		if n.Init != nil {
			Walk(n.Init, before, after)
		}
	case *FunctionDecl:
		Walk(n.Proto, before, after)
		if n.Body != nil {
			Walk(n.Body, before, after)
		}

	case *BlockStmt:
		walkList(n.Stmts, before, after)
	case *AssignmentStmt:
		Walk(n.LHS, before, after)
		Walk(n.RHS, before, after)
	case *ReturnStmt:
		if n.Value != nil {
			Walk(n.Value, before, after)
		}
	case *ConditionalStmt:
		Walk(n.Cond, before, after)
		Walk(n.Then, before, after)
		if n.Else != nil {
			Walk(n.Else, before, after)
		}
	case *DirectApplication:
		Walk(n.Name, before, after)
		walkList(n.Args, before, after)
	case *SwitchStmt:
		Walk(n.Value, before, after)
		for _, c := range n.Cases {
			Walk(c, before, after)
		}
	case *SwitchCase:
		if n.Label != nil {
			Walk(n.Label, before, after)
		}
		Walk(n.Stmt, before, after)
	case *TransitionStmt:
		Walk(n.Target, before, after)

	case *SelectExpr:
		walkList(n.Exprs, before, after)
		for _, c := range n.Cases {
			Walk(c, before, after)
		}
	case *SelectCase:
		Walk(n.Keyset, before, after)
		Walk(n.State, before, after)
	case *TupleKeysetExpr:
		walkList(n.Exprs, before, after)

	case *KeyElement:
		Walk(n.Expr, before, after)
		if n.Match != nil {
			Walk(n.Match, before, after)
		}
	case *KeyProperty:
		for _, e := range n.Elements {
			Walk(e, before, after)
		}
	case *ActionRef:
		Walk(n.Name, before, after)
		walkList(n.Args, before, after)
	case *ActionsProperty:
		for _, a := range n.Actions {
			Walk(a, before, after)
		}
	case *Entry:
		Walk(n.Keyset, before, after)
		if n.Action != nil {
			Walk(n.Action, before, after)
		}
	case *EntriesProperty:
		for _, e := range n.Entries {
			Walk(e, before, after)
		}
	case *SimpleProperty:
		Walk(n.Name, before, after)
		Walk(n.Value, before, after)

	case *BinaryExpr:
		Walk(n.Left, before, after)
		Walk(n.Right, before, after)
	case *UnaryExpr:
		Walk(n.Operand, before, after)
	case *FunctionCall:
		Walk(n.Callee, before, after)
		walkList(n.Args, before, after)
	case *MemberSelector:
		Walk(n.LHS, before, after)
	case *CastExpr:
		Walk(n.Type, before, after)
		Walk(n.Expr, before, after)
	case *ArraySubscript:
		Walk(n.LHS, before, after)
		Walk(n.Index, before, after)
	case *SliceExpr:
		Walk(n.LHS, before, after)
		Walk(n.Hi, before, after)
		Walk(n.Lo, before, after)

	case *Name, *Ident, *IntegerLiteral, *BooleanLiteral, *StringLiteral,
		*Dontcare, *DefaultExpr, *EmptyStmt, *ExitStmt:
		// leaves

	default:
		panic("ast.Walk: unhandled node type")
	}
}
