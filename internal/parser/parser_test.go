package parser_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/internal/parser"
)

func TestParsesHeaderDeclaration(t *testing.T) {
	prog, diags := parser.Parse("t.p4", []byte(`
header Ethernet {
    bit<48> dstAddr;
    bit<48> srcAddr;
    bit<16> etherType;
}
`))
	qt.Assert(t, qt.HasLen(diags, 0))
	qt.Assert(t, qt.HasLen(prog.Decls, 1))
	rec, ok := prog.Decls[0].(*ast.RecordTypeDecl)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(rec.Kind, ast.RecordHeader))
	qt.Check(t, qt.Equals(rec.Name.Value, "Ethernet"))
	qt.Assert(t, qt.HasLen(rec.Fields, 3))
	qt.Check(t, qt.Equals(rec.Fields[0].Name.Value, "dstAddr"))
}

func TestParsesConstVariableDeclaration(t *testing.T) {
	prog, diags := parser.Parse("t.p4", []byte(`const bit<8> X = 10;`))
	qt.Assert(t, qt.HasLen(diags, 0))
	qt.Assert(t, qt.HasLen(prog.Decls, 1))
	v, ok := prog.Decls[0].(*ast.VariableDecl)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(v.IsConst, true))
	qt.Check(t, qt.Equals(v.Name.Value, "X"))
	lit, ok := v.Init.(*ast.IntegerLiteral)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(lit.Value, int64(10)))
}

func TestParsesFunctionDeclarationWithBody(t *testing.T) {
	prog, diags := parser.Parse("t.p4", []byte(`
bit<8> addOne(in bit<8> x) {
    return x + 1;
}
`))
	qt.Assert(t, qt.HasLen(diags, 0))
	qt.Assert(t, qt.HasLen(prog.Decls, 1))
	fd, ok := prog.Decls[0].(*ast.FunctionDecl)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(fd.Proto.Name.Value, "addOne"))
	qt.Assert(t, qt.HasLen(fd.Proto.Params, 1))
	qt.Check(t, qt.Equals(fd.Proto.Params[0].Direction, ast.DirIn))
	qt.Assert(t, qt.HasLen(fd.Body.Stmts, 1))
	ret, ok := fd.Body.Stmts[0].(*ast.ReturnStmt)
	qt.Assert(t, qt.Equals(ok, true))
	bin, ok := ret.Value.(*ast.BinaryExpr)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(bin.Op, ast.OpAdd))
}

func TestParsesControlDeclarationSkeleton(t *testing.T) {
	prog, diags := parser.Parse("t.p4", []byte(`
control Ingress(inout bit<8> h) {
    action drop() {
        exit;
    }
    apply {
        drop();
    }
}
`))
	qt.Assert(t, qt.HasLen(diags, 0))
	qt.Assert(t, qt.HasLen(prog.Decls, 1))
	cd, ok := prog.Decls[0].(*ast.ControlDecl)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(cd.Proto.Name.Value, "Ingress"))
	qt.Assert(t, qt.HasLen(cd.Locals, 1))
	_, ok = cd.Locals[0].(*ast.ActionDecl)
	qt.Check(t, qt.Equals(ok, true))
	qt.Assert(t, qt.HasLen(cd.Apply.Stmts, 1))
}

func TestParsesParserDeclarationSkeleton(t *testing.T) {
	prog, diags := parser.Parse("t.p4", []byte(`
parser P(bit<8> h) {
    state start {
        transition accept;
    }
}
`))
	qt.Assert(t, qt.HasLen(diags, 0))
	qt.Assert(t, qt.HasLen(prog.Decls, 1))
	pd, ok := prog.Decls[0].(*ast.ParserDecl)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.HasLen(pd.States, 1))
	qt.Check(t, qt.Equals(pd.States[0].Name.Value, "start"))
	if pd.States[0].Transition == nil {
		t.Fatal("expected a transition statement")
	}
}

func TestBinaryExpressionPrecedence(t *testing.T) {
	prog, diags := parser.Parse("t.p4", []byte(`const bool b = 1 + 2 * 3 == 7;`))
	qt.Assert(t, qt.HasLen(diags, 0))
	v := prog.Decls[0].(*ast.VariableDecl)
	eq, ok := v.Init.(*ast.BinaryExpr)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(eq.Op, ast.OpEq))
	add, ok := eq.Left.(*ast.BinaryExpr)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(add.Op, ast.OpAdd))
	mul, ok := add.Right.(*ast.BinaryExpr)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(mul.Op, ast.OpMul))
}

func TestDisambiguatesLocalDeclarationAssignmentAndInstantiation(t *testing.T) {
	prog, diags := parser.Parse("t.p4", []byte(`
bit<8> f() {
    bit<8> a = 1;
    a = 2;
    return a;
}
`))
	qt.Assert(t, qt.HasLen(diags, 0))
	fd := prog.Decls[0].(*ast.FunctionDecl)
	qt.Assert(t, qt.HasLen(fd.Body.Stmts, 3))
	_, ok := fd.Body.Stmts[0].(*ast.VariableDecl)
	qt.Check(t, qt.Equals(ok, true))
	_, ok = fd.Body.Stmts[1].(*ast.AssignmentStmt)
	qt.Check(t, qt.Equals(ok, true))
	_, ok = fd.Body.Stmts[2].(*ast.ReturnStmt)
	qt.Check(t, qt.Equals(ok, true))
}

func TestParsesInstantiation(t *testing.T) {
	prog, diags := parser.Parse("t.p4", []byte(`MyExtern(1) e;`))
	qt.Assert(t, qt.HasLen(diags, 0))
	qt.Assert(t, qt.HasLen(prog.Decls, 1))
	inst, ok := prog.Decls[0].(*ast.Instantiation)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(inst.Name.Value, "e"))
	nt, ok := inst.Type.(*ast.NamedType)
	qt.Assert(t, qt.Equals(ok, true))
	qt.Check(t, qt.Equals(nt.Name.Value, "MyExtern"))
	qt.Assert(t, qt.HasLen(inst.Args, 1))
}

func TestReportsSyntaxErrorOnMalformedDeclaration(t *testing.T) {
	_, diags := parser.Parse("t.p4", []byte(`header {}`))
	qt.Assert(t, qt.Not(qt.HasLen(diags, 0)))
}
