package lexer_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/dfrunza/ashp4c-go/internal/lexer"
)

func scanAll(src string) []lexer.Token {
	l := lexer.New("t.p4", []byte(src))
	var toks []lexer.Token
	for {
		_, tok, _ := l.Scan()
		toks = append(toks, tok)
		if tok == lexer.EOF {
			return toks
		}
	}
}

func TestScansKeywordsAndPunctuation(t *testing.T) {
	toks := scanAll("header H { bit<8> f; }")
	qt.Assert(t, qt.DeepEquals(toks, []lexer.Token{
		lexer.KW_HEADER, lexer.IDENT, lexer.LBRACE,
		lexer.KW_BIT, lexer.LANGLE, lexer.INT, lexer.RANGLE,
		lexer.IDENT, lexer.SEMI, lexer.RBRACE, lexer.EOF,
	}))
}

func TestScansMultiCharOperators(t *testing.T) {
	toks := scanAll("a &&& b && c || d == e != f <= g >= h << i >> j")
	for _, want := range []lexer.Token{lexer.ANDANDAND, lexer.ANDAND, lexer.OROR, lexer.EQ, lexer.NEQ, lexer.LE, lexer.GE, lexer.SHL, lexer.SHR} {
		found := false
		for _, got := range toks {
			if got == want {
				found = true
			}
		}
		qt.Check(t, qt.Equals(found, true))
	}
}

func TestParseIntLiteralHandlesSizedForm(t *testing.T) {
	v, signed, width, hasWidth, err := lexer.ParseIntLiteral("8w10")
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.Equals(v, int64(10)))
	qt.Check(t, qt.Equals(signed, false))
	qt.Check(t, qt.Equals(width, 8))
	qt.Check(t, qt.Equals(hasWidth, true))
}

func TestParseIntLiteralHandlesPlainForm(t *testing.T) {
	v, _, _, hasWidth, err := lexer.ParseIntLiteral("42")
	qt.Assert(t, qt.IsNil(err))
	qt.Check(t, qt.Equals(v, int64(42)))
	qt.Check(t, qt.Equals(hasWidth, false))
}

func TestSkipsLineAndBlockComments(t *testing.T) {
	toks := scanAll("// comment\nbit /* mid */ bool")
	qt.Assert(t, qt.DeepEquals(toks, []lexer.Token{lexer.KW_BIT, lexer.KW_BOOL, lexer.EOF}))
}
