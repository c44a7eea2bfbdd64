// Package inject implements built-in method injection: for every
// parser type, control type, and table declaration, it appends a
// synthesized "apply" function prototype to the declaration's method
// list, so every later pass can treat ".apply(...)" as an ordinary
// method call instead of special-casing three declaration kinds.
//
// Grounded on original_source/frontend.h's comment describing the
// synthesized apply prototype verbatim (parameter list "(empty for
// tables)") and on cue-lang-cue/cue/ast/astutil's practice of never
// mutating a shared sub-tree in place without cloning it first.
package inject

import (
	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/token"
)

const applyName = "apply"

// Run walks prog once and mutates every ParserTypeDecl, ControlTypeDecl,
// and TableDecl in place, appending a synthesized apply prototype to
// each one's MethodProtos. It is a pure AST transformation: it cannot
// fail.
func Run(prog *ast.Program) {
	ast.Walk(prog, func(n ast.Node) bool {
		switch d := n.(type) {
		case *ast.ParserTypeDecl:
			d.MethodProtos = append(d.MethodProtos, applyPrototype(d.Pos(), d.Params))
		case *ast.ControlTypeDecl:
			d.MethodProtos = append(d.MethodProtos, applyPrototype(d.Pos(), d.Params))
		case *ast.TableDecl:
			d.MethodProtos = append(d.MethodProtos, applyPrototype(d.Pos(), nil))
		}
		return true
	}, nil)
}

// applyPrototype builds a synthesized "apply" prototype whose parameter
// list is a deep clone of params, so subsequent passes annotating the
// clone (e.g. binding names, attaching types) never alias the
// declaration's own parameter list.
func applyPrototype(pos token.Position, params []*ast.Parameter) *ast.FunctionPrototype {
	fp := &ast.FunctionPrototype{
		ReturnType: &ast.BaseType{Kind: ast.BaseVoid},
		Name:       &ast.Name{Value: applyName},
		Params:     ast.CloneParams(params),
		Synthetic:  true,
	}
	fp.Position = pos
	fp.ReturnType.(*ast.BaseType).Position = pos
	fp.Name.Position = pos
	return fp
}
