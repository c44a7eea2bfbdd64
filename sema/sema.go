// Package sema orchestrates the six-pass semantic pipeline: built-in
// method injection, scope hierarchy, name binding, declared types,
// potential types, and type selection, run strictly in that order over
// one arena-owned AST/Type pair, producing the four output maps plus
// the enumerated Type array spec.md's external-interfaces section
// promises.
//
// Grounded on cue-lang-cue/internal/core/compile's Config/compiler
// shape (an options struct threaded through a single entry point,
// struct-field version gating via golang.org/x/mod/semver) and its
// package-level verifyVersion pattern for language-version gating.
package sema

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"github.com/dfrunza/ashp4c-go/ast"
	"github.com/dfrunza/ashp4c-go/decltype"
	"github.com/dfrunza/ashp4c-go/diag"
	"github.com/dfrunza/ashp4c-go/inject"
	"github.com/dfrunza/ashp4c-go/namebind"
	"github.com/dfrunza/ashp4c-go/potype"
	"github.com/dfrunza/ashp4c-go/scope"
	"github.com/dfrunza/ashp4c-go/scopehier"
	"github.com/dfrunza/ashp4c-go/typeselect"
	"github.com/dfrunza/ashp4c-go/types"
)

// Config configures a compilation, mirroring compile.Config's role:
// an optional outer scope for expression-only analysis, an import/
// extern resolution hook, and a language version gating newer syntax.
type Config struct {
	// OuterScope, if set, becomes the parent of the fresh root scope
	// instead of a standalone root — used when analyzing a fragment
	// (e.g. a single expression) against an already-built environment.
	OuterScope *scope.Scope

	// ResolveExtern, if set, is consulted by passes that need to treat
	// an unresolved name as coming from an external compilation unit
	// rather than failing immediately (reserved for multi-file
	// compilation; unused by a single p4program today, but threaded
	// through so callers can supply it without a breaking signature
	// change later).
	ResolveExtern func(name string) (*types.Type, bool)

	// LanguageVersion gates syntax introduced after P4-14: header_union
	// declarations and match_kind user extension both require "v16.0.0"
	// or later. Empty means "latest", matching verifyVersion's own
	// "assume latest if unversioned" rule.
	LanguageVersion string

	// Logger receives pass entry/exit and diagnostic-count events at
	// Debug/Info level. A nil Logger uses slog.Default().
	Logger *slog.Logger
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// minHeaderUnionVersion is the first P4 language version in which
// header_union and match_kind extension are legal, per the original
// grammar (P4-14 and pre-16 P4-16 drafts have neither form).
const minHeaderUnionVersion = "v16.0.0"

// Result bundles the four output maps, the enumerated Type array, and
// the (now mutated, apply-prototype-injected) AST the pipeline
// analyzed.
type Result struct {
	Program      *ast.Program
	ScopeMap     scopehier.Map
	DeclMap      namebind.DeclMap
	TypeMap      decltype.TypeMap
	PotypeMap    potype.Map
	SelectedType typeselect.Map
	Types        []*types.Type
	RunID        uuid.UUID
}

// Run executes the six passes over prog in order, stopping at the
// first pass that raises a diagnostic (there is no error recovery,
// per the pipeline's single-sequential-traversal resource model).
func Run(ctx context.Context, prog *ast.Program, cfg Config) (*Result, diag.List) {
	log := cfg.logger()
	runID := uuid.New()
	log.DebugContext(ctx, "sema: run start", "run_id", runID.String())

	if diags := cfg.checkLanguageVersion(prog); len(diags) > 0 {
		return nil, diags
	}

	log.DebugContext(ctx, "sema: pass start", "pass", "inject")
	inject.Run(prog)
	log.DebugContext(ctx, "sema: pass done", "pass", "inject")

	root := scope.New()
	if cfg.OuterScope != nil {
		root.Parent = cfg.OuterScope
	}
	arena := types.NewArena()

	log.DebugContext(ctx, "sema: pass start", "pass", "scopehier")
	scopeMap := scopehier.NewBuilder(root).Build(prog)
	log.DebugContext(ctx, "sema: pass done", "pass", "scopehier", "nodes", len(scopeMap))

	log.DebugContext(ctx, "sema: pass start", "pass", "namebind")
	declMap := namebind.Run(prog, scopeMap, arena, root)
	log.DebugContext(ctx, "sema: pass done", "pass", "namebind", "decls", len(declMap))

	log.DebugContext(ctx, "sema: pass start", "pass", "decltype")
	typeMap, diags := decltype.Run(prog, scopeMap, declMap, arena, root)
	log.InfoContext(ctx, "sema: pass done", "pass", "decltype", "types", len(typeMap), "diagnostics", len(diags))
	if len(diags) > 0 {
		return nil, diags
	}

	log.DebugContext(ctx, "sema: pass start", "pass", "potype")
	potypeMap := potype.Run(prog, scopeMap, typeMap, root)
	log.DebugContext(ctx, "sema: pass done", "pass", "potype", "sets", len(potypeMap))

	log.DebugContext(ctx, "sema: pass start", "pass", "typeselect")
	selected, diags := typeselect.Run(prog, scopeMap, declMap, typeMap, potypeMap, root)
	log.InfoContext(ctx, "sema: pass done", "pass", "typeselect", "selected", len(selected), "diagnostics", len(diags))
	if len(diags) > 0 {
		return nil, diags
	}

	log.DebugContext(ctx, "sema: run done", "run_id", runID.String())
	return &Result{
		Program:      prog,
		ScopeMap:     scopeMap,
		DeclMap:      declMap,
		TypeMap:      typeMap,
		PotypeMap:    potypeMap,
		SelectedType: selected,
		Types:        arena.All(),
		RunID:        runID,
	}, nil
}

// checkLanguageVersion rejects header_union and top-level match_kind
// declarations when
// cfg.LanguageVersion predates P4-16's introduction of the form,
// mirroring verifyVersion's semver.Compare(added, v) <= 0 gate.
func (c Config) checkLanguageVersion(prog *ast.Program) diag.List {
	if c.LanguageVersion == "" {
		return nil
	}
	v := normalizeVersion(c.LanguageVersion)
	if semver.Compare(minHeaderUnionVersion, v) <= 0 {
		return nil
	}
	var diags diag.List
	for _, d := range prog.Decls {
		switch n := d.(type) {
		case *ast.RecordTypeDecl:
			if n.Kind != ast.RecordHeaderUnion {
				continue
			}
			diags.Add(diag.Newf(n.Pos(), diag.TypeMismatch,
				"header_union requires language version %s or later (got %s)",
				minHeaderUnionVersion, c.LanguageVersion))
		case *ast.MatchKindDecl:
			diags.Add(diag.Newf(n.Pos(), diag.TypeMismatch,
				"match_kind declarations require language version %s or later (got %s)",
				minHeaderUnionVersion, c.LanguageVersion))
		}
	}
	return diags
}

func normalizeVersion(v string) string {
	if len(v) == 0 || v[0] != 'v' {
		return "v" + v
	}
	return v
}
