package main

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
)

// TestScripts drives cmd/p4sema end to end against the golden
// "<file>:<line>:<col>: error: ..." output spec §6 requires, the same
// txtar-script-over-testdata/script approach the teacher's cmd/cue
// uses for its own CLI tests.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"p4sema": func() int { return run(os.Args[1:]) },
	}))
}
