// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"
)

// ExpectNoDiff reports a unified diff between want and got, if any.
func ExpectNoDiff(t *testing.T, want, got string) {
	t.Helper()
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "want",
		ToFile:   "got",
		Context:  5,
	})
	if diff != "" {
		t.Error(diff)
	}
}

// MemFs returns an in-memory filesystem holding files, keyed by absolute
// path.
func MemFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return fs
}
