package core_test

import (
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const modulePath = "github.com/leapstack-labs/leaporm"

// importsUnder returns the non-test imports of every Go file below dir,
// keyed by file path.
func importsUnder(t *testing.T, dir string) map[string][]string {
	t.Helper()
	fset := token.NewFileSet()
	out := make(map[string][]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range f.Imports {
			out[path] = append(out[path], strings.Trim(imp.Path.Value, `"`))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to scan %s: %v", dir, err)
	}
	return out
}

// TestCoreImportsOnlyStdlib verifies pkg/core has no dependencies at all.
func TestCoreImportsOnlyStdlib(t *testing.T) {
	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatalf("Failed to read core directory: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("core directory is empty")
	}

	for path, imports := range importsUnder(t, ".") {
		for _, imp := range imports {
			// Standard library paths have no dot in their first element.
			if first, _, _ := strings.Cut(imp, "/"); strings.Contains(first, ".") {
				t.Errorf("%s imports non-stdlib package: %s", path, imp)
			}
		}
	}
}

// TestLayering verifies lower layers never import higher ones.
func TestLayering(t *testing.T) {
	tests := []struct {
		dir       string
		forbidden []string
	}{
		{"../dialect", []string{"/pkg/mapping", "/pkg/sqlgen", "/pkg/orm", "/pkg/adapter", "/pkg/connection", "/internal/"}},
		{"../dialects", []string{"/pkg/sqlgen", "/pkg/orm", "/pkg/adapter", "/pkg/connection", "/internal/"}},
		{"../mapping", []string{"/pkg/dialect", "/pkg/sqlgen", "/pkg/orm", "/pkg/connection", "/internal/"}},
		{"../expr", []string{"/pkg/", "/internal/"}},
		{"../sqlgen", []string{"/pkg/orm", "/pkg/connection", "/pkg/adapter", "/internal/"}},
		{"../query", []string{"/pkg/orm", "/pkg/connection", "/pkg/adapter", "/internal/"}},
		{"../connection", []string{"/pkg/orm", "/pkg/sqlgen", "/pkg/mapping", "/internal/"}},
		{"../orm", []string{"/internal/"}},
		{"../adapters", []string{"/pkg/orm", "/internal/"}},
	}

	for _, tt := range tests {
		t.Run(filepath.Base(tt.dir), func(t *testing.T) {
			for path, imports := range importsUnder(t, tt.dir) {
				for _, imp := range imports {
					if !strings.HasPrefix(imp, modulePath) {
						continue
					}
					rel := strings.TrimPrefix(imp, modulePath)
					for _, f := range tt.forbidden {
						if strings.HasPrefix(rel+"/", f) && rel != "/pkg/core" {
							t.Errorf("%s imports %s", path, imp)
						}
					}
				}
			}
		})
	}
}
