//go:build governance

package core_test

import (
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestGovernance_CoreCohesion verifies that exported pkg/core identifiers
// are shared by more than one package. Single-use identifiers belong with
// their sole consumer.
func TestGovernance_CoreCohesion(t *testing.T) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedImports | packages.NeedTypes |
			packages.NeedTypesInfo | packages.NeedDeps,
	}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	coreDefs := make(map[types.Object]string)
	for _, p := range pkgs {
		if p.PkgPath != modulePath+"/pkg/core" {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			if obj := scope.Lookup(name); obj.Exported() {
				coreDefs[obj] = name
			}
		}
	}
	if len(coreDefs) == 0 {
		t.Fatal("Could not find pkg/core")
	}

	usage := make(map[string]map[string]bool, len(coreDefs))
	for _, name := range coreDefs {
		usage[name] = make(map[string]bool)
	}
	for _, p := range pkgs {
		if p.PkgPath == modulePath+"/pkg/core" || p.TypesInfo == nil {
			continue
		}
		for _, obj := range p.TypesInfo.Uses {
			if name, ok := coreDefs[obj]; ok {
				usage[name][strings.TrimPrefix(p.PkgPath, modulePath+"/")] = true
			}
		}
	}

	for name, users := range usage {
		if cohesionAllowlist[name] {
			continue
		}
		switch len(users) {
		case 0:
			t.Logf("WARNING: unused core identifier %s", name)
		case 1:
			for user := range users {
				t.Errorf("COHESION VIOLATION: core.%s is used only by %s; move it there", name, user)
			}
		}
	}
}

// cohesionAllowlist names core identifiers allowed a single consumer.
var cohesionAllowlist = map[string]bool{
	"DialectConfig":         true, // filled in by every dialect package
	"IdentifierConfig":      true,
	"NormalizationStrategy": true,
	"TranslationError":      true, // part of the public error taxonomy
	"ErrTranslation":        true,
}

// TestGovernance_AliasReexports verifies core types are only re-exported
// under an alias from the packages that own their configuration surface.
func TestGovernance_AliasReexports(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, modulePath+"/...")
	if err != nil {
		t.Fatalf("Failed to load packages: %v", err)
	}

	allowed := map[string]bool{
		modulePath + "/pkg/adapter.Config":           true,
		modulePath + "/internal/config.TargetConfig": true,
	}

	for _, p := range pkgs {
		if len(p.Errors) > 0 || p.PkgPath == modulePath+"/pkg/core" {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !tn.Exported() || !tn.IsAlias() {
				continue
			}
			named, ok := types.Unalias(tn.Type()).(*types.Named)
			if !ok || named.Obj().Pkg() == nil || named.Obj().Pkg().Path() != modulePath+"/pkg/core" {
				continue
			}
			if !allowed[p.PkgPath+"."+name] {
				t.Errorf("PURITY VIOLATION: %s re-exports core.%s as %s; use core.%s directly",
					strings.TrimPrefix(p.PkgPath, modulePath+"/"), named.Obj().Name(), name, named.Obj().Name())
			}
		}
	}
}
