package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"

	_ "github.com/leapstack-labs/leaporm/pkg/dialects/duckdb"
	_ "github.com/leapstack-labs/leaporm/pkg/dialects/mysql"
	_ "github.com/leapstack-labs/leaporm/pkg/dialects/postgres"
	_ "github.com/leapstack-labs/leaporm/pkg/dialects/sqlite"
	_ "github.com/leapstack-labs/leaporm/pkg/dialects/sqlserver"
)

// generateDialectDocs writes dialects.md.
func generateDialectDocs(outDir string) error {
	log.Printf("Generating dialect docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Dialects", "Per-backend SQL rendering rules")
	w.GeneratedMarker()
	w.Header(1, "Dialects")

	rows := make([][]string, 0)
	for _, name := range dialect.List() {
		d := dialect.MustGet(name)
		cfg := d.Config()
		limit := "LIMIT n"
		if cfg.Limit == core.LimitTop {
			limit = "TOP (n)"
		}
		rows = append(rows, []string{
			InlineCode(name),
			InlineCode(d.QuoteIdentifier("name")),
			InlineCode(d.FormatParameter("name")),
			InlineCode(d.FormatBoolean(true)),
			limit,
			InlineCode(cfg.DefaultSchema),
		})
	}
	w.Table([]string{"Dialect", "Identifier", "Parameter", "True", "Row limit", "Default schema"}, rows)

	for _, name := range dialect.List() {
		d := dialect.MustGet(name)
		w.Header(2, name)
		types := make([][]string, 0)
		for kind := core.HostKind(0); kind <= core.KindUUID; kind++ {
			if db, ok := d.Config().Types[kind]; ok {
				types = append(types, []string{kind.String(), InlineCode(string(db))})
			}
		}
		w.Table([]string{"Host kind", "Parameter type"}, types)
	}

	if err := os.WriteFile(filepath.Join(outDir, "dialects.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated dialects.md")
	return nil
}
