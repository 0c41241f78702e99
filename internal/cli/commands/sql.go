package commands

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
	"github.com/leapstack-labs/leaporm/pkg/sqlgen"
	"github.com/spf13/cobra"
)

// NewSQLCommand creates the sql command.
func NewSQLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sql [entity...]",
		Short: "Print the statements generated for model entities",
		Long: `Render the SELECT, INSERT, UPDATE, DELETE and COUNT statements the ORM
issues for each entity in the model file, in the configured dialect.

With no arguments every entity is rendered.`,
		Example: `  leaporm sql
  leaporm sql Customer --dialect sqlserver`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			logger := GetLogger(ctx)

			d, err := resolveDialect(cfg)
			if err != nil {
				return err
			}
			model, err := loadModel(ctx, cfg)
			if err != nil {
				return err
			}
			mappings, err := model.Build()
			if err != nil {
				return err
			}

			var rows [][]any
			for _, m := range mappings {
				if len(args) > 0 && !slices.Contains(args, m.Name()) {
					continue
				}
				g, err := sqlgen.New(m, d)
				if err != nil {
					return err
				}
				for _, s := range statements(g, logger) {
					rows = append(rows, []any{m.Name(), s.name, s.sql.SQL, strings.Join(s.sql.Params, ", ")})
				}
			}
			if len(rows) == 0 {
				return fmt.Errorf("no matching entities in %s", cfg.ModelFile)
			}
			return GetRenderer(ctx).Table([]string{"Entity", "Statement", "SQL", "Parameters"}, rows)
		},
	}
}

type namedStatement struct {
	name string
	sql  sqlgen.GeneratedSQL
}

func statements(g *sqlgen.Generator, logger *slog.Logger) []namedStatement {
	out := []namedStatement{
		{"select", g.Select()},
		{"select by key", g.SelectByKey()},
		{"insert", g.Insert()},
	}
	if upd, err := g.Update(); err == nil {
		out = append(out, namedStatement{"update", upd})
	} else {
		logger.Debug("update not rendered", slog.String("entity", g.Mapping().Name()), slog.Any("error", err))
	}
	out = append(out,
		namedStatement{"delete", g.Delete()},
		namedStatement{"count", g.Count()},
	)
	for _, p := range g.Mapping().Keys() {
		if p.Generation != core.GenerationSequence {
			continue
		}
		seq, err := g.NextSequenceValue(p.Name)
		if err != nil {
			logger.Warn("sequence not rendered", slog.String("entity", g.Mapping().Name()), slog.Any("error", err))
			continue
		}
		out = append(out, namedStatement{"next " + p.Name, seq})
	}
	return out
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe [entity...]",
		Short: "Show how model entities map onto tables and columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := GetConfig(ctx)
			model, err := loadModel(ctx, cfg)
			if err != nil {
				return err
			}
			mappings, err := model.Build()
			if err != nil {
				return err
			}

			r := GetRenderer(ctx)
			shown := 0
			for _, m := range mappings {
				if len(args) > 0 && !slices.Contains(args, m.Name()) {
					continue
				}
				shown++
				r.Heading(describeTitle(m))
				if err := r.Table([]string{"Property", "Column", "Key", "Generation", "Sequence"}, propertyRows(m)); err != nil {
					return err
				}
				if rels := m.Relationships(); len(rels) > 0 {
					if err := r.Table([]string{"Navigation", "Principal", "Dependent", "Foreign Key", "Inverse"}, relationshipRows(rels)); err != nil {
						return err
					}
				}
			}
			if shown == 0 {
				return fmt.Errorf("no matching entities in %s", cfg.ModelFile)
			}
			return nil
		},
	}
}

func describeTitle(m *mapping.EntityMapping) string {
	table := m.Table()
	if m.Schema() != "" {
		table = m.Schema() + "." + table
	}
	return fmt.Sprintf("%s (%s)", m.Name(), table)
}

func propertyRows(m *mapping.EntityMapping) [][]any {
	rows := make([][]any, 0, len(m.Properties()))
	for _, p := range m.Properties() {
		rows = append(rows, []any{p.Name, p.Column, yesNo(p.IsKey), p.Generation.String(), p.Sequence})
	}
	return rows
}

func relationshipRows(rels []mapping.RelationshipConfig) [][]any {
	rows := make([][]any, 0, len(rels))
	for _, rel := range rels {
		rows = append(rows, []any{rel.Navigation, rel.Principal, rel.Dependent, rel.ForeignKey, rel.Inverse})
	}
	return rows
}
