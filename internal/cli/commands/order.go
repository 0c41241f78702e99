package commands

import (
	"strings"

	"github.com/leapstack-labs/leaporm/internal/cli/output"
	"github.com/leapstack-labs/leaporm/internal/dag"
	"github.com/spf13/cobra"
)

// NewOrderCommand creates the order command.
func NewOrderCommand() *cobra.Command {
	var reverse bool

	cmd := &cobra.Command{
		Use:   "order",
		Short: "Print entities in dependency order",
		Long: `Print model entities grouped into levels so that every entity follows the
entities it holds foreign keys to. Inserting level by level never violates a
foreign key; --delete prints the reverse order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			g := dag.FromMappings(mappings)
			levels, err := g.Levels()
			if err != nil {
				return err
			}

			r := GetRenderer(ctx)
			if r.Mode() == output.ModeJSON {
				order, err := g.InsertOrder()
				if err != nil {
					return err
				}
				if reverse {
					order, err = g.DeleteOrder()
					if err != nil {
						return err
					}
				}
				return r.JSON(map[string]any{"levels": levels, "order": order})
			}

			rows := make([][]any, 0, len(levels))
			for i := range levels {
				idx := i
				if reverse {
					idx = len(levels) - 1 - i
				}
				entities := levels[idx]
				var principals []string
				for _, name := range entities {
					principals = append(principals, g.Principals(name)...)
				}
				rows = append(rows, []any{idx, strings.Join(entities, ", "), strings.Join(dedupe(principals), ", ")})
			}
			return r.Table([]string{"Level", "Entities", "References"}, rows)
		},
	}

	cmd.Flags().BoolVar(&reverse, "delete", false, "Print the order for deletes (dependents first)")
	return cmd
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
