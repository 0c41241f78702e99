package commands

import (
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/spf13/cobra"
)

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List the registered SQL dialects",
		Long: `List every registered dialect with its identifier quoting, parameter
placeholder style, boolean literals, row limit style and key retrieval support.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := GetRenderer(cmd.Context())
			rows := make([][]any, 0)
			for _, name := range dialect.List() {
				d := dialect.MustGet(name)
				cfg := d.Config()
				_, sequences := d.(dialect.SequenceDialect)
				rows = append(rows, []any{
					name,
					d.QuoteIdentifier("name"),
					cfg.Placeholder.String(),
					d.FormatBoolean(true) + "/" + d.FormatBoolean(false),
					limitStyle(cfg.Limit),
					yesNo(cfg.SupportsReturning),
					yesNo(sequences && cfg.SupportsSequences),
					cfg.DefaultSchema,
				})
			}
			return r.Table([]string{"Dialect", "Quoting", "Parameters", "Booleans", "Limit", "Returning", "Sequences", "Default Schema"}, rows)
		},
	}
}

func limitStyle(s core.LimitStyle) string {
	if s == core.LimitTop {
		return "TOP (n)"
	}
	return "LIMIT n"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
