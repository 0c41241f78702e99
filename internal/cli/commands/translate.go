package commands

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leaporm/internal/cli/output"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/leapstack-labs/leaporm/pkg/expr"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
	"github.com/leapstack-labs/leaporm/pkg/query"
	"github.com/spf13/cobra"
)

// TranslateOptions holds options for the translate command.
type TranslateOptions struct {
	Entity      string
	Properties  []string
	Interactive bool
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand() *cobra.Command {
	opts := &TranslateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [filter]",
		Short: "Translate a filter expression into a SQL predicate",
		Long: `Translate a filter such as "Age >= 18 AND Name = 'Ann'" into the WHERE
predicate and bound parameters the ORM would send.

Members resolve through an entity in the model file (--entity) or against a
plain property list (--props) where each property is its own column.`,
		Example: `  leaporm translate "Age >= 18 AND Name = 'Ann'" --entity Customer
  leaporm translate "a = 1 OR b < 2" --props a,b --dialect sqlserver
  leaporm translate -i --entity Customer`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := newTranslator(cmd, opts)
			if err != nil {
				return err
			}
			if opts.Interactive {
				return runTranslateREPL(cmd, tr)
			}
			if len(args) == 0 {
				return errors.New("a filter expression is required (or use -i)")
			}
			return tr.render(GetRenderer(cmd.Context()), args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Entity, "entity", "e", "", "Entity from the model file to resolve members against")
	cmd.Flags().StringSliceVar(&opts.Properties, "props", nil, "Property names to accept when no entity is given")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Read filters line by line")
	return cmd
}

type translator struct {
	d     dialect.Dialect
	m     *mapping.EntityMapping
	props []string
}

func newTranslator(cmd *cobra.Command, opts *TranslateOptions) (*translator, error) {
	ctx := cmd.Context()
	cfg := GetConfig(ctx)
	d, err := resolveDialect(cfg)
	if err != nil {
		return nil, err
	}
	tr := &translator{d: d, props: opts.Properties}

	switch {
	case opts.Entity != "":
		model, err := loadModel(ctx, cfg)
		if err != nil {
			return nil, err
		}
		tr.m, err = model.Builder().BuildNamed(opts.Entity)
		if err != nil {
			return nil, err
		}
	case len(opts.Properties) == 0:
		return nil, errors.New("either --entity or --props is required")
	}
	return tr, nil
}

func (tr *translator) translate(filter string) (query.Predicate, error) {
	e, err := expr.Parse(filter)
	if err != nil {
		return query.Predicate{}, err
	}
	if tr.m != nil {
		return query.Translate(tr.m, tr.d, e)
	}
	return query.Translate(nil, tr.d, e, query.Properties(tr.props...))
}

func (tr *translator) render(r *output.Renderer, filter string) error {
	p, err := tr.translate(filter)
	if err != nil {
		return err
	}
	if r.Mode() == output.ModeJSON {
		return r.JSON(map[string]any{"sql": p.SQL, "params": p.Params, "order": p.Order})
	}
	_, _ = fmt.Fprintln(r.Out(), p.SQL)
	if len(p.Order) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(p.Order))
	for _, name := range p.Order {
		v := p.Params[name]
		rows = append(rows, []any{tr.d.FormatParameter(name), fmt.Sprintf("%v", v), fmt.Sprintf("%T", v)})
	}
	return r.Table([]string{"Parameter", "Value", "Type"}, rows)
}

func (tr *translator) completions() []string {
	if tr.m == nil {
		return tr.props
	}
	names := make([]string, 0, len(tr.m.Properties()))
	for _, p := range tr.m.Properties() {
		names = append(names, p.Name)
	}
	return names
}

func runTranslateREPL(cmd *cobra.Command, tr *translator) error {
	cfg := GetConfig(cmd.Context())
	r := GetRenderer(cmd.Context())

	items := make([]readline.PrefixCompleterInterface, 0)
	for _, name := range tr.completions() {
		items = append(items, readline.PcItem(name))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "filter> ",
		HistoryFile:     filepath.Join(cfg.ProjectRoot, ".leaporm_history"),
		AutoComplete:    readline.NewPrefixCompleter(items...),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize prompt: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Translating for %s. Empty line or Ctrl-D exits.\n", tr.d.Name())
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" || line == "exit" || line == "quit" {
			return nil
		}
		if err := tr.render(r, line); err != nil {
			r.Warn("%v", err)
		}
	}
}
