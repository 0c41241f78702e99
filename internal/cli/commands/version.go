package commands

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"slices"

	"github.com/leapstack-labs/leaporm/internal/cli/output"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// driverModules are the database drivers linked through pkg/adapters.
var driverModules = []string{
	"github.com/denisenkom/go-mssqldb",
	"github.com/go-sql-driver/mysql",
	"github.com/jackc/pgx/v5",
	"github.com/marcboeker/go-duckdb",
	"modernc.org/sqlite",
}

type versionReport struct {
	Version string            `json:"version"`
	Commit  string            `json:"commit"`
	Date    string            `json:"date"`
	Go      string            `json:"go"`
	Drivers map[string]string `json:"drivers"`
}

// NewVersionCommand creates the version command. It runs without a project,
// so it reads --output itself instead of relying on the loaded config.
func NewVersionCommand(b BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the leaporm version, build stamp, Go toolchain and linked database driver versions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("output")
			mode, err := output.ParseMode(format)
			if err != nil {
				return err
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

			info, _ := debug.ReadBuildInfo()
			rep := report(b, info)
			if r.Mode() == output.ModeJSON {
				return r.JSON(rep)
			}

			_, _ = fmt.Fprintf(r.Out(), "leaporm v%s (commit %s, built %s)\n", rep.Version, rep.Commit, rep.Date)
			_, _ = fmt.Fprintf(r.Out(), "Built with %s\n", rep.Go)
			if len(rep.Drivers) == 0 {
				return nil
			}
			rows := make([][]any, 0, len(rep.Drivers))
			for _, path := range driverModules {
				if v, ok := rep.Drivers[path]; ok {
					rows = append(rows, []any{path, v})
				}
			}
			return r.Table([]string{"Driver", "Version"}, rows)
		},
	}
}

// report merges the link-time stamp with the embedded module build info.
// info is nil for binaries built without module support.
func report(b BuildInfo, info *debug.BuildInfo) versionReport {
	rep := versionReport{
		Version: b.Version,
		Commit:  b.Commit,
		Date:    b.Date,
		Go:      runtime.Version(),
		Drivers: map[string]string{},
	}
	if info == nil {
		return rep
	}
	if info.GoVersion != "" {
		rep.Go = info.GoVersion
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if rep.Commit == "" || rep.Commit == "unknown" {
				rep.Commit = s.Value
			}
		case "vcs.time":
			if rep.Date == "" || rep.Date == "unknown" {
				rep.Date = s.Value
			}
		}
	}
	for _, dep := range info.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		if slices.Contains(driverModules, dep.Path) {
			rep.Drivers[dep.Path] = dep.Version
		}
	}
	return rep
}
