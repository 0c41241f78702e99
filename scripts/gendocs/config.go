package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/leapstack-labs/leaporm/internal/config"
	"github.com/leapstack-labs/leaporm/internal/modelfile"
)

// ConfigField is one key of leaporm.yaml.
type ConfigField struct {
	Key  string
	Type string
	// Map marks keys holding free-form maps.
	Map bool
}

// EnvVar returns the environment variable that sets the key.
func (f ConfigField) EnvVar() string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(f.Key, ".", "__"))
}

var configDefaults = map[string]string{
	"model":       config.DefaultModelFile,
	"environment": config.DefaultEnv,
	"output":      config.DefaultOutput,
	"verbose":     "false",
	"dialect":     config.DefaultDialect,
}

var configDescriptions = map[string]string{
	"model":                         "YAML entity model, relative to the project root",
	"dialect":                       "Dialect statements are rendered for; defaults to the target type",
	"environment":                   "Environment whose overrides apply",
	"verbose":                       "Enable debug logging",
	"output":                        "Output format: auto, text, markdown or json",
	"target.type":                   "Adapter type: postgres, sqlserver, mysql, sqlite or duckdb",
	"target.database":               "Database name, or file path for sqlite and duckdb",
	"target.host":                   "Database host",
	"target.port":                   "Database port; defaults per adapter",
	"target.user":                   "Database user",
	"target.password":               "Database password; ${VAR} references are expanded",
	"target.schema":                 "Schema; defaults to the dialect's default schema",
	"target.options":                "Driver options such as sslmode or application_name",
	"target.params":                 "Adapter parameters such as duckdb settings or sqlite pragmas",
	"target.pool.max_open_conns":    "Upper bound on open connections",
	"target.pool.max_idle_conns":    "Upper bound on idle connections",
	"target.pool.conn_max_lifetime": "Maximum connection age, e.g. 30m",
	"environments":                  "Per-environment model and target overrides",
}

// configFields lists the keys of config.Config in declaration order.
func configFields() []ConfigField {
	var out []ConfigField
	collectFields(reflect.TypeFor[config.Config](), "", &out)
	return out
}

func collectFields(t reflect.Type, prefix string, out *[]ConfigField) {
	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" || tag == "-" {
			continue
		}
		key := prefix + tag
		ft := f.Type
		if ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch {
		case ft == reflect.TypeFor[time.Duration]():
			*out = append(*out, ConfigField{Key: key, Type: "duration"})
		case ft.Kind() == reflect.Struct:
			collectFields(ft, key+".", out)
		case ft.Kind() == reflect.Map:
			*out = append(*out, ConfigField{Key: key, Type: "map", Map: true})
		default:
			*out = append(*out, ConfigField{Key: key, Type: ft.Kind().String()})
		}
	}
}

// generateConfigDocs writes configuration.md and model-file.md.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating configuration docs to %s", outDir)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "leaporm configuration reference")
	w.GeneratedMarker()
	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("leaporm reads %s (or %s) from the nearest directory at or above the working directory. "+
		"Flags override environment variables, which override the file, which overrides defaults.",
		InlineCode(config.ConfigFileName), InlineCode(config.ConfigFileNameAlt)))

	rows := make([][]string, 0)
	for _, f := range configFields() {
		def := configDefaults[f.Key]
		if def == "" {
			def = "-"
		} else {
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode(f.Key), f.Type, def, configDescriptions[f.Key]})
	}
	w.Table([]string{"Key", "Type", "Default", "Description"}, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `model: model.yaml
target:
  type: postgres
  host: localhost
  database: shop
  user: app
  password: ${SHOP_PASSWORD}
  pool:
    max_open_conns: 10
environments:
  ci:
    target:
      type: sqlite
      database: ":memory:"`)

	if err := os.WriteFile(filepath.Join(outDir, "configuration.md"), w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")

	m := NewMarkdownWriter()
	m.Frontmatter("Model file", "YAML entity model reference")
	m.GeneratedMarker()
	m.Header(1, "Model file")
	m.Paragraph("The CLI reads entities from a YAML model. Unknown keys are rejected.")
	m.Header(2, "Property types")
	types := make([]string, 0)
	for _, t := range modelfile.Types() {
		types = append(types, InlineCode(t))
	}
	m.BulletList(types)
	if err := os.WriteFile(filepath.Join(outDir, "model-file.md"), m.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated model-file.md")
	return nil
}
