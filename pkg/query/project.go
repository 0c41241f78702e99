package query

import (
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
)

// Project returns the projection list for props, or for every mapped
// property in mapping order when props is empty. Each entry is the column
// through the dialect's FormatColumn, aliased through FormatAlias when the
// column and property names differ.
func Project(m *mapping.EntityMapping, d dialect.Dialect, props ...string) ([]string, error) {
	if m == nil {
		return nil, core.Configf("", "projection requires an entity mapping")
	}
	if d == nil {
		return nil, core.Configf(m.Name(), "projection requires a dialect: %v", dialect.ErrDialectRequired)
	}

	var selected []mapping.PropertyMapping
	if len(props) == 0 {
		selected = m.Properties()
	} else {
		selected = make([]mapping.PropertyMapping, 0, len(props))
		for _, name := range props {
			p, ok := m.Property(name)
			if !ok {
				return nil, &core.TranslationError{Construct: "Member(" + name + ")", Reason: "unknown property of " + m.Name()}
			}
			selected = append(selected, p)
		}
	}

	out := make([]string, len(selected))
	for i, p := range selected {
		out[i] = d.FormatColumn(p.Column)
		if p.Column != p.Name {
			out[i] += " AS " + d.FormatAlias(p.Name)
		}
	}
	return out, nil
}
