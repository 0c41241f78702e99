package duckdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	got, err := parseParams(nil)
	require.NoError(t, err)
	assert.Empty(t, got.Extensions)
	assert.Empty(t, got.Settings)

	got, err = parseParams(map[string]any{
		"extensions": []any{"icu", "json"},
		"settings":   map[string]any{"threads": "2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"icu", "json"}, got.Extensions)
	assert.Equal(t, map[string]string{"threads": "2"}, got.Settings)
}

func TestParseParams_UnknownKey(t *testing.T) {
	_, err := parseParams(map[string]any{"extentions": []any{"httpfs"}})
	require.Error(t, err)
}

func TestBootStatements(t *testing.T) {
	p := &Params{
		Extensions: []string{"httpfs", "json"},
		Settings:   map[string]string{"threads": "4", "memory_limit": "4GB", "timezone": "O'Higgins"},
	}

	assert.Equal(t, []string{
		"INSTALL httpfs",
		"LOAD httpfs",
		"INSTALL json",
		"LOAD json",
		"SET memory_limit = '4GB'",
		"SET threads = '4'",
		"SET timezone = 'O''Higgins'",
	}, p.bootStatements())

	assert.Empty(t, (&Params{}).bootStatements())
}
