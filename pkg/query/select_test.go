package query

import (
	"database/sql"
	"testing"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialects/mysql"
	"github.com/leapstack-labs/leaporm/pkg/dialects/sqlite"
	"github.com/leapstack-labs/leaporm/pkg/dialects/sqlserver"
	"github.com/leapstack-labs/leaporm/pkg/expr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	m := userMapping(t)

	all, err := Project(m, sqlite.SQLite)
	require.NoError(t, err)
	assert.Equal(t, []string{"Id", "Age", "user_name AS Name", "Email"}, all)

	some, err := Project(m, sqlite.SQLite, "Name", "Id")
	require.NoError(t, err)
	assert.Equal(t, []string{"user_name AS Name", "Id"}, some)

	_, err = Project(m, sqlite.SQLite, "Missing")
	assert.ErrorIs(t, err, core.ErrTranslation)

	_, err = Project(nil, sqlite.SQLite)
	assert.ErrorIs(t, err, core.ErrConfiguration)
}

func TestSelectBuilder(t *testing.T) {
	m := userMapping(t)
	adults := expr.Ge(expr.Prop("Age"), expr.Val(18))

	t.Run("sqlite", func(t *testing.T) {
		stmt, err := Select[User]().
			From(m, sqlite.SQLite).
			Project("Id", "Name").
			Where(adults).
			Where(expr.Ne(expr.Prop("Email"), expr.Val(""))).
			OrderBy("Name", false).
			OrderBy("Id", true).
			Limit(10).
			Build()
		require.NoError(t, err)
		assert.Equal(t,
			`SELECT Id, user_name AS Name FROM "app"."users" WHERE ((Age >= @p0) AND (Email <> @p1)) ORDER BY user_name, Id DESC LIMIT 10`,
			stmt.SQL)
		assert.Equal(t, []any{sql.Named("p0", 18), sql.Named("p1", "")}, stmt.Args)
	})

	t.Run("sqlserver top", func(t *testing.T) {
		stmt, err := Select[User]().From(m, sqlserver.SQLServer).Where(adults).Limit(5).Build()
		require.NoError(t, err)
		assert.Equal(t,
			"SELECT TOP (5) Id, Age, user_name AS Name, Email FROM [app].[users] WHERE (Age >= @p0)",
			stmt.SQL)
	})

	t.Run("mysql positional", func(t *testing.T) {
		stmt, err := Select[User]().From(m, mysql.MySQL).Where(adults).Build()
		require.NoError(t, err)
		assert.Equal(t, "SELECT Id, Age, user_name AS Name, Email FROM `app`.`users` WHERE (Age >= ?)", stmt.SQL)
		assert.Equal(t, []any{18}, stmt.Args)
	})
}

func TestSelectBuilder_Errors(t *testing.T) {
	m := userMapping(t)

	_, err := Select[User]().Build()
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = Select[User]().From(m, nil).Build()
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = Select[struct{ X int }]().From(m, sqlite.SQLite).Build()
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = Select[User]().From(m, sqlite.SQLite).Limit(-1).Build()
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = Select[User]().From(m, sqlite.SQLite).OrderBy("Missing", false).Build()
	assert.ErrorIs(t, err, core.ErrTranslation)

	_, err = Select[User]().From(m, sqlite.SQLite).Where(expr.Not(expr.Eq(expr.Prop("Id"), expr.Val(1)))).Build()
	assert.ErrorIs(t, err, core.ErrTranslation)
}
