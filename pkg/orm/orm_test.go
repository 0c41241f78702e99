package orm

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/leaporm/internal/testutil"
	"github.com/leapstack-labs/leaporm/pkg/connection"
	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/leapstack-labs/leaporm/pkg/dialects/mysql"
	"github.com/leapstack-labs/leaporm/pkg/dialects/sqlite"
	"github.com/leapstack-labs/leaporm/pkg/dialects/sqlserver"
	"github.com/leapstack-labs/leaporm/pkg/expr"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
	"github.com/leapstack-labs/leaporm/pkg/query"
	"github.com/leapstack-labs/leaporm/pkg/sqlgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Customer struct {
	ID    int64
	Name  string `db:"full_name"`
	Email string
	Age   int
}

type Invoice struct {
	No    int64
	Total float64
}

type Orphan struct {
	Name string
}

func testModel() *mapping.ModelBuilder {
	mb := mapping.NewModelBuilder()
	mapping.Entity[Customer](mb, func(e *mapping.EntityBuilder) {
		e.ToTable("customers")
		e.HasKey("ID")
		e.Property("ID").IsIdentity()
	})
	mapping.Entity[Invoice](mb, func(e *mapping.EntityBuilder) {
		e.HasKey("No")
		e.Property("No").HasSequence("invoice_no")
	})
	return mb
}

type fixture struct {
	ctx  *Context
	mock sqlmock.Sqlmock
	gens *sqlgen.Generators
	c    *mapping.Cache
}

func newFixture(t *testing.T, d dialect.Dialect) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := testutil.NewTestLogger(t)
	cache := mapping.NewCache(testModel(), logger)
	gens := &sqlgen.Generators{}
	c, err := New(connection.DBProvider(db), d,
		WithLogger(logger), WithCache(cache), WithGenerators(gens))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return &fixture{ctx: c, mock: mock, gens: gens, c: cache}
}

func (f *fixture) customers(t *testing.T) *sqlgen.Generator {
	t.Helper()
	m, err := f.c.Get(reflect.TypeFor[Customer]())
	require.NoError(t, err)
	g, err := f.gens.Get(m, f.ctx.Dialect())
	require.NoError(t, err)
	return g
}

// stmt renders a Customer statement as an exact-match pattern.
func (f *fixture) stmt(t *testing.T, render func(g *sqlgen.Generator) string) string {
	t.Helper()
	return regexp.QuoteMeta(render(f.customers(t)))
}

func TestNew_RequiresDialectAndProvider(t *testing.T) {
	_, err := New(connection.ProviderFunc(func() (connection.Connection, error) { return nil, nil }), nil)
	require.ErrorIs(t, err, core.ErrConfiguration)

	_, err = New(nil, sqlite.SQLite)
	require.ErrorIs(t, err, core.ErrConfiguration)
}

func TestInsert_IdentityReturning(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)
	ctx := context.Background()

	assert.Equal(t,
		`INSERT INTO "customers" ("full_name", "Email", "Age") VALUES (@Name, @Email, @Age) RETURNING "ID"`,
		f.customers(t).Insert().SQL)

	f.mock.ExpectQuery(f.stmt(t, func(g *sqlgen.Generator) string { return g.Insert().SQL })).
		WithArgs(sql.Named("Name", "Ann"), sql.Named("Email", "ann@example.com"), sql.Named("Age", 30)).
		WillReturnRows(sqlmock.NewRows([]string{"ID"}).AddRow(int64(7)))

	cust := &Customer{Name: "Ann", Email: "ann@example.com", Age: 30}
	require.NoError(t, Insert(ctx, f.ctx, cust))
	assert.Equal(t, int64(7), cust.ID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestInsert_MultiStatementSelectBack(t *testing.T) {
	f := newFixture(t, mysql.MySQL)
	ctx := context.Background()

	f.mock.ExpectQuery(f.stmt(t, func(g *sqlgen.Generator) string { return g.Insert().SQL })).
		WithArgs("Bob", "bob@example.com", 41).
		WillReturnRows(sqlmock.NewRows([]string{"ID"}).AddRow(int64(9)))

	cust := &Customer{Name: "Bob", Email: "bob@example.com", Age: 41}
	require.NoError(t, Insert(ctx, f.ctx, cust))
	assert.Equal(t, int64(9), cust.ID)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestInsert_SequenceKey(t *testing.T) {
	f := newFixture(t, sqlserver.SQLServer)
	ctx := context.Background()

	f.mock.ExpectQuery(regexp.QuoteMeta(`SELECT NEXT VALUE FOR [invoice_no]`)).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1001)))
	f.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO [Invoice] ([No], [Total]) VALUES (@No, @Total); SELECT @No AS [No]`)).
		WithArgs(sql.Named("No", int64(1001)), sql.Named("Total", 9.5)).
		WillReturnRows(sqlmock.NewRows([]string{"No"}).AddRow(int64(1001)))

	inv := &Invoice{Total: 9.5}
	require.NoError(t, Insert(ctx, f.ctx, inv))
	assert.Equal(t, int64(1001), inv.No)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestInsert_SequenceUnsupported(t *testing.T) {
	provider := connection.ProviderFunc(func() (connection.Connection, error) {
		t.Error("no connection may be created for a misconfigured entity")
		return nil, errors.New("unexpected connection")
	})
	c, err := New(provider, sqlite.SQLite,
		WithCache(mapping.NewCache(testModel(), nil)), WithGenerators(&sqlgen.Generators{}))
	require.NoError(t, err)

	err = Insert(context.Background(), c, &Invoice{Total: 1})
	require.ErrorIs(t, err, core.ErrConfiguration)
	assert.Contains(t, err.Error(), "does not support sequences (property No)")
	assert.Equal(t, connection.StateClosed, c.State())
}

func TestFind(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)
	ctx := context.Background()
	selectByKey := f.stmt(t, func(g *sqlgen.Generator) string { return g.SelectByKey().SQL })

	f.mock.ExpectQuery(selectByKey).
		WithArgs(sql.Named("ID", int64(7))).
		WillReturnRows(sqlmock.NewRows([]string{"ID", "Name", "Email", "Age"}).
			AddRow(int64(7), "Ann", "ann@example.com", int64(30)))
	f.mock.ExpectQuery(selectByKey).
		WithArgs(sql.Named("ID", int64(8))).
		WillReturnRows(sqlmock.NewRows([]string{"ID", "Name", "Email", "Age"}))

	got, err := Find[Customer](ctx, f.ctx, int64(7))
	require.NoError(t, err)
	assert.Equal(t, Customer{ID: 7, Name: "Ann", Email: "ann@example.com", Age: 30}, *got)

	_, err = Find[Customer](ctx, f.ctx, int64(8))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Find[Customer](ctx, f.ctx, 1, 2)
	assert.ErrorIs(t, err, ErrKeyValues)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestUpdateAndDelete(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)
	ctx := context.Background()
	update := f.stmt(t, func(g *sqlgen.Generator) string {
		stmt, err := g.Update()
		require.NoError(t, err)
		return stmt.SQL
	})
	del := f.stmt(t, func(g *sqlgen.Generator) string { return g.Delete().SQL })

	cust := &Customer{ID: 7, Name: "Ann B", Email: "ann@example.com", Age: 31}

	f.mock.ExpectExec(update).
		WithArgs(sql.Named("Name", "Ann B"), sql.Named("Email", "ann@example.com"), sql.Named("Age", 31), sql.Named("ID", int64(7))).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
	f.mock.ExpectExec(del).
		WithArgs(sql.Named("ID", int64(7))).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, Update(ctx, f.ctx, cust))
	assert.ErrorIs(t, Update(ctx, f.ctx, cust), ErrNotFound)
	require.NoError(t, Delete(ctx, f.ctx, cust))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestWhereAndCount(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)
	ctx := context.Background()

	m, err := MappingFor[Customer](f.ctx)
	require.NoError(t, err)
	adults := expr.Ge(expr.Prop("Age"), expr.Val(18))
	want, err := query.Select[Customer]().From(m, sqlite.SQLite).
		Where(adults).OrderBy("Name", false).Limit(10).Build()
	require.NoError(t, err)

	f.mock.ExpectQuery(regexp.QuoteMeta(want.SQL)).
		WithArgs(sql.Named("p0", 18)).
		WillReturnRows(sqlmock.NewRows([]string{"ID", "Name", "Email", "Age"}).
			AddRow(int64(1), "Ann", "a@example.com", int64(30)).
			AddRow(int64(2), "Bob", "b@example.com", int64(41)))
	f.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "customers" WHERE (Age >= @p0)`)).
		WithArgs(sql.Named("p0", 18)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(2)))
	f.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM "customers"`)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(5)))

	got, err := From[Customer](f.ctx).Where(adults).OrderBy("Name", false).Limit(10).All(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Bob", got[1].Name)

	n, err := Count[Customer](ctx, f.ctx, adults)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = Count[Customer](ctx, f.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestWhere_UntranslatableFilter(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)

	_, err := Where[Customer](context.Background(), f.ctx, expr.Not(expr.Eq(expr.Prop("Age"), expr.Val(1))))
	var tErr *core.TranslationError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "Not", tErr.Construct)
	assert.NoError(t, f.mock.ExpectationsWereMet(), "nothing reaches the database")
}

func TestFirst(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)

	f.mock.ExpectQuery(`SELECT .* FROM "customers" WHERE \(Email = @p0\) LIMIT 1`).
		WithArgs(sql.Named("p0", "nobody@example.com")).
		WillReturnRows(sqlmock.NewRows([]string{"ID"}))

	_, err := From[Customer](f.ctx).Where(expr.Eq(expr.Prop("Email"), expr.Val("nobody@example.com"))).First(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnmappedEntity(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)

	err := Insert(context.Background(), f.ctx, &Orphan{Name: "x"})
	var cfgErr *core.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Reason, "no key property")
}

func TestTransaction(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)
	ctx := context.Background()
	del := f.stmt(t, func(g *sqlgen.Generator) string { return g.Delete().SQL })

	f.mock.ExpectBegin()
	f.mock.ExpectExec(del).WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	require.ErrorIs(t, f.ctx.Commit(), ErrNoTx)

	require.NoError(t, f.ctx.BeginTx(ctx, nil))
	require.ErrorIs(t, f.ctx.BeginTx(ctx, nil), ErrTxActive)
	require.NoError(t, Delete(ctx, f.ctx, &Customer{ID: 3}))
	require.NoError(t, f.ctx.Commit())

	require.NoError(t, f.ctx.BeginTx(ctx, nil))
	require.NoError(t, f.ctx.Rollback())

	assert.Equal(t, connection.StateOpen, f.ctx.State())
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestStatementErrorPropagatesUnchanged(t *testing.T) {
	f := newFixture(t, sqlite.SQLite)
	boom := errors.New("constraint failed")

	f.mock.ExpectExec(".*").WillReturnError(boom)
	err := Delete(context.Background(), f.ctx, &Customer{ID: 1})
	assert.Same(t, boom, err)
}
