package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	for _, p := range []Platform{MySQL, Postgres, SQLite, Oracle, MSSQL} {
		d, err := Lookup(p)
		require.NoError(t, err)
		assert.Equal(t, p, d.Platform())
	}
	_, err := Lookup(Platform("db2"))
	assert.Error(t, err)
}

func TestPlaceholders(t *testing.T) {
	for _, tc := range []struct {
		p    Platform
		n    int
		want string
	}{
		{MySQL, 3, "?"},
		{SQLite, 3, "?"},
		{Postgres, 3, "$3"},
		{Oracle, 3, ":3"},
		{MSSQL, 3, "@p3"},
	} {
		d, err := Lookup(tc.p)
		require.NoError(t, err)
		assert.Equal(t, tc.want, d.Placeholder(tc.n), string(tc.p))
	}
}

func TestQuote(t *testing.T) {
	mysql, _ := Lookup(MySQL)
	assert.Equal(t, "`users`", mysql.Quote("users"))
	assert.Equal(t, "`app`.`users`", mysql.Quote("app.users"))
	assert.Equal(t, "`u`.*", mysql.Quote("u.*"))

	pg, _ := Lookup(Postgres)
	assert.Equal(t, `"users"`, pg.Quote("users"))

	ms, _ := Lookup(MSSQL)
	assert.Equal(t, "[app].[users]", ms.Quote("app.users"))
}

func TestLimitOffsetPaging(t *testing.T) {
	base := "SELECT * FROM t"

	mysql, _ := Lookup(MySQL)
	assert.Equal(t, "SELECT * FROM t LIMIT 10 OFFSET 20", mysql.Page(base, 10, 20))
	assert.Equal(t, "SELECT * FROM t LIMIT 10", mysql.Page(base, 10, 0))
	assert.Equal(t, "SELECT * FROM t LIMIT 18446744073709551615 OFFSET 20", mysql.Page(base, 0, 20))
	assert.Equal(t, base, mysql.Page(base, 0, 0))

	pg, _ := Lookup(Postgres)
	assert.Equal(t, "SELECT * FROM t LIMIT 10 OFFSET 20", pg.Page(base, 10, 20))
	assert.Equal(t, "SELECT * FROM t OFFSET 20", pg.Page(base, 0, 20))

	lite, _ := Lookup(SQLite)
	assert.Equal(t, "SELECT * FROM t LIMIT -1 OFFSET 20", lite.Page(base, 0, 20))
}

func TestOracleRownumEnvelope(t *testing.T) {
	d, _ := Lookup(Oracle)
	base := "SELECT * FROM t ORDER BY id"
	assert.Equal(t,
		"SELECT * FROM (SELECT * FROM t ORDER BY id) WHERE ROWNUM <= 10",
		d.Page(base, 10, 0))
	assert.Equal(t,
		"SELECT * FROM (SELECT q.*, ROWNUM rn FROM (SELECT * FROM t ORDER BY id) q WHERE ROWNUM <= 30) WHERE rn > 20",
		d.Page(base, 10, 20))
	assert.Equal(t, base, d.Page(base, 0, 0))
}

func TestMSSQLOffsetFetch(t *testing.T) {
	d, _ := Lookup(MSSQL)
	assert.Equal(t,
		"SELECT * FROM t ORDER BY 1 OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY",
		d.Page("SELECT * FROM t", 10, 20))
	assert.Equal(t,
		"SELECT * FROM t ORDER BY id OFFSET 0 ROWS FETCH NEXT 10 ROWS ONLY",
		d.Page("SELECT * FROM t ORDER BY id", 10, 0))
}

func TestInsertSuffix(t *testing.T) {
	pg, _ := Lookup(Postgres)
	assert.Equal(t, ` RETURNING "id"`, pg.InsertSuffix("id"))
	assert.False(t, pg.ResultLastID())

	mysql, _ := Lookup(MySQL)
	assert.Empty(t, mysql.InsertSuffix("id"))
	assert.True(t, mysql.ResultLastID())
}

func TestInsertOutput(t *testing.T) {
	mssql, _ := Lookup(MSSQL)
	assert.Equal(t, " OUTPUT INSERTED.[id]", mssql.InsertOutput("id"))

	for _, p := range []Platform{MySQL, Postgres, SQLite, Oracle} {
		d, _ := Lookup(p)
		assert.Empty(t, d.InsertOutput("id"), string(p))
	}
}

func TestUpsertClause(t *testing.T) {
	cols := []string{"name", "age"}

	mysql, _ := Lookup(MySQL)
	assert.Equal(t,
		" ON DUPLICATE KEY UPDATE `name` = VALUES(`name`), `age` = VALUES(`age`)",
		mysql.Upsert("id", cols))

	pg, _ := Lookup(Postgres)
	assert.Equal(t,
		` ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name", "age" = EXCLUDED."age"`,
		pg.Upsert("id", cols))

	lite, _ := Lookup(SQLite)
	assert.Equal(t,
		` ON CONFLICT ("id") DO UPDATE SET "name" = EXCLUDED."name"`,
		lite.Upsert("id", []string{"name"}))

	oracle, _ := Lookup(Oracle)
	assert.Empty(t, oracle.Upsert("id", cols))
	ms, _ := Lookup(MSSQL)
	assert.Empty(t, ms.Upsert("id", cols))

	assert.Empty(t, mysql.Upsert("id", nil))
}
