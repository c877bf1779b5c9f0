package wrapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/value"
)

func mustDialect(t *testing.T, p dialect.Platform) dialect.Dialect {
	t.Helper()
	d, err := dialect.Lookup(p)
	require.NoError(t, err)
	return d
}

func renderWhere(t *testing.T, w *Wrapper, p dialect.Platform) (string, []any) {
	t.Helper()
	s := NewStmt(mustDialect(t, p))
	w.AppendWhere(s)
	w.AppendTail(s)
	return s.String(), s.DriverArgs()
}

func TestImplicitAnd(t *testing.T) {
	w := New().Eq("name", "ada").Gt("age", 30)
	sql, args := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `name` = ? AND `age` > ?", sql)
	assert.Equal(t, []any{"ada", int64(30)}, args)
}

func TestOrPromotesNextConnector(t *testing.T) {
	w := New().Eq("a", 1).Or().Eq("b", 2).Eq("c", 3)
	sql, _ := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `a` = ? OR `b` = ? AND `c` = ?", sql)
}

func TestTrailingOrIsNoop(t *testing.T) {
	w := New().Eq("a", 1).Or()
	sql, _ := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `a` = ?", sql)
}

func TestPostgresPlaceholderNumbering(t *testing.T) {
	w := New().Eq("a", 1).In("b", 2, 3).Between("c", 4, 5)
	sql, args := renderWhere(t, w, dialect.Postgres)
	assert.Equal(t, ` WHERE "a" = $1 AND "b" IN ($2, $3) AND "c" BETWEEN $4 AND $5`, sql)
	assert.Len(t, args, 5)
}

func TestOracleAndMSSQLPlaceholders(t *testing.T) {
	w := New().Eq("a", 1).Eq("b", 2)
	sql, _ := renderWhere(t, w, dialect.Oracle)
	assert.Equal(t, ` WHERE "a" = :1 AND "b" = :2`, sql)

	sql, _ = renderWhere(t, w, dialect.MSSQL)
	assert.Equal(t, " WHERE [a] = @p1 AND [b] = @p2", sql)
}

func TestNested(t *testing.T) {
	w := New().Eq("a", 1).Nested(func(n *Wrapper) {
		n.Eq("b", 2).Or().Eq("c", 3)
	})
	sql, _ := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `a` = ? AND (`b` = ? OR `c` = ?)", sql)
}

func TestEmptyNestedAddsNothing(t *testing.T) {
	w := New().Eq("a", 1).Or().Nested(func(n *Wrapper) {})
	sql, _ := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `a` = ?", sql)
}

func TestNilComparisons(t *testing.T) {
	w := New().Eq("a", nil).Ne("b", nil)
	sql, args := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `a` IS NULL AND `b` IS NOT NULL", sql)
	assert.Empty(t, args)
}

func TestInEmptyList(t *testing.T) {
	sql, _ := renderWhere(t, New().In("a"), dialect.MySQL)
	assert.Equal(t, " WHERE 1 = 2", sql)

	sql, _ = renderWhere(t, New().NotIn("a"), dialect.MySQL)
	assert.Equal(t, " WHERE 1 = 1", sql)
}

func TestLikeVariants(t *testing.T) {
	w := New().Like("a", "x").LikeLeft("b", "y").LikeRight("c", "z")
	sql, args := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `a` LIKE ? AND `b` LIKE ? AND `c` LIKE ?", sql)
	assert.Equal(t, []any{"%x%", "%y", "z%"}, args)
}

func TestApplyFragment(t *testing.T) {
	w := New().Apply("date_format(created, '%Y') = ?", "2024")
	sql, args := renderWhere(t, w, dialect.Postgres)
	assert.Equal(t, " WHERE date_format(created, '%Y') = $1", sql)
	assert.Equal(t, []any{"2024"}, args)
}

func TestRawValueSplices(t *testing.T) {
	w := New().Eq("updated", value.Raw("NOW()"))
	sql, args := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `updated` = NOW()", sql)
	assert.Empty(t, args)
}

func TestExistsAndInSQL(t *testing.T) {
	w := New().Exists("SELECT 1 FROM orders WHERE uid = users.id").
		InSQL("id", "SELECT uid FROM admins")
	sql, _ := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE EXISTS (SELECT 1 FROM orders WHERE uid = users.id) AND `id` IN (SELECT uid FROM admins)", sql)
}

func TestGroupHavingOrder(t *testing.T) {
	w := New().Gt("age", 18).
		GroupBy("city").
		Having("count(*) > ?", 5).
		OrderByAsc("city").
		OrderByDesc("total")
	sql, args := renderWhere(t, w, dialect.MySQL)
	assert.Equal(t, " WHERE `age` > ? GROUP BY `city` HAVING count(*) > ? ORDER BY `city`, `total` DESC", sql)
	assert.Equal(t, []any{int64(18), int64(5)}, args)
}

func TestSetClause(t *testing.T) {
	d := mustDialect(t, dialect.Postgres)
	w := New().Set("name", "ada").SetSQL("version", "version + 1").Eq("id", 7)
	s := NewStmt(d)
	s.Write("UPDATE " + d.Quote("users") + " ")
	w.AppendSet(s)
	w.AppendWhere(s)
	assert.Equal(t, `UPDATE "users" SET "name" = $1, "version" = version + 1 WHERE "id" = $2`, s.String())
	assert.Equal(t, []any{"ada", int64(7)}, s.DriverArgs())
}

func TestSelectAndPagingAccessors(t *testing.T) {
	w := New().Select("id", "name").Distinct().Limit(10).Offset(20)
	assert.Equal(t, []string{"id", "name"}, w.Selects())
	assert.True(t, w.IsDistinct())
	assert.Equal(t, int64(10), w.LimitValue())
	assert.Equal(t, int64(20), w.OffsetValue())
	assert.False(t, w.HasWhere())
	assert.False(t, w.AllowsEmpty())
	assert.True(t, w.AllowEmpty().AllowsEmpty())
}

func TestBindFragmentSkipsQuestionMarkInLiteral(t *testing.T) {
	s := NewStmt(mustDialect(t, dialect.Postgres))
	s.BindFragment("a = '?' AND b = ?", value.Bigint(1))
	assert.Equal(t, "a = '?' AND b = $1", s.String())
}
