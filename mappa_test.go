package mappa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/meta"
	"github.com/syssam/mappa/value"
	"github.com/syssam/mappa/wrapper"
)

type account struct {
	ID   int64
	Name string
	Age  int64
}

func (a *account) Table() meta.TableName { return meta.ParseTable("accounts") }

func (a *account) Fields() []meta.FieldName {
	return []meta.FieldName{
		meta.IDField("id", meta.IDAuto),
		meta.Field("name"),
		meta.Field("age"),
	}
}

func (a *account) IntoValue() value.Value {
	obj := value.NewObject()
	obj.Set("id", value.Bigint(a.ID))
	obj.Set("name", value.Text(a.Name))
	obj.Set("age", value.Bigint(a.Age))
	return value.ObjectOf(obj)
}

func (a *account) ScanRow(r *value.Row) error {
	for _, c := range r.Columns() {
		v, _ := r.Value(c)
		if v.IsNull() {
			continue
		}
		var err error
		switch c {
		case "id":
			err = v.Scan(&a.ID)
		case "name":
			err = v.Scan(&a.Name)
		case "age":
			err = v.Scan(&a.Age)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

var noteClock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type note struct {
	ID      int64
	Body    string
	Created time.Time
}

func (n *note) Table() meta.TableName { return meta.ParseTable("notes") }

func (n *note) Fields() []meta.FieldName {
	return []meta.FieldName{
		meta.IDField("id", meta.IDAssignID),
		meta.Field("body"),
		{Name: "created_at", Exist: true, Select: true, Fill: &meta.Fill{
			Mode:  meta.FillInsert,
			Value: func() value.Value { return value.Timestamp(noteClock) },
		}},
	}
}

func (n *note) IntoValue() value.Value {
	obj := value.NewObject()
	obj.Set("id", value.Bigint(n.ID))
	obj.Set("body", value.Text(n.Body))
	obj.Set("created_at", value.Timestamp(n.Created))
	return value.ObjectOf(obj)
}

func (n *note) ScanRow(r *value.Row) error {
	for _, c := range r.Columns() {
		v, _ := r.Value(c)
		if v.IsNull() {
			continue
		}
		var err error
		switch c {
		case "id":
			err = v.Scan(&n.ID)
		case "body":
			err = v.Scan(&n.Body)
		case "created_at":
			err = v.Scan(&n.Created)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func openMapper(t *testing.T, platform string, mutate func(*Config)) (*Mapper, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	cfg := &Config{
		Platform: platform,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if mutate != nil {
		mutate(cfg)
	}
	m, err := OpenDB(cfg, db)
	require.NoError(t, err)
	return m, mock
}

func exact(sql string) string { return regexp.QuoteMeta(sql) }

func TestSaveWritesBackAutoID(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectExec(exact("INSERT INTO `accounts` (`name`, `age`) VALUES (?, ?)")).
		WithArgs("ada", int64(36)).
		WillReturnResult(sqlmock.NewResult(7, 1))

	a := &account{Name: "ada", Age: 36}
	require.NoError(t, Save[account](context.Background(), m, a))
	assert.Equal(t, int64(7), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveReturningOnPostgres(t *testing.T) {
	m, mock := openMapper(t, "postgres", nil)
	mock.ExpectQuery(exact(`INSERT INTO "accounts" ("name", "age") VALUES ($1, $2) RETURNING "id"`)).
		WithArgs("ada", int64(36)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	a := &account{Name: "ada", Age: 36}
	require.NoError(t, Save[account](context.Background(), m, a))
	assert.Equal(t, int64(9), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveOutputInsertedOnMSSQL(t *testing.T) {
	m, mock := openMapper(t, "mssql", nil)
	mock.ExpectQuery(exact("INSERT INTO [accounts] ([name], [age]) OUTPUT INSERTED.[id] VALUES (@p1, @p2)")).
		WithArgs("ada", int64(36)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	a := &account{Name: "ada", Age: 36}
	require.NoError(t, Save[account](context.Background(), m, a))
	assert.Equal(t, int64(11), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRejectsUnreadableGeneratedKey(t *testing.T) {
	m, _ := openMapper(t, "oracle", nil)

	err := Save[account](context.Background(), m, &account{Name: "ada", Age: 36})
	assert.True(t, IsInvalidArgument(err))
}

func TestSaveAssignsSnowflakeAndFills(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectExec(exact("INSERT INTO `notes` (`id`, `body`, `created_at`) VALUES (?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "hello", noteClock).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n := &note{Body: "hello"}
	require.NoError(t, Save[note](context.Background(), m, n))
	assert.NotZero(t, n.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatchChunks(t *testing.T) {
	m, mock := openMapper(t, "mysql", func(c *Config) { c.BatchSize = 2 })
	mock.ExpectExec(exact("INSERT INTO `notes` (`id`, `body`, `created_at`) VALUES (?, ?, ?), (?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "a", noteClock, sqlmock.AnyArg(), "b", noteClock).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(exact("INSERT INTO `notes` (`id`, `body`, `created_at`) VALUES (?, ?, ?)")).
		WithArgs(sqlmock.AnyArg(), "c", noteClock).
		WillReturnResult(sqlmock.NewResult(0, 1))

	notes := []*note{{Body: "a"}, {Body: "b"}, {Body: "c"}}
	n, err := SaveBatch[note](context.Background(), m, notes)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	for _, nt := range notes {
		assert.NotZero(t, nt.ID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveBatchRejectsMixedIdentifiers(t *testing.T) {
	m, _ := openMapper(t, "mysql", nil)

	_, err := SaveBatch[account](context.Background(), m, []*account{
		{Name: "ada"},
		{ID: 5, Name: "bob"},
	})
	assert.True(t, IsInvalidArgument(err))
}

func TestListRendersConditions(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectQuery(exact("SELECT `id`, `name`, `age` FROM `accounts` WHERE `age` >= ? ORDER BY `id` DESC")).
		WithArgs(int64(18)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).
			AddRow(int64(2), "bob", int64(42)).
			AddRow(int64(1), "ada", int64(36)))

	list, err := List[account](context.Background(), m, wrapper.New().Ge("age", 18).OrderByDesc("id"))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "bob", list[0].Name)
	assert.Equal(t, int64(36), list[1].Age)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectByID(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectQuery(exact("SELECT `id`, `name`, `age` FROM `accounts` WHERE `id` = ? LIMIT 1")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).
			AddRow(int64(7), "ada", int64(36)))

	a, err := SelectByID[account](context.Background(), m, 7)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, "ada", a.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectOneAbsentReturnsNil(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectQuery("SELECT (.+) FROM `accounts`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}))

	a, err := SelectOne[account](context.Background(), m, wrapper.New().Eq("name", "nobody"))
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestSelectPage(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectQuery(exact("SELECT COUNT(*) FROM `accounts` WHERE `age` >= ?")).
		WithArgs(int64(18)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(5)))
	mock.ExpectQuery(exact("SELECT `id`, `name`, `age` FROM `accounts` WHERE `age` >= ? LIMIT 2 OFFSET 2")).
		WithArgs(int64(18)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).
			AddRow(int64(3), "cyd", int64(20)).
			AddRow(int64(4), "dee", int64(25)))

	page, err := SelectPage[account](context.Background(), m, wrapper.New().Ge("age", 18), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(3), page.Pages())
	require.Len(t, page.Records, 2)
	assert.Equal(t, "cyd", page.Records[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPageEmptySkipsDataQuery(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectQuery(exact("SELECT COUNT(*) FROM `accounts`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))

	page, err := SelectPage[account](context.Background(), m, wrapper.New(), 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountKeepsGrouping(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectQuery(exact("SELECT COUNT(*) FROM `accounts` WHERE `age` >= ? GROUP BY `age` HAVING COUNT(*) > ?")).
		WithArgs(int64(18), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	w := wrapper.New().Ge("age", 18).GroupBy("age").Having("COUNT(*) > ?", 3).OrderByDesc("age")
	n, err := Count[account](context.Background(), m, w)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPageRestoresWrapperBounds(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectQuery(exact("SELECT COUNT(*) FROM `accounts`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(exact("SELECT `id`, `name`, `age` FROM `accounts` LIMIT 10")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).
			AddRow(int64(1), "ada", int64(36)))

	w := wrapper.New()
	_, err := SelectPage[account](context.Background(), m, w, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), w.LimitValue())
	assert.Equal(t, int64(-1), w.OffsetValue())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectPageValidatesBounds(t *testing.T) {
	m, _ := openMapper(t, "mysql", nil)
	_, err := SelectPage[account](context.Background(), m, wrapper.New(), 0, 10)
	assert.True(t, IsInvalidArgument(err))
	_, err = SelectPage[account](context.Background(), m, wrapper.New(), 1, 0)
	assert.True(t, IsInvalidArgument(err))
}

func TestUpdateByID(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectExec(exact("UPDATE `accounts` SET `name` = ?, `age` = ? WHERE `id` = ?")).
		WithArgs("ada", int64(37), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := UpdateByID[account](context.Background(), m, &account{ID: 7, Name: "ada", Age: 37})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateByIDRejectsEmptyID(t *testing.T) {
	m, _ := openMapper(t, "mysql", nil)
	_, err := UpdateByID[account](context.Background(), m, &account{Name: "ada"})
	assert.True(t, IsInvalidArgument(err))
}

func TestUpdateGuardsEmptyWhere(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)

	_, err := Update[account](context.Background(), m, wrapper.New().Set("age", 0))
	assert.ErrorIs(t, err, ErrEmptyWhere)

	mock.ExpectExec(exact("UPDATE `accounts` SET `age` = ?")).
		WithArgs(int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 5))
	n, err := Update[account](context.Background(), m, wrapper.New().Set("age", 0).AllowEmpty())
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveGuardsEmptyWhere(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)

	_, err := Remove[account](context.Background(), m, wrapper.New())
	assert.ErrorIs(t, err, ErrEmptyWhere)

	mock.ExpectExec(exact("DELETE FROM `accounts` WHERE `id` IN (?, ?)")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err := RemoveByIDs[account](context.Background(), m, []any{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveOrUpdate(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)

	mock.ExpectExec(exact("INSERT INTO `accounts` (`name`, `age`) VALUES (?, ?)")).
		WithArgs("ada", int64(36)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	fresh := &account{Name: "ada", Age: 36}
	require.NoError(t, SaveOrUpdate[account](context.Background(), m, fresh))
	assert.Equal(t, int64(7), fresh.ID)

	mock.ExpectExec(exact("UPDATE `accounts` SET `name` = ?, `age` = ? WHERE `id` = ?")).
		WithArgs("ada", int64(37), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, SaveOrUpdate[account](context.Background(), m, &account{ID: 7, Name: "ada", Age: 37}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertUsesConflictClause(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectExec(exact("INSERT INTO `notes` (`id`, `body`, `created_at`) VALUES (?, ?, ?)" +
		" ON DUPLICATE KEY UPDATE `body` = VALUES(`body`), `created_at` = VALUES(`created_at`)")).
		WithArgs(int64(42), "hello", noteClock).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, Upsert[note](context.Background(), m, &note{ID: 42, Body: "hello"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertFallsBackWithoutConflictClause(t *testing.T) {
	m, mock := openMapper(t, "mssql", nil)
	mock.ExpectExec(exact("UPDATE [accounts] SET [name] = @p1, [age] = @p2 WHERE [id] = @p3")).
		WithArgs("ada", int64(36), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, Upsert[account](context.Background(), m, &account{ID: 7, Name: "ada", Age: 36}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDenyPolicyBlocksStackedStatements(t *testing.T) {
	m, _ := openMapper(t, "mysql", func(c *Config) { c.SecurityPolicy = "deny" })

	_, err := ExecRaw(context.Background(), m,
		"DELETE FROM accounts WHERE id = 1; DROP TABLE accounts")
	require.Error(t, err)
	assert.True(t, IsInjectionError(err))
}

func TestWarnPolicyLetsStatementThrough(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectExec("DELETE FROM accounts").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := ExecRaw(context.Background(), m,
		"DELETE FROM accounts WHERE name = ? OR 1 = 1", "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestQueryRaw(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectQuery(exact("SELECT name FROM accounts WHERE id = ?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("ada"))

	r, err := QueryFirst(context.Background(), m, "SELECT name FROM accounts WHERE id = ?", 7)
	require.NoError(t, err)
	require.NotNil(t, r)
	name, err := value.Get[string](r, "name")
	require.NoError(t, err)
	assert.Equal(t, "ada", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRawNamedParams(t *testing.T) {
	m, mock := openMapper(t, "postgres", nil)
	mock.ExpectQuery(exact("SELECT name FROM accounts WHERE id = $1 AND name <> ':ghost' AND age > $2")).
		WithArgs(int64(7), int64(18)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("ada"))

	r, err := QueryFirst(context.Background(), m,
		"SELECT name FROM accounts WHERE id = :id AND name <> ':ghost' AND age > :min_age",
		value.ByName(
			value.NamedValue{Name: "id", Value: value.Bigint(7)},
			value.NamedValue{Name: "min_age", Value: value.Bigint(18)},
		))
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryRawUnboundNameFails(t *testing.T) {
	m, _ := openMapper(t, "postgres", nil)

	_, err := QueryRaw(context.Background(), m,
		"SELECT name FROM accounts WHERE id = :id",
		value.ByName(value.NamedValue{Name: "account", Value: value.Bigint(7)}))
	assert.True(t, IsInvalidArgument(err))
}

func TestExecRawPositionalParams(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectExec(exact("UPDATE accounts SET age = ? WHERE id = ?")).
		WithArgs(int64(37), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := ExecRaw(context.Background(), m,
		"UPDATE accounts SET age = ? WHERE id = ?",
		value.Positional(value.Bigint(37), value.Bigint(7)))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionCommit(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectBegin()
	mock.ExpectExec(exact("INSERT INTO `accounts` (`name`, `age`) VALUES (?, ?)")).
		WithArgs("ada", int64(36)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := m.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, Save[account](context.Background(), tx, &account{Name: "ada", Age: 36}))
	require.NoError(t, tx.Commit())

	assert.ErrorIs(t, tx.Commit(), ErrTxDone)
	assert.ErrorIs(t, tx.Rollback(), ErrTxDone)
	_, err = Count[account](context.Background(), tx, wrapper.New())
	assert.ErrorIs(t, err, ErrTxDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectBegin()
	mock.ExpectExec(exact("INSERT INTO `accounts` (`name`, `age`) VALUES (?, ?)")).
		WithArgs("ada", int64(36)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := m.WithinTx(context.Background(), func(tx *Tx) error {
		if err := Save[account](context.Background(), tx, &account{Name: "ada", Age: 36}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinTxCommitsOnSuccess(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectBegin()
	mock.ExpectExec(exact("DELETE FROM `accounts` WHERE `id` = ?")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.WithinTx(context.Background(), func(tx *Tx) error {
		_, err := RemoveByID[account](context.Background(), tx, 1)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedSelectSkipsSecondQuery(t *testing.T) {
	m, mock := openMapper(t, "mysql", func(c *Config) {
		c.Cache.Enabled = true
		c.Cache.TTL = Duration(time.Minute)
	})
	mock.ExpectQuery("SELECT (.+) FROM `accounts`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "age"}).
			AddRow(int64(1), "ada", int64(36)))

	for i := 0; i < 2; i++ {
		list, err := List[account](context.Background(), m, wrapper.New().Eq("id", 1))
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "ada", list[0].Name)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheInvalidatedByMutation(t *testing.T) {
	m, mock := openMapper(t, "mysql", func(c *Config) {
		c.Cache.Enabled = true
		c.Cache.TTL = Duration(time.Minute)
	})
	rows := func(name string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "name", "age"}).AddRow(int64(1), name, int64(36))
	}
	mock.ExpectQuery("SELECT (.+) FROM `accounts`").WillReturnRows(rows("ada"))
	mock.ExpectExec("UPDATE `accounts`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT (.+) FROM `accounts`").WillReturnRows(rows("eda"))

	ctx := context.Background()
	w := func() *wrapper.Wrapper { return wrapper.New().Eq("id", 1) }

	list, err := List[account](ctx, m, w())
	require.NoError(t, err)
	assert.Equal(t, "ada", list[0].Name)

	_, err = Update[account](ctx, m, wrapper.New().Set("name", "eda").Eq("id", 1))
	require.NoError(t, err)

	list, err = List[account](ctx, m, w())
	require.NoError(t, err)
	assert.Equal(t, "eda", list[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClosedMapperRefusesWork(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	mock.ExpectClose()
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, err := Count[account](context.Background(), m, wrapper.New())
	assert.ErrorIs(t, err, ErrClosed)
	_, err = m.Begin(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, m.Ping(context.Background()), ErrClosed)
}

func TestRepositoryDelegates(t *testing.T) {
	m, mock := openMapper(t, "mysql", nil)
	repo := NewRepository[account](m)

	mock.ExpectExec(exact("INSERT INTO `accounts` (`name`, `age`) VALUES (?, ?)")).
		WithArgs("ada", int64(36)).
		WillReturnResult(sqlmock.NewResult(3, 1))
	a := &account{Name: "ada", Age: 36}
	require.NoError(t, repo.Save(context.Background(), a))
	assert.Equal(t, int64(3), a.ID)

	mock.ExpectBegin()
	mock.ExpectExec(exact("DELETE FROM `accounts` WHERE `id` = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	err := m.WithinTx(context.Background(), func(tx *Tx) error {
		_, err := repo.WithTx(tx).RemoveByID(context.Background(), 3)
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
platform: mysql
host: db.internal
port: 3307
username: app
password: secret
database: appdb
pool:
  max_open: 20
  conn_max_lifetime: 30m
log_level: debug
slow_query_threshold: 250ms
security_policy: deny
batch_size: 100
cache:
  enabled: true
  ttl: 1m
`))
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Platform)
	assert.Equal(t, 20, cfg.Pool.MaxOpen)
	assert.Equal(t, 30*time.Minute, cfg.Pool.ConnMaxLifetime.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.SlowQueryThreshold.Std())
	assert.Equal(t, "deny", cfg.SecurityPolicy)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.True(t, cfg.Cache.Enabled)

	dsn, err := cfg.dsn(dialect.MySQL)
	require.NoError(t, err)
	assert.Equal(t, "app:secret@tcp(db.internal:3307)/appdb?parseTime=true", dsn)
}

func TestConfigValidation(t *testing.T) {
	cfg := &Config{Platform: "mongodb"}
	_, _, err := cfg.validate()
	assert.True(t, IsConfigError(err))

	cfg = &Config{Platform: "mysql", SecurityPolicy: "paranoid"}
	_, _, err = cfg.validate()
	assert.True(t, IsConfigError(err))

	cfg = &Config{Platform: "mysql"}
	_, policy, err := cfg.validate()
	require.NoError(t, err)
	assert.Equal(t, "warn", policy.String())
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
}
