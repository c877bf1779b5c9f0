package driver

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/value"
)

func openMock(t *testing.T, p dialect.Platform) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	d, err := dialect.Lookup(p)
	require.NoError(t, err)
	return OpenDB(d, db), mock
}

func TestQueryMaterializesTypedColumns(t *testing.T) {
	drv, mock := openMock(t, dialect.MySQL)
	cols := []*sqlmock.Column{
		sqlmock.NewColumn("id").OfType("BIGINT", int64(0)),
		sqlmock.NewColumn("name").OfType("VARCHAR", ""),
		sqlmock.NewColumn("price").OfType("DECIMAL", ""),
		sqlmock.NewColumn("created").OfType("DATETIME", time.Time{}),
	}
	created := time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)
	rows := sqlmock.NewRowsWithColumnDefinition(cols...).
		AddRow(int64(1), "ada", "10.25", created).
		AddRow(int64(2), nil, nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(rows)

	rs, err := drv.Query(context.Background(), "SELECT id, name, price, created FROM users")
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())

	r, _ := rs.At(0)
	id, err := value.Get[int64](r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	price, err := r.Value("price")
	require.NoError(t, err)
	assert.Equal(t, value.KindDecimal, price.Kind())
	assert.Equal(t, "10.25", price.String())

	ts, err := r.Value("created")
	require.NoError(t, err)
	assert.Equal(t, value.KindDateTime, ts.Kind())

	r, _ = rs.At(1)
	name, err := r.Value("name")
	require.NoError(t, err)
	assert.True(t, name.IsNull())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecLastInsertID(t *testing.T) {
	drv, mock := openMock(t, dialect.MySQL)
	mock.ExpectExec("INSERT INTO users").
		WithArgs("ada").
		WillReturnResult(sqlmock.NewResult(7, 1))

	res, err := drv.Exec(context.Background(), "INSERT INTO users (name) VALUES (?)", "ada")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Affected)
	assert.True(t, res.HasLastID)
	assert.Equal(t, int64(7), res.LastID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecNoLastInsertIDOnPostgres(t *testing.T) {
	drv, mock := openMock(t, dialect.Postgres)
	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 3))

	res, err := drv.Exec(context.Background(), `UPDATE users SET active = $1`, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Affected)
	assert.False(t, res.HasLastID)
}

func TestTxCommitAndRollback(t *testing.T) {
	drv, mock := openMock(t, dialect.MySQL)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := drv.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	_, err = tx.Exec(context.Background(), "DELETE FROM users WHERE id = ?", 1)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	mock.ExpectBegin()
	mock.ExpectRollback()
	tx, err = drv.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalizeBackendErrors(t *testing.T) {
	drv, mock := openMock(t, dialect.MySQL)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})

	_, err := drv.Exec(context.Background(), "INSERT INTO users (name) VALUES (?)", "ada")
	require.Error(t, err)
	assert.True(t, IsDatabaseError(err))
	assert.True(t, IsUniqueViolation(err))

	pgErr := &pq.Error{Code: "23505", Constraint: "users_email_key"}
	norm := normalize(pgErr)
	var de *DatabaseError
	require.ErrorAs(t, norm, &de)
	assert.Equal(t, "23505", de.Code)
	assert.Equal(t, "users_email_key", de.Constraint)
	assert.True(t, IsUniqueViolation(norm))
}

func TestSentinelErrorsPassThrough(t *testing.T) {
	assert.ErrorIs(t, normalize(sql.ErrNoRows), sql.ErrNoRows)
	assert.ErrorIs(t, normalize(context.Canceled), context.Canceled)
	assert.NoError(t, normalize(nil))
}
