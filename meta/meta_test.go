package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable(t *testing.T) {
	for _, tc := range []struct {
		in     string
		schema string
		name   string
		alias  string
	}{
		{"users", "", "users", ""},
		{"app.users", "app", "users", ""},
		{"users AS u", "", "users", "u"},
		{"app.users as u", "app", "users", "u"},
		{"users u", "", "users", "u"},
	} {
		t.Run(tc.in, func(t *testing.T) {
			got := ParseTable(tc.in)
			assert.Equal(t, tc.schema, got.Schema)
			assert.Equal(t, tc.name, got.Name)
			assert.Equal(t, tc.alias, got.Alias)
		})
	}
}

func TestTableNameString(t *testing.T) {
	assert.Equal(t, "app.users AS u", TableName{Name: "users", Schema: "app", Alias: "u"}.String())
	assert.Equal(t, "users", TableName{Name: "users"}.String())
}

func TestSniffTable(t *testing.T) {
	for _, tc := range []struct {
		sql  string
		want string
		ok   bool
	}{
		{"INSERT INTO users (a) VALUES (1)", "users", true},
		{"insert ignore into `users` values (1)", "users", true},
		{"UPDATE app.users SET a = 1", "users", true},
		{"DELETE FROM users WHERE id = 1", "users", true},
		{"SELECT * FROM users WHERE id = 1", "users", true},
		{"select a, b\nfrom orders o join users u on u.id = o.uid", "orders", true},
		{"CREATE TABLE IF NOT EXISTS users (id int)", "users", true},
		{"DROP TABLE users", "users", true},
		{"TRUNCATE TABLE users", "users", true},
		{"SELECT 1", "", false},
	} {
		t.Run(tc.sql, func(t *testing.T) {
			got, ok := SniffTable(tc.sql)
			require.Equal(t, tc.ok, ok)
			if ok {
				assert.Equal(t, tc.want, got.Name)
			}
		})
	}
}

func TestFillAppliesTo(t *testing.T) {
	assert.True(t, Fill{Mode: FillInsert}.AppliesTo(true))
	assert.False(t, Fill{Mode: FillInsert}.AppliesTo(false))
	assert.True(t, Fill{Mode: FillUpdate}.AppliesTo(false))
	assert.True(t, Fill{Mode: FillAlways}.AppliesTo(true))
	assert.True(t, Fill{Mode: FillAlways}.AppliesTo(false))
}

func TestFieldHelpers(t *testing.T) {
	fields := []FieldName{
		IDField("id", IDAssignID),
		Field("name"),
		{Name: "derived", Exist: false, Select: true},
		{Name: "secret", Exist: true, Select: false},
	}
	id, ok := IdentifierField(fields)
	require.True(t, ok)
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, IDAssignID, *id.ID)

	assert.Equal(t, []string{"id", "name"}, SelectColumns(fields))
}
