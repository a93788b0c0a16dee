package introspect

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ridoystarlord/modelforge/database"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sqliteBlog = `
CREATE TABLE users (
	id INTEGER PRIMARY KEY,
	name VARCHAR(255) NOT NULL
);
CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	title TEXT,
	published_at TIMESTAMP,
	user_id INTEGER REFERENCES users(id)
);
CREATE TABLE tags (
	id INTEGER PRIMARY KEY,
	label TEXT NOT NULL
);
CREATE TABLE post_tags (
	post_id INTEGER NOT NULL REFERENCES posts(id),
	tag_id INTEGER NOT NULL REFERENCES tags,
	PRIMARY KEY (tag_id, post_id)
);
CREATE TABLE regions (
	country TEXT NOT NULL,
	code TEXT NOT NULL,
	PRIMARY KEY (country, code)
);
CREATE TABLE offices (
	id INTEGER PRIMARY KEY,
	country TEXT,
	region_code TEXT,
	FOREIGN KEY (country, region_code) REFERENCES regions(country, code)
);
`

func openBlog(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, sqliteBlog)
	require.NoError(t, err)
	return db
}

func TestSQLiteListTables(t *testing.T) {
	p := NewSQLite(openBlog(t))

	tables, err := p.ListTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"offices", "post_tags", "posts", "regions", "tags", "users"}, tables)
}

func TestSQLiteColumnsAndPrimaryKey(t *testing.T) {
	p := NewSQLite(openBlog(t))
	ctx := context.Background()

	cols, err := p.Columns(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []RawColumn{
		{ColumnName: "id", DataType: "INTEGER", IsNullable: true, IsPrimaryKey: true},
		{ColumnName: "name", DataType: "VARCHAR(255)", IsNullable: false},
	}, cols)

	// primary key follows key order, not column order
	pk, err := p.PrimaryKey(ctx, "post_tags")
	require.NoError(t, err)
	assert.Equal(t, []string{"tag_id", "post_id"}, pk)
}

func TestSQLiteForeignKeys(t *testing.T) {
	p := NewSQLite(openBlog(t))
	ctx := context.Background()

	fks, err := p.ForeignKeys(ctx, "post_tags")
	require.NoError(t, err)
	require.Len(t, fks, 2)
	assert.Equal(t, []string{"post_id"}, fks[0].Columns)
	assert.Equal(t, "posts", fks[0].ReferencesTable)
	assert.Equal(t, []string{"id"}, fks[0].ReferencesColumns)
	// REFERENCES tags without a column list resolves to the parent's primary key
	assert.Equal(t, []string{"tag_id"}, fks[1].Columns)
	assert.Equal(t, "tags", fks[1].ReferencesTable)
	assert.Equal(t, []string{"id"}, fks[1].ReferencesColumns)

	fks, err = p.ForeignKeys(ctx, "offices")
	require.NoError(t, err)
	require.Len(t, fks, 1)
	assert.Equal(t, []string{"country", "region_code"}, fks[0].Columns)
	assert.Equal(t, []string{"country", "code"}, fks[0].ReferencesColumns)

	fks, err = p.ForeignKeys(ctx, "users")
	require.NoError(t, err)
	assert.Empty(t, fks)
}

func TestSnapshotSQLite(t *testing.T) {
	s, err := Snapshot(context.Background(), NewSQLite(openBlog(t)))
	require.NoError(t, err)
	assert.Equal(t, 6, s.Len())

	users, ok := s.Table("users")
	require.True(t, ok)
	id, ok := users.Column("id")
	require.True(t, ok)
	assert.True(t, id.PrimaryKey())
	assert.True(t, id.Nullable(), "INTEGER PRIMARY KEY has no NOT NULL in table_info")
	assert.Equal(t, schema.Integer, id.Type())

	posts, ok := s.Table("posts")
	require.True(t, ok)
	userID, ok := posts.Column("user_id")
	require.True(t, ok)
	assert.Equal(t, "users.id", userID.ForeignKeyTarget())
	assert.True(t, userID.Nullable())
	publishedAt, _ := posts.Column("published_at")
	assert.Equal(t, schema.Timestamp, publishedAt.Type())

	offices, ok := s.Table("offices")
	require.True(t, ok)
	regionCode, _ := offices.Column("region_code")
	assert.Equal(t, "regions.code", regionCode.ForeignKeyTarget())
	require.Len(t, offices.ForeignKeys(), 1)
	assert.Equal(t, "regions", offices.ForeignKeys()[0].ReferredTable())
}
