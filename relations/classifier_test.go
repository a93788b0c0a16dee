package relations

import (
	"testing"

	"github.com/ridoystarlord/modelforge/loader"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, doc string) *schema.Schema {
	t.Helper()
	s, err := loader.LoadSchema([]byte(doc))
	require.NoError(t, err)
	return s
}

func mustTable(t *testing.T, s *schema.Schema, name string) *schema.Table {
	t.Helper()
	table, ok := s.Table(name)
	require.True(t, ok, "table %s", name)
	return table
}

const parents = `
  - name: posts
    columns:
      - {name: id, type: integer, primary: true}
  - name: tags
    columns:
      - {name: id, type: integer, primary: true}
  - name: authors
    columns:
      - {name: id, type: integer, primary: true}
`

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		table string
		want  TableKind
	}{
		{
			name: "two foreign keys covering the primary key",
			table: `
  - name: post_tags
    columns:
      - {name: post_id, type: integer, primary: true, foreign_key: {references_table: posts, references_column: id}}
      - {name: tag_id, type: integer, primary: true, foreign_key: {references_table: tags, references_column: id}}
`,
			want: AssociationTable,
		},
		{
			name: "surrogate primary key",
			table: `
  - name: post_tags
    columns:
      - {name: id, type: integer, primary: true}
      - {name: post_id, type: integer, foreign_key: {references_table: posts, references_column: id}}
      - {name: tag_id, type: integer, foreign_key: {references_table: tags, references_column: id}}
`,
			want: EntityTable,
		},
		{
			name: "extra primary key column",
			table: `
  - name: post_tags
    columns:
      - {name: post_id, type: integer, primary: true, foreign_key: {references_table: posts, references_column: id}}
      - {name: tag_id, type: integer, primary: true, foreign_key: {references_table: tags, references_column: id}}
      - {name: position, type: integer, primary: true}
`,
			want: EntityTable,
		},
		{
			name: "non-key payload columns are allowed",
			table: `
  - name: post_tags
    columns:
      - {name: post_id, type: integer, primary: true, foreign_key: {references_table: posts, references_column: id}}
      - {name: tag_id, type: integer, primary: true, foreign_key: {references_table: tags, references_column: id}}
      - {name: created_at, type: timestamp}
`,
			want: AssociationTable,
		},
		{
			name: "three foreign keys",
			table: `
  - name: post_tags
    columns:
      - {name: post_id, type: integer, primary: true, foreign_key: {references_table: posts, references_column: id}}
      - {name: tag_id, type: integer, primary: true, foreign_key: {references_table: tags, references_column: id}}
      - {name: author_id, type: integer, primary: true, foreign_key: {references_table: authors, references_column: id}}
`,
			want: EntityTable,
		},
		{
			name: "single foreign key",
			table: `
  - name: post_tags
    columns:
      - {name: post_id, type: integer, primary: true, foreign_key: {references_table: posts, references_column: id}}
`,
			want: EntityTable,
		},
		{
			name: "no primary key",
			table: `
  - name: post_tags
    columns:
      - {name: post_id, type: integer, foreign_key: {references_table: posts, references_column: id}}
      - {name: tag_id, type: integer, foreign_key: {references_table: tags, references_column: id}}
`,
			want: EntityTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustLoad(t, "tables:"+parents+tt.table)
			assert.Equal(t, tt.want, Classify(mustTable(t, s, "post_tags")))
		})
	}
}

func TestTableKindString(t *testing.T) {
	assert.Equal(t, "entity", EntityTable.String())
	assert.Equal(t, "association", AssociationTable.String())
}

func TestMultiplicityOf(t *testing.T) {
	s := mustLoad(t, `
tables:
  - name: users
    columns:
      - {name: id, type: integer, primary: true}
      - {name: tenant, type: integer, primary: true}
  - name: posts
    columns:
      - {name: id, type: integer, primary: true}
      - {name: user_id, type: integer, foreign_key: {references_table: users, references_column: id}}
  - name: profiles
    columns:
      - {name: user_id, type: integer, primary: true, foreign_key: {references_table: users, references_column: id}}
  - name: memberships
    columns:
      - {name: id, type: integer, primary: true}
      - {name: user_id, type: integer}
      - {name: user_tenant, type: integer}
    foreign_keys:
      - columns: [user_id, user_tenant]
        references_table: users
        references_columns: [id, tenant]
`)

	posts := mustTable(t, s, "posts")
	assert.Equal(t, schema.ManyToOne, MultiplicityOf(posts, posts.ForeignKeys()[0]))

	profiles := mustTable(t, s, "profiles")
	assert.Equal(t, schema.OneToMany, MultiplicityOf(profiles, profiles.ForeignKeys()[0]))

	memberships := mustTable(t, s, "memberships")
	assert.Equal(t, schema.OneToMany, MultiplicityOf(memberships, memberships.ForeignKeys()[0]))
}
