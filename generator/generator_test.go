package generator

import (
	"testing"

	"github.com/ridoystarlord/modelforge/loader"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const blogSchema = `
tables:
  - name: users
    columns:
      - {name: id, type: integer, primary: true}
      - {name: name, type: varchar(255), not_null: true}
  - name: posts
    columns:
      - {name: id, type: integer, primary: true}
      - {name: title, type: text}
      - {name: published_at, type: timestamp}
      - {name: user_id, type: integer, foreign_key: {references_table: users, references_column: id}}
  - name: tags
    columns:
      - {name: id, type: integer, primary: true}
  - name: post_tags
    columns:
      - {name: post_id, type: integer, primary: true, foreign_key: {references_table: posts, references_column: id}}
      - {name: tag_id, type: integer, primary: true, foreign_key: {references_table: tags, references_column: id}}
`

func mustLoad(t *testing.T, doc string) *schema.Schema {
	t.Helper()
	s, err := loader.LoadSchema([]byte(doc))
	require.NoError(t, err)
	return s
}

func TestFor(t *testing.T) {
	e, err := For("", Options{})
	require.NoError(t, err)
	assert.Equal(t, "sqlalchemy", e.Name())

	e, err = For("GoStruct", Options{Package: "entities"})
	require.NoError(t, err)
	assert.Equal(t, GoStruct{Package: "entities"}, e)

	e, err = For("gostruct", Options{})
	require.NoError(t, err)
	assert.Equal(t, GoStruct{Package: "models"}, e)

	_, err = For("django", Options{})
	assert.ErrorContains(t, err, "unsupported format: django")
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []string{"gostruct", "sqlalchemy"}, Formats())
}

func TestGenerate(t *testing.T) {
	s := mustLoad(t, blogSchema)

	out, res, err := Generate(s, "sqlalchemy", Options{})
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 3, res.Count())
	assert.Contains(t, out, "class Posts(Base):")

	_, _, err = Generate(s, "jpa", Options{})
	assert.Error(t, err)
}
