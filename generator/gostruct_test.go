package generator

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoStructBlog(t *testing.T) {
	s := mustLoad(t, blogSchema)

	out, err := GoStruct{Package: "entities"}.Emit(s, nil)
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "models.go", out, parser.AllErrors)
	require.NoError(t, err, out)

	assert.Contains(t, out, "// Code generated by modelforge. DO NOT EDIT.")
	assert.Contains(t, out, "package entities")
	assert.Contains(t, out, `import "time"`)

	assert.Regexp(t, `type Users struct \{\n\tID\s+int64\s+`+"`"+`db:"id" json:"id"`+"`", out)
	assert.Regexp(t, `\tName\s+string\s+`+"`"+`db:"name" json:"name"`+"`", out)
	assert.Regexp(t, `\tTitle\s+\*string\s+`, out)
	assert.Regexp(t, `\tPublishedAt\s+\*time\.Time\s+`, out)
	assert.Regexp(t, `\tUserID\s+\*int64\s+`+"`"+`db:"user_id" json:"user_id"`+"`"+`\s+// references users\.id`, out)
	assert.Regexp(t, `\tUsers\s+\*Users\s+`+"`"+`db:"-" json:"users,omitempty"`+"`"+`\s+// many-to-one`, out)
	assert.Regexp(t, `\tTags\s+\[\]Tags\s+`+"`"+`db:"-" json:"tags,omitempty"`+"`"+`\s+// many-to-many via post_tags, back-populates posts`, out)
	assert.Contains(t, out, "// PostTags represents the post_tags association table")
	assert.Contains(t, out, "func (PostTags) TableName() string {\n\treturn \"post_tags\"\n}")
}

func TestGoStructWithoutTimestamps(t *testing.T) {
	s := mustLoad(t, `
tables:
  - name: tags
    columns:
      - {name: id, type: integer, primary: true}
      - {name: label, type: text}
`)

	out, err := GoStruct{}.Emit(s, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "package models")
	assert.NotContains(t, out, `import "time"`)
}

func TestGoFieldName(t *testing.T) {
	assert.Equal(t, "ID", goFieldName("id"))
	assert.Equal(t, "UserID", goFieldName("user_id"))
	assert.Equal(t, "CreatedAt", goFieldName("created_at"))
	assert.Equal(t, "X2Fa", goFieldName("2fa"))
	assert.Equal(t, "Idea", goFieldName("idea"))
	assert.Equal(t, "ÜberUserID", goFieldName("über_user_id"))
}

func TestGoStructNonASCIINames(t *testing.T) {
	s := mustLoad(t, `
tables:
  - name: über_user
    columns:
      - {name: id, type: integer, primary: true}
      - {name: straße, type: text}
`)

	out, err := GoStruct{}.Emit(s, nil)
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "models.go", out, parser.AllErrors)
	require.NoError(t, err, out)
	assert.Contains(t, out, "type ÜberUser struct {")
	assert.Regexp(t, `\tStraße\s+\*string\s+`, out)
	assert.NotContains(t, out, "XÜber")
}

func TestUniqueField(t *testing.T) {
	used := make(map[string]int)
	assert.Equal(t, "Tags", uniqueField(used, "Tags"))
	assert.Equal(t, "Tags2", uniqueField(used, "Tags"))
	assert.Equal(t, "Posts", uniqueField(used, "Posts"))
}
