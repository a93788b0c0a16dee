package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/ridoystarlord/modelforge/relations"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/ridoystarlord/modelforge/utils"
)

// GoStruct emits one Go struct per table with db/json tags. Relations become
// pointer fields (single parent row) or slice fields (many-to-many).
type GoStruct struct {
	Package string
}

func (GoStruct) Name() string { return "gostruct" }

type structFile struct {
	PackageName string
	NeedsTime   bool
	Models      []structModel
}

type structModel struct {
	Name        string
	TableName   string
	Association bool
	Fields      []structField
	Relations   []structField
}

type structField struct {
	Name    string
	Type    string
	Tags    string
	Comment string
}

const structTemplate = `// Code generated by modelforge. DO NOT EDIT.

package {{.PackageName}}
{{if .NeedsTime}}
import "time"
{{end}}
{{range .Models}}
// {{.Name}} represents the {{.TableName}} {{if .Association}}association {{end}}table
type {{.Name}} struct {
{{range .Fields}}	{{.Name}} {{.Type}} {{.Tags}}{{if .Comment}} // {{.Comment}}{{end}}
{{end}}{{if .Relations}}
{{range .Relations}}	{{.Name}} {{.Type}} {{.Tags}}{{if .Comment}} // {{.Comment}}{{end}}
{{end}}{{end}}}

// TableName returns the table name for {{.Name}}
func ({{.Name}}) TableName() string {
	return "{{.TableName}}"
}
{{end}}`

var structTmpl = template.Must(template.New("models").Parse(structTemplate))

func (e GoStruct) Emit(s *schema.Schema, r *relations.Resolution) (string, error) {
	file := structFile{PackageName: e.Package}
	if file.PackageName == "" {
		file.PackageName = "models"
	}

	if s != nil {
		if r == nil {
			r = relations.Resolve(s)
		}
		for _, t := range s.Tables() {
			model, needsTime := buildStructModel(t, r)
			file.NeedsTime = file.NeedsTime || needsTime
			file.Models = append(file.Models, model)
		}
	}

	var buf bytes.Buffer
	if err := structTmpl.Execute(&buf, file); err != nil {
		return "", fmt.Errorf("executing struct template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("formatting generated structs: %w", err)
	}
	return string(formatted), nil
}

func buildStructModel(t *schema.Table, r *relations.Resolution) (structModel, bool) {
	model := structModel{
		Name:        utils.ToClassName(t.Name()),
		TableName:   t.Name(),
		Association: r.Kind(t.Name()) == relations.AssociationTable,
	}

	used := make(map[string]int)
	needsTime := false

	for _, col := range t.Columns() {
		goType := goTypeFor(col.Type())
		if goType == "time.Time" {
			needsTime = true
		}
		if col.Nullable() && !col.PrimaryKey() {
			goType = "*" + goType
		}

		var comment []string
		if col.PrimaryKey() {
			comment = append(comment, "primary key")
		}
		if col.ForeignKeyTarget() != "" {
			comment = append(comment, "references "+col.ForeignKeyTarget())
		}

		model.Fields = append(model.Fields, structField{
			Name:    uniqueField(used, goFieldName(col.Name())),
			Type:    goType,
			Tags:    fmt.Sprintf("`db:\"%s\" json:\"%s\"`", col.Name(), col.Name()),
			Comment: strings.Join(comment, ", "),
		})
	}

	for _, rel := range r.For(t.Name()) {
		goType := "*" + rel.TargetClass
		if rel.Type == schema.ManyToMany {
			goType = "[]" + rel.TargetClass
		}

		comment := string(rel.Type)
		if rel.Secondary != "" {
			comment += " via " + rel.Secondary
		}
		if rel.BackPopulates != "" {
			comment += ", back-populates " + rel.BackPopulates
		}

		model.Relations = append(model.Relations, structField{
			Name:    uniqueField(used, goFieldName(rel.Name)),
			Type:    goType,
			Tags:    fmt.Sprintf("`db:\"-\" json:\"%s,omitempty\"`", rel.Name),
			Comment: comment,
		})
	}

	return model, needsTime
}

func goTypeFor(t schema.LogicalType) string {
	switch t {
	case schema.Integer:
		return "int64"
	case schema.Float:
		return "float64"
	case schema.Timestamp:
		return "time.Time"
	default:
		return "string"
	}
}

// goFieldName is ToClassName with Go's ID initialism and a guard for names that do
// not start with a letter.
func goFieldName(raw string) string {
	name := utils.ToClassName(raw)
	if name == "Id" {
		return "ID"
	}
	if strings.HasSuffix(name, "Id") {
		name = strings.TrimSuffix(name, "Id") + "ID"
	}
	if first, _ := utf8.DecodeRuneInString(name); !unicode.IsLetter(first) {
		name = "X" + name
	}
	return name
}

// uniqueField suffixes repeated field names so ambiguous relations still compile.
func uniqueField(used map[string]int, name string) string {
	used[name]++
	if n := used[name]; n > 1 {
		return fmt.Sprintf("%s%d", name, n)
	}
	return name
}
