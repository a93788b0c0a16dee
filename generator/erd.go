package generator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/modelforge/relations"
	"github.com/ridoystarlord/modelforge/schema"
)

// edge is one line of an ER diagram. Many-to-many pairs collapse into a single edge
// labelled with their association table.
type edge struct {
	from, to string
	kind     schema.RelationType
	label    string
}

func diagramEdges(s *schema.Schema, r *relations.Resolution) []edge {
	var edges []edge
	seenPairs := make(map[string]bool)

	for _, t := range s.Tables() {
		for _, rel := range r.For(t.Name()) {
			switch rel.Type {
			case schema.ManyToMany:
				key := rel.Secondary + "|" + rel.Name + "|" + rel.BackPopulates
				mirror := rel.Secondary + "|" + rel.BackPopulates + "|" + rel.Name
				if seenPairs[mirror] {
					continue
				}
				seenPairs[key] = true
				edges = append(edges, edge{from: rel.Table, to: rel.TargetTable, kind: rel.Type, label: rel.Secondary})
			default:
				edges = append(edges, edge{from: rel.TargetTable, to: rel.Table, kind: rel.Type, label: rel.Name})
			}
		}
	}
	return edges
}

// shape is the crow's-foot connector; Mermaid and PlantUML share the notation.
func (e edge) shape() string {
	switch e.kind {
	case schema.ManyToMany:
		return "}o--o{"
	case schema.OneToMany:
		return "||--o|"
	default:
		return "||--o{"
	}
}

func columnMarkers(col schema.Column) []string {
	var markers []string
	if col.PrimaryKey() {
		markers = append(markers, "PK")
	}
	if col.ForeignKeyTarget() != "" {
		markers = append(markers, "FK")
	}
	return markers
}

// RenderMermaid renders the schema as a Mermaid erDiagram wrapped in a markdown code fence.
func RenderMermaid(s *schema.Schema, r *relations.Resolution) string {
	var content strings.Builder

	content.WriteString("# Database Schema ERD\n\n")
	content.WriteString("```mermaid\nerDiagram\n")

	if s == nil {
		content.WriteString("```\n")
		return content.String()
	}
	if r == nil {
		r = relations.Resolve(s)
	}

	for _, t := range s.Tables() {
		content.WriteString(fmt.Sprintf("    %s {\n", t.Name()))
		for _, col := range t.Columns() {
			line := fmt.Sprintf("        %s %s", strings.ToUpper(col.Type().String()), col.Name())
			if markers := columnMarkers(col); len(markers) > 0 {
				line += " " + strings.Join(markers, ",")
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("    }\n")
	}

	for _, e := range diagramEdges(s, r) {
		content.WriteString(fmt.Sprintf("    %s %s %s : %s\n", e.from, e.shape(), e.to, e.label))
	}

	content.WriteString("```\n")
	return content.String()
}

// RenderPlantUML renders the schema as a PlantUML entity diagram.
func RenderPlantUML(s *schema.Schema, r *relations.Resolution) string {
	var content strings.Builder

	content.WriteString("@startuml\n")
	content.WriteString("!theme plain\n")
	content.WriteString("skinparam linetype ortho\n\n")

	if s == nil {
		content.WriteString("@enduml\n")
		return content.String()
	}
	if r == nil {
		r = relations.Resolve(s)
	}

	for _, t := range s.Tables() {
		content.WriteString(fmt.Sprintf("entity \"%s\" {\n", t.Name()))
		for _, col := range t.Columns() {
			line := fmt.Sprintf("  %s : %s", col.Name(), strings.ToUpper(col.Type().String()))
			for _, m := range columnMarkers(col) {
				line += fmt.Sprintf(" <<%s>>", m)
			}
			if !col.Nullable() {
				line += " <<NN>>"
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("}\n\n")
	}

	for _, e := range diagramEdges(s, r) {
		content.WriteString(fmt.Sprintf("\"%s\" %s \"%s\" : \"%s\"\n", e.from, e.shape(), e.to, e.label))
	}

	content.WriteString("@enduml\n")
	return content.String()
}
