package generator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/modelforge/relations"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/ridoystarlord/modelforge/utils"
)

const sqlalchemyPreamble = `from sqlalchemy import Column, Integer, String, Float, DateTime, ForeignKey, Table
from sqlalchemy.orm import relationship
from sqlalchemy.ext.declarative import declarative_base

Base = declarative_base()

`

// SQLAlchemy emits declarative SQLAlchemy models: a Table() construct for every
// association table and a class for every entity table.
type SQLAlchemy struct{}

func (SQLAlchemy) Name() string { return "sqlalchemy" }

func (e SQLAlchemy) Emit(s *schema.Schema, r *relations.Resolution) (string, error) {
	var out strings.Builder
	out.WriteString(sqlalchemyPreamble)

	if s == nil {
		return out.String(), nil
	}
	if r == nil {
		r = relations.Resolve(s)
	}

	for _, t := range s.Tables() {
		if r.Kind(t.Name()) == relations.AssociationTable {
			writeAssociationTable(&out, t)
		} else {
			writeModelClass(&out, t, r.For(t.Name()))
		}
	}

	return out.String(), nil
}

func writeAssociationTable(out *strings.Builder, t *schema.Table) {
	fmt.Fprintf(out, "%s = Table(\n", t.Name())
	fmt.Fprintf(out, "    '%s', Base.metadata,\n", t.Name())
	for _, col := range t.Columns() {
		fmt.Fprintf(out, "    Column('%s', %s%s),\n", col.Name(), sqlalchemyType(col.Type()), foreignKeyClause(col))
	}
	out.WriteString(")\n\n")
}

func writeModelClass(out *strings.Builder, t *schema.Table, rels []schema.Relation) {
	fmt.Fprintf(out, "class %s(Base):\n", utils.ToClassName(t.Name()))
	fmt.Fprintf(out, "    __tablename__ = '%s'\n\n", t.Name())

	for _, col := range t.Columns() {
		var opts strings.Builder
		if !col.Nullable() {
			opts.WriteString(", nullable=False")
		}
		if col.PrimaryKey() {
			opts.WriteString(", primary_key=True")
		}
		opts.WriteString(foreignKeyClause(col))
		fmt.Fprintf(out, "    %s = Column(%s%s)\n", col.Name(), sqlalchemyType(col.Type()), opts.String())
	}

	// the blank line after the columns is written even when there are no relations
	out.WriteString("\n")
	for _, rel := range rels {
		fmt.Fprintf(out, "    %s\n", sqlalchemyRelationship(rel))
	}
	out.WriteString("\n\n\n")
}

func sqlalchemyRelationship(rel schema.Relation) string {
	args := []string{fmt.Sprintf("'%s'", rel.TargetClass)}
	if rel.Secondary != "" {
		args = append(args, fmt.Sprintf("secondary='%s'", rel.Secondary))
	}
	if rel.BackPopulates != "" {
		args = append(args, fmt.Sprintf("back_populates='%s'", rel.BackPopulates))
	}
	return fmt.Sprintf("%s = relationship(%s)", rel.Name, strings.Join(args, ", "))
}

func foreignKeyClause(col schema.Column) string {
	if col.ForeignKeyTarget() == "" {
		return ""
	}
	return fmt.Sprintf(", ForeignKey('%s')", col.ForeignKeyTarget())
}

func sqlalchemyType(t schema.LogicalType) string {
	switch t {
	case schema.Integer:
		return "Integer"
	case schema.Float:
		return "Float"
	case schema.Timestamp:
		return "DateTime"
	default:
		return "String"
	}
}
