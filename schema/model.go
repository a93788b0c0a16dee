package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedSchema is returned when introspected metadata is internally inconsistent,
// e.g. a foreign key naming a column its table does not declare.
var ErrMalformedSchema = errors.New("malformed schema")

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedSchema, fmt.Sprintf(format, args...))
}

// Column describes a single table column as read from the schema source.
type Column struct {
	name       string
	rawType    string
	logical    LogicalType
	nullable   bool
	primary    bool
	foreignKey string // "table.column", empty when the column references nothing
}

// ColumnSpec carries the raw values a Column is built from.
type ColumnSpec struct {
	Name       string
	Type       string
	Nullable   bool
	Primary    bool
	ForeignKey string
}

// NewColumn builds a Column, resolving its logical type from the raw type string.
func NewColumn(spec ColumnSpec) (Column, error) {
	if strings.TrimSpace(spec.Name) == "" {
		return Column{}, malformed("column name cannot be empty")
	}
	if spec.ForeignKey != "" && !strings.Contains(spec.ForeignKey, ".") {
		return Column{}, malformed("column %s: foreign key target %q is not table.column", spec.Name, spec.ForeignKey)
	}
	return Column{
		name:       spec.Name,
		rawType:    spec.Type,
		logical:    ResolveType(spec.Type),
		nullable:   spec.Nullable,
		primary:    spec.Primary,
		foreignKey: spec.ForeignKey,
	}, nil
}

func (c Column) Name() string             { return c.name }
func (c Column) RawType() string          { return c.rawType }
func (c Column) Type() LogicalType        { return c.logical }
func (c Column) Nullable() bool           { return c.nullable }
func (c Column) PrimaryKey() bool         { return c.primary }
func (c Column) ForeignKeyTarget() string { return c.foreignKey }

// ForeignKey is a foreign key constraint owned by a table.
type ForeignKey struct {
	columns    []string
	refTable   string
	refColumns []string
}

// NewForeignKey builds a ForeignKey. Both sides must be non-empty and of equal length.
func NewForeignKey(columns []string, refTable string, refColumns []string) (ForeignKey, error) {
	if len(columns) == 0 {
		return ForeignKey{}, malformed("foreign key to %s has no constrained columns", refTable)
	}
	if refTable == "" {
		return ForeignKey{}, malformed("foreign key on (%s) has no referred table", strings.Join(columns, ", "))
	}
	if len(refColumns) == 0 {
		return ForeignKey{}, malformed("foreign key to %s has no referred columns", refTable)
	}
	if len(columns) != len(refColumns) {
		return ForeignKey{}, malformed("foreign key to %s: %d constrained columns but %d referred columns",
			refTable, len(columns), len(refColumns))
	}
	return ForeignKey{
		columns:    append([]string(nil), columns...),
		refTable:   refTable,
		refColumns: append([]string(nil), refColumns...),
	}, nil
}

// Columns returns the constrained columns of the owning table.
func (fk ForeignKey) Columns() []string { return append([]string(nil), fk.columns...) }

// ReferredTable returns the name of the referenced table.
func (fk ForeignKey) ReferredTable() string { return fk.refTable }

// ReferredColumns returns the referenced columns.
func (fk ForeignKey) ReferredColumns() []string { return append([]string(nil), fk.refColumns...) }

// Table is an introspected table: ordered columns, primary key and foreign keys.
type Table struct {
	name        string
	columns     []Column
	primaryKey  []string
	foreignKeys []ForeignKey
	index       map[string]int
}

// NewTable builds a Table and checks that the primary key and every foreign key
// only mention declared columns.
func NewTable(name string, columns []Column, primaryKey []string, foreignKeys []ForeignKey) (*Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, malformed("table name cannot be empty")
	}

	t := &Table{
		name:        name,
		columns:     append([]Column(nil), columns...),
		primaryKey:  append([]string(nil), primaryKey...),
		foreignKeys: append([]ForeignKey(nil), foreignKeys...),
		index:       make(map[string]int, len(columns)),
	}

	for i, col := range t.columns {
		if _, dup := t.index[col.name]; dup {
			return nil, malformed("table %s: duplicate column %s", name, col.name)
		}
		t.index[col.name] = i
	}

	for _, pk := range t.primaryKey {
		if !t.HasColumn(pk) {
			return nil, malformed("table %s: primary key column %s is not declared", name, pk)
		}
	}

	for _, fk := range t.foreignKeys {
		for _, col := range fk.columns {
			if !t.HasColumn(col) {
				return nil, malformed("table %s: foreign key column %s is not declared", name, col)
			}
		}
	}

	return t, nil
}

func (t *Table) Name() string { return t.name }

// Columns returns the columns in declaration order.
func (t *Table) Columns() []Column { return append([]Column(nil), t.columns...) }

// PrimaryKey returns the primary-key column names.
func (t *Table) PrimaryKey() []string { return append([]string(nil), t.primaryKey...) }

// ForeignKeys returns the foreign keys in declaration order.
func (t *Table) ForeignKeys() []ForeignKey { return append([]ForeignKey(nil), t.foreignKeys...) }

func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// InPrimaryKey reports whether the named column is part of the primary key.
func (t *Table) InPrimaryKey(column string) bool {
	for _, pk := range t.primaryKey {
		if pk == column {
			return true
		}
	}
	return false
}

// Schema is a read-only snapshot of every table produced by one introspection run.
type Schema struct {
	tables []*Table
	byName map[string]*Table
}

// NewSchema builds a Schema. Table names must be unique and every foreign key must
// refer to a declared table and declared columns.
func NewSchema(tables []*Table) (*Schema, error) {
	s := &Schema{
		tables: append([]*Table(nil), tables...),
		byName: make(map[string]*Table, len(tables)),
	}

	for _, t := range s.tables {
		if t == nil {
			return nil, malformed("nil table in schema")
		}
		if _, dup := s.byName[t.name]; dup {
			return nil, malformed("duplicate table %s", t.name)
		}
		s.byName[t.name] = t
	}

	for _, t := range s.tables {
		for _, fk := range t.foreignKeys {
			ref, ok := s.byName[fk.refTable]
			if !ok {
				return nil, malformed("table %s: foreign key references unknown table %s", t.name, fk.refTable)
			}
			for _, col := range fk.refColumns {
				if !ref.HasColumn(col) {
					return nil, malformed("table %s: foreign key references unknown column %s.%s", t.name, fk.refTable, col)
				}
			}
		}
	}

	return s, nil
}

// Tables returns the tables in the order the schema source enumerated them.
func (s *Schema) Tables() []*Table { return append([]*Table(nil), s.tables...) }

// Table looks up a table by name.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.byName[name]
	return t, ok
}

func (s *Schema) Len() int { return len(s.tables) }

// Relation is a resolved association declared on an owning table.
type Relation struct {
	Table         string       `json:"table"`
	Name          string       `json:"name"`
	TargetClass   string       `json:"target_class"`
	TargetTable   string       `json:"target_table"`
	Type          RelationType `json:"type"`
	// Secondary is the association table mediating a many-to-many relation.
	Secondary     string       `json:"secondary,omitempty"`
	BackPopulates string       `json:"back_populates,omitempty"`
}

type RelationType string

const (
	OneToOne   RelationType = "one-to-one"
	OneToMany  RelationType = "one-to-many"
	ManyToOne  RelationType = "many-to-one"
	ManyToMany RelationType = "many-to-many"
)
