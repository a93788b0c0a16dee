// Package relations infers associations between tables from primary and foreign keys.
package relations

import "github.com/ridoystarlord/modelforge/schema"

// TableKind tells entity tables apart from pure association (junction) tables.
type TableKind int

const (
	EntityTable TableKind = iota
	AssociationTable
)

func (k TableKind) String() string {
	if k == AssociationTable {
		return "association"
	}
	return "entity"
}

// Classify reports whether t is an association table: exactly two foreign keys whose
// constrained columns together are exactly the primary key. Anything else, including
// junctions with a third foreign key or extra key columns, is an entity table.
func Classify(t *schema.Table) TableKind {
	fks := t.ForeignKeys()
	if len(fks) != 2 {
		return EntityTable
	}

	fkColumns := make(map[string]bool)
	for _, fk := range fks {
		for _, col := range fk.Columns() {
			fkColumns[col] = true
		}
	}

	pkColumns := make(map[string]bool)
	for _, col := range t.PrimaryKey() {
		pkColumns[col] = true
	}

	if len(fkColumns) != len(pkColumns) {
		return EntityTable
	}
	for col := range fkColumns {
		if !pkColumns[col] {
			return EntityTable
		}
	}
	return AssociationTable
}

// MultiplicityOf decides how an entity table's foreign key is declared. A single-column
// key outside the table's own primary key is a plain many-to-one reference; a key that
// takes part in the primary key, or spans several columns, is declared as the
// back-reference side (one-to-many).
func MultiplicityOf(t *schema.Table, fk schema.ForeignKey) schema.RelationType {
	cols := fk.Columns()
	if len(cols) == 1 && !t.InPrimaryKey(cols[0]) {
		return schema.ManyToOne
	}
	return schema.OneToMany
}
