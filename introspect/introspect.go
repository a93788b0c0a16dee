// Package introspect reads table, column and key metadata from a live database and
// turns it into a schema.Schema snapshot.
package introspect

import (
	"context"
	"fmt"

	"github.com/ridoystarlord/modelforge/schema"
)

// Provider exposes the catalog of one database. Implementations must return tables
// and columns in a stable order; generated output follows it.
type Provider interface {
	ListTables(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]RawColumn, error)
	PrimaryKey(ctx context.Context, table string) ([]string, error)
	ForeignKeys(ctx context.Context, table string) ([]RawForeignKey, error)
}

// RawColumn is column metadata as the catalog reports it.
type RawColumn struct {
	ColumnName   string
	DataType     string
	IsNullable   bool
	IsPrimaryKey bool
}

// RawForeignKey is one foreign key constraint, possibly spanning several columns.
type RawForeignKey struct {
	ConstraintName    string
	Columns           []string
	ReferencesTable   string
	ReferencesColumns []string
}

// Snapshot reads every table from p and builds an immutable schema. Any catalog error
// aborts the whole snapshot; a partial schema is never returned.
func Snapshot(ctx context.Context, p Provider) (*schema.Schema, error) {
	tableNames, err := p.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}

	tables := make([]*schema.Table, 0, len(tableNames))
	for _, tableName := range tableNames {
		t, err := snapshotTable(ctx, p, tableName)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	return schema.NewSchema(tables)
}

func snapshotTable(ctx context.Context, p Provider, tableName string) (*schema.Table, error) {
	rawColumns, err := p.Columns(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("getting columns for table %s: %w", tableName, err)
	}

	pk, err := p.PrimaryKey(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("getting primary key for table %s: %w", tableName, err)
	}

	rawFKs, err := p.ForeignKeys(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("getting foreign keys for table %s: %w", tableName, err)
	}

	inPK := make(map[string]bool, len(pk))
	for _, col := range pk {
		inPK[col] = true
	}

	// first constraint wins when a column takes part in several foreign keys
	targets := make(map[string]string)
	fks := make([]schema.ForeignKey, 0, len(rawFKs))
	for _, raw := range rawFKs {
		fk, err := schema.NewForeignKey(raw.Columns, raw.ReferencesTable, raw.ReferencesColumns)
		if err != nil {
			return nil, fmt.Errorf("table %s, constraint %s: %w", tableName, raw.ConstraintName, err)
		}
		for i, col := range raw.Columns {
			if _, ok := targets[col]; !ok {
				targets[col] = raw.ReferencesTable + "." + raw.ReferencesColumns[i]
			}
		}
		fks = append(fks, fk)
	}

	columns := make([]schema.Column, 0, len(rawColumns))
	for _, raw := range rawColumns {
		primary := raw.IsPrimaryKey || inPK[raw.ColumnName]
		col, err := schema.NewColumn(schema.ColumnSpec{
			Name:       raw.ColumnName,
			Type:       raw.DataType,
			Nullable:   raw.IsNullable,
			Primary:    primary,
			ForeignKey: targets[raw.ColumnName],
		})
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tableName, err)
		}
		columns = append(columns, col)
	}

	return schema.NewTable(tableName, columns, pk, fks)
}

// fkAccumulator groups per-column foreign key rows into constraints, keeping the
// order in which constraints were first seen.
type fkAccumulator struct {
	fks   map[string]*RawForeignKey
	order []string
}

func newFKAccumulator() *fkAccumulator {
	return &fkAccumulator{fks: make(map[string]*RawForeignKey)}
}

func (a *fkAccumulator) add(name, column, refTable, refColumn string) {
	if fk, exists := a.fks[name]; exists {
		fk.Columns = append(fk.Columns, column)
		fk.ReferencesColumns = append(fk.ReferencesColumns, refColumn)
		return
	}
	a.fks[name] = &RawForeignKey{
		ConstraintName:    name,
		Columns:           []string{column},
		ReferencesTable:   refTable,
		ReferencesColumns: []string{refColumn},
	}
	a.order = append(a.order, name)
}

func (a *fkAccumulator) values() []RawForeignKey {
	result := make([]RawForeignKey, 0, len(a.order))
	for _, name := range a.order {
		result = append(result, *a.fks[name])
	}
	return result
}
