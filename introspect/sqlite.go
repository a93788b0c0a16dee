package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// SQLite reads the catalog of a SQLite database through sqlite_master and PRAGMAs.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *SQLite) ListTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tables = append(tables, name)
	}

	return tables, rows.Err()
}

type sqliteColumn struct {
	RawColumn
	pkOrdinal int
}

// tableInfo runs PRAGMA table_info: cid, name, type, notnull, dflt_value, pk.
func (s *SQLite) tableInfo(ctx context.Context, tableName string) ([]sqliteColumn, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []sqliteColumn
	for rows.Next() {
		var cid, notNull, pk int
		var name, dataType string
		var defaultVal sql.NullString

		if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultVal, &pk); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, sqliteColumn{
			RawColumn: RawColumn{
				ColumnName:   name,
				DataType:     dataType,
				IsNullable:   notNull == 0,
				IsPrimaryKey: pk > 0,
			},
			pkOrdinal: pk,
		})
	}

	return columns, rows.Err()
}

func (s *SQLite) Columns(ctx context.Context, tableName string) ([]RawColumn, error) {
	info, err := s.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}
	columns := make([]RawColumn, 0, len(info))
	for _, col := range info {
		columns = append(columns, col.RawColumn)
	}
	return columns, nil
}

func (s *SQLite) PrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	info, err := s.tableInfo(ctx, tableName)
	if err != nil {
		return nil, err
	}

	var pkCols []sqliteColumn
	for _, col := range info {
		if col.pkOrdinal > 0 {
			pkCols = append(pkCols, col)
		}
	}
	sort.SliceStable(pkCols, func(i, j int) bool { return pkCols[i].pkOrdinal < pkCols[j].pkOrdinal })

	names := make([]string, 0, len(pkCols))
	for _, col := range pkCols {
		names = append(names, col.ColumnName)
	}
	return names, nil
}

type sqliteFKRow struct {
	id, seq        int
	refTable, from string
	to             sql.NullString
}

func (s *SQLite) ForeignKeys(ctx context.Context, tableName string) ([]RawForeignKey, error) {
	// PRAGMA foreign_key_list: id, seq, table, from, to, on_update, on_delete, match.
	// Rows are collected and closed before any follow-up query so a single-connection
	// (in-memory) database is not blocked.
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(tableName)))
	if err != nil {
		return nil, fmt.Errorf("querying foreign keys: %w", err)
	}

	var fkRows []sqliteFKRow
	for rows.Next() {
		var r sqliteFKRow
		var onUpdate, onDelete, match string
		if err := rows.Scan(&r.id, &r.seq, &r.refTable, &r.from, &r.to, &onUpdate, &onDelete, &match); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning foreign key: %w", err)
		}
		fkRows = append(fkRows, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating foreign key rows: %w", err)
	}
	rows.Close()

	// SQLite numbers constraints newest first; restore declaration order.
	sort.SliceStable(fkRows, func(i, j int) bool {
		if fkRows[i].id != fkRows[j].id {
			return fkRows[i].id > fkRows[j].id
		}
		return fkRows[i].seq < fkRows[j].seq
	})

	acc := newFKAccumulator()
	for _, r := range fkRows {
		refColumn := r.to.String
		if !r.to.Valid || refColumn == "" {
			// REFERENCES parent without a column list points at the parent's primary key
			pk, err := s.PrimaryKey(ctx, r.refTable)
			if err != nil {
				return nil, err
			}
			if r.seq < len(pk) {
				refColumn = pk[r.seq]
			}
		}
		acc.add(fmt.Sprintf("fk_%s_%d", tableName, r.id), r.from, r.refTable, refColumn)
	}

	return acc.values(), nil
}
