package introspect

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Querier is the part of *pgxpool.Pool (or *pgx.Conn) the PostgreSQL provider uses.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Postgres reads the catalog of one PostgreSQL schema through information_schema.
type Postgres struct {
	db       Querier
	dbSchema string
}

// NewPostgres returns a provider for dbSchema ("public" when empty).
func NewPostgres(db Querier, dbSchema string) *Postgres {
	if dbSchema == "" {
		dbSchema = "public"
	}
	return &Postgres{db: db, dbSchema: dbSchema}
}

func (p *Postgres) ListTables(ctx context.Context) ([]string, error) {
	tablesQuery := `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1 AND table_type = 'BASE TABLE'
	ORDER BY table_name;
	`

	rows, err := p.db.Query(ctx, tablesQuery, p.dbSchema)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		tableNames = append(tableNames, tableName)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating table rows: %w", rows.Err())
	}

	return tableNames, nil
}

func (p *Postgres) Columns(ctx context.Context, tableName string) ([]RawColumn, error) {
	columnsQuery := `
	SELECT
		c.column_name,
		c.data_type,
		(c.is_nullable = 'YES') AS is_nullable
	FROM information_schema.columns c
	WHERE c.table_schema = $1 AND c.table_name = $2
	ORDER BY c.ordinal_position;
	`

	rows, err := p.db.Query(ctx, columnsQuery, p.dbSchema, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []RawColumn
	for rows.Next() {
		var col RawColumn
		if err := rows.Scan(&col.ColumnName, &col.DataType, &col.IsNullable); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, col)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating column rows: %w", rows.Err())
	}

	return columns, nil
}

func (p *Postgres) PrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	pkQuery := `
	SELECT kcu.column_name
	FROM information_schema.table_constraints tc
	JOIN information_schema.key_column_usage kcu
		ON tc.constraint_name = kcu.constraint_name
		AND tc.table_schema = kcu.table_schema
		AND tc.table_name = kcu.table_name
	WHERE tc.constraint_type = 'PRIMARY KEY'
		AND tc.table_schema = $1
		AND tc.table_name = $2
	ORDER BY kcu.ordinal_position;
	`

	rows, err := p.db.Query(ctx, pkQuery, p.dbSchema, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying primary key: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, fmt.Errorf("scanning primary key column: %w", err)
		}
		columns = append(columns, col)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating primary key rows: %w", rows.Err())
	}

	return columns, nil
}

func (p *Postgres) ForeignKeys(ctx context.Context, tableName string) ([]RawForeignKey, error) {
	// position_in_unique_constraint pairs each constrained column with its referenced
	// column, which constraint_column_usage cannot do for multi-column keys.
	foreignKeysQuery := `
	SELECT
		kcu.constraint_name,
		kcu.column_name,
		ref.table_name AS foreign_table_name,
		ref.column_name AS foreign_column_name
	FROM information_schema.referential_constraints rc
	JOIN information_schema.key_column_usage kcu
		ON kcu.constraint_name = rc.constraint_name
		AND kcu.constraint_schema = rc.constraint_schema
	JOIN information_schema.key_column_usage ref
		ON ref.constraint_name = rc.unique_constraint_name
		AND ref.constraint_schema = rc.unique_constraint_schema
		AND ref.ordinal_position = kcu.position_in_unique_constraint
	WHERE kcu.table_schema = $1
		AND kcu.table_name = $2
	ORDER BY kcu.constraint_name, kcu.ordinal_position;
	`

	rows, err := p.db.Query(ctx, foreignKeysQuery, p.dbSchema, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying foreign keys: %w", err)
	}
	defer rows.Close()

	acc := newFKAccumulator()
	for rows.Next() {
		var name, column, refTable, refColumn string
		if err := rows.Scan(&name, &column, &refTable, &refColumn); err != nil {
			return nil, fmt.Errorf("scanning foreign key: %w", err)
		}
		acc.add(name, column, refTable, refColumn)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating foreign key rows: %w", rows.Err())
	}

	return acc.values(), nil
}
