package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/ridoystarlord/modelforge/introspect"
	"github.com/ridoystarlord/modelforge/schema"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name        string           `yaml:"name"`
	Columns     []yamlColumn     `yaml:"columns"`
	PrimaryKey  []string         `yaml:"primary_key"`
	ForeignKeys []yamlForeignKey `yaml:"foreign_keys"`
}

type yamlColumn struct {
	Name       string                `yaml:"name"`
	Type       string                `yaml:"type"`
	Primary    bool                  `yaml:"primary"`
	NotNull    bool                  `yaml:"not_null"`
	ForeignKey *yamlColumnForeignKey `yaml:"foreign_key"`
}

type yamlColumnForeignKey struct {
	ReferencesTable  string `yaml:"references_table"`
	ReferencesColumn string `yaml:"references_column"`
}

// yamlForeignKey declares a (possibly multi-column) foreign key at table level.
type yamlForeignKey struct {
	Name              string   `yaml:"name"`
	Columns           []string `yaml:"columns"`
	ReferencesTable   string   `yaml:"references_table"`
	ReferencesColumns []string `yaml:"references_columns"`
}

// YAMLProvider serves a schema snapshot described in a YAML file, so models can be
// generated without a database connection. Tables keep file order.
type YAMLProvider struct {
	tables []yamlTable
	byName map[string]yamlTable
}

// NewYAMLProvider parses YAML schema content.
func NewYAMLProvider(data []byte) (*YAMLProvider, error) {
	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}

	p := &YAMLProvider{tables: yf.Tables, byName: make(map[string]yamlTable, len(yf.Tables))}
	for _, t := range yf.Tables {
		if _, dup := p.byName[t.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate table %s", schema.ErrMalformedSchema, t.Name)
		}
		p.byName[t.Name] = t
	}
	return p, nil
}

func (p *YAMLProvider) table(name string) (yamlTable, error) {
	t, ok := p.byName[name]
	if !ok {
		return yamlTable{}, fmt.Errorf("table %s not found", name)
	}
	return t, nil
}

func (p *YAMLProvider) ListTables(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(p.tables))
	for _, t := range p.tables {
		names = append(names, t.Name)
	}
	return names, nil
}

func (p *YAMLProvider) Columns(ctx context.Context, table string) ([]introspect.RawColumn, error) {
	t, err := p.table(table)
	if err != nil {
		return nil, err
	}
	// a declared key column is NOT NULL, like a PostgreSQL primary key
	inPK := make(map[string]bool, len(t.PrimaryKey))
	for _, name := range t.PrimaryKey {
		inPK[name] = true
	}
	columns := make([]introspect.RawColumn, 0, len(t.Columns))
	for _, c := range t.Columns {
		columns = append(columns, introspect.RawColumn{
			ColumnName:   c.Name,
			DataType:     c.Type,
			IsNullable:   !c.NotNull && !c.Primary && !inPK[c.Name],
			IsPrimaryKey: c.Primary,
		})
	}
	return columns, nil
}

// PrimaryKey prefers the table-level primary_key list and falls back to columns
// flagged primary, in column order.
func (p *YAMLProvider) PrimaryKey(ctx context.Context, table string) ([]string, error) {
	t, err := p.table(table)
	if err != nil {
		return nil, err
	}
	if len(t.PrimaryKey) > 0 {
		return append([]string(nil), t.PrimaryKey...), nil
	}
	var pk []string
	for _, c := range t.Columns {
		if c.Primary {
			pk = append(pk, c.Name)
		}
	}
	return pk, nil
}

// ForeignKeys returns column-level foreign keys in column order, then table-level ones.
func (p *YAMLProvider) ForeignKeys(ctx context.Context, table string) ([]introspect.RawForeignKey, error) {
	t, err := p.table(table)
	if err != nil {
		return nil, err
	}

	var fks []introspect.RawForeignKey
	for _, c := range t.Columns {
		if c.ForeignKey == nil {
			continue
		}
		fks = append(fks, introspect.RawForeignKey{
			ConstraintName:    fmt.Sprintf("fk_%s_%s", t.Name, c.Name),
			Columns:           []string{c.Name},
			ReferencesTable:   c.ForeignKey.ReferencesTable,
			ReferencesColumns: []string{c.ForeignKey.ReferencesColumn},
		})
	}
	for i, fk := range t.ForeignKeys {
		name := fk.Name
		if name == "" {
			name = fmt.Sprintf("fk_%s_%d", t.Name, i)
		}
		fks = append(fks, introspect.RawForeignKey{
			ConstraintName:    name,
			Columns:           append([]string(nil), fk.Columns...),
			ReferencesTable:   fk.ReferencesTable,
			ReferencesColumns: append([]string(nil), fk.ReferencesColumns...),
		})
	}
	return fks, nil
}

// LoadSchema parses YAML schema content into a snapshot.
func LoadSchema(data []byte) (*schema.Schema, error) {
	p, err := NewYAMLProvider(data)
	if err != nil {
		return nil, err
	}
	return introspect.Snapshot(context.Background(), p)
}

// LoadSchemaFromYAML reads and parses a YAML schema file.
func LoadSchemaFromYAML(filename string) (*schema.Schema, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return LoadSchema(data)
}
