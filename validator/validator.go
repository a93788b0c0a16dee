package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ridoystarlord/modelforge/relations"
	"github.com/ridoystarlord/modelforge/schema"
	"github.com/ridoystarlord/modelforge/utils"
)

// ValidationError represents a validation finding with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Relation string `json:"relation,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}
}

func (r *ValidationResult) add(e ValidationError) {
	switch e.Severity {
	case "error":
		r.Errors = append(r.Errors, e)
	case "warning":
		r.Warnings = append(r.Warnings, e)
	default:
		r.Info = append(r.Info, e)
	}
	r.Valid = len(r.Errors) == 0
}

// pythonKeywords cannot be used as attribute or variable names in generated models.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true, "assert": true,
	"async": true, "await": true, "break": true, "class": true, "continue": true,
	"def": true, "del": true, "elif": true, "else": true, "except": true, "finally": true,
	"for": true, "from": true, "global": true, "if": true, "import": true, "in": true,
	"is": true, "lambda": true, "nonlocal": true, "not": true, "or": true, "pass": true,
	"raise": true, "return": true, "try": true, "while": true, "with": true, "yield": true,
}

// FromError turns a snapshot failure into a result. A malformed schema is reported as a
// validation error; any other error is returned unchanged.
func FromError(err error) (*ValidationResult, error) {
	if !errors.Is(err, schema.ErrMalformedSchema) {
		return nil, err
	}
	result := newResult()
	result.add(ValidationError{
		Type:     "malformed_schema",
		Message:  err.Error(),
		Severity: "error",
	})
	return result, nil
}

// ValidateSchema checks a snapshot and its resolved relations for names that cannot be
// emitted, ambiguous or shadowed relations and junction tables the heuristic skips.
func ValidateSchema(s *schema.Schema, r *relations.Resolution) *ValidationResult {
	result := newResult()
	if s == nil {
		return result
	}
	if r == nil {
		r = relations.Resolve(s)
	}

	for _, t := range s.Tables() {
		validateTable(t, r, result)
	}

	for _, d := range r.Diagnostics() {
		result.add(ValidationError{
			Type:     d.Kind,
			Table:    d.Table,
			Relation: d.Relation,
			Message:  d.Message,
			Severity: d.Severity,
		})
	}

	return result
}

func validateTable(t *schema.Table, r *relations.Resolution, result *ValidationResult) {
	kind := r.Kind(t.Name())

	if kind == relations.AssociationTable {
		if err := validateIdentifier("table", t.Name()); err != nil {
			result.add(ValidationError{Type: "table_name", Table: t.Name(), Message: err.Error(), Severity: "error"})
		}
	} else if className := utils.ToClassName(t.Name()); !startsWithLetter(className) {
		result.add(ValidationError{
			Type:     "table_name",
			Table:    t.Name(),
			Message:  fmt.Sprintf("table '%s' does not produce a valid class name (got '%s')", t.Name(), className),
			Severity: "error",
		})
	}

	columnNames := make(map[string]bool)
	for _, col := range t.Columns() {
		columnNames[col.Name()] = true
		if err := validateIdentifier("column", col.Name()); err != nil {
			result.add(ValidationError{Type: "column_name", Table: t.Name(), Column: col.Name(), Message: err.Error(), Severity: "error"})
		}
	}

	if kind == relations.AssociationTable {
		return
	}

	if len(t.PrimaryKey()) == 0 {
		result.add(ValidationError{
			Type:     "no_primary_key",
			Table:    t.Name(),
			Message:  fmt.Sprintf("table '%s' has no primary key; mapped classes need one", t.Name()),
			Severity: "warning",
		})
	}

	if len(t.ForeignKeys()) == 2 {
		result.add(ValidationError{
			Type:     "junction_candidate",
			Table:    t.Name(),
			Message:  fmt.Sprintf("table '%s' has two foreign keys but its primary key is not exactly their columns; it is mapped as an entity", t.Name()),
			Severity: "info",
		})
	}

	for _, rel := range r.For(t.Name()) {
		if columnNames[rel.Name] {
			result.add(ValidationError{
				Type:     "relation_shadows_column",
				Table:    t.Name(),
				Column:   rel.Name,
				Relation: rel.Name,
				Message:  fmt.Sprintf("relation '%s' on '%s' has the same name as a column", rel.Name, t.Name()),
				Severity: "warning",
			})
		}
	}
}

// validateIdentifier checks that name can be used as a Python identifier.
func validateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if !startsWithLetter(name) && name[0] != '_' {
		return fmt.Errorf("%s name '%s' must start with a letter or underscore", kind, name)
	}
	for _, char := range name {
		if !unicode.IsLetter(char) && !unicode.IsDigit(char) && char != '_' {
			return fmt.Errorf("%s name '%s' contains invalid character '%c'", kind, name, char)
		}
	}
	if pythonKeywords[name] {
		return fmt.Errorf("%s name '%s' is a reserved keyword", kind, name)
	}
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return fmt.Errorf("%s name '%s' collides with a reserved dunder attribute", kind, name)
	}
	return nil
}

func startsWithLetter(s string) bool {
	first, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(first)
}
