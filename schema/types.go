package schema

import "strings"

// LogicalType is the canonical category a raw column type resolves to.
type LogicalType int

const (
	Unknown LogicalType = iota
	Integer
	Text
	Float
	Timestamp
)

func (t LogicalType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Text:
		return "text"
	case Float:
		return "float"
	case Timestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// typeKeys is matched in order against the lower-cased raw type; the first key that is
// a substring wins. Reordering entries changes generated output.
var typeKeys = []struct {
	key     string
	logical LogicalType
}{
	{"integer", Integer},
	{"bigint", Integer},
	{"smallint", Integer},
	{"int", Integer},
	{"varchar", Text},
	{"text", Text},
	{"float", Float},
	{"real", Float},
	{"numeric", Float},
	{"datetime", Timestamp},
	{"timestamp", Timestamp},
	{"date", Timestamp},
}

// ResolveType maps a raw, case-insensitive column type such as "VARCHAR(255)" or
// "TIMESTAMP WITHOUT TIME ZONE" to its logical type. Types matching no key are Text.
func ResolveType(raw string) LogicalType {
	lower := strings.ToLower(raw)
	for _, k := range typeKeys {
		if strings.Contains(lower, k.key) {
			return k.logical
		}
	}
	return Text
}
