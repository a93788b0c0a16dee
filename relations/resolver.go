package relations

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/modelforge/schema"
	"github.com/ridoystarlord/modelforge/utils"
)

// Diagnostic kinds reported by Resolve.
const (
	AmbiguousAssociation     = "ambiguous_association"
	SelfReferentialJunction  = "self_referential_junction"
	UnmappedManyToManyTarget = "unmapped_many_to_many_target"
)

// Diagnostic is a non-fatal finding made while resolving relations.
type Diagnostic struct {
	Kind     string `json:"kind"`
	Table    string `json:"table"`
	Relation string `json:"relation,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // "warning" or "info"
}

// Resolution is the immutable result of resolving a schema: per table, its kind and
// the ordered relation declarations it owns.
type Resolution struct {
	order       []string
	kinds       map[string]TableKind
	relations   map[string][]schema.Relation
	diagnostics []Diagnostic
}

// Tables returns table names in schema order.
func (r *Resolution) Tables() []string { return append([]string(nil), r.order...) }

// Kind returns the classification of the named table.
func (r *Resolution) Kind(table string) TableKind { return r.kinds[table] }

// For returns the relations owned by table: foreign-key relations first, then
// many-to-many relations. Association tables own none.
func (r *Resolution) For(table string) []schema.Relation {
	return append([]schema.Relation(nil), r.relations[table]...)
}

// Diagnostics returns every non-fatal finding in the order it was made.
func (r *Resolution) Diagnostics() []Diagnostic {
	return append([]Diagnostic(nil), r.diagnostics...)
}

// Count returns the total number of relation declarations.
func (r *Resolution) Count() int {
	n := 0
	for _, rels := range r.relations {
		n += len(rels)
	}
	return n
}

// Resolve classifies every table and derives its relation declarations. All association
// tables are folded before entity tables are visited.
func Resolve(s *schema.Schema) *Resolution {
	res := &Resolution{
		kinds:     make(map[string]TableKind),
		relations: make(map[string][]schema.Relation),
	}
	if s == nil {
		return res
	}

	manyToMany, diags := resolveManyToMany(s)
	res.diagnostics = append(res.diagnostics, diags...)

	for _, t := range s.Tables() {
		name := t.Name()
		kind := Classify(t)
		res.order = append(res.order, name)
		res.kinds[name] = kind

		if kind == AssociationTable {
			for _, rel := range manyToMany[name] {
				res.diagnostics = append(res.diagnostics, Diagnostic{
					Kind:     UnmappedManyToManyTarget,
					Table:    name,
					Relation: rel.Name,
					Message:  fmt.Sprintf("association table %s is itself linked through %s; relation %s is not declared", name, rel.Secondary, rel.Name),
					Severity: "warning",
				})
			}
			continue
		}

		rels := append(foreignKeyRelations(t), manyToMany[name]...)
		if len(rels) > 0 {
			res.relations[name] = rels
		}
		res.diagnostics = append(res.diagnostics, duplicateNames(name, rels)...)
	}

	return res
}

// foreignKeyRelations declares one relation per foreign key of an entity table.
func foreignKeyRelations(t *schema.Table) []schema.Relation {
	var rels []schema.Relation
	for _, fk := range t.ForeignKeys() {
		parent := fk.ReferredTable()
		rel := schema.Relation{
			Table:       t.Name(),
			Name:        strings.ToLower(parent),
			TargetClass: utils.ToClassName(parent),
			TargetTable: parent,
			Type:        MultiplicityOf(t, fk),
		}
		if rel.Type != schema.ManyToOne {
			rel.BackPopulates = utils.Pluralize(strings.ToLower(t.Name()))
		}
		rels = append(rels, rel)
	}
	return rels
}

// resolveManyToMany folds every association table into mirrored relation pairs keyed
// by the owning table.
func resolveManyToMany(s *schema.Schema) (map[string][]schema.Relation, []Diagnostic) {
	out := make(map[string][]schema.Relation)
	var diags []Diagnostic

	for _, t := range s.Tables() {
		if Classify(t) != AssociationTable {
			continue
		}
		fks := t.ForeignKeys()
		left, right := fks[0].ReferredTable(), fks[1].ReferredTable()

		leftName := utils.Pluralize(strings.ToLower(right))
		rightName := utils.Pluralize(strings.ToLower(left))

		if left == right {
			leftName, rightName = roleNames(fks[0], fks[1])
			msg := fmt.Sprintf("%s links %s to itself; relations named %s and %s by column role",
				t.Name(), left, leftName, rightName)
			diags = append(diags, Diagnostic{
				Kind:     SelfReferentialJunction,
				Table:    left,
				Message:  msg,
				Severity: "info",
			})
		}

		out[left] = append(out[left], schema.Relation{
			Table:         left,
			Name:          leftName,
			TargetClass:   utils.ToClassName(right),
			TargetTable:   right,
			Type:          schema.ManyToMany,
			Secondary:     t.Name(),
			BackPopulates: rightName,
		})
		out[right] = append(out[right], schema.Relation{
			Table:         right,
			Name:          rightName,
			TargetClass:   utils.ToClassName(left),
			TargetTable:   left,
			Type:          schema.ManyToMany,
			Secondary:     t.Name(),
			BackPopulates: leftName,
		})
	}

	return out, diags
}

// roleNames names both sides of a self-referential junction after the columns that
// point at them: follows(follower_id, followee_id) gives "followees" for the side
// reached through followee_id and "followers" for the other.
func roleNames(first, second schema.ForeignKey) (string, string) {
	a := utils.Pluralize(role(first))
	b := utils.Pluralize(role(second))
	if a == b {
		a, b = a+"_1", b+"_2"
	}
	// the first declaration navigates towards the second foreign key's rows
	return b, a
}

func role(fk schema.ForeignKey) string {
	r := strings.ToLower(strings.Join(fk.Columns(), "_"))
	r = strings.TrimSuffix(r, "_id")
	if r == "" {
		return strings.ToLower(fk.ReferredTable())
	}
	return r
}

func duplicateNames(table string, rels []schema.Relation) []Diagnostic {
	var diags []Diagnostic
	seen := make(map[string]int)
	for _, rel := range rels {
		seen[rel.Name]++
		if seen[rel.Name] == 2 {
			diags = append(diags, Diagnostic{
				Kind:     AmbiguousAssociation,
				Table:    table,
				Relation: rel.Name,
				Message:  fmt.Sprintf("table %s declares relation %s more than once; later declarations shadow earlier ones", table, rel.Name),
				Severity: "warning",
			})
		}
	}
	return diags
}
