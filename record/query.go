// Package record defines the wire contract of the generic record store: the
// query description language, the response envelope, and the codec between
// raw store records and the canonical domain entities.
package record

// Tables the task client works against.
const (
	TableTasks      = "task"
	TableCategories = "category"
)

// Predicate operators understood by the store.
const (
	OpEqualTo           = "EqualTo"
	OpLessThan          = "LessThan"
	OpLessThanOrEqualTo = "LessThanOrEqualTo"
	OpContains          = "Contains"
)

// Group operators for condition groups.
const (
	GroupAnd = "AND"
	GroupOr  = "OR"
)

// Sort directions.
const (
	SortAsc  = "ASC"
	SortDesc = "DESC"
)

// Record is a raw row exactly as the store carries it, keyed by schema
// field name.
type Record = map[string]any

// FieldName wraps a schema field name.
type FieldName struct {
	Name string `json:"Name"`
}

// FieldSelector names one field to project in a fetch.
type FieldSelector struct {
	Field FieldName `json:"field"`
}

// Fields builds a projection list from plain field names.
func Fields(names ...string) []FieldSelector {
	out := make([]FieldSelector, len(names))
	for i, n := range names {
		out[i] = FieldSelector{Field: FieldName{Name: n}}
	}
	return out
}

// Condition is a single field predicate.
type Condition struct {
	FieldName string `json:"fieldName"`
	Operator  string `json:"operator"`
	Values    []any  `json:"values"`
}

// SubGroup is a conjunction of conditions inside a group.
type SubGroup struct {
	Conditions []Condition `json:"conditions"`
}

// ConditionGroup combines subgroups with AND or OR.
type ConditionGroup struct {
	Operator  string     `json:"operator"`
	SubGroups []SubGroup `json:"subGroups"`
}

// SortSpec orders results by one field.
type SortSpec struct {
	FieldName string `json:"fieldName"`
	SortType  string `json:"sorttype"`
}

// TableRef names a table inside an aggregator.
type TableRef struct {
	Name string `json:"Name"`
}

// AggregateField applies a function to a field within an aggregator.
type AggregateField struct {
	Field    FieldName `json:"field"`
	Function string    `json:"Function"`
	Alias    string    `json:"Alias"`
}

// Aggregator asks the store for a grouped aggregate over another table.
type Aggregator struct {
	ID      string           `json:"id"`
	Fields  []AggregateField `json:"fields"`
	Table   TableRef         `json:"table"`
	GroupBy []string         `json:"groupBy"`
}

// Query describes one fetch against a table.
type Query struct {
	Fields      []FieldSelector  `json:"fields,omitempty"`
	Where       []Condition      `json:"where,omitempty"`
	WhereGroups []ConditionGroup `json:"whereGroups,omitempty"`
	OrderBy     []SortSpec       `json:"orderBy,omitempty"`
	Aggregators []Aggregator     `json:"aggregators,omitempty"`
}
