package schema

// Condition is a single comparison in a WHERE clause. Conditions in a
// slice are joined with AND.
type Condition struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    any    `json:"value"`
}

// Select describes a read against one table.
type Select struct {
	Table      string      `json:"table"`
	Columns    []string    `json:"columns"` // empty selects every column
	Conditions []Condition `json:"conditions,omitempty"`
	Limit      int         `json:"limit,omitempty"` // 0 means unlimited
	Offset     int         `json:"offset,omitempty"`
}
