package repository

// FilterOp is a per-field comparison operator in the remote filter grammar
type FilterOp string

const (
	FilterOpEq              FilterOp = "eq"
	FilterOpNe              FilterOp = "ne"
	FilterOpGt              FilterOp = "gt"
	FilterOpGe              FilterOp = "ge"
	FilterOpLt              FilterOp = "lt"
	FilterOpLe              FilterOp = "le"
	FilterOpContains        FilterOp = "contains"
	FilterOpBeginsWith      FilterOp = "beginsWith"
	FilterOpBetween         FilterOp = "between"
	FilterOpAttributeExists FilterOp = "attributeExists"
)

// Filter is a filter expression: either a single field condition or a
// recursive and/or/not composition. Exactly one of the leaf fields or one
// composition list should be set.
type Filter struct {
	Field string
	Op    FilterOp
	Value any

	And []Filter
	Or  []Filter
	Not *Filter
}

// FieldFilter creates a leaf condition on one field
func FieldFilter(field string, op FilterOp, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// AndFilter composes filters that must all match
func AndFilter(filters ...Filter) Filter {
	return Filter{And: filters}
}

// OrFilter composes filters of which at least one must match
func OrFilter(filters ...Filter) Filter {
	return Filter{Or: filters}
}

// NotFilter negates a filter
func NotFilter(filter Filter) Filter {
	return Filter{Not: &filter}
}

// IsZero reports whether the filter has no condition at all
func (f Filter) IsZero() bool {
	return f.Field == "" && len(f.And) == 0 && len(f.Or) == 0 && f.Not == nil
}

// Map serializes the filter into the variables shape the remote API expects
func (f Filter) Map() map[string]any {
	switch {
	case len(f.And) > 0:
		parts := make([]map[string]any, 0, len(f.And))
		for _, sub := range f.And {
			parts = append(parts, sub.Map())
		}
		return map[string]any{"and": parts}

	case len(f.Or) > 0:
		parts := make([]map[string]any, 0, len(f.Or))
		for _, sub := range f.Or {
			parts = append(parts, sub.Map())
		}
		return map[string]any{"or": parts}

	case f.Not != nil:
		return map[string]any{"not": f.Not.Map()}

	case f.Field != "":
		return map[string]any{f.Field: map[string]any{string(f.Op): f.Value}}

	default:
		return map[string]any{}
	}
}
