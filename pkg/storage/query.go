// Package storage defines the Datastore capability contract shared by every
// persistence back-end (memory, CSV, SQL) and the entity-level filter/sort/
// pagination vocabulary used to query it.
package storage

import "fmt"

// FilterOperation enumerates the comparison a Filter applies.
type FilterOperation int

const (
	OpEquals FilterOperation = iota
	OpNotEquals
	OpContains
	OpStartsWith
	OpEndsWith
	OpIsNull
	OpIsNotNull
	OpGreaterThan
	OpLessThan
)

// FilterValueKind discriminates the scalar types a Filter's value may hold.
type FilterValueKind int

const (
	FilterValueString FilterValueKind = iota
	FilterValueUUID
	FilterValueInteger
	FilterValueBoolean
)

// FilterValue is the scalar operand of a Filter, or the resolved value of a
// field an accessor looked up. Null distinguishes "this optional field has
// no value" from an empty/zero concrete value; it is only ever set by a
// FieldAccessor, never by filter input (a Filter's own Value always names
// a concrete scalar).
type FilterValue struct {
	Kind FilterValueKind
	Null bool
	S    string
	I    int64
	B    bool
}

func StringValue(s string) FilterValue  { return FilterValue{Kind: FilterValueString, S: s} }
func UUIDValue(s string) FilterValue    { return FilterValue{Kind: FilterValueUUID, S: s} }
func IntegerValue(i int64) FilterValue  { return FilterValue{Kind: FilterValueInteger, I: i} }

// NullValue represents an absent optional field for a FieldAccessor to
// return; kind still names the field's underlying scalar type.
func NullValue(kind FilterValueKind) FilterValue { return FilterValue{Kind: kind, Null: true} }
func BooleanValue(b bool) FilterValue   { return FilterValue{Kind: FilterValueBoolean, B: b} }

// Filter narrows a List query to rows where field satisfies Operation
// against Value. Equals/NotEquals require the stored field and Value to be
// the same scalar type; Contains/StartsWith/EndsWith only apply to string
// fields and are case-insensitive; IsNull/IsNotNull ignore Value.
type Filter struct {
	Field     string
	Operation FilterOperation
	Value     FilterValue
}

// Direction is a Sort's ordering.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Sort orders a List query's results by Field, applied in declaration
// order alongside any other Sorts and stable across equal keys.
type Sort struct {
	Field     string
	Direction Direction
}

// PageRequest bounds a List query's result window. A nil *PageRequest
// within QueryOptions requests every matching row.
type PageRequest struct {
	Limit  int
	Offset int
}

// QueryOptions combines filtering, sorting, and pagination for a List call.
type QueryOptions struct {
	Filters    []Filter
	Sorts      []Sort
	Pagination *PageRequest
}

// Page wraps a List response with pagination metadata. TotalCount is the
// count after filtering but before pagination is applied.
type Page[T any] struct {
	Items       []T
	TotalCount  int64
	Page        int
	PageSize    int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

// NewPage builds a Page from the filtered (pre-pagination) total and the
// already-paginated items slice.
func NewPage[T any](items []T, totalCount int64, opts QueryOptions) Page[T] {
	pageSize := len(items)
	pageNum := 1
	if opts.Pagination != nil {
		if opts.Pagination.Limit > 0 {
			pageSize = opts.Pagination.Limit
		}
		if pageSize > 0 {
			pageNum = opts.Pagination.Offset/pageSize + 1
		}
	}
	totalPages := 1
	if pageSize > 0 {
		totalPages = int((totalCount + int64(pageSize) - 1) / int64(pageSize))
		if totalPages < 1 {
			totalPages = 1
		}
	}
	offset := 0
	if opts.Pagination != nil {
		offset = opts.Pagination.Offset
	}
	return Page[T]{
		Items:       items,
		TotalCount:  totalCount,
		Page:        pageNum,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNext:     int64(offset+len(items)) < totalCount,
		HasPrevious: offset > 0,
	}
}

// ValidationError reports a malformed QueryOptions: an unknown field name
// or a type mismatch between a Filter's declared value and the field it
// targets.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NotFoundError is returned by a required-fetch operation when the entity
// does not exist.
type NotFoundError struct {
	EntityType string
	ID         string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.EntityType, e.ID)
}
