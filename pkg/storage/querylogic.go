package storage

import (
	"sort"
	"strings"
)

// FieldAccessor resolves a named field on an entity of type T to a
// FilterValue, reporting false if the field is unknown to that entity (the
// back-end-independent source of an "unknown field" ValidationError).
type FieldAccessor[T any] func(item T, field string) (FilterValue, bool)

// ApplyQuery runs opts against items using accessor to resolve filter/sort
// field names, and returns the paginated, filtered, sorted Page. Shared by
// every in-process back-end (memory, CSV) so filter/sort/pagination
// semantics stay identical regardless of storage medium.
func ApplyQuery[T any](items []T, opts QueryOptions, accessor FieldAccessor[T]) (Page[T], error) {
	filtered := make([]T, 0, len(items))
	for _, item := range items {
		ok, err := matchesAll(item, opts.Filters, accessor)
		if err != nil {
			return Page[T]{}, err
		}
		if ok {
			filtered = append(filtered, item)
		}
	}

	if len(opts.Sorts) > 0 {
		if err := stableSort(filtered, opts.Sorts, accessor); err != nil {
			return Page[T]{}, err
		}
	}

	total := int64(len(filtered))
	paged := filtered
	if opts.Pagination != nil {
		start := opts.Pagination.Offset
		if start > len(filtered) {
			start = len(filtered)
		}
		end := len(filtered)
		if opts.Pagination.Limit > 0 && start+opts.Pagination.Limit < end {
			end = start + opts.Pagination.Limit
		}
		paged = filtered[start:end]
	}

	return NewPage(paged, total, opts), nil
}

func matchesAll[T any](item T, filters []Filter, accessor FieldAccessor[T]) (bool, error) {
	for _, f := range filters {
		ok, err := matchesOne(item, f, accessor)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func matchesOne[T any](item T, f Filter, accessor FieldAccessor[T]) (bool, error) {
	fv, found := accessor(item, f.Field)
	if !found {
		return false, &ValidationError{Message: "unknown field: " + f.Field}
	}

	switch f.Operation {
	case OpIsNull:
		return fv.Null, nil
	case OpIsNotNull:
		return !fv.Null, nil
	}

	if fv.Null {
		// A null field never equals, contains, or orders against a
		// concrete value; NotEquals is the one operation it satisfies.
		return f.Operation == OpNotEquals, nil
	}

	switch f.Operation {
	case OpEquals, OpNotEquals:
		if fv.Kind != f.Value.Kind {
			return false, &ValidationError{Message: "type mismatch on field: " + f.Field}
		}
		eq := filterValueEqual(fv, f.Value)
		if f.Operation == OpNotEquals {
			return !eq, nil
		}
		return eq, nil
	case OpContains, OpStartsWith, OpEndsWith:
		if fv.Kind != FilterValueString || f.Value.Kind != FilterValueString {
			return false, &ValidationError{Message: "CONTAINS/STARTSWITH/ENDSWITH require string fields: " + f.Field}
		}
		haystack, needle := strings.ToLower(fv.S), strings.ToLower(f.Value.S)
		switch f.Operation {
		case OpContains:
			return strings.Contains(haystack, needle), nil
		case OpStartsWith:
			return strings.HasPrefix(haystack, needle), nil
		default:
			return strings.HasSuffix(haystack, needle), nil
		}
	case OpGreaterThan, OpLessThan:
		cmp, err := compareFilterValues(fv, f.Value)
		if err != nil {
			return false, err
		}
		if f.Operation == OpGreaterThan {
			return cmp > 0, nil
		}
		return cmp < 0, nil
	default:
		return false, &ValidationError{Message: "unknown filter operation"}
	}
}

func filterValueEqual(a, b FilterValue) bool {
	switch a.Kind {
	case FilterValueInteger:
		return a.I == b.I
	case FilterValueBoolean:
		return a.B == b.B
	default:
		return a.S == b.S
	}
}

func compareFilterValues(a, b FilterValue) (int, error) {
	if a.Kind != b.Kind {
		return 0, &ValidationError{Message: "type mismatch in ordered comparison"}
	}
	switch a.Kind {
	case FilterValueInteger:
		switch {
		case a.I < b.I:
			return -1, nil
		case a.I > b.I:
			return 1, nil
		default:
			return 0, nil
		}
	case FilterValueString, FilterValueUUID:
		return strings.Compare(a.S, b.S), nil
	default:
		return 0, &ValidationError{Message: "field type does not support ordered comparison"}
	}
}

func stableSort[T any](items []T, sorts []Sort, accessor FieldAccessor[T]) error {
	var sortErr error
	sort.SliceStable(items, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		for _, s := range sorts {
			fvI, okI := accessor(items[i], s.Field)
			fvJ, okJ := accessor(items[j], s.Field)
			if !okI || !okJ {
				sortErr = &ValidationError{Message: "unknown field: " + s.Field}
				return false
			}
			cmp, err := compareAnyFilterValues(fvI, fvJ)
			if err != nil {
				sortErr = err
				return false
			}
			if cmp == 0 {
				continue
			}
			if s.Direction == Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return sortErr
}

func compareAnyFilterValues(a, b FilterValue) (int, error) {
	if a.Kind != b.Kind {
		return 0, &ValidationError{Message: "type mismatch while sorting"}
	}
	switch a.Kind {
	case FilterValueInteger:
		switch {
		case a.I < b.I:
			return -1, nil
		case a.I > b.I:
			return 1, nil
		default:
			return 0, nil
		}
	case FilterValueBoolean:
		if a.B == b.B {
			return 0, nil
		}
		if !a.B && b.B {
			return -1, nil
		}
		return 1, nil
	default:
		return strings.Compare(a.S, b.S), nil
	}
}
