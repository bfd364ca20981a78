package client

import (
	"fmt"
	"slices"
	"strings"
)

type SortField string

const (
	SortByName SortField = "name"
	SortByDate SortField = "date"
)

type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortState is how a contact list is presented. The zero value is not
// meaningful; start from DefaultSort.
type SortState struct {
	Field SortField
	Order SortOrder
}

// DefaultSort shows the newest contacts first.
func DefaultSort() SortState {
	return SortState{Field: SortByDate, Order: Descending}
}

// Toggle selects field. Selecting the active field flips the order; a new
// field starts ascending.
func (s SortState) Toggle(field SortField) SortState {
	if s.Field == field {
		if s.Order == Ascending {
			return SortState{Field: field, Order: Descending}
		}
		return SortState{Field: field, Order: Ascending}
	}
	return SortState{Field: field, Order: Ascending}
}

// Apply returns a sorted copy of contacts. Ties keep their input order.
func (s SortState) Apply(contacts []Contact) []Contact {
	out := slices.Clone(contacts)
	slices.SortStableFunc(out, func(a, b Contact) int {
		var c int
		switch s.Field {
		case SortByName:
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		default:
			c = a.CreatedAt.Compare(b.CreatedAt)
		}
		if s.Order == Descending {
			return -c
		}
		return c
	})
	return out
}

// ParseSort builds a SortState from user input such as CLI flags.
func ParseSort(field, order string) (SortState, error) {
	s := DefaultSort()
	switch SortField(strings.ToLower(field)) {
	case "":
	case SortByName:
		s.Field = SortByName
	case SortByDate:
		s.Field = SortByDate
	default:
		return s, fmt.Errorf("unknown sort field %q (want name or date)", field)
	}
	switch SortOrder(strings.ToLower(order)) {
	case "":
		if field != "" && s.Field == SortByName {
			s.Order = Ascending
		}
	case Ascending:
		s.Order = Ascending
	case Descending:
		s.Order = Descending
	default:
		return s, fmt.Errorf("unknown sort order %q (want asc or desc)", order)
	}
	return s, nil
}
