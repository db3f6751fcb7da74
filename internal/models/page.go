package models

import (
	"fmt"
	"math"
	"strings"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// SortableFields lists the employee fields a page may be ordered by.
var SortableFields = map[string]struct{}{
	"id":        {},
	"firstName": {},
	"lastName":  {},
	"email":     {},
	"cellphone": {},
}

// Sort is a single ordering key.
type Sort struct {
	Field     string
	Direction Direction
}

// PageRequest selects one page of employees. Page is 0-based.
type PageRequest struct {
	Page int
	Size int
	Sort []Sort
}

// Offset is the number of records that precede the requested page.
// It saturates at math.MaxInt instead of overflowing.
func (p PageRequest) Offset() int {
	if p.OutOfRange() {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// OutOfRange reports whether the page starts beyond any addressable record.
func (p PageRequest) OutOfRange() bool {
	return p.Size > 0 && p.Page > math.MaxInt/p.Size
}

// ParseSort parses a sort expression in the form "field" or "field,asc|desc".
func ParseSort(raw string) (Sort, error) {
	parts := strings.Split(raw, ",")
	field := strings.TrimSpace(parts[0])
	if _, ok := SortableFields[field]; !ok {
		return Sort{}, Invalid(fmt.Sprintf("unsupported sort field: '%s'", field))
	}

	srt := Sort{Field: field, Direction: Asc}
	if len(parts) > 1 {
		switch strings.ToUpper(strings.TrimSpace(parts[1])) {
		case "", string(Asc):
		case string(Desc):
			srt.Direction = Desc
		default:
			return Sort{}, Invalid(fmt.Sprintf("unsupported sort direction: '%s'", parts[1]))
		}
	}

	return srt, nil
}
