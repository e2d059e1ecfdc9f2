package core

import "strings"

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// Direction returns 1 for ascending and -1 for descending orderings.
func (ord DBOrdering) Direction() int {
	if ord.Ascending {
		return 1
	}
	return -1
}

// CleanOrderings drops the orderings whose field is not in allowed and
// falls back to def when nothing is left.
func CleanOrderings(orderings []DBOrdering, allowed []string, def ...DBOrdering) []DBOrdering {
	cleaned := make([]DBOrdering, 0, len(orderings))
	seen := make(map[string]bool, len(orderings))
	for _, ord := range orderings {
		for _, fld := range allowed {
			if strings.EqualFold(ord.Field, fld) && !seen[fld] {
				seen[fld] = true
				cleaned = append(cleaned, DBOrdering{Field: fld, Ascending: ord.Ascending})
				break
			}
		}
	}
	if len(cleaned) == 0 {
		return def
	}
	return cleaned
}
