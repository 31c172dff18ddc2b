package sqlite

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mesh-intelligence/harvest/pkg/types"
)

// whereClause accumulates AND-ed conditions and their arguments for a Fetch.
type whereClause struct {
	conditions []string
	args       []any
}

func (w *whereClause) add(cond string, args ...any) {
	w.conditions = append(w.conditions, cond)
	w.args = append(w.args, args...)
}

func (w *whereClause) String() string {
	if len(w.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conditions, " AND ")
}

// filterString returns the string value under key. ok is false when the key
// is absent or the value is empty.
func filterString(filter types.Filter, key string) (value string, ok bool, err error) {
	v, present := filter[key]
	if !present {
		return "", false, nil
	}
	// Accept named string types such as types.AccountStatus.
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.String {
		return "", false, types.ErrInvalidFilter
	}
	s := rv.String()
	return s, s != "", nil
}

// filterDate returns the date under key. Accepts a types.Date or a
// YYYY-MM-DD string.
func filterDate(filter types.Filter, key string) (types.Date, bool, error) {
	v, present := filter[key]
	if !present {
		return types.Date{}, false, nil
	}
	switch d := v.(type) {
	case types.Date:
		return d, !d.IsZero(), nil
	case string:
		if d == "" {
			return types.Date{}, false, nil
		}
		parsed, err := types.ParseDate(d)
		if err != nil {
			return types.Date{}, false, types.ErrInvalidFilter
		}
		return parsed, true, nil
	default:
		return types.Date{}, false, types.ErrInvalidFilter
	}
}

// filterInt returns the integer under key. JSON-decoded numbers arrive as
// float64 and are accepted when they hold a whole number.
func filterInt(filter types.Filter, key string) (int, bool, error) {
	v, present := filter[key]
	if !present {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		if n != float64(int(n)) {
			return 0, false, types.ErrInvalidFilter
		}
		return int(n), true, nil
	default:
		return 0, false, types.ErrInvalidFilter
	}
}

// limitOffset appends LIMIT and OFFSET clauses from the filter.
func limitOffset(filter types.Filter) (string, error) {
	var clause string
	limit, ok, err := filterInt(filter, "limit")
	if err != nil {
		return "", err
	}
	if ok && limit > 0 {
		clause += fmt.Sprintf(" LIMIT %d", limit)
	}
	offset, ok, err := filterInt(filter, "offset")
	if err != nil {
		return "", err
	}
	if ok && offset > 0 {
		if limit <= 0 {
			clause += " LIMIT -1"
		}
		clause += fmt.Sprintf(" OFFSET %d", offset)
	}
	return clause, nil
}
