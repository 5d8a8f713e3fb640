package nbastats

import (
	"strconv"
	"strings"
)

// statsEnvelope is the resultSets framing every stats.nba.com endpoint
// uses. A few endpoints return a single resultSet object instead of the
// array; both shapes are supported.
type statsEnvelope struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
	ResultSet  *resultSet  `json:"resultSet"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

func (e statsEnvelope) findSet(name string) (resultSet, bool) {
	for _, set := range e.ResultSets {
		if strings.EqualFold(set.Name, name) {
			return set, true
		}
	}
	if e.ResultSet != nil && (name == "" || strings.EqualFold(e.ResultSet.Name, name)) {
		return *e.ResultSet, true
	}
	return resultSet{}, false
}

// rows pairs every row with the header index so columns can be read by
// name regardless of position.
func (s resultSet) rows() []statsRow {
	index := make(map[string]int, len(s.Headers))
	for i, header := range s.Headers {
		index[strings.ToUpper(strings.TrimSpace(header))] = i
	}

	out := make([]statsRow, 0, len(s.RowSet))
	for _, values := range s.RowSet {
		out = append(out, statsRow{index: index, values: values})
	}
	return out
}

type statsRow struct {
	index  map[string]int
	values []any
}

func (r statsRow) value(column string) (any, bool) {
	i, ok := r.index[strings.ToUpper(column)]
	if !ok || i < 0 || i >= len(r.values) {
		return nil, false
	}
	return r.values[i], r.values[i] != nil
}

func (r statsRow) str(column string) string {
	v, ok := r.value(column)
	if !ok {
		return ""
	}
	switch value := v.(type) {
	case string:
		return strings.TrimSpace(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return ""
	}
}

func (r statsRow) intVal(column string) int {
	v, ok := r.value(column)
	if !ok {
		return 0
	}
	switch value := v.(type) {
	case float64:
		return int(value)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (r statsRow) int64Val(column string) int64 {
	v, ok := r.value(column)
	if !ok {
		return 0
	}
	switch value := v.(type) {
	case float64:
		return int64(value)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (r statsRow) floatVal(column string) float64 {
	v, ok := r.value(column)
	if !ok {
		return 0
	}
	switch value := v.(type) {
	case float64:
		return value
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

func (r statsRow) hasInt(column string) (int, bool) {
	v, ok := r.value(column)
	if !ok {
		return 0, false
	}
	switch value := v.(type) {
	case float64:
		return int(value), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
