package record

import (
	"sort"
	"strings"
	"time"
)

// Matches reports whether a record satisfies every predicate of the query.
// Top-level conditions and condition groups combine with logical AND, the
// store's contract for a fetch.
func Matches(r Record, q Query) bool {
	for _, c := range q.Where {
		if !matchCondition(r, c) {
			return false
		}
	}
	for _, g := range q.WhereGroups {
		if !matchGroup(r, g) {
			return false
		}
	}
	return true
}

func matchGroup(r Record, g ConditionGroup) bool {
	if len(g.SubGroups) == 0 {
		return true
	}
	or := strings.EqualFold(g.Operator, GroupOr)
	for _, sg := range g.SubGroups {
		ok := matchSubGroup(r, sg)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func matchSubGroup(r Record, sg SubGroup) bool {
	for _, c := range sg.Conditions {
		if !matchCondition(r, c) {
			return false
		}
	}
	return true
}

func matchCondition(r Record, c Condition) bool {
	if len(c.Values) == 0 {
		return false
	}
	have := r[c.FieldName]
	want := c.Values[0]
	switch c.Operator {
	case OpEqualTo:
		return equalValues(have, want)
	case OpLessThan:
		cmp, ok := compareValues(have, want)
		return ok && cmp < 0
	case OpLessThanOrEqualTo:
		cmp, ok := compareValues(have, want)
		return ok && cmp <= 0
	case OpContains:
		return strings.Contains(strings.ToLower(AsString(have)), strings.ToLower(AsString(want)))
	default:
		return false
	}
}

func equalValues(a, b any) bool {
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			return af == bf
		}
	}
	if ab, ok := AsBool(a); ok {
		if bb, ok := AsBool(b); ok {
			return ab == bb
		}
	}
	return strings.EqualFold(AsString(a), AsString(b))
}

// compareValues orders two record values. Numbers compare numerically.
// ISO-8601 values compare as instants, except that a bare calendar date on
// either side forces a day-level comparison; that is what gives due-date
// predicates their calendar-day semantics. Everything else compares as
// strings.
func compareValues(a, b any) (int, bool) {
	if af, ok := AsFloat(a); ok {
		if bf, ok := AsFloat(b); ok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
	}
	as, bs := AsString(a), AsString(b)
	if at, ok := AsTime(as); ok {
		if bt, ok := AsTime(bs); ok {
			if dateOnly(as) || dateOnly(bs) {
				at = day(at)
				bt = day(bt)
			}
			return at.Compare(bt), true
		}
	}
	if as == "" || bs == "" {
		return 0, false
	}
	return strings.Compare(as, bs), true
}

func day(ts time.Time) time.Time {
	y, m, d := ts.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ApplySort orders records in place per the query's sort specification.
// The sort is stable; records comparing equal keep their input order.
func ApplySort(recs []Record, orderBy []SortSpec) {
	if len(orderBy) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, spec := range orderBy {
			cmp, ok := compareValues(recs[i][spec.FieldName], recs[j][spec.FieldName])
			if !ok || cmp == 0 {
				continue
			}
			if strings.EqualFold(spec.SortType, SortDesc) {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}
