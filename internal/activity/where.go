package activity

import (
	"fmt"
	"strings"
	"time"
)

// buildActivityWhere renders the filter as a WHERE clause over the alias "a",
// numbering placeholders from startArg.
func buildActivityWhere(f Filter, startArg int) (string, []any) {
	var conditions []string
	var args []any
	argNum := startArg

	if f.ActorID != nil {
		conditions = append(conditions, fmt.Sprintf("a.user_id = $%d", argNum))
		args = append(args, *f.ActorID)
		argNum++
	}
	if f.Kind != nil {
		conditions = append(conditions, fmt.Sprintf("a.activity_type = $%d", argNum))
		args = append(args, string(*f.Kind))
		argNum++
	}

	rangeClause, rangeArgs := buildRangeWhere(f.From, f.To, argNum)
	if rangeClause != "" {
		conditions = append(conditions, rangeClause)
		args = append(args, rangeArgs...)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

// buildRangeWhere returns the bare created_at conditions, without WHERE.
func buildRangeWhere(from, to *time.Time, startArg int) (string, []any) {
	var conditions []string
	var args []any
	argNum := startArg

	if from != nil {
		conditions = append(conditions, fmt.Sprintf("a.created_at >= $%d", argNum))
		args = append(args, *from)
		argNum++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("a.created_at <= $%d", argNum))
		args = append(args, *to)
	}
	return strings.Join(conditions, " AND "), args
}

func whereRange(from, to *time.Time, startArg int) (string, []any) {
	clause, args := buildRangeWhere(from, to, startArg)
	if clause == "" {
		return "", nil
	}
	return "WHERE " + clause, args
}
