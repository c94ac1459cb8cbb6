package executor

import "regexp"

var (
	groupByPattern   = regexp.MustCompile(`(?i)\bgroup\s+by\b`)
	aggregatePattern = regexp.MustCompile(`(?i)\b(count|sum|avg|min|max|stddev|variance)\s*\(`)
)

// HasAggregation reports whether a statement already aggregates its result,
// via a GROUP BY clause or a call to a known aggregate function. Textual
// heuristic with word-boundary matching: identifiers that merely contain an
// aggregate name (account_id, summary) do not trigger it. A window function
// such as COUNT(*) OVER (...) still counts as aggregating.
func HasAggregation(sqlText string) bool {
	if groupByPattern.MatchString(sqlText) {
		return true
	}
	return aggregatePattern.MatchString(sqlText)
}
