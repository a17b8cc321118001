// Package scoring computes a repository's abandonment status and maintenance
// score from commit recency and open-issue count.
//
// The formula is a deliberately simple heuristic, not a validated model. It is
// kept exactly as specified so that re-importing the same repository with the
// same inputs always produces the same numbers.
package scoring

import (
	"math"
	"time"
)

// NoCommitSentinel is the days-since-last-commit value used when a repository
// has no reachable commit date. It is large enough to always classify as
// abandoned and to drive the maintenance score to zero.
const NoCommitSentinel = 999

// Thresholds for abandonment classification, in days since the last commit.
const (
	abandonedAfterDays = 365
	atRiskAfterDays    = 180
)

// DaysSinceLastCommit returns the whole number of days between lastCommit and
// now, or NoCommitSentinel when no commit date is available.
func DaysSinceLastCommit(now time.Time, lastCommit *time.Time) int {
	if lastCommit == nil {
		return NoCommitSentinel
	}
	return int(math.Floor(now.Sub(*lastCommit).Hours() / 24))
}

// Status classifies a repository from its days-since-last-commit:
// abandoned after a year of silence, at-risk after six months, active
// otherwise.
func Status(days int) string {
	switch {
	case days > abandonedAfterDays:
		return "abandoned"
	case days > atRiskAfterDays:
		return "at-risk"
	default:
		return "active"
	}
}

// MaintenanceScore is a 0-100 heuristic for how easy a repository would be to
// resume maintaining; higher is easier. Every ten days of silence and every
// ten open issues each cost one point, clamped to [0, 100] and rounded to the
// nearest integer.
func MaintenanceScore(days, openIssues int) int {
	score := 100 - float64(days)/10 - float64(openIssues)/10
	score = math.Max(0, math.Min(100, score))
	return int(math.Round(score))
}
