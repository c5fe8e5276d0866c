// Package model defines the scoring and leaderboard data structures.
package model

import (
	"sort"
	"time"
)

// LeaderboardEntry is one row of a contest leaderboard. The JSON shape is
// what viewers receive both on snapshot fetches and broadcasts.
type LeaderboardEntry struct {
	Rank             int       `json:"rank"`
	UserID           string    `json:"user_id"`
	TotalScore       float64   `json:"total_score"`
	TotalSubmissions int       `json:"total_submissions"`
	TotalAccepted    int       `json:"total_accepted"`
	LastSubmissionAt time.Time `json:"last_submission_at"`
}

// StandingDelta is the cumulative contribution of one judged submission
// to a user's contest standing.
type StandingDelta struct {
	ContestID        string
	UserID           string
	Score            float64
	Accepted         bool
	LastSubmissionAt time.Time
}

// RankEntries sorts entries by total score descending with the earlier
// last submission breaking ties, then assigns contiguous ranks starting
// at 1. The ordering is total for any input, so equal standings always
// rank the same way.
func RankEntries(entries []LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		if !entries[i].LastSubmissionAt.Equal(entries[j].LastSubmissionAt) {
			return entries[i].LastSubmissionAt.Before(entries[j].LastSubmissionAt)
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}
