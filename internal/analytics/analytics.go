package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"health-advisor/internal/storage"
)

// DailyStats summarizes one day of advice traffic.
type DailyStats struct {
	Date              string         `json:"date"`
	TotalInteractions int            `json:"total_interactions"`
	UniqueUsers       int            `json:"unique_users"`
	UserStats         map[string]int `json:"user_stats"`
}

// AnalyzeDay counts the interactions recorded on day, in day's location.
func AnalyzeDay(snap storage.Snapshot, day time.Time) *DailyStats {
	// Normalize to start of day
	startOfDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		UserStats: make(map[string]int),
	}

	for userID, items := range snap {
		for _, it := range items {
			if it.Timestamp.Before(startOfDay) || !it.Timestamp.Before(endOfDay) {
				continue
			}
			stats.TotalInteractions++
			stats.UserStats[userID]++
		}
	}

	stats.UniqueUsers = len(stats.UserStats)
	return stats
}

// Summary renders a human readable report, users ordered by activity.
func (ds *DailyStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Health advice usage for %s: %d interactions from %d users", ds.Date, ds.TotalInteractions, ds.UniqueUsers)

	users := make([]string, 0, len(ds.UserStats))
	for u := range ds.UserStats {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if ds.UserStats[users[i]] != ds.UserStats[users[j]] {
			return ds.UserStats[users[i]] > ds.UserStats[users[j]]
		}
		return users[i] < users[j]
	})
	for _, u := range users {
		fmt.Fprintf(&b, "\n- %s: %d", u, ds.UserStats[u])
	}
	return b.String()
}
