package application

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"tallyroom/contexts/election-core/analytics-service/ports"
)

const (
	defaultRecentLimit = 10
	defaultTopLimit    = 5
	trendWindow        = 24 * time.Hour
)

type Service struct {
	Results ports.ResultSource
	Centers ports.CenterSource
	Clock   ports.Clock
	// RecentLimit bounds the activity feed; TopLimit bounds the
	// centers-by-submissions ranking. Zero means the default.
	RecentLimit int
	TopLimit    int
	Logger      *slog.Logger
}

// ComputeSnapshot is one full aggregation pass. It reads the committed rows
// as they are right now, so concurrent invocations may produce different
// snapshots but can never produce a corrupt one.
func (s Service) ComputeSnapshot(ctx context.Context) (ports.Snapshot, error) {
	now := s.now()

	centers, err := s.Centers.ListCenters(ctx)
	if err != nil {
		return ports.Snapshot{}, err
	}
	results, err := s.Results.ListResults(ctx)
	if err != nil {
		return ports.Snapshot{}, err
	}

	snapshot := ports.Snapshot{
		TotalCenters: len(centers),
		TotalResults: len(results),
		GeneratedAt:  now,
	}

	centerNames := make(map[string]string, len(centers))
	for _, center := range centers {
		centerNames[center.CenterID] = center.Name
		if center.Active {
			snapshot.ActiveCenters++
		}
	}

	submissionsByCenter := make(map[string]int)
	for _, result := range results {
		switch result.Status {
		case "pending":
			snapshot.PendingCount++
		case "flagged":
			snapshot.FlaggedCount++
		case "verified":
			snapshot.VerifiedCount++
		case "rejected":
			snapshot.RejectedCount++
		case "archived":
			snapshot.ArchivedCount++
		}
		submissionsByCenter[result.CenterID]++
	}

	if snapshot.ActiveCenters > 0 {
		snapshot.CompletionRate = float64(snapshot.TotalResults) / float64(snapshot.ActiveCenters)
	}
	if snapshot.TotalResults > 0 {
		snapshot.VerificationRate = float64(snapshot.VerifiedCount) / float64(snapshot.TotalResults)
	}

	snapshot.RecentActivity = recentActivity(results, centerNames, s.recentLimit())
	snapshot.TopCenters = topCenters(submissionsByCenter, centerNames, s.topLimit())
	snapshot.HourlyTrend = hourlyTrend(results, now)

	return snapshot, nil
}

func recentActivity(results []ports.ResultRecord, centerNames map[string]string, limit int) []ports.ActivityItem {
	sorted := make([]ports.ResultRecord, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	items := make([]ports.ActivityItem, 0, len(sorted))
	for _, result := range sorted {
		items = append(items, ports.ActivityItem{
			ResultID:   result.ResultID,
			CenterID:   result.CenterID,
			CenterName: centerNames[result.CenterID],
			Status:     result.Status,
			Channel:    result.Channel,
			CreatedAt:  result.CreatedAt,
		})
	}
	return items
}

func topCenters(submissions map[string]int, centerNames map[string]string, limit int) []ports.CenterRank {
	ranks := make([]ports.CenterRank, 0, len(submissions))
	for centerID, count := range submissions {
		ranks = append(ranks, ports.CenterRank{
			CenterID:    centerID,
			CenterName:  centerNames[centerID],
			Submissions: count,
		})
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Submissions != ranks[j].Submissions {
			return ranks[i].Submissions > ranks[j].Submissions
		}
		return ranks[i].CenterID < ranks[j].CenterID
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// hourlyTrend buckets submissions and verifications per hour over the
// trailing 24 hours, oldest bucket first.
func hourlyTrend(results []ports.ResultRecord, now time.Time) []ports.HourBucket {
	start := now.Truncate(time.Hour).Add(-trendWindow + time.Hour)
	buckets := make([]ports.HourBucket, 0, 24)
	index := make(map[time.Time]int, 24)
	for hour := start; !hour.After(now); hour = hour.Add(time.Hour) {
		index[hour] = len(buckets)
		buckets = append(buckets, ports.HourBucket{Hour: hour})
	}

	for _, result := range results {
		if at, ok := index[result.CreatedAt.UTC().Truncate(time.Hour)]; ok {
			buckets[at].Submissions++
		}
		if result.VerifiedAt != nil {
			if at, ok := index[result.VerifiedAt.UTC().Truncate(time.Hour)]; ok {
				buckets[at].Verifications++
			}
		}
	}
	return buckets
}

func (s Service) recentLimit() int {
	if s.RecentLimit > 0 {
		return s.RecentLimit
	}
	return defaultRecentLimit
}

func (s Service) topLimit() int {
	if s.TopLimit > 0 {
		return s.TopLimit
	}
	return defaultTopLimit
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
