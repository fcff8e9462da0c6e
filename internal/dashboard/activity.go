// internal/dashboard/activity.go
package dashboard

import (
	"context"
	"math"
	"time"

	"github-dashboard/internal/model"

	apperrors "github-dashboard/internal/errors"
)

// activityWindowMonths is the fixed trailing window of the monthly chart:
// the current calendar month and the five before it.
const activityWindowMonths = 6

// prSearchPageSize caps how many authored pull requests feed the buckets.
const prSearchPageSize = 100

type monthCounts struct {
	contributions int
	reviews       int
	pullRequests  int
}

// BuildMonthlyActivity aggregates the user's contribution calendar, authored
// pull requests and review activity into the trailing 6 calendar months.
// A user without a linked account gets a NotConnected error; a linked user
// with an empty calendar gets an empty slice, which callers must treat as
// "no data". Everything else that goes wrong mid-pipeline collapses into a
// single ActivityAggregationFailed error with no partial buckets.
func (s *Service) BuildMonthlyActivity(ctx context.Context, userID string) ([]model.MonthActivity, error) {
	token, err := s.resolveToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.github.GetAuthenticatedUser(ctx, token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindActivityAggregationFailed, "resolve github user", err)
	}

	calendar, err := s.github.GetContributionCalendar(ctx, token, user.Login)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindActivityAggregationFailed, "fetch contribution calendar", err)
	}
	if calendar == nil || len(calendar.Weeks) == 0 {
		return []model.MonthActivity{}, nil
	}

	keys, buckets := s.seedMonthBuckets()

	for _, week := range calendar.Weeks {
		for _, day := range week.ContributionDays {
			if b, ok := buckets[monthKey(day.Date)]; ok {
				b.contributions += day.ContributionCount
			}
		}
	}

	prs, _, err := s.github.SearchPullRequests(ctx, token, user.Login, 1, prSearchPageSize)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindActivityAggregationFailed, "fetch authored pull requests", err)
	}
	for _, pr := range prs {
		if b, ok := buckets[monthKey(pr.CreatedAt)]; ok {
			b.pullRequests++
		}
	}

	reviewTimes, err := s.reviews.ReviewTimes(ctx, user.Login)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindActivityAggregationFailed, "fetch review activity", err)
	}
	for _, reviewed := range reviewTimes {
		if b, ok := buckets[monthKey(reviewed)]; ok {
			b.reviews++
		}
	}

	out := make([]model.MonthActivity, 0, len(keys))
	for _, key := range keys {
		b := buckets[key.key]
		out = append(out, model.MonthActivity{
			Month:         key.label,
			Contributions: b.contributions,
			Reviews:       b.reviews,
			PullRequests:  b.pullRequests,
		})
	}
	return out, nil
}

type bucketKey struct {
	key   string
	label string
}

// seedMonthBuckets pre-seeds the 6 trailing month buckets at zero, oldest
// first, independent of how far back any calendar data goes.
func (s *Service) seedMonthBuckets() ([]bucketKey, map[string]*monthCounts) {
	now := s.now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	keys := make([]bucketKey, 0, activityWindowMonths)
	buckets := make(map[string]*monthCounts, activityWindowMonths)
	for i := activityWindowMonths - 1; i >= 0; i-- {
		month := current.AddDate(0, -i, 0)
		keys = append(keys, bucketKey{
			key:   monthKey(month),
			label: month.Format("January 2006"),
		})
		buckets[monthKey(month)] = &monthCounts{}
	}
	return keys, buckets
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// SummarizeActivity derives the headline statistics from an already-built
// bucket sequence: latest-month values, integer-rounded 6-month means and
// 6-month totals. It never refetches.
func SummarizeActivity(buckets []model.MonthActivity) model.ActivitySummary {
	var summary model.ActivitySummary
	if len(buckets) == 0 {
		return summary
	}

	for _, b := range buckets {
		summary.Contributions.Total += b.Contributions
		summary.Reviews.Total += b.Reviews
		summary.PullRequests.Total += b.PullRequests
	}

	latest := buckets[len(buckets)-1]
	summary.Contributions.Latest = latest.Contributions
	summary.Reviews.Latest = latest.Reviews
	summary.PullRequests.Latest = latest.PullRequests

	n := float64(len(buckets))
	summary.Contributions.Average = int(math.Round(float64(summary.Contributions.Total) / n))
	summary.Reviews.Average = int(math.Round(float64(summary.Reviews.Total) / n))
	summary.PullRequests.Average = int(math.Round(float64(summary.PullRequests.Total) / n))

	return summary
}

// DashboardStats returns the landing-page totals: lifetime calendar
// contributions, authored pull requests and connected repositories.
func (s *Service) DashboardStats(ctx context.Context, userID string) (*model.DashboardStats, error) {
	token, err := s.resolveToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.github.GetAuthenticatedUser(ctx, token)
	if err != nil {
		return nil, err
	}

	calendar, err := s.github.GetContributionCalendar(ctx, token, user.Login)
	if err != nil {
		return nil, err
	}

	_, prTotal, err := s.github.SearchPullRequests(ctx, token, user.Login, 1, 1)
	if err != nil {
		return nil, err
	}

	connected, err := s.store.CountConnectedRepositories(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "count connected repositories", err)
	}

	stats := &model.DashboardStats{
		TotalPullRequests: prTotal,
		ConnectedRepos:    connected,
	}
	if calendar != nil {
		stats.TotalContributions = calendar.TotalContributions
	}
	return stats, nil
}
