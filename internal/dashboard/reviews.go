// internal/dashboard/reviews.go
package dashboard

import (
	"context"
	"math/rand"
	"time"
)

// ReviewSource supplies review-activity timestamps for a user. A genuine
// review-events feed (e.g. pull request review submissions) implements this;
// until one exists the service is wired with StubReviewSource.
type ReviewSource interface {
	ReviewTimes(ctx context.Context, login string) ([]time.Time, error)
}

// StubReviewSource is a placeholder standing in for a real review-history
// source. It emits synthetic timestamps spread over the trailing window and
// its output must never be treated as ground truth; it exists so the monthly
// chart has a populated review series until the real feed lands.
type StubReviewSource struct {
	rng        *rand.Rand
	now        func() time.Time
	count      int
	windowDays int
}

// NewStubReviewSource creates a stub seeded for reproducibility.
func NewStubReviewSource(seed int64) *StubReviewSource {
	return &StubReviewSource{
		rng:        rand.New(rand.NewSource(seed)),
		now:        time.Now,
		count:      45,
		windowDays: 180,
	}
}

// ReviewTimes returns synthetic review timestamps within the trailing window.
func (s *StubReviewSource) ReviewTimes(_ context.Context, _ string) ([]time.Time, error) {
	now := s.now()
	times := make([]time.Time, 0, s.count)
	for i := 0; i < s.count; i++ {
		daysBack := s.rng.Intn(s.windowDays)
		times = append(times, now.AddDate(0, 0, -daysBack))
	}
	return times, nil
}

// NoReviewSource reports no review activity at all. Deployments that prefer
// an honest empty series over synthetic data wire this instead of the stub.
type NoReviewSource struct{}

// ReviewTimes returns no timestamps.
func (NoReviewSource) ReviewTimes(_ context.Context, _ string) ([]time.Time, error) {
	return nil, nil
}
