// internal/dashboard/mocks_test.go
package dashboard

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github-dashboard/internal/model"
)

// MockStore is a mock of the store.Store interface.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetGitHubToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ListConnectedGithubIDs(ctx context.Context, userID string) ([]int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockStore) ListConnectedRepositories(ctx context.Context, userID string) ([]model.ConnectedRepository, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.ConnectedRepository), args.Error(1)
}

func (m *MockStore) CountConnectedRepositories(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) GetConnectedRepository(ctx context.Context, repoID, userID string) (*model.ConnectedRepository, error) {
	args := m.Called(ctx, repoID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ConnectedRepository), args.Error(1)
}

func (m *MockStore) DeleteConnectedRepository(ctx context.Context, repoID, userID string) error {
	args := m.Called(ctx, repoID, userID)
	return args.Error(0)
}

func (m *MockStore) DeleteAllConnectedRepositories(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func (m *MockStore) UpdateUserProfile(ctx context.Context, userID string, name, email *string) (*model.UserProfile, error) {
	args := m.Called(ctx, userID, name, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

// MockGitHub is a mock of the GitHubClient interface.
type MockGitHub struct {
	mock.Mock
}

func (m *MockGitHub) GetAuthenticatedUser(ctx context.Context, token string) (*model.GitHubUser, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GitHubUser), args.Error(1)
}

func (m *MockGitHub) ListRepositories(ctx context.Context, token string, page, perPage int, sort, visibility string) ([]model.Repository, error) {
	args := m.Called(ctx, token, page, perPage, sort, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Repository), args.Error(1)
}

func (m *MockGitHub) SearchPullRequests(ctx context.Context, token, authorLogin string, page, perPage int) ([]model.PullRequest, int, error) {
	args := m.Called(ctx, token, authorLogin, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]model.PullRequest), args.Int(1), args.Error(2)
}

func (m *MockGitHub) GetContributionCalendar(ctx context.Context, token, username string) (*model.ContributionCalendar, error) {
	args := m.Called(ctx, token, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ContributionCalendar), args.Error(1)
}

func (m *MockGitHub) ListWebhooks(ctx context.Context, token, owner, repo string) ([]model.Webhook, error) {
	args := m.Called(ctx, token, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Webhook), args.Error(1)
}

func (m *MockGitHub) DeleteWebhook(ctx context.Context, token, owner, repo string, hookID int64) error {
	args := m.Called(ctx, token, owner, repo, hookID)
	return args.Error(0)
}

// MockInvalidator is a mock of the cache.Invalidator interface.
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateUserViews(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// fixedReviews is a deterministic ReviewSource for tests; the production stub
// is synthetic and never asserted on.
type fixedReviews struct {
	times []time.Time
	err   error
}

func (f fixedReviews) ReviewTimes(_ context.Context, _ string) ([]time.Time, error) {
	return f.times, f.err
}

// newTestService wires a service over mocks with a fixed clock.
func newTestService(t *testing.T, st *MockStore, gh *MockGitHub, inv *MockInvalidator, reviews ReviewSource, now time.Time) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc := NewService(st, gh, inv, reviews, "https://dash.example.com/api/webhooks/github", logger)
	svc.now = func() time.Time { return now }
	return svc
}
