// internal/dashboard/service.go
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github-dashboard/internal/cache"
	"github-dashboard/internal/model"
	"github-dashboard/internal/store"

	apperrors "github-dashboard/internal/errors"
)

// GitHubClient is the slice of the upstream adapter the core depends on.
type GitHubClient interface {
	GetAuthenticatedUser(ctx context.Context, token string) (*model.GitHubUser, error)
	ListRepositories(ctx context.Context, token string, page, perPage int, sort, visibility string) ([]model.Repository, error)
	SearchPullRequests(ctx context.Context, token, authorLogin string, page, perPage int) ([]model.PullRequest, int, error)
	GetContributionCalendar(ctx context.Context, token, username string) (*model.ContributionCalendar, error)
	ListWebhooks(ctx context.Context, token, owner, repo string) ([]model.Webhook, error)
	DeleteWebhook(ctx context.Context, token, owner, repo string, hookID int64) error
}

// Service is the dashboard core: repository reconciliation, activity
// aggregation and connection lifecycle over the store, the upstream adapter
// and the view cache. It is stateless across calls; identity arrives as an
// explicit userID on every operation.
type Service struct {
	store      store.Store
	github     GitHubClient
	cache      cache.Invalidator
	reviews    ReviewSource
	logger     *slog.Logger
	webhookURL string
	now        func() time.Time
}

// NewService creates the dashboard core. webhookURL is this deployment's
// webhook callback URL; disconnect matches upstream hooks against it verbatim.
func NewService(st store.Store, gh GitHubClient, inv cache.Invalidator, reviews ReviewSource, webhookURL string, logger *slog.Logger) *Service {
	return &Service{
		store:      st,
		github:     gh,
		cache:      inv,
		reviews:    reviews,
		logger:     logger,
		webhookURL: webhookURL,
		now:        time.Now,
	}
}

// resolveToken looks up the user's GitHub credential. A missing credential is
// a NotConnected error so callers can render a connect prompt; only store
// failures are internal.
func (s *Service) resolveToken(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", apperrors.New(apperrors.KindInvalidArgument, "user id is required")
	}
	token, err := s.store.GetGitHubToken(ctx, userID)
	if err != nil {
		return "", apperrors.Wrap(apperrors.KindInternal, "resolve github token", err)
	}
	if token == "" {
		return "", apperrors.New(apperrors.KindNotConnected, "github account not connected")
	}
	return token, nil
}

// invalidateViews drops the user's cached repository views. Cache state is
// advisory, so a failed invalidation is logged rather than failing the
// mutation that triggered it.
func (s *Service) invalidateViews(ctx context.Context, userID string) {
	if err := s.cache.InvalidateUserViews(ctx, userID); err != nil {
		s.logger.Warn("Failed to invalidate view caches", "user_id", userID, "error", err)
	}
}

// ListConnectedRepositories returns the user's connection records for the
// settings screen, newest first.
func (s *Service) ListConnectedRepositories(ctx context.Context, userID string) ([]model.ConnectedRepository, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "user id is required")
	}
	repos, err := s.store.ListConnectedRepositories(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "list connected repositories", err)
	}
	return repos, nil
}

// GetUserProfile loads the local profile record.
func (s *Service) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "user id is required")
	}
	profile, err := s.store.GetUserProfile(ctx, userID)
	if errors.Is(err, store.ErrNoRecord) {
		return nil, apperrors.New(apperrors.KindNotFoundOrForbidden, "user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "get user profile", err)
	}
	return profile, nil
}

// UpdateUserProfile updates the profile's name and/or email.
func (s *Service) UpdateUserProfile(ctx context.Context, userID string, name, email *string) (*model.UserProfile, error) {
	if userID == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "user id is required")
	}
	if name == nil && email == nil {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "nothing to update")
	}
	profile, err := s.store.UpdateUserProfile(ctx, userID, name, email)
	if errors.Is(err, store.ErrNoRecord) {
		return nil, apperrors.New(apperrors.KindNotFoundOrForbidden, "user not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "update user profile", err)
	}
	return profile, nil
}
