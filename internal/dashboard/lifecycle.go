// internal/dashboard/lifecycle.go
package dashboard

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github-dashboard/internal/model"
	"github-dashboard/internal/store"

	apperrors "github-dashboard/internal/errors"
)

// webhookDeleteConcurrency bounds the disconnect-all fan-out.
const webhookDeleteConcurrency = 5

// DisconnectRepository removes one connected repository: it tears down the
// deployment's webhook upstream (best effort) and deletes the local record.
// Local consistency wins: a failed upstream delete is logged and disconnection
// proceeds, since the hook may already be gone or the credential revoked.
func (s *Service) DisconnectRepository(ctx context.Context, userID, repoID string) (model.DisconnectResult, error) {
	if repoID == "" {
		return model.DisconnectResult{}, apperrors.New(apperrors.KindInvalidArgument, "repository id is required")
	}

	token, err := s.resolveToken(ctx, userID)
	if err != nil {
		return model.DisconnectResult{}, err
	}

	// Scoped to (id, userID): a missing record and a foreign record are the
	// same answer, so nothing leaks about other users' data.
	repo, err := s.store.GetConnectedRepository(ctx, repoID, userID)
	if errors.Is(err, store.ErrNoRecord) {
		return model.DisconnectResult{}, apperrors.New(apperrors.KindNotFoundOrForbidden, "repository not found or not authorized")
	}
	if err != nil {
		return model.DisconnectResult{}, apperrors.Wrap(apperrors.KindInternal, "load connected repository", err)
	}

	if err := s.deleteRepoWebhook(ctx, token, repo.Owner, repo.Name); err != nil {
		s.logger.Warn("Webhook teardown failed, proceeding with local disconnect",
			"owner", repo.Owner, "repo", repo.Name, "error", err)
	}

	if err := s.store.DeleteConnectedRepository(ctx, repoID, userID); err != nil {
		if errors.Is(err, store.ErrNoRecord) {
			// Lost a race with another disconnect; the record is gone either way.
			return model.DisconnectResult{}, apperrors.New(apperrors.KindNotFoundOrForbidden, "repository not found or not authorized")
		}
		return model.DisconnectResult{}, apperrors.Wrap(apperrors.KindInternal, "delete connected repository", err)
	}

	s.invalidateViews(ctx, userID)
	s.logger.Info("Repository disconnected", "user_id", userID, "owner", repo.Owner, "repo", repo.Name)
	return model.DisconnectResult{Success: true, Message: "repository disconnected"}, nil
}

// DisconnectAllRepositories removes every connected repository for the user.
// Webhook deletions target disjoint upstream resources, so they fan out
// concurrently; the batch then deletes all local rows regardless of how many
// upstream deletions succeeded.
func (s *Service) DisconnectAllRepositories(ctx context.Context, userID string) (model.DisconnectResult, error) {
	token, err := s.resolveToken(ctx, userID)
	if err != nil {
		return model.DisconnectResult{}, err
	}

	repos, err := s.store.ListConnectedRepositories(ctx, userID)
	if err != nil {
		return model.DisconnectResult{}, apperrors.Wrap(apperrors.KindInternal, "list connected repositories", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(webhookDeleteConcurrency)
	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			if err := s.deleteRepoWebhook(gctx, token, repo.Owner, repo.Name); err != nil {
				s.logger.Warn("Webhook teardown failed, proceeding with local disconnect",
					"owner", repo.Owner, "repo", repo.Name, "error", err)
			}
			return nil
		})
	}
	// Join before touching local state; per-task failures were already logged.
	_ = g.Wait()

	deleted, err := s.store.DeleteAllConnectedRepositories(ctx, userID)
	if err != nil {
		return model.DisconnectResult{}, apperrors.Wrap(apperrors.KindInternal, "delete connected repositories", err)
	}

	s.invalidateViews(ctx, userID)
	s.logger.Info("All repositories disconnected", "user_id", userID, "count", deleted)
	return model.DisconnectResult{Success: true, Message: "all repositories disconnected"}, nil
}

// deleteRepoWebhook locates the hook whose callback URL matches this
// deployment and deletes it. Zero matching hooks is already-satisfied, not an
// error, which makes re-disconnect idempotent.
func (s *Service) deleteRepoWebhook(ctx context.Context, token, owner, repo string) error {
	hooks, err := s.github.ListWebhooks(ctx, token, owner, repo)
	if err != nil {
		return err
	}
	for _, hook := range hooks {
		if hook.URL != s.webhookURL {
			continue
		}
		if err := s.github.DeleteWebhook(ctx, token, owner, repo, hook.ID); err != nil {
			return err
		}
		s.logger.Debug("Deleted webhook", "owner", owner, "repo", repo, "hook_id", hook.ID)
		return nil
	}
	s.logger.Debug("No matching webhook found", "owner", owner, "repo", repo)
	return nil
}
