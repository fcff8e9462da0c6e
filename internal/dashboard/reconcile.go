// internal/dashboard/reconcile.go
package dashboard

import (
	"context"

	"github-dashboard/internal/model"

	apperrors "github-dashboard/internal/errors"
)

// FetchRepositoryPage fetches one page of the user's upstream repositories
// and marks each as connected by joining against the locally persisted
// github-id set. Ordering follows the upstream page (most recently updated
// first); pagination cursor state belongs to the caller.
func (s *Service) FetchRepositoryPage(ctx context.Context, userID string, page, perPage int) ([]model.RepositoryView, error) {
	if page < 1 || perPage < 1 || perPage > 100 {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "page must be >= 1 and perPage within 1..100")
	}

	token, err := s.resolveToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	repos, err := s.github.ListRepositories(ctx, token, page, perPage, "updated", "public")
	if err != nil {
		return nil, err
	}

	// One query for the whole set; never a lookup per repository.
	ids, err := s.store.ListConnectedGithubIDs(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "load connected repository ids", err)
	}
	connected := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		connected[id] = struct{}{}
	}

	views := make([]model.RepositoryView, 0, len(repos))
	for _, repo := range repos {
		_, ok := connected[repo.ID]
		views = append(views, model.RepositoryView{
			Repository:  repo,
			IsConnected: ok,
		})
	}
	return views, nil
}
