// internal/dashboard/lifecycle_test.go
package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github-dashboard/internal/model"
	"github-dashboard/internal/store"

	apperrors "github-dashboard/internal/errors"
)

const callbackURL = "https://dash.example.com/api/webhooks/github"

func connectedRepo(id string, githubID int64, owner, name string) *model.ConnectedRepository {
	return &model.ConnectedRepository{
		ID:       id,
		UserID:   "u1",
		GithubID: githubID,
		Name:     name,
		Owner:    owner,
	}
}

func TestService_DisconnectRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the matching webhook, the record and the cached views", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		inv := new(MockInvalidator)
		svc := newTestService(t, st, gh, inv, fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("tok", nil)
		st.On("GetConnectedRepository", ctx, "r1", "u1").
			Return(connectedRepo("r1", 10, "octocat", "alpha"), nil)
		gh.On("ListWebhooks", ctx, "tok", "octocat", "alpha").Return([]model.Webhook{
			{ID: 300, URL: "https://other.example.com/hook"},
			{ID: 301, URL: callbackURL},
		}, nil)
		gh.On("DeleteWebhook", ctx, "tok", "octocat", "alpha", int64(301)).Return(nil)
		st.On("DeleteConnectedRepository", ctx, "r1", "u1").Return(nil)
		inv.On("InvalidateUserViews", ctx, "u1").Return(nil)

		result, err := svc.DisconnectRepository(ctx, "u1", "r1")

		require.NoError(t, err)
		assert.True(t, result.Success)
		st.AssertExpectations(t)
		gh.AssertExpectations(t)
		inv.AssertExpectations(t)
	})

	t.Run("zero matching hooks is already satisfied", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		inv := new(MockInvalidator)
		svc := newTestService(t, st, gh, inv, fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("tok", nil)
		st.On("GetConnectedRepository", ctx, "r1", "u1").
			Return(connectedRepo("r1", 10, "octocat", "alpha"), nil)
		gh.On("ListWebhooks", ctx, "tok", "octocat", "alpha").Return([]model.Webhook{}, nil)
		st.On("DeleteConnectedRepository", ctx, "r1", "u1").Return(nil)
		inv.On("InvalidateUserViews", ctx, "u1").Return(nil)

		result, err := svc.DisconnectRepository(ctx, "u1", "r1")

		require.NoError(t, err)
		assert.True(t, result.Success)
		gh.AssertNotCalled(t, "DeleteWebhook")
	})

	t.Run("local disconnect proceeds when webhook teardown fails", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		inv := new(MockInvalidator)
		svc := newTestService(t, st, gh, inv, fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("tok", nil)
		st.On("GetConnectedRepository", ctx, "r1", "u1").
			Return(connectedRepo("r1", 10, "octocat", "alpha"), nil)
		gh.On("ListWebhooks", ctx, "tok", "octocat", "alpha").
			Return(nil, apperrors.New(apperrors.KindUpstreamFetch, "list webhooks"))
		st.On("DeleteConnectedRepository", ctx, "r1", "u1").Return(nil)
		inv.On("InvalidateUserViews", ctx, "u1").Return(nil)

		result, err := svc.DisconnectRepository(ctx, "u1", "r1")

		require.NoError(t, err)
		assert.True(t, result.Success)
		st.AssertExpectations(t)
	})

	t.Run("missing or foreign record mutates nothing", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		inv := new(MockInvalidator)
		svc := newTestService(t, st, gh, inv, fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("tok", nil)
		st.On("GetConnectedRepository", ctx, "r-foreign", "u1").Return(nil, store.ErrNoRecord)

		_, err := svc.DisconnectRepository(ctx, "u1", "r-foreign")

		require.Error(t, err)
		assert.True(t, apperrors.IsNotFoundOrForbidden(err))
		gh.AssertNotCalled(t, "ListWebhooks")
		st.AssertNotCalled(t, "DeleteConnectedRepository")
		inv.AssertNotCalled(t, "InvalidateUserViews")
	})

	t.Run("missing credential is NotConnected", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		svc := newTestService(t, st, gh, new(MockInvalidator), fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("", nil)

		_, err := svc.DisconnectRepository(ctx, "u1", "r1")

		require.Error(t, err)
		assert.True(t, apperrors.IsNotConnected(err))
		st.AssertNotCalled(t, "GetConnectedRepository")
	})

	t.Run("failed cache invalidation does not fail the disconnect", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		inv := new(MockInvalidator)
		svc := newTestService(t, st, gh, inv, fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("tok", nil)
		st.On("GetConnectedRepository", ctx, "r1", "u1").
			Return(connectedRepo("r1", 10, "octocat", "alpha"), nil)
		gh.On("ListWebhooks", ctx, "tok", "octocat", "alpha").Return([]model.Webhook{}, nil)
		st.On("DeleteConnectedRepository", ctx, "r1", "u1").Return(nil)
		inv.On("InvalidateUserViews", ctx, "u1").Return(errors.New("redis down"))

		result, err := svc.DisconnectRepository(ctx, "u1", "r1")

		require.NoError(t, err)
		assert.True(t, result.Success)
	})
}

func TestService_DisconnectAllRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("clears local state even when one webhook deletion fails", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		inv := new(MockInvalidator)
		svc := newTestService(t, st, gh, inv, fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("tok", nil)
		st.On("ListConnectedRepositories", ctx, "u1").Return([]model.ConnectedRepository{
			*connectedRepo("r1", 10, "octocat", "alpha"),
			*connectedRepo("r2", 20, "octocat", "beta"),
			*connectedRepo("r3", 30, "octocat", "gamma"),
		}, nil)
		gh.On("ListWebhooks", mock.Anything, "tok", "octocat", "alpha").
			Return([]model.Webhook{{ID: 301, URL: callbackURL}}, nil)
		gh.On("DeleteWebhook", mock.Anything, "tok", "octocat", "alpha", int64(301)).Return(nil)
		gh.On("ListWebhooks", mock.Anything, "tok", "octocat", "beta").
			Return(nil, apperrors.New(apperrors.KindUpstreamFetch, "list webhooks"))
		gh.On("ListWebhooks", mock.Anything, "tok", "octocat", "gamma").
			Return([]model.Webhook{}, nil)
		st.On("DeleteAllConnectedRepositories", ctx, "u1").Return(int64(3), nil)
		inv.On("InvalidateUserViews", ctx, "u1").Return(nil)

		result, err := svc.DisconnectAllRepositories(ctx, "u1")

		require.NoError(t, err)
		assert.True(t, result.Success)
		st.AssertExpectations(t)
		gh.AssertExpectations(t)
		inv.AssertExpectations(t)
	})

	t.Run("no connected repositories still succeeds", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		inv := new(MockInvalidator)
		svc := newTestService(t, st, gh, inv, fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("tok", nil)
		st.On("ListConnectedRepositories", ctx, "u1").Return([]model.ConnectedRepository{}, nil)
		st.On("DeleteAllConnectedRepositories", ctx, "u1").Return(int64(0), nil)
		inv.On("InvalidateUserViews", ctx, "u1").Return(nil)

		result, err := svc.DisconnectAllRepositories(ctx, "u1")

		require.NoError(t, err)
		assert.True(t, result.Success)
		gh.AssertNotCalled(t, "ListWebhooks")
	})

	t.Run("batch delete failure is internal and not success", func(t *testing.T) {
		st := new(MockStore)
		gh := new(MockGitHub)
		inv := new(MockInvalidator)
		svc := newTestService(t, st, gh, inv, fixedReviews{}, testNow)

		st.On("GetGitHubToken", ctx, "u1").Return("tok", nil)
		st.On("ListConnectedRepositories", ctx, "u1").Return([]model.ConnectedRepository{}, nil)
		st.On("DeleteAllConnectedRepositories", ctx, "u1").Return(int64(0), errors.New("db down"))

		result, err := svc.DisconnectAllRepositories(ctx, "u1")

		require.Error(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
		inv.AssertNotCalled(t, "InvalidateUserViews")
	})
}
