// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github-dashboard/internal/model"

	apperrors "github-dashboard/internal/errors"
)

const (
	defaultTimeout = 15 * time.Second
	maxPerPage     = 100
)

// Client wraps the GitHub REST and GraphQL surfaces behind typed functions.
// Tokens are per-user, so the underlying clients are built per call from the
// credential the caller resolved.
type Client struct {
	logger     *slog.Logger
	timeout    time.Duration
	baseURL    string
	graphqlURL string
}

// ClientOption allows configuring the GitHub client.
type ClientOption func(*Client)

// WithTimeout sets the per-call upstream timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithBaseURLs overrides the REST and GraphQL endpoints. Used by tests to
// point the client at a local server.
func WithBaseURLs(rest, graphql string) ClientOption {
	return func(c *Client) {
		c.baseURL = rest
		c.graphqlURL = graphql
	}
}

// NewClient creates and configures a new Client instance.
func NewClient(logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		logger:  logger,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// rest builds an authenticated REST client for one call.
func (c *Client) rest(token string) (*github.Client, error) {
	gh := github.NewClient(c.authHTTPClient(token))
	if c.baseURL != "" {
		var err error
		gh, err = gh.WithEnterpriseURLs(c.baseURL, c.baseURL)
		if err != nil {
			return nil, err
		}
	}
	return gh, nil
}

// graphql builds an authenticated GraphQL client for one call.
func (c *Client) graphql(token string) *githubv4.Client {
	hc := c.authHTTPClient(token)
	if c.graphqlURL != "" {
		return githubv4.NewEnterpriseClient(c.graphqlURL, hc)
	}
	return githubv4.NewClient(hc)
}

func (c *Client) authHTTPClient(token string) *http.Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	return oauth2.NewClient(context.Background(), ts)
}

// GetAuthenticatedUser fetches the identity of the token's owner.
func (c *Client) GetAuthenticatedUser(ctx context.Context, token string) (*model.GitHubUser, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "token is required")
	}
	gh, err := c.rest(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstreamFetch, "build client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	user, _, err := gh.Users.Get(ctx, "")
	if err != nil {
		return nil, c.mapError("get authenticated user", err)
	}
	return &model.GitHubUser{
		ID:        user.GetID(),
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// ListRepositories fetches one page of the token owner's repositories. It
// never aggregates pages; pagination state belongs to the caller.
func (c *Client) ListRepositories(ctx context.Context, token string, page, perPage int, sort, visibility string) ([]model.Repository, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "token is required")
	}
	if page < 1 || perPage < 1 || perPage > maxPerPage {
		return nil, apperrors.New(apperrors.KindInvalidArgument,
			fmt.Sprintf("page must be >= 1 and perPage within 1..%d", maxPerPage))
	}
	gh, err := c.rest(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstreamFetch, "build client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Fetching repository page", "page", page, "per_page", perPage)
	repos, _, err := gh.Repositories.ListByAuthenticatedUser(ctx, &github.RepositoryListByAuthenticatedUserOptions{
		Visibility: visibility,
		Sort:       sort,
		Direction:  "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	})
	if err != nil {
		return nil, c.mapError("list repositories", err)
	}

	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		out = append(out, toInternalRepository(r))
	}
	return out, nil
}

// SearchPullRequests fetches one page of pull requests authored by the given
// login, newest first. The second return value is the upstream total match
// count, which can exceed the page.
func (c *Client) SearchPullRequests(ctx context.Context, token, authorLogin string, page, perPage int) ([]model.PullRequest, int, error) {
	if token == "" {
		return nil, 0, apperrors.New(apperrors.KindInvalidArgument, "token is required")
	}
	if authorLogin == "" {
		return nil, 0, apperrors.New(apperrors.KindInvalidArgument, "author login is required")
	}
	if page < 1 || perPage < 1 || perPage > maxPerPage {
		return nil, 0, apperrors.New(apperrors.KindInvalidArgument,
			fmt.Sprintf("page must be >= 1 and perPage within 1..%d", maxPerPage))
	}
	gh, err := c.rest(token)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.KindUpstreamFetch, "build client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	query := fmt.Sprintf("is:pr author:%s", authorLogin)
	result, _, err := gh.Search.Issues(ctx, query, &github.SearchOptions{
		Sort:  "created",
		Order: "desc",
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	})
	if err != nil {
		return nil, 0, c.mapError("search pull requests", err)
	}

	out := make([]model.PullRequest, 0, len(result.Issues))
	for _, issue := range result.Issues {
		out = append(out, model.PullRequest{
			ID:        issue.GetID(),
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			URL:       issue.GetHTMLURL(),
			CreatedAt: issue.GetCreatedAt().Time,
		})
	}
	return out, result.GetTotal(), nil
}

// contributionsQuery mirrors the contributionsCollection calendar shape.
type contributionsQuery struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions githubv4.Int
				Weeks              []struct {
					ContributionDays []struct {
						Date              string
						ContributionCount githubv4.Int
						Color             githubv4.String
					}
				}
			}
		}
	} `graphql:"user(login: $login)"`
}

// GetContributionCalendar issues a single GraphQL query for the user's daily
// contribution calendar. On any failure it returns no partial result.
func (c *Client) GetContributionCalendar(ctx context.Context, token, username string) (*model.ContributionCalendar, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "token is required")
	}
	if username == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "username is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Fetching contribution calendar", "username", username)
	var q contributionsQuery
	variables := map[string]interface{}{
		"login": githubv4.String(username),
	}
	if err := c.graphql(token).Query(ctx, &q, variables); err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstreamFetch, "contribution calendar query", err)
	}

	raw := q.User.ContributionsCollection.ContributionCalendar
	calendar := &model.ContributionCalendar{
		TotalContributions: int(raw.TotalContributions),
		Weeks:              make([]model.ContributionWeek, 0, len(raw.Weeks)),
	}
	for _, week := range raw.Weeks {
		days := make([]model.ContributionDay, 0, len(week.ContributionDays))
		for _, day := range week.ContributionDays {
			date, err := time.Parse("2006-01-02", day.Date)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.KindUpstreamFetch,
					fmt.Sprintf("malformed calendar date %q", day.Date), err)
			}
			days = append(days, model.ContributionDay{
				Date:              date,
				ContributionCount: int(day.ContributionCount),
				Color:             string(day.Color),
			})
		}
		calendar.Weeks = append(calendar.Weeks, model.ContributionWeek{ContributionDays: days})
	}
	return calendar, nil
}

// ListWebhooks lists the webhooks on one repository.
func (c *Client) ListWebhooks(ctx context.Context, token, owner, repo string) ([]model.Webhook, error) {
	if token == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "token is required")
	}
	if owner == "" || repo == "" {
		return nil, apperrors.New(apperrors.KindInvalidArgument, "owner and repo are required")
	}
	gh, err := c.rest(token)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindUpstreamFetch, "build client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	hooks, _, err := gh.Repositories.ListHooks(ctx, owner, repo, &github.ListOptions{PerPage: maxPerPage})
	if err != nil {
		return nil, c.mapError("list webhooks", err)
	}

	out := make([]model.Webhook, 0, len(hooks))
	for _, h := range hooks {
		out = append(out, model.Webhook{
			ID:     h.GetID(),
			URL:    h.GetConfig().GetURL(),
			Active: h.GetActive(),
		})
	}
	return out, nil
}

// DeleteWebhook deletes one webhook by id.
func (c *Client) DeleteWebhook(ctx context.Context, token, owner, repo string, hookID int64) error {
	if token == "" {
		return apperrors.New(apperrors.KindInvalidArgument, "token is required")
	}
	if owner == "" || repo == "" {
		return apperrors.New(apperrors.KindInvalidArgument, "owner and repo are required")
	}
	gh, err := c.rest(token)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUpstreamFetch, "build client", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := gh.Repositories.DeleteHook(ctx, owner, repo, hookID); err != nil {
		return c.mapError("delete webhook", err)
	}
	return nil
}

// mapError translates go-github failures into the application taxonomy:
// rate-limit responses, credential rejections and everything else are kept
// distinct so callers can choose retry-later vs reconnect vs generic failure.
func (c *Client) mapError(op string, err error) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	var respErr *github.ErrorResponse

	switch {
	case errors.As(err, &rateErr), errors.As(err, &abuseErr):
		return apperrors.Wrap(apperrors.KindUpstreamRateLimit, op, err)
	case errors.As(err, &respErr):
		if respErr.Response != nil {
			switch respErr.Response.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return apperrors.Wrap(apperrors.KindUpstreamAuth, op, err)
			}
		}
		return apperrors.Wrap(apperrors.KindUpstreamFetch, op, err)
	default:
		return apperrors.Wrap(apperrors.KindUpstreamFetch, op, err)
	}
}

// toInternalRepository translates a github.Repository to our internal model.
func toInternalRepository(r *github.Repository) model.Repository {
	return model.Repository{
		ID:          r.GetID(),
		Name:        r.GetName(),
		FullName:    r.GetFullName(),
		Owner:       r.GetOwner().GetLogin(),
		Description: r.Description,
		URL:         r.GetHTMLURL(),
		Language:    r.Language,
		StarsCount:  r.GetStargazersCount(),
		ForksCount:  r.GetForksCount(),
		Topics:      r.Topics,
		UpdatedAt:   r.GetUpdatedAt().Time,
	}
}
