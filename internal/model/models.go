// internal/model/models.go
package model

import "time"

// GitHubUser is the authenticated GitHub user's identity, as much of it as the
// dashboard needs.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Repository represents the metadata of a GitHub repository as returned by the
// upstream listing endpoint.
type Repository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Owner       string    `json:"owner"`
	Description *string   `json:"description"`
	URL         string    `json:"url"`
	Language    *string   `json:"language"`
	StarsCount  int       `json:"stars_count"`
	ForksCount  int       `json:"forks_count"`
	Topics      []string  `json:"topics"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RepositoryView is an upstream repository joined against the user's local
// connection records. IsConnected is derived, never stored.
type RepositoryView struct {
	Repository
	IsConnected bool `json:"is_connected"`
}

// PullRequest is one authored pull request from the upstream search surface.
type PullRequest struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Webhook is an upstream repository webhook. URL is the configured callback
// URL, which is how hooks owned by this deployment are recognized.
type Webhook struct {
	ID     int64  `json:"id"`
	URL    string `json:"url"`
	Active bool   `json:"active"`
}

// ContributionDay is a single day in the contribution calendar.
type ContributionDay struct {
	Date              time.Time `json:"date"`
	ContributionCount int       `json:"contribution_count"`
	Color             string    `json:"color"`
}

// ContributionWeek groups the days GitHub returns per calendar week. Days are
// chronological within and across weeks.
type ContributionWeek struct {
	ContributionDays []ContributionDay `json:"contribution_days"`
}

// ContributionCalendar is the daily contribution history for a user.
type ContributionCalendar struct {
	TotalContributions int                `json:"total_contributions"`
	Weeks              []ContributionWeek `json:"weeks"`
}

// ConnectedRepository is a locally persisted link between a user and a GitHub
// repository. GithubID is the upstream numeric id used as the join key.
type ConnectedRepository struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	GithubID  int64     `json:"github_id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// MonthActivity is one month's bucketed activity, labeled for display.
type MonthActivity struct {
	Month         string `json:"month"`
	Contributions int    `json:"contributions"`
	Reviews       int    `json:"reviews"`
	PullRequests  int    `json:"pull_requests"`
}

// MetricSummary is the latest-month value, integer-rounded mean and total of
// one metric across the 6-month window.
type MetricSummary struct {
	Latest  int `json:"latest"`
	Average int `json:"average"`
	Total   int `json:"total"`
}

// ActivitySummary holds the derived statistics the presentation layer shows
// next to the monthly chart.
type ActivitySummary struct {
	Contributions MetricSummary `json:"contributions"`
	Reviews       MetricSummary `json:"reviews"`
	PullRequests  MetricSummary `json:"pull_requests"`
}

// DashboardStats are the headline totals on the dashboard landing page.
type DashboardStats struct {
	TotalContributions int `json:"total_contributions"`
	TotalPullRequests  int `json:"total_pull_requests"`
	ConnectedRepos     int `json:"connected_repos"`
}

// DisconnectResult reports the outcome of a disconnect operation.
type DisconnectResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UserProfile is the local user record shown on the settings screen.
type UserProfile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Image     *string   `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}
