// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-dashboard/internal/model"
)

// ErrNoRecord is returned when a scoped lookup matches nothing. Callers decide
// whether that is an error condition.
var ErrNoRecord = errors.New("store: no matching record")

// Store defines the persistence operations the dashboard core needs.
type Store interface {
	// GetGitHubToken returns the user's stored GitHub access token, or ""
	// when the account is not linked. Absence is not an error.
	GetGitHubToken(ctx context.Context, userID string) (string, error)

	// ListConnectedGithubIDs returns the full set of upstream repository ids
	// the user has connected, in a single query.
	ListConnectedGithubIDs(ctx context.Context, userID string) ([]int64, error)

	// ListConnectedRepositories returns the user's connection records,
	// newest first.
	ListConnectedRepositories(ctx context.Context, userID string) ([]model.ConnectedRepository, error)

	// CountConnectedRepositories returns the number of connection records.
	CountConnectedRepositories(ctx context.Context, userID string) (int, error)

	// GetConnectedRepository loads one record scoped to the owning user.
	// Returns ErrNoRecord when the record is missing or owned by someone else.
	GetConnectedRepository(ctx context.Context, repoID, userID string) (*model.ConnectedRepository, error)

	// DeleteConnectedRepository deletes one record scoped to the owning user.
	// Returns ErrNoRecord when nothing was deleted.
	DeleteConnectedRepository(ctx context.Context, repoID, userID string) error

	// DeleteAllConnectedRepositories deletes every record for the user and
	// returns how many rows went away.
	DeleteAllConnectedRepositories(ctx context.Context, userID string) (int64, error)

	// GetUserProfile loads the local user record.
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)

	// UpdateUserProfile updates name and/or email and returns the new record.
	UpdateUserProfile(ctx context.Context, userID string, name, email *string) (*model.UserProfile, error)
}

// PostgresStore is the pgx-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetGitHubToken(ctx context.Context, userID string) (string, error) {
	var token *string
	err := s.pool.QueryRow(ctx,
		`SELECT access_token FROM accounts WHERE user_id = $1 AND provider_id = 'github'`,
		userID,
	).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query github token: %w", err)
	}
	if token == nil {
		return "", nil
	}
	return *token, nil
}

func (s *PostgresStore) ListConnectedGithubIDs(ctx context.Context, userID string) ([]int64, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT github_id FROM repositories WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query connected github ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan github id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) ListConnectedRepositories(ctx context.Context, userID string) ([]model.ConnectedRepository, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, github_id, name, owner, created_at
		 FROM repositories WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query connected repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.ConnectedRepository
	for rows.Next() {
		var r model.ConnectedRepository
		if err := rows.Scan(&r.ID, &r.UserID, &r.GithubID, &r.Name, &r.Owner, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan connected repository: %w", err)
		}
		repos = append(repos, r)
	}
	return repos, rows.Err()
}

func (s *PostgresStore) CountConnectedRepositories(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM repositories WHERE user_id = $1`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count connected repositories: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) GetConnectedRepository(ctx context.Context, repoID, userID string) (*model.ConnectedRepository, error) {
	var r model.ConnectedRepository
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, github_id, name, owner, created_at
		 FROM repositories WHERE id = $1 AND user_id = $2`,
		repoID, userID,
	).Scan(&r.ID, &r.UserID, &r.GithubID, &r.Name, &r.Owner, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("query connected repository: %w", err)
	}
	return &r, nil
}

func (s *PostgresStore) DeleteConnectedRepository(ctx context.Context, repoID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM repositories WHERE id = $1 AND user_id = $2`,
		repoID, userID,
	)
	if err != nil {
		return fmt.Errorf("delete connected repository: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRecord
	}
	return nil
}

func (s *PostgresStore) DeleteAllConnectedRepositories(ctx context.Context, userID string) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM repositories WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete all connected repositories: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var u model.UserProfile
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, image, created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("query user profile: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) UpdateUserProfile(ctx context.Context, userID string, name, email *string) (*model.UserProfile, error) {
	var u model.UserProfile
	err := s.pool.QueryRow(ctx,
		`UPDATE users
		 SET name = COALESCE($2, name),
		     email = COALESCE($3, email),
		     updated_at = $4
		 WHERE id = $1
		 RETURNING id, name, email, image, created_at`,
		userID, name, email, time.Now().UTC(),
	).Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("update user profile: %w", err)
	}
	return &u, nil
}
