package workspace

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"eventexport/pkg/metrics"

	pkgerrors "eventexport/pkg/errors"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// HashToken returns the stored form of an API token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Authenticate resolves an API token to the workspace it belongs to and the
// user that created it. Expired and unknown tokens are unauthorized.
func (r *PostgresRepository) Authenticate(ctx context.Context, token string) (*Workspace, *Session, error) {
	start := time.Now()
	query := `
		SELECT t.id, t.user_id,
			w.id, w.slug, w.plan, w.created_at, w.usage, w.usage_limit
		FROM tokens t
		JOIN workspaces w ON w.id = t.workspace_id
		WHERE t.hashed_key = $1
			AND (t.expires_at IS NULL OR t.expires_at > NOW())
	`

	var (
		ws      Workspace
		session Session
	)
	err := r.db.QueryRowContext(ctx, query, HashToken(token)).Scan(
		&session.TokenID, &session.UserID,
		&ws.ID, &ws.Slug, &ws.Plan, &ws.CreatedAt, &ws.Usage, &ws.UsageLimit,
	)
	if errors.Is(err, sql.ErrNoRows) {
		observe("authenticate", "not_found", start)
		return nil, nil, pkgerrors.ErrUnauthorized.WithMessage("invalid or expired API token")
	}
	if err != nil {
		observe("authenticate", "error", start)
		return nil, nil, fmt.Errorf("failed to authenticate token: %w", err)
	}

	observe("authenticate", "success", start)
	return &ws, &session, nil
}

func (r *PostgresRepository) GetDomain(ctx context.Context, workspaceID, slug string) (*Domain, error) {
	start := time.Now()
	query := `
		SELECT id, workspace_id, slug
		FROM domains
		WHERE workspace_id = $1 AND slug = $2
	`

	var d Domain
	err := r.db.QueryRowContext(ctx, query, workspaceID, slug).Scan(&d.ID, &d.WorkspaceID, &d.Slug)
	if errors.Is(err, sql.ErrNoRows) {
		observe("get_domain", "not_found", start)
		return nil, pkgerrors.NotFound("domain")
	}
	if err != nil {
		observe("get_domain", "error", start)
		return nil, fmt.Errorf("failed to get domain: %w", err)
	}

	observe("get_domain", "success", start)
	return &d, nil
}

func (r *PostgresRepository) GetLink(ctx context.Context, workspaceID, domain, key string) (*Link, error) {
	start := time.Now()
	query := `
		SELECT id, workspace_id, domain, key, COALESCE(folder_id, '')
		FROM links
		WHERE workspace_id = $1 AND domain = $2 AND key = $3
	`

	var l Link
	err := r.db.QueryRowContext(ctx, query, workspaceID, domain, key).Scan(
		&l.ID, &l.WorkspaceID, &l.Domain, &l.Key, &l.FolderID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		observe("get_link", "not_found", start)
		return nil, pkgerrors.NotFound("link")
	}
	if err != nil {
		observe("get_link", "error", start)
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	observe("get_link", "success", start)
	return &l, nil
}

// CheckFolderPermission fails with NotFound when the folder is not part of the
// workspace and with PermissionDenied when the user's role lacks permission.
func (r *PostgresRepository) CheckFolderPermission(ctx context.Context, workspaceID, userID, folderID, permission string) error {
	start := time.Now()
	query := `
		SELECT COALESCE(f.access_level, ''), COALESCE(fu.role, '')
		FROM folders f
		LEFT JOIN folder_users fu ON fu.folder_id = f.id AND fu.user_id = $3
		WHERE f.id = $1 AND f.workspace_id = $2
	`

	var accessLevel, memberRole string
	err := r.db.QueryRowContext(ctx, query, folderID, workspaceID, userID).Scan(&accessLevel, &memberRole)
	if errors.Is(err, sql.ErrNoRows) {
		observe("check_folder_permission", "not_found", start)
		return pkgerrors.NotFound("folder")
	}
	if err != nil {
		observe("check_folder_permission", "error", start)
		return fmt.Errorf("failed to check folder permission: %w", err)
	}

	observe("check_folder_permission", "success", start)
	if !effectiveRole(accessLevel, memberRole).Can(permission) {
		return pkgerrors.PermissionDenied("folder")
	}
	return nil
}

// ReadableFolderIDs lists the folders the user may read: every folder open to
// the workspace plus restricted folders the user is a member of.
func (r *PostgresRepository) ReadableFolderIDs(ctx context.Context, workspaceID, userID string) ([]string, error) {
	start := time.Now()
	query := `
		SELECT f.id
		FROM folders f
		LEFT JOIN folder_users fu ON fu.folder_id = f.id AND fu.user_id = $2
		WHERE f.workspace_id = $1
			AND (f.access_level IS NOT NULL OR fu.role IS NOT NULL)
		ORDER BY f.id
	`

	rows, err := r.db.QueryContext(ctx, query, workspaceID, userID)
	if err != nil {
		observe("readable_folders", "error", start)
		return nil, fmt.Errorf("failed to list readable folders: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			observe("readable_folders", "error", start)
			return nil, fmt.Errorf("failed to scan folder id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		observe("readable_folders", "error", start)
		return nil, fmt.Errorf("failed to iterate folders: %w", err)
	}

	observe("readable_folders", "success", start)
	return ids, nil
}

func observe(operation, status string, start time.Time) {
	metrics.IncDatabaseQuery("postgresql", operation, status)
	metrics.ObserveDatabaseQueryDuration("postgresql", operation, time.Since(start))
}
