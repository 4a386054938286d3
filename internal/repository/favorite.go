package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filenest/internal/model"
)

type FavoriteRepository interface {
	Link(ctx context.Context, fileID, folderID string) error
	Relink(ctx context.Context, fileID, folderID string) error
	Unlink(ctx context.Context, fileIDs ...string) (int64, error)
	UnlinkAll(ctx context.Context, nodeID string) error
	IsFavorite(ctx context.Context, fileID string) (bool, error)
	Favorited(ctx context.Context, ids []string) (map[string]bool, error)
	Members(ctx context.Context, folderID string) ([]string, error)
	MemberNodes(ctx context.Context, folderID string) ([]*model.Node, error)
	Folders(ctx context.Context, fileID string) ([]string, error)
}

type favoriteRepository struct {
	q sqlx.ExtContext
}

func NewFavoriteRepository(q sqlx.ExtContext) *favoriteRepository {
	return &favoriteRepository{q: q}
}

// Link is a no-op when the pair already exists.
func (r *favoriteRepository) Link(ctx context.Context, fileID, folderID string) error {
	query := `INSERT INTO favorite_links (file_id, folder_id, created_at) VALUES ($1, $2, $3)
	          ON CONFLICT (file_id, folder_id) DO NOTHING`

	_, err := r.q.ExecContext(ctx, query, fileID, folderID, time.Now().UTC())
	return err
}

// Relink replaces every link of fileID with a single link to folderID.
func (r *favoriteRepository) Relink(ctx context.Context, fileID, folderID string) error {
	_, err := r.Unlink(ctx, fileID)
	if err != nil {
		return err
	}
	return r.Link(ctx, fileID, folderID)
}

// Unlink removes the links where the given nodes are the file side.
func (r *favoriteRepository) Unlink(ctx context.Context, fileIDs ...string) (int64, error) {
	if len(fileIDs) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM favorite_links WHERE file_id IN (?)`, fileIDs)
	if err != nil {
		return 0, err
	}

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// UnlinkAll removes links where nodeID is either the file or the folder side.
func (r *favoriteRepository) UnlinkAll(ctx context.Context, nodeID string) error {
	query := `DELETE FROM favorite_links WHERE file_id = $1 OR folder_id = $1`

	_, err := r.q.ExecContext(ctx, query, nodeID)
	return err
}

func (r *favoriteRepository) IsFavorite(ctx context.Context, fileID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM favorite_links WHERE file_id = $1`

	err := sqlx.GetContext(ctx, r.q, &count, query, fileID)
	return count > 0, err
}

// Favorited returns the subset of ids that appear in at least one favorite folder.
func (r *favoriteRepository) Favorited(ctx context.Context, ids []string) (map[string]bool, error) {
	set := make(map[string]bool)
	if len(ids) == 0 {
		return set, nil
	}

	query, args, err := sqlx.In(`SELECT DISTINCT file_id FROM favorite_links WHERE file_id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var linked []string
	err = sqlx.SelectContext(ctx, r.q, &linked, r.q.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, id := range linked {
		set[id] = true
	}
	return set, nil
}

func (r *favoriteRepository) Members(ctx context.Context, folderID string) ([]string, error) {
	var ids []string
	query := `SELECT file_id FROM favorite_links WHERE folder_id = $1 ORDER BY created_at, file_id`

	err := sqlx.SelectContext(ctx, r.q, &ids, query, folderID)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// MemberNodes returns the nodes linked into folderID.
func (r *favoriteRepository) MemberNodes(ctx context.Context, folderID string) ([]*model.Node, error) {
	query := `SELECT n.id, n.owner_id, n.parent_id, n.name, n.is_folder, n.is_favorite_folder,
	                 n.category, n.tags, n.size, n.created_at, n.updated_at
	          FROM nodes n
	          JOIN favorite_links l ON l.file_id = n.id
	          WHERE l.folder_id = $1
	          ORDER BY l.created_at, n.name`

	var nodes []*model.Node
	err := sqlx.SelectContext(ctx, r.q, &nodes, query, folderID)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

// Folders returns the favorite folders fileID is linked into.
func (r *favoriteRepository) Folders(ctx context.Context, fileID string) ([]string, error) {
	var ids []string
	query := `SELECT folder_id FROM favorite_links WHERE file_id = $1 ORDER BY folder_id`

	err := sqlx.SelectContext(ctx, r.q, &ids, query, fileID)
	if err != nil {
		return nil, err
	}

	return ids, nil
}
