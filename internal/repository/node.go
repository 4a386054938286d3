package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/templui/filenest/internal/model"
)

var (
	ErrNodeNotFound  = errors.New("node not found")
	ErrNodeForbidden = errors.New("node belongs to another owner")
)

type NodeRepository interface {
	Create(ctx context.Context, node *model.Node) error
	ByID(ctx context.Context, ownerID, id string) (*model.Node, error)
	ByIDs(ctx context.Context, ownerID string, ids []string) ([]*model.Node, error)
	Children(ctx context.Context, ownerID string, parentID *string) ([]*model.Node, error)
	ChildrenByCategory(ctx context.Context, ownerID string, parentID *string, category string) ([]*model.Node, error)
	Update(ctx context.Context, node *model.Node) error
	Delete(ctx context.Context, ownerID, id string) error
	FindByName(ctx context.Context, ownerID string, parentID *string, name string) (*model.Node, error)
	FindFavoriteFolder(ctx context.Context, ownerID, name string) (*model.Node, error)
	DefaultFavoriteFolder(ctx context.Context, ownerID string) (*model.Node, error)
	FavoriteFolders(ctx context.Context, ownerID string) ([]*model.Node, error)
	Folders(ctx context.Context, ownerID string) ([]*model.Node, error)
	ByCategory(ctx context.Context, ownerID, category string) ([]*model.Node, error)
	Search(ctx context.Context, ownerID, name, tags string) ([]*model.Node, error)
	All(ctx context.Context, ownerID string) ([]*model.Node, error)
	Count(ctx context.Context, ownerID string) (int, error)
}

type nodeRepository struct {
	q sqlx.ExtContext
}

func NewNodeRepository(q sqlx.ExtContext) *nodeRepository {
	return &nodeRepository{q: q}
}

const nodeColumns = `id, owner_id, parent_id, name, is_folder, is_favorite_folder, category, tags, size, created_at, updated_at`

// parentClause matches parent_id against parentID, binding it as placeholder $n.
func parentClause(parentID *string, n int) (string, []any) {
	if parentID == nil {
		return "parent_id IS NULL", nil
	}
	return fmt.Sprintf("parent_id = $%d", n), []any{*parentID}
}

func (r *nodeRepository) Create(ctx context.Context, node *model.Node) error {
	query := `INSERT INTO nodes (` + nodeColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.q.ExecContext(ctx, query,
		node.ID,
		node.OwnerID,
		node.ParentID,
		node.Name,
		node.IsFolder,
		node.IsFavoriteFolder,
		node.Category,
		node.Tags,
		node.Size,
		node.CreatedAt,
		node.UpdatedAt,
	)

	return writeError(err)
}

// ByID loads a node and checks that ownerID owns it.
func (r *nodeRepository) ByID(ctx context.Context, ownerID, id string) (*model.Node, error) {
	node := &model.Node{}
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE id = $1`

	err := sqlx.GetContext(ctx, r.q, node, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNodeNotFound
	}
	if err != nil {
		return nil, err
	}

	if node.OwnerID != ownerID {
		return nil, ErrNodeForbidden
	}

	return node, nil
}

// ByIDs returns the nodes among ids that ownerID owns, in the order of ids.
func (r *nodeRepository) ByIDs(ctx context.Context, ownerID string, ids []string) ([]*model.Node, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+nodeColumns+` FROM nodes WHERE owner_id = ? AND id IN (?)`, ownerID, ids)
	if err != nil {
		return nil, err
	}

	var found []*model.Node
	err = sqlx.SelectContext(ctx, r.q, &found, r.q.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Node, len(found))
	for _, n := range found {
		byID[n.ID] = n
	}

	nodes := make([]*model.Node, 0, len(found))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			nodes = append(nodes, n)
			delete(byID, id)
		}
	}

	return nodes, nil
}

// Children returns the direct children of parentID, favorite folders excluded.
func (r *nodeRepository) Children(ctx context.Context, ownerID string, parentID *string) ([]*model.Node, error) {
	clause, args := parentClause(parentID, 2)
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND is_favorite_folder = FALSE AND ` + clause + `
	          ORDER BY is_folder DESC, name`

	var nodes []*model.Node
	err := sqlx.SelectContext(ctx, r.q, &nodes, query, append([]any{ownerID}, args...)...)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

func (r *nodeRepository) ChildrenByCategory(ctx context.Context, ownerID string, parentID *string, category string) ([]*model.Node, error) {
	clause, args := parentClause(parentID, 3)
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND is_folder = FALSE AND category = $2 AND ` + clause + `
	          ORDER BY name`

	var nodes []*model.Node
	err := sqlx.SelectContext(ctx, r.q, &nodes, query, append([]any{ownerID, category}, args...)...)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

// Update persists the mutable fields of node: name, parent, tags, size.
func (r *nodeRepository) Update(ctx context.Context, node *model.Node) error {
	query := `UPDATE nodes SET name = $1, parent_id = $2, tags = $3, size = $4, updated_at = $5
	          WHERE id = $6 AND owner_id = $7`

	res, err := r.q.ExecContext(ctx, query,
		node.Name,
		node.ParentID,
		node.Tags,
		node.Size,
		node.UpdatedAt,
		node.ID,
		node.OwnerID,
	)
	if err != nil {
		return writeError(err)
	}

	return expectRow(res)
}

// Delete removes a single node. Children and links are the caller's concern.
func (r *nodeRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM nodes WHERE id = $1 AND owner_id = $2`

	res, err := r.q.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return err
	}

	return expectRow(res)
}

// FindByName looks up a sibling outside the favorites mechanism.
func (r *nodeRepository) FindByName(ctx context.Context, ownerID string, parentID *string, name string) (*model.Node, error) {
	clause, args := parentClause(parentID, 3)
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND name = $2 AND is_favorite_folder = FALSE AND ` + clause + `
	          LIMIT 1`

	node := &model.Node{}
	err := sqlx.GetContext(ctx, r.q, node, query, append([]any{ownerID, name}, args...)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNodeNotFound
	}

	return node, err
}

func (r *nodeRepository) FindFavoriteFolder(ctx context.Context, ownerID, name string) (*model.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND name = $2 AND is_favorite_folder = TRUE AND parent_id IS NULL
	          LIMIT 1`

	node := &model.Node{}
	err := sqlx.GetContext(ctx, r.q, node, query, ownerID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNodeNotFound
	}

	return node, err
}

// DefaultFavoriteFolder returns the owner's oldest root favorite folder.
func (r *nodeRepository) DefaultFavoriteFolder(ctx context.Context, ownerID string) (*model.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND is_favorite_folder = TRUE AND parent_id IS NULL
	          ORDER BY created_at, id LIMIT 1`

	node := &model.Node{}
	err := sqlx.GetContext(ctx, r.q, node, query, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNodeNotFound
	}

	return node, err
}

func (r *nodeRepository) FavoriteFolders(ctx context.Context, ownerID string) ([]*model.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND is_favorite_folder = TRUE
	          ORDER BY created_at, id`

	var nodes []*model.Node
	err := sqlx.SelectContext(ctx, r.q, &nodes, query, ownerID)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

// Folders returns every non-favorite folder of the owner.
func (r *nodeRepository) Folders(ctx context.Context, ownerID string) ([]*model.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND is_folder = TRUE AND is_favorite_folder = FALSE
	          ORDER BY name`

	var nodes []*model.Node
	err := sqlx.SelectContext(ctx, r.q, &nodes, query, ownerID)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

func (r *nodeRepository) ByCategory(ctx context.Context, ownerID, category string) ([]*model.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND is_folder = FALSE AND category = $2
	          ORDER BY name`

	var nodes []*model.Node
	err := sqlx.SelectContext(ctx, r.q, &nodes, query, ownerID, category)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

// Search matches name and tags as case-insensitive substrings. An empty
// term matches everything. Favorite folders never match.
func (r *nodeRepository) Search(ctx context.Context, ownerID, name, tags string) ([]*model.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes
	          WHERE owner_id = $1 AND is_favorite_folder = FALSE
	            AND LOWER(name) LIKE $2 ESCAPE '\' AND LOWER(tags) LIKE $3 ESCAPE '\'
	          ORDER BY is_folder DESC, name`

	var nodes []*model.Node
	err := sqlx.SelectContext(ctx, r.q, &nodes, query, ownerID, likePattern(name), likePattern(tags))
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

func (r *nodeRepository) All(ctx context.Context, ownerID string) ([]*model.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM nodes WHERE owner_id = $1 ORDER BY created_at, id`

	var nodes []*model.Node
	err := sqlx.SelectContext(ctx, r.q, &nodes, query, ownerID)
	if err != nil {
		return nil, err
	}

	return nodes, nil
}

func (r *nodeRepository) Count(ctx context.Context, ownerID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM nodes WHERE owner_id = $1`

	err := sqlx.GetContext(ctx, r.q, &count, query, ownerID)
	return count, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern with the term's wildcards escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNodeNotFound
	}
	return nil
}
