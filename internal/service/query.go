package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/repository"
	"github.com/templui/filenest/internal/validation"
)

// Listing filters accepted by ListChildren besides the file categories.
const (
	FilterAll       = "all"
	FilterFavorites = "favorites"
)

// ListChildren lists the contents of parentID (the root when nil).
//
// Filters:
//   - "" or "all": direct children, favorite folders excluded
//   - "favorites": members of the favorite folder parentID
//   - a category without parent: every file of that category
//   - a category with parent: direct file children of that category
func (s *TreeService) ListChildren(ctx context.Context, ownerID string, parentID *string, filter string) ([]*model.NodeEntry, error) {
	filter = strings.ToLower(strings.TrimSpace(filter))

	var nodes []*model.Node
	var err error

	switch {
	case filter == "" || filter == FilterAll:
		if _, err = requireFolder(ctx, s.store, ownerID, parentID); err != nil {
			return nil, err
		}
		nodes, err = s.store.Nodes.Children(ctx, ownerID, parentID)

	case filter == FilterFavorites:
		if parentID == nil {
			return nil, newError(KindValidation, "favorites listing requires a favorite folder")
		}
		if _, err = requireFavoriteFolder(ctx, s.store, ownerID, *parentID); err != nil {
			return nil, err
		}
		nodes, err = s.store.Favorites.MemberNodes(ctx, *parentID)

	case validation.IsCategory(filter):
		if parentID == nil {
			nodes, err = s.store.Nodes.ByCategory(ctx, ownerID, filter)
			break
		}
		if _, err = requireFolder(ctx, s.store, ownerID, parentID); err != nil {
			return nil, err
		}
		nodes, err = s.store.Nodes.ChildrenByCategory(ctx, ownerID, parentID, filter)

	default:
		return nil, newError(KindValidation, "unknown category %q", filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	return s.entries(ctx, ownerID, nodes)
}

func (s *TreeService) ListFavoriteFolders(ctx context.Context, ownerID string) ([]*model.Node, error) {
	folders, err := s.store.Nodes.FavoriteFolders(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite folders: %w", err)
	}
	return folders, nil
}

// ListFolders returns every regular folder of the owner, for move targets.
func (s *TreeService) ListFolders(ctx context.Context, ownerID string) ([]*model.Node, error) {
	folders, err := s.store.Nodes.Folders(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// GetSubfolderIDs returns the ids of every node below folderID.
func (s *TreeService) GetSubfolderIDs(ctx context.Context, ownerID, folderID string) ([]string, error) {
	folder, err := requireFolder(ctx, s.store, ownerID, &folderID)
	if err != nil {
		return nil, err
	}

	below, err := newTreeWalker(s.store.Nodes, ownerID, s.maxDepth).descendants(ctx, folder)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(below))
	for i, n := range below {
		ids[i] = n.ID
	}
	return ids, nil
}

// Search matches name and tags as case-insensitive substrings.
func (s *TreeService) Search(ctx context.Context, ownerID, name, tags string) ([]*model.NodeEntry, error) {
	nodes, err := s.store.Nodes.Search(ctx, ownerID, strings.TrimSpace(name), strings.TrimSpace(tags))
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	return s.entries(ctx, ownerID, nodes)
}

// entries decorates nodes with their favorite state and source label.
func (s *TreeService) entries(ctx context.Context, ownerID string, nodes []*model.Node) ([]*model.NodeEntry, error) {
	ids := make([]string, len(nodes))
	var parentIDs []string
	for i, n := range nodes {
		ids[i] = n.ID
		if n.ParentID != nil {
			parentIDs = append(parentIDs, *n.ParentID)
		}
	}

	favorited, err := s.store.Favorites.Favorited(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}

	parents, err := s.store.Nodes.ByIDs(ctx, ownerID, uniqueIDs(parentIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to load parents: %w", err)
	}
	names := make(map[string]string, len(parents))
	for _, p := range parents {
		names[p.ID] = p.Name
	}

	out := make([]*model.NodeEntry, len(nodes))
	for i, n := range nodes {
		out[i] = &model.NodeEntry{
			Node:       n,
			Kind:       n.Kind(),
			IsFavorite: favorited[n.ID],
			Source:     sourceLabel(n, names),
		}
	}
	return out, nil
}

func sourceLabel(n *model.Node, names map[string]string) string {
	if n.ParentID == nil {
		return model.SourceIndividual
	}
	return names[*n.ParentID]
}

// requireNode loads a node owned by ownerID.
func requireNode(ctx context.Context, store *repository.Store, ownerID, nodeID string) (*model.Node, error) {
	node, err := store.Nodes.ByID(ctx, ownerID, nodeID)
	if err != nil {
		return nil, nodeError(err, nodeID)
	}
	return node, nil
}
