package service

import (
	"context"
	"fmt"

	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/repository"
)

// requireFavoriteFolder loads folderID and checks it is an owned favorite folder.
func requireFavoriteFolder(ctx context.Context, tx *repository.Store, ownerID, folderID string) (*model.Node, error) {
	folder, err := tx.Nodes.ByID(ctx, ownerID, folderID)
	if err != nil {
		return nil, nodeError(err, folderID)
	}
	if !folder.IsFolder || !folder.IsFavoriteFolder {
		return nil, newError(KindValidation, "%q is not a favorite folder", folder.Name)
	}
	return folder, nil
}

// AddToFavorites links every node in fileIDs into the favorite folder.
// Nothing is linked unless all nodes are owned by ownerID.
func (s *TreeService) AddToFavorites(ctx context.Context, ownerID string, fileIDs []string, folderID string) (int, error) {
	ids := uniqueIDs(fileIDs)
	if len(ids) == 0 {
		return 0, newError(KindValidation, "no nodes selected")
	}

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		folder, err := requireFavoriteFolder(ctx, tx, ownerID, folderID)
		if err != nil {
			return err
		}

		nodes, err := tx.Nodes.ByIDs(ctx, ownerID, ids)
		if err != nil {
			return fmt.Errorf("failed to load nodes: %w", err)
		}
		if len(nodes) != len(ids) {
			return newError(KindNotFound, "one or more nodes not found")
		}

		for _, node := range nodes {
			if node.ID == folder.ID {
				return newError(KindValidation, "cannot add %q to itself", folder.Name)
			}
		}

		for _, node := range nodes {
			err = tx.Favorites.Link(ctx, node.ID, folder.ID)
			if err != nil {
				return fmt.Errorf("failed to link %s: %w", node.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(ids), nil
}

// RemoveFromFavorites drops every favorite link of the given nodes. Ids that
// are not linked, or not owned by ownerID, are ignored.
func (s *TreeService) RemoveFromFavorites(ctx context.Context, ownerID string, fileIDs []string) (int64, error) {
	ids := uniqueIDs(fileIDs)
	if len(ids) == 0 {
		return 0, newError(KindValidation, "no nodes selected")
	}

	var removed int64
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		nodes, err := tx.Nodes.ByIDs(ctx, ownerID, ids)
		if err != nil {
			return fmt.Errorf("failed to load nodes: %w", err)
		}

		owned := make([]string, len(nodes))
		for i, n := range nodes {
			owned[i] = n.ID
		}

		removed, err = tx.Favorites.Unlink(ctx, owned...)
		return err
	})
	if err != nil {
		return 0, err
	}

	return removed, nil
}

// DeleteFavoriteFolderAndContents removes a favorite folder, its physical
// subtree and every favorite link that points into it.
func (s *TreeService) DeleteFavoriteFolderAndContents(ctx context.Context, ownerID, folderID string) (int, error) {
	var blobKeys []string
	deleted := make(map[string]bool)

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		folder, err := requireFavoriteFolder(ctx, tx, ownerID, folderID)
		if err != nil {
			return err
		}

		blobKeys, err = s.deleteSubtree(ctx, tx, ownerID, folder, deleted)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.deleteBlobs(ctx, blobKeys)
	return len(deleted), nil
}
