package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/repository"
	"github.com/templui/filenest/internal/storage"
	"github.com/templui/filenest/internal/validation"
)

// Reasons reported for upload entries that were skipped.
const (
	SkipExists          = "already exists"
	SkipUnsupportedType = "unsupported file type"
	SkipInvalidName     = "invalid name"
	SkipFileConflict    = "a file with this name blocks the folder path"
)

type TreeService struct {
	store         *repository.Store
	storage       storage.Storage
	maxDepth      int
	favoritesName string
}

func NewTreeService(store *repository.Store, storage storage.Storage, maxDepth int, favoritesName string) *TreeService {
	return &TreeService{
		store:         store,
		storage:       storage,
		maxDepth:      maxDepth,
		favoritesName: favoritesName,
	}
}

// UploadEntry is one file of a folder upload, addressed by its relative path.
type UploadEntry struct {
	Path    string
	Content []byte
}

type SkippedEntry struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type UploadResult struct {
	Root    *model.Node    `json:"root"`
	Folders []*model.Node  `json:"folders"`
	Files   []*model.Node  `json:"files"`
	Skipped []SkippedEntry `json:"skipped"`
}

type DeleteResult struct {
	Deleted  int     `json:"deleted"`
	ParentID *string `json:"parent_id"`
}

// blobTracker records blobs written inside a transaction so they can be
// removed if the transaction rolls back.
type blobTracker struct {
	storage storage.Storage
	keys    []string
}

func (b *blobTracker) save(ctx context.Context, node *model.Node, content []byte) error {
	key := node.BlobKey()
	err := b.storage.Save(ctx, key, bytes.NewReader(content))
	if err != nil {
		return fmt.Errorf("failed to save content of %s: %w", node.Name, err)
	}
	b.keys = append(b.keys, key)
	return nil
}

// discard deletes every tracked blob, best effort.
func (b *blobTracker) discard(ctx context.Context) {
	for _, key := range b.keys {
		err := b.storage.Delete(ctx, key)
		if err != nil {
			slog.Error("failed to delete blob during cleanup", "error", err, "key", key)
		}
	}
	b.keys = nil
}

func newNode(ownerID string, parentID *string, name string) *model.Node {
	now := time.Now().UTC()
	return &model.Node{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		ParentID:  parentID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sanitize(name string) (string, error) {
	clean, err := validation.SanitizeName(name)
	if err != nil {
		return "", wrapError(KindValidation, err, "invalid name %q", name)
	}
	return clean, nil
}

// requireFolder checks that parentID, when set, is a folder owned by ownerID.
func requireFolder(ctx context.Context, tx *repository.Store, ownerID string, parentID *string) (*model.Node, error) {
	if parentID == nil {
		return nil, nil
	}

	parent, err := tx.Nodes.ByID(ctx, ownerID, *parentID)
	if err != nil {
		return nil, nodeError(err, *parentID)
	}
	if !parent.IsFolder {
		return nil, newError(KindValidation, "%q is not a folder", parent.Name)
	}
	return parent, nil
}

// requireFreeName fails with ErrDuplicateName when a sibling already uses name.
func requireFreeName(ctx context.Context, tx *repository.Store, ownerID string, parentID *string, name string) error {
	_, err := tx.Nodes.FindByName(ctx, ownerID, parentID, name)
	if err == nil {
		return newError(KindDuplicateName, "%q already exists in this folder", name)
	}
	if !errors.Is(err, repository.ErrNodeNotFound) {
		return fmt.Errorf("failed to check name: %w", err)
	}
	return nil
}

func (s *TreeService) CreateFile(ctx context.Context, ownerID string, parentID *string, name string, content []byte, tags string) (*model.Node, error) {
	name, err := sanitize(name)
	if err != nil {
		return nil, err
	}

	ext := model.Ext(name)
	if !validation.AllowedExtension(ext) {
		return nil, newError(KindUnsupportedType, "file type %q is not allowed", ext)
	}

	node := newNode(ownerID, parentID, name)
	node.Category = validation.Category(ext)
	node.Tags = strings.TrimSpace(tags)
	node.Size = int64(len(content))

	blobs := &blobTracker{storage: s.storage}
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := requireFolder(ctx, tx, ownerID, parentID); err != nil {
			return err
		}
		if err := requireFreeName(ctx, tx, ownerID, parentID, name); err != nil {
			return err
		}

		if err := tx.Nodes.Create(ctx, node); err != nil {
			return fmt.Errorf("failed to create file record: %w", err)
		}
		return blobs.save(ctx, node, content)
	})
	if err != nil {
		blobs.discard(ctx)
		return nil, err
	}

	slog.Info("file created", "owner_id", ownerID, "node_id", node.ID, "size", node.Size)
	return node, nil
}

func (s *TreeService) CreateFolder(ctx context.Context, ownerID string, parentID *string, name, tags string) (*model.Node, error) {
	name, err := sanitize(name)
	if err != nil {
		return nil, err
	}

	node := newNode(ownerID, parentID, name)
	node.IsFolder = true
	node.Tags = strings.TrimSpace(tags)

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := requireFolder(ctx, tx, ownerID, parentID); err != nil {
			return err
		}
		if err := requireFreeName(ctx, tx, ownerID, parentID, name); err != nil {
			return err
		}
		return tx.Nodes.Create(ctx, node)
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

// CreateFavoriteFolder creates a root-level favorites container.
func (s *TreeService) CreateFavoriteFolder(ctx context.Context, ownerID, name string) (*model.Node, error) {
	name, err := sanitize(name)
	if err != nil {
		return nil, err
	}

	node := newNode(ownerID, nil, name)
	node.IsFolder = true
	node.IsFavoriteFolder = true

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		_, err := tx.Nodes.FindFavoriteFolder(ctx, ownerID, name)
		if err == nil {
			return newError(KindDuplicateName, "favorite folder %q already exists", name)
		}
		if !errors.Is(err, repository.ErrNodeNotFound) {
			return fmt.Errorf("failed to check favorite folder: %w", err)
		}
		return tx.Nodes.Create(ctx, node)
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

// EnsureDefaultFavoriteFolder returns the owner's default favorite folder,
// creating it on first use.
func (s *TreeService) EnsureDefaultFavoriteFolder(ctx context.Context, ownerID string) (*model.Node, error) {
	folder, err := s.store.Nodes.DefaultFavoriteFolder(ctx, ownerID)
	if err == nil {
		return folder, nil
	}
	if !errors.Is(err, repository.ErrNodeNotFound) {
		return nil, fmt.Errorf("failed to load default favorite folder: %w", err)
	}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		folder, err = tx.Nodes.DefaultFavoriteFolder(ctx, ownerID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrNodeNotFound) {
			return err
		}

		folder = newNode(ownerID, nil, s.favoritesName)
		folder.IsFolder = true
		folder.IsFavoriteFolder = true
		return tx.Nodes.Create(ctx, folder)
	})
	if errors.Is(err, repository.ErrDuplicateNode) {
		// A concurrent request created it first.
		folder, err = s.store.Nodes.FindFavoriteFolder(ctx, ownerID, s.favoritesName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create default favorite folder: %w", err)
	}

	return folder, nil
}

// splitUploadPath splits a relative upload path into its segments.
func splitUploadPath(path string) []string {
	path = strings.ReplaceAll(path, "\\", "/")
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" && seg != "." {
			segments = append(segments, seg)
		}
	}
	return segments
}

// UploadTree materializes a folder upload below parentID. The root folder
// must not exist yet. Entries that cannot be stored are skipped and
// reported instead of failing the upload.
func (s *TreeService) UploadTree(ctx context.Context, ownerID string, parentID *string, entries []UploadEntry, tags string) (*UploadResult, error) {
	if len(entries) == 0 {
		return nil, newError(KindValidation, "no files in folder upload")
	}

	paths := make([][]string, len(entries))
	for i, e := range entries {
		segments := splitUploadPath(e.Path)
		if len(segments) < 2 {
			return nil, newError(KindValidation, "path %q is not inside a folder", e.Path)
		}
		if i > 0 && segments[0] != paths[0][0] {
			return nil, newError(KindValidation, "all paths must share the root folder %q", paths[0][0])
		}
		if len(segments) > s.maxDepth {
			return nil, newError(KindTreeTooDeep, "path %q exceeds the maximum depth of %d", e.Path, s.maxDepth)
		}
		paths[i] = segments
	}

	rootName, err := sanitize(paths[0][0])
	if err != nil {
		return nil, err
	}
	tags = strings.TrimSpace(tags)

	result := &UploadResult{}
	blobs := &blobTracker{storage: s.storage}

	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		if _, err := requireFolder(ctx, tx, ownerID, parentID); err != nil {
			return err
		}
		if err := requireFreeName(ctx, tx, ownerID, parentID, rootName); err != nil {
			return err
		}

		root := newNode(ownerID, parentID, rootName)
		root.IsFolder = true
		root.Tags = tags
		if err := tx.Nodes.Create(ctx, root); err != nil {
			return fmt.Errorf("failed to create root folder: %w", err)
		}
		result.Root = root

		// folders caches resolved folders by their sanitized path below root.
		folders := map[string]*model.Node{"": root}

	nextEntry:
		for i, e := range entries {
			segments := paths[i]
			parent := root
			key := ""

			for _, seg := range segments[1 : len(segments)-1] {
				name, err := validation.SanitizeName(seg)
				if err != nil {
					result.Skipped = append(result.Skipped, SkippedEntry{Path: e.Path, Reason: SkipInvalidName})
					continue nextEntry
				}

				key += "/" + name
				if folder, ok := folders[key]; ok {
					parent = folder
					continue
				}

				existing, err := tx.Nodes.FindByName(ctx, ownerID, &parent.ID, name)
				switch {
				case err == nil && existing.IsFolder:
					parent = existing
				case err == nil:
					result.Skipped = append(result.Skipped, SkippedEntry{Path: e.Path, Reason: SkipFileConflict})
					continue nextEntry
				case errors.Is(err, repository.ErrNodeNotFound):
					folder := newNode(ownerID, &parent.ID, name)
					folder.IsFolder = true
					folder.Tags = tags
					if err := tx.Nodes.Create(ctx, folder); err != nil {
						return fmt.Errorf("failed to create folder %s: %w", key, err)
					}
					result.Folders = append(result.Folders, folder)
					parent = folder
				default:
					return fmt.Errorf("failed to resolve folder %s: %w", key, err)
				}
				folders[key] = parent
			}

			name, err := validation.SanitizeName(segments[len(segments)-1])
			if err != nil {
				result.Skipped = append(result.Skipped, SkippedEntry{Path: e.Path, Reason: SkipInvalidName})
				continue
			}

			ext := model.Ext(name)
			if !validation.AllowedExtension(ext) {
				result.Skipped = append(result.Skipped, SkippedEntry{Path: e.Path, Reason: SkipUnsupportedType})
				continue
			}

			_, err = tx.Nodes.FindByName(ctx, ownerID, &parent.ID, name)
			if err == nil {
				result.Skipped = append(result.Skipped, SkippedEntry{Path: e.Path, Reason: SkipExists})
				continue
			}
			if !errors.Is(err, repository.ErrNodeNotFound) {
				return fmt.Errorf("failed to check %s: %w", e.Path, err)
			}

			file := newNode(ownerID, &parent.ID, name)
			file.Category = validation.Category(ext)
			file.Tags = tags
			file.Size = int64(len(e.Content))
			if err := tx.Nodes.Create(ctx, file); err != nil {
				return fmt.Errorf("failed to create file %s: %w", e.Path, err)
			}
			if err := blobs.save(ctx, file, e.Content); err != nil {
				return err
			}
			result.Files = append(result.Files, file)
		}

		return nil
	})
	if err != nil {
		blobs.discard(ctx)
		return nil, err
	}

	slog.Info("folder uploaded",
		"owner_id", ownerID,
		"root", result.Root.Name,
		"files", len(result.Files),
		"folders", len(result.Folders),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// Rename changes a node's name. Files keep their original extension.
func (s *TreeService) Rename(ctx context.Context, ownerID, nodeID, newName string) (*model.Node, error) {
	name, err := sanitize(newName)
	if err != nil {
		return nil, err
	}

	var node *model.Node
	err = s.store.InTx(ctx, func(tx *repository.Store) error {
		node, err = tx.Nodes.ByID(ctx, ownerID, nodeID)
		if err != nil {
			return nodeError(err, nodeID)
		}

		if !node.IsFolder {
			base := name
			if i := strings.LastIndex(name, "."); i >= 0 {
				base = name[:i]
			}
			if strings.Trim(base, ".") == "" {
				return newError(KindValidation, "invalid name %q", newName)
			}
			name = base
			if _, ext := validation.SplitName(node.Name); ext != "" {
				name = base + "." + ext
			}
		}

		if name == node.Name {
			return nil
		}

		if node.IsFavoriteFolder {
			_, err := tx.Nodes.FindFavoriteFolder(ctx, ownerID, name)
			if err == nil {
				return newError(KindDuplicateName, "favorite folder %q already exists", name)
			}
			if !errors.Is(err, repository.ErrNodeNotFound) {
				return fmt.Errorf("failed to check favorite folder: %w", err)
			}
		} else if err := requireFreeName(ctx, tx, ownerID, node.ParentID, name); err != nil {
			return err
		}

		node.Name = name
		node.UpdatedAt = time.Now().UTC()
		return tx.Nodes.Update(ctx, node)
	})
	if err != nil {
		return nil, err
	}

	return node, nil
}

// Move reparents nodes under targetID, or to the root when targetID is nil.
// Favorite folders are not reparented: their favorite link is pointed at
// the target instead. The whole batch is validated before anything changes.
func (s *TreeService) Move(ctx context.Context, ownerID string, nodeIDs []string, targetID *string) (int, error) {
	ids := uniqueIDs(nodeIDs)
	if len(ids) == 0 {
		return 0, newError(KindValidation, "no nodes selected")
	}

	moved := 0
	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		nodes, err := tx.Nodes.ByIDs(ctx, ownerID, ids)
		if err != nil {
			return fmt.Errorf("failed to load nodes: %w", err)
		}
		if len(nodes) != len(ids) {
			return newError(KindNotFound, "one or more nodes not found")
		}

		if targetID != nil {
			for _, node := range nodes {
				if node.ID == *targetID {
					return newError(KindInvalidMove, "cannot move %q into itself", node.Name)
				}
				if !node.IsFolder {
					continue
				}
				below, err := newTreeWalker(tx.Nodes, ownerID, s.maxDepth).descendants(ctx, node)
				if err != nil {
					return err
				}
				for _, d := range below {
					if d.ID == *targetID {
						return newError(KindInvalidMove, "cannot move %q into its own subfolder", node.Name)
					}
				}
			}
		}

		var target *model.Node
		if targetID != nil {
			target, err = tx.Nodes.ByID(ctx, ownerID, *targetID)
			if err != nil {
				return nodeError(err, *targetID)
			}
			if !target.IsFolder {
				return newError(KindInvalidMove, "%q is not a folder", target.Name)
			}
		}

		for _, node := range nodes {
			if node.IsFavoriteFolder && target != nil && !target.IsFavoriteFolder {
				return newError(KindInvalidMove, "favorite folder %q can only be placed in another favorite folder", node.Name)
			}
		}

		now := time.Now().UTC()
		for _, node := range nodes {
			if node.IsFavoriteFolder {
				if target == nil {
					_, err = tx.Favorites.Unlink(ctx, node.ID)
				} else {
					err = tx.Favorites.Relink(ctx, node.ID, target.ID)
				}
				if err != nil {
					return fmt.Errorf("failed to relink favorite folder: %w", err)
				}
				moved++
				continue
			}

			if node.ParentKey() == deref(targetID) {
				continue
			}

			existing, err := tx.Nodes.FindByName(ctx, ownerID, targetID, node.Name)
			if err == nil && existing.ID != node.ID {
				return newError(KindDuplicateName, "%q already exists in the target folder", node.Name)
			}
			if err != nil && !errors.Is(err, repository.ErrNodeNotFound) {
				return fmt.Errorf("failed to check name: %w", err)
			}

			node.ParentID = targetID
			node.UpdatedAt = now
			if err := tx.Nodes.Update(ctx, node); err != nil {
				return fmt.Errorf("failed to move %s: %w", node.ID, err)
			}
			moved++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return moved, nil
}

// Delete removes the owned nodes among nodeIDs with their subtrees. Ids the
// caller does not own are ignored as long as at least one is owned.
func (s *TreeService) Delete(ctx context.Context, ownerID string, nodeIDs []string) (*DeleteResult, error) {
	ids := uniqueIDs(nodeIDs)
	if len(ids) == 0 {
		return nil, newError(KindValidation, "no nodes selected")
	}

	result := &DeleteResult{}
	var blobKeys []string

	err := s.store.InTx(ctx, func(tx *repository.Store) error {
		nodes, err := tx.Nodes.ByIDs(ctx, ownerID, ids)
		if err != nil {
			return fmt.Errorf("failed to load nodes: %w", err)
		}
		if len(nodes) == 0 {
			return newError(KindNotFound, "no matching nodes found")
		}
		result.ParentID = nodes[0].ParentID

		deleted := make(map[string]bool)
		for _, node := range nodes {
			if deleted[node.ID] {
				continue
			}
			keys, err := s.deleteSubtree(ctx, tx, ownerID, node, deleted)
			if err != nil {
				return err
			}
			blobKeys = append(blobKeys, keys...)
		}
		result.Deleted = len(deleted)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deleteBlobs(ctx, blobKeys)
	return result, nil
}

// deleteSubtree removes root and everything below it, children first,
// together with every favorite link touching a removed node. It returns the
// blob keys of removed files.
func (s *TreeService) deleteSubtree(ctx context.Context, tx *repository.Store, ownerID string, root *model.Node, deleted map[string]bool) ([]string, error) {
	below, err := newTreeWalker(tx.Nodes, ownerID, s.maxDepth).descendants(ctx, root)
	if err != nil {
		return nil, err
	}

	var keys []string
	for i := len(below) - 1; i >= 0; i-- {
		if err := s.deleteNode(ctx, tx, below[i], deleted, &keys); err != nil {
			return nil, err
		}
	}

	if err := s.deleteNode(ctx, tx, root, deleted, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *TreeService) deleteNode(ctx context.Context, tx *repository.Store, node *model.Node, deleted map[string]bool, keys *[]string) error {
	if deleted[node.ID] {
		return nil
	}

	err := tx.Favorites.UnlinkAll(ctx, node.ID)
	if err != nil {
		return fmt.Errorf("failed to remove favorite links of %s: %w", node.ID, err)
	}

	err = tx.Nodes.Delete(ctx, node.OwnerID, node.ID)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", node.ID, err)
	}

	deleted[node.ID] = true
	if !node.IsFolder {
		*keys = append(*keys, node.BlobKey())
	}
	return nil
}

// deleteBlobs removes file content after its records are gone, best effort.
func (s *TreeService) deleteBlobs(ctx context.Context, keys []string) {
	for _, key := range keys {
		err := s.storage.Delete(ctx, key)
		if err != nil {
			slog.Warn("failed to delete blob", "key", key, "error", err)
		}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
