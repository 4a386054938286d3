package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"

	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/repository"
	"github.com/templui/filenest/internal/storage"
)

const (
	ArchiveMimeType    = "application/zip"
	bulkArchiveName    = "files.zip"
	ManifestName       = "file_structure.txt"
	manifestLineFormat = "%s (ID: %s)"
)

type Archive struct {
	Name string
	Data []byte
}

// ArchiveService serializes subtrees into zip archives.
type ArchiveService struct {
	store    *repository.Store
	storage  storage.Storage
	maxDepth int
}

func NewArchiveService(store *repository.Store, storage storage.Storage, maxDepth int) *ArchiveService {
	return &ArchiveService{
		store:    store,
		storage:  storage,
		maxDepth: maxDepth,
	}
}

// BuildArchive zips the owned nodes among nodeIDs. Files are stored under
// their bare name and folders under their name with their full subtree.
// A single folder yields "<folder>.zip", anything else "files.zip".
func (s *ArchiveService) BuildArchive(ctx context.Context, ownerID string, nodeIDs []string) (*Archive, error) {
	ids := uniqueIDs(nodeIDs)
	if len(ids) == 0 {
		return nil, newError(KindValidation, "no nodes selected")
	}

	nodes, err := s.store.Nodes.ByIDs(ctx, ownerID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}
	if len(nodes) == 0 {
		return nil, newError(KindNotFound, "no matching nodes found")
	}

	return s.build(ctx, ownerID, nodes)
}

func (s *ArchiveService) build(ctx context.Context, ownerID string, nodes []*model.Node) (*Archive, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, node := range nodes {
		var err error
		if node.IsFolder {
			err = s.addFolder(ctx, zw, ownerID, node)
		} else {
			err = s.addFile(ctx, zw, node, node.Name)
		}
		if err != nil {
			_ = zw.Close()
			return nil, err
		}
	}

	err := zw.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}

	name := bulkArchiveName
	if len(nodes) == 1 && nodes[0].IsFolder {
		name = nodes[0].Name + ".zip"
	}

	return &Archive{Name: name, Data: buf.Bytes()}, nil
}

func (s *ArchiveService) addFolder(ctx context.Context, zw *zip.Writer, ownerID string, folder *model.Node) error {
	paths := map[string]string{folder.ID: folder.Name}

	_, err := zw.Create(folder.Name + "/")
	if err != nil {
		return fmt.Errorf("failed to add folder %s: %w", folder.Name, err)
	}

	walker := newTreeWalker(s.store.Nodes, ownerID, s.maxDepth)
	return walker.walk(ctx, folder, func(node, parent *model.Node) error {
		path := paths[parent.ID] + "/" + node.Name
		if !node.IsFolder {
			return s.addFile(ctx, zw, node, path)
		}

		paths[node.ID] = path
		_, err := zw.Create(path + "/")
		if err != nil {
			return fmt.Errorf("failed to add folder %s: %w", path, err)
		}
		return nil
	})
}

func (s *ArchiveService) addFile(ctx context.Context, zw *zip.Writer, node *model.Node, path string) error {
	content, err := storage.ReadAll(ctx, s.storage, node.BlobKey())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:     path,
		Method:   zip.Deflate,
		Modified: node.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to add %s: %w", path, err)
	}

	_, err = w.Write(content)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// BuildManifest lists every node of the owner as "<source> (ID: <id>)",
// where source is the parent folder's name or "uploaded individually".
func (s *ArchiveService) BuildManifest(ctx context.Context, ownerID string) ([]string, error) {
	nodes, err := s.store.Nodes.All(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		names[n.ID] = n.Name
	}

	lines := make([]string, len(nodes))
	for i, n := range nodes {
		lines[i] = fmt.Sprintf(manifestLineFormat, sourceLabel(n, names), n.ID)
	}
	return lines, nil
}
