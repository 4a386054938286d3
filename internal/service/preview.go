package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/templui/filenest/internal/convert"
	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/repository"
	"github.com/templui/filenest/internal/storage"
	"github.com/templui/filenest/internal/validation"
)

// Content is a file body ready to be served.
type Content struct {
	Name     string
	MimeType string
	Data     []byte
}

// inlineExtensions are served as-is for previews.
var inlineExtensions = map[string]bool{
	"txt": true, "pdf": true,
	"png": true, "jpg": true, "jpeg": true, "gif": true,
	"mp4": true, "avi": true, "mkv": true,
	"mp3": true,
}

type PreviewService struct {
	store     *repository.Store
	storage   storage.Storage
	archives  *ArchiveService
	converter convert.Converter
}

func NewPreviewService(store *repository.Store, storage storage.Storage, archives *ArchiveService, converter convert.Converter) *PreviewService {
	return &PreviewService{
		store:     store,
		storage:   storage,
		archives:  archives,
		converter: converter,
	}
}

// Download returns a file's bytes, or a zip archive when nodeID is a folder.
func (s *PreviewService) Download(ctx context.Context, ownerID, nodeID string) (*Content, error) {
	node, err := requireNode(ctx, s.store, ownerID, nodeID)
	if err != nil {
		return nil, err
	}

	if node.IsFolder {
		archive, err := s.archives.build(ctx, ownerID, []*model.Node{node})
		if err != nil {
			return nil, err
		}
		return &Content{Name: archive.Name, MimeType: ArchiveMimeType, Data: archive.Data}, nil
	}

	data, err := s.read(ctx, node)
	if err != nil {
		return nil, err
	}

	return &Content{Name: node.Name, MimeType: validation.MimeType(node.Ext()), Data: data}, nil
}

// Preview returns a browser-displayable rendition of a file. Office
// documents are converted to PDF; archives and folders are not previewable.
func (s *PreviewService) Preview(ctx context.Context, ownerID, nodeID string) (*Content, error) {
	node, err := requireNode(ctx, s.store, ownerID, nodeID)
	if err != nil {
		return nil, err
	}

	if node.IsFolder {
		return nil, newError(KindUnsupportedType, "folders cannot be previewed, download instead")
	}

	ext := node.Ext()
	switch {
	case inlineExtensions[ext]:
		data, err := s.read(ctx, node)
		if err != nil {
			return nil, err
		}
		return &Content{Name: node.Name, MimeType: validation.MimeType(ext), Data: data}, nil

	case validation.Convertible(ext):
		data, err := s.read(ctx, node)
		if err != nil {
			return nil, err
		}

		pdf, err := s.converter.Convert(ctx, data, ext)
		if err != nil {
			if errors.Is(err, convert.ErrConversion) {
				return nil, wrapError(KindConversion, err, "could not convert %q for preview", node.Name)
			}
			return nil, fmt.Errorf("failed to convert %s: %w", node.ID, err)
		}

		base, _ := validation.SplitName(node.Name)
		return &Content{Name: base + ".pdf", MimeType: validation.MimeType("pdf"), Data: pdf}, nil

	default:
		return nil, newError(KindUnsupportedType, "%q cannot be previewed, download instead", node.Name)
	}
}

func (s *PreviewService) read(ctx context.Context, node *model.Node) ([]byte, error) {
	data, err := storage.ReadAll(ctx, s.storage, node.BlobKey())
	if err != nil {
		return nil, fmt.Errorf("failed to read content of %s: %w", node.ID, err)
	}
	return data, nil
}
