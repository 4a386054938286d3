package handler

import (
	"net/http"
	"strings"

	"github.com/templui/filenest/internal/ctxkeys"
	"github.com/templui/filenest/internal/service"
)

type ExportHandler struct {
	archiveService *service.ArchiveService
}

func NewExportHandler(archiveService *service.ArchiveService) *ExportHandler {
	return &ExportHandler{
		archiveService: archiveService,
	}
}

// DownloadSelection zips the posted node ids.
func (h *ExportHandler) DownloadSelection(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	archive, err := h.archiveService.BuildArchive(r.Context(), userID, req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	sendFile(w, &service.Content{
		Name:     archive.Name,
		MimeType: service.ArchiveMimeType,
		Data:     archive.Data,
	}, true)
}

// Directory serves the owner's node listing as a text file.
func (h *ExportHandler) Directory(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	lines, err := h.archiveService.BuildManifest(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	body := strings.Join(lines, "\n")
	if body != "" {
		body += "\n"
	}

	sendFile(w, &service.Content{
		Name:     service.ManifestName,
		MimeType: "text/plain; charset=utf-8",
		Data:     []byte(body),
	}, true)
}
