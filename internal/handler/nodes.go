package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/templui/filenest/internal/ctxkeys"
	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/service"
)

type NodeHandler struct {
	treeService    *service.TreeService
	previewService *service.PreviewService
	maxUploadSize  int64
}

func NewNodeHandler(treeService *service.TreeService, previewService *service.PreviewService, maxUploadSize int64) *NodeHandler {
	return &NodeHandler{
		treeService:    treeService,
		previewService: previewService,
		maxUploadSize:  maxUploadSize,
	}
}

type nodeResponse struct {
	Success bool        `json:"success"`
	Node    *model.Node `json:"node"`
}

type entriesResponse struct {
	Success bool               `json:"success"`
	Nodes   []*model.NodeEntry `json:"nodes"`
}

type foldersResponse struct {
	Success bool          `json:"success"`
	Folders []*model.Node `json:"folders"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

type moveRequest struct {
	IDs            []string `json:"ids"`
	TargetFolderID *string  `json:"target_folder_id"`
}

type renameRequest struct {
	NewName string `json:"new_name"`
}

type createFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
	Tags     string  `json:"tags"`
}

func (h *NodeHandler) parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	err := r.ParseMultipartForm(32 << 20)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{
				Error: errorDetail{Kind: service.KindValidation, Message: "upload too large"},
			})
			return false
		}
		badRequest(w, "invalid multipart form")
		return false
	}
	return true
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}

// CreateFile stores a single uploaded file (multipart "file").
func (h *NodeHandler) CreateFile(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	if !h.parseMultipart(w, r) {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "file is required")
		return
	}
	_ = file.Close()

	content, err := readPart(header)
	if err != nil {
		slog.Error("failed to read upload", "error", err, "user_id", userID)
		badRequest(w, "failed to read upload")
		return
	}

	node, err := h.treeService.CreateFile(r.Context(), userID, optionalID(r.FormValue("parent_id")), header.Filename, content, r.FormValue("tags"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, nodeResponse{Success: true, Node: node})
}

// UploadFolder stores a folder upload. Each "folder" file part is paired
// with the "path" form value at the same position, since multipart file
// names carry no directories.
func (h *NodeHandler) UploadFolder(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	if !h.parseMultipart(w, r) {
		return
	}

	files := r.MultipartForm.File["folder"]
	paths := r.MultipartForm.Value["path"]
	if len(files) == 0 {
		badRequest(w, "no files in folder upload")
		return
	}
	if len(paths) != len(files) {
		badRequest(w, "every uploaded file needs a matching path")
		return
	}

	entries := make([]service.UploadEntry, len(files))
	for i, header := range files {
		content, err := readPart(header)
		if err != nil {
			slog.Error("failed to read upload", "error", err, "user_id", userID)
			badRequest(w, "failed to read upload")
			return
		}
		entries[i] = service.UploadEntry{Path: paths[i], Content: content}
	}

	result, err := h.treeService.UploadTree(r.Context(), userID, optionalID(r.FormValue("parent_id")), entries, r.FormValue("tags"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		Success bool `json:"success"`
		*service.UploadResult
	}{true, result})
}

func (h *NodeHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req createFolderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	node, err := h.treeService.CreateFolder(r.Context(), userID, req.ParentID, req.Name, req.Tags)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, nodeResponse{Success: true, Node: node})
}

// List returns the children of ?parent_id filtered by ?category.
func (h *NodeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	q := r.URL.Query()

	entries, err := h.treeService.ListChildren(r.Context(), userID, optionalID(q.Get("parent_id")), q.Get("category"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entriesResponse{Success: true, Nodes: entries})
}

func (h *NodeHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	folders, err := h.treeService.ListFolders(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, foldersResponse{Success: true, Folders: folders})
}

func (h *NodeHandler) Subfolders(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	ids, err := h.treeService.GetSubfolderIDs(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool     `json:"success"`
		IDs     []string `json:"ids"`
	}{true, ids})
}

func (h *NodeHandler) Rename(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req renameRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	node, err := h.treeService.Rename(r.Context(), userID, r.PathValue("id"), req.NewName)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, nodeResponse{Success: true, Node: node})
}

func (h *NodeHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	moved, err := h.treeService.Move(r.Context(), userID, req.IDs, req.TargetFolderID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		Moved   int  `json:"moved"`
	}{true, moved})
}

func (h *NodeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.treeService.Delete(r.Context(), userID, req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		*service.DeleteResult
	}{true, result})
}

func (h *NodeHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())
	q := r.URL.Query()

	entries, err := h.treeService.Search(r.Context(), userID, q.Get("name"), q.Get("tags"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entriesResponse{Success: true, Nodes: entries})
}

func (h *NodeHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	content, err := h.previewService.Download(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	sendFile(w, content, true)
}

func (h *NodeHandler) Preview(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	content, err := h.previewService.Preview(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	sendFile(w, content, false)
}
