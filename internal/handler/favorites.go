package handler

import (
	"net/http"

	"github.com/templui/filenest/internal/ctxkeys"
	"github.com/templui/filenest/internal/service"
)

type FavoriteHandler struct {
	treeService *service.TreeService
}

func NewFavoriteHandler(treeService *service.TreeService) *FavoriteHandler {
	return &FavoriteHandler{
		treeService: treeService,
	}
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	folders, err := h.treeService.ListFavoriteFolders(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, foldersResponse{Success: true, Folders: folders})
}

func (h *FavoriteHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	folder, err := h.treeService.CreateFavoriteFolder(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, nodeResponse{Success: true, Node: folder})
}

// AddItems links the posted node ids into the favorite folder {id}.
func (h *FavoriteHandler) AddItems(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	added, err := h.treeService.AddToFavorites(r.Context(), userID, req.IDs, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		Added   int  `json:"added"`
	}{true, added})
}

func (h *FavoriteHandler) RemoveItems(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	var req idsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	removed, err := h.treeService.RemoveFromFavorites(r.Context(), userID, req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool  `json:"success"`
		Removed int64 `json:"removed"`
	}{true, removed})
}

func (h *FavoriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := ctxkeys.UserID(r.Context())

	deleted, err := h.treeService.DeleteFavoriteFolderAndContents(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool `json:"success"`
		Deleted int  `json:"deleted"`
	}{true, deleted})
}
