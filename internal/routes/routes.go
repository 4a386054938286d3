package routes

import (
	"net/http"

	"github.com/templui/filenest/internal/app"
	"github.com/templui/filenest/internal/handler"
	"github.com/templui/filenest/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	nodes := handler.NewNodeHandler(app.TreeService, app.PreviewService, app.Cfg.MaxUploadSize)
	favorites := handler.NewFavoriteHandler(app.TreeService)
	export := handler.NewExportHandler(app.ArchiveService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)

	// ============================================================================
	// API ROUTES (authenticated)
	// ============================================================================

	api := http.NewServeMux()
	uploads := middleware.RateLimit(app.UploadLimiter)

	// Uploads
	api.Handle("POST /api/files", uploads(http.HandlerFunc(nodes.CreateFile)))
	api.Handle("POST /api/folders/upload", uploads(http.HandlerFunc(nodes.UploadFolder)))

	// Tree
	api.HandleFunc("POST /api/folders", nodes.CreateFolder)
	api.HandleFunc("GET /api/folders", nodes.ListFolders)
	api.HandleFunc("GET /api/nodes", nodes.List)
	api.HandleFunc("GET /api/nodes/{id}/subfolders", nodes.Subfolders)
	api.HandleFunc("PATCH /api/nodes/{id}", nodes.Rename)
	api.HandleFunc("POST /api/nodes/move", nodes.Move)
	api.HandleFunc("POST /api/nodes/delete", nodes.Delete)
	api.HandleFunc("GET /api/search", nodes.Search)

	// Content
	api.HandleFunc("GET /api/nodes/{id}/download", nodes.Download)
	api.HandleFunc("GET /api/nodes/{id}/preview", nodes.Preview)
	api.HandleFunc("POST /api/download", export.DownloadSelection)
	api.HandleFunc("GET /api/export/directory", export.Directory)

	// Favorites
	api.HandleFunc("GET /api/favorites", favorites.List)
	api.HandleFunc("POST /api/favorites", favorites.Create)
	api.HandleFunc("POST /api/favorites/remove", favorites.RemoveItems)
	api.HandleFunc("POST /api/favorites/{id}/items", favorites.AddItems)
	api.HandleFunc("DELETE /api/favorites/{id}", favorites.Delete)

	mux.Handle("/api/", middleware.Chain(api,
		middleware.CSRFProtection(app.Cfg.IsProduction()),
		middleware.Authenticate(app.TokenService, app.TreeService),
	))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.Recover,
		middleware.SecurityHeaders,
	)
}
