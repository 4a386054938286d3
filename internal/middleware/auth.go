package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/filenest/internal/ctxkeys"
	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/service"
)

// FavoritesProvisioner creates a user's default favorite folder on demand.
type FavoritesProvisioner interface {
	EnsureDefaultFavoriteFolder(ctx context.Context, ownerID string) (*model.Node, error)
}

// Authenticate verifies the session token from the Authorization header or
// the auth cookie and puts the user id into the request context. Requests
// without a valid token are rejected with 401.
func Authenticate(tokens *service.TokenService, favorites FavoritesProvisioner) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			fromCookie := false
			if token == "" {
				cookie, err := r.Cookie(service.AuthCookieName)
				if err == nil {
					token = cookie.Value
					fromCookie = true
				}
			}

			if token == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				slog.Debug("rejected token", "error", err, "request_id", ctxkeys.RequestID(r.Context()))
				if fromCookie {
					tokens.ClearCookie(w)
				}
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
				return
			}

			ctx := ctxkeys.WithUserID(r.Context(), userID)

			_, err = favorites.EnsureDefaultFavoriteFolder(ctx, userID)
			if err != nil {
				slog.Error("failed to provision favorites", "error", err, "user_id", userID)
				writeError(w, http.StatusInternalServerError, service.KindInternal, "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type errorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	var body errorBody
	body.Error.Kind = kind
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
