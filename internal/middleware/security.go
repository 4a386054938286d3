package middleware

import "net/http"

// previewCSP keeps inline previews of uploaded content from running scripts
// or loading anything beyond the response itself.
const previewCSP = "default-src 'none'; img-src 'self' data:; media-src 'self'; style-src 'unsafe-inline'; sandbox"

// SecurityHeaders sets response headers for a JSON and file-serving API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", previewCSP)
		next.ServeHTTP(w, r)
	})
}
