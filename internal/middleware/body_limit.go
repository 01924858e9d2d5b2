package middleware

import (
	"io"
	"net/http"
)

// DefaultMaxBodyBytes caps JSON payloads. The largest legit body is a workout entry.
const DefaultMaxBodyBytes = 1 << 20

// LimitRequestBody caps the body the handlers may read and drains what they left unread.
// A body over the limit makes the JSON decoder fail, which handlers report as a validation error.
func LimitRequestBody(maxBytes int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)

			_, _ = io.Copy(io.Discard, r.Body)
			_ = r.Body.Close()
		})
	}
}
