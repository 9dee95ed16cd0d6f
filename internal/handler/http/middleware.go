package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/utafrali/techstore/pkg/httputil"
	"github.com/utafrali/techstore/pkg/logger"
	"github.com/utafrali/techstore/pkg/middleware"
)

type contextKey string

const sessionIDKey contextKey = "session_id"

// maxSessionIDLength bounds client-supplied session ids; they become storage keys.
const maxSessionIDLength = 128

// SessionID reads the X-Session-ID header and stores it in the request
// context. A request without one is assigned a fresh UUID, which is echoed in
// the response header so the client can adopt it.
func SessionID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimSpace(r.Header.Get(middleware.SessionIDHeader))
		if len(sid) > maxSessionIDLength {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-Session-ID header is too long"},
			})
			return
		}

		if sid == "" {
			sid = uuid.NewString()
		}
		w.Header().Set(middleware.SessionIDHeader, sid)

		ctx := logger.WithSessionID(r.Context(), sid)
		ctx = context.WithValue(ctx, sessionIDKey, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromContext(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
