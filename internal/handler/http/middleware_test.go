package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/techstore/pkg/logger"
	"github.com/utafrali/techstore/pkg/middleware"
)

// loggingHandler logs one line through the request-scoped logger the way the
// service layer enriches it.
func loggingHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger.WithContext(ctx, logger.FromContext(ctx)).InfoContext(ctx, "handled")
	w.WriteHeader(http.StatusOK)
}

func TestSessionID_GeneratedSessionLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("storefront", "info", &buf)

	h := middleware.RequestLogger(base)(SessionID(http.HandlerFunc(loggingHandler)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	sid := rec.Header().Get(middleware.SessionIDHeader)
	require.NotEmpty(t, sid)
	assert.Equal(t, 1, strings.Count(buf.String(), `"session_id"`), buf.String())
	assert.Contains(t, buf.String(), sid)
}
