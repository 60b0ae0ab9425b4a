package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/chills-dance/camp-api/internal/auth"
)

func serveWS(t *testing.T, token string) *httptest.ResponseRecorder {
	t.Helper()
	issuer := auth.NewIssuer("access-secret", "refresh-secret", 15, 7)
	h := NewHandler(NewHub(zerolog.Nop()), issuer)

	e := echo.New()
	target := "/ws"
	if token != "" {
		target += "?token=" + token
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h.Serve(e.NewContext(req, rec)))
	return rec
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	rec := serveWS(t, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "Authentication token required", body["error"])
}

func TestHandshakeRejectsInvalidToken(t *testing.T) {
	rec := serveWS(t, "not-a-real-token")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Invalid authentication token", body["error"])
}

func TestHandshakeRejectsExpiredToken(t *testing.T) {
	expiredIssuer := auth.NewIssuer("access-secret", "refresh-secret", -1, 7)
	token, err := expiredIssuer.IssueAccess("u1", "a@b.co", "STUDENT")
	require.NoError(t, err)

	rec := serveWS(t, token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandshakeRejectsRefreshTokenAsAccess(t *testing.T) {
	issuer := auth.NewIssuer("access-secret", "refresh-secret", 15, 7)
	refresh, err := issuer.IssueRefresh("u1", "a@b.co", "STUDENT")
	require.NoError(t, err)

	rec := serveWS(t, refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
