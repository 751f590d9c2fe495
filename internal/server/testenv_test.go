package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"litreview/internal/config"
	"litreview/internal/middleware"
	"litreview/internal/models"
	"litreview/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	cfg    *config.Config
	db     *gorm.DB
	server *Server
	app    *fiber.App
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithRedis(t, nil)
}

func newTestEnvWithRedis(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Env:                  "test",
		Port:                 "0",
		JWTSecret:            "test-secret-that-is-at-least-32-characters",
		JWTIssuer:            "litreview-test",
		UploadDir:            t.TempDir(),
		ImageMaxUploadSizeMB: 1,
		AllowedOrigins:       "http://localhost:5173",
	}
	db := testutil.NewSQLiteDB(t)
	s := NewServer(cfg, db, rdb)
	return &testEnv{cfg: cfg, db: db, server: s, app: s.App()}
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	tok, err := middleware.IssueToken(e.cfg, user.ID, TokenTTL)
	require.NoError(t, err)
	return tok
}

// do sends a JSON request and returns the response with its body read.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req, token)
}

func (e *testEnv) send(t *testing.T, req *http.Request, token string) (*http.Response, []byte) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}
