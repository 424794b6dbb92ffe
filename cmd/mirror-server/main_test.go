package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T, content string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	path := filepath.Join(t.TempDir(), "mirror.json")
	if content != "" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	r := gin.New()
	registerRoutes(r, path)
	return r
}

func TestChampions(t *testing.T) {
	r := newRouter(t, `[{"id":103,"name":"Ahri"}]`)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/champions", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":103,"name":"Ahri"}]`, w.Body.String())
}

func TestChampions_Errors(t *testing.T) {
	for name, content := range map[string]string{
		"missing file": "",
		"not a list":   `{"id":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			r := newRouter(t, content)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/champions", nil))
			assert.Equal(t, http.StatusInternalServerError, w.Code)
		})
	}
}
