package main

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolapi/pkg/models"
)

func TestAPIClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/review/3":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = w.Write([]byte(`"Review updated correctly"`))
		case "/api/review/id/9":
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, `{"message":"The review 4 does not exist"}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	api := &apiClient{http: srv.Client(), baseURL: srv.URL + "/"}
	ctx := context.Background()

	var msg string
	require.NoError(t, api.do(ctx, http.MethodPatch, "/api/review/3", "tok", map[string]string{"text": "x"}, &msg))
	assert.Equal(t, "Review updated correctly", msg)

	require.NoError(t, api.do(ctx, http.MethodDelete, "/api/review/id/9", "tok", nil, &msg))

	err := api.do(ctx, http.MethodGet, "/api/review/4", "", nil, nil)
	assert.ErrorContains(t, err, "404")
	assert.ErrorContains(t, err, "does not exist")
}

func TestTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "token.json")

	require.NoError(t, saveToken(path, "abc"))
	tok, err := readToken(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, clearToken(path))
	require.NoError(t, clearToken(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, saveToken(path, ""))
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("https://api.example.com:8443", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com:8443/ws", u)

	u, err = websocketURL("http://localhost:8080", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", u)
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "reviews.csv")
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, writeCSV(path, []models.Review{
		{ID: 1, ChampionID: 7, UserID: "u", Rating: 4, Title: "t, with comma", Text: "body", Created: created},
	}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "7", "u", "4", "t, with comma", "body", "2024-01-02T03:04:05Z"}, rows[1])
}
