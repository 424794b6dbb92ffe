package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolapi/internal/champion"
	"lolapi/internal/testhelper"
	"lolapi/pkg/models"
)

type staticSource struct {
	name   string
	champs []models.ChampionCanonical
	err    error
}

func (s staticSource) Name() string { return s.name }
func (s staticSource) FetchAll(context.Context) ([]models.ChampionCanonical, error) {
	return s.champs, s.err
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "kaisa", normalizeKey("Kai'Sa"))
	assert.Equal(t, "kaisa", normalizeKey(" kai sa "))
	assert.Equal(t, "", normalizeKey("  '' "))
}

func TestFetchAndMerge(t *testing.T) {
	a := staticSource{name: "a", champs: []models.ChampionCanonical{
		{ID: 103, Name: "Ahri", Blurb: "short", Tags: []string{"Mage"}, SourceIDs: map[string]string{"a": "Ahri"}},
		{ID: 86, Name: "Garen", Title: "The Might of Demacia"},
	}}
	b := staticSource{name: "b", champs: []models.ChampionCanonical{
		{Name: "ahri", Title: "the Nine-Tailed Fox", Blurb: "a much longer blurb", Tags: []string{"Mage", "Assassin"}, Difficulty: 5, SourceIDs: map[string]string{"b": "ahri"}},
	}}
	broken := staticSource{name: "broken", err: errors.New("down")}

	got, err := NewAggregator(nil, broken, a, b).FetchAndMerge(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	ahri := got[0]
	assert.Equal(t, "Ahri", ahri.Name)
	assert.Equal(t, int64(103), ahri.ID)
	assert.Equal(t, "the Nine-Tailed Fox", ahri.Title)
	assert.Equal(t, "a much longer blurb", ahri.Blurb)
	assert.Equal(t, []string{"Mage", "Assassin"}, ahri.Tags)
	assert.Equal(t, 5, ahri.Difficulty)
	assert.Equal(t, map[string]string{"a": "Ahri", "b": "ahri"}, ahri.SourceIDs)

	assert.Equal(t, "Garen", got[1].Name)
}

func TestDataDragonSource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/versions.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`["14.2.1","14.1.1"]`))
	})
	mux.HandleFunc("/cdn/14.2.1/data/en_US/champion.json", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"version":"14.2.1","data":{
			"Ahri":{"id":"Ahri","key":"103","name":"Ahri","title":"the Nine-Tailed Fox","blurb":"fox",
				"info":{"difficulty":5},"image":{"full":"Ahri.png"},"tags":["Mage","Assassin"]},
			"Broken":{"id":"Broken","key":"x","name":"Broken"}
		}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	src := NewDataDragonSource()
	src.BaseURL = srv.URL

	got, err := src.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(103), got[0].ID)
	assert.Equal(t, 5, got[0].Difficulty)
	assert.Equal(t, srv.URL+"/cdn/14.2.1/img/champion/Ahri.png", got[0].ImageURL)
	assert.Equal(t, "Ahri", got[0].SourceIDs["datadragon"])
}

func TestDataDragonSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewDataDragonSource()
	src.BaseURL = srv.URL
	_, err := src.FetchAll(context.Background())
	assert.ErrorContains(t, err, "status 502")
}

func TestMirrorSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/champions", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]models.ChampionCanonical{
			{ID: 86, Name: "Garen", Tags: []string{"Fighter"}},
			{Name: " "},
		})
	}))
	defer srv.Close()

	got, err := NewMirrorSource(srv.URL + "/").FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Garen", got[0].SourceIDs["mirror"])
}

func TestSaveToDatabase(t *testing.T) {
	db := testhelper.NewDB(t)
	ctx := context.Background()

	champs := []models.ChampionCanonical{
		{ID: 103, Name: "Ahri", Title: "the Nine-Tailed Fox", Blurb: "fox", Tags: []string{"Mage", "Assassin"}, Difficulty: 5},
		{ID: 99, Name: "Lux", Tags: []string{"Mage"}},
		{Name: "NoID"},
	}
	n, err := SaveToDatabase(ctx, db, champs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// second run updates in place
	champs[0].Blurb = "updated fox"
	_, err = SaveToDatabase(ctx, db, champs)
	require.NoError(t, err)

	repo := champion.NewRepo(db)
	ahri, err := repo.GetByName(ctx, "ahri")
	require.NoError(t, err)
	require.NotNil(t, ahri)
	require.NotNil(t, ahri.RoleID)

	lux, err := repo.GetByID(ctx, 99)
	require.NoError(t, err)
	require.NotNil(t, lux.RoleID)
	assert.Equal(t, *ahri.RoleID, *lux.RoleID)

	info, err := repo.GetInfo(ctx, 103)
	require.NoError(t, err)
	assert.Equal(t, "updated fox", info.Blurb)
	assert.Equal(t, []string{"Mage", "Assassin"}, info.Tags)

	var roles int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM roles`).Scan(&roles))
	assert.Equal(t, 1, roles)
}
