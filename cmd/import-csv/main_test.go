package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolapi/internal/champion"
	"lolapi/internal/testhelper"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportRegionsAndChampions(t *testing.T) {
	db := testhelper.NewDB(t)
	ctx := context.Background()

	regions := writeFile(t, "regions.csv", "Name\nIonia\nDemacia\n\nIonia\n")
	n, err := importRegions(ctx, db, regions)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM regions`).Scan(&count))
	assert.Equal(t, 2, count)

	champs := writeFile(t, "champions.csv",
		"id,name,title,region,role,image_url,blurb,difficulty,tags\n"+
			"103,Ahri,the Nine-Tailed Fox,Ionia,Mage,ahri.png,Fox,5,Mage|Assassin\n"+
			"86,Garen,the Might of Demacia,Demacia,,,,,\n"+
			",Nameless,,,,,,,\n")
	n, err = importChampions(ctx, db, champs)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	repo := champion.NewRepo(db)
	ahri, err := repo.GetByName(ctx, "ahri")
	require.NoError(t, err)
	require.NotNil(t, ahri)
	assert.Equal(t, "the Nine-Tailed Fox", ahri.Title)
	require.NotNil(t, ahri.RegionID)
	require.NotNil(t, ahri.RoleID)

	info, err := repo.GetInfo(ctx, 103)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, 5, info.Difficulty)
	assert.Equal(t, []string{"Mage", "Assassin"}, info.Tags)

	garenInfo, err := repo.GetInfo(ctx, 86)
	require.NoError(t, err)
	assert.Nil(t, garenInfo)
}

func TestImportRegions_MissingFile(t *testing.T) {
	db := testhelper.NewDB(t)

	n, err := importRegions(context.Background(), db, filepath.Join(t.TempDir(), "nope.csv"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImportChampions_BadID(t *testing.T) {
	db := testhelper.NewDB(t)
	champs := writeFile(t, "champions.csv", "id,name\nabc,Ahri\n")

	_, err := importChampions(context.Background(), db, champs)
	assert.Error(t, err)
}
