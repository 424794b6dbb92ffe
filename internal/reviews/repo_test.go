package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolapi/internal/testhelper"
	"lolapi/pkg/models"
)

func TestRepo_InsertAndRead(t *testing.T) {
	db := testhelper.NewDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	userID := testhelper.SeedUser(t, db, "alice")
	testhelper.SeedChampion(t, db, 7, "Ahri")

	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	review := &models.Review{Rating: 4, Title: "t", Text: "some review text here", UserID: userID, ChampionID: 7, Created: created}
	affected, err := repo.Insert(ctx, review)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	require.NotZero(t, review.ID)

	got, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, review.Text, got.Text)
	assert.True(t, created.Equal(got.Created))

	exists, err := repo.Exists(ctx, review.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	view, err := repo.GetView(ctx, review.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "Ahri", view.ChampionName)

	byName, err := repo.ListByChampionName(ctx, "AHRI")
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	has, err := repo.ChampionNameHasReviews(ctx, "ahri")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRepo_MissingRows(t *testing.T) {
	db := testhelper.NewDB(t)
	repo := NewRepo(db)
	ctx := context.Background()

	got, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)

	view, err := repo.GetView(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, view)

	affected, err := repo.Update(ctx, models.Review{ID: 3, Rating: 1, Title: "x", Text: "y"})
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.Delete(ctx, 3)
	require.NoError(t, err)
	assert.Zero(t, affected)

	list, err := repo.ListByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRepo_RatingConstraint(t *testing.T) {
	db := testhelper.NewDB(t)
	repo := NewRepo(db)

	userID := testhelper.SeedUser(t, db, "alice")
	testhelper.SeedChampion(t, db, 7, "Ahri")

	_, err := repo.Insert(context.Background(), &models.Review{
		Rating: 6, Title: "t", Text: "some review text here", UserID: userID, ChampionID: 7, Created: time.Now(),
	})
	assert.Error(t, err)
}

func TestRepo_ForeignKeys(t *testing.T) {
	db := testhelper.NewDB(t)
	repo := NewRepo(db)
	userID := testhelper.SeedUser(t, db, "alice")

	_, err := repo.Insert(context.Background(), &models.Review{
		Rating: 3, Title: "t", Text: "some review text here", UserID: userID, ChampionID: 404, Created: time.Now(),
	})
	assert.Error(t, err)
}
