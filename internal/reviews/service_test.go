package reviews

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lolapi/pkg/models"
)

type repoFake struct {
	ListFunc                   func(ctx context.Context) ([]models.Review, error)
	ListByChampionFunc         func(ctx context.Context, championID int64) ([]models.Review, error)
	ListByUsernameFunc         func(ctx context.Context, username string) ([]models.Review, error)
	ListByChampionNameFunc     func(ctx context.Context, name string) ([]models.Review, error)
	ChampionNameHasReviewsFunc func(ctx context.Context, name string) (bool, error)
	GetByIDFunc                func(ctx context.Context, id int64) (*models.Review, error)
	ExistsFunc                 func(ctx context.Context, id int64) (bool, error)
	GetViewFunc                func(ctx context.Context, id int64) (*models.ReviewView, error)
	InsertFunc                 func(ctx context.Context, review *models.Review) (int64, error)
	UpdateFunc                 func(ctx context.Context, review models.Review) (int64, error)
	DeleteFunc                 func(ctx context.Context, id int64) (int64, error)
}

func (f *repoFake) List(ctx context.Context) ([]models.Review, error) { return f.ListFunc(ctx) }
func (f *repoFake) ListByChampion(ctx context.Context, id int64) ([]models.Review, error) {
	return f.ListByChampionFunc(ctx, id)
}
func (f *repoFake) ListByUsername(ctx context.Context, u string) ([]models.Review, error) {
	return f.ListByUsernameFunc(ctx, u)
}
func (f *repoFake) ListByChampionName(ctx context.Context, n string) ([]models.Review, error) {
	return f.ListByChampionNameFunc(ctx, n)
}
func (f *repoFake) ChampionNameHasReviews(ctx context.Context, n string) (bool, error) {
	return f.ChampionNameHasReviewsFunc(ctx, n)
}
func (f *repoFake) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	return f.GetByIDFunc(ctx, id)
}
func (f *repoFake) Exists(ctx context.Context, id int64) (bool, error) { return f.ExistsFunc(ctx, id) }
func (f *repoFake) GetView(ctx context.Context, id int64) (*models.ReviewView, error) {
	return f.GetViewFunc(ctx, id)
}
func (f *repoFake) Insert(ctx context.Context, r *models.Review) (int64, error) {
	return f.InsertFunc(ctx, r)
}
func (f *repoFake) Update(ctx context.Context, r models.Review) (int64, error) {
	return f.UpdateFunc(ctx, r)
}
func (f *repoFake) Delete(ctx context.Context, id int64) (int64, error) { return f.DeleteFunc(ctx, id) }

type championFinderFake struct {
	GetByNameFunc func(ctx context.Context, name string) (*models.Champion, error)
}

func (f *championFinderFake) GetByName(ctx context.Context, name string) (*models.Champion, error) {
	return f.GetByNameFunc(ctx, name)
}

// tokensFake maps tokens straight to user ids.
type tokensFake map[string]string

func (f tokensFake) DecodeToken(_ context.Context, token string) (string, error) {
	id, ok := f[token]
	if !ok {
		return "", errors.New("bad token")
	}
	return id, nil
}

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *repoFake, champs *championFinderFake) *Service {
	if champs == nil {
		champs = &championFinderFake{}
	}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, champs,
		tokensFake{"tok-u": "user-u", "tok-a": "user-a", "tok-b": "user-b"})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateReview_StoresCallerAndDerivedTitle(t *testing.T) {
	var stored *models.Review
	repo := &repoFake{
		InsertFunc: func(_ context.Context, r *models.Review) (int64, error) {
			r.ID = 11
			stored = r
			return 1, nil
		},
	}
	svc := newTestService(repo, nil)

	got, err := svc.CreateReview(context.Background(), "tok-u", 4, 7,
		ReviewInput{Text: "This champion is excellent and fun"})
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, "user-u", stored.UserID)
	assert.Equal(t, int64(7), stored.ChampionID)
	assert.Equal(t, 4, stored.Rating)
	assert.Equal(t, "This champion is...", stored.Title)
	assert.Equal(t, fixedNow, stored.Created)
}

func TestCreateReview_KeepsGivenTitle(t *testing.T) {
	repo := &repoFake{
		InsertFunc: func(_ context.Context, r *models.Review) (int64, error) { return 1, nil },
	}
	svc := newTestService(repo, nil)

	got, err := svc.CreateReview(context.Background(), "tok-u", 0, 1,
		ReviewInput{Title: "Short", Text: "Plenty of characters here"})
	require.NoError(t, err)
	assert.Equal(t, "Short", got.Title)
	assert.Equal(t, 0, got.Rating)
}

func TestCreateReview_ShortTextWithoutTitle(t *testing.T) {
	repo := &repoFake{
		InsertFunc: func(context.Context, *models.Review) (int64, error) {
			t.Fatal("insert must not be called")
			return 0, nil
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.CreateReview(context.Background(), "tok-u", 3, 1, ReviewInput{Text: "too short"})
	assert.ErrorIs(t, err, ErrTextTooShort)
}

func TestCreateReview_BadToken(t *testing.T) {
	repo := &repoFake{
		InsertFunc: func(context.Context, *models.Review) (int64, error) {
			t.Fatal("insert must not be called")
			return 0, nil
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.CreateReview(context.Background(), "nope", 3, 1, ReviewInput{Text: "long enough text for a review"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateReview_PersistenceFailures(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		err      error
	}{
		{name: "zero rows", affected: 0},
		{name: "driver error", err: errors.New("disk full")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoFake{
				InsertFunc: func(context.Context, *models.Review) (int64, error) { return tt.affected, tt.err },
			}
			svc := newTestService(repo, nil)

			_, err := svc.CreateReview(context.Background(), "tok-u", 3, 1,
				ReviewInput{Text: "long enough text for a review"})
			assert.ErrorIs(t, err, ErrPersistence)
		})
	}
}

func TestCreateReviewWithChampionName(t *testing.T) {
	var stored *models.Review
	repo := &repoFake{
		InsertFunc: func(_ context.Context, r *models.Review) (int64, error) {
			stored = r
			return 1, nil
		},
	}
	champs := &championFinderFake{
		GetByNameFunc: func(_ context.Context, name string) (*models.Champion, error) {
			if name == "Ahri" {
				return &models.Champion{ID: 103, Name: "Ahri"}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo, champs)

	_, err := svc.CreateReviewWithChampionName(context.Background(), "tok-u", 5, "Ahri",
		ReviewInput{Text: "Charming and very mobile mid laner"})
	require.NoError(t, err)
	assert.Equal(t, int64(103), stored.ChampionID)

	_, err = svc.CreateReviewWithChampionName(context.Background(), "tok-u", 5, "Nobody",
		ReviewInput{Text: "Charming and very mobile mid laner"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func ownedBy(owner string) *repoFake {
	return &repoFake{
		GetByIDFunc: func(_ context.Context, id int64) (*models.Review, error) {
			if id != 1 {
				return nil, nil
			}
			return &models.Review{ID: 1, Rating: 2, Title: "old", Text: "old text that is long", UserID: owner, ChampionID: 7, Created: fixedNow}, nil
		},
	}
}

func TestUpdateReview_Owner(t *testing.T) {
	repo := ownedBy("user-a")
	var written models.Review
	repo.UpdateFunc = func(_ context.Context, r models.Review) (int64, error) {
		written = r
		return 1, nil
	}
	svc := newTestService(repo, nil)

	got, err := svc.UpdateReview(context.Background(), 1, "tok-a",
		ReviewPatch{Rating: 5, Title: "new", Text: "brand new text for review"})
	require.NoError(t, err)

	assert.Equal(t, 5, written.Rating)
	assert.Equal(t, "new", written.Title)
	assert.Equal(t, "brand new text for review", written.Text)
	assert.Equal(t, "user-a", written.UserID)
	assert.Equal(t, fixedNow, got.Created)
}

func TestUpdateReview_NotOwner(t *testing.T) {
	repo := ownedBy("user-b")
	repo.UpdateFunc = func(context.Context, models.Review) (int64, error) {
		t.Fatal("update must not be called")
		return 0, nil
	}
	svc := newTestService(repo, nil)

	_, err := svc.UpdateReview(context.Background(), 1, "tok-a",
		ReviewPatch{Rating: 5, Title: "new", Text: "brand new text for review"})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateReview_Missing(t *testing.T) {
	svc := newTestService(ownedBy("user-a"), nil)

	_, err := svc.UpdateReview(context.Background(), 2, "tok-a", ReviewPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateReview_ZeroRows(t *testing.T) {
	repo := ownedBy("user-a")
	repo.UpdateFunc = func(context.Context, models.Review) (int64, error) { return 0, nil }
	svc := newTestService(repo, nil)

	_, err := svc.UpdateReview(context.Background(), 1, "tok-a",
		ReviewPatch{Rating: 1, Title: "t", Text: "brand new text for review"})
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestDeleteReview(t *testing.T) {
	t.Run("owner", func(t *testing.T) {
		repo := ownedBy("user-a")
		var deleted int64
		repo.DeleteFunc = func(_ context.Context, id int64) (int64, error) {
			deleted = id
			return 1, nil
		}
		svc := newTestService(repo, nil)

		got, err := svc.DeleteReview(context.Background(), 1, "tok-a")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		assert.Equal(t, int64(7), got.ChampionID)
	})

	t.Run("someone else", func(t *testing.T) {
		repo := ownedBy("user-a")
		repo.DeleteFunc = func(context.Context, int64) (int64, error) {
			t.Fatal("delete must not be called")
			return 0, nil
		}
		svc := newTestService(repo, nil)

		_, err := svc.DeleteReview(context.Background(), 1, "tok-b")
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestCompareOwnership(t *testing.T) {
	svc := newTestService(ownedBy("user-a"), nil)
	ctx := context.Background()

	owned, err := svc.CompareOwnership(ctx, 1, "tok-a")
	require.NoError(t, err)
	assert.True(t, owned)

	owned, err = svc.CompareOwnership(ctx, 1, "tok-b")
	require.NoError(t, err)
	assert.False(t, owned)

	_, err = svc.CompareOwnership(ctx, 1, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.CompareOwnership(ctx, 99, "tok-a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReviewView_NotFound(t *testing.T) {
	repo := &repoFake{
		GetViewFunc: func(context.Context, int64) (*models.ReviewView, error) { return nil, nil },
	}
	svc := newTestService(repo, nil)

	_, err := svc.GetReviewView(context.Background(), 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeriveTitle(t *testing.T) {
	title, err := deriveTitle("0123456789abcdefXYZ")
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef...", title)

	// counted in characters, not bytes
	title, err = deriveTitle("ééééééééééééééééé")
	require.NoError(t, err)
	assert.Equal(t, "éééééééééééééééé...", title)

	_, err = deriveTitle("fifteen chars!!")
	assert.ErrorIs(t, err, ErrTextTooShort)
}

func TestResolveBearerToken(t *testing.T) {
	assert.Equal(t, "abc", ResolveBearerToken("Bearer abc"))
	assert.Equal(t, "abc", ResolveBearerToken("  bearer   abc  "))
	assert.Equal(t, "", ResolveBearerToken(""))
	assert.Equal(t, "", ResolveBearerToken("Basic abc"))
}
