package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"lolapi/pkg/models"
)

// MinTextLength is the minimum review text length in characters. It is also the
// length of the title derived from the text when no title is given.
const MinTextLength = 16

const (
	MinRating = 0
	MaxRating = 5
)

type reviewRepo interface {
	List(ctx context.Context) ([]models.Review, error)
	ListByChampion(ctx context.Context, championID int64) ([]models.Review, error)
	ListByUsername(ctx context.Context, username string) ([]models.Review, error)
	ListByChampionName(ctx context.Context, name string) ([]models.Review, error)
	ChampionNameHasReviews(ctx context.Context, name string) (bool, error)
	GetByID(ctx context.Context, id int64) (*models.Review, error)
	Exists(ctx context.Context, id int64) (bool, error)
	GetView(ctx context.Context, id int64) (*models.ReviewView, error)
	Insert(ctx context.Context, review *models.Review) (int64, error)
	Update(ctx context.Context, review models.Review) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type championFinder interface {
	GetByName(ctx context.Context, name string) (*models.Champion, error)
}

type tokenDecoder interface {
	DecodeToken(ctx context.Context, token string) (string, error)
}

// ReviewInput is the client-supplied part of a new review.
type ReviewInput struct {
	Title string
	Text  string
}

// ReviewPatch holds the final values of the mutable fields. Merging with the
// stored review happens before the patch reaches the service.
type ReviewPatch struct {
	Rating int
	Title  string
	Text   string
}

type Service struct {
	reviews   reviewRepo
	champions championFinder
	users     tokenDecoder
	now       func() time.Time
	log       *slog.Logger
}

func NewService(log *slog.Logger, reviews reviewRepo, champions championFinder, users tokenDecoder) *Service {
	return &Service{
		reviews:   reviews,
		champions: champions,
		users:     users,
		now:       time.Now,
		log:       log.With("service", "reviews"),
	}
}

func (s *Service) ListReviews(ctx context.Context) ([]models.Review, error) {
	return s.reviews.List(ctx)
}

func (s *Service) GetReviewByID(ctx context.Context, id int64) (*models.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrNotFound
	}
	return review, nil
}

func (s *Service) ReviewExists(ctx context.Context, id int64) (bool, error) {
	return s.reviews.Exists(ctx, id)
}

func (s *Service) GetChampionReviews(ctx context.Context, championID int64) ([]models.Review, error) {
	return s.reviews.ListByChampion(ctx, championID)
}

func (s *Service) GetReviewsByUsername(ctx context.Context, username string) ([]models.Review, error) {
	return s.reviews.ListByUsername(ctx, username)
}

func (s *Service) ChampionHasReviews(ctx context.Context, name string) (bool, error) {
	return s.reviews.ChampionNameHasReviews(ctx, name)
}

func (s *Service) GetChampionReviewsByName(ctx context.Context, name string) ([]models.Review, error) {
	return s.reviews.ListByChampionName(ctx, name)
}

func (s *Service) GetReviewView(ctx context.Context, id int64) (*models.ReviewView, error) {
	view, err := s.reviews.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if view == nil {
		return nil, ErrNotFound
	}
	return view, nil
}

// CreateReview stores a review for championID on behalf of the token owner.
// The caller validates rating and text beforehand.
func (s *Service) CreateReview(ctx context.Context, token string, rating int, championID int64, in ReviewInput) (*models.Review, error) {
	title := in.Title
	if title == "" {
		derived, err := deriveTitle(in.Text)
		if err != nil {
			return nil, err
		}
		title = derived
	}

	userID, err := s.decode(ctx, token)
	if err != nil {
		return nil, err
	}

	review := &models.Review{
		Rating:     rating,
		ChampionID: championID,
		UserID:     userID,
		Title:      title,
		Text:       in.Text,
		Created:    s.now().UTC(),
	}
	affected, err := s.reviews.Insert(ctx, review)
	if err := persisted(affected, err); err != nil {
		s.log.ErrorContext(ctx, "create review", slog.Int64("champion_id", championID), slog.Any("error", err))
		return nil, err
	}
	return review, nil
}

func (s *Service) CreateReviewWithChampionName(ctx context.Context, token string, rating int, championName string, in ReviewInput) (*models.Review, error) {
	champ, err := s.champions.GetByName(ctx, championName)
	if err != nil {
		return nil, fmt.Errorf("resolve champion %q: %w", championName, err)
	}
	if champ == nil {
		return nil, fmt.Errorf("champion %q: %w", championName, ErrNotFound)
	}
	return s.CreateReview(ctx, token, rating, champ.ID, in)
}

func (s *Service) UpdateReview(ctx context.Context, id int64, token string, patch ReviewPatch) (*models.Review, error) {
	review, err := s.GetReviewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, review, token); err != nil {
		return nil, err
	}

	review.Rating = patch.Rating
	review.Title = patch.Title
	review.Text = patch.Text

	affected, err := s.reviews.Update(ctx, *review)
	if err := persisted(affected, err); err != nil {
		s.log.ErrorContext(ctx, "update review", slog.Int64("review_id", id), slog.Any("error", err))
		return nil, err
	}
	return review, nil
}

func (s *Service) DeleteReview(ctx context.Context, id int64, token string) (*models.Review, error) {
	review, err := s.GetReviewByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, review, token); err != nil {
		return nil, err
	}

	affected, err := s.reviews.Delete(ctx, id)
	if err := persisted(affected, err); err != nil {
		s.log.ErrorContext(ctx, "delete review", slog.Int64("review_id", id), slog.Any("error", err))
		return nil, err
	}
	return review, nil
}

// CompareOwnership reports whether the token owner wrote review id.
func (s *Service) CompareOwnership(ctx context.Context, id int64, token string) (bool, error) {
	review, err := s.GetReviewByID(ctx, id)
	if err != nil {
		return false, err
	}
	err = s.checkOwner(ctx, review, token)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrForbidden):
		return false, nil
	default:
		return false, err
	}
}

func (s *Service) checkOwner(ctx context.Context, review *models.Review, token string) error {
	userID, err := s.decode(ctx, token)
	if err != nil {
		return err
	}
	if userID != review.UserID {
		s.log.WarnContext(ctx, "ownership mismatch",
			slog.Int64("review_id", review.ID),
			slog.String("caller", userID),
		)
		return ErrForbidden
	}
	return nil
}

func (s *Service) decode(ctx context.Context, token string) (string, error) {
	userID, err := s.users.DecodeToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return userID, nil
}

// persisted folds a write result into the single persistence outcome.
func persisted(affected int64, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if affected == 0 {
		return ErrPersistence
	}
	return nil
}

// deriveTitle returns the first MinTextLength characters of text followed by "...".
func deriveTitle(text string) (string, error) {
	if utf8.RuneCountInString(text) < MinTextLength {
		return "", ErrTextTooShort
	}
	return string([]rune(text)[:MinTextLength]) + "...", nil
}
