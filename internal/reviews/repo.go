package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"lolapi/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

var reviewColumns = []string{
	"r.id", "r.rating", "r.title", "r.text", "r.user_id", "r.champion_id", "r.created_at",
}

func selectReviews() sq.SelectBuilder {
	return sq.Select(reviewColumns...).From("reviews r")
}

func (r *Repo) List(ctx context.Context) ([]models.Review, error) {
	return r.query(ctx, selectReviews().OrderBy("r.id ASC"))
}

func (r *Repo) ListByChampion(ctx context.Context, championID int64) ([]models.Review, error) {
	return r.query(ctx, selectReviews().Where(sq.Eq{"r.champion_id": championID}))
}

func (r *Repo) ListByUsername(ctx context.Context, username string) ([]models.Review, error) {
	return r.query(ctx, selectReviews().
		Join("users u ON u.id = r.user_id").
		Where(sq.Eq{"u.username": strings.TrimSpace(username)}))
}

func (r *Repo) ListByChampionName(ctx context.Context, name string) ([]models.Review, error) {
	return r.query(ctx, selectReviews().
		Join("champions c ON c.id = r.champion_id").
		Where(sq.Expr("LOWER(c.name) = ?", strings.ToLower(strings.TrimSpace(name)))))
}

func (r *Repo) ChampionNameHasReviews(ctx context.Context, name string) (bool, error) {
	inner, args, err := sq.Select("1").
		From("reviews r").
		Join("champions c ON c.id = r.champion_id").
		Where(sq.Expr("LOWER(c.name) = ?", strings.ToLower(strings.TrimSpace(name)))).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build has reviews: %w", err)
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, "SELECT EXISTS("+inner+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("has reviews: %w", err)
	}
	return exists, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	query, args, err := selectReviews().Where(sq.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get review: %w", err)
	}

	var review models.Review
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(
		&review.ID, &review.Rating, &review.Title, &review.Text, &review.UserID, &review.ChampionID, &review.Created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}
	return &review, nil
}

func (r *Repo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reviews WHERE id = ?)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("review exists: %w", err)
	}
	return exists, nil
}

func (r *Repo) GetView(ctx context.Context, id int64) (*models.ReviewView, error) {
	query, args, err := sq.Select(
		"review_id", "rating", "title", "text", "created_at",
		"username", "champion_id", "champion_name", "champion_title",
	).From("review_view").Where(sq.Eq{"review_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get view: %w", err)
	}

	var v models.ReviewView
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(
		&v.ReviewID, &v.Rating, &v.Title, &v.Text, &v.Created,
		&v.Username, &v.ChampionID, &v.ChampionName, &v.ChampionTitle,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan review view: %w", err)
	}
	return &v, nil
}

// Insert stores review and sets its ID. It returns the number of affected rows.
func (r *Repo) Insert(ctx context.Context, review *models.Review) (int64, error) {
	query, args, err := sq.Insert("reviews").
		Columns("rating", "title", "text", "user_id", "champion_id", "created_at").
		Values(review.Rating, review.Title, review.Text, review.UserID, review.ChampionID, review.Created).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert review: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	review.ID = id
	return res.RowsAffected()
}

// Update writes the mutable fields. Created and the owner never change.
func (r *Repo) Update(ctx context.Context, review models.Review) (int64, error) {
	query, args, err := sq.Update("reviews").
		Set("rating", review.Rating).
		Set("title", review.Title).
		Set("text", review.Text).
		Where(sq.Eq{"id": review.ID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update review: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("update review %d: %w", review.ID, err)
	}
	return res.RowsAffected()
}

func (r *Repo) Delete(ctx context.Context, id int64) (int64, error) {
	query, args, err := sq.Delete("reviews").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete review: %w", err)
	}

	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete review %d: %w", id, err)
	}
	return res.RowsAffected()
}

func (r *Repo) query(ctx context.Context, b sq.SelectBuilder) ([]models.Review, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list reviews: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]models.Review, 0)
	for rows.Next() {
		var review models.Review
		if err := rows.Scan(
			&review.ID, &review.Rating, &review.Title, &review.Text, &review.UserID, &review.ChampionID, &review.Created,
		); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		out = append(out, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
