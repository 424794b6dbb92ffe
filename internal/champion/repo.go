package champion

import (
	"context"
	"database/sql"
	"encoding/json"
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

var championColumns = []string{"id", "name", "title", "region_id", "role_id", "image_url"}

func (r *Repo) IDExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, sq.Eq{"id": id})
}

// NameExists matches case-insensitively, the same way GetByName does.
func (r *Repo) NameExists(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, sq.Expr("LOWER(name) = ?", normalizeName(name)))
}

func (r *Repo) exists(ctx context.Context, pred sq.Sqlizer) (bool, error) {
	inner, args, err := sq.Select("1").From("champions").Where(pred).ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, "SELECT EXISTS("+inner+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("champion exists: %w", err)
	}
	return exists, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*models.Champion, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

func (r *Repo) GetByName(ctx context.Context, name string) (*models.Champion, error) {
	return r.getOne(ctx, sq.Expr("LOWER(name) = ?", normalizeName(name)))
}

func (r *Repo) getOne(ctx context.Context, pred sq.Sqlizer) (*models.Champion, error) {
	query, args, err := sq.Select(championColumns...).From("champions").Where(pred).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get champion: %w", err)
	}

	m, err := scanChampion(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan champion: %w", err)
	}
	return m, nil
}

func (r *Repo) List(ctx context.Context) ([]models.Champion, error) {
	query, args, err := sq.Select(championColumns...).From("champions").OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list champions: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list champions: %w", err)
	}
	defer rows.Close()

	out := make([]models.Champion, 0)
	for rows.Next() {
		m, err := scanChampion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan champion row: %w", err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func (r *Repo) GetInfo(ctx context.Context, championID int64) (*models.ChampionInfo, error) {
	query, args, err := sq.Select("champion_id", "blurb", "difficulty", "tags").
		From("champions_info").
		Where(sq.Eq{"champion_id": championID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get info: %w", err)
	}

	var (
		info     models.ChampionInfo
		tagsJSON string
	)
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&info.ChampionID, &info.Blurb, &info.Difficulty, &tagsJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan champion info: %w", err)
	}

	_ = json.Unmarshal([]byte(tagsJSON), &info.Tags)
	if info.Tags == nil {
		info.Tags = []string{}
	}
	return &info, nil
}

// Upsert inserts or replaces a champion keyed by id.
func (r *Repo) Upsert(ctx context.Context, m models.Champion) error {
	query, args, err := sq.Insert("champions").
		Columns(championColumns...).
		Values(m.ID, m.Name, m.Title, m.RegionID, m.RoleID, m.ImageURL).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			region_id = COALESCE(excluded.region_id, champions.region_id),
			role_id = COALESCE(excluded.role_id, champions.role_id),
			image_url = excluded.image_url`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert champion: %w", err)
	}
	if _, err := r.DB.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert champion %d: %w", m.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChampion(row rowScanner) (*models.Champion, error) {
	var (
		m        models.Champion
		regionID sql.NullInt64
		roleID   sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Title, &regionID, &roleID, &m.ImageURL); err != nil {
		return nil, err
	}
	if regionID.Valid {
		m.RegionID = &regionID.Int64
	}
	if roleID.Valid {
		m.RoleID = &roleID.Int64
	}
	return &m, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
