package scraper

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"lolapi/pkg/models"
)

// SaveToDatabase upserts champions, their primary role and champions_info rows
// in one transaction. Champions without an id are skipped. It returns how many
// champions were written.
func SaveToDatabase(ctx context.Context, db *sql.DB, champs []models.ChampionCanonical) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	roleIDs := make(map[string]int64)
	saved := 0

	for _, c := range champs {
		if c.ID == 0 {
			continue
		}

		var roleID *int64
		if len(c.Tags) > 0 {
			id, err := ensureRole(ctx, tx, roleIDs, c.Tags[0])
			if err != nil {
				return 0, err
			}
			roleID = &id
		}

		query, args, err := sq.Insert("champions").
			Columns("id", "name", "title", "role_id", "image_url").
			Values(c.ID, c.Name, c.Title, roleID, c.ImageURL).
			Suffix(`ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				title = excluded.title,
				role_id = COALESCE(excluded.role_id, champions.role_id),
				image_url = excluded.image_url`).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build champion upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert champion %s: %w", c.Name, err)
		}

		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return 0, fmt.Errorf("marshal tags for %s: %w", c.Name, err)
		}

		query, args, err = sq.Insert("champions_info").
			Columns("champion_id", "blurb", "difficulty", "tags").
			Values(c.ID, c.Blurb, c.Difficulty, string(tagsJSON)).
			Suffix(`ON CONFLICT(champion_id) DO UPDATE SET
				blurb = excluded.blurb,
				difficulty = excluded.difficulty,
				tags = excluded.tags`).
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build info upsert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("upsert info %s: %w", c.Name, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return saved, nil
}

func ensureRole(ctx context.Context, tx *sql.Tx, cache map[string]int64, name string) (int64, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO roles (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, fmt.Errorf("insert role %s: %w", name, err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM roles WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup role %s: %w", name, err)
	}
	cache[name] = id
	return id, nil
}
