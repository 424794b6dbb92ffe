package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"

	"lolapi/pkg/database"
	"lolapi/pkg/models"
	"lolapi/pkg/utils"
)

func main() {
	cfg := utils.MustLoadConfig()

	var (
		dbPath  = flag.String("db", cfg.Database.Path, "sqlite database path")
		outPath = flag.String("out", "data/mirror.json", "output JSON path")
		limit   = flag.Int("limit", 500, "how many champions to export")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := database.MustOpen(database.Config{Path: *dbPath})
	defer db.Close()

	if _, err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	out, err := loadMirror(ctx, db, *limit)
	if err != nil {
		log.Fatalf("load champions failed: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		log.Fatalf("mkdir failed: %v", err)
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("marshal failed: %v", err)
	}

	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		log.Fatalf("write failed: %v", err)
	}

	log.Printf("exported %d champions to %s", len(out), *outPath)
}

// loadMirror reads champions with their info row in the shape MirrorSource
// consumes.
func loadMirror(ctx context.Context, db *sql.DB, limit int) ([]models.ChampionCanonical, error) {
	query, args, err := sq.Select("c.id", "c.name", "c.title", "c.image_url", "ci.blurb", "ci.difficulty", "ci.tags").
		From("champions c").
		LeftJoin("champions_info ci ON ci.champion_id = c.id").
		OrderBy("c.name").
		Limit(uint64(max(limit, 0))).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ChampionCanonical{}
	for rows.Next() {
		var (
			c          models.ChampionCanonical
			blurb      sql.NullString
			difficulty sql.NullInt64
			tagsJSON   sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Title, &c.ImageURL, &blurb, &difficulty, &tagsJSON); err != nil {
			return nil, err
		}

		c.Blurb = blurb.String
		c.Difficulty = int(difficulty.Int64)
		c.Tags = []string{}
		if tagsJSON.Valid {
			_ = json.Unmarshal([]byte(tagsJSON.String), &c.Tags)
		}
		c.SourceIDs = map[string]string{"db": strconv.FormatInt(c.ID, 10)}

		out = append(out, c)
	}
	return out, rows.Err()
}
