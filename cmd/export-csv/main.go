package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lolapi/pkg/database"
	"lolapi/pkg/utils"
)

func main() {
	cfg := utils.MustLoadConfig()

	var (
		dbPath      = flag.String("db", cfg.Database.Path, "sqlite database path")
		reviewsOut  = flag.String("reviews", "data/reviews.csv", "output CSV path for reviews")
		championOut = flag.String("champions", "data/champions.csv", "output CSV path for champions")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.Config{Path: *dbPath})
	defer db.Close()

	if _, err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	if err := exportReviews(ctx, db, *reviewsOut); err != nil {
		log.Fatalf("export reviews failed: %v", err)
	}
	if err := exportChampions(ctx, db, *championOut); err != nil {
		log.Fatalf("export champions failed: %v", err)
	}

	log.Printf("exported reviews to %s and champions to %s", *reviewsOut, *championOut)
}

func exportReviews(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"review_id", "champion_id", "champion_name", "username", "rating", "title", "text", "created"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT review_id, champion_id, champion_name, username, rating, title, text, created_at
		FROM review_view
		ORDER BY review_id
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id           int64
			championID   int64
			championName string
			username     string
			rating       int
			title        string
			text         string
			created      time.Time
		)
		if err := rows.Scan(&id, &championID, &championName, &username, &rating, &title, &text, &created); err != nil {
			return err
		}

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			strconv.FormatInt(championID, 10),
			championName,
			username,
			strconv.Itoa(rating),
			title,
			text,
			created.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}

// exportChampions writes the same columns import-csv reads, so the output can
// be fed back in.
func exportChampions(ctx context.Context, db *sql.DB, outPath string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"id", "name", "title", "region", "role", "image_url", "blurb", "difficulty", "tags"}); err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT c.id, c.name, c.title, rg.name, ro.name, c.image_url, ci.blurb, ci.difficulty, ci.tags
		FROM champions c
		LEFT JOIN regions rg ON rg.id = c.region_id
		LEFT JOIN roles ro ON ro.id = c.role_id
		LEFT JOIN champions_info ci ON ci.champion_id = c.id
		ORDER BY c.name
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         int64
			name       string
			title      string
			region     sql.NullString
			role       sql.NullString
			imageURL   string
			blurb      sql.NullString
			difficulty sql.NullInt64
			tagsJSON   sql.NullString
		)
		if err := rows.Scan(&id, &name, &title, &region, &role, &imageURL, &blurb, &difficulty, &tagsJSON); err != nil {
			return err
		}

		diff := ""
		if difficulty.Valid {
			diff = strconv.FormatInt(difficulty.Int64, 10)
		}

		if err := w.Write([]string{
			strconv.FormatInt(id, 10),
			name,
			title,
			region.String,
			role.String,
			imageURL,
			blurb.String,
			diff,
			joinTags(tagsJSON.String),
		}); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	w.Flush()
	return w.Error()
}
