package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"lolapi/internal/champion"
	"lolapi/pkg/database"
	"lolapi/pkg/models"
	"lolapi/pkg/utils"
)

func main() {
	cfg := utils.MustLoadConfig()

	var (
		dbPath     = flag.String("db", cfg.Database.Path, "sqlite database path")
		regionsIn  = flag.String("regions", "data/regions.csv", "input CSV path for regions (name)")
		championIn = flag.String("champions", "data/champions.csv", "input CSV path for champions")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.MustOpen(database.Config{Path: *dbPath})
	defer db.Close()

	if _, err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	regions, err := importRegions(ctx, db, *regionsIn)
	if err != nil {
		log.Fatalf("import regions failed: %v", err)
	}
	champs, err := importChampions(ctx, db, *championIn)
	if err != nil {
		log.Fatalf("import champions failed: %v", err)
	}

	log.Printf("imported %d regions from %s and %d champions from %s", regions, *regionsIn, champs, *championIn)
}

// importRegions reads a CSV with a "name" column. A missing file is not an error.
func importRegions(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	n := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		name := valueAt(header, row, "name")
		if name == "" {
			continue
		}
		if _, err := ensureNamed(ctx, db, "regions", name); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// importChampions reads id,name,title,region,role,image_url,blurb,difficulty,tags.
// Region and role are names; tags are separated by "|".
func importChampions(ctx context.Context, db *sql.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := readHeader(r)
	if err != nil {
		return 0, err
	}

	repo := champion.NewRepo(db)
	n := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if len(row) == 0 {
			continue
		}

		idRaw := valueAt(header, row, "id")
		name := valueAt(header, row, "name")
		if idRaw == "" || name == "" {
			continue
		}
		id, err := strconv.ParseInt(idRaw, 10, 64)
		if err != nil {
			return n, fmt.Errorf("parse id for %s: %w", name, err)
		}

		m := models.Champion{
			ID:       id,
			Name:     name,
			Title:    valueAt(header, row, "title"),
			ImageURL: valueAt(header, row, "image_url"),
		}
		if region := valueAt(header, row, "region"); region != "" {
			regionID, err := ensureNamed(ctx, db, "regions", region)
			if err != nil {
				return n, err
			}
			m.RegionID = &regionID
		}
		if role := valueAt(header, row, "role"); role != "" {
			roleID, err := ensureNamed(ctx, db, "roles", role)
			if err != nil {
				return n, err
			}
			m.RoleID = &roleID
		}
		if err := repo.Upsert(ctx, m); err != nil {
			return n, err
		}

		if err := upsertInfo(ctx, db, id, header, row); err != nil {
			return n, fmt.Errorf("info for %s: %w", name, err)
		}
		n++
	}
	return n, nil
}

func upsertInfo(ctx context.Context, db *sql.DB, id int64, header map[string]int, row []string) error {
	blurb := valueAt(header, row, "blurb")
	difficultyRaw := valueAt(header, row, "difficulty")
	tagsRaw := valueAt(header, row, "tags")
	if blurb == "" && difficultyRaw == "" && tagsRaw == "" {
		return nil
	}

	difficulty := 0
	if difficultyRaw != "" {
		d, err := strconv.Atoi(difficultyRaw)
		if err != nil {
			return fmt.Errorf("parse difficulty: %w", err)
		}
		difficulty = d
	}

	tags := []string{}
	for _, t := range strings.Split(tagsRaw, "|") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO champions_info (champion_id, blurb, difficulty, tags)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(champion_id) DO UPDATE SET
			blurb = excluded.blurb,
			difficulty = excluded.difficulty,
			tags = excluded.tags
	`, id, blurb, difficulty, string(tagsJSON))
	return err
}

// ensureNamed returns the id of the row called name in table (regions or roles),
// inserting it first when missing.
func ensureNamed(ctx context.Context, db *sql.DB, table, name string) (int64, error) {
	if _, err := db.ExecContext(ctx, `INSERT INTO `+table+` (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return 0, fmt.Errorf("insert %s %s: %w", table, name, err)
	}
	var id int64
	if err := db.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE name = ?`, name).Scan(&id); err != nil {
		return 0, fmt.Errorf("lookup %s %s: %w", table, name, err)
	}
	return id, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
