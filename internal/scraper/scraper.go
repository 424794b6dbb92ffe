package scraper

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"lolapi/pkg/models"
)

// Source is implemented by each champion data source. Each source maps its own
// format into ChampionCanonical.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.ChampionCanonical, error)
}

// Aggregator queries every source and merges the results by champion name.
type Aggregator struct {
	Sources []Source
	Log     *slog.Logger
}

func NewAggregator(log *slog.Logger, sources ...Source) *Aggregator {
	if log == nil {
		log = slog.Default()
	}
	return &Aggregator{Sources: sources, Log: log.With("component", "scraper")}
}

// FetchAndMerge returns the merged champions ordered by name. A failing source
// is logged and skipped.
func (a *Aggregator) FetchAndMerge(ctx context.Context) ([]models.ChampionCanonical, error) {
	byKey := make(map[string]models.ChampionCanonical)

	for _, src := range a.Sources {
		a.Log.InfoContext(ctx, "fetching", slog.String("source", src.Name()))
		champs, err := src.FetchAll(ctx)
		if err != nil {
			a.Log.WarnContext(ctx, "source failed", slog.String("source", src.Name()), slog.Any("error", err))
			continue
		}
		a.Log.InfoContext(ctx, "fetched", slog.String("source", src.Name()), slog.Int("count", len(champs)))

		for _, c := range champs {
			key := normalizeKey(c.Name)
			if key == "" {
				continue
			}
			if existing, ok := byKey[key]; ok {
				byKey[key] = mergeChampion(existing, c)
			} else {
				byKey[key] = c
			}
		}
	}

	result := make([]models.ChampionCanonical, 0, len(byKey))
	for _, c := range byKey {
		result = append(result, c)
	}
	slices.SortFunc(result, func(a, b models.ChampionCanonical) int {
		return strings.Compare(a.Name, b.Name)
	})
	return result, nil
}

// normalizeKey lowercases s and keeps only letters and digits, so "Kai'Sa",
// "kaisa" and "Kai Sa" share a key.
func normalizeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mergeChampion fills blanks in base from incoming, keeps the longer blurb,
// unions the tags and merges source ids. The first source wins on conflicts.
func mergeChampion(base, incoming models.ChampionCanonical) models.ChampionCanonical {
	if base.ID == 0 {
		base.ID = incoming.ID
	}
	if base.Title == "" {
		base.Title = incoming.Title
	}
	if base.ImageURL == "" {
		base.ImageURL = incoming.ImageURL
	}
	if base.Difficulty == 0 {
		base.Difficulty = incoming.Difficulty
	}
	if len(incoming.Blurb) > len(base.Blurb) {
		base.Blurb = incoming.Blurb
	}

	base.Tags = mergeStringSlices(base.Tags, incoming.Tags)

	if base.SourceIDs == nil {
		base.SourceIDs = make(map[string]string)
	}
	for k, v := range incoming.SourceIDs {
		base.SourceIDs[k] = v
	}
	return base
}

func mergeStringSlices(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	for _, v := range b {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
