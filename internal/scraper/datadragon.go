package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"lolapi/pkg/models"
)

const dataDragonBase = "https://ddragon.leagueoflegends.com"

// DataDragonSource reads the static champion list published by Riot's Data Dragon CDN.
type DataDragonSource struct {
	BaseURL string
	Locale  string
	// Version pins a patch. Empty means the latest entry of versions.json.
	Version string
	Client  *http.Client
}

func NewDataDragonSource() *DataDragonSource {
	return &DataDragonSource{
		BaseURL: dataDragonBase,
		Locale:  "en_US",
		Client:  &http.Client{Timeout: 12 * time.Second},
	}
}

func (s *DataDragonSource) Name() string { return "datadragon" }

type ddChampionList struct {
	Version string                  `json:"version"`
	Data    map[string]ddChampEntry `json:"data"`
}

type ddChampEntry struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Blurb string `json:"blurb"`
	Info  struct {
		Difficulty int `json:"difficulty"`
	} `json:"info"`
	Image struct {
		Full string `json:"full"`
	} `json:"image"`
	Tags []string `json:"tags"`
}

func (s *DataDragonSource) FetchAll(ctx context.Context) ([]models.ChampionCanonical, error) {
	version := s.Version
	if version == "" {
		latest, err := s.latestVersion(ctx)
		if err != nil {
			return nil, err
		}
		version = latest
	}

	var list ddChampionList
	u := fmt.Sprintf("%s/cdn/%s/data/%s/champion.json", s.BaseURL, version, s.Locale)
	if err := s.getJSON(ctx, u, &list); err != nil {
		return nil, err
	}

	out := make([]models.ChampionCanonical, 0, len(list.Data))
	for _, item := range list.Data {
		id, err := strconv.ParseInt(strings.TrimSpace(item.Key), 10, 64)
		if err != nil || item.Name == "" {
			continue
		}

		imageURL := ""
		if item.Image.Full != "" {
			imageURL = fmt.Sprintf("%s/cdn/%s/img/champion/%s", s.BaseURL, version, item.Image.Full)
		}

		out = append(out, models.ChampionCanonical{
			ID:         id,
			Name:       item.Name,
			Title:      item.Title,
			Blurb:      item.Blurb,
			Tags:       item.Tags,
			Difficulty: item.Info.Difficulty,
			ImageURL:   imageURL,
			SourceIDs:  map[string]string{"datadragon": item.ID},
		})
	}
	return out, nil
}

func (s *DataDragonSource) latestVersion(ctx context.Context) (string, error) {
	var versions []string
	if err := s.getJSON(ctx, s.BaseURL+"/api/versions.json", &versions); err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("datadragon: empty versions list")
	}
	return versions[0], nil
}

func (s *DataDragonSource) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("datadragon: build request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("datadragon: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("datadragon: status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("datadragon: decode: %w", err)
	}
	return nil
}
