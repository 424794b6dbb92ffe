package models

type Champion struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Title    string `json:"title,omitempty"`
	RegionID *int64 `json:"region_id,omitempty"`
	RoleID   *int64 `json:"role_id,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

type ChampionInfo struct {
	ChampionID int64    `json:"champion_id"`
	Blurb      string   `json:"blurb,omitempty"`
	Difficulty int      `json:"difficulty"`
	Tags       []string `json:"tags"`
}

// ChampionCanonical is the merged record produced by the scraper before it is
// split into champions, roles and champions_info rows.
type ChampionCanonical struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	Title      string            `json:"title"`
	Blurb      string            `json:"blurb"`
	Tags       []string          `json:"tags"`
	Difficulty int               `json:"difficulty"`
	ImageURL   string            `json:"image_url"`
	SourceIDs  map[string]string `json:"source_ids,omitempty"`
}

type Region struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
