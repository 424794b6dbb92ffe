package models

import "time"

type Review struct {
	ID         int64     `json:"review_id"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	UserID     string    `json:"user_id"`
	ChampionID int64     `json:"champion_id"`
	Created    time.Time `json:"created"`
}

// ReviewView is a review with its foreign keys resolved for display.
type ReviewView struct {
	ReviewID      int64     `json:"review_id"`
	Rating        int       `json:"rating"`
	Title         string    `json:"title"`
	Text          string    `json:"text"`
	Created       time.Time `json:"created"`
	Username      string    `json:"username"`
	ChampionID    int64     `json:"champion_id"`
	ChampionName  string    `json:"champion_name"`
	ChampionTitle string    `json:"champion_title,omitempty"`
}
