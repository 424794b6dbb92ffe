package sync

import (
	"time"

	"lolapi/pkg/models"
)

const (
	ReviewCreated = "review.created"
	ReviewUpdated = "review.updated"
	ReviewDeleted = "review.deleted"
)

type ReviewEvent struct {
	Type       string    `json:"type"`
	ReviewID   int64     `json:"review_id"`
	ChampionID int64     `json:"champion_id"`
	UserID     string    `json:"user_id"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title,omitempty"`
	At         time.Time `json:"at"`
}

func NewReviewEvent(kind string, r models.Review) ReviewEvent {
	return ReviewEvent{
		Type:       kind,
		ReviewID:   r.ID,
		ChampionID: r.ChampionID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		Title:      r.Title,
		At:         time.Now().UTC(),
	}
}
