package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"lolapi/internal/auth"
	"lolapi/internal/sync"
	"lolapi/pkg/models"
)

const (
	msgTextTooShort      = "Review length must be at least 16 characters"
	msgRatingOutOfRange  = "Rating can only contain numbers in the range of 0 to 5"
	msgChampionMissing   = "The champion you're trying to review does not exist"
	msgUsernameMissing   = "The username does not exist"
	msgMissingReviewID   = "Please provide a review id"
	msgCreateFailed      = "Sorry. Something went wrong while creating this review"
	msgUpdateFailed      = "Something went wrong while updating the review. Are you trying to modify someone else review?"
	msgDeleteFailed      = "Something went wrong while updating the review"
	msgReviewAdded       = "Review added"
	msgReviewUpdated     = "Review updated correctly"
	msgInternal          = "Something went wrong while reading reviews"
	msgInvalidIdentifier = "The value is not valid"
)

type reviewService interface {
	ListReviews(ctx context.Context) ([]models.Review, error)
	GetReviewByID(ctx context.Context, id int64) (*models.Review, error)
	ReviewExists(ctx context.Context, id int64) (bool, error)
	GetChampionReviews(ctx context.Context, championID int64) ([]models.Review, error)
	GetReviewsByUsername(ctx context.Context, username string) ([]models.Review, error)
	ChampionHasReviews(ctx context.Context, name string) (bool, error)
	GetChampionReviewsByName(ctx context.Context, name string) ([]models.Review, error)
	GetReviewView(ctx context.Context, id int64) (*models.ReviewView, error)
	CreateReview(ctx context.Context, token string, rating int, championID int64, in ReviewInput) (*models.Review, error)
	CreateReviewWithChampionName(ctx context.Context, token string, rating int, championName string, in ReviewInput) (*models.Review, error)
	UpdateReview(ctx context.Context, id int64, token string, patch ReviewPatch) (*models.Review, error)
	DeleteReview(ctx context.Context, id int64, token string) (*models.Review, error)
}

type championChecker interface {
	IDExists(ctx context.Context, id int64) (bool, error)
	NameExists(ctx context.Context, name string) (bool, error)
}

type userChecker interface {
	UserExists(ctx context.Context, username string) (bool, error)
}

type eventPublisher interface {
	BroadcastJSON(v any)
}

type Handler struct {
	Service   reviewService
	Champions championChecker
	Users     userChecker
	// Events is optional.
	Events eventPublisher
	// Legacy keeps the status codes existing clients depend on: 204/200 on
	// create, 400 for a missing view and 500 when the caller does not own
	// the review.
	Legacy bool
	Log    *slog.Logger
}

func NewHandler(log *slog.Logger, svc reviewService, champions championChecker, users userChecker, events eventPublisher, legacy bool) *Handler {
	return &Handler{
		Service:   svc,
		Champions: champions,
		Users:     users,
		Events:    events,
		Legacy:    legacy,
		Log:       log.With("handler", "reviews"),
	}
}

// RegisterRoutes mounts the review endpoints on rg. Mutating routes run behind guard.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, guard ...gin.HandlerFunc) {
	rg.GET("", h.list)
	rg.GET("/id/:reviewId", h.getByID)
	rg.GET("/review/champion/id/:championId", h.listByChampion)
	rg.GET("/:username/reviews/", h.listByUsername)
	rg.GET("/review/champion/name/:name", h.listByChampionName)
	rg.GET("/view/id/:id", h.getView)

	protected := rg.Group("", guard...)
	protected.POST("", h.create)
	protected.POST("/post/:championName", h.createWithChampionName)
	protected.PATCH("/:reviewId", h.update)
	protected.DELETE("/id/:reviewId", h.delete)
}

// ResolveBearerToken returns the raw token of an Authorization header value.
func ResolveBearerToken(header string) string {
	return auth.BearerToken(header)
}

type reviewBody struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type updateBody struct {
	Title *string `json:"title"`
	Text  string  `json:"text"`
}

func (h *Handler) list(c *gin.Context) {
	reviews, err := h.Service.ListReviews(c.Request.Context())
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := pathID(c, "reviewId")
	if !ok {
		return
	}

	review, err := h.Service.GetReviewByID(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h *Handler) listByChampion(c *gin.Context) {
	championID, ok := pathID(c, "championId")
	if !ok {
		return
	}

	reviews, err := h.Service.GetChampionReviews(c.Request.Context(), championID)
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	if len(reviews) == 0 {
		c.Status(http.StatusNotFound)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) listByUsername(c *gin.Context) {
	ctx := c.Request.Context()
	username := c.Param("username")

	exists, err := h.Users.UserExists(ctx, username)
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, msgUsernameMissing)
		return
	}

	// a known user without reviews gets an empty array
	reviews, err := h.Service.GetReviewsByUsername(ctx, username)
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) listByChampionName(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	exists, err := h.Champions.NameExists(ctx, name)
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	if !exists {
		c.Status(http.StatusBadRequest)
		return
	}

	has, err := h.Service.ChampionHasReviews(ctx, name)
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	if !has {
		c.Status(http.StatusNotFound)
		return
	}

	reviews, err := h.Service.GetChampionReviewsByName(ctx, name)
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) getView(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	view, err := h.Service.GetReviewView(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		if h.Legacy {
			c.Status(http.StatusBadRequest)
		} else {
			c.Status(http.StatusNotFound)
		}
		return
	}
	if err != nil {
		h.fail(c, msgInternal, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) create(c *gin.Context) {
	ctx := c.Request.Context()

	rating, ok := queryInt(c, "Rating")
	if !ok {
		return
	}
	championID, ok := queryInt(c, "ChampionId")
	if !ok {
		return
	}

	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		modelError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !h.validateReview(c, body.Text, intOrZero(rating)) {
		return
	}

	champID := int64(intOrZero(championID))
	exists, err := h.Champions.IDExists(ctx, champID)
	if err != nil {
		h.fail(c, msgCreateFailed, err)
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, msgChampionMissing)
		return
	}

	review, err := h.Service.CreateReview(ctx, ResolveBearerToken(c.GetHeader("Authorization")),
		intOrZero(rating), champID, ReviewInput{Title: body.Title, Text: body.Text})
	if err != nil {
		h.fail(c, msgCreateFailed, err)
		return
	}

	h.publish(sync.ReviewCreated, *review)
	if h.Legacy {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handler) createWithChampionName(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("championName")

	rating, ok := queryInt(c, "rating")
	if !ok {
		return
	}

	var body reviewBody
	if err := c.ShouldBindJSON(&body); err != nil {
		modelError(c, http.StatusBadRequest, err.Error())
		return
	}
	if !h.validateReview(c, body.Text, intOrZero(rating)) {
		return
	}

	exists, err := h.Champions.NameExists(ctx, name)
	if err != nil {
		h.fail(c, msgCreateFailed, err)
		return
	}
	if !exists {
		c.JSON(http.StatusBadRequest, msgChampionMissing)
		return
	}

	review, err := h.Service.CreateReviewWithChampionName(ctx, ResolveBearerToken(c.GetHeader("Authorization")),
		intOrZero(rating), name, ReviewInput{Title: body.Title, Text: body.Text})
	if err != nil {
		h.fail(c, msgCreateFailed, err)
		return
	}

	h.publish(sync.ReviewCreated, *review)
	if h.Legacy {
		c.JSON(http.StatusOK, msgReviewAdded)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *Handler) update(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("reviewId")), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, msgMissingReviewID)
		return
	}

	current, err := h.Service.GetReviewByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("The review %d does not exist", id)})
		return
	}
	if err != nil {
		h.fail(c, msgUpdateFailed, err)
		return
	}

	var body updateBody
	if err := c.ShouldBindJSON(&body); err != nil {
		modelError(c, http.StatusBadRequest, err.Error())
		return
	}
	if utf8.RuneCountInString(body.Text) < MinTextLength {
		c.JSON(http.StatusBadRequest, msgTextTooShort)
		return
	}

	newRating, ok := queryInt(c, "NewRating")
	if !ok {
		return
	}
	rating := current.Rating
	if newRating != nil {
		rating = *newRating
	}
	if !validRating(rating) {
		c.JSON(http.StatusBadRequest, msgRatingOutOfRange)
		return
	}

	patch := ReviewPatch{Rating: rating, Title: current.Title, Text: body.Text}
	if body.Title != nil {
		patch.Title = *body.Title
	}

	token := ResolveBearerToken(c.GetHeader("Authorization"))
	updated, err := h.Service.UpdateReview(ctx, id, token, patch)
	if err != nil {
		h.mutationFailed(c, msgUpdateFailed, err)
		return
	}

	h.publish(sync.ReviewUpdated, *updated)
	c.JSON(http.StatusOK, msgReviewUpdated)
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := pathID(c, "reviewId")
	if !ok {
		return
	}

	token := ResolveBearerToken(c.GetHeader("Authorization"))
	deleted, err := h.Service.DeleteReview(c.Request.Context(), id, token)
	if errors.Is(err, ErrNotFound) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		h.mutationFailed(c, msgDeleteFailed, err)
		return
	}

	h.publish(sync.ReviewDeleted, *deleted)
	c.Status(http.StatusNoContent)
}

// validateReview checks text length first, then the rating range.
func (h *Handler) validateReview(c *gin.Context, text string, rating int) bool {
	if utf8.RuneCountInString(text) < MinTextLength {
		c.JSON(http.StatusBadRequest, msgTextTooShort)
		return false
	}
	if !validRating(rating) {
		c.JSON(http.StatusBadRequest, msgRatingOutOfRange)
		return false
	}
	return true
}

func (h *Handler) mutationFailed(c *gin.Context, msg string, err error) {
	if errors.Is(err, ErrForbidden) && !h.Legacy {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	h.fail(c, msg, err)
}

func (h *Handler) fail(c *gin.Context, msg string, err error) {
	h.Log.ErrorContext(c.Request.Context(), msg,
		slog.String("request_id", c.GetString("request_id")),
		slog.String("path", c.FullPath()),
		slog.Any("error", err),
	)
	modelError(c, http.StatusInternalServerError, msg)
}

func (h *Handler) publish(kind string, review models.Review) {
	if h.Events == nil {
		return
	}
	ev := sync.NewReviewEvent(kind, review)
	go h.Events.BroadcastJSON(ev)
}

// modelError writes the {"errors":{"":[msg]}} body used for request-level failures.
func modelError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"errors": gin.H{"": []string{msg}}})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil {
		modelError(c, http.StatusBadRequest, msgInvalidIdentifier)
		return 0, false
	}
	return id, true
}

// queryInt reads an optional integer query parameter. Keys match case-insensitively.
// A nil result means the parameter was not supplied.
func queryInt(c *gin.Context, key string) (*int, bool) {
	raw, found := lookupQuery(c, key)
	if !found {
		return nil, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		modelError(c, http.StatusBadRequest, fmt.Sprintf("The value '%s' is not valid for %s.", raw, key))
		return nil, false
	}
	return &n, true
}

func lookupQuery(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetQuery(key); ok {
		return v, true
	}
	for k, vs := range c.Request.URL.Query() {
		if strings.EqualFold(k, key) && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
