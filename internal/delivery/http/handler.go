package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pricewatch/backend/internal/domain"
	"github.com/pricewatch/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog    domain.CatalogRepository
	matching   *usecase.MatchingService
	comparison *usecase.ComparisonService
	tags       *usecase.TagService
	schedules  *usecase.ScheduleService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog domain.CatalogRepository,
	matching *usecase.MatchingService,
	comparison *usecase.ComparisonService,
	tags *usecase.TagService,
	schedules *usecase.ScheduleService,
) *Handler {
	return &Handler{
		catalog:    catalog,
		matching:   matching,
		comparison: comparison,
		tags:       tags,
		schedules:  schedules,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricewatch-backend",
		"version": "1.0.0",
	})
}

// ViewMatches returns one match row per item for a competitor.
func (h *Handler) ViewMatches(c *gin.Context) {
	views, err := h.matching.ViewMatches(c.Request.Context(), c.Param("competitor"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if views == nil {
		views = []domain.MatchView{}
	}
	c.JSON(http.StatusOK, views)
}

// AutoMatch runs the barcode auto-match pass for a competitor.
func (h *Handler) AutoMatch(c *gin.Context) {
	result, err := h.matching.AutoMatch(c.Request.Context(), c.Param("competitor"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ManualMatch links one item to a competitor listing by barcode.
func (h *Handler) ManualMatch(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Query("item_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id must be an integer"})
		return
	}

	match, err := h.matching.ManualMatch(c.Request.Context(), itemID, c.Param("competitor"), c.Query("competitor_barcode"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, match)
}

// Compare returns the price comparison rows for a competitor. Pass
// ?approved=true to restrict to approved matches (reporting view).
func (h *Handler) Compare(c *gin.Context) {
	approvedOnly := c.Query("approved") == "true"
	rows, err := h.comparison.Compare(c.Request.Context(), c.Param("competitor"), approvedOnly)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if rows == nil {
		rows = []domain.ComparisonRow{}
	}
	c.JSON(http.StatusOK, rows)
}

// createTagRequest is the JSON body for tag creation
type createTagRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// CreateTag creates a notification tag.
func (h *Handler) CreateTag(c *gin.Context) {
	var req createTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	tag, err := h.tags.CreateTag(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// ListTags returns all tags, newest first.
func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.tags.ListTags(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}

// CreateSchedule creates an active cron schedule for a tag.
func (h *Handler) CreateSchedule(c *gin.Context) {
	tagID, err := strconv.ParseInt(c.Query("tag_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tag_id must be an integer"})
		return
	}

	schedule, err := h.schedules.CreateSchedule(c.Request.Context(), tagID, c.Query("cron"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": schedule.ID})
}

// ListSchedules returns all schedules, newest first.
func (h *Handler) ListSchedules(c *gin.Context) {
	schedules, err := h.schedules.ListSchedules(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if schedules == nil {
		schedules = []domain.Schedule{}
	}
	c.JSON(http.StatusOK, schedules)
}

// SetScheduleActive pauses or resumes a schedule.
func (h *Handler) SetScheduleActive(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schedule id must be an integer"})
		return
	}
	active, err := strconv.ParseBool(c.Query("active"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "active must be true or false"})
		return
	}

	if err := h.schedules.SetActive(c.Request.Context(), id, active); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "active": active})
}

// DeleteSchedule removes a schedule.
func (h *Handler) DeleteSchedule(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "schedule id must be an integer"})
		return
	}

	if err := h.schedules.DeleteSchedule(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": "deleted"})
}

// UpsertItems is the catalog import entry point: items are upserted by
// SKU and supplied barcodes seed the barcode link table.
func (h *Handler) UpsertItems(c *gin.Context) {
	var items []domain.ItemUpsert
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	count, err := h.catalog.UpsertItems(c.Request.Context(), items)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": count})
}

// ListItems returns catalog items, newest first.
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.catalog.ListItems(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}
	c.JSON(http.StatusOK, items)
}

// UpsertCompetitorItems imports competitor listings for one competitor.
func (h *Handler) UpsertCompetitorItems(c *gin.Context) {
	var items []domain.CompetitorItemUpsert
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	count, err := h.catalog.UpsertCompetitorItems(c.Request.Context(), c.Param("competitor"), items)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "count": count})
}

// abortWithError maps domain sentinel errors to HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrCompetitorItemNotFound),
		errors.Is(err, domain.ErrTagNotFound),
		errors.Is(err, domain.ErrScheduleNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyBarcode),
		errors.Is(err, domain.ErrEmptyTagName),
		errors.Is(err, domain.ErrInvalidCron):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
