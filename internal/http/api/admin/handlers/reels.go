package handlers

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/gambitsports/gambit-admin/internal/db"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"gorm.io/gorm"
)

// ReelHandler manages highlight reel endpoints.
type ReelHandler struct {
	db *gorm.DB
}

// NewReelHandler constructs a ReelHandler.
func NewReelHandler(db *gorm.DB) *ReelHandler {
	return &ReelHandler{db: db}
}

// serializeReel renders a reel for API responses.
func serializeReel(reel *models.Reel) gin.H {
	out := gin.H{
		"id":            reel.ID,
		"player_id":     reel.PlayerID,
		"title":         reel.Title,
		"thumbnail_url": reel.ThumbnailURL,
		"video_url":     reel.VideoURL,
		"duration":      reel.Duration,
		"view_count":    reel.ViewCount,
		"created_at":    reel.CreatedAt,
	}
	if reel.Player != nil {
		out["player_name"] = reel.Player.Name
	}
	return out
}

// List returns reels filtered by player, with search, paginated.
func (h *ReelHandler) List(c *gin.Context) {
	page, perPage, offset := pagination(c)
	q := h.db.WithContext(c.Request.Context()).Model(&models.Reel{})

	if playerRaw := strings.TrimSpace(c.Query("player_id")); playerRaw != "" {
		playerID, errParse := strconv.ParseUint(playerRaw, 10, 64)
		if errParse != nil {
			response.BadRequest(c, "Invalid player_id filter")
			return
		}
		q = q.Where("player_id = ?", playerID)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "title"), pattern)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		response.Internal(c, "Failed to list reels")
		return
	}
	var rows []models.Reel
	if errFind := q.Preload("Player").Order("created_at DESC").
		Limit(perPage).Offset(offset).Find(&rows).Error; errFind != nil {
		response.Internal(c, "Failed to list reels")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, serializeReel(&rows[i]))
	}
	response.OK(c, gin.H{"reels": out, "pagination": paginationMeta(page, perPage, total)})
}

// Get returns a reel by ID.
func (h *ReelHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid reel id")
		return
	}
	var reel models.Reel
	errFind := h.db.WithContext(c.Request.Context()).Preload("Player").First(&reel, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Reel not found")
			return
		}
		response.Internal(c, "Failed to load reel")
		return
	}
	response.OK(c, serializeReel(&reel))
}

// reelRequest defines the request body for reel creation and updates.
type reelRequest struct {
	PlayerID     uint64   `json:"player_id"`
	Title        string   `json:"title"`
	ThumbnailURL string   `json:"thumbnail_url"`
	VideoURL     string   `json:"video_url"`
	Duration     *float64 `json:"duration"`
}

// Create creates a new reel for a player.
func (h *ReelHandler) Create(c *gin.Context) {
	var body reelRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	title := strings.TrimSpace(body.Title)
	videoURL := strings.TrimSpace(body.VideoURL)
	if title == "" || videoURL == "" || body.PlayerID == 0 {
		response.BadRequest(c, "Title, video_url and player_id are required")
		return
	}

	ctx := c.Request.Context()
	var player models.Player
	if errFind := h.db.WithContext(ctx).First(&player, body.PlayerID).Error; errFind != nil {
		response.NotFound(c, "Player not found")
		return
	}

	reel := models.Reel{
		PlayerID:     body.PlayerID,
		Title:        title,
		ThumbnailURL: strings.TrimSpace(body.ThumbnailURL),
		VideoURL:     videoURL,
	}
	if body.Duration != nil {
		reel.Duration = *body.Duration
	}
	if errCreate := h.db.WithContext(ctx).Create(&reel).Error; errCreate != nil {
		response.Internal(c, "Failed to create reel")
		return
	}
	response.Created(c, serializeReel(&reel))
}

// Update modifies a reel.
func (h *ReelHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid reel id")
		return
	}
	var body reelRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if title := strings.TrimSpace(body.Title); title != "" {
		updates["title"] = title
	}
	if thumbnail := strings.TrimSpace(body.ThumbnailURL); thumbnail != "" {
		updates["thumbnail_url"] = thumbnail
	}
	if videoURL := strings.TrimSpace(body.VideoURL); videoURL != "" {
		updates["video_url"] = videoURL
	}
	if body.Duration != nil {
		updates["duration"] = *body.Duration
	}
	if body.PlayerID != 0 {
		var player models.Player
		if errFind := h.db.WithContext(ctx).First(&player, body.PlayerID).Error; errFind != nil {
			response.NotFound(c, "Player not found")
			return
		}
		updates["player_id"] = body.PlayerID
	}

	res := h.db.WithContext(ctx).Model(&models.Reel{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		response.Internal(c, "Failed to update reel")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "Reel not found")
		return
	}

	var reel models.Reel
	if errReload := h.db.WithContext(ctx).Preload("Player").First(&reel, id).Error; errReload != nil {
		response.Internal(c, "Failed to load reel")
		return
	}
	response.OK(c, serializeReel(&reel))
}

// Delete removes a reel.
func (h *ReelHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid reel id")
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Reel{}, id)
	if res.Error != nil {
		response.Internal(c, "Failed to delete reel")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "Reel not found")
		return
	}
	response.Message(c, "Reel deleted successfully")
}

// RecordView increments a reel's view counter.
func (h *ReelHandler) RecordView(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid reel id")
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.Reel{}).
		Where("id = ?", id).
		Update("view_count", gorm.Expr("view_count + 1"))
	if res.Error != nil {
		response.Internal(c, "Failed to record view")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "Reel not found")
		return
	}

	var reel models.Reel
	if errReload := h.db.WithContext(c.Request.Context()).First(&reel, id).Error; errReload != nil {
		response.Internal(c, "Failed to load reel")
		return
	}
	response.OK(c, gin.H{"id": reel.ID, "view_count": reel.ViewCount})
}
