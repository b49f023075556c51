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

// PlayerHandler manages player endpoints.
type PlayerHandler struct {
	db *gorm.DB
}

// NewPlayerHandler constructs a PlayerHandler.
func NewPlayerHandler(db *gorm.DB) *PlayerHandler {
	return &PlayerHandler{db: db}
}

// serializePlayer renders a player for API responses.
func serializePlayer(player *models.Player) gin.H {
	out := gin.H{
		"id":            player.ID,
		"name":          player.Name,
		"team_id":       player.TeamID,
		"league_id":     player.LeagueID,
		"position":      player.Position,
		"jersey_number": player.JerseyNumber,
		"profile_image": player.ProfileImage,
		"dob":           player.DOB,
		"college":       player.College,
		"height_weight": player.HeightWeight,
		"bat_throw":     player.BatThrow,
		"experience":    player.Experience,
		"birthplace":    player.Birthplace,
		"status":        player.Status,
		"created_at":    player.CreatedAt,
	}
	if player.Team != nil {
		out["team_name"] = player.Team.Name
	}
	if player.League != nil {
		out["league_name"] = player.League.Name
	}
	return out
}

// List returns players filtered by team or league, with search, paginated.
func (h *PlayerHandler) List(c *gin.Context) {
	page, perPage, offset := pagination(c)
	q := h.db.WithContext(c.Request.Context()).Model(&models.Player{})

	for param, column := range map[string]string{"team_id": "team_id", "league_id": "league_id"} {
		raw := strings.TrimSpace(c.Query(param))
		if raw == "" {
			continue
		}
		id, errParse := strconv.ParseUint(raw, 10, 64)
		if errParse != nil {
			response.BadRequest(c, "Invalid "+param+" filter")
			return
		}
		q = q.Where(column+" = ?", id)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "name")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "position"),
			pattern, pattern,
		)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		response.Internal(c, "Failed to list players")
		return
	}
	var rows []models.Player
	if errFind := q.Preload("Team").Preload("League").Order("name").
		Limit(perPage).Offset(offset).Find(&rows).Error; errFind != nil {
		response.Internal(c, "Failed to list players")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, serializePlayer(&rows[i]))
	}
	response.OK(c, gin.H{"players": out, "pagination": paginationMeta(page, perPage, total)})
}

// Get returns a player by ID.
func (h *PlayerHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid player id")
		return
	}
	var player models.Player
	errFind := h.db.WithContext(c.Request.Context()).
		Preload("Team").Preload("League").First(&player, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Player not found")
			return
		}
		response.Internal(c, "Failed to load player")
		return
	}
	response.OK(c, serializePlayer(&player))
}

// playerRequest defines the request body for player creation and updates.
type playerRequest struct {
	Name         string     `json:"name"`
	TeamID       uint64     `json:"team_id"`
	Position     string     `json:"position"`
	JerseyNumber string     `json:"jersey_number"`
	ProfileImage string     `json:"profile_image"`
	DOB          *time.Time `json:"dob"`
	College      string     `json:"college"`
	HeightWeight string     `json:"height_weight"`
	BatThrow     string     `json:"bat_throw"`
	Experience   string     `json:"experience"`
	Birthplace   string     `json:"birthplace"`
	Status       string     `json:"status"`
}

// Create creates a new player on a team.
func (h *PlayerHandler) Create(c *gin.Context) {
	var body playerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" || body.TeamID == 0 {
		response.BadRequest(c, "Name and team_id are required")
		return
	}

	ctx := c.Request.Context()
	var team models.Team
	if errFind := h.db.WithContext(ctx).First(&team, body.TeamID).Error; errFind != nil {
		response.NotFound(c, "Team not found")
		return
	}

	player := models.Player{
		Name:         name,
		TeamID:       team.ID,
		LeagueID:     team.LeagueID,
		Position:     strings.TrimSpace(body.Position),
		JerseyNumber: strings.TrimSpace(body.JerseyNumber),
		ProfileImage: strings.TrimSpace(body.ProfileImage),
		DOB:          body.DOB,
		College:      strings.TrimSpace(body.College),
		HeightWeight: strings.TrimSpace(body.HeightWeight),
		BatThrow:     strings.TrimSpace(body.BatThrow),
		Experience:   strings.TrimSpace(body.Experience),
		Birthplace:   strings.TrimSpace(body.Birthplace),
		Status:       "Active",
	}
	if status := strings.TrimSpace(body.Status); status != "" {
		player.Status = status
	}
	if errCreate := h.db.WithContext(ctx).Create(&player).Error; errCreate != nil {
		response.Internal(c, "Failed to create player")
		return
	}
	response.Created(c, serializePlayer(&player))
}

// Update modifies a player. Moving teams also updates the league binding.
func (h *PlayerHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid player id")
		return
	}
	var body playerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if name := strings.TrimSpace(body.Name); name != "" {
		updates["name"] = name
	}
	if body.TeamID != 0 {
		var team models.Team
		if errFind := h.db.WithContext(ctx).First(&team, body.TeamID).Error; errFind != nil {
			response.NotFound(c, "Team not found")
			return
		}
		updates["team_id"] = team.ID
		updates["league_id"] = team.LeagueID
	}
	for column, value := range map[string]string{
		"position":      body.Position,
		"jersey_number": body.JerseyNumber,
		"profile_image": body.ProfileImage,
		"college":       body.College,
		"height_weight": body.HeightWeight,
		"bat_throw":     body.BatThrow,
		"experience":    body.Experience,
		"birthplace":    body.Birthplace,
		"status":        body.Status,
	} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			updates[column] = trimmed
		}
	}
	if body.DOB != nil {
		updates["dob"] = *body.DOB
	}

	res := h.db.WithContext(ctx).Model(&models.Player{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		response.Internal(c, "Failed to update player")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "Player not found")
		return
	}

	var player models.Player
	if errReload := h.db.WithContext(ctx).Preload("Team").Preload("League").
		First(&player, id).Error; errReload != nil {
		response.Internal(c, "Failed to load player")
		return
	}
	response.OK(c, serializePlayer(&player))
}

// Delete removes a player and their reels.
func (h *PlayerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid player id")
		return
	}
	ctx := c.Request.Context()
	var player models.Player
	errFind := h.db.WithContext(ctx).First(&player, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Player not found")
			return
		}
		response.Internal(c, "Failed to load player")
		return
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errReels := tx.Where("player_id = ?", id).Delete(&models.Reel{}).Error; errReels != nil {
			return errReels
		}
		return tx.Delete(&models.Player{}, id).Error
	})
	if errTx != nil {
		response.Internal(c, "Failed to delete player")
		return
	}
	response.Message(c, "Player deleted successfully")
}
