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

// TeamHandler manages team endpoints.
type TeamHandler struct {
	db *gorm.DB
}

// NewTeamHandler constructs a TeamHandler.
func NewTeamHandler(db *gorm.DB) *TeamHandler {
	return &TeamHandler{db: db}
}

// serializeTeam renders a team for API responses.
func serializeTeam(team *models.Team) gin.H {
	out := gin.H{
		"id":         team.ID,
		"name":       team.Name,
		"league_id":  team.LeagueID,
		"logo_url":   team.LogoURL,
		"popularity": team.Popularity,
		"created_at": team.CreatedAt,
	}
	if team.League != nil {
		out["league_name"] = team.League.Name
	}
	return out
}

// List returns teams filtered by league, paginated.
func (h *TeamHandler) List(c *gin.Context) {
	page, perPage, offset := pagination(c)
	q := h.db.WithContext(c.Request.Context()).Model(&models.Team{})

	if leagueRaw := strings.TrimSpace(c.Query("league_id")); leagueRaw != "" {
		leagueID, errParse := strconv.ParseUint(leagueRaw, 10, 64)
		if errParse != nil {
			response.BadRequest(c, "Invalid league_id filter")
			return
		}
		q = q.Where("league_id = ?", leagueID)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		response.Internal(c, "Failed to list teams")
		return
	}
	var rows []models.Team
	if errFind := q.Preload("League").Order("popularity DESC").
		Limit(perPage).Offset(offset).Find(&rows).Error; errFind != nil {
		response.Internal(c, "Failed to list teams")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, serializeTeam(&rows[i]))
	}
	response.OK(c, gin.H{"teams": out, "pagination": paginationMeta(page, perPage, total)})
}

// Get returns a team by ID.
func (h *TeamHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid team id")
		return
	}
	var team models.Team
	errFind := h.db.WithContext(c.Request.Context()).Preload("League").First(&team, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Team not found")
			return
		}
		response.Internal(c, "Failed to load team")
		return
	}
	response.OK(c, serializeTeam(&team))
}

// teamRequest defines the request body for team creation and updates.
type teamRequest struct {
	Name       string `json:"name"`
	LeagueID   uint64 `json:"league_id"`
	LogoURL    string `json:"logo_url"`
	Popularity *int   `json:"popularity"`
}

// Create creates a new team inside a league.
func (h *TeamHandler) Create(c *gin.Context) {
	var body teamRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" || body.LeagueID == 0 {
		response.BadRequest(c, "Name and league_id are required")
		return
	}

	ctx := c.Request.Context()
	var league models.League
	if errFind := h.db.WithContext(ctx).First(&league, body.LeagueID).Error; errFind != nil {
		response.NotFound(c, "League not found")
		return
	}

	team := models.Team{
		Name:     name,
		LeagueID: body.LeagueID,
		LogoURL:  strings.TrimSpace(body.LogoURL),
	}
	if body.Popularity != nil {
		team.Popularity = *body.Popularity
	}
	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&team).Error; errCreate != nil {
			return errCreate
		}
		return tx.Model(&models.League{}).Where("id = ?", body.LeagueID).
			Update("num_teams", gorm.Expr("num_teams + 1")).Error
	})
	if errTx != nil {
		response.Internal(c, "Failed to create team")
		return
	}
	response.Created(c, serializeTeam(&team))
}

// Update modifies a team.
func (h *TeamHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid team id")
		return
	}
	var body teamRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if name := strings.TrimSpace(body.Name); name != "" {
		updates["name"] = name
	}
	if logo := strings.TrimSpace(body.LogoURL); logo != "" {
		updates["logo_url"] = logo
	}
	if body.Popularity != nil {
		updates["popularity"] = *body.Popularity
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Team{}).
		Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		response.Internal(c, "Failed to update team")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "Team not found")
		return
	}

	var team models.Team
	if errReload := h.db.WithContext(c.Request.Context()).Preload("League").First(&team, id).Error; errReload != nil {
		response.Internal(c, "Failed to load team")
		return
	}
	response.OK(c, serializeTeam(&team))
}

// Delete removes a team and its players.
func (h *TeamHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid team id")
		return
	}
	ctx := c.Request.Context()
	var team models.Team
	errFind := h.db.WithContext(ctx).First(&team, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Team not found")
			return
		}
		response.Internal(c, "Failed to load team")
		return
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errPlayers := tx.Where("team_id = ?", id).Delete(&models.Player{}).Error; errPlayers != nil {
			return errPlayers
		}
		if errDelete := tx.Delete(&models.Team{}, id).Error; errDelete != nil {
			return errDelete
		}
		return tx.Model(&models.League{}).
			Where("id = ? AND num_teams > 0", team.LeagueID).
			Update("num_teams", gorm.Expr("num_teams - 1")).Error
	})
	if errTx != nil {
		response.Internal(c, "Failed to delete team")
		return
	}
	response.Message(c, "Team deleted successfully")
}
