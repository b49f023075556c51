package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/gambitsports/gambit-admin/internal/db"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"gorm.io/gorm"
)

// LeagueHandler manages league endpoints.
type LeagueHandler struct {
	db *gorm.DB
}

// NewLeagueHandler constructs a LeagueHandler.
func NewLeagueHandler(db *gorm.DB) *LeagueHandler {
	return &LeagueHandler{db: db}
}

// serializeLeague renders a league for API responses.
func serializeLeague(league *models.League) gin.H {
	divisions := []string{}
	_ = json.Unmarshal(league.Divisions, &divisions)
	return gin.H{
		"id":           league.ID,
		"name":         league.Name,
		"category":     league.Category,
		"country":      league.Country,
		"logo_url":     league.LogoURL,
		"popularity":   league.Popularity,
		"founded_date": league.FoundedDate,
		"headquarters": league.Headquarters,
		"commissioner": league.Commissioner,
		"divisions":    divisions,
		"num_teams":    league.NumTeams,
		"enabled":      league.Enabled,
		"created_at":   league.CreatedAt,
	}
}

// List returns leagues with category/search filters, paginated.
func (h *LeagueHandler) List(c *gin.Context) {
	page, perPage, offset := pagination(c)
	q := h.db.WithContext(c.Request.Context()).Model(&models.League{})

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		q = q.Where("category = ?", category)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "name"), pattern)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		response.Internal(c, "Failed to list leagues")
		return
	}
	var rows []models.League
	if errFind := q.Order("popularity DESC").
		Limit(perPage).Offset(offset).Find(&rows).Error; errFind != nil {
		response.Internal(c, "Failed to list leagues")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, serializeLeague(&rows[i]))
	}
	response.OK(c, gin.H{"leagues": out, "pagination": paginationMeta(page, perPage, total)})
}

// Get returns a league by ID.
func (h *LeagueHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid league id")
		return
	}
	var league models.League
	errFind := h.db.WithContext(c.Request.Context()).First(&league, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "League not found")
			return
		}
		response.Internal(c, "Failed to load league")
		return
	}
	response.OK(c, serializeLeague(&league))
}

// leagueRequest defines the request body for league creation and updates.
type leagueRequest struct {
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Country      string     `json:"country"`
	LogoURL      string     `json:"logo_url"`
	Popularity   *int       `json:"popularity"`
	FoundedDate  *time.Time `json:"founded_date"`
	Headquarters string     `json:"headquarters"`
	Commissioner string     `json:"commissioner"`
	Divisions    []string   `json:"divisions"`
	Enabled      *bool      `json:"enabled"`
}

// Create creates a new league.
func (h *LeagueHandler) Create(c *gin.Context) {
	var body leagueRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	name := strings.TrimSpace(body.Name)
	category := strings.TrimSpace(body.Category)
	if name == "" || category == "" {
		response.BadRequest(c, "Name and category are required")
		return
	}
	divisions, errMarshal := json.Marshal(normalizeStrings(body.Divisions))
	if errMarshal != nil {
		response.BadRequest(c, "Invalid divisions")
		return
	}

	league := models.League{
		Name:         name,
		Category:     category,
		Country:      strings.TrimSpace(body.Country),
		LogoURL:      strings.TrimSpace(body.LogoURL),
		FoundedDate:  body.FoundedDate,
		Headquarters: strings.TrimSpace(body.Headquarters),
		Commissioner: strings.TrimSpace(body.Commissioner),
		Divisions:    divisions,
		Enabled:      true,
	}
	if body.Popularity != nil {
		league.Popularity = *body.Popularity
	}
	if body.Enabled != nil {
		league.Enabled = *body.Enabled
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&league).Error; errCreate != nil {
		response.Internal(c, "Failed to create league")
		return
	}
	response.Created(c, serializeLeague(&league))
}

// Update modifies a league.
func (h *LeagueHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid league id")
		return
	}
	var body leagueRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if name := strings.TrimSpace(body.Name); name != "" {
		updates["name"] = name
	}
	if category := strings.TrimSpace(body.Category); category != "" {
		updates["category"] = category
	}
	if country := strings.TrimSpace(body.Country); country != "" {
		updates["country"] = country
	}
	if logo := strings.TrimSpace(body.LogoURL); logo != "" {
		updates["logo_url"] = logo
	}
	if body.Popularity != nil {
		updates["popularity"] = *body.Popularity
	}
	if body.FoundedDate != nil {
		updates["founded_date"] = *body.FoundedDate
	}
	if hq := strings.TrimSpace(body.Headquarters); hq != "" {
		updates["headquarters"] = hq
	}
	if commissioner := strings.TrimSpace(body.Commissioner); commissioner != "" {
		updates["commissioner"] = commissioner
	}
	if body.Divisions != nil {
		divisions, errMarshal := json.Marshal(normalizeStrings(body.Divisions))
		if errMarshal != nil {
			response.BadRequest(c, "Invalid divisions")
			return
		}
		updates["divisions"] = divisions
	}
	if body.Enabled != nil {
		updates["enabled"] = *body.Enabled
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.League{}).
		Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		response.Internal(c, "Failed to update league")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "League not found")
		return
	}

	var league models.League
	if errReload := h.db.WithContext(c.Request.Context()).First(&league, id).Error; errReload != nil {
		response.Internal(c, "Failed to load league")
		return
	}
	response.OK(c, serializeLeague(&league))
}

// Delete removes a league together with its teams and players.
func (h *LeagueHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid league id")
		return
	}
	ctx := c.Request.Context()
	var league models.League
	errFind := h.db.WithContext(ctx).First(&league, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "League not found")
			return
		}
		response.Internal(c, "Failed to load league")
		return
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errPlayers := tx.Where("league_id = ?", id).Delete(&models.Player{}).Error; errPlayers != nil {
			return errPlayers
		}
		if errTeams := tx.Where("league_id = ?", id).Delete(&models.Team{}).Error; errTeams != nil {
			return errTeams
		}
		return tx.Delete(&models.League{}, id).Error
	})
	if errTx != nil {
		response.Internal(c, "Failed to delete league")
		return
	}
	response.Message(c, "League deleted successfully")
}

// ToggleStatus flips a league's enabled flag.
func (h *LeagueHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid league id")
		return
	}
	ctx := c.Request.Context()
	var league models.League
	errFind := h.db.WithContext(ctx).First(&league, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "League not found")
			return
		}
		response.Internal(c, "Failed to load league")
		return
	}
	next := !league.Enabled
	if errUpdate := h.db.WithContext(ctx).Model(&models.League{}).
		Where("id = ?", id).
		Updates(map[string]any{"enabled": next, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		response.Internal(c, "Failed to update league")
		return
	}
	response.OK(c, gin.H{"id": id, "enabled": next})
}

// normalizeStrings trims entries and drops empties, preserving order.
func normalizeStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
