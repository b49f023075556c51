package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/gambitsports/gambit-admin/internal/db"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"gorm.io/gorm"
)

// UserHandler manages end-user account endpoints for the admin panel.
type UserHandler struct {
	db *gorm.DB
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// serializeUser renders an end user for admin API responses.
func serializeUser(user *models.User) gin.H {
	return gin.H{
		"id":                user.ID,
		"uuid":              user.UUID,
		"email":             user.Email,
		"username":          user.Username,
		"full_name":         user.FullName,
		"profile_image":     user.ProfileImage,
		"bio":               user.Bio,
		"status":            user.Status,
		"role":              user.Role,
		"email_verified":    user.EmailVerified,
		"registration_date": user.RegistrationDate,
		"last_login":        user.LastLogin,
	}
}

var validUserStatuses = map[string]struct{}{
	models.UserStatusActive:    {},
	models.UserStatusInactive:  {},
	models.UserStatusSuspended: {},
}

// List returns end users with search and status filters, paginated.
func (h *UserHandler) List(c *gin.Context) {
	page, perPage, offset := pagination(c)
	q := h.db.WithContext(c.Request.Context()).Model(&models.User{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "username")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "email")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "full_name"),
			pattern, pattern, pattern,
		)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if _, ok := validUserStatuses[status]; !ok {
			response.BadRequest(c, "Invalid status filter")
			return
		}
		q = q.Where("status = ?", status)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		response.Internal(c, "Failed to list users")
		return
	}
	var rows []models.User
	if errFind := q.Order("registration_date DESC").
		Limit(perPage).Offset(offset).Find(&rows).Error; errFind != nil {
		response.Internal(c, "Failed to list users")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, serializeUser(&rows[i]))
	}
	response.OK(c, gin.H{"users": out, "pagination": paginationMeta(page, perPage, total)})
}

// Get returns an end user by ID.
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid user id")
		return
	}
	var user models.User
	errFind := h.db.WithContext(c.Request.Context()).First(&user, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "User not found")
			return
		}
		response.Internal(c, "Failed to load user")
		return
	}
	response.OK(c, serializeUser(&user))
}

// updateUserStatusRequest defines the request body for status updates.
type updateUserStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus changes an end user's account status.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid user id")
		return
	}
	var body updateUserStatusRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	status := strings.TrimSpace(body.Status)
	if _, valid := validUserStatuses[status]; !valid {
		response.BadRequest(c, "Status must be one of active, inactive, suspended")
		return
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		response.Internal(c, "Failed to update user")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "User not found")
		return
	}
	response.OK(c, gin.H{"id": id, "status": status})
}

// Delete removes an end-user account.
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid user id")
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		response.Internal(c, "Failed to delete user")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "User not found")
		return
	}
	response.Message(c, "User deleted successfully")
}
