package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"gorm.io/gorm"
)

// ProfileHandler manages the authenticated user's profile.
type ProfileHandler struct {
	db *gorm.DB
}

// NewProfileHandler constructs a ProfileHandler.
func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{db: db}
}

// Me returns the authenticated user's profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return
	}
	response.OK(c, serializeUser(user))
}

// updateProfileRequest defines the request body for profile updates.
type updateProfileRequest struct {
	FullName     *string `json:"full_name"`
	Username     *string `json:"username"`
	ProfileImage *string `json:"profile_image"`
	Bio          *string `json:"bio"`
}

// UpdateMe modifies the authenticated user's profile.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return
	}
	var body updateProfileRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.FullName != nil {
		updates["full_name"] = strings.TrimSpace(*body.FullName)
	}
	if body.Username != nil {
		username := strings.TrimSpace(*body.Username)
		if len(username) < 3 {
			response.BadRequest(c, "Username must be at least 3 characters")
			return
		}
		if username != user.Username {
			var existing int64
			if errCount := h.db.WithContext(ctx).Model(&models.User{}).
				Where("username = ? AND id <> ?", username, user.ID).
				Count(&existing).Error; errCount != nil {
				response.Internal(c, "Failed to update profile")
				return
			}
			if existing > 0 {
				response.Conflict(c, "Username already taken")
				return
			}
			updates["username"] = username
		}
	}
	if body.ProfileImage != nil {
		updates["profile_image"] = strings.TrimSpace(*body.ProfileImage)
	}
	if body.Bio != nil {
		updates["bio"] = strings.TrimSpace(*body.Bio)
	}

	if errUpdate := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).Updates(updates).Error; errUpdate != nil {
		response.Internal(c, "Failed to update profile")
		return
	}

	var refreshed models.User
	if errReload := h.db.WithContext(ctx).First(&refreshed, user.ID).Error; errReload != nil {
		response.Internal(c, "Failed to load profile")
		return
	}
	response.OK(c, serializeUser(&refreshed))
}
