package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/config"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler manages admin session endpoints.
type AuthHandler struct {
	db     *gorm.DB
	jwtCfg config.JWTConfig
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg}
}

// loginRequest defines the request body for admin login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin by username or email and issues a session token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		response.BadRequest(c, "Username and password are required")
		return
	}

	// The same 401 covers unknown accounts and wrong passwords so the
	// response never reveals which usernames exist.
	var admin models.Admin
	errFind := h.db.WithContext(c.Request.Context()).Preload("Roles").
		Where("username = ? OR email = ?", username, strings.ToLower(username)).
		First(&admin).Error
	if errFind != nil {
		response.Unauthorized(c, "Invalid username/email or password")
		return
	}
	if !security.CheckPassword(body.Password, admin.Password) {
		response.Unauthorized(c, "Invalid username/email or password")
		return
	}
	if !admin.IsActive {
		response.Forbidden(c, "Account is deactivated")
		return
	}

	token, errToken := security.IssueToken(h.jwtCfg.Secret, admin.ID, security.ClassSession, h.jwtCfg.Expiry)
	if errToken != nil {
		log.WithError(errToken).Error("admin login: issue token failed")
		response.Internal(c, "Failed to issue token")
		return
	}

	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{"last_login": now, "updated_at": now}).Error; errUpdate != nil {
		log.WithError(errUpdate).Warn("admin login: update last login failed")
	}
	admin.LastLogin = &now

	response.OK(c, gin.H{
		"token": token,
		"admin": serializeAdmin(&admin),
	})
}

// Me returns the authenticated admin's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	admin, ok := CurrentAdmin(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return
	}
	response.OK(c, serializeAdmin(admin))
}

// adminChangePasswordRequest defines the request body for password changes.
type adminChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword updates the authenticated admin's password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	admin, ok := CurrentAdmin(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return
	}
	var body adminChangePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if body.CurrentPassword == "" || body.NewPassword == "" {
		response.BadRequest(c, "Current and new password are required")
		return
	}
	if len(body.NewPassword) < 8 {
		response.BadRequest(c, "New password must be at least 8 characters")
		return
	}
	if !security.CheckPassword(body.CurrentPassword, admin.Password) {
		response.BadRequest(c, "Current password is incorrect")
		return
	}

	hash, errHash := security.HashPassword(body.NewPassword)
	if errHash != nil {
		response.Internal(c, "Failed to update password")
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).
		Where("id = ?", admin.ID).
		Updates(map[string]any{"password": hash, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		response.Internal(c, "Failed to update password")
		return
	}
	response.Message(c, "Password changed successfully")
}
