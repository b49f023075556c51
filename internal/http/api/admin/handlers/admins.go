package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/gambitsports/gambit-admin/internal/db"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/security"
	"gorm.io/gorm"
)

// AdminHandler manages administrator account endpoints.
type AdminHandler struct {
	db *gorm.DB
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// serializeAdmin renders an admin for API responses.
func serializeAdmin(admin *models.Admin) gin.H {
	roles := make([]gin.H, 0, len(admin.Roles))
	for _, role := range admin.Roles {
		if role == nil {
			continue
		}
		roles = append(roles, gin.H{"id": role.ID, "name": role.Name})
	}
	return gin.H{
		"id":          admin.ID,
		"username":    admin.Username,
		"email":       admin.Email,
		"name":        admin.Name,
		"is_active":   admin.IsActive,
		"roles":       roles,
		"permissions": admin.Grants().Tags(),
		"last_login":  admin.LastLogin,
		"created_at":  admin.CreatedAt,
	}
}

// List returns admins with optional search, paginated.
func (h *AdminHandler) List(c *gin.Context) {
	page, perPage, offset := pagination(c)
	q := h.db.WithContext(c.Request.Context()).Model(&models.Admin{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := dbutil.NormalizeLikePattern(h.db, "%"+search+"%")
		q = q.Where(
			dbutil.CaseInsensitiveLikeExpr(h.db, "username")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "email")+" OR "+
				dbutil.CaseInsensitiveLikeExpr(h.db, "name"),
			pattern, pattern, pattern,
		)
	}

	var total int64
	if errCount := q.Count(&total).Error; errCount != nil {
		response.Internal(c, "Failed to list admins")
		return
	}
	var rows []models.Admin
	if errFind := q.Preload("Roles").Order("created_at DESC").
		Limit(perPage).Offset(offset).Find(&rows).Error; errFind != nil {
		response.Internal(c, "Failed to list admins")
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, serializeAdmin(&rows[i]))
	}
	response.OK(c, gin.H{"admins": out, "pagination": paginationMeta(page, perPage, total)})
}

// Get returns an admin by ID.
func (h *AdminHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid admin id")
		return
	}
	var admin models.Admin
	errFind := h.db.WithContext(c.Request.Context()).Preload("Roles").First(&admin, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Admin not found")
			return
		}
		response.Internal(c, "Failed to load admin")
		return
	}
	response.OK(c, serializeAdmin(&admin))
}

// createAdminRequest defines the request body for admin creation.
type createAdminRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Password string   `json:"password"`
	RoleIDs  []uint64 `json:"role_ids"`
}

// Create creates a new administrator account.
func (h *AdminHandler) Create(c *gin.Context) {
	var body createAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	username := strings.TrimSpace(body.Username)
	email := strings.ToLower(strings.TrimSpace(body.Email))
	name := strings.TrimSpace(body.Name)
	if username == "" || email == "" || name == "" {
		response.BadRequest(c, "Username, email and name are required")
		return
	}
	if len(body.Password) < 8 {
		response.BadRequest(c, "Password must be at least 8 characters")
		return
	}

	ctx := c.Request.Context()
	var existing int64
	if errCount := h.db.WithContext(ctx).Model(&models.Admin{}).
		Where("username = ? OR email = ?", username, email).
		Count(&existing).Error; errCount != nil {
		response.Internal(c, "Failed to create admin")
		return
	}
	if existing > 0 {
		response.Conflict(c, "Username or email already exists")
		return
	}

	roles, errRoles := h.loadRoles(c, body.RoleIDs)
	if errRoles != nil {
		response.BadRequest(c, "One or more roles do not exist")
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		response.Internal(c, "Failed to create admin")
		return
	}
	admin := models.Admin{
		Username: username,
		Email:    email,
		Name:     name,
		Password: hash,
		IsActive: true,
		Roles:    roles,
	}
	if errCreate := h.db.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		response.Internal(c, "Failed to create admin")
		return
	}
	response.Created(c, serializeAdmin(&admin))
}

// updateAdminRequest defines the request body for admin updates.
type updateAdminRequest struct {
	Email    *string   `json:"email"`
	Name     *string   `json:"name"`
	IsActive *bool     `json:"is_active"`
	RoleIDs  *[]uint64 `json:"role_ids"`
}

// Update modifies an administrator account. Admins cannot deactivate
// themselves or change their own role assignments.
func (h *AdminHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid admin id")
		return
	}
	current, ok := CurrentAdmin(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return
	}
	var body updateAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if body.IsActive != nil && !*body.IsActive && id == current.ID {
		response.Forbidden(c, "You cannot deactivate your own account")
		return
	}
	if body.RoleIDs != nil && id == current.ID {
		response.Forbidden(c, "You cannot change your own role assignments")
		return
	}

	ctx := c.Request.Context()
	var admin models.Admin
	errFind := h.db.WithContext(ctx).Preload("Roles").First(&admin, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Admin not found")
			return
		}
		response.Internal(c, "Failed to load admin")
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*body.Email))
		if email != "" {
			updates["email"] = email
		}
	}
	if body.Name != nil {
		if name := strings.TrimSpace(*body.Name); name != "" {
			updates["name"] = name
		}
	}
	if body.IsActive != nil {
		updates["is_active"] = *body.IsActive
	}

	var roles []*models.Role
	if body.RoleIDs != nil {
		loaded, errRoles := h.loadRoles(c, *body.RoleIDs)
		if errRoles != nil {
			response.BadRequest(c, "One or more roles do not exist")
			return
		}
		roles = loaded
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errUpdate := tx.Model(&admin).Updates(updates).Error; errUpdate != nil {
			return errUpdate
		}
		if body.RoleIDs != nil {
			return tx.Model(&admin).Association("Roles").Replace(roles)
		}
		return nil
	})
	if errTx != nil {
		response.Internal(c, "Failed to update admin")
		return
	}

	if errReload := h.db.WithContext(ctx).Preload("Roles").First(&admin, id).Error; errReload != nil {
		response.Internal(c, "Failed to load admin")
		return
	}
	response.OK(c, serializeAdmin(&admin))
}

// Delete removes an administrator account. Admins cannot delete themselves.
func (h *AdminHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid admin id")
		return
	}
	current, ok := CurrentAdmin(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return
	}
	if id == current.ID {
		response.Forbidden(c, "You cannot delete your own account")
		return
	}

	ctx := c.Request.Context()
	var admin models.Admin
	errFind := h.db.WithContext(ctx).First(&admin, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Admin not found")
			return
		}
		response.Internal(c, "Failed to load admin")
		return
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errClear := tx.Model(&admin).Association("Roles").Clear(); errClear != nil {
			return errClear
		}
		return tx.Delete(&models.Admin{}, id).Error
	})
	if errTx != nil {
		response.Internal(c, "Failed to delete admin")
		return
	}
	response.Message(c, "Admin deleted successfully")
}

// ToggleStatus flips an admin's active flag. Admins cannot toggle themselves.
func (h *AdminHandler) ToggleStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid admin id")
		return
	}
	current, ok := CurrentAdmin(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return
	}
	if id == current.ID {
		response.Forbidden(c, "You cannot change the status of your own account")
		return
	}

	ctx := c.Request.Context()
	var admin models.Admin
	errFind := h.db.WithContext(ctx).First(&admin, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Admin not found")
			return
		}
		response.Internal(c, "Failed to load admin")
		return
	}

	next := !admin.IsActive
	if errUpdate := h.db.WithContext(ctx).Model(&models.Admin{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": next, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		response.Internal(c, "Failed to update admin")
		return
	}
	response.OK(c, gin.H{"id": id, "is_active": next})
}

// loadRoles resolves role IDs to rows, failing when any is missing.
func (h *AdminHandler) loadRoles(c *gin.Context, ids []uint64) ([]*models.Role, error) {
	if len(ids) == 0 {
		return []*models.Role{}, nil
	}
	var roles []*models.Role
	errFind := h.db.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&roles).Error
	if errFind != nil {
		return nil, errFind
	}
	if len(roles) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}
	return roles, nil
}
