package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/permissions"
	"gorm.io/gorm"
)

// RoleHandler manages role and permission endpoints.
type RoleHandler struct {
	db *gorm.DB
}

// NewRoleHandler constructs a RoleHandler.
func NewRoleHandler(db *gorm.DB) *RoleHandler {
	return &RoleHandler{db: db}
}

// serializeRole renders a role for API responses.
func serializeRole(role *models.Role, adminCount int64) gin.H {
	return gin.H{
		"id":          role.ID,
		"name":        role.Name,
		"description": role.Description,
		"permissions": role.Tags(),
		"admin_count": adminCount,
		"created_at":  role.CreatedAt,
	}
}

// List returns all roles with their assignment counts.
func (h *RoleHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	var roles []models.Role
	if errFind := h.db.WithContext(ctx).Order("name").Find(&roles).Error; errFind != nil {
		response.Internal(c, "Failed to list roles")
		return
	}
	out := make([]gin.H, 0, len(roles))
	for i := range roles {
		count := h.db.WithContext(ctx).Model(&roles[i]).Association("Admins").Count()
		out = append(out, serializeRole(&roles[i], count))
	}
	response.OK(c, gin.H{"roles": out})
}

// Get returns a role by ID.
func (h *RoleHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid role id")
		return
	}
	var role models.Role
	errFind := h.db.WithContext(c.Request.Context()).First(&role, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Role not found")
			return
		}
		response.Internal(c, "Failed to load role")
		return
	}
	count := h.db.WithContext(c.Request.Context()).Model(&role).Association("Admins").Count()
	response.OK(c, serializeRole(&role, count))
}

// roleRequest defines the request body for role creation and updates.
type roleRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// Create creates a new role.
func (h *RoleHandler) Create(c *gin.Context) {
	var body roleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		response.BadRequest(c, "Role name is required")
		return
	}
	grants, errMarshal := permissions.Marshal(body.Permissions)
	if errMarshal != nil {
		response.BadRequest(c, errMarshal.Error())
		return
	}

	ctx := c.Request.Context()
	var existing int64
	if errCount := h.db.WithContext(ctx).Model(&models.Role{}).
		Where("name = ?", name).Count(&existing).Error; errCount != nil {
		response.Internal(c, "Failed to create role")
		return
	}
	if existing > 0 {
		response.Conflict(c, "Role name already exists")
		return
	}

	role := models.Role{
		Name:        name,
		Description: strings.TrimSpace(body.Description),
		Permissions: grants,
	}
	if errCreate := h.db.WithContext(ctx).Create(&role).Error; errCreate != nil {
		response.Internal(c, "Failed to create role")
		return
	}
	response.Created(c, serializeRole(&role, 0))
}

// Update modifies a role.
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid role id")
		return
	}
	var body roleRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	var role models.Role
	errFind := h.db.WithContext(ctx).First(&role, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Role not found")
			return
		}
		response.Internal(c, "Failed to load role")
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if name := strings.TrimSpace(body.Name); name != "" && name != role.Name {
		var existing int64
		if errCount := h.db.WithContext(ctx).Model(&models.Role{}).
			Where("name = ? AND id <> ?", name, id).Count(&existing).Error; errCount != nil {
			response.Internal(c, "Failed to update role")
			return
		}
		if existing > 0 {
			response.Conflict(c, "Role name already exists")
			return
		}
		updates["name"] = name
	}
	updates["description"] = strings.TrimSpace(body.Description)
	if body.Permissions != nil {
		grants, errMarshal := permissions.Marshal(body.Permissions)
		if errMarshal != nil {
			response.BadRequest(c, errMarshal.Error())
			return
		}
		updates["permissions"] = grants
	}

	if errUpdate := h.db.WithContext(ctx).Model(&role).Updates(updates).Error; errUpdate != nil {
		response.Internal(c, "Failed to update role")
		return
	}
	if errReload := h.db.WithContext(ctx).First(&role, id).Error; errReload != nil {
		response.Internal(c, "Failed to load role")
		return
	}
	count := h.db.WithContext(ctx).Model(&role).Association("Admins").Count()
	response.OK(c, serializeRole(&role, count))
}

// Delete removes a role. Roles still assigned to admins cannot be deleted.
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid role id")
		return
	}
	ctx := c.Request.Context()
	var role models.Role
	errFind := h.db.WithContext(ctx).First(&role, id).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Role not found")
			return
		}
		response.Internal(c, "Failed to load role")
		return
	}
	if count := h.db.WithContext(ctx).Model(&role).Association("Admins").Count(); count > 0 {
		response.Conflict(c, "Cannot delete a role that is assigned to admins")
		return
	}
	if errDelete := h.db.WithContext(ctx).Delete(&models.Role{}, id).Error; errDelete != nil {
		response.Internal(c, "Failed to delete role")
		return
	}
	response.Message(c, "Role deleted successfully")
}

// Permissions returns the permission tag definitions.
func (h *RoleHandler) Permissions(c *gin.Context) {
	response.OK(c, gin.H{"permissions": permissions.Definitions()})
}

// assignmentRequest defines the request body for role assignment changes.
type assignmentRequest struct {
	AdminID uint64 `json:"admin_id"`
	RoleID  uint64 `json:"role_id"`
}

// Assign grants a role to an admin.
func (h *RoleHandler) Assign(c *gin.Context) {
	admin, role, ok := h.resolveAssignment(c)
	if !ok {
		return
	}
	if errAppend := h.db.WithContext(c.Request.Context()).
		Model(admin).Association("Roles").Append(role); errAppend != nil {
		response.Internal(c, "Failed to assign role")
		return
	}
	response.Message(c, "Role assigned successfully")
}

// Unassign revokes a role from an admin.
func (h *RoleHandler) Unassign(c *gin.Context) {
	admin, role, ok := h.resolveAssignment(c)
	if !ok {
		return
	}
	if errRemove := h.db.WithContext(c.Request.Context()).
		Model(admin).Association("Roles").Delete(role); errRemove != nil {
		response.Internal(c, "Failed to unassign role")
		return
	}
	response.Message(c, "Role unassigned successfully")
}

// AdminAssignments lists every admin with their assigned roles.
func (h *RoleHandler) AdminAssignments(c *gin.Context) {
	var admins []models.Admin
	errFind := h.db.WithContext(c.Request.Context()).Preload("Roles").
		Order("username").Find(&admins).Error
	if errFind != nil {
		response.Internal(c, "Failed to list assignments")
		return
	}
	out := make([]gin.H, 0, len(admins))
	for i := range admins {
		admin := &admins[i]
		roles := make([]gin.H, 0, len(admin.Roles))
		for _, role := range admin.Roles {
			if role == nil {
				continue
			}
			roles = append(roles, gin.H{"id": role.ID, "name": role.Name})
		}
		out = append(out, gin.H{
			"admin_id": admin.ID,
			"username": admin.Username,
			"name":     admin.Name,
			"roles":    roles,
		})
	}
	response.OK(c, gin.H{"assignments": out})
}

// resolveAssignment loads both sides of an assignment change. Admins cannot
// change their own role assignments.
func (h *RoleHandler) resolveAssignment(c *gin.Context) (*models.Admin, *models.Role, bool) {
	var body assignmentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return nil, nil, false
	}
	if body.AdminID == 0 || body.RoleID == 0 {
		response.BadRequest(c, "admin_id and role_id are required")
		return nil, nil, false
	}
	current, ok := CurrentAdmin(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return nil, nil, false
	}
	if body.AdminID == current.ID {
		response.Forbidden(c, "You cannot change your own role assignments")
		return nil, nil, false
	}
	ctx := c.Request.Context()
	var admin models.Admin
	if errFind := h.db.WithContext(ctx).First(&admin, body.AdminID).Error; errFind != nil {
		response.NotFound(c, "Admin not found")
		return nil, nil, false
	}
	var role models.Role
	if errFind := h.db.WithContext(ctx).First(&role, body.RoleID).Error; errFind != nil {
		response.NotFound(c, "Role not found")
		return nil, nil, false
	}
	return &admin, &role, true
}
