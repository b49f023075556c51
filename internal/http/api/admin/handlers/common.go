// Package handlers implements the admin panel endpoint handlers.
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/models"
)

// Context keys populated by the admin auth middleware.
const (
	CtxAdmin       = "admin"
	CtxAdminID     = "adminID"
	CtxAdminGrants = "adminGrants"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// CurrentAdmin returns the authenticated admin from the request context.
func CurrentAdmin(c *gin.Context) (*models.Admin, bool) {
	value, ok := c.Get(CtxAdmin)
	if !ok {
		return nil, false
	}
	admin, ok := value.(*models.Admin)
	return admin, ok && admin != nil
}

// parseID parses a numeric path parameter.
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if errParse != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// pagination resolves page/per_page query parameters with defaults.
func pagination(c *gin.Context) (page, perPage, offset int) {
	page = 1
	perPage = defaultPerPage
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := strings.TrimSpace(c.Query("per_page")); raw != "" {
		if parsed, errParse := strconv.Atoi(raw); errParse == nil && parsed > 0 {
			perPage = parsed
		}
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage, (page - 1) * perPage
}

// paginationMeta builds the envelope pagination block.
func paginationMeta(page, perPage int, total int64) gin.H {
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return gin.H{
		"page":     page,
		"per_page": perPage,
		"total":    total,
		"pages":    pages,
	}
}
