// Package admin registers the admin panel API under /api.
package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/config"
	"github.com/gambitsports/gambit-admin/internal/http/api"
	handlers "github.com/gambitsports/gambit-admin/internal/http/api/admin/handlers"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/permissions"
	"github.com/gambitsports/gambit-admin/internal/security"
	"gorm.io/gorm"
)

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, authCfg config.AuthConfig) {
	if r == nil || db == nil {
		return
	}

	apiGroup := r.Group("/api")

	authHandler := handlers.NewAuthHandler(db, jwtCfg)
	apiGroup.POST("/auth/login", authHandler.Login)

	authed := apiGroup.Group("")
	authed.Use(adminAuthMiddleware(db, jwtCfg, authCfg))

	authed.GET("/auth/me", authHandler.Me)
	authed.POST("/auth/change-password", authHandler.ChangePassword)

	adminHandler := handlers.NewAdminHandler(db)
	adminsGroup := authed.Group("", requireTag(permissions.TagRoles))
	adminsGroup.GET("/admins", adminHandler.List)
	adminsGroup.GET("/admins/:id", adminHandler.Get)
	adminsGroup.POST("/admins", adminHandler.Create)
	adminsGroup.PUT("/admins/:id", adminHandler.Update)
	adminsGroup.DELETE("/admins/:id", adminHandler.Delete)
	adminsGroup.PATCH("/admins/:id/toggle-status", adminHandler.ToggleStatus)

	roleHandler := handlers.NewRoleHandler(db)
	rolesGroup := authed.Group("", requireTag(permissions.TagRoles))
	rolesGroup.GET("/roles", roleHandler.List)
	rolesGroup.GET("/roles/permissions", roleHandler.Permissions)
	rolesGroup.GET("/roles/admin-assignments", roleHandler.AdminAssignments)
	rolesGroup.GET("/roles/:id", roleHandler.Get)
	rolesGroup.POST("/roles", roleHandler.Create)
	rolesGroup.PUT("/roles/:id", roleHandler.Update)
	rolesGroup.DELETE("/roles/:id", roleHandler.Delete)
	rolesGroup.POST("/roles/assign", roleHandler.Assign)
	rolesGroup.POST("/roles/unassign", roleHandler.Unassign)

	userHandler := handlers.NewUserHandler(db)
	usersGroup := authed.Group("", requireTag(permissions.TagUsers))
	usersGroup.GET("/users", userHandler.List)
	usersGroup.GET("/users/:id", userHandler.Get)
	usersGroup.PUT("/users/:id/status", userHandler.UpdateStatus)
	usersGroup.DELETE("/users/:id", userHandler.Delete)

	leagueHandler := handlers.NewLeagueHandler(db)
	leaguesGroup := authed.Group("", requireTag(permissions.TagLeagues))
	leaguesGroup.GET("/leagues", leagueHandler.List)
	leaguesGroup.GET("/leagues/:id", leagueHandler.Get)
	leaguesGroup.POST("/leagues", leagueHandler.Create)
	leaguesGroup.PUT("/leagues/:id", leagueHandler.Update)
	leaguesGroup.DELETE("/leagues/:id", leagueHandler.Delete)
	leaguesGroup.PATCH("/leagues/:id/toggle-status", leagueHandler.ToggleStatus)

	teamHandler := handlers.NewTeamHandler(db)
	leaguesGroup.GET("/teams", teamHandler.List)
	leaguesGroup.GET("/teams/:id", teamHandler.Get)
	leaguesGroup.POST("/teams", teamHandler.Create)
	leaguesGroup.PUT("/teams/:id", teamHandler.Update)
	leaguesGroup.DELETE("/teams/:id", teamHandler.Delete)

	playerHandler := handlers.NewPlayerHandler(db)
	leaguesGroup.GET("/players", playerHandler.List)
	leaguesGroup.GET("/players/:id", playerHandler.Get)
	leaguesGroup.POST("/players", playerHandler.Create)
	leaguesGroup.PUT("/players/:id", playerHandler.Update)
	leaguesGroup.DELETE("/players/:id", playerHandler.Delete)

	reelHandler := handlers.NewReelHandler(db)
	reelsGroup := authed.Group("", requireTag(permissions.TagReels))
	reelsGroup.GET("/reels", reelHandler.List)
	reelsGroup.GET("/reels/:id", reelHandler.Get)
	reelsGroup.POST("/reels", reelHandler.Create)
	reelsGroup.PUT("/reels/:id", reelHandler.Update)
	reelsGroup.DELETE("/reels/:id", reelHandler.Delete)
	reelsGroup.POST("/reels/:id/view", reelHandler.RecordView)

	subscriberHandler := handlers.NewSubscriberHandler(db)
	subscribersGroup := authed.Group("", requireTag(permissions.TagSubscribers))
	subscribersGroup.GET("/subscribers", subscriberHandler.List)
	subscribersGroup.GET("/subscribers/:id", subscriberHandler.Get)
	subscribersGroup.PUT("/subscribers/:id/status", subscriberHandler.UpdateStatus)

	notificationHandler := handlers.NewNotificationHandler(db)
	notificationsGroup := authed.Group("", requireTag(permissions.TagNotification))
	notificationsGroup.GET("/notifications", notificationHandler.List)
	notificationsGroup.GET("/notifications/:id", notificationHandler.Get)
	notificationsGroup.POST("/notifications", notificationHandler.Create)
	notificationsGroup.PUT("/notifications/:id", notificationHandler.Update)
	notificationsGroup.DELETE("/notifications/:id", notificationHandler.Delete)
	notificationsGroup.POST("/notifications/:id/send", notificationHandler.Send)

	contentHandler := handlers.NewContentHandler(db)
	contentGroup := authed.Group("", requireTag(permissions.TagContent))
	contentGroup.GET("/faqs", contentHandler.ListFAQs)
	contentGroup.GET("/faqs/:id", contentHandler.GetFAQ)
	contentGroup.POST("/faqs", contentHandler.CreateFAQ)
	contentGroup.PUT("/faqs/:id", contentHandler.UpdateFAQ)
	contentGroup.DELETE("/faqs/:id", contentHandler.DeleteFAQ)
	contentGroup.GET("/content-pages/:page_type", contentHandler.GetPage)
	contentGroup.PUT("/content-pages/:page_type", contentHandler.UpsertPage)

	dashboardHandler := handlers.NewDashboardHandler(db)
	authed.GET("/dashboard/stats", dashboardHandler.Stats)
}

// adminAuthMiddleware validates admin session tokens and loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig, authCfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := api.TokenFromRequest(c, authCfg.AllowLegacyTokenTransport)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "Authentication token is missing")
			return
		}

		claims, errJWT := security.ParseClassToken(jwtCfg.Secret, token, security.ClassSession)
		if errJWT != nil {
			response.AbortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		adminID, errID := claims.AccountID()
		if errID != nil {
			response.AbortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		var admin models.Admin
		errFind := db.WithContext(c.Request.Context()).Preload("Roles").First(&admin, adminID).Error
		if errFind != nil {
			response.AbortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if !admin.IsActive {
			response.AbortError(c, http.StatusForbidden, "Account is deactivated")
			return
		}

		c.Set(handlers.CtxAdmin, &admin)
		c.Set(handlers.CtxAdminID, admin.ID)
		c.Set(handlers.CtxAdminGrants, admin.Grants())
		c.Next()
	}
}

// requireTag enforces that the authenticated admin holds the permission tag.
func requireTag(tag permissions.Tag) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(handlers.CtxAdminGrants)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "Authentication token is missing")
			return
		}
		grants, ok := value.(permissions.Set)
		if !ok || !grants.Has(tag) {
			response.AbortError(c, http.StatusForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}
