// Package user registers the user-facing API under /user/api.
package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/config"
	"github.com/gambitsports/gambit-admin/internal/http/api"
	handlers "github.com/gambitsports/gambit-admin/internal/http/api/user/handlers"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/mail"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/otp"
	"github.com/gambitsports/gambit-admin/internal/ratelimit"
	"github.com/gambitsports/gambit-admin/internal/security"
	"gorm.io/gorm"
)

// RegisterUserRoutes registers user-facing routes, middleware, and handlers.
func RegisterUserRoutes(r *gin.Engine, db *gorm.DB, jwtCfg config.JWTConfig, authCfg config.AuthConfig, otpStore otp.Store, mailer mail.Notifier, limiter *ratelimit.Manager) {
	if r == nil || db == nil {
		return
	}

	userGroup := r.Group("/user/api")

	authHandler := handlers.NewAuthHandler(db, jwtCfg, otpStore, mailer, limiter)
	userGroup.POST("/auth/signup", authHandler.Signup)
	userGroup.POST("/auth/login", authHandler.Login)
	userGroup.POST("/auth/refresh", authHandler.Refresh)
	userGroup.POST("/auth/verify-otp", authHandler.VerifyOTP)
	userGroup.POST("/auth/request-password-reset", authHandler.RequestPasswordReset)
	userGroup.POST("/auth/reset-password", authHandler.ResetPassword)

	authed := userGroup.Group("")
	authed.Use(userAuthMiddleware(db, jwtCfg, authCfg))

	profileHandler := handlers.NewProfileHandler(db)
	authed.GET("/auth/me", profileHandler.Me)
	authed.PUT("/auth/me", profileHandler.UpdateMe)
	authed.POST("/auth/change-password", authHandler.ChangePassword)
}

// userAuthMiddleware validates user access tokens and loads user context.
// Unverified accounts hold short-lived tokens but may not use them here.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig, authCfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := api.TokenFromRequest(c, authCfg.AllowLegacyTokenTransport)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "Authentication token is missing")
			return
		}

		claims, errJWT := security.ParseClassToken(jwtCfg.Secret, token, security.ClassAccess)
		if errJWT != nil {
			response.AbortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		userID, errID := claims.AccountID()
		if errID != nil {
			response.AbortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		var user models.User
		errFind := db.WithContext(c.Request.Context()).First(&user, userID).Error
		if errFind != nil {
			response.AbortError(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if !user.IsActive() {
			response.AbortError(c, http.StatusForbidden, "Account is inactive or suspended")
			return
		}
		if !user.EmailVerified {
			response.AbortError(c, http.StatusForbidden, "Email verification required")
			return
		}

		c.Set(handlers.CtxUser, &user)
		c.Set(handlers.CtxUserID, user.ID)
		c.Next()
	}
}
