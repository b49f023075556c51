// Package handlers implements the user-facing endpoint handlers.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gambitsports/gambit-admin/internal/config"
	"github.com/gambitsports/gambit-admin/internal/http/api/response"
	"github.com/gambitsports/gambit-admin/internal/mail"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/otp"
	"github.com/gambitsports/gambit-admin/internal/ratelimit"
	"github.com/gambitsports/gambit-admin/internal/security"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Context keys populated by the user auth middleware.
const (
	CtxUser   = "user"
	CtxUserID = "userID"
)

// Login throttle per identifier+IP pair.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Reset-request throttle per destination address. Sits in front of the OTP
// store's own reissue window so unknown addresses are throttled too.
const (
	otpRequestRateLimit  = 3
	otpRequestRateWindow = time.Minute
)

// AuthHandler manages user signup, login, and credential recovery.
type AuthHandler struct {
	db       *gorm.DB
	jwtCfg   config.JWTConfig
	otpStore otp.Store
	mailer   mail.Notifier
	limiter  *ratelimit.Manager
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, otpStore otp.Store, mailer mail.Notifier, limiter *ratelimit.Manager) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, otpStore: otpStore, mailer: mailer, limiter: limiter}
}

// CurrentUser returns the authenticated user from the request context.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

// serializeUser renders a user for user-facing API responses.
func serializeUser(user *models.User) gin.H {
	return gin.H{
		"uuid":           user.UUID,
		"email":          user.Email,
		"username":       user.Username,
		"full_name":      user.FullName,
		"profile_image":  user.ProfileImage,
		"bio":            user.Bio,
		"role":           user.Role,
		"email_verified": user.EmailVerified,
		"created_at":     user.RegistrationDate,
	}
}

// signupRequest defines the request body for account creation.
type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// Signup creates an unverified account, emails an OTP, and returns a
// short-lived token the client holds until verification completes.
func (h *AuthHandler) Signup(c *gin.Context) {
	var body signupRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	username := strings.TrimSpace(body.Username)
	if email == "" || !strings.Contains(email, "@") {
		response.BadRequest(c, "A valid email is required")
		return
	}
	if len(username) < 3 {
		response.BadRequest(c, "Username must be at least 3 characters")
		return
	}
	if len(body.Password) < 8 {
		response.BadRequest(c, "Password must be at least 8 characters")
		return
	}

	ctx := c.Request.Context()
	var existing int64
	if errCount := h.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&existing).Error; errCount != nil {
		response.Internal(c, "Failed to create account")
		return
	}
	if existing > 0 {
		response.Conflict(c, "Email or username already registered")
		return
	}

	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		response.Internal(c, "Failed to create account")
		return
	}
	user := models.User{
		UUID:             uuid.NewString(),
		Email:            email,
		Username:         username,
		FullName:         strings.TrimSpace(body.FullName),
		Password:         hash,
		Status:           models.UserStatusActive,
		Role:             models.UserRoleUser,
		RegistrationDate: time.Now().UTC(),
	}
	if errCreate := h.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		response.Internal(c, "Failed to create account")
		return
	}

	if !h.issueOTP(c, email, otp.PurposeSignup) {
		return
	}

	token, errToken := security.IssueToken(h.jwtCfg.Secret, user.ID, security.ClassAccess, security.TemporaryTokenTTL)
	if errToken != nil {
		log.WithError(errToken).Error("signup: issue token failed")
		response.Internal(c, "Failed to issue token")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":               true,
		"requires_verification": true,
		"data": gin.H{
			"token": token,
			"user":  serializeUser(&user),
		},
	})
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user by username or email.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	identifier := strings.TrimSpace(body.Username)
	if identifier == "" || body.Password == "" {
		response.BadRequest(c, "Username and password are required")
		return
	}

	ctx := c.Request.Context()
	if h.limiter != nil {
		result, errAllow := h.limiter.Allow(ctx, ratelimit.LoginKey(identifier, c.ClientIP()), loginRateLimit, loginRateWindow)
		if errAllow == nil && !result.Allowed {
			response.TooManyRequests(c, "Too many login attempts, please try again later")
			return
		}
	}

	// The same 401 covers unknown accounts and wrong passwords so the
	// response never reveals which identifiers exist.
	var user models.User
	errFind := h.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).
		First(&user).Error
	if errFind != nil {
		response.Unauthorized(c, "Invalid username/email or password")
		return
	}
	if !security.CheckPassword(body.Password, user.Password) {
		response.Unauthorized(c, "Invalid username/email or password")
		return
	}
	if !user.IsActive() {
		response.Forbidden(c, "Account is inactive or suspended")
		return
	}
	if !user.EmailVerified {
		c.JSON(http.StatusForbidden, gin.H{
			"success":               false,
			"error":                 "Email verification required",
			"requires_verification": true,
		})
		return
	}

	accessToken, refreshToken, ok := h.issueTokenPair(c, user.ID)
	if !ok {
		return
	}

	now := time.Now().UTC()
	if errUpdate := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"last_login": now, "updated_at": now}).Error; errUpdate != nil {
		log.WithError(errUpdate).Warn("login: update last login failed")
	}

	response.OK(c, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user":          serializeUser(&user),
	})
}

// refreshRequest defines the request body for token refresh.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh exchanges a refresh token for a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var body refreshRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	token := strings.TrimSpace(body.RefreshToken)
	if token == "" {
		response.BadRequest(c, "refresh_token is required")
		return
	}

	claims, errJWT := security.ParseClassToken(h.jwtCfg.Secret, token, security.ClassRefresh)
	if errJWT != nil {
		response.Unauthorized(c, "Invalid or expired refresh token")
		return
	}
	userID, errID := claims.AccountID()
	if errID != nil {
		response.Unauthorized(c, "Invalid or expired refresh token")
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, userID).Error; errFind != nil {
		response.Unauthorized(c, "Invalid or expired refresh token")
		return
	}
	if !user.IsActive() {
		response.Forbidden(c, "Account is inactive or suspended")
		return
	}

	accessToken, errToken := security.IssueToken(h.jwtCfg.Secret, user.ID, security.ClassAccess, h.jwtCfg.Expiry)
	if errToken != nil {
		log.WithError(errToken).Error("refresh: issue token failed")
		response.Internal(c, "Failed to issue token")
		return
	}
	response.OK(c, gin.H{"token": accessToken})
}

// verifyOTPRequest defines the request body for OTP verification.
type verifyOTPRequest struct {
	Email   string `json:"email"`
	OTP     string `json:"otp"`
	Purpose string `json:"purpose"`
}

// VerifyOTP checks a submitted code. Signup verification marks the account
// verified and issues full tokens; reset verification leaves the record for
// the reset endpoint to consume.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var body verifyOTPRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	code := strings.TrimSpace(body.OTP)
	if email == "" || code == "" {
		response.BadRequest(c, "Email and otp are required")
		return
	}
	purpose := strings.TrimSpace(body.Purpose)
	if purpose == "" {
		purpose = otp.PurposeSignup
	}
	if purpose != otp.PurposeSignup && purpose != otp.PurposeReset {
		response.BadRequest(c, "Purpose must be signup or reset")
		return
	}

	ctx := c.Request.Context()
	matched, errVerify := h.otpStore.Verify(ctx, email, code)
	if errVerify != nil {
		log.WithError(errVerify).Error("verify otp: store failed")
		response.Internal(c, "Failed to verify OTP")
		return
	}
	if !matched {
		response.BadRequest(c, "Invalid or expired OTP")
		return
	}
	verified, errCheck := h.otpStore.IsVerified(ctx, email, purpose)
	if errCheck != nil {
		log.WithError(errCheck).Error("verify otp: store failed")
		response.Internal(c, "Failed to verify OTP")
		return
	}
	if !verified {
		response.BadRequest(c, "Invalid or expired OTP")
		return
	}

	if purpose == otp.PurposeReset {
		response.Message(c, "OTP verified successfully")
		return
	}

	var user models.User
	if errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; errFind != nil {
		response.BadRequest(c, "Invalid or expired OTP")
		return
	}
	if !user.IsActive() {
		response.Forbidden(c, "Account is inactive or suspended")
		return
	}
	if !user.EmailVerified {
		if errUpdate := h.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{"email_verified": true, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
			response.Internal(c, "Failed to verify account")
			return
		}
		user.EmailVerified = true
	}
	if errClear := h.otpStore.Clear(ctx, email); errClear != nil {
		log.WithError(errClear).Warn("verify otp: clear failed")
	}

	accessToken, refreshToken, ok := h.issueTokenPair(c, user.ID)
	if !ok {
		return
	}
	response.OK(c, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user":          serializeUser(&user),
	})
}

// resetRequestBody defines the request body for starting a password reset.
type resetRequestBody struct {
	Email string `json:"email"`
}

// RequestPasswordReset issues a reset OTP when the email is registered. The
// response is identical either way so it cannot be used to probe accounts.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var body resetRequestBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		response.BadRequest(c, "Email is required")
		return
	}

	ctx := c.Request.Context()
	if h.limiter != nil {
		result, errAllow := h.limiter.Allow(ctx, ratelimit.OTPKey(email), otpRequestRateLimit, otpRequestRateWindow)
		if errAllow == nil && !result.Allowed {
			response.TooManyRequests(c, "Please wait before requesting another code")
			return
		}
	}

	var user models.User
	errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errFind == nil {
		code, errIssue := h.otpStore.Issue(ctx, email, otp.PurposeReset)
		switch {
		case errors.Is(errIssue, otp.ErrRateLimited):
			log.WithField("email", email).Debug("password reset: otp rate limited")
		case errIssue != nil:
			log.WithError(errIssue).Error("password reset: issue otp failed")
		default:
			h.sendOTP(c, email, otp.PurposeReset, code)
		}
	} else if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		log.WithError(errFind).Error("password reset: lookup failed")
	}

	response.Message(c, "If the email is registered, a reset code has been sent")
}

// resetPasswordRequest defines the request body for completing a reset.
type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"new_password"`
}

// ResetPassword sets a new password after a verified reset OTP and issues
// fresh tokens. The OTP record is cleared on success.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var body resetPasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" {
		response.BadRequest(c, "Email is required")
		return
	}
	if len(body.NewPassword) < 8 {
		response.BadRequest(c, "Password must be at least 8 characters")
		return
	}

	ctx := c.Request.Context()
	verified, errCheck := h.otpStore.IsVerified(ctx, email, otp.PurposeReset)
	if errCheck != nil {
		log.WithError(errCheck).Error("reset password: store failed")
		response.Internal(c, "Failed to reset password")
		return
	}
	if !verified {
		response.BadRequest(c, "OTP verification required")
		return
	}

	var user models.User
	if errFind := h.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; errFind != nil {
		response.BadRequest(c, "OTP verification required")
		return
	}
	if !user.IsActive() {
		response.Forbidden(c, "Account is inactive or suspended")
		return
	}

	hash, errHash := security.HashPassword(body.NewPassword)
	if errHash != nil {
		response.Internal(c, "Failed to reset password")
		return
	}
	if errUpdate := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"password": hash, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		response.Internal(c, "Failed to reset password")
		return
	}
	if errClear := h.otpStore.Clear(ctx, email); errClear != nil {
		log.WithError(errClear).Warn("reset password: clear otp failed")
	}

	accessToken, refreshToken, ok := h.issueTokenPair(c, user.ID)
	if !ok {
		return
	}
	response.OK(c, gin.H{
		"token":         accessToken,
		"refresh_token": refreshToken,
	})
}

// changePasswordRequest defines the request body for password changes.
type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	OTP             string `json:"otp"`
}

// ChangePassword is a two-step flow: without an otp field it verifies the
// current password and emails a code; with one it applies the new password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		response.Unauthorized(c, "Authentication token is missing")
		return
	}
	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if body.CurrentPassword == "" {
		response.BadRequest(c, "Current password is required")
		return
	}
	if !security.CheckPassword(body.CurrentPassword, user.Password) {
		response.BadRequest(c, "Current password is incorrect")
		return
	}

	ctx := c.Request.Context()
	code := strings.TrimSpace(body.OTP)
	if code == "" {
		if !h.issueOTP(c, user.Email, otp.PurposeChange) {
			return
		}
		response.Message(c, "OTP sent to your email")
		return
	}

	if len(body.NewPassword) < 8 {
		response.BadRequest(c, "Password must be at least 8 characters")
		return
	}
	matched, errVerify := h.otpStore.Verify(ctx, user.Email, code)
	if errVerify != nil {
		log.WithError(errVerify).Error("change password: store failed")
		response.Internal(c, "Failed to change password")
		return
	}
	if !matched {
		response.BadRequest(c, "Invalid or expired OTP")
		return
	}

	hash, errHash := security.HashPassword(body.NewPassword)
	if errHash != nil {
		response.Internal(c, "Failed to change password")
		return
	}
	if errUpdate := h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{"password": hash, "updated_at": time.Now().UTC()}).Error; errUpdate != nil {
		response.Internal(c, "Failed to change password")
		return
	}
	if errClear := h.otpStore.Clear(ctx, user.Email); errClear != nil {
		log.WithError(errClear).Warn("change password: clear otp failed")
	}
	response.Message(c, "Password changed successfully")
}

// issueOTP generates a code and emails it, translating rate limiting to 429.
func (h *AuthHandler) issueOTP(c *gin.Context, email, purpose string) bool {
	code, errIssue := h.otpStore.Issue(c.Request.Context(), email, purpose)
	if errIssue != nil {
		if errors.Is(errIssue, otp.ErrRateLimited) {
			response.TooManyRequests(c, "Please wait before requesting another code")
			return false
		}
		log.WithError(errIssue).Error("issue otp failed")
		response.Internal(c, "Failed to send OTP")
		return false
	}
	h.sendOTP(c, email, purpose, code)
	return true
}

// sendOTP emails the code. Delivery failures are logged, not surfaced; the
// client can request a new code after the rate window.
func (h *AuthHandler) sendOTP(c *gin.Context, email, purpose, code string) {
	subject, htmlBody := mail.OTPEmail(purpose, code, int(otp.Expiry.Minutes()))
	if errSend := h.mailer.Send(c.Request.Context(), email, subject, htmlBody); errSend != nil {
		log.WithError(errSend).WithField("email", email).Error("send otp email failed")
	}
}

// issueTokenPair signs an access and refresh token for the user.
func (h *AuthHandler) issueTokenPair(c *gin.Context, userID uint64) (string, string, bool) {
	accessToken, errAccess := security.IssueToken(h.jwtCfg.Secret, userID, security.ClassAccess, h.jwtCfg.Expiry)
	if errAccess != nil {
		log.WithError(errAccess).Error("issue access token failed")
		response.Internal(c, "Failed to issue token")
		return "", "", false
	}
	refreshToken, errRefresh := security.IssueToken(h.jwtCfg.Secret, userID, security.ClassRefresh, security.RefreshTokenTTL)
	if errRefresh != nil {
		log.WithError(errRefresh).Error("issue refresh token failed")
		response.Internal(c, "Failed to issue token")
		return "", "", false
	}
	return accessToken, refreshToken, true
}
