package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gambitsports/gambit-admin/internal/config"
	"github.com/gambitsports/gambit-admin/internal/db"
	"github.com/gambitsports/gambit-admin/internal/http/api/user"
	"github.com/gambitsports/gambit-admin/internal/models"
	"github.com/gambitsports/gambit-admin/internal/otp"
	"github.com/gambitsports/gambit-admin/internal/ratelimit"
	"github.com/gambitsports/gambit-admin/internal/security"
	"gorm.io/gorm"
)

const testSecret = "user-test-secret"

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

type capturedMail struct {
	To      string
	Subject string
	Body    string
}

// captureMailer records outgoing mail so tests can read OTP codes.
type captureMailer struct {
	mu   sync.Mutex
	sent []capturedMail
}

func (m *captureMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, capturedMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *captureMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		t.Fatalf("no mail captured")
	}
	code := codePattern.FindString(m.sent[len(m.sent)-1].Body)
	if code == "" {
		t.Fatalf("no code in mail body: %q", m.sent[len(m.sent)-1].Body)
	}
	return code
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type userEnv struct {
	engine *gin.Engine
	conn   *gorm.DB
	mailer *captureMailer
}

func newUserEnv(t *testing.T) *userEnv {
	t.Helper()
	return newUserEnvWithLimiter(t, ratelimit.NewManager(ratelimit.Config{}, nil, nil))
}

func newUserEnvWithLimiter(t *testing.T, limiter *ratelimit.Manager) *userEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, errOpen := db.Open(filepath.Join(t.TempDir(), "user.db"))
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	mailer := &captureMailer{}
	engine := gin.New()
	user.RegisterUserRoutes(engine, conn,
		config.JWTConfig{Secret: testSecret, Expiry: time.Hour},
		config.AuthConfig{},
		otp.NewMemoryStore(), mailer, limiter)
	return &userEnv{engine: engine, conn: conn, mailer: mailer}
}

// seedVerifiedUser creates an active, verified account without the OTP flow.
func (e *userEnv) seedVerifiedUser(t *testing.T, email, username, password string) *models.User {
	t.Helper()
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	account := models.User{
		UUID:             uuid.NewString(),
		Email:            email,
		Username:         username,
		FullName:         username,
		Password:         hash,
		Status:           models.UserStatusActive,
		Role:             models.UserRoleUser,
		EmailVerified:    true,
		RegistrationDate: time.Now().UTC(),
	}
	if errCreate := e.conn.Create(&account).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return &account
}

func (e *userEnv) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal body: %v", errMarshal)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var decoded map[string]any
	if len(w.Body.Bytes()) > 0 {
		if errDecode := json.Unmarshal(w.Body.Bytes(), &decoded); errDecode != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), errDecode)
		}
	}
	return w, decoded
}

func dataField(t *testing.T, body map[string]any, key string) string {
	t.Helper()
	data, _ := body["data"].(map[string]any)
	value, _ := data[key].(string)
	if value == "" {
		t.Fatalf("missing data.%s in %v", key, body)
	}
	return value
}

func TestSignupVerifyLoginFlow(t *testing.T) {
	env := newUserEnv(t)

	w, body := env.request(t, http.MethodPost, "/user/api/auth/signup", "", gin.H{
		"email":     "flow@example.com",
		"username":  "flowuser",
		"password":  "flow-password",
		"full_name": "Flow User",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", w.Code, w.Body.String())
	}
	if body["requires_verification"] != true {
		t.Fatalf("signup body = %v", body)
	}
	tempToken := dataField(t, body, "token")

	// The temporary token cannot reach profile routes before verification.
	w, body = env.request(t, http.MethodGet, "/user/api/auth/me", tempToken, nil)
	if w.Code != http.StatusForbidden || body["error"] != "Email verification required" {
		t.Fatalf("me status = %d, body = %v", w.Code, body)
	}

	// Login is blocked the same way until the OTP is confirmed.
	w, body = env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "flowuser",
		"password": "flow-password",
	})
	if w.Code != http.StatusForbidden || body["requires_verification"] != true {
		t.Fatalf("unverified login status = %d, body = %v", w.Code, body)
	}

	code := env.mailer.lastCode(t)
	w, body = env.request(t, http.MethodPost, "/user/api/auth/verify-otp", "", gin.H{
		"email": "Flow@Example.com",
		"otp":   code,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", w.Code, w.Body.String())
	}
	accessToken := dataField(t, body, "token")
	if dataField(t, body, "refresh_token") == accessToken {
		t.Fatalf("access and refresh tokens must differ")
	}

	w, body = env.request(t, http.MethodGet, "/user/api/auth/me", accessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", w.Code, w.Body.String())
	}
	data, _ := body["data"].(map[string]any)
	if data["username"] != "flowuser" || data["email_verified"] != true {
		t.Fatalf("me data = %v", data)
	}

	w, _ = env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "flowuser",
		"password": "flow-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verified login status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestSignupDuplicate(t *testing.T) {
	env := newUserEnv(t)
	env.seedVerifiedUser(t, "dup@example.com", "dupuser", "dup-password")

	w, body := env.request(t, http.MethodPost, "/user/api/auth/signup", "", gin.H{
		"email":    "dup@example.com",
		"username": "otheruser",
		"password": "dup-password",
	})
	if w.Code != http.StatusConflict || body["error"] != "Email or username already registered" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	env := newUserEnv(t)
	w, _ := env.request(t, http.MethodPost, "/user/api/auth/signup", "", gin.H{
		"email":    "wrong@example.com",
		"username": "wronguser",
		"password": "wrong-password",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", w.Code)
	}

	w, body := env.request(t, http.MethodPost, "/user/api/auth/verify-otp", "", gin.H{
		"email": "wrong@example.com",
		"otp":   "000000",
	})
	if w.Code != http.StatusBadRequest || body["error"] != "Invalid or expired OTP" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
}

func TestRefresh(t *testing.T) {
	env := newUserEnv(t)
	env.seedVerifiedUser(t, "refresh@example.com", "refreshuser", "refresh-pass")

	w, body := env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "refreshuser",
		"password": "refresh-pass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	accessToken := dataField(t, body, "token")
	refreshToken := dataField(t, body, "refresh_token")

	w, body = env.request(t, http.MethodPost, "/user/api/auth/refresh", "", gin.H{
		"refresh_token": refreshToken,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body = %v", w.Code, body)
	}
	if dataField(t, body, "token") == "" {
		t.Fatalf("refresh returned no token")
	}

	// An access token is not accepted in place of a refresh token.
	w, body = env.request(t, http.MethodPost, "/user/api/auth/refresh", "", gin.H{
		"refresh_token": accessToken,
	})
	if w.Code != http.StatusUnauthorized || body["error"] != "Invalid or expired refresh token" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
}

func TestSuspendedUserLogin(t *testing.T) {
	env := newUserEnv(t)
	account := env.seedVerifiedUser(t, "susp@example.com", "suspuser", "susp-password")
	if errUpdate := env.conn.Model(&models.User{}).Where("id = ?", account.ID).
		Update("status", models.UserStatusSuspended).Error; errUpdate != nil {
		t.Fatalf("suspend: %v", errUpdate)
	}

	w, body := env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "suspuser",
		"password": "susp-password",
	})
	if w.Code != http.StatusForbidden || body["error"] != "Account is inactive or suspended" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newUserEnv(t)
	env.seedVerifiedUser(t, "reset@example.com", "resetuser", "old-password")

	// An unknown email gets the same response and no mail.
	w, body := env.request(t, http.MethodPost, "/user/api/auth/request-password-reset", "", gin.H{
		"email": "nobody@example.com",
	})
	if w.Code != http.StatusOK || body["message"] != "If the email is registered, a reset code has been sent" {
		t.Fatalf("unknown email status = %d, body = %v", w.Code, body)
	}
	if env.mailer.count() != 0 {
		t.Fatalf("mail sent for unknown email")
	}

	w, body = env.request(t, http.MethodPost, "/user/api/auth/request-password-reset", "", gin.H{
		"email": "reset@example.com",
	})
	if w.Code != http.StatusOK || body["message"] != "If the email is registered, a reset code has been sent" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	code := env.mailer.lastCode(t)

	w, body = env.request(t, http.MethodPost, "/user/api/auth/verify-otp", "", gin.H{
		"email":   "reset@example.com",
		"otp":     code,
		"purpose": "reset",
	})
	if w.Code != http.StatusOK || body["message"] != "OTP verified successfully" {
		t.Fatalf("verify status = %d, body = %v", w.Code, body)
	}

	w, body = env.request(t, http.MethodPost, "/user/api/auth/reset-password", "", gin.H{
		"email":        "reset@example.com",
		"new_password": "new-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reset status = %d, body = %v", w.Code, body)
	}
	if dataField(t, body, "token") == "" {
		t.Fatalf("reset returned no token")
	}

	w, _ = env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "resetuser",
		"password": "new-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password status = %d", w.Code)
	}
	w, _ = env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "resetuser",
		"password": "old-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("old password still accepted: %d", w.Code)
	}
}

func TestPasswordResetRequestThrottle(t *testing.T) {
	// A fixed clock keeps every request inside one limiter window.
	clock := time.Unix(1_000_030, 0)
	env := newUserEnvWithLimiter(t, ratelimit.NewManager(ratelimit.Config{},
		func() time.Time { return clock }, nil))

	for i := 0; i < 3; i++ {
		w, _ := env.request(t, http.MethodPost, "/user/api/auth/request-password-reset", "", gin.H{
			"email": "burst@example.com",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}
	w, body := env.request(t, http.MethodPost, "/user/api/auth/request-password-reset", "", gin.H{
		"email": "burst@example.com",
	})
	if w.Code != http.StatusTooManyRequests || body["error"] != "Please wait before requesting another code" {
		t.Fatalf("fourth request status = %d, body = %v", w.Code, body)
	}

	// Other addresses keep their own budget.
	w, _ = env.request(t, http.MethodPost, "/user/api/auth/request-password-reset", "", gin.H{
		"email": "other@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("other address status = %d, want 200", w.Code)
	}
}

func TestChangePasswordCodeNotValidForReset(t *testing.T) {
	env := newUserEnv(t)
	env.seedVerifiedUser(t, "cross@example.com", "crossuser", "old-password")

	w, body := env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "crossuser",
		"password": "old-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	token := dataField(t, body, "token")

	w, body = env.request(t, http.MethodPost, "/user/api/auth/change-password", token, gin.H{
		"current_password": "old-password",
	})
	if w.Code != http.StatusOK || body["message"] != "OTP sent to your email" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	code := env.mailer.lastCode(t)

	// The change-password code cannot stand in for a reset code.
	w, body = env.request(t, http.MethodPost, "/user/api/auth/verify-otp", "", gin.H{
		"email":   "cross@example.com",
		"otp":     code,
		"purpose": "reset",
	})
	if w.Code != http.StatusBadRequest || body["error"] != "Invalid or expired OTP" {
		t.Fatalf("verify as reset status = %d, body = %v", w.Code, body)
	}
	w, body = env.request(t, http.MethodPost, "/user/api/auth/reset-password", "", gin.H{
		"email":        "cross@example.com",
		"new_password": "hijacked-pass",
	})
	if w.Code != http.StatusBadRequest || body["error"] != "OTP verification required" {
		t.Fatalf("reset status = %d, body = %v", w.Code, body)
	}

	// The code still completes its own flow.
	w, body = env.request(t, http.MethodPost, "/user/api/auth/change-password", token, gin.H{
		"current_password": "old-password",
		"new_password":     "new-password",
		"otp":              code,
	})
	if w.Code != http.StatusOK || body["message"] != "Password changed successfully" {
		t.Fatalf("change status = %d, body = %v", w.Code, body)
	}
}

func TestVerifyOTPSuspendedAccount(t *testing.T) {
	env := newUserEnv(t)
	w, _ := env.request(t, http.MethodPost, "/user/api/auth/signup", "", gin.H{
		"email":    "frozen@example.com",
		"username": "frozenuser",
		"password": "frozen-password",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup status = %d", w.Code)
	}
	if errUpdate := env.conn.Model(&models.User{}).Where("email = ?", "frozen@example.com").
		Update("status", models.UserStatusSuspended).Error; errUpdate != nil {
		t.Fatalf("suspend: %v", errUpdate)
	}

	code := env.mailer.lastCode(t)
	w, body := env.request(t, http.MethodPost, "/user/api/auth/verify-otp", "", gin.H{
		"email": "frozen@example.com",
		"otp":   code,
	})
	if w.Code != http.StatusForbidden || body["error"] != "Account is inactive or suspended" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
}

func TestResetPasswordSuspendedAccount(t *testing.T) {
	env := newUserEnv(t)
	account := env.seedVerifiedUser(t, "halted@example.com", "halteduser", "old-password")

	w, _ := env.request(t, http.MethodPost, "/user/api/auth/request-password-reset", "", gin.H{
		"email": "halted@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("request status = %d", w.Code)
	}
	code := env.mailer.lastCode(t)
	w, _ = env.request(t, http.MethodPost, "/user/api/auth/verify-otp", "", gin.H{
		"email":   "halted@example.com",
		"otp":     code,
		"purpose": "reset",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d", w.Code)
	}

	if errUpdate := env.conn.Model(&models.User{}).Where("id = ?", account.ID).
		Update("status", models.UserStatusSuspended).Error; errUpdate != nil {
		t.Fatalf("suspend: %v", errUpdate)
	}
	w, body := env.request(t, http.MethodPost, "/user/api/auth/reset-password", "", gin.H{
		"email":        "halted@example.com",
		"new_password": "new-password",
	})
	if w.Code != http.StatusForbidden || body["error"] != "Account is inactive or suspended" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
}

func TestResetPasswordWithoutVerification(t *testing.T) {
	env := newUserEnv(t)
	env.seedVerifiedUser(t, "skip@example.com", "skipuser", "skip-password")

	w, body := env.request(t, http.MethodPost, "/user/api/auth/reset-password", "", gin.H{
		"email":        "skip@example.com",
		"new_password": "new-password",
	})
	if w.Code != http.StatusBadRequest || body["error"] != "OTP verification required" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
}

func TestChangePasswordTwoStep(t *testing.T) {
	env := newUserEnv(t)
	env.seedVerifiedUser(t, "change@example.com", "changeuser", "old-password")

	w, body := env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "changeuser",
		"password": "old-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	token := dataField(t, body, "token")

	// Wrong current password never triggers a code.
	w, body = env.request(t, http.MethodPost, "/user/api/auth/change-password", token, gin.H{
		"current_password": "bad-password",
	})
	if w.Code != http.StatusBadRequest || body["error"] != "Current password is incorrect" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	if env.mailer.count() != 0 {
		t.Fatalf("mail sent for wrong current password")
	}

	w, body = env.request(t, http.MethodPost, "/user/api/auth/change-password", token, gin.H{
		"current_password": "old-password",
	})
	if w.Code != http.StatusOK || body["message"] != "OTP sent to your email" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}
	code := env.mailer.lastCode(t)

	w, body = env.request(t, http.MethodPost, "/user/api/auth/change-password", token, gin.H{
		"current_password": "old-password",
		"new_password":     "new-password",
		"otp":              code,
	})
	if w.Code != http.StatusOK || body["message"] != "Password changed successfully" {
		t.Fatalf("status = %d, body = %v", w.Code, body)
	}

	w, _ = env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "changeuser",
		"password": "new-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login with new password status = %d", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	env := newUserEnv(t)
	env.seedVerifiedUser(t, "prof@example.com", "profuser", "prof-password")
	env.seedVerifiedUser(t, "taken@example.com", "takenuser", "prof-password")

	w, body := env.request(t, http.MethodPost, "/user/api/auth/login", "", gin.H{
		"username": "profuser",
		"password": "prof-password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d", w.Code)
	}
	token := dataField(t, body, "token")

	w, body = env.request(t, http.MethodPut, "/user/api/auth/me", token, gin.H{
		"full_name": "Renamed User",
		"bio":       "short bio",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %v", w.Code, body)
	}
	data, _ := body["data"].(map[string]any)
	if data["full_name"] != "Renamed User" || data["bio"] != "short bio" {
		t.Fatalf("update data = %v", data)
	}

	// A username held by another account is rejected.
	w, _ = env.request(t, http.MethodPut, "/user/api/auth/me", token, gin.H{
		"username": "takenuser",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate username status = %d, want 409", w.Code)
	}
}
