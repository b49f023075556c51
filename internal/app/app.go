// Package app wires configuration, storage, and HTTP routing into a server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gambitsports/gambit-admin/internal/config"
	"github.com/gambitsports/gambit-admin/internal/db"
	adminapi "github.com/gambitsports/gambit-admin/internal/http/api/admin"
	userapi "github.com/gambitsports/gambit-admin/internal/http/api/user"
	"github.com/gambitsports/gambit-admin/internal/mail"
	"github.com/gambitsports/gambit-admin/internal/otp"
	"github.com/gambitsports/gambit-admin/internal/ratelimit"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Migrate opens the database and runs migrations.
func Migrate(ctx context.Context, configPath string) error {
	cfg, errLoad := config.Load(config.ResolveConfigPath(configPath))
	if errLoad != nil {
		return errLoad
	}
	conn, errOpen := db.Open(cfg.DSN())
	if errOpen != nil {
		return errOpen
	}
	return db.Migrate(conn)
}

// RunServer boots the API server and blocks until the context is canceled.
func RunServer(ctx context.Context, configPath string, portOverride int) error {
	cfg, errLoad := config.Load(config.ResolveConfigPath(configPath))
	if errLoad != nil {
		return errLoad
	}
	if portOverride > 0 {
		cfg.Port = portOverride
	}

	conn, errOpen := db.Open(cfg.DSN())
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSeed := EnsureInitialAdmin(conn); errSeed != nil {
		return errSeed
	}

	engine := BuildEngine(conn, cfg)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return nil
	case errServe := <-errCh:
		if errors.Is(errServe, http.ErrServerClosed) {
			return nil
		}
		return errServe
	}
}

// BuildEngine assembles the gin engine with all routes and dependencies.
func BuildEngine(conn *gorm.DB, cfg *config.Config) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	otpStore := newOTPStore(cfg)
	mailer := newMailer(cfg)
	limiter := ratelimit.NewManager(cfg.RateLimit, nil, nil)

	adminapi.RegisterAdminRoutes(engine, conn, cfg.JWT, cfg.Auth)
	userapi.RegisterUserRoutes(engine, conn, cfg.JWT, cfg.Auth, otpStore, mailer, limiter)
	return engine
}

// newOTPStore selects the OTP backend, falling back to memory when Redis is
// unreachable at boot.
func newOTPStore(cfg *config.Config) otp.Store {
	if !cfg.OTP.RedisEnabled {
		return otp.NewMemoryStore()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.OTP.RedisAddr,
		Password: cfg.OTP.RedisPassword,
		DB:       cfg.OTP.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if errPing := client.Ping(pingCtx).Err(); errPing != nil {
		log.WithError(errPing).Warn("otp: redis unavailable, using memory store")
		_ = client.Close()
		return otp.NewMemoryStore()
	}
	return otp.NewRedisStore(client, cfg.OTP.RedisPrefix)
}

// newMailer selects the mail backend. Dev mode and missing SMTP credentials
// both log codes instead of sending.
func newMailer(cfg *config.Config) mail.Notifier {
	if cfg.OTP.DevMode || !cfg.SMTP.Configured() {
		if !cfg.OTP.DevMode {
			log.Warn("mail: smtp not configured, logging messages instead")
		}
		return mail.NewLogMailer()
	}
	return mail.NewSMTPMailer(cfg.SMTP)
}
