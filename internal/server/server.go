package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/elskow/press-portal/internal/admin"
	"github.com/elskow/press-portal/internal/api"
	"github.com/elskow/press-portal/internal/auth"
	"github.com/elskow/press-portal/internal/config"
	"github.com/elskow/press-portal/internal/ratelimit"
)

type Server struct {
	config *config.AppConfig
	log    *zap.Logger
	echo   *echo.Echo
	db     *gorm.DB
}

type Params struct {
	fx.In

	Config       *config.AppConfig
	Logger       *zap.Logger
	AuthHandler  *auth.Handler
	Gate         *auth.Gate
	AdminHandler *admin.Handler
	Limiter      *ratelimit.Limiter
	DB           *gorm.DB `optional:"true"`
}

func NewServer(p Params) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = api.ErrorHandler(p.Logger, p.Config.IsProduction())

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.BodyLimit(p.Config.Server.BodyLimit))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{p.Config.Server.ClientURL},
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))
	e.Use(requestLogger(p.Logger))
	e.Use(p.Limiter.Middleware(func(c echo.Context) bool {
		return !api.CredentialEndpoints[c.Path()]
	}))

	s := &Server{
		config: p.Config,
		log:    p.Logger,
		echo:   e,
		db:     p.DB,
	}

	if p.Config.Storage.Driver != "s3" {
		e.Static(p.Config.Storage.PublicPrefix, p.Config.Storage.LocalDir)
	}
	e.GET(api.HealthCheckRoute, s.health)

	auth.RegisterRoutes(e, p.AuthHandler, p.Gate)
	admin.RegisterRoutes(e, p.AdminHandler, p.Gate)

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)

	s.log.Info("Starting HTTP server",
		zap.String("address", addr),
		zap.Object("config", serverConfigToField(s.config)),
	)

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func serverConfigToField(cfg *config.AppConfig) zapcore.ObjectMarshaler {
	return zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("environment", cfg.Env)
		enc.AddString("client_url", cfg.Server.ClientURL)
		enc.AddString("body_limit", cfg.Server.BodyLimit)
		enc.AddString("notify_driver", cfg.Notify.Driver)
		enc.AddString("storage_driver", cfg.Storage.Driver)
		enc.AddBool("rate_limit_enabled", cfg.RateLimit.Enabled)
		return nil
	})
}

func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	data := echo.Map{
		"status":    "OK",
		"timestamp": time.Now().UTC(),
	}
	if s.db != nil {
		data["database"] = "up"
		if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request().Context()) != nil {
			data["database"] = "down"
		}
	}
	return api.OK(c, http.StatusOK, "Press Release Portal API is running", data)
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			log.Info("request", fields...)
			return nil
		},
	})
}
