package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/config"
	"go.uber.org/zap"
)

// Router registers a group of routes on the server
type Router interface {
	Register(e *echo.Echo)
}

type WebServer struct {
	root *echo.Echo
	cfg  *config.AppConfig
}

func NewWebServer(cfg *config.AppConfig, routers ...Router) *WebServer {
	s := &WebServer{root: NewEcho(cfg.System.Debug), cfg: cfg}
	s.root.Server.ReadTimeout = cfg.Web.ReadTimeout
	s.root.Server.WriteTimeout = cfg.Web.WriteTimeout
	for _, r := range routers {
		r.Register(s.root)
	}
	return s
}

// NewEcho builds the echo instance with the json codec, validator, error
// handler and middleware shared by every route.
func NewEcho(debug bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = debug
	// request logs go through zap, silence echo's own logger
	e.Logger.SetLevel(log.OFF)
	e.JSONSerializer = JSONSerializer{}
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogMethod:   true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("namespace", "http"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			if v.Status >= http.StatusInternalServerError {
				zap.L().Error("http request", fields...)
			} else {
				zap.L().Debug("http request", fields...)
			}
			return nil
		},
	}))
	return e
}

func (s *WebServer) Echo() *echo.Echo {
	return s.root
}

// Start blocks serving http until Shutdown is called.
func (s *WebServer) Start() error {
	zap.L().Info("storefront http server listening", zap.String("addr", s.cfg.Addr()))
	err := s.root.Start(s.cfg.Addr())
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *WebServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.root.Shutdown(ctx)
}
