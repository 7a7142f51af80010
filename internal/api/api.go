package api

import (
	"context"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/checkout"
	"github.com/talkincode/storefront/internal/validate"
	"github.com/talkincode/storefront/internal/webserver"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Handler serves the storefront REST API
type Handler struct {
	db     *gorm.DB
	placer *checkout.Placer
}

var _ webserver.Router = (*Handler)(nil)

func NewHandler(db *gorm.DB, placer *checkout.Placer) *Handler {
	return &Handler{db: db, placer: placer}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.health)
	h.registerUserRoutes(e)
	h.registerProductRoutes(e)
	h.registerOrderRoutes(e)
}

func (h *Handler) health(c echo.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return fail(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database unavailable")
	}
	return ok(c, map[string]string{"status": "ok"})
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, webserver.ErrorResponse{Code: code, Message: message})
}

// bindAndValidate decodes the body and runs the payload's validate rules.
// The returned error is a 400 echo.HTTPError ready to be returned by the handler.
func bindAndValidate(c echo.Context, payload interface{}) error {
	if err := c.Bind(payload); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request").SetInternal(err)
	}
	if err := c.Validate(payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, validate.Message(err)).SetInternal(err)
	}
	return nil
}

// internalError logs the cause and answers with an opaque 500
func internalError(c echo.Context, msg string, err error) error {
	zap.L().Error(msg,
		zap.String("namespace", "api"),
		zap.String("uri", c.Request().RequestURI),
		zap.Error(err),
	)
	return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// parseOffsetLimit reads offset/limit query params; limit defaults to 10, capped at 100
func parseOffsetLimit(c echo.Context) (offset, limit int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return offset, limit
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// updatesFrom turns a partial payload into a gorm update map: nil fields are
// skipped, set pointers are dereferenced.
func updatesFrom(payload interface{}) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	if err := mapstructure.Decode(payload, &updates); err != nil {
		return nil, errors.Wrap(err, "decode updates")
	}
	for k, v := range updates {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Ptr {
			if rv.IsNil() {
				delete(updates, k)
				continue
			}
			updates[k] = rv.Elem().Interface()
		}
	}
	return updates, nil
}
