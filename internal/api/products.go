package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

type productPayload struct {
	Name        string           `json:"name" validate:"required,min=1,max=60"`
	Description string           `json:"description" validate:"max=2000"`
	Category    string           `json:"category" validate:"required,oneof=FASHION BEAUTY SPORTS ELECTRONICS HOME_INTERIOR HOUSEHOLD_SUPPLIES KITCHENWARE"`
	Price       *decimal.Decimal `json:"price" validate:"required,min=0"`
	Stock       *int             `json:"stock" validate:"required,min=0"`
}

type productPatchPayload struct {
	Name        *string          `json:"name" mapstructure:"name" validate:"omitempty,min=1,max=60"`
	Description *string          `json:"description" mapstructure:"description" validate:"omitempty,max=2000"`
	Category    *string          `json:"category" mapstructure:"category" validate:"omitempty,oneof=FASHION BEAUTY SPORTS ELECTRONICS HOME_INTERIOR HOUSEHOLD_SUPPLIES KITCHENWARE"`
	Price       *decimal.Decimal `json:"price" mapstructure:"price" validate:"omitempty,min=0"`
	Stock       *int             `json:"stock" mapstructure:"stock" validate:"omitempty,min=0"`
}

type productQuery struct {
	Category string `query:"category" validate:"omitempty,oneof=FASHION BEAUTY SPORTS ELECTRONICS HOME_INTERIOR HOUSEHOLD_SUPPLIES KITCHENWARE"`
}

func (h *Handler) registerProductRoutes(e *echo.Echo) {
	e.GET("/products", h.listProducts)
	e.GET("/products/:id", h.getProduct)
	e.POST("/products", h.createProduct)
	e.PATCH("/products/:id", h.updateProduct)
	e.DELETE("/products/:id", h.deleteProduct)
}

// productOrderBy whitelists the sort keys accepted by GET /products
func productOrderBy(order string) string {
	switch order {
	case "priceLowest":
		return "price ASC"
	case "priceHighest":
		return "price DESC"
	case "oldest":
		return "created_at ASC"
	default:
		return "created_at DESC"
	}
}

func (h *Handler) listProducts(c echo.Context) error {
	offset, limit := parseOffsetLimit(c)

	var q productQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	db := h.db.WithContext(c.Request().Context()).Model(&domain.Product{})
	if q.Category != "" {
		db = db.Where("category = ?", q.Category)
	}

	var products []domain.Product
	if err := db.Order(productOrderBy(c.QueryParam("order"))).
		Offset(offset).
		Limit(limit).
		Find(&products).Error; err != nil {
		return internalError(c, "failed to query products", err)
	}
	return ok(c, nonNilProducts(products))
}

func (h *Handler) findProduct(c echo.Context) (*domain.Product, error) {
	id := c.Param("id")
	if !validID(id) {
		return nil, fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	}
	var p domain.Product
	if err := h.db.WithContext(c.Request().Context()).Where("id = ?", id).First(&p).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	} else if err != nil {
		return nil, internalError(c, "failed to query product", err)
	}
	return &p, nil
}

func (h *Handler) getProduct(c echo.Context) error {
	p, err := h.findProduct(c)
	if p == nil {
		return err
	}
	return ok(c, p)
}

func (h *Handler) createProduct(c echo.Context) error {
	var payload productPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}

	p := domain.Product{
		Name:        strings.TrimSpace(payload.Name),
		Description: payload.Description,
		Category:    domain.Category(payload.Category),
		Price:       *payload.Price,
		Stock:       *payload.Stock,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&p).Error; err != nil {
		return internalError(c, "failed to create product", err)
	}
	return created(c, p)
}

func (h *Handler) updateProduct(c echo.Context) error {
	var payload productPatchPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	p, err := h.findProduct(c)
	if p == nil {
		return err
	}

	updates, err := updatesFrom(payload)
	if err != nil {
		return internalError(c, "failed to build product updates", err)
	}
	if len(updates) > 0 {
		if err := h.db.WithContext(c.Request().Context()).Model(p).Updates(updates).Error; err != nil {
			return internalError(c, "failed to update product", err)
		}
	}

	p, err = h.findProduct(c)
	if p == nil {
		return err
	}
	return ok(c, p)
}

func (h *Handler) deleteProduct(c echo.Context) error {
	id := c.Param("id")
	if !validID(id) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	}
	res := h.db.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&domain.Product{})
	if res.Error != nil {
		return internalError(c, "failed to delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	}
	return c.NoContent(http.StatusNoContent)
}
