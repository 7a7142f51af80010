package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/talkincode/storefront/internal/domain"
	"gorm.io/gorm"
)

type preferencePayload struct {
	ReceiveEmail *bool `json:"receiveEmail" validate:"required"`
}

type userPayload struct {
	Email          string             `json:"email" validate:"required,email"`
	FirstName      string             `json:"firstName" validate:"required,min=1,max=30"`
	LastName       string             `json:"lastName" validate:"required,min=1,max=30"`
	Address        string             `json:"address" validate:"max=500"`
	UserPreference *preferencePayload `json:"userPreference" validate:"required"`
}

type userPatchPayload struct {
	Email          *string            `json:"email" mapstructure:"email" validate:"omitempty,email"`
	FirstName      *string            `json:"firstName" mapstructure:"first_name" validate:"omitempty,min=1,max=30"`
	LastName       *string            `json:"lastName" mapstructure:"last_name" validate:"omitempty,min=1,max=30"`
	Address        *string            `json:"address" mapstructure:"address" validate:"omitempty,max=500"`
	UserPreference *preferencePayload `json:"userPreference" mapstructure:"user_preference" validate:"omitempty"`
}

type savedProductPayload struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
}

func (h *Handler) registerUserRoutes(e *echo.Echo) {
	e.GET("/users", h.listUsers)
	e.GET("/users/:id", h.getUser)
	e.POST("/users", h.createUser)
	e.PATCH("/users/:id", h.updateUser)
	e.DELETE("/users/:id", h.deleteUser)
	e.GET("/users/:id/saved-products", h.listSavedProducts)
	e.POST("/users/:id/saved-products", h.toggleSavedProduct)
	e.GET("/users/:id/orders", h.listUserOrders)
}

// userOrderBy maps the order query parameter to a sort clause, newest first by default
func userOrderBy(order string) string {
	if order == "oldest" {
		return "created_at ASC"
	}
	return "created_at DESC"
}

func (h *Handler) listUsers(c echo.Context) error {
	offset, limit := parseOffsetLimit(c)

	var users []domain.User
	err := h.db.WithContext(c.Request().Context()).
		Preload("UserPreference").
		Order(userOrderBy(c.QueryParam("order"))).
		Offset(offset).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return internalError(c, "failed to query users", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return ok(c, users)
}

// findUser loads a user or writes the 404/500 reply; a nil user means the reply is done.
func (h *Handler) findUser(c echo.Context, preload ...string) (*domain.User, error) {
	id := c.Param("id")
	if !validID(id) {
		return nil, fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	}
	db := h.db.WithContext(c.Request().Context())
	for _, p := range preload {
		db = db.Preload(p)
	}
	var user domain.User
	if err := db.Where("id = ?", id).First(&user).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	} else if err != nil {
		return nil, internalError(c, "failed to query user", err)
	}
	return &user, nil
}

func (h *Handler) getUser(c echo.Context) error {
	user, err := h.findUser(c, "UserPreference")
	if user == nil {
		return err
	}
	return ok(c, user)
}

func (h *Handler) createUser(c echo.Context) error {
	var payload userPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}

	user := domain.User{
		Email:     strings.TrimSpace(payload.Email),
		FirstName: strings.TrimSpace(payload.FirstName),
		LastName:  strings.TrimSpace(payload.LastName),
		Address:   payload.Address,
		UserPreference: &domain.UserPreference{
			ReceiveEmail: *payload.UserPreference.ReceiveEmail,
		},
	}
	err := h.db.WithContext(c.Request().Context()).Create(&user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fail(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
	} else if err != nil {
		return internalError(c, "failed to create user", err)
	}
	return created(c, user)
}

func (h *Handler) updateUser(c echo.Context) error {
	var payload userPatchPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	user, err := h.findUser(c)
	if user == nil {
		return err
	}

	fields := payload
	fields.UserPreference = nil
	updates, err := updatesFrom(fields)
	if err != nil {
		return internalError(c, "failed to build user updates", err)
	}

	// user fields and preference change together or not at all
	err = h.db.WithContext(c.Request().Context()).Transaction(func(tx *gorm.DB) error {
		if payload.UserPreference != nil {
			if err := savePreference(tx, user.ID, *payload.UserPreference.ReceiveEmail); err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(user).Updates(updates).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fail(c, http.StatusConflict, "EMAIL_EXISTS", "A user with this email already exists")
	} else if err != nil {
		return internalError(c, "failed to update user", err)
	}

	user, err = h.findUser(c, "UserPreference")
	if user == nil {
		return err
	}
	return ok(c, user)
}

func savePreference(tx *gorm.DB, userID string, receiveEmail bool) error {
	res := tx.Model(&domain.UserPreference{}).
		Where("user_id = ?", userID).
		Update("receive_email", receiveEmail)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	return tx.Create(&domain.UserPreference{UserID: userID, ReceiveEmail: receiveEmail}).Error
}

func (h *Handler) deleteUser(c echo.Context) error {
	id := c.Param("id")
	if !validID(id) {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	}
	res := h.db.WithContext(c.Request().Context()).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return internalError(c, "failed to delete user", res.Error)
	}
	if res.RowsAffected == 0 {
		return fail(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) listSavedProducts(c echo.Context) error {
	user, err := h.findUser(c, "SavedProducts")
	if user == nil {
		return err
	}
	return ok(c, nonNilProducts(user.SavedProducts))
}

// toggleSavedProduct saves the product for the user, or unsaves it when already saved
func (h *Handler) toggleSavedProduct(c echo.Context) error {
	var payload savedProductPayload
	if err := bindAndValidate(c, &payload); err != nil {
		return err
	}
	user, err := h.findUser(c)
	if user == nil {
		return err
	}

	ctx := c.Request().Context()
	var product domain.Product
	if err := h.db.WithContext(ctx).Where("id = ?", payload.ProductID).First(&product).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found")
	} else if err != nil {
		return internalError(c, "failed to query product", err)
	}

	var saved []domain.Product
	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		assoc := tx.Model(user).Association("SavedProducts")
		var count int64
		if err := tx.Table("user_saved_products").
			Where("user_id = ? AND product_id = ?", user.ID, product.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			if err := assoc.Delete(&product); err != nil {
				return err
			}
		} else if err := assoc.Append(&product); err != nil {
			return err
		}
		return tx.Model(user).Association("SavedProducts").Find(&saved)
	})
	if err != nil {
		return internalError(c, "failed to toggle saved product", err)
	}
	return created(c, nonNilProducts(saved))
}

// listUserOrders returns the user's orders without computing totals
func (h *Handler) listUserOrders(c echo.Context) error {
	user, err := h.findUser(c)
	if user == nil {
		return err
	}
	var orders []domain.Order
	if err := h.db.WithContext(c.Request().Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return internalError(c, "failed to query user orders", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return ok(c, orders)
}

func nonNilProducts(products []domain.Product) []domain.Product {
	if products == nil {
		return []domain.Product{}
	}
	return products
}
