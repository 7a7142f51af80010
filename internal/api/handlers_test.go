package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/storefront/internal/checkout"
	"github.com/talkincode/storefront/internal/domain"
	"github.com/talkincode/storefront/internal/repository"
	"github.com/talkincode/storefront/internal/webserver"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// handler tests get their own schema so they can run next to the repository tests
const testSchema = "storefront_api_test"

var dropTables = append([]interface{}{"user_saved_products"}, domain.Tables...)

func withSearchPath(dsn, schema string) string {
	if strings.Contains(dsn, "://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "search_path=" + schema
	}
	return dsn + " search_path=" + schema
}

// newDBServer serves the full API over STOREFRONT_TEST_DATABASE_URL and skips when it is unset.
func newDBServer(t *testing.T) (*gorm.DB, http.Handler) {
	t.Helper()
	dsn := os.Getenv("STOREFRONT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("STOREFRONT_TEST_DATABASE_URL not set")
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true}

	admin, err := gorm.Open(postgres.Open(dsn), cfg)
	require.NoError(t, err)
	require.NoError(t, admin.Exec("CREATE SCHEMA IF NOT EXISTS "+testSchema).Error)
	if sqlDB, err := admin.DB(); err == nil {
		_ = sqlDB.Close()
	}

	db, err := gorm.Open(postgres.Open(withSearchPath(dsn, testSchema)), cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(dropTables...))
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	t.Cleanup(func() {
		_ = db.Migrator().DropTable(dropTables...)
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	e := webserver.NewEcho(false)
	NewHandler(db, checkout.NewPlacer(repository.NewGormOrderStore(db), 5*time.Second)).Register(e)
	return db, e
}

func call(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	dec := json.NewDecoder(rec.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(v))
}

type userBody struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName"`
	UserPreference *struct {
		ReceiveEmail bool `json:"receiveEmail"`
	} `json:"userPreference"`
}

type productBody struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Category string      `json:"category"`
	Price    json.Number `json:"price"`
	Stock    int         `json:"stock"`
}

func createUser(t *testing.T, h http.Handler, email string, receiveEmail bool) userBody {
	t.Helper()
	pref := "false"
	if receiveEmail {
		pref = "true"
	}
	rec := call(t, h, http.MethodPost, "/users",
		`{"email":"`+email+`","firstName":"Ada","lastName":"Byron","userPreference":{"receiveEmail":`+pref+`}}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u userBody
	decode(t, rec, &u)
	return u
}

func createProduct(t *testing.T, h http.Handler, name, category, price string, stock int) productBody {
	t.Helper()
	body, _ := json.Marshal(map[string]interface{}{
		"name":     name,
		"category": category,
		"price":    json.Number(price),
		"stock":    stock,
	})
	rec := call(t, h, http.MethodPost, "/products", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p productBody
	decode(t, rec, &p)
	return p
}

func getUser(t *testing.T, h http.Handler, id string) userBody {
	t.Helper()
	rec := call(t, h, http.MethodGet, "/users/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var u userBody
	decode(t, rec, &u)
	return u
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	_, h := newDBServer(t)
	createUser(t, h, "ada@example.com", false)

	rec := call(t, h, http.MethodPost, "/users",
		`{"email":"ada@example.com","firstName":"Ada","lastName":"Again","userPreference":{"receiveEmail":true}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EMAIL_EXISTS", decodeError(t, rec).Code)
}

func TestUpdateUserWithPreference(t *testing.T) {
	_, h := newDBServer(t)
	u := createUser(t, h, "grace@example.com", false)

	rec := call(t, h, http.MethodPatch, "/users/"+u.ID, `{"firstName":"Grace","userPreference":{"receiveEmail":true}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := getUser(t, h, u.ID)
	assert.Equal(t, "Grace", got.FirstName)
	assert.Equal(t, "grace@example.com", got.Email)
	require.NotNil(t, got.UserPreference)
	assert.True(t, got.UserPreference.ReceiveEmail)
}

func TestUpdateUserRollsBackOnDuplicateEmail(t *testing.T) {
	_, h := newDBServer(t)
	createUser(t, h, "first@example.com", false)
	second := createUser(t, h, "second@example.com", false)

	rec := call(t, h, http.MethodPatch, "/users/"+second.ID,
		`{"email":"first@example.com","userPreference":{"receiveEmail":true}}`)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	assert.Equal(t, "EMAIL_EXISTS", decodeError(t, rec).Code)

	got := getUser(t, h, second.ID)
	assert.Equal(t, "second@example.com", got.Email)
	require.NotNil(t, got.UserPreference)
	assert.False(t, got.UserPreference.ReceiveEmail)
}

func TestUpdateUserNotFound(t *testing.T) {
	_, h := newDBServer(t)
	for _, id := range []string{"nope", "5f1b2c9e-8d4a-4f7e-9b3c-2a1d0e6f7a8b"} {
		rec := call(t, h, http.MethodPatch, "/users/"+id, `{"firstName":"X"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	}
}

func TestToggleSavedProduct(t *testing.T) {
	_, h := newDBServer(t)
	u := createUser(t, h, "saver@example.com", false)
	p := createProduct(t, h, "Skillet", "KITCHENWARE", "34.00", 3)
	target := "/users/" + u.ID + "/saved-products"

	rec := call(t, h, http.MethodPost, target, `{"productId":"`+p.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saved []productBody
	decode(t, rec, &saved)
	require.Len(t, saved, 1)
	assert.Equal(t, p.ID, saved[0].ID)

	rec = call(t, h, http.MethodPost, target, `{"productId":"`+p.ID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	saved = nil
	decode(t, rec, &saved)
	assert.Empty(t, saved)

	rec = call(t, h, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestToggleSavedProductUnknownProduct(t *testing.T) {
	_, h := newDBServer(t)
	u := createUser(t, h, "saver@example.com", false)

	rec := call(t, h, http.MethodPost, "/users/"+u.ID+"/saved-products", `{"productId":"5f1b2c9e-8d4a-4f7e-9b3c-2a1d0e6f7a8b"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", decodeError(t, rec).Code)
}

func TestListProductsCategoryAndOrder(t *testing.T) {
	_, h := newDBServer(t)
	createProduct(t, h, "Skillet", "KITCHENWARE", "34.00", 3)
	createProduct(t, h, "Whisk", "KITCHENWARE", "4.50", 10)
	createProduct(t, h, "Yoga Mat", "SPORTS", "25.00", 5)
	createProduct(t, h, "Kettle", "KITCHENWARE", "19.99", 2)

	rec := call(t, h, http.MethodGet, "/products?category=KITCHENWARE&order=priceLowest", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var products []productBody
	decode(t, rec, &products)
	require.Len(t, products, 3)
	assert.Equal(t, []string{"Whisk", "Kettle", "Skillet"}, []string{products[0].Name, products[1].Name, products[2].Name})
	for _, p := range products {
		assert.Equal(t, "KITCHENWARE", p.Category)
	}

	rec = call(t, h, http.MethodGet, "/products?order=priceHighest&limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	products = nil
	decode(t, rec, &products)
	require.Len(t, products, 2)
	assert.Equal(t, "Skillet", products[0].Name)
	assert.Equal(t, "Yoga Mat", products[1].Name)

	rec = call(t, h, http.MethodGet, "/products?category=GARDEN", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProduct(t *testing.T) {
	_, h := newDBServer(t)
	p := createProduct(t, h, "Skillet", "KITCHENWARE", "34.00", 3)

	rec := call(t, h, http.MethodPatch, "/products/"+p.ID, `{"stock":0,"price":29.5}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got productBody
	decode(t, rec, &got)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, "29.5", got.Price.String())
	assert.Equal(t, "Skillet", got.Name)

	rec = call(t, h, http.MethodPatch, "/products/"+p.ID, `{"stock":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteReturnsNoContentThenNotFound(t *testing.T) {
	_, h := newDBServer(t)
	u := createUser(t, h, "gone@example.com", true)
	p := createProduct(t, h, "Whisk", "KITCHENWARE", "4.50", 10)

	for _, target := range []string{"/users/" + u.ID, "/products/" + p.ID} {
		rec := call(t, h, http.MethodDelete, target, "")
		assert.Equal(t, http.StatusNoContent, rec.Code, target)

		rec = call(t, h, http.MethodDelete, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)

		rec = call(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
	}
}

func TestUserOrdersListing(t *testing.T) {
	_, h := newDBServer(t)
	u := createUser(t, h, "buyer@example.com", false)
	p := createProduct(t, h, "Whisk", "KITCHENWARE", "4.50", 10)

	rec := call(t, h, http.MethodPost, "/orders",
		`{"userId":"`+u.ID+`","orderItems":[{"productId":"`+p.ID+`","unitPrice":4.50,"quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = call(t, h, http.MethodGet, "/users/"+u.ID+"/orders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []map[string]interface{}
	decode(t, rec, &orders)
	require.Len(t, orders, 1)
	assert.NotContains(t, orders[0], "total")

	rec = call(t, h, http.MethodGet, "/products/"+p.ID, "")
	var got productBody
	decode(t, rec, &got)
	assert.Equal(t, 8, got.Stock)
}
