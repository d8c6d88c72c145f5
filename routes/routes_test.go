package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/cart-api/middleware"
	"github.com/junaidrashid-git/cart-api/models"
	"github.com/junaidrashid-git/cart-api/services"
	"github.com/junaidrashid-git/cart-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newRouter(t *testing.T) (*gin.Engine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	r := gin.New()
	r.Use(middleware.ErrorHandler())
	SetupRoutes(r, Dependencies{
		Carts:          services.NewCartService(mem, nil),
		Products:       services.NewProductService(mem.Products()),
		UploadDir:      t.TempDir(),
		UploadMaxBytes: 1 << 20,
	})
	return r, mem
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type cartEnvelope struct {
	Message string      `json:"message"`
	Data    models.Cart `json:"data"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestCreateCartThenAccumulate(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, http.MethodPost, "/carts", gin.H{"user": "U", "product": "P9", "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[cartEnvelope](t, w)
	assert.Equal(t, "Add Cart Successfully", created.Message)
	assert.Equal(t, []models.LineItem{{Product: "P9", Quantity: 1}}, created.Data.Products)

	w = do(t, r, http.MethodPost, "/carts", gin.H{"user": "U", "product": "P9", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[cartEnvelope](t, w)
	assert.Equal(t, "Cart updated successfully", updated.Message)
	assert.Equal(t, created.Data.ID, updated.Data.ID)
	assert.Equal(t, []models.LineItem{{Product: "P9", Quantity: 4}}, updated.Data.Products)

	w = do(t, r, http.MethodGet, "/carts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.ExpandedCart](t, w), 1)
}

func TestSetProductQuantity(t *testing.T) {
	r, _ := newRouter(t)

	do(t, r, http.MethodPost, "/carts", gin.H{"user": "U", "product": "P1", "quantity": 2})
	w := do(t, r, http.MethodPost, "/carts", gin.H{"user": "U", "product": "P1", "quantity": 3})
	assert.Equal(t, []models.LineItem{{Product: "P1", Quantity: 5}}, decode[cartEnvelope](t, w).Data.Products)

	w = do(t, r, http.MethodPut, "/carts/product/ignored", gin.H{"user": "U", "product": "P1", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[cartEnvelope](t, w)
	assert.Equal(t, "Update Cart Successfully", body.Message)
	assert.Equal(t, []models.LineItem{{Product: "P1", Quantity: 1}}, body.Data.Products)

	w = do(t, r, http.MethodPut, "/carts/product/x", gin.H{"user": "nobody", "product": "P1", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Cart Not Found"}`, w.Body.String())
}

func TestRequiredFieldsAreRejectedBeforeWriting(t *testing.T) {
	r, mem := newRouter(t)

	bodies := []gin.H{
		{"product": "P1", "quantity": 1},
		{"user": "U", "quantity": 1},
		{"user": "U", "product": "P1"},
		{"user": "U", "product": "P1", "quantity": 0},
		{"user": "  ", "product": "P1", "quantity": 1},
	}
	for _, body := range bodies {
		for _, route := range []struct{ method, path string }{
			{http.MethodPost, "/carts"},
			{http.MethodPut, "/carts/product/1"},
		} {
			w := do(t, r, route.method, route.path, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "%s %s %v", route.method, route.path, body)
			assert.JSONEq(t, `{"message":"Missing required fields"}`, w.Body.String())
		}
	}

	carts, err := mem.Carts().List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, carts)
}

func TestGetCartRoutes(t *testing.T) {
	r, mem := newRouter(t)

	p := &models.Product{Title: "Shirt", Price: 10}
	require.NoError(t, mem.Products().Create(context.Background(), p))

	w := do(t, r, http.MethodPost, "/carts", gin.H{"user": "U", "product": p.ID, "quantity": 2})
	cart := decode[cartEnvelope](t, w).Data

	w = do(t, r, http.MethodGet, "/carts/"+cart.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, p.ID, decode[models.Cart](t, w).Products[0].Product)

	w = do(t, r, http.MethodGet, "/carts/user/U", nil)
	require.Equal(t, http.StatusOK, w.Code)
	expanded := decode[models.ExpandedCart](t, w)
	require.NotNil(t, expanded.Products[0].Product)
	assert.Equal(t, "Shirt", expanded.Products[0].Product.Title)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/carts/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/carts/user/nobody", nil).Code)
}

func TestDeleteProductFromCart(t *testing.T) {
	r, mem := newRouter(t)

	do(t, r, http.MethodPost, "/carts", gin.H{"user": "U", "product": "P1", "quantity": 1})
	do(t, r, http.MethodPost, "/carts", gin.H{"user": "U", "product": "P2", "quantity": 1})
	before, err := mem.Carts().GetByUser(context.Background(), "U")
	require.NoError(t, err)

	w := do(t, r, http.MethodDelete, "/carts/userid/U/productid/P3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Product Not Found in Cart"}`, w.Body.String())

	after, err := mem.Carts().GetByUser(context.Background(), "U")
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)

	w = do(t, r, http.MethodDelete, "/carts/userid/U/productid/P1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[cartEnvelope](t, w)
	assert.Equal(t, "Delete Product Cart Successfully", body.Message)
	assert.Equal(t, []models.LineItem{{Product: "P2", Quantity: 1}}, body.Data.Products)

	w = do(t, r, http.MethodDelete, "/carts/userid/nobody/productid/P1", nil)
	assert.JSONEq(t, `{"message":"Cart Not Found"}`, w.Body.String())
}

func TestReplaceAndDeleteCart(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, http.MethodPost, "/carts", gin.H{"user": "U", "product": "P1", "quantity": 1})
	cart := decode[cartEnvelope](t, w).Data

	w = do(t, r, http.MethodPut, "/carts/"+cart.ID, gin.H{
		"products": []gin.H{{"product": "P1", "quantity": 2}, {"product": "P1", "quantity": 3}},
		"ignored":  true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[cartEnvelope](t, w).Data.Products, 2)

	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodPut, "/carts/missing", gin.H{}).Code)

	w = do(t, r, http.MethodDelete, "/carts/"+cart.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Delete Cart Successfully"}`, w.Body.String())

	w = do(t, r, http.MethodDelete, "/carts/"+cart.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductRoutes(t *testing.T) {
	r, _ := newRouter(t)

	w := do(t, r, http.MethodPost, "/products", gin.H{"title": "Shirt"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/products", gin.H{
		"title": "Shirt", "price": 20, "description": "cotton", "discount": 0,
		"total": 20, "image": "a.png", "image2": "b.png",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[models.Product](t, w)

	w = do(t, r, http.MethodPut, "/products/"+p.ID, gin.H{"price": 25})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 25.0, decode[models.Product](t, w).Price)

	w = do(t, r, http.MethodGet, "/products/"+p.ID, nil)
	assert.Equal(t, "Shirt", decode[models.Product](t, w).Title)

	w = do(t, r, http.MethodGet, "/products/export-excel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=products.xlsx", w.Header().Get("Content-Disposition"))
	assert.NotZero(t, w.Body.Len())

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/products/"+p.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/products/"+p.ID, nil).Code)
}
