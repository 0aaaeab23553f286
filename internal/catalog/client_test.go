package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Token: "configured"}, logger.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_ListProducts(t *testing.T) {
	var query map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/products", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "reads are not authorized")
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		writeJSON(w, http.StatusOK, `{
			"success": true,
			"products": [
				{"_id":"p1","title":"Legacy","price":{"newPrice":12,"oldPrice":20},"thumbnail":"/t.jpg","category":{"_id":"c1","name":"Men"}},
				{"id":"p2","name":"Modern","price":5,"images":[{"url":"/a.jpg"}],"category":"Women"}
			],
			"pagination": {"currentPage":2,"totalPages":3,"totalCount":25,"hasNext":true,"hasPrev":true}
		}`)
	})

	minPrice := 10.5
	inStock := true
	page, err := c.ListProducts(context.Background(), dto.ProductFilters{
		Page:      2,
		Limit:     10,
		Category:  "Men",
		MinPrice:  &minPrice,
		InStock:   &inStock,
		SortBy:    "price",
		SortOrder: "asc",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"page": "2", "limit": "10", "category": "Men", "minPrice": "10.5",
		"inStock": "true", "sortBy": "price", "sortOrder": "asc",
	}, query)

	require.Len(t, page.Products, 2)
	assert.Equal(t, "p1", page.Products[0].ID)
	assert.Equal(t, "Legacy", page.Products[0].Name)
	assert.Equal(t, 12.0, page.Products[0].Price)
	assert.Equal(t, 20.0, page.Products[0].OldPrice)
	assert.Equal(t, "/t.jpg", page.Products[0].Image)
	assert.Equal(t, "Men", page.Products[0].Category)
	assert.Equal(t, "/a.jpg", page.Products[1].Image)
	assert.Equal(t, dto.Pagination{CurrentPage: 2, TotalPages: 3, TotalCount: 25, HasNext: true, HasPrev: true}, page.Pagination)
}

func TestClient_GetProductNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products/missing", r.URL.Path)
		writeJSON(w, http.StatusNotFound, `{"success":false,"message":"Product not found"}`)
	})

	_, err := c.GetProduct(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Product not found", apiErr.Message)
}

func TestClient_UnsuccessfulEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":false,"message":"maintenance"}`)
	})

	_, err := c.ListCategories(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.False(t, IsNotFound(err))
}

func TestClient_CreateProductMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer from-context", r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			writeJSON(w, http.StatusBadRequest, `{"success":false}`)
			return
		}
		assert.Equal(t, "Runner", r.FormValue("name"))
		assert.Equal(t, "79.9", r.FormValue("price"))
		assert.Equal(t, []string{"41", "42"}, r.MultipartForm.Value["sizes"])

		files := r.MultipartForm.File["images"]
		if assert.Len(t, files, 1) {
			assert.Equal(t, "runner.jpg", files[0].Filename)
			f, err := files[0].Open()
			if assert.NoError(t, err) {
				content, _ := io.ReadAll(f)
				assert.Equal(t, "jpeg-bytes", string(content))
			}
		}

		writeJSON(w, http.StatusCreated, `{"success":true,"product":{"_id":"new","name":"Runner","price":79.9,"category":"Shoes"}}`)
	})

	ctx := auth.WithBearerToken(context.Background(), "from-context")
	p, err := c.CreateProduct(ctx, dto.ProductInput{
		Name:     "Runner",
		Category: "Shoes",
		Price:    79.9,
		Sizes:    []string{"41", "42"},
		Images:   []dto.ImageFile{{Filename: "runner.jpg", Content: strings.NewReader("jpeg-bytes")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new", p.ID)
	assert.Equal(t, "Shoes", p.Category)
}

func TestClient_UpdateProductValidates(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.UpdateProduct(context.Background(), "p1", dto.ProductInput{Name: "", Price: -1})
	require.Error(t, err)
	assert.False(t, called)
}

func TestClient_DeleteProductUsesConfiguredToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/products/p1", r.URL.Path)
		assert.Equal(t, "Bearer configured", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.DeleteProduct(context.Background(), "p1"))
}

func TestClient_ListCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		body, _ := json.Marshal(map[string]any{
			"success": true,
			"categories": []map[string]any{
				{"_id": "c1", "name": "Men", "productCount": 3},
				{"id": "c2", "name": "Hidden", "isActive": false},
			},
		})
		writeJSON(w, http.StatusOK, string(body))
	})

	cats, err := c.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "c1", cats[0].ID)
	assert.Equal(t, 3, cats[0].ProductCount)
	assert.True(t, cats[0].IsActive)
	assert.False(t, cats[1].IsActive)
}
