// Package catalog talks to the remote Catalog Service used by pages that
// bypass the local document store.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/auth"
	"github.com/fekuna/omnipos-storefront/internal/catalog/dto"
	"github.com/fekuna/omnipos-storefront/internal/logger"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// APIError is returned for non-2xx responses and for envelopes with success=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog: status %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog: status %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Config for Client. Token is used for mutating calls when the request
// context carries none.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	http     *http.Client
	baseURL  string
	token    string
	validate *validator.Validate
	logger   logger.ZapLogger
}

func NewClient(cfg Config, log logger.ZapLogger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:    cfg.Token,
		validate: validator.New(),
		logger:   log.With(zap.String("component", "catalog")),
	}
}

// envelope is the {success, message?, <entity>} wrapper of every response.
type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Product    *model.RawProduct  `json:"product"`
	Products   []model.RawProduct `json:"products"`
	Categories []rawCategory      `json:"categories"`
	Pagination dto.Pagination     `json:"pagination"`
}

type rawCategory struct {
	ID           string `json:"id"`
	DocumentID   string `json:"_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	ProductCount int    `json:"productCount"`
	IsActive     *bool  `json:"isActive"`
}

func (r rawCategory) normalize() model.Category {
	c := model.Category{
		Name:         r.Name,
		Description:  r.Description,
		Image:        r.Image,
		ProductCount: r.ProductCount,
		IsActive:     r.IsActive == nil || *r.IsActive,
	}
	c.ID = r.ID
	if c.ID == "" {
		c.ID = r.DocumentID
	}
	return c
}

func (c *Client) ListProducts(ctx context.Context, filters dto.ProductFilters) (*dto.ProductPage, error) {
	env, err := c.do(ctx, http.MethodGet, "/products", filters.Values(), nil, "", false)
	if err != nil {
		return nil, err
	}
	page := &dto.ProductPage{
		Products:   make([]model.Product, len(env.Products)),
		Pagination: env.Pagination,
	}
	for i, raw := range env.Products {
		page.Products[i] = raw.Normalize()
	}
	return page, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (model.Product, error) {
	env, err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, "", false)
	if err != nil {
		return model.Product{}, err
	}
	return productFrom(env)
}

func (c *Client) CreateProduct(ctx context.Context, in dto.ProductInput) (model.Product, error) {
	return c.sendProduct(ctx, http.MethodPost, "/products", in)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in dto.ProductInput) (model.Product, error) {
	return c.sendProduct(ctx, http.MethodPut, "/products/"+url.PathEscape(id), in)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, "", true)
	return err
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	env, err := c.do(ctx, http.MethodGet, "/categories", nil, nil, "", false)
	if err != nil {
		return nil, err
	}
	out := make([]model.Category, len(env.Categories))
	for i, raw := range env.Categories {
		out[i] = raw.normalize()
	}
	return out, nil
}

func (c *Client) sendProduct(ctx context.Context, method, path string, in dto.ProductInput) (model.Product, error) {
	if err := c.validate.Struct(in); err != nil {
		return model.Product{}, fmt.Errorf("invalid product input: %w", err)
	}

	body, contentType, err := encodeProductForm(in)
	if err != nil {
		return model.Product{}, fmt.Errorf("encode product form: %w", err)
	}
	env, err := c.do(ctx, method, path, nil, body, contentType, true)
	if err != nil {
		return model.Product{}, err
	}
	return productFrom(env)
}

func productFrom(env *envelope) (model.Product, error) {
	if env.Product == nil {
		return model.Product{}, errors.New("catalog: response has no product")
	}
	return env.Product.Normalize(), nil
}

func encodeProductForm(in dto.ProductInput) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	fields := [][2]string{
		{"name", in.Name},
		{"description", in.Description},
		{"category", in.Category},
		{"brand", in.Brand},
		{"price", strconv.FormatFloat(in.Price, 'f', -1, 64)},
		{"oldPrice", strconv.FormatFloat(in.OldPrice, 'f', -1, 64)},
		{"stock", strconv.Itoa(in.Stock)},
		{"isActive", strconv.FormatBool(in.IsActive)},
		{"isFeatured", strconv.FormatBool(in.IsFeatured)},
	}
	for _, s := range in.Sizes {
		fields = append(fields, [2]string{"sizes", s})
	}
	for _, s := range in.Colors {
		fields = append(fields, [2]string{"colors", s})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	for _, img := range in.Images {
		part, err := w.CreateFormFile("images", img.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, img.Content); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", img.Filename, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, authorize bool) (*envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authorize {
		token := auth.BearerToken(ctx)
		if token == "" {
			token = c.token
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	env := &envelope{}
	decodeErr := json.Unmarshal(data, env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: env.Message}
		if decodeErr != nil {
			apiErr.Message = strings.TrimSpace(string(data))
		}
		c.logger.Warn("catalog request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message))
		return nil, apiErr
	}
	if method == http.MethodDelete && len(bytes.TrimSpace(data)) == 0 {
		return env, nil
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode response: %w", decodeErr)
	}
	if !env.Success {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env, nil
}
