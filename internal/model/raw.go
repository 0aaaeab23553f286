package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const (
	PlaceholderName  = "Product"
	PlaceholderImage = "/images/placeholder.png"
)

// RawProduct accepts every product shape seen at the catalog boundary:
// legacy admin records, REST API documents and seeded demo data. Normalize
// resolves it into the canonical Product once, at ingestion.
type RawProduct struct {
	ID          string           `json:"id"`
	DocumentID  string           `json:"_id"`
	Name        string           `json:"name"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Category    RawRef           `json:"category"`
	Brand       RawRef           `json:"brand"`
	Price       RawPrice         `json:"price"`
	OldPrice    float64          `json:"oldPrice"`
	Stock       int              `json:"stock"`
	Sales       int              `json:"sales"`
	Image       string           `json:"image"`
	Images      []RawImage       `json:"images"`
	Thumbnail   string           `json:"thumbnail"`
	ImageURL    string           `json:"imageUrl"`
	Sizes       []string         `json:"sizes"`
	Colors      []string         `json:"colors"`
	Variants    []ProductVariant `json:"variants"`
	IsActive    *bool            `json:"isActive"`
	IsFeatured  bool             `json:"isFeatured"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// RawPrice is either a bare number or an object {newPrice, oldPrice}.
type RawPrice struct {
	Value float64
	Old   float64
	Set   bool
}

func (p *RawPrice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '{':
		var obj struct {
			NewPrice *float64 `json:"newPrice"`
			OldPrice *float64 `json:"oldPrice"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.OldPrice != nil {
			p.Old = *obj.OldPrice
		}
		if obj.NewPrice != nil {
			p.Value, p.Set = *obj.NewPrice, true
		}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			// unparseable price strings fall through to 0
			return nil
		}
		p.Value, p.Set = v, true
		return nil
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		p.Value, p.Set = v, true
		return nil
	}
}

// RawRef is a reference given either as a plain string or a populated
// document {_id, id, name}.
type RawRef struct {
	ID   string
	Name string
}

func (r *RawRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.Name)
	}
	var obj struct {
		ID         string `json:"id"`
		DocumentID string `json:"_id"`
		Name       string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	r.ID = firstNonEmpty(obj.ID, obj.DocumentID)
	r.Name = obj.Name
	return nil
}

// Key prefers the name, which is what category counts are matched on.
func (r RawRef) Key() string {
	return firstNonEmpty(r.Name, r.ID)
}

// RawImage is either a URL string or an object {url}.
type RawImage string

func (i *RawImage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = RawImage(s)
		return nil
	}
	var obj struct {
		URL string `json:"url"`
		Src string `json:"src"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*i = RawImage(firstNonEmpty(obj.URL, obj.Src))
	return nil
}

func (r RawProduct) Normalize() Product {
	images := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		if img != "" {
			images = append(images, string(img))
		}
	}

	oldPrice := r.OldPrice
	if oldPrice == 0 {
		oldPrice = r.Price.Old
	}

	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	return Product{
		BaseModel: BaseModel{
			ID:        firstNonEmpty(r.ID, r.DocumentID),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
		},
		Name:        firstNonEmpty(r.Name, r.Title),
		Description: r.Description,
		Category:    r.Category.Key(),
		Brand:       r.Brand.Key(),
		Price:       r.Price.Value,
		OldPrice:    oldPrice,
		Stock:       r.Stock,
		Sales:       r.Sales,
		Image:       firstNonEmpty(r.Image, first(images), r.Thumbnail, r.ImageURL),
		Images:      images,
		Sizes:       r.Sizes,
		Colors:      r.Colors,
		Variants:    r.Variants,
		IsActive:    isActive,
		IsFeatured:  r.IsFeatured,
	}
}

func first(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
