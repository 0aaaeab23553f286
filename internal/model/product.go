package model

import "slices"

type Product struct {
	BaseModel
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	// Category holds a category name (or, in older data, a category id).
	Category    string           `json:"category"`
	Brand       string           `json:"brand,omitempty"`
	Price       float64          `json:"price"`
	OldPrice    float64          `json:"oldPrice,omitempty"`
	Stock       int              `json:"stock"`
	Sales       int              `json:"sales"`
	Image       string           `json:"image,omitempty"`
	Images      []string         `json:"images,omitempty"`
	Sizes       []string         `json:"sizes,omitempty"`
	Colors      []string         `json:"colors,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	IsActive    bool             `json:"isActive"`
	IsFeatured  bool             `json:"isFeatured,omitempty"`
}

type ProductVariant struct {
	SKU             string  `json:"sku,omitempty"`
	Size            string  `json:"size,omitempty"`
	Color           string  `json:"color,omitempty"`
	PriceAdjustment float64 `json:"priceAdjustment,omitempty"`
	Stock           int     `json:"stock"`
}

func (p Product) Clone() Product {
	p.Images = slices.Clone(p.Images)
	p.Sizes = slices.Clone(p.Sizes)
	p.Colors = slices.Clone(p.Colors)
	p.Variants = slices.Clone(p.Variants)
	return p
}

// PrimaryImage returns the first available image reference, or "".
func (p Product) PrimaryImage() string {
	if p.Image != "" {
		return p.Image
	}
	for _, img := range p.Images {
		if img != "" {
			return img
		}
	}
	return ""
}
