package model

import (
	"slices"
	"time"
)

type Customer struct {
	BaseModel
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone,omitempty"`
	Address     string  `json:"address,omitempty"`
	TotalOrders int     `json:"totalOrders"`
	TotalSpent  float64 `json:"totalSpent"`
	Status      string  `json:"status,omitempty"`
}

func (c Customer) Clone() Customer { return c }

type Blog struct {
	BaseModel
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt,omitempty"`
	Content   string   `json:"content,omitempty"`
	Author    string   `json:"author,omitempty"`
	Image     string   `json:"image,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Published bool     `json:"published"`
}

func (b Blog) Clone() Blog {
	b.Tags = slices.Clone(b.Tags)
	return b
}

type Slider struct {
	BaseModel
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle,omitempty"`
	Image     string `json:"image"`
	Link      string `json:"link,omitempty"`
	SortOrder int    `json:"sortOrder"`
	IsActive  bool   `json:"isActive"`
}

func (s Slider) Clone() Slider { return s }

type Campaign struct {
	BaseModel
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Image           string     `json:"image,omitempty"`
	DiscountPercent float64    `json:"discountPercent"`
	StartsAt        *time.Time `json:"startsAt,omitempty"`
	EndsAt          *time.Time `json:"endsAt,omitempty"`
	IsActive        bool       `json:"isActive"`
}

func (c Campaign) Clone() Campaign { return c }

type Brand struct {
	BaseModel
	Name        string `json:"name"`
	Logo        string `json:"logo,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

func (b Brand) Clone() Brand { return b }
