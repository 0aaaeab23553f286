package model

type Category struct {
	BaseModel
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
	// ProductCount is derived from the product collection and never edited directly.
	ProductCount int    `json:"productCount"`
	IsActive     bool   `json:"isActive"`
	SortOrder    int    `json:"sortOrder"`
}

func (c Category) Clone() Category { return c }
