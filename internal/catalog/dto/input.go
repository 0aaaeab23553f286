package dto

import "io"

type ImageFile struct {
	Filename string
	Content  io.Reader
}

type ProductInput struct {
	Name        string   `validate:"required"`
	Description string   `validate:"max=5000"`
	Category    string   `validate:"required"`
	Brand       string   `validate:"max=100"`
	Price       float64  `validate:"gte=0"`
	OldPrice    float64  `validate:"gte=0"`
	Stock       int      `validate:"gte=0"`
	Sizes       []string `validate:"dive,required"`
	Colors      []string `validate:"dive,required"`

	IsActive   bool
	IsFeatured bool

	// Images are uploaded as multipart files under the "images" field.
	Images []ImageFile
}
