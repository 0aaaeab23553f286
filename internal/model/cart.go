package model

// CartLine is one entry of the shopping cart. CartLineID is derived from the
// product id and the selected variant; lines with the same id are merged.
type CartLine struct {
	ProductID     string  `json:"productId"`
	CartLineID    string  `json:"cartLineId"`
	Name          string  `json:"name"`
	UnitPrice     float64 `json:"unitPrice"`
	Image         string  `json:"image"`
	Quantity      int     `json:"quantity"`
	SelectedSize  string  `json:"selectedSize,omitempty"`
	SelectedColor string  `json:"selectedColor,omitempty"`
}
