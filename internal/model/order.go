package model

import "slices"

const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order keeps a snapshot of the purchased lines so it stays stable when the
// catalog changes later.
type Order struct {
	BaseModel
	CustomerID      string            `json:"customerId,omitempty"`
	CustomerName    string            `json:"customerName" validate:"required"`
	CustomerEmail   string            `json:"customerEmail" validate:"omitempty,email"`
	CustomerPhone   string            `json:"customerPhone,omitempty"`
	ShippingAddress *Address          `json:"shippingAddress,omitempty"`
	Items           []OrderLine       `json:"items" validate:"required,min=1,dive"`
	Subtotal        float64           `json:"subtotal,omitempty"`
	ShippingCost    float64           `json:"shippingCost,omitempty"`
	Total           float64           `json:"total" validate:"gte=0"`
	Status          string            `json:"status"`
	PaymentMethod   string            `json:"paymentMethod,omitempty"`
	PaymentStatus   string            `json:"paymentStatus,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Timeline        []OrderEvent      `json:"timeline,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

type OrderLine struct {
	ProductID     string  `json:"productId" validate:"required"`
	Name          string  `json:"name"`
	Price         float64 `json:"price" validate:"gte=0"`
	Quantity      int     `json:"quantity" validate:"gte=1"`
	SelectedSize  string  `json:"selectedSize,omitempty"`
	SelectedColor string  `json:"selectedColor,omitempty"`
	Image         string  `json:"image,omitempty"`
}

type Address struct {
	Line1      string `json:"line1,omitempty"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

type OrderEvent struct {
	Status string `json:"status"`
	At     string `json:"at"`
	Note   string `json:"note,omitempty"`
}

func (o Order) Clone() Order {
	o.Items = slices.Clone(o.Items)
	o.Timeline = slices.Clone(o.Timeline)
	if o.ShippingAddress != nil {
		addr := *o.ShippingAddress
		o.ShippingAddress = &addr
	}
	if o.Metadata != nil {
		md := make(map[string]string, len(o.Metadata))
		for k, v := range o.Metadata {
			md[k] = v
		}
		o.Metadata = md
	}
	return o
}

// Summary is the size-reduced projection written when storage space is short.
// It keeps identity, contact fields including the shipping address, the line
// summary, totals, status, payment, notes and timestamps.
func (o Order) Summary() Order {
	lines := make([]OrderLine, len(o.Items))
	for i, it := range o.Items {
		lines[i] = OrderLine{
			ProductID:     it.ProductID,
			Name:          it.Name,
			Price:         it.Price,
			Quantity:      it.Quantity,
			SelectedSize:  it.SelectedSize,
			SelectedColor: it.SelectedColor,
		}
	}
	var addr *Address
	if o.ShippingAddress != nil {
		a := *o.ShippingAddress
		addr = &a
	}
	return Order{
		BaseModel:       o.BaseModel,
		CustomerID:      o.CustomerID,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: addr,
		Items:           lines,
		Total:           o.Total,
		Status:          o.Status,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		Notes:           o.Notes,
	}
}
