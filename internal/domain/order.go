package domain

import (
	"strings"
	"time"
)

// TimestampLayout is the format of Order.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

type ShippingInfo struct {
	Name        string `json:"name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phoneNumber"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (s ShippingInfo) Trimmed() ShippingInfo {
	return ShippingInfo{
		Name:        strings.TrimSpace(s.Name),
		Address:     strings.TrimSpace(s.Address),
		PhoneNumber: strings.TrimSpace(s.PhoneNumber),
	}
}

// Validate requires a non-blank name and address. Phone number is optional.
func (s ShippingInfo) Validate() error {
	t := s.Trimmed()
	if t.Name == "" {
		return NewValidationError("name", ErrMsgShippingRequired)
	}
	if t.Address == "" {
		return NewValidationError("address", ErrMsgShippingRequired)
	}
	return nil
}

type OrderItem struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// OrderRequest is the body sent to the order creation endpoint.
type OrderRequest struct {
	Items        []OrderItem  `json:"items"`
	TotalAmount  int64        `json:"totalAmount"`
	ShippingInfo ShippingInfo `json:"shippingInfo"`

	// IdempotencyKey travels as a header, not in the body.
	IdempotencyKey string `json:"-"`
}

// SubtotalSum adds up the item subtotals as sent, without recomputing them.
func (r *OrderRequest) SubtotalSum() int64 {
	var sum int64
	for _, item := range r.Items {
		sum += item.Subtotal
	}
	return sum
}

// Order is the order service's record of a completed purchase.
type Order struct {
	ID           int64        `json:"id"`
	Timestamp    string       `json:"timestamp"`
	OrderedAt    time.Time    `json:"-"`
	Items        []OrderItem  `json:"items"`
	TotalAmount  int64        `json:"totalAmount"`
	ShippingInfo ShippingInfo `json:"shippingInfo"`
}
