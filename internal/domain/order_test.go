package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShippingInfo_Validate(t *testing.T) {
	assert.NoError(t, ShippingInfo{Name: "Taro", Address: "Tokyo"}.Validate())

	err := ShippingInfo{Name: "", Address: "Tokyo"}.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)

	err = ShippingInfo{Name: "Taro", Address: "  \t "}.Validate()
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "address", ve.Field)
}

func TestShippingInfo_Trimmed(t *testing.T) {
	got := ShippingInfo{Name: " Taro ", Address: "Tokyo\n", PhoneNumber: " 090 "}.Trimmed()
	assert.Equal(t, ShippingInfo{Name: "Taro", Address: "Tokyo", PhoneNumber: "090"}, got)
}

func TestLineItem_OrderItem(t *testing.T) {
	item := NewLineItem(Product{ID: 1, Name: "Plush", Price: 1200, ImageURL: "plush.jpg"}, 3)

	oi := item.OrderItem()
	assert.Equal(t, int64(1), oi.ProductID)
	assert.Equal(t, "Plush", oi.Name)
	assert.Equal(t, int64(1200), oi.UnitPrice)
	assert.Equal(t, 3, oi.Quantity)
	assert.Equal(t, int64(3600), oi.Subtotal)
}

func TestTransportError_Message(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Equal(t, "out of stock", (&TransportError{StatusCode: 400, Message: "out of stock"}).Error())
	assert.Equal(t, "HTTP error! status: 502", (&TransportError{StatusCode: 502}).Error())

	err := &TransportError{Err: cause}
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsTransport(err))
	assert.False(t, IsValidation(err))
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := &PersistenceError{Op: "set", Key: "cart", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, `storage set "cart": quota exceeded`, err.Error())
}
