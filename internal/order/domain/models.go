package domain

import (
	"strings"

	"gorm.io/datatypes"
)

// Order is a recorded transaction, read-only for the bot. Total is trusted as
// stored and never recomputed from the items.
type Order struct {
	ID              string                             `gorm:"primaryKey;column:id" json:"orderId"`
	CustomerName    string                             `gorm:"column:customer_name;not null" json:"customerName"`
	Items           datatypes.JSONSlice[LineItem]      `gorm:"column:items" json:"items"`
	ShippingFee     float64                            `gorm:"column:shipping_fee;not null;default:0" json:"shippingFee"`
	DeliveryAddress string                             `gorm:"column:delivery_address" json:"deliveryAddress"`
	Total           float64                            `gorm:"column:total;not null" json:"total"`
	Currency        string                             `gorm:"column:currency;not null" json:"currency"`
	PaymentMethods  datatypes.JSONSlice[PaymentOption] `gorm:"column:payment_methods" json:"paymentMethods"`
}

func (Order) TableName() string { return "orders" }

type LineItem struct {
	Name  string  `json:"name"`
	Qty   int     `json:"qty"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Subtotal is the unit price times the quantity.
func (i LineItem) Subtotal() float64 {
	return i.Price * float64(i.Qty)
}

type PaymentOption struct {
	Name    string `json:"name"`
	Details string `json:"details"`
}

// PaymentMethod finds an option by exact name.
func (o Order) PaymentMethod(name string) (PaymentOption, bool) {
	for _, pm := range o.PaymentMethods {
		if pm.Name == name {
			return pm, true
		}
	}
	return PaymentOption{}, false
}

// NormalizeID trims the identifier; empty means absent.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
