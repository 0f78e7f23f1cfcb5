// Package ordertotal holds the arithmetic and status rules of an order.
package ordertotal

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash        PaymentMethod = "dinheiro"
	PaymentCard        PaymentMethod = "cartao"
	PaymentPix         PaymentMethod = "pix"
	PaymentConsignment PaymentMethod = "consignado"
)

// DefaultPaymentMethod is preselected on a new order
const DefaultPaymentMethod = PaymentPix

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentPix, PaymentConsignment:
		return true
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Dinheiro"
	case PaymentCard:
		return "Cartão"
	case PaymentPix:
		return "Pix"
	case PaymentConsignment:
		return "Consignado"
	default:
		return string(m)
	}
}

type Status string

const (
	StatusReceived Status = "recebido"
	StatusPending  Status = "pendente"
)

func (s Status) Valid() bool {
	return s == StatusReceived || s == StatusPending
}

// Label is the wording printed on order documents
func (s Status) Label() string {
	if s == StatusReceived {
		return "Pago"
	}
	return "Pendente"
}

// StatusFor derives the status of a new order: consignment is pending, anything else received
func StatusFor(method PaymentMethod) Status {
	if method == PaymentConsignment {
		return StatusPending
	}
	return StatusReceived
}

// Toggle flips pending and received
func Toggle(s Status) Status {
	if s == StatusPending {
		return StatusReceived
	}
	return StatusPending
}

// ProductSnapshot is what an order line copies from a product at add time
type ProductSnapshot struct {
	ID        uuid.UUID
	Name      string
	Photo     string
	SalePrice decimal.Decimal
}

type LineItem struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPhoto string          `json:"product_photo"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
}

func LineSubtotal(item LineItem) decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// LineItemsTotal sums quantity × unit price over all lines
func LineItemsTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineSubtotal(item))
	}
	return total
}

// OrderTotal is the line items total plus shipping
func OrderTotal(items []LineItem, shipping decimal.Decimal) decimal.Decimal {
	return LineItemsTotal(items).Add(shipping)
}

// AddOrIncrement returns a new list where the line for product has its quantity
// increased by qty, or a new line is appended with the product's current sale
// price. Prices of lines already in the list are never re-read from the product.
func AddOrIncrement(items []LineItem, product ProductSnapshot, qty int) []LineItem {
	out := make([]LineItem, 0, len(items)+1)
	found := false
	for _, item := range items {
		if item.ProductID == product.ID {
			item.Quantity += qty
			found = true
		}
		out = append(out, item)
	}
	if found {
		return out
	}

	return append(out, LineItem{
		ID:           uuid.New(),
		ProductID:    product.ID,
		ProductName:  product.Name,
		ProductPhoto: product.Photo,
		Quantity:     qty,
		UnitPrice:    product.SalePrice,
	})
}

// RemoveItem returns the list without the line with the given id
func RemoveItem(items []LineItem, id uuid.UUID) []LineItem {
	out := make([]LineItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// Totals is the summary block of an order draft
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

func Summarize(items []LineItem, shipping decimal.Decimal) Totals {
	return Totals{
		Subtotal: LineItemsTotal(items),
		Shipping: shipping,
		Total:    OrderTotal(items, shipping),
	}
}
