package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
)

var (
	ErrUnknownProduct = errors.New("unknown product")
	ErrQuantity       = errors.New("quantity must be at least 1")
	ErrUnitPrice      = errors.New("unit price must not be negative")
	ErrStatus         = errors.New("invalid status")
)

type ItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Request is what the order editor submits. Lines are the editor lines as
// returned by EditLines and keep the price each product had when it was added.
// Items is the shorthand for a draft without lines; each item snapshots the
// product's current sale price.
type Request struct {
	CustomerID    uuid.UUID                `json:"customer_id"`
	Lines         []ordertotal.LineItem    `json:"lines"`
	Items         []ItemRequest            `json:"items"`
	ShippingValue decimal.Decimal          `json:"shipping_value"`
	PaymentMethod ordertotal.PaymentMethod `json:"payment_method"`
}

func (r Request) method() ordertotal.PaymentMethod {
	if r.PaymentMethod == "" {
		return ordertotal.DefaultPaymentMethod
	}
	return r.PaymentMethod
}

func (r Request) productIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Lines)+len(r.Items))
	for _, line := range r.Lines {
		ids = append(ids, line.ProductID)
	}
	for _, item := range r.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// buildLines adds each requested item in order, merging repeated products
func buildLines(products *draft.Collection[database.Product], items []ItemRequest) ([]ordertotal.LineItem, error) {
	var lines []ordertotal.LineItem
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, ErrQuantity
		}
		p, ok := products.Get(item.ProductID.String())
		if !ok {
			return nil, ErrUnknownProduct
		}
		lines = ordertotal.AddOrIncrement(lines, p.Snapshot(), item.Quantity)
	}
	return lines, nil
}

// keepLines checks editor lines against the account's products. Name, photo
// and unit price stay as captured when each line was added.
func keepLines(products *draft.Collection[database.Product], lines []ordertotal.LineItem) ([]ordertotal.LineItem, error) {
	out := make([]ordertotal.LineItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, ErrQuantity
		}
		if line.UnitPrice.IsNegative() {
			return nil, ErrUnitPrice
		}
		if _, ok := products.Get(line.ProductID.String()); !ok {
			return nil, ErrUnknownProduct
		}
		if line.ID == uuid.Nil {
			line.ID = uuid.New()
		}
		out = append(out, line)
	}
	return out, nil
}

// draftLines prefers the editor lines and falls back to building lines from items
func draftLines(products *draft.Collection[database.Product], req Request) ([]ordertotal.LineItem, error) {
	if len(req.Lines) > 0 {
		return keepLines(products, req.Lines)
	}
	return buildLines(products, req.Items)
}

func productCollection(products []database.Product) *draft.Collection[database.Product] {
	return draft.NewCollection(func(p database.Product) string { return p.ID.String() }, products...)
}

func (r Request) apply(o *database.Order, lines []ordertotal.LineItem) {
	o.CustomerID = r.CustomerID
	o.Items = database.ItemsFromLines(lines)
	o.ShippingValue = r.ShippingValue
	o.PaymentMethod = r.method()
}

func clone(o database.Order) database.Order {
	o.Items = append([]database.OrderItem(nil), o.Items...)
	if o.Customer != nil {
		cu := *o.Customer
		o.Customer = &cu
	}
	return o
}

func validate(o database.Order) error {
	return (&draft.Rules{}).
		Require("customer_id", o.CustomerID != uuid.Nil).
		Require("items", len(o.Items) > 0).
		Require("payment_method", o.PaymentMethod.Valid()).
		Require("shipping_value", !o.ShippingValue.IsNegative()).
		Err()
}

// prepare derives the total and, for a new order, the status from the payment method
func prepare(o *database.Order) {
	o.TotalValue = ordertotal.OrderTotal(o.Lines(), o.ShippingValue)
	if o.Status == "" {
		o.Status = ordertotal.StatusFor(o.PaymentMethod)
	}
}

const orderNumberPrefix = "PED-"

// OrderNumber is the label printed on documents: PED-YYYYMMDD-nnnn
func OrderNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s%s-%04d", orderNumberPrefix, day.Format("20060102"), seq)
}

// dayPrefix matches every order number issued on day
func dayPrefix(day time.Time) string {
	return orderNumberPrefix + day.Format("20060102") + "-"
}

// searchFields matches order number and customer name
func searchFields(o database.Order) []string {
	fields := []string{o.OrderNumber}
	if o.Customer != nil {
		fields = append(fields, o.Customer.Name)
	}
	return fields
}

func parseStatus(s string) (ordertotal.Status, bool) {
	st := ordertotal.Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// withStatus returns the order with its payment status toggled, or set to
// requested when one is named. Lines and totals are left as they are.
func withStatus(o database.Order, requested string) (database.Order, error) {
	next := ordertotal.Toggle(o.Status)
	if requested != "" {
		status, ok := parseStatus(requested)
		if !ok {
			return o, ErrStatus
		}
		next = status
	}
	o.Status = next
	return o, nil
}
