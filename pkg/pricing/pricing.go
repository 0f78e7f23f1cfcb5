// Package pricing computes what a product costs to make and what it should sell for.
//
// Every value is recomputed from the current materials and margin on each call;
// nothing here caches or stores a derived figure.
package pricing

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultMarginPercent is the markup a new product starts with
const DefaultMarginPercent = 50

var (
	ErrMaterialName = errors.New("material name is required")
	ErrMaterialCost = errors.New("material unit cost must be greater than zero")
)

var hundred = decimal.NewFromInt(100)

// Material is one ingredient of a product, owned by that product only
type Material struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

// Cost is quantity × unit cost
func (m Material) Cost() decimal.Decimal {
	return m.UnitCost.Mul(decimal.NewFromInt(int64(m.Quantity)))
}

// MaterialsCost sums quantity × unit cost over all materials. An empty list costs 0.
// Negative quantities or costs are not rejected here.
func MaterialsCost(materials []Material) decimal.Decimal {
	total := decimal.Zero
	for _, m := range materials {
		total = total.Add(m.Cost())
	}
	return total
}

// SuggestedPrice applies a percentage markup: totalCost × (1 + marginPercent/100).
// The margin has no upper bound.
func SuggestedPrice(totalCost, marginPercent decimal.Decimal) decimal.Decimal {
	return totalCost.Mul(decimal.NewFromInt(1).Add(marginPercent.Div(hundred)))
}

// CanAddMaterial gates appending a material to a product: it needs a name and a
// positive unit cost. Quantity is not checked.
func CanAddMaterial(m Material) error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMaterialName
	}
	if !m.UnitCost.IsPositive() {
		return ErrMaterialCost
	}
	return nil
}

// AppendMaterial returns a new list with m appended, giving it an id and a
// quantity of 1 when none was set. The input list is not modified.
func AppendMaterial(materials []Material, m Material) ([]Material, error) {
	if err := CanAddMaterial(m); err != nil {
		return materials, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Quantity == 0 {
		m.Quantity = 1
	}

	out := make([]Material, 0, len(materials)+1)
	out = append(out, materials...)
	return append(out, m), nil
}

// RemoveMaterial returns the list without the material with the given id
func RemoveMaterial(materials []Material, id string) []Material {
	out := make([]Material, 0, len(materials))
	for _, m := range materials {
		if m.ID != id {
			out = append(out, m)
		}
	}
	return out
}

// CloneMaterials copies the list so a draft never shares backing storage with a saved product
func CloneMaterials(materials []Material) []Material {
	if materials == nil {
		return nil
	}
	out := make([]Material, len(materials))
	copy(out, materials)
	return out
}

type BreakdownLine struct {
	MaterialID string          `json:"material_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Cost       decimal.Decimal `json:"cost"`
}

// Quote is the live cost preview shown while a product is edited
type Quote struct {
	TotalCost           decimal.Decimal `json:"total_cost"`
	ProfitMarginPercent decimal.Decimal `json:"profit_margin_percent"`
	SuggestedPrice      decimal.Decimal `json:"suggested_price"`
	Breakdown           []BreakdownLine `json:"breakdown"`
}

func NewQuote(materials []Material, marginPercent decimal.Decimal) Quote {
	breakdown := make([]BreakdownLine, 0, len(materials))
	for _, m := range materials {
		breakdown = append(breakdown, BreakdownLine{
			MaterialID: m.ID,
			Name:       m.Name,
			Quantity:   m.Quantity,
			UnitCost:   m.UnitCost,
			Cost:       m.Cost(),
		})
	}

	total := MaterialsCost(materials)
	return Quote{
		TotalCost:           total,
		ProfitMarginPercent: marginPercent,
		SuggestedPrice:      SuggestedPrice(total, marginPercent),
		Breakdown:           breakdown,
	}
}
