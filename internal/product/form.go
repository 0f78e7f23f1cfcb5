package product

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/pricing"
	"gorm.io/datatypes"
)

// Form is what the product editor submits. Cost, suggested price and sale
// price are never taken from the client; they are recomputed on save.
type Form struct {
	Name                string             `json:"name"`
	Collection          string             `json:"collection"`
	Photo               string             `json:"photo"`
	Materials           []pricing.Material `json:"materials"`
	ProfitMarginPercent *decimal.Decimal   `json:"profit_margin_percent"`
}

func (f Form) apply(p *database.Product) {
	p.Name = strings.TrimSpace(f.Name)
	p.Collection = strings.TrimSpace(f.Collection)
	p.Photo = strings.TrimSpace(f.Photo)
	p.Materials = datatypes.JSONSlice[pricing.Material](withIDs(f.Materials))
	if f.ProfitMarginPercent != nil {
		p.ProfitMarginPercent = *f.ProfitMarginPercent
	}
}

// withIDs fills in what the editor leaves out when a material is added
func withIDs(materials []pricing.Material) []pricing.Material {
	out := pricing.CloneMaterials(materials)
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = uuid.NewString()
		}
		if out[i].Quantity == 0 {
			out[i].Quantity = 1
		}
	}
	return out
}

func formOf(p database.Product) Form {
	margin := p.ProfitMarginPercent
	return Form{
		Name:                p.Name,
		Collection:          p.Collection,
		Photo:               p.Photo,
		Materials:           pricing.CloneMaterials(p.Materials),
		ProfitMarginPercent: &margin,
	}
}

func defaults() database.Product {
	return database.Product{ProfitMarginPercent: decimal.NewFromInt(pricing.DefaultMarginPercent)}
}

func clone(p database.Product) database.Product {
	p.Materials = datatypes.JSONSlice[pricing.Material](pricing.CloneMaterials(p.Materials))
	return p
}

var maxMarginPercent = decimal.NewFromInt(100)

// validate needs a name, a margin between 0 and 100 and at least one material,
// each passing the add-material gate with a quantity of at least 1
func validate(p database.Product) error {
	materialsOK := len(p.Materials) > 0
	for _, m := range p.Materials {
		if pricing.CanAddMaterial(m) != nil || m.Quantity < 1 {
			materialsOK = false
		}
	}
	margin := p.ProfitMarginPercent
	return (&draft.Rules{}).
		RequireText("name", p.Name).
		Require("materials", materialsOK).
		Require("profit_margin_percent", !margin.IsNegative() && margin.LessThanOrEqual(maxMarginPercent)).
		Err()
}

// prepare derives every computed column from the materials and margin
func prepare(p *database.Product) {
	p.TotalCost = pricing.MaterialsCost(p.Materials)
	p.SuggestedPrice = pricing.SuggestedPrice(p.TotalCost, p.ProfitMarginPercent)
	p.SalePrice = p.SuggestedPrice
	if p.Photo == "" {
		p.Photo = database.PlaceholderPhoto
	}
}

func searchFields(p database.Product) []string {
	return []string{p.Name, p.Collection}
}

func logValues(p database.Product) map[string]interface{} {
	return map[string]interface{}{
		"name":            p.Name,
		"collection":      p.Collection,
		"materials":       len(p.Materials),
		"total_cost":      p.TotalCost,
		"margin_percent":  p.ProfitMarginPercent,
		"suggested_price": p.SuggestedPrice,
	}
}
