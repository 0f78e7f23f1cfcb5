package product

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/pricing"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"gorm.io/datatypes"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { session.Set(c, session.Session{AccountID: uuid.New()}) })
	r.POST("/products", h.Create)
	r.POST("/products/quote", h.Quote)
	r.POST("/products/materials/validate", h.AddMaterial)
	r.POST("/products/materials/remove", h.RemoveMaterial)
	return r
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return w
}

func TestPrepareDerivesPrices(t *testing.T) {
	p := defaults()
	Form{
		Name: "Laço Princesa",
		Materials: []pricing.Material{
			{Name: "Fita de cetim", Quantity: 2, UnitCost: dec("2.50")},
			{Name: "Strass", Quantity: 5, UnitCost: dec("1")},
		},
	}.apply(&p)

	require.NoError(t, validate(p))
	prepare(&p)

	assert.Equal(t, "10", p.TotalCost.String())
	assert.Equal(t, "50", p.ProfitMarginPercent.String())
	assert.Equal(t, "15", p.SuggestedPrice.String())
	assert.True(t, p.SalePrice.Equal(p.SuggestedPrice))
	assert.Equal(t, database.PlaceholderPhoto, p.Photo)
	for _, m := range p.Materials {
		assert.NotEmpty(t, m.ID)
	}
}

func TestApplyKeepsMarginWhenOmitted(t *testing.T) {
	p := database.Product{ProfitMarginPercent: dec("80")}
	Form{Name: "Tiara"}.apply(&p)
	assert.Equal(t, "80", p.ProfitMarginPercent.String())

	margin := dec("120")
	Form{Name: "Tiara", ProfitMarginPercent: &margin}.apply(&p)
	assert.Equal(t, "120", p.ProfitMarginPercent.String())
}

func TestValidate(t *testing.T) {
	ok := []pricing.Material{{ID: "m1", Name: "Fita", Quantity: 1, UnitCost: dec("1")}}
	free := []pricing.Material{{ID: "m1", Name: "Fita", Quantity: 1, UnitCost: decimal.Zero}}
	negative := []pricing.Material{{ID: "m1", Name: "Fita", Quantity: -2, UnitCost: dec("1")}}

	tests := []struct {
		name    string
		product database.Product
		fields  []string
	}{
		{"valid", database.Product{Name: "Laço", Materials: ok}, nil},
		{"no name", database.Product{Materials: ok}, []string{"name"}},
		{"no materials", database.Product{Name: "Laço"}, []string{"materials"}},
		{"material without cost", database.Product{Name: "Laço", Materials: free}, []string{"materials"}},
		{"negative quantity", database.Product{Name: "Laço", Materials: negative}, []string{"materials"}},
		{"full margin", database.Product{Name: "Laço", Materials: ok, ProfitMarginPercent: dec("100")}, nil},
		{"negative margin", database.Product{Name: "Laço", Materials: ok, ProfitMarginPercent: dec("-10")}, []string{"profit_margin_percent"}},
		{"margin too large", database.Product{Name: "Laço", Materials: ok, ProfitMarginPercent: dec("100000")}, []string{"profit_margin_percent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fields, draft.MissingFields(validate(tt.product)))
		})
	}
}

func TestCloneDoesNotShareMaterials(t *testing.T) {
	p := database.Product{Materials: datatypes.JSONSlice[pricing.Material]{{ID: "m1", Name: "Fita"}}}
	c := clone(p)
	c.Materials[0].Name = "Renda"
	assert.Equal(t, "Fita", p.Materials[0].Name)
}

func TestCreateWithoutMaterialsKeepsDraft(t *testing.T) {
	r := newRouter(NewHandler(nil, nil))

	w := post(r, "/products", `{"name":"Laço Princesa","collection":"Verão"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp struct {
		Fields []string `json:"fields"`
		Draft  Form     `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"materials"}, resp.Fields)
	assert.Equal(t, "Laço Princesa", resp.Draft.Name)
	assert.Equal(t, "Verão", resp.Draft.Collection)
}

func TestQuoteEndpoint(t *testing.T) {
	r := newRouter(NewHandler(nil, nil))

	w := post(r, "/products/quote", `{"materials":[{"name":"Fita","quantity":2,"unit_cost":"2.5"},{"name":"Strass","quantity":5,"unit_cost":"1"}],"profit_margin_percent":"50"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data pricing.Quote `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "10", resp.Data.TotalCost.String())
	assert.Equal(t, "15", resp.Data.SuggestedPrice.String())
	assert.Len(t, resp.Data.Breakdown, 2)
}

func TestAddMaterialGate(t *testing.T) {
	r := newRouter(NewHandler(nil, nil))

	w := post(r, "/products/materials/validate", `{"materials":[],"material":{"name":"Fita","unit_cost":"0"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/products/materials/validate", `{"materials":[],"material":{"name":"Fita","unit_cost":"3"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data  []pricing.Material `json:"data"`
		Quote pricing.Quote      `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.Data[0].Quantity)
	assert.NotEmpty(t, resp.Data[0].ID)
	assert.Equal(t, "4.5", resp.Quote.SuggestedPrice.String())
}

func TestRemoveMaterialRequotes(t *testing.T) {
	r := newRouter(NewHandler(nil, nil))

	w := post(r, "/products/materials/remove", `{"materials":[{"id":"a","name":"Fita","quantity":2,"unit_cost":"2.5"},{"id":"b","name":"Strass","quantity":5,"unit_cost":"1"}],"material_id":"b"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data  []pricing.Material `json:"data"`
		Quote pricing.Quote      `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "a", resp.Data[0].ID)
	assert.Equal(t, "5", resp.Quote.TotalCost.String())
	assert.Equal(t, "7.5", resp.Quote.SuggestedPrice.String())

	w = post(r, "/products/materials/remove", `{"materials":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
