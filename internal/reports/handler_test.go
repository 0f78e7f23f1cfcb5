package reports

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestPeriodDefaultsToCurrentMonth(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	start, end := SalesReportRequest{}.period(now)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 10, 31, 23, 59, 59, 0, time.UTC), end)

	start, end = SalesReportRequest{StartDate: "2026-09-10", EndDate: "2026-09-20"}.period(now)
	assert.Equal(t, time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 9, 20, 23, 59, 59, 0, time.UTC), end)

	start, _ = SalesReportRequest{StartDate: "17/10/2026"}.period(now)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), start)
}

func fixture() ([]database.Order, unitCosts) {
	laco, tiara := uuid.New(), uuid.New()
	orders := []database.Order{
		{
			BaseModel:     database.BaseModel{CreatedAt: time.Date(2026, 10, 2, 10, 0, 0, 0, time.UTC)},
			ShippingValue: dec("9.60"),
			TotalValue:    dec("81.30"),
			Items: []database.OrderItem{
				{ProductID: laco, ProductName: "Laço Princesa", Quantity: 2, UnitPrice: dec("25.90")},
				{ProductID: tiara, ProductName: "Tiara", Quantity: 1, UnitPrice: dec("19.90")},
			},
		},
		{
			BaseModel:  database.BaseModel{CreatedAt: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)},
			TotalValue: dec("15.00"),
			Items: []database.OrderItem{
				{ProductID: laco, ProductName: "Laço Princesa", Quantity: 1, UnitPrice: dec("15.00")},
			},
		},
	}
	return orders, unitCosts{laco: dec("10"), tiara: dec("8")}
}

func TestBuildSalesReport(t *testing.T) {
	orders, costs := fixture()
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	report := buildSalesReport(orders, costs, start, start.AddDate(0, 1, -1))

	assert.Equal(t, "2026-10-01", report.StartDate)
	assert.Equal(t, "2026-10-31", report.EndDate)
	assert.Equal(t, 2, report.TotalOrders)
	assert.Equal(t, 4, report.TotalItemsSold)
	assert.Equal(t, "96.3", report.TotalSales.String())
	assert.Equal(t, "38", report.TotalCost.String())
	assert.Equal(t, "48.7", report.GrossProfit.String())
	assert.Equal(t, "48.15", report.AveragePerSale.String())

	require.Len(t, report.DailySales, 2)
	assert.Equal(t, "2026-10-01", report.DailySales[0].Date)
	assert.Equal(t, 3, report.DailySales[1].ItemsSold)
}

func TestBuildSalesReportEmpty(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	report := buildSalesReport(nil, unitCosts{}, start, start)

	assert.Zero(t, report.TotalOrders)
	assert.True(t, report.AveragePerSale.IsZero())
	assert.NotNil(t, report.DailySales)
}

func TestBuildProductSales(t *testing.T) {
	orders, costs := fixture()

	products := buildProductSales(orders, costs)
	require.Len(t, products, 2)

	assert.Equal(t, "Laço Princesa", products[0].ProductName)
	assert.Equal(t, 3, products[0].TotalQty)
	assert.Equal(t, "66.8", products[0].TotalSales.String())
	assert.Equal(t, "30", products[0].TotalCost.String())
	assert.Equal(t, "36.8", products[0].Profit.String())

	assert.Equal(t, "Tiara", products[1].ProductName)
	assert.Equal(t, "11.9", products[1].Profit.String())
}

func TestBuildProductSalesUnknownCost(t *testing.T) {
	orders, _ := fixture()

	products := buildProductSales(orders, unitCosts{})
	assert.True(t, products[0].TotalCost.IsZero())
	assert.True(t, products[0].TotalSales.Equal(products[0].Profit))
}

func TestProductRows(t *testing.T) {
	orders, costs := fixture()
	rows := productRows(buildProductSales(orders, costs))

	require.Len(t, rows, 2)
	require.Len(t, rows[0], len(productHeaders))
	assert.Equal(t, "Laço Princesa", rows[0][0])
	assert.Equal(t, 66.8, rows[0][2])
}
