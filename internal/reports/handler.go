package reports

import (
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"github.com/yuditriaji/atelie-lacos/pkg/sheet"
	"gorm.io/gorm"
)

const (
	dateLayout    = "2006-01-02"
	activityLimit = 100
)

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, now: time.Now}
}

type SalesReportRequest struct {
	StartDate string `form:"start_date"` // Format: 2026-10-01
	EndDate   string `form:"end_date"`   // Format: 2026-10-31
	Status    string `form:"status"`     // recebido, pendente or empty for both
}

type DailySales struct {
	Date      string          `json:"date"`
	Sales     decimal.Decimal `json:"sales"`
	Orders    int             `json:"orders"`
	ItemsSold int             `json:"items_sold"`
}

type SalesReport struct {
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	TotalShipping  decimal.Decimal `json:"total_shipping"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	TotalOrders    int             `json:"total_orders"`
	TotalItemsSold int             `json:"total_items_sold"`
	AveragePerSale decimal.Decimal `json:"average_per_order"`
	DailySales     []DailySales    `json:"daily_sales"`
}

type ProductSales struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalQty    int             `json:"total_qty"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Profit      decimal.Decimal `json:"profit"`
}

// period resolves the requested range, defaulting to the current month.
// Unparseable dates fall back to the default.
func (r SalesReportRequest) period(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := time.Date(now.Year(), now.Month()+1, 0, 23, 59, 59, 0, now.Location())

	if parsed, err := time.ParseInLocation(dateLayout, r.StartDate, now.Location()); err == nil {
		start = parsed
	}
	if parsed, err := time.ParseInLocation(dateLayout, r.EndDate, now.Location()); err == nil {
		end = time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 23, 59, 59, 0, parsed.Location())
	}
	return start, end
}

// unitCosts maps product id to the material cost of one unit.
// Products deleted since the sale cost nothing.
type unitCosts map[uuid.UUID]decimal.Decimal

func (u unitCosts) of(id uuid.UUID, qty int) decimal.Decimal {
	return u[id].Mul(decimal.NewFromInt(int64(qty)))
}

// buildSalesReport totals the orders and splits them per day in date order.
// Shipping counts toward sales but carries no cost.
func buildSalesReport(orders []database.Order, costs unitCosts, start, end time.Time) SalesReport {
	report := SalesReport{
		StartDate:  start.Format(dateLayout),
		EndDate:    end.Format(dateLayout),
		DailySales: []DailySales{},
	}

	days := map[string]*DailySales{}
	for _, o := range orders {
		day := o.CreatedAt.In(start.Location()).Format(dateLayout)
		daily, ok := days[day]
		if !ok {
			daily = &DailySales{Date: day}
			days[day] = daily
		}

		items := 0
		for _, item := range o.Items {
			items += item.Quantity
			report.TotalCost = report.TotalCost.Add(costs.of(item.ProductID, item.Quantity))
		}

		report.TotalSales = report.TotalSales.Add(o.TotalValue)
		report.TotalShipping = report.TotalShipping.Add(o.ShippingValue)
		report.TotalOrders++
		report.TotalItemsSold += items

		daily.Sales = daily.Sales.Add(o.TotalValue)
		daily.Orders++
		daily.ItemsSold += items
	}

	report.GrossProfit = report.TotalSales.Sub(report.TotalShipping).Sub(report.TotalCost)
	if report.TotalOrders > 0 {
		report.AveragePerSale = report.TotalSales.Div(decimal.NewFromInt(int64(report.TotalOrders))).Round(2)
	}

	for _, daily := range days {
		report.DailySales = append(report.DailySales, *daily)
	}
	sort.Slice(report.DailySales, func(i, j int) bool {
		return report.DailySales[i].Date < report.DailySales[j].Date
	})
	return report
}

// buildProductSales groups the order lines by product, best sellers first
func buildProductSales(orders []database.Order, costs unitCosts) []ProductSales {
	byProduct := map[uuid.UUID]*ProductSales{}
	for _, o := range orders {
		for _, item := range o.Items {
			ps, ok := byProduct[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, ProductName: item.ProductName}
				byProduct[item.ProductID] = ps
			}
			ps.TotalQty += item.Quantity
			ps.TotalSales = ps.TotalSales.Add(ordertotal.LineSubtotal(item.Line()))
			ps.TotalCost = ps.TotalCost.Add(costs.of(item.ProductID, item.Quantity))
		}
	}

	products := make([]ProductSales, 0, len(byProduct))
	for _, ps := range byProduct {
		ps.Profit = ps.TotalSales.Sub(ps.TotalCost)
		products = append(products, *ps)
	}
	sort.Slice(products, func(i, j int) bool {
		if !products[i].TotalSales.Equal(products[j].TotalSales) {
			return products[i].TotalSales.GreaterThan(products[j].TotalSales)
		}
		return products[i].ProductName < products[j].ProductName
	})
	return products
}

// load fetches the account's orders in the requested period with the unit
// cost of every product sold. It answers the request itself on failure.
func (h *Handler) load(c *gin.Context) ([]database.Order, unitCosts, time.Time, time.Time, bool) {
	var req SalesReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, nil, time.Time{}, time.Time{}, false
	}
	accountID := session.Current(c).AccountID
	start, end := req.period(h.now())

	query := h.db.Preload("Items").
		Where("account_id = ? AND created_at >= ? AND created_at <= ?", accountID, start, end)
	if req.Status != "" {
		status := ordertotal.Status(req.Status)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return nil, nil, start, end, false
		}
		query = query.Where("status = ?", status)
	}

	var orders []database.Order
	if err := query.Order("created_at ASC").Find(&orders).Error; err != nil {
		log.Printf("report orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return nil, nil, start, end, false
	}

	costs := unitCosts{}
	var ids []uuid.UUID
	for _, o := range orders {
		for _, item := range o.Items {
			ids = append(ids, item.ProductID)
		}
	}
	if len(ids) > 0 {
		var products []database.Product
		if err := h.db.Select("id", "total_cost").
			Where("account_id = ? AND id IN ?", accountID, ids).
			Find(&products).Error; err != nil {
			log.Printf("report costs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return nil, nil, start, end, false
		}
		for _, p := range products {
			costs[p.ID] = p.TotalCost
		}
	}
	return orders, costs, start, end, true
}

// GetSalesReport returns sales report for date range
func (h *Handler) GetSalesReport(c *gin.Context) {
	orders, costs, start, end, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buildSalesReport(orders, costs, start, end)})
}

// GetProductSalesReport returns sales by product
func (h *Handler) GetProductSalesReport(c *gin.Context) {
	orders, costs, _, _, ok := h.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": buildProductSales(orders, costs)})
}

// ExportProductSales downloads the product report as xlsx
func (h *Handler) ExportProductSales(c *gin.Context) {
	orders, costs, start, end, ok := h.load(c)
	if !ok {
		return
	}

	f, err := sheet.Build(productHeaders, productRows(buildProductSales(orders, costs)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate spreadsheet"})
		return
	}
	sheet.Send(c, f, "vendas-"+start.Format(dateLayout)+"-"+end.Format(dateLayout)+".xlsx")
}

var productHeaders = []string{"Produto", "Quantidade", "Vendas", "Custo", "Lucro"}

func productRows(products []ProductSales) [][]interface{} {
	rows := make([][]interface{}, 0, len(products))
	for _, p := range products {
		rows = append(rows, []interface{}{
			p.ProductName,
			p.TotalQty,
			p.TotalSales.InexactFloat64(),
			p.TotalCost.InexactFloat64(),
			p.Profit.InexactFloat64(),
		})
	}
	return rows
}

// GetActivityLogs returns the latest account activity, optionally for one ?entity_type=
func (h *Handler) GetActivityLogs(c *gin.Context) {
	accountID := session.Current(c).AccountID

	query := h.db.Where("account_id = ?", accountID)
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var logs []database.ActivityLog
	if err := query.Order("created_at DESC").Limit(activityLimit).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch activity"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": logs})
}
