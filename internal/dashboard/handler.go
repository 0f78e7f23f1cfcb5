package dashboard

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"gorm.io/gorm"
)

const recentLimit = 5

type Handler struct {
	db  *gorm.DB
	now func() time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, now: time.Now}
}

// Stats are the cards on the home page
type Stats struct {
	TotalCustomers  int64           `json:"total_customers"`
	TotalProducts   int64           `json:"total_products"`
	TotalOrders     int64           `json:"total_orders"`
	ReceivedRevenue decimal.Decimal `json:"received_revenue"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	PendingOrders   int64           `json:"pending_orders"`
	MonthOrders     int64           `json:"month_orders"`
	MonthRevenue    decimal.Decimal `json:"month_revenue"`
}

type TopProduct struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalQty    int             `json:"total_qty"`
	TotalSales  decimal.Decimal `json:"total_sales"`
}

type statusTotal struct {
	Status ordertotal.Status
	Total  decimal.Decimal
	Count  int64
}

// monthStart is midnight of the first day of now's month
func monthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// apply folds per-status order totals into the stats
func (s *Stats) apply(rows []statusTotal) {
	for _, row := range rows {
		s.TotalOrders += row.Count
		switch row.Status {
		case ordertotal.StatusReceived:
			s.ReceivedRevenue = s.ReceivedRevenue.Add(row.Total)
		case ordertotal.StatusPending:
			s.PendingAmount = s.PendingAmount.Add(row.Total)
			s.PendingOrders += row.Count
		}
	}
}

// GetStats returns dashboard statistics
func (h *Handler) GetStats(c *gin.Context) {
	accountID := session.Current(c).AccountID
	from := monthStart(h.now())

	var stats Stats
	if err := h.db.Model(&database.Customer{}).Where("account_id = ?", accountID).Count(&stats.TotalCustomers).Error; err != nil {
		h.fail(c, err)
		return
	}
	if err := h.db.Model(&database.Product{}).Where("account_id = ?", accountID).Count(&stats.TotalProducts).Error; err != nil {
		h.fail(c, err)
		return
	}

	var byStatus []statusTotal
	if err := h.db.Model(&database.Order{}).
		Select("status, COALESCE(SUM(total_value), 0) as total, COUNT(*) as count").
		Where("account_id = ?", accountID).
		Group("status").
		Scan(&byStatus).Error; err != nil {
		h.fail(c, err)
		return
	}
	stats.apply(byStatus)

	var month struct {
		Total decimal.Decimal
		Count int64
	}
	if err := h.db.Model(&database.Order{}).
		Select("COALESCE(SUM(total_value), 0) as total, COUNT(*) as count").
		Where("account_id = ? AND created_at >= ?", accountID, from).
		Scan(&month).Error; err != nil {
		h.fail(c, err)
		return
	}
	stats.MonthOrders = month.Count
	stats.MonthRevenue = month.Total

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

func (h *Handler) fail(c *gin.Context, err error) {
	log.Printf("dashboard stats: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
}

// GetTopProducts returns this month's best selling products
func (h *Handler) GetTopProducts(c *gin.Context) {
	accountID := session.Current(c).AccountID

	var topProducts []TopProduct
	if err := h.db.Model(&database.OrderItem{}).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) as total_qty, SUM(order_items.subtotal) as total_sales").
		Joins("JOIN orders ON order_items.order_id = orders.id").
		Where("orders.account_id = ? AND orders.created_at >= ? AND orders.deleted_at IS NULL", accountID, monthStart(h.now())).
		Group("order_items.product_id, order_items.product_name").
		Order("total_qty DESC").
		Limit(recentLimit).
		Scan(&topProducts).Error; err != nil {
		log.Printf("top products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": topProducts})
}

// GetRecentOrders returns the latest orders with their customer
func (h *Handler) GetRecentOrders(c *gin.Context) {
	accountID := session.Current(c).AccountID

	var orders []database.Order
	if err := h.db.Where("account_id = ?", accountID).
		Preload("Customer").
		Preload("Items").
		Order("created_at DESC").
		Limit(recentLimit).
		Find(&orders).Error; err != nil {
		log.Printf("recent orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}
