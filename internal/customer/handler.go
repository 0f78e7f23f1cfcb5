package customer

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yuditriaji/atelie-lacos/pkg/activitylog"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/money"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"github.com/yuditriaji/atelie-lacos/pkg/sheet"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	logger  *activitylog.Logger
	editors *draft.Registry[database.Customer]
}

func NewHandler(db *gorm.DB) *Handler {
	h := &Handler{
		db:     db,
		logger: activitylog.NewLogger(db),
	}
	h.editors = draft.NewRegistry(draft.Hooks[database.Customer]{
		Validate: validate,
		Persist:  h.persist,
	})
	return h
}

func (h *Handler) persist(ctx context.Context, c *database.Customer, mode draft.Mode) error {
	if mode == draft.Create {
		return h.db.WithContext(ctx).Create(c).Error
	}
	return h.db.WithContext(ctx).Save(c).Error
}

// List returns the account's customers, filtered by ?search= over name, phone and email
func (h *Handler) List(c *gin.Context) {
	s := session.Current(c)

	var customers []database.Customer
	if err := h.db.Where("account_id = ?", s.AccountID).Order("name ASC").Find(&customers).Error; err != nil {
		log.Printf("list customers: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft.Filter(customers, c.Query("search"), searchFields)})
}

// Create adds a new customer
func (h *Handler) Create(c *gin.Context) {
	var req Form
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := session.Current(c)

	editor, release, err := h.editors.Acquire(s.AccountID.String() + ":new")
	if err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	defer release()

	editor.New()
	if err := editor.Update(func(cu *database.Customer) {
		req.apply(cu)
		cu.AccountID = s.AccountID
	}); err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	customer, ok := h.save(c, editor)
	if !ok {
		return
	}

	h.logger.LogCreate(c, "customer", customer.ID, logValues(customer))
	c.JSON(http.StatusCreated, gin.H{"data": customer})
}

// Get returns a single customer
func (h *Handler) Get(c *gin.Context) {
	customer, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

// Update modifies a customer
func (h *Handler) Update(c *gin.Context) {
	var req Form
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	existing, ok := h.find(c)
	if !ok {
		return
	}

	editor, release, err := h.editors.Acquire(existing.AccountID.String() + ":" + existing.ID.String())
	if err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	defer release()

	editor.Edit(existing)
	if err := editor.Update(req.apply); err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	customer, ok := h.save(c, editor)
	if !ok {
		return
	}

	h.logger.LogUpdate(c, "customer", customer.ID, logValues(existing), logValues(customer))
	c.JSON(http.StatusOK, gin.H{"data": customer})
}

// save runs the editor and answers the request itself on failure
func (h *Handler) save(c *gin.Context, editor *draft.Controller[database.Customer]) (database.Customer, bool) {
	customer, err := editor.Save(c.Request.Context())
	if err == nil {
		return customer, true
	}

	body := gin.H{"error": err.Error()}
	if fields := draft.MissingFields(err); fields != nil {
		current, _ := editor.Draft()
		body["fields"] = fields
		body["draft"] = formOf(current)
	} else {
		log.Printf("save customer: %v", err)
		body["error"] = "Failed to save customer"
	}
	c.JSON(draft.StatusOf(err), body)
	return database.Customer{}, false
}

func (h *Handler) find(c *gin.Context) (database.Customer, bool) {
	s := session.Current(c)

	var customer database.Customer
	if err := h.db.Where("id = ? AND account_id = ?", c.Param("id"), s.AccountID).First(&customer).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return customer, false
	}
	return customer, true
}

type Stats struct {
	TotalOrders  int64           `json:"total_orders"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	PaidTotal    decimal.Decimal `json:"paid_total"`
	PendingTotal decimal.Decimal `json:"pending_total"`
	LastOrderAt  *time.Time      `json:"last_order_at"`
}

// GetStats returns customer purchase statistics
func (h *Handler) GetStats(c *gin.Context) {
	customer, ok := h.find(c)
	if !ok {
		return
	}

	var orders []database.Order
	if err := h.db.Where("account_id = ? AND customer_id = ?", customer.AccountID, customer.ID).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summarize(orders)})
}

func summarize(orders []database.Order) Stats {
	stats := Stats{
		TotalOrders:  int64(len(orders)),
		TotalSpent:   decimal.Zero,
		PaidTotal:    decimal.Zero,
		PendingTotal: decimal.Zero,
	}
	for i, o := range orders {
		stats.TotalSpent = stats.TotalSpent.Add(o.TotalValue)
		if o.Status == ordertotal.StatusReceived {
			stats.PaidTotal = stats.PaidTotal.Add(o.TotalValue)
		} else {
			stats.PendingTotal = stats.PendingTotal.Add(o.TotalValue)
		}
		if stats.LastOrderAt == nil || o.CreatedAt.After(*stats.LastOrderAt) {
			stats.LastOrderAt = &orders[i].CreatedAt
		}
	}
	return stats
}

// Export downloads the (optionally filtered) customer list as xlsx
func (h *Handler) Export(c *gin.Context) {
	s := session.Current(c)

	var customers []database.Customer
	if err := h.db.Where("account_id = ?", s.AccountID).Order("name ASC").Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	f, err := sheet.Build(exportHeaders, exportRows(draft.Filter(customers, c.Query("search"), searchFields)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate spreadsheet"})
		return
	}
	sheet.Send(c, f, "clientes.xlsx")
}

var exportHeaders = []string{"Nome", "Telefone", "Email", "Endereço", "Cadastrado em"}

func exportRows(customers []database.Customer) [][]interface{} {
	rows := make([][]interface{}, 0, len(customers))
	for _, cu := range customers {
		rows = append(rows, []interface{}{cu.Name, cu.Phone, cu.Email, cu.Address, money.FormatDate(cu.CreatedAt)})
	}
	return rows
}
