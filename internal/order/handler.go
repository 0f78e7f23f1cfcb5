package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yuditriaji/atelie-lacos/pkg/activitylog"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/email"
	"github.com/yuditriaji/atelie-lacos/pkg/money"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"github.com/yuditriaji/atelie-lacos/pkg/sheet"
	"gorm.io/gorm"
)

// Mailer sends a rendered order to the customer
type Mailer interface {
	SendOrderReceipt(ctx context.Context, to, storeName, orderNumber, html string, pdf []byte) error
}

const numberAttempts = 3

type Handler struct {
	db      *gorm.DB
	pdf     PDFRenderer
	mailer  Mailer
	logger  *activitylog.Logger
	editors *draft.Registry[database.Order]
	now     func() time.Time
}

func NewHandler(db *gorm.DB, pdf PDFRenderer, mailer Mailer) *Handler {
	h := &Handler{
		db:     db,
		pdf:    pdf,
		mailer: mailer,
		logger: activitylog.NewLogger(db),
		now:    time.Now,
	}
	h.editors = draft.NewRegistry(draft.Hooks[database.Order]{
		Clone:    clone,
		Validate: validate,
		Prepare:  prepare,
		Persist:  h.persist,
	})
	return h
}

// persist numbers the order within its day and retries when a concurrent
// create took the same number
func (h *Handler) persist(ctx context.Context, o *database.Order, mode draft.Mode) error {
	if mode != draft.Create {
		return h.db.WithContext(ctx).Save(o).Error
	}

	day := h.now()
	var err error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Unscoped().Model(&database.Order{}).
				Where("account_id = ? AND order_number LIKE ?", o.AccountID, dayPrefix(day)+"%").
				Count(&count).Error; err != nil {
				return err
			}
			o.OrderNumber = OrderNumber(day, int(count)+1)
			return tx.Omit("Customer").Create(o).Error
		})
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
	}
	return err
}

func (h *Handler) preload() *gorm.DB {
	return h.db.Preload("Customer").Preload("Items")
}

// List returns orders newest first, filtered by ?status= and ?search= over number and customer name
func (h *Handler) List(c *gin.Context) {
	s := session.Current(c)

	query := h.preload().Where("account_id = ?", s.AccountID)
	if raw := c.Query("status"); raw != "" {
		status, ok := parseStatus(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var orders []database.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		log.Printf("list orders: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft.Filter(orders, c.Query("search"), searchFields)})
}

// lines loads the requested products of the account and builds the order lines.
// It answers the request itself on failure.
func (h *Handler) lines(c *gin.Context, req Request) ([]ordertotal.LineItem, bool) {
	s := session.Current(c)

	var products []database.Product
	if len(req.Lines) > 0 || len(req.Items) > 0 {
		if err := h.db.Where("account_id = ? AND id IN ?", s.AccountID, req.productIDs()).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
			return nil, false
		}
	}

	lines, err := draftLines(productCollection(products), req)
	switch {
	case errors.Is(err, ErrUnknownProduct):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Selecione um produto válido.", "fields": []string{"items"}})
		return nil, false
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": []string{"items"}})
		return nil, false
	}
	return lines, true
}

// Quote previews lines and totals of an order draft without saving it
func (h *Handler) Quote(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines, ok := h.lines(c, req)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":          lines,
		"totals":         ordertotal.Summarize(lines, req.ShippingValue),
		"payment_method": req.method(),
		"status":         ordertotal.StatusFor(req.method()),
	}})
}

// LinesRequest edits the line list of an open order editor. Lines come back
// exactly as the previous response returned them, so their prices stay frozen
// here and when the order is created with them.
type LinesRequest struct {
	Lines         []ordertotal.LineItem `json:"lines"`
	Add           *ItemRequest          `json:"add"`
	RemoveLineID  *uuid.UUID            `json:"remove_line_id"`
	ShippingValue decimal.Decimal       `json:"shipping_value"`
}

// EditLines adds a product to the draft lines, merging it into an existing
// line, or removes one line
func (h *Handler) EditLines(c *gin.Context) {
	var req LinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lines := req.Lines
	switch {
	case req.RemoveLineID != nil:
		lines = ordertotal.RemoveItem(lines, *req.RemoveLineID)
	case req.Add != nil:
		if req.Add.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": ErrQuantity.Error(), "fields": []string{"items"}})
			return
		}
		var product database.Product
		if err := h.db.Where("id = ? AND account_id = ?", req.Add.ProductID, session.Current(c).AccountID).First(&product).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Selecione um produto válido.", "fields": []string{"items"}})
			return
		}
		lines = ordertotal.AddOrIncrement(lines, product.Snapshot(), req.Add.Quantity)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to change"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"lines":  lines,
		"totals": ordertotal.Summarize(lines, req.ShippingValue),
	}})
}

// Create saves a new order. Editor lines keep their add-time prices; plain
// items are priced from the products now.
func (h *Handler) Create(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := session.Current(c)

	var customer database.Customer
	if req.CustomerID != uuid.Nil {
		if err := h.db.Where("id = ? AND account_id = ?", req.CustomerID, s.AccountID).First(&customer).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cliente inválido.", "fields": []string{"customer_id"}})
			return
		}
	}

	lines, ok := h.lines(c, req)
	if !ok {
		return
	}

	editor, release, err := h.editors.Acquire(s.AccountID.String() + ":new")
	if err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	defer release()

	editor.New()
	if err := editor.Update(func(o *database.Order) {
		req.apply(o, lines)
		o.AccountID = s.AccountID
	}); err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	order, err := editor.Save(c.Request.Context())
	if err != nil {
		body := gin.H{"error": err.Error()}
		if fields := draft.MissingFields(err); fields != nil {
			current, _ := editor.Draft()
			body["error"] = "Cliente e pelo menos um produto são obrigatórios."
			body["fields"] = fields
			body["draft"] = current
		} else if draft.StatusOf(err) == http.StatusInternalServerError {
			log.Printf("save order: %v", err)
			body["error"] = "Failed to save order"
		}
		c.JSON(draft.StatusOf(err), body)
		return
	}
	order.Customer = &customer

	h.logger.LogCreate(c, "order", order.ID, map[string]interface{}{
		"order_number":   order.OrderNumber,
		"customer":       customer.Name,
		"total":          order.TotalValue,
		"payment_method": order.PaymentMethod,
		"status":         order.Status,
	})
	c.JSON(http.StatusCreated, gin.H{"data": order})
}

func (h *Handler) find(c *gin.Context) (database.Order, bool) {
	s := session.Current(c)

	var order database.Order
	if err := h.preload().Where("id = ? AND account_id = ?", c.Param("id"), s.AccountID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return order, false
	}
	return order, true
}

// Get returns a single order with its customer and lines
func (h *Handler) Get(c *gin.Context) {
	order, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": order, "totals": ordertotal.Summarize(order.Lines(), order.ShippingValue)})
}

// UpdateStatus flips the payment status, or sets it when the body names one
func (h *Handler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	// An empty body means toggle
	if !bindOptionalJSON(c, &req) {
		return
	}

	order, ok := h.find(c)
	if !ok {
		return
	}

	updated, err := withStatus(order, req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	if err := h.db.Model(&order).Update("status", updated.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	h.logger.LogToggle(c, "order", order.ID, string(order.Status), string(updated.Status))
	c.JSON(http.StatusOK, gin.H{
		"data":    updated,
		"message": fmt.Sprintf("Pagamento marcado como %s.", updated.Status),
	})
}

// bindOptionalJSON binds the body when there is one. A malformed body is
// answered with 400.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func (h *Handler) document(c *gin.Context) (database.Order, Document, bool) {
	order, ok := h.find(c)
	if !ok {
		return order, Document{}, false
	}

	store, _, err := database.LoadStoreSettings(c.Request.Context(), h.db, order.AccountID)
	if err != nil {
		// Print with the default header rather than fail
		log.Printf("load settings for order %s: %v", order.ID, err)
	}
	return order, NewDocument(store, order), true
}

// Print returns the order document as HTML
func (h *Handler) Print(c *gin.Context) {
	_, doc, ok := h.document(c)
	if !ok {
		return
	}

	html, err := doc.HTML()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render order"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// PDF renders the order document through Chrome
func (h *Handler) PDF(c *gin.Context) {
	order, doc, ok := h.document(c)
	if !ok {
		return
	}

	html, err := doc.HTML()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render order"})
		return
	}

	pdf, err := h.pdf.RenderPDF(c.Request.Context(), html)
	if err != nil {
		log.Printf("pdf for order %s: %v", order.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=Pedido-%s.pdf", order.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Send emails the order document to the customer, or to the address in the body
func (h *Handler) Send(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if !bindOptionalJSON(c, &req) {
		return
	}

	order, doc, ok := h.document(c)
	if !ok {
		return
	}

	to := strings.TrimSpace(req.Email)
	if to == "" && order.Customer != nil {
		to = order.Customer.Email
	}
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer has no email", "fields": []string{"email"}})
		return
	}

	html, err := doc.HTML()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render order"})
		return
	}

	pdf, err := h.pdf.RenderPDF(c.Request.Context(), html)
	if err != nil {
		log.Printf("pdf for order %s, sending without attachment: %v", order.ID, err)
		pdf = nil
	}

	err = h.mailer.SendOrderReceipt(c.Request.Context(), to, doc.StoreName, order.OrderNumber, html, pdf)
	if errors.Is(err, email.ErrNotConfigured) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email is not configured"})
		return
	}
	if err != nil {
		log.Printf("send order %s: %v", order.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pedido enviado para " + to})
}

// Export downloads the (optionally filtered) orders as xlsx
func (h *Handler) Export(c *gin.Context) {
	s := session.Current(c)

	query := h.preload().Where("account_id = ?", s.AccountID)
	if status, ok := parseStatus(c.Query("status")); ok {
		query = query.Where("status = ?", status)
	}

	var orders []database.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	f, err := sheet.Build(exportHeaders, exportRows(draft.Filter(orders, c.Query("search"), searchFields)))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate spreadsheet"})
		return
	}
	sheet.Send(c, f, "pedidos.xlsx")
}

var exportHeaders = []string{"Pedido", "Data", "Cliente", "Itens", "Subtotal", "Frete", "Total", "Pagamento", "Status"}

func exportRows(orders []database.Order) [][]interface{} {
	rows := make([][]interface{}, 0, len(orders))
	for _, o := range orders {
		customer := ""
		if o.Customer != nil {
			customer = o.Customer.Name
		}
		lines := o.Lines()
		items := 0
		for _, l := range lines {
			items += l.Quantity
		}
		rows = append(rows, []interface{}{
			o.OrderNumber,
			money.FormatDate(o.CreatedAt),
			customer,
			items,
			ordertotal.LineItemsTotal(lines).InexactFloat64(),
			o.ShippingValue.InexactFloat64(),
			o.TotalValue.InexactFloat64(),
			o.PaymentMethod.Label(),
			o.Status.Label(),
		})
	}
	return rows
}
