package product

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yuditriaji/atelie-lacos/pkg/activitylog"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/pricing"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"github.com/yuditriaji/atelie-lacos/pkg/storage"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	bucket  storage.Bucket
	logger  *activitylog.Logger
	editors *draft.Registry[database.Product]
}

func NewHandler(db *gorm.DB, bucket storage.Bucket) *Handler {
	h := &Handler{
		db:     db,
		bucket: bucket,
		logger: activitylog.NewLogger(db),
	}
	h.editors = draft.NewRegistry(draft.Hooks[database.Product]{
		Defaults: defaults,
		Clone:    clone,
		Validate: validate,
		Prepare:  prepare,
		Persist:  h.persist,
	})
	return h
}

func (h *Handler) persist(ctx context.Context, p *database.Product, mode draft.Mode) error {
	if mode == draft.Create {
		return h.db.WithContext(ctx).Create(p).Error
	}
	return h.db.WithContext(ctx).Save(p).Error
}

// List returns the account's products, filtered by ?search= over name and collection
func (h *Handler) List(c *gin.Context) {
	s := session.Current(c)

	var products []database.Product
	if err := h.db.Where("account_id = ?", s.AccountID).Order("name ASC").Find(&products).Error; err != nil {
		log.Printf("list products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": draft.Filter(products, c.Query("search"), searchFields)})
}

// Create adds a new product priced from its materials
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
	if err := editor.Update(func(p *database.Product) {
		req.apply(p)
		p.AccountID = s.AccountID
	}); err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	product, ok := h.save(c, editor)
	if !ok {
		return
	}

	h.logger.LogCreate(c, "product", product.ID, logValues(product))
	c.JSON(http.StatusCreated, gin.H{"data": product})
}

// Get returns a single product
func (h *Handler) Get(c *gin.Context) {
	product, ok := h.find(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Update replaces the editable fields and recomputes the prices
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

	product, ok := h.save(c, editor)
	if !ok {
		return
	}

	h.logger.LogUpdate(c, "product", product.ID, logValues(existing), logValues(product))
	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (h *Handler) save(c *gin.Context, editor *draft.Controller[database.Product]) (database.Product, bool) {
	product, err := editor.Save(c.Request.Context())
	if err == nil {
		return product, true
	}

	body := gin.H{"error": err.Error()}
	if fields := draft.MissingFields(err); fields != nil {
		current, _ := editor.Draft()
		body["error"] = "Nome do produto e pelo menos um material são obrigatórios."
		body["fields"] = fields
		body["draft"] = formOf(current)
	} else if draft.StatusOf(err) == http.StatusInternalServerError {
		log.Printf("save product: %v", err)
		body["error"] = "Failed to save product"
	}
	c.JSON(draft.StatusOf(err), body)
	return database.Product{}, false
}

func (h *Handler) find(c *gin.Context) (database.Product, bool) {
	s := session.Current(c)

	var product database.Product
	if err := h.db.Where("id = ? AND account_id = ?", c.Param("id"), s.AccountID).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return product, false
	}
	return product, true
}

type QuoteRequest struct {
	Materials           []pricing.Material `json:"materials"`
	ProfitMarginPercent *decimal.Decimal   `json:"profit_margin_percent"`
}

func (r QuoteRequest) margin() decimal.Decimal {
	if r.ProfitMarginPercent == nil {
		return decimal.NewFromInt(pricing.DefaultMarginPercent)
	}
	return *r.ProfitMarginPercent
}

// Quote previews cost and suggested price while the editor is open
func (h *Handler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pricing.NewQuote(req.Materials, req.margin())})
}

type AddMaterialRequest struct {
	QuoteRequest
	Material pricing.Material `json:"material"`
}

// AddMaterial applies the add-material gate and answers with the new list and its quote
func (h *Handler) AddMaterial(c *gin.Context) {
	var req AddMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	materials, err := pricing.AppendMaterial(req.Materials, req.Material)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Erro ao adicionar material",
			"message": err.Error(),
			"data":    req.Materials,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  materials,
		"quote": pricing.NewQuote(materials, req.margin()),
	})
}

type RemoveMaterialRequest struct {
	QuoteRequest
	MaterialID string `json:"material_id" binding:"required"`
}

// RemoveMaterial drops a material from the editor's list and requotes it
func (h *Handler) RemoveMaterial(c *gin.Context) {
	var req RemoveMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	materials := pricing.RemoveMaterial(req.Materials, req.MaterialID)
	c.JSON(http.StatusOK, gin.H{
		"data":  materials,
		"quote": pricing.NewQuote(materials, req.margin()),
	})
}

// UploadPhoto stores the product photo and points the product at it
func (h *Handler) UploadPhoto(c *gin.Context) {
	product, ok := h.find(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	obj, err := storage.StoreUpload(c.Request.Context(), h.bucket, file, "produto", storage.PhotoPreset, time.Now())
	if errors.Is(err, storage.ErrNotImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("upload product photo: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload photo"})
		return
	}

	if err := h.db.Model(&product).Update("photo", obj.URL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	product.Photo = obj.URL

	h.logger.LogUpload(c, "product", &product.ID, obj.URL)
	c.JSON(http.StatusOK, gin.H{"data": product, "object": obj})
}
