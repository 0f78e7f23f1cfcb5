package settings

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yuditriaji/atelie-lacos/pkg/activitylog"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/draft"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"github.com/yuditriaji/atelie-lacos/pkg/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Handler struct {
	db      *gorm.DB
	bucket  storage.Bucket
	logger  *activitylog.Logger
	editors *draft.Registry[database.StoreSettings]
	now     func() time.Time
}

func NewHandler(db *gorm.DB, bucket storage.Bucket) *Handler {
	h := &Handler{
		db:     db,
		bucket: bucket,
		logger: activitylog.NewLogger(db),
		now:    time.Now,
	}
	h.editors = draft.NewRegistry(draft.Hooks[database.StoreSettings]{
		Validate: validate,
		Persist:  h.persist,
	})
	return h
}

// persist inserts the first row of an account and updates it afterwards
func (h *Handler) persist(ctx context.Context, s *database.StoreSettings, _ draft.Mode) error {
	return h.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"store_name", "logo", "instagram", "phone", "whats_app", "theme_color", "updated_at"}),
	}).Create(s).Error
}

// Get returns the store settings, or the defaults with exists=false
func (h *Handler) Get(c *gin.Context) {
	s := session.Current(c)

	settings, exists, err := database.LoadStoreSettings(c.Request.Context(), h.db, s.AccountID)
	if err != nil {
		log.Printf("load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": settings, "exists": exists})
}

// Update saves the store settings
func (h *Handler) Update(c *gin.Context) {
	var req Form
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s := session.Current(c)

	editor, release, err := h.editors.Acquire(s.AccountID.String())
	if err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}
	defer release()

	existing, exists, err := database.LoadStoreSettings(c.Request.Context(), h.db, s.AccountID)
	if err != nil {
		log.Printf("load settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	if exists {
		editor.Edit(existing)
	} else {
		editor.New()
	}
	if err := editor.Update(func(st *database.StoreSettings) {
		req.apply(st)
		st.AccountID = s.AccountID
	}); err != nil {
		c.JSON(draft.StatusOf(err), gin.H{"error": err.Error()})
		return
	}

	settings, err := editor.Save(c.Request.Context())
	if err != nil {
		body := gin.H{"error": err.Error()}
		if fields := draft.MissingFields(err); fields != nil {
			current, _ := editor.Draft()
			body["fields"] = fields
			body["draft"] = formOf(current)
		} else {
			log.Printf("save settings: %v", err)
			body["error"] = "Failed to save settings"
		}
		c.JSON(draft.StatusOf(err), body)
		return
	}

	if exists {
		h.logger.LogUpdate(c, "settings", settings.ID, formOf(existing), formOf(settings))
	} else {
		h.logger.LogCreate(c, "settings", settings.ID, formOf(settings))
	}
	c.JSON(http.StatusOK, gin.H{"data": settings, "exists": true})
}

// UploadLogo stores a logo and returns its public URL. Settings keep the old
// logo until the URL is saved with Update.
func (h *Handler) UploadLogo(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	obj, err := storage.StoreUpload(c.Request.Context(), h.bucket, file, "logo", storage.LogoPreset, h.now())
	if errors.Is(err, storage.ErrNotImage) || errors.Is(err, storage.ErrEmptyObject) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("upload logo: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to upload logo"})
		return
	}

	h.logger.LogUpload(c, "settings", nil, obj.URL)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"url": obj.URL}, "object": obj})
}
