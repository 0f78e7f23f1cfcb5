package activitylog

import (
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yuditriaji/atelie-lacos/pkg/database"
	"github.com/yuditriaji/atelie-lacos/pkg/session"
	"gorm.io/gorm"
)

// Logger handles activity logging for audit trail
type Logger struct {
	db *gorm.DB
}

// NewLogger creates a new activity logger
func NewLogger(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

// Entry builds the row without writing it
func Entry(accountID uuid.UUID, action, entityType string, entityID *uuid.UUID, details interface{}, ip string) database.ActivityLog {
	detailsJSON := ""
	if details != nil {
		if jsonBytes, err := json.Marshal(details); err == nil {
			detailsJSON = string(jsonBytes)
		}
	}

	return database.ActivityLog{
		AccountID:  accountID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    detailsJSON,
		IPAddress:  ip,
	}
}

// LogActivity creates an activity log entry for the signed-in account
func (l *Logger) LogActivity(c *gin.Context, action, entityType string, entityID *uuid.UUID, details interface{}) error {
	s, ok := session.From(c)
	if !ok {
		return nil
	}
	entry := Entry(s.AccountID, action, entityType, entityID, details, c.ClientIP())
	return l.db.Create(&entry).Error
}

// LogCreate logs a create action
func (l *Logger) LogCreate(c *gin.Context, entityType string, entityID uuid.UUID, newData interface{}) error {
	return l.LogActivity(c, "create", entityType, &entityID, map[string]interface{}{
		"new": newData,
	})
}

// LogUpdate logs an update action with old and new values
func (l *Logger) LogUpdate(c *gin.Context, entityType string, entityID uuid.UUID, oldData, newData interface{}) error {
	return l.LogActivity(c, "update", entityType, &entityID, map[string]interface{}{
		"old": oldData,
		"new": newData,
	})
}

// LogToggle logs an order payment status flip
func (l *Logger) LogToggle(c *gin.Context, entityType string, entityID uuid.UUID, from, to string) error {
	return l.LogActivity(c, "toggle", entityType, &entityID, map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

// LogUpload logs a stored image
func (l *Logger) LogUpload(c *gin.Context, entityType string, entityID *uuid.UUID, url string) error {
	return l.LogActivity(c, "upload", entityType, entityID, map[string]interface{}{
		"url": url,
	})
}

// Watch records every session event published on hub until the returned func is called
func (l *Logger) Watch(hub *session.Hub) func() {
	return hub.Subscribe(func(e session.Event) {
		if !e.Session.Valid() {
			return
		}
		entry := Entry(e.Session.AccountID, string(e.Kind), "session", nil,
			map[string]interface{}{"email": e.Session.Email}, e.IPAddress)
		if err := l.db.Create(&entry).Error; err != nil {
			log.Printf("activitylog: failed to record %s: %v", e.Kind, err)
		}
	})
}
