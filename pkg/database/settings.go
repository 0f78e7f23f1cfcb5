package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoadStoreSettings returns the account's settings row, or the defaults with
// exists=false when the account never saved any. A missing row is not an error.
func LoadStoreSettings(ctx context.Context, db *gorm.DB, accountID uuid.UUID) (StoreSettings, bool, error) {
	var settings StoreSettings
	err := db.WithContext(ctx).Where("account_id = ?", accountID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultStoreSettings(accountID), false, nil
	}
	if err != nil {
		return DefaultStoreSettings(accountID), false, err
	}
	return settings, true, nil
}

// DisplayName is the store name printed on documents
func (s StoreSettings) DisplayName() string {
	if s.StoreName == "" {
		return DefaultStoreName
	}
	return s.StoreName
}
