package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yuditriaji/atelie-lacos/pkg/ordertotal"
	"github.com/yuditriaji/atelie-lacos/pkg/pricing"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	PlaceholderPhoto  = "/placeholder.svg"
	DefaultThemeColor = "#F87171"
	DefaultStoreName  = "Meu Ateliê de Laços"
)

// Base model for all entities
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Account is the signed-in owner of every other row
type Account struct {
	BaseModel
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	GoogleID     string `gorm:"index" json:"-"`
	PasswordHash string `json:"-"` // empty for Google-only accounts
	Name         string `json:"name"`
}

// Customer represents a buyer
type Customer struct {
	BaseModel
	AccountID uuid.UUID `gorm:"type:uuid;not null;index" json:"account_id"`
	Name      string    `gorm:"not null" json:"name"`
	Phone     string    `gorm:"not null" json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
}

// Product is a handmade item priced from its materials
type Product struct {
	BaseModel
	AccountID           uuid.UUID                             `gorm:"type:uuid;not null;index" json:"account_id"`
	Name                string                                `gorm:"not null" json:"name"`
	Collection          string                                `json:"collection"`
	Photo               string                                `json:"photo"`
	Materials           datatypes.JSONSlice[pricing.Material] `gorm:"type:jsonb" json:"materials"`
	TotalCost           decimal.Decimal                       `gorm:"type:decimal(12,2);not null;default:0" json:"total_cost"`
	ProfitMarginPercent decimal.Decimal                       `gorm:"type:decimal(7,2);not null;default:50" json:"profit_margin_percent"`
	SuggestedPrice      decimal.Decimal                       `gorm:"type:decimal(12,2);not null;default:0" json:"suggested_price"`
	SalePrice           decimal.Decimal                       `gorm:"type:decimal(12,2);not null;default:0" json:"sale_price"`
}

// Snapshot returns the values copied into an order line when the product is added
func (p Product) Snapshot() ordertotal.ProductSnapshot {
	return ordertotal.ProductSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Photo:     p.Photo,
		SalePrice: p.SalePrice,
	}
}

// Order represents a sale to one customer
type Order struct {
	BaseModel
	AccountID     uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_orders_account_number,priority:1" json:"account_id"`
	OrderNumber   string                   `gorm:"not null;uniqueIndex:idx_orders_account_number,priority:2" json:"order_number"`
	CustomerID    uuid.UUID                `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer      *Customer                `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items         []OrderItem              `gorm:"foreignKey:OrderID" json:"items"`
	ShippingValue decimal.Decimal          `gorm:"type:decimal(12,2);not null;default:0" json:"shipping_value"`
	PaymentMethod ordertotal.PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	Status        ordertotal.Status        `gorm:"type:varchar(20);not null;index" json:"status"`
	TotalValue    decimal.Decimal          `gorm:"type:decimal(12,2);not null" json:"total_value"`
}

// Lines converts the stored items back into calculator line items
func (o Order) Lines() []ordertotal.LineItem {
	lines := make([]ordertotal.LineItem, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, item.Line())
	}
	return lines
}

// OrderItem is a line of an order with the product values captured at add time
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	ProductName  string          `gorm:"not null" json:"product_name"`
	ProductPhoto string          `json:"product_photo"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

func (i OrderItem) Line() ordertotal.LineItem {
	return ordertotal.LineItem{
		ID:           i.ID,
		ProductID:    i.ProductID,
		ProductName:  i.ProductName,
		ProductPhoto: i.ProductPhoto,
		Quantity:     i.Quantity,
		UnitPrice:    i.UnitPrice,
	}
}

// ItemsFromLines builds order rows from draft line items
func ItemsFromLines(lines []ordertotal.LineItem) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItem{
			ID:           line.ID,
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductPhoto: line.ProductPhoto,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			Subtotal:     ordertotal.LineSubtotal(line),
		})
	}
	return items
}

// StoreSettings holds the branding shown on order documents, one row per account
type StoreSettings struct {
	BaseModel
	AccountID  uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"account_id"`
	StoreName  string    `gorm:"not null" json:"store_name"`
	Logo       string    `json:"logo"`
	Instagram  string    `json:"instagram"`
	Phone      string    `json:"phone"`
	WhatsApp   string    `json:"whatsapp"`
	ThemeColor string    `gorm:"default:'#F87171'" json:"theme_color"`
}

// DefaultStoreSettings is what an account sees before its first save
func DefaultStoreSettings(accountID uuid.UUID) StoreSettings {
	return StoreSettings{
		AccountID:  accountID,
		StoreName:  DefaultStoreName,
		ThemeColor: DefaultThemeColor,
	}
}

// ActivityLog tracks account actions for audit trail
type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AccountID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"account_id"`
	Action     string     `gorm:"not null" json:"action"` // create, update, toggle, upload, sign_in, sign_out...
	EntityType string     `json:"entity_type"`           // customer, product, order, settings, session
	EntityID   *uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Details    string     `gorm:"type:text" json:"details"` // JSON details
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Account{},
		&Customer{},
		&Product{},
		&Order{},
		&OrderItem{},
		&StoreSettings{},
		&ActivityLog{},
	)
}
