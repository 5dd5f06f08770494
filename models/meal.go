package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal is a reusable template (breakfast/lunch/dinner/snack), not a log of
// consumption. See EatenMeal for the ledger.
type Meal struct {
	ID       string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string    `gorm:"type:uuid;not null;index:idx_meal_user_time" json:"user_id"`
	MealType string    `gorm:"size:10;not null" json:"meal_type"` // breakfast | lunch | dinner | snack
	DateTime time.Time `gorm:"index:idx_meal_user_time" json:"date_time"`
	Notes    string    `json:"notes,omitempty"`
	Name     string    `gorm:"size:100" json:"name,omitempty"`

	Items []MealItem `gorm:"constraint:OnDelete:CASCADE" json:"items"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.DateTime.IsZero() {
		m.DateTime = time.Now()
	}
	return nil
}

// MealItem is one (product, quantity) line within a meal. Products are
// referenced by barcode, same as the catalog's external identity.
type MealItem struct {
	ID             string  `gorm:"type:uuid;primaryKey" json:"id"`
	MealID         string  `gorm:"type:uuid;not null;index" json:"meal_id"`
	ProductBarcode string  `gorm:"size:32;not null;index" json:"product_barcode"`
	Quantity       float64 `gorm:"not null" json:"quantity"` // in the product's unit, e.g. grams

	Product Product `gorm:"foreignKey:ProductBarcode;references:Barcode" json:"product,omitempty"`
}

func (mi *MealItem) BeforeCreate(tx *gorm.DB) error {
	if mi.ID == "" {
		mi.ID = uuid.NewString()
	}
	return nil
}
