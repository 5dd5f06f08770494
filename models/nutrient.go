package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Nutrient is canonical reference data seeded at startup and looked up by
// code everywhere else. Units follow the label on the pack: g, mg, mcg, kJ,
// kcal, "%" or per_serving.
type Nutrient struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name         string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Unit         string `gorm:"size:20" json:"unit"`
	Category     string `gorm:"size:50;index" json:"category"` // macronutrient | vitamin | mineral
	DisplayOrder uint   `gorm:"default:0" json:"display_order"`
	IsVisible    bool   `gorm:"default:true" json:"is_visible"`
}

func (n *Nutrient) BeforeSave(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Code = strings.ToLower(strings.TrimSpace(n.Code))
	return nil
}
