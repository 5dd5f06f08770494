package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Goal holds a user's overall targets. One per user.
type Goal struct {
	ID               string   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string   `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	TargetWeightKg   *float64 `json:"target_weight_kg"`
	TargetCalories   *int     `json:"target_calories"`
	ConsumedCalories float64  `gorm:"default:0" json:"consumed_calories"`

	// daily | weekly | monthly | none
	ResetFrequency string `gorm:"size:10;default:none" json:"reset_frequency"`

	Nutrients []GoalNutrient `gorm:"constraint:OnDelete:CASCADE" json:"nutrients,omitempty"`
}

func (g *Goal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.ResetFrequency == "" {
		g.ResetFrequency = "none"
	}
	return nil
}

// GoalNutrient is a per-nutrient target/consumed pair, unique per (goal,
// nutrient). ConsumedAmount is owned by the recalculation pass and never
// maintained incrementally.
type GoalNutrient struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	GoalID     string `gorm:"type:uuid;not null;uniqueIndex:idx_goal_nutrient;index" json:"goal_id"`
	NutrientID string `gorm:"type:uuid;not null;uniqueIndex:idx_goal_nutrient;index" json:"nutrient_id"`

	TargetAmount   float64 `gorm:"not null" json:"target_amount"`
	ConsumedAmount float64 `gorm:"default:0" json:"consumed_amount"`

	Nutrient Nutrient `json:"nutrient,omitempty"`
}

func (gn *GoalNutrient) BeforeCreate(tx *gorm.DB) error {
	if gn.ID == "" {
		gn.ID = uuid.NewString()
	}
	return nil
}

// ProgressPercent is consumed over target, capped at 100. A zero target
// reports 0 rather than dividing by it.
func (gn *GoalNutrient) ProgressPercent() float64 {
	if gn.TargetAmount <= 0 {
		return 0
	}
	p := gn.ConsumedAmount / gn.TargetAmount * 100
	if p > 100 {
		return 100
	}
	return p
}
