package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EatenMeal is a single "this user ate this meal at this time" event. Many
// events may point at the same Meal template; each counts independently when
// totals are recomputed.
type EatenMeal struct {
	ID      string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  string    `gorm:"type:uuid;not null;index:idx_eaten_user_time" json:"user_id"`
	MealID  string    `gorm:"type:uuid;not null" json:"meal_id"`
	EatenAt time.Time `gorm:"index:idx_eaten_user_time" json:"eaten_at"`

	Meal Meal `json:"meal,omitempty"`
}

func (em *EatenMeal) BeforeCreate(tx *gorm.DB) error {
	if em.ID == "" {
		em.ID = uuid.NewString()
	}
	if em.EatenAt.IsZero() {
		em.EatenAt = time.Now()
	}
	return nil
}
