package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPCode is a pending one-time code, one per (user, purpose). Codes are
// stored bcrypt-hashed; Temp carries the pending password hash for the
// reset flow.
type OTPCode struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"-"`
	UserID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_otp_user_purpose" json:"-"`
	Email     string    `gorm:"size:255;not null" json:"-"`
	Purpose   string    `gorm:"size:10;not null;uniqueIndex:idx_otp_user_purpose" json:"-"` // login | reset
	CodeHash  string    `gorm:"not null" json:"-"`
	Temp      string    `json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"-"`
}

func (o *OTPCode) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
