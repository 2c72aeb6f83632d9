package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User types accepted on the waitlist
const (
	UserTypeRenter   = "renter"
	UserTypeLandlord = "landlord"
)

type WaitlistEntry struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null;uniqueIndex" json:"email"`
	UserType  string    `gorm:"not null" json:"userType"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (w *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	return nil
}
