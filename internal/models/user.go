package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is part of the schema but has no reachable route yet; it is kept in the
// registry so the table exists when authentication lands.
type User struct {
	ID       string `gorm:"type:text;primaryKey" json:"id"`
	Username string `gorm:"not null;uniqueIndex" json:"username"`
	Password string `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
