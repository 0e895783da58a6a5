package model

import (
	"time"

	"gorm.io/gorm"
)

// User is a local snapshot of an identity-provider user. Rows are maintained
// exclusively by the identity webhook (user.created / user.updated /
// user.deleted); the application never writes them directly.
type User struct {
	ID        string         `json:"id" gorm:"primarykey;type:varchar(64)"`
	Email     string         `json:"email" gorm:"type:varchar(255)"`
	FirstName string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string         `json:"last_name" gorm:"type:varchar(100)"`
	Username  string         `json:"username" gorm:"type:varchar(100)"`
	ImageURL  string         `json:"image_url" gorm:"type:text"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}
