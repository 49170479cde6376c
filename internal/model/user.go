package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null;default:''"`
	// ExternalID is the Google subject id; nil for password-only accounts.
	ExternalID *string   `gorm:"uniqueIndex"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Boards []Board `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// HasPassword reports whether the account can sign in with a password.
// OAuth-only accounts carry an empty hash.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
