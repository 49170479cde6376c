package model

import (
	"time"

	"github.com/google/uuid"
)

type Board struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name      string    `gorm:"not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tasks []Task `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
}

// OwnedBy reports whether userID owns the board.
func (b *Board) OwnedBy(userID uuid.UUID) bool {
	return b.UserID == userID
}
