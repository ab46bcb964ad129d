package models

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Filename  string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	User User `gorm:"foreignKey:UserID"`
}
