package models

import (
	"time"

	"github.com/google/uuid"
)

type Analysis struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	VideoID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PRDContent   *string   `gorm:"type:text"`
	BusinessPlan *string   `gorm:"type:text"`
	CreatedAt    time.Time

	// Associations
	Video Video `gorm:"foreignKey:VideoID"`
}
