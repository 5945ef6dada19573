package types

import (
	"time"

	"github.com/google/uuid"
)

// GearItem is a coach-recommended piece of equipment surfaced to the team.
type GearItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeamID    uuid.UUID `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Category  string    `gorm:"column:category" json:"category"`
	URL       string    `gorm:"column:url" json:"url"`
	Notes     string    `gorm:"column:notes" json:"notes"`
	AddedBy   uuid.UUID `gorm:"type:uuid;not null;column:added_by" json:"added_by"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (GearItem) TableName() string { return "gear_item" }
