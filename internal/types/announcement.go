package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Announcement struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title         string         `gorm:"not null;column:title" json:"title"`
	Body          string         `gorm:"not null;column:body" json:"body"`
	AudienceRoles datatypes.JSON `gorm:"column:audience_roles;type:jsonb" json:"audience_roles"`
	AuthorID      uuid.UUID      `gorm:"type:uuid;not null;column:author_id" json:"author_id"`
	AuthorName    string         `gorm:"not null;column:author_name" json:"author_name"`
	Pinned        bool           `gorm:"not null;default:false;column:pinned" json:"pinned"`
	CreatedAt     time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Announcement) TableName() string { return "announcement" }
