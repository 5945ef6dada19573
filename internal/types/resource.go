package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ResourceKindVideo   = "video"
	ResourceKindArticle = "article"
	ResourceKindDrill   = "drill"
)

type Resource struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeamID      uuid.UUID      `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	Title       string         `gorm:"not null;column:title" json:"title"`
	Kind        string         `gorm:"not null;column:kind" json:"kind"`
	URL         string         `gorm:"not null;column:url" json:"url"`
	Description string         `gorm:"column:description" json:"description"`
	Tags        datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags"`
	AddedBy     uuid.UUID      `gorm:"type:uuid;not null;column:added_by" json:"added_by"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Resource) TableName() string { return "resource" }

func ValidResourceKind(kind string) bool {
	switch kind {
	case ResourceKindVideo, ResourceKindArticle, ResourceKindDrill:
		return true
	}
	return false
}
