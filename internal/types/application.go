package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

// CoachingApplication is an athlete's request to join a team's coaching
// program. Reviewed by admins.
type CoachingApplication struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeamID          uuid.UUID  `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	ApplicantID     uuid.UUID  `gorm:"type:uuid;not null;index;column:applicant_id" json:"applicant_id"`
	ApplicantName   string     `gorm:"not null;column:applicant_name" json:"applicant_name"`
	Goals           string     `gorm:"not null;column:goals" json:"goals"`
	ExperienceLevel string     `gorm:"not null;column:experience_level" json:"experience_level"`
	Status          string     `gorm:"not null;default:'pending';index;column:status" json:"status"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid;column:reviewed_by" json:"reviewed_by,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (CoachingApplication) TableName() string { return "coaching_application" }
