package types

import (
	"time"

	"github.com/google/uuid"
)

// Review is the coach's published feedback for one completed submission.
// Immutable once published.
type Review struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubmissionID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:submission_id" json:"submission_id"`
	CoachID         uuid.UUID `gorm:"type:uuid;not null;index;column:coach_id" json:"coach_id"`
	CoachName       string    `gorm:"not null;column:coach_name" json:"coach_name"`
	OverallFeedback string    `gorm:"not null;column:overall_feedback" json:"overall_feedback"`
	NextSteps       string    `gorm:"column:next_steps" json:"next_steps"`
	PublishedAt     time.Time `gorm:"not null;column:published_at" json:"published_at"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Review) TableName() string { return "review" }
