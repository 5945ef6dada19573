package types

import (
	"time"

	"github.com/google/uuid"
)

// Comment belongs to a submission and optionally replies to a parent
// comment. Only one level of nesting is rendered; replies to replies are
// not created by this backend.
type Comment struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SubmissionID   uuid.UUID  `gorm:"type:uuid;not null;index;column:submission_id" json:"submission_id"`
	ParentID       *uuid.UUID `gorm:"type:uuid;index;column:parent_id" json:"parent_id,omitempty"`
	AuthorID       uuid.UUID  `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	AuthorName     string     `gorm:"not null;column:author_name" json:"author_name"`
	AuthorRole     string     `gorm:"not null;column:author_role" json:"author_role"`
	Content        string     `gorm:"not null;column:content" json:"content"`
	VideoTimestamp *float64   `gorm:"column:video_timestamp" json:"video_timestamp,omitempty"`
	Edited         bool       `gorm:"not null;default:false;column:edited" json:"edited"`
	CreatedAt      time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Comment) TableName() string { return "comment" }

func (c *Comment) IsReply() bool {
	return c != nil && c.ParentID != nil
}

// CommentThread is one top-level comment with its direct replies in
// chronological order.
type CommentThread struct {
	Comment *Comment   `json:"comment"`
	Replies []*Comment `json:"replies"`
}
