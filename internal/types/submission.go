package types

import (
	"time"

	"github.com/google/uuid"
)

// Submission status lifecycle. Progression is strictly left to right; no
// operation exposed by this backend moves a submission backward.
const (
	SubmissionStatusUploading     = "uploading"
	SubmissionStatusAwaitingCoach = "awaiting_coach"
	SubmissionStatusClaimed       = "claimed"
	SubmissionStatusInReview      = "in_review"
	SubmissionStatusComplete      = "complete"
)

var submissionStatusRank = map[string]int{
	SubmissionStatusUploading:     0,
	SubmissionStatusAwaitingCoach: 1,
	SubmissionStatusClaimed:       2,
	SubmissionStatusInReview:      3,
	SubmissionStatusComplete:      4,
}

type Submission struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeamID           uuid.UUID  `gorm:"type:uuid;not null;index;column:team_id" json:"team_id"`
	AthleteUID       uuid.UUID  `gorm:"type:uuid;not null;index;column:athlete_uid" json:"athlete_uid"`
	AthleteName      string     `gorm:"not null;column:athlete_name" json:"athlete_name"`
	AthletePhotoURL  string     `gorm:"column:athlete_photo_url" json:"athlete_photo_url,omitempty"`
	SkillName        string     `gorm:"not null;column:skill_name" json:"skill_name"`
	AthleteContext   string     `gorm:"not null;column:athlete_context" json:"athlete_context"`
	AthleteGoals     string     `gorm:"column:athlete_goals" json:"athlete_goals,omitempty"`
	SpecificQuestion string     `gorm:"column:specific_questions" json:"specific_questions,omitempty"`
	VideoFileName    string     `gorm:"column:video_file_name" json:"video_file_name"`
	VideoFileSize    int64      `gorm:"column:video_file_size" json:"video_file_size"`
	VideoDuration    float64    `gorm:"column:video_duration" json:"video_duration,omitempty"`
	VideoDownloadURL string     `gorm:"column:video_download_url" json:"video_download_url,omitempty"`
	ThumbnailURL     string     `gorm:"column:thumbnail_url" json:"thumbnail_url,omitempty"`
	StorageKey       string     `gorm:"column:storage_key" json:"-"`
	Status           string     `gorm:"not null;default:'uploading';index;column:status" json:"status"`
	ClaimedBy        *uuid.UUID `gorm:"type:uuid;index;column:claimed_by" json:"claimed_by,omitempty"`
	ClaimedByName    string     `gorm:"column:claimed_by_name" json:"claimed_by_name,omitempty"`
	SLADeadline      *time.Time `gorm:"column:sla_deadline" json:"sla_deadline,omitempty"`
	ReviewID         *uuid.UUID `gorm:"type:uuid;column:review_id" json:"review_id,omitempty"`
	CreatedAt        time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (Submission) TableName() string { return "submission" }

func ValidSubmissionStatus(status string) bool {
	_, ok := submissionStatusRank[status]
	return ok
}

// CanAdvance reports whether moving from one status to the next is a legal
// forward step. Same-status writes and any backward move are rejected.
func CanAdvance(from, to string) bool {
	fromRank, ok := submissionStatusRank[from]
	if !ok {
		return false
	}
	toRank, ok := submissionStatusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// Claimable reports whether a submission is still sitting in the open queue.
func (s *Submission) Claimable() bool {
	if s == nil {
		return false
	}
	return s.Status == SubmissionStatusAwaitingCoach && s.ClaimedBy == nil
}

func (s *Submission) ClaimedByCoach(coachID uuid.UUID) bool {
	if s == nil || s.ClaimedBy == nil {
		return false
	}
	return *s.ClaimedBy == coachID
}
