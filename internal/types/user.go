package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAthlete    = "athlete"
	RoleCoach      = "coach"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

type User struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password  string     `gorm:"not null;column:password" json:"-"`
	FirstName string     `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string     `gorm:"not null;column:last_name" json:"last_name"`
	Role      string     `gorm:"not null;default:'athlete';column:role" json:"role"`
	TeamID    *uuid.UUID `gorm:"type:uuid;index;column:team_id" json:"team_id,omitempty"`
	PhotoURL  string     `gorm:"column:photo_url" json:"photo_url"`
	CreatedAt time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (User) TableName() string { return "user" }

func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	return u.FirstName + " " + u.LastName
}

func ValidRole(role string) bool {
	switch role {
	case RoleAthlete, RoleCoach, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}
