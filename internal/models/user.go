package models

import (
	"time"
)

// User 用户模型，username 即主键
type User struct {
	Username        string    `gorm:"primaryKey;size:50" json:"username"`
	DisplayName     string    `gorm:"size:50;not null" json:"display_name"`
	EmailAddress    string    `gorm:"size:255;not null" json:"email_address"`
	PasswordHash    string    `gorm:"size:500;not null" json:"-"`
	JoinedAt        time.Time `gorm:"not null" json:"joined_at"`
	IsAuthenticated bool      `gorm:"not null;default:false" json:"is_authenticated"`
	IsActive        bool      `gorm:"not null;default:true" json:"is_active"`
	IsAnonymous     bool      `gorm:"not null;default:false" json:"is_anonymous"`

	// Relations
	Memberships     []Membership    `gorm:"foreignKey:Username;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Messages        []Message       `gorm:"foreignKey:SenderUsername;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	SentInvites     []InviteRequest `gorm:"foreignKey:SenderUsername;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ReceivedInvites []InviteRequest `gorm:"foreignKey:ReceiverUsername;references:Username;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserField names a column that UpdateUserField may change.
type UserField string

const (
	FieldUsername        UserField = "username"
	FieldDisplayName     UserField = "display_name"
	FieldEmailAddress    UserField = "email_address"
	FieldPassword        UserField = "password"
	FieldIsAuthenticated UserField = "is_authenticated"
	FieldIsActive        UserField = "is_active"
	FieldJoinedAt        UserField = "joined_at"
	FieldIsAnonymous     UserField = "is_anonymous"
)

// Column returns the users column backing the field.
func (f UserField) Column() string {
	if f == FieldPassword {
		return "password_hash"
	}
	return string(f)
}
