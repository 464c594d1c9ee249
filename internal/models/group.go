package models

import "time"

// Group 群组模型
type Group struct {
	GroupID   uint      `gorm:"primaryKey;autoIncrement" json:"group_id"`
	GroupName string    `gorm:"size:50;not null" json:"group_name"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	Memberships []Membership    `gorm:"foreignKey:GroupID;references:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Messages    []Message       `gorm:"foreignKey:GroupID;references:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Invites     []InviteRequest `gorm:"foreignKey:GroupID;references:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

func (Group) TableName() string {
	return "groups"
}
