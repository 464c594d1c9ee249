package models

import "time"

// InviteStatus is the lifecycle state of an invite request.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteRejected InviteStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s InviteStatus) Valid() bool {
	switch s {
	case InvitePending, InviteAccepted, InviteRejected:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s InviteStatus) Terminal() bool {
	return s == InviteAccepted || s == InviteRejected
}

// CanTransition reports whether from -> to is allowed.
// Only pending -> accepted and pending -> rejected are.
func CanTransition(from, to InviteStatus) bool {
	return from == InvitePending && to.Terminal()
}

// InviteRequest 入群邀请
type InviteRequest struct {
	RequestID        uint         `gorm:"primaryKey;autoIncrement" json:"request_id"`
	ReceiverUsername string       `gorm:"size:50;not null;index" json:"receiver_username"`
	SenderUsername   string       `gorm:"size:50;not null;index" json:"sender_username"`
	GroupID          uint         `gorm:"not null;index" json:"group_id"`
	Status           InviteStatus `gorm:"size:16;not null;index" json:"status"`
	RequestedAt      time.Time    `gorm:"not null" json:"request_date_time"`
}

func (InviteRequest) TableName() string {
	return "invite_requests"
}

// InviteView is an invite request joined with its group name.
type InviteView struct {
	InviteRequest
	GroupName string `json:"group_name"`
}
