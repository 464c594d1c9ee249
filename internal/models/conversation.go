package models

import "time"

// GroupPreview 会话列表中的一项；群里没有消息时 Last* 为 nil
type GroupPreview struct {
	GroupID               uint       `json:"group_id"`
	GroupName             string     `json:"group_name"`
	HasMessages           bool       `json:"has_messages"`
	LastSenderDisplayName *string    `json:"last_sender_display_name"`
	LastMessageContent    *string    `json:"last_message_content"`
	LastMessageDate       *time.Time `json:"last_message_date"`
}

// GroupSummary 群组概要
type GroupSummary struct {
	GroupID     uint      `json:"group_id"`
	GroupName   string    `json:"group_name"`
	CreatedAt   time.Time `json:"created_at"`
	MemberCount int64     `json:"member_count"`
	OnlineCount int64     `json:"online_count"`
}

// Stats holds table totals.
type Stats struct {
	Users    int64 `json:"users"`
	Groups   int64 `json:"groups"`
	Messages int64 `json:"messages"`
	Invites  int64 `json:"invites"`
}
