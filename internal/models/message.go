package models

import "time"

// MaxMessageLength is counted in characters, not bytes.
const MaxMessageLength = 2000

// Message 消息模型，ID 由 snowflake 生成
type Message struct {
	MessageID      int64     `gorm:"primaryKey;autoIncrement:false" json:"message_id"`
	Content        string    `gorm:"size:2000;not null" json:"message_content"`
	SenderUsername string    `gorm:"size:50;not null;index" json:"sender_username"`
	GroupID        uint      `gorm:"not null;index:idx_messages_history,priority:1" json:"group_id"`
	SentAt         time.Time `gorm:"not null;index:idx_messages_history,priority:2" json:"sent_at"`
}

func (Message) TableName() string {
	return "messages"
}

// MessageView is a message annotated with the sender's display name.
type MessageView struct {
	Message
	SenderDisplayName string `json:"sender_display_name"`
}
