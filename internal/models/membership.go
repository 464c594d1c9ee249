package models

// Membership 用户与群组的关联表，(username, group_id) 联合主键
type Membership struct {
	Username string `gorm:"primaryKey;size:50" json:"username"`
	GroupID  uint   `gorm:"primaryKey;autoIncrement:false;index" json:"group_id"`
}

func (Membership) TableName() string {
	return "memberships"
}

// MemberDetail is one row of a group's member list.
type MemberDetail struct {
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	IsAuthenticated bool   `json:"is_authenticated"`
}
