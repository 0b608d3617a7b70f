package model

// Group 研究小组 — 对应 research_groups
type Group struct {
	GroupID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	LeadID    string  `gorm:"type:uuid;not null;uniqueIndex"                 json:"lead_id"`
	AdviserID *string `gorm:"type:uuid"                                      json:"adviser_id,omitempty"`
	College   string  `gorm:"type:varchar(100);not null"                     json:"college"`
	Program   string  `gorm:"type:varchar(100);not null"                     json:"program"`
	YearLevel int     `gorm:"type:smallint;not null"                         json:"year_level"`
	BaseModel

	// 关联
	Lead    *User `gorm:"foreignKey:LeadID;references:UserID"    json:"lead,omitempty"`
	Adviser *User `gorm:"foreignKey:AdviserID;references:UserID" json:"adviser,omitempty"`
}

// TableName 指定表名
func (Group) TableName() string { return "research_groups" }
