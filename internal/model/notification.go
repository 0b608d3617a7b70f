package model

import (
	"time"

	"gorm.io/datatypes"
)

// Notification 站内通知 — 对应 notifications
type Notification struct {
	NotificationID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string         `gorm:"type:uuid;not null"                             json:"user_id"`
	Type           string         `gorm:"type:varchar(50);not null"                      json:"type"`
	Title          string         `gorm:"type:varchar(200);not null"                     json:"title"`
	Content        string         `gorm:"type:text;not null"                             json:"content"`
	IsRead         bool           `gorm:"not null;default:false"                         json:"is_read"`
	RelatedType    *string        `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // submission | discussion
	RelatedID      *string        `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	Payload        datatypes.JSON `gorm:"type:jsonb"                                     json:"payload,omitempty"`
	CreatedAt      time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }
