package model

// User 用户目录 — 对应 users
// 由外部身份系统维护，本服务只读，用于姓名展示与邮件地址查询
type User struct {
	UserID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name   string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email  string `gorm:"type:varchar(255);not null"                     json:"email"`
	Role   string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"` // student | adviser | panel | admin
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
