package model

import "time"

// Submission 题目 / 章节提交 — 对应 submissions
// 章节被驳回后重新提交时原地更新：保留 submission_id，Cycle+1，历史评审意见保留
type Submission struct {
	SubmissionID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	GroupID       string     `gorm:"type:uuid;not null"                             json:"group_id"`
	Kind          string     `gorm:"type:varchar(10);not null"                      json:"kind"`           // title | chapter
	ChapterNumber *int       `gorm:"type:smallint"                                  json:"chapter_number"` // 仅 chapter，1-5
	Title         string     `gorm:"type:varchar(300);not null"                     json:"title"`
	Description   string     `gorm:"type:text"                                      json:"description,omitempty"`
	DocumentRef   *string    `gorm:"type:varchar(500)"                              json:"document_ref,omitempty"`
	Status        string     `gorm:"type:varchar(10);not null;default:'pending'"    json:"status"` // pending | approved | rejected
	Cycle         int        `gorm:"not null;default:1"                             json:"cycle"`
	SubmittedBy   string     `gorm:"type:uuid;not null"                             json:"submitted_by"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty"`
	RejectedBy    *string    `gorm:"type:uuid"                                      json:"rejected_by,omitempty"`
	RejectReason  string     `gorm:"type:varchar(500)"                              json:"reject_reason,omitempty"`
	VersionedModel

	// 关联
	Group *Group `gorm:"foreignKey:GroupID;references:GroupID" json:"group,omitempty"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// ReviewerAssignment 评审分配 — 对应 reviewer_assignments
// 停用即 is_active=false，不删除
type ReviewerAssignment struct {
	AssignmentID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	SubmissionID  string     `gorm:"type:uuid;not null"                             json:"submission_id"`
	ReviewerID    string     `gorm:"type:uuid;not null"                             json:"reviewer_id"`
	IsActive      bool       `gorm:"not null;default:true"                          json:"is_active"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	BaseModel

	Reviewer *User `gorm:"foreignKey:ReviewerID;references:UserID" json:"reviewer,omitempty"`
}

// TableName 指定表名
func (ReviewerAssignment) TableName() string { return "reviewer_assignments" }

// Review 评审意见 — 对应 reviews，(submission, reviewer, cycle) 唯一
type Review struct {
	ReviewID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"review_id"`
	SubmissionID string    `gorm:"type:uuid;not null"                             json:"submission_id"`
	ReviewerID   string    `gorm:"type:uuid;not null"                             json:"reviewer_id"`
	Cycle        int       `gorm:"not null;default:1"                             json:"cycle"`
	Decision     string    `gorm:"type:varchar(10);not null"                      json:"decision"` // approve | reject
	Comments     string    `gorm:"type:text"                                      json:"comments,omitempty"`
	ReviewedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"reviewed_at"`
	BaseModel
}

// TableName 指定表名
func (Review) TableName() string { return "reviews" }
