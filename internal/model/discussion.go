package model

import "time"

// DiscussionThread 小组讨论区 — 对应 discussion_threads，每组至多一个
type DiscussionThread struct {
	ThreadID          string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"thread_id"`
	GroupID           string    `gorm:"type:uuid;not null;uniqueIndex"                 json:"group_id"`
	TitleSubmissionID string    `gorm:"type:uuid;not null"                             json:"title_submission_id"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Participants []DiscussionParticipant `gorm:"foreignKey:ThreadID" json:"participants,omitempty"`
}

func (DiscussionThread) TableName() string { return "discussion_threads" }

// DiscussionParticipant 讨论区成员
type DiscussionParticipant struct {
	ParticipantID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"participant_id"`
	ThreadID      string    `gorm:"type:uuid;not null"                             json:"thread_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Role          string    `gorm:"type:varchar(20);not null"                      json:"role"` // lead | adviser | panel
	JoinedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"joined_at"`
}

func (DiscussionParticipant) TableName() string { return "discussion_participants" }

// DiscussionMessage 讨论消息，只追加
type DiscussionMessage struct {
	MessageID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"message_id"`
	ThreadID      string    `gorm:"type:uuid;not null"                             json:"thread_id"`
	AuthorID      string    `gorm:"type:uuid;not null"                             json:"author_id"`
	Body          string    `gorm:"type:text;not null"                             json:"body"`
	AttachmentRef *string   `gorm:"type:varchar(500)"                              json:"attachment_ref,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (DiscussionMessage) TableName() string { return "discussion_messages" }
