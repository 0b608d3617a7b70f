package dto

// ── 讨论区模块 DTO ──

// PostMessageRequest 发表讨论消息
type PostMessageRequest struct {
	Body          string  `json:"body"           binding:"required,min=1,max=10000"`
	AttachmentRef *string `json:"attachment_ref" binding:"omitempty,max=500"`
}

// AddParticipantRequest 追加讨论区成员（小组成员之外的评审 / 共同指导教师）
type AddParticipantRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role"    binding:"required,oneof=adviser panel"`
}

// ParticipantResponse 讨论区成员
type ParticipantResponse struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

// ThreadResponse 讨论区信息
type ThreadResponse struct {
	ID                string                `json:"id"`
	GroupID           string                `json:"group_id"`
	TitleSubmissionID string                `json:"title_submission_id"`
	Participants      []ParticipantResponse `json:"participants"`
	CreatedAt         string                `json:"created_at"`
}

// MessageResponse 讨论消息
type MessageResponse struct {
	ID            string `json:"id"`
	ThreadID      string `json:"thread_id"`
	AuthorID      string `json:"author_id"`
	Body          string `json:"body"`
	AttachmentRef string `json:"attachment_ref,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// MessageListRequest 消息分页
type MessageListRequest struct {
	PaginationRequest
}
