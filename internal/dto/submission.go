package dto

import "research-approval/backend/internal/workflow"

// ── 提交模块 DTO ──

// CreateTitleRequest 提交题目
type CreateTitleRequest struct {
	Title       string  `json:"title"        binding:"required,min=2,max=300"`
	Description string  `json:"description"  binding:"omitempty,max=5000"`
	DocumentRef *string `json:"document_ref" binding:"omitempty,max=500"`
}

// SubmitChapterRequest 新建或重新提交章节，文档为必填
type SubmitChapterRequest struct {
	Title       string `json:"title"        binding:"omitempty,max=300"`
	Description string `json:"description"  binding:"omitempty,max=5000"`
	DocumentRef string `json:"document_ref" binding:"required,max=500"`
}

// RecordReviewRequest 评审意见
type RecordReviewRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject"`
	Comments string `json:"comments" binding:"omitempty,max=5000"`
}

// RejectSubmissionRequest 管理员驳回
type RejectSubmissionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// AssignReviewerRequest 分配评审人
type AssignReviewerRequest struct {
	ReviewerID string `json:"reviewer_id" binding:"required,uuid"`
}

// SubmissionResponse 提交信息
type SubmissionResponse struct {
	ID            string          `json:"id"`
	GroupID       string          `json:"group_id"`
	Kind          string          `json:"kind"`
	ChapterNumber *int            `json:"chapter_number,omitempty"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	DocumentRef   string          `json:"document_ref,omitempty"`
	Status        string          `json:"status"`
	Cycle         int             `json:"cycle"`
	SubmittedBy   string          `json:"submitted_by"`
	ApprovedAt    string          `json:"approved_at,omitempty"`
	RejectedAt    string          `json:"rejected_at,omitempty"`
	RejectReason  string          `json:"reject_reason,omitempty"`
	Tally         *workflow.Tally `json:"tally,omitempty"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

// ReviewResponse 评审意见
type ReviewResponse struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	ReviewerID   string `json:"reviewer_id"`
	Cycle        int    `json:"cycle"`
	Decision     string `json:"decision"`
	Comments     string `json:"comments,omitempty"`
	ReviewedAt   string `json:"reviewed_at"`
}

// ReviewOutcomeResponse 记录评审后的结果
type ReviewOutcomeResponse struct {
	Review       ReviewResponse     `json:"review"`
	Submission   SubmissionResponse `json:"submission"`
	Transitioned bool               `json:"transitioned"` // 本次评审是否触发了通过
}

// AssignmentResponse 评审分配信息
type AssignmentResponse struct {
	ID            string `json:"id"`
	SubmissionID  string `json:"submission_id"`
	ReviewerID    string `json:"reviewer_id"`
	ReviewerName  string `json:"reviewer_name,omitempty"`
	IsActive      bool   `json:"is_active"`
	DeactivatedAt string `json:"deactivated_at,omitempty"`
	CreatedAt     string `json:"created_at"`
}
