package dto

// ── 小组模块 DTO ──

// CreateGroupRequest 创建小组（由组长本人发起）
type CreateGroupRequest struct {
	AdviserID *string `json:"adviser_id" binding:"omitempty,uuid"`
	College   string  `json:"college"    binding:"required,max=100"`
	Program   string  `json:"program"    binding:"required,max=100"`
	YearLevel int     `json:"year_level" binding:"required,min=1,max=6"`
}

// GroupResponse 小组信息
type GroupResponse struct {
	ID          string `json:"id"`
	LeadID      string `json:"lead_id"`
	LeadName    string `json:"lead_name,omitempty"`
	AdviserID   string `json:"adviser_id,omitempty"`
	AdviserName string `json:"adviser_name,omitempty"`
	College     string `json:"college"`
	Program     string `json:"program"`
	YearLevel   int    `json:"year_level"`
	CreatedAt   string `json:"created_at"`
}

// ChapterProgress 单章进度
type ChapterProgress struct {
	Chapter      int    `json:"chapter"`
	SubmissionID string `json:"submission_id,omitempty"`
	Status       string `json:"status"` // not_submitted | pending | approved | rejected
	Accessible   bool   `json:"accessible"`
}

// ProgressResponse 小组整体进度
type ProgressResponse struct {
	GroupID            string            `json:"group_id"`
	TitleStatus        string            `json:"title_status"` // none | pending | approved | rejected
	ApprovedTitleID    string            `json:"approved_title_id,omitempty"`
	Chapters           []ChapterProgress `json:"chapters"`
	CurrentChapter     int               `json:"current_chapter"` // 全部通过时为 0
	AccessibleChapter  int               `json:"accessible_chapter"`
	Complete           bool              `json:"complete"`
	DiscussionUnlocked bool              `json:"discussion_unlocked"`
	DiscussionThreadID string            `json:"discussion_thread_id,omitempty"`
}

// ExportProgressRequest 导出进度表查询参数
type ExportProgressRequest struct {
	College string `form:"college"`
}
