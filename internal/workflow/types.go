// Package workflow 论文审阅流程的纯规则层：评审法定人数、章节逐级解锁与讨论区解锁。
// 本包不访问存储，所有输入由 service 层在事务内装载后传入。
package workflow

// Status 提交状态
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid 是否为已知状态
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal approved / rejected 对当前这一轮审阅而言都是终态
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Kind 提交类型
type Kind string

const (
	KindTitle   Kind = "title"
	KindChapter Kind = "chapter"
)

// Decision 评审意见
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Valid 是否为已知评审意见
func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// ContextType 通知关联对象类型
type ContextType string

const (
	ContextSubmission ContextType = "submission"
	ContextDiscussion ContextType = "discussion"
)

// 讨论区参与者角色
const (
	ParticipantLead    = "lead"
	ParticipantAdviser = "adviser"
	ParticipantPanel   = "panel"
)

const (
	// ChapterCount 论文固定五章
	ChapterCount = 5
	// DiscussionChapter 该章通过后开放讨论区
	DiscussionChapter = 3
	// FallbackRequiredApprovals 尚未分配评审人时展示用的所需通过数
	FallbackRequiredApprovals = 3
)

// ValidChapter 章节号是否在 [1, ChapterCount]
func ValidChapter(n int) bool {
	return n >= 1 && n <= ChapterCount
}
