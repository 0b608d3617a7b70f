package workflow

import "errors"

// Code 流程错误类型，调用方据此分支而不必匹配字符串
type Code string

const (
	CodeDuplicateActiveSubmission Code = "duplicate_active_submission"
	CodeChapterLocked             Code = "chapter_locked"
	CodeChapterFinalized          Code = "chapter_finalized"
	CodeNotAssigned               Code = "not_assigned"
	CodeAlreadyTerminal           Code = "already_terminal"
	CodeGroupNotFound             Code = "group_not_found"
	CodeInvalidChapterNumber      Code = "invalid_chapter_number"
	CodeStorageConflict           Code = "storage_conflict"

	CodeSubmissionNotFound Code = "submission_not_found"
	CodeAssignmentNotFound Code = "assignment_not_found"
	CodeAssignmentExists   Code = "assignment_exists"
	CodeInvalidDecision    Code = "invalid_decision"
	CodeGroupExists        Code = "group_exists"
	CodeDiscussionLocked   Code = "discussion_locked"
	CodeThreadNotFound     Code = "thread_not_found"
	CodeNotParticipant     Code = "not_participant"
	CodeTitleNotApproved   Code = "title_not_approved"
)

// Error 带类型的流程错误
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is 按 Code 匹配，使 errors.Is(err, ErrChapterLocked) 对包装后的错误同样成立
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrDuplicateActiveSubmission = &Error{CodeDuplicateActiveSubmission, "已有审阅中的同类提交"}
	ErrChapterLocked             = &Error{CodeChapterLocked, "章节尚未解锁"}
	ErrChapterFinalized          = &Error{CodeChapterFinalized, "章节已通过或正在审阅，不可重新提交"}
	ErrNotAssigned               = &Error{CodeNotAssigned, "未被分配为该提交的评审人"}
	ErrAlreadyTerminal           = &Error{CodeAlreadyTerminal, "该提交本轮审阅已结束"}
	ErrGroupNotFound             = &Error{CodeGroupNotFound, "小组不存在"}
	ErrInvalidChapterNumber      = &Error{CodeInvalidChapterNumber, "章节号必须在 1-5 之间"}
	ErrStorageConflict           = &Error{CodeStorageConflict, "并发写入冲突，请重试"}

	ErrSubmissionNotFound = &Error{CodeSubmissionNotFound, "提交不存在"}
	ErrAssignmentNotFound = &Error{CodeAssignmentNotFound, "评审分配不存在"}
	ErrAssignmentExists   = &Error{CodeAssignmentExists, "该评审人已在评审组中"}
	ErrInvalidDecision    = &Error{CodeInvalidDecision, "评审意见只能是 approve 或 reject"}
	ErrGroupExists        = &Error{CodeGroupExists, "该学生已创建小组"}
	ErrDiscussionLocked   = &Error{CodeDiscussionLocked, "第三章通过后才开放讨论区"}
	ErrThreadNotFound     = &Error{CodeThreadNotFound, "讨论区不存在"}
	ErrNotParticipant     = &Error{CodeNotParticipant, "不是讨论区成员"}
	ErrTitleNotApproved   = &Error{CodeTitleNotApproved, "小组尚无已通过的题目"}
)

// CodeOf 取出错误链中的流程错误类型，非流程错误返回空串
func CodeOf(err error) Code {
	var we *Error
	if errors.As(err, &we) {
		return we.Code
	}
	return ""
}
