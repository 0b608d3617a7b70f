package workflow

// History 小组的提交历史快照，由 service 层在同一事务内装载
type History struct {
	// TitleApproved 是否存在已通过的题目（以最近通过的一条为准）
	TitleApproved bool
	// Chapters 章节号 → 当前状态；缺失表示尚未提交
	Chapters map[int]Status
}

// ChapterStatus 返回章节状态及是否存在提交
func (h History) ChapterStatus(n int) (Status, bool) {
	if h.Chapters == nil {
		return "", false
	}
	s, ok := h.Chapters[n]
	return s, ok
}

func (h History) chapterApproved(n int) bool {
	s, ok := h.ChapterStatus(n)
	return ok && s == StatusApproved
}

// CanAccess 第 1 章要求已有通过的题目；第 i 章要求第 i-1 章已通过
func (h History) CanAccess(n int) bool {
	if !ValidChapter(n) {
		return false
	}
	if n == 1 {
		return h.TitleApproved
	}
	return h.chapterApproved(n - 1)
}

// CurrentChapter 依次检查 1..5，返回第一个未通过的章节
// 五章全部通过时 complete=true，此时没有「当前章节」
func (h History) CurrentChapter() (chapter int, complete bool) {
	for i := 1; i <= ChapterCount; i++ {
		if !h.chapterApproved(i) {
			return i, false
		}
	}
	return 0, true
}

// AccessibleChapter 用于跳转的章节号，取值 [1,5]
// 全部通过时返回最后一章；是否真正可提交仍以 CanAccess 为准
func (h History) AccessibleChapter() int {
	current, complete := h.CurrentChapter()
	if complete {
		return ChapterCount
	}
	return current
}

// CheckChapterSubmittable 新建或重新提交第 n 章前的校验，未通过时不得写入
func (h History) CheckChapterSubmittable(n int) error {
	if !ValidChapter(n) {
		return ErrInvalidChapterNumber
	}
	if !h.CanAccess(n) {
		return ErrChapterLocked
	}
	if s, ok := h.ChapterStatus(n); ok && s != StatusRejected {
		return ErrChapterFinalized
	}
	return nil
}

// DiscussionUnlocked 第三章通过即开放讨论区
// 只约束讨论区的创建，已创建的讨论区不因后续状态变化而关闭
func (h History) DiscussionUnlocked() bool {
	return h.chapterApproved(DiscussionChapter)
}
