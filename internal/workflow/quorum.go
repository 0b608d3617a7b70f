package workflow

// Tally 一轮审阅的计票结果
type Tally struct {
	ActiveReviewers int `json:"active_reviewers"`
	Required        int `json:"required"`
	Approvals       int `json:"approvals"`
	Rejections      int `json:"rejections"`
}

// Met 是否达到法定通过数（无评审人时永远不满足）
func (t Tally) Met() bool {
	return t.ActiveReviewers > 0 && t.Approvals >= t.Required
}

// RequiredApprovals 严格多数：floor(n/2)+1
// n=0 时返回展示用的默认值，不参与判定
func RequiredApprovals(activeReviewers int) int {
	if activeReviewers <= 0 {
		return FallbackRequiredApprovals
	}
	return activeReviewers/2 + 1
}

// Count 按当前评审组与本轮意见计票
// 已停用评审人的意见照常计入，意见历史不可变
func Count(activeReviewers int, decisions []Decision) Tally {
	t := Tally{
		ActiveReviewers: activeReviewers,
		Required:        RequiredApprovals(activeReviewers),
	}
	for _, d := range decisions {
		switch d {
		case DecisionApprove:
			t.Approvals++
		case DecisionReject:
			t.Rejections++
		}
	}
	return t
}

// ComputeStatus 评审聚合：只会把 pending 提升为 approved
// 否决意见不会自动驳回，驳回是单独的管理操作；终态原样返回
func ComputeStatus(current Status, activeReviewers int, decisions []Decision) (Status, Tally) {
	t := Count(activeReviewers, decisions)
	if current != StatusPending {
		return current, t
	}
	if t.Met() {
		return StatusApproved, t
	}
	return StatusPending, t
}
