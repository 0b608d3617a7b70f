package service

import (
	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/model"
	"research-approval/backend/internal/workflow"
)

// ── Model → DTO 转换 ──

func toGroupResponse(g *model.Group) *dto.GroupResponse {
	resp := &dto.GroupResponse{
		ID:        g.GroupID,
		LeadID:    g.LeadID,
		College:   g.College,
		Program:   g.Program,
		YearLevel: g.YearLevel,
		CreatedAt: dto.FormatTime(g.CreatedAt),
	}
	if g.Lead != nil {
		resp.LeadName = g.Lead.Name
	}
	if g.AdviserID != nil {
		resp.AdviserID = *g.AdviserID
	}
	if g.Adviser != nil {
		resp.AdviserName = g.Adviser.Name
	}
	return resp
}

func toSubmissionResponse(sub *model.Submission, tally *workflow.Tally) *dto.SubmissionResponse {
	resp := &dto.SubmissionResponse{
		ID:            sub.SubmissionID,
		GroupID:       sub.GroupID,
		Kind:          sub.Kind,
		ChapterNumber: sub.ChapterNumber,
		Title:         sub.Title,
		Description:   sub.Description,
		Status:        sub.Status,
		Cycle:         sub.Cycle,
		SubmittedBy:   sub.SubmittedBy,
		ApprovedAt:    dto.FormatTimePtr(sub.ApprovedAt),
		RejectedAt:    dto.FormatTimePtr(sub.RejectedAt),
		RejectReason:  sub.RejectReason,
		Tally:         tally,
		CreatedAt:     dto.FormatTime(sub.CreatedAt),
		UpdatedAt:     dto.FormatTime(sub.UpdatedAt),
	}
	if sub.DocumentRef != nil {
		resp.DocumentRef = *sub.DocumentRef
	}
	return resp
}

func toReviewResponse(r *model.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:           r.ReviewID,
		SubmissionID: r.SubmissionID,
		ReviewerID:   r.ReviewerID,
		Cycle:        r.Cycle,
		Decision:     r.Decision,
		Comments:     r.Comments,
		ReviewedAt:   dto.FormatTime(r.ReviewedAt),
	}
}

func toAssignmentResponse(a *model.ReviewerAssignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:            a.AssignmentID,
		SubmissionID:  a.SubmissionID,
		ReviewerID:    a.ReviewerID,
		IsActive:      a.IsActive,
		DeactivatedAt: dto.FormatTimePtr(a.DeactivatedAt),
		CreatedAt:     dto.FormatTime(a.CreatedAt),
	}
	if a.Reviewer != nil {
		resp.ReviewerName = a.Reviewer.Name
	}
	return resp
}

func toThreadResponse(t *model.DiscussionThread) *dto.ThreadResponse {
	resp := &dto.ThreadResponse{
		ID:                t.ThreadID,
		GroupID:           t.GroupID,
		TitleSubmissionID: t.TitleSubmissionID,
		Participants:      make([]dto.ParticipantResponse, 0, len(t.Participants)),
		CreatedAt:         dto.FormatTime(t.CreatedAt),
	}
	for _, p := range t.Participants {
		resp.Participants = append(resp.Participants, dto.ParticipantResponse{
			UserID:   p.UserID,
			Role:     p.Role,
			JoinedAt: dto.FormatTime(p.JoinedAt),
		})
	}
	return resp
}

func toMessageResponse(m *model.DiscussionMessage) dto.MessageResponse {
	resp := dto.MessageResponse{
		ID:        m.MessageID,
		ThreadID:  m.ThreadID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		CreatedAt: dto.FormatTime(m.CreatedAt),
	}
	if m.AttachmentRef != nil {
		resp.AttachmentRef = *m.AttachmentRef
	}
	return resp
}

func toNotificationResponse(n *model.Notification) dto.NotificationResponse {
	resp := dto.NotificationResponse{
		ID:        n.NotificationID,
		Type:      n.Type,
		Title:     n.Title,
		Content:   n.Content,
		IsRead:    n.IsRead,
		CreatedAt: dto.FormatTime(n.CreatedAt),
	}
	if n.RelatedType != nil {
		resp.RelatedType = *n.RelatedType
	}
	if n.RelatedID != nil {
		resp.RelatedID = *n.RelatedID
	}
	return resp
}
