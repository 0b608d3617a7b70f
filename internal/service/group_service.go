package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/model"
	"research-approval/backend/internal/repository"
	"research-approval/backend/internal/workflow"
)

// ── 小组模块业务错误 ──

var ErrUserNotFound = errors.New("用户不存在")

// GroupService 研究小组
// 一名学生只能作为组长创建一个小组
type GroupService interface {
	Create(ctx context.Context, leadID string, req *dto.CreateGroupRequest) (*dto.GroupResponse, error)
	Get(ctx context.Context, groupID string) (*dto.GroupResponse, error)
	GetByLead(ctx context.Context, leadID string) (*dto.GroupResponse, error)
	List(ctx context.Context, college string) ([]dto.GroupResponse, error)
}

type groupService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewGroupService 创建 GroupService 实例
func NewGroupService(repo *repository.Repository, logger *zap.Logger) GroupService {
	return &groupService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *groupService) Create(ctx context.Context, leadID string, req *dto.CreateGroupRequest) (*dto.GroupResponse, error) {
	_, err := s.repo.Group.GetByLead(ctx, leadID)
	if err == nil {
		return nil, workflow.ErrGroupExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询小组失败", zap.String("lead_id", leadID), zap.Error(err))
		return nil, err
	}

	if req.AdviserID != nil {
		if _, err := s.repo.User.GetByID(ctx, *req.AdviserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			s.logger.Error("查询指导教师失败", zap.Error(err))
			return nil, err
		}
	}

	group := &model.Group{
		LeadID:    leadID,
		AdviserID: req.AdviserID,
		College:   req.College,
		Program:   req.Program,
		YearLevel: req.YearLevel,
	}
	group.CreatedBy = &leadID
	group.UpdatedBy = &leadID

	if err := s.repo.Group.Create(ctx, group); err != nil {
		// lead_id 唯一约束兜底并发创建
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, workflow.ErrGroupExists
		}
		s.logger.Error("创建小组失败", zap.String("lead_id", leadID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("小组已创建",
		zap.String("group_id", group.GroupID),
		zap.String("lead_id", leadID),
	)
	return s.Get(ctx, group.GroupID)
}

// ────────────────────── Get ──────────────────────

func (s *groupService) Get(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	group, err := loadGroup(ctx, s.repo, groupID)
	if err != nil {
		if !errors.Is(err, workflow.ErrGroupNotFound) {
			s.logger.Error("查询小组失败", zap.String("group_id", groupID), zap.Error(err))
		}
		return nil, err
	}
	return toGroupResponse(group), nil
}

func (s *groupService) GetByLead(ctx context.Context, leadID string) (*dto.GroupResponse, error) {
	group, err := s.repo.Group.GetByLead(ctx, leadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrGroupNotFound
		}
		s.logger.Error("查询小组失败", zap.String("lead_id", leadID), zap.Error(err))
		return nil, err
	}
	return toGroupResponse(group), nil
}

// ────────────────────── List ──────────────────────

func (s *groupService) List(ctx context.Context, college string) ([]dto.GroupResponse, error) {
	groups, err := s.repo.Group.List(ctx, college)
	if err != nil {
		s.logger.Error("查询小组列表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.GroupResponse, 0, len(groups))
	for i := range groups {
		result = append(result, *toGroupResponse(&groups[i]))
	}
	return result, nil
}
