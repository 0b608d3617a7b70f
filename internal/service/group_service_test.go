package service

import (
	"context"
	"errors"
	"testing"

	"research-approval/backend/internal/dto"
	"research-approval/backend/internal/workflow"
)

func TestGroupService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	adviser := testAdviserID

	g, err := f.svc.Group.Create(ctx, "panel-5", &dto.CreateGroupRequest{
		AdviserID: &adviser,
		College:   "理学院",
		Program:   "数学",
		YearLevel: 4,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if g.LeadID != "panel-5" || g.AdviserName != "指导教师" {
		t.Errorf("小组信息错误: %+v", g)
	}

	_, err = f.svc.Group.Create(ctx, "panel-5", &dto.CreateGroupRequest{College: "理学院", Program: "数学", YearLevel: 4})
	if !errors.Is(err, workflow.ErrGroupExists) {
		t.Errorf("同一组长重复创建期望 ErrGroupExists，实际: %v", err)
	}
}

func TestGroupService_Create_UnknownAdviser(t *testing.T) {
	f := newFixture(t)
	ghost := "ghost"

	_, err := f.svc.Group.Create(context.Background(), "panel-4", &dto.CreateGroupRequest{AdviserID: &ghost, College: "a", Program: "b", YearLevel: 1})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestGroupService_GetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	g, err := f.svc.Group.Get(ctx, testGroupID)
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if g.LeadName != "组长" {
		t.Errorf("期望组长姓名，实际=%s", g.LeadName)
	}

	mine, err := f.svc.Group.GetByLead(ctx, testLeadID)
	if err != nil || mine.ID != testGroupID {
		t.Errorf("GetByLead 错误: %v %+v", err, mine)
	}

	if _, err := f.svc.Group.Get(ctx, "missing"); !errors.Is(err, workflow.ErrGroupNotFound) {
		t.Errorf("期望 ErrGroupNotFound，实际: %v", err)
	}

	list, _ := f.svc.Group.List(ctx, "工学院")
	if len(list) != 1 {
		t.Errorf("期望 1 个小组，实际=%d", len(list))
	}
	list, _ = f.svc.Group.List(ctx, "文学院")
	if len(list) != 0 {
		t.Errorf("期望 0 个小组，实际=%d", len(list))
	}
}
