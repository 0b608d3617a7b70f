package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"research-approval/backend/internal/repository"
	"research-approval/backend/internal/workflow"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoGroups     = errors.New("没有可导出的小组")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出各小组的论文进度为 Excel (.xlsx)，每个小组一行
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportProgress college 为空时导出全部学院
	ExportProgress(ctx context.Context, college string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportProgress — 导出小组进度为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet「论文进度」
//   - 列：学院 | 专业 | 年级 | 组长 | 指导教师 | 题目 | 第1章 ~ 第5章 | 当前章节 | 讨论区
//   - 章节单元格：未提交 / 审阅中 / 已通过 / 已驳回
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

var statusLabels = map[string]string{
	"none":                          "未提交",
	"not_submitted":                 "未提交",
	string(workflow.StatusPending):  "审阅中",
	string(workflow.StatusApproved): "已通过",
	string(workflow.StatusRejected): "已驳回",
}

func (s *exportService) ExportProgress(ctx context.Context, college string) (*bytes.Buffer, string, error) {
	// 1. 查询小组
	groups, err := s.repo.Group.List(ctx, college)
	if err != nil {
		s.logger.Error("查询小组列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(groups) == 0 {
		return nil, "", ErrExportNoGroups
	}

	// 2. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "论文进度"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"学院", "专业", "年级", "组长", "指导教师", "题目"}
	for i := 1; i <= workflow.ChapterCount; i++ {
		headers = append(headers, fmt.Sprintf("第%d章", i))
	}
	headers = append(headers, "当前章节", "讨论区")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(sheetName, "A", "B", 22)
	f.SetColWidth(sheetName, "C", "C", 8)
	f.SetColWidth(sheetName, "D", "E", 14)
	f.SetColWidth(sheetName, colName(5), colName(len(headers)-1), 12)

	// 3. 数据行
	row := 2
	for i := range groups {
		g := &groups[i]
		snap, err := loadSnapshot(ctx, s.repo, g.GroupID)
		if err != nil {
			s.logger.Error("装载提交历史失败", zap.String("group_id", g.GroupID), zap.Error(err))
			return nil, "", err
		}

		titleStatus := "none"
		if snap.approvedTitle != nil {
			titleStatus = string(workflow.StatusApproved)
		} else if _, err := s.repo.Submission.FindPendingTitle(ctx, g.GroupID); err == nil {
			titleStatus = string(workflow.StatusPending)
		}
		progress := buildProgress(g.GroupID, titleStatus, snap)

		lead, adviser := g.LeadID, "-"
		if g.Lead != nil {
			lead = g.Lead.Name
		}
		if g.Adviser != nil {
			adviser = g.Adviser.Name
		}

		values := []interface{}{g.College, g.Program, g.YearLevel, lead, adviser, statusLabels[progress.TitleStatus]}
		for _, ch := range progress.Chapters {
			values = append(values, statusLabels[ch.Status])
		}
		current := "已完成"
		if !progress.Complete {
			current = fmt.Sprintf("第%d章", progress.CurrentChapter)
		}
		discussion := "未开放"
		if progress.DiscussionUnlocked {
			discussion = "已开放"
		}
		values = append(values, current, discussion)

		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	scope := college
	if scope == "" {
		scope = "全部学院"
	}
	filename := fmt.Sprintf("论文进度_%s_%s.xlsx", scope, s.now().Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
