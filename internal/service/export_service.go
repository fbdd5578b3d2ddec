package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"coursehub/internal/model"
	"coursehub/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

// FeedSize 日历订阅中包含的最新课程数
const FeedSize = 50

// ExportService 导出业务接口
//
// 设计说明：
//   - 工作人员导出全部课程为 Excel (.xlsx)
//   - 公开的 iCalendar 订阅按发布日期列出最新课程
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportCourses 导出课程目录为 Excel
	ExportCourses(ctx context.Context) (*bytes.Buffer, string, error)
	// CourseFeed 最新课程的 iCalendar 订阅
	CourseFeed(ctx context.Context) (string, error)
}

type exportService struct {
	repo    *repository.Repository
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService 创建 ExportService 实例；baseURL 用于生成课程绝对地址
func NewExportService(repo *repository.Repository, baseURL string, logger *zap.Logger) ExportService {
	return &exportService{
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

var courseSheetHeaders = []string{"ID", "标题", "Slug", "作者", "价格", "标签", "分类", "发布日期", "链接"}

// ═══════════════════════════════════════════════════════════
// ExportCourses 导出课程目录为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "课程"，第 1 行为表头
//   - 每门课程一行，按 ID 升序
//   - 未定价的课程价格列留空
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportCourses(ctx context.Context) (*bytes.Buffer, string, error) {
	courses, err := s.repo.Course.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课程"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "C", 30)
	f.SetColWidth(sheetName, "D", "E", 14)
	f.SetColWidth(sheetName, "F", "G", 28)
	f.SetColWidth(sheetName, "H", "H", 14)
	f.SetColWidth(sheetName, "I", "I", 48)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range courseSheetHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(courseSheetHeaders)-1), 1), headerStyle)

	row := 2
	for i := range courses {
		c := &courses[i]
		values := []interface{}{
			c.ID,
			c.Title,
			c.Slug,
			ownerName(c),
			"",
			tagNames(c.Tags),
			categoryNames(c.Categories),
			c.CreatedOn.Format("2006-01-02"),
			s.baseURL + CourseURL(c.Slug, c.ID),
		}
		if c.Price != nil {
			values[4] = *c.Price
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("courses_%s.xlsx", s.now().Format("20060102"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// CourseFeed 最新课程订阅
// ═══════════════════════════════════════════════════════════
//
// 每门课程对应一个 VEVENT：UID 为 course-<id>@coursehub，
// DTSTART 为创建时间，URL 指向课程详情页。

func (s *exportService) CourseFeed(ctx context.Context) (string, error) {
	courses, err := s.repo.Course.ListRecent(ctx, FeedSize)
	if err != nil {
		s.logger.Error("查询最新课程失败", zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//coursehub//courses//ZH")
	cal.SetXWRCalName("coursehub 新课程")

	stamp := s.now().UTC()
	for i := range courses {
		c := &courses[i]
		event := cal.AddEvent(fmt.Sprintf("course-%d@coursehub", c.ID))
		event.SetDtStampTime(stamp)
		event.SetCreatedTime(c.CreatedAt.UTC())
		event.SetModifiedAt(c.UpdatedAt.UTC())
		event.SetStartAt(c.CreatedAt.UTC())
		event.SetEndAt(c.CreatedAt.UTC().Add(time.Hour))
		event.SetSummary(c.Title)
		event.SetDescription(feedDescription(c))
		event.SetURL(s.baseURL + CourseURL(c.Slug, c.ID))
	}

	return cal.Serialize(), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func ownerName(c *model.Course) string {
	if c.User == nil {
		return ""
	}
	return c.User.Username
}

func tagNames(tags []model.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func categoryNames(categories []model.Category) string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return strings.Join(names, ", ")
}

func feedDescription(c *model.Course) string {
	text := []rune(c.Text)
	if len(text) > 200 {
		text = append(text[:200], '…')
	}
	if owner := ownerName(c); owner != "" {
		return owner + ": " + string(text)
	}
	return string(text)
}
