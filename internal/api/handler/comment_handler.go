package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"coursehub/internal/dto"
	"coursehub/internal/service"
	"coursehub/pkg/response"
)

// CommentHandler 评论模块 HTTP 处理器
type CommentHandler struct {
	commentSvc service.CommentService
}

// NewCommentHandler 创建 CommentHandler
func NewCommentHandler(commentSvc service.CommentService) *CommentHandler {
	return &CommentHandler{commentSvc: commentSvc}
}

// Create 发表评论，成功后回到课程详情
// POST /:slug/:id（由 CourseHandler.SubmitComment 转入）
func (h *CommentHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id", 13001, "课程不存在")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !bindRequest(c, &req) {
		return
	}

	result, err := h.commentSvc.Create(c.Request.Context(), c.Param("slug"), courseID, actor, &req)
	if err != nil {
		h.handleCommentError(c, err)
		return
	}

	response.Created(c, result)
}

// EditForm 评论编辑页
// GET /:slug/:id/comment/:comment_id/edit
func (h *CommentHandler) EditForm(c *gin.Context) {
	h.form(c)
}

// Update 修改评论
// POST /:slug/:id/comment/:comment_id/edit
func (h *CommentHandler) Update(c *gin.Context) {
	actor, courseID, commentID, ok := h.target(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !bindRequest(c, &req) {
		return
	}

	result, err := h.commentSvc.Update(c.Request.Context(), courseID, commentID, actor, &req)
	if err != nil {
		h.handleCommentError(c, err)
		return
	}

	response.OK(c, result)
}

// DeleteConfirm 评论删除确认页
// GET /:slug/:id/comment/:comment_id/delete
func (h *CommentHandler) DeleteConfirm(c *gin.Context) {
	h.form(c)
}

// Delete 删除评论
// POST /:slug/:id/comment/:comment_id/delete
func (h *CommentHandler) Delete(c *gin.Context) {
	actor, courseID, commentID, ok := h.target(c)
	if !ok {
		return
	}

	result, err := h.commentSvc.Delete(c.Request.Context(), courseID, commentID, actor)
	if err != nil {
		h.handleCommentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *CommentHandler) form(c *gin.Context) {
	actor, courseID, commentID, ok := h.target(c)
	if !ok {
		return
	}

	form, err := h.commentSvc.GetForEdit(c.Request.Context(), courseID, commentID, actor)
	if err != nil {
		h.handleCommentError(c, err)
		return
	}

	response.OK(c, form)
}

// target 解析操作者、课程 id 与评论 id
func (h *CommentHandler) target(c *gin.Context) (service.Actor, int64, int64, bool) {
	actor, ok := MustGetActor(c)
	if !ok {
		return actor, 0, 0, false
	}
	courseID, ok := parseIDParam(c, "id", 13001, "课程不存在")
	if !ok {
		return actor, 0, 0, false
	}
	commentID, ok := parseIDParam(c, "comment_id", 14001, "评论不存在")
	if !ok {
		return actor, 0, 0, false
	}
	return actor, courseID, commentID, true
}

func (h *CommentHandler) handleCommentError(c *gin.Context, err error) {
	if renderValidation(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13001, "课程不存在")
	case errors.Is(err, service.ErrCommentNotFound):
		response.NotFound(c, 14001, "评论不存在")
	case errors.Is(err, service.ErrNotOwner):
		response.Forbidden(c, 13002, "只有作者或工作人员可以修改该评论")
	default:
		response.InternalError(c)
	}
}
