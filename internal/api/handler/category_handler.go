package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"coursehub/internal/dto"
	"coursehub/internal/service"
	"coursehub/pkg/response"
)

// CategoryHandler 分类模块 HTTP 处理器
type CategoryHandler struct {
	categorySvc service.CategoryService
}

// NewCategoryHandler 创建 CategoryHandler
func NewCategoryHandler(categorySvc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categorySvc: categorySvc}
}

// List 分类列表
// GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	list, err := h.categorySvc.List(c.Request.Context())
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}
	response.OK(c, list)
}

// Create 新建分类
// POST /admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	category, err := h.categorySvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}
	response.Created(c, category)
}

// Update 修改分类
// PUT /admin/categories/:id
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 16001, "分类不存在")
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	category, err := h.categorySvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleCategoryError(c, err)
		return
	}
	response.OK(c, category)
}

// Delete 删除分类
// DELETE /admin/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id", 16001, "分类不存在")
	if !ok {
		return
	}

	if err := h.categorySvc.Delete(c.Request.Context(), id); err != nil {
		h.handleCategoryError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *CategoryHandler) handleCategoryError(c *gin.Context, err error) {
	if renderValidation(c, err) {
		return
	}
	if errors.Is(err, service.ErrCategoryNotFound) {
		response.NotFound(c, 16001, "分类不存在")
		return
	}
	response.InternalError(c)
}
