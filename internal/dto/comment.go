package dto

// CommentRequest 评论表单
type CommentRequest struct {
	Text string `json:"text" form:"text" validate:"required"`
}

// CommentResponse 评论
type CommentResponse struct {
	ID        int64      `json:"id"`
	CourseID  int64      `json:"course_id"`
	Text      string     `json:"text"`
	CreatedAt string     `json:"created_at"`
	User      *UserBrief `json:"user,omitempty"`
}

// CommentMutationResponse 评论写操作结果
type CommentMutationResponse struct {
	Comment    *CommentResponse `json:"comment,omitempty"`
	RedirectTo string           `json:"redirect_to"`
}

// CommentFormResponse 评论编辑/删除确认页
type CommentFormResponse struct {
	Comment  CommentResponse `json:"comment"`
	Slug     string          `json:"slug"`
	CourseID int64           `json:"course_id"`
}

// ── 评分 ──

// RatingRequest 评分提交；字段名与页面表单一致
type RatingRequest struct {
	Course int64 `json:"course" form:"course"`
	Star   int64 `json:"star"   form:"star"`
}

// RatingStarResponse 星级
type RatingStarResponse struct {
	ID    int64 `json:"id"`
	Value int16 `json:"value"`
}

// RatingSummaryResponse 课程评分汇总
type RatingSummaryResponse struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
	MyStar  *int16  `json:"my_star"`
}
