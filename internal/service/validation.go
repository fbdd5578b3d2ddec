package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"coursehub/internal/dto"
	"coursehub/internal/model"
	"coursehub/pkg/slug"
	"coursehub/pkg/validate"
)

// ── 表单校验 ──
// 每个函数返回 validate.Result：OK() 为真即通过，否则为字段错误列表

const (
	passwordMinLength = 8
	tagMaxLength      = 100
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// ValidateLogin 登录表单
func ValidateLogin(req *dto.LoginRequest) validate.Result {
	return validate.Struct(req)
}

// ValidateRegister 注册表单
func ValidateRegister(req *dto.RegisterRequest) validate.Result {
	res := validate.Struct(req)

	if req.Username != "" && !usernamePattern.MatchString(req.Username) {
		res.Add("username", "用户名只能包含字母、数字以及 @/./+/-/_ 字符")
	}
	if req.Password1 != "" && !res.Has("password1") {
		res.Merge(validatePassword(req.Password1, req.Username))
	}
	return res
}

func validatePassword(password, username string) validate.Result {
	var res validate.Result
	if utf8.RuneCountInString(password) < passwordMinLength {
		res.Add("password1", fmt.Sprintf("密码长度不能少于 %d 个字符", passwordMinLength))
	}
	if isAllDigits(password) {
		res.Add("password1", "密码不能全部为数字")
	}
	if username != "" && strings.EqualFold(password, username) {
		res.Add("password1", "密码与用户名过于相似")
	}
	return res
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateProfile 个人资料表单；username/email 只读
func ValidateProfile(req *dto.ProfileUpdateRequest, current *model.User) validate.Result {
	res := validate.Struct(req)
	if req.Username != nil && *req.Username != current.Username {
		res.Add("username", "用户名不可修改")
	}
	if req.Email != nil && *req.Email != current.Email {
		res.Add("email", "邮箱不可修改")
	}
	return res
}

// ValidateUserInfo 用户扩展资料表单
func ValidateUserInfo(req *dto.UserInfoRequest) validate.Result {
	return validate.Struct(req)
}

// ValidateCourse 课程表单：标题、价格区间、标签长度
func ValidateCourse(req *dto.CourseRequest) validate.Result {
	res := validate.Struct(req)

	if req.Price != nil && (*req.Price < model.CoursePriceMin || *req.Price > model.CoursePriceMax) {
		res.Add("price", fmt.Sprintf("价格必须在 %d 到 %d 之间", model.CoursePriceMin, model.CoursePriceMax))
	}
	if !res.Has("title") && slug.Make(req.Title) == "" {
		res.Add("title", "标题至少需要包含一个字母或数字")
	}
	for _, name := range ParseTagNames(req.Tags) {
		if utf8.RuneCountInString(name) > tagMaxLength {
			res.Add("tags", fmt.Sprintf("单个标签长度不能超过 %d 个字符", tagMaxLength))
			break
		}
	}
	return res
}

// ValidateComment 评论表单
func ValidateComment(req *dto.CommentRequest) validate.Result {
	req.Text = strings.TrimSpace(req.Text)
	return validate.Struct(req)
}

// ValidateCategory 分类表单
func ValidateCategory(req *dto.CategoryRequest) validate.Result {
	req.Name = strings.TrimSpace(req.Name)
	return validate.Struct(req)
}

// ParseTagNames 解析标签串：含逗号时按逗号分隔，否则按空白分隔；
// 去空白、按 slug 去重，保持输入顺序
func ParseTagNames(raw string) []string {
	var parts []string
	if strings.Contains(raw, ",") {
		parts = strings.Split(raw, ",")
	} else {
		parts = strings.Fields(raw)
	}

	var names []string
	seen := make(map[string]bool)
	for _, part := range parts {
		name := strings.TrimSpace(strings.Trim(strings.TrimSpace(part), `"`))
		if name == "" {
			continue
		}
		key := slug.Make(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, name)
	}
	return names
}
