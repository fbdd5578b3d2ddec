package service

import (
	"reflect"
	"strings"
	"testing"

	"coursehub/internal/dto"
	"coursehub/internal/model"
)

func TestParseTagNames(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"go, web", []string{"go", "web"}},
		{"go web", []string{"go", "web"}},
		{"machine learning, go", []string{"machine learning", "go"}},
		{`"data science",`, []string{"data science"}},
		{"Go, go, GO", []string{"Go"}},
		{" , ,", nil},
		{"", nil},
	}
	for _, tc := range cases {
		got := ParseTagNames(tc.in)
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("ParseTagNames(%q) = %v，期望 %v", tc.in, got, tc.want)
		}
	}
}

func TestValidateCourse_TagTooLong(t *testing.T) {
	res := ValidateCourse(&dto.CourseRequest{Title: "t", Text: "x", Tags: strings.Repeat("a", 101)})
	if !res.Has("tags") {
		t.Error("超长标签应报错")
	}
}

func TestValidateCourse_TitleTooLong(t *testing.T) {
	res := ValidateCourse(&dto.CourseRequest{Title: strings.Repeat("a", 51), Text: "x"})
	if !res.Has("title") {
		t.Error("标题超过 50 个字符应报错")
	}
}

func TestValidateProfile_UnchangedReadOnly(t *testing.T) {
	u := &model.User{Username: "alice", Email: "a@example.com"}
	username, email := "alice", "a@example.com"

	res := ValidateProfile(&dto.ProfileUpdateRequest{Username: &username, Email: &email, FirstName: "A"}, u)
	if !res.OK() {
		t.Errorf("未修改只读字段应通过: %v", res.Errors)
	}
}

func TestActor_CanModify(t *testing.T) {
	if !(Actor{UserID: 1}).CanModify(1) {
		t.Error("作者本人可修改")
	}
	if (Actor{UserID: 2}).CanModify(1) {
		t.Error("他人不可修改")
	}
	if !(Actor{UserID: 2, IsStaff: true}).CanModify(1) {
		t.Error("工作人员可修改")
	}
	if (Actor{}).CanModify(0) {
		t.Error("匿名用户不可修改")
	}
}

func TestCourseURL(t *testing.T) {
	if got := CourseURL("hello-world", 7); got != "/hello-world/7" {
		t.Errorf("CourseURL 不正确: %s", got)
	}
}
