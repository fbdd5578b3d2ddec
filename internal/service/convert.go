package service

import (
	"fmt"
	"net/url"
	"time"

	"coursehub/internal/dto"
	"coursehub/internal/model"
)

// ── model → dto 转换 ──

// CourseURL 课程详情页地址 /<slug>/<id>
func CourseURL(slug string, id int64) string {
	return fmt.Sprintf("/%s/%d", url.PathEscape(slug), id)
}

func imageURL(images ImageStorage, rel string) string {
	if images == nil || rel == "" {
		return rel
	}
	return images.URL(rel)
}

func toUserResponse(u *model.User, images ImageStorage) dto.UserResponse {
	resp := dto.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Image:     imageURL(images, u.Image),
		IsStaff:   u.IsStaff,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if u.LastLogin != nil {
		s := u.LastLogin.Format(time.RFC3339)
		resp.LastLogin = &s
	}
	return resp
}

func toUserBrief(u *model.User, images ImageStorage) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.ID, Username: u.Username, Image: imageURL(images, u.Image)}
}

func toUserInfoResponse(info *model.UserInfo, images ImageStorage) *dto.UserInfoResponse {
	return &dto.UserInfoResponse{
		ID:        info.ID,
		UserID:    info.UserID,
		Name:      info.Name,
		Bio:       info.Bio,
		Avatar:    imageURL(images, info.Avatar),
		IsTeacher: info.IsTeacher,
	}
}

func toTagResponse(t *model.Tag) dto.TagResponse {
	return dto.TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
}

func toCategoryResponse(c *model.Category) dto.CategoryResponse {
	return dto.CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

func toCourseResponse(c *model.Course, images ImageStorage) dto.CourseResponse {
	resp := dto.CourseResponse{
		ID:         c.ID,
		Title:      c.Title,
		Slug:       c.Slug,
		Text:       c.Text,
		Price:      c.Price,
		Image:      imageURL(images, c.Image),
		URL:        CourseURL(c.Slug, c.ID),
		CreatedOn:  c.CreatedOn.Format("2006-01-02"),
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
		Owner:      toUserBrief(c.User, images),
		Tags:       make([]dto.TagResponse, 0, len(c.Tags)),
		Categories: make([]dto.CategoryResponse, 0, len(c.Categories)),
	}
	for i := range c.Tags {
		resp.Tags = append(resp.Tags, toTagResponse(&c.Tags[i]))
	}
	for i := range c.Categories {
		resp.Categories = append(resp.Categories, toCategoryResponse(&c.Categories[i]))
	}
	return resp
}

func toCommentResponse(c *model.Comment, images ImageStorage) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        c.ID,
		CourseID:  c.CourseID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		User:      toUserBrief(c.User, images),
	}
}

func toStarResponses(stars []model.RatingStar) []dto.RatingStarResponse {
	out := make([]dto.RatingStarResponse, 0, len(stars))
	for _, s := range stars {
		out = append(out, dto.RatingStarResponse{ID: s.ID, Value: s.Value})
	}
	return out
}

func pageMeta(total int64, page, pageSize int) dto.PageMeta {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return dto.PageMeta{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}
