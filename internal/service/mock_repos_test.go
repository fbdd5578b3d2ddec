package service

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"coursehub/internal/model"
	"coursehub/internal/repository"
	"coursehub/pkg/redis"
	"coursehub/pkg/storage"
)

// ── 内存数据集 ──
// 所有 mock 仓储共享一个 memStore，删除时的级联与真实外键一致

type memStore struct {
	users      map[int64]*model.User
	infos      map[int64]*model.UserInfo // key: user_id
	categories map[int64]*model.Category
	tags       map[int64]*model.Tag
	courses    map[int64]*model.Course
	comments   map[int64]*model.Comment
	ratings    map[int64]*model.Rating
	stars      map[int64]*model.RatingStar

	seq   int64
	clock time.Time

	// dupOnSave 大于 0 时，课程写入先返回 gorm.ErrDuplicatedKey 并递减，模拟并发抢占 slug
	dupOnSave int
}

func newMemStore() *memStore {
	s := &memStore{
		users:      make(map[int64]*model.User),
		infos:      make(map[int64]*model.UserInfo),
		categories: make(map[int64]*model.Category),
		tags:       make(map[int64]*model.Tag),
		courses:    make(map[int64]*model.Course),
		comments:   make(map[int64]*model.Comment),
		ratings:    make(map[int64]*model.Rating),
		stars:      make(map[int64]*model.RatingStar),
		clock:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	for v := int16(1); v <= 5; v++ {
		id := s.nextID()
		s.stars[id] = &model.RatingStar{ID: id, Value: v}
	}
	return s
}

func (s *memStore) nextID() int64 {
	s.seq++
	return s.seq
}

// tick 每次调用前进一秒，保证创建时间可排序
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) starByValue(v int16) *model.RatingStar {
	for _, st := range s.stars {
		if st.Value == v {
			return st
		}
	}
	return nil
}

func (s *memStore) deleteCourse(id int64) {
	for cid, c := range s.comments {
		if c.CourseID == id {
			delete(s.comments, cid)
		}
	}
	for rid, r := range s.ratings {
		if r.CourseID == id {
			delete(s.ratings, rid)
		}
	}
	delete(s.courses, id)
}

// newMockRepository 组装由内存 mock 构成的仓储聚合
func newMockRepository() (*repository.Repository, *memStore) {
	s := newMemStore()
	return &repository.Repository{
		User:       &mockUserRepo{s},
		UserInfo:   &mockUserInfoRepo{s},
		Category:   &mockCategoryRepo{s},
		Tag:        &mockTagRepo{s},
		Course:     &mockCourseRepo{s},
		Comment:    &mockCommentRepo{s},
		Rating:     &mockRatingRepo{s},
		RatingStar: &mockRatingStarRepo{s},
	}, s
}

// ── Mock UserRepository ──

type mockUserRepo struct{ s *memStore }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.s.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.s.nextID()
	user.CreatedAt = m.s.tick()
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	if u, ok := m.s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	cp := *user
	m.s.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	u, ok := m.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.LastLogin = &at
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	all := make([]model.User, 0, len(m.s.users))
	for _, u := range m.s.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].IsStaff != all[j].IsStaff {
			return all[i].IsStaff
		}
		return all[i].ID < all[j].ID
	})
	total := int64(len(all))
	if offset >= len(all) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id int64) ([]string, error) {
	if _, ok := m.s.users[id]; !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var images []string
	for cid, c := range m.s.courses {
		if c.UserID == id {
			if c.Image != "" {
				images = append(images, c.Image)
			}
			m.s.deleteCourse(cid)
		}
	}
	if info, ok := m.s.infos[id]; ok && info.Avatar != "" {
		images = append(images, info.Avatar)
	}
	for cid, c := range m.s.comments {
		if c.UserID == id {
			delete(m.s.comments, cid)
		}
	}
	for rid, r := range m.s.ratings {
		if r.UserID == id {
			delete(m.s.ratings, rid)
		}
	}
	delete(m.s.infos, id)
	delete(m.s.users, id)
	return images, nil
}

// ── Mock UserInfoRepository ──

type mockUserInfoRepo struct{ s *memStore }

func (m *mockUserInfoRepo) GetByUserID(_ context.Context, userID int64) (*model.UserInfo, error) {
	if info, ok := m.s.infos[userID]; ok {
		cp := *info
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserInfoRepo) Upsert(_ context.Context, info *model.UserInfo) error {
	if existing, ok := m.s.infos[info.UserID]; ok {
		info.ID = existing.ID
	} else {
		info.ID = m.s.nextID()
	}
	cp := *info
	m.s.infos[info.UserID] = &cp
	return nil
}

// ── Mock CategoryRepository ──

type mockCategoryRepo struct{ s *memStore }

func (m *mockCategoryRepo) Create(_ context.Context, category *model.Category) error {
	for _, c := range m.s.categories {
		if c.Name == category.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	category.ID = m.s.nextID()
	cp := *category
	m.s.categories[category.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) GetByID(_ context.Context, id int64) (*model.Category, error) {
	if c, ok := m.s.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	out := make([]model.Category, 0, len(m.s.categories))
	for _, c := range m.s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockCategoryRepo) ListByIDs(_ context.Context, ids []int64) ([]model.Category, error) {
	var out []model.Category
	for _, id := range ids {
		if c, ok := m.s.categories[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, category *model.Category) error {
	for _, c := range m.s.categories {
		if c.ID != category.ID && c.Name == category.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	cp := *category
	m.s.categories[category.ID] = &cp
	return nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.s.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.categories, id)
	for _, c := range m.s.courses {
		kept := c.Categories[:0]
		for _, cat := range c.Categories {
			if cat.ID != id {
				kept = append(kept, cat)
			}
		}
		c.Categories = kept
	}
	return nil
}

// ── Mock TagRepository ──

type mockTagRepo struct{ s *memStore }

func (m *mockTagRepo) GetOrCreate(_ context.Context, tags []model.Tag) ([]model.Tag, error) {
	out := make([]model.Tag, 0, len(tags))
	for _, want := range tags {
		var found *model.Tag
		for _, t := range m.s.tags {
			if t.Slug == want.Slug {
				found = t
				break
			}
		}
		if found == nil {
			found = &model.Tag{ID: m.s.nextID(), Name: want.Name, Slug: want.Slug}
			m.s.tags[found.ID] = found
		}
		out = append(out, *found)
	}
	return out, nil
}

func (m *mockTagRepo) GetBySlug(_ context.Context, slug string) (*model.Tag, error) {
	for _, t := range m.s.tags {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTagRepo) MostCommon(_ context.Context, limit int) ([]model.TagCount, error) {
	counts := make(map[int64]int64)
	for _, c := range m.s.courses {
		for _, t := range c.Tags {
			counts[t.ID]++
		}
	}
	out := make([]model.TagCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, model.TagCount{Tag: *m.s.tags[id], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct{ s *memStore }

func (m *mockCourseRepo) slugTaken(course *model.Course) bool {
	for _, c := range m.s.courses {
		if c.ID != course.ID && c.Slug == course.Slug && c.CreatedOn.Equal(course.CreatedOn) {
			return true
		}
	}
	return false
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if m.s.dupOnSave > 0 {
		m.s.dupOnSave--
		return gorm.ErrDuplicatedKey
	}
	if m.slugTaken(course) {
		return gorm.ErrDuplicatedKey
	}
	course.ID = m.s.nextID()
	course.CreatedAt = m.s.tick()
	course.UpdatedAt = course.CreatedAt
	cp := *course
	cp.User = nil
	m.s.courses[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) load(c *model.Course) model.Course {
	cp := *c
	if u, ok := m.s.users[c.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	cp.Tags = append([]model.Tag(nil), c.Tags...)
	cp.Categories = append([]model.Category(nil), c.Categories...)
	return cp
}

func (m *mockCourseRepo) GetByID(_ context.Context, id int64) (*model.Course, error) {
	if c, ok := m.s.courses[id]; ok {
		cp := m.load(c)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) sorted() []model.Course {
	out := make([]model.Course, 0, len(m.s.courses))
	for _, c := range m.s.courses {
		out = append(out, m.load(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *mockCourseRepo) List(_ context.Context, filter repository.CourseFilter, offset, limit int) ([]model.Course, int64, error) {
	var matched []model.Course
	for _, c := range m.sorted() {
		if filter.TagSlug != "" && !hasTag(c.Tags, filter.TagSlug) {
			continue
		}
		if filter.CategoryID > 0 && !hasCategory(c.Categories, filter.CategoryID) {
			continue
		}
		matched = append(matched, c)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []model.Course{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockCourseRepo) ListAll(_ context.Context) ([]model.Course, error) {
	out := m.sorted()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCourseRepo) ListRecent(_ context.Context, limit int) ([]model.Course, error) {
	out := m.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockCourseRepo) SlugsOnDate(_ context.Context, base string, day time.Time, excludeID int64) (map[string]bool, error) {
	taken := make(map[string]bool)
	for _, c := range m.s.courses {
		if c.ID == excludeID || !c.CreatedOn.Equal(day) {
			continue
		}
		if c.Slug == base || strings.HasPrefix(c.Slug, base+"-") {
			taken[c.Slug] = true
		}
	}
	return taken, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	if _, ok := m.s.courses[course.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if m.s.dupOnSave > 0 {
		m.s.dupOnSave--
		return gorm.ErrDuplicatedKey
	}
	if m.slugTaken(course) {
		return gorm.ErrDuplicatedKey
	}
	course.UpdatedAt = m.s.tick()
	cp := *course
	cp.User = nil
	m.s.courses[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.s.courses[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.s.deleteCourse(id)
	return nil
}

func hasTag(tags []model.Tag, slug string) bool {
	for _, t := range tags {
		if t.Slug == slug {
			return true
		}
	}
	return false
}

func hasCategory(categories []model.Category, id int64) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ── Mock CommentRepository ──

type mockCommentRepo struct{ s *memStore }

func (m *mockCommentRepo) Create(_ context.Context, comment *model.Comment) error {
	comment.ID = m.s.nextID()
	comment.CreatedAt = m.s.tick()
	cp := *comment
	m.s.comments[comment.ID] = &cp
	return nil
}

func (m *mockCommentRepo) GetByID(_ context.Context, id int64) (*model.Comment, error) {
	c, ok := m.s.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	if u, ok := m.s.users[c.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	return &cp, nil
}

func (m *mockCommentRepo) ListByCourse(ctx context.Context, courseID int64) ([]model.Comment, error) {
	var out []model.Comment
	for id, c := range m.s.comments {
		if c.CourseID == courseID {
			loaded, _ := m.GetByID(ctx, id)
			out = append(out, *loaded)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCommentRepo) Update(_ context.Context, comment *model.Comment) error {
	cp := *comment
	m.s.comments[comment.ID] = &cp
	return nil
}

func (m *mockCommentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.s.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.s.comments, id)
	return nil
}

// ── Mock RatingRepository ──

type mockRatingRepo struct{ s *memStore }

func (m *mockRatingRepo) Upsert(_ context.Context, rating *model.Rating) error {
	for _, r := range m.s.ratings {
		if r.CourseID == rating.CourseID && r.UserID == rating.UserID {
			r.StarID = rating.StarID
			rating.ID = r.ID
			return nil
		}
	}
	rating.ID = m.s.nextID()
	cp := *rating
	m.s.ratings[rating.ID] = &cp
	return nil
}

func (m *mockRatingRepo) GetByCourseAndUser(_ context.Context, courseID, userID int64) (*model.Rating, error) {
	for _, r := range m.s.ratings {
		if r.CourseID == courseID && r.UserID == userID {
			cp := *r
			if st, ok := m.s.stars[r.StarID]; ok {
				sc := *st
				cp.Star = &sc
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRatingRepo) Summary(_ context.Context, courseID int64) (*model.RatingSummary, error) {
	var sum, n int64
	for _, r := range m.s.ratings {
		if r.CourseID == courseID {
			sum += int64(m.s.stars[r.StarID].Value)
			n++
		}
	}
	out := &model.RatingSummary{Count: n}
	if n > 0 {
		out.Average = float64(sum) / float64(n)
	}
	return out, nil
}

// ── Mock RatingStarRepository ──

type mockRatingStarRepo struct{ s *memStore }

func (m *mockRatingStarRepo) List(_ context.Context) ([]model.RatingStar, error) {
	out := make([]model.RatingStar, 0, len(m.s.stars))
	for _, st := range m.s.stars {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out, nil
}

func (m *mockRatingStarRepo) GetByID(_ context.Context, id int64) (*model.RatingStar, error) {
	if st, ok := m.s.stars[id]; ok {
		cp := *st
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock 外部依赖 ──

type mockCache struct {
	data    map[string][]byte
	getErr  error
	gets    int
	sets    int
	deletes int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) GetJSON(_ context.Context, key string, dst interface{}) error {
	m.gets++
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(raw, dst)
}

func (m *mockCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.sets++
	m.data[key] = raw
	return nil
}

func (m *mockCache) Delete(_ context.Context, keys ...string) error {
	m.deletes++
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

type mockBlacklist struct {
	entries map[string]time.Duration
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.entries == nil {
		m.entries = make(map[string]time.Duration)
	}
	m.entries[jti] = ttl
	return nil
}

// mockImages 记录保存/删除调用；文件名以 bad 开头视为非图片
type mockImages struct {
	saved   []string
	deleted []string
}

func (m *mockImages) Save(dir string, fh *multipart.FileHeader) (string, error) {
	if strings.HasPrefix(fh.Filename, "bad") {
		return "", storage.ErrUnsupportedImage
	}
	rel := dir + "/" + strings.TrimSuffix(fh.Filename, ".png") + ".webp"
	m.saved = append(m.saved, rel)
	return rel, nil
}

func (m *mockImages) Delete(rel string) error {
	m.deleted = append(m.deleted, rel)
	return nil
}

func (m *mockImages) URL(rel string) string {
	if rel == "" {
		return ""
	}
	return "/media/" + rel
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
