package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"coursehub/internal/model"
	"coursehub/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

func setupTestDB(t *testing.T) (*gorm.DB, *repository.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "无法打开测试数据库")

	// 内存库按连接隔离，固定单连接
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...), "AutoMigrate 失败")

	for v := int16(1); v <= 5; v++ {
		require.NoError(t, db.Create(&model.RatingStar{Value: v}).Error)
	}

	return db, repository.NewRepository(db)
}

func createUser(t *testing.T, repo *repository.Repository, username string, staff bool) *model.User {
	t.Helper()
	u := &model.User{Username: username, PasswordHash: "$2a$10$placeholder", IsActive: true, IsStaff: staff}
	require.NoError(t, repo.User.Create(context.Background(), u))
	return u
}

func createCourse(t *testing.T, repo *repository.Repository, owner *model.User, slug string, tags []model.Tag, cats []model.Category) *model.Course {
	t.Helper()
	c := &model.Course{
		UserID:     owner.ID,
		Title:      slug,
		Slug:       slug,
		Text:       "课程简介",
		CreatedOn:  model.DateOf(time.Now()),
		Tags:       tags,
		Categories: cats,
	}
	require.NoError(t, repo.Course.Create(context.Background(), c))
	return c
}

func tagsOf(t *testing.T, repo *repository.Repository, names ...string) []model.Tag {
	t.Helper()
	in := make([]model.Tag, 0, len(names))
	for _, n := range names {
		in = append(in, model.Tag{Name: n, Slug: n})
	}
	out, err := repo.Tag.GetOrCreate(context.Background(), in)
	require.NoError(t, err)
	return out
}

func starID(t *testing.T, db *gorm.DB, value int16) int64 {
	t.Helper()
	var s model.RatingStar
	require.NoError(t, db.Where("value = ?", value).First(&s).Error)
	return s.ID
}

// ═══════════════════════════════════════════════════════════
// Rating
// ═══════════════════════════════════════════════════════════

func TestRatingRepo_UpsertKeepsOneRowPerCourseAndUser(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	u := createUser(t, repo, "alice", false)
	c := createCourse(t, repo, u, "go", nil, nil)

	require.NoError(t, repo.Rating.Upsert(ctx, &model.Rating{CourseID: c.ID, UserID: u.ID, StarID: starID(t, db, 2)}))
	require.NoError(t, repo.Rating.Upsert(ctx, &model.Rating{CourseID: c.ID, UserID: u.ID, StarID: starID(t, db, 5)}))

	var count int64
	db.Model(&model.Rating{}).Where("course_id = ? AND user_id = ?", c.ID, u.ID).Count(&count)
	assert.Equal(t, int64(1), count, "同一用户对同一课程只应有一条评分")

	got, err := repo.Rating.GetByCourseAndUser(ctx, c.ID, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Star)
	assert.Equal(t, int16(5), got.Star.Value, "应保留最后一次提交的星级")
}

func TestRatingRepo_Summary(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	a := createUser(t, repo, "a", false)
	b := createUser(t, repo, "b", false)
	c := createCourse(t, repo, a, "rust", nil, nil)

	empty, err := repo.Rating.Summary(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Count)
	assert.Equal(t, 0.0, empty.Average)

	require.NoError(t, repo.Rating.Upsert(ctx, &model.Rating{CourseID: c.ID, UserID: a.ID, StarID: starID(t, db, 4)}))
	require.NoError(t, repo.Rating.Upsert(ctx, &model.Rating{CourseID: c.ID, UserID: b.ID, StarID: starID(t, db, 5)}))

	sum, err := repo.Rating.Summary(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Count)
	assert.InDelta(t, 4.5, sum.Average, 0.001)
}

func TestRatingStarRepo_ListDescending(t *testing.T) {
	_, repo := setupTestDB(t)

	stars, err := repo.RatingStar.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stars, 5)
	for i, s := range stars {
		assert.Equal(t, int16(5-i), s.Value)
	}
}

// ═══════════════════════════════════════════════════════════
// Tag
// ═══════════════════════════════════════════════════════════

func TestTagRepo_GetOrCreateIsIdempotent(t *testing.T) {
	db, repo := setupTestDB(t)

	first := tagsOf(t, repo, "go", "web")
	second := tagsOf(t, repo, "go", "db")
	assert.Len(t, first, 2)
	assert.Len(t, second, 2)

	var count int64
	db.Model(&model.Tag{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestTagRepo_MostCommon(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, repo, "alice", false)

	usage := map[string]int{"go": 4, "web": 3, "db": 2, "ops": 1}
	i := 0
	for name, n := range usage {
		tag := tagsOf(t, repo, name)
		for k := 0; k < n; k++ {
			createCourse(t, repo, u, fmt.Sprintf("c-%d", i), tag, nil)
			i++
		}
	}

	top, err := repo.Tag.MostCommon(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3, "最多返回 3 个标签")
	assert.Equal(t, "go", top[0].Slug)
	assert.Equal(t, int64(4), top[0].Count)
	assert.Equal(t, "web", top[1].Slug)
	assert.Equal(t, "db", top[2].Slug)
	for k := 1; k < len(top); k++ {
		assert.GreaterOrEqual(t, top[k-1].Count, top[k].Count, "应按使用次数降序")
	}
}

// ═══════════════════════════════════════════════════════════
// Course
// ═══════════════════════════════════════════════════════════

func TestCourseRepo_SlugUniquePerDate(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, repo, "alice", false)

	createCourse(t, repo, u, "hello-world", nil, nil)

	dup := &model.Course{UserID: u.ID, Title: "Hello World!", Slug: "hello-world", Text: "x", CreatedOn: model.DateOf(time.Now())}
	err := repo.Course.Create(ctx, dup)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey, "同一天相同 slug 应违反唯一约束")

	other := &model.Course{UserID: u.ID, Title: "Hello World!", Slug: "hello-world", Text: "x", CreatedOn: model.DateOf(time.Now().AddDate(0, 0, -1))}
	assert.NoError(t, repo.Course.Create(ctx, other), "不同日期允许相同 slug")
}

func TestCourseRepo_SlugsOnDate(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, repo, "alice", false)

	c1 := createCourse(t, repo, u, "hello-world", nil, nil)
	createCourse(t, repo, u, "hello-world-2", nil, nil)
	createCourse(t, repo, u, "another", nil, nil)

	taken, err := repo.Course.SlugsOnDate(ctx, "hello-world", model.DateOf(time.Now()), 0)
	require.NoError(t, err)
	assert.True(t, taken["hello-world"])
	assert.True(t, taken["hello-world-2"])
	assert.False(t, taken["another"])

	taken, err = repo.Course.SlugsOnDate(ctx, "hello-world", model.DateOf(time.Now()), c1.ID)
	require.NoError(t, err)
	assert.False(t, taken["hello-world"], "应排除自身")

	taken, err = repo.Course.SlugsOnDate(ctx, "hello-world", model.DateOf(time.Now().AddDate(0, 0, 1)), 0)
	require.NoError(t, err)
	assert.Empty(t, taken)
}

func TestCourseRepo_ListFiltersAndOrder(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, repo, "alice", false)

	cat := &model.Category{Name: "编程"}
	require.NoError(t, repo.Category.Create(ctx, cat))

	goTag := tagsOf(t, repo, "go")
	first := createCourse(t, repo, u, "first", goTag, nil)
	second := createCourse(t, repo, u, "second", nil, []model.Category{*cat})
	third := createCourse(t, repo, u, "third", goTag, []model.Category{*cat})

	all, total, err := repo.Course.List(ctx, repository.CourseFilter{}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, all, 3)
	assert.Equal(t, third.ID, all[0].ID, "应按创建时间倒序")
	assert.Equal(t, first.ID, all[2].ID)

	byTag, total, err := repo.Course.List(ctx, repository.CourseFilter{TagSlug: "go"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []int64{third.ID, first.ID}, []int64{byTag[0].ID, byTag[1].ID})

	byCat, total, err := repo.Course.List(ctx, repository.CourseFilter{CategoryID: cat.ID}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []int64{third.ID, second.ID}, []int64{byCat[0].ID, byCat[1].ID})

	paged, total, err := repo.Course.List(ctx, repository.CourseFilter{}, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, paged, 1)
	assert.Equal(t, second.ID, paged[0].ID)

	none, total, err := repo.Course.List(ctx, repository.CourseFilter{TagSlug: "missing"}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, none)
}

func TestCourseRepo_UpdateReplacesAssociations(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, repo, "alice", false)

	c := createCourse(t, repo, u, "course", tagsOf(t, repo, "go", "web"), nil)

	c.Title = "Новый курс"
	c.Slug = "новый-курс"
	c.Tags = tagsOf(t, repo, "db")
	require.NoError(t, repo.Course.Update(ctx, c))

	got, err := repo.Course.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "новый-курс", got.Slug)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "db", got.Tags[0].Slug)

	got.Tags = nil
	require.NoError(t, repo.Course.Update(ctx, got))
	got, err = repo.Course.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestCourseRepo_DeleteCascades(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	owner := createUser(t, repo, "owner", false)
	reader := createUser(t, repo, "reader", false)
	cat := &model.Category{Name: "设计"}
	require.NoError(t, repo.Category.Create(ctx, cat))

	c := createCourse(t, repo, owner, "doomed", tagsOf(t, repo, "go"), []model.Category{*cat})
	keep := createCourse(t, repo, owner, "kept", tagsOf(t, repo, "go"), nil)

	require.NoError(t, repo.Comment.Create(ctx, &model.Comment{CourseID: c.ID, UserID: reader.ID, Text: "好课"}))
	require.NoError(t, repo.Comment.Create(ctx, &model.Comment{CourseID: keep.ID, UserID: reader.ID, Text: "也不错"}))
	require.NoError(t, repo.Rating.Upsert(ctx, &model.Rating{CourseID: c.ID, UserID: reader.ID, StarID: starID(t, db, 3)}))

	require.NoError(t, repo.Course.Delete(ctx, c.ID))

	_, err := repo.Course.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var n int64
	db.Model(&model.Comment{}).Where("course_id = ?", c.ID).Count(&n)
	assert.Zero(t, n, "评论应随课程删除")
	db.Model(&model.Rating{}).Where("course_id = ?", c.ID).Count(&n)
	assert.Zero(t, n, "评分应随课程删除")
	db.Table("course_tags").Where("course_id = ?", c.ID).Count(&n)
	assert.Zero(t, n, "标签关联应随课程删除")
	db.Table("course_categories").Where("course_id = ?", c.ID).Count(&n)
	assert.Zero(t, n, "分类关联应随课程删除")

	comments, err := repo.Comment.ListByCourse(ctx, keep.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1, "其他课程的数据不受影响")

	assert.ErrorIs(t, repo.Course.Delete(ctx, c.ID), gorm.ErrRecordNotFound)
}

// ═══════════════════════════════════════════════════════════
// Comment
// ═══════════════════════════════════════════════════════════

func TestCommentRepo_CRUD(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, repo, "alice", false)
	c := createCourse(t, repo, u, "course", nil, nil)

	first := &model.Comment{CourseID: c.ID, UserID: u.ID, Text: "第一条"}
	second := &model.Comment{CourseID: c.ID, UserID: u.ID, Text: "第二条"}
	require.NoError(t, repo.Comment.Create(ctx, first))
	require.NoError(t, repo.Comment.Create(ctx, second))

	list, err := repo.Comment.ListByCourse(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID, "评论按时间正序")
	require.NotNil(t, list[0].User)
	assert.Equal(t, "alice", list[0].User.Username)

	first.Text = "改过了"
	require.NoError(t, repo.Comment.Update(ctx, first))
	got, err := repo.Comment.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "改过了", got.Text)

	require.NoError(t, repo.Comment.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Comment.Delete(ctx, first.ID), gorm.ErrRecordNotFound)
}

// ═══════════════════════════════════════════════════════════
// User / UserInfo / Category
// ═══════════════════════════════════════════════════════════

func TestUserRepo_ListStaffFirst(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	createUser(t, repo, "u1", false)
	createUser(t, repo, "admin", true)
	createUser(t, repo, "u2", false)

	users, total, err := repo.User.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, "u1", users[1].Username)
}

func TestUserRepo_UsernameUnique(t *testing.T) {
	_, repo := setupTestDB(t)
	createUser(t, repo, "alice", false)

	err := repo.User.Create(context.Background(), &model.User{Username: "alice", PasswordHash: "x", IsActive: true})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepo_InactiveFlagPersists(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	u := &model.User{Username: "sleepy", PasswordHash: "x", IsActive: false}
	require.NoError(t, repo.User.Create(ctx, u))

	got, err := repo.User.GetByUsername(ctx, "sleepy")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	now := time.Now()
	require.NoError(t, repo.User.UpdateLastLogin(ctx, u.ID, now))
	got, err = repo.User.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
}

func TestUserRepo_DeleteCascades(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()

	owner := createUser(t, repo, "owner", false)
	other := createUser(t, repo, "other", false)
	own := createCourse(t, repo, owner, "own", tagsOf(t, repo, "go"), nil)
	foreign := createCourse(t, repo, other, "foreign", nil, nil)

	require.NoError(t, repo.Comment.Create(ctx, &model.Comment{CourseID: own.ID, UserID: other.ID, Text: "x"}))
	require.NoError(t, repo.Comment.Create(ctx, &model.Comment{CourseID: foreign.ID, UserID: owner.ID, Text: "y"}))
	require.NoError(t, repo.Rating.Upsert(ctx, &model.Rating{CourseID: foreign.ID, UserID: owner.ID, StarID: starID(t, db, 1)}))
	require.NoError(t, repo.UserInfo.Upsert(ctx, &model.UserInfo{UserID: owner.ID, Name: "O", Bio: "bio", Avatar: "image_user_avatars/o.webp"}))
	require.NoError(t, db.Model(&model.Course{}).Where("id = ?", own.ID).Update("image", "image_courses/own.webp").Error)
	createCourse(t, repo, owner, "bare", nil, nil) // 无封面

	images, err := repo.User.Delete(ctx, owner.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"image_courses/own.webp", "image_user_avatars/o.webp"}, images,
		"应返回被删除课程的封面与资料头像，空路径不返回")

	var n int64
	db.Model(&model.Course{}).Where("user_id = ?", owner.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&model.Comment{}).Count(&n)
	assert.Zero(t, n, "本人课程下的评论与本人发表的评论都应删除")
	db.Model(&model.Rating{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&model.UserInfo{}).Count(&n)
	assert.Zero(t, n)

	_, err = repo.Course.GetByID(ctx, foreign.ID)
	assert.NoError(t, err, "他人课程不受影响")

	_, err = repo.User.Delete(ctx, owner.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserInfoRepo_UpsertSingleRow(t *testing.T) {
	db, repo := setupTestDB(t)
	ctx := context.Background()
	u := createUser(t, repo, "teacher", false)

	require.NoError(t, repo.UserInfo.Upsert(ctx, &model.UserInfo{UserID: u.ID, Name: "A", Bio: "first"}))
	info := &model.UserInfo{UserID: u.ID, Name: "B", Bio: "second", IsTeacher: true}
	require.NoError(t, repo.UserInfo.Upsert(ctx, info))
	assert.NotZero(t, info.ID)

	var n int64
	db.Model(&model.UserInfo{}).Where("user_id = ?", u.ID).Count(&n)
	assert.Equal(t, int64(1), n)

	got, err := repo.UserInfo.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)
	assert.True(t, got.IsTeacher)
}

func TestCategoryRepo_CRUD(t *testing.T) {
	_, repo := setupTestDB(t)
	ctx := context.Background()

	b := &model.Category{Name: "Backend"}
	a := &model.Category{Name: "Art"}
	require.NoError(t, repo.Category.Create(ctx, b))
	require.NoError(t, repo.Category.Create(ctx, a))
	assert.ErrorIs(t, repo.Category.Create(ctx, &model.Category{Name: "Art"}), gorm.ErrDuplicatedKey)

	list, err := repo.Category.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Art", list[0].Name)

	byIDs, err := repo.Category.ListByIDs(ctx, []int64{b.ID})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)

	desc := "服务端"
	b.Description = &desc
	require.NoError(t, repo.Category.Update(ctx, b))
	got, err := repo.Category.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Description)
	assert.Equal(t, "服务端", *got.Description)

	require.NoError(t, repo.Category.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Category.Delete(ctx, b.ID), gorm.ErrRecordNotFound)
}

func TestRepository_WithTxNil(t *testing.T) {
	_, repo := setupTestDB(t)
	assert.Same(t, repo, repo.WithTx(nil))

	tx, err := repo.BeginTx(context.Background())
	require.NoError(t, err)
	require.NotNil(t, tx)
	assert.NotSame(t, repo, repo.WithTx(tx))
	tx.Rollback()
}
