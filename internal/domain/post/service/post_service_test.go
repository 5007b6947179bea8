package service

import (
	"encoding/json"
	"sort"
	"testing"

	"post_audit_service/internal/domain/post/model"
	"post_audit_service/internal/domain/post/moderation"
	"post_audit_service/internal/domain/post/repository"
	"post_audit_service/pkg/errs"
	"post_audit_service/pkg/quicktag"
	"post_audit_service/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// MockPostRepository is a mock of PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(post *model.Post) error {
	args := m.Called(post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(id string) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) GetByIDForUpdate(id string) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) Update(id string, fields map[string]interface{}) (int64, error) {
	args := m.Called(id, fields)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) Delete(id string) (int64, error) {
	args := m.Called(id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) FindPage(q repository.PageQuery) ([]model.Post, int64, error) {
	args := m.Called(q)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) Transaction(fn func(txRepo repository.PostRepository) error) error {
	args := m.Called(fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(m)
}

func (m *MockPostRepository) CreateAuditRecord(rec *model.AuditRecord) error {
	args := m.Called(rec)
	return args.Error(0)
}

func (m *MockPostRepository) GetAuditRecords(postID string, offset, limit int) ([]model.AuditRecord, int64, error) {
	args := m.Called(postID, offset, limit)
	return args.Get(0).([]model.AuditRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) CreateFavorite(userID, postID string) error {
	args := m.Called(userID, postID)
	return args.Error(0)
}

func (m *MockPostRepository) DeleteFavorite(userID, postID string) error {
	args := m.Called(userID, postID)
	return args.Error(0)
}

func (m *MockPostRepository) HasFavorited(userID, postID string) (bool, error) {
	args := m.Called(userID, postID)
	return args.Bool(0), args.Error(1)
}

func createTestPost(id, authorID string, tag quicktag.Tag) *model.Post {
	p := &model.Post{
		Title:    "Test Post",
		Content:  json.RawMessage(`{"blocks":[]}`),
		AuthorID: authorID,
	}
	p.ID = id
	p.SetTag(tag)
	return p
}

func TestCreatePost(t *testing.T) {
	t.Run("New post starts pending", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		mockRepo.On("Create", mock.AnythingOfType("*model.Post")).Run(func(args mock.Arguments) {
			p := args.Get(0).(*model.Post)
			assert.True(t, p.Tag().Has(quicktag.Pending))
			assert.False(t, p.Tag().Has(quicktag.Video))
		}).Return(nil)

		_, err := service.Create(CreatePostInput{
			Title:    "Hello",
			Content:  json.RawMessage(`{}`),
			AuthorID: "author-1",
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("New post with video gets video flag", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		mockRepo.On("Create", mock.AnythingOfType("*model.Post")).Run(func(args mock.Arguments) {
			p := args.Get(0).(*model.Post)
			assert.True(t, p.Tag().Has(quicktag.Pending))
			assert.True(t, p.Tag().Has(quicktag.Video))
		}).Return(nil)

		_, err := service.Create(CreatePostInput{
			Title:    "Hello",
			Content:  json.RawMessage(`{}`),
			Video:    "https://cdn.example.com/v.mp4",
			AuthorID: "author-1",
		})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Missing title rejected", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		_, err := service.Create(CreatePostInput{AuthorID: "author-1"})

		assert.True(t, errs.IsValidation(err))
	})

	t.Run("Edit forces re-review and clears reject reason", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		existing := createTestPost("post-1", "author-1", quicktag.Rejected.With(quicktag.Video))
		existing.RejectReason = "low quality"

		mockRepo.On("GetByID", "post-1").Return(existing, nil)
		mockRepo.On("Update", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
			tag := quicktag.Tag(fields["quick_tag"].(uint32))
			// 视频被移除，回到纯 Pending
			return tag.Has(quicktag.Pending) &&
				!tag.Has(quicktag.Rejected) &&
				!tag.Has(quicktag.Video) &&
				fields["reject_reason"] == ""
		})).Return(int64(1), nil)

		id, err := service.Create(CreatePostInput{
			ID:       "post-1",
			Title:    "Edited",
			Content:  json.RawMessage(`{}`),
			AuthorID: "author-1",
		})

		assert.NoError(t, err)
		assert.Equal(t, "post-1", id)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetByID(t *testing.T) {
	t.Run("Missing and forbidden are indistinguishable", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		pending := createTestPost("post-1", "author-1", quicktag.Pending)
		mockRepo.On("GetByID", "post-1").Return(pending, nil)
		mockRepo.On("GetByID", "no-such-post").Return(nil, gorm.ErrRecordNotFound)

		stranger := moderation.Viewer{SubjectID: "someone-else"}

		_, errForbidden := service.GetByID("post-1", stranger)
		_, errMissing := service.GetByID("no-such-post", stranger)

		assert.True(t, errs.IsNotFound(errForbidden))
		assert.True(t, errs.IsNotFound(errMissing))
		assert.Equal(t, errMissing.Error(), errForbidden.Error())
	})

	t.Run("Author sees own pending post", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		pending := createTestPost("post-1", "author-1", quicktag.Pending)
		mockRepo.On("GetByID", "post-1").Return(pending, nil)
		mockRepo.On("HasFavorited", "author-1", "post-1").Return(false, nil)

		detail, err := service.GetByID("post-1", moderation.Viewer{SubjectID: "author-1"})

		assert.NoError(t, err)
		assert.Equal(t, "post-1", detail.ID)
		assert.False(t, detail.Favorited)
	})

	t.Run("Anonymous sees approved post without favorite lookup", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		approved := createTestPost("post-1", "author-1", quicktag.Approved)
		mockRepo.On("GetByID", "post-1").Return(approved, nil)

		detail, err := service.GetByID("post-1", moderation.Viewer{})

		assert.NoError(t, err)
		assert.False(t, detail.Favorited)
		mockRepo.AssertNotCalled(t, "HasFavorited", mock.Anything, mock.Anything)
	})

	t.Run("Favorite state enriched for logged in viewer", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		approved := createTestPost("post-1", "author-1", quicktag.Approved)
		mockRepo.On("GetByID", "post-1").Return(approved, nil)
		mockRepo.On("HasFavorited", "reader-1", "post-1").Return(true, nil)

		detail, err := service.GetByID("post-1", moderation.Viewer{SubjectID: "reader-1"})

		assert.NoError(t, err)
		assert.True(t, detail.Favorited)
	})
}

func TestAudit(t *testing.T) {
	t.Run("Approve clears reject reason", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		post := createTestPost("post-1", "author-1", quicktag.Rejected)
		post.RejectReason = "old reason"

		mockRepo.On("Transaction", mock.Anything).Return(nil)
		mockRepo.On("GetByIDForUpdate", "post-1").Return(post, nil)
		mockRepo.On("Update", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
			tag := quicktag.Tag(fields["quick_tag"].(uint32))
			return tag.Has(quicktag.Approved) &&
				!tag.Has(quicktag.Rejected) &&
				fields["reject_reason"] == ""
		})).Return(int64(1), nil)

		err := service.Audit("post-1", "mod-1", AuditInput{Status: "approved"})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Reject without reason fails before touching the row", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		post := createTestPost("post-1", "author-1", quicktag.Pending)
		mockRepo.On("Transaction", mock.Anything).Return(nil)
		mockRepo.On("GetByIDForUpdate", "post-1").Return(post, nil)

		err := service.Audit("post-1", "mod-1", AuditInput{Status: "rejected"})

		assert.True(t, errs.IsValidation(err))
		mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("Reject stores reason", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		post := createTestPost("post-1", "author-1", quicktag.Pending.With(quicktag.Video))
		mockRepo.On("Transaction", mock.Anything).Return(nil)
		mockRepo.On("GetByIDForUpdate", "post-1").Return(post, nil)
		mockRepo.On("Update", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
			tag := quicktag.Tag(fields["quick_tag"].(uint32))
			// 视频位保留
			return tag.Has(quicktag.Rejected) &&
				tag.Has(quicktag.Video) &&
				fields["reject_reason"] == "low quality"
		})).Return(int64(1), nil)

		err := service.Audit("post-1", "mod-1", AuditInput{Status: "rejected", Reason: "low quality"})

		assert.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Audit of missing post is not found", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		mockRepo.On("Transaction", mock.Anything).Return(nil)
		mockRepo.On("GetByIDForUpdate", "no-such-post").Return(nil, gorm.ErrRecordNotFound)

		err := service.Audit("no-such-post", "mod-1", AuditInput{Status: "approved"})

		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("Re-approving an approved post is idempotent", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		post := createTestPost("post-1", "author-1", quicktag.Approved)
		mockRepo.On("Transaction", mock.Anything).Return(nil)
		mockRepo.On("GetByIDForUpdate", "post-1").Return(post, nil)
		mockRepo.On("Update", "post-1", mock.MatchedBy(func(fields map[string]interface{}) bool {
			return fields["quick_tag"] == quicktag.Approved.Value()
		})).Return(int64(1), nil)

		err := service.Audit("post-1", "mod-1", AuditInput{Status: "approved"})

		assert.NoError(t, err)
	})
}

func TestDeletePost(t *testing.T) {
	t.Run("Delete success", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		mockRepo.On("Delete", "post-1").Return(int64(1), nil)

		assert.NoError(t, service.Delete("post-1"))
	})

	t.Run("Delete missing post is not found", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		mockRepo.On("Delete", "no-such-post").Return(int64(0), nil)

		assert.True(t, errs.IsNotFound(service.Delete("no-such-post")))
	})
}

func TestToggleFavorite(t *testing.T) {
	t.Run("First toggle favorites", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		post := createTestPost("post-1", "author-1", quicktag.Approved)
		mockRepo.On("GetByID", "post-1").Return(post, nil)
		mockRepo.On("HasFavorited", "user-1", "post-1").Return(false, nil)
		mockRepo.On("CreateFavorite", "user-1", "post-1").Return(nil)

		favorited, err := service.ToggleFavorite("user-1", "post-1")

		assert.NoError(t, err)
		assert.True(t, favorited)
	})

	t.Run("Second toggle unfavorites", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		post := createTestPost("post-1", "author-1", quicktag.Approved)
		mockRepo.On("GetByID", "post-1").Return(post, nil)
		mockRepo.On("HasFavorited", "user-1", "post-1").Return(true, nil)
		mockRepo.On("DeleteFavorite", "user-1", "post-1").Return(nil)

		favorited, err := service.ToggleFavorite("user-1", "post-1")

		assert.NoError(t, err)
		assert.False(t, favorited)
	})
}

func TestListByStatus(t *testing.T) {
	t.Run("Invalid selector rejected", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		_, err := service.ListByStatus("bogus", utils.Pagination{Page: 1, Limit: 10})

		assert.True(t, errs.IsValidation(err))
	})

	t.Run("Invalid pagination rejected not clamped", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		_, err := service.ListByStatus("approved", utils.Pagination{Page: -1, Limit: 10})
		assert.True(t, errs.IsValidation(err))

		_, err = service.ListByStatus("approved", utils.Pagination{Page: 1, Limit: 500})
		assert.True(t, errs.IsValidation(err))

		mockRepo.AssertNotCalled(t, "FindPage", mock.Anything)
	})

	t.Run("Page envelope computed from total", func(t *testing.T) {
		mockRepo := new(MockPostRepository)
		service := NewPostService(mockRepo, nil)

		posts := []model.Post{*createTestPost("post-1", "author-1", quicktag.Approved)}
		mockRepo.On("FindPage", repository.PageQuery{
			Status: moderation.StatusApproved,
			Offset: 0,
			Limit:  10,
		}).Return(posts, int64(25), nil)

		result, err := service.ListByStatus("approved", utils.Pagination{Page: 1, Limit: 10})

		assert.NoError(t, err)
		assert.Equal(t, int64(25), result.Total)
		assert.Equal(t, 3, result.TotalPages)
		assert.True(t, result.HasMore)
	})
}

// fakePostRepository 带状态的内存仓库，跑完整工作流场景
type fakePostRepository struct {
	posts  map[string]*model.Post
	audits []model.AuditRecord
	seq    int
}

func newFakePostRepository() *fakePostRepository {
	return &fakePostRepository{posts: make(map[string]*model.Post)}
}

func (f *fakePostRepository) Create(post *model.Post) error {
	if post.ID == "" {
		f.seq++
		post.ID = string(rune('a' + f.seq))
	}
	cp := *post
	f.posts[post.ID] = &cp
	return nil
}

func (f *fakePostRepository) GetByID(id string) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePostRepository) GetByIDForUpdate(id string) (*model.Post, error) {
	return f.GetByID(id)
}

func (f *fakePostRepository) Update(id string, fields map[string]interface{}) (int64, error) {
	p, ok := f.posts[id]
	if !ok {
		return 0, nil
	}
	if v, ok := fields["quick_tag"]; ok {
		p.QuickTag = v.(uint32)
	}
	if v, ok := fields["reject_reason"]; ok {
		p.RejectReason = v.(string)
	}
	if v, ok := fields["title"]; ok {
		p.Title = v.(string)
	}
	return 1, nil
}

func (f *fakePostRepository) Delete(id string) (int64, error) {
	if _, ok := f.posts[id]; !ok {
		return 0, nil
	}
	delete(f.posts, id)
	return 1, nil
}

func (f *fakePostRepository) FindPage(q repository.PageQuery) ([]model.Post, int64, error) {
	var out []model.Post
	for _, p := range f.posts {
		if q.AuthorID != "" && p.AuthorID != q.AuthorID {
			continue
		}
		var want quicktag.Tag
		switch q.Status {
		case moderation.StatusPending:
			want = quicktag.Pending
		case moderation.StatusApproved:
			want = quicktag.Approved
		case moderation.StatusRejected:
			want = quicktag.Rejected
		}
		if want != 0 && !p.Tag().Has(want) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakePostRepository) Transaction(fn func(txRepo repository.PostRepository) error) error {
	return fn(f)
}

func (f *fakePostRepository) CreateAuditRecord(rec *model.AuditRecord) error {
	f.audits = append(f.audits, *rec)
	return nil
}

func (f *fakePostRepository) GetAuditRecords(postID string, offset, limit int) ([]model.AuditRecord, int64, error) {
	var out []model.AuditRecord
	for _, a := range f.audits {
		if a.PostID == postID {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakePostRepository) CreateFavorite(userID, postID string) error { return nil }
func (f *fakePostRepository) DeleteFavorite(userID, postID string) error { return nil }
func (f *fakePostRepository) HasFavorited(userID, postID string) (bool, error) {
	return false, nil
}

// TestModerationWorkflow 一篇带视频的文章从提交到驳回、修改、再过审的完整链路
func TestModerationWorkflow(t *testing.T) {
	repo := newFakePostRepository()
	service := NewPostService(repo, nil)

	author := moderation.Viewer{SubjectID: "author-1"}
	stranger := moderation.Viewer{SubjectID: "reader-1"}
	reviewer := moderation.Viewer{SubjectID: "mod-1", Role: moderation.RoleReviewer}

	// 提交带视频的文章
	id, err := service.Create(CreatePostInput{
		Title:    "Surf trip",
		Content:  json.RawMessage(`{"text":"..."}`),
		Video:    "https://cdn.example.com/surf.mp4",
		AuthorID: "author-1",
	})
	assert.NoError(t, err)

	post, _ := repo.GetByID(id)
	assert.True(t, post.Tag().Has(quicktag.Pending))
	assert.True(t, post.Tag().Has(quicktag.Video))

	// 待审核：路人不可见，作者和审核员可见
	_, err = service.GetByID(id, stranger)
	assert.True(t, errs.IsNotFound(err))
	_, err = service.GetByID(id, author)
	assert.NoError(t, err)
	_, err = service.GetByID(id, reviewer)
	assert.NoError(t, err)

	// 驳回
	err = service.Audit(id, "mod-1", AuditInput{Status: "rejected", Reason: "low quality"})
	assert.NoError(t, err)

	post, _ = repo.GetByID(id)
	assert.True(t, post.Tag().Has(quicktag.Rejected))
	assert.True(t, post.Tag().Has(quicktag.Video))
	assert.Equal(t, "low quality", post.RejectReason)

	// 驳回后路人仍不可见
	_, err = service.GetByID(id, stranger)
	assert.True(t, errs.IsNotFound(err))

	// 作者修改后回到待审核，原因清空
	_, err = service.Create(CreatePostInput{
		ID:       id,
		Title:    "Surf trip v2",
		Content:  json.RawMessage(`{"text":"better"}`),
		Video:    "https://cdn.example.com/surf.mp4",
		AuthorID: "author-1",
	})
	assert.NoError(t, err)

	post, _ = repo.GetByID(id)
	assert.True(t, post.Tag().Has(quicktag.Pending))
	assert.False(t, post.Tag().Has(quicktag.Rejected))
	assert.Empty(t, post.RejectReason)

	// 过审
	err = service.Audit(id, "mod-1", AuditInput{Status: "approved"})
	assert.NoError(t, err)

	post, _ = repo.GetByID(id)
	assert.True(t, post.Tag().Has(quicktag.Approved))
	assert.True(t, post.Tag().Has(quicktag.Video))
	assert.Empty(t, post.RejectReason)

	// 过审后对所有人可见
	_, err = service.GetByID(id, moderation.Viewer{})
	assert.NoError(t, err)

	// 公开列表只有这一篇
	result, err := service.ListByStatus("approved", utils.Pagination{Page: 1, Limit: 10})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)
}
