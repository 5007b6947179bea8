package service

import (
	"encoding/json"
	"errors"

	"post_audit_service/internal/domain/post/model"
	"post_audit_service/internal/domain/post/moderation"
	"post_audit_service/internal/domain/post/repository"
	"post_audit_service/internal/pkg/worker"
	"post_audit_service/pkg/errs"
	"post_audit_service/pkg/logger"
	"post_audit_service/pkg/metrics"
	"post_audit_service/pkg/quicktag"
	"post_audit_service/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CreatePostInput 创建/编辑文章输入
type CreatePostInput struct {
	ID         string          // 非空且已存在时走编辑路径
	Title      string
	Content    json.RawMessage // 不透明的富文本文档
	Images     []string
	Video      string
	CoverImage string
	Location   string
	AuthorID   string
}

// AuditInput 审核输入
type AuditInput struct {
	Status string // approved / rejected
	Reason string
}

// PostDetail 单篇详情响应
type PostDetail struct {
	*model.Post
	Favorited bool `json:"favorited"`
}

// PostService 文章工作流
type PostService interface {
	Create(input CreatePostInput) (string, error)
	ListByStatus(selector string, p utils.Pagination) (utils.PageResult, error)
	Search(keyword, selector string, p utils.Pagination) (utils.PageResult, error)
	ListMine(authorID string, p utils.Pagination) (utils.PageResult, error)
	GetByID(id string, viewer moderation.Viewer) (*PostDetail, error)
	Audit(id, moderatorID string, input AuditInput) error
	Delete(id string) error
	ToggleFavorite(userID, postID string) (bool, error)
	AuditTrail(postID string, p utils.Pagination) (utils.PageResult, error)
}

type postService struct {
	repo repository.PostRepository
	pool *worker.Pool
}

// NewPostService 创建文章服务
// pool 可为 nil（如测试），此时跳过异步副作用
func NewPostService(repo repository.PostRepository, pool *worker.Pool) PostService {
	return &postService{repo: repo, pool: pool}
}

// Create 创建文章；input.ID 指向已有文章时转为编辑
// 编辑会把生命周期位重置为 Pending——任何修改都强制重新审核，
// 之前的决定作废，拒绝原因清空。其余未提交字段保持原值
func (s *postService) Create(input CreatePostInput) (string, error) {
	if input.Title == "" {
		return "", errs.NewValidation("title is required")
	}
	if input.AuthorID == "" {
		return "", errs.NewValidation("author is required")
	}

	images, err := json.Marshal(input.Images)
	if err != nil {
		return "", err
	}
	if input.Images == nil {
		images = []byte("[]")
	}

	if input.ID != "" {
		existing, err := s.repo.GetByID(input.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		if err == nil {
			next := existing.Tag().
				Without(quicktag.Lifecycle).
				With(quicktag.Pending).
				Without(quicktag.Video)
			if input.Video != "" {
				next = next.With(quicktag.Video)
			}

			_, err := s.repo.Update(input.ID, map[string]interface{}{
				"title":         input.Title,
				"content":       input.Content,
				"images":        images,
				"video":         input.Video,
				"cover_image":   input.CoverImage,
				"location":      input.Location,
				"quick_tag":     next.Value(),
				"reject_reason": "",
			})
			if err != nil {
				return "", err
			}
			return input.ID, nil
		}
		// id 不存在：按新文章插入，保留调用方指定的 id
	}

	post := &model.Post{
		Title:      input.Title,
		Content:    input.Content,
		Images:     images,
		Video:      input.Video,
		CoverImage: input.CoverImage,
		Location:   input.Location,
		AuthorID:   input.AuthorID,
	}
	post.ID = input.ID
	post.SetTag(quicktag.Initial(input.Video != ""))

	if err := s.repo.Create(post); err != nil {
		return "", err
	}
	return post.ID, nil
}

// ListByStatus 按状态分页列表，selector 为空视为 all
func (s *postService) ListByStatus(selector string, p utils.Pagination) (utils.PageResult, error) {
	sel, err := moderation.ParseSelector(selector)
	if err != nil {
		return utils.PageResult{}, err
	}
	if err := p.Normalize(); err != nil {
		return utils.PageResult{}, err
	}

	posts, total, err := s.repo.FindPage(repository.PageQuery{
		Status: sel,
		Offset: p.Offset(),
		Limit:  p.Limit,
	})
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(posts, total, p), nil
}

// Search 关键词搜索，标题/内容/地点/作者名任一命中
func (s *postService) Search(keyword, selector string, p utils.Pagination) (utils.PageResult, error) {
	sel, err := moderation.ParseSelector(selector)
	if err != nil {
		return utils.PageResult{}, err
	}
	if err := p.Normalize(); err != nil {
		return utils.PageResult{}, err
	}

	posts, total, err := s.repo.FindPage(repository.PageQuery{
		Status:  sel,
		Keyword: keyword,
		Offset:  p.Offset(),
		Limit:   p.Limit,
	})
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(posts, total, p), nil
}

// ListMine 作者本人的文章，含拒绝原因
func (s *postService) ListMine(authorID string, p utils.Pagination) (utils.PageResult, error) {
	if err := p.Normalize(); err != nil {
		return utils.PageResult{}, err
	}

	posts, total, err := s.repo.FindPage(repository.PageQuery{
		Status:   moderation.StatusAll,
		AuthorID: authorID,
		Offset:   p.Offset(),
		Limit:    p.Limit,
	})
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(posts, total, p), nil
}

// GetByID 获取单篇详情
// 不存在和无权限对外是同一个 NotFound——响应差异会泄露文章是否存在
func (s *postService) GetByID(id string, viewer moderation.Viewer) (*PostDetail, error) {
	post, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFound("post")
		}
		return nil, err
	}

	if !moderation.CanView(post.Tag(), post.AuthorID, viewer) {
		metrics.VisibilityDeniedTotal.Inc()
		if logger.Log != nil {
			logger.Log.Info("post view denied",
				zap.String("post_id", id),
				zap.String("viewer", viewer.SubjectID))
		}
		return nil, errs.NewNotFound("post")
	}

	detail := &PostDetail{Post: post}
	if viewer.Authenticated() {
		favorited, err := s.repo.HasFavorited(viewer.SubjectID, id)
		if err != nil {
			return nil, err
		}
		detail.Favorited = favorited
	}
	return detail, nil
}

// Audit 应用审核决定
// 读-改-写包在单个事务里并对行加锁：并发决定串行化，不会丢失更新
func (s *postService) Audit(id, moderatorID string, input AuditInput) error {
	d := moderation.Decision{
		Target: moderation.ParseTarget(input.Status),
		Reason: input.Reason,
	}

	var event worker.AuditEvent
	err := s.repo.Transaction(func(txRepo repository.PostRepository) error {
		post, err := txRepo.GetByIDForUpdate(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NewNotFound("post")
			}
			return err
		}

		next, err := moderation.Apply(post.Tag(), d)
		if err != nil {
			return err
		}

		// 通过时清空拒绝原因
		reason := d.Reason
		if next.Has(quicktag.Approved) {
			reason = ""
		}

		if _, err := txRepo.Update(id, map[string]interface{}{
			"quick_tag":     next.Value(),
			"reject_reason": reason,
		}); err != nil {
			return err
		}

		event = worker.AuditEvent{
			PostID:      id,
			PostTitle:   post.Title,
			AuthorID:    post.AuthorID,
			ModeratorID: moderatorID,
			Decision:    d.DecisionName(),
			Reason:      reason,
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 事务提交后才派发副作用
	metrics.AuditDecisionsTotal.WithLabelValues(event.Decision).Inc()
	if s.pool != nil {
		s.pool.Enqueue(event)
	}
	return nil
}

// Delete 硬删除
// 与 Deleted 软删除位是两回事：软删除只是列表排除，这里直接移除行
func (s *postService) Delete(id string) error {
	rows, err := s.repo.Delete(id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return errs.NewNotFound("post")
	}
	return nil
}

// ToggleFavorite 收藏/取消收藏，返回新状态
func (s *postService) ToggleFavorite(userID, postID string) (bool, error) {
	if _, err := s.repo.GetByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, errs.NewNotFound("post")
		}
		return false, err
	}

	favorited, err := s.repo.HasFavorited(userID, postID)
	if err != nil {
		return false, err
	}

	if favorited {
		return false, s.repo.DeleteFavorite(userID, postID)
	}
	return true, s.repo.CreateFavorite(userID, postID)
}

// AuditTrail 文章的审核流水
func (s *postService) AuditTrail(postID string, p utils.Pagination) (utils.PageResult, error) {
	if err := p.Normalize(); err != nil {
		return utils.PageResult{}, err
	}

	records, total, err := s.repo.GetAuditRecords(postID, p.Offset(), p.Limit)
	if err != nil {
		return utils.PageResult{}, err
	}
	return utils.NewPageResult(records, total, p), nil
}
