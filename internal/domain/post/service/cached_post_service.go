package service

import (
	"context"
	"fmt"
	"time"

	"post_audit_service/internal/domain/post/moderation"
	"post_audit_service/pkg/cache"
	"post_audit_service/pkg/logger"
	"post_audit_service/pkg/metrics"
	"post_audit_service/pkg/utils"

	"go.uber.org/zap"
)

// CachedPostService 带缓存的文章服务
// 只缓存公开的 approved 列表页——其他列表要么是审核后台要么按 viewer 变化，
// 命中率低不值得占缓存。写路径（创建/审核/删除）统一失效列表缓存
type CachedPostService struct {
	PostService
	cache cache.CacheService
}

const (
	approvedListKeyPrefix = "post_list:approved:"
	approvedListTTL       = time.Minute * 5
)

// NewCachedPostService 创建带缓存的文章服务
func NewCachedPostService(inner PostService, cache cache.CacheService) PostService {
	return &CachedPostService{
		PostService: inner,
		cache:       cache,
	}
}

func listKey(p utils.Pagination) string {
	return fmt.Sprintf("%s%d:%d", approvedListKeyPrefix, p.Page, p.Limit)
}

// ListByStatus approved 列表走缓存，其余透传
func (s *CachedPostService) ListByStatus(selector string, p utils.Pagination) (utils.PageResult, error) {
	sel, err := moderation.ParseSelector(selector)
	if err != nil || sel != moderation.StatusApproved {
		return s.PostService.ListByStatus(selector, p)
	}
	if err := p.Normalize(); err != nil {
		return utils.PageResult{}, err
	}

	ctx := context.Background()
	key := listKey(p)

	var cached utils.PageResult
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		metrics.CacheHitsTotal.WithLabelValues("post_list").Inc()
		return cached, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("post_list").Inc()

	result, err := s.PostService.ListByStatus(selector, p)
	if err != nil {
		return utils.PageResult{}, err
	}

	if err := s.cache.Set(ctx, key, result, approvedListTTL); err != nil {
		// 缓存失败不影响业务逻辑，只记录日志
		logger.Log.Warn("failed to cache post list", zap.Error(err))
	}
	return result, nil
}

func (s *CachedPostService) invalidateLists() {
	if err := s.cache.InvalidatePattern(context.Background(), approvedListKeyPrefix+"*"); err != nil {
		logger.Log.Warn("failed to invalidate post list cache", zap.Error(err))
	}
}

// Create 写路径失效列表缓存
func (s *CachedPostService) Create(input CreatePostInput) (string, error) {
	id, err := s.PostService.Create(input)
	if err == nil {
		s.invalidateLists()
	}
	return id, err
}

// Audit 审核改变可见集合，失效列表缓存
func (s *CachedPostService) Audit(id, moderatorID string, input AuditInput) error {
	if err := s.PostService.Audit(id, moderatorID, input); err != nil {
		return err
	}
	s.invalidateLists()
	return nil
}

// Delete 删除后失效列表缓存
func (s *CachedPostService) Delete(id string) error {
	if err := s.PostService.Delete(id); err != nil {
		return err
	}
	s.invalidateLists()
	return nil
}
