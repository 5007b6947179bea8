package post

import (
	"post_audit_service/internal/domain/post/handler"
	"post_audit_service/internal/domain/post/moderation"
	"post_audit_service/internal/domain/post/repository"
	"post_audit_service/internal/domain/post/service"
	"post_audit_service/internal/pkg/middleware"
	"post_audit_service/internal/pkg/push"
	"post_audit_service/internal/pkg/registry"
	"post_audit_service/internal/pkg/worker"
	"post_audit_service/pkg/cache"

	"github.com/gin-gonic/gin"
)

// PostModule 文章模块
type PostModule struct{}

func init() {
	registry.Register(&PostModule{})
}

func (m *PostModule) Name() string {
	return "post"
}

func (m *PostModule) Priority() int {
	return 10
}

func (m *PostModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	repo := repository.NewPostRepository(ctx.DB)

	// 审核事件池：流水落库 + 作者推送
	pool := worker.NewPool([]worker.Sink{
		service.NewAuditTrailSink(repo),
		service.NewPushSink(push.NewNotifier()),
	}, 4, 256)
	pool.Start()

	var postService service.PostService = service.NewPostService(repo, pool)
	if ctx.Redis != nil {
		postService = service.NewCachedPostService(postService, cache.NewRedisCache(ctx.Redis))
	}
	postHandler := handler.NewPostHandler(postService)

	// 2. 路由注册
	setupRoutes(ctx.Router, postHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PostHandler) {
	g := r.Group("/posts")

	// 公开接口
	g.GET("/list/approved", h.ListApproved)
	g.GET("/search", h.Search)

	// 详情对匿名开放，登录用户附带收藏状态
	g.GET("/:id", middleware.OptionalAuthMiddleware(), h.Get)

	// 登录用户
	auth := g.Group("")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("", h.Create)
		auth.GET("/my", h.ListMine)
		auth.POST("/:id/favorite", h.ToggleFavorite)
	}

	// 审核角色
	mod := g.Group("")
	mod.Use(middleware.AuthMiddleware(), middleware.RequireRoles(moderation.RoleAdmin, moderation.RoleReviewer))
	{
		mod.GET("/list", h.List)
		mod.POST("/:id/audit", h.Audit)
		mod.GET("/:id/audits", h.AuditTrail)
	}

	// 管理员
	admin := g.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles(moderation.RoleAdmin))
	{
		admin.DELETE("/:id", h.Delete)
	}
}
