package handler

import (
	"encoding/json"
	"net/http"

	"post_audit_service/internal/domain/post/moderation"
	"post_audit_service/internal/domain/post/service"
	"post_audit_service/internal/pkg/middleware"
	"post_audit_service/pkg/response"
	"post_audit_service/pkg/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	service service.PostService
}

func NewPostHandler(s service.PostService) *PostHandler {
	return &PostHandler{service: s}
}

// CreateInput 创建/编辑文章输入
type CreateInput struct {
	ID         string          `json:"id"`
	Title      string          `json:"title" binding:"required,max=255"`
	Content    json.RawMessage `json:"content" binding:"required"`
	Images     []string        `json:"images"`
	Video      string          `json:"video"`
	CoverImage string          `json:"coverImage"`
	Location   string          `json:"location"`
}

// AuditInput 审核输入
type AuditInput struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// viewerFromContext 组装请求方身份，未登录为匿名
func viewerFromContext(c *gin.Context) moderation.Viewer {
	return moderation.Viewer{
		SubjectID: c.GetString(middleware.CtxUserID),
		Role:      c.GetString(middleware.CtxRole),
	}
}

// Create 创建文章（传已有 id 则编辑并重新进入待审核）
// @Summary 创建/编辑文章
// @Tags Post
// @Accept json
// @Produce json
// @Param input body CreateInput true "文章内容"
// @Success 200 {object} response.Response
// @Router /posts [post]
func (h *PostHandler) Create(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	id, err := h.service.Create(service.CreatePostInput{
		ID:         input.ID,
		Title:      input.Title,
		Content:    input.Content,
		Images:     input.Images,
		Video:      input.Video,
		CoverImage: input.CoverImage,
		Location:   input.Location,
		AuthorID:   c.GetString(middleware.CtxUserID),
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id})
}

// List 全量列表（审核后台）
// @Summary 按状态获取文章列表
// @Tags Post
// @Param status query string false "all/pending/approved/rejected"
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} utils.PageResult
// @Router /posts/list [get]
func (h *PostHandler) List(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.ListByStatus(c.Query("status"), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// ListApproved 公开文章流
// @Summary 获取已通过审核的文章
// @Tags Post
// @Param page query int false "Page"
// @Param limit query int false "Limit"
// @Success 200 {object} utils.PageResult
// @Router /posts/list/approved [get]
func (h *PostHandler) ListApproved(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.ListByStatus(string(moderation.StatusApproved), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// ListMine 我的文章
func (h *PostHandler) ListMine(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.ListMine(c.GetString(middleware.CtxUserID), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// Search 关键词搜索
// @Summary 搜索文章（标题/内容/地点/作者名）
// @Tags Post
// @Param keyword query string true "Keyword"
// @Param status query string false "all/pending/approved/rejected"
// @Success 200 {object} utils.PageResult
// @Router /posts/search [get]
func (h *PostHandler) Search(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Search(c.Query("keyword"), c.Query("status"), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// Get 文章详情（匿名可访问已通过的文章）
func (h *PostHandler) Get(c *gin.Context) {
	detail, err := h.service.GetByID(c.Param("id"), viewerFromContext(c))
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, detail)
}

// Audit 审核文章（审核员）
// @Summary 审核文章
// @Tags Post
// @Param id path string true "文章ID"
// @Param input body AuditInput true "审核决定"
// @Success 200 {string} string "success"
// @Router /posts/{id}/audit [post]
func (h *PostHandler) Audit(c *gin.Context) {
	var input AuditInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	err := h.service.Audit(c.Param("id"), c.GetString(middleware.CtxUserID), service.AuditInput{
		Status: input.Status,
		Reason: input.Reason,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

// AuditTrail 审核流水（审核员）
func (h *PostHandler) AuditTrail(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.AuditTrail(c.Param("id"), p)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除文章（管理员，硬删除）
func (h *PostHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, "success")
}

// ToggleFavorite 收藏/取消收藏
func (h *PostHandler) ToggleFavorite(c *gin.Context) {
	favorited, err := h.service.ToggleFavorite(c.GetString(middleware.CtxUserID), c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	msg := "unfavorited"
	if favorited {
		msg = "favorited"
	}
	response.Success(c, msg)
}
