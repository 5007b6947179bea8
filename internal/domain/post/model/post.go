package model

import (
	"encoding/json"

	userModel "post_audit_service/internal/domain/user/model"
	baseModel "post_audit_service/pkg/model"
	"post_audit_service/pkg/quicktag"
)

// Post 文章模型
// QuickTag 是单个整数列上的位掩码，只能经由 moderation.Apply 产生新值
type Post struct {
	baseModel.BaseModel
	Title      string          `gorm:"size:255;not null" json:"title"`
	Content    json.RawMessage `gorm:"type:jsonb" json:"content"` // 富文本 JSON 文档，引擎不解释其结构
	Images     json.RawMessage `gorm:"type:jsonb" json:"images"`  // 图片 URL 数组
	Video      string          `gorm:"size:500" json:"video"`
	CoverImage string          `gorm:"size:500" json:"coverImage"`
	Location   string          `gorm:"size:255" json:"location"`
	AuthorID   string          `gorm:"type:uuid;index;not null" json:"authorId"` // 创建后不可变
	QuickTag   uint32          `gorm:"column:quick_tag;not null;default:1" json:"quickTag"`
	RejectReason string        `gorm:"size:500" json:"rejectReason,omitempty"` // 仅 Rejected 时非空

	Author *userModel.User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// Tag 当前状态位
func (p *Post) Tag() quicktag.Tag {
	return quicktag.Tag(p.QuickTag)
}

// SetTag 覆盖状态位
func (p *Post) SetTag(t quicktag.Tag) {
	p.QuickTag = t.Value()
}

// AuditRecord 审核流水，每次决定一条
type AuditRecord struct {
	baseModel.BaseModel
	PostID      string `gorm:"type:uuid;index;not null" json:"postId"`
	ModeratorID string `gorm:"type:uuid;not null" json:"moderatorId"`
	Decision    string `gorm:"size:20;not null" json:"decision"` // approved, rejected
	Reason      string `gorm:"size:500" json:"reason"`
}

func (AuditRecord) TableName() string {
	return "post_audits"
}

// Favorite 收藏关系
type Favorite struct {
	baseModel.BaseModel
	UserID string `gorm:"type:uuid;uniqueIndex:idx_favorite_user_post;not null" json:"userId"`
	PostID string `gorm:"type:uuid;uniqueIndex:idx_favorite_user_post;not null" json:"postId"`
}

func (Favorite) TableName() string {
	return "post_favorites"
}
