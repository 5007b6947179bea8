package moderation

import (
	"post_audit_service/pkg/quicktag"
)

// 可以查看任意状态文章的角色
const (
	RoleAdmin    = "admin"
	RoleReviewer = "reviewer"
)

// Viewer 请求方身份快照
type Viewer struct {
	SubjectID string // 空串 = 匿名
	Role      string
}

// Authenticated 是否登录用户
func (v Viewer) Authenticated() bool {
	return v.SubjectID != ""
}

// IsModerator 是否审核角色
func (v Viewer) IsModerator() bool {
	return v.Role == RoleAdmin || v.Role == RoleReviewer
}

// CanView 决定 viewer 能否读取文章全文
//
// 顺序：已通过的对所有人可见（含匿名）；作者永远能看自己的草稿和被拒稿；
// 审核角色能看一切待决内容；其余拒绝。
// 必须在任何内容字段返回给调用方之前判定；拒绝时对外表现与 id 不存在完全一致，
// 避免通过响应差异探测文章是否存在
func CanView(tag quicktag.Tag, authorID string, v Viewer) bool {
	if tag.Has(quicktag.Approved) {
		return true
	}
	if v.Authenticated() && v.SubjectID == authorID {
		return true
	}
	return v.IsModerator()
}
