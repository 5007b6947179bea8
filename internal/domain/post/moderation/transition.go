package moderation

import (
	"strings"

	"post_audit_service/pkg/errs"
	"post_audit_service/pkg/quicktag"
)

// Decision 一次审核决定，不持久化
type Decision struct {
	Target quicktag.Tag // Approved 或 Rejected
	Reason string       // 拒绝原因，Target 为 Rejected 时必填
}

// DecisionName 指标与审核流水用的决定名
func (d Decision) DecisionName() string {
	if d.Target == quicktag.Approved {
		return "approved"
	}
	return "rejected"
}

// ParseTarget 把接口层的状态名映射为目标生命周期位
// 未知值不在这里拦截，交给 Apply 统一报错
func ParseTarget(status string) quicktag.Tag {
	switch status {
	case "approved":
		return quicktag.Approved
	case "rejected":
		return quicktag.Rejected
	default:
		return 0
	}
}

// Apply 对当前状态应用审核决定，返回新状态
//
// 规则：
//  1. 拒绝必须带原因
//  2. 清掉全部生命周期位和 Deleted 位（重新审核会复活软删除的文章），保留 Video 等修饰位
//  3. 置目标生命周期位
//
// 纯函数：调用方负责把结果连同拒绝原因一起持久化（通过时原因清空），
// 并在一个事务内完成读-改-写，并发决定才能串行化
func Apply(current quicktag.Tag, d Decision) (quicktag.Tag, error) {
	switch d.Target {
	case quicktag.Approved:
		// 通过无需原因
	case quicktag.Rejected:
		if strings.TrimSpace(d.Reason) == "" {
			return 0, errs.NewValidation("reject reason required")
		}
	default:
		return 0, errs.NewValidation("unsupported target flag")
	}

	next := current.Without(quicktag.Lifecycle).Without(quicktag.Deleted)
	return next.With(d.Target), nil
}
