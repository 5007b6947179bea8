package moderation

import (
	"post_audit_service/pkg/errs"
	"post_audit_service/pkg/quicktag"
)

// StatusSelector 列表接口的状态筛选
type StatusSelector string

const (
	StatusAll      StatusSelector = "all"
	StatusPending  StatusSelector = "pending"
	StatusApproved StatusSelector = "approved"
	StatusRejected StatusSelector = "rejected"
)

// ParseSelector 解析筛选参数，空串视为 all
func ParseSelector(s string) (StatusSelector, error) {
	switch StatusSelector(s) {
	case "", StatusAll:
		return StatusAll, nil
	case StatusPending, StatusApproved, StatusRejected:
		return StatusSelector(s), nil
	default:
		return "", errs.NewValidation("invalid status selector: %q", s)
	}
}

func (s StatusSelector) flag() (quicktag.Tag, bool) {
	switch s {
	case StatusPending:
		return quicktag.Pending, true
	case StatusApproved:
		return quicktag.Approved, true
	case StatusRejected:
		return quicktag.Rejected, true
	default:
		return 0, false
	}
}

// Clause 交给存储层求值的单个行过滤条件
type Clause struct {
	Expr string
	Args []interface{}
}

// StatusClause 状态筛选谓词
// 包含测试 quick_tag & f = f 而非相等比较：
// 同时带 Approved 和 Video 位的文章也要命中 approved 筛选
func StatusClause(sel StatusSelector) (Clause, bool) {
	f, ok := sel.flag()
	if !ok {
		return Clause{}, false // all: 无过滤
	}
	return Clause{
		Expr: "posts.quick_tag & ? = ?",
		Args: []interface{}{f.Value(), f.Value()},
	}, true
}

// 关键词匹配的字段，作者名来自 users 关联
var searchColumns = []string{
	"posts.title",
	"posts.content::text",
	"posts.location",
	"users.username",
}

// SearchClauses 关键词搜索谓词集
//
// 每个字段生成一条完整的行过滤（字段匹配 AND 状态筛选），
// 存储层以 OR 取并集——底层查询形式把"跨字段任一命中"表达为
// 多个完全限定过滤的并集。大小写与部分匹配语义由存储层决定
func SearchClauses(keyword string, sel StatusSelector) []Clause {
	if keyword == "" {
		return nil
	}

	pattern := "%" + keyword + "%"
	status, hasStatus := StatusClause(sel)

	clauses := make([]Clause, 0, len(searchColumns))
	for _, col := range searchColumns {
		c := Clause{
			Expr: col + " ILIKE ?",
			Args: []interface{}{pattern},
		}
		if hasStatus {
			c.Expr = "(" + c.Expr + " AND " + status.Expr + ")"
			c.Args = append(c.Args, status.Args...)
		}
		clauses = append(clauses, c)
	}
	return clauses
}
