package utils

import "post_audit_service/pkg/errs"

// MaxPageSize 单页上限
const MaxPageSize = 100

// Pagination 分页请求参数
type Pagination struct {
	Page  int `json:"page" form:"page"`
	Limit int `json:"limit" form:"limit"`
}

// PageResult 分页响应结果
type PageResult struct {
	List       interface{} `json:"list"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"totalPages"`
	HasMore    bool        `json:"hasMore"`
}

// Normalize 填默认值并校验
// 非法值直接报 ValidationError，不做静默修正
func (p *Pagination) Normalize() error {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 10
	}
	if p.Page < 1 {
		return errs.NewValidation("page must be >= 1, got %d", p.Page)
	}
	if p.Limit < 1 {
		return errs.NewValidation("limit must be >= 1, got %d", p.Limit)
	}
	if p.Limit > MaxPageSize {
		return errs.NewValidation("limit must be <= %d, got %d", MaxPageSize, p.Limit)
	}
	return nil
}

// Offset 计算偏移量，调用前须先 Normalize
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPageResult 组装分页结果: totalPages = ceil(total/limit), hasMore = page < totalPages
func NewPageResult(list interface{}, total int64, p Pagination) PageResult {
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return PageResult{
		List:       list,
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: totalPages,
		HasMore:    p.Page < totalPages,
	}
}
