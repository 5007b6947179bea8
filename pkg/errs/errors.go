package errs

import (
	"errors"
	"fmt"
)

// 业务错误分类：
// ValidationError 调用方参数违反前置条件，对应 HTTP 400
// NotFoundError   资源不存在（含无权限查看的情况，对外不可区分），对应 HTTP 404
// 其他错误原样向上传递，由 handler 归为 500

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func NewNotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

// IsValidation 判断是否参数错误
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound 判断是否资源不存在
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
