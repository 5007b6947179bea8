package response

import (
	"net/http"
	"post_audit_service/pkg/errs"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// HandleError 按错误分类映射 HTTP 状态码
// ValidationError -> 400, NotFoundError -> 404, 其余 -> 500
func HandleError(c *gin.Context, err error) {
	switch {
	case errs.IsValidation(err):
		Error(c, http.StatusBadRequest, ErrInvalidParam, err.Error())
	case errs.IsNotFound(err):
		Error(c, http.StatusNotFound, ErrPostNotFound, err.Error())
	default:
		Error(c, http.StatusInternalServerError, ErrServerInternal, err.Error())
	}
}
