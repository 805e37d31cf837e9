// Package handler 提供 HTTP 请求处理
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/markfender/transorder/internal/dto"
	"github.com/markfender/transorder/internal/service"
)

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithPagination 返回分页成功响应
func SuccessWithPagination(c *gin.Context, items interface{}, total int64, limit, offset int) {
	c.JSON(http.StatusOK, dto.NewPagedResponse(items, total, limit, offset))
}

// Error 返回业务错误响应
func Error(c *gin.Context, err *dto.BizError) {
	c.JSON(err.HTTPStatus, dto.NewErrorResponse(err))
}

// GetWallet 从 context 获取钱包地址
func GetWallet(c *gin.Context) string {
	wallet, _ := c.Get("wallet")
	if w, ok := wallet.(string); ok {
		return w
	}
	return ""
}

// handleServiceError 转换业务错误为 HTTP 响应
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		Error(c, dto.ErrOrderNotFound)
	case errors.Is(err, service.ErrUnauthorized):
		Error(c, dto.ErrForbidden)
	case errors.Is(err, service.ErrInvalidState):
		Error(c, dto.ErrInvalidState)
	case errors.Is(err, service.ErrWindowClosed):
		Error(c, dto.ErrWindowClosed)
	case errors.Is(err, service.ErrInvalidWindow):
		Error(c, dto.ErrInvalidWindow)
	case errors.Is(err, service.ErrInvalidCategory):
		Error(c, dto.ErrInvalidCategory)
	case errors.Is(err, service.ErrInvalidFeeRate):
		Error(c, dto.ErrInvalidFeeRate)
	case errors.Is(err, service.ErrInvalidAmount):
		Error(c, dto.ErrInvalidAmount.WithMessage(err.Error()))
	case errors.Is(err, service.ErrGuaranteeMismatch):
		Error(c, dto.ErrGuaranteeMismatch)
	case errors.Is(err, service.ErrInsufficientFunds):
		Error(c, dto.ErrInsufficientFunds)
	case errors.Is(err, service.ErrInsufficientClaimable):
		Error(c, dto.ErrInsufficientClaimable)
	case errors.Is(err, service.ErrInsufficientReceipts):
		Error(c, dto.ErrInsufficientReceipts)
	default:
		Error(c, dto.ErrInternalError)
	}
}
