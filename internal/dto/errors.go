// Package dto 提供数据传输对象定义
package dto

import "net/http"

// BizError 业务错误
type BizError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
}

// Error 实现 error 接口
func (e *BizError) Error() string {
	return e.Message
}

// 通用错误 (10xxx)
var (
	ErrInvalidParams     = &BizError{10001, "INVALID_PARAMS", http.StatusBadRequest}
	ErrUnauthorized      = &BizError{10002, "UNAUTHORIZED", http.StatusUnauthorized}
	ErrForbidden         = &BizError{10003, "FORBIDDEN", http.StatusForbidden}
	ErrMissingWallet     = &BizError{10004, "MISSING_WALLET_HEADER", http.StatusUnauthorized}
	ErrInvalidWalletAddr = &BizError{10005, "INVALID_WALLET_ADDRESS", http.StatusBadRequest}
)

// 订单错误 (11xxx)
var (
	ErrOrderNotFound     = &BizError{11001, "ORDER_NOT_FOUND", http.StatusNotFound}
	ErrInvalidAmount     = &BizError{11002, "INVALID_AMOUNT", http.StatusBadRequest}
	ErrInvalidWindow     = &BizError{11003, "INVALID_EXECUTION_WINDOW", http.StatusBadRequest}
	ErrInvalidCategory   = &BizError{11004, "INVALID_CATEGORY", http.StatusBadRequest}
	ErrInvalidState      = &BizError{11005, "INVALID_ORDER_STATE", http.StatusConflict}
	ErrWindowClosed      = &BizError{11006, "EXECUTION_WINDOW_CLOSED", http.StatusBadRequest}
	ErrGuaranteeMismatch = &BizError{11007, "GUARANTEE_MISMATCH", http.StatusBadRequest}
)

// 资金错误 (12xxx)
var (
	ErrInsufficientFunds     = &BizError{12001, "INSUFFICIENT_FUNDS", http.StatusBadRequest}
	ErrInsufficientClaimable = &BizError{12002, "INSUFFICIENT_CLAIMABLE", http.StatusBadRequest}
	ErrInsufficientReceipts  = &BizError{12003, "INSUFFICIENT_RECEIPT_BALANCE", http.StatusBadRequest}
)

// 费率错误 (13xxx)
var (
	ErrInvalidFeeRate = &BizError{13001, "INVALID_FEE_RATE", http.StatusBadRequest}
)

// 系统错误 (20xxx)
var (
	ErrInternalError      = &BizError{20001, "INTERNAL_ERROR", http.StatusInternalServerError}
	ErrServiceUnavailable = &BizError{20002, "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable}
)

// NewBizError 创建自定义业务错误
func NewBizError(code int, message string, httpStatus int) *BizError {
	return &BizError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// WithMessage 返回带自定义消息的错误副本
func (e *BizError) WithMessage(msg string) *BizError {
	return &BizError{
		Code:       e.Code,
		Message:    msg,
		HTTPStatus: e.HTTPStatus,
	}
}
