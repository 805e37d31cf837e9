// Package service 实现订单托管的业务逻辑
package service

import "errors"

var (
	// ErrInvalidAmount 金额或数量非法
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidWindow 执行窗口非法
	ErrInvalidWindow = errors.New("invalid execution window")
	// ErrInvalidCategory 订单类别非法
	ErrInvalidCategory = errors.New("invalid order category")
	// ErrInvalidFeeRate 费率超出基点范围
	ErrInvalidFeeRate = errors.New("invalid fee rate")
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrUnauthorized 调用方无权执行该操作
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidState 订单状态不允许该操作
	ErrInvalidState = errors.New("invalid order state")
	// ErrWindowClosed 当前时间在执行窗口之外
	ErrWindowClosed = errors.New("execution window closed")
	// ErrGuaranteeMismatch 保证金与要求不一致
	ErrGuaranteeMismatch = errors.New("guarantee amount mismatch")
	// ErrInsufficientFunds 资金账本余额不足
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientClaimable 可领取报酬不足
	ErrInsufficientClaimable = errors.New("insufficient claimable reward")
	// ErrInsufficientReceipts 凭证余额不足
	ErrInsufficientReceipts = errors.New("insufficient receipt balance")
)
